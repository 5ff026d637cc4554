package assets

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chewxy/math32"

	"scenelab/core"
)

// HDRImage is a decoded Radiance picture: linear float32 RGB, row-major from
// the top-left.
type HDRImage struct {
	Width  int
	Height int
	Pixels []float32 // 3 floats per pixel
}

// DecodeHDR reads a Radiance RGBE (.hdr) stream. Flat and new-style RLE
// scanlines are handled; the standard "-Y h +X w" orientation is required.
func DecodeHDR(r io.Reader) (*HDRImage, error) {
	br := bufio.NewReader(r)

	magic, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("hdr header: %w", err)
	}
	if !strings.HasPrefix(magic, "#?") {
		return nil, fmt.Errorf("hdr header: bad magic %q", strings.TrimSpace(magic))
	}

	// Attribute lines end at the blank separator.
	formatOK := false
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("hdr header: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		if line == "FORMAT=32-bit_rle_rgbe" {
			formatOK = true
		}
	}
	if !formatOK {
		return nil, fmt.Errorf("hdr header: not 32-bit_rle_rgbe")
	}

	resLine, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("hdr resolution: %w", err)
	}
	var width, height int
	if _, err := fmt.Sscanf(strings.TrimSpace(resLine), "-Y %d +X %d", &height, &width); err != nil {
		return nil, fmt.Errorf("hdr resolution %q: %w", strings.TrimSpace(resLine), err)
	}
	if width <= 0 || height <= 0 || width*height > 64<<20 {
		return nil, fmt.Errorf("hdr resolution %dx%d out of range", width, height)
	}

	img := &HDRImage{Width: width, Height: height, Pixels: make([]float32, width*height*3)}
	scan := make([]byte, width*4) // one scanline of RGBE quads

	for y := 0; y < height; y++ {
		if err := readScanline(br, scan, width); err != nil {
			return nil, fmt.Errorf("hdr scanline %d: %w", y, err)
		}
		base := y * width * 3
		for x := 0; x < width; x++ {
			e := scan[x*4+3]
			if e == 0 {
				continue // pixel stays zero
			}
			// mantissa/256 × 2^(e-128)
			scale := math32.Exp2(float32(int(e) - 136))
			img.Pixels[base+x*3+0] = float32(scan[x*4]) * scale
			img.Pixels[base+x*3+1] = float32(scan[x*4+1]) * scale
			img.Pixels[base+x*3+2] = float32(scan[x*4+2]) * scale
		}
	}
	return img, nil
}

// readScanline fills scan with width RGBE quads. New-style RLE scanlines
// (0x02 0x02 prefix + big-endian width) store the four components planar,
// each as runs (count>128, one value) and literal spans; anything else is a
// flat scanline.
func readScanline(br *bufio.Reader, scan []byte, width int) error {
	var header [4]byte
	if _, err := io.ReadFull(br, header[:]); err != nil {
		return err
	}

	if header[0] == 2 && header[1] == 2 && int(header[2])<<8|int(header[3]) == width {
		for c := 0; c < 4; c++ {
			x := 0
			for x < width {
				count, err := br.ReadByte()
				if err != nil {
					return err
				}
				if count > 128 {
					n := int(count) - 128
					if x+n > width {
						return fmt.Errorf("rle run overflows scanline")
					}
					v, err := br.ReadByte()
					if err != nil {
						return err
					}
					for i := 0; i < n; i++ {
						scan[(x+i)*4+c] = v
					}
					x += n
				} else {
					n := int(count)
					if n == 0 || x+n > width {
						return fmt.Errorf("rle literal overflows scanline")
					}
					for i := 0; i < n; i++ {
						v, err := br.ReadByte()
						if err != nil {
							return err
						}
						scan[(x+i)*4+c] = v
					}
					x += n
				}
			}
		}
		return nil
	}

	// Flat scanline: the four header bytes are the first pixel.
	copy(scan[:4], header[:])
	_, err := io.ReadFull(br, scan[4:width*4])
	return err
}

// DominantColors condenses the environment into the three gradient stops the
// skybox and IBL use: zenith from the top quarter, horizon from the middle
// band, ground from the bottom quarter. Averages are Reinhard tone-mapped
// into [0,1).
func (h *HDRImage) DominantColors() (zenith, horizon, ground core.Color) {
	zenith = h.bandAverage(0, h.Height/4)
	horizon = h.bandAverage(h.Height*3/8, h.Height*5/8)
	ground = h.bandAverage(h.Height*3/4, h.Height)
	return zenith, horizon, ground
}

func (h *HDRImage) bandAverage(y0, y1 int) core.Color {
	if y1 <= y0 || h.Width == 0 {
		return core.Color{R: 0.5, G: 0.5, B: 0.5, A: 1}
	}
	var r, g, b float64
	for y := y0; y < y1; y++ {
		row := y * h.Width * 3
		for x := 0; x < h.Width; x++ {
			r += float64(h.Pixels[row+x*3+0])
			g += float64(h.Pixels[row+x*3+1])
			b += float64(h.Pixels[row+x*3+2])
		}
	}
	n := float64((y1 - y0) * h.Width)
	return core.Color{
		R: tonemap(float32(r / n)),
		G: tonemap(float32(g / n)),
		B: tonemap(float32(b / n)),
		A: 1,
	}
}

// tonemap is Reinhard x/(1+x).
func tonemap(v float32) float32 {
	if v <= 0 {
		return 0
	}
	return v / (1 + v)
}
