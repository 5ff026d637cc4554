package assets

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenelab/core"
)

func hdrHeader(width, height int) *bytes.Buffer {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n\n-Y %d +X %d\n", height, width)
	return &buf
}

func TestDecodeHDRFlatScanlines(t *testing.T) {
	buf := hdrHeader(2, 2)
	// Row 0: (255,0,0,e=129), (0,255,0,e=128). Row 1: (0,0,255,e=130), zero.
	buf.Write([]byte{255, 0, 0, 129, 0, 255, 0, 128})
	buf.Write([]byte{0, 0, 255, 130, 0, 0, 0, 0})

	img, err := DecodeHDR(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, img.Width)
	assert.Equal(t, 2, img.Height)
	require.Len(t, img.Pixels, 12)

	// e maps to 2^(e-128), shared across channels, mantissa /256.
	assert.InDelta(t, 255.0/128, img.Pixels[0], 1e-3)
	assert.Zero(t, img.Pixels[1])
	assert.Zero(t, img.Pixels[2])
	assert.InDelta(t, 255.0/256, img.Pixels[4], 1e-3)
	assert.InDelta(t, 255.0/64, img.Pixels[8], 1e-3)
	assert.Zero(t, img.Pixels[9])
	assert.Zero(t, img.Pixels[10])
	assert.Zero(t, img.Pixels[11])
}

func TestDecodeHDRNewRLEScanlines(t *testing.T) {
	buf := hdrHeader(8, 2)
	// Row 0: each component one run of 8. e=128 gives scale 1/256.
	buf.Write([]byte{2, 2, 0, 8})
	buf.Write([]byte{136, 128, 136, 64, 136, 32, 136, 128})
	// Row 1: red literal span, e=136 gives scale 1 so reds decode exactly.
	buf.Write([]byte{2, 2, 0, 8})
	buf.Write([]byte{8, 10, 20, 30, 40, 50, 60, 70, 80})
	buf.Write([]byte{136, 0, 136, 0, 136, 136})

	img, err := DecodeHDR(buf)
	require.NoError(t, err)
	require.Len(t, img.Pixels, 8*2*3)

	for x := 0; x < 8; x++ {
		assert.InDelta(t, 0.5, img.Pixels[x*3+0], 1e-3, "row 0 red")
		assert.InDelta(t, 0.25, img.Pixels[x*3+1], 1e-3, "row 0 green")
		assert.InDelta(t, 0.125, img.Pixels[x*3+2], 1e-3, "row 0 blue")
	}
	row := 8 * 3
	for x := 0; x < 8; x++ {
		assert.InDelta(t, float64((x+1)*10), img.Pixels[row+x*3+0], 1e-3, "row 1 red")
		assert.Zero(t, img.Pixels[row+x*3+1])
	}
}

func TestDecodeHDRBadMagic(t *testing.T) {
	_, err := DecodeHDR(bytes.NewReader([]byte("NOTHDR\nFORMAT=32-bit_rle_rgbe\n\n-Y 1 +X 1\n")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "magic")
}

func TestDecodeHDRMissingFormat(t *testing.T) {
	_, err := DecodeHDR(bytes.NewReader([]byte("#?RADIANCE\nEXPOSURE=1.0\n\n-Y 1 +X 1\n")))
	require.Error(t, err)
}

func TestDecodeHDRTruncatedScanline(t *testing.T) {
	buf := hdrHeader(4, 1)
	buf.Write([]byte{255, 0, 0, 129}) // one pixel of four
	_, err := DecodeHDR(buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scanline")
}

func TestDecodeHDRRunOverflow(t *testing.T) {
	buf := hdrHeader(8, 1)
	buf.Write([]byte{2, 2, 0, 8})
	buf.Write([]byte{137, 5}) // run of 9 into an 8-wide scanline
	_, err := DecodeHDR(buf)
	require.Error(t, err)
}

func TestDominantColorsUniform(t *testing.T) {
	img := &HDRImage{Width: 4, Height: 8, Pixels: make([]float32, 4*8*3)}
	for i := range img.Pixels {
		img.Pixels[i] = 1
	}
	zenith, horizon, ground := img.DominantColors()
	for _, c := range []float32{zenith.R, horizon.G, ground.B} {
		assert.InDelta(t, 0.5, c, 1e-4, "tonemapped average of 1.0")
	}
	assert.Equal(t, float32(1), zenith.A)
}

func TestFallbackHDRDominantColors(t *testing.T) {
	img := FallbackHDR()
	zenith, horizon, ground := img.DominantColors()

	assert.Greater(t, zenith.B, zenith.R, "sky reads blue")
	assert.Greater(t, ground.R, ground.B, "ground reads warm")
	assert.Greater(t, horizon.B, ground.B, "horizon brighter than ground")
	for _, c := range []core.Color{zenith, horizon, ground} {
		assert.GreaterOrEqual(t, c.R, float32(0))
		assert.Less(t, c.B, float32(1))
	}
}
