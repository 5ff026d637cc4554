package assets

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	"scenelab/scene"
)

// Textures larger than this get downscaled; keeps remote refs from pinning
// huge allocations.
const maxTextureDim = 2048

// decodeTexture decodes PNG/JPEG bytes and sizes the result to power-of-two
// dimensions for GL mipmapping.
func decodeTexture(name string, data []byte) (*scene.Texture, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", name, err)
	}
	return scene.TextureFromImage(name, scaleToPow2(img, maxTextureDim)), nil
}

// scaleToPow2 resizes img down to the nearest power-of-two dimensions, capped
// at maxDim per side. Conforming images pass through untouched.
func scaleToPow2(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	tw, th := floorPow2(w, maxDim), floorPow2(h, maxDim)
	if tw == w && th == h {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// floorPow2 returns the largest power of two ≤ n, clamped to [1, maxN].
func floorPow2(n, maxN int) int {
	p := 1
	for p*2 <= n && p*2 <= maxN {
		p *= 2
	}
	return p
}
