package lotto

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"scenelab/core"
	"scenelab/math"
	"scenelab/scene"
)

const (
	ballRadius   = 0.32
	texSize      = 64
	glyphUpscale = 3
)

// decadeColor is the traditional color band for a ball number.
func decadeColor(n int) color.RGBA {
	switch {
	case n < 10:
		return color.RGBA{R: 238, G: 238, B: 242, A: 255} // white
	case n < 20:
		return color.RGBA{R: 66, G: 122, B: 220, A: 255} // blue
	case n < 30:
		return color.RGBA{R: 226, G: 82, B: 118, A: 255} // pink
	case n < 40:
		return color.RGBA{R: 74, G: 178, B: 94, A: 255} // green
	default:
		return color.RGBA{R: 234, G: 198, B: 62, A: 255} // yellow
	}
}

// ballImage paints one ball face: the decade color, a white disc, and the
// number enlarged from a bitmap face.
func ballImage(n int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, texSize, texSize))
	bg := decadeColor(n)
	for y := 0; y < texSize; y++ {
		for x := 0; x < texSize; x++ {
			img.SetRGBA(x, y, bg)
		}
	}

	// White printing disc behind the number.
	const r = texSize * 22 / 64
	center := texSize / 2
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			if x*x+y*y <= r*r {
				img.SetRGBA(center+x, center+y, color.RGBA{R: 248, G: 248, B: 250, A: 255})
			}
		}
	}

	label := strconv.Itoa(n)
	face := basicfont.Face7x13
	small := image.NewRGBA(image.Rect(0, 0, 7*len(label)+2, 13))
	drawer := &font.Drawer{
		Dst:  small,
		Src:  image.NewUniform(color.RGBA{R: 24, G: 24, B: 34, A: 255}),
		Face: face,
		Dot:  fixed.P(1, 11),
	}
	drawer.DrawString(label)

	// Blow the glyphs up with a hard-edged scale so they stay crisp.
	w := small.Bounds().Dx() * glyphUpscale
	h := small.Bounds().Dy() * glyphUpscale
	target := image.Rect((texSize-w)/2, (texSize-h)/2, (texSize-w)/2+w, (texSize-h)/2+h)
	xdraw.NearestNeighbor.Scale(img, target, small, small.Bounds(), xdraw.Over, nil)

	return img
}

// BallTexture rasterizes the numbered face for one ball.
func BallTexture(n int) *scene.Texture {
	return scene.TextureFromImage(fmt.Sprintf("ball_%02d", n), ballImage(n))
}

// buildBallMesh makes the sphere for one numbered ball. Geometry is small
// enough that each ball owning a mesh keeps texturing trivial.
func buildBallMesh(n int) *scene.Mesh {
	mesh := scene.CreateSphere(ballRadius, 16, 12)
	mat := scene.NewMaterial(fmt.Sprintf("ball_%02d", n), core.ColorWhite)
	mat.Shininess = 64
	mat.Specular = core.Color{R: 0.6, G: 0.6, B: 0.6, A: 1}
	mat.AlbedoTexture = BallTexture(n)
	mesh.Material = mat
	return mesh
}

// Rack layout: six main slots in a row with the bonus ball set apart.
const (
	rackY       = 7.3
	rackZ       = 2.0
	rackSpacing = 1.05
	bonusGap    = 1.1
)

// rackSlot is the world position a drawn ball flies to. Slots 0..5 hold
// the main numbers, slot 6 the bonus.
func rackSlot(i int) math.Vec3 {
	if i >= 6 {
		return math.Vec3{X: 2.5*rackSpacing + bonusGap, Y: rackY, Z: rackZ}
	}
	return math.Vec3{X: (float32(i) - 2.5) * rackSpacing, Y: rackY, Z: rackZ}
}
