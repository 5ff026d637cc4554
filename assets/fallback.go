package assets

import (
	"scenelab/scene"
)

// Fallback assets are returned alongside the original error whenever a load
// fails, so callers always have something to draw. Each call builds a fresh
// value: uploading a texture mutates its GL id, and scenes are free to edit
// the node they get back.

// FallbackTexture is the classic magenta/black checker.
func FallbackTexture() *scene.Texture {
	return scene.NewCheckerTexture("fallback_texture", 2, 2,
		[4]uint8{255, 0, 255, 255}, [4]uint8{0, 0, 0, 255})
}

// FallbackModel is a unit cube with a neutral checker so a missing mesh is
// visible without screaming magenta at the user.
func FallbackModel() *Model {
	tex := scene.NewCheckerTexture("fallback_model_checker", 64, 8,
		[4]uint8{200, 200, 205, 255}, [4]uint8{70, 70, 80, 255})
	mat := scene.DefaultMaterial()
	mat.Name = "fallback_model"
	mat.AlbedoTexture = tex

	mesh := scene.CreateCube(1)
	mesh.Material = mat

	node := scene.NewNode("fallback_model")
	node.Mesh = mesh
	return &Model{Root: node, Textures: []*scene.Texture{tex}}
}

// FallbackHDR is a small synthetic sky: blue zenith fading to a bright
// horizon, muddy brown below. The stops mirror the renderer's default skybox
// gradient so a failed environment fetch is barely noticeable.
func FallbackHDR() *HDRImage {
	const w, h = 64, 32
	zenith := [3]float32{0.10, 0.30, 0.70}
	horizon := [3]float32{0.60, 0.80, 1.00}
	ground := [3]float32{0.30, 0.25, 0.20}

	img := &HDRImage{Width: w, Height: h, Pixels: make([]float32, w*h*3)}
	for y := 0; y < h; y++ {
		t := float32(y) / float32(h-1)
		var c [3]float32
		if t < 0.5 {
			c = lerp3(zenith, horizon, t*2)
		} else {
			c = lerp3(horizon, ground, (t-0.5)*2)
		}
		row := y * w * 3
		for x := 0; x < w; x++ {
			img.Pixels[row+x*3+0] = c[0]
			img.Pixels[row+x*3+1] = c[1]
			img.Pixels[row+x*3+2] = c[2]
		}
	}
	return img
}

func lerp3(a, b [3]float32, t float32) [3]float32 {
	return [3]float32{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
	}
}
