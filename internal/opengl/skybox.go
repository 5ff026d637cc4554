package opengl

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"scenelab/core"
	"scenelab/math"
	"scenelab/shader"
)

// Skybox renders a procedural gradient sky using an inverted unit cube.
// The cube vertex shader uses the xyww trick (gl_Position.z = gl_Position.w)
// so every fragment lands at NDC depth 1.0 — always behind scene geometry.
type Skybox struct {
	vao  uint32
	vbo  uint32
	prog uint32

	vpLoc      int32
	zenithLoc  int32
	horizonLoc int32
	groundLoc  int32

	// ZenithColor is the sky colour directly overhead (Y = +1).
	ZenithColor core.Color
	// HorizonColor is the sky colour at the horizon (Y ≈ 0).
	HorizonColor core.Color
	// GroundColor is the colour below the horizon (Y = -1).
	GroundColor core.Color
}

// 36 positions (xyz) for a unit cube — standard CCW winding from the outside.
// Face culling is disabled during draw so we see the inside faces.
var skyboxVerts = []float32{
	// -Z face
	-1, -1, -1, 1, 1, -1, 1, -1, -1,
	1, 1, -1, -1, -1, -1, -1, 1, -1,
	// +Z face
	-1, -1, 1, 1, -1, 1, 1, 1, 1,
	1, 1, 1, -1, 1, 1, -1, -1, 1,
	// -X face
	-1, 1, 1, -1, 1, -1, -1, -1, -1,
	-1, -1, -1, -1, -1, 1, -1, 1, 1,
	// +X face
	1, 1, 1, 1, -1, -1, 1, 1, -1,
	1, -1, -1, 1, 1, 1, 1, -1, 1,
	// -Y face
	-1, -1, -1, 1, -1, -1, 1, -1, 1,
	1, -1, 1, -1, -1, 1, -1, -1, -1,
	// +Y face
	-1, 1, -1, 1, 1, 1, 1, 1, -1,
	1, 1, 1, -1, 1, -1, -1, 1, 1,
}

// NewSkybox links the gradient sky program from the registry and uploads the
// cube geometry. Default colours give a pleasant blue sky with a warm brown
// ground.
func NewSkybox(reg *shader.Registry) (*Skybox, error) {
	prog, err := newProgram(reg.MustSource(shader.SkyboxVert), reg.MustSource(shader.SkyboxFrag))
	if err != nil {
		return nil, fmt.Errorf("skybox program: %w", err)
	}

	sb := &Skybox{
		prog: prog,

		// Deep blue zenith, pale blue horizon, warm brown ground
		ZenithColor:  core.Color{R: 0.10, G: 0.30, B: 0.70, A: 1},
		HorizonColor: core.Color{R: 0.60, G: 0.80, B: 1.00, A: 1},
		GroundColor:  core.Color{R: 0.30, G: 0.25, B: 0.20, A: 1},
	}
	sb.resolveUniforms()

	gl.GenVertexArrays(1, &sb.vao)
	gl.GenBuffers(1, &sb.vbo)
	gl.BindVertexArray(sb.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, sb.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(skyboxVerts)*4, gl.Ptr(skyboxVerts), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 12, gl.PtrOffset(0))
	gl.BindVertexArray(0)

	return sb, nil
}

// relink rebuilds the sky program from current registry sources, keeping the
// old program when the new one fails to link.
func (sb *Skybox) relink(reg *shader.Registry) error {
	prog, err := newProgram(reg.MustSource(shader.SkyboxVert), reg.MustSource(shader.SkyboxFrag))
	if err != nil {
		return fmt.Errorf("skybox program: %w", err)
	}
	gl.DeleteProgram(sb.prog)
	sb.prog = prog
	sb.resolveUniforms()
	return nil
}

func (sb *Skybox) resolveUniforms() {
	sb.vpLoc = gl.GetUniformLocation(sb.prog, gl.Str("skyVP\x00"))
	sb.zenithLoc = gl.GetUniformLocation(sb.prog, gl.Str("zenith\x00"))
	sb.horizonLoc = gl.GetUniformLocation(sb.prog, gl.Str("horizon\x00"))
	sb.groundLoc = gl.GetUniformLocation(sb.prog, gl.Str("ground\x00"))
}

// Draw renders the sky.  skyVP must be the combined (view-without-translation)×proj
// matrix — the caller is responsible for stripping the translation column from view.
func (sb *Skybox) Draw(skyVP math.Mat4) {
	// Depth LEQUAL so depth=1.0 fragments pass against the cleared depth value (1.0).
	// Depth mask off — we don't want to write 1.0 into the depth buffer.
	gl.DepthFunc(gl.LEQUAL)
	gl.DepthMask(false)

	gl.UseProgram(sb.prog)
	gl.UniformMatrix4fv(sb.vpLoc, 1, false, (*float32)(unsafe.Pointer(&skyVP[0][0])))
	gl.Uniform3f(sb.zenithLoc, sb.ZenithColor.R, sb.ZenithColor.G, sb.ZenithColor.B)
	gl.Uniform3f(sb.horizonLoc, sb.HorizonColor.R, sb.HorizonColor.G, sb.HorizonColor.B)
	gl.Uniform3f(sb.groundLoc, sb.GroundColor.R, sb.GroundColor.G, sb.GroundColor.B)

	gl.BindVertexArray(sb.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 36)
	gl.BindVertexArray(0)

	// Restore depth state for scene geometry
	gl.DepthMask(true)
	gl.DepthFunc(gl.LESS)
}

// Destroy frees all GPU resources owned by this skybox.
func (sb *Skybox) Destroy() {
	gl.DeleteVertexArrays(1, &sb.vao)
	gl.DeleteBuffers(1, &sb.vbo)
	gl.DeleteProgram(sb.prog)
}
