package opengl

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"scenelab/math"
	"scenelab/scene"
	"scenelab/shader"
)

// ParticleRenderer owns the GPU resources for billboard particle rendering.
// It is created lazily by Renderer.DrawParticles on first use.
type ParticleRenderer struct {
	prog              uint32
	vao               uint32
	vbo               uint32
	vpLoc             int32
	hasParticleTexLoc int32
	particleTexLoc    int32
	vboCap            int // current VBO capacity in vertices
}

// newParticleRenderer links the billboard program from the registry and
// creates the dynamic VAO/VBO.
func newParticleRenderer(reg *shader.Registry) (*ParticleRenderer, error) {
	prog, err := newProgram(reg.MustSource(shader.ParticleVert), reg.MustSource(shader.ParticleFrag))
	if err != nil {
		return nil, fmt.Errorf("particle program: %w", err)
	}

	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.GenBuffers(1, &vbo)

	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)

	const stride = int32(9 * 4) // pos(3) + uv(2) + color(4) = 9 float32 × 4 bytes
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(0)) // pos
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, stride, gl.PtrOffset(12)) // uv
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 4, gl.FLOAT, false, stride, gl.PtrOffset(20)) // color
	gl.BindVertexArray(0)

	pr := &ParticleRenderer{
		prog: prog,
		vao:  vao,
		vbo:  vbo,
	}
	pr.resolveUniforms()
	return pr, nil
}

// relink rebuilds the billboard program from current registry sources,
// keeping the old program when the new one fails to link.
func (pr *ParticleRenderer) relink(reg *shader.Registry) error {
	prog, err := newProgram(reg.MustSource(shader.ParticleVert), reg.MustSource(shader.ParticleFrag))
	if err != nil {
		return fmt.Errorf("particle program: %w", err)
	}
	gl.DeleteProgram(pr.prog)
	pr.prog = prog
	pr.resolveUniforms()
	return nil
}

func (pr *ParticleRenderer) resolveUniforms() {
	pr.vpLoc = gl.GetUniformLocation(pr.prog, gl.Str("vp\x00"))
	pr.hasParticleTexLoc = gl.GetUniformLocation(pr.prog, gl.Str("hasParticleTex\x00"))
	pr.particleTexLoc = gl.GetUniformLocation(pr.prog, gl.Str("particleTex\x00"))
	gl.UseProgram(pr.prog)
	gl.Uniform1i(pr.particleTexLoc, 0)
	gl.Uniform1i(pr.hasParticleTexLoc, 0)
}

// draw renders all live particles in the emitter as camera-facing billboards.
//
// Camera right and up are extracted from the view matrix ([col][row] layout):
//
//	right = row 0 of view = (view[0][0], view[1][0], view[2][0])
//	up    = row 1 of view = (view[0][1], view[1][1], view[2][1])
func (pr *ParticleRenderer) draw(emitter *scene.ParticleEmitter, view, proj math.Mat4) {
	n := len(emitter.Particles)
	if n == 0 {
		return
	}

	// Camera axes from view matrix rows
	camRight := math.Vec3{X: view[0][0], Y: view[1][0], Z: view[2][0]}
	camUp := math.Vec3{X: view[0][1], Y: view[1][1], Z: view[2][1]}

	// Build CPU-side quad buffer: 6 vertices (2 triangles) per particle.
	const vertsPerParticle = 6
	const floatsPerVert = 9
	buf := make([]float32, n*vertsPerParticle*floatsPerVert)
	out := 0

	addVert := func(p math.Vec3, u, v float32, c [4]float32) {
		buf[out+0] = p.X
		buf[out+1] = p.Y
		buf[out+2] = p.Z
		buf[out+3] = u
		buf[out+4] = v
		buf[out+5] = c[0]
		buf[out+6] = c[1]
		buf[out+7] = c[2]
		buf[out+8] = c[3]
		out += floatsPerVert
	}

	for i := range emitter.Particles {
		p := &emitter.Particles[i]
		s := p.Size
		c := [4]float32{p.Color.R, p.Color.G, p.Color.B, p.Color.A}
		r := camRight.Mul(s)
		u := camUp.Mul(s)

		// Four corners of the billboard quad
		bl := p.Position.Sub(r).Sub(u)
		br := p.Position.Add(r).Sub(u)
		tl := p.Position.Sub(r).Add(u)
		tr := p.Position.Add(r).Add(u)

		// Triangle 1: tl, tr, br
		addVert(tl, 0, 1, c)
		addVert(tr, 1, 1, c)
		addVert(br, 1, 0, c)
		// Triangle 2: tl, br, bl
		addVert(tl, 0, 1, c)
		addVert(br, 1, 0, c)
		addVert(bl, 0, 0, c)
	}

	// Upload to GPU (grow VBO only when needed)
	gl.BindBuffer(gl.ARRAY_BUFFER, pr.vbo)
	byteSize := len(buf) * 4
	vertCount := n * vertsPerParticle
	if vertCount > pr.vboCap {
		gl.BufferData(gl.ARRAY_BUFFER, byteSize, gl.Ptr(buf), gl.DYNAMIC_DRAW)
		pr.vboCap = vertCount
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, byteSize, gl.Ptr(buf))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	// Blending: additive (fire/glow) or standard alpha (smoke)
	gl.Enable(gl.BLEND)
	switch emitter.BlendMode {
	case scene.BlendAdditive:
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
	default:
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	}

	// Depth: read (test against scene) but do NOT write (particles don't occlude)
	gl.DepthMask(false)

	vp := view.Mul(proj)
	gl.UseProgram(pr.prog)
	gl.UniformMatrix4fv(pr.vpLoc, 1, false, (*float32)(unsafe.Pointer(&vp[0][0])))
	gl.Uniform1i(pr.hasParticleTexLoc, 0) // procedural soft-circle

	gl.BindVertexArray(pr.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(vertCount))
	gl.BindVertexArray(0)

	// Restore render state
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
}

func (pr *ParticleRenderer) destroy() {
	gl.DeleteVertexArrays(1, &pr.vao)
	gl.DeleteBuffers(1, &pr.vbo)
	gl.DeleteProgram(pr.prog)
}
