package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"scenelab/shader"
)

// PostProcessFBO is an HDR off-screen render target with tone mapping and
// optional bloom (bright-pass → separable Gaussian blur → additive composite).
type PostProcessFBO struct {
	reg *shader.Registry

	// Main HDR FBO (scene renders into this)
	FBO      uint32 // framebuffer object
	ColorTex uint32 // RGBA16F colour attachment
	DepthTex uint32 // DEPTH_COMPONENT32F depth texture (sampleable for SSAO)
	Width    int32
	Height   int32

	// Tone-map + bloom composite shader
	prog        uint32
	hdrLoc      int32 // sampler2D unit 0
	bloomTexLoc int32 // sampler2D unit 1
	expLoc      int32
	bloomStrLoc int32
	hasBloomLoc int32
	// AO composite (unit 2)
	aoTexLoc int32
	hasAOLoc int32
	aoStrLoc int32

	quadVAO uint32 // empty VAO for the fullscreen triangle

	// Tone-mapping
	Exposure float32

	// Bloom ping-pong FBOs (created by EnableBloom)
	bloomFBO        [2]uint32
	bloomTex        [2]uint32
	bloomW          int32
	bloomH          int32
	brightProg      uint32 // bright-pass shader
	brightThreshLoc int32
	blurProg        uint32 // separable Gaussian shader
	blurTexLoc      int32
	blurDirLoc      int32

	BloomEnabled   bool
	BloomThreshold float32 // luminance cut-off (1.0 = only pixels brighter than white)
	BloomStrength  float32 // additive bloom multiplier
	BloomPasses    int     // number of H+V blur pairs (more = softer, more expensive)
}

// NewPostProcessFBO links the tone-map program from the registry and creates
// the HDR colour + depth attachments at the given pixel dimensions.
func NewPostProcessFBO(reg *shader.Registry, width, height int) (*PostProcessFBO, error) {
	pp := &PostProcessFBO{reg: reg, Exposure: 1.0}

	prog, err := newProgram(reg.MustSource(shader.FullscreenVert), reg.MustSource(shader.TonemapFrag))
	if err != nil {
		return nil, fmt.Errorf("tone-map program: %w", err)
	}
	pp.prog = prog
	pp.resolveTonemapUniforms()

	gl.GenVertexArrays(1, &pp.quadVAO)

	if err := pp.allocFBO(width, height); err != nil {
		pp.Destroy()
		return nil, err
	}
	return pp, nil
}

func (pp *PostProcessFBO) resolveTonemapUniforms() {
	prog := pp.prog
	pp.hdrLoc = gl.GetUniformLocation(prog, gl.Str("hdrBuffer\x00"))
	pp.bloomTexLoc = gl.GetUniformLocation(prog, gl.Str("bloomTex\x00"))
	pp.expLoc = gl.GetUniformLocation(prog, gl.Str("exposure\x00"))
	pp.bloomStrLoc = gl.GetUniformLocation(prog, gl.Str("bloomStrength\x00"))
	pp.hasBloomLoc = gl.GetUniformLocation(prog, gl.Str("hasBloom\x00"))
	pp.aoTexLoc = gl.GetUniformLocation(prog, gl.Str("aoTex\x00"))
	pp.hasAOLoc = gl.GetUniformLocation(prog, gl.Str("hasAO\x00"))
	pp.aoStrLoc = gl.GetUniformLocation(prog, gl.Str("aoStrength\x00"))

	gl.UseProgram(prog)
	gl.Uniform1i(pp.hdrLoc, 0)
	gl.Uniform1i(pp.bloomTexLoc, 1)
	gl.Uniform1i(pp.aoTexLoc, 2)
}

// relink rebuilds the tone-map program, and the bloom programs when bloom is
// active, from current registry sources. Failed stages keep their previous
// programs.
func (pp *PostProcessFBO) relink(reg *shader.Registry) error {
	prog, err := newProgram(reg.MustSource(shader.FullscreenVert), reg.MustSource(shader.TonemapFrag))
	if err != nil {
		return fmt.Errorf("tone-map program: %w", err)
	}
	gl.DeleteProgram(pp.prog)
	pp.prog = prog
	pp.resolveTonemapUniforms()

	if pp.brightProg == 0 {
		return nil
	}
	bp, err := newProgram(reg.MustSource(shader.FullscreenVert), reg.MustSource(shader.BrightFrag))
	if err != nil {
		return fmt.Errorf("bright-pass program: %w", err)
	}
	blp, err := newProgram(reg.MustSource(shader.FullscreenVert), reg.MustSource(shader.BlurFrag))
	if err != nil {
		gl.DeleteProgram(bp)
		return fmt.Errorf("blur program: %w", err)
	}
	gl.DeleteProgram(pp.brightProg)
	gl.DeleteProgram(pp.blurProg)
	pp.brightProg = bp
	pp.blurProg = blp
	pp.resolveBloomUniforms()
	return nil
}

// ── Bloom ─────────────────────────────────────────────────────────────────────

// EnableBloom links the bright-pass and blur programs, and creates the
// half-resolution ping-pong FBOs used for the bloom effect.
func (pp *PostProcessFBO) EnableBloom() error {
	if pp.brightProg != 0 {
		return nil // already enabled
	}

	bp, err := newProgram(pp.reg.MustSource(shader.FullscreenVert), pp.reg.MustSource(shader.BrightFrag))
	if err != nil {
		return fmt.Errorf("bright-pass program: %w", err)
	}
	pp.brightProg = bp

	blp, err := newProgram(pp.reg.MustSource(shader.FullscreenVert), pp.reg.MustSource(shader.BlurFrag))
	if err != nil {
		gl.DeleteProgram(bp)
		pp.brightProg = 0
		return fmt.Errorf("blur program: %w", err)
	}
	pp.blurProg = blp
	pp.resolveBloomUniforms()

	// Half-resolution bloom FBOs
	pp.bloomW = pp.Width / 2
	if pp.bloomW < 1 {
		pp.bloomW = 1
	}
	pp.bloomH = pp.Height / 2
	if pp.bloomH < 1 {
		pp.bloomH = 1
	}
	pp.allocBloomFBOs()

	pp.BloomEnabled = true
	pp.BloomThreshold = 1.0 // only HDR-bright pixels
	pp.BloomStrength = 0.6
	pp.BloomPasses = 4 // 4 H+V pairs = decent soft glow

	return nil
}

func (pp *PostProcessFBO) resolveBloomUniforms() {
	pp.brightThreshLoc = gl.GetUniformLocation(pp.brightProg, gl.Str("threshold\x00"))
	gl.UseProgram(pp.brightProg)
	gl.Uniform1i(gl.GetUniformLocation(pp.brightProg, gl.Str("hdrBuffer\x00")), 0)

	pp.blurTexLoc = gl.GetUniformLocation(pp.blurProg, gl.Str("blurTex\x00"))
	pp.blurDirLoc = gl.GetUniformLocation(pp.blurProg, gl.Str("texelDir\x00"))
	gl.UseProgram(pp.blurProg)
	gl.Uniform1i(pp.blurTexLoc, 0)
}

// allocBloomFBOs creates the two ping-pong colour-only FBOs for bloom.
func (pp *PostProcessFBO) allocBloomFBOs() {
	for i := 0; i < 2; i++ {
		gl.GenTextures(1, &pp.bloomTex[i])
		gl.BindTexture(gl.TEXTURE_2D, pp.bloomTex[i])
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA16F,
			pp.bloomW, pp.bloomH, 0, gl.RGBA, gl.HALF_FLOAT, nil)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
		gl.BindTexture(gl.TEXTURE_2D, 0)

		gl.GenFramebuffers(1, &pp.bloomFBO[i])
		gl.BindFramebuffer(gl.FRAMEBUFFER, pp.bloomFBO[i])
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0,
			gl.TEXTURE_2D, pp.bloomTex[i], 0)
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	}
}

// freeBloomFBOs deletes the bloom ping-pong textures and FBOs.
func (pp *PostProcessFBO) freeBloomFBOs() {
	for i := 0; i < 2; i++ {
		if pp.bloomFBO[i] != 0 {
			gl.DeleteFramebuffers(1, &pp.bloomFBO[i])
			pp.bloomFBO[i] = 0
		}
		if pp.bloomTex[i] != 0 {
			gl.DeleteTextures(1, &pp.bloomTex[i])
			pp.bloomTex[i] = 0
		}
	}
}

// ── Main FBO lifecycle ────────────────────────────────────────────────────────

func (pp *PostProcessFBO) allocFBO(width, height int) error {
	pp.Width = int32(width)
	pp.Height = int32(height)

	gl.GenTextures(1, &pp.ColorTex)
	gl.BindTexture(gl.TEXTURE_2D, pp.ColorTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA16F,
		int32(width), int32(height), 0, gl.RGBA, gl.HALF_FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	// Depth as a sampleable texture (required by SSAO pass)
	gl.GenTextures(1, &pp.DepthTex)
	gl.BindTexture(gl.TEXTURE_2D, pp.DepthTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT32F,
		int32(width), int32(height), 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.GenFramebuffers(1, &pp.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, pp.FBO)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0,
		gl.TEXTURE_2D, pp.ColorTex, 0)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT,
		gl.TEXTURE_2D, pp.DepthTex, 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("HDR FBO incomplete: status=0x%X", status)
	}
	return nil
}

func (pp *PostProcessFBO) freeFBO() {
	if pp.FBO != 0 {
		gl.DeleteFramebuffers(1, &pp.FBO)
		pp.FBO = 0
	}
	if pp.ColorTex != 0 {
		gl.DeleteTextures(1, &pp.ColorTex)
		pp.ColorTex = 0
	}
	if pp.DepthTex != 0 {
		gl.DeleteTextures(1, &pp.DepthTex)
		pp.DepthTex = 0
	}
}

// Resize recreates the main HDR FBO and (if bloom is active) the bloom FBOs
// at the new pixel dimensions.
func (pp *PostProcessFBO) Resize(width, height int) error {
	pp.freeFBO()
	err := pp.allocFBO(width, height)

	if pp.BloomEnabled {
		pp.freeBloomFBOs()
		pp.bloomW = int32(width) / 2
		if pp.bloomW < 1 {
			pp.bloomW = 1
		}
		pp.bloomH = int32(height) / 2
		if pp.bloomH < 1 {
			pp.bloomH = 1
		}
		pp.allocBloomFBOs()
	}
	return err
}

// Destroy frees all GPU resources owned by this object.
func (pp *PostProcessFBO) Destroy() {
	pp.freeFBO()
	pp.freeBloomFBOs()
	if pp.brightProg != 0 {
		gl.DeleteProgram(pp.brightProg)
		pp.brightProg = 0
	}
	if pp.blurProg != 0 {
		gl.DeleteProgram(pp.blurProg)
		pp.blurProg = 0
	}
	if pp.prog != 0 {
		gl.DeleteProgram(pp.prog)
		pp.prog = 0
	}
	if pp.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &pp.quadVAO)
		pp.quadVAO = 0
	}
}

// ── Blit ──────────────────────────────────────────────────────────────────────

// Blit resolves the HDR FBO to the currently bound framebuffer (FBO 0).
// When bloom is enabled it runs: bright-pass → ping-pong blur → composite.
// aoTex = SSAO blur texture (0 = disabled), aoStrength = blend factor [0,1].
func (pp *PostProcessFBO) Blit(aoTex uint32, aoStrength float32) {
	gl.Disable(gl.DEPTH_TEST)
	gl.BindVertexArray(pp.quadVAO)

	if pp.BloomEnabled && pp.brightProg != 0 {
		// ── Step 1: bright-pass → bloomFBO[0] ─────────────────────────────
		gl.BindFramebuffer(gl.FRAMEBUFFER, pp.bloomFBO[0])
		gl.Viewport(0, 0, pp.bloomW, pp.bloomH)
		gl.UseProgram(pp.brightProg)
		gl.Uniform1f(pp.brightThreshLoc, pp.BloomThreshold)
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, pp.ColorTex)
		gl.DrawArrays(gl.TRIANGLES, 0, 3)

		// ── Step 2: ping-pong Gaussian blur ───────────────────────────────
		// Trace: bright-pass is in bloomTex[0].
		// Each pair does H (src→dst) then V (dst→src), so after BloomPasses
		// pairs the result always ends up back in bloomTex[0].
		src, dst := 0, 1
		gl.UseProgram(pp.blurProg)
		for i := 0; i < pp.BloomPasses*2; i++ {
			gl.BindFramebuffer(gl.FRAMEBUFFER, pp.bloomFBO[dst])
			if i%2 == 0 { // horizontal
				gl.Uniform2f(pp.blurDirLoc, 1.0/float32(pp.bloomW), 0)
			} else { // vertical
				gl.Uniform2f(pp.blurDirLoc, 0, 1.0/float32(pp.bloomH))
			}
			gl.BindTexture(gl.TEXTURE_2D, pp.bloomTex[src])
			gl.DrawArrays(gl.TRIANGLES, 0, 3)
			src, dst = dst, src
		}
		// After an even number of total iterations the result is in bloomTex[0].
		// (each pair restores src=0; BloomPasses pairs = BloomPasses*2 iters)

		// ── Step 3: composite → default FBO ───────────────────────────────
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.Viewport(0, 0, pp.Width, pp.Height)
		gl.UseProgram(pp.prog)
		gl.Uniform1f(pp.expLoc, pp.Exposure)
		gl.Uniform1f(pp.bloomStrLoc, pp.BloomStrength)
		gl.Uniform1i(pp.hasBloomLoc, 1)
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, pp.ColorTex)
		gl.ActiveTexture(gl.TEXTURE1)
		gl.BindTexture(gl.TEXTURE_2D, pp.bloomTex[0])
		if aoTex != 0 {
			gl.ActiveTexture(gl.TEXTURE2)
			gl.BindTexture(gl.TEXTURE_2D, aoTex)
			gl.Uniform1i(pp.hasAOLoc, 1)
			gl.Uniform1f(pp.aoStrLoc, aoStrength)
		} else {
			gl.Uniform1i(pp.hasAOLoc, 0)
		}
		gl.DrawArrays(gl.TRIANGLES, 0, 3)

	} else {
		// ── No bloom: just tone-map ────────────────────────────────────────
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.Viewport(0, 0, pp.Width, pp.Height)
		gl.UseProgram(pp.prog)
		gl.Uniform1f(pp.expLoc, pp.Exposure)
		gl.Uniform1i(pp.hasBloomLoc, 0)
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, pp.ColorTex)
		if aoTex != 0 {
			gl.ActiveTexture(gl.TEXTURE2)
			gl.BindTexture(gl.TEXTURE_2D, aoTex)
			gl.Uniform1i(pp.hasAOLoc, 1)
			gl.Uniform1f(pp.aoStrLoc, aoStrength)
		} else {
			gl.Uniform1i(pp.hasAOLoc, 0)
		}
		gl.DrawArrays(gl.TRIANGLES, 0, 3)
	}

	gl.BindVertexArray(0)
	gl.Enable(gl.DEPTH_TEST)
}
