package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"scenelab/core"
	"scenelab/shader"
)

// Font atlas geometry: 96 printable ASCII glyphs (32..127) packed 16 per row
// into a 128×48 single-channel texture.
const (
	glyphPx     = 8
	atlasCols   = 16
	atlasRows   = 6
	atlasW      = atlasCols * glyphPx
	atlasH      = atlasRows * glyphPx
	lineAdvance = 10 // pixels between lines at scale 1
)

// TextRenderer draws pixel-space text and solid rectangles on top of the
// rendered frame. Glyphs come from the built-in 8×8 bitmap font uploaded once
// as an alpha atlas; rectangles reuse the same program with useTex=false.
// It is created lazily by Renderer.DrawText / Renderer.DrawRect on first use.
type TextRenderer struct {
	prog    uint32
	vao     uint32
	vbo     uint32
	fontTex uint32

	screenSizeLoc int32
	tintLoc       int32
	useTexLoc     int32
	fontTexLoc    int32

	vboCap int // current VBO capacity in vertices
}

// newTextRenderer links the overlay program from the registry, creates the
// dynamic quad VAO/VBO, and uploads the font atlas.
func newTextRenderer(reg *shader.Registry) (*TextRenderer, error) {
	prog, err := newProgram(reg.MustSource(shader.TextVert), reg.MustSource(shader.TextFrag))
	if err != nil {
		return nil, fmt.Errorf("text program: %w", err)
	}

	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.GenBuffers(1, &vbo)

	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)

	const stride = int32(4 * 4) // pos(2) + uv(2) = 4 float32 × 4 bytes
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, stride, gl.PtrOffset(0)) // pos (pixels)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, stride, gl.PtrOffset(8)) // uv
	gl.BindVertexArray(0)

	tr := &TextRenderer{
		prog: prog,
		vao:  vao,
		vbo:  vbo,
	}
	tr.resolveUniforms()
	tr.uploadFontAtlas()
	return tr, nil
}

// relink rebuilds the overlay program from current registry sources,
// keeping the old program when the new one fails to link.
func (tr *TextRenderer) relink(reg *shader.Registry) error {
	prog, err := newProgram(reg.MustSource(shader.TextVert), reg.MustSource(shader.TextFrag))
	if err != nil {
		return fmt.Errorf("text program: %w", err)
	}
	gl.DeleteProgram(tr.prog)
	tr.prog = prog
	tr.resolveUniforms()
	return nil
}

func (tr *TextRenderer) resolveUniforms() {
	tr.screenSizeLoc = gl.GetUniformLocation(tr.prog, gl.Str("screenSize\x00"))
	tr.tintLoc = gl.GetUniformLocation(tr.prog, gl.Str("tint\x00"))
	tr.useTexLoc = gl.GetUniformLocation(tr.prog, gl.Str("useTex\x00"))
	tr.fontTexLoc = gl.GetUniformLocation(tr.prog, gl.Str("fontTex\x00"))
	gl.UseProgram(tr.prog)
	gl.Uniform1i(tr.fontTexLoc, 0)
}

// uploadFontAtlas rasterizes the bitmap font into a 128×48 R8 texture.
// Texel row 0 is the top row of the first glyph line, matching the
// top-left pixel origin used by the vertex shader.
func (tr *TextRenderer) uploadFontAtlas() {
	pixels := make([]uint8, atlasW*atlasH)
	for g := range fontBitmap {
		gx := (g % atlasCols) * glyphPx
		gy := (g / atlasCols) * glyphPx
		for row := 0; row < glyphPx; row++ {
			bits := fontBitmap[g][row]
			for col := 0; col < glyphPx; col++ {
				if bits&(1<<col) != 0 {
					pixels[(gy+row)*atlasW+gx+col] = 0xFF
				}
			}
		}
	}

	gl.GenTextures(1, &tr.fontTex)
	gl.BindTexture(gl.TEXTURE_2D, tr.fontTex)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.R8, atlasW, atlasH, 0,
		gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// draw renders text with its top-left corner at pixel position (x, y).
// '\n' starts a new line; runes outside the atlas render as '?'.
func (tr *TextRenderer) draw(text string, x, y, scale float32, color core.Color, screenW, screenH float32) {
	if text == "" {
		return
	}

	buf := make([]float32, 0, len(text)*6*4)
	penX, penY := x, y
	for _, ch := range text {
		if ch == '\n' {
			penX = x
			penY += lineAdvance * scale
			continue
		}
		if ch < 32 || ch > 126 {
			ch = '?'
		}
		if ch != ' ' {
			gi := int(ch) - 32
			u0 := float32((gi%atlasCols)*glyphPx) / atlasW
			v0 := float32((gi/atlasCols)*glyphPx) / atlasH
			u1 := u0 + float32(glyphPx)/atlasW
			v1 := v0 + float32(glyphPx)/atlasH
			buf = appendQuad(buf, penX, penY, glyphPx*scale, glyphPx*scale, u0, v0, u1, v1)
		}
		penX += glyphPx * scale
	}
	if len(buf) == 0 {
		return
	}

	tr.submit(buf, true, color, screenW, screenH)
}

// drawRect renders a solid rectangle with its top-left corner at (x, y).
func (tr *TextRenderer) drawRect(x, y, w, h float32, color core.Color, screenW, screenH float32) {
	if w <= 0 || h <= 0 {
		return
	}
	buf := appendQuad(make([]float32, 0, 6*4), x, y, w, h, 0, 0, 0, 0)
	tr.submit(buf, false, color, screenW, screenH)
}

// appendQuad emits two triangles covering the pixel rect (x, y, w, h).
func appendQuad(buf []float32, x, y, w, h, u0, v0, u1, v1 float32) []float32 {
	return append(buf,
		// Triangle 1: tl, tr, br
		x, y, u0, v0,
		x+w, y, u1, v0,
		x+w, y+h, u1, v1,
		// Triangle 2: tl, br, bl
		x, y, u0, v0,
		x+w, y+h, u1, v1,
		x, y+h, u0, v1,
	)
}

// submit uploads the quad buffer and draws it with overlay state:
// no depth test, standard alpha blending.
func (tr *TextRenderer) submit(buf []float32, useTex bool, color core.Color, screenW, screenH float32) {
	vertCount := len(buf) / 4

	// Upload to GPU (grow VBO only when needed)
	gl.BindBuffer(gl.ARRAY_BUFFER, tr.vbo)
	byteSize := len(buf) * 4
	if vertCount > tr.vboCap {
		gl.BufferData(gl.ARRAY_BUFFER, byteSize, gl.Ptr(buf), gl.DYNAMIC_DRAW)
		tr.vboCap = vertCount
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, byteSize, gl.Ptr(buf))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	gl.UseProgram(tr.prog)
	gl.Uniform2f(tr.screenSizeLoc, screenW, screenH)
	gl.Uniform4f(tr.tintLoc, color.R, color.G, color.B, color.A)
	if useTex {
		gl.Uniform1i(tr.useTexLoc, 1)
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, tr.fontTex)
	} else {
		gl.Uniform1i(tr.useTexLoc, 0)
	}

	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	gl.BindVertexArray(tr.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(vertCount))
	gl.BindVertexArray(0)

	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
}

func (tr *TextRenderer) destroy() {
	gl.DeleteVertexArrays(1, &tr.vao)
	gl.DeleteBuffers(1, &tr.vbo)
	gl.DeleteTextures(1, &tr.fontTex)
	gl.DeleteProgram(tr.prog)
}

// fontBitmap holds the classic public-domain 8×8 bitmap font for ASCII 32..127.
// Each glyph is 8 row bytes top to bottom; bit N of a row is the pixel at
// column N, so bit 0 is the leftmost pixel.
var fontBitmap = [96][8]uint8{
	{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, // space
	{0x18, 0x3C, 0x3C, 0x18, 0x18, 0x00, 0x18, 0x00}, // !
	{0x36, 0x36, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, // "
	{0x36, 0x36, 0x7F, 0x36, 0x7F, 0x36, 0x36, 0x00}, // #
	{0x0C, 0x3E, 0x03, 0x1E, 0x30, 0x1F, 0x0C, 0x00}, // $
	{0x00, 0x63, 0x33, 0x18, 0x0C, 0x66, 0x63, 0x00}, // %
	{0x1C, 0x36, 0x1C, 0x6E, 0x3B, 0x33, 0x6E, 0x00}, // &
	{0x06, 0x06, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00}, // '
	{0x18, 0x0C, 0x06, 0x06, 0x06, 0x0C, 0x18, 0x00}, // (
	{0x06, 0x0C, 0x18, 0x18, 0x18, 0x0C, 0x06, 0x00}, // )
	{0x00, 0x66, 0x3C, 0xFF, 0x3C, 0x66, 0x00, 0x00}, // *
	{0x00, 0x0C, 0x0C, 0x3F, 0x0C, 0x0C, 0x00, 0x00}, // +
	{0x00, 0x00, 0x00, 0x00, 0x00, 0x0C, 0x0C, 0x06}, // ,
	{0x00, 0x00, 0x00, 0x3F, 0x00, 0x00, 0x00, 0x00}, // -
	{0x00, 0x00, 0x00, 0x00, 0x00, 0x0C, 0x0C, 0x00}, // .
	{0x60, 0x30, 0x18, 0x0C, 0x06, 0x03, 0x01, 0x00}, // /
	{0x3E, 0x63, 0x73, 0x7B, 0x6F, 0x67, 0x3E, 0x00}, // 0
	{0x0C, 0x0E, 0x0C, 0x0C, 0x0C, 0x0C, 0x3F, 0x00}, // 1
	{0x1E, 0x33, 0x30, 0x1C, 0x06, 0x33, 0x3F, 0x00}, // 2
	{0x1E, 0x33, 0x30, 0x1C, 0x30, 0x33, 0x1E, 0x00}, // 3
	{0x38, 0x3C, 0x36, 0x33, 0x7F, 0x30, 0x78, 0x00}, // 4
	{0x3F, 0x03, 0x1F, 0x30, 0x30, 0x33, 0x1E, 0x00}, // 5
	{0x1C, 0x06, 0x03, 0x1F, 0x33, 0x33, 0x1E, 0x00}, // 6
	{0x3F, 0x33, 0x30, 0x18, 0x0C, 0x0C, 0x0C, 0x00}, // 7
	{0x1E, 0x33, 0x33, 0x1E, 0x33, 0x33, 0x1E, 0x00}, // 8
	{0x1E, 0x33, 0x33, 0x3E, 0x30, 0x18, 0x0E, 0x00}, // 9
	{0x00, 0x0C, 0x0C, 0x00, 0x00, 0x0C, 0x0C, 0x00}, // :
	{0x00, 0x0C, 0x0C, 0x00, 0x00, 0x0C, 0x0C, 0x06}, // ;
	{0x18, 0x0C, 0x06, 0x03, 0x06, 0x0C, 0x18, 0x00}, // <
	{0x00, 0x00, 0x3F, 0x00, 0x00, 0x3F, 0x00, 0x00}, // =
	{0x06, 0x0C, 0x18, 0x30, 0x18, 0x0C, 0x06, 0x00}, // >
	{0x1E, 0x33, 0x30, 0x18, 0x0C, 0x00, 0x0C, 0x00}, // ?
	{0x3E, 0x63, 0x7B, 0x7B, 0x7B, 0x03, 0x1E, 0x00}, // @
	{0x0C, 0x1E, 0x33, 0x33, 0x3F, 0x33, 0x33, 0x00}, // A
	{0x3F, 0x66, 0x66, 0x3E, 0x66, 0x66, 0x3F, 0x00}, // B
	{0x3C, 0x66, 0x03, 0x03, 0x03, 0x66, 0x3C, 0x00}, // C
	{0x1F, 0x36, 0x66, 0x66, 0x66, 0x36, 0x1F, 0x00}, // D
	{0x7F, 0x46, 0x16, 0x1E, 0x16, 0x46, 0x7F, 0x00}, // E
	{0x7F, 0x46, 0x16, 0x1E, 0x16, 0x06, 0x0F, 0x00}, // F
	{0x3C, 0x66, 0x03, 0x03, 0x73, 0x66, 0x7C, 0x00}, // G
	{0x33, 0x33, 0x33, 0x3F, 0x33, 0x33, 0x33, 0x00}, // H
	{0x1E, 0x0C, 0x0C, 0x0C, 0x0C, 0x0C, 0x1E, 0x00}, // I
	{0x78, 0x30, 0x30, 0x30, 0x33, 0x33, 0x1E, 0x00}, // J
	{0x67, 0x66, 0x36, 0x1E, 0x36, 0x66, 0x67, 0x00}, // K
	{0x0F, 0x06, 0x06, 0x06, 0x46, 0x66, 0x7F, 0x00}, // L
	{0x63, 0x77, 0x7F, 0x7F, 0x6B, 0x63, 0x63, 0x00}, // M
	{0x63, 0x67, 0x6F, 0x7B, 0x73, 0x63, 0x63, 0x00}, // N
	{0x1C, 0x36, 0x63, 0x63, 0x63, 0x36, 0x1C, 0x00}, // O
	{0x3F, 0x66, 0x66, 0x3E, 0x06, 0x06, 0x0F, 0x00}, // P
	{0x1E, 0x33, 0x33, 0x33, 0x3B, 0x1E, 0x38, 0x00}, // Q
	{0x3F, 0x66, 0x66, 0x3E, 0x36, 0x66, 0x67, 0x00}, // R
	{0x1E, 0x33, 0x07, 0x0E, 0x38, 0x33, 0x1E, 0x00}, // S
	{0x3F, 0x2D, 0x0C, 0x0C, 0x0C, 0x0C, 0x1E, 0x00}, // T
	{0x33, 0x33, 0x33, 0x33, 0x33, 0x33, 0x3F, 0x00}, // U
	{0x33, 0x33, 0x33, 0x33, 0x33, 0x1E, 0x0C, 0x00}, // V
	{0x63, 0x63, 0x63, 0x6B, 0x7F, 0x77, 0x63, 0x00}, // W
	{0x63, 0x63, 0x36, 0x1C, 0x1C, 0x36, 0x63, 0x00}, // X
	{0x33, 0x33, 0x33, 0x1E, 0x0C, 0x0C, 0x1E, 0x00}, // Y
	{0x7F, 0x63, 0x31, 0x18, 0x4C, 0x66, 0x7F, 0x00}, // Z
	{0x1E, 0x06, 0x06, 0x06, 0x06, 0x06, 0x1E, 0x00}, // [
	{0x03, 0x06, 0x0C, 0x18, 0x30, 0x60, 0x40, 0x00}, // \
	{0x1E, 0x18, 0x18, 0x18, 0x18, 0x18, 0x1E, 0x00}, // ]
	{0x08, 0x1C, 0x36, 0x63, 0x00, 0x00, 0x00, 0x00}, // ^
	{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xFF}, // _
	{0x0C, 0x0C, 0x18, 0x00, 0x00, 0x00, 0x00, 0x00}, // `
	{0x00, 0x00, 0x1E, 0x30, 0x3E, 0x33, 0x6E, 0x00}, // a
	{0x07, 0x06, 0x06, 0x3E, 0x66, 0x66, 0x3B, 0x00}, // b
	{0x00, 0x00, 0x1E, 0x33, 0x03, 0x33, 0x1E, 0x00}, // c
	{0x38, 0x30, 0x30, 0x3E, 0x33, 0x33, 0x6E, 0x00}, // d
	{0x00, 0x00, 0x1E, 0x33, 0x3F, 0x03, 0x1E, 0x00}, // e
	{0x1C, 0x36, 0x06, 0x0F, 0x06, 0x06, 0x0F, 0x00}, // f
	{0x00, 0x00, 0x6E, 0x33, 0x33, 0x3E, 0x30, 0x1F}, // g
	{0x07, 0x06, 0x36, 0x6E, 0x66, 0x66, 0x67, 0x00}, // h
	{0x0C, 0x00, 0x0E, 0x0C, 0x0C, 0x0C, 0x1E, 0x00}, // i
	{0x30, 0x00, 0x30, 0x30, 0x30, 0x33, 0x33, 0x1E}, // j
	{0x07, 0x06, 0x66, 0x36, 0x1E, 0x36, 0x67, 0x00}, // k
	{0x0E, 0x0C, 0x0C, 0x0C, 0x0C, 0x0C, 0x1E, 0x00}, // l
	{0x00, 0x00, 0x33, 0x7F, 0x7F, 0x6B, 0x63, 0x00}, // m
	{0x00, 0x00, 0x1F, 0x33, 0x33, 0x33, 0x33, 0x00}, // n
	{0x00, 0x00, 0x1E, 0x33, 0x33, 0x33, 0x1E, 0x00}, // o
	{0x00, 0x00, 0x3B, 0x66, 0x66, 0x3E, 0x06, 0x0F}, // p
	{0x00, 0x00, 0x6E, 0x33, 0x33, 0x3E, 0x30, 0x78}, // q
	{0x00, 0x00, 0x3B, 0x6E, 0x66, 0x06, 0x0F, 0x00}, // r
	{0x00, 0x00, 0x3E, 0x03, 0x1E, 0x30, 0x1F, 0x00}, // s
	{0x08, 0x0C, 0x3E, 0x0C, 0x0C, 0x2C, 0x18, 0x00}, // t
	{0x00, 0x00, 0x33, 0x33, 0x33, 0x33, 0x6E, 0x00}, // u
	{0x00, 0x00, 0x33, 0x33, 0x33, 0x1E, 0x0C, 0x00}, // v
	{0x00, 0x00, 0x63, 0x6B, 0x7F, 0x7F, 0x36, 0x00}, // w
	{0x00, 0x00, 0x63, 0x36, 0x1C, 0x36, 0x63, 0x00}, // x
	{0x00, 0x00, 0x33, 0x33, 0x33, 0x3E, 0x30, 0x1F}, // y
	{0x00, 0x00, 0x3F, 0x19, 0x0C, 0x26, 0x3F, 0x00}, // z
	{0x38, 0x0C, 0x0C, 0x07, 0x0C, 0x0C, 0x38, 0x00}, // {
	{0x18, 0x18, 0x18, 0x00, 0x18, 0x18, 0x18, 0x00}, // |
	{0x07, 0x0C, 0x0C, 0x38, 0x0C, 0x0C, 0x07, 0x00}, // }
	{0x6E, 0x3B, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, // ~
	{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, // DEL
}
