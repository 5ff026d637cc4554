// Package overlay draws the 2D HUD: titled panels, loading bars, the arcade
// scoreboard, and the scene-switch hint strip. Everything goes through the
// renderer's overlay queue, so components are plain structs with a Draw
// method and no GL state.
package overlay

import (
	"fmt"
	"unicode/utf8"

	"scenelab/core"
	"scenelab/math"
)

// Surface is the drawing target. *renderer.Engine satisfies it.
type Surface interface {
	DrawText(text string, x, y, scale float32, color core.Color)
	DrawRect(x, y, w, h float32, color core.Color)
}

// Anchor selects the screen corner a component is laid out against.
type Anchor uint8

const (
	TopLeft Anchor = iota
	TopRight
	BottomLeft
	BottomRight
)

// Pixel metrics shared by all components. Glyphs are 8 px wide and lines
// advance 10 px at scale 1, matching the renderer's font.
const (
	glyphW = 8
	lineH  = 10
	margin = 12
	padX   = 8
	padY   = 6
)

var (
	panelBG   = core.Color{R: 0.02, G: 0.02, B: 0.05, A: 0.55}
	titleTint = core.Color{R: 1, G: 0.85, B: 0.3, A: 1}
	textTint  = core.ColorWhite
	barBG     = core.Color{R: 0.1, G: 0.1, B: 0.12, A: 0.8}
	barFill   = core.Color{R: 0.25, G: 0.85, B: 0.45, A: 1}
	hintBG    = core.Color{R: 0, G: 0, B: 0, A: 0.45}
	hintTint  = core.Color{R: 0.9, G: 0.9, B: 0.9, A: 1}
)

// anchorOrigin returns the top-left pixel position for a w×h block anchored
// to the given corner with the standard margin.
func anchorOrigin(a Anchor, w, h, screenW, screenH float32) (float32, float32) {
	x, y := float32(margin), float32(margin)
	if a == TopRight || a == BottomRight {
		x = screenW - margin - w
	}
	if a == BottomLeft || a == BottomRight {
		y = screenH - margin - h
	}
	return x, y
}

// textWidth returns the pixel width of a single text line at the given scale.
func textWidth(s string, scale float32) float32 {
	return float32(utf8.RuneCountInString(s)) * glyphW * scale
}

// ── Panel ─────────────────────────────────────────────────────────────────────

// Panel is a titled block of text lines on a translucent background.
// Lines are rebuilt each frame: Clear, AddLine…, Draw.
type Panel struct {
	Title  string
	Anchor Anchor
	Scale  float32 // glyph scale; 0 means 1
	lines  []string
}

func NewPanel(title string, anchor Anchor) *Panel {
	return &Panel{Title: title, Anchor: anchor}
}

func (p *Panel) AddLine(format string, args ...interface{}) {
	p.lines = append(p.lines, fmt.Sprintf(format, args...))
}

func (p *Panel) Clear() {
	p.lines = p.lines[:0]
}

// Lines returns the current line contents.
func (p *Panel) Lines() []string {
	return p.lines
}

func (p *Panel) Draw(s Surface, screenW, screenH float32) {
	drawBlock(s, screenW, screenH, p.Anchor, p.Scale, p.Title, p.lines)
}

// drawBlock lays out a title + lines block and draws background, title, and
// body. Shared by Panel and Scoreboard.
func drawBlock(s Surface, screenW, screenH float32, anchor Anchor, scale float32, title string, lines []string) {
	if title == "" && len(lines) == 0 {
		return
	}
	if scale <= 0 {
		scale = 1
	}

	maxW := textWidth(title, scale)
	for _, line := range lines {
		if w := textWidth(line, scale); w > maxW {
			maxW = w
		}
	}

	titleH := float32(0)
	if title != "" {
		titleH = lineH*scale + 4
	}
	w := maxW + 2*padX
	h := 2*padY + titleH + float32(len(lines))*lineH*scale

	x, y := anchorOrigin(anchor, w, h, screenW, screenH)
	s.DrawRect(x, y, w, h, panelBG)

	tx, ty := x+padX, y+padY
	if title != "" {
		s.DrawText(title, tx, ty, scale, titleTint)
		ty += titleH
	}
	for _, line := range lines {
		s.DrawText(line, tx, ty, scale, textTint)
		ty += lineH * scale
	}
}

// ── Loading bar ───────────────────────────────────────────────────────────────

// LoadingBar shows labelled progress while assets stream in.
type LoadingBar struct {
	Label    string
	Progress float32 // 0..1, clamped on draw
	Width    float32 // bar width in pixels; 0 means 240
	Anchor   Anchor
	Scale    float32 // glyph scale; 0 means 1
}

func (b *LoadingBar) Draw(s Surface, screenW, screenH float32) {
	scale := b.Scale
	if scale <= 0 {
		scale = 1
	}
	barW := b.Width
	if barW <= 0 {
		barW = 240
	}
	barH := float32(14)
	labelH := float32(0)
	if b.Label != "" {
		labelH = lineH*scale + 2
	}

	w := barW
	if lw := textWidth(b.Label, scale); lw > w {
		w = lw
	}
	h := labelH + barH

	x, y := anchorOrigin(b.Anchor, w, h, screenW, screenH)
	if b.Label != "" {
		s.DrawText(b.Label, x, y, scale, textTint)
	}

	s.DrawRect(x, y+labelH, barW, barH, barBG)
	progress := math.Clamp01(b.Progress)
	if fill := (barW - 4) * progress; fill > 0 {
		s.DrawRect(x+2, y+labelH+2, fill, barH-4, barFill)
	}
}

// ── Scoreboard ────────────────────────────────────────────────────────────────

// Scoreboard is the arcade score block: score, lives, wave.
type Scoreboard struct {
	Score  int
	Lives  int
	Wave   int
	Anchor Anchor
	Scale  float32
}

func (sb *Scoreboard) Draw(s Surface, screenW, screenH float32) {
	lines := []string{
		fmt.Sprintf("score %06d", sb.Score),
		fmt.Sprintf("lives %d", sb.Lives),
		fmt.Sprintf("wave  %d", sb.Wave),
	}
	drawBlock(s, screenW, screenH, sb.Anchor, sb.Scale, "", lines)
}

// ── Hint bar ──────────────────────────────────────────────────────────────────

// HintBar is the one-line key help strip along the bottom edge.
type HintBar struct {
	Text  string
	Scale float32
}

func (hb *HintBar) Draw(s Surface, screenW, screenH float32) {
	if hb.Text == "" {
		return
	}
	scale := hb.Scale
	if scale <= 0 {
		scale = 1
	}
	stripH := lineH*scale + 2*padY
	s.DrawRect(0, screenH-stripH, screenW, stripH, hintBG)

	tw := textWidth(hb.Text, scale)
	tx := (screenW - tw) / 2
	if tx < margin {
		tx = margin
	}
	s.DrawText(hb.Text, tx, screenH-stripH+padY, scale, hintTint)
}
