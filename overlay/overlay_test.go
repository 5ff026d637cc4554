package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenelab/core"
)

type recordedText struct {
	text  string
	x, y  float32
	scale float32
	color core.Color
}

type recordedRect struct {
	x, y, w, h float32
	color      core.Color
}

// fakeSurface records draw calls so layout can be asserted without GL.
type fakeSurface struct {
	texts []recordedText
	rects []recordedRect
}

func (f *fakeSurface) DrawText(text string, x, y, scale float32, color core.Color) {
	f.texts = append(f.texts, recordedText{text: text, x: x, y: y, scale: scale, color: color})
}

func (f *fakeSurface) DrawRect(x, y, w, h float32, color core.Color) {
	f.rects = append(f.rects, recordedRect{x: x, y: y, w: w, h: h, color: color})
}

func TestPanelAnchoredTopRight(t *testing.T) {
	p := NewPanel("flight", TopRight)
	p.AddLine("speed %d", 123)
	p.AddLine("alt %d", 4500)

	s := &fakeSurface{}
	p.Draw(s, 800, 600)

	require.Len(t, s.rects, 1)
	require.Len(t, s.texts, 3)

	// Widest line is "speed 123" (9 glyphs × 8 px), plus padding both sides.
	bg := s.rects[0]
	assert.InDelta(t, 72+2*padX, bg.w, 0.01)
	assert.InDelta(t, 800-margin-bg.w, bg.x, 0.01)
	assert.InDelta(t, margin, bg.y, 0.01)

	// Title first, tinted, at the padded origin; body lines below it.
	assert.Equal(t, "flight", s.texts[0].text)
	assert.Equal(t, titleTint, s.texts[0].color)
	assert.InDelta(t, bg.x+padX, s.texts[0].x, 0.01)
	assert.InDelta(t, bg.y+padY, s.texts[0].y, 0.01)
	assert.Equal(t, "speed 123", s.texts[1].text)
	assert.Equal(t, "alt 4500", s.texts[2].text)
	assert.Greater(t, s.texts[1].y, s.texts[0].y)
	assert.Greater(t, s.texts[2].y, s.texts[1].y)
}

func TestPanelClearResetsLines(t *testing.T) {
	p := NewPanel("debug", TopLeft)
	p.AddLine("fps %d", 60)
	p.Clear()
	require.Empty(t, p.Lines())

	s := &fakeSurface{}
	p.Draw(s, 800, 600)

	// Title alone still draws.
	require.Len(t, s.texts, 1)
	assert.Equal(t, "debug", s.texts[0].text)
}

func TestPanelEmptyDrawsNothing(t *testing.T) {
	p := NewPanel("", TopLeft)
	s := &fakeSurface{}
	p.Draw(s, 800, 600)
	assert.Empty(t, s.rects)
	assert.Empty(t, s.texts)
}

func TestPanelBottomAnchorsClampToEdge(t *testing.T) {
	p := NewPanel("t", BottomRight)
	p.AddLine("x")

	s := &fakeSurface{}
	p.Draw(s, 640, 480)

	require.Len(t, s.rects, 1)
	bg := s.rects[0]
	assert.InDelta(t, 640-margin, bg.x+bg.w, 0.01)
	assert.InDelta(t, 480-margin, bg.y+bg.h, 0.01)
}

func TestLoadingBarClampsProgress(t *testing.T) {
	b := &LoadingBar{Progress: 2.5}
	s := &fakeSurface{}
	b.Draw(s, 800, 600)

	// Background plus a fill clamped to the full inner width.
	require.Len(t, s.rects, 2)
	assert.InDelta(t, 240, s.rects[0].w, 0.01)
	assert.InDelta(t, 236, s.rects[1].w, 0.01)

	s = &fakeSurface{}
	b.Progress = -1
	b.Draw(s, 800, 600)

	// No fill rect at zero progress.
	require.Len(t, s.rects, 1)
}

func TestLoadingBarLabelAboveBar(t *testing.T) {
	b := &LoadingBar{Label: "loading", Progress: 0.5, Anchor: BottomLeft}
	s := &fakeSurface{}
	b.Draw(s, 800, 600)

	require.Len(t, s.texts, 1)
	require.Len(t, s.rects, 2)
	assert.Equal(t, "loading", s.texts[0].text)
	assert.InDelta(t, margin, s.texts[0].x, 0.01)
	assert.Greater(t, s.rects[0].y, s.texts[0].y)

	// Half progress fills half the inner width.
	assert.InDelta(t, (240-4)*0.5, s.rects[1].w, 0.01)
}

func TestScoreboardLines(t *testing.T) {
	sb := &Scoreboard{Score: 1230, Lives: 3, Wave: 5, Anchor: TopLeft}
	s := &fakeSurface{}
	sb.Draw(s, 800, 600)

	require.Len(t, s.rects, 1)
	require.Len(t, s.texts, 3)
	assert.Equal(t, "score 001230", s.texts[0].text)
	assert.Equal(t, "lives 3", s.texts[1].text)
	assert.Equal(t, "wave  5", s.texts[2].text)
}

func TestHintBarCentersText(t *testing.T) {
	hb := &HintBar{Text: "1-5 scenes  esc quit"}
	s := &fakeSurface{}
	hb.Draw(s, 800, 600)

	require.Len(t, s.rects, 1)
	require.Len(t, s.texts, 1)

	strip := s.rects[0]
	assert.InDelta(t, 0, strip.x, 0.01)
	assert.InDelta(t, 800, strip.w, 0.01)
	assert.InDelta(t, 600, strip.y+strip.h, 0.01)

	// 20 glyphs × 8 px centered in 800.
	assert.InDelta(t, (800-160)/2, s.texts[0].x, 0.01)
}

func TestHintBarEmptyDrawsNothing(t *testing.T) {
	hb := &HintBar{}
	s := &fakeSurface{}
	hb.Draw(s, 800, 600)
	assert.Empty(t, s.rects)
	assert.Empty(t, s.texts)
}
