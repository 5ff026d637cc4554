package lotto

import (
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenelab/config"
	"scenelab/logx"
	"scenelab/lottery"
	"scenelab/scene"
	"scenelab/scenes"
)

// bareLotto wires the drum and crowd without a window or GL context.
func bareLotto(t *testing.T) *Lotto {
	t.Helper()
	l := New()
	l.log = logx.Discard()
	l.rng = rand.New(rand.NewSource(1))
	l.spin = 14
	l.ctx = &scenes.Context{Config: config.Default()}
	l.scene = scene.NewScene()
	l.buildDrum()
	l.spawnBalls(20)
	return l
}

func TestDrawSequenceOrdersMainThenBonus(t *testing.T) {
	d := lottery.DemoDraw()
	seq := drawSequence(d)
	assert.Equal(t, d.Numbers[:], seq[:6])
	assert.Equal(t, d.Bonus, seq[6])
}

func TestSpawnBallsPopulatesDrum(t *testing.T) {
	l := bareLotto(t)
	require.Len(t, l.balls, 20)
	// 20 balls plus the floor and four wall planes.
	assert.Equal(t, 25, l.world.Count())
	for _, b := range l.balls {
		require.NotNil(t, l.world.Body(b.body))
		assert.False(t, b.racked)
	}
}

func TestEnsureBallsAddsMissingDrawNumbers(t *testing.T) {
	l := bareLotto(t)
	d := lottery.DemoDraw() // 23, 31, 38, 44 are beyond the 20-ball crowd
	l.ensureBalls(d)

	for _, n := range drawSequence(d) {
		require.NotNil(t, l.byNum[n], "ball %d must exist", n)
	}
	// Re-running adds nothing.
	before := len(l.balls)
	l.ensureBalls(d)
	assert.Equal(t, before, len(l.balls))
}

func TestPullNextRacksBallsInDrawOrder(t *testing.T) {
	l := bareLotto(t)
	l.draw = lottery.DemoDraw()
	l.haveDraw = true
	l.ensureBalls(l.draw)

	seq := drawSequence(l.draw)
	for i := 0; i < drawCount; i++ {
		l.pullNext()
		b := l.byNum[seq[i]]
		require.True(t, b.racked, "ball %d racked after pull %d", seq[i], i)
		assert.Zero(t, b.body, "racked ball leaves the physics world")
	}
	assert.Equal(t, drawCount, l.drawIndex)
	assert.Len(t, l.flights, drawCount)
}

func TestPullNextWithoutDrawIsANoop(t *testing.T) {
	l := bareLotto(t)
	l.pullNext()
	assert.Zero(t, l.drawIndex)
	assert.Empty(t, l.flights)
}

func TestReturnBallsRefillsDrum(t *testing.T) {
	l := bareLotto(t)
	l.draw = lottery.DemoDraw()
	l.haveDraw = true
	l.ensureBalls(l.draw)
	for i := 0; i < drawCount; i++ {
		l.pullNext()
	}
	planesAndBalls := l.world.Count()

	l.returnBalls()

	assert.Empty(t, l.flights)
	assert.Zero(t, l.drawIndex)
	for _, b := range l.balls {
		assert.False(t, b.racked)
		require.NotNil(t, l.world.Body(b.body))
	}
	assert.Equal(t, planesAndBalls+drawCount, l.world.Count())
}

func TestStirKicksTumblingBalls(t *testing.T) {
	l := bareLotto(t)
	l.stir(stirInterval + 0.01)

	moving := 0
	for _, b := range l.balls {
		if l.world.Body(b.body).LinVel.LengthSqr() > 0 {
			moving++
		}
	}
	assert.Equal(t, len(l.balls), moving, "every ball gets a kick")
}

func TestBallsStayInsideDrum(t *testing.T) {
	l := bareLotto(t)
	for i := 0; i < 900; i++ {
		if i%60 == 0 {
			l.stir(stirInterval + 0.01)
		}
		l.world.Step(1.0 / 120.0)
	}
	for _, b := range l.balls {
		pos := l.world.Body(b.body).Position
		assert.Greater(t, pos.Y, float32(-0.1), "ball %d under the floor", b.num)
		assert.Less(t, pos.Length(), float32(drumRadius*3), "ball %d escaped", b.num)
	}
}

func TestDecadeColorBands(t *testing.T) {
	cases := []struct {
		n    int
		want color.RGBA
	}{
		{1, decadeColor(9)},
		{10, decadeColor(19)},
		{20, decadeColor(29)},
		{30, decadeColor(39)},
		{40, decadeColor(49)},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, decadeColor(tc.n))
	}
	assert.NotEqual(t, decadeColor(5), decadeColor(15))
}

func TestRackSlotSeparatesBonus(t *testing.T) {
	for i := 0; i < 5; i++ {
		gap := rackSlot(i + 1).X - rackSlot(i).X
		assert.InDelta(t, rackSpacing, gap, 1e-4)
	}
	bonusGapGot := rackSlot(6).X - rackSlot(5).X
	assert.Greater(t, bonusGapGot, float32(rackSpacing), "bonus ball sits apart")
}

func TestBallImageUsesDecadeBackground(t *testing.T) {
	img := ballImage(23)
	bg := decadeColor(23)
	assert.Equal(t, bg, img.RGBAAt(1, 1), "corner keeps the band color")
}
