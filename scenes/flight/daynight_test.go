package flight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaletteKeysOrdered(t *testing.T) {
	require.NotEmpty(t, palettes)
	assert.Zero(t, palettes[0].t, "first key anchors midnight")
	for i := 1; i < len(palettes); i++ {
		assert.Greater(t, palettes[i].t, palettes[i-1].t)
		assert.Less(t, palettes[i].t, float32(1))
	}
}

func TestSampleAtKeyReturnsKey(t *testing.T) {
	noon := samplePalette(0.5)
	assert.InDelta(t, 0.20, noon.zenith.R, 1e-5)
	assert.InDelta(t, 0.42, noon.zenith.G, 1e-5)
	assert.InDelta(t, 1.20, noon.sunIntensity, 1e-5)
}

func TestSampleBlendsBetweenKeys(t *testing.T) {
	// Halfway between midnight (0.00) and pre-dawn (0.20).
	p := samplePalette(0.1)
	assert.InDelta(t, (0.02+0.06)/2, p.zenith.R, 1e-4)
	assert.InDelta(t, (0.010+0.020)/2, p.fogDensity, 1e-4)
	assert.InDelta(t, (0.12+0.20)/2, p.sunIntensity, 1e-4)
}

func TestSampleWrapsPastLastKey(t *testing.T) {
	// 0.9 sits halfway between dusk (0.80) and midnight again (1.00).
	p := samplePalette(0.9)
	assert.InDelta(t, (0.020+0.010)/2, p.fogDensity, 1e-4)
	assert.InDelta(t, (0.25+0.12)/2, p.sunIntensity, 1e-4)
}

func TestDayNightUpdateWraps(t *testing.T) {
	dn := NewDayNight()
	dn.Time = 0.99
	dn.DayLength = 1

	dn.Update(0.02)
	assert.InDelta(t, 0.01, dn.Time, 1e-4)

	dn.Active = false
	dn.Update(10)
	assert.InDelta(t, 0.01, dn.Time, 1e-4, "paused cycle holds its time")
}

func TestSunDirection(t *testing.T) {
	noon := sunDirection(0.5)
	assert.Less(t, noon.Y, float32(0), "noon sun shines downward")
	assert.InDelta(t, 0, noon.X, 1e-5)

	midnight := sunDirection(0)
	assert.Greater(t, midnight.Y, float32(0), "midnight sun is below the horizon")

	morning := sunDirection(0.25)
	assert.Less(t, morning.X, float32(0))
}

func TestTimeOfDayStr(t *testing.T) {
	cases := []struct {
		time float32
		want string
	}{
		{0, "12:00 AM"},
		{0.25, "06:00 AM"},
		{0.5, "12:00 PM"},
		{0.75, "06:00 PM"},
	}
	for _, tc := range cases {
		dn := &DayNight{Time: tc.time}
		assert.Equal(t, tc.want, dn.TimeOfDayStr())
	}
}

func TestSpeedForThrottleBand(t *testing.T) {
	cruise := float32(22)
	assert.InDelta(t, cruise*0.45, speedFor(0, cruise), 1e-4)
	assert.InDelta(t, cruise*1.8, speedFor(1, cruise), 1e-4)
	assert.InDelta(t, cruise*1.8, speedFor(5, cruise), 1e-4, "throttle clamps")
	assert.Less(t, speedFor(0.3, cruise), speedFor(0.7, cruise))
}
