package flight

import (
	"fmt"

	"github.com/chewxy/math32"

	"scenelab/core"
	"scenelab/math"
	"scenelab/renderer"
	"scenelab/scene"
)

// dayPalette holds the sky and light values for one key time of day.
type dayPalette struct {
	t            float32    // clock time 0..1, 0 = midnight
	zenith       core.Color // sky overhead
	horizon      core.Color // sky at eye level
	ground       core.Color // sky below the horizon
	fogColor     core.Color // should match the horizon
	fogDensity   float32
	sunColor     core.Color
	sunIntensity float32
	ambient      core.Color
}

// palettes are the key sky states across one day, ordered by t and wrapping
// from the last entry back to the first.
var palettes = []dayPalette{
	{ // midnight
		t:            0.00,
		zenith:       core.Color{R: 0.02, G: 0.03, B: 0.10, A: 1},
		horizon:      core.Color{R: 0.04, G: 0.04, B: 0.08, A: 1},
		ground:       core.Color{R: 0.01, G: 0.01, B: 0.02, A: 1},
		fogColor:     core.Color{R: 0.03, G: 0.03, B: 0.06, A: 1},
		fogDensity:   0.010,
		sunColor:     core.Color{R: 0.40, G: 0.45, B: 0.65, A: 1}, // moonlight
		sunIntensity: 0.12,
		ambient:      core.Color{R: 0.03, G: 0.04, B: 0.09, A: 1},
	},
	{ // pre-dawn
		t:            0.20,
		zenith:       core.Color{R: 0.06, G: 0.08, B: 0.25, A: 1},
		horizon:      core.Color{R: 0.40, G: 0.18, B: 0.24, A: 1},
		ground:       core.Color{R: 0.03, G: 0.03, B: 0.04, A: 1},
		fogColor:     core.Color{R: 0.30, G: 0.15, B: 0.20, A: 1},
		fogDensity:   0.020,
		sunColor:     core.Color{R: 0.75, G: 0.42, B: 0.60, A: 1},
		sunIntensity: 0.20,
		ambient:      core.Color{R: 0.06, G: 0.07, B: 0.14, A: 1},
	},
	{ // sunrise
		t:            0.28,
		zenith:       core.Color{R: 0.12, G: 0.18, B: 0.55, A: 1},
		horizon:      core.Color{R: 0.88, G: 0.45, B: 0.22, A: 1},
		ground:       core.Color{R: 0.08, G: 0.06, B: 0.05, A: 1},
		fogColor:     core.Color{R: 0.75, G: 0.40, B: 0.20, A: 1},
		fogDensity:   0.015,
		sunColor:     core.Color{R: 1.00, G: 0.60, B: 0.28, A: 1},
		sunIntensity: 0.70,
		ambient:      core.Color{R: 0.09, G: 0.10, B: 0.17, A: 1},
	},
	{ // noon
		t:            0.50,
		zenith:       core.Color{R: 0.20, G: 0.42, B: 0.90, A: 1},
		horizon:      core.Color{R: 0.58, G: 0.75, B: 0.95, A: 1},
		ground:       core.Color{R: 0.12, G: 0.10, B: 0.08, A: 1},
		fogColor:     core.Color{R: 0.62, G: 0.78, B: 0.95, A: 1},
		fogDensity:   0.011,
		sunColor:     core.Color{R: 1.00, G: 0.98, B: 0.92, A: 1},
		sunIntensity: 1.20,
		ambient:      core.Color{R: 0.16, G: 0.18, B: 0.26, A: 1},
	},
	{ // golden hour
		t:            0.72,
		zenith:       core.Color{R: 0.14, G: 0.20, B: 0.60, A: 1},
		horizon:      core.Color{R: 0.90, G: 0.52, B: 0.18, A: 1},
		ground:       core.Color{R: 0.08, G: 0.07, B: 0.06, A: 1},
		fogColor:     core.Color{R: 0.85, G: 0.55, B: 0.25, A: 1},
		fogDensity:   0.018,
		sunColor:     core.Color{R: 1.00, G: 0.65, B: 0.25, A: 1},
		sunIntensity: 0.90,
		ambient:      core.Color{R: 0.10, G: 0.12, B: 0.20, A: 1},
	},
	{ // dusk
		t:            0.80,
		zenith:       core.Color{R: 0.08, G: 0.10, B: 0.28, A: 1},
		horizon:      core.Color{R: 0.50, G: 0.22, B: 0.28, A: 1},
		ground:       core.Color{R: 0.04, G: 0.03, B: 0.04, A: 1},
		fogColor:     core.Color{R: 0.35, G: 0.18, B: 0.22, A: 1},
		fogDensity:   0.020,
		sunColor:     core.Color{R: 0.70, G: 0.40, B: 0.55, A: 1},
		sunIntensity: 0.25,
		ambient:      core.Color{R: 0.06, G: 0.07, B: 0.14, A: 1},
	},
}

// DayNight animates the sky through a full day. Time is clock time in
// [0,1) with 0 at midnight, so 0.25 is 6 AM and 0.5 is noon.
type DayNight struct {
	Time      float32
	DayLength float32 // seconds for one full day
	Active    bool    // advance automatically when true
}

func NewDayNight() *DayNight {
	return &DayNight{
		Time:      0.35, // mid-morning
		DayLength: 120,
		Active:    true,
	}
}

func (dn *DayNight) Update(dt float32) {
	if !dn.Active {
		return
	}
	dn.Time += dt / dn.DayLength
	if dn.Time >= 1 {
		dn.Time -= 1
	}
}

// samplePalette interpolates the key palettes at clock time t.
func samplePalette(t float32) dayPalette {
	t -= math32.Floor(t)
	n := len(palettes)

	i := 0
	for k := range palettes {
		if palettes[k].t <= t {
			i = k
		}
	}
	a := palettes[i]
	b := palettes[(i+1)%n]
	span := b.t - a.t
	if span <= 0 {
		span += 1 // wrap segment back to the first key
	}
	frac := (t - a.t) / span

	return dayPalette{
		t:            t,
		zenith:       a.zenith.Lerp(b.zenith, frac),
		horizon:      a.horizon.Lerp(b.horizon, frac),
		ground:       a.ground.Lerp(b.ground, frac),
		fogColor:     a.fogColor.Lerp(b.fogColor, frac),
		fogDensity:   math.Lerp(a.fogDensity, b.fogDensity, frac),
		sunColor:     a.sunColor.Lerp(b.sunColor, frac),
		sunIntensity: math.Lerp(a.sunIntensity, b.sunIntensity, frac),
		ambient:      a.ambient.Lerp(b.ambient, frac),
	}
}

// sunDirection is the light's travel direction at clock time t. The sun
// arcs through the east-west plane with a slight southward tilt; at noon
// it points straight down.
func sunDirection(t float32) math.Vec3 {
	angle := (t - 0.5) * 2 * math.Pi
	return math.Vec3{
		X: math32.Sin(angle),
		Y: -math32.Cos(angle),
		Z: 0.35,
	}.Normalize()
}

// Apply pushes the current sky state to the renderer and scene. sun may be
// nil, in which case only the sky and fog are touched.
func (dn *DayNight) Apply(re *renderer.Engine, s *scene.Scene, sun *scene.Light) {
	p := samplePalette(dn.Time)

	if sun != nil {
		sun.Direction = sunDirection(dn.Time)
		sun.Color = p.sunColor
		sun.Intensity = p.sunIntensity
	}

	s.Ambient = p.ambient
	s.SkyColor = p.horizon // clear color when the skybox is off

	re.SetSkyboxColors(p.zenith, p.horizon, p.ground)
	re.SetFog(true, p.fogDensity, p.fogColor)
}

// TimeOfDayStr formats the clock as a 12-hour time.
func (dn *DayNight) TimeOfDayStr() string {
	hours := dn.Time * 24
	h := int(hours) % 24
	m := int((hours - float32(int(hours))) * 60)

	period := "AM"
	display := h
	switch {
	case h == 0:
		display = 12
	case h == 12:
		period = "PM"
	case h > 12:
		display = h - 12
		period = "PM"
	}
	return fmt.Sprintf("%02d:%02d %s", display, m, period)
}
