// Package cycle drives a looping fixed-phase simulation sequence.
// Scenes describe their rhythm as ordered phases (setup → physics → cleanup,
// spawn → combat → cleanup, ...) and advance it with the frame delta.
package cycle

// Phase is one time-boxed stage of a cycle. All hooks are optional.
type Phase struct {
	Name     string
	Duration float32 // seconds; non-positive durations are clamped at New

	Enter  func()                     // fired once when the phase becomes current
	Update func(dt, progress float32) // fired every frame while current; progress ∈ [0,1)
	Exit   func()                     // fired once when the phase ends
}

const minPhaseDuration = 0.001

// Cycle advances through its phases on a monotonic clock and wraps from the
// last phase back to the first. Exit and Enter fire exactly once per
// transition, in that order, and frame overshoot carries into the next phase
// so long frames cannot stall the sequence.
type Cycle struct {
	phases  []Phase
	current int
	elapsed float32
	started bool
}

// New builds a cycle over the given phases. The first phase's Enter fires on
// the first Update, not here, so hooks can capture state built after New.
func New(phases ...Phase) *Cycle {
	for i := range phases {
		if phases[i].Duration <= 0 {
			phases[i].Duration = minPhaseDuration
		}
	}
	return &Cycle{phases: phases}
}

// Update advances the clock by dt seconds, firing any phase transitions that
// the step crosses. A dt spanning several phases fires every Exit/Enter pair
// in order. Negative dt is ignored.
func (c *Cycle) Update(dt float32) {
	if len(c.phases) == 0 || dt < 0 {
		return
	}
	if !c.started {
		c.started = true
		if enter := c.phases[c.current].Enter; enter != nil {
			enter()
		}
	}

	c.elapsed += dt
	for c.elapsed >= c.phases[c.current].Duration {
		c.elapsed -= c.phases[c.current].Duration
		if exit := c.phases[c.current].Exit; exit != nil {
			exit()
		}
		c.current = (c.current + 1) % len(c.phases)
		if enter := c.phases[c.current].Enter; enter != nil {
			enter()
		}
	}

	if update := c.phases[c.current].Update; update != nil {
		update(dt, c.Progress())
	}
}

// Progress reports how far the current phase has run, in [0, 1).
func (c *Cycle) Progress() float32 {
	if len(c.phases) == 0 {
		return 0
	}
	return c.elapsed / c.phases[c.current].Duration
}

// PhaseName returns the current phase's name, or "" for an empty cycle.
func (c *Cycle) PhaseName() string {
	if len(c.phases) == 0 {
		return ""
	}
	return c.phases[c.current].Name
}

// PhaseIndex returns the current phase position.
func (c *Cycle) PhaseIndex() int { return c.current }

// Reset rewinds to the start of the first phase without firing any hooks.
// The first phase's Enter fires again on the next Update.
func (c *Cycle) Reset() {
	c.current = 0
	c.elapsed = 0
	c.started = false
}
