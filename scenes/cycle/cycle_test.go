package cycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// eventRecorder builds phases whose hooks append to a shared log.
type eventRecorder struct {
	events []string
}

func (r *eventRecorder) phase(name string, duration float32) Phase {
	return Phase{
		Name:     name,
		Duration: duration,
		Enter:    func() { r.events = append(r.events, "enter "+name) },
		Exit:     func() { r.events = append(r.events, "exit "+name) },
	}
}

func TestFirstUpdateEntersFirstPhase(t *testing.T) {
	var r eventRecorder
	c := New(r.phase("setup", 1))

	assert.Equal(t, "setup", c.PhaseName())
	assert.Empty(t, r.events, "New must not fire hooks")

	c.Update(0.1)
	assert.Equal(t, []string{"enter setup"}, r.events)

	c.Update(0.1)
	assert.Equal(t, []string{"enter setup"}, r.events, "enter fires once")
}

func TestTransitionFiresExitThenEnter(t *testing.T) {
	var r eventRecorder
	c := New(r.phase("setup", 1), r.phase("physics", 2))

	c.Update(1.5)

	assert.Equal(t, []string{"enter setup", "exit setup", "enter physics"}, r.events)
	assert.Equal(t, "physics", c.PhaseName())
	assert.InDelta(t, 0.25, float64(c.Progress()), 1e-4, "overshoot carried into the next phase")
}

func TestWrapsFromLastToFirst(t *testing.T) {
	var r eventRecorder
	c := New(r.phase("setup", 1), r.phase("physics", 1), r.phase("cleanup", 1))

	c.Update(0.5)
	r.events = nil

	// Crosses cleanup back into setup.
	c.Update(2.6)
	assert.Equal(t, []string{
		"exit setup", "enter physics",
		"exit physics", "enter cleanup",
		"exit cleanup", "enter setup",
	}, r.events)
	assert.Equal(t, "setup", c.PhaseName())
	assert.InDelta(t, 0.1, float64(c.Progress()), 1e-3)
}

func TestLongFrameProcessesEveryTransition(t *testing.T) {
	var r eventRecorder
	c := New(r.phase("a", 0.25), r.phase("b", 0.25))

	// One huge frame spans four full laps.
	c.Update(2.1)

	exits := 0
	for _, e := range r.events {
		if e == "exit a" || e == "exit b" {
			exits++
		}
	}
	assert.Equal(t, 8, exits)
	assert.Equal(t, "a", c.PhaseName())
}

func TestProgressStaysBelowOne(t *testing.T) {
	c := New(Phase{Name: "only", Duration: 1})

	for i := 0; i < 50; i++ {
		c.Update(0.1)
		p := c.Progress()
		require.GreaterOrEqual(t, p, float32(0))
		require.Less(t, p, float32(1))
	}
}

func TestExactBoundaryRollsOver(t *testing.T) {
	var r eventRecorder
	c := New(r.phase("a", 1), r.phase("b", 1))

	c.Update(1.0)
	assert.Equal(t, "b", c.PhaseName())
	assert.InDelta(t, 0.0, float64(c.Progress()), 1e-6)
}

func TestUpdateHookSeesDtAndProgress(t *testing.T) {
	var gotDt, gotProgress float32
	var calls int
	c := New(Phase{
		Name:     "run",
		Duration: 2,
		Update: func(dt, progress float32) {
			gotDt, gotProgress = dt, progress
			calls++
		},
	})

	c.Update(0.5)
	assert.Equal(t, 1, calls)
	assert.InDelta(t, 0.5, float64(gotDt), 1e-6)
	assert.InDelta(t, 0.25, float64(gotProgress), 1e-6)
}

func TestReset(t *testing.T) {
	var r eventRecorder
	c := New(r.phase("a", 1), r.phase("b", 1))

	c.Update(1.5)
	require.Equal(t, "b", c.PhaseName())
	r.events = nil

	c.Reset()
	assert.Equal(t, "a", c.PhaseName())
	assert.Zero(t, c.Progress())
	assert.Empty(t, r.events, "Reset fires no hooks")

	c.Update(0.1)
	assert.Equal(t, []string{"enter a"}, r.events)
}

func TestZeroDurationPhaseCannotStall(t *testing.T) {
	var r eventRecorder
	c := New(r.phase("a", 1), r.phase("flash", 0), r.phase("b", 1))

	c.Update(1.05)
	assert.Equal(t, "b", c.PhaseName(), "clamped zero-duration phase passes through")
	assert.Contains(t, r.events, "enter flash")
	assert.Contains(t, r.events, "exit flash")
}

func TestNegativeDtIgnored(t *testing.T) {
	var r eventRecorder
	c := New(r.phase("a", 1))

	c.Update(-0.5)
	assert.Empty(t, r.events)
	assert.Zero(t, c.Progress())
}

func TestManySmallStepsMatchOneBigStep(t *testing.T) {
	names := func(c *Cycle, steps int, dt float32) []string {
		var seen []string
		for i := 0; i < steps; i++ {
			c.Update(dt)
			if len(seen) == 0 || seen[len(seen)-1] != c.PhaseName() {
				seen = append(seen, c.PhaseName())
			}
		}
		return seen
	}

	build := func() *Cycle {
		return New(
			Phase{Name: "spawn", Duration: 0.4},
			Phase{Name: "combat", Duration: 0.7},
			Phase{Name: "cleanup", Duration: 0.3},
		)
	}

	small := names(build(), 1500, 0.001)
	big := names(build(), 15, 0.1)
	assert.Equal(t, big, small)
}
