package configurator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countCmd struct {
	label string
	execs int
	undos int
}

func (c *countCmd) Execute()            { c.execs++ }
func (c *countCmd) Undo()               { c.undos++ }
func (c *countCmd) Description() string { return c.label }

func TestHistoryDoExecutes(t *testing.T) {
	h := NewHistory(8)
	cmd := &countCmd{label: "first"}

	h.Do(cmd)
	assert.Equal(t, 1, cmd.execs)
	assert.True(t, h.CanUndo())
	assert.False(t, h.CanRedo())
	assert.Equal(t, "first", h.Recent())
}

func TestHistoryUndoRedoOrder(t *testing.T) {
	h := NewHistory(8)
	a := &countCmd{label: "a"}
	b := &countCmd{label: "b"}
	h.Do(a)
	h.Do(b)

	require.True(t, h.Undo())
	assert.Equal(t, 1, b.undos, "undo is last-in first-out")
	assert.Zero(t, a.undos)
	assert.Equal(t, "a", h.Recent())

	require.True(t, h.Redo())
	assert.Equal(t, 2, b.execs)
	assert.Equal(t, "b", h.Recent())
}

func TestHistoryUndoOnEmpty(t *testing.T) {
	h := NewHistory(4)
	assert.False(t, h.Undo())
	assert.False(t, h.Redo())
	assert.Empty(t, h.Recent())
}

func TestHistoryNewEditDropsRedo(t *testing.T) {
	h := NewHistory(8)
	h.Do(&countCmd{label: "a"})
	h.Do(&countCmd{label: "b"})
	require.True(t, h.Undo())
	require.True(t, h.CanRedo())

	h.Do(&countCmd{label: "c"})
	assert.False(t, h.CanRedo())
}

func TestHistoryDepthDropsOldest(t *testing.T) {
	h := NewHistory(2)
	a := &countCmd{label: "a"}
	h.Do(a)
	h.Do(&countCmd{label: "b"})
	h.Do(&countCmd{label: "c"})

	assert.True(t, h.Undo())
	assert.True(t, h.Undo())
	assert.False(t, h.Undo(), "oldest edit fell off the stack")
	assert.Zero(t, a.undos)
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory(4)
	h.Do(&countCmd{label: "a"})
	require.True(t, h.Undo())

	h.Clear()
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
}
