package configurator

import "fmt"

// Command is one undoable configuration edit.
type Command interface {
	Execute()
	Undo()
	Description() string
}

// History is the undo/redo stack for option edits. A new edit discards any
// pending redos.
type History struct {
	undoStack []Command
	redoStack []Command
	maxDepth  int
}

func NewHistory(maxDepth int) *History {
	return &History{
		undoStack: make([]Command, 0, maxDepth),
		redoStack: make([]Command, 0, maxDepth),
		maxDepth:  maxDepth,
	}
}

// Do executes a command and records it, dropping the oldest entry once the
// stack is full.
func (h *History) Do(cmd Command) {
	cmd.Execute()
	h.undoStack = append(h.undoStack, cmd)
	if len(h.undoStack) > h.maxDepth {
		h.undoStack = h.undoStack[1:]
	}
	h.redoStack = h.redoStack[:0]
}

// Undo reverts the most recent edit. Returns false when there is nothing
// to undo.
func (h *History) Undo() bool {
	if len(h.undoStack) == 0 {
		return false
	}
	cmd := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	cmd.Undo()
	h.redoStack = append(h.redoStack, cmd)
	return true
}

// Redo reapplies the most recently undone edit.
func (h *History) Redo() bool {
	if len(h.redoStack) == 0 {
		return false
	}
	cmd := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	cmd.Execute()
	h.undoStack = append(h.undoStack, cmd)
	return true
}

func (h *History) CanUndo() bool { return len(h.undoStack) > 0 }
func (h *History) CanRedo() bool { return len(h.redoStack) > 0 }

// Recent describes the edit Undo would revert, or "" with an empty stack.
func (h *History) Recent() string {
	if len(h.undoStack) == 0 {
		return ""
	}
	return h.undoStack[len(h.undoStack)-1].Description()
}

func (h *History) Clear() {
	h.undoStack = h.undoStack[:0]
	h.redoStack = h.redoStack[:0]
}

// choiceCommand switches a group to a different choice. Undo restores the
// previous choice through the same animated path.
type choiceCommand struct {
	owner *Configurator
	group *Group
	from  int
	to    int
}

func (cmd *choiceCommand) Execute() { cmd.owner.applySelection(cmd.group, cmd.to) }
func (cmd *choiceCommand) Undo()    { cmd.owner.applySelection(cmd.group, cmd.from) }

func (cmd *choiceCommand) Description() string {
	return fmt.Sprintf("%s %s", cmd.group.Name, cmd.group.Choices[cmd.to].Name)
}
