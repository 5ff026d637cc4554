package core

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Mouse button constants
const (
	MouseLeft   = 0
	MouseRight  = 1
	MouseMiddle = 2
)

// Handle identifies one registered input handler so it can be removed later.
type Handle uint64

type keyHandlerEntry struct {
	id    Handle
	scope string
	fn    func(key int, pressed bool)
}

type mouseHandlerEntry struct {
	id    Handle
	scope string
	fn    func(button int, pressed bool)
}

type scrollHandlerEntry struct {
	id    Handle
	scope string
	fn    func(dx, dy float64)
}

// Input tracks keyboard/mouse state and dispatches events to registered
// handlers. Handlers are registered under a scope (typically the scene name)
// and the whole scope is removed when the scene is torn down, so nothing ever
// listens past its owner's lifetime.
//
// State is fed by GLFW callbacks (installed by Bind); Update must be called
// once per frame after PollEvents to latch edge transitions and deltas.
type Input struct {
	keys     [512]bool
	keysPrev [512]bool
	pressed  [512]bool // latched by Update: down this frame, up last frame

	mouseButtons     [8]bool
	mouseButtonsPrev [8]bool
	mousePressed     [8]bool
	mouseReleased    [8]bool

	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64
	lastMouseX, lastMouseY   float64
	firstFrame               bool

	scrollAccumX, scrollAccumY float64
	scrollX, scrollY           float64

	nextID         Handle
	keyHandlers    []keyHandlerEntry
	mouseHandlers  []mouseHandlerEntry
	scrollHandlers []scrollHandlerEntry
}

func NewInput() *Input {
	return &Input{firstFrame: true, nextID: 1}
}

// Bind installs the GLFW callbacks on the window. Call once after NewWindow.
func (in *Input) Bind(w *Window) {
	w.Handle.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		switch action {
		case glfw.Press:
			in.handleKey(int(key), true)
		case glfw.Release:
			in.handleKey(int(key), false)
		}
	})
	w.Handle.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		switch action {
		case glfw.Press:
			in.handleMouseButton(int(button), true)
		case glfw.Release:
			in.handleMouseButton(int(button), false)
		}
	})
	w.Handle.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		in.handleScroll(xoff, yoff)
	})
	w.Handle.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		in.handleCursor(x, y)
	})
}

// ── Registration ──────────────────────────────────────────────────────────────

// OnKey registers a handler fired on every key press/release.
func (in *Input) OnKey(scope string, fn func(key int, pressed bool)) Handle {
	id := in.nextID
	in.nextID++
	in.keyHandlers = append(in.keyHandlers, keyHandlerEntry{id: id, scope: scope, fn: fn})
	return id
}

// OnMouseButton registers a handler fired on mouse button press/release.
func (in *Input) OnMouseButton(scope string, fn func(button int, pressed bool)) Handle {
	id := in.nextID
	in.nextID++
	in.mouseHandlers = append(in.mouseHandlers, mouseHandlerEntry{id: id, scope: scope, fn: fn})
	return id
}

// OnScroll registers a handler fired on scroll events.
func (in *Input) OnScroll(scope string, fn func(dx, dy float64)) Handle {
	id := in.nextID
	in.nextID++
	in.scrollHandlers = append(in.scrollHandlers, scrollHandlerEntry{id: id, scope: scope, fn: fn})
	return id
}

// Remove detaches a single handler. Unknown handles are ignored.
func (in *Input) Remove(h Handle) {
	for i, e := range in.keyHandlers {
		if e.id == h {
			in.keyHandlers = append(in.keyHandlers[:i], in.keyHandlers[i+1:]...)
			return
		}
	}
	for i, e := range in.mouseHandlers {
		if e.id == h {
			in.mouseHandlers = append(in.mouseHandlers[:i], in.mouseHandlers[i+1:]...)
			return
		}
	}
	for i, e := range in.scrollHandlers {
		if e.id == h {
			in.scrollHandlers = append(in.scrollHandlers[:i], in.scrollHandlers[i+1:]...)
			return
		}
	}
}

// RemoveScope detaches every handler registered under the given scope.
func (in *Input) RemoveScope(scope string) {
	kw := in.keyHandlers[:0]
	for _, e := range in.keyHandlers {
		if e.scope != scope {
			kw = append(kw, e)
		}
	}
	in.keyHandlers = kw

	mw := in.mouseHandlers[:0]
	for _, e := range in.mouseHandlers {
		if e.scope != scope {
			mw = append(mw, e)
		}
	}
	in.mouseHandlers = mw

	sw := in.scrollHandlers[:0]
	for _, e := range in.scrollHandlers {
		if e.scope != scope {
			sw = append(sw, e)
		}
	}
	in.scrollHandlers = sw
}

// HandlerCount reports how many handlers are currently registered.
func (in *Input) HandlerCount() int {
	return len(in.keyHandlers) + len(in.mouseHandlers) + len(in.scrollHandlers)
}

// ── Event sinks (fed by GLFW callbacks) ──────────────────────────────────────

// Dispatch runs over a snapshot of the handler list: a handler may switch
// scenes, and the switch removes the old scene's scope and registers the new
// scene's handlers on this same slice mid-dispatch. Handlers added during
// dispatch wait for the next event; handlers removed during dispatch no
// longer fire, even for the in-flight event.

func (in *Input) handleKey(key int, down bool) {
	if key >= 0 && key < len(in.keys) {
		in.keys[key] = down
	}
	handlers := append([]keyHandlerEntry(nil), in.keyHandlers...)
	for _, e := range handlers {
		if in.keyHandlerLive(e.id) {
			e.fn(key, down)
		}
	}
}

func (in *Input) keyHandlerLive(id Handle) bool {
	for _, e := range in.keyHandlers {
		if e.id == id {
			return true
		}
	}
	return false
}

func (in *Input) handleMouseButton(button int, down bool) {
	if button >= 0 && button < len(in.mouseButtons) {
		in.mouseButtons[button] = down
	}
	handlers := append([]mouseHandlerEntry(nil), in.mouseHandlers...)
	for _, e := range handlers {
		if in.mouseHandlerLive(e.id) {
			e.fn(button, down)
		}
	}
}

func (in *Input) mouseHandlerLive(id Handle) bool {
	for _, e := range in.mouseHandlers {
		if e.id == id {
			return true
		}
	}
	return false
}

func (in *Input) handleScroll(dx, dy float64) {
	in.scrollAccumX += dx
	in.scrollAccumY += dy
	handlers := append([]scrollHandlerEntry(nil), in.scrollHandlers...)
	for _, e := range handlers {
		if in.scrollHandlerLive(e.id) {
			e.fn(dx, dy)
		}
	}
}

func (in *Input) scrollHandlerLive(id Handle) bool {
	for _, e := range in.scrollHandlers {
		if e.id == id {
			return true
		}
	}
	return false
}

func (in *Input) handleCursor(x, y float64) {
	in.MouseX = x
	in.MouseY = y
}

// ── Per-frame latch ──────────────────────────────────────────────────────────

// Update latches edge transitions, cursor deltas, and the per-frame scroll
// amount. Call once per frame, after Window.PollEvents.
func (in *Input) Update() {
	for k := range in.keys {
		in.pressed[k] = in.keys[k] && !in.keysPrev[k]
	}
	copy(in.keysPrev[:], in.keys[:])

	for b := range in.mouseButtons {
		in.mousePressed[b] = in.mouseButtons[b] && !in.mouseButtonsPrev[b]
		in.mouseReleased[b] = !in.mouseButtons[b] && in.mouseButtonsPrev[b]
	}
	copy(in.mouseButtonsPrev[:], in.mouseButtons[:])

	if in.firstFrame {
		in.lastMouseX = in.MouseX
		in.lastMouseY = in.MouseY
		in.firstFrame = false
	}
	in.MouseDeltaX = in.MouseX - in.lastMouseX
	in.MouseDeltaY = in.MouseY - in.lastMouseY
	in.lastMouseX = in.MouseX
	in.lastMouseY = in.MouseY

	in.scrollX = in.scrollAccumX
	in.scrollY = in.scrollAccumY
	in.scrollAccumX = 0
	in.scrollAccumY = 0
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (in *Input) KeyDown(key int) bool {
	if key < 0 || key >= len(in.keys) {
		return false
	}
	return in.keys[key]
}

// KeyPressed reports a rising edge: down this frame, up the frame before.
func (in *Input) KeyPressed(key int) bool {
	if key < 0 || key >= len(in.pressed) {
		return false
	}
	return in.pressed[key]
}

func (in *Input) MouseDown(button int) bool {
	if button < 0 || button >= len(in.mouseButtons) {
		return false
	}
	return in.mouseButtons[button]
}

func (in *Input) MousePressed(button int) bool {
	if button < 0 || button >= len(in.mousePressed) {
		return false
	}
	return in.mousePressed[button]
}

func (in *Input) MouseReleased(button int) bool {
	if button < 0 || button >= len(in.mouseReleased) {
		return false
	}
	return in.mouseReleased[button]
}

func (in *Input) ScrollDelta() (float64, float64) {
	return in.scrollX, in.scrollY
}

func (in *Input) CursorPos() (float64, float64) {
	return in.MouseX, in.MouseY
}

func (in *Input) CursorDelta() (float64, float64) {
	return in.MouseDeltaX, in.MouseDeltaY
}

func (in *Input) ShiftDown() bool {
	return in.KeyDown(KeyLeftShift) || in.KeyDown(KeyRightShift)
}

func (in *Input) CtrlDown() bool {
	return in.KeyDown(KeyLeftControl) || in.KeyDown(KeyRightControl)
}

func (in *Input) AltDown() bool {
	return in.KeyDown(KeyLeftAlt) || in.KeyDown(KeyRightAlt)
}

// IsShortcut reports a Ctrl+key rising edge.
func (in *Input) IsShortcut(key int) bool {
	return in.CtrlDown() && in.KeyPressed(key)
}

// IsShiftShortcut reports a Ctrl+Shift+key rising edge.
func (in *Input) IsShiftShortcut(key int) bool {
	return in.CtrlDown() && in.ShiftDown() && in.KeyPressed(key)
}
