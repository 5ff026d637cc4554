package core

import "testing"

func TestInputKeyEdgeDetection(t *testing.T) {
	in := NewInput()

	in.handleKey(KeyW, true)
	in.Update()

	if !in.KeyDown(KeyW) {
		t.Error("KeyDown should report W held")
	}
	if !in.KeyPressed(KeyW) {
		t.Error("KeyPressed should fire on the first frame the key is down")
	}

	// Still held next frame: no new edge
	in.Update()
	if !in.KeyDown(KeyW) {
		t.Error("KeyDown should still report W held")
	}
	if in.KeyPressed(KeyW) {
		t.Error("KeyPressed should not fire while the key is held")
	}

	in.handleKey(KeyW, false)
	in.Update()
	if in.KeyDown(KeyW) {
		t.Error("KeyDown should report W released")
	}
}

func TestInputMouseEdges(t *testing.T) {
	in := NewInput()

	in.handleMouseButton(MouseLeft, true)
	in.Update()
	if !in.MousePressed(MouseLeft) {
		t.Error("MousePressed should fire on press frame")
	}
	if in.MouseReleased(MouseLeft) {
		t.Error("MouseReleased should not fire on press frame")
	}

	in.handleMouseButton(MouseLeft, false)
	in.Update()
	if in.MousePressed(MouseLeft) {
		t.Error("MousePressed should not fire on release frame")
	}
	if !in.MouseReleased(MouseLeft) {
		t.Error("MouseReleased should fire on release frame")
	}
}

func TestInputCursorDelta(t *testing.T) {
	in := NewInput()

	in.handleCursor(100, 100)
	in.Update() // first frame: delta suppressed
	if dx, dy := in.CursorDelta(); dx != 0 || dy != 0 {
		t.Errorf("first-frame delta should be zero, got (%v, %v)", dx, dy)
	}

	in.handleCursor(110, 95)
	in.Update()
	if dx, dy := in.CursorDelta(); dx != 10 || dy != -5 {
		t.Errorf("expected delta (10, -5), got (%v, %v)", dx, dy)
	}
}

func TestInputScrollLatch(t *testing.T) {
	in := NewInput()

	in.handleScroll(0, 1)
	in.handleScroll(0, 2)
	in.Update()
	if _, dy := in.ScrollDelta(); dy != 3 {
		t.Errorf("scroll should accumulate within a frame, got %v", dy)
	}

	in.Update()
	if _, dy := in.ScrollDelta(); dy != 0 {
		t.Errorf("scroll should reset each frame, got %v", dy)
	}
}

func TestInputScopedHandlers(t *testing.T) {
	in := NewInput()

	var aFired, bFired int
	in.OnKey("sceneA", func(key int, pressed bool) { aFired++ })
	hb := in.OnKey("sceneB", func(key int, pressed bool) { bFired++ })
	in.OnScroll("sceneA", func(dx, dy float64) { aFired++ })

	in.handleKey(KeyA, true)
	in.handleScroll(0, 1)
	if aFired != 2 || bFired != 1 {
		t.Fatalf("expected aFired=2 bFired=1, got %d/%d", aFired, bFired)
	}

	// Tearing down sceneA must silence its handlers without touching sceneB's.
	in.RemoveScope("sceneA")
	if in.HandlerCount() != 1 {
		t.Fatalf("expected 1 handler after RemoveScope, got %d", in.HandlerCount())
	}
	in.handleKey(KeyA, false)
	in.handleScroll(0, 1)
	if aFired != 2 {
		t.Error("sceneA handlers fired after RemoveScope")
	}
	if bFired != 2 {
		t.Error("sceneB key handler should still fire")
	}

	in.Remove(hb)
	if in.HandlerCount() != 0 {
		t.Errorf("expected 0 handlers after Remove, got %d", in.HandlerCount())
	}
}

func TestInputRemoveUnknownHandle(t *testing.T) {
	in := NewInput()
	in.Remove(Handle(42)) // must not panic
	in.RemoveScope("nothing-registered")
}

// A scene-switch keypress mutates the handler list mid-dispatch: the app
// handler removes the old scene's scope and the new scene registers its own
// handlers. The event that caused the switch must reach neither the old nor
// the new scene.
func TestInputSceneSwitchDuringDispatch(t *testing.T) {
	in := NewInput()

	var oldFired, newFired, appFired int
	in.OnKey("app", func(key int, pressed bool) {
		appFired++
		in.RemoveScope("old")
		in.OnKey("new", func(key int, pressed bool) { newFired++ })
	})
	in.OnKey("old", func(key int, pressed bool) { oldFired++ })

	in.handleKey(Key2, true)
	if appFired != 1 {
		t.Fatalf("expected app handler to fire once, got %d", appFired)
	}
	if oldFired != 0 {
		t.Error("old scene handler fired after its scope was removed mid-dispatch")
	}
	if newFired != 0 {
		t.Error("new scene handler received the event that registered it")
	}

	// The next event belongs to the new scene.
	in.handleKey(Key2, false)
	if newFired != 1 {
		t.Errorf("expected new scene handler to fire on the next event, got %d", newFired)
	}
	if oldFired != 0 || appFired != 2 {
		t.Errorf("expected old=0 app=2, got %d/%d", oldFired, appFired)
	}
}

// Same re-entrancy guarantee on the mouse and scroll paths.
func TestInputHandlerChurnDuringMouseAndScroll(t *testing.T) {
	in := NewInput()

	var oldClicks, newClicks int
	in.OnMouseButton("app", func(button int, pressed bool) {
		in.RemoveScope("old")
		in.OnMouseButton("new", func(button int, pressed bool) { newClicks++ })
	})
	in.OnMouseButton("old", func(button int, pressed bool) { oldClicks++ })

	in.handleMouseButton(MouseLeft, true)
	if oldClicks != 0 || newClicks != 0 {
		t.Errorf("in-flight click leaked: old=%d new=%d", oldClicks, newClicks)
	}
	in.handleMouseButton(MouseLeft, false)
	if newClicks != 1 {
		t.Errorf("expected new handler on next click, got %d", newClicks)
	}

	var oldScrolls, newScrolls int
	in.OnScroll("app2", func(dx, dy float64) {
		in.RemoveScope("old2")
		in.OnScroll("new2", func(dx, dy float64) { newScrolls++ })
	})
	in.OnScroll("old2", func(dx, dy float64) { oldScrolls++ })

	in.handleScroll(0, 1)
	if oldScrolls != 0 || newScrolls != 0 {
		t.Errorf("in-flight scroll leaked: old=%d new=%d", oldScrolls, newScrolls)
	}
	in.handleScroll(0, 1)
	if newScrolls != 1 {
		t.Errorf("expected new scroll handler on next event, got %d", newScrolls)
	}
}
