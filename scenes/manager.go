package scenes

import (
	"fmt"
	"log/slog"

	"scenelab/logx"
)

// Manager owns the registered controllers and keeps exactly one active.
// Switching destroys the outgoing scene before initialising the incoming
// one; if the incoming Init fails the manager falls back through the other
// registered scenes in registration order rather than leaving the app with
// no scene at all.
type Manager struct {
	log    *slog.Logger
	ctx    *Context
	order  []string
	byName map[string]Controller
	active Controller
}

func NewManager(ctx *Context) *Manager {
	log := ctx.Log
	if log == nil {
		log = logx.Discard()
	}
	return &Manager{
		log:    log.With("component", "scenes"),
		ctx:    ctx,
		byName: make(map[string]Controller),
	}
}

// Register adds a controller under its own name. Registering the same name
// twice replaces the earlier controller and keeps its slot in the order.
func (m *Manager) Register(c Controller) {
	name := c.Name()
	if _, dup := m.byName[name]; dup {
		m.log.Warn("scene registered twice, replacing", "scene", name)
	} else {
		m.order = append(m.order, name)
	}
	m.byName[name] = c
}

// Names returns the registered scene names in registration order.
func (m *Manager) Names() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// ActiveName returns the running scene's name, or "" when none is active.
func (m *Manager) ActiveName() string {
	if m.active == nil {
		return ""
	}
	return m.active.Name()
}

// Switch tears down the active scene and starts the named one. Switching to
// the scene that is already active is a no-op. If the named scene's Init
// fails, the manager tries every other registered scene in registration
// order; the returned error is non-nil only when nothing could start.
func (m *Manager) Switch(name string) error {
	next, ok := m.byName[name]
	if !ok {
		return fmt.Errorf("unknown scene %q", name)
	}
	if m.active != nil {
		if m.active.Name() == name {
			return nil
		}
		m.log.Info("leaving scene", "scene", m.active.Name())
		m.active.Destroy()
		m.active = nil
	}

	err := m.start(next)
	if err == nil {
		return nil
	}
	m.log.Error("scene init failed, falling back", "scene", name, "error", err)
	for _, alt := range m.order {
		if alt == name {
			continue
		}
		if altErr := m.start(m.byName[alt]); altErr == nil {
			return nil
		} else {
			m.log.Error("fallback scene init failed", "scene", alt, "error", altErr)
		}
	}
	return fmt.Errorf("no registered scene could start: %w", err)
}

// start runs one controller's Init. A failed Init gets an immediate Destroy
// so partially built state cannot leak.
func (m *Manager) start(c Controller) error {
	m.log.Info("entering scene", "scene", c.Name())
	if err := c.Init(m.ctx); err != nil {
		c.Destroy()
		return err
	}
	m.active = c
	return nil
}

// Update advances the active scene. No-op when nothing is active.
func (m *Manager) Update(dt float32) {
	if m.active != nil {
		m.active.Update(dt)
	}
}

// Render draws the active scene. No-op when nothing is active.
func (m *Manager) Render() {
	if m.active != nil {
		m.active.Render()
	}
}

// Destroy tears down the active scene, if any.
func (m *Manager) Destroy() {
	if m.active != nil {
		m.active.Destroy()
		m.active = nil
	}
}
