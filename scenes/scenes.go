// Package scenes defines the scene controller contract and the manager that
// switches between controllers at runtime. A controller owns everything it
// creates: scene graph, physics bodies, particle emitters, input handlers,
// and GPU buffers all come into being in Init and are gone after Destroy.
package scenes

import (
	"log/slog"

	"scenelab/assets"
	"scenelab/config"
	"scenelab/core"
	"scenelab/lottery"
	"scenelab/renderer"
	"scenelab/scene"
	"scenelab/shader"
)

// Context carries the shared services a controller wires itself into.
// Every field is set by main before the first Switch; controllers must not
// retain it past Destroy.
type Context struct {
	Log      *slog.Logger
	Config   config.Config
	Window   *core.Window
	Input    *core.Input
	Renderer *renderer.Engine
	Assets   *assets.Loader
	Shaders  *shader.Registry
	Lottery  *lottery.Source
}

// Controller is one interactive scene. The manager drives the lifecycle:
// Init, then Update/Render once per frame, then Destroy on switch-away.
//
// Destroy must be safe to call after a failed Init, and must leave nothing
// behind: input scopes removed, physics bodies gone, emitters stopped, GPU
// meshes and textures released. Init may be called again on the same value
// after Destroy.
type Controller interface {
	Name() string
	Init(ctx *Context) error
	Update(dt float32)
	Render()
	Destroy()
}

// PhysicsStep is the fixed timestep scenes advance their physics world at.
const PhysicsStep = float32(1.0 / 120.0)

// maxBacklog caps the simulation debt after a stall (window drag, debugger
// pause) so the world never spirals trying to catch up.
const maxBacklog = float32(0.25)

// Stepper accumulates frame time and drains it in fixed physics steps.
// The zero value is ready to use.
type Stepper struct {
	accum float32
}

// Run adds dt to the backlog and calls step once per whole PhysicsStep.
func (s *Stepper) Run(dt float32, step func(h float32)) {
	s.accum += dt
	if s.accum > maxBacklog {
		s.accum = maxBacklog
	}
	for s.accum >= PhysicsStep {
		step(PhysicsStep)
		s.accum -= PhysicsStep
	}
}

// Reset drops any accumulated backlog.
func (s *Stepper) Reset() {
	s.accum = 0
}

// Resources tracks the GPU-side objects a scene creates so Destroy can
// release them all in one call. Tracking is idempotent per pointer.
type Resources struct {
	meshes   map[*scene.Mesh]struct{}
	textures map[*scene.Texture]struct{}
}

// TrackMesh registers m for release and returns it unchanged.
func (r *Resources) TrackMesh(m *scene.Mesh) *scene.Mesh {
	if m == nil {
		return nil
	}
	if r.meshes == nil {
		r.meshes = make(map[*scene.Mesh]struct{})
	}
	r.meshes[m] = struct{}{}
	return m
}

// TrackTexture registers t for release and returns it unchanged.
func (r *Resources) TrackTexture(t *scene.Texture) *scene.Texture {
	if t == nil {
		return nil
	}
	if r.textures == nil {
		r.textures = make(map[*scene.Texture]struct{})
	}
	r.textures[t] = struct{}{}
	return t
}

// TrackTree walks a node hierarchy and tracks every mesh and material
// texture it finds. Call after attaching a loaded model.
func (r *Resources) TrackTree(n *scene.Node) *scene.Node {
	if n == nil {
		return nil
	}
	n.Traverse(func(node *scene.Node) {
		if node.Mesh == nil {
			return
		}
		r.TrackMesh(node.Mesh)
		if mat := node.Mesh.Material; mat != nil {
			r.TrackTexture(mat.AlbedoTexture)
			r.TrackTexture(mat.NormalTexture)
			r.TrackTexture(mat.MetallicRoughnessTexture)
			r.TrackTexture(mat.EmissiveTexture)
		}
	})
	return n
}

// MeshCount reports how many distinct meshes are tracked.
func (r *Resources) MeshCount() int { return len(r.meshes) }

// TextureCount reports how many distinct textures are tracked.
func (r *Resources) TextureCount() int { return len(r.textures) }

// Release frees every tracked mesh and texture through the renderer and
// empties the tracker. Safe with a nil engine, which skips the GPU calls.
func (r *Resources) Release(re *renderer.Engine) {
	if re != nil {
		for m := range r.meshes {
			re.ReleaseMesh(m)
		}
		for t := range r.textures {
			re.DeleteTexture(t)
		}
	}
	r.meshes = nil
	r.textures = nil
}
