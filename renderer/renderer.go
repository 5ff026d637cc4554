// Package renderer exposes the high-level drawing API: scene passes, overlay
// text and panels, and the optional HDR/shadow/SSAO feature toggles. It owns
// no GL state itself; everything is delegated to the internal OpenGL backend.
package renderer

import (
	"fmt"
	"log/slog"

	"github.com/chewxy/math32"

	"scenelab/core"
	"scenelab/internal/opengl"
	"scenelab/logx"
	"scenelab/math"
	"scenelab/scene"
	"scenelab/shader"
)

type overlayKind uint8

const (
	overlayText overlayKind = iota
	overlayRect
)

// overlayCmd is a queued screen-space draw, flushed in Present() after the
// HDR blit so overlays bypass tone mapping. Submission order is z-order.
type overlayCmd struct {
	kind  overlayKind
	text  string
	x, y  float32
	w, h  float32
	scale float32
	color core.Color
}

// Stats summarises the most recent DrawScene call.
type Stats struct {
	Objects   int
	Vertices  int
	Triangles int
	Culled    int
}

// Engine drives the OpenGL backend for one window.
type Engine struct {
	backend *opengl.Renderer
	log     *slog.Logger
	window  *core.Window
	Scene   *scene.Scene

	FrustumCulling     bool // skip draws whose AABB is outside the camera frustum
	ShadowsEnabled     bool // enable via EnableShadows()
	PostProcessEnabled bool // enable via EnablePostProcess()
	SkyboxEnabled      bool // enable via EnableSkybox()
	DrawAABBs          bool // draw debug wireframe boxes around every node's AABB

	shadowOrthoSize float32     // orthographic half-extent for the shadow volume
	aabbMesh        *scene.Mesh // unit-cube wireframe, created on first AABB draw

	stats Stats

	overlayQueue []overlayCmd
}

// New creates the OpenGL backend bound to the window's context.
// The window's GL context must be current on the calling thread.
func New(log *slog.Logger, shaders *shader.Registry, window *core.Window) (*Engine, error) {
	if log == nil {
		log = logx.Discard()
	}
	backend, err := opengl.NewRenderer(log, shaders)
	if err != nil {
		return nil, fmt.Errorf("create render backend: %w", err)
	}
	backend.SetViewport(window.Width, window.Height)

	e := &Engine{
		backend:         backend,
		log:             log.With("component", "renderer"),
		window:          window,
		shadowOrthoSize: 30.0,
	}
	e.log.Info("render engine initialized", "width", window.Width, "height", window.Height)
	return e, nil
}

func (e *Engine) SetScene(s *scene.Scene) {
	e.Scene = s
}

// ── Feature toggles ───────────────────────────────────────────────────────────
//
// All Enable* calls are best-effort: a failure leaves the feature off and the
// engine fully usable. Callers log and continue.

// EnableSkybox creates the procedural gradient skybox.
// Call once after New, before the first DrawScene.
func (e *Engine) EnableSkybox() error {
	if err := e.backend.EnableSkybox(); err != nil {
		return fmt.Errorf("skybox: %w", err)
	}
	e.SkyboxEnabled = true
	return nil
}

// SetSkyboxColors adjusts the three gradient stops and syncs IBL colours.
// zenith = overhead, horizon = eye-level, ground = below the horizon.
func (e *Engine) SetSkyboxColors(zenith, horizon, ground core.Color) {
	if sb := e.backend.SkyboxRef(); sb != nil {
		sb.ZenithColor = zenith
		sb.HorizonColor = horizon
		sb.GroundColor = ground
	}
	// Keep IBL in sync with the skybox gradient
	e.backend.SetIBLColors(zenith, horizon, ground)
}

// SetFog configures exponential depth fog. density: 0.01=haze, 0.05=thick.
// color should match the horizon sky for natural blending.
func (e *Engine) SetFog(enabled bool, density float32, color core.Color) {
	e.backend.SetFog(enabled, density, color)
}

// EnableIBL activates sky-based ambient irradiance for PBR and Phong shading.
// SetSkyboxColors supplies the colours.
func (e *Engine) EnableIBL() {
	e.backend.EnableIBL()
}

// EnablePostProcess creates the HDR post-processing FBO at the current window size.
func (e *Engine) EnablePostProcess() error {
	if err := e.backend.EnablePostProcess(e.window.Width, e.window.Height); err != nil {
		return fmt.Errorf("post-process: %w", err)
	}
	e.PostProcessEnabled = true
	return nil
}

// SetExposure sets the HDR tone-mapping exposure (default 1.0).
func (e *Engine) SetExposure(exp float32) {
	e.backend.SetExposure(exp)
}

// EnableBloom activates the bloom effect. EnablePostProcess must be called first.
func (e *Engine) EnableBloom() error {
	return e.backend.EnableBloom()
}

// SetBloomThreshold sets the luminance cut-off for bloom (default 1.0).
func (e *Engine) SetBloomThreshold(t float32) { e.backend.SetBloomThreshold(t) }

// SetBloomStrength sets the additive bloom multiplier (default 0.6).
func (e *Engine) SetBloomStrength(s float32) { e.backend.SetBloomStrength(s) }

// EnableShadows creates the shadow map FBO. size ≤ 0 uses the 2048 default.
func (e *Engine) EnableShadows(size int) error {
	if size <= 0 {
		size = 2048
	}
	if err := e.backend.EnableShadows(size); err != nil {
		return fmt.Errorf("shadows: %w", err)
	}
	e.ShadowsEnabled = true
	return nil
}

// EnableSSAO creates the SSAO pipeline. EnablePostProcess must be called first.
func (e *Engine) EnableSSAO() error {
	if err := e.backend.EnableSSAO(); err != nil {
		return fmt.Errorf("ssao: %w", err)
	}
	return nil
}

// SetSSAORadius sets the SSAO hemisphere radius in view-space units (default 0.5).
func (e *Engine) SetSSAORadius(v float32) { e.backend.SetSSAORadius(v) }

// SetSSAOBias sets the depth bias to prevent self-occlusion acne (default 0.025).
func (e *Engine) SetSSAOBias(v float32) { e.backend.SetSSAOBias(v) }

// SetSSAOStrength sets the AO blend factor: 0 = no AO, 1 = full AO (default 1.0).
func (e *Engine) SetSSAOStrength(v float32) { e.backend.SetSSAOStrength(v) }

// SetWireframe toggles wireframe rendering mode on/off.
func (e *Engine) SetWireframe(enabled bool) {
	e.backend.SetWireframe(enabled)
}

// IsWireframe returns whether wireframe mode is currently active.
func (e *Engine) IsWireframe() bool {
	return e.backend.IsWireframe()
}

// ── Frame ─────────────────────────────────────────────────────────────────────

// DrawScene runs the shadow pass (when enabled) and the main scene pass for
// the current scene. Call once per frame, then any DrawParticles /
// DrawMeshInstanced passes, then Present.
func (e *Engine) DrawScene() error {
	if e.Scene == nil || e.Scene.Camera == nil {
		return fmt.Errorf("no scene or camera")
	}

	// Pick up shader source changes (disk overrides, Register calls)
	e.backend.SyncShaders()

	// First directional light drives sun shading and the shadow volume
	var dirLight *scene.Light
	for _, l := range e.Scene.Lights {
		if l != nil && l.Type == scene.LightTypeDirectional {
			dirLight = l
			break
		}
	}

	// ── Shadow pass ───────────────────────────────────────────────────────────
	doShadows := e.ShadowsEnabled && e.backend.HasShadowMap() && dirLight != nil
	lightVP := math.Mat4Identity()

	if doShadows {
		ortho := e.shadowOrthoSize
		camPos := e.Scene.Camera.Position
		lightDir := dirLight.Direction.Normalize()

		// Guard: degenerate direction (zero vector)
		if lightDir.LengthSqr() < 0.001 {
			doShadows = false
		} else {
			// Place shadow camera behind the scene along the light direction
			lightEye := camPos.Sub(lightDir.Mul(ortho))

			// Choose an up vector that is not parallel to the light direction
			upVec := math.Vec3Up
			if math32.Abs(lightDir.Dot(math.Vec3Up)) > 0.999 {
				upVec = math.Vec3{X: 0, Y: 0, Z: 1}
			}

			lightView := math.Mat4LookAt(lightEye, camPos, upVec)
			lightProj := math.Mat4Orthographic(
				-ortho, ortho, -ortho, ortho,
				-ortho, ortho*3,
			)
			lightVP = lightView.Mul(lightProj)

			e.backend.BeginShadowPass()
			for _, node := range e.Scene.GetVisibleNodes() {
				if node.Mesh == nil || node.Mesh.DrawMode != scene.DrawTriangles {
					continue
				}
				model := node.GetWorldMatrix()
				lightMVP := model.Mul(lightView).Mul(lightProj)
				e.backend.DrawMeshShadow(node.Mesh, lightMVP)
			}
			e.backend.EndShadowPass()
		}
	}

	// ── Main pass ─────────────────────────────────────────────────────────────
	// Compute proj before BeginFrame so it can be stored for the SSAO pass.
	proj := e.Scene.Camera.GetProjectionMatrix()
	e.backend.BeginFrame(
		e.Scene.SkyColor,
		e.Scene.Lights,
		e.Scene.Ambient,
		e.Scene.Camera.Position,
		lightVP,
		doShadows,
		proj,
	)

	view := e.Scene.Camera.GetViewMatrix()

	// Skybox first (depth=1.0 via xyww, before all scene geometry)
	e.backend.DrawSkybox(view, proj)

	vp := view.Mul(proj)
	frustum := scene.FrustumFromVP(vp)

	stats := Stats{}
	for _, node := range e.Scene.GetVisibleNodes() {
		if node.Mesh == nil {
			continue
		}

		model := node.GetWorldMatrix()

		if e.FrustumCulling {
			aabb := scene.ComputeAABB(node.Mesh, model)
			if !aabb.IntersectsFrustum(&frustum) {
				stats.Culled++
				continue
			}
		}

		mvp := model.Mul(view).Mul(proj)
		e.backend.DrawMesh(node.Mesh, mvp, model)

		stats.Objects++
		stats.Vertices += len(node.Mesh.Vertices)
		if node.Mesh.DrawMode == scene.DrawTriangles {
			stats.Triangles += len(node.Mesh.Indices) / 3
		}
	}
	e.stats = stats

	if e.DrawAABBs {
		e.drawAABBs(view, proj)
	}

	return nil
}

// DrawParticles renders an emitter's live particles as camera-facing
// billboards. Call between DrawScene and Present so particles land in the
// HDR FBO and benefit from tone mapping and bloom.
func (e *Engine) DrawParticles(emitter *scene.ParticleEmitter) {
	if e.Scene == nil || e.Scene.Camera == nil || emitter == nil {
		return
	}
	view := e.Scene.Camera.GetViewMatrix()
	proj := e.Scene.Camera.GetProjectionMatrix()
	e.backend.DrawParticles(emitter, view, proj)
}

// DrawMeshInstanced renders mesh at every transform in models using a single
// GPU draw call. The mesh must not be part of the scene graph; call this every
// frame between DrawScene and Present.
func (e *Engine) DrawMeshInstanced(mesh *scene.Mesh, models []math.Mat4) {
	if e.Scene == nil || e.Scene.Camera == nil || len(models) == 0 {
		return
	}
	view := e.Scene.Camera.GetViewMatrix()
	proj := e.Scene.Camera.GetProjectionMatrix()
	e.backend.DrawMeshInstanced(mesh, view, proj, models)
}

// Present resolves the HDR FBO (tone mapping, bloom, SSAO) to the default
// framebuffer, flushes queued overlay draws on top, and swaps buffers.
func (e *Engine) Present() {
	e.backend.BlitPostProcess()
	if len(e.overlayQueue) > 0 {
		sw := float32(e.window.Width)
		sh := float32(e.window.Height)
		for _, cmd := range e.overlayQueue {
			switch cmd.kind {
			case overlayRect:
				e.backend.DrawRect(cmd.x, cmd.y, cmd.w, cmd.h, cmd.color, sw, sh)
			default:
				e.backend.DrawText(cmd.text, cmd.x, cmd.y, cmd.scale, cmd.color, sw, sh)
			}
		}
		e.overlayQueue = e.overlayQueue[:0]
	}
	e.window.SwapBuffers()
}

// DrawText queues a text string for the next Present. (x, y) is the top-left
// corner in pixels; scale=1 → 8×8 px glyphs, scale=2 → 16×16 px.
// Overlay draws happen after tone mapping, so text is always readable.
func (e *Engine) DrawText(text string, x, y, scale float32, color core.Color) {
	e.overlayQueue = append(e.overlayQueue, overlayCmd{
		kind:  overlayText,
		text:  text,
		x:     x,
		y:     y,
		scale: scale,
		color: color,
	})
}

// DrawRect queues a solid screen-space rectangle for the next Present.
// Rects and text share one queue, so panels submitted before their text
// stay underneath it.
func (e *Engine) DrawRect(x, y, w, h float32, color core.Color) {
	e.overlayQueue = append(e.overlayQueue, overlayCmd{
		kind:  overlayRect,
		x:     x,
		y:     y,
		w:     w,
		h:     h,
		color: color,
	})
}

// Resize updates the GL viewport, the HDR FBO, and the camera aspect ratio.
func (e *Engine) Resize(width, height int) {
	e.backend.SetViewport(width, height)
	if e.PostProcessEnabled {
		e.backend.ResizePostProcess(width, height)
	}
	if e.Scene != nil && e.Scene.Camera != nil {
		e.Scene.Camera.UpdateAspectRatio(float32(width), float32(height))
	}
}

// ── Resources ─────────────────────────────────────────────────────────────────

// UploadTexture uploads a texture to the GPU. Must be called from the main thread.
func (e *Engine) UploadTexture(tex *scene.Texture) error {
	return opengl.UploadTexture(tex)
}

// DeleteTexture frees a previously uploaded GPU texture.
func (e *Engine) DeleteTexture(tex *scene.Texture) {
	opengl.DeleteTexture(tex)
}

// ReleaseMesh frees a mesh's GPU buffers. Scenes that rebuild geometry call
// this on the old mesh before dropping the last reference.
func (e *Engine) ReleaseMesh(mesh *scene.Mesh) {
	e.backend.ReleaseMesh(mesh)
}

// MeshCount returns the number of meshes currently resident on the GPU.
func (e *Engine) MeshCount() int {
	return e.backend.MeshCount()
}

// Stats returns per-pass counters from the most recent DrawScene call.
func (e *Engine) Stats() Stats {
	return e.stats
}

func (e *Engine) Destroy() {
	e.backend.Destroy()
}

// drawAABBs draws a wireframe unit-cube scaled/translated to each visible
// node's world-space AABB. The unit-box mesh is created lazily on first call.
func (e *Engine) drawAABBs(view, proj math.Mat4) {
	if e.aabbMesh == nil {
		e.aabbMesh = scene.CreateUnitBoxWireframe()
	}

	identity := math.Mat4Identity()

	for _, node := range e.Scene.GetVisibleNodes() {
		if node.Mesh == nil {
			continue
		}
		worldMat := node.GetWorldMatrix()
		aabb := scene.ComputeAABB(node.Mesh, worldMat)

		// Map the unit cube (±1) to the AABB: diagonal scale, column 3 translation.
		cx := (aabb.Min.X + aabb.Max.X) * 0.5
		cy := (aabb.Min.Y + aabb.Max.Y) * 0.5
		cz := (aabb.Min.Z + aabb.Max.Z) * 0.5
		hx := (aabb.Max.X - aabb.Min.X) * 0.5
		hy := (aabb.Max.Y - aabb.Min.Y) * 0.5
		hz := (aabb.Max.Z - aabb.Min.Z) * 0.5

		aabbModel := math.Mat4Identity()
		aabbModel[0][0] = hx
		aabbModel[1][1] = hy
		aabbModel[2][2] = hz
		aabbModel[3][0] = cx
		aabbModel[3][1] = cy
		aabbModel[3][2] = cz

		mvp := aabbModel.Mul(view).Mul(proj)
		e.backend.DrawMesh(e.aabbMesh, mvp, identity)
	}
}
