// Package assets loads textures, models, and HDR environments from files or
// http(s) URLs. Decode work runs on a bounded worker pool, results are cached
// by ref, and every failure is logged and answered with a usable fallback so
// scenes always have something to draw.
package assets

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"scenelab/logx"
	"scenelab/scene"
)

// Loader resolves, fetches, decodes, and caches assets. Safe for concurrent
// use. Decoded data is CPU-side only; GPU uploads stay on the main thread.
type Loader struct {
	log     *slog.Logger
	baseDir string
	client  *http.Client
	pool    worker.DynamicWorkerPool

	mu        sync.Mutex
	textures  map[string]*scene.Texture
	models    map[string]*Model
	hdrs      map[string]*HDRImage
	submitted int
	completed int
	taskID    int
}

// NewLoader creates a Loader. Relative file refs resolve against baseDir;
// client serves http(s) refs (nil gets a 10 s timeout default). Decode work
// runs on a dynamic worker pool sized to the machine; idle workers exit after
// a second.
func NewLoader(log *slog.Logger, baseDir string, client *http.Client) *Loader {
	if log == nil {
		log = logx.Discard()
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Loader{
		log:      log.With("component", "assets"),
		baseDir:  baseDir,
		client:   client,
		pool:     worker.NewDynamicWorkerPool(max(runtime.NumCPU()-1, 1), 64, time.Second),
		textures: make(map[string]*scene.Texture),
		models:   make(map[string]*Model),
		hdrs:     make(map[string]*HDRImage),
	}
}

// ── Synchronous loads ─────────────────────────────────────────────────────────

// LoadTexture fetches and decodes a PNG/JPEG ref. On failure the returned
// texture is the magenta/black fallback checker and the error reports why;
// the result is always drawable.
func (l *Loader) LoadTexture(ctx context.Context, ref string) (*scene.Texture, error) {
	l.mu.Lock()
	tex := l.textures[ref]
	l.mu.Unlock()
	if tex != nil {
		return tex, nil
	}

	data, err := l.fetch(ctx, ref)
	if err == nil {
		tex, err = decodeTexture(ref, data)
	}
	if err != nil {
		l.log.Warn("texture load failed, using fallback", "ref", ref, "error", err)
		return FallbackTexture(), err
	}

	l.mu.Lock()
	l.textures[ref] = tex
	l.mu.Unlock()
	return tex, nil
}

// LoadModel fetches and parses a .glb/.gltf/.obj ref. Geometry, materials,
// and textures are cached and shared across calls; each call returns a fresh
// node hierarchy so a scene can transform its instance freely. On failure the
// result is the checker fallback cube and the error reports why.
func (l *Loader) LoadModel(ctx context.Context, ref string) (*Model, error) {
	l.mu.Lock()
	master := l.models[ref]
	l.mu.Unlock()
	if master != nil {
		return master.instance(), nil
	}

	master, err := l.loadModel(ctx, ref)
	if err != nil {
		l.log.Warn("model load failed, using fallback cube", "ref", ref, "error", err)
		return FallbackModel(), err
	}

	l.mu.Lock()
	l.models[ref] = master
	l.mu.Unlock()
	return master.instance(), nil
}

// LoadHDR fetches and decodes a Radiance .hdr ref. On failure the result is
// the procedural gradient sky and the error reports why.
func (l *Loader) LoadHDR(ctx context.Context, ref string) (*HDRImage, error) {
	l.mu.Lock()
	img := l.hdrs[ref]
	l.mu.Unlock()
	if img != nil {
		return img, nil
	}

	data, err := l.fetch(ctx, ref)
	if err == nil {
		img, err = DecodeHDR(bytes.NewReader(data))
	}
	if err != nil {
		l.log.Warn("hdr load failed, using fallback sky", "ref", ref, "error", err)
		return FallbackHDR(), err
	}

	l.mu.Lock()
	l.hdrs[ref] = img
	l.mu.Unlock()
	return img, nil
}

// ── Asynchronous loads ────────────────────────────────────────────────────────

// TextureHandle is a pending texture load. Poll Done each frame; Texture and
// Err return values once the load finished (nil before that).
type TextureHandle struct {
	done chan struct{}
	tex  *scene.Texture
	err  error
}

func (h *TextureHandle) Done() bool { return chanClosed(h.done) }

// Wait blocks until the load finishes and returns the texture (or fallback).
func (h *TextureHandle) Wait() *scene.Texture {
	<-h.done
	return h.tex
}

func (h *TextureHandle) Texture() *scene.Texture {
	if !h.Done() {
		return nil
	}
	return h.tex
}

func (h *TextureHandle) Err() error {
	if !h.Done() {
		return nil
	}
	return h.err
}

// ModelHandle is a pending model load.
type ModelHandle struct {
	done  chan struct{}
	model *Model
	err   error
}

func (h *ModelHandle) Done() bool { return chanClosed(h.done) }

// Wait blocks until the load finishes and returns the model (or fallback).
func (h *ModelHandle) Wait() *Model {
	<-h.done
	return h.model
}

func (h *ModelHandle) Model() *Model {
	if !h.Done() {
		return nil
	}
	return h.model
}

func (h *ModelHandle) Err() error {
	if !h.Done() {
		return nil
	}
	return h.err
}

// HDRHandle is a pending HDR environment load.
type HDRHandle struct {
	done chan struct{}
	img  *HDRImage
	err  error
}

func (h *HDRHandle) Done() bool { return chanClosed(h.done) }

// Wait blocks until the load finishes and returns the image (or fallback).
func (h *HDRHandle) Wait() *HDRImage {
	<-h.done
	return h.img
}

func (h *HDRHandle) HDR() *HDRImage {
	if !h.Done() {
		return nil
	}
	return h.img
}

func (h *HDRHandle) Err() error {
	if !h.Done() {
		return nil
	}
	return h.err
}

func chanClosed(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

// LoadTextureAsync schedules the load on the worker pool. The decoded texture
// must still be uploaded from the main thread.
func (l *Loader) LoadTextureAsync(ctx context.Context, ref string) *TextureHandle {
	h := &TextureHandle{done: make(chan struct{})}
	l.submit(func() {
		h.tex, h.err = l.LoadTexture(ctx, ref)
		close(h.done)
	})
	return h
}

// LoadModelAsync schedules the load on the worker pool.
func (l *Loader) LoadModelAsync(ctx context.Context, ref string) *ModelHandle {
	h := &ModelHandle{done: make(chan struct{})}
	l.submit(func() {
		h.model, h.err = l.LoadModel(ctx, ref)
		close(h.done)
	})
	return h
}

// LoadHDRAsync schedules the load on the worker pool.
func (l *Loader) LoadHDRAsync(ctx context.Context, ref string) *HDRHandle {
	h := &HDRHandle{done: make(chan struct{})}
	l.submit(func() {
		h.img, h.err = l.LoadHDR(ctx, ref)
		close(h.done)
	})
	return h
}

func (l *Loader) submit(fn func()) {
	l.mu.Lock()
	l.submitted++
	l.taskID++
	id := l.taskID
	l.mu.Unlock()

	l.pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (any, error) {
			fn()
			l.mu.Lock()
			l.completed++
			l.mu.Unlock()
			return nil, nil
		},
	})
}

// Progress reports async completion in [0,1]; 1 when nothing is in flight.
// Feed it to an overlay LoadingBar.
func (l *Loader) Progress() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.submitted == 0 || l.completed >= l.submitted {
		return 1
	}
	return float32(l.completed) / float32(l.submitted)
}

// InFlight returns the number of scheduled loads that have not finished.
func (l *Loader) InFlight() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.submitted - l.completed
}

// ── Fetching ──────────────────────────────────────────────────────────────────

// fetch reads a ref: http(s) URLs through the client, everything else from
// the filesystem relative to baseDir.
func (l *Loader) fetch(ctx context.Context, ref string) ([]byte, error) {
	if isURL(ref) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
		if err != nil {
			return nil, fmt.Errorf("build request %q: %w", ref, err)
		}
		resp, err := l.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch %q: %w", ref, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch %q: status %s", ref, resp.Status)
		}
		return io.ReadAll(resp.Body)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(l.resolve(ref))
}

func (l *Loader) resolve(ref string) string {
	if l.baseDir == "" || filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(l.baseDir, ref)
}

func isURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
