// Package shader holds every GLSL source the renderer links, keyed by name.
// The built-in table ships with the binary; LoadDir overlays sources from
// disk and Watch re-reads changed files so programs can be relinked live.
package shader

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"scenelab/logx"
)

// ErrUnknown is returned by Source for a name with no registered GLSL.
var ErrUnknown = errors.New("unknown shader")

// Registry maps shader names to NUL-terminated GLSL sources.
// Safe for concurrent use; the watcher goroutine registers reloaded
// sources while the render loop reads them.
type Registry struct {
	log *slog.Logger

	mu      sync.RWMutex
	sources map[string]string
	gen     uint64

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewRegistry returns a registry seeded with the built-in sources.
// A nil logger discards all registry logging.
func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = logx.Discard()
	}
	r := &Registry{
		log:     log.With("component", "shader"),
		sources: make(map[string]string, len(builtins)),
	}
	for name, src := range builtins {
		r.sources[name] = terminate(src)
	}
	return r
}

// Source returns the GLSL for name, NUL-terminated for the GL loader.
func (r *Registry) Source(name string) (string, error) {
	r.mu.RLock()
	src, ok := r.sources[name]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	return src, nil
}

// MustSource is Source for names known at compile time. Panics on a missing
// name; a renderer linking a stage that does not exist is a programming error.
func (r *Registry) MustSource(name string) string {
	src, err := r.Source(name)
	if err != nil {
		panic(err)
	}
	return src
}

// Names returns every registered shader name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Register adds or replaces the source for name and bumps the generation.
// The source is NUL-terminated if it is not already.
func (r *Registry) Register(name, src string) {
	r.mu.Lock()
	r.sources[name] = terminate(src)
	r.gen++
	r.mu.Unlock()
}

// Generation returns a counter incremented on every Register. The renderer
// polls this each frame and relinks its programs when the value moves.
func (r *Registry) Generation() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gen
}

// LoadDir overlays <name>.vert / <name>.frag files from dir over the
// built-ins; the file name becomes the registry key. A missing directory is
// not an error. Unreadable files are skipped with a warning.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("shader dir %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !isShaderFile(e.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			r.log.Warn("shader override unreadable", "file", e.Name(), "error", err)
			continue
		}
		r.Register(e.Name(), string(data))
		r.log.Info("shader override loaded", "name", e.Name())
	}
	return nil
}

// Watch re-reads any .vert/.frag file written under dir and registers the
// new source, bumping the generation. One watch per registry; Close stops it.
func (r *Registry) Watch(dir string) error {
	if r.watcher != nil {
		return errors.New("shader watch already active")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("shader watch: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return fmt.Errorf("shader watch %s: %w", dir, err)
	}
	r.watcher = w
	r.done = make(chan struct{})
	go r.watchLoop()
	r.log.Info("watching shader dir", "dir", dir)
	return nil
}

func (r *Registry) watchLoop() {
	for {
		select {
		case ev, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			name := filepath.Base(ev.Name)
			if !isShaderFile(name) {
				continue
			}
			data, err := os.ReadFile(ev.Name)
			if err != nil {
				r.log.Warn("shader reload failed", "file", name, "error", err)
				continue
			}
			r.Register(name, string(data))
			r.log.Info("shader reloaded", "name", name, "generation", r.Generation())
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.log.Warn("shader watcher error", "error", err)
		case <-r.done:
			return
		}
	}
}

// Close stops the watch goroutine. Safe to call with no watch active.
func (r *Registry) Close() error {
	if r.watcher == nil {
		return nil
	}
	close(r.done)
	err := r.watcher.Close()
	r.watcher = nil
	return err
}

// terminate ensures src ends with the NUL byte gl.Strs requires.
func terminate(src string) string {
	if strings.HasSuffix(src, "\x00") {
		return src
	}
	return src + "\x00"
}

func isShaderFile(name string) bool {
	ext := filepath.Ext(name)
	return ext == ".vert" || ext == ".frag"
}
