package assets

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, testImage(w, h)))
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(w, h)))
	return buf.Bytes()
}

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 40), G: uint8(y * 40), B: 128, A: 255})
		}
	}
	return img
}

func TestLoadTextureFromFileAndCache(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "tex.png"), 4, 4)

	l := NewLoader(nil, dir, nil)
	tex, err := l.LoadTexture(context.Background(), "tex.png")
	require.NoError(t, err)
	require.NotNil(t, tex)
	assert.Equal(t, 4, tex.Width)
	assert.Equal(t, 4, tex.Height)
	assert.Len(t, tex.Pixels, 4*4*4)

	again, err := l.LoadTexture(context.Background(), "tex.png")
	require.NoError(t, err)
	assert.Same(t, tex, again, "second load should hit the cache")
}

func TestLoadTextureMissingFileFallsBack(t *testing.T) {
	l := NewLoader(nil, t.TempDir(), nil)
	tex, err := l.LoadTexture(context.Background(), "nope.png")
	require.Error(t, err)
	require.NotNil(t, tex, "failure must still yield a drawable texture")
	assert.Equal(t, 2, tex.Width)
	assert.Equal(t, 2, tex.Height)
}

func TestLoadTextureOverHTTP(t *testing.T) {
	data := pngBytes(t, 8, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	l := NewLoader(nil, "", nil)
	tex, err := l.LoadTexture(context.Background(), srv.URL+"/remote.png")
	require.NoError(t, err)
	assert.Equal(t, 8, tex.Width)
	assert.Equal(t, 8, tex.Height)
}

func TestLoadTextureHTTPErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	l := NewLoader(nil, "", nil)
	tex, err := l.LoadTexture(context.Background(), srv.URL+"/remote.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, 2, tex.Width)
}

func TestLoadTextureDownscalesToPowerOfTwo(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "odd.png"), 10, 6)

	l := NewLoader(nil, dir, nil)
	tex, err := l.LoadTexture(context.Background(), "odd.png")
	require.NoError(t, err)
	assert.Equal(t, 8, tex.Width)
	assert.Equal(t, 4, tex.Height)
}

const triangleOBJ = `v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`

func TestLoadModelOBJ(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.obj"), []byte(triangleOBJ), 0o644))

	l := NewLoader(nil, dir, nil)
	m, err := l.LoadModel(context.Background(), "tri.obj")
	require.NoError(t, err)
	require.NotNil(t, m.Root)
	require.NotNil(t, m.Root.Mesh)
	assert.Equal(t, "tri", m.Root.Name)
	assert.Len(t, m.Root.Mesh.Vertices, 3)
}

func TestLoadModelInstancesShareGeometry(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.obj"), []byte(triangleOBJ), 0o644))

	l := NewLoader(nil, dir, nil)
	first, err := l.LoadModel(context.Background(), "tri.obj")
	require.NoError(t, err)
	second, err := l.LoadModel(context.Background(), "tri.obj")
	require.NoError(t, err)

	assert.NotSame(t, first.Root, second.Root, "each load gets its own node hierarchy")
	assert.Same(t, first.Root.Mesh, second.Root.Mesh, "geometry stays shared")
}

func TestLoadModelBadRefFallsBack(t *testing.T) {
	l := NewLoader(nil, t.TempDir(), nil)
	m, err := l.LoadModel(context.Background(), "thing.stl")
	require.ErrorIs(t, err, ErrUnsupported)
	require.NotNil(t, m.Root, "failure must still yield a drawable model")
	require.NotNil(t, m.Root.Mesh)
	assert.Equal(t, "fallback_model", m.Root.Name)
	assert.Len(t, m.Textures, 1)
}

func TestLoadTextureAsync(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "tex.png"), 4, 4)

	l := NewLoader(nil, dir, nil)
	h := l.LoadTextureAsync(context.Background(), "tex.png")

	tex := h.Wait()
	require.NotNil(t, tex)
	assert.True(t, h.Done())
	assert.NoError(t, h.Err())
	assert.Equal(t, 4, tex.Width)

	// completed is bumped after the handle closes, so poll briefly.
	require.Eventually(t, func() bool { return l.Progress() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, l.InFlight())
}

func TestHandleBeforeCompletion(t *testing.T) {
	h := &TextureHandle{done: make(chan struct{})}
	assert.False(t, h.Done())
	assert.Nil(t, h.Texture())
	assert.NoError(t, h.Err())
}

func TestProgressIdleIsOne(t *testing.T) {
	l := NewLoader(nil, "", nil)
	assert.Equal(t, float32(1), l.Progress())
	assert.Equal(t, 0, l.InFlight())
}
