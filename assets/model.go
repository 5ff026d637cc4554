package assets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"scenelab/scene"
)

// ErrUnsupported reports a ref whose extension no decoder claims.
var ErrUnsupported = errors.New("unsupported asset format")

// Model is a loaded model instance: a root node ready for Scene.AddNode and
// the textures that must reach the GPU before the first draw.
type Model struct {
	Root     *scene.Node
	Textures []*scene.Texture
}

// instance returns a copy with a freshly cloned node hierarchy. Meshes,
// materials, and textures stay shared; transforms are per-instance.
func (m *Model) instance() *Model {
	return &Model{Root: cloneNode(m.Root), Textures: m.Textures}
}

func cloneNode(n *scene.Node) *scene.Node {
	c := scene.NewNode(n.Name)
	c.Transform = n.Transform
	c.Mesh = n.Mesh
	c.Visible = n.Visible
	for _, child := range n.Children {
		c.AddChild(cloneNode(child))
	}
	return c
}

// collectTextures walks a hierarchy and gathers every distinct material
// texture for upload.
func collectTextures(root *scene.Node) []*scene.Texture {
	seen := make(map[*scene.Texture]bool)
	var out []*scene.Texture

	var walk func(*scene.Node)
	walk = func(n *scene.Node) {
		if n.Mesh != nil && n.Mesh.Material != nil {
			mat := n.Mesh.Material
			for _, tex := range []*scene.Texture{
				mat.AlbedoTexture,
				mat.NormalTexture,
				mat.MetallicRoughnessTexture,
				mat.EmissiveTexture,
			} {
				if tex != nil && !seen[tex] {
					seen[tex] = true
					out = append(out, tex)
				}
			}
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(root)
	return out
}

// loadModel parses a model ref by extension. URL refs are downloaded to a
// temp file first, so they must be self-contained (.glb, or .obj without a
// companion .mtl).
func (l *Loader) loadModel(ctx context.Context, ref string) (*Model, error) {
	ext := strings.ToLower(filepath.Ext(ref))

	path := l.resolve(ref)
	if isURL(ref) {
		data, err := l.fetch(ctx, ref)
		if err != nil {
			return nil, err
		}
		tmp, err := os.CreateTemp("", "scenelab-model-*"+ext)
		if err != nil {
			return nil, fmt.Errorf("model temp file: %w", err)
		}
		defer os.Remove(tmp.Name())
		if _, err := tmp.Write(data); err != nil {
			tmp.Close()
			return nil, fmt.Errorf("model temp file: %w", err)
		}
		if err := tmp.Close(); err != nil {
			return nil, fmt.Errorf("model temp file: %w", err)
		}
		path = tmp.Name()
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch ext {
	case ".glb", ".gltf":
		res, err := scene.LoadGLTF(path)
		if err != nil {
			return nil, err
		}
		for _, w := range res.Warnings {
			l.log.Warn("model asset skipped", "ref", ref, "detail", w)
		}
		name := strings.TrimSuffix(filepath.Base(ref), ext)
		return &Model{Root: res.Node(name), Textures: res.Textures}, nil
	case ".obj":
		node, err := scene.LoadOBJNode(path)
		if err != nil {
			return nil, err
		}
		return &Model{Root: node, Textures: collectTextures(node)}, nil
	default:
		return nil, fmt.Errorf("model %q: extension %q: %w", ref, ext, ErrUnsupported)
	}
}
