package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenelab/math"
)

func writeTempOBJ(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoadOBJWithMaterial(t *testing.T) {
	dir := t.TempDir()
	objPath := filepath.Join(dir, "tri.obj")
	obj := `# triangle
mtllib tri.mtl
o Tri
v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vt 1 0
vt 0 1
vn 0 0 1
usemtl redmat
f 1/1/1 2/2/1 3/3/1
`
	require.NoError(t, os.WriteFile(objPath, []byte(obj), 0644))
	mtl := `newmtl redmat
Kd 1 0 0
Ks 0.5 0.5 0.5
Ns 64
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.mtl"), []byte(mtl), 0644))

	meshes, err := LoadOBJ(objPath)
	require.NoError(t, err)
	require.Len(t, meshes, 1)

	m := meshes[0]
	assert.Equal(t, "Tri", m.Name)
	require.Len(t, m.Vertices, 3)
	require.Len(t, m.Indices, 3)
	requireVec3Near(t, math.Vec3{Z: 1}, m.Vertices[0].Normal)

	require.NotNil(t, m.Material)
	assert.Equal(t, "redmat", m.Material.Name)
	assert.InDelta(t, 1.0, float64(m.Material.Albedo.R), 1e-4)
	assert.InDelta(t, 0.0, float64(m.Material.Albedo.G), 1e-4)
	assert.InDelta(t, 64.0, float64(m.Material.Shininess), 1e-4)
	assert.Equal(t, "redmat", m.MaterialName)
}

func TestLoadOBJQuadFanTriangulation(t *testing.T) {
	path := writeTempOBJ(t, "quad.obj", `v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
`)
	meshes, err := LoadOBJ(path)
	require.NoError(t, err)
	require.Len(t, meshes, 1)

	m := meshes[0]
	assert.Len(t, m.Indices, 6, "quad fans into two triangles")
	// With no vn lines, smooth normals are generated from the faces.
	for _, v := range m.Vertices {
		requireVec3Near(t, math.Vec3{Z: 1}, v.Normal)
	}
	// Missing material falls back to the default.
	require.NotNil(t, m.Material)
	assert.Equal(t, "Default", m.Material.Name)
}

func TestLoadOBJVertexDeduplication(t *testing.T) {
	// Two triangles sharing an edge. Shared corners reuse vertex slots.
	path := writeTempOBJ(t, "strip.obj", `v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3
f 1 3 4
`)
	meshes, err := LoadOBJ(path)
	require.NoError(t, err)
	require.Len(t, meshes, 1)
	assert.Len(t, meshes[0].Vertices, 4)
	assert.Len(t, meshes[0].Indices, 6)
}

func TestLoadOBJMultipleObjects(t *testing.T) {
	path := writeTempOBJ(t, "pair.obj", `o First
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
o Second
v 2 0 0
v 3 0 0
v 2 1 0
f 4 5 6
`)
	meshes, err := LoadOBJ(path)
	require.NoError(t, err)
	require.Len(t, meshes, 2)
	assert.Equal(t, "First", meshes[0].Name)
	assert.Equal(t, "Second", meshes[1].Name)

	node, err := LoadOBJNode(path)
	require.NoError(t, err)
	assert.Equal(t, "pair", node.Name)
	assert.Nil(t, node.Mesh)
	require.Len(t, node.Children, 2)
	assert.Equal(t, "First", node.Children[0].Name)
}

func TestLoadOBJNodeSingleMesh(t *testing.T) {
	path := writeTempOBJ(t, "solo.obj", `v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`)
	node, err := LoadOBJNode(path)
	require.NoError(t, err)
	assert.Equal(t, "solo", node.Name)
	require.NotNil(t, node.Mesh)
	assert.Empty(t, node.Children)
}

func TestLoadOBJErrors(t *testing.T) {
	_, err := LoadOBJ(filepath.Join(t.TempDir(), "missing.obj"))
	require.Error(t, err)

	empty := writeTempOBJ(t, "empty.obj", "# nothing here\n")
	_, err = LoadOBJ(empty)
	require.Error(t, err, "a file without faces yields no geometry")
}
