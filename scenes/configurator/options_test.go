package configurator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenelab/logx"
	"scenelab/scene"
)

// bareConfigurator wires the option model without a window or GL context.
func bareConfigurator(t *testing.T) *Configurator {
	t.Helper()
	c := New()
	c.log = logx.Discard()
	c.product, c.parts = buildProduct(&c.res)
	c.groups = defaultGroups()
	c.partGroup = make(map[string]*Group)
	c.materials = make(map[string]*scene.Material)
	c.tweens = make(map[string]*paintTween)
	c.history = NewHistory(16)
	for _, g := range c.groups {
		first := g.Choices[0]
		mat := scene.NewPBRMaterial(g.Name, first.Albedo, first.Metallic, first.Roughness)
		c.materials[g.Name] = mat
		for _, part := range g.Parts {
			c.partGroup[part] = g
			if node := c.parts[part]; node != nil {
				node.Mesh.Material = mat
				node.Visible = !first.Hide
			}
		}
	}
	return c
}

func (c *Configurator) settleTweens(t *testing.T) {
	t.Helper()
	for i := 0; i < 100 && len(c.tweens) > 0; i++ {
		for name, tw := range c.tweens {
			if tw.update(0.05) {
				delete(c.tweens, name)
			}
		}
	}
	require.Empty(t, c.tweens, "tweens should finish")
}

func TestGroupsCoverBuiltParts(t *testing.T) {
	c := bareConfigurator(t)
	for _, g := range c.groups {
		for _, part := range g.Parts {
			assert.Contains(t, c.parts, part, "group %s names a missing part", g.Name)
		}
	}
}

func TestGroupWrapped(t *testing.T) {
	g := &Group{Choices: make([]Choice, 3)}
	assert.Equal(t, 2, g.wrapped(-1))
	assert.Equal(t, 0, g.wrapped(3))
	assert.Equal(t, 1, g.wrapped(4))
}

func TestApplySelectionPaintsGroup(t *testing.T) {
	c := bareConfigurator(t)
	body := c.groups[0]
	target := body.Choices[2]

	c.applySelection(body, 2)
	c.settleTweens(t)

	mat := c.materials[body.Name]
	assert.InDelta(t, target.Albedo.R, mat.Albedo.R, 1e-3)
	assert.InDelta(t, target.Albedo.B, mat.Albedo.B, 1e-3)
	assert.InDelta(t, target.Metallic, mat.Metallic, 1e-3)
	assert.InDelta(t, target.Roughness, mat.Roughness, 1e-3)
}

func TestHideChoiceTogglesVisibility(t *testing.T) {
	c := bareConfigurator(t)
	var kit *Group
	for _, g := range c.groups {
		if g.Name == "kit" {
			kit = g
		}
	}
	require.NotNil(t, kit)
	spoiler := c.parts["spoiler"]
	require.True(t, spoiler.Visible)

	c.applySelection(kit, 1)
	assert.False(t, spoiler.Visible)

	c.applySelection(kit, 0)
	assert.True(t, spoiler.Visible)
}

func TestCycleActiveRecordsUndoableEdit(t *testing.T) {
	c := bareConfigurator(t)
	body := c.groups[0]
	c.active = 0

	c.cycleActive(1)
	assert.Equal(t, 1, body.Index())
	require.True(t, c.history.CanUndo())
	assert.Equal(t, "body cobalt", c.history.Recent())

	require.True(t, c.history.Undo())
	assert.Equal(t, 0, body.Index())

	require.True(t, c.history.Redo())
	assert.Equal(t, 1, body.Index())
}

func TestCycleWrapsBackwards(t *testing.T) {
	c := bareConfigurator(t)
	body := c.groups[0]
	c.active = 0

	c.cycleActive(-1)
	assert.Equal(t, len(body.Choices)-1, body.Index())
}

func TestPaintTweenReachesTarget(t *testing.T) {
	mat := scene.NewPBRMaterial("paint", defaultGroups()[0].Choices[0].Albedo, 0.8, 0.4)
	to := Choice{Albedo: defaultGroups()[0].Choices[1].Albedo, Metallic: 0.2, Roughness: 0.9}

	tw := newPaintTween(mat, to)
	done := false
	for i := 0; i < 50 && !done; i++ {
		done = tw.update(0.05)
	}

	require.True(t, done)
	assert.InDelta(t, to.Albedo.G, mat.Albedo.G, 1e-3)
	assert.InDelta(t, 0.2, mat.Metallic, 1e-3)
	assert.InDelta(t, 0.9, mat.Roughness, 1e-3)
}

func TestBuildProductHasWheelsOnBothSides(t *testing.T) {
	c := bareConfigurator(t)
	fl := c.parts["wheel_fl"].Transform.Position
	fr := c.parts["wheel_fr"].Transform.Position
	assert.InDelta(t, fl.X, fr.X, 1e-5)
	assert.InDelta(t, fl.Z, -fr.Z, 1e-5)
}
