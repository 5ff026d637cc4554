package flight

import (
	"github.com/chewxy/math32"

	"scenelab/core"
	"scenelab/math"
	"scenelab/scene"
)

// basePeriod is the lattice resolution of the lowest noise octave. Every
// octave doubles it, so all octaves share the terrain's world period and
// the heightfield tiles seamlessly.
const basePeriod = 16

// Terrain is a tileable value-noise heightfield. HeightAt answers for any
// world coordinate; the world repeats every Size units on both axes, which
// lets the flight scene wrap the aircraft without a visible seam.
type Terrain struct {
	Size      float32 // world extent of one tile, centered on the origin
	Cells     int     // mesh quads per side
	MaxHeight float32
	seed      uint32
}

func NewTerrain(size float32, cells int, maxHeight float32, seed uint32) *Terrain {
	if cells < 1 {
		cells = 1
	}
	return &Terrain{Size: size, Cells: cells, MaxHeight: maxHeight, seed: seed}
}

// lattice hashes an integer lattice point to [0,1). Coordinates are reduced
// modulo period so the noise repeats.
func (t *Terrain) lattice(ix, iz, period int32) float32 {
	ix = ((ix % period) + period) % period
	iz = ((iz % period) + period) % period
	h := uint32(ix)*374761393 + uint32(iz)*668265263 + t.seed*2246822519
	h = (h ^ (h >> 13)) * 1274126177
	h ^= h >> 16
	return float32(h&0xffff) / 65536
}

// noise is smoothstep-interpolated value noise on the given lattice period.
func (t *Terrain) noise(x, z float32, period int32) float32 {
	fx := math32.Floor(x)
	fz := math32.Floor(z)
	ix := int32(fx)
	iz := int32(fz)
	rx := x - fx
	rz := z - fz
	sx := rx * rx * (3 - 2*rx)
	sz := rz * rz * (3 - 2*rz)

	n00 := t.lattice(ix, iz, period)
	n10 := t.lattice(ix+1, iz, period)
	n01 := t.lattice(ix, iz+1, period)
	n11 := t.lattice(ix+1, iz+1, period)
	return math.Lerp(math.Lerp(n00, n10, sx), math.Lerp(n01, n11, sx), sz)
}

// HeightAt returns the terrain height at a world position. Four octaves of
// value noise, squared to widen the valleys.
func (t *Terrain) HeightAt(x, z float32) float32 {
	u := x / t.Size * basePeriod
	v := z / t.Size * basePeriod

	var sum, norm float32
	amp := float32(1)
	freq := float32(1)
	period := int32(basePeriod)
	for o := 0; o < 4; o++ {
		sum += t.noise(u*freq, v*freq, period) * amp
		norm += amp
		amp *= 0.5
		freq *= 2
		period *= 2
	}
	h := sum / norm
	return h * h * t.MaxHeight
}

// normalAt estimates the surface normal by central differences one mesh
// cell wide.
func (t *Terrain) normalAt(x, z float32) math.Vec3 {
	e := t.Size / float32(t.Cells)
	return math.Vec3{
		X: t.HeightAt(x-e, z) - t.HeightAt(x+e, z),
		Y: 2 * e,
		Z: t.HeightAt(x, z-e) - t.HeightAt(x, z+e),
	}.Normalize()
}

// BuildMesh tessellates one tile of the heightfield. Edge vertices sample
// the periodic noise at identical phases, so adjacent tiles stitch exactly.
func (t *Terrain) BuildMesh() *scene.Mesh {
	side := t.Cells + 1
	half := t.Size / 2
	step := t.Size / float32(t.Cells)

	vertices := make([]core.Vertex, 0, side*side)
	for j := 0; j < side; j++ {
		for i := 0; i < side; i++ {
			x := -half + float32(i)*step
			z := -half + float32(j)*step
			h := t.HeightAt(x, z)
			n := t.normalAt(x, z)
			vertices = append(vertices, core.Vertex{
				Position: math.Vec3{X: x, Y: h, Z: z},
				Normal:   n,
				UV:       math.Vec2{X: float32(i) / float32(t.Cells) * 8, Y: float32(j) / float32(t.Cells) * 8},
				Color:    terrainColor(h/t.MaxHeight, 1-n.Y),
			})
		}
	}

	indices := make([]uint32, 0, t.Cells*t.Cells*6)
	for j := 0; j < t.Cells; j++ {
		for i := 0; i < t.Cells; i++ {
			a := uint32(j*side + i)
			b := a + 1
			c := a + uint32(side)
			d := c + 1
			indices = append(indices, a, c, b, b, c, d)
		}
	}

	return scene.CreateMeshFromData("terrain", vertices, indices)
}

// terrainColor picks the vertex tint from normalised height and slope.
// Grass gives way to rock with altitude and steepness, then to snow.
func terrainColor(h, slope float32) core.Color {
	grass := core.Color{R: 0.22, G: 0.42, B: 0.16, A: 1}
	rock := core.Color{R: 0.43, G: 0.39, B: 0.36, A: 1}
	snow := core.Color{R: 0.92, G: 0.93, B: 0.96, A: 1}

	c := grass.Lerp(rock, math.Clamp01((h-0.3)/0.35))
	c = c.Lerp(snow, math.Clamp01((h-0.72)/0.18))
	return c.Lerp(rock, math.Clamp01((slope-0.45)/0.4))
}

// wrapCoord folds a coordinate back into the tile [-size/2, size/2).
func wrapCoord(x, size float32) float32 {
	half := size / 2
	for x >= half {
		x -= size
	}
	for x < -half {
		x += size
	}
	return x
}
