// Package voxelgi approximates indirect light with a coarse voxel grid.
// Rasterized surfaces write their direct light into the cell they touch, a
// diffusion pass spreads that energy to nearby cells once per frame, and the
// lighting stage queries the grid for an indirect bonus.
package voxelgi

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/taigrr/raster/pkg/math3d"
)

// Params are the simulation constants of a grid.
type Params struct {
	ContribSpeed float32 // neighbor blend rate per second
	DecaySpeed   float32 // source decay rate per second
	K1, K2, K3   float32 // weight terms of the contribution kernel
	Dist         float32 // distance bias of the contribution kernel

	// UpdateInterval accepts one Write out of every UpdateInterval calls.
	// Values below 2 accept every write.
	UpdateInterval int

	// RandomSampling visits cells in a random order drawn from the grid's own
	// generator, reseeded with SamplingSeed on every Update.
	RandomSampling bool
	SamplingSeed   uint32

	// Interpolate blends a query with the next cell along the dominant axis.
	Interpolate bool
}

// DefaultParams returns the tuned constants.
func DefaultParams() Params {
	return Params{
		ContribSpeed:   35,
		DecaySpeed:     55,
		K1:             10,
		K2:             20,
		K3:             30,
		Dist:           1.2,
		UpdateInterval: 1,
		SamplingSeed:   2147483647,
	}
}

// Sample is one cell: an accumulated surface normal and a light weight.
type Sample struct {
	Normal [3]float32
	Weight float32
}

// Grid is a fixed size 3D array of samples. World position p falls into
// cell floor(Offset + p). A Grid is not safe for concurrent use.
type Grid struct {
	Offset              math3d.Vec3
	XSize, YSize, ZSize int
	Params              Params

	samples     []Sample
	rng         *LCG
	order       []int32
	updateTries int
}

// NewGrid allocates a zeroed grid. Sizes below 1 are raised to 1.
func NewGrid(offset math3d.Vec3, xsize, ysize, zsize int, params Params) *Grid {
	xsize, ysize, zsize = max(xsize, 1), max(ysize, 1), max(zsize, 1)
	return &Grid{
		Offset:  offset,
		XSize:   xsize,
		YSize:   ysize,
		ZSize:   zsize,
		Params:  params,
		samples: make([]Sample, xsize*ysize*zsize),
		rng:     NewLCG(params.SamplingSeed),
	}
}

func (g *Grid) String() string {
	return fmt.Sprintf("voxelgi.Grid(%dx%dx%d @ %v)", g.XSize, g.YSize, g.ZSize, g.Offset)
}

// Index returns the sample index of cell (x, y, z).
func (g *Grid) Index(x, y, z int) int {
	return g.XSize*g.ZSize*y + g.XSize*z + x
}

func (g *Grid) inBounds(x, y, z int) bool {
	return x >= 0 && x < g.XSize && y >= 0 && y < g.YSize && z >= 0 && z < g.ZSize
}

// At returns the sample of cell (x, y, z) and whether the cell exists.
func (g *Grid) At(x, y, z int) (Sample, bool) {
	if !g.inBounds(x, y, z) {
		return Sample{}, false
	}
	return g.samples[g.Index(x, y, z)], true
}

// Cell returns the cell containing world position pos.
func (g *Grid) Cell(pos math3d.Vec3) (x, y, z int, ok bool) {
	p := g.Offset.Add(pos).Floor()
	x, y, z = int(p.X), int(p.Y), int(p.Z)
	return x, y, z, g.inBounds(x, y, z)
}

// Samples returns the sample slice in index order. It aliases the grid.
func (g *Grid) Samples() []Sample { return g.samples }

// Each calls fn for every cell in index order.
func (g *Grid) Each(fn func(x, y, z int, s Sample)) {
	for y := range g.YSize {
		for z := range g.ZSize {
			for x := range g.XSize {
				fn(x, y, z, g.samples[g.Index(x, y, z)])
			}
		}
	}
}

// Reset zeroes every sample.
func (g *Grid) Reset() {
	clear(g.samples)
	g.updateTries = 0
}

// Write blends the cell containing pos toward (normal, weight) by
// clamp(dt*ContribSpeed, 0, 1). Writes outside the grid are ignored.
func (g *Grid) Write(pos, normal math3d.Vec3, weight, dt float64) {
	g.updateTries++
	if g.Params.UpdateInterval > 1 && g.updateTries%g.Params.UpdateInterval != 0 {
		return
	}
	x, y, z, ok := g.Cell(pos)
	if !ok {
		return
	}
	t := clamp01(float32(dt) * g.Params.ContribSpeed)
	s := &g.samples[g.Index(x, y, z)]
	s.Normal = lerp3(s.Normal, vec3f(normal), t)
	s.Weight = lerp(s.Weight, float32(weight), t)
}

// Query returns the indirect light at pos: the cell weight scaled by a
// falloff of the offset from the cell center. Positions outside the grid
// return 0.
func (g *Grid) Query(pos math3d.Vec3) float64 {
	p := g.Offset.Add(pos)
	cell := p.Floor()
	x, y, z := int(cell.X), int(cell.Y), int(cell.Z)
	if !g.inBounds(x, y, z) {
		return 0
	}
	frac := p.Sub(cell).Sub(math3d.V3(0.5, 0.5, 0.5))
	falloff := math3d.Clamp(1-frac.LenSq(), 0, 1)
	weight := float64(g.samples[g.Index(x, y, z)].Weight)

	if g.Params.Interpolate {
		// Blend toward the neighbor on the side of the dominant offset axis.
		nx, ny, nz, t := x, y, z, 0.0
		a := frac.Abs()
		switch {
		case a.X >= a.Y && a.X >= a.Z:
			nx, t = x+step(frac.X), a.X
		case a.Y >= a.Z:
			ny, t = y+step(frac.Y), a.Y
		default:
			nz, t = z+step(frac.Z), a.Z
		}
		if n, ok := g.At(nx, ny, nz); ok {
			weight = math3d.Lerp(weight, float64(n.Weight), t)
		}
	}
	return weight * falloff
}

func step(v float64) int {
	if v < 0 {
		return -1
	}
	return 1
}

// Update runs one diffusion pass. Every cell pushes its normal and weight into
// the neighbors in [-2, 2)³ it faces, then decays by how much it gave away.
// Blend factors are clamped to [0, 1], so weights stay within the range of
// the values written. Update(0) changes nothing.
func (g *Grid) Update(dt float64) {
	fdt := float32(dt)
	if fdt <= 0 {
		return
	}
	p := g.Params
	order := g.visitOrder()

	var visited float32
	for _, idx := range order {
		x, y, z := g.coords(int(idx))
		visited++
		src := &g.samples[idx]

		var fsum float32
		for sy := -2; sy < 2; sy++ {
			for sz := -2; sz < 2; sz++ {
				for sx := -2; sx < 2; sx++ {
					if sx == 0 && sy == 0 && sz == 0 {
						continue
					}
					nx, ny, nz := x+sx, y+sy, z+sz
					if !g.inBounds(nx, ny, nz) {
						continue
					}
					n := &g.samples[g.Index(nx, ny, nz)]
					c := g.contribution(src, n, [3]float32{float32(sx), float32(sy), float32(sz)})
					if c == 0 {
						continue
					}
					fsum += c
					f := clamp01(c * p.ContribSpeed * fdt)
					n.Weight = lerp(n.Weight, src.Weight, f)
					n.Normal = lerp3(n.Normal, src.Normal, f)
				}
			}
		}
		if fsum == 0 {
			continue
		}
		decay := clamp01(fsum / visited * p.DecaySpeed * fdt)
		src.Weight = lerp(src.Weight, 0, decay)
		src.Normal = lerp3(src.Normal, [3]float32{}, decay)
	}
}

// contribution scores how much src gives to neighbor n at local offset o.
func (g *Grid) contribution(src, n *Sample, o [3]float32) float32 {
	w := src.Weight
	if w <= 0 {
		return 0
	}
	p := g.Params
	d1 := normalize(add3(src.Normal, n.Normal))
	distance := dot3(o, o) + dot3(d1, d1)
	denom := p.K1 * w * p.K2 * w * p.K3 * w
	c := clamp01(1 / (1 + (distance+p.Dist)/denom))
	return c * clamp01(dot3(src.Normal, normalize(o)))
}

func (g *Grid) coords(idx int) (x, y, z int) {
	layer := g.XSize * g.ZSize
	y = idx / layer
	rem := idx % layer
	return rem % g.XSize, y, rem / g.XSize
}

// visitOrder returns the cell order for one update, a random permutation
// when RandomSampling is set and index order otherwise.
func (g *Grid) visitOrder() []int32 {
	if len(g.order) != len(g.samples) {
		g.order = make([]int32, len(g.samples))
	}
	if !g.Params.RandomSampling {
		for i := range g.order {
			g.order[i] = int32(i)
		}
		return g.order
	}
	g.rng.Seed(g.Params.SamplingSeed)
	g.rng.Perm(g.order)
	if g.Params.UpdateInterval > 1 {
		g.updateTries = g.rng.Intn(g.Params.UpdateInterval)
	}
	return g.order
}

func vec3f(v math3d.Vec3) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

func add3(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func dot3(a, b [3]float32) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func normalize(v [3]float32) [3]float32 {
	l := math32.Sqrt(dot3(v, v))
	if l == 0 {
		return [3]float32{}
	}
	return [3]float32{v[0] / l, v[1] / l, v[2] / l}
}

func lerp(a, b, t float32) float32 { return a + (b-a)*t }

func lerp3(a, b [3]float32, t float32) [3]float32 {
	return [3]float32{lerp(a[0], b[0], t), lerp(a[1], b[1], t), lerp(a[2], b[2], t)}
}

func clamp01(v float32) float32 {
	return math32.Max(0, math32.Min(v, 1))
}
