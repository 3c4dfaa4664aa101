package models

import "github.com/taigrr/raster/pkg/math3d"

// quad corner UVs: top left, top right, bottom right, bottom left.
var quadUVs = []math3d.Vec2{
	math3d.V2(0, 0), math3d.V2(1, 0), math3d.V2(1, 1), math3d.V2(0, 1),
}

var quadUVIndices = [6]int{0, 1, 2, 0, 2, 3}

// addQuad appends a face centered at c with outward normal n. right and up
// span the face as seen from outside, so right × up = n.
func (m *Mesh) addQuad(c, n, right, up math3d.Vec3) {
	base := len(m.Positions)
	m.Positions = append(m.Positions,
		c.Sub(right).Add(up),
		c.Add(right).Add(up),
		c.Add(right).Sub(up),
		c.Sub(right).Sub(up),
	)
	ni := len(m.Normals)
	m.Normals = append(m.Normals, n)
	for _, k := range quadUVIndices {
		m.PositionIndices = append(m.PositionIndices, base+k)
		m.NormalIndices = append(m.NormalIndices, ni)
		m.UVIndices = append(m.UVIndices, k)
	}
}

// NewCube returns an axis-aligned cube of edge length size centered on the
// origin: 6 faces, 12 triangles, one flat normal per face.
func NewCube(size float64) *Mesh {
	h := size / 2
	m := NewMesh("cube")
	m.UVs = append(m.UVs, quadUVs...)
	faces := []struct{ n, right, up math3d.Vec3 }{
		{math3d.V3(0, 0, 1), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)},
		{math3d.V3(0, 0, -1), math3d.V3(-1, 0, 0), math3d.V3(0, 1, 0)},
		{math3d.V3(1, 0, 0), math3d.V3(0, 0, -1), math3d.V3(0, 1, 0)},
		{math3d.V3(-1, 0, 0), math3d.V3(0, 0, 1), math3d.V3(0, 1, 0)},
		{math3d.V3(0, 1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, -1)},
		{math3d.V3(0, -1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, 1)},
	}
	for _, f := range faces {
		m.addQuad(f.n.Scale(h), f.n, f.right.Scale(h), f.up.Scale(h))
	}
	m.CalculateBounds()
	return m
}

// NewPlane returns a size x size floor in the XZ plane facing +Y.
func NewPlane(size float64) *Mesh {
	h := size / 2
	m := NewMesh("plane")
	m.UVs = append(m.UVs, quadUVs...)
	m.addQuad(math3d.Vec3{}, math3d.V3(0, 1, 0), math3d.V3(h, 0, 0), math3d.V3(0, 0, -h))
	m.CalculateBounds()
	return m
}

// NewTriangle returns a single triangle a, b, c, which must be wound
// clockwise seen from the front. UVs are (0,0), (1,0), (0,1).
func NewTriangle(a, b, c math3d.Vec3) *Mesh {
	m := NewMesh("triangle")
	m.Positions = []math3d.Vec3{a, b, c}
	m.UVs = []math3d.Vec2{math3d.V2(0, 0), math3d.V2(1, 0), math3d.V2(0, 1)}
	m.PositionIndices = []int{0, 1, 2}
	m.UVIndices = []int{0, 1, 2}
	m.CalculateSmoothNormals()
	m.CalculateBounds()
	return m
}
