// Package models provides meshes and their loaders for the rasterizer.
package models

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/taigrr/raster/pkg/math3d"
)

// ErrBadIndex reports an index that points past its attribute stream.
var ErrBadIndex = errors.New("index out of range")

// Mesh holds positions, normals and UVs with one index stream per attribute.
// Triangle i reads PositionIndices[3i:3i+3], NormalIndices[3i:3i+3] and
// UVIndices[3i:3i+3] in lockstep. The normal and UV streams may be empty.
// Triangles are wound clockwise seen from the front.
type Mesh struct {
	Name string

	Positions []math3d.Vec3
	Normals   []math3d.Vec3
	UVs       []math3d.Vec2

	PositionIndices []int
	NormalIndices   []int
	UVIndices       []int

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// Corner is one resolved triangle vertex.
type Corner struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	UV       math3d.Vec2
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// TriangleCount returns the number of complete index triples.
func (m *Mesh) TriangleCount() int {
	return len(m.PositionIndices) / 3
}

// VertexCount returns the number of positions.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// Triangle resolves the three corners of triangle i. It reports false when
// any index is out of range. Missing normal or UV streams yield zero values.
func (m *Mesh) Triangle(i int) ([3]Corner, bool) {
	var tri [3]Corner
	if i < 0 || i >= m.TriangleCount() {
		return tri, false
	}
	for k := range 3 {
		j := i*3 + k
		p := m.PositionIndices[j]
		if p < 0 || p >= len(m.Positions) {
			return tri, false
		}
		tri[k].Position = m.Positions[p]

		if j < len(m.NormalIndices) {
			n := m.NormalIndices[j]
			if n < 0 || n >= len(m.Normals) {
				return tri, false
			}
			tri[k].Normal = m.Normals[n]
		}
		if j < len(m.UVIndices) {
			u := m.UVIndices[j]
			if u < 0 || u >= len(m.UVs) {
				return tri, false
			}
			tri[k].UV = m.UVs[u]
		}
	}
	return tri, true
}

// Validate reports every out-of-range index and stream length mismatch.
func (m *Mesh) Validate() error {
	var err error
	if len(m.PositionIndices)%3 != 0 {
		err = multierr.Append(err, fmt.Errorf("%d position indices is not a multiple of 3", len(m.PositionIndices)))
	}
	check := func(stream string, indices []int, size int) {
		if len(indices) != 0 && len(indices) < len(m.PositionIndices) {
			err = multierr.Append(err, fmt.Errorf("%s stream has %d indices, want %d", stream, len(indices), len(m.PositionIndices)))
		}
		for i, idx := range indices {
			if idx < 0 || idx >= size {
				err = multierr.Append(err, fmt.Errorf("%s index %d = %d: %w", stream, i, idx, ErrBadIndex))
			}
		}
	}
	check("position", m.PositionIndices, len(m.Positions))
	check("normal", m.NormalIndices, len(m.Normals))
	check("uv", m.UVIndices, len(m.UVs))
	if err != nil {
		return fmt.Errorf("mesh %q: %w", m.Name, err)
	}
	return nil
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Positions) == 0 {
		return
	}

	m.BoundsMin = m.Positions[0]
	m.BoundsMax = m.Positions[0]

	for _, p := range m.Positions[1:] {
		m.BoundsMin = m.BoundsMin.Min(p)
		m.BoundsMax = m.BoundsMax.Max(p)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// Bounds returns the axis-aligned bounding box.
func (m *Mesh) Bounds() (lo, hi math3d.Vec3) {
	return m.BoundsMin, m.BoundsMax
}

// CalculateSmoothNormals replaces the normal stream with area-weighted
// averages of the outward face normals around each position.
func (m *Mesh) CalculateSmoothNormals() {
	normals := make([]math3d.Vec3, len(m.Positions))
	for i := range m.TriangleCount() {
		a, b, c := m.PositionIndices[i*3], m.PositionIndices[i*3+1], m.PositionIndices[i*3+2]
		if max(a, b, c) >= len(m.Positions) || min(a, b, c) < 0 {
			continue
		}
		p0, p1, p2 := m.Positions[a], m.Positions[b], m.Positions[c]
		// Clockwise winding: the cross product points inward.
		n := p2.Sub(p0).Cross(p1.Sub(p0))
		normals[a] = normals[a].Add(n)
		normals[b] = normals[b].Add(n)
		normals[c] = normals[c].Add(n)
	}
	for i := range normals {
		normals[i] = normals[i].Normalize()
	}
	m.Normals = normals
	m.NormalIndices = append(m.NormalIndices[:0], m.PositionIndices...)
}

// Transform applies mat to every position and normal in place.
func (m *Mesh) Transform(mat math3d.Mat4) {
	normalMat := mat.Inverse().Transpose()
	for i := range m.Positions {
		m.Positions[i] = mat.MulVec3(m.Positions[i])
	}
	for i := range m.Normals {
		m.Normals[i] = normalMat.MulVec3Dir(m.Normals[i]).Normalize()
	}
	m.CalculateBounds()
}

// FitUnit centers the mesh on the origin and scales it so its largest
// dimension is 1.
func (m *Mesh) FitUnit() {
	m.CalculateBounds()
	size := m.Size().MaxComponent()
	if size == 0 {
		return
	}
	m.Transform(math3d.ScaleUniform(1 / size).Mul(math3d.Translate(m.Center().Negate())))
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	clone := *m
	clone.Positions = append([]math3d.Vec3(nil), m.Positions...)
	clone.Normals = append([]math3d.Vec3(nil), m.Normals...)
	clone.UVs = append([]math3d.Vec2(nil), m.UVs...)
	clone.PositionIndices = append([]int(nil), m.PositionIndices...)
	clone.NormalIndices = append([]int(nil), m.NormalIndices...)
	clone.UVIndices = append([]int(nil), m.UVIndices...)
	return &clone
}
