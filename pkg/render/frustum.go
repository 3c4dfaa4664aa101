package render

import (
	"github.com/taigrr/raster/pkg/math3d"
)

// Frustum holds the six view planes in world space, ordered like the clip
// planes: near, far, left, right, top, bottom. Plane normals point inward.
type Frustum struct {
	Planes [6]math3d.Vec4
}

// FrustumFromMatrix extracts world-space planes from a view-projection matrix
// built with math3d.PerspectiveZO (Gribb/Hartmann, zero-to-one depth).
func FrustumFromMatrix(m math3d.Mat4) Frustum {
	// Row i of a column-major matrix is m[i], m[i+4], m[i+8], m[i+12].
	row := func(i int) math3d.Vec4 {
		return math3d.V4(m[i], m[i+4], m[i+8], m[i+12])
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	f := Frustum{Planes: [6]math3d.Vec4{
		r2,
		r3.Sub(r2),
		r3.Add(r0),
		r3.Sub(r0),
		r3.Add(r1),
		r3.Sub(r1),
	}}
	for i, p := range f.Planes {
		f.Planes[i] = normalizePlane(p)
	}
	return f
}

func normalizePlane(p math3d.Vec4) math3d.Vec4 {
	l := p.Vec3().Len()
	if l == 0 {
		return p
	}
	return p.Scale(1 / l)
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// Center returns the center of the box.
func (b AABB) Center() math3d.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Transform returns the box that bounds all eight corners of b after m.
func (b AABB) Transform(m math3d.Mat4) AABB {
	out := AABB{Min: m.MulVec3(b.Min), Max: m.MulVec3(b.Min)}
	for i := 1; i < 8; i++ {
		corner := math3d.V3(
			pick(i&1 != 0, b.Max.X, b.Min.X),
			pick(i&2 != 0, b.Max.Y, b.Min.Y),
			pick(i&4 != 0, b.Max.Z, b.Min.Z),
		)
		p := m.MulVec3(corner)
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}

// IntersectAABB reports whether any part of box may be inside the frustum.
// It tests the corner furthest along each plane normal, so boxes near a
// frustum corner can pass while being outside.
func (f Frustum) IntersectAABB(box AABB) bool {
	for _, plane := range f.Planes {
		p := math3d.V4(
			pick(plane.X >= 0, box.Max.X, box.Min.X),
			pick(plane.Y >= 0, box.Max.Y, box.Min.Y),
			pick(plane.Z >= 0, box.Max.Z, box.Min.Z),
			1,
		)
		if math3d.PointBehindPlane(p, plane) {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether p is inside or on every plane.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for _, plane := range f.Planes {
		if math3d.PointBehindPlane(math3d.V4FromV3(p, 1), plane) {
			return false
		}
	}
	return true
}

func pick(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}
