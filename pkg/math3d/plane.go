package math3d

// Planes are stored as Vec4{n.X, n.Y, n.Z, d}. Points are homogeneous, so the
// same equation serves clip space (any W) and NDC or world space (W = 1).

// PlaneFromPosNormal returns the plane through pos whose front side faces
// normal. The normal is normalized first.
func PlaneFromPosNormal(pos, normal Vec3) Vec4 {
	n := normal.Normalize()
	return Vec4{n.X, n.Y, n.Z, -pos.Dot(n)}
}

// PlaneDistance returns dot(p.xyz, n) + d*p.w. For a unit normal and W = 1
// this is the signed distance from the plane.
func PlaneDistance(plane, p Vec4) float64 {
	return plane.X*p.X + plane.Y*p.Y + plane.Z*p.Z + plane.W*p.W
}

// PointBehindPlane reports whether p lies strictly on the back side of plane.
func PointBehindPlane(p, plane Vec4) bool {
	return PlaneDistance(plane, p) < 0
}

// LinePlaneIntersection returns the parameter t at which the segment a→b
// crosses plane, so that a.Lerp(b, t) lies on it. It returns 0 when the
// segment is parallel to the plane.
func LinePlaneIntersection(a, b, plane Vec4) float64 {
	da := PlaneDistance(plane, a)
	denom := da - PlaneDistance(plane, b)
	if denom == 0 {
		return 0
	}
	return da / denom
}

// ProjectToScreen maps NDC x and y from [-1, 1] to [0, width] and
// [0, height]. Z passes through.
func ProjectToScreen(ndc Vec3, width, height int) Vec3 {
	return Vec3{
		(ndc.X + 1) * 0.5 * float64(width),
		(ndc.Y + 1) * 0.5 * float64(height),
		ndc.Z,
	}
}
