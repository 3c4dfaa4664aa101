package render

import "github.com/taigrr/raster/pkg/math3d"

// MaxClipVertices bounds a triangle clipped by six planes: each plane adds at
// most one vertex to a convex polygon.
const MaxClipVertices = 9

// ClipVertex is a vertex between transform and rasterization. Pos is in clip
// space; the other attributes interpolate linearly with it while clipping.
type ClipVertex struct {
	Pos   math3d.Vec4
	World math3d.Vec3
	UV    math3d.Vec2
	Light float64
}

func (a ClipVertex) lerp(b ClipVertex, t float64) ClipVertex {
	return ClipVertex{
		Pos:   a.Pos.Lerp(b.Pos, t),
		World: a.World.Lerp(b.World, t),
		UV:    a.UV.Lerp(b.UV, t),
		Light: math3d.Lerp(a.Light, b.Light, t),
	}
}

// clipPlanes are the view volume in clip space: near, far, left, right, top,
// bottom. NDC x and y span [-1, 1] and depth spans [0, 1].
var clipPlanes = [6]math3d.Vec4{
	math3d.PlaneFromPosNormal(math3d.V3(0, 0, 0), math3d.V3(0, 0, 1)),
	math3d.PlaneFromPosNormal(math3d.V3(0, 0, 1), math3d.V3(0, 0, -1)),
	math3d.PlaneFromPosNormal(math3d.V3(-1, 0, 0), math3d.V3(1, 0, 0)),
	math3d.PlaneFromPosNormal(math3d.V3(1, 0, 0), math3d.V3(-1, 0, 0)),
	math3d.PlaneFromPosNormal(math3d.V3(0, -1, 0), math3d.V3(0, 1, 0)),
	math3d.PlaneFromPosNormal(math3d.V3(0, 1, 0), math3d.V3(0, -1, 0)),
}

// ClipPlanes returns the six frustum planes in clipping order.
func ClipPlanes() [6]math3d.Vec4 { return clipPlanes }

type polygon struct {
	verts [MaxClipVertices]ClipVertex
	n     int
}

func (p *polygon) push(v ClipVertex) {
	if p.n < len(p.verts) {
		p.verts[p.n] = v
		p.n++
	}
}

// Clipper runs Sutherland-Hodgman clipping with two polygon buffers. After
// each plane the output buffer becomes the input of the next. A Clipper is
// not safe for concurrent use.
type Clipper struct {
	a, b     polygon
	src, dst *polygon
}

// NewClipper returns a ready clipper.
func NewClipper() *Clipper {
	c := &Clipper{}
	c.src, c.dst = &c.a, &c.b
	return c
}

// Clip clips tri against the view volume. The result aliases the clipper's
// storage and is valid until the next call. Fewer than three vertices means
// the triangle is outside.
func (c *Clipper) Clip(tri [3]ClipVertex) []ClipVertex {
	return c.ClipAgainst(tri, clipPlanes[:]...)
}

// ClipAgainst clips tri against the given planes in order.
func (c *Clipper) ClipAgainst(tri [3]ClipVertex, planes ...math3d.Vec4) []ClipVertex {
	if c.src == nil {
		c.src, c.dst = &c.a, &c.b
	}
	c.src.n = 0
	for _, v := range tri {
		c.src.push(v)
	}
	for _, plane := range planes {
		c.dst.n = 0
		clipPolygon(c.src, c.dst, plane)
		c.src, c.dst = c.dst, c.src
		if c.src.n == 0 {
			break
		}
	}
	return c.src.verts[:c.src.n]
}

// clipPolygon keeps the part of in on the front side of plane.
func clipPolygon(in, out *polygon, plane math3d.Vec4) {
	if in.n == 0 {
		return
	}
	prev := in.verts[in.n-1]
	prevBehind := math3d.PointBehindPlane(prev.Pos, plane)
	for i := 0; i < in.n; i++ {
		cur := in.verts[i]
		curBehind := math3d.PointBehindPlane(cur.Pos, plane)
		if prevBehind != curBehind {
			t := math3d.LinePlaneIntersection(prev.Pos, cur.Pos, plane)
			out.push(prev.lerp(cur, t))
		}
		if !curBehind {
			out.push(cur)
		}
		prev, prevBehind = cur, curBehind
	}
}
