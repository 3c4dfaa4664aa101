package render

import (
	"fmt"
	"image"
)

// BlendMode selects how a shaded fragment combines with the target.
type BlendMode int

const (
	// BlendNone replaces the destination.
	BlendNone BlendMode = iota
	// BlendAdd adds per channel with saturation. Alpha comes from the source.
	BlendAdd
)

func (m BlendMode) String() string {
	switch m {
	case BlendNone:
		return "none"
	case BlendAdd:
		return "add"
	default:
		return fmt.Sprintf("BlendMode(%d)", int(m))
	}
}

func (m BlendMode) apply(dst, src Color) Color {
	if m == BlendAdd {
		return dst.AddSaturate(src)
	}
	return src
}

// screenVertex is a projected vertex snapped to the pixel grid. U, V and
// Light are premultiplied by InvW for perspective-correct interpolation.
type screenVertex struct {
	X, Y  int
	Z     float64
	InvW  float64
	U, V  float64
	Light float64
}

// rasterTriangle carries everything a tile worker needs, so rasterization
// never reads renderer state.
type rasterTriangle struct {
	v                      [3]screenVertex
	minX, minY, maxX, maxY int

	normal    Color
	texture   *Texture
	color     Color
	target    RenderTarget
	blend     BlendMode
	depthTest bool
	// flat triangles skip depth, normals and lighting (2D fills).
	flat bool
}

// prepare computes the bounding box clamped to a width x height surface. It
// reports false for degenerate triangles and boxes without area.
func (t *rasterTriangle) prepare(width, height int) bool {
	a, b, c := t.v[0], t.v[1], t.v[2]
	if (a.X == b.X && a.Y == b.Y) || (b.X == c.X && b.Y == c.Y) {
		return false
	}
	if (a.X-c.X)*(b.Y-c.Y)-(b.X-c.X)*(a.Y-c.Y) == 0 {
		return false
	}
	t.minX = max(min(a.X, b.X, c.X), 0)
	t.minY = max(min(a.Y, b.Y, c.Y), 0)
	t.maxX = min(max(a.X, b.X, c.X), width-1)
	t.maxY = min(max(a.Y, b.Y, c.Y), height-1)
	return t.maxX-t.minX > 0 && t.maxY-t.minY > 0
}

func (t *rasterTriangle) bounds() image.Rectangle {
	return image.Rect(t.minX, t.minY, t.maxX+1, t.maxY+1)
}

// topLeftBias returns 0 when pixels exactly on an edge with inward normal
// (a, b) belong to the triangle and -1 otherwise. Screen y points down, so a
// top edge has a == 0 and b > 0 and a left edge has a > 0.
func topLeftBias(a, b int) int {
	if a > 0 || (a == 0 && b > 0) {
		return 0
	}
	return -1
}

// rasterize scan-converts t inside clip using integer barycentric
// coordinates stepped incrementally along each row.
func rasterize(fb *Framebuffer, t *rasterTriangle, clip image.Rectangle) {
	minX, minY := max(t.minX, clip.Min.X), max(t.minY, clip.Min.Y)
	maxX, maxY := min(t.maxX, clip.Max.X-1), min(t.maxY, clip.Max.Y-1)
	if minX > maxX || minY > maxY {
		return
	}

	v1, v2, v3 := t.v[0], t.v[1], t.v[2]
	det := (v1.X-v3.X)*(v2.Y-v3.Y) - (v2.X-v3.X)*(v1.Y-v3.Y)
	if det == 0 {
		return
	}
	sign := 1
	if det < 0 {
		sign, det = -1, -det
	}

	// u1 = (y2-y3)(x-x3) + (x3-x2)(y-y3), u2 = (y3-y1)(x-x3) + (x1-x3)(y-y3),
	// u3 = det - u1 - u2, all oriented so the inside is non-negative.
	a1, b1 := sign*(v2.Y-v3.Y), sign*(v3.X-v2.X)
	a2, b2 := sign*(v3.Y-v1.Y), sign*(v1.X-v3.X)
	a3, b3 := -(a1 + a2), -(b1 + b2)
	bias1, bias2, bias3 := topLeftBias(a1, b1), topLeftBias(a2, b2), topLeftBias(a3, b3)

	row1 := a1*(minX-v3.X) + b1*(minY-v3.Y)
	row2 := a2*(minX-v3.X) + b2*(minY-v3.Y)
	invDet := 1 / float64(det)
	target := fb.Target(t.target)
	width := fb.Width

	for y := minY; y <= maxY; y++ {
		u1, u2 := row1, row2
		rowOffset := y * width
		for x := minX; x <= maxX; x++ {
			u3 := det - u1 - u2
			if u1+bias1 >= 0 && u2+bias2 >= 0 && u3+bias3 >= 0 {
				t.shade(fb, target, rowOffset+x,
					float64(u1)*invDet, float64(u2)*invDet, float64(u3)*invDet)
			}
			u1 += a1
			u2 += a2
		}
		row1 += b1
		row2 += b2
	}
}

// shade writes one fragment with barycentric weights w1, w2, w3.
func (t *rasterTriangle) shade(fb *Framebuffer, target []Color, idx int, w1, w2, w3 float64) {
	if t.flat {
		target[idx] = t.blend.apply(target[idx], t.color)
		return
	}
	v1, v2, v3 := &t.v[0], &t.v[1], &t.v[2]

	invW := w1*v1.InvW + w2*v2.InvW + w3*v3.InvW
	if invW <= 0 {
		return
	}
	z := float32(w1*v1.Z + w2*v2.Z + w3*v3.Z)
	if t.depthTest && !(z < fb.depth[idx]) {
		return
	}
	fb.depth[idx] = z
	fb.normal[idx] = t.normal

	w := 1 / invW
	light := (w1*v1.Light + w2*v2.Light + w3*v3.Light) * w

	c := t.color
	if t.texture != nil {
		u := (w1*v1.U + w2*v2.U + w3*v3.U) * w
		v := (w1*v1.V + w2*v2.V + w3*v3.V) * w
		c = t.texture.Sample(u, v)
	}
	target[idx] = t.blend.apply(target[idx], c.Scale(light))
}
