package render

import (
	"image"

	"github.com/taigrr/raster/pkg/math3d"
)

// 2D drawing. Everything here writes the active render target through the
// active blend mode and ignores depth.

// plot writes one pixel, ignoring coordinates outside the framebuffer.
func (r *Renderer) plot(x, y int, c Color) {
	fb := r.fb
	if !fb.inBounds(x, y) {
		return
	}
	target := fb.Target(r.target)
	i := y*fb.Width + x
	target[i] = r.blend.apply(target[i], c)
}

// clipRect intersects the rectangle x, y, w, h with the framebuffer.
func (r *Renderer) clipRect(x, y, w, h int) image.Rectangle {
	return image.Rect(x, y, x+w, y+h).Intersect(image.Rect(0, 0, r.fb.Width, r.fb.Height))
}

// FillRect fills the w x h rectangle at (x, y).
func (r *Renderer) FillRect(x, y, w, h int, c Color) {
	rect := r.clipRect(x, y, w, h)
	target := r.fb.Target(r.target)
	for py := rect.Min.Y; py < rect.Max.Y; py++ {
		row := target[py*r.fb.Width : (py+1)*r.fb.Width]
		for px := rect.Min.X; px < rect.Max.X; px++ {
			row[px] = r.blend.apply(row[px], c)
		}
	}
}

// DrawRect outlines the w x h rectangle at (x, y).
func (r *Renderer) DrawRect(x, y, w, h int, c Color) {
	if w <= 0 || h <= 0 {
		return
	}
	x1, y1 := x+w-1, y+h-1
	for px := x; px <= x1; px++ {
		r.plot(px, y, c)
		if y1 != y {
			r.plot(px, y1, c)
		}
	}
	for py := y + 1; py < y1; py++ {
		r.plot(x, py, c)
		if x1 != x {
			r.plot(x1, py, c)
		}
	}
}

// FillRectGradient fills a rectangle blending from start to end. Each pixel
// maps to uv in [-1, 0)²; the blend factor is the smaller of -uv·startDir and
// -uv·endDir. With both directions (0, 1) the top row is end and the bottom
// approaches start.
func (r *Renderer) FillRectGradient(x, y, w, h int, start, end Color, startDir, endDir math3d.Vec2) {
	rect := r.clipRect(x, y, w, h)
	if rect.Empty() {
		return
	}
	fw, fh := float64(rect.Dx()), float64(rect.Dy())
	target := r.fb.Target(r.target)
	for py := rect.Min.Y; py < rect.Max.Y; py++ {
		for px := rect.Min.X; px < rect.Max.X; px++ {
			uv := math3d.V2(float64(px-rect.Min.X)/fw-1, float64(py-rect.Min.Y)/fh-1)
			t := min(-uv.Dot(startDir), -uv.Dot(endDir))
			i := py*r.fb.Width + px
			target[i] = r.blend.apply(target[i], start.Lerp(end, t))
		}
	}
}

// DrawLine draws a line with Bresenham's algorithm.
func (r *Renderer) DrawLine(x0, y0, x1, y1 int, c Color) {
	w, h := r.fb.Width, r.fb.Height
	if (x0 < 0 && x1 < 0) || (x0 >= w && x1 >= w) || (y0 < 0 && y1 < 0) || (y0 >= h && y1 >= h) {
		return
	}

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		r.plot(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// FillTriangle fills a flat 2D triangle with the same fill convention as
// mesh rasterization. It counts toward Stats.
func (r *Renderer) FillTriangle(x0, y0, x1, y1, x2, y2 int, c Color) {
	tri := rasterTriangle{
		v: [3]screenVertex{
			{X: x0, Y: y0},
			{X: x1, Y: y1},
			{X: x2, Y: y2},
		},
		color:  c,
		target: r.target,
		blend:  r.blend,
		flat:   true,
	}
	if !tri.prepare(r.fb.Width, r.fb.Height) {
		r.stats.Culled++
		return
	}
	r.stats.Drawn++
	rasterize(r.fb, &tri, tri.bounds())
}

// FillCircle fills the pixels within radius of (cx, cy).
func (r *Renderer) FillCircle(cx, cy, radius int, c Color) {
	if radius < 0 {
		return
	}
	rect := r.clipRect(cx-radius, cy-radius, 2*radius+1, 2*radius+1)
	rr := radius * radius
	for py := rect.Min.Y; py < rect.Max.Y; py++ {
		for px := rect.Min.X; px < rect.Max.X; px++ {
			dx, dy := px-cx, py-cy
			if dx*dx+dy*dy <= rr {
				r.plot(px, py, c)
			}
		}
	}
}
