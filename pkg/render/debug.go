package render

import (
	"math"

	"github.com/taigrr/raster/pkg/math3d"
	"github.com/taigrr/raster/pkg/voxelgi"
)

// Debug overlays. They use the camera from the last Begin, ignore depth and
// write through the active target and blend mode.

// worldToScreen projects p to pixel coordinates. It reports false for points
// behind the near plane.
func (r *Renderer) worldToScreen(p math3d.Vec3) (x, y int, ok bool) {
	clip := r.viewProj.MulVec4(math3d.V4FromV3(p, 1))
	if clip.W <= 0 || clip.Z < 0 {
		return 0, 0, false
	}
	s := math3d.ProjectToScreen(clip.PerspectiveDivide(), r.fb.Width, r.fb.Height)
	return int(math.Floor(s.X + 0.5)), int(math.Floor(s.Y + 0.5)), true
}

// DrawPoint3D plots a single pixel at world position p.
func (r *Renderer) DrawPoint3D(p math3d.Vec3, c Color) {
	if x, y, ok := r.worldToScreen(p); ok {
		r.plot(x, y, c)
	}
}

// DrawLine3D draws a line between two world positions. Lines with an end
// behind the camera are skipped.
func (r *Renderer) DrawLine3D(p1, p2 math3d.Vec3, c Color) {
	x1, y1, ok1 := r.worldToScreen(p1)
	x2, y2, ok2 := r.worldToScreen(p2)
	if !ok1 || !ok2 {
		return
	}
	r.DrawLine(x1, y1, x2, y2, c)
}

// DrawAxes draws the world axes at the origin: X red, Y green, Z blue.
func (r *Renderer) DrawAxes(length float64) {
	origin := math3d.Vec3{}
	r.DrawLine3D(origin, math3d.V3(length, 0, 0), ColorRed)
	r.DrawLine3D(origin, math3d.V3(0, length, 0), ColorGreen)
	r.DrawLine3D(origin, math3d.V3(0, 0, length), ColorBlue)
}

// DrawGrid draws lines on the XZ plane at y=0.
func (r *Renderer) DrawGrid(size, step float64, c Color) {
	if step <= 0 {
		return
	}
	half := size / 2
	for x := -half; x <= half; x += step {
		r.DrawLine3D(math3d.V3(x, 0, -half), math3d.V3(x, 0, half), c)
	}
	for z := -half; z <= half; z += step {
		r.DrawLine3D(math3d.V3(-half, 0, z), math3d.V3(half, 0, z), c)
	}
}

// DrawVoxelGI plots one point per non-empty grid cell, colored by the
// absolute normal scaled by the weight.
func (r *Renderer) DrawVoxelGI(g *voxelgi.Grid) {
	if g == nil {
		return
	}
	g.Each(func(x, y, z int, s voxelgi.Sample) {
		if s.Weight <= 0 {
			return
		}
		v := float64(s.Weight) * 255
		c := RGB(
			clampChannel(v*math.Abs(float64(s.Normal[0]))),
			clampChannel(v*math.Abs(float64(s.Normal[1]))),
			clampChannel(v*math.Abs(float64(s.Normal[2]))),
		)
		r.DrawPoint3D(math3d.V3(float64(x), float64(y), float64(z)).Sub(g.Offset), c)
	})
}
