package render

import (
	"github.com/chewxy/math32"

	"github.com/taigrr/raster/pkg/math3d"
)

// PostProcess applies the enabled screen-space stages to the color buffer
// in order: debug view, edge detection, fog, dithering.
func (r *Renderer) PostProcess() {
	o := r.Options
	switch {
	case o.VisualizeDepth:
		r.visualizeDepth()
	case o.VisualizeNormals:
		r.visualizeNormals()
	}
	if o.EdgeDetect {
		r.edgeDetect()
	}
	if o.Fog {
		r.fog()
	}
	if o.Dither {
		r.dither()
	}
}

// fogAmount maps depth to a fog factor: 0 close to the camera rising to 1
// at the far plane, 1 - clamp((1-depth)*density, 0, 1)³.
func fogAmount(depth, density float32) float32 {
	v := math32.Max(0, math32.Min((1-depth)*density, 1))
	return 1 - v*v*v
}

// visualizeDepth replaces color with depth, near bright and far dark,
// remapped like fog so the non-linear depth range stays visible.
func (r *Renderer) visualizeDepth() {
	fb := r.fb
	density := float32(r.Options.FogDensity)
	for i, d := range fb.depth {
		v := uint8(255 * (1 - fogAmount(d, density)))
		fb.color[i] = RGB(v, v, v)
	}
}

func (r *Renderer) visualizeNormals() {
	fb := r.fb
	for i, n := range fb.normal {
		if n.A == 0 {
			fb.color[i] = ColorBlack
			continue
		}
		fb.color[i] = RGB(n.R, n.G, n.B)
	}
}

// edgeDetect darkens covered pixels whose 3x3 neighborhood holds a normal
// turned away from their own, or uncovered background, toward EdgeColor.
func (r *Renderer) edgeDetect() {
	fb := r.fb
	w, h := fb.Width, fb.Height
	threshold := r.Options.EdgeThreshold

	normals := make([]math3d.Vec3, len(fb.normal))
	for i, n := range fb.normal {
		normals[i] = DecodeNormal(n)
	}

	for y := range h {
		for x := range w {
			i := y*w + x
			if fb.normal[i].A == 0 {
				continue
			}
			n := normals[i]
			minDot := 1.0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if (dx == 0 && dy == 0) || nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					minDot = min(minDot, n.Dot(normals[ny*w+nx]))
				}
			}
			if minDot < threshold {
				fb.color[i] = fb.color[i].Lerp(r.Options.EdgeColor, math3d.Clamp(1-minDot, 0, 1))
			}
		}
	}
}

// fog blends covered pixels toward FogColor by depth.
func (r *Renderer) fog() {
	fb := r.fb
	density := float32(r.Options.FogDensity)
	for i, d := range fb.depth {
		if d >= 1 {
			continue
		}
		fb.color[i] = fb.color[i].Lerp(r.Options.FogColor, float64(fogAmount(d, density)))
	}
}

// dither darkens every pixel with odd x and odd y by 10%.
func (r *Renderer) dither() {
	fb := r.fb
	for y := 1; y < fb.Height; y += 2 {
		for x := 1; x < fb.Width; x += 2 {
			i := y*fb.Width + x
			fb.color[i] = fb.color[i].Scale(0.9)
		}
	}
}
