package render

import (
	"image"
	"math"

	"github.com/taigrr/raster/pkg/math3d"
	"github.com/taigrr/raster/pkg/models"
	"github.com/taigrr/raster/pkg/voxelgi"
)

// DrawRequest is one mesh instance. The renderer never modifies the mesh or
// the texture, so requests may be queued and replayed.
type DrawRequest struct {
	Mesh    *models.Mesh
	Texture *Texture // nil draws Color
	Color   Color    // zero means white

	Position math3d.Vec3
	Scale    math3d.Vec3 // zero means 1
	Rotation math3d.Vec3 // degrees, applied Y, then Z, then X

	Light Light
}

// DrawMesh transforms, culls, clips and rasterizes req immediately.
func (r *Renderer) DrawMesh(req DrawRequest) {
	full := image.Rect(0, 0, r.fb.Width, r.fb.Height)
	r.setup(req, func(t *rasterTriangle) {
		rasterize(r.fb, t, full)
	})
}

// setup runs the per-triangle front end for req and hands every surviving
// screen triangle to emit. The pointer passed to emit is reused.
func (r *Renderer) setup(req DrawRequest, emit func(*rasterTriangle)) {
	mesh := req.Mesh
	if mesh == nil || mesh.TriangleCount() == 0 {
		return
	}

	scale := req.Scale
	if scale == (math3d.Vec3{}) {
		scale = math3d.V3(1, 1, 1)
	}
	model := math3d.ModelMatrix(req.Position, scale, req.Rotation)
	mvp := r.viewProj.Mul(model)

	if lo, hi := mesh.Bounds(); lo != hi {
		box := AABB{Min: lo, Max: hi}.Transform(model)
		if !r.frustum.IntersectAABB(box) {
			r.stats.Culled += mesh.TriangleCount()
			return
		}
	}

	base := req.Color
	if base == (Color{}) {
		base = ColorWhite
	}
	var tex *Texture
	if r.Options.TextureMapping {
		tex = req.Texture
	}
	smooth := r.Options.SmoothShading && len(mesh.NormalIndices) > 0
	var normalMat math3d.Mat4
	if smooth {
		normalMat = model.Inverse().Transpose()
	}
	var gi *voxelgi.Grid
	if r.Options.GI {
		gi = r.gi
	}

	tri := rasterTriangle{
		texture:   tex,
		color:     base,
		target:    r.target,
		blend:     r.blend,
		depthTest: r.Options.DepthTest,
	}
	width, height := r.fb.Width, r.fb.Height
	var (
		world [3]math3d.Vec3
		verts [3]ClipVertex
		sv    [MaxClipVertices]screenVertex
	)

	for i := range mesh.TriangleCount() {
		corners, ok := mesh.Triangle(i)
		if !ok {
			r.stats.Culled++
			continue
		}
		for k, c := range corners {
			world[k] = model.MulVec3(c.Position)
		}

		// Clockwise winding: the cross product points into the surface and
		// away from a camera that sees the front.
		n := world[1].Sub(world[0]).Cross(world[2].Sub(world[0])).NormalizeFast()
		if n.Dot(world[0].Sub(r.eye)) <= 0 {
			r.stats.Culled++
			continue
		}
		surface := n.Negate().Normalize()

		for k, c := range corners {
			normal := surface
			if smooth {
				if vn := normalMat.MulVec3Dir(c.Normal).Normalize(); vn != (math3d.Vec3{}) {
					normal = vn
				}
			}
			verts[k] = ClipVertex{
				Pos:   mvp.MulVec4(math3d.V4FromV3(c.Position, 1)),
				World: world[k],
				UV:    c.UV,
				Light: r.shadeVertex(req.Light, gi, world[k], normal),
			}
		}

		poly := r.clipper.Clip(verts)
		if len(poly) < 3 || !r.projectPolygon(poly, sv[:]) {
			r.stats.Culled++
			continue
		}

		tri.normal = EncodeNormal(surface)
		for k := 1; k+1 < len(poly); k++ {
			tri.v = [3]screenVertex{sv[0], sv[k], sv[k+1]}
			if !tri.prepare(width, height) {
				r.stats.Culled++
				continue
			}
			r.stats.Drawn++
			emit(&tri)
		}
	}
}

// shadeVertex returns the light at a vertex. With a grid, the direct term is
// written into it and the queried indirect term scales the result by
// 1 + GIStrength*indirect.
func (r *Renderer) shadeVertex(light Light, gi *voxelgi.Grid, pos, normal math3d.Vec3) float64 {
	direct := light.Contribution(pos, normal)
	if gi == nil {
		return direct
	}
	indirect := gi.Query(pos)
	gi.Write(pos, normal, direct, r.dt)
	return math3d.Clamp(direct*(1+r.Options.GIStrength*indirect), light.Ambience, 1)
}

// projectPolygon divides clipped vertices by w and snaps them to pixels. It
// reports false if a vertex has no positive w.
func (r *Renderer) projectPolygon(poly []ClipVertex, out []screenVertex) bool {
	for k, v := range poly {
		if v.Pos.W <= 0 {
			return false
		}
		invW := 1 / v.Pos.W
		ndc := math3d.V3(v.Pos.X*invW, v.Pos.Y*invW, v.Pos.Z*invW)
		s := math3d.ProjectToScreen(ndc, r.fb.Width, r.fb.Height)
		out[k] = screenVertex{
			X:     int(math.Floor(s.X + 0.5)),
			Y:     int(math.Floor(s.Y + 0.5)),
			Z:     ndc.Z,
			InvW:  invW,
			U:     v.UV.X * invW,
			V:     v.UV.Y * invW,
			Light: v.Light * invW,
		}
	}
	return true
}
