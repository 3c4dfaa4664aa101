package render

import (
	"runtime"

	"go.uber.org/zap"

	"github.com/taigrr/raster/pkg/math3d"
	"github.com/taigrr/raster/pkg/voxelgi"
)

// Options are the toggles and tunables read during drawing and
// post-processing. They may be changed between frames.
type Options struct {
	DepthTest      bool
	TextureMapping bool
	SmoothShading  bool

	Fog              bool
	Dither           bool
	EdgeDetect       bool
	VisualizeDepth   bool
	VisualizeNormals bool

	// GI enables voxel grid writes and queries when a grid is attached.
	GI         bool
	GIStrength float64

	FogColor      Color
	FogDensity    float64
	EdgeColor     Color
	EdgeThreshold float64 // minimum normal dot product that is not an edge

	// Workers bounds the goroutines Flush uses. Values below 1 mean
	// GOMAXPROCS.
	Workers int
}

// DefaultOptions returns depth testing and texturing on, post stages off.
func DefaultOptions() Options {
	return Options{
		DepthTest:      true,
		TextureMapping: true,
		GI:             true,
		GIStrength:     1,
		FogColor:       ColorBlack,
		FogDensity:     8,
		EdgeColor:      ColorBlack,
		EdgeThreshold:  0.8,
		Workers:        runtime.GOMAXPROCS(0),
	}
}

// Stats are the per-frame primitive counters.
type Stats struct {
	Drawn  int
	Culled int
}

// Renderer is the rendering context: it owns the framebuffer, the per-frame
// camera snapshot, the active target and blend mode, and the counters. A
// Renderer is used from one goroutine; Flush parallelizes internally.
type Renderer struct {
	Options Options

	fb      *Framebuffer
	target  RenderTarget
	blend   BlendMode
	stats   Stats
	clipper *Clipper
	log     *zap.Logger

	eye      math3d.Vec3
	viewProj math3d.Mat4
	frustum  Frustum
	dt       float64

	gi *voxelgi.Grid

	queue []DrawRequest
	tris  []rasterTriangle
	tiles tileGrid
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.log = l
		}
	}
}

// WithOptions replaces the default options.
func WithOptions(o Options) Option {
	return func(r *Renderer) { r.Options = o }
}

// WithGI attaches a voxel GI grid.
func WithGI(g *voxelgi.Grid) Option {
	return func(r *Renderer) { r.gi = g }
}

// NewRenderer creates a renderer with a width x height framebuffer.
func NewRenderer(width, height int, opts ...Option) *Renderer {
	r := &Renderer{
		Options:  DefaultOptions(),
		fb:       NewFramebuffer(width, height),
		clipper:  NewClipper(),
		log:      zap.NewNop(),
		viewProj: math3d.Identity(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log.Debug("renderer created",
		zap.Int("width", r.fb.Width),
		zap.Int("height", r.fb.Height),
		zap.Bool("gi", r.gi != nil),
	)
	return r
}

// Framebuffer returns the framebuffer drawn into.
func (r *Renderer) Framebuffer() *Framebuffer { return r.fb }

// Resize reallocates the framebuffer.
func (r *Renderer) Resize(width, height int) {
	r.fb.Resize(width, height)
	r.log.Debug("framebuffer resized", zap.Int("width", r.fb.Width), zap.Int("height", r.fb.Height))
}

// AttachGI sets or, with nil, removes the voxel GI grid.
func (r *Renderer) AttachGI(g *voxelgi.Grid) {
	r.gi = g
	if g != nil {
		r.log.Debug("gi attached", zap.Stringer("grid", g))
	}
}

// GI returns the attached grid, or nil.
func (r *Renderer) GI() *voxelgi.Grid { return r.gi }

// Begin starts a frame: it snapshots the camera matrices, stores the frame
// time used by GI writes and resets the counters.
func (r *Renderer) Begin(cam *Camera, dt float64) {
	r.eye = cam.Position()
	r.viewProj = cam.ViewProjectionMatrix()
	r.frustum = FrustumFromMatrix(r.viewProj)
	r.dt = dt
	r.stats = Stats{}
}

// Clear copies the clear templates into the live buffers.
func (r *Renderer) Clear() { r.fb.Clear() }

// SetClearColor fills the clear template with c.
func (r *Renderer) SetClearColor(c Color) { r.fb.SetClearColor(c) }

// SetRenderTarget selects the buffer that drawing writes color to.
func (r *Renderer) SetRenderTarget(t RenderTarget) { r.target = t }

// SetBlendMode selects how fragments combine with the target.
func (r *Renderer) SetBlendMode(m BlendMode) { r.blend = m }

// Stats returns the counters since the last Begin.
func (r *Renderer) Stats() Stats { return r.stats }
