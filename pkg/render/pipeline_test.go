package render

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/taigrr/raster/pkg/math3d"
	"github.com/taigrr/raster/pkg/models"
	"github.com/taigrr/raster/pkg/voxelgi"
)

func frontLight() Light {
	return NewLight(math3d.V3(0, 0, 10), 1, 0)
}

func TestCubeBackfacesCulled(t *testing.T) {
	tests := []struct {
		name          string
		eye           math3d.Vec3
		drawn, culled int
	}{
		// Along the diagonal three faces point at the camera.
		{"diagonal", math3d.V3(4, 4, 4), 6, 6},
		// On the forward axis perspective shows only the near face.
		{"on axis", math3d.V3(0, 0, 4), 2, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRenderer(320, 240)
			cam := NewCamera(tt.eye)
			cam.LookAt(math3d.Vec3{})
			r.Begin(cam, 0)
			r.Clear()

			r.DrawMesh(DrawRequest{Mesh: models.NewCube(1), Light: NewLight(math3d.V3(4, 6, 5), 1, 0)})

			if s := r.Stats(); s.Drawn != tt.drawn || s.Culled != tt.culled {
				t.Errorf("stats = %+v, want %d drawn and %d culled", s, tt.drawn, tt.culled)
			}
			if n, _ := coverage(r.Framebuffer(), ColorBlack); n == 0 {
				t.Error("cube left no pixels")
			}
		})
	}
}

func TestInstanceOutsideFrustumCulled(t *testing.T) {
	r := NewRenderer(64, 64)
	r.Begin(frontCamera(), 0)
	r.DrawMesh(DrawRequest{
		Mesh:     models.NewCube(1),
		Position: math3d.V3(0, 0, 50),
		Light:    frontLight(),
	})
	if s := r.Stats(); s.Drawn != 0 || s.Culled != 12 {
		t.Errorf("stats = %+v, want all 12 triangles culled", s)
	}
}

func TestDepthOrderIndependent(t *testing.T) {
	near := DrawRequest{
		Mesh: models.NewTriangle(
			math3d.V3(-1, 1, -2),
			math3d.V3(1, 1, -2),
			math3d.V3(-1, -1, -2),
		),
		Color: ColorRed,
		Light: frontLight(),
	}
	far := DrawRequest{
		Mesh: models.NewTriangle(
			math3d.V3(-3, 3, -3),
			math3d.V3(3, 3, -3),
			math3d.V3(-3, -3, -3),
		),
		Color: ColorBlue,
		Light: frontLight(),
	}

	draw := func(reqs ...DrawRequest) *Framebuffer {
		r := NewRenderer(100, 100)
		r.Begin(frontCamera(), 0)
		r.Clear()
		for _, req := range reqs {
			r.DrawMesh(req)
		}
		return r.Framebuffer()
	}

	a := draw(near, far)
	b := draw(far, near)
	if !slices.Equal(a.Pixels(), b.Pixels()) {
		t.Error("color differs with draw order")
	}
	if !slices.Equal(a.Depth(), b.Depth()) {
		t.Error("depth differs with draw order")
	}
	if c := a.At(30, 30); c.R == 0 || c.B != 0 {
		t.Errorf("pixel in front of both = %v, want the near red triangle", c)
	}
}

func TestDepthTestDisabledDrawsInOrder(t *testing.T) {
	r := NewRenderer(100, 100)
	o := DefaultOptions()
	o.DepthTest = false
	r.Options = o
	r.Begin(frontCamera(), 0)
	r.Clear()

	// Same screen footprint at any depth.
	tri := func(z float64, c Color) DrawRequest {
		s := -z / 2
		return DrawRequest{
			Mesh: models.NewTriangle(
				math3d.V3(-s, s, z),
				math3d.V3(s, s, z),
				math3d.V3(-s, -s, z),
			),
			Color: c,
			Light: frontLight(),
		}
	}
	r.DrawMesh(tri(-2, ColorRed))
	r.DrawMesh(tri(-4, ColorBlue))
	if c := r.Framebuffer().At(30, 30); c.B == 0 || c.R != 0 {
		t.Errorf("pixel = %v, want the last drawn blue triangle", c)
	}
}

func TestClearRestoresTemplates(t *testing.T) {
	r := NewRenderer(48, 32)
	r.SetClearColor(ColorGray)
	r.Begin(frontCamera(), 0)
	r.Clear()
	r.DrawMesh(DrawRequest{Mesh: models.NewCube(1), Position: math3d.V3(0, 0, -3), Light: frontLight()})
	r.FillRect(0, 0, 8, 8, ColorRed)
	r.Clear()

	fb := r.Framebuffer()
	for i := range fb.Pixels() {
		if fb.Pixels()[i] != ColorGray {
			t.Fatalf("pixel %d = %v, want the clear color", i, fb.Pixels()[i])
		}
		if fb.Depth()[i] != 1 {
			t.Fatalf("depth %d = %v, want 1", i, fb.Depth()[i])
		}
		if fb.Normals()[i] != (Color{}) {
			t.Fatalf("normal %d = %v, want zero", i, fb.Normals()[i])
		}
	}
}

func TestClearTargetBecomesBackground(t *testing.T) {
	r := NewRenderer(16, 16)
	r.SetRenderTarget(TargetClear)
	r.FillRect(0, 0, 16, 8, ColorRed)
	r.SetRenderTarget(TargetColor)
	if r.Framebuffer().At(0, 0) != ColorBlack {
		t.Fatal("drawing the clear target touched the color buffer")
	}

	r.Clear()
	fb := r.Framebuffer()
	if got := fb.At(3, 3); got != ColorRed {
		t.Errorf("top half = %v, want red", got)
	}
	if got := fb.At(3, 12); got != ColorBlack {
		t.Errorf("bottom half = %v, want black", got)
	}
}

func TestTextureMappingToggle(t *testing.T) {
	req := DrawRequest{
		Mesh: models.NewTriangle(
			math3d.V3(-1, 1, -2),
			math3d.V3(1, 1, -2),
			math3d.V3(-1, -1, -2),
		),
		Texture: NewSolidTexture(ColorRed),
		Light:   frontLight(),
	}
	tests := []struct {
		name      string
		texturing bool
		check     func(Color) bool
	}{
		{"on", true, func(c Color) bool { return c.R > 0 && c.G == 0 && c.B == 0 }},
		{"off", false, func(c Color) bool { return c.R > 0 && c.R == c.G && c.G == c.B }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRenderer(100, 100)
			r.Options.TextureMapping = tt.texturing
			r.Begin(frontCamera(), 0)
			r.Clear()
			r.DrawMesh(req)
			if c := r.Framebuffer().At(30, 30); !tt.check(c) {
				t.Errorf("pixel = %v", c)
			}
		})
	}
}

func TestLightScalesColor(t *testing.T) {
	shade := func(strength float64) Color {
		r := NewRenderer(100, 100)
		r.Begin(frontCamera(), 0)
		r.Clear()
		r.DrawMesh(DrawRequest{
			Mesh: models.NewTriangle(
				math3d.V3(-1, 1, -2),
				math3d.V3(1, 1, -2),
				math3d.V3(-1, -1, -2),
			),
			Light: NewLight(math3d.V3(0, 0, 10), strength, 0),
		})
		return r.Framebuffer().At(30, 30)
	}
	dim, bright := shade(0.3), shade(0.9)
	if dim.R >= bright.R {
		t.Errorf("strength 0.3 gave %v, strength 0.9 gave %v", dim, bright)
	}
	if dark := shade(0); dark.R != clampChannel(255*DefaultAmbience) {
		t.Errorf("unlit pixel = %v, want the ambience floor", dark)
	}
}

func testScene() []DrawRequest {
	light := NewLight(math3d.V3(2, 4, 1), 1.2, 6)
	checker := NewCheckerTexture(16, 16, 4, ColorWhite, ColorGray)
	return []DrawRequest{
		{Mesh: models.NewPlane(1), Scale: math3d.V3(8, 1, 8), Position: math3d.V3(0, -1, -3), Texture: checker, Light: light},
		{Mesh: models.NewCube(1), Position: math3d.V3(0, 0, -3), Rotation: math3d.V3(20, 35, 0), Texture: checker, Light: light},
		{Mesh: models.NewCube(1), Position: math3d.V3(1.2, -0.3, -4), Scale: math3d.V3(0.6, 0.6, 0.6), Color: ColorYellow, Light: light},
		{Mesh: models.NewCube(1), Position: math3d.V3(-1.5, 0.2, -2.5), Rotation: math3d.V3(0, 60, 10), Color: ColorSky, Light: light},
	}
}

func testSceneCamera(w, h int) *Camera {
	cam := NewCamera(math3d.V3(0, 1.5, 1.5))
	cam.SetPerspective(60, float64(w)/float64(h), DefaultZNear, DefaultZFar)
	cam.LookAt(math3d.V3(0, 0, -3))
	return cam
}

func TestFlushMatchesDrawMesh(t *testing.T) {
	const w, h = 200, 150
	cam := testSceneCamera(w, h)

	serial := NewRenderer(w, h)
	serial.Begin(cam, 0)
	serial.Clear()
	for _, req := range testScene() {
		serial.DrawMesh(req)
	}

	deferred := NewRenderer(w, h)
	deferred.Options.Workers = 4
	deferred.Begin(cam, 0)
	deferred.Clear()
	for _, req := range testScene() {
		deferred.Submit(req)
	}
	if got := deferred.Pending(); got != 4 {
		t.Fatalf("pending = %d, want 4", got)
	}
	if err := deferred.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := deferred.Pending(); got != 0 {
		t.Errorf("pending after flush = %d", got)
	}

	a, b := serial.Framebuffer(), deferred.Framebuffer()
	if !slices.Equal(a.Pixels(), b.Pixels()) {
		t.Error("color differs")
	}
	if !slices.Equal(a.Depth(), b.Depth()) {
		t.Error("depth differs")
	}
	if !slices.Equal(a.Normals(), b.Normals()) {
		t.Error("normals differ")
	}
	if serial.Stats() != deferred.Stats() {
		t.Errorf("stats: serial %+v, deferred %+v", serial.Stats(), deferred.Stats())
	}
	if serial.Stats().Drawn == 0 {
		t.Error("scene drew nothing")
	}
}

func TestFlushCanceled(t *testing.T) {
	r := NewRenderer(64, 64)
	r.Begin(frontCamera(), 0)
	r.Submit(DrawRequest{Mesh: models.NewCube(1), Position: math3d.V3(0, 0, -3), Light: frontLight()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Flush(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Flush = %v, want context.Canceled", err)
	}
	if r.Pending() != 0 {
		t.Error("queue kept after a canceled flush")
	}
}

func TestFlushEmpty(t *testing.T) {
	r := NewRenderer(16, 16)
	if err := r.Flush(context.Background()); err != nil {
		t.Errorf("Flush with nothing queued = %v", err)
	}
}

func TestGIWritesSurfaceLight(t *testing.T) {
	tri := DrawRequest{
		Mesh: models.NewTriangle(
			math3d.V3(-1, 1, -2),
			math3d.V3(1, 1, -2),
			math3d.V3(-1, -1, -2),
		),
		Light: frontLight(),
	}
	weight := func(g *voxelgi.Grid) float32 {
		var sum float32
		for _, s := range g.Samples() {
			sum += s.Weight
		}
		return sum
	}

	t.Run("enabled", func(t *testing.T) {
		g := voxelgi.NewGrid(math3d.V3(4, 4, 4), 8, 8, 8, voxelgi.DefaultParams())
		r := NewRenderer(100, 100, WithGI(g))
		r.Begin(frontCamera(), 0.01)
		r.DrawMesh(tri)
		if weight(g) <= 0 {
			t.Error("grid received no light")
		}
		if r.GI() != g {
			t.Error("GI() does not return the attached grid")
		}
	})

	t.Run("disabled", func(t *testing.T) {
		g := voxelgi.NewGrid(math3d.V3(4, 4, 4), 8, 8, 8, voxelgi.DefaultParams())
		r := NewRenderer(100, 100, WithGI(g))
		r.Options.GI = false
		r.Begin(frontCamera(), 0.01)
		r.DrawMesh(tri)
		if w := weight(g); w != 0 {
			t.Errorf("grid weight = %v with GI off", w)
		}
	})

	t.Run("detached", func(t *testing.T) {
		g := voxelgi.NewGrid(math3d.V3(4, 4, 4), 8, 8, 8, voxelgi.DefaultParams())
		r := NewRenderer(100, 100, WithGI(g))
		r.AttachGI(nil)
		r.Begin(frontCamera(), 0.01)
		r.DrawMesh(tri)
		if w := weight(g); w != 0 {
			t.Errorf("grid weight = %v after detaching", w)
		}
	})
}

func TestGIBrightensLitSurface(t *testing.T) {
	g := voxelgi.NewGrid(math3d.V3(4, 4, 4), 8, 8, 8, voxelgi.DefaultParams())
	for range 50 {
		g.Write(math3d.V3(-0.5, 0.5, -2), math3d.V3(0, 0, 1), 1, 1)
	}

	light := NewLight(math3d.V3(0, 0, 10), 0.3, 0)
	r := NewRenderer(32, 32)
	pos, n := math3d.V3(-0.5, 0.5, -2), math3d.V3(0, 0, 1)
	direct := r.shadeVertex(light, nil, pos, n)
	lit := r.shadeVertex(light, g, pos, n)
	if lit <= direct {
		t.Errorf("with GI %v, without %v", lit, direct)
	}
	if lit > 1 {
		t.Errorf("light %v above 1", lit)
	}
}

func BenchmarkDrawScene(b *testing.B) {
	r := NewRenderer(320, 240)
	r.Begin(testSceneCamera(320, 240), 0)
	scene := testScene()
	for b.Loop() {
		r.Clear()
		for _, req := range scene {
			r.DrawMesh(req)
		}
	}
}

func BenchmarkFlushScene(b *testing.B) {
	r := NewRenderer(320, 240)
	r.Begin(testSceneCamera(320, 240), 0)
	scene := testScene()
	ctx := context.Background()
	for b.Loop() {
		r.Clear()
		for _, req := range scene {
			r.Submit(req)
		}
		if err := r.Flush(ctx); err != nil {
			b.Fatal(err)
		}
	}
}
