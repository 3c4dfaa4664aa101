package main

import (
	"context"
	"fmt"
	"image"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/taigrr/raster/internal/config"
	"github.com/taigrr/raster/pkg/math3d"
	"github.com/taigrr/raster/pkg/models"
	"github.com/taigrr/raster/pkg/render"
	"github.com/taigrr/raster/pkg/voxelgi"
)

// scene is the model on a floor, the camera and the light, drawn through
// one renderer.
type scene struct {
	cfg *config.Config
	log *zap.Logger

	r     *render.Renderer
	cam   *render.Camera
	grid  *voxelgi.Grid
	light render.Light

	name      string
	triangles int
	model     render.DrawRequest
	floor     render.DrawRequest

	deferred   bool
	showVoxels bool
	showAxes   bool
	background render.Color
	sky        *render.Color
}

// newScene loads the model at modelPath, or uses a cube when it is empty.
func newScene(cfg *config.Config, modelPath, texturePath string, log *zap.Logger) (*scene, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	bg, err := render.ParseHexColor(cfg.Raster.ClearColor)
	if err != nil {
		return nil, err
	}

	s := &scene{
		cfg:        cfg,
		log:        log,
		grid:       cfg.GI.NewGrid(),
		light:      cfg.Light.Light(),
		deferred:   cfg.Raster.Deferred,
		background: bg,
	}
	if cfg.Raster.SkyColor != "" {
		sky, err := render.ParseHexColor(cfg.Raster.SkyColor)
		if err != nil {
			return nil, err
		}
		s.sky = &sky
	}

	mesh, img, err := loadMesh(modelPath, log)
	if err != nil {
		return nil, err
	}
	if texturePath != "" {
		if img, err = models.LoadTexture(texturePath); err != nil {
			return nil, fmt.Errorf("load texture: %w", err)
		}
	}
	tex := render.NewCheckerTexture(64, 64, 8, render.RGB(200, 200, 200), render.RGB(100, 100, 100))
	if img != nil {
		tex = render.TextureFromImage(img)
	}
	s.name = mesh.Name
	s.triangles = mesh.TriangleCount()
	s.model = render.DrawRequest{
		Mesh:    mesh,
		Texture: tex,
		Scale:   math3d.V3(1.5, 1.5, 1.5),
		Light:   s.light,
	}
	s.floor = render.DrawRequest{
		Mesh:     models.NewPlane(1),
		Texture:  render.NewCheckerTexture(32, 32, 4, render.RGB(90, 90, 90), render.RGB(60, 60, 60)),
		Position: math3d.V3(0, -0.8, 0),
		Scale:    math3d.V3(6, 1, 6),
		Light:    s.light,
	}

	s.r = render.NewRenderer(cfg.Raster.Width, cfg.Raster.Height,
		render.WithLogger(log.Named("render")),
		render.WithOptions(opts),
		render.WithGI(s.grid),
	)
	s.resize(cfg.Raster.Width, cfg.Raster.Height)

	log.Info("scene ready",
		zap.String("model", s.name),
		zap.Int("triangles", s.triangles),
		zap.Bool("embedded_texture", img != nil),
		zap.Stringer("grid", s.grid),
	)
	return s, nil
}

func loadMesh(path string, log *zap.Logger) (*models.Mesh, image.Image, error) {
	if path == "" {
		return models.NewCube(1), nil, nil
	}
	loader := models.NewGLTFLoader()
	loader.Logger = log.Named("models")
	mesh, img, err := loader.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load model %s: %w", filepath.Base(path), err)
	}
	mesh.FitUnit()
	return mesh, img, nil
}

// resize reallocates the framebuffer, refits the camera and repaints the
// background into the clear target.
func (s *scene) resize(width, height int) {
	s.r.Resize(width, height)
	fb := s.r.Framebuffer()
	s.cam = s.cfg.Camera.NewCamera(fb.Width, fb.Height)
	s.paintBackground()
}

func (s *scene) paintBackground() {
	s.r.SetClearColor(s.background)
	if s.sky == nil {
		return
	}
	fb := s.r.Framebuffer()
	down := math3d.V2(0, 1)
	s.r.SetRenderTarget(render.TargetClear)
	s.r.FillRectGradient(0, 0, fb.Width, fb.Height, s.background, *s.sky, down, down)
	s.r.SetRenderTarget(render.TargetColor)
}

// zoom moves the camera along its view direction.
func (s *scene) zoom(distance float64) {
	s.cam.MoveForward(distance)
}

// frame renders one frame with the model at rotation (degrees). The GI grid
// diffuses after every draw so the next frame queries settled light.
func (s *scene) frame(ctx context.Context, dt float64, rotation math3d.Vec3) error {
	s.r.Begin(s.cam, dt)
	s.r.Clear()

	model := s.model
	model.Rotation = rotation
	reqs := [...]render.DrawRequest{s.floor, model}

	if s.deferred {
		for _, req := range reqs {
			s.r.Submit(req)
		}
		if err := s.r.Flush(ctx); err != nil {
			return err
		}
	} else {
		for _, req := range reqs {
			s.r.DrawMesh(req)
		}
	}

	if s.showAxes {
		s.r.DrawGrid(4, 0.5, render.ColorGray)
		s.r.DrawAxes(1)
	}
	if s.r.Options.GI {
		s.grid.Update(dt)
		if s.showVoxels {
			s.r.DrawVoxelGI(s.grid)
		}
	}
	s.r.PostProcess()
	return nil
}
