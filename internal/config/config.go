// Package config handles raster configuration loading and management.
package config

import (
	"github.com/taigrr/raster/pkg/math3d"
	"github.com/taigrr/raster/pkg/render"
	"github.com/taigrr/raster/pkg/voxelgi"
)

// Config holds all settings.
type Config struct {
	Raster  RasterConfig  `yaml:"raster"`
	Camera  CameraConfig  `yaml:"camera"`
	Light   LightConfig   `yaml:"light"`
	Render  RenderConfig  `yaml:"render"`
	Post    PostConfig    `yaml:"post"`
	GI      GIConfig      `yaml:"gi"`
	Frame   FrameConfig   `yaml:"frame"`
	Logging LoggingConfig `yaml:"logging"`
}

// RasterConfig holds framebuffer settings.
type RasterConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	ClearColor string `yaml:"clear_color"` // #rrggbb
	SkyColor   string `yaml:"sky_color"`   // top of the background gradient, empty for flat
	Workers    int    `yaml:"workers"`     // 0 = GOMAXPROCS
	Deferred   bool   `yaml:"deferred"`    // tile-parallel Submit/Flush instead of DrawMesh
}

// CameraConfig holds the projection and initial pose.
type CameraConfig struct {
	FOV      float64    `yaml:"fov"` // vertical, degrees
	Near     float64    `yaml:"near"`
	Far      float64    `yaml:"far"`
	Position [3]float64 `yaml:"position,flow"`
	Target   [3]float64 `yaml:"target,flow"`
}

// LightConfig holds the scene light.
type LightConfig struct {
	Position [3]float64 `yaml:"position,flow"`
	Strength float64    `yaml:"strength"`
	Radius   float64    `yaml:"radius"`
	Ambience float64    `yaml:"ambience"`
}

// RenderConfig holds rasterization toggles.
type RenderConfig struct {
	DepthTest      bool `yaml:"depth_test"`
	TextureMapping bool `yaml:"texture_mapping"`
	SmoothShading  bool `yaml:"smooth_shading"`
}

// PostConfig holds post-processing toggles.
type PostConfig struct {
	Fog              bool    `yaml:"fog"`
	FogColor         string  `yaml:"fog_color"`
	FogDensity       float64 `yaml:"fog_density"`
	Dither           bool    `yaml:"dither"`
	EdgeDetect       bool    `yaml:"edge_detect"`
	EdgeColor        string  `yaml:"edge_color"`
	EdgeThreshold    float64 `yaml:"edge_threshold"`
	VisualizeDepth   bool    `yaml:"visualize_depth"`
	VisualizeNormals bool    `yaml:"visualize_normals"`
}

// GIConfig holds the voxel grid shape and simulation constants.
type GIConfig struct {
	Enabled        bool       `yaml:"enabled"`
	Strength       float64    `yaml:"strength"`
	Size           [3]int     `yaml:"size,flow"`
	Offset         [3]float64 `yaml:"offset,flow"`
	ContribSpeed   float32    `yaml:"contrib_speed"`
	DecaySpeed     float32    `yaml:"decay_speed"`
	K1             float32    `yaml:"k1"`
	K2             float32    `yaml:"k2"`
	K3             float32    `yaml:"k3"`
	Dist           float32    `yaml:"dist"`
	UpdateInterval int        `yaml:"update_interval"`
	RandomSampling bool       `yaml:"random_sampling"`
	SamplingSeed   uint32     `yaml:"sampling_seed"`
	Interpolate    bool       `yaml:"interpolate"`
}

// FrameConfig holds timing settings.
type FrameConfig struct {
	FPS   int     `yaml:"fps"`
	MinDT float64 `yaml:"min_dt"` // seconds
	MaxDT float64 `yaml:"max_dt"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the stock values.
func Default() *Config {
	p := voxelgi.DefaultParams()
	return &Config{
		Raster: RasterConfig{
			Width:      320,
			Height:     240,
			ClearColor: "#282828",
		},
		Camera: CameraConfig{
			FOV:      render.DefaultFOV,
			Near:     render.DefaultZNear,
			Far:      render.DefaultZFar,
			Position: [3]float64{0, 1.5, 4},
			Target:   [3]float64{0, 0, 0},
		},
		Light: LightConfig{
			Position: [3]float64{2, 4, 3},
			Strength: 1,
			Radius:   6,
			Ambience: render.DefaultAmbience,
		},
		Render: RenderConfig{
			DepthTest:      true,
			TextureMapping: true,
		},
		Post: PostConfig{
			FogColor:      "#282828",
			FogDensity:    8,
			EdgeColor:     "#000000",
			EdgeThreshold: 0.8,
		},
		GI: GIConfig{
			Enabled:        false,
			Strength:       1,
			Size:           [3]int{16, 16, 16},
			Offset:         [3]float64{8, 8, 8},
			ContribSpeed:   p.ContribSpeed,
			DecaySpeed:     p.DecaySpeed,
			K1:             p.K1,
			K2:             p.K2,
			K3:             p.K3,
			Dist:           p.Dist,
			UpdateInterval: p.UpdateInterval,
			SamplingSeed:   p.SamplingSeed,
		},
		Frame: FrameConfig{
			FPS:   30,
			MinDT: 0.001,
			MaxDT: 0.1,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// ClampDT limits a measured frame time to [MinDT, MaxDT].
func (f FrameConfig) ClampDT(dt float64) float64 {
	return math3d.Clamp(dt, f.MinDT, f.MaxDT)
}

// Options converts the render and post sections into renderer options.
// It fails on a malformed color.
func (c *Config) Options() (render.Options, error) {
	o := render.DefaultOptions()
	o.DepthTest = c.Render.DepthTest
	o.TextureMapping = c.Render.TextureMapping
	o.SmoothShading = c.Render.SmoothShading
	o.Fog = c.Post.Fog
	o.FogDensity = c.Post.FogDensity
	o.Dither = c.Post.Dither
	o.EdgeDetect = c.Post.EdgeDetect
	o.EdgeThreshold = c.Post.EdgeThreshold
	o.VisualizeDepth = c.Post.VisualizeDepth
	o.VisualizeNormals = c.Post.VisualizeNormals
	o.GI = c.GI.Enabled
	o.GIStrength = c.GI.Strength
	if c.Raster.Workers > 0 {
		o.Workers = c.Raster.Workers
	}

	var err error
	if o.FogColor, err = render.ParseHexColor(c.Post.FogColor); err != nil {
		return o, err
	}
	if o.EdgeColor, err = render.ParseHexColor(c.Post.EdgeColor); err != nil {
		return o, err
	}
	return o, nil
}

// GIParams converts the gi section into grid parameters.
func (g GIConfig) GIParams() voxelgi.Params {
	return voxelgi.Params{
		ContribSpeed:   g.ContribSpeed,
		DecaySpeed:     g.DecaySpeed,
		K1:             g.K1,
		K2:             g.K2,
		K3:             g.K3,
		Dist:           g.Dist,
		UpdateInterval: g.UpdateInterval,
		RandomSampling: g.RandomSampling,
		SamplingSeed:   g.SamplingSeed,
		Interpolate:    g.Interpolate,
	}
}

// NewGrid allocates the grid described by the gi section.
func (g GIConfig) NewGrid() *voxelgi.Grid {
	return voxelgi.NewGrid(vec3(g.Offset), g.Size[0], g.Size[1], g.Size[2], g.GIParams())
}

// Light converts the light section.
func (l LightConfig) Light() render.Light {
	light := render.NewLight(vec3(l.Position), l.Strength, l.Radius)
	light.Ambience = l.Ambience
	return light
}

// NewCamera builds a camera for a width x height framebuffer.
func (c CameraConfig) NewCamera(width, height int) *render.Camera {
	cam := render.NewCamera(vec3(c.Position))
	cam.SetPerspective(c.FOV, float64(width)/float64(max(height, 1)), c.Near, c.Far)
	cam.LookAt(vec3(c.Target))
	return cam
}

func vec3(v [3]float64) math3d.Vec3 {
	return math3d.V3(v[0], v[1], v[2])
}
