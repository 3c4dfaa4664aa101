package config

import "github.com/spf13/pflag"

// Flags binds command-line overrides. Only flags the user actually set are
// applied, so a file value is never reset to a flag default.
type Flags struct {
	fs *pflag.FlagSet

	ConfigPath string

	width, height int
	workers       int
	fps           int
	deferred      bool
	fog           bool
	dither        bool
	edges         bool
	gi            bool
	smooth        bool
	logLevel      string
	logFile       string
	debug         bool
}

// RegisterFlags adds the config flags to fs.
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVarP(&f.ConfigPath, "config", "c", "", "path to config file")
	fs.IntVar(&f.width, "width", 0, "framebuffer width")
	fs.IntVar(&f.height, "height", 0, "framebuffer height")
	fs.IntVar(&f.workers, "workers", 0, "tile workers (0 = GOMAXPROCS)")
	fs.IntVar(&f.fps, "fps", 0, "target frames per second")
	fs.BoolVar(&f.deferred, "deferred", false, "rasterize in parallel screen tiles")
	fs.BoolVar(&f.fog, "fog", false, "enable depth fog")
	fs.BoolVar(&f.dither, "dither", false, "enable dithering")
	fs.BoolVar(&f.edges, "edges", false, "enable edge detection")
	fs.BoolVar(&f.gi, "gi", false, "enable voxel global illumination")
	fs.BoolVar(&f.smooth, "smooth", false, "interpolate mesh normals")
	fs.StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.StringVar(&f.logFile, "log-file", "", "write logs to this file")
	fs.BoolVar(&f.debug, "debug", false, "shorthand for --log-level=debug")
	return f
}

// Load reads the config file named by --config, or the default locations,
// then applies the changed flags.
func (f *Flags) Load() (*Config, error) {
	cfg, err := Load(f.ConfigPath)
	if err != nil {
		return nil, err
	}
	f.Apply(cfg)
	return cfg, nil
}

// Apply copies every flag that was set on the command line into cfg.
func (f *Flags) Apply(cfg *Config) {
	changed := f.fs.Changed
	if changed("width") {
		cfg.Raster.Width = f.width
	}
	if changed("height") {
		cfg.Raster.Height = f.height
	}
	if changed("workers") {
		cfg.Raster.Workers = f.workers
	}
	if changed("deferred") {
		cfg.Raster.Deferred = f.deferred
	}
	if changed("fps") {
		cfg.Frame.FPS = f.fps
	}
	if changed("fog") {
		cfg.Post.Fog = f.fog
	}
	if changed("dither") {
		cfg.Post.Dither = f.dither
	}
	if changed("edges") {
		cfg.Post.EdgeDetect = f.edges
	}
	if changed("gi") {
		cfg.GI.Enabled = f.gi
	}
	if changed("smooth") {
		cfg.Render.SmoothShading = f.smooth
	}
	if changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if changed("log-file") {
		cfg.Logging.LogFile = f.logFile
	}
	if f.debug {
		cfg.Logging.Level = "debug"
	}
}
