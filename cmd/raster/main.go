// raster - software rasterizer with voxel global illumination.
//
// Renders glTF/GLB models (or a built-in cube) on the CPU, either
// interactively in the terminal with half-block cells or headless to PNG.
//
// Viewer controls:
//
//	Mouse drag  - Rotate model
//	Scroll, +/- - Zoom in/out
//	W/S/A/D     - Pitch and yaw
//	Space       - Random spin
//	R           - Reset rotation
//	1 / 2 / 3   - Fog / dither / edge detection
//	4 / 5       - Depth / normal visualization
//	G           - Voxel GI
//	V           - Voxel GI overlay
//	X           - Axes and floor grid
//	P           - Tile-parallel rasterization
//	T           - Texture
//	N           - Smooth normals
//	?           - HUD
//	Esc         - Quit
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taigrr/raster/internal/config"
	"github.com/taigrr/raster/internal/logger"
)

var version = "dev"

// app carries what every subcommand needs after flag parsing.
type app struct {
	flags *config.Flags
	cfg   *config.Config

	texturePath string
}

func main() {
	root := newRootCmd()
	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "raster",
		Short: "CPU software rasterizer with voxel global illumination",
		Long: "raster draws triangle meshes entirely on the CPU: transform, backface culling,\n" +
			"frustum clipping, depth-tested rasterization, per-vertex lighting with an\n" +
			"optional voxel GI grid, and screen-space fog, dithering and edge detection.",
	}
	a.flags = config.RegisterFlags(root.PersistentFlags())
	root.PersistentFlags().StringVar(&a.texturePath, "texture", "", "texture image (PNG, JPEG or BMP)")

	root.AddCommand(
		newViewCmd(a),
		newSnapshotCmd(a),
		newConfigCmd(a),
	)
	return root
}

// load reads and validates the config, then starts logging. Console logs go
// to console, which may be nil.
func (a *app) load(console io.Writer) error {
	cfg, err := a.flags.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	a.cfg = cfg

	fileCfg := logger.FileConfig{}
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	if err := logger.InitWithFileConfig(cfg.Logging.Level, fileCfg, console); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.Debug("config loaded",
		zap.String("path", a.flags.ConfigPath),
		zap.Int("width", cfg.Raster.Width),
		zap.Int("height", cfg.Raster.Height),
		zap.Bool("gi", cfg.GI.Enabled),
	)
	return nil
}
