package config

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"

	"github.com/taigrr/raster/pkg/render"
)

// ErrInvalid marks every problem reported by Validate.
var ErrInvalid = errors.New("invalid config")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate reports every out-of-range value at once.
func (c *Config) Validate() error {
	var err error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			err = multierr.Append(err, invalid(format, args...))
		}
	}
	color := func(field, s string, optional bool) {
		if optional && s == "" {
			return
		}
		if _, perr := render.ParseHexColor(s); perr != nil {
			err = multierr.Append(err, invalid("%s: %v", field, perr))
		}
	}

	check(c.Raster.Width > 0 && c.Raster.Height > 0,
		"raster size %dx%d must be positive", c.Raster.Width, c.Raster.Height)
	check(c.Raster.Workers >= 0, "raster.workers %d is negative", c.Raster.Workers)
	color("raster.clear_color", c.Raster.ClearColor, false)
	color("raster.sky_color", c.Raster.SkyColor, true)

	check(c.Camera.FOV > 0 && c.Camera.FOV < 180, "camera.fov %v outside (0, 180)", c.Camera.FOV)
	check(c.Camera.Near > 0 && c.Camera.Near < c.Camera.Far,
		"camera near %v and far %v need 0 < near < far", c.Camera.Near, c.Camera.Far)

	check(c.Light.Strength >= 0, "light.strength %v is negative", c.Light.Strength)
	check(c.Light.Radius >= 0, "light.radius %v is negative", c.Light.Radius)
	check(c.Light.Ambience >= 0 && c.Light.Ambience <= 1, "light.ambience %v outside [0, 1]", c.Light.Ambience)

	color("post.fog_color", c.Post.FogColor, false)
	color("post.edge_color", c.Post.EdgeColor, false)
	check(c.Post.FogDensity > 0, "post.fog_density %v must be positive", c.Post.FogDensity)
	check(c.Post.EdgeThreshold >= -1 && c.Post.EdgeThreshold <= 1,
		"post.edge_threshold %v outside [-1, 1]", c.Post.EdgeThreshold)

	for i, n := range c.GI.Size {
		check(n > 0, "gi.size[%d] %d must be positive", i, n)
	}
	check(c.GI.Strength >= 0, "gi.strength %v is negative", c.GI.Strength)
	check(c.GI.UpdateInterval >= 0, "gi.update_interval %d is negative", c.GI.UpdateInterval)

	check(c.Frame.FPS > 0, "frame.fps %d must be positive", c.Frame.FPS)
	check(c.Frame.MinDT > 0 && c.Frame.MinDT <= c.Frame.MaxDT,
		"frame dt range [%v, %v] is empty", c.Frame.MinDT, c.Frame.MaxDT)

	if _, perr := zapcore.ParseLevel(strings.ToLower(c.Logging.Level)); perr != nil {
		err = multierr.Append(err, invalid("logging.level: %v", perr))
	}

	return err
}
