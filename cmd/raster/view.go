package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taigrr/raster/internal/logger"
)

func newViewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "view [model.glb]",
		Short: "Interactive terminal viewer",
		Long:  "view renders the model into the terminal with half-block cells, two pixels per cell.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// The terminal owns stdout; logs go to the log file only.
			if err := a.load(nil); err != nil {
				return err
			}
			defer logger.Sync()
			if err := runViewer(cmd.Context(), a, modelArg(args)); err != nil {
				logger.Error("viewer failed", zap.Error(err))
				return err
			}
			return nil
		},
	}
}

func modelArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// viewer is the interactive state layered over a scene.
type viewer struct {
	s        *scene
	rotation *RotationState
	hud      *HUD
	showHUD  bool

	mouseDown  bool
	lastMouseX int
	lastMouseY int
	quit       bool
}

const torqueStrength = 0.08

func runViewer(ctx context.Context, a *app, modelPath string) error {
	cfg := a.cfg
	log := logger.Named("view")

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	cfg.Raster.Width, cfg.Raster.Height = width, height*2
	s, err := newScene(cfg, modelPath, a.texturePath, log)
	if err != nil {
		return err
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	if err := term.Resize(width, height); err != nil {
		return fmt.Errorf("resize terminal: %w", err)
	}

	fmt.Fprint(os.Stdout, "\x1b[?1003h") // any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // SGR extended mouse mode
	defer func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		if err := term.Shutdown(context.Background()); err != nil {
			log.Warn("terminal shutdown", zap.Error(err))
		}
	}()

	v := &viewer{
		s:        s,
		rotation: NewRotationState(cfg.Frame.FPS),
		hud:      NewHUD(),
		showHUD:  true,
	}

	ticker := time.NewTicker(time.Second / time.Duration(cfg.Frame.FPS))
	defer ticker.Stop()
	events := term.Events()
	lastFrame := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if size, ok := ev.(uv.WindowSizeEvent); ok {
				term.Erase()
				if err := term.Resize(size.Width, size.Height); err != nil {
					return fmt.Errorf("resize terminal: %w", err)
				}
				s.resize(size.Width, size.Height*2)
				log.Debug("resized", zap.Int("cols", size.Width), zap.Int("rows", size.Height))
				continue
			}
			v.handle(ev)
			if v.quit {
				return nil
			}

		case now := <-ticker.C:
			dt := cfg.Frame.ClampDT(now.Sub(lastFrame).Seconds())
			lastFrame = now

			v.rotation.Update()
			if err := s.frame(ctx, dt, v.rotation.Degrees()); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}

			var hud *HUD
			if v.showHUD {
				hud = v.hud
			}
			v.hud.UpdateFPS()
			term.Draw(drawFrame(s.r.Framebuffer(), hud, s))
			if err := term.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}
		}
	}
}

// handle applies one input event.
func (v *viewer) handle(ev uv.Event) {
	o := &v.s.r.Options
	switch ev := ev.(type) {
	case uv.KeyPressEvent:
		switch {
		case ev.MatchString("escape", "ctrl+c"):
			v.quit = true
		case ev.MatchString("w", "up"):
			v.rotation.ApplyImpulse(-torqueStrength, 0, 0)
		case ev.MatchString("s", "down"):
			v.rotation.ApplyImpulse(torqueStrength, 0, 0)
		case ev.MatchString("a", "left"):
			v.rotation.ApplyImpulse(0, -torqueStrength, 0)
		case ev.MatchString("d", "right"):
			v.rotation.ApplyImpulse(0, torqueStrength, 0)
		case ev.MatchString("space"):
			v.rotation.ApplyImpulse(
				(rand.Float64()-0.5)*1.5,
				(rand.Float64()-0.5)*1.5,
				(rand.Float64()-0.5)*1.5,
			)
		case ev.MatchString("r"):
			v.rotation.Reset()
		case ev.MatchString("+", "="):
			v.s.zoom(0.5)
		case ev.MatchString("-", "_"):
			v.s.zoom(-0.5)
		case ev.MatchString("1"):
			o.Fog = !o.Fog
		case ev.MatchString("2"):
			o.Dither = !o.Dither
		case ev.MatchString("3"):
			o.EdgeDetect = !o.EdgeDetect
		case ev.MatchString("4"):
			o.VisualizeDepth = !o.VisualizeDepth
			o.VisualizeNormals = false
		case ev.MatchString("5"):
			o.VisualizeNormals = !o.VisualizeNormals
			o.VisualizeDepth = false
		case ev.MatchString("g"):
			o.GI = !o.GI
			if !o.GI {
				v.s.grid.Reset()
			}
		case ev.MatchString("v"):
			v.s.showVoxels = !v.s.showVoxels
		case ev.MatchString("x"):
			v.s.showAxes = !v.s.showAxes
		case ev.MatchString("p"):
			v.s.deferred = !v.s.deferred
		case ev.MatchString("t"):
			o.TextureMapping = !o.TextureMapping
		case ev.MatchString("n"):
			o.SmoothShading = !o.SmoothShading
		case ev.MatchString("?", "shift+/"):
			v.showHUD = !v.showHUD
		}

	case uv.MouseClickEvent:
		v.mouseDown = true
		v.lastMouseX, v.lastMouseY = ev.X, ev.Y

	case uv.MouseReleaseEvent:
		v.mouseDown = false

	case uv.MouseMotionEvent:
		if v.mouseDown {
			dx := ev.X - v.lastMouseX
			dy := ev.Y - v.lastMouseY
			v.rotation.ApplyImpulse(float64(dy)*0.03, float64(dx)*0.03, 0)
			v.lastMouseX, v.lastMouseY = ev.X, ev.Y
		}

	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			v.s.zoom(0.5)
		case uv.MouseWheelDown:
			v.s.zoom(-0.5)
		}
	}
}
