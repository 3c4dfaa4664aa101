package main

import (
	"fmt"
	"time"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/raster/pkg/render"
)

// ANSI styling understood by uv.StyledString.
const (
	reset    = "\x1b[0m"
	bold     = "\x1b[1m"
	dim      = "\x1b[2m"
	bgBlack  = "\x1b[40m"
	fgWhite  = "\x1b[97m"
	fgGreen  = "\x1b[92m"
	fgYellow = "\x1b[93m"
	fgCyan   = "\x1b[96m"
)

// HUD renders an overlay with frame stats and toggle states.
type HUD struct {
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

func NewHUD() *HUD {
	return &HUD{fpsTime: time.Now()}
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Draw paints the top status row and the bottom toggle row over area.
func (h *HUD) Draw(scr uv.Screen, area uv.Rectangle, s *scene) {
	if area.Dy() < 2 {
		return
	}
	stats := s.r.Stats()
	top := fmt.Sprintf("%s%s %.0f FPS %s%s%s %s %s%s %d tris  %d drawn  %d culled %s",
		bgBlack, fgGreen, h.fps,
		bold, fgWhite, bgBlack, s.name, reset,
		bgBlack+fgCyan, s.triangles, stats.Drawn, stats.Culled, reset)
	uv.NewStyledString(top).Draw(scr, uv.Rect(area.Min.X, area.Min.Y, area.Dx(), 1))

	o := s.r.Options
	bottom := fmt.Sprintf("%s%s %s fog %s dither %s edges %s depth %s normals %s gi %s parallel %s smooth %s%s  ? hud  esc quit %s",
		bgBlack, fgWhite,
		check(o.Fog), check(o.Dither), check(o.EdgeDetect),
		check(o.VisualizeDepth), check(o.VisualizeNormals),
		check(o.GI), check(s.deferred), check(o.SmoothShading),
		dim, fgYellow, reset)
	uv.NewStyledString(bottom).Draw(scr, uv.Rect(area.Min.X, area.Max.Y-1, area.Dx(), 1))
}

func check(on bool) string {
	if on {
		return "[✓]"
	}
	return "[ ]"
}

// drawFrame presents the framebuffer and, when enabled, the HUD.
func drawFrame(fb *render.Framebuffer, hud *HUD, s *scene) uv.Drawable {
	return uv.DrawableFunc(func(scr uv.Screen, area uv.Rectangle) {
		fb.Draw(scr, area)
		if hud != nil {
			hud.Draw(scr, area, s)
		}
	})
}
