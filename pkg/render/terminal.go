package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw implements uv.Drawable. It scales the framebuffer to area with
// nearest sampling and paints it with upper half blocks: each cell shows two
// pixel rows, the top one as foreground and the bottom one as background.
// A framebuffer twice as tall as the area maps one pixel to each half cell.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	cols, rows := area.Dx(), area.Dy()
	if cols <= 0 || rows <= 0 {
		return
	}
	for row := range rows {
		topY := (2 * row) * fb.Height / (2 * rows)
		botY := (2*row + 1) * fb.Height / (2 * rows)
		for col := range cols {
			x := col * fb.Width / cols
			scr.SetCell(area.Min.X+col, area.Min.Y+row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: opaque(fb.At(x, topY)),
					Bg: opaque(fb.At(x, botY)),
				},
			})
		}
	}
}

func opaque(c Color) color.Color {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}
