// Package render implements a CPU triangle rasterizer: transform, backface
// culling, frustum clipping, depth-tested scan conversion, per-vertex
// lighting and screen-space post-processing.
package render

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

// RenderTarget selects the color buffer that drawing writes to.
type RenderTarget int

const (
	// TargetColor is the per-frame color buffer.
	TargetColor RenderTarget = iota
	// TargetClear is the template copied into the color buffer by Clear.
	TargetClear
)

func (t RenderTarget) String() string {
	switch t {
	case TargetColor:
		return "color"
	case TargetClear:
		return "clear"
	default:
		return fmt.Sprintf("RenderTarget(%d)", int(t))
	}
}

// Framebuffer owns the color, depth and normal buffers and a clear template
// for each. All buffers are row-major, width*height long, indexed y*width+x.
type Framebuffer struct {
	Width  int
	Height int

	color       []Color
	clearColor  []Color
	depth       []float32
	clearDepth  []float32
	normal      []Color
	clearNormal []Color
}

// NewFramebuffer allocates all buffers. The clear templates start as opaque
// black, depth 1 (far) and no normal.
func NewFramebuffer(width, height int) *Framebuffer {
	fb := &Framebuffer{}
	fb.Resize(width, height)
	return fb
}

// Resize reallocates every buffer and resets the templates.
func (fb *Framebuffer) Resize(width, height int) {
	width, height = max(width, 1), max(height, 1)
	n := width * height
	fb.Width, fb.Height = width, height
	fb.color = make([]Color, n)
	fb.clearColor = make([]Color, n)
	fb.depth = make([]float32, n)
	fb.clearDepth = make([]float32, n)
	fb.normal = make([]Color, n)
	fb.clearNormal = make([]Color, n)

	fill(fb.clearColor, ColorBlack)
	fill(fb.clearDepth, 1)
	fb.Clear()
}

// fill sets every element of s to v by doubling copies.
func fill[T any](s []T, v T) {
	if len(s) == 0 {
		return
	}
	s[0] = v
	for i := 1; i < len(s); i *= 2 {
		copy(s[i:], s[:i])
	}
}

// Clear copies the clear templates into the color, depth and normal buffers.
func (fb *Framebuffer) Clear() {
	copy(fb.color, fb.clearColor)
	copy(fb.depth, fb.clearDepth)
	copy(fb.normal, fb.clearNormal)
}

// SetClearColor fills the clear template with a single color.
func (fb *Framebuffer) SetClearColor(c Color) {
	fill(fb.clearColor, c)
}

// Target returns the color buffer for t.
func (fb *Framebuffer) Target(t RenderTarget) []Color {
	if t == TargetClear {
		return fb.clearColor
	}
	return fb.color
}

// Pixels returns the color buffer. The slice aliases the framebuffer.
func (fb *Framebuffer) Pixels() []Color { return fb.color }

// Depth returns the depth buffer. The slice aliases the framebuffer.
func (fb *Framebuffer) Depth() []float32 { return fb.depth }

// Normals returns the encoded normal buffer. The slice aliases the framebuffer.
func (fb *Framebuffer) Normals() []Color { return fb.normal }

func (fb *Framebuffer) inBounds(x, y int) bool {
	return x >= 0 && x < fb.Width && y >= 0 && y < fb.Height
}

// At returns the color at (x, y), or the zero color out of bounds.
func (fb *Framebuffer) At(x, y int) Color {
	if !fb.inBounds(x, y) {
		return Color{}
	}
	return fb.color[y*fb.Width+x]
}

// DepthAt returns the depth at (x, y), or 1 out of bounds.
func (fb *Framebuffer) DepthAt(x, y int) float32 {
	if !fb.inBounds(x, y) {
		return 1
	}
	return fb.depth[y*fb.Width+x]
}

// NormalAt returns the encoded normal at (x, y), or the zero color out of
// bounds.
func (fb *Framebuffer) NormalAt(x, y int) Color {
	if !fb.inBounds(x, y) {
		return Color{}
	}
	return fb.normal[y*fb.Width+x]
}

// Packed writes the color buffer as packed RGBA values into dst, growing it
// when needed, and returns it.
func (fb *Framebuffer) Packed(dst []uint32) []uint32 {
	if cap(dst) < len(fb.color) {
		dst = make([]uint32, len(fb.color))
	}
	dst = dst[:len(fb.color)]
	for i, c := range fb.color {
		dst[i] = c.Packed()
	}
	return dst
}

// ToImage converts the color buffer to an image.RGBA. Alpha is forced opaque.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for i, c := range fb.color {
		o := i * 4
		img.Pix[o+0] = c.R
		img.Pix[o+1] = c.G
		img.Pix[o+2] = c.B
		img.Pix[o+3] = 255
	}
	return img
}

// SavePNG writes the color buffer to path, upscaled by an integer factor with
// nearest-neighbor sampling.
func (fb *Framebuffer) SavePNG(path string, scale int) error {
	var img image.Image = fb.ToImage()
	if scale > 1 {
		dst := image.NewRGBA(image.Rect(0, 0, fb.Width*scale, fb.Height*scale))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
		img = dst
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}
