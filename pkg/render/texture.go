package render

import (
	"image"
	"math"
)

// Texture is an immutable grid of colors. Sampling always wraps; there is no
// clamp mode.
type Texture struct {
	Width  int
	Height int
	Pixels []Color // Row-major pixel data
}

// NewTexture creates a transparent texture. Width and height below 1 are
// raised to 1 so sampling never divides by zero.
func NewTexture(width, height int) *Texture {
	width = max(width, 1)
	height = max(height, 1)
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
	}
}

// TextureFromImage creates a texture from a decoded image.
func TextureFromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	tex := NewTexture(bounds.Dx(), bounds.Dy())

	for y := range bounds.Dy() {
		for x := range bounds.Dx() {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			if a > 0 && a < 0xffff {
				// un-premultiply
				r = r * 0xffff / a
				g = g * 0xffff / a
				b = b * 0xffff / a
			}
			tex.Pixels[y*tex.Width+x] = Color{
				R: uint8(r >> 8),
				G: uint8(g >> 8),
				B: uint8(b >> 8),
				A: uint8(a >> 8),
			}
		}
	}

	return tex
}

// NewCheckerTexture creates a procedural checkerboard texture.
func NewCheckerTexture(width, height, checkSize int, c1, c2 Color) *Texture {
	tex := NewTexture(width, height)
	checkSize = max(checkSize, 1)
	for y := range tex.Height {
		for x := range tex.Width {
			c := c2
			if (x/checkSize+y/checkSize)%2 == 0 {
				c = c1
			}
			tex.Pixels[y*tex.Width+x] = c
		}
	}
	return tex
}

// NewSolidTexture creates a 1x1 texture of a single color.
func NewSolidTexture(c Color) *Texture {
	tex := NewTexture(1, 1)
	tex.Pixels[0] = c
	return tex
}

// Texel returns the pixel at (x, y) with both coordinates wrapped, so
// Texel(x+Width, y) and Texel(x, y+Height) equal Texel(x, y).
func (t *Texture) Texel(x, y int) Color {
	return t.Pixels[wrapIndex(y, t.Height)*t.Width+wrapIndex(x, t.Width)]
}

// Sample returns the nearest texel for UV coordinates, where (0, 0) is the top
// left corner and (1, 1) the bottom right. Coordinates outside [0, 1) wrap.
func (t *Texture) Sample(u, v float64) Color {
	if math.IsNaN(u) || math.IsNaN(v) {
		return t.Pixels[0]
	}
	return t.Texel(int(math.Floor(u*float64(t.Width))), int(math.Floor(v*float64(t.Height))))
}

func wrapIndex(i, size int) int {
	i %= size
	if i < 0 {
		i += size
	}
	return i
}
