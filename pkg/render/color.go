package render

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/taigrr/raster/pkg/math3d"
)

// Color is an 8-bit-per-channel RGBA color. Packed gives the single 32-bit
// form used by the output buffer: R in the low byte, A in the high byte.
type Color struct {
	R, G, B, A uint8
}

// RGB creates an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{r, g, b, 255}
}

// RGBA creates a color from all four channels.
func RGBA(r, g, b, a uint8) Color {
	return Color{r, g, b, a}
}

// ColorFromPacked unpacks a value produced by Color.Packed.
func ColorFromPacked(v uint32) Color {
	return Color{
		R: uint8(v),
		G: uint8(v >> 8),
		B: uint8(v >> 16),
		A: uint8(v >> 24),
	}
}

// Packed returns the color as R | G<<8 | B<<16 | A<<24.
func (c Color) Packed() uint32 {
	return uint32(c.R) | uint32(c.G)<<8 | uint32(c.B)<<16 | uint32(c.A)<<24
}

// RGBA implements color.Color. Channels are treated as non-premultiplied.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}

// Scale multiplies the color channels by s, clamped to [0, 255]. Alpha is kept.
func (c Color) Scale(s float64) Color {
	return Color{
		R: clampChannel(float64(c.R) * s),
		G: clampChannel(float64(c.G) * s),
		B: clampChannel(float64(c.B) * s),
		A: c.A,
	}
}

// Lerp blends every channel from c toward to by t in [0, 1].
func (c Color) Lerp(to Color, t float64) Color {
	return Color{
		R: clampChannel(float64(c.R) + (float64(to.R)-float64(c.R))*t),
		G: clampChannel(float64(c.G) + (float64(to.G)-float64(c.G))*t),
		B: clampChannel(float64(c.B) + (float64(to.B)-float64(c.B))*t),
		A: clampChannel(float64(c.A) + (float64(to.A)-float64(c.A))*t),
	}
}

// AddSaturate adds src to c per channel, saturating at 255. The result takes
// the alpha of src.
func (c Color) AddSaturate(src Color) Color {
	return Color{
		R: addSat(c.R, src.R),
		G: addSat(c.G, src.G),
		B: addSat(c.B, src.B),
		A: src.A,
	}
}

func addSat(a, b uint8) uint8 {
	s := uint16(a) + uint16(b)
	if s > 255 {
		return 255
	}
	return uint8(s)
}

func clampChannel(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// EncodeNormal stores a unit normal in a color, mapping each component from
// [-1, 1] to [0, 255]. Alpha 255 marks a covered pixel.
func EncodeNormal(n math3d.Vec3) Color {
	return Color{
		R: clampChannel((n.X + 1) * 127.5),
		G: clampChannel((n.Y + 1) * 127.5),
		B: clampChannel((n.Z + 1) * 127.5),
		A: 255,
	}
}

// DecodeNormal reverses EncodeNormal. A color with zero alpha decodes to the
// zero vector.
func DecodeNormal(c Color) math3d.Vec3 {
	if c.A == 0 {
		return math3d.Vec3{}
	}
	return math3d.V3(
		float64(c.R)/127.5-1,
		float64(c.G)/127.5-1,
		float64(c.B)/127.5-1,
	).Normalize()
}

// ParseHexColor parses a "#rrggbb" string into an opaque Color.
func ParseHexColor(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGB(r, g, b), nil
}

// Hex formats the color as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Colors for convenience
var (
	ColorBlack  = RGB(0, 0, 0)
	ColorWhite  = RGB(255, 255, 255)
	ColorRed    = RGB(255, 0, 0)
	ColorGreen  = RGB(0, 255, 0)
	ColorBlue   = RGB(0, 0, 255)
	ColorYellow = RGB(255, 255, 0)
	ColorGray   = RGB(128, 128, 128)
	ColorSky    = RGB(135, 206, 235)
)
