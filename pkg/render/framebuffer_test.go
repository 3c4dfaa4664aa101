package render

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/taigrr/raster/pkg/math3d"
)

func TestColorPacked(t *testing.T) {
	c := RGBA(1, 2, 3, 4)
	if got := c.Packed(); got != 0x04030201 {
		t.Errorf("Packed = %#08x, want 0x04030201", got)
	}
	if got := ColorFromPacked(c.Packed()); got != c {
		t.Errorf("ColorFromPacked = %v, want %v", got, c)
	}
}

func TestColorArithmetic(t *testing.T) {
	tests := []struct {
		name string
		got  Color
		want Color
	}{
		{"add saturates", RGB(200, 100, 0).AddSaturate(RGBA(100, 100, 10, 7)), Color{255, 200, 10, 7}},
		{"scale clamps", RGB(100, 200, 255).Scale(2), RGB(200, 255, 255)},
		{"scale keeps alpha", RGBA(100, 100, 100, 9).Scale(0.5), RGBA(50, 50, 50, 9)},
		{"lerp start", ColorBlack.Lerp(ColorWhite, 0), ColorBlack},
		{"lerp end", ColorBlack.Lerp(ColorWhite, 1), ColorWhite},
		{"lerp half", ColorBlack.Lerp(RGB(200, 100, 0), 0.5), RGB(100, 50, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestNormalEncoding(t *testing.T) {
	normals := []math3d.Vec3{
		math3d.V3(0, 0, 1),
		math3d.V3(0, -1, 0),
		math3d.V3(1, 0, 0),
		math3d.V3(1, 1, 1).Normalize(),
		math3d.V3(-0.3, 0.8, -0.2).Normalize(),
	}
	for _, n := range normals {
		c := EncodeNormal(n)
		if c.A != 255 {
			t.Errorf("EncodeNormal(%v) alpha = %d", n, c.A)
		}
		got := DecodeNormal(c)
		if got.Sub(n).Len() > 0.02 {
			t.Errorf("DecodeNormal(EncodeNormal(%v)) = %v", n, got)
		}
	}
	if got := DecodeNormal(Color{}); got != (math3d.Vec3{}) {
		t.Errorf("uncovered decodes to %v, want zero", got)
	}
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#ff8000")
	if err != nil {
		t.Fatalf("ParseHexColor: %v", err)
	}
	if want := RGB(255, 128, 0); c != want {
		t.Errorf("got %v, want %v", c, want)
	}
	if got := c.Hex(); got != "#ff8000" {
		t.Errorf("Hex = %q", got)
	}
	if _, err := ParseHexColor("orange"); err == nil {
		t.Error("expected an error for a non-hex string")
	}
}

func TestTextureWrap(t *testing.T) {
	tex := NewCheckerTexture(4, 4, 2, ColorRed, ColorBlue)
	tests := []struct {
		name string
		got  Color
		want Color
	}{
		{"texel origin", tex.Texel(0, 0), ColorRed},
		{"texel second check", tex.Texel(2, 0), ColorBlue},
		{"texel negative wraps", tex.Texel(-1, 0), ColorBlue},
		{"texel past end wraps", tex.Texel(4, 4), ColorRed},
		{"sample origin", tex.Sample(0, 0), ColorRed},
		{"sample middle", tex.Sample(0.5, 0), ColorBlue},
		{"sample one wraps", tex.Sample(1, 0), ColorRed},
		{"sample negative wraps", tex.Sample(-0.25, 0), ColorBlue},
		{"sample NaN", tex.Sample(math.NaN(), 0.5), ColorRed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestTextureFromImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 200, G: 100, B: 0, A: 128})

	tex := TextureFromImage(img)
	if tex.Width != 2 || tex.Height != 1 {
		t.Fatalf("size %dx%d", tex.Width, tex.Height)
	}
	if got := tex.Texel(0, 0); got != RGB(10, 20, 30) {
		t.Errorf("opaque texel = %v", got)
	}
	got := tex.Texel(1, 0)
	if d := int(got.R) - 200; d < -2 || d > 2 || got.A != 128 {
		t.Errorf("translucent texel = %v, want about {200 100 0 128}", got)
	}
}

func TestLightContribution(t *testing.T) {
	pos, up := math3d.Vec3{}, math3d.V3(0, 1, 0)
	l := NewLight(math3d.V3(0, 5, 0), 0.5, 0)
	if got := l.Contribution(pos, up); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("facing light = %v, want 0.5", got)
	}
	if got := l.Contribution(pos, up.Negate()); got != DefaultAmbience {
		t.Errorf("facing away = %v, want the ambience floor", got)
	}

	l.Strength = 10
	if got := l.Contribution(pos, up); got != 1 {
		t.Errorf("overbright = %v, want 1", got)
	}

	l = NewLight(math3d.V3(0, 2, 0), 1, 2)
	near := l.Contribution(pos, up)
	l.Position = math3d.V3(0, 4, 0)
	far := l.Contribution(pos, up)
	if far >= near {
		t.Errorf("attenuation: near %v, far %v", near, far)
	}
}

func TestLightStrengthMonotonic(t *testing.T) {
	up := math3d.V3(0, 1, 0)
	tests := []struct {
		name     string
		light    Light
		pos      math3d.Vec3
		normal   math3d.Vec3
		saturate bool
	}{
		{"overhead", NewLight(math3d.V3(0, 5, 0), 0, 0), math3d.Vec3{}, up, true},
		{"oblique", NewLight(math3d.V3(3, 4, 0), 0, 0), math3d.Vec3{}, up, true},
		{"tilted normal", NewLight(math3d.V3(0, 5, 0), 0, 0), math3d.V3(1, -1, 2), math3d.V3(1, 1, 0).Normalize(), true},
		{"attenuated", NewLight(math3d.V3(0, 4, 0), 0, 2), math3d.Vec3{}, up, true},
		{"far attenuated", NewLight(math3d.V3(2, 10, -3), 0, 1.5), math3d.V3(0, 1, 0), math3d.V3(0, 0.8, -0.6), true},
		{"facing away", NewLight(math3d.V3(0, 5, 0), 0, 0), math3d.Vec3{}, up.Negate(), false},
		{"behind attenuated", NewLight(math3d.V3(0, 4, 0), 0, 2), math3d.Vec3{}, math3d.V3(0, -0.6, 0.8), false},
	}
	strengths := []float64{}
	for s := 0.0; s <= 64; s += 0.5 {
		strengths = append(strengths, s)
	}
	strengths = append(strengths, 1e3, 1e6)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := tt.light
			prev := -1.0
			for _, s := range strengths {
				l.Strength = s
				got := l.Contribution(tt.pos, tt.normal)
				if got < prev {
					t.Fatalf("strength %v gives %v, below %v at the previous step", s, got, prev)
				}
				if got < l.Ambience || got > 1 {
					t.Fatalf("strength %v gives %v, outside [ambience, 1]", s, got)
				}
				if !tt.saturate && got != l.Ambience {
					t.Fatalf("strength %v gives %v, want the ambience floor", s, got)
				}
				prev = got
			}
			if tt.saturate && prev != 1 {
				t.Errorf("saturated contribution = %v, want exactly 1", prev)
			}
			l.Strength = 0
			if got := l.Contribution(tt.pos, tt.normal); got != l.Ambience {
				t.Errorf("zero strength = %v, want the ambience floor", got)
			}
		})
	}
}

func TestFramebufferResize(t *testing.T) {
	r := NewRenderer(4, 4)
	r.Resize(10, 5)
	fb := r.Framebuffer()
	if fb.Width != 10 || fb.Height != 5 {
		t.Fatalf("size %dx%d", fb.Width, fb.Height)
	}
	if len(fb.Pixels()) != 50 || len(fb.Depth()) != 50 || len(fb.Normals()) != 50 {
		t.Error("buffers not reallocated")
	}
	if fb.DepthAt(9, 4) != 1 {
		t.Error("depth not cleared after resize")
	}
	if fb.At(-1, 0) != (Color{}) || fb.DepthAt(10, 0) != 1 {
		t.Error("out of bounds reads should return the zero values")
	}
}

func TestFramebufferPacked(t *testing.T) {
	r := NewRenderer(3, 2)
	r.FillRect(1, 1, 1, 1, RGB(1, 2, 3))
	out := r.Framebuffer().Packed(nil)
	if len(out) != 6 {
		t.Fatalf("len = %d", len(out))
	}
	if out[4] != 0xff030201 {
		t.Errorf("packed pixel = %#08x", out[4])
	}
	if out[0] != 0xff000000 {
		t.Errorf("packed background = %#08x", out[0])
	}
}

func TestSavePNG(t *testing.T) {
	r := NewRenderer(4, 3)
	r.FillRect(0, 0, 1, 1, ColorRed)
	dir := t.TempDir()
	path := filepath.Join(dir, "frame.png")
	if err := r.Framebuffer().SavePNG(path, 2); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 6 {
		t.Errorf("bounds = %v, want 8x6", b)
	}
	for _, p := range []image.Point{{0, 0}, {1, 1}} {
		if r, g, _, _ := img.At(p.X, p.Y).RGBA(); r != 0xffff || g != 0 {
			t.Errorf("pixel %v not red", p)
		}
	}
	if r, _, _, _ := img.At(2, 2).RGBA(); r != 0 {
		t.Error("upscaled red pixel bled into its neighbor")
	}

	if err := r.Framebuffer().SavePNG(filepath.Join(dir, "missing", "x.png"), 1); err == nil {
		t.Error("expected an error for a missing directory")
	}
}

func TestFillRectClips(t *testing.T) {
	r := NewRenderer(8, 8)
	r.FillRect(-2, -2, 4, 4, ColorWhite)
	if n, box := coverage(r.Framebuffer(), ColorBlack); n != 4 || box != image.Rect(0, 0, 2, 2) {
		t.Errorf("covered %d pixels in %v, want 4 in (0,0)-(2,2)", n, box)
	}
	r.FillRect(20, 20, 4, 4, ColorWhite)
	r.FillRect(2, 2, 0, 5, ColorWhite)
	if n, _ := coverage(r.Framebuffer(), ColorBlack); n != 4 {
		t.Errorf("offscreen or empty rectangles drew pixels")
	}
}

func TestDrawRect(t *testing.T) {
	r := NewRenderer(8, 8)
	r.DrawRect(1, 1, 4, 3, ColorWhite)
	n, box := coverage(r.Framebuffer(), ColorBlack)
	if n != 10 || box != image.Rect(1, 1, 5, 4) {
		t.Errorf("outline covered %d pixels in %v, want 10 in (1,1)-(5,4)", n, box)
	}
	if r.Framebuffer().At(2, 2) != ColorBlack {
		t.Error("outline filled its interior")
	}
}

func TestFillRectGradient(t *testing.T) {
	r := NewRenderer(4, 4)
	down := math3d.V2(0, 1)
	r.FillRectGradient(0, 0, 4, 4, ColorBlack, ColorWhite, down, down)
	fb := r.Framebuffer()
	for x := range 4 {
		if got := fb.At(x, 0); got != ColorWhite {
			t.Errorf("top row (%d) = %v, want the end color", x, got)
		}
	}
	for y := 1; y < 4; y++ {
		if fb.At(0, y).R >= fb.At(0, y-1).R {
			t.Errorf("row %d not darker than row %d", y, y-1)
		}
	}
}

func TestDrawLine(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 int
		want           int
	}{
		{"horizontal", 1, 2, 6, 2, 6},
		{"vertical", 3, 0, 3, 7, 8},
		{"diagonal", 0, 0, 5, 5, 6},
		{"shallow", 0, 0, 7, 3, 8},
		{"point", 4, 4, 4, 4, 1},
		{"clipped", -4, 1, 3, 1, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRenderer(8, 8)
			r.DrawLine(tt.x0, tt.y0, tt.x1, tt.y1, ColorWhite)
			fb := r.Framebuffer()
			if n, _ := coverage(fb, ColorBlack); n != tt.want {
				t.Errorf("covered %d pixels, want %d", n, tt.want)
			}
			if fb.inBounds(tt.x1, tt.y1) && fb.At(tt.x1, tt.y1) != ColorWhite {
				t.Error("end point not drawn")
			}
		})
	}
}

func TestFillCircle(t *testing.T) {
	r := NewRenderer(12, 12)
	r.FillCircle(5, 5, 2, ColorWhite)
	if n, box := coverage(r.Framebuffer(), ColorBlack); n != 13 || box != image.Rect(3, 3, 8, 8) {
		t.Errorf("covered %d pixels in %v, want 13 in (3,3)-(8,8)", n, box)
	}
}

func TestBlendAdd(t *testing.T) {
	r := NewRenderer(2, 1)
	r.SetBlendMode(BlendAdd)
	r.FillRect(0, 0, 1, 1, RGB(200, 10, 0))
	r.FillRect(0, 0, 1, 1, RGB(100, 10, 0))
	if got := r.Framebuffer().At(0, 0); got != RGB(255, 20, 0) {
		t.Errorf("got %v, want saturated sum", got)
	}
}

func BenchmarkClear(b *testing.B) {
	fb := NewFramebuffer(320, 240)
	for b.Loop() {
		fb.Clear()
	}
}
