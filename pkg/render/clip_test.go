package render

import (
	"testing"

	"github.com/taigrr/raster/pkg/math3d"
)

func clipTri(a, b, c math3d.Vec4) [3]ClipVertex {
	return [3]ClipVertex{
		{Pos: a, UV: math3d.V2(0, 0), Light: 0},
		{Pos: b, UV: math3d.V2(1, 0), Light: 0.5},
		{Pos: c, UV: math3d.V2(0, 1), Light: 1},
	}
}

func TestClipInsideUnchanged(t *testing.T) {
	tri := clipTri(
		math3d.V4(0, 0, 0.5, 1),
		math3d.V4(0.5, 0, 0.5, 1),
		math3d.V4(0, 0.5, 0.5, 1),
	)
	got := NewClipper().Clip(tri)
	if len(got) != 3 {
		t.Fatalf("got %d vertices, want 3", len(got))
	}
	for i := range got {
		if got[i] != tri[i] {
			t.Errorf("vertex %d = %+v, want %+v", i, got[i], tri[i])
		}
	}
}

func TestClipOutsideSinglePlane(t *testing.T) {
	planes := ClipPlanes()
	tests := []struct {
		name  string
		plane int
		tri   [3]ClipVertex
	}{
		{"near", 0, clipTri(math3d.V4(0, 0, -0.5, 1), math3d.V4(0.5, 0, -0.2, 1), math3d.V4(0, 0.5, -0.1, 1))},
		{"far", 1, clipTri(math3d.V4(0, 0, 1.5, 1), math3d.V4(0.5, 0, 1.2, 1), math3d.V4(0, 0.5, 1.1, 1))},
		{"left", 2, clipTri(math3d.V4(-2, 0, 0.5, 1), math3d.V4(-1.5, 0, 0.5, 1), math3d.V4(-2, 0.5, 0.5, 1))},
		{"right", 3, clipTri(math3d.V4(2, 0, 0.5, 1), math3d.V4(1.5, 0, 0.5, 1), math3d.V4(2, 0.5, 0.5, 1))},
		{"top", 4, clipTri(math3d.V4(0, -2, 0.5, 1), math3d.V4(0.5, -2, 0.5, 1), math3d.V4(0, -1.5, 0.5, 1))},
		{"bottom", 5, clipTri(math3d.V4(0, 2, 0.5, 1), math3d.V4(0.5, 2, 0.5, 1), math3d.V4(0, 1.5, 0.5, 1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClipper()
			if got := c.ClipAgainst(tt.tri, planes[tt.plane]); len(got) != 0 {
				t.Errorf("single plane: got %d vertices, want 0", len(got))
			}
			if got := c.Clip(tt.tri); len(got) != 0 {
				t.Errorf("all planes: got %d vertices, want 0", len(got))
			}
		})
	}
}

func TestClipStraddlingPlane(t *testing.T) {
	// One vertex past x = 1: the tip is cut off, leaving a quad.
	tri := clipTri(
		math3d.V4(0, 0, 0.5, 1),
		math3d.V4(2, 0, 0.5, 1),
		math3d.V4(0, 0.5, 0.5, 1),
	)
	got := NewClipper().Clip(tri)
	if len(got) != 4 {
		t.Fatalf("got %d vertices, want 4", len(got))
	}
	for i, v := range got {
		if v.Pos.X > v.Pos.W+1e-9 {
			t.Errorf("vertex %d x = %v outside the right plane", i, v.Pos.X)
		}
		if v.Light < 0 || v.Light > 1 {
			t.Errorf("vertex %d light %v not interpolated", i, v.Light)
		}
	}
	// The cut on edge v0→v1 lands at its midpoint.
	found := false
	for _, v := range got {
		if v.Pos.X == 1 && v.Pos.Y == 0 && v.UV.X == 0.5 && v.Light == 0.25 {
			found = true
		}
	}
	if !found {
		t.Errorf("missing intersection at x = 1 on the bottom edge: %+v", got)
	}
}

func TestClipBehindEye(t *testing.T) {
	// Clip space with w < 0 is behind the camera; the near plane removes it
	// even though x/w and y/w would land on screen.
	tri := clipTri(
		math3d.V4(0.1, 0.1, -2, -1),
		math3d.V4(0.2, 0.1, -2, -1),
		math3d.V4(0.1, 0.2, -2, -1),
	)
	if got := NewClipper().Clip(tri); len(got) != 0 {
		t.Errorf("got %d vertices for a triangle behind the eye", len(got))
	}
}

func TestClipMaxVertices(t *testing.T) {
	// A large triangle crossing every side plane produces the most vertices.
	tri := clipTri(
		math3d.V4(-3, -3, 0.5, 1),
		math3d.V4(5, -1, 0.5, 1),
		math3d.V4(-1, 5, 0.5, 1),
	)
	got := NewClipper().Clip(tri)
	if len(got) < 3 || len(got) > MaxClipVertices {
		t.Fatalf("got %d vertices", len(got))
	}
	for i, v := range got {
		for p, plane := range ClipPlanes() {
			if math3d.PlaneDistance(plane, v.Pos) < -1e-9 {
				t.Errorf("vertex %d behind plane %d", i, p)
			}
		}
	}
}

func BenchmarkClip(b *testing.B) {
	c := NewClipper()
	tri := clipTri(
		math3d.V4(0, 0, 0.5, 1),
		math3d.V4(2, 0, 0.5, 1),
		math3d.V4(0, 0.5, 0.5, 1),
	)
	for b.Loop() {
		c.Clip(tri)
	}
}
