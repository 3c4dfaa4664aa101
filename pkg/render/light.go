package render

import (
	"fmt"

	"github.com/taigrr/raster/pkg/math3d"
)

// LightKind distinguishes point and spot lights. Both currently use the same
// contribution function.
type LightKind int

const (
	LightPoint LightKind = iota
	LightSpot
)

func (k LightKind) String() string {
	switch k {
	case LightPoint:
		return "point"
	case LightSpot:
		return "spot"
	default:
		return fmt.Sprintf("LightKind(%d)", int(k))
	}
}

// DefaultAmbience is the lowest contribution a lit surface can receive.
const DefaultAmbience = 1.0 / 255.0

// Light is caller-owned scene state, passed by value into draw calls.
type Light struct {
	Position math3d.Vec3
	Strength float64
	Radius   float64 // 0 disables distance attenuation
	Ambience float64
	Kind     LightKind
}

// NewLight creates a point light with the default ambience floor.
func NewLight(pos math3d.Vec3, strength, radius float64) Light {
	return Light{
		Position: pos,
		Strength: strength,
		Radius:   radius,
		Ambience: DefaultAmbience,
		Kind:     LightPoint,
	}
}

// Contribution returns the direct light reaching a surface at pos with the
// given outward normal: dot(normal, toLight) * attenuation * strength, where
// attenuation is 1/(1 + d²/radius³), clamped to [Ambience, 1].
func (l Light) Contribution(pos, normal math3d.Vec3) float64 {
	delta := l.Position.Sub(pos)
	atten := 1.0
	if l.Radius > 0 {
		atten = 1 / (1 + delta.LenSq()/(l.Radius*l.Radius*l.Radius))
	}
	result := normal.Dot(delta.Normalize()) * atten * l.Strength
	return math3d.Clamp(result, l.Ambience, 1)
}
