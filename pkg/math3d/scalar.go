package math3d

import (
	"math"

	"github.com/chewxy/math32"
)

// FastInvSqrt approximates 1/sqrt(x) with one Newton step. Relative error is
// below 0.2% for positive x.
func FastInvSqrt(x float32) float32 {
	half := x * 0.5
	y := math32.Float32frombits(0x5f3759df - math32.Float32bits(x)>>1)
	return y * (1.5 - half*y*y)
}

// Lerp interpolates between a and b by t without clamping t.
func Lerp(a, b, t float64) float64 {
	return (1-t)*a + t*b
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}
