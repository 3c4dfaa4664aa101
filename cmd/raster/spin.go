package main

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/raster/pkg/math3d"
)

// RotationAxis tracks position and velocity for one rotation axis. The
// velocity decays toward zero through a critically damped spring.
type RotationAxis struct {
	Position  float64 // radians
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64
}

// NewRotationAxis creates an axis whose spring steps at fps.
func NewRotationAxis(fps int) RotationAxis {
	return RotationAxis{
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update applies velocity to position and decays velocity.
func (a *RotationAxis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// RotationState holds the spring-damped model rotation.
type RotationState struct {
	Pitch, Yaw, Roll RotationAxis
	fps              int
}

func NewRotationState(fps int) *RotationState {
	r := &RotationState{fps: fps}
	r.Reset()
	return r
}

func (r *RotationState) Update() {
	r.Pitch.Update()
	r.Yaw.Update()
	r.Roll.Update()
}

func (r *RotationState) ApplyImpulse(pitch, yaw, roll float64) {
	r.Pitch.Velocity += pitch
	r.Yaw.Velocity += yaw
	r.Roll.Velocity += roll
}

func (r *RotationState) Reset() {
	r.Pitch = NewRotationAxis(r.fps)
	r.Yaw = NewRotationAxis(r.fps)
	r.Roll = NewRotationAxis(r.fps)
}

// Degrees returns the rotation as a DrawRequest rotation (X, Y, Z degrees).
func (r *RotationState) Degrees() math3d.Vec3 {
	const k = 180 / math.Pi
	return math3d.V3(r.Pitch.Position*k, r.Yaw.Position*k, r.Roll.Position*k)
}
