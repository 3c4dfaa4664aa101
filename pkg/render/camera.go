package render

import (
	"math"

	"github.com/taigrr/raster/pkg/math3d"
)

// Camera is a yaw/pitch fly camera. Angles are in degrees. Yaw -90 looks down
// -Z. View and projection are cached and rebuilt when a setter marks them
// dirty. The renderer reads the position and matrices once per frame in
// Begin.
type Camera struct {
	position math3d.Vec3
	yaw      float64
	pitch    float64

	fov    float64 // vertical, degrees
	aspect float64
	near   float64
	far    float64

	forward, right, up math3d.Vec3

	view      math3d.Mat4
	proj      math3d.Mat4
	viewDirty bool
	projDirty bool
}

// Default camera parameters.
const (
	DefaultFOV   = 50.0
	DefaultZNear = 0.8
	DefaultZFar  = 35.0
)

// NewCamera creates a camera at pos looking down -Z.
func NewCamera(pos math3d.Vec3) *Camera {
	return &Camera{
		position:  pos,
		yaw:       -90,
		fov:       DefaultFOV,
		aspect:    4.0 / 3.0,
		near:      DefaultZNear,
		far:       DefaultZFar,
		viewDirty: true,
		projDirty: true,
	}
}

// Position returns the eye position.
func (c *Camera) Position() math3d.Vec3 { return c.position }

// Yaw returns the yaw in degrees.
func (c *Camera) Yaw() float64 { return c.yaw }

// Pitch returns the pitch in degrees.
func (c *Camera) Pitch() float64 { return c.pitch }

// Perspective returns the projection parameters.
func (c *Camera) Perspective() (fov, aspect, near, far float64) {
	return c.fov, c.aspect, c.near, c.far
}

// SetPosition moves the camera.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.position = pos
	c.viewDirty = true
}

// SetRotation sets yaw and pitch. Pitch is clamped to ±89 degrees.
func (c *Camera) SetRotation(yaw, pitch float64) {
	c.yaw = yaw
	c.pitch = math3d.Clamp(pitch, -89, 89)
	c.viewDirty = true
}

// Rotate adds to yaw and pitch.
func (c *Camera) Rotate(deltaYaw, deltaPitch float64) {
	c.SetRotation(c.yaw+deltaYaw, c.pitch+deltaPitch)
}

// SetPerspective sets the projection parameters.
func (c *Camera) SetPerspective(fov, aspect, near, far float64) {
	c.fov = fov
	c.aspect = aspect
	c.near = near
	c.far = far
	c.projDirty = true
}

// LookAt turns the camera toward target.
func (c *Camera) LookAt(target math3d.Vec3) {
	dir := target.Sub(c.position).Normalize()
	if dir == (math3d.Vec3{}) {
		return
	}
	yaw := math.Atan2(dir.Z, dir.X) * 180 / math.Pi
	pitch := math.Asin(math3d.Clamp(dir.Y, -1, 1)) * 180 / math.Pi
	c.SetRotation(yaw, pitch)
}

// Forward returns the unit view direction.
func (c *Camera) Forward() math3d.Vec3 {
	c.updateView()
	return c.forward
}

// Right returns the unit right vector.
func (c *Camera) Right() math3d.Vec3 {
	c.updateView()
	return c.right
}

// Up returns the unit up vector.
func (c *Camera) Up() math3d.Vec3 {
	c.updateView()
	return c.up
}

// MoveForward moves along the view direction.
func (c *Camera) MoveForward(distance float64) {
	c.SetPosition(c.position.Add(c.Forward().Scale(distance)))
}

// MoveRight strafes along the right vector.
func (c *Camera) MoveRight(distance float64) {
	c.SetPosition(c.position.Add(c.Right().Scale(distance)))
}

// MoveUp moves along world up.
func (c *Camera) MoveUp(distance float64) {
	c.SetPosition(c.position.Add(math3d.WorldUp().Scale(distance)))
}

// ViewMatrix returns the world-to-view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	c.updateView()
	return c.view
}

// ProjectionMatrix returns the view-to-clip matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		aspect := c.aspect
		if aspect <= 0 {
			aspect = 1
		}
		c.proj = math3d.PerspectiveZO(math3d.Radians(c.fov), aspect, c.near, c.far)
		c.projDirty = false
	}
	return c.proj
}

// ViewProjectionMatrix returns projection · view.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	return c.ProjectionMatrix().Mul(c.ViewMatrix())
}

// Frustum returns the world-space view frustum.
func (c *Camera) Frustum() Frustum {
	return FrustumFromMatrix(c.ViewProjectionMatrix())
}

// Update recomputes any stale matrices. Call it once per frame after moving
// the camera; the getters also update lazily.
func (c *Camera) Update() {
	c.updateView()
	c.ProjectionMatrix()
}

func (c *Camera) updateView() {
	if !c.viewDirty {
		return
	}
	yaw, pitch := math3d.Radians(c.yaw), math3d.Radians(c.pitch)
	c.forward = math3d.V3(
		math.Cos(yaw)*math.Cos(pitch),
		math.Sin(pitch),
		math.Sin(yaw)*math.Cos(pitch),
	).Normalize()
	c.right = c.forward.Cross(math3d.WorldUp()).Normalize()
	c.up = c.right.Cross(c.forward).Normalize()
	c.view = math3d.LookAt(c.position, c.position.Add(c.forward), c.up)
	c.viewDirty = false
}
