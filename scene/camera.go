package scene

import (
	"github.com/chewxy/math32"

	"scenelab/math"
)

// Camera represents a view camera. Rotation is the camera-to-world
// orientation; the camera looks down its local -Z axis.
type Camera struct {
	Position    math.Vec3
	Rotation    math.Quaternion
	FOV         float32
	AspectRatio float32
	NearPlane   float32
	FarPlane    float32

	// Cached matrices
	viewMatrix       math.Mat4
	projectionMatrix math.Mat4
	viewProjMatrix   math.Mat4
	dirty            bool
}

func NewCamera(fov, aspectRatio, nearPlane, farPlane float32) *Camera {
	return &Camera{
		Position:    math.Vec3Zero,
		Rotation:    math.QuaternionIdentity(),
		FOV:         fov,
		AspectRatio: aspectRatio,
		NearPlane:   nearPlane,
		FarPlane:    farPlane,
		dirty:       true,
	}
}

func (c *Camera) UpdateAspectRatio(width, height float32) {
	if height > 0 {
		c.AspectRatio = width / height
		c.dirty = true
	}
}

func (c *Camera) SetPosition(pos math.Vec3) {
	c.Position = pos
	c.dirty = true
}

func (c *Camera) SetRotation(rot math.Quaternion) {
	c.Rotation = rot
	c.dirty = true
}

func (c *Camera) Translate(delta math.Vec3) {
	c.Position = c.Position.Add(delta)
	c.dirty = true
}

func (c *Camera) Rotate(axis math.Vec3, angle float32) {
	rotation := math.QuaternionFromAxisAngle(axis, angle)
	c.Rotation = c.Rotation.Mul(rotation).Normalize()
	c.dirty = true
}

// LookAt orients the camera towards target. up must not be parallel to the
// view direction.
func (c *Camera) LookAt(target, up math.Vec3) {
	zAxis := c.Position.Sub(target).Normalize()
	xAxis := up.Cross(zAxis).Normalize()
	yAxis := zAxis.Cross(xAxis)
	c.Rotation = math.QuaternionFromBasis(xAxis, yAxis, zAxis)
	c.dirty = true
}

func (c *Camera) GetViewMatrix() math.Mat4 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.viewMatrix
}

func (c *Camera) GetProjectionMatrix() math.Mat4 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.projectionMatrix
}

func (c *Camera) GetViewProjectionMatrix() math.Mat4 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.viewProjMatrix
}

func (c *Camera) GetForward() math.Vec3 {
	return c.Rotation.RotateVector(math.Vec3Back)
}

func (c *Camera) GetRight() math.Vec3 {
	return c.Rotation.RotateVector(math.Vec3Right)
}

func (c *Camera) GetUp() math.Vec3 {
	return c.Rotation.RotateVector(math.Vec3Up)
}

func (c *Camera) updateMatrices() {
	// View matrix is the inverse of the camera's world transform: undo the
	// translation first, then the rotation.
	rotationInv := c.Rotation.Conjugate().ToMat4()
	translationMatrix := math.Mat4Translation(c.Position.Negate())
	c.viewMatrix = translationMatrix.Mul(rotationInv)

	c.projectionMatrix = math.Mat4Perspective(c.FOV, c.AspectRatio, c.NearPlane, c.FarPlane)
	c.viewProjMatrix = c.viewMatrix.Mul(c.projectionMatrix)

	c.dirty = false
}

// OrbitCamera is a specialized camera for orbiting around a target. Orbit and
// Zoom move goal values; Update eases the camera towards them each frame.
type OrbitCamera struct {
	Camera
	Target   math.Vec3
	Distance float32
	Yaw      float32
	Pitch    float32
	Damping  float32

	goalYaw      float32
	goalPitch    float32
	goalDistance float32
}

func NewOrbitCamera(target math.Vec3, distance, fov, aspectRatio float32) *OrbitCamera {
	c := &OrbitCamera{
		Target:   target,
		Distance: distance,
		Yaw:      0,
		Pitch:    0.3,
		Damping:  8,
	}
	c.Camera = *NewCamera(fov, aspectRatio, 0.1, 1000.0)
	c.goalYaw = c.Yaw
	c.goalPitch = c.Pitch
	c.goalDistance = c.Distance
	c.UpdatePosition()
	return c
}

func (c *OrbitCamera) UpdatePosition() {
	// Clamp pitch
	if c.Pitch > 1.5 {
		c.Pitch = 1.5
	}
	if c.Pitch < -1.5 {
		c.Pitch = -1.5
	}

	// Calculate position from spherical coordinates
	cosPitch := math32.Cos(c.Pitch)
	sinPitch := math32.Sin(c.Pitch)
	cosYaw := math32.Cos(c.Yaw)
	sinYaw := math32.Sin(c.Yaw)

	offset := math.Vec3{
		X: c.Distance * cosPitch * sinYaw,
		Y: c.Distance * sinPitch,
		Z: c.Distance * cosPitch * cosYaw,
	}

	c.Position = c.Target.Add(offset)
	c.LookAt(c.Target, math.Vec3Up)
}

func (c *OrbitCamera) Orbit(deltaYaw, deltaPitch float32) {
	c.goalYaw += deltaYaw
	c.goalPitch = math.Clamp(c.goalPitch+deltaPitch, -1.5, 1.5)
}

func (c *OrbitCamera) Zoom(delta float32) {
	c.goalDistance += delta
	if c.goalDistance < 0.1 {
		c.goalDistance = 0.1
	}
}

// Update eases yaw, pitch and distance towards their goals. A non-positive
// Damping snaps immediately.
func (c *OrbitCamera) Update(dt float32) {
	k := float32(1)
	if c.Damping > 0 {
		k = math.Clamp(c.Damping*dt, 0, 1)
	}
	c.Yaw += (c.goalYaw - c.Yaw) * k
	c.Pitch += (c.goalPitch - c.Pitch) * k
	c.Distance += (c.goalDistance - c.Distance) * k
	c.UpdatePosition()
}

// Snap jumps to the goal values without easing.
func (c *OrbitCamera) Snap() {
	c.Yaw = c.goalYaw
	c.Pitch = c.goalPitch
	c.Distance = c.goalDistance
	c.UpdatePosition()
}

// FlyCamera is a free-flying camera with banking turns. Steering input turns
// the heading and rolls the view towards the turn, easing back to level when
// the input stops.
type FlyCamera struct {
	Camera
	Yaw   float32
	Pitch float32
	Roll  float32

	Speed     float32
	TurnRate  float32
	PitchRate float32
	MaxBank   float32
	BankDamp  float32
}

func NewFlyCamera(fov, aspectRatio float32) *FlyCamera {
	c := &FlyCamera{
		Speed:     30,
		TurnRate:  1.2,
		PitchRate: 0.9,
		MaxBank:   0.6,
		BankDamp:  4,
	}
	c.Camera = *NewCamera(fov, aspectRatio, 0.1, 2000.0)
	c.syncRotation()
	return c
}

// Forward is the heading the camera flies along. Yaw zero faces -Z.
func (c *FlyCamera) Forward() math.Vec3 {
	cosPitch := math32.Cos(c.Pitch)
	return math.Vec3{
		X: -math32.Sin(c.Yaw) * cosPitch,
		Y: math32.Sin(c.Pitch),
		Z: -math32.Cos(c.Yaw) * cosPitch,
	}
}

// Steer advances the camera one step. yawInput is positive for a right turn,
// pitchInput positive to climb; both are expected in [-1, 1].
func (c *FlyCamera) Steer(yawInput, pitchInput, dt float32) {
	c.Yaw -= yawInput * c.TurnRate * dt
	c.Pitch = math.Clamp(c.Pitch+pitchInput*c.PitchRate*dt, -1.2, 1.2)

	// Bank into the turn, easing back to level with no input
	k := math.Clamp(c.BankDamp*dt, 0, 1)
	c.Roll += (yawInput*c.MaxBank - c.Roll) * k

	c.Position = c.Position.Add(c.Forward().Mul(c.Speed * dt))
	c.syncRotation()
}

func (c *FlyCamera) syncRotation() {
	yawQ := math.QuaternionFromAxisAngle(math.Vec3Up, c.Yaw)
	pitchQ := math.QuaternionFromAxisAngle(math.Vec3Right, c.Pitch)
	rollQ := math.QuaternionFromAxisAngle(math.Vec3Back, c.Roll)
	c.Rotation = yawQ.Mul(pitchQ).Mul(rollQ)
	c.dirty = true
}
