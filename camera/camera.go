// Package camera provides a damped orbit camera for viewing the galaxy.
package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// settleEpsilon is the pending motion below which damping stops.
const settleEpsilon = 1e-5

// Camera orbits a target point. Input accumulates as pending motion and
// Update applies a damped share of it each tick, so the view glides to rest
// after the input stops.
type Camera struct {
	// Target is the point the camera looks at
	Target mgl32.Vec3

	// Spherical position around the target
	Distance float32
	Yaw      float32 // around +Y, 0 looks down -Z
	Pitch    float32 // elevation above the XZ plane

	// Projection
	FOV       float32 // vertical, degrees
	Near, Far float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Damping is the share of pending motion applied per Update, in (0, 1].
	// Zero disables damping.
	Damping float32

	// Constraints
	MinDistance, MaxDistance float32
	MinPitch, MaxPitch       float32

	pendingYaw, pendingPitch float32
	pendingDolly             float32 // log of the distance scale
	pendingPan               mgl32.Vec3

	home struct {
		target                mgl32.Vec3
		distance, yaw, pitch float32
	}
}

// New creates a camera at position looking at target.
func New(position, target mgl32.Vec3, fov, viewportW, viewportH float32) *Camera {
	offset := position.Sub(target)
	dist := offset.Len()

	c := &Camera{
		Target:      target,
		Distance:    dist,
		FOV:         fov,
		Near:        0.1,
		Far:         100,
		ViewportW:   viewportW,
		ViewportH:   viewportH,
		Damping:     0.05,
		MinDistance: 0.5,
		MaxDistance: 50,
		MinPitch:    -math32.Pi/2 + 0.01,
		MaxPitch:    math32.Pi/2 - 0.01,
	}
	if dist > 0 {
		c.Yaw = math32.Atan2(offset.X(), offset.Z())
		c.Pitch = math32.Asin(clamp(offset.Y()/dist, -1, 1))
	}
	c.home.target = c.Target
	c.home.distance, c.home.yaw, c.home.pitch = c.Distance, c.Yaw, c.Pitch
	return c
}

// Position returns the eye position in world coordinates.
func (c *Camera) Position() mgl32.Vec3 {
	cp := math32.Cos(c.Pitch)
	return c.Target.Add(mgl32.Vec3{
		c.Distance * cp * math32.Sin(c.Yaw),
		c.Distance * math32.Sin(c.Pitch),
		c.Distance * cp * math32.Cos(c.Yaw),
	})
}

// Aspect returns the viewport aspect ratio.
func (c *Camera) Aspect() float32 {
	if c.ViewportH <= 0 {
		return 1
	}
	return c.ViewportW / c.ViewportH
}

// View returns the view matrix.
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Target, mgl32.Vec3{0, 1, 0})
}

// Projection returns the perspective projection matrix.
func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.Aspect(), c.Near, c.Far)
}

// Resize updates viewport dimensions. The projection follows on the next
// call to Projection.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Rotate queues an orbit by the given angles in radians.
func (c *Camera) Rotate(dYaw, dPitch float32) {
	c.pendingYaw += dYaw
	c.pendingPitch += dPitch
}

// Pan queues a move of the target by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float32) {
	if c.ViewportH <= 0 {
		return
	}
	// World units per pixel at the target's depth
	perPixel := 2 * c.Distance * math32.Tan(mgl32.DegToRad(c.FOV)/2) / c.ViewportH

	forward := c.Target.Sub(c.Position()).Normalize()
	right := forward.Cross(mgl32.Vec3{0, 1, 0}).Normalize()
	up := right.Cross(forward)

	c.pendingPan = c.pendingPan.
		Add(right.Mul(-dx * perPixel)).
		Add(up.Mul(dy * perPixel))
}

// Dolly queues a distance change by the given factor: below 1 moves in,
// above 1 moves out.
func (c *Camera) Dolly(factor float32) {
	if factor <= 0 {
		return
	}
	c.pendingDolly += math32.Log(factor)
}

// Update applies one tick of pending motion and reports whether the camera
// moved.
func (c *Camera) Update() bool {
	k := c.Damping
	if k <= 0 || k > 1 {
		k = 1
	}

	moved := false
	if absf(c.pendingYaw) > settleEpsilon || absf(c.pendingPitch) > settleEpsilon {
		c.Yaw += c.pendingYaw * k
		c.Pitch = clamp(c.Pitch+c.pendingPitch*k, c.MinPitch, c.MaxPitch)
		moved = true
	}
	if absf(c.pendingDolly) > settleEpsilon {
		c.Distance = clamp(c.Distance*math32.Exp(c.pendingDolly*k), c.MinDistance, c.MaxDistance)
		moved = true
	}
	if c.pendingPan.Len() > settleEpsilon {
		c.Target = c.Target.Add(c.pendingPan.Mul(k))
		moved = true
	}

	c.pendingYaw *= 1 - k
	c.pendingPitch *= 1 - k
	c.pendingDolly *= 1 - k
	c.pendingPan = c.pendingPan.Mul(1 - k)
	return moved
}

// Settled reports whether no motion is pending.
func (c *Camera) Settled() bool {
	return absf(c.pendingYaw) <= settleEpsilon &&
		absf(c.pendingPitch) <= settleEpsilon &&
		absf(c.pendingDolly) <= settleEpsilon &&
		c.pendingPan.Len() <= settleEpsilon
}

// Reset returns the camera to its initial placement and drops pending motion.
func (c *Camera) Reset() {
	c.Target = c.home.target
	c.Distance, c.Yaw, c.Pitch = c.home.distance, c.home.yaw, c.home.pitch
	c.pendingYaw, c.pendingPitch, c.pendingDolly = 0, 0, 0
	c.pendingPan = mgl32.Vec3{}
}

// absf returns the absolute value of a float32.
func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
