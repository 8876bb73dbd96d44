// Package kernel is the CPU form of the per-point vertex and fragment
// programs. The GLSL in renderer/shaders runs the same math on the GPU; the
// headless snapshot and the tests run it here.
package kernel

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// RotationSpeed scales the differential rotation applied in deferred mode.
const RotationSpeed = 0.2

// FalloffExponent sharpens the radial glow of a point sprite.
const FalloffExponent = 10

// Uniforms are the per-draw inputs shared by every point.
type Uniforms struct {
	Size float32 // deferred: pixels, already pixel-ratio scaled; baked: world units
	Time float32
	// Scale converts baked world sizes to pixels: half the framebuffer height.
	Scale      float32
	View       mgl32.Mat4
	Projection mgl32.Mat4
}

// Vertex is the per-point input of the deferred program.
type Vertex struct {
	Position     mgl32.Vec3 // base arm position, y = 0
	Scale        float32
	RandomOffset mgl32.Vec3
}

// Output is what the vertex program hands to rasterization.
type Output struct {
	Clip      mgl32.Vec4
	PointSize float32
	ViewZ     float32
}

// Visible reports whether the point is in front of the camera and inside
// the clip volume.
func (o Output) Visible() bool {
	w := o.Clip.W()
	if w <= 0 {
		return false
	}
	x, y, z := o.Clip.X(), o.Clip.Y(), o.Clip.Z()
	return x >= -w && x <= w && y >= -w && y <= w && z >= -w && z <= w
}

// NDC returns normalized device coordinates.
func (o Output) NDC() mgl32.Vec3 {
	w := o.Clip.W()
	return mgl32.Vec3{o.Clip.X() / w, o.Clip.Y() / w, o.Clip.Z() / w}
}

// Displace rotates the base vertex around the y axis by an angle that
// shrinks with distance, then adds the random offset. The angle is read
// with atan2(x, z) and written back as (cos, sin), which mirrors the arms
// across x = z; the GPU program does the same so both paths agree.
// A vertex at distance 0 is not rotated.
func Displace(v Vertex, time float32) mgl32.Vec3 {
	x, y, z := v.Position.X(), v.Position.Y(), v.Position.Z()

	d := math32.Sqrt(x*x + z*z)
	angle := math32.Atan2(x, z)
	if d > 0 {
		angle += (1 / d) * time * RotationSpeed
	}
	x = math32.Cos(angle) * d
	z = math32.Sin(angle) * d

	return mgl32.Vec3{x, y, z}.Add(v.RandomOffset)
}

// Transform runs the deferred vertex program for one point.
func Transform(v Vertex, u Uniforms) Output {
	world := Displace(v, u.Time)
	viewPos := u.View.Mul4x1(world.Vec4(1))
	clip := u.Projection.Mul4x1(viewPos)

	viewZ := viewPos.Z()
	size := u.Size * v.Scale
	if viewZ < 0 {
		size *= 1 / -viewZ
	} else {
		size = 0
	}
	return Output{Clip: clip, PointSize: size, ViewZ: viewZ}
}

// TransformBaked runs the baked vertex program: no displacement, size in
// world units attenuated by distance.
func TransformBaked(position mgl32.Vec3, u Uniforms) Output {
	viewPos := u.View.Mul4x1(position.Vec4(1))
	clip := u.Projection.Mul4x1(viewPos)

	viewZ := viewPos.Z()
	var size float32
	if viewZ < 0 {
		size = u.Size * (u.Scale / -viewZ)
	}
	return Output{Clip: clip, PointSize: size, ViewZ: viewZ}
}

// Falloff is the fragment program's intensity at sprite coordinate (s, t)
// in [0, 1]². It is 1 at the center and decays steeply toward the edge.
func Falloff(s, t float32) float32 {
	ds, dt := s-0.5, t-0.5
	strength := 1 - math32.Sqrt(ds*ds+dt*dt)
	if strength <= 0 {
		return 0
	}
	return math32.Pow(strength, FalloffExponent)
}
