package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func newTestCamera() *Camera {
	return New(mgl32.Vec3{0, 5, 7}, mgl32.Vec3{}, 75, 1280, 720)
}

func near(a, b, eps float32) bool {
	return math.Abs(float64(a-b)) <= float64(eps)
}

func TestNew(t *testing.T) {
	cam := newTestCamera()

	pos := cam.Position()
	if !pos.ApproxEqualThreshold(mgl32.Vec3{0, 5, 7}, 1e-4) {
		t.Errorf("expected camera at (0, 5, 7), got %v", pos)
	}
	if !near(cam.Distance, float32(math.Sqrt(74)), 1e-4) {
		t.Errorf("expected distance sqrt(74), got %f", cam.Distance)
	}
	if !near(cam.Aspect(), 1280.0/720.0, 1e-6) {
		t.Errorf("expected aspect 16:9, got %f", cam.Aspect())
	}
}

func TestViewLooksAtTarget(t *testing.T) {
	cam := newTestCamera()

	// Target should land on the view axis at depth -distance
	v := cam.View().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	if !near(v.X(), 0, 1e-4) || !near(v.Y(), 0, 1e-4) || !near(v.Z(), -cam.Distance, 1e-4) {
		t.Errorf("target in view space = %v", v)
	}
}

func TestDampedRotateConverges(t *testing.T) {
	cam := newTestCamera()
	cam.Rotate(1, 0)

	cam.Update()
	if !near(cam.Yaw, 0.05, 1e-5) {
		t.Errorf("first tick should apply damping share, yaw = %f", cam.Yaw)
	}

	for i := 0; i < 1000 && !cam.Settled(); i++ {
		cam.Update()
	}
	if !cam.Settled() {
		t.Fatal("camera never settled")
	}
	if !near(cam.Yaw, 1, 1e-3) {
		t.Errorf("expected total yaw 1, got %f", cam.Yaw)
	}
	if cam.Update() {
		t.Error("settled camera should not move")
	}
}

func TestNoDampingAppliesImmediately(t *testing.T) {
	cam := newTestCamera()
	cam.Damping = 0
	cam.Rotate(0.5, 0)
	cam.Update()

	if !near(cam.Yaw, 0.5, 1e-6) || !cam.Settled() {
		t.Errorf("expected immediate yaw 0.5, got %f", cam.Yaw)
	}
}

func TestPitchClamp(t *testing.T) {
	cam := newTestCamera()
	cam.Damping = 0

	cam.Rotate(0, 10)
	cam.Update()
	if cam.Pitch != cam.MaxPitch {
		t.Errorf("expected pitch clamped to %f, got %f", cam.MaxPitch, cam.Pitch)
	}

	cam.Rotate(0, -20)
	cam.Update()
	if cam.Pitch != cam.MinPitch {
		t.Errorf("expected pitch clamped to %f, got %f", cam.MinPitch, cam.Pitch)
	}
}

func TestDollyClamp(t *testing.T) {
	cam := newTestCamera()
	cam.Damping = 0

	cam.Dolly(0.5)
	cam.Update()
	if !near(cam.Distance, float32(math.Sqrt(74))/2, 1e-4) {
		t.Errorf("expected half distance, got %f", cam.Distance)
	}

	cam.Dolly(1e6)
	cam.Update()
	if cam.Distance != cam.MaxDistance {
		t.Errorf("expected distance clamped to %f, got %f", cam.MaxDistance, cam.Distance)
	}

	cam.Dolly(0) // ignored
	if !cam.Settled() {
		t.Error("zero factor should not queue motion")
	}
}

func TestPanMovesTarget(t *testing.T) {
	cam := newTestCamera()
	cam.Damping = 0

	cam.Pan(-100, 0)
	cam.Update()

	// Dragging left moves the target right (+X for this camera)
	if cam.Target.X() <= 0 {
		t.Errorf("expected target to move toward +X, got %v", cam.Target)
	}
	if !near(cam.Target.Y(), 0, 1e-5) {
		t.Errorf("horizontal pan should not change height, got %v", cam.Target)
	}
}

func TestResize(t *testing.T) {
	cam := newTestCamera()
	before := cam.Projection()

	cam.Resize(720, 720)
	if cam.Aspect() != 1 {
		t.Errorf("expected aspect 1, got %f", cam.Aspect())
	}
	if cam.Projection() == before {
		t.Error("projection should change with aspect")
	}
}

func TestReset(t *testing.T) {
	cam := newTestCamera()
	cam.Damping = 0
	cam.Rotate(1, 0.3)
	cam.Dolly(2)
	cam.Pan(50, 50)
	cam.Update()
	cam.Rotate(1, 0)

	cam.Reset()

	if !cam.Position().ApproxEqualThreshold(mgl32.Vec3{0, 5, 7}, 1e-4) {
		t.Errorf("expected position (0, 5, 7), got %v", cam.Position())
	}
	if !cam.Settled() {
		t.Error("reset should drop pending motion")
	}
}
