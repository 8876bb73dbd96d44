package renderer

import (
	"github.com/chewxy/math32"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/Normaly0/galaxy-gen/camera"
)

// OrbitControls feeds mouse input to an orbit camera: left drag orbits,
// right drag pans, the wheel zooms and R resets the view.
type OrbitControls struct {
	Camera      *camera.Camera
	RotateSpeed float32 // radians per dragged pixel
	ZoomSpeed   float32 // share of the distance per wheel step

	// Blocked reports whether the pointer belongs to another widget, such as
	// the parameter panel. Input is ignored while it returns true.
	Blocked func() bool

	dragging bool
}

// NewOrbitControls creates controls for cam.
func NewOrbitControls(cam *camera.Camera, rotateSpeed, zoomSpeed float32) *OrbitControls {
	if rotateSpeed <= 0 {
		rotateSpeed = 0.005
	}
	if zoomSpeed <= 0 || zoomSpeed >= 1 {
		zoomSpeed = 0.1
	}
	return &OrbitControls{Camera: cam, RotateSpeed: rotateSpeed, ZoomSpeed: zoomSpeed}
}

// Update reads input, queues camera motion and applies one damped step.
// It implements app.Controls.
func (o *OrbitControls) Update() bool {
	blocked := o.Blocked != nil && o.Blocked()

	// A drag that started on the scene keeps the pointer until release
	pressed := rl.IsMouseButtonDown(rl.MouseButtonLeft) || rl.IsMouseButtonDown(rl.MouseButtonRight)
	if !pressed {
		o.dragging = false
	} else if !o.dragging && !blocked {
		o.dragging = true
	}

	if o.dragging {
		d := rl.GetMouseDelta()
		if rl.IsMouseButtonDown(rl.MouseButtonLeft) {
			o.Camera.Rotate(-d.X*o.RotateSpeed, d.Y*o.RotateSpeed)
		} else if rl.IsMouseButtonDown(rl.MouseButtonRight) {
			o.Camera.Pan(d.X, d.Y)
		}
	}

	if !blocked {
		if wheel := rl.GetMouseWheelMove(); wheel != 0 {
			o.Camera.Dolly(math32.Pow(1-o.ZoomSpeed, wheel))
		}
		if rl.IsKeyPressed(rl.KeyR) {
			o.Camera.Reset()
		}
	}

	return o.Camera.Update()
}
