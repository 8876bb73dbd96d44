package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/Normaly0/galaxy-gen/camera"
	"github.com/Normaly0/galaxy-gen/scene"
)

// Overlay is 2D content drawn on top of the scene, such as the HUD.
type Overlay interface {
	Draw()
}

// Screen draws one frame to the window.
type Screen struct {
	Scene      *scene.Scene
	Camera     *camera.Camera
	Background *Background
	Overlays   []Overlay
}

// NewScreen creates a screen renderer.
func NewScreen(sc *scene.Scene, cam *camera.Camera, bg *Background, overlays ...Overlay) *Screen {
	return &Screen{
		Scene:      sc,
		Camera:     cam,
		Background: bg,
		Overlays:   overlays,
	}
}

// Render implements app.Renderer.
func (s *Screen) Render() {
	rl.BeginDrawing()
	if s.Background != nil {
		s.Background.Draw()
	} else {
		rl.ClearBackground(rl.Black)
	}

	rl.BeginMode3D(RaylibCamera(s.Camera))
	s.Scene.Draw()
	rl.EndMode3D()

	for _, o := range s.Overlays {
		o.Draw()
	}
	rl.EndDrawing()
}

// RaylibCamera converts the orbit camera to raylib's camera.
func RaylibCamera(c *camera.Camera) rl.Camera3D {
	pos := c.Position()
	return rl.Camera3D{
		Position:   rl.Vector3{X: pos.X(), Y: pos.Y(), Z: pos.Z()},
		Target:     rl.Vector3{X: c.Target.X(), Y: c.Target.Y(), Z: c.Target.Z()},
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       c.FOV,
		Projection: rl.CameraPerspective,
	}
}
