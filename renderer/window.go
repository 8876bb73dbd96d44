package renderer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// WindowOptions configure the main window.
type WindowOptions struct {
	Width, Height int
	Title         string
	TargetFPS     int
}

// OpenWindow creates a resizable, high-DPI aware window with multisampling.
func OpenWindow(o WindowOptions) error {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagWindowHighdpi | rl.FlagMsaa4xHint | rl.FlagVsyncHint)
	rl.InitWindow(int32(o.Width), int32(o.Height), o.Title)
	if !rl.IsWindowReady() {
		return fmt.Errorf("creating %dx%d window", o.Width, o.Height)
	}
	if o.TargetFPS > 0 {
		rl.SetTargetFPS(int32(o.TargetFPS))
	}
	logger().Info("window opened", "width", o.Width, "height", o.Height, "dpr", rl.GetWindowScaleDPI().X)
	return nil
}

// CloseWindow closes the window and the GL context.
func CloseWindow() {
	rl.CloseWindow()
}

// WindowViewport reports window size changes. It implements app.Viewport.
type WindowViewport struct {
	width, height int
	dpr           float64
}

// NewWindowViewport captures the current window size.
func NewWindowViewport() *WindowViewport {
	v := &WindowViewport{}
	v.width, v.height, v.dpr = v.Size()
	return v
}

// Resized reports whether the logical size or the DPI scale changed since
// the last call.
func (v *WindowViewport) Resized() bool {
	w, h, dpr := v.Size()
	if w == v.width && h == v.height && dpr == v.dpr && !rl.IsWindowResized() {
		return false
	}
	v.width, v.height, v.dpr = w, h, dpr
	return true
}

// Size returns the logical window size and the device pixel ratio.
func (v *WindowViewport) Size() (int, int, float64) {
	dpr := float64(rl.GetWindowScaleDPI().X)
	if dpr <= 0 {
		dpr = 1
	}
	return rl.GetScreenWidth(), rl.GetScreenHeight(), dpr
}

// WindowRefresher paces the loop by the display: raylib blocks in
// EndDrawing until the next refresh. It implements app.Refresher.
type WindowRefresher struct{}

// Next reports whether the window is still open.
func (WindowRefresher) Next() bool {
	return !rl.WindowShouldClose()
}
