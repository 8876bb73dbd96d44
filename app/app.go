// Package app wires generation, GPU resources and the frame loop together.
//
// RenderState owns the single live point cloud and is the only thing that
// replaces it. FrameLoop runs one frame per Tick, and Loop calls Tick once
// per display refresh until stopped.
package app

import (
	"github.com/Normaly0/galaxy-gen/galaxy"
	"github.com/Normaly0/galaxy-gen/scene"
)

// Material carries the render-mode inputs a resource needs beyond the field.
type Material struct {
	Mode galaxy.Mode
	// Size is the point size parameter: pixels before the pixel ratio in
	// deferred mode, world units in baked mode.
	Size       float32
	PixelRatio float32
	// Height is the viewport height in logical pixels.
	Height int
}

// ShaderSize returns the size uniform for the material. Only deferred sizes
// are pixel based and follow the pixel ratio.
func (m Material) ShaderSize() float32 {
	if m.Mode == galaxy.Deferred {
		return m.Size * m.PixelRatio
	}
	return m.Size
}

// AttenuationScale converts baked world sizes to framebuffer pixels: half
// the framebuffer height.
func (m Material) AttenuationScale() float32 {
	return float32(m.Height) * m.PixelRatio / 2
}

// Resource is an uploaded point cloud.
type Resource interface {
	scene.Drawable
	// SetTime updates the animation time uniform.
	SetTime(t float32)
	// Resize updates the pixel-ratio and viewport dependent uniforms.
	Resize(pixelRatio float32, height int)
}

// ResourceFactory uploads a generated field. Build runs on the render thread.
type ResourceFactory interface {
	Build(f *galaxy.Field, m Material) (Resource, error)
}

// Renderer draws one frame of the scene.
type Renderer interface {
	Render()
}

// Controls is the camera-control collaborator, advanced once per tick.
type Controls interface {
	Update() bool
}

// Viewport reports the current drawable size.
type Viewport interface {
	// Resized reports whether the size changed since the last call.
	Resized() bool
	Size() (width, height int, pixelRatio float64)
}

// ParamSource delivers committed parameter edits.
type ParamSource interface {
	// Poll returns the newest committed parameters, if any, without blocking.
	Poll() (galaxy.Parameters, bool)
}
