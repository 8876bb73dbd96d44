package snapshot

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Normaly0/galaxy-gen/app"
	"github.com/Normaly0/galaxy-gen/galaxy"
	"github.com/Normaly0/galaxy-gen/kernel"
)

// Cloud is a field held in memory and drawn onto a Canvas.
type Cloud struct {
	canvas   *Canvas
	field    *galaxy.Field
	material app.Material
	colors   [][3]float32
	time     float32
	unloaded bool
}

// Draw splats every point onto the canvas.
func (cl *Cloud) Draw() {
	if cl.unloaded || cl.canvas.Camera == nil {
		return
	}
	f := cl.field
	u := kernel.Uniforms{
		Size:       cl.material.ShaderSize(),
		Time:       cl.time,
		Scale:      cl.material.AttenuationScale(),
		View:       cl.canvas.Camera.View(),
		Projection: cl.canvas.Camera.Projection(),
	}

	intensity := kernel.Falloff
	if cl.material.Mode == galaxy.Baked {
		intensity = square
	}

	for i := 0; i < f.Count; i++ {
		pos := mgl32.Vec3(f.Position(i))
		var out kernel.Output
		if cl.material.Mode == galaxy.Deferred {
			out = kernel.Transform(kernel.Vertex{
				Position:     pos,
				Scale:        f.Scales[i],
				RandomOffset: mgl32.Vec3(f.RandomOffset(i)),
			}, u)
		} else {
			out = kernel.TransformBaked(pos, u)
		}
		if !out.Visible() {
			continue
		}
		ndc := out.NDC()
		px, py := cl.canvas.toPixel(ndc.X(), ndc.Y())
		cl.canvas.splat(px, py, out.PointSize, cl.colors[i], intensity)
	}
}

// square is the baked sprite: flat over the whole point.
func square(_, _ float32) float32 { return 1 }

// SetTime updates the animation time.
func (cl *Cloud) SetTime(t float32) { cl.time = t }

// Resize updates the size scaling.
func (cl *Cloud) Resize(pixelRatio float32, height int) {
	cl.material.PixelRatio = pixelRatio
	cl.material.Height = height
}

// Unload drops the field.
func (cl *Cloud) Unload() {
	cl.unloaded = true
	cl.field = nil
	cl.colors = nil
}

// Unloaded reports whether Unload was called.
func (cl *Cloud) Unloaded() bool { return cl.unloaded }

// Factory builds Clouds that draw onto Canvas. It implements
// app.ResourceFactory.
type Factory struct {
	Canvas *Canvas
}

// Build implements app.ResourceFactory.
func (fa Factory) Build(f *galaxy.Field, m app.Material) (app.Resource, error) {
	if fa.Canvas == nil {
		return nil, fmt.Errorf("snapshot factory has no canvas")
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	// Same encoding as the vertex color upload
	colors := make([][3]float32, f.Count)
	for i := range colors {
		r, g, b := f.Color(i).SRGB8()
		colors[i] = [3]float32{float32(r) / 255, float32(g) / 255, float32(b) / 255}
	}
	return &Cloud{canvas: fa.Canvas, field: f, material: m, colors: colors}, nil
}
