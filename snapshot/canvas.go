// Package snapshot renders the galaxy without a GPU. Points are splatted
// through the same vertex and fragment math as the shaders into a float
// accumulation buffer, then written out as a PNG with gg.
package snapshot

import (
	"fmt"
	"math"

	"github.com/gogpu/gg"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/Normaly0/galaxy-gen/camera"
	"github.com/Normaly0/galaxy-gen/scene"
)

// DefaultMaxPointSize caps sprite size in pixels, like GL_POINT_SIZE_RANGE.
const DefaultMaxPointSize = 256

// Canvas is a software framebuffer. It implements app.Renderer: each
// Render clears the buffer and draws the scene into it.
type Canvas struct {
	Width, Height int
	Scene         *scene.Scene
	Camera        *camera.Camera
	Background    colorful.Color
	Exposure      float64
	MaxPointSize  float32

	accum []float32 // rgb, additive, sRGB encoded like the GPU framebuffer
}

// NewCanvas creates a black canvas of the given size in pixels.
func NewCanvas(width, height int, sc *scene.Scene, cam *camera.Camera) *Canvas {
	return &Canvas{
		Width:        width,
		Height:       height,
		Scene:        sc,
		Camera:       cam,
		Exposure:     1,
		MaxPointSize: DefaultMaxPointSize,
		accum:        make([]float32, width*height*3),
	}
}

// Render clears the buffer and draws every visible node.
func (c *Canvas) Render() {
	clear(c.accum)
	c.Scene.Draw()
}

// At returns the accumulated color at pixel (x, y), before exposure and
// background.
func (c *Canvas) At(x, y int) (r, g, b float32) {
	i := (y*c.Width + x) * 3
	return c.accum[i], c.accum[i+1], c.accum[i+2]
}

// Lit returns the number of pixels that received any light.
func (c *Canvas) Lit() int {
	n := 0
	for i := 0; i < len(c.accum); i += 3 {
		if c.accum[i] > 0 || c.accum[i+1] > 0 || c.accum[i+2] > 0 {
			n++
		}
	}
	return n
}

// splat adds a point sprite centered at (px, py) in pixels. intensity maps
// sprite coordinates in [0, 1]² to a weight.
func (c *Canvas) splat(px, py, size float32, rgb [3]float32, intensity func(s, t float32) float32) {
	if size <= 0 {
		return
	}
	// GL rasterizes sub-pixel points at one pixel
	size = min(max(size, 1), c.MaxPointSize)
	half := size / 2
	left, top := px-half, py-half

	x0 := max(int(math.Floor(float64(left))), 0)
	y0 := max(int(math.Floor(float64(top))), 0)
	x1 := min(int(math.Ceil(float64(px+half))), c.Width)
	y1 := min(int(math.Ceil(float64(py+half))), c.Height)

	for y := y0; y < y1; y++ {
		cy := float32(y) + 0.5
		if cy < top || cy >= top+size {
			continue
		}
		t := (cy - top) / size
		row := y * c.Width
		for x := x0; x < x1; x++ {
			cx := float32(x) + 0.5
			if cx < left || cx >= left+size {
				continue
			}
			w := intensity((cx-left)/size, t)
			if w <= 0 {
				continue
			}
			i := (row + x) * 3
			c.accum[i] += rgb[0] * w
			c.accum[i+1] += rgb[1] * w
			c.accum[i+2] += rgb[2] * w
		}
	}
}

// toPixel maps normalized device coordinates to pixel coordinates with y
// pointing down.
func (c *Canvas) toPixel(ndcX, ndcY float32) (float32, float32) {
	return (ndcX + 1) / 2 * float32(c.Width), (1 - ndcY) / 2 * float32(c.Height)
}

// Context returns a gg context holding the exposed image over the
// background. The caller owns it and should Close it.
func (c *Canvas) Context() *gg.Context {
	dc := gg.NewContext(c.Width, c.Height)
	bg := c.Background.Clamped()
	dc.ClearWithColor(gg.RGBA{R: bg.R, G: bg.G, B: bg.B, A: 1})

	exposure := float32(c.Exposure)
	if exposure <= 0 {
		exposure = 1
	}
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			r, g, b := c.At(x, y)
			if r == 0 && g == 0 && b == 0 {
				continue
			}
			dc.SetPixel(x, y, gg.RGBA{
				R: clamp01(bg.R + float64(r*exposure)),
				G: clamp01(bg.G + float64(g*exposure)),
				B: clamp01(bg.B + float64(b*exposure)),
				A: 1,
			})
		}
	}
	return dc
}

// SavePNG writes the current image to path.
func (c *Canvas) SavePNG(path string) error {
	dc := c.Context()
	defer dc.Close()
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("saving snapshot %s: %w", path, err)
	}
	return nil
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
