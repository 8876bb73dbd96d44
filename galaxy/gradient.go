package galaxy

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is a color in linear light, channels nominally in [0, 1].
type RGB struct {
	R, G, B float32
}

// SRGB8 encodes the color to 8-bit sRGB for vertex color upload.
func (c RGB) SRGB8() (r, g, b uint8) {
	return colorful.LinearRgb(float64(c.R), float64(c.G), float64(c.B)).Clamped().RGB255()
}

// Hex returns the sRGB hex form of the color.
func (c RGB) Hex() string {
	return colorful.LinearRgb(float64(c.R), float64(c.G), float64(c.B)).Clamped().Hex()
}

// Gradient maps a normalized radial distance to a color between the inside
// and outside endpoints. Interpolation is a channel-wise lerp in linear RGB.
type Gradient struct {
	inside  [3]float64
	outside [3]float64
}

// NewGradient parses two "#rrggbb" colors into a gradient.
func NewGradient(inside, outside string) (Gradient, error) {
	in, err := colorful.Hex(inside)
	if err != nil {
		return Gradient{}, fmt.Errorf("inside color: %w", err)
	}
	out, err := colorful.Hex(outside)
	if err != nil {
		return Gradient{}, fmt.Errorf("outside color: %w", err)
	}

	var g Gradient
	g.inside[0], g.inside[1], g.inside[2] = in.LinearRgb()
	g.outside[0], g.outside[1], g.outside[2] = out.LinearRgb()
	return g, nil
}

// Inside returns the color at t = 0.
func (g Gradient) Inside() RGB { return g.Interpolate(0) }

// Outside returns the color at t = 1.
func (g Gradient) Outside() RGB { return g.Interpolate(1) }

// Interpolate returns inside + (outside - inside) * t with t clamped to [0, 1].
func (g Gradient) Interpolate(t float64) RGB {
	if t < 0 || t != t {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return RGB{
		R: float32(g.inside[0] + (g.outside[0]-g.inside[0])*t),
		G: float32(g.inside[1] + (g.outside[1]-g.inside[1])*t),
		B: float32(g.inside[2] + (g.outside[2]-g.inside[2])*t),
	}
}
