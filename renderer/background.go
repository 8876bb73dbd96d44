package renderer

import (
	"github.com/lucasb-eyer/go-colorful"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Background clears the frame to a solid color before the scene is drawn.
// Additive points need a dark background to read as glow.
type Background struct {
	color rl.Color
}

// NewBackground creates a background from an sRGB color.
func NewBackground(c colorful.Color) *Background {
	r, g, b := c.Clamped().RGB255()
	return &Background{color: rl.Color{R: r, G: g, B: b, A: 255}}
}

// Color returns the clear color.
func (b *Background) Color() rl.Color {
	return b.color
}

// Draw clears the frame.
func (b *Background) Draw() {
	rl.ClearBackground(b.color)
}
