package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title      string
	Mode       string
	Count      int
	FPS        int32
	Time       float32
	Animate    bool
	Generating bool    // a background generation is in flight
	LastGenMS  float64 // generation time of the installed field
	LastUpMS   float64 // upload time of the installed field
	Inside     string  // gradient endpoints of the installed field, hex
	Outside    string
}

// HUD renders the main heads-up display.
type HUD struct {
	// Data supplies the values for each frame.
	Data     func() HUDData
	Controls string
	Anchor   PanelAnchor
	Width    int32

	renderer *Renderer
}

// NewHUD creates a new HUD renderer in the top-left corner.
func NewHUD(data func() HUDData) *HUD {
	return &HUD{
		Data:     data,
		Controls: "Left drag: orbit | Right drag: pan | Wheel: zoom | R: reset view | H: panel",
		Anchor:   AnchorTopLeft,
		Width:    240,
		renderer: NewRenderer(),
	}
}

// hudLines is the number of label/value rows below the title.
const hudLines = 7

// Draw renders the HUD. It implements renderer.Overlay.
func (h *HUD) Draw() {
	data := h.Data()
	r := h.renderer
	th := r.Theme
	screenW, screenH := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())

	height := th.Padding*2 + 24 + hudLines*th.LineHeight
	x, y := anchorOrigin(h.Anchor, h.Width, height, screenW, screenH, th.Padding)
	r.DrawPanel(x, y, h.Width, height)
	x += th.Padding
	y += th.Padding

	rl.DrawText(data.Title, x, y, 20, rl.White)
	y += 24

	y = r.DrawLabelValue(x, y, "Mode", data.Mode)
	y = r.DrawLabelValue(x, y, "Points", fmt.Sprintf("%d", data.Count))
	y = r.DrawLabelValue(x, y, "FPS", fmt.Sprintf("%d", data.FPS))
	y = r.DrawLabelValue(x, y, "Generate", fmt.Sprintf("%.1f ms / %.1f ms up", data.LastGenMS, data.LastUpMS))

	status := "static"
	if data.Animate {
		status = fmt.Sprintf("animating t=%.2f", data.Time)
	}
	if data.Generating {
		status = "generating..."
	}
	y = r.DrawLabelValue(x, y, "Status", status)

	y = r.DrawColorSwatch(x, y, "Inside", swatch(data.Inside), data.Inside)
	r.DrawColorSwatch(x, y, "Outside", swatch(data.Outside), data.Outside)

	h.DrawControls(screenW, screenH)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32) {
	if h.Controls == "" {
		return
	}
	rl.DrawText(h.Controls, 10, screenHeight-25, 14, rl.Gray)
}

// swatch parses a hex color for display; unparseable values draw black.
func swatch(hex string) rl.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return rl.Black
	}
	r, g, b := c.RGB255()
	return rl.Color{R: r, G: g, B: b, A: 255}
}
