package ui

import (
	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/Normaly0/galaxy-gen/editor"
	"github.com/Normaly0/galaxy-gen/galaxy"
)

const (
	pickerSize   = 84
	hueBarWidth  = 24 // hue bar plus its padding, drawn right of the picker
	pickerGap    = 16
	toggleHeight = 16
)

// ParamsPanel is the galaxy parameter panel: one slider per numeric
// parameter, two gradient color pickers and, in deferred mode, the animate
// toggle. Edits are committed when the mouse is released.
type ParamsPanel struct {
	Editor *editor.Editor
	// Current supplies the live parameters so the panel follows external
	// changes such as config reloads. Optional.
	Current func() galaxy.Parameters

	renderer *Renderer
	anchor   PanelAnchor
	width    int32
	visible  bool
	bounds   rl.Rectangle
}

// NewParamsPanel creates a visible panel for ed.
func NewParamsPanel(ed *editor.Editor, anchor PanelAnchor, width int32) *ParamsPanel {
	return &ParamsPanel{
		Editor:   ed,
		renderer: NewRenderer(),
		anchor:   anchor,
		width:    width,
		visible:  true,
	}
}

// SetVisible shows or hides the panel.
func (p *ParamsPanel) SetVisible(visible bool) {
	p.visible = visible
}

// IsVisible returns whether the panel is shown.
func (p *ParamsPanel) IsVisible() bool {
	return p.visible
}

// Toggle switches panel visibility.
func (p *ParamsPanel) Toggle() bool {
	p.visible = !p.visible
	return p.visible
}

// Hovered reports whether the pointer is over the panel or a drag started
// on it is still held. Camera controls use it to stay out of the way.
func (p *ParamsPanel) Hovered() bool {
	if !p.visible {
		return false
	}
	return p.Editor.Editing() || rl.CheckCollisionPointRec(rl.GetMousePosition(), p.bounds)
}

// Poll implements app.ParamSource.
func (p *ParamsPanel) Poll() (galaxy.Parameters, bool) {
	return p.Editor.Poll()
}

// height returns the panel height for the current mode.
func (p *ParamsPanel) height() int32 {
	th := p.renderer.Theme
	h := th.Padding*2 + th.LineHeight + 6
	h += int32(len(editor.Fields)) * (th.LineHeight + th.SliderHeight + 6)
	h += th.LineHeight + pickerSize + 8
	if p.Editor.CanAnimate() {
		h += toggleHeight + 8
	}
	return h
}

// Draw renders the panel and feeds edits to the editor. It implements
// renderer.Overlay.
func (p *ParamsPanel) Draw() {
	if rl.IsKeyPressed(rl.KeyH) {
		p.Toggle()
	}
	if p.Current != nil {
		p.Editor.Sync(p.Current())
	}
	if !p.visible {
		p.Editor.Release()
		return
	}

	r := p.renderer
	th := r.Theme
	h := p.height()
	x0, y0 := anchorOrigin(p.anchor, p.width, h, int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight()), th.Padding)
	p.bounds = rl.Rectangle{X: float32(x0), Y: float32(y0), Width: float32(p.width), Height: float32(h)}

	r.DrawPanel(x0, y0, p.width, h)
	x := x0 + th.Padding
	y := y0 + th.Padding
	inner := p.width - th.Padding*2

	rl.DrawText("Galaxy", x, y, 16, rl.White)
	rl.DrawText(p.Editor.Mode().String(), x+inner-rl.MeasureText(p.Editor.Mode().String(), th.FontSize), y+2, th.FontSize, th.DimColor)
	y += th.LineHeight + 6

	for _, f := range editor.Fields {
		y = p.drawSlider(x, y, inner, f)
	}

	y = r.DrawSectionHeader(x, y, "Colors")
	p.drawPicker(x, y, editor.Inside, "inside")
	p.drawPicker(x+pickerSize+hueBarWidth+pickerGap, y, editor.Outside, "outside")
	y += pickerSize + 8

	if p.Editor.CanAnimate() {
		box := rl.Rectangle{X: float32(x), Y: float32(y), Width: toggleHeight, Height: toggleHeight}
		p.Editor.SetAnimate(gui.CheckBox(box, "Animate", p.Editor.Animate()))
	}

	if rl.IsMouseButtonReleased(rl.MouseButtonLeft) {
		p.Editor.Release()
	}
}

// drawSlider draws the label, slider and value of one field and returns the
// next Y position.
func (p *ParamsPanel) drawSlider(x, y, width int32, f editor.Field) int32 {
	th := p.renderer.Theme
	rng := p.Editor.Range(f)
	value := p.Editor.Value(f)

	p.renderer.DrawLabel(x, y, f.Label())
	text := f.Format(value)
	p.renderer.DrawValue(x+width-rl.MeasureText(text, th.FontSize), y, text)
	y += th.LineHeight

	bounds := rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(width), Height: float32(th.SliderHeight)}
	next := gui.SliderBar(bounds, "", "", float32(value), float32(rng.Min), float32(rng.Max))
	if float64(next) != float64(float32(value)) {
		p.Editor.SetValue(f, float64(next))
	}
	return y + th.SliderHeight + 6
}

// drawPicker draws one gradient endpoint picker with its hex value below.
func (p *ParamsPanel) drawPicker(x, y int32, c editor.Color, label string) {
	th := p.renderer.Theme
	cur := p.Editor.Color(c)
	r, g, b := cur.RGB255()

	bounds := rl.Rectangle{X: float32(x), Y: float32(y), Width: pickerSize, Height: pickerSize - th.LineHeight}
	picked := gui.ColorPicker(bounds, label, rl.Color{R: r, G: g, B: b, A: 255})
	if picked.R != r || picked.G != g || picked.B != b {
		p.Editor.SetColor(c, colorful.Color{
			R: float64(picked.R) / 255,
			G: float64(picked.G) / 255,
			B: float64(picked.B) / 255,
		})
	}

	rl.DrawText(label+" "+cur.Hex(), x, y+pickerSize-th.LineHeight+4, th.FontSize, th.LabelColor)
}
