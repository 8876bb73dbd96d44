// Package editor holds the draft state behind the parameter panel. Values
// change while a control is dragged; the draft is committed once, on
// release, so a drag costs one rebuild instead of one per frame.
package editor

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/Normaly0/galaxy-gen/galaxy"
)

// Field identifies a numeric parameter.
type Field int

const (
	Count Field = iota
	Size
	Radius
	Branches
	Spin
	Randomness
	RandomnessPower
)

// Fields lists the numeric fields in panel order.
var Fields = []Field{Count, Size, Radius, Branches, Spin, Randomness, RandomnessPower}

// Label returns the display name of f.
func (f Field) Label() string {
	switch f {
	case Count:
		return "Count"
	case Size:
		return "Size"
	case Radius:
		return "Radius"
	case Branches:
		return "Branches"
	case Spin:
		return "Spin"
	case Randomness:
		return "Randomness"
	case RandomnessPower:
		return "Randomness power"
	default:
		return fmt.Sprintf("Field(%d)", int(f))
	}
}

// Format returns the display form of v for f.
func (f Field) Format(v float64) string {
	switch f {
	case Count, Branches:
		return fmt.Sprintf("%d", int(v))
	case Size:
		if v < 1 {
			return fmt.Sprintf("%.3f", v)
		}
		return fmt.Sprintf("%.0f", v)
	case Radius:
		return fmt.Sprintf("%.1f", v)
	default:
		return fmt.Sprintf("%.3f", v)
	}
}

// Color selects one of the gradient endpoints.
type Color int

const (
	Inside Color = iota
	Outside
)

// Editor tracks the committed parameters and a draft being edited.
type Editor struct {
	mode   galaxy.Mode
	ranges galaxy.Ranges

	committed galaxy.Parameters
	draft     galaxy.Parameters
	editing   bool
	pending   bool
}

// New creates an editor showing p.
func New(p galaxy.Parameters, mode galaxy.Mode) *Editor {
	p = p.Normalized()
	if mode == galaxy.Baked {
		p.Animate = false
	}
	return &Editor{
		mode:      mode,
		ranges:    galaxy.EditorRanges(mode),
		committed: p,
		draft:     p,
	}
}

// Mode returns the render mode the editor was created for.
func (e *Editor) Mode() galaxy.Mode { return e.mode }

// CanAnimate reports whether the animate toggle applies. Only deferred
// mode has a time uniform.
func (e *Editor) CanAnimate() bool { return e.mode == galaxy.Deferred }

// Range returns the slider range of f.
func (e *Editor) Range(f Field) galaxy.Range {
	switch f {
	case Count:
		return e.ranges.Count
	case Size:
		return e.ranges.Size
	case Radius:
		return e.ranges.Radius
	case Branches:
		return e.ranges.Branches
	case Spin:
		return e.ranges.Spin
	case Randomness:
		return e.ranges.Randomness
	default:
		return e.ranges.RandomnessPower
	}
}

// Value returns the draft value of f.
func (e *Editor) Value(f Field) float64 {
	p := e.draft
	switch f {
	case Count:
		return float64(p.Count)
	case Size:
		return p.Size
	case Radius:
		return p.Radius
	case Branches:
		return float64(p.Branches)
	case Spin:
		return p.Spin
	case Randomness:
		return p.Randomness
	default:
		return p.RandomnessPower
	}
}

// SetValue snaps v to the range of f and stores it in the draft. It
// reports whether the draft changed.
func (e *Editor) SetValue(f Field, v float64) bool {
	v = e.Range(f).Snap(v)
	if v == e.Value(f) {
		return false
	}
	switch f {
	case Count:
		e.draft.Count = int(v)
	case Size:
		e.draft.Size = v
	case Radius:
		e.draft.Radius = v
	case Branches:
		e.draft.Branches = int(v)
	case Spin:
		e.draft.Spin = v
	case Randomness:
		e.draft.Randomness = v
	default:
		e.draft.RandomnessPower = v
	}
	e.editing = true
	return true
}

// Color returns the draft color of an endpoint.
func (e *Editor) Color(c Color) colorful.Color {
	hex := e.draft.InsideColor
	if c == Outside {
		hex = e.draft.OutsideColor
	}
	col, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}
	}
	return col
}

// SetColor stores an endpoint color in the draft.
func (e *Editor) SetColor(c Color, col colorful.Color) bool {
	hex := col.Clamped().Hex()
	target := &e.draft.InsideColor
	if c == Outside {
		target = &e.draft.OutsideColor
	}
	if *target == hex {
		return false
	}
	*target = hex
	e.editing = true
	return true
}

// Animate returns the draft animate flag.
func (e *Editor) Animate() bool { return e.draft.Animate }

// SetAnimate flips the animate flag and commits right away; it never needs
// a rebuild. Ignored in baked mode.
func (e *Editor) SetAnimate(on bool) bool {
	if !e.CanAnimate() || e.draft.Animate == on {
		return false
	}
	e.draft.Animate = on
	e.committed.Animate = on
	e.pending = true
	return true
}

// Editing reports whether a drag is in progress.
func (e *Editor) Editing() bool { return e.editing }

// Release ends a drag and commits the draft if it differs from the last
// commit.
func (e *Editor) Release() bool {
	if !e.editing {
		return false
	}
	e.editing = false
	if e.draft == e.committed {
		return false
	}
	e.committed = e.draft
	e.pending = true
	return true
}

// Poll returns the last commit not yet taken. It implements app.ParamSource.
func (e *Editor) Poll() (galaxy.Parameters, bool) {
	if !e.pending {
		return galaxy.Parameters{}, false
	}
	e.pending = false
	return e.committed, true
}

// Sync shows p, for example after a config reload. An edit in progress
// wins and the call is ignored.
func (e *Editor) Sync(p galaxy.Parameters) {
	if e.editing || e.pending {
		return
	}
	if e.mode == galaxy.Baked {
		p.Animate = false
	}
	e.committed = p
	e.draft = p
}

// Draft returns the parameters being edited.
func (e *Editor) Draft() galaxy.Parameters { return e.draft }

// Committed returns the last committed parameters.
func (e *Editor) Committed() galaxy.Parameters { return e.committed }
