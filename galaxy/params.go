// Package galaxy generates spiral-galaxy point fields.
//
// A generation pass takes an immutable Parameters snapshot and produces a
// Field: flat float32 arrays ready for upload (positions, colors, per-point
// scale and random offset). Everything here is pure CPU code with no
// dependency on the renderer.
package galaxy

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	// MaxCount is the upper bound of the editor's count slider. Normalized
	// does not cap counts.
	MaxCount = 1_000_000
	// MinRadius replaces a radius that is zero or negative.
	MinRadius = 1e-6
)

// Parameters is the parameter snapshot used for one generation pass.
type Parameters struct {
	Count           int     `yaml:"count" toml:"count"`
	Size            float64 `yaml:"size" toml:"size"` // deferred: pixels before DPR; baked: world units
	Radius          float64 `yaml:"radius" toml:"radius"`
	Branches        int     `yaml:"branches" toml:"branches"`
	Spin            float64 `yaml:"spin" toml:"spin"` // radians per unit radius
	Randomness      float64 `yaml:"randomness" toml:"randomness"`
	RandomnessPower float64 `yaml:"randomness_power" toml:"randomness_power"`
	InsideColor     string  `yaml:"inside_color" toml:"inside_color"`
	OutsideColor    string  `yaml:"outside_color" toml:"outside_color"`
	Animate         bool    `yaml:"animate" toml:"animate"`
}

// Defaults returns the stock galaxy.
func Defaults() Parameters {
	return Parameters{
		Count:           350000,
		Size:            15,
		Radius:          5,
		Branches:        3,
		Spin:            1,
		Randomness:      0.2,
		RandomnessPower: 3,
		InsideColor:     "#2eafff",
		OutsideColor:    "#e538c0",
		Animate:         false,
	}
}

// DefaultBakedSize is the world-space point size used when baked mode starts
// from parameters tuned for the shader.
const DefaultBakedSize = 0.01

// Normalized returns p with every out-of-contract field clamped to the
// nearest valid value. This is the only validation policy in the module:
// callers never get an error for bad parameters. NaN values are replaced with
// the corresponding default.
func (p Parameters) Normalized() Parameters {
	d := Defaults()

	if p.Count < 1 {
		p.Count = 1
	}
	if p.Branches < 1 {
		p.Branches = 1
	}

	p.Size = finiteOr(p.Size, d.Size)
	if p.Size < 0 {
		p.Size = 0
	}
	p.Radius = finiteOr(p.Radius, d.Radius)
	if p.Radius <= 0 {
		p.Radius = MinRadius
	}
	p.Spin = finiteOr(p.Spin, d.Spin)
	p.Randomness = finiteOr(p.Randomness, d.Randomness)
	if p.Randomness < 0 {
		p.Randomness = 0
	}
	p.RandomnessPower = finiteOr(p.RandomnessPower, d.RandomnessPower)
	if p.RandomnessPower < 1 {
		p.RandomnessPower = 1
	}

	if _, err := colorful.Hex(p.InsideColor); err != nil {
		p.InsideColor = d.InsideColor
	}
	if _, err := colorful.Hex(p.OutsideColor); err != nil {
		p.OutsideColor = d.OutsideColor
	}
	return p
}

// NeedsRebuild reports whether moving from prev to p changes the generated
// field. Animate only drives the time uniform and never requires a rebuild.
func (p Parameters) NeedsRebuild(prev Parameters) bool {
	p.Animate = false
	prev.Animate = false
	return p != prev
}

// Gradient returns the color gradient for p. Colors that fail to parse fall
// back to the defaults, matching Normalized.
func (p Parameters) Gradient() Gradient {
	n := p.Normalized()
	g, err := NewGradient(n.InsideColor, n.OutsideColor)
	if err != nil {
		// Unreachable: Normalized only keeps parseable colors.
		panic(err)
	}
	return g
}

func finiteOr(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

// Range describes an editable numeric parameter.
type Range struct {
	Min, Max, Step float64
}

// Snap clamps v to the range and rounds it to the nearest step.
func (r Range) Snap(v float64) float64 {
	if v < r.Min {
		v = r.Min
	}
	if v > r.Max {
		v = r.Max
	}
	if r.Step > 0 {
		v = r.Min + math.Round((v-r.Min)/r.Step)*r.Step
		// Rounding can overshoot by an ulp
		if v > r.Max {
			v = r.Max
		}
	}
	return v
}

// Ranges holds the editor ranges for each numeric parameter.
type Ranges struct {
	Count           Range
	Size            Range
	Radius          Range
	Branches        Range
	Spin            Range
	Randomness      Range
	RandomnessPower Range
}

// EditorRanges returns the slider ranges for the given render mode. Only the
// size range depends on the mode.
func EditorRanges(mode Mode) Ranges {
	size := Range{Min: 1, Max: 25, Step: 1}
	if mode == Baked {
		size = Range{Min: 0.001, Max: 0.1, Step: 0.001}
	}
	return Ranges{
		Count:           Range{Min: 100, Max: MaxCount, Step: 100},
		Size:            size,
		Radius:          Range{Min: 1, Max: 10, Step: 0.1},
		Branches:        Range{Min: 2, Max: 15, Step: 1},
		Spin:            Range{Min: -5, Max: 5, Step: 0.001},
		Randomness:      Range{Min: 0, Max: 2, Step: 0.001},
		RandomnessPower: Range{Min: 1, Max: 10, Step: 0.001},
	}
}
