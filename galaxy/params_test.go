package galaxy

import (
	"math"
	"testing"
)

func TestNormalized(t *testing.T) {
	d := Defaults()
	tests := []struct {
		name  string
		edit  func(p *Parameters)
		check func(t *testing.T, p Parameters)
	}{
		{
			name: "defaults unchanged",
			edit: func(p *Parameters) {},
			check: func(t *testing.T, p Parameters) {
				if p != d {
					t.Errorf("defaults changed: %+v", p)
				}
			},
		},
		{
			name: "count clamped low",
			edit: func(p *Parameters) { p.Count = -5 },
			check: func(t *testing.T, p Parameters) {
				if p.Count != 1 {
					t.Errorf("count = %d, want 1", p.Count)
				}
			},
		},
		{
			name: "large count kept",
			edit: func(p *Parameters) { p.Count = MaxCount * 3 },
			check: func(t *testing.T, p Parameters) {
				if p.Count != MaxCount*3 {
					t.Errorf("count = %d, want %d", p.Count, MaxCount*3)
				}
			},
		},
		{
			name: "branches at least one",
			edit: func(p *Parameters) { p.Branches = 0 },
			check: func(t *testing.T, p Parameters) {
				if p.Branches != 1 {
					t.Errorf("branches = %d, want 1", p.Branches)
				}
			},
		},
		{
			name: "radius floor",
			edit: func(p *Parameters) { p.Radius = 0 },
			check: func(t *testing.T, p Parameters) {
				if p.Radius != MinRadius {
					t.Errorf("radius = %f, want %f", p.Radius, MinRadius)
				}
			},
		},
		{
			name: "negative radius replaced",
			edit: func(p *Parameters) { p.Radius = -4 },
			check: func(t *testing.T, p Parameters) {
				if p.Radius != MinRadius {
					t.Errorf("radius = %g, want %g", p.Radius, MinRadius)
				}
			},
		},
		{
			name: "small positive radius kept",
			edit: func(p *Parameters) { p.Radius = 0.005 },
			check: func(t *testing.T, p Parameters) {
				if p.Radius != 0.005 {
					t.Errorf("radius = %g, want 0.005", p.Radius)
				}
			},
		},
		{
			name: "power floor",
			edit: func(p *Parameters) { p.RandomnessPower = 0.2 },
			check: func(t *testing.T, p Parameters) {
				if p.RandomnessPower != 1 {
					t.Errorf("power = %f, want 1", p.RandomnessPower)
				}
			},
		},
		{
			name: "negative randomness and size",
			edit: func(p *Parameters) { p.Randomness = -1; p.Size = -3 },
			check: func(t *testing.T, p Parameters) {
				if p.Randomness != 0 || p.Size != 0 {
					t.Errorf("randomness=%f size=%f, want 0/0", p.Randomness, p.Size)
				}
			},
		},
		{
			name: "non-finite replaced with defaults",
			edit: func(p *Parameters) {
				p.Radius = math.NaN()
				p.Spin = math.Inf(1)
				p.Randomness = math.NaN()
			},
			check: func(t *testing.T, p Parameters) {
				if p.Radius != d.Radius || p.Spin != d.Spin || p.Randomness != d.Randomness {
					t.Errorf("got radius=%f spin=%f randomness=%f", p.Radius, p.Spin, p.Randomness)
				}
			},
		},
		{
			name: "negative spin kept",
			edit: func(p *Parameters) { p.Spin = -4.2 },
			check: func(t *testing.T, p Parameters) {
				if p.Spin != -4.2 {
					t.Errorf("spin = %f, want -4.2", p.Spin)
				}
			},
		},
		{
			name: "bad colors fall back",
			edit: func(p *Parameters) { p.InsideColor = "blue"; p.OutsideColor = "#12" },
			check: func(t *testing.T, p Parameters) {
				if p.InsideColor != d.InsideColor || p.OutsideColor != d.OutsideColor {
					t.Errorf("colors = %s/%s", p.InsideColor, p.OutsideColor)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Defaults()
			tt.edit(&p)
			tt.check(t, p.Normalized())
		})
	}
}

func TestNeedsRebuild(t *testing.T) {
	base := Defaults()

	animated := base
	animated.Animate = true
	if animated.NeedsRebuild(base) {
		t.Error("toggling animate should not require a rebuild")
	}

	spun := base
	spun.Spin = 2
	if !spun.NeedsRebuild(base) {
		t.Error("changing spin should require a rebuild")
	}

	recolored := base
	recolored.OutsideColor = "#ffffff"
	if !recolored.NeedsRebuild(base) {
		t.Error("changing a color should require a rebuild")
	}

	if base.NeedsRebuild(base) {
		t.Error("identical parameters should not require a rebuild")
	}
}

func TestRangeSnap(t *testing.T) {
	tests := []struct {
		r    Range
		in   float64
		want float64
	}{
		{Range{Min: 100, Max: 1_000_000, Step: 100}, 1234, 1200},
		{Range{Min: 100, Max: 1_000_000, Step: 100}, 5, 100},
		{Range{Min: 100, Max: 1_000_000, Step: 100}, 2e6, 1_000_000},
		{Range{Min: 2, Max: 15, Step: 1}, 3.6, 4},
		{Range{Min: -5, Max: 5, Step: 0.001}, -5.5, -5},
		{Range{Min: 0, Max: 1}, 0.37, 0.37},
	}
	for _, tt := range tests {
		got := tt.r.Snap(tt.in)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%+v.Snap(%f) = %f, want %f", tt.r, tt.in, got, tt.want)
		}
	}
}

func TestEditorRangesSizeDependsOnMode(t *testing.T) {
	def := EditorRanges(Deferred)
	baked := EditorRanges(Baked)

	if def.Size.Min != 1 || def.Size.Max != 25 {
		t.Errorf("deferred size range = %+v", def.Size)
	}
	if baked.Size.Max > 0.1 || baked.Size.Min <= 0 {
		t.Errorf("baked size range = %+v", baked.Size)
	}
	if def.Count != baked.Count || def.Spin != baked.Spin {
		t.Error("only the size range should differ between modes")
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", Deferred, false},
		{"deferred", Deferred, false},
		{"Shader", Deferred, false},
		{" baked ", Baked, false},
		{"points", Baked, false},
		{"voxels", Deferred, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
	if Baked.String() != "baked" || Deferred.String() != "deferred" {
		t.Error("mode names do not round trip")
	}
}
