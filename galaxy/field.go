package galaxy

import "fmt"

// Field holds the per-point arrays of one generation pass. Vector arrays are
// interleaved xyz (3 scalars per point).
type Field struct {
	Count    int
	Branches int
	Mode     Mode

	Positions     []float32 // 3 * Count
	Colors        []float32 // 3 * Count, linear RGB
	Scales        []float32 // Count, uniform in [0, 1)
	RandomOffsets []float32 // 3 * Count, the jitter drawn for each point
	Radii         []float32 // Count, sampled radial distance
}

func newField(count, branches int, mode Mode) *Field {
	if count < 0 {
		count = 0
	}
	return &Field{
		Count:         count,
		Branches:      branches,
		Mode:          mode,
		Positions:     make([]float32, count*3),
		Colors:        make([]float32, count*3),
		Scales:        make([]float32, count),
		RandomOffsets: make([]float32, count*3),
		Radii:         make([]float32, count),
	}
}

// Position returns the stored position of point i.
func (f *Field) Position(i int) [3]float32 {
	i3 := i * 3
	return [3]float32{f.Positions[i3], f.Positions[i3+1], f.Positions[i3+2]}
}

// RandomOffset returns the jitter of point i.
func (f *Field) RandomOffset(i int) [3]float32 {
	i3 := i * 3
	return [3]float32{f.RandomOffsets[i3], f.RandomOffsets[i3+1], f.RandomOffsets[i3+2]}
}

// Color returns the color of point i.
func (f *Field) Color(i int) RGB {
	i3 := i * 3
	return RGB{R: f.Colors[i3], G: f.Colors[i3+1], B: f.Colors[i3+2]}
}

// Validate checks that every array length is consistent with Count.
func (f *Field) Validate() error {
	check := func(name string, got, want int) error {
		if got != want {
			return fmt.Errorf("field %s: length %d, want %d", name, got, want)
		}
		return nil
	}
	if err := check("positions", len(f.Positions), f.Count*3); err != nil {
		return err
	}
	if err := check("colors", len(f.Colors), f.Count*3); err != nil {
		return err
	}
	if err := check("scales", len(f.Scales), f.Count); err != nil {
		return err
	}
	if err := check("random_offsets", len(f.RandomOffsets), f.Count*3); err != nil {
		return err
	}
	return check("radii", len(f.Radii), f.Count)
}

// Bytes returns the total size of the arrays in bytes.
func (f *Field) Bytes() int {
	return 4 * (len(f.Positions) + len(f.Colors) + len(f.Scales) + len(f.RandomOffsets) + len(f.Radii))
}
