package galaxy

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Stats summarizes a generated field.
type Stats struct {
	Count        int
	MeanRadius   float64
	StdRadius    float64
	P50Radius    float64
	P90Radius    float64
	MeanJitter   float64 // mean |offset| over all axes
	BranchCounts []int
}

// Stats computes summary statistics of the field.
func (f *Field) Stats() Stats {
	s := Stats{Count: f.Count}
	if f.Branches > 0 {
		s.BranchCounts = make([]int, f.Branches)
	}
	if f.Count == 0 {
		return s
	}

	radii := make([]float64, f.Count)
	for i, r := range f.Radii {
		radii[i] = float64(r)
	}
	s.MeanRadius = stat.Mean(radii, nil)
	if f.Count > 1 {
		s.StdRadius = stat.StdDev(radii, nil)
	}
	sort.Float64s(radii)
	s.P50Radius = stat.Quantile(0.5, stat.Empirical, radii, nil)
	s.P90Radius = stat.Quantile(0.9, stat.Empirical, radii, nil)

	var jitterSum float64
	for _, v := range f.RandomOffsets {
		if v < 0 {
			v = -v
		}
		jitterSum += float64(v)
	}
	s.MeanJitter = jitterSum / float64(len(f.RandomOffsets))

	for i := 0; i < f.Count && f.Branches > 0; i++ {
		s.BranchCounts[i%f.Branches]++
	}
	return s
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("count", s.Count),
		slog.Float64("mean_radius", s.MeanRadius),
		slog.Float64("std_radius", s.StdRadius),
		slog.Float64("p50_radius", s.P50Radius),
		slog.Float64("p90_radius", s.P90Radius),
		slog.Float64("mean_jitter", s.MeanJitter),
		slog.Int("branches", len(s.BranchCounts)),
	)
}
