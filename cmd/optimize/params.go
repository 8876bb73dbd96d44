package main

import (
	"github.com/Normaly0/galaxy-gen/config"
	"github.com/Normaly0/galaxy-gen/galaxy"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
	mode  galaxy.Mode
}

// NewParamVector creates the exposure and point size parameters for mode.
// Point size bounds depend on the mode: pixels for deferred, world units
// for baked.
func NewParamVector(cfg *config.Config) *ParamVector {
	mode := cfg.Derived.Mode
	size := ParamSpec{Name: "size", Path: "galaxy.size", Min: 2, Max: 60, Default: cfg.Galaxy.Size}
	if mode == galaxy.Baked {
		size = ParamSpec{Name: "baked_size", Path: "render.baked_size", Min: 0.002, Max: 0.1, Default: cfg.Render.BakedSize}
	}
	pv := &ParamVector{
		Specs: []ParamSpec{
			{Name: "exposure", Path: "snapshot.exposure", Min: 0.05, Max: 8, Default: cfg.Snapshot.Exposure},
			size,
		},
		mode: mode,
	}
	// Keep the start point inside the box
	for i := range pv.Specs {
		s := &pv.Specs[i]
		s.Default = min(max(s.Default, s.Min), s.Max)
	}
	return pv
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// Exposure and Size read the named parameters from a clamped vector.
func (pv *ParamVector) Exposure(v []float64) float64 { return v[0] }
func (pv *ParamVector) Size(v []float64) float64     { return v[1] }

// ApplyToConfig applies parameter values to a Config struct.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	clamped := pv.Clamp(values)
	cfg.Snapshot.Exposure = pv.Exposure(clamped)
	if pv.mode == galaxy.Baked {
		cfg.Render.BakedSize = pv.Size(clamped)
	} else {
		cfg.Galaxy.Size = pv.Size(clamped)
	}
	// Re-derive the active parameters from the new size
	return cfg.SetMode(pv.mode.String())
}
