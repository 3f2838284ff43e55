// Package params defines the user-facing generation parameters and expands
// them into the bounded, per-algorithm quantities the pattern generators
// consume. Expansion is pure: the same algorithm and parameters always
// produce the same Plan.
package params

import (
	"errors"
	"fmt"
	"math"
)

// Slider ranges accepted at the generation entry point.
const (
	MinComplexity  = 0.1
	MaxComplexity  = 1.0
	MinDensity     = 0.2
	MaxDensity     = 1.0
	MinOrganicBias = 0.0
	MaxOrganicBias = 1.0
	DefaultScale   = 1.0
)

// ErrOutOfRange is wrapped by Validate for any slider outside its range.
var ErrOutOfRange = errors.New("parameter out of range")

// Parameters are the inputs of one generation. Seed drives every
// pseudo-random choice; Scale sizes the structure (1.0 when zero).
type Parameters struct {
	Seed        int64   `json:"seed" yaml:"seed"`
	Complexity  float64 `json:"complexity" yaml:"complexity"`
	Density     float64 `json:"density" yaml:"density"`
	OrganicBias float64 `json:"organicBias" yaml:"organicBias"`
	Scale       float64 `json:"scale,omitempty" yaml:"scale,omitempty"`
}

// Default returns mid-range sliders, matching the generator's initial state.
func Default() Parameters {
	return Parameters{
		Complexity:  0.5,
		Density:     0.5,
		OrganicBias: 0.5,
		Scale:       DefaultScale,
	}
}

// EffectiveScale returns Scale, or DefaultScale when it is unset.
func (p Parameters) EffectiveScale() float64 {
	if p.Scale == 0 {
		return DefaultScale
	}
	return p.Scale
}

// Iterations is the branching growth budget derived from complexity:
// floor(3·complexity), so complexity 1.0 reaches the depth cap.
func (p Parameters) Iterations() int {
	it := int(math.Floor(p.Complexity*3 + 1e-9))
	if it < 0 {
		return 0
	}
	return it
}

// Validate reports the first slider outside its documented range.
func (p Parameters) Validate() error {
	if err := checkRange("complexity", p.Complexity, MinComplexity, MaxComplexity); err != nil {
		return err
	}
	if err := checkRange("density", p.Density, MinDensity, MaxDensity); err != nil {
		return err
	}
	if err := checkRange("organicBias", p.OrganicBias, MinOrganicBias, MaxOrganicBias); err != nil {
		return err
	}
	if math.IsNaN(p.Scale) || math.IsInf(p.Scale, 0) || p.Scale < 0 {
		return fmt.Errorf("scale %v: %w (must be a positive number)", p.Scale, ErrOutOfRange)
	}
	return nil
}

func checkRange(name string, v, lo, hi float64) error {
	if math.IsNaN(v) || v < lo || v > hi {
		return fmt.Errorf("%s %v: %w [%g, %g]", name, v, ErrOutOfRange, lo, hi)
	}
	return nil
}

// Clamp returns a copy of p with every slider forced into range. Callers
// that prefer clamping to rejection run it before Validate.
func (p Parameters) Clamp() Parameters {
	p.Complexity = clamp(p.Complexity, MinComplexity, MaxComplexity)
	p.Density = clamp(p.Density, MinDensity, MaxDensity)
	p.OrganicBias = clamp(p.OrganicBias, MinOrganicBias, MaxOrganicBias)
	if math.IsNaN(p.Scale) || math.IsInf(p.Scale, 0) || p.Scale <= 0 {
		p.Scale = DefaultScale
	}
	return p
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
