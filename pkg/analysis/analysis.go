// Package analysis derives heuristic structural properties from a
// generated mesh and the parameters that produced it. The figures are
// display estimates: they depend on mesh size and the generation sliders,
// never on geometric integration, and are bounded so they can drive
// progress bars directly.
package analysis

import (
	"fmt"
	"math"

	"github.com/chazu/biomimic/pkg/catalog"
	"github.com/chazu/biomimic/pkg/kernel"
	"github.com/chazu/biomimic/pkg/params"
)

// Symmetry classifies the large-scale symmetry of a pattern.
type Symmetry int

const (
	Hexagonal Symmetry = iota
	Irregular
	Fractal
	Rotational
	Periodic
)

func (s Symmetry) String() string {
	switch s {
	case Hexagonal:
		return "hexagonal"
	case Irregular:
		return "irregular"
	case Fractal:
		return "fractal"
	case Rotational:
		return "rotational"
	case Periodic:
		return "periodic"
	default:
		return fmt.Sprintf("Symmetry(%d)", int(s))
	}
}

// MarshalText encodes the symmetry by name.
func (s Symmetry) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a symmetry name.
func (s *Symmetry) UnmarshalText(b []byte) error {
	for c := Hexagonal; c <= Periodic; c++ {
		if c.String() == string(b) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("unknown symmetry %q", b)
}

// Properties summarizes one generated structure.
type Properties struct {
	Porosity        float64  `json:"porosity"`
	SurfaceToVolume float64  `json:"surfaceToVolume"`
	Complexity      float64  `json:"complexity"`
	Symmetry        Symmetry `json:"symmetry"`
	TriangleCount   int      `json:"triangleCount"`
	VertexCount     int      `json:"vertexCount"`
	Characteristics string   `json:"characteristics"`
	Applications    []string `json:"applications"`
}

// profile holds the per-algorithm heuristic constants. Porosity bases rank
// honeycomb as the densest structure and branching as the most open.
type profile struct {
	porosity  float64
	svFactor  float64
	symmetry  Symmetry
	character string
}

var profiles = map[params.Algorithm]profile{
	params.Honeycomb: {
		porosity:  0.30,
		svFactor:  1.2,
		symmetry:  Hexagonal,
		character: "Closed hexagonal cells sharing walls with six neighbors; stiff and evenly loaded in-plane.",
	},
	params.Spiral: {
		porosity:  0.45,
		svFactor:  0.9,
		symmetry:  Rotational,
		character: "A single continuous tube winding outward and upward; open ends, rotational growth.",
	},
	params.CellPacking: {
		porosity:  0.50,
		svFactor:  1.4,
		symmetry:  Irregular,
		character: "Irregular polygonal cells of varying size and orientation; organic and load-spreading.",
	},
	params.Gyroid: {
		porosity:  0.60,
		svFactor:  2.0,
		symmetry:  Periodic,
		character: "A triply periodic minimal surface dividing space into two interwoven channels.",
	},
	params.Branching: {
		porosity:  0.70,
		svFactor:  1.6,
		symmetry:  Fractal,
		character: "Self-similar tapering branches fanning out from a single trunk.",
	},
}

// Analyze computes the properties of m, generated by alg from p. cat
// supplies the base complexity and application text; it may be nil, in
// which case those contributions are empty.
func Analyze(m *kernel.Mesh, p params.Parameters, alg params.Algorithm, cat *catalog.Catalog) (Properties, error) {
	prof, ok := profiles[alg]
	if !ok {
		return Properties{}, fmt.Errorf("analyze: unknown algorithm %v", alg)
	}

	tris := m.TriangleCount()
	sizeTerm := math.Log10(1 + float64(tris))

	porosity := clamp01(prof.porosity + 0.3*(0.6-p.Density))

	props := Properties{
		Porosity:        porosity,
		SurfaceToVolume: math.Max(0, prof.svFactor*(1+porosity)*sizeTerm/p.EffectiveScale()),
		Symmetry:        prof.symmetry,
		TriangleCount:   tris,
		VertexCount:     m.VertexCount(),
		Characteristics: prof.character,
	}

	var base float64
	if cat != nil {
		if entry, ok := cat.Lookup(alg); ok {
			base = entry.Complexity
			props.Characteristics = prof.character + " " + entry.Principle + "."
			props.Applications = append([]string(nil), entry.UseCases...)
		}
	}
	props.Complexity = clamp01(0.5*p.Complexity + 0.3*base + 0.2*math.Min(1, sizeTerm/5))

	return props, nil
}

// SymmetryOf returns the fixed symmetry label for alg.
func SymmetryOf(alg params.Algorithm) Symmetry {
	return profiles[alg].symmetry
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

// PorosityPercent formats porosity as a whole percentage, e.g. "42%".
func (p Properties) PorosityPercent() string {
	return fmt.Sprintf("%d%%", int(math.Round(p.Porosity*100)))
}

// SurfaceToVolumeFormatted formats the ratio with two decimals.
func (p Properties) SurfaceToVolumeFormatted() string {
	return fmt.Sprintf("%.2f", p.SurfaceToVolume)
}

// SurfaceToVolumeBar maps the ratio onto [0, 1] for a progress bar.
func (p Properties) SurfaceToVolumeBar() float64 {
	return math.Min(p.SurfaceToVolume/10, 1)
}

// ComplexityLevel buckets the complexity score: LOW below 0.4, MEDIUM
// below 0.7, HIGH below 0.85 and VERY HIGH above.
func (p Properties) ComplexityLevel() string {
	switch {
	case p.Complexity < 0.4:
		return "LOW"
	case p.Complexity < 0.7:
		return "MEDIUM"
	case p.Complexity < 0.85:
		return "HIGH"
	default:
		return "VERY HIGH"
	}
}
