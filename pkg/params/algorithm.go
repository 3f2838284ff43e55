package params

import (
	"fmt"
	"strings"
)

// Algorithm enumerates the five pattern generators.
type Algorithm int

const (
	Honeycomb   Algorithm = iota // hexagonal prism lattice
	CellPacking                  // irregular Voronoi-like cells
	Branching                    // recursive vascular tree
	Spiral                       // tube swept along a growing spiral
	Gyroid                       // triply periodic minimal surface
)

// Algorithms lists every algorithm in declaration order.
var Algorithms = []Algorithm{Honeycomb, CellPacking, Branching, Spiral, Gyroid}

func (a Algorithm) String() string {
	switch a {
	case Honeycomb:
		return "honeycomb"
	case CellPacking:
		return "voronoi"
	case Branching:
		return "branching"
	case Spiral:
		return "spiral"
	case Gyroid:
		return "gyroid"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

// Valid reports whether a is one of the five known algorithms.
func (a Algorithm) Valid() bool {
	return a >= Honeycomb && a <= Gyroid
}

// ParseAlgorithm converts a name such as "gyroid" or "cell-packing" to an
// Algorithm. Matching is case-insensitive.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "honeycomb":
		return Honeycomb, nil
	case "voronoi", "cell-packing", "cellpacking", "cells":
		return CellPacking, nil
	case "branching":
		return Branching, nil
	case "spiral":
		return Spiral, nil
	case "gyroid":
		return Gyroid, nil
	}
	return 0, fmt.Errorf("unknown algorithm %q, expected honeycomb, voronoi, branching, spiral or gyroid", name)
}

// MarshalText encodes the algorithm by name.
func (a Algorithm) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("cannot marshal %s", a)
	}
	return []byte(a.String()), nil
}

// UnmarshalText decodes an algorithm name.
func (a *Algorithm) UnmarshalText(b []byte) error {
	parsed, err := ParseAlgorithm(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
