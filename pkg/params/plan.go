package params

import (
	"fmt"
	"math"

	"github.com/chazu/biomimic/pkg/kernel"
)

// Hard ceilings on the derived quantities. The two unbounded-cost paths
// are branching fan-out (exponential in depth) and the gyroid grid (cubic
// in resolution); anything derived beyond a ceiling is clamped to it.
const (
	MaxBranchDepth      = 5
	MaxGyroidResolution = 48
	MaxHoneycombGrid    = 16
	MaxCells            = 64
	MaxSpiralSamples    = 400
)

// Plan is the expanded, algorithm-specific form of Parameters. The set of
// implementations is closed: one per Algorithm.
type Plan interface {
	Algorithm() Algorithm
	plan() // marker method restricting implementations to this package
}

// HoneycombPlan lays hexagonal prisms on a lattice of half-extent GridSize.
type HoneycombPlan struct {
	GridSize  int     // lattice half-extent in cells: floor(5·density)+2
	HexRadius float64 // lattice cell radius; prisms use 0.9 of it
	Height    float64
}

func (HoneycombPlan) Algorithm() Algorithm { return Honeycomb }
func (HoneycombPlan) plan()                {}

// CellPlan scatters Cells irregular prisms over a square of half-width HalfWidth.
type CellPlan struct {
	Cells      int // floor(15·density)+5
	CellRadius float64
	Height     float64
	HalfWidth  float64
}

func (CellPlan) Algorithm() Algorithm { return CellPacking }
func (CellPlan) plan()                {}

// BranchPlan grows a tree of cylinders from a vertical trunk.
type BranchPlan struct {
	MaxDepth    int // min(iterations+2, MaxBranchDepth)
	Segments    int
	TrunkStart  kernel.Vec3
	TrunkEnd    kernel.Vec3
	TrunkRadius float64
}

func (BranchPlan) Algorithm() Algorithm { return Branching }
func (BranchPlan) plan()                {}

// MaxCylinders is the exact cylinder count for the plan's depth: the trunk
// plus 3 children at depth 0 and 2 children per branch below that.
func (p BranchPlan) MaxCylinders() int {
	return BranchCylinders(p.MaxDepth)
}

// BranchCylinders returns 1 + 3·(2^depth − 1), the number of cylinders a
// tree of the given maximum depth emits.
func BranchCylinders(depth int) int {
	if depth <= 0 {
		return 1
	}
	return 1 + 3*((1<<depth)-1)
}

// SpiralPlan sweeps a tube along a widening, rising spiral.
type SpiralPlan struct {
	Turns      float64 // 3 + 2·density
	Samples    int     // 20 samples per turn
	TubeSides  int
	TubeRadius float64
	Scale      float64
}

func (SpiralPlan) Algorithm() Algorithm { return Spiral }
func (SpiralPlan) plan()                {}

// GyroidPlan samples the gyroid field on a Resolution³ grid over a cube of
// edge Size centered at the origin.
type GyroidPlan struct {
	Resolution int // floor(10·density)+8
	Size       float64
	Frequency  float64
}

func (GyroidPlan) Algorithm() Algorithm { return Gyroid }
func (GyroidPlan) plan()                {}

// Step returns the grid cell edge length.
func (p GyroidPlan) Step() float64 {
	return p.Size / float64(p.Resolution)
}

// Expand maps parameters to the plan for alg. It never draws random
// numbers. Derived integers are floored at the minimum that still emits
// geometry and clamped to the ceilings above.
func Expand(alg Algorithm, p Parameters) (Plan, error) {
	s := p.EffectiveScale()

	switch alg {
	case Honeycomb:
		return HoneycombPlan{
			GridSize:  bounded(int(math.Floor(5*p.Density))+2, 1, MaxHoneycombGrid),
			HexRadius: 0.15 * s,
			Height:    0.3 * s,
		}, nil

	case CellPacking:
		return CellPlan{
			Cells:      bounded(int(math.Floor(15*p.Density))+5, 1, MaxCells),
			CellRadius: 0.15 * s,
			Height:     0.2 * s,
			HalfWidth:  s,
		}, nil

	case Branching:
		return BranchPlan{
			MaxDepth:    bounded(p.Iterations()+2, 0, MaxBranchDepth),
			Segments:    6,
			TrunkStart:  kernel.V(0, -0.5*s, 0),
			TrunkEnd:    kernel.V(0, 0.2*s, 0),
			TrunkRadius: 0.08 * s,
		}, nil

	case Spiral:
		turns := 3 + 2*p.Density
		return SpiralPlan{
			Turns:      turns,
			Samples:    bounded(int(math.Floor(turns*20)), 1, MaxSpiralSamples),
			TubeSides:  6,
			TubeRadius: 0.03 * s,
			Scale:      s,
		}, nil

	case Gyroid:
		return GyroidPlan{
			Resolution: bounded(int(math.Floor(10*p.Density))+8, 1, MaxGyroidResolution),
			Size:       s,
			Frequency:  4,
		}, nil
	}

	return nil, fmt.Errorf("expand: unknown algorithm %v", alg)
}

func bounded(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
