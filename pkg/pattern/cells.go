package pattern

import (
	"math"

	"cogentcore.org/core/base/randx"

	"github.com/chazu/biomimic/pkg/kernel"
	"github.com/chazu/biomimic/pkg/params"
)

const (
	minCellSides = 5
	maxCellSides = 8
	angleJitter  = 0.2
)

// cells scatters irregular polygonal prisms around random seed points.
// Neighbouring cells may overlap.
//
// Draw order: params.MaxCells seed points (x then z) regardless of the
// cell count; then for each of the first p.Cells points its side count,
// then per vertex the angle jitter followed by the radius factor. Cell i
// therefore never depends on p.Cells, and a denser plan only appends
// cells.
func cells(p params.CellPlan, rng randx.Rand) *kernel.Mesh {
	points := make([]kernel.Vec3, params.MaxCells)
	for i := range points {
		x := (rng.Float64()*2 - 1) * p.HalfWidth
		z := (rng.Float64()*2 - 1) * p.HalfWidth
		points[i] = kernel.V(x, 0, z)
	}

	n := min(p.Cells, params.MaxCells)
	m := kernel.NewMesh(n * 4 * maxCellSides)
	for _, c := range points[:n] {
		sides := minCellSides + rng.Intn(maxCellSides-minCellSides+1)
		outline := make([]kernel.Vec3, sides)
		for i := range outline {
			a := float64(i)*2*math.Pi/float64(sides) + uniform(rng, -angleJitter, angleJitter)
			r := p.CellRadius * uniform(rng, 0.7, 1.0)
			outline[i] = polar(c, r, a)
		}
		m.AddPrism(c, outline, p.Height)
	}
	return m
}
