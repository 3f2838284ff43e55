package pattern

import (
	"math"

	"github.com/chazu/biomimic/pkg/kernel"
	"github.com/chazu/biomimic/pkg/params"
)

// trianglesPerHex is 6 top + 6 bottom + 12 side.
const trianglesPerHex = 24

// HoneycombCenters returns the lattice cell centers the honeycomb keeps:
// every (row, col) in [-g, g]² whose center lies strictly inside a circle
// of radius g·r. Odd columns are offset by 0.75r in Z.
func HoneycombCenters(p params.HoneycombPlan) []kernel.Vec3 {
	g := p.GridSize
	r := p.HexRadius
	limit := float64(g) * r

	var centers []kernel.Vec3
	for row := -g; row <= g; row++ {
		for col := -g; col <= g; col++ {
			x := float64(col) * r * 1.75
			z := float64(row) * r * 1.5
			if col%2 != 0 {
				z += r * 0.75
			}
			if math.Hypot(x, z) < limit {
				centers = append(centers, kernel.V(x, 0, z))
			}
		}
	}
	return centers
}

func honeycomb(p params.HoneycombPlan) *kernel.Mesh {
	centers := HoneycombCenters(p)
	m := kernel.NewMesh(len(centers) * trianglesPerHex)
	for _, c := range centers {
		m.AddPrism(c, kernel.Ring(c, axisX, axisZ, p.HexRadius*0.9, 6), p.Height)
	}
	return m
}
