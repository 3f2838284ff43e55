package pattern

import (
	"fmt"
	"math"

	"cogentcore.org/core/base/randx"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/biomimic/pkg/kernel"
	"github.com/chazu/biomimic/pkg/params"
)

// branch is one pending cylinder on the work stack.
type branch struct {
	start, end kernel.Vec3
	radius     float64
	depth      int
}

const (
	lengthFalloff = 0.7
	radiusFalloff = 0.65
)

// branching grows a vascular tree from the trunk. A branch below MaxDepth
// forks into 3 children at the trunk and 2 everywhere else; children
// shrink in length and radius and lean away from their parent's axis.
//
// The tree is walked with an explicit stack so memory is bounded by the
// depth cap, not the host call stack. Children are pushed in reverse so
// cylinders are emitted depth-first in sibling order. For each parent the
// random draws are, per child in order: azimuth jitter, then spread.
func branching(p params.BranchPlan, rng randx.Rand) (*kernel.Mesh, error) {
	limit := p.MaxCylinders()
	m := kernel.NewMesh(limit * 4 * p.Segments)

	stack := []branch{{start: p.TrunkStart, end: p.TrunkEnd, radius: p.TrunkRadius}}
	emitted := 0
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		m.AddCylinder(b.start, b.end, b.radius, p.Segments)
		emitted++
		if emitted > limit {
			return nil, fmt.Errorf("branching: %w: %d cylinders exceeds bound %d", ErrDefect, emitted, limit)
		}

		if b.depth >= p.MaxDepth {
			continue
		}

		n := 2
		if b.depth == 0 {
			n = 3
		}
		length := kernel.Distance(b.start, b.end) * lengthFalloff

		children := make([]branch, n)
		for i := range children {
			azimuth := float64(i)*2*math.Pi/float64(n) + uniform(rng, -0.3, 0.3)
			spread := uniform(rng, 0.4, 0.8)
			dir := kernel.Normalize(kernel.V(
				math.Sin(spread)*math.Cos(azimuth),
				math.Cos(spread),
				math.Sin(spread)*math.Sin(azimuth),
			))
			children[i] = branch{
				start:  b.end,
				end:    r3.Add(b.end, r3.Scale(length, dir)),
				radius: b.radius * radiusFalloff,
				depth:  b.depth + 1,
			}
		}
		for i := n - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return m, nil
}
