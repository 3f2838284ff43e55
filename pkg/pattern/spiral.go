package pattern

import (
	"math"

	"github.com/chazu/biomimic/pkg/kernel"
	"github.com/chazu/biomimic/pkg/params"
)

// spiral sweeps a thin tube along a spiral whose radius grows linearly
// from 0.1·scale to 0.6·scale while it rises through 0.8·scale. The tube
// ends are left open.
func spiral(p params.SpiralPlan) *kernel.Mesh {
	s := p.Scale
	n := float64(p.Samples)
	m := kernel.NewMesh(p.Samples * 2 * p.TubeSides)

	var prev []kernel.Vec3
	for i := 0; i <= p.Samples; i++ {
		t := float64(i) / n
		theta := p.Turns * 2 * math.Pi * t
		r := 0.1*s + 0.5*s*t
		sin, cos := math.Sincos(theta)
		center := kernel.V(r*cos, 0.8*s*t-0.4*s, r*sin)

		tangent := kernel.V(
			-r*sin+0.5*s*cos/p.Turns,
			0.8*s/n,
			r*cos+0.5*s*sin/p.Turns,
		)
		u, w := kernel.Basis(tangent)
		ring := kernel.Ring(center, u, w, p.TubeRadius, p.TubeSides)

		if prev != nil {
			m.StitchRings(prev, ring)
		}
		prev = ring
	}
	return m
}
