package pattern

import (
	"fmt"

	"github.com/chazu/biomimic/pkg/kernel"
	"github.com/chazu/biomimic/pkg/kernel/sdfx"
	"github.com/chazu/biomimic/pkg/params"
)

// GyroidCell reports whether the surface crosses the grid cell with minimum
// corner (x, y, z): at least one of its 8 corners samples strictly positive
// and at least one strictly negative.
func GyroidCell(x, y, z, step, omega float64) bool {
	var pos, neg bool
	for _, c := range [8][3]float64{
		{x, y, z},
		{x + step, y, z},
		{x + step, y + step, z},
		{x, y + step, z},
		{x, y, z + step},
		{x + step, y, z + step},
		{x + step, y + step, z + step},
		{x, y + step, z + step},
	} {
		v := sdfx.GyroidValue(c[0], c[1], c[2], omega)
		if v > 0 {
			pos = true
		}
		if v < 0 {
			neg = true
		}
	}
	return pos && neg
}

func gyroid(p params.GyroidPlan, o Options) (*kernel.Mesh, error) {
	switch o.Surface {
	case SurfacePatch:
		return gyroidPatches(p), nil
	case SurfaceMarchingCubes:
		return gyroidShell(p, o)
	}
	return nil, fmt.Errorf("gyroid: unknown surface mode %v", o.Surface)
}

// gyroidPatches visits every cell of the Resolution³ grid and drops a small
// two-triangle patch at the center of each cell the surface crosses.
func gyroidPatches(p params.GyroidPlan) *kernel.Mesh {
	n := p.Resolution
	step := p.Step()
	half := p.Size / 2
	s := step * 0.4

	m := kernel.NewMesh(n * n * 2)
	for xi := 0; xi < n; xi++ {
		for yi := 0; yi < n; yi++ {
			for zi := 0; zi < n; zi++ {
				x := float64(xi)*step - half
				y := float64(yi)*step - half
				z := float64(zi)*step - half
				if !GyroidCell(x, y, z, step, p.Frequency) {
					continue
				}

				cx, cy, cz := x+step/2, y+step/2, z+step/2
				apex := kernel.V(cx, cy+s, cz+s)
				m.AddTriangle(kernel.V(cx-s, cy, cz-s), kernel.V(cx+s, cy, cz-s), apex)
				m.AddTriangle(kernel.V(cx+s, cy, cz-s), kernel.V(cx+s, cy, cz+s), apex)
			}
		}
	}
	return m
}

// gyroidShell polygonizes a wall around the surface. The marching grid
// tracks the plan resolution so denser plans still produce finer meshes.
func gyroidShell(p params.GyroidPlan, o Options) (*kernel.Mesh, error) {
	cells := o.MarchingCells
	if cells <= 0 {
		cells = 4 * p.Resolution
	}
	if cells > MaxMarchingCells {
		cells = MaxMarchingCells
	}

	shell, err := sdfx.NewGyroidShell(p.Size, p.Frequency, p.Step()/2)
	if err != nil {
		return nil, fmt.Errorf("gyroid: %w", err)
	}
	return sdfx.ToMesh(shell, cells)
}
