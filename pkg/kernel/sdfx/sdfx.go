// Package sdfx polygonizes implicit surfaces into kernel meshes using the
// github.com/deadsy/sdfx SDF library and its marching cubes renderer.
package sdfx

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/biomimic/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ sdf.SDF3 = (*GyroidShell)(nil)

// DefaultMeshCells is the marching cubes resolution along the longest
// bounding box axis when the caller passes zero.
const DefaultMeshCells = 64

// GyroidValue evaluates sin(ωx)cos(ωy) + sin(ωy)cos(ωz) + sin(ωz)cos(ωx).
// The gyroid surface is its zero set.
func GyroidValue(x, y, z, omega float64) float64 {
	return math.Sin(omega*x)*math.Cos(omega*y) +
		math.Sin(omega*y)*math.Cos(omega*z) +
		math.Sin(omega*z)*math.Cos(omega*x)
}

// GyroidShell is a thin solid wall of half-thickness Thickness around the
// gyroid surface. |f|/ω approximates the distance to the surface, which is
// close enough for marching cubes.
type GyroidShell struct {
	Frequency float64
	Thickness float64
	bb        sdf.Box3
}

// NewGyroidShell returns the shell clipped to a cube of edge size centered
// on the origin.
func NewGyroidShell(size, frequency, thickness float64) (sdf.SDF3, error) {
	if size <= 0 {
		return nil, fmt.Errorf("gyroid shell: size %v must be positive", size)
	}
	if frequency <= 0 || thickness <= 0 {
		return nil, errors.New("gyroid shell: frequency and thickness must be positive")
	}

	half := size / 2
	shell := &GyroidShell{
		Frequency: frequency,
		Thickness: thickness,
		bb:        sdf.Box3{Min: v3.Vec{X: -half, Y: -half, Z: -half}, Max: v3.Vec{X: half, Y: half, Z: half}},
	}

	box, err := sdf.Box3D(v3.Vec{X: size, Y: size, Z: size}, 0)
	if err != nil {
		return nil, fmt.Errorf("gyroid shell: %w", err)
	}
	return sdf.Intersect3D(shell, box), nil
}

// Evaluate returns the signed distance estimate at p.
func (g *GyroidShell) Evaluate(p v3.Vec) float64 {
	f := GyroidValue(p.X, p.Y, p.Z, g.Frequency)
	return math.Abs(f)/g.Frequency - g.Thickness
}

// BoundingBox returns the clipping cube.
func (g *GyroidShell) BoundingBox() sdf.Box3 {
	return g.bb
}

// ToMesh polygonizes s with uniform marching cubes of the given cell count
// along the longest axis. Triangle normals are recomputed from the winding,
// so zero-area triangles from the renderer land in the mesh's degenerate
// count.
func ToMesh(s sdf.SDF3, cells int) (*kernel.Mesh, error) {
	if s == nil {
		return nil, errors.New("sdfx: nil SDF")
	}
	if cells <= 0 {
		cells = DefaultMeshCells
	}

	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s, renderer)

	m := kernel.NewMesh(len(triangles))
	for _, tri := range triangles {
		m.AddTriangle(toVec(tri[0]), toVec(tri[1]), toVec(tri[2]))
	}
	return m, nil
}

func toVec(v v3.Vec) kernel.Vec3 {
	return kernel.V(v.X, v.Y, v.Z)
}
