// Package render converts engine meshes to the flat buffers a GPU viewer
// consumes. It performs no drawing itself.
package render

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/chazu/biomimic/pkg/kernel"
)

// Material is the surface appearance a viewer should apply.
type Material struct {
	Color       string `json:"color"`
	Emission    string `json:"emission"`
	Wireframe   bool   `json:"wireframe"`
	DoubleSided bool   `json:"doubleSided"`
}

// DefaultMaterial is the phosphor green wireframe look.
var DefaultMaterial = Material{
	Color:       "#00FF66",
	Emission:    "#008033",
	Wireframe:   true,
	DoubleSided: true,
}

// Geometry is the JSON-serializable mesh format sent to viewers. Vertices
// and Normals hold 3 floats per vertex.
type Geometry struct {
	Name     string     `json:"name"`
	Vertices []float32  `json:"vertices"`
	Normals  []float32  `json:"normals"`
	Indices  []uint32   `json:"indices"`
	Material Material   `json:"material"`
	Min      mgl32.Vec3 `json:"min"`
	Max      mgl32.Vec3 `json:"max"`
	// Model scales and centers the mesh into the unit cube around the origin.
	Model mgl32.Mat4 `json:"model"`
}

// FromMesh flattens m with the default material.
func FromMesh(m *kernel.Mesh, name string) Geometry {
	g := Geometry{
		Name:     name,
		Vertices: make([]float32, 0, len(m.Vertices)*3),
		Normals:  make([]float32, 0, len(m.Normals)*3),
		Indices:  append([]uint32(nil), m.Indices...),
		Material: DefaultMaterial,
	}
	for _, v := range m.Vertices {
		g.Vertices = append(g.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
	}
	for _, n := range m.Normals {
		g.Normals = append(g.Normals, float32(n.X), float32(n.Y), float32(n.Z))
	}
	lo, hi := m.Bounds()
	g.Min = vec(lo)
	g.Max = vec(hi)
	g.Model = FitMatrix(g.Min, g.Max)
	return g
}

func vec(v kernel.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

// FitMatrix returns the transform that moves the box center to the origin
// and scales its largest extent to 1. A flat or empty box is only centered.
func FitMatrix(min, max mgl32.Vec3) mgl32.Mat4 {
	center := min.Add(max).Mul(0.5)
	size := max.Sub(min)
	extent := size[0]
	for _, s := range size[1:] {
		if s > extent {
			extent = s
		}
	}
	scale := float32(1)
	if extent > 1e-6 {
		scale = 1 / extent
	}
	return mgl32.Scale3D(scale, scale, scale).
		Mul4(mgl32.Translate3D(-center[0], -center[1], -center[2]))
}
