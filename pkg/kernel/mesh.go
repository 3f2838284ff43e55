package kernel

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is a flat-shaded triangle mesh. Every triangle owns its three
// vertex slots (no sharing between faces), each carrying the face normal.
// Vertices and Normals are index-aligned; Indices has 3 entries per
// triangle in counter-clockwise order seen from the outward face.
//
// A Mesh is append-only while a generator builds it and is treated as
// immutable afterwards.
type Mesh struct {
	Vertices []Vec3   `json:"vertices"`
	Normals  []Vec3   `json:"normals"`
	Indices  []uint32 `json:"indices"`

	degenerate int
}

// NewMesh returns an empty mesh with room for the given number of triangles.
func NewMesh(triangles int) *Mesh {
	return &Mesh{
		Vertices: make([]Vec3, 0, triangles*3),
		Normals:  make([]Vec3, 0, triangles*3),
		Indices:  make([]uint32, 0, triangles*3),
	}
}

// AddTriangle appends three new vertices with a shared flat normal and
// three sequential indices. A zero-area triangle is kept with a zero
// normal and counted in Degenerate.
func (m *Mesh) AddTriangle(a, b, c Vec3) {
	n := Cross(r3.Sub(b, a), r3.Sub(c, a))
	if Length(n) < epsilon {
		m.degenerate++
		n = Vec3{}
	} else {
		n = Normalize(n)
	}
	base := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, a, b, c)
	m.Normals = append(m.Normals, n, n, n)
	m.Indices = append(m.Indices, base, base+1, base+2)
}

// AddQuad appends the quad a-b-c-d as the triangles (a,b,d) and (b,c,d).
func (m *Mesh) AddQuad(a, b, c, d Vec3) {
	m.AddTriangle(a, b, d)
	m.AddTriangle(b, c, d)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Degenerate returns how many zero-area triangles were appended.
func (m *Mesh) Degenerate() int {
	return m.degenerate
}

// Triangle returns the corner positions and normal of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c, normal Vec3) {
	i0, i1, i2 := m.Indices[3*i], m.Indices[3*i+1], m.Indices[3*i+2]
	return m.Vertices[i0], m.Vertices[i1], m.Vertices[i2], m.Normals[i0]
}

// Bounds returns the axis-aligned bounding box. An empty mesh reports a
// zero box.
func (m *Mesh) Bounds() (min, max Vec3) {
	if len(m.Vertices) == 0 {
		return Vec3{}, Vec3{}
	}
	min = V(math.Inf(1), math.Inf(1), math.Inf(1))
	max = V(math.Inf(-1), math.Inf(-1), math.Inf(-1))
	for _, v := range m.Vertices {
		min.X, max.X = math.Min(min.X, v.X), math.Max(max.X, v.X)
		min.Y, max.Y = math.Min(min.Y, v.Y), math.Max(max.Y, v.Y)
		min.Z, max.Z = math.Min(min.Z, v.Z), math.Max(max.Z, v.Z)
	}
	return min, max
}

// SurfaceArea returns the summed area of all triangles.
func (m *Mesh) SurfaceArea() float64 {
	var area float64
	for i := 0; i < m.TriangleCount(); i++ {
		a, b, c, _ := m.Triangle(i)
		area += 0.5 * Length(Cross(r3.Sub(b, a), r3.Sub(c, a)))
	}
	return area
}
