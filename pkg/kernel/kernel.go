// Package kernel holds the geometry primitives shared by every pattern
// generator: vector helpers over gonum's r3.Vec, the append-only triangle
// Mesh accumulator, and the small solid builders (polygon prisms and
// tapered tubes) the generators compose meshes from.
package kernel

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a 3D position, normal or offset.
type Vec3 = r3.Vec

// epsilon is the length below which a vector is treated as zero.
const epsilon = 1e-9

// V is shorthand for constructing a Vec3.
func V(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Length returns the Euclidean length of v.
func Length(v Vec3) float64 {
	return r3.Norm(v)
}

// Normalize returns v scaled to unit length. The zero vector is returned
// unchanged rather than producing NaNs.
func Normalize(v Vec3) Vec3 {
	l := r3.Norm(v)
	if l < epsilon {
		return Vec3{}
	}
	return r3.Scale(1/l, v)
}

// Cross returns a × b.
func Cross(a, b Vec3) Vec3 {
	return r3.Cross(a, b)
}

// Distance returns |b - a|.
func Distance(a, b Vec3) float64 {
	return r3.Norm(r3.Sub(b, a))
}

// Basis returns two unit vectors perpendicular to dir and to each other.
// The first axis is dir × +Y; when dir is (nearly) vertical that product
// collapses, so +X is substituted.
func Basis(dir Vec3) (u, w Vec3) {
	d := Normalize(dir)
	u = Cross(d, V(0, 1, 0))
	if Length(u) < 0.001 {
		u = Cross(d, V(1, 0, 0))
	}
	u = Normalize(u)
	w = Cross(d, u)
	return u, w
}

// Ring returns n points on a circle of the given radius around center,
// lying in the plane spanned by the unit axes u and w.
func Ring(center, u, w Vec3, radius float64, n int) []Vec3 {
	pts := make([]Vec3, n)
	for i := 0; i < n; i++ {
		a := float64(i) * 2 * math.Pi / float64(n)
		off := r3.Add(r3.Scale(math.Cos(a), u), r3.Scale(math.Sin(a), w))
		pts[i] = r3.Add(center, r3.Scale(radius, off))
	}
	return pts
}
