package kernel

import "gonum.org/v1/gonum/spatial/r3"

// AddPrism extrudes a closed polygon lying in the X-Z plane into a prism
// of the given height centered vertically on center.Y. The outline must be
// ordered by increasing angle from +X toward +Z (the order Ring produces
// with axes +X, +Z) and be star-shaped around center, since the caps are
// fans. Each polygon edge contributes 4 triangles: one top, one bottom,
// two side, all wound counter-clockwise seen from outside.
func (m *Mesh) AddPrism(center Vec3, outline []Vec3, height float64) {
	top := center.Y + height/2
	bottom := center.Y - height/2
	ct := V(center.X, top, center.Z)
	cb := V(center.X, bottom, center.Z)

	n := len(outline)
	for i := 0; i < n; i++ {
		next := (i + 1) % n
		pt := V(outline[i].X, top, outline[i].Z)
		pb := V(outline[i].X, bottom, outline[i].Z)
		qt := V(outline[next].X, top, outline[next].Z)
		qb := V(outline[next].X, bottom, outline[next].Z)

		m.AddTriangle(ct, qt, pt)
		m.AddTriangle(cb, pb, qb)
		m.AddTriangle(pb, pt, qb)
		m.AddTriangle(qb, pt, qt)
	}
}

// AddCylinder emits a closed cylinder of the given radius from start to
// end with segments sides: 2 triangles per side plus one fan triangle per
// side on each end cap.
func (m *Mesh) AddCylinder(start, end Vec3, radius float64, segments int) {
	u, w := Basis(r3.Sub(end, start))
	s := Ring(start, u, w, radius, segments)
	e := Ring(end, u, w, radius, segments)

	for i := 0; i < segments; i++ {
		next := (i + 1) % segments
		m.AddTriangle(s[i], s[next], e[i])
		m.AddTriangle(s[next], e[next], e[i])
		m.AddTriangle(start, s[next], s[i])
		m.AddTriangle(end, e[i], e[next])
	}
}

// StitchRings joins two rings with the same point count into a band of
// quads, two triangles per side. Nothing is added if the counts differ.
func (m *Mesh) StitchRings(prev, cur []Vec3) {
	if len(prev) != len(cur) {
		return
	}
	n := len(cur)
	for j := 0; j < n; j++ {
		next := (j + 1) % n
		m.AddTriangle(prev[j], prev[next], cur[j])
		m.AddTriangle(prev[next], cur[next], cur[j])
	}
}
