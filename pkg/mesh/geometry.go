package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"
)

// degenerateSine is the smallest |sin| of a corner angle for which a triangle
// still gets a normal.
const degenerateSine = 1e-10

// Normal returns the unit outward normal of triangle t, computed from the
// cross product of its first two edge vectors. Degenerate (near-collinear)
// triangles yield a NaN vector; use IsDegenerate before relying on it.
func (m *Mesh) Normal(t TriangleID) mgl64.Vec3 {
	c := m.Corners(t)
	return FaceNormal(c[0], c[1], c[2])
}

// FaceNormal returns the unit normal of the counter-clockwise triangle
// (a, b, c), or a NaN vector when the triangle is degenerate.
func FaceNormal(a, b, c mgl64.Vec3) mgl64.Vec3 {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	n := e1.Cross(e2)
	l := n.Len()
	if l == 0 || l <= degenerateSine*e1.Len()*e2.Len() {
		nan := math.NaN()
		return mgl64.Vec3{nan, nan, nan}
	}
	return n.Mul(1 / l)
}

// IsDegenerate reports whether n is unusable as a normal.
func IsDegenerate(n mgl64.Vec3) bool {
	return math.IsNaN(n[0]) || math.IsNaN(n[1]) || math.IsNaN(n[2]) ||
		math.IsInf(n[0], 0) || math.IsInf(n[1], 0) || math.IsInf(n[2], 0) ||
		n.LenSqr() == 0
}

// Area returns the area of triangle t using Heron's formula.
func (m *Mesh) Area(t TriangleID) float64 {
	c := m.Corners(t)
	return HeronArea(c[0], c[1], c[2])
}

// HeronArea returns the area of the triangle (a, b, c) from its edge lengths.
func HeronArea(a, b, c mgl64.Vec3) float64 {
	la := b.Sub(a).Len()
	lb := c.Sub(b).Len()
	lc := a.Sub(c).Len()
	s := (la + lb + lc) / 2
	q := s * (s - la) * (s - lb) * (s - lc)
	if q <= 0 {
		return 0
	}
	return math.Sqrt(q)
}

// SurfaceArea returns the summed area of all triangles.
func (m *Mesh) SurfaceArea() float64 {
	return lo.Sum(lo.Times(len(m.Triangles), func(i int) float64 {
		return m.Area(TriangleID(i))
	}))
}

// TriangleCentroid returns the mean of the three corners of t.
func (m *Mesh) TriangleCentroid(t TriangleID) mgl64.Vec3 {
	c := m.Corners(t)
	return c[0].Add(c[1]).Add(c[2]).Mul(1.0 / 3)
}

// Centroid returns the mean position of the vertices referenced by the mesh.
func (m *Mesh) Centroid() mgl64.Vec3 {
	ids := m.VertexIDs()
	var sum mgl64.Vec3
	if len(ids) == 0 {
		return sum
	}
	for _, id := range ids {
		sum = sum.Add(m.Store.Position(id))
	}
	return sum.Mul(1 / float64(len(ids)))
}

// Bounds returns the axis-aligned bounding box of the referenced vertices.
func (m *Mesh) Bounds() (lower, upper mgl64.Vec3) {
	ids := m.VertexIDs()
	points := make([]mgl64.Vec3, len(ids))
	for i, id := range ids {
		points[i] = m.Store.Position(id)
	}
	return boundsOf(points)
}
