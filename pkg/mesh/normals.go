package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// VertexNormals returns an area-weighted normal for every vertex of the
// store, indexed by VertexID. Degenerate faces do not contribute; vertices
// with no usable incident face get a NaN vector.
func (m *Mesh) VertexNormals() []mgl64.Vec3 {
	sums := make([]mgl64.Vec3, m.Store.Len())
	for t := range m.Triangles {
		c := m.Corners(TriangleID(t))
		// The unnormalised cross product has length 2*area.
		n := c[1].Sub(c[0]).Cross(c[2].Sub(c[0]))
		if IsDegenerate(FaceNormal(c[0], c[1], c[2])) {
			continue
		}
		for _, v := range m.Triangles[t].V {
			sums[v] = sums[v].Add(n)
		}
	}

	nan := math.NaN()
	for i, s := range sums {
		l := s.Len()
		if l == 0 {
			sums[i] = mgl64.Vec3{nan, nan, nan}
			continue
		}
		sums[i] = s.Mul(1 / l)
	}
	return sums
}

// AssignVertexNormals replaces Normals with one smooth normal per referenced
// vertex and points every corner's N at it.
func (m *Mesh) AssignVertexNormals() {
	vn := m.VertexNormals()
	index := make(map[VertexID]NormalID)
	m.Normals = m.Normals[:0]
	for _, v := range m.VertexIDs() {
		index[v] = NormalID(len(m.Normals))
		m.Normals = append(m.Normals, vn[v])
	}
	for t := range m.Triangles {
		tri := &m.Triangles[t]
		for i, v := range tri.V {
			tri.N[i] = index[v]
		}
	}
}

// CornerNormal returns the normal referenced by corner i of t, or a NaN
// vector when the corner has none.
func (m *Mesh) CornerNormal(t TriangleID, i int) mgl64.Vec3 {
	n := m.Triangles[t].N[i]
	if n == NoNormal || int(n) >= len(m.Normals) {
		nan := math.NaN()
		return mgl64.Vec3{nan, nan, nan}
	}
	return m.Normals[n]
}
