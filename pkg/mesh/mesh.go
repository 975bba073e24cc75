package mesh

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"
)

// TriangleID identifies a triangle inside one Mesh.
type TriangleID int

// None marks a missing triangle reference (a boundary edge in Adj).
const None TriangleID = -1

// NormalID identifies an entry of Mesh.Normals.
type NormalID int

// NoNormal marks an unset per-corner normal reference.
const NoNormal NormalID = -1

// Triangle is one face of a Mesh.
type Triangle struct {
	V          [3]VertexID   // corners, counter-clockwise from outside
	N          [3]NormalID   // per-corner normals, NoNormal when unset
	Adj        [3]TriangleID // Adj[i] shares edge (V[i], V[(i+1)%3])
	Splittable bool
}

// Mesh is a triangle arena over a shared VertexStore.
// Hull and subdivision passes never mutate their input triangles; they return
// a new Mesh over the same store.
type Mesh struct {
	Store     *VertexStore
	Normals   []mgl64.Vec3
	Triangles []Triangle
}

// New returns an empty mesh over store.
func New(store *VertexStore) *Mesh {
	return &Mesh{Store: store}
}

// Clone returns a copy of m with its own triangle and normal slices over the
// same store.
func (m *Mesh) Clone() *Mesh {
	return &Mesh{
		Store:     m.Store,
		Normals:   append([]mgl64.Vec3(nil), m.Normals...),
		Triangles: append([]Triangle(nil), m.Triangles...),
	}
}

// Len returns the number of triangles.
func (m *Mesh) Len() int {
	return len(m.Triangles)
}

// IsEmpty reports whether the mesh has no triangles.
func (m *Mesh) IsEmpty() bool {
	return len(m.Triangles) == 0
}

// AddTriangle appends an unlinked triangle (a, b, c) and returns its ID.
func (m *Mesh) AddTriangle(a, b, c VertexID) TriangleID {
	id := TriangleID(len(m.Triangles))
	m.Triangles = append(m.Triangles, Triangle{
		V:   [3]VertexID{a, b, c},
		N:   [3]NormalID{NoNormal, NoNormal, NoNormal},
		Adj: [3]TriangleID{None, None, None},
	})
	return id
}

// Triangle returns a pointer to triangle id. The pointer is invalidated by
// the next AddTriangle.
func (m *Mesh) Triangle(id TriangleID) *Triangle {
	return &m.Triangles[id]
}

// Position returns the position of vertex v.
func (m *Mesh) Position(v VertexID) mgl64.Vec3 {
	return m.Store.Position(v)
}

// Corners returns the three corner positions of triangle t.
func (m *Mesh) Corners(t TriangleID) [3]mgl64.Vec3 {
	tri := &m.Triangles[t]
	return [3]mgl64.Vec3{
		m.Store.Position(tri.V[0]),
		m.Store.Position(tri.V[1]),
		m.Store.Position(tri.V[2]),
	}
}

// Edge returns the directed edge i of triangle t.
func (m *Mesh) Edge(t TriangleID, i int) (VertexID, VertexID) {
	tri := &m.Triangles[t]
	return tri.V[i], tri.V[(i+1)%3]
}

// EdgeSlot returns the index of the edge of t joining a and b in either
// direction, or -1 when t has no such edge.
func (m *Mesh) EdgeSlot(t TriangleID, a, b VertexID) int {
	return edgeSlot(&m.Triangles[t], a, b)
}

func edgeSlot(tri *Triangle, a, b VertexID) int {
	for i := 0; i < 3; i++ {
		u, v := tri.V[i], tri.V[(i+1)%3]
		if (u == a && v == b) || (u == b && v == a) {
			return i
		}
	}
	return -1
}

// SetAdjacent sets one side of an adjacency link.
func (m *Mesh) SetAdjacent(t TriangleID, i int, u TriangleID) {
	m.Triangles[t].Adj[i] = u
}

// Link joins edge i of t and edge j of u in both directions.
func (m *Mesh) Link(t TriangleID, i int, u TriangleID, j int) {
	m.Triangles[t].Adj[i] = u
	m.Triangles[u].Adj[j] = t
}

// VertexIDs returns the vertices referenced by at least one triangle, in
// ascending order.
func (m *Mesh) VertexIDs() []VertexID {
	ids := make([]VertexID, 0, len(m.Triangles)*3)
	for i := range m.Triangles {
		ids = append(ids, m.Triangles[i].V[:]...)
	}
	ids = lo.Uniq(ids)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// BoundaryEdges returns the number of triangle edges without a neighbour.
func (m *Mesh) BoundaryEdges() int {
	n := 0
	for i := range m.Triangles {
		for _, a := range m.Triangles[i].Adj {
			if a == None {
				n++
			}
		}
	}
	return n
}

// SplittableCount returns how many triangles carry the Splittable flag.
func (m *Mesh) SplittableCount() int {
	return lo.CountBy(m.Triangles, func(t Triangle) bool { return t.Splittable })
}
