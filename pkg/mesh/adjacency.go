package mesh

// EdgeKey is the direction-independent identity of an edge.
type EdgeKey struct {
	Lo, Hi VertexID
}

// MakeEdgeKey returns the canonical key of the edge joining a and b.
func MakeEdgeKey(a, b VertexID) EdgeKey {
	if a > b {
		a, b = b, a
	}
	return EdgeKey{Lo: a, Hi: b}
}

// Corner is a (triangle, corner index) back-reference.
type Corner struct {
	Triangle TriangleID
	Index    int
}

// Incidence returns, for every vertex of the store, the corners that
// reference it. Vertices not used by the mesh get an empty list.
func (m *Mesh) Incidence() [][]Corner {
	inc := make([][]Corner, m.Store.Len())
	for t := range m.Triangles {
		for i, v := range m.Triangles[t].V {
			inc[v] = append(inc[v], Corner{Triangle: TriangleID(t), Index: i})
		}
	}
	return inc
}

// BuildAdjacency recomputes every Adj slot from shared edges. An edge used by
// exactly one triangle becomes a boundary (None); an edge used by more than
// two is reported as a NonManifoldEdgeError and leaves the mesh unlinked.
func (m *Mesh) BuildAdjacency() error {
	slots := make(map[EdgeKey][]Corner, len(m.Triangles)*3/2)
	for t := range m.Triangles {
		tri := &m.Triangles[t]
		for i := 0; i < 3; i++ {
			tri.Adj[i] = None
			k := MakeEdgeKey(tri.V[i], tri.V[(i+1)%3])
			slots[k] = append(slots[k], Corner{Triangle: TriangleID(t), Index: i})
		}
	}

	for t := range m.Triangles {
		tri := &m.Triangles[t]
		for i := 0; i < 3; i++ {
			k := MakeEdgeKey(tri.V[i], tri.V[(i+1)%3])
			users := slots[k]
			if len(users) > 2 {
				m.clearAdjacency()
				return &NonManifoldEdgeError{Edge: [2]VertexID{k.Lo, k.Hi}, Count: len(users)}
			}
		}
	}

	for _, users := range slots {
		if len(users) == 2 {
			a, b := users[0], users[1]
			m.Link(a.Triangle, a.Index, b.Triangle, b.Index)
		}
	}
	return nil
}

func (m *Mesh) clearAdjacency() {
	for t := range m.Triangles {
		m.Triangles[t].Adj = [3]TriangleID{None, None, None}
	}
}
