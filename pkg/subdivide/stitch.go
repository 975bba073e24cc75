package subdivide

import (
	"github.com/chazu/talus/pkg/mesh"
)

// stitch links the children in out. Every child edge is matched against the
// opposite directed edge among its siblings and the children of its parent's
// neighbours. A neighbour wound the other way round carries the same
// directed edge, so children of neighbours also match in that direction. An
// unmatched edge is a boundary only when it lies on a parent boundary edge;
// anywhere else the adjacency is broken.
//
// edgeMids holds, per parent and parent edge, the vertex deposited on it or
// NoVertex.
func stitch(m, out *mesh.Mesh, children [][]mesh.TriangleID, edgeMids [][3]mesh.VertexID) error {
	candidates := make([]mesh.TriangleID, 0, 16)
	for p := range m.Triangles {
		parent := &m.Triangles[p]

		candidates = append(candidates[:0], children[p]...)
		for _, q := range parent.Adj {
			if q != mesh.None {
				candidates = append(candidates, children[q]...)
			}
		}
		neighbours := candidates[len(children[p]):]

		for _, c := range children[p] {
			for j := 0; j < 3; j++ {
				x, y := out.Edge(c, j)
				if u := partner(out, candidates, c, y, x); u != mesh.None {
					out.SetAdjacent(c, j, u)
					continue
				}
				if u := partner(out, neighbours, c, x, y); u != mesh.None {
					out.SetAdjacent(c, j, u)
					continue
				}
				i := parentEdge(parent.V, edgeMids[p], x, y)
				if i < 0 || parent.Adj[i] != mesh.None {
					return &mesh.AdjacencyNotFoundError{
						Triangle: mesh.TriangleID(p),
						Edge:     [2]mesh.VertexID{x, y},
						Op:       op,
					}
				}
				out.SetAdjacent(c, j, mesh.None)
			}
		}
	}
	return nil
}

// partner returns the candidate other than self holding the directed edge
// (x, y), or None.
func partner(out *mesh.Mesh, candidates []mesh.TriangleID, self mesh.TriangleID, x, y mesh.VertexID) mesh.TriangleID {
	for _, u := range candidates {
		if u == self {
			continue
		}
		v := out.Triangles[u].V
		for k := 0; k < 3; k++ {
			if v[k] == x && v[(k+1)%3] == y {
				return u
			}
		}
	}
	return mesh.None
}

// parentEdge returns the parent edge the child edge (x, y) lies on, or -1.
func parentEdge(v [3]mesh.VertexID, em [3]mesh.VertexID, x, y mesh.VertexID) int {
	for i := 0; i < 3; i++ {
		on := func(w mesh.VertexID) bool {
			return w == v[i] || w == v[(i+1)%3] || (em[i] != mesh.NoVertex && w == em[i])
		}
		if on(x) && on(y) {
			return i
		}
	}
	return -1
}
