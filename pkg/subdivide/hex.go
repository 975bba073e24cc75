package subdivide

import (
	"github.com/chazu/talus/pkg/mesh"
)

// hexPass fans every splittable triangle around a new centroid vertex. An
// edge shared by two consistently wound splittable triangles is flipped so
// that it joins their centroids; any other edge is kept.
// Unsplittable triangles pass through unchanged.
func (s *Subdivider) hexPass(m *mesh.Mesh) (*mesh.Mesh, error) {
	centers := make([]mesh.VertexID, len(m.Triangles))
	for t := range m.Triangles {
		centers[t] = mesh.NoVertex
		if m.Triangles[t].Splittable {
			centers[t] = m.Store.Intern(m.TriangleCentroid(mesh.TriangleID(t)))
		}
	}

	out := mesh.New(m.Store)
	children := make([][]mesh.TriangleID, len(m.Triangles))
	none := [3]mesh.VertexID{mesh.NoVertex, mesh.NoVertex, mesh.NoVertex}
	edgeMids := make([][3]mesh.VertexID, len(m.Triangles))
	for t := range m.Triangles {
		edgeMids[t] = none
		tri := &m.Triangles[t]
		cp := centers[t]
		if cp == mesh.NoVertex {
			children[t] = []mesh.TriangleID{out.AddTriangle(tri.V[0], tri.V[1], tri.V[2])}
			continue
		}
		for i := 0; i < 3; i++ {
			a, b := m.Edge(mesh.TriangleID(t), i)
			q := tri.Adj[i]
			if q != mesh.None && centers[q] != mesh.NoVertex && opposed(m, mesh.TriangleID(q), a, b) {
				// This side emits the half of the flipped quad (a, cq, b, cp)
				// that contains a; the neighbour emits the half containing b.
				children[t] = append(children[t], out.AddTriangle(a, centers[q], cp))
				continue
			}
			children[t] = append(children[t], out.AddTriangle(a, b, cp))
		}
	}

	if err := stitch(m, out, children, edgeMids); err != nil {
		return nil, err
	}
	return out, nil
}

// opposed reports whether triangle q runs the edge (a, b) as (b, a), that is
// whether q is wound consistently with the triangle holding (a, b).
func opposed(m *mesh.Mesh, q mesh.TriangleID, a, b mesh.VertexID) bool {
	j := m.EdgeSlot(q, a, b)
	return j >= 0 && m.Triangles[q].V[j] == b
}
