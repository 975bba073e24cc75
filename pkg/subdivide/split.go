package subdivide

import (
	"github.com/chazu/talus/pkg/mesh"
)

// quadPass splits every splittable triangle into four and every other
// triangle according to the midpoints its splittable neighbours deposited
// on their shared edges.
func (s *Subdivider) quadPass(m *mesh.Mesh) (*mesh.Mesh, error) {
	mids, err := s.deposit(m)
	if err != nil {
		return nil, err
	}

	out := mesh.New(m.Store)
	children := make([][]mesh.TriangleID, len(m.Triangles))
	edgeMids := make([][3]mesh.VertexID, len(m.Triangles))
	for t := range m.Triangles {
		var em [3]mesh.VertexID
		for i := 0; i < 3; i++ {
			a, b := m.Edge(mesh.TriangleID(t), i)
			if v, ok := mids[mesh.MakeEdgeKey(a, b)]; ok {
				em[i] = v
			} else {
				em[i] = mesh.NoVertex
			}
		}
		edgeMids[t] = em
		children[t] = emitQuad(out, m.Triangles[t].V, em)
	}

	if err := stitch(m, out, children, edgeMids); err != nil {
		return nil, err
	}
	return out, nil
}

// deposit places one vertex on every edge of every splittable triangle,
// visiting triangles in order and edges 0..2.
func (s *Subdivider) deposit(m *mesh.Mesh) (map[mesh.EdgeKey]mesh.VertexID, error) {
	mids := make(map[mesh.EdgeKey]mesh.VertexID)
	for t := range m.Triangles {
		if !m.Triangles[t].Splittable {
			continue
		}
		for i := 0; i < 3; i++ {
			a, b := m.Edge(mesh.TriangleID(t), i)
			k := mesh.MakeEdgeKey(a, b)
			if _, ok := mids[k]; ok {
				continue
			}
			v, err := s.midpoint(m, mesh.TriangleID(t), i)
			if err != nil {
				return nil, err
			}
			mids[k] = v
		}
	}
	return mids, nil
}

// emitQuad appends the children of triangle v given the midpoint on each of
// its edges (NoVertex where none) and returns their IDs.
func emitQuad(out *mesh.Mesh, v [3]mesh.VertexID, em [3]mesh.VertexID) []mesh.TriangleID {
	var have []int
	for i, x := range em {
		if x != mesh.NoVertex {
			have = append(have, i)
		}
	}

	switch len(have) {
	case 0:
		return []mesh.TriangleID{out.AddTriangle(v[0], v[1], v[2])}

	case 1:
		// Rotate so the split edge is (a, b).
		r := have[0]
		a, b, c := v[r], v[(r+1)%3], v[(r+2)%3]
		m := em[r]
		return []mesh.TriangleID{
			out.AddTriangle(a, m, c),
			out.AddTriangle(m, b, c),
		}

	case 2:
		// Rotate so the unsplit edge is (c, a).
		missing := 3 - have[0] - have[1]
		r := (missing + 1) % 3
		a, b, c := v[r], v[(r+1)%3], v[(r+2)%3]
		m1, m2 := em[r], em[(r+1)%3]
		ids := []mesh.TriangleID{out.AddTriangle(m1, b, m2)}
		// Cut the quad (a, m1, m2, c) along its shorter diagonal.
		pa, pc := out.Position(a), out.Position(c)
		pm1, pm2 := out.Position(m1), out.Position(m2)
		if pm2.Sub(pa).LenSqr() <= pc.Sub(pm1).LenSqr() {
			ids = append(ids,
				out.AddTriangle(a, m1, m2),
				out.AddTriangle(a, m2, c))
		} else {
			ids = append(ids,
				out.AddTriangle(a, m1, c),
				out.AddTriangle(m1, m2, c))
		}
		return ids

	default:
		a, b, c := v[0], v[1], v[2]
		mab, mbc, mca := em[0], em[1], em[2]
		return []mesh.TriangleID{
			out.AddTriangle(a, mab, mca),
			out.AddTriangle(mab, b, mbc),
			out.AddTriangle(mca, mbc, c),
			out.AddTriangle(mab, mbc, mca),
		}
	}
}
