package mesh

import (
	"fmt"

	"github.com/chazu/talus/pkg/kernel"
	"github.com/go-gl/mathgl/mgl64"
)

// FromFlat interns every corner of a flat mesh into store and returns the
// linked Mesh. Triangles that collapse once their corners are merged are
// dropped.
func FromFlat(store *VertexStore, fm *kernel.Mesh) (*Mesh, error) {
	if len(fm.Vertices)%3 != 0 {
		return nil, fmt.Errorf("mesh: flat vertex array length %d is not a multiple of 3", len(fm.Vertices))
	}
	if len(fm.Indices)%3 != 0 {
		return nil, fmt.Errorf("mesh: flat index array length %d is not a multiple of 3", len(fm.Indices))
	}

	nv := uint32(fm.VertexCount())
	ids := make([]VertexID, nv)
	for i := uint32(0); i < nv; i++ {
		p := mgl64.Vec3{
			float64(fm.Vertices[3*i]),
			float64(fm.Vertices[3*i+1]),
			float64(fm.Vertices[3*i+2]),
		}
		ids[i] = store.Intern(p)
	}

	m := New(store)
	for t := 0; t < fm.TriangleCount(); t++ {
		var v [3]VertexID
		for j := 0; j < 3; j++ {
			idx := fm.Indices[3*t+j]
			if idx >= nv {
				return nil, fmt.Errorf("mesh: triangle %d references vertex %d of %d", t, idx, nv)
			}
			v[j] = ids[idx]
		}
		if v[0] == v[1] || v[1] == v[2] || v[2] == v[0] {
			continue
		}
		m.AddTriangle(v[0], v[1], v[2])
	}

	if err := m.BuildAdjacency(); err != nil {
		return nil, fmt.Errorf("mesh: linking flat mesh: %w", err)
	}
	return m, nil
}

// Flatten converts m into the flat exchange format. Only referenced vertices
// are emitted, renumbered in ascending VertexID order, each with its smooth
// vertex normal (zero where none can be computed).
func (m *Mesh) Flatten(name string) *kernel.Mesh {
	ids := m.VertexIDs()
	normals := m.VertexNormals()
	index := make(map[VertexID]uint32, len(ids))

	out := &kernel.Mesh{
		Vertices: make([]float32, 0, len(ids)*3),
		Normals:  make([]float32, 0, len(ids)*3),
		Indices:  make([]uint32, 0, len(m.Triangles)*3),
		PartName: name,
	}
	for i, id := range ids {
		index[id] = uint32(i)
		p := m.Store.Position(id)
		out.Vertices = append(out.Vertices, float32(p[0]), float32(p[1]), float32(p[2]))
		n := normals[id]
		if IsDegenerate(n) {
			n = mgl64.Vec3{}
		}
		out.Normals = append(out.Normals, float32(n[0]), float32(n[1]), float32(n[2]))
	}
	for t := range m.Triangles {
		for _, v := range m.Triangles[t].V {
			out.Indices = append(out.Indices, index[v])
		}
	}
	return out
}
