package subdivide

import (
	"testing"

	"github.com/chazu/talus/pkg/hull"
	"github.com/chazu/talus/pkg/mesh"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
)

// octahedron returns the closed unit octahedron (V=6, E=12, F=8).
func octahedron(t *testing.T) *mesh.Mesh {
	t.Helper()
	pts := []mgl64.Vec3{
		{1, 0, 0}, {-1, 0, 0},
		{0, 1, 0}, {0, -1, 0},
		{0, 0, 1}, {0, 0, -1},
	}
	s := mesh.NewVertexStoreFor(pts)
	for _, p := range pts {
		s.Intern(p)
	}
	m, err := hull.Build(s)
	require.NoError(t, err)
	require.Equal(t, 8, m.Len())
	return m
}

// square returns an open unit square in the z=0 plane made of two
// triangles sharing the diagonal (1,0)-(0,1).
func square(t *testing.T) *mesh.Mesh {
	t.Helper()
	pts := []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	s := mesh.NewVertexStoreFor(pts)
	ids := make([]mesh.VertexID, len(pts))
	for i, p := range pts {
		ids[i] = s.Intern(p)
	}
	m := mesh.New(s)
	m.AddTriangle(ids[0], ids[1], ids[3])
	m.AddTriangle(ids[1], ids[2], ids[3])
	require.NoError(t, m.BuildAdjacency())
	return m
}

func markAll(m *mesh.Mesh) {
	for i := range m.Triangles {
		m.Triangles[i].Splittable = true
	}
}

func edgeCount(m *mesh.Mesh) int {
	keys := make(map[mesh.EdgeKey]struct{})
	for t := range m.Triangles {
		for i := 0; i < 3; i++ {
			a, b := m.Edge(mesh.TriangleID(t), i)
			keys[mesh.MakeEdgeKey(a, b)] = struct{}{}
		}
	}
	return len(keys)
}

func mustNew(t *testing.T, cfg Config) *Subdivider {
	t.Helper()
	s, err := New(cfg)
	require.NoError(t, err)
	return s
}

func ptr[T any](v T) *T { return &v }
