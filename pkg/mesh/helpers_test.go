package mesh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
)

var tetraPoints = []mgl64.Vec3{
	{0, 0, 0},
	{1, 0, 0},
	{0, 1, 0},
	{0, 0, 1},
}

// tetra returns a closed, outward-wound unit tetrahedron.
func tetra(t *testing.T) *Mesh {
	t.Helper()
	s := NewVertexStoreFor(tetraPoints)
	ids := make([]VertexID, len(tetraPoints))
	for i, p := range tetraPoints {
		ids[i] = s.Intern(p)
	}
	m := New(s)
	m.AddTriangle(ids[0], ids[2], ids[1])
	m.AddTriangle(ids[0], ids[1], ids[3])
	m.AddTriangle(ids[0], ids[3], ids[2])
	m.AddTriangle(ids[1], ids[2], ids[3])
	require.NoError(t, m.BuildAdjacency())
	return m
}
