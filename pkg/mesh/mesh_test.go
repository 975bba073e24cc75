package mesh

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTetraAdjacency(t *testing.T) {
	m := tetra(t)
	require.Equal(t, 4, m.Len())
	assert.Equal(t, 0, m.BoundaryEdges())

	for tid := range m.Triangles {
		for i := 0; i < 3; i++ {
			u := m.Triangles[tid].Adj[i]
			require.NotEqual(t, None, u)
			a, b := m.Edge(TriangleID(tid), i)
			j := m.EdgeSlot(u, a, b)
			require.GreaterOrEqual(t, j, 0)
			assert.Equal(t, TriangleID(tid), m.Triangles[u].Adj[j])
			// Neighbours traverse the shared edge in opposite directions.
			c, d := m.Edge(u, j)
			assert.Equal(t, [2]VertexID{b, a}, [2]VertexID{c, d})
		}
	}
}

func TestNormalPointsOutward(t *testing.T) {
	m := tetra(t)
	center := m.Centroid()
	for tid := range m.Triangles {
		n := m.Normal(TriangleID(tid))
		require.False(t, IsDegenerate(n))
		assert.InDelta(t, 1, n.Len(), 1e-12)
		out := m.TriangleCentroid(TriangleID(tid)).Sub(center)
		assert.Greater(t, n.Dot(out), 0.0)
	}
}

func TestDegenerateNormal(t *testing.T) {
	n := FaceNormal(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{2, 0, 0})
	assert.True(t, IsDegenerate(n))
	assert.True(t, math.IsNaN(n[0]))

	n = FaceNormal(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 1, 0})
	assert.True(t, IsDegenerate(n))
	assert.True(t, IsDegenerate(mgl64.Vec3{}))
}

func TestArea(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c mgl64.Vec3
		want    float64
	}{
		{"right triangle", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}, 0.5},
		{"scaled", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{4, 0, 0}, mgl64.Vec3{0, 3, 0}, 6},
		{"collinear", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}, mgl64.Vec3{2, 2, 2}, 0},
		{"point", mgl64.Vec3{1, 1, 1}, mgl64.Vec3{1, 1, 1}, mgl64.Vec3{1, 1, 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, HeronArea(tt.a, tt.b, tt.c), 1e-9)
		})
	}
}

func TestSurfaceArea(t *testing.T) {
	m := tetra(t)
	want := 3*0.5 + math.Sqrt(3)/2
	assert.InDelta(t, want, m.SurfaceArea(), 1e-9)
}

func TestCentroidAndBounds(t *testing.T) {
	m := tetra(t)
	assert.True(t, m.Centroid().ApproxEqual(mgl64.Vec3{0.25, 0.25, 0.25}))

	lower, upper := m.Bounds()
	assert.Equal(t, mgl64.Vec3{0, 0, 0}, lower)
	assert.Equal(t, mgl64.Vec3{1, 1, 1}, upper)
}

func TestVertexIDsIgnoresUnreferenced(t *testing.T) {
	m := tetra(t)
	extra := m.Store.Intern(mgl64.Vec3{5, 5, 5})
	ids := m.VertexIDs()
	assert.Equal(t, []VertexID{0, 1, 2, 3}, ids)
	assert.NotContains(t, ids, extra)
}

func TestBuildAdjacencyOpenSurface(t *testing.T) {
	s := NewVertexStoreFor(tetraPoints)
	m := New(s)
	a := s.Intern(tetraPoints[0])
	b := s.Intern(tetraPoints[1])
	c := s.Intern(tetraPoints[2])
	d := s.Intern(tetraPoints[3])
	t0 := m.AddTriangle(a, b, d)
	t1 := m.AddTriangle(b, c, d)

	require.NoError(t, m.BuildAdjacency())
	assert.Equal(t, 4, m.BoundaryEdges())
	assert.Equal(t, t1, m.Triangles[t0].Adj[1])
	assert.Equal(t, t0, m.Triangles[t1].Adj[2])
}

func TestBuildAdjacencyNonManifold(t *testing.T) {
	s := NewVertexStoreFor(tetraPoints)
	m := New(s)
	a := s.Intern(tetraPoints[0])
	b := s.Intern(tetraPoints[1])
	c := s.Intern(tetraPoints[2])
	d := s.Intern(tetraPoints[3])
	e := s.Intern(mgl64.Vec3{1, 1, 1})
	m.AddTriangle(a, b, c)
	m.AddTriangle(b, a, d)
	m.AddTriangle(a, b, e)

	err := m.BuildAdjacency()
	var nm *NonManifoldEdgeError
	require.True(t, errors.As(err, &nm))
	assert.Equal(t, 3, nm.Count)
	assert.Equal(t, [2]VertexID{a, b}, nm.Edge)
	assert.Equal(t, 9, m.BoundaryEdges(), "failed linking leaves the mesh unlinked")
}

func TestIncidence(t *testing.T) {
	m := tetra(t)
	inc := m.Incidence()
	require.Len(t, inc, 4)
	for v, corners := range inc {
		assert.Len(t, corners, 3)
		for _, c := range corners {
			assert.Equal(t, VertexID(v), m.Triangles[c.Triangle].V[c.Index])
		}
	}
}

func TestVertexNormals(t *testing.T) {
	m := tetra(t)
	extra := m.Store.Intern(mgl64.Vec3{9, 9, 9})
	vn := m.VertexNormals()
	require.Len(t, vn, m.Store.Len())

	center := m.Centroid()
	for _, v := range m.VertexIDs() {
		n := vn[v]
		require.False(t, IsDegenerate(n))
		assert.InDelta(t, 1, n.Len(), 1e-12)
		assert.Greater(t, n.Dot(m.Position(v).Sub(center)), 0.0)
	}
	assert.True(t, IsDegenerate(vn[extra]))

	// The origin corner sees three equal right triangles.
	want := mgl64.Vec3{-1, -1, -1}.Normalize()
	assert.True(t, vn[0].ApproxEqualThreshold(want, 1e-12))
}

func TestAssignVertexNormals(t *testing.T) {
	m := tetra(t)
	m.AssignVertexNormals()
	require.Len(t, m.Normals, 4)
	for tid := range m.Triangles {
		for i := 0; i < 3; i++ {
			n := m.CornerNormal(TriangleID(tid), i)
			assert.False(t, IsDegenerate(n))
		}
	}
	m.Triangles[0].N[0] = NoNormal
	assert.True(t, IsDegenerate(m.CornerNormal(0, 0)))
}

func TestSplittableCount(t *testing.T) {
	m := tetra(t)
	assert.Equal(t, 0, m.SplittableCount())
	m.Triangle(1).Splittable = true
	m.Triangle(3).Splittable = true
	assert.Equal(t, 2, m.SplittableCount())
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"insufficient", &InsufficientVerticesError{Got: 3, Want: 4}, "insufficient vertices: got 3, need at least 4"},
		{"degenerate triangle", &DegenerateNormalError{Triangle: 2, Vertex: NoVertex, Op: "spline"}, "spline: degenerate normal for triangle 2"},
		{"degenerate vertex", &DegenerateNormalError{Triangle: None, Vertex: 7, Op: "hull"}, "hull: degenerate normal at vertex 7"},
		{"degenerate plain", &DegenerateNormalError{Triangle: None, Vertex: NoVertex, Op: "hull"}, "hull: degenerate normal"},
		{"adjacency", &AdjacencyNotFoundError{Triangle: 4, Edge: [2]VertexID{1, 2}, Op: "subdivide"}, "subdivide: no adjacent triangle for edge (1, 2) of triangle 4"},
		{"non-manifold", &NonManifoldEdgeError{Edge: [2]VertexID{0, 1}, Count: 3}, "non-manifold edge (0, 1) shared by 3 triangles"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, tt.err, tt.want)
		})
	}
}
