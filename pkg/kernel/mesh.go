package kernel

import "math"

// Mesh is the flat triangle mesh exchanged with readers and writers.
// Vertices has 3 floats per vertex (x,y,z), Normals 3 floats per vertex
// (or none), Indices 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // recipe that produced the mesh
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Bounds returns the axis-aligned bounding box of the vertices. An empty
// mesh returns zero vectors.
func (m *Mesh) Bounds() (min, max [3]float64) {
	if m.IsEmpty() {
		return min, max
	}
	for i := 0; i < 3; i++ {
		min[i] = math.Inf(1)
		max[i] = math.Inf(-1)
	}
	for v := 0; v+2 < len(m.Vertices); v += 3 {
		for i := 0; i < 3; i++ {
			c := float64(m.Vertices[v+i])
			min[i] = math.Min(min[i], c)
			max[i] = math.Max(max[i], c)
		}
	}
	return min, max
}

// Triangle returns the corner positions of triangle t.
func (m *Mesh) Triangle(t int) [3][3]float64 {
	var out [3][3]float64
	for j := 0; j < 3; j++ {
		v := m.Indices[3*t+j]
		for i := 0; i < 3; i++ {
			out[j][i] = float64(m.Vertices[3*v+uint32(i)])
		}
	}
	return out
}
