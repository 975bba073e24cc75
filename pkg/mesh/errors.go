package mesh

import "fmt"

// InsufficientVerticesError reports that an operation needs more distinct
// vertices than it was given.
type InsufficientVerticesError struct {
	Got  int
	Want int
}

func (e *InsufficientVerticesError) Error() string {
	return fmt.Sprintf("insufficient vertices: got %d, need at least %d", e.Got, e.Want)
}

// DegenerateNormalError reports that a normal an algorithm depends on could
// not be computed because the surrounding geometry is collinear or collapsed.
type DegenerateNormalError struct {
	Triangle TriangleID // None when no single triangle is at fault
	Vertex   VertexID   // NoVertex when the normal is per-triangle
	Op       string
}

func (e *DegenerateNormalError) Error() string {
	switch {
	case e.Vertex != NoVertex && e.Triangle != None:
		return fmt.Sprintf("%s: degenerate normal at vertex %d of triangle %d", e.Op, e.Vertex, e.Triangle)
	case e.Vertex != NoVertex:
		return fmt.Sprintf("%s: degenerate normal at vertex %d", e.Op, e.Vertex)
	case e.Triangle != None:
		return fmt.Sprintf("%s: degenerate normal for triangle %d", e.Op, e.Triangle)
	}
	return fmt.Sprintf("%s: degenerate normal", e.Op)
}

// AdjacencyNotFoundError reports that re-stitching could not find the
// triangle on the other side of an edge that must have one. It always means
// the adjacency graph is inconsistent.
type AdjacencyNotFoundError struct {
	Triangle TriangleID
	Edge     [2]VertexID
	Op       string
}

func (e *AdjacencyNotFoundError) Error() string {
	return fmt.Sprintf("%s: no adjacent triangle for edge (%d, %d) of triangle %d",
		e.Op, e.Edge[0], e.Edge[1], e.Triangle)
}

// NonManifoldEdgeError reports an edge shared by more than two triangles.
type NonManifoldEdgeError struct {
	Edge  [2]VertexID
	Count int
}

func (e *NonManifoldEdgeError) Error() string {
	return fmt.Sprintf("non-manifold edge (%d, %d) shared by %d triangles", e.Edge[0], e.Edge[1], e.Count)
}
