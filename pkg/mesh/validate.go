package mesh

import (
	"errors"
	"fmt"
)

// ValidationSeverity indicates whether a validation finding means the mesh is
// broken or merely unusual.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // inconsistent topology
	SeverityWarning                           // legal but noteworthy
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Triangle TriangleID // None if mesh-level
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.Triangle == None {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] triangle %d: %s", e.Severity, e.Triangle, e.Message)
}

// Validate runs all structural checks on m and returns the findings. An empty
// slice means the mesh is a consistent, closed, non-degenerate surface. The
// mesh is never modified.
func Validate(m *Mesh) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateReferences(m)...)
	if HasErrors(errs) {
		// Adjacency checks index through the references.
		return errs
	}
	errs = append(errs, validateCorners(m)...)
	errs = append(errs, validateAdjacency(m)...)
	errs = append(errs, validateDegenerate(m)...)
	return errs
}

// HasErrors reports whether any finding has error severity.
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

// CheckClosed returns nil when m is a consistent closed manifold: no
// error-severity finding and no boundary edge. Otherwise it returns the first
// offending finding.
func CheckClosed(m *Mesh) error {
	if m.IsEmpty() {
		return errors.New("mesh: empty mesh is not closed")
	}
	for _, e := range Validate(m) {
		if e.Severity == SeverityError {
			return e
		}
	}
	for t := range m.Triangles {
		for i, a := range m.Triangles[t].Adj {
			if a == None {
				u, v := m.Edge(TriangleID(t), i)
				return ValidationError{
					Triangle: TriangleID(t),
					Message:  fmt.Sprintf("edge (%d, %d) is a boundary edge", u, v),
					Severity: SeverityError,
				}
			}
		}
	}
	return nil
}

// validateReferences checks that every vertex, normal and adjacency reference
// is in range.
func validateReferences(m *Mesh) []ValidationError {
	var errs []ValidationError
	nv := VertexID(m.Store.Len())
	nt := TriangleID(len(m.Triangles))
	nn := NormalID(len(m.Normals))

	for t := range m.Triangles {
		tri := &m.Triangles[t]
		for i := 0; i < 3; i++ {
			if tri.V[i] < 0 || tri.V[i] >= nv {
				errs = append(errs, ValidationError{
					Triangle: TriangleID(t),
					Message:  fmt.Sprintf("corner %d references missing vertex %d", i, tri.V[i]),
					Severity: SeverityError,
				})
			}
			if tri.Adj[i] != None && (tri.Adj[i] < 0 || tri.Adj[i] >= nt) {
				errs = append(errs, ValidationError{
					Triangle: TriangleID(t),
					Message:  fmt.Sprintf("edge %d references missing triangle %d", i, tri.Adj[i]),
					Severity: SeverityError,
				})
			}
			if tri.N[i] != NoNormal && (tri.N[i] < 0 || tri.N[i] >= nn) {
				errs = append(errs, ValidationError{
					Triangle: TriangleID(t),
					Message:  fmt.Sprintf("corner %d references missing normal %d", i, tri.N[i]),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateCorners rejects triangles that use the same vertex twice.
func validateCorners(m *Mesh) []ValidationError {
	var errs []ValidationError
	for t := range m.Triangles {
		v := m.Triangles[t].V
		if v[0] == v[1] || v[1] == v[2] || v[2] == v[0] {
			errs = append(errs, ValidationError{
				Triangle: TriangleID(t),
				Message:  fmt.Sprintf("repeated corner vertex (%d, %d, %d)", v[0], v[1], v[2]),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateAdjacency checks that every link is symmetric and joins triangles
// that really share the edge. Boundary edges are reported as warnings.
func validateAdjacency(m *Mesh) []ValidationError {
	var errs []ValidationError
	boundary := 0

	for t := range m.Triangles {
		tri := &m.Triangles[t]
		for i := 0; i < 3; i++ {
			u := tri.Adj[i]
			if u == None {
				boundary++
				continue
			}
			if u == TriangleID(t) {
				errs = append(errs, ValidationError{
					Triangle: TriangleID(t),
					Message:  fmt.Sprintf("edge %d is linked to itself", i),
					Severity: SeverityError,
				})
				continue
			}
			a, b := tri.V[i], tri.V[(i+1)%3]
			j := m.EdgeSlot(u, a, b)
			if j < 0 {
				errs = append(errs, ValidationError{
					Triangle: TriangleID(t),
					Message:  fmt.Sprintf("edge (%d, %d) linked to triangle %d which lacks that edge", a, b, u),
					Severity: SeverityError,
				})
				continue
			}
			if m.Triangles[u].Adj[j] != TriangleID(t) {
				errs = append(errs, ValidationError{
					Triangle: TriangleID(t),
					Message:  fmt.Sprintf("edge (%d, %d) link to triangle %d is not reciprocated", a, b, u),
					Severity: SeverityError,
				})
			}
		}
	}

	if boundary > 0 {
		errs = append(errs, ValidationError{
			Triangle: None,
			Message:  fmt.Sprintf("mesh has %d boundary edges (open surface)", boundary),
			Severity: SeverityWarning,
		})
	}
	return errs
}

// validateDegenerate warns about triangles without a usable normal.
func validateDegenerate(m *Mesh) []ValidationError {
	var errs []ValidationError
	for t := range m.Triangles {
		if IsDegenerate(m.Normal(TriangleID(t))) {
			errs = append(errs, ValidationError{
				Triangle: TriangleID(t),
				Message:  fmt.Sprintf("degenerate triangle (area %.3g)", m.Area(TriangleID(t))),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}
