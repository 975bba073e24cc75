package subdivide

import (
	"fmt"

	"github.com/chazu/talus/pkg/mesh"
)

// Subdivider runs subdivision passes with one configuration. It is not safe
// for concurrent use: the jitter stream advances with every placed midpoint.
type Subdivider struct {
	cfg   Config
	place Placement
}

// New returns a Subdivider for cfg.
func New(cfg Config) (*Subdivider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Subdivider{cfg: cfg, place: NewPlacement(cfg)}, nil
}

// Config returns the configuration the Subdivider was built with.
func (s *Subdivider) Config() Config {
	return s.cfg
}

// Stats summarises one Run.
type Stats struct {
	Passes    int // passes that split at least one triangle
	Triangles int
	Vertices  int // vertices referenced by the result
}

// Run marks splittable triangles, runs up to cfg.Depth passes and applies the
// sphere-ize post-pass when enabled. It stops early once no triangle is
// splittable. The input mesh is not modified; new vertices go into its store.
// Each Run restarts the jitter stream, so equal inputs give equal outputs.
func (s *Subdivider) Run(m *mesh.Mesh) (*mesh.Mesh, Stats, error) {
	s.place = NewPlacement(s.cfg)

	cur := m.Clone()
	var st Stats
	for depth := 0; depth < s.cfg.Depth; depth++ {
		if MarkSplittable(cur, s.cfg) == 0 {
			break
		}
		next, err := s.Pass(cur, depth)
		if err != nil {
			return nil, st, fmt.Errorf("subdivide: pass %d: %w", depth, err)
		}
		cur = next
		st.Passes++
	}

	if s.cfg.Sphere.Enabled {
		Sphereize(cur, s.cfg.Sphere)
	}
	st.Triangles = cur.Len()
	st.Vertices = len(cur.VertexIDs())
	return cur, st, nil
}

// Pass runs one subdivision level over m using the Splittable flags already
// set on its triangles. depth scales the jitter amplitudes. m is not
// modified; the returned mesh has its own triangle arena over m's store.
//
// New vertices are interned, so a midpoint or centroid landing within the
// store's tolerance of an existing vertex reuses it. On meshes refined
// below that tolerance a pass can therefore add fewer vertices than it
// split edges.
func (s *Subdivider) Pass(m *mesh.Mesh, depth int) (*mesh.Mesh, error) {
	if err := s.place.Begin(m, depth); err != nil {
		return nil, err
	}
	switch s.cfg.Variant {
	case Hex:
		return s.hexPass(m)
	default:
		return s.quadPass(m)
	}
}

// midpoint places the vertex for edge slot i of triangle t.
func (s *Subdivider) midpoint(m *mesh.Mesh, t mesh.TriangleID, i int) (mesh.VertexID, error) {
	a, b := m.Edge(t, i)
	e := Edge{A: a, B: b, Triangle: t, Slot: i}
	if s.cfg.ClampBoundaryEdges && m.Triangles[t].Adj[i] == mesh.None {
		return m.Store.Intern(Midpoint(m, e)), nil
	}
	p, err := s.place.Place(e)
	if err != nil {
		return mesh.NoVertex, err
	}
	return m.Store.Intern(p), nil
}
