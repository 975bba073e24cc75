package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BinCount is the number of buckets along the dominant axis of a VertexStore.
const BinCount = 10000

// Epsilon is the per-axis absolute tolerance under which Intern merges two
// positions into one vertex.
const Epsilon = 1e-5

// VertexID identifies a vertex inside a VertexStore.
type VertexID int

// NoVertex marks an unset vertex reference.
const NoVertex VertexID = -1

// VertexStore owns every vertex created during a processing session.
// Vertices are binned along the axis of greatest extent so that near-duplicate
// lookups only scan one bucket.
//
// Two positions closer than Epsilon that fall into neighbouring buckets are
// not merged. This is a known approximation of the binning scheme.
type VertexStore struct {
	positions []mgl64.Vec3
	bucketOf  []int
	bins      [][]VertexID

	axis  int
	lo    float64
	width float64
}

// NewVertexStore returns an empty store binned over the box [lo, hi].
// Positions outside the box are clamped into the first or last bucket.
func NewVertexStore(lo, hi mgl64.Vec3) *VertexStore {
	axis := 0
	extent := hi[0] - lo[0]
	for i := 1; i < 3; i++ {
		if e := hi[i] - lo[i]; e > extent {
			axis = i
			extent = e
		}
	}

	s := &VertexStore{
		bins: make([][]VertexID, BinCount),
		axis: axis,
		lo:   lo[axis],
	}
	if extent > 0 {
		s.width = extent / BinCount
	}
	return s
}

// NewVertexStoreFor returns an empty store binned over the bounds of points.
// The points themselves are not added.
func NewVertexStoreFor(points []mgl64.Vec3) *VertexStore {
	lo, hi := boundsOf(points)
	return NewVertexStore(lo, hi)
}

// Axis returns the index (0, 1, 2) of the binning axis.
func (s *VertexStore) Axis() int {
	return s.axis
}

// Len returns the number of vertices in the store.
func (s *VertexStore) Len() int {
	return len(s.positions)
}

// Bucket returns the bucket index a position maps to.
func (s *VertexStore) Bucket(p mgl64.Vec3) int {
	if s.width <= 0 {
		return 0
	}
	f := math.Floor((p[s.axis] - s.lo) / s.width)
	switch {
	case math.IsNaN(f) || f < 0:
		return 0
	case f >= BinCount:
		return BinCount - 1
	}
	return int(f)
}

// Intern returns the vertex within Epsilon of p on all three axes that lives
// in p's bucket, creating one if none exists.
func (s *VertexStore) Intern(p mgl64.Vec3) VertexID {
	b := s.Bucket(p)
	chain := s.bins[b]
	// Most recently added vertices are checked first.
	for i := len(chain) - 1; i >= 0; i-- {
		id := chain[i]
		if near(s.positions[id], p) {
			return id
		}
	}
	return s.insert(p, b)
}

// Add creates a new vertex at p without looking for duplicates.
func (s *VertexStore) Add(p mgl64.Vec3) VertexID {
	return s.insert(p, s.Bucket(p))
}

func (s *VertexStore) insert(p mgl64.Vec3, b int) VertexID {
	id := VertexID(len(s.positions))
	s.positions = append(s.positions, p)
	s.bucketOf = append(s.bucketOf, b)
	s.bins[b] = append(s.bins[b], id)
	return id
}

// Position returns the position of vertex id.
func (s *VertexStore) Position(id VertexID) mgl64.Vec3 {
	return s.positions[id]
}

// SetPosition moves vertex id to p and re-bins it.
func (s *VertexStore) SetPosition(id VertexID, p mgl64.Vec3) {
	s.positions[id] = p
	nb := s.Bucket(p)
	ob := s.bucketOf[id]
	if nb == ob {
		return
	}
	chain := s.bins[ob]
	for i, v := range chain {
		if v == id {
			s.bins[ob] = append(chain[:i], chain[i+1:]...)
			break
		}
	}
	s.bins[nb] = append(s.bins[nb], id)
	s.bucketOf[id] = nb
}

// Positions returns the backing position slice. Callers must not modify it.
func (s *VertexStore) Positions() []mgl64.Vec3 {
	return s.positions
}

// IDs returns every vertex ID in creation order.
func (s *VertexStore) IDs() []VertexID {
	ids := make([]VertexID, len(s.positions))
	for i := range ids {
		ids[i] = VertexID(i)
	}
	return ids
}

func near(a, b mgl64.Vec3) bool {
	return math.Abs(a[0]-b[0]) < Epsilon &&
		math.Abs(a[1]-b[1]) < Epsilon &&
		math.Abs(a[2]-b[2]) < Epsilon
}

func boundsOf(points []mgl64.Vec3) (lo, hi mgl64.Vec3) {
	if len(points) == 0 {
		return lo, hi
	}
	lo, hi = points[0], points[0]
	for _, p := range points[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = math.Min(lo[i], p[i])
			hi[i] = math.Max(hi[i], p[i])
		}
	}
	return lo, hi
}
