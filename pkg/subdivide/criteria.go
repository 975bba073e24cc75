package subdivide

import (
	"math"

	"github.com/chazu/talus/pkg/mesh"
)

// MarkSplittable sets the Splittable flag of every triangle of m from the
// thresholds in cfg and returns how many were marked. A triangle is
// splittable when it passes every configured criterion; with no criteria
// configured every triangle is splittable.
func MarkSplittable(m *mesh.Mesh, cfg Config) int {
	n := 0
	for t := range m.Triangles {
		ok := splittable(m, mesh.TriangleID(t), cfg)
		m.Triangles[t].Splittable = ok
		if ok {
			n++
		}
	}
	return n
}

func splittable(m *mesh.Mesh, t mesh.TriangleID, cfg Config) bool {
	if cfg.AreaThreshold == nil && cfg.Distance == nil {
		return true
	}
	area := m.Area(t)
	if cfg.AreaThreshold != nil && !(area > *cfg.AreaThreshold) {
		return false
	}
	if cfg.Distance != nil {
		d := m.TriangleCentroid(t).Sub(cfg.Distance.Viewpoint).Len()
		// A triangle containing the viewpoint always splits.
		if d > 0 && !(math.Sqrt(area)/d > cfg.Distance.Value) {
			return false
		}
	}
	return true
}
