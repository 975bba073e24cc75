package subdivide

import (
	"math"

	"github.com/chazu/talus/pkg/mesh"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"
)

const (
	// sphereTolerance is the relative distance from the target radius under
	// which a vertex counts as already on the sphere.
	sphereTolerance = 1e-12
	// centerTolerance is the relative centroid shift at which the default
	// center counts as settled.
	centerTolerance = 1e-11
	// onSphereTolerance is the relative radial spread under which a mesh
	// counts as already sphereized about its centroid.
	onSphereTolerance = 1e-9
	// maxCenterIterations bounds the default-center refinement. Meshes whose
	// vertices all lie near one line converge slowly and may stop short.
	maxCenterIterations = 200
)

// Sphereize moves every vertex referenced by m onto a sphere and returns the
// center and radius it used. The radius is opts.Radius or, when zero, the
// mean vertex distance from the center.
//
// With opts.Center set, vertices are projected once about it. Otherwise the
// center is the vertex centroid, and since projecting moves the centroid the
// projection is repeated about the new centroid until it settles. The result
// is a mesh whose centroid is the center of its sphere, so a second call
// finds every vertex already in place and changes nothing. Vertices at the
// center are left alone. opts.Enabled is ignored.
func Sphereize(m *mesh.Mesh, opts SphereOptions) (mgl64.Vec3, float64) {
	ids := m.VertexIDs()
	if len(ids) == 0 {
		return mgl64.Vec3{}, 0
	}

	if opts.Center != nil {
		center := *opts.Center
		radius := opts.Radius
		if radius == 0 {
			radius = meanDistance(m, ids, center)
		}
		project(m, ids, center, radius)
		return center, radius
	}

	center := m.Centroid()
	radius := opts.Radius
	if radius == 0 {
		radius = meanDistance(m, ids, center)
	}
	if onSphere(m, ids, center, radius) {
		return center, radius
	}
	for i := 0; i < maxCenterIterations; i++ {
		project(m, ids, center, radius)
		next := m.Centroid()
		if next.Sub(center).Len() <= centerTolerance*radius {
			break
		}
		center = next
	}
	return center, radius
}

func meanDistance(m *mesh.Mesh, ids []mesh.VertexID, center mgl64.Vec3) float64 {
	return lo.SumBy(ids, func(id mesh.VertexID) float64 {
		return m.Position(id).Sub(center).Len()
	}) / float64(len(ids))
}

// project moves every vertex not already on the sphere radially onto it.
func project(m *mesh.Mesh, ids []mesh.VertexID, center mgl64.Vec3, radius float64) {
	for _, id := range ids {
		d := m.Position(id).Sub(center)
		l := d.Len()
		if l == 0 || math.Abs(l-radius) <= sphereTolerance*radius {
			continue
		}
		m.Store.SetPosition(id, center.Add(d.Mul(radius/l)))
	}
}

// onSphere reports whether every vertex away from center lies within
// onSphereTolerance of radius.
func onSphere(m *mesh.Mesh, ids []mesh.VertexID, center mgl64.Vec3, radius float64) bool {
	return !lo.SomeBy(ids, func(id mesh.VertexID) bool {
		l := m.Position(id).Sub(center).Len()
		return l != 0 && math.Abs(l-radius) > onSphereTolerance*radius
	})
}
