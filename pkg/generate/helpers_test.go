package generate

import (
	"fmt"

	"github.com/chazu/talus/pkg/kernel"
)

// fakeSolid records the expression that built it.
type fakeSolid struct {
	desc   string
	radius float64
}

func (s *fakeSolid) BoundingBox() (min, max [3]float64) {
	r := s.radius
	return [3]float64{-r, -r, -r}, [3]float64{r, r, r}
}

// fakeKernel describes solids as strings and tessellates every solid as an
// octahedron soup of the solid's radius.
type fakeKernel struct{}

var _ kernel.Kernel = fakeKernel{}

func (fakeKernel) Sphere(r float64) (kernel.Solid, error) {
	if r <= 0 {
		return nil, fmt.Errorf("fake: sphere radius %g", r)
	}
	return &fakeSolid{desc: fmt.Sprintf("sphere(%g)", r), radius: r}, nil
}

func (fakeKernel) Box(x, y, z float64) (kernel.Solid, error) {
	return &fakeSolid{desc: fmt.Sprintf("box(%g,%g,%g)", x, y, z), radius: max(x, y, z) / 2}, nil
}

func (fakeKernel) Cylinder(h, r float64) (kernel.Solid, error) {
	return &fakeSolid{desc: fmt.Sprintf("cylinder(%g,%g)", h, r), radius: max(h/2, r)}, nil
}

func combine(op string, a, b kernel.Solid) kernel.Solid {
	fa, fb := a.(*fakeSolid), b.(*fakeSolid)
	return &fakeSolid{desc: fmt.Sprintf("%s(%s,%s)", op, fa.desc, fb.desc), radius: max(fa.radius, fb.radius)}
}

func (fakeKernel) Union(a, b kernel.Solid) kernel.Solid        { return combine("union", a, b) }
func (fakeKernel) Difference(a, b kernel.Solid) kernel.Solid   { return combine("difference", a, b) }
func (fakeKernel) Intersection(a, b kernel.Solid) kernel.Solid { return combine("intersection", a, b) }

func (fakeKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	f := s.(*fakeSolid)
	return &fakeSolid{desc: fmt.Sprintf("translate(%s,%g,%g,%g)", f.desc, x, y, z), radius: f.radius}
}

func (fakeKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	f := s.(*fakeSolid)
	return &fakeSolid{desc: fmt.Sprintf("rotate(%s,%g,%g,%g)", f.desc, x, y, z), radius: f.radius}
}

func (fakeKernel) ToMesh(s kernel.Solid, _ int) (*kernel.Mesh, error) {
	return octaSoup(s.(*fakeSolid).radius), nil
}

// octaSoup returns an outward-facing octahedron of radius r in which every
// triangle has its own three vertices.
func octaSoup(r float64) *kernel.Mesh {
	m := &kernel.Mesh{}
	for _, sx := range []float64{1, -1} {
		for _, sy := range []float64{1, -1} {
			for _, sz := range []float64{1, -1} {
				corners := [][3]float64{{sx * r, 0, 0}, {0, sy * r, 0}, {0, 0, sz * r}}
				if sx*sy*sz < 0 {
					corners[1], corners[2] = corners[2], corners[1]
				}
				for _, c := range corners {
					m.Indices = append(m.Indices, uint32(m.VertexCount()))
					m.Vertices = append(m.Vertices, float32(c[0]), float32(c[1]), float32(c[2]))
				}
			}
		}
	}
	return m
}
