package subdivide

import (
	"math"
	"math/rand/v2"

	"github.com/aquilax/go-perlin"
	"github.com/chazu/talus/pkg/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

const op = "subdivide"

// Edge is an edge of a triangle about to receive a midpoint.
type Edge struct {
	A, B     mesh.VertexID
	Triangle mesh.TriangleID // first splittable triangle that deposited the edge
	Slot     int             // edge index within Triangle
}

// Placement computes edge midpoints for one strategy. Begin is called once
// per pass before any Place call.
type Placement interface {
	Begin(m *mesh.Mesh, depth int) error
	Place(e Edge) (mgl64.Vec3, error)
}

// NewPlacement returns the placement for cfg.Strategy.
func NewPlacement(cfg Config) Placement {
	switch cfg.Strategy {
	case Jittered:
		return newJittered(cfg.Jitter, cfg.Seed)
	case Spline:
		return &splinePlacement{}
	default:
		return &linearPlacement{}
	}
}

// Midpoint returns the mean of the endpoints of e.
func Midpoint(m *mesh.Mesh, e Edge) mgl64.Vec3 {
	return m.Position(e.A).Add(m.Position(e.B)).Mul(0.5)
}

// EdgeNormal returns the normalised sum of the normals of the triangles on
// either side of e, ignoring degenerate ones. Boundary edges use their one
// triangle.
func EdgeNormal(m *mesh.Mesh, e Edge) (mgl64.Vec3, error) {
	var sum mgl64.Vec3
	if n := m.Normal(e.Triangle); !mesh.IsDegenerate(n) {
		sum = sum.Add(n)
	}
	if u := m.Triangles[e.Triangle].Adj[e.Slot]; u != mesh.None {
		if n := m.Normal(u); !mesh.IsDegenerate(n) {
			sum = sum.Add(n)
		}
	}
	if sum.Len() < 1e-12 {
		return sum, &mesh.DegenerateNormalError{Triangle: e.Triangle, Vertex: mesh.NoVertex, Op: op}
	}
	return sum.Normalize(), nil
}

type linearPlacement struct {
	m *mesh.Mesh
}

func (p *linearPlacement) Begin(m *mesh.Mesh, _ int) error {
	p.m = m
	return nil
}

func (p *linearPlacement) Place(e Edge) (mgl64.Vec3, error) {
	return Midpoint(p.m, e), nil
}

// jitteredPlacement offsets the linear midpoint inside the local tangent
// plane and along the edge normal.
type jitteredPlacement struct {
	cfg   Jitter
	rng   *rand.Rand
	noise *perlin.Perlin

	m         *mesh.Mesh
	base      float64
	amplitude float64
}

func newJittered(cfg Jitter, seed int64) *jitteredPlacement {
	p := &jitteredPlacement{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x5deece66d)),
	}
	if cfg.Noise == NoisePerlin {
		p.noise = perlin.NewPerlin(2, 2, 3, seed)
	}
	return p
}

func (p *jitteredPlacement) Begin(m *mesh.Mesh, depth int) error {
	p.m = m
	p.base = p.cfg.BaseShake * math.Pow(p.cfg.BaseExponent, float64(depth))
	p.amplitude = p.cfg.NormalShake * math.Pow(p.cfg.NormalExponent, float64(depth))
	return nil
}

func (p *jitteredPlacement) Place(e Edge) (mgl64.Vec3, error) {
	mid := Midpoint(p.m, e)
	n, err := EdgeNormal(p.m, e)
	if err != nil {
		return mid, err
	}
	d := p.m.Position(e.B).Sub(p.m.Position(e.A))
	if d.Len() == 0 {
		return mid, &mesh.DegenerateNormalError{Triangle: e.Triangle, Vertex: e.A, Op: op}
	}
	along := d.Normalize()
	across := n.Cross(along)

	u := p.sample(mid)
	offset := along.Mul(u[0] * p.base).
		Add(across.Mul(u[1] * p.base)).
		Add(n.Mul((u[2] + p.cfg.NormalBias) * p.amplitude))
	return mid.Add(offset), nil
}

// sample returns three noise values in [-0.5, 0.5].
func (p *jitteredPlacement) sample(at mgl64.Vec3) [3]float64 {
	if p.noise == nil {
		return [3]float64{p.rng.Float64() - 0.5, p.rng.Float64() - 0.5, p.rng.Float64() - 0.5}
	}
	f := p.cfg.Frequency
	x, y, z := at[0]*f, at[1]*f, at[2]*f
	var u [3]float64
	for i := range u {
		// Offset each channel so the three components decorrelate.
		o := 31.7 * float64(i+1)
		u[i] = max(-0.5, min(0.5, p.noise.Noise3D(x+o, y+o, z+o)))
	}
	return u
}

// splinePlacement evaluates the cubic Hermite curve between the endpoints at
// t=1/2, with each tangent the edge vector projected into the endpoint's
// tangent plane.
type splinePlacement struct {
	m       *mesh.Mesh
	normals []mgl64.Vec3
}

func (p *splinePlacement) Begin(m *mesh.Mesh, _ int) error {
	p.m = m
	p.normals = m.VertexNormals()
	return nil
}

func (p *splinePlacement) Place(e Edge) (mgl64.Vec3, error) {
	a, b := p.m.Position(e.A), p.m.Position(e.B)
	na, err := p.endpointNormal(e, e.A)
	if err != nil {
		return Midpoint(p.m, e), err
	}
	nb, err := p.endpointNormal(e, e.B)
	if err != nil {
		return Midpoint(p.m, e), err
	}

	d := b.Sub(a)
	ta := projector(na).Mul3x1(d)
	tb := projector(nb).Mul3x1(d)
	return a.Add(b).Mul(0.5).Add(ta.Sub(tb).Mul(0.125)), nil
}

func (p *splinePlacement) endpointNormal(e Edge, v mesh.VertexID) (mgl64.Vec3, error) {
	if int(v) < len(p.normals) && !mesh.IsDegenerate(p.normals[v]) {
		return p.normals[v], nil
	}
	n, err := EdgeNormal(p.m, e)
	if err != nil {
		return n, &mesh.DegenerateNormalError{Triangle: e.Triangle, Vertex: v, Op: op}
	}
	return n, nil
}

// projector returns I - n*n^T, the projection onto the plane normal to n.
func projector(n mgl64.Vec3) mgl64.Mat3 {
	return mgl64.Ident3().Sub(n.OuterProd3(n))
}
