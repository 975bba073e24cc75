// Package hull builds the convex hull of a VertexStore as a closed, linked
// mesh.Mesh.
//
// The construction is incremental. Two coincident, opposite-facing seed
// triangles are refined one far vertex at a time: the triangles that vertex
// can see are cut out and the hole is closed with a fan of new triangles
// around it. Each new triangle is tested again until no vertex lies beyond
// any triangle.
package hull

import (
	"github.com/chazu/talus/pkg/mesh"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"
)

// Beyond is the signed distance above a triangle's plane at which a vertex
// counts as outside the current hull.
const Beyond = 1e-12

const op = "hull"

// Build returns the convex hull of every vertex in store.
func Build(store *mesh.VertexStore) (*mesh.Mesh, error) {
	return BuildFrom(store, store.IDs())
}

// BuildFrom returns the convex hull of the given vertices of store. Repeated
// IDs are ignored. Fewer than four distinct vertices yield an
// InsufficientVerticesError; input without three non-collinear points yields
// a DegenerateNormalError. Coplanar input produces the two seed triangles.
func BuildFrom(store *mesh.VertexStore, ids []mesh.VertexID) (*mesh.Mesh, error) {
	ids = lo.Uniq(ids)
	if len(ids) < 4 {
		return nil, &mesh.InsufficientVerticesError{Got: len(ids), Want: 4}
	}

	b := &builder{
		work: mesh.New(store),
		ids:  ids,
		hole: make(map[mesh.TriangleID]struct{}),
	}
	if err := b.seed(); err != nil {
		return nil, err
	}
	for len(b.test) > 0 {
		if err := b.step(); err != nil {
			return nil, err
		}
	}
	return b.compact()
}

type builder struct {
	work  *mesh.Mesh
	ids   []mesh.VertexID
	test  []mesh.TriangleID
	final []mesh.TriangleID
	hole  map[mesh.TriangleID]struct{}
}

// seed creates the two opposite-wound triangles over the first three
// non-collinear input vertices and links all three edge pairs.
func (b *builder) seed() error {
	store := b.work.Store
	v0 := b.ids[0]
	p0 := store.Position(v0)

	v1 := mesh.NoVertex
	for _, id := range b.ids[1:] {
		if store.Position(id) != p0 {
			v1 = id
			break
		}
	}
	if v1 == mesh.NoVertex {
		return &mesh.DegenerateNormalError{Triangle: mesh.None, Vertex: v0, Op: op}
	}
	p1 := store.Position(v1)

	v2 := mesh.NoVertex
	for _, id := range b.ids[1:] {
		if id == v1 {
			continue
		}
		if !mesh.IsDegenerate(mesh.FaceNormal(p0, p1, store.Position(id))) {
			v2 = id
			break
		}
	}
	if v2 == mesh.NoVertex {
		return &mesh.DegenerateNormalError{Triangle: mesh.None, Vertex: mesh.NoVertex, Op: op}
	}

	a := b.work.AddTriangle(v0, v1, v2)
	c := b.work.AddTriangle(v0, v2, v1)
	// A's edges (v0,v1), (v1,v2), (v2,v0) are C's edges 2, 1, 0.
	b.work.Link(a, 0, c, 2)
	b.work.Link(a, 1, c, 1)
	b.work.Link(a, 2, c, 0)
	b.test = []mesh.TriangleID{a, c}
	return nil
}

// height returns the signed distance of p above the plane of t.
func (b *builder) height(t mesh.TriangleID, n mgl64.Vec3, p mgl64.Vec3) float64 {
	return n.Dot(p.Sub(b.work.Position(b.work.Triangles[t].V[0])))
}

// step pops the next triangle to test and either finalises it or expands
// the hull towards its farthest outside vertex.
func (b *builder) step() error {
	t := b.test[0]
	b.test = b.test[1:]

	n := b.work.Normal(t)
	if mesh.IsDegenerate(n) {
		return &mesh.DegenerateNormalError{Triangle: t, Vertex: mesh.NoVertex, Op: op}
	}

	tv := b.work.Triangles[t].V
	far := mesh.NoVertex
	best := Beyond
	for _, id := range b.ids {
		if id == tv[0] || id == tv[1] || id == tv[2] {
			continue
		}
		if d := b.height(t, n, b.work.Position(id)); d > best {
			far, best = id, d
		}
	}
	if far == mesh.NoVertex {
		b.final = append(b.final, t)
		return nil
	}
	return b.expand(t, far)
}

// expand replaces every triangle that far can see with a fan around far.
func (b *builder) expand(t mesh.TriangleID, far mesh.VertexID) error {
	p := b.work.Position(far)

	clear(b.hole)
	b.hole[t] = struct{}{}
	for _, u := range b.test {
		n := b.work.Normal(u)
		if mesh.IsDegenerate(n) {
			return &mesh.DegenerateNormalError{Triangle: u, Vertex: mesh.NoVertex, Op: op}
		}
		if b.height(u, n, p) > Beyond {
			b.hole[u] = struct{}{}
		}
	}

	// Visit hole triangles in test order so the fan is deterministic.
	order := append([]mesh.TriangleID{t}, lo.Filter(b.test, func(u mesh.TriangleID, _ int) bool {
		_, ok := b.hole[u]
		return ok
	})...)

	var fan []mesh.TriangleID
	for _, h := range order {
		for i := 0; i < 3; i++ {
			out := b.work.Triangles[h].Adj[i]
			if _, in := b.hole[out]; in {
				continue
			}
			x, y := b.work.Edge(h, i)
			if out == mesh.None {
				return &mesh.AdjacencyNotFoundError{Triangle: h, Edge: [2]mesh.VertexID{x, y}, Op: op}
			}
			j := b.work.EdgeSlot(out, x, y)
			if j < 0 {
				return &mesh.AdjacencyNotFoundError{Triangle: out, Edge: [2]mesh.VertexID{x, y}, Op: op}
			}
			f := b.work.AddTriangle(far, x, y)
			b.work.Link(f, 1, out, j)
			fan = append(fan, f)
		}
	}

	if err := b.stitch(fan); err != nil {
		return err
	}

	rest := lo.Filter(b.test, func(u mesh.TriangleID, _ int) bool {
		_, ok := b.hole[u]
		return !ok
	})
	b.test = append(fan, rest...)
	return nil
}

// stitch links the sides of neighbouring fan triangles. Fan triangle
// (far, x, y) shares its edge (y, far) with the fan triangle that starts
// at y.
func (b *builder) stitch(fan []mesh.TriangleID) error {
	byStart := make(map[mesh.VertexID]mesh.TriangleID, len(fan))
	for _, f := range fan {
		x := b.work.Triangles[f].V[1]
		if prev, dup := byStart[x]; dup {
			return &mesh.AdjacencyNotFoundError{Triangle: prev, Edge: [2]mesh.VertexID{x, b.work.Triangles[f].V[0]}, Op: op}
		}
		byStart[x] = f
	}
	for _, f := range fan {
		y := b.work.Triangles[f].V[2]
		g, ok := byStart[y]
		if !ok {
			return &mesh.AdjacencyNotFoundError{Triangle: f, Edge: [2]mesh.VertexID{y, b.work.Triangles[f].V[0]}, Op: op}
		}
		b.work.Link(f, 2, g, 0)
	}
	return nil
}

// compact copies the final triangles into a fresh mesh, renumbering
// adjacency.
func (b *builder) compact() (*mesh.Mesh, error) {
	out := mesh.New(b.work.Store)
	remap := make(map[mesh.TriangleID]mesh.TriangleID, len(b.final))
	for _, t := range b.final {
		v := b.work.Triangles[t].V
		remap[t] = out.AddTriangle(v[0], v[1], v[2])
	}
	for _, t := range b.final {
		nt := remap[t]
		for i, u := range b.work.Triangles[t].Adj {
			nu, ok := remap[u]
			if !ok {
				x, y := b.work.Edge(t, i)
				return nil, &mesh.AdjacencyNotFoundError{Triangle: t, Edge: [2]mesh.VertexID{x, y}, Op: op}
			}
			out.SetAdjacent(nt, i, nu)
		}
	}
	return out, nil
}
