// Package generate turns a recipe book into triangle meshes. Each recipe
// is built in its own vertex store: its seed source is sampled or
// tessellated, hulled when asked, refined by its stages in order, and
// flattened. Independent recipes run concurrently; one mesh is produced per
// recipe, in book order.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"

	"github.com/chazu/talus/pkg/hull"
	"github.com/chazu/talus/pkg/kernel"
	"github.com/chazu/talus/pkg/mesh"
	"github.com/chazu/talus/pkg/recipe"
	"github.com/chazu/talus/pkg/subdivide"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Options controls a Generate call.
type Options struct {
	// Logger receives one line per finished recipe. Nil is silent.
	Logger *log.Logger
	// Limit caps the number of recipes built at once. Zero or less uses
	// GOMAXPROCS.
	Limit int
}

// Report summarises how one recipe was built.
type Report struct {
	Recipe        string
	SeedTriangles int
	Passes        int // subdivision passes that split something, over all stages
	Triangles     int
	Vertices      int
	Closed        bool // the result has no boundary edges
}

func (r Report) String() string {
	state := "closed"
	if !r.Closed {
		state = "open"
	}
	return fmt.Sprintf("%s: %d -> %d triangles, %d vertices, %d passes, %s",
		r.Recipe, r.SeedTriangles, r.Triangles, r.Vertices, r.Passes, state)
}

// ErrInvalidBook is returned when the book fails validation.
var ErrInvalidBook = errors.New("generate: invalid recipe book")

// Generate validates b and builds every recipe with kernel k. It returns one
// mesh per recipe, in book order, or the first error encountered. Validation
// errors are joined under ErrInvalidBook; warnings do not stop generation.
func Generate(ctx context.Context, b *recipe.Book, k kernel.Kernel, opts Options) ([]*kernel.Mesh, error) {
	if b == nil {
		return nil, nil
	}
	if blocking, _ := recipe.Split(recipe.Validate(b)); len(blocking) > 0 {
		errs := lo.Map(blocking, func(e recipe.ValidationError, _ int) error { return e })
		return nil, fmt.Errorf("%w: %w", ErrInvalidBook, errors.Join(errs...))
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	out := make([]*kernel.Mesh, b.Len())
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, r := range b.Recipes {
		g.Go(func() error {
			m, rep, err := Build(gctx, r, k)
			if err != nil {
				return err
			}
			out[i] = m
			if opts.Logger != nil {
				opts.Logger.Print(rep)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Build runs a single recipe. The recipe is not validated; Generate does
// that for whole books.
func Build(ctx context.Context, r *recipe.Recipe, k kernel.Kernel) (*kernel.Mesh, Report, error) {
	rep := Report{Recipe: r.Name}
	if err := ctx.Err(); err != nil {
		return nil, rep, err
	}

	m, err := seed(r.Source, k)
	if err != nil {
		return nil, rep, fmt.Errorf("generate: recipe %q: %w", r.Name, err)
	}
	rep.SeedTriangles = m.Len()

	for i, st := range r.Stages {
		if err := ctx.Err(); err != nil {
			return nil, rep, err
		}
		switch s := st.(type) {
		case recipe.SubdivideStage:
			sub, err := subdivide.New(s.Config)
			if err != nil {
				return nil, rep, fmt.Errorf("generate: recipe %q: stage %d: %w", r.Name, i, err)
			}
			next, stats, err := sub.Run(m)
			if err != nil {
				return nil, rep, fmt.Errorf("generate: recipe %q: stage %d: %w", r.Name, i, err)
			}
			m = next
			rep.Passes += stats.Passes
		case recipe.SphereStage:
			subdivide.Sphereize(m, s.Options)
		default:
			return nil, rep, fmt.Errorf("generate: recipe %q: stage %d has unsupported type %T", r.Name, i, st)
		}
	}

	rep.Triangles = m.Len()
	rep.Vertices = len(m.VertexIDs())
	rep.Closed = mesh.CheckClosed(m) == nil
	return m.Flatten(r.Name), rep, nil
}

// seed builds the linked starting mesh for a source in a fresh store.
func seed(src recipe.Source, k kernel.Kernel) (*mesh.Mesh, error) {
	switch s := src.(type) {
	case recipe.HullSource:
		points, err := positions(s.Of, k)
		if err != nil {
			return nil, err
		}
		store := mesh.NewVertexStoreFor(points)
		for _, p := range points {
			store.Intern(p)
		}
		m, err := hull.Build(store)
		if err != nil {
			return nil, fmt.Errorf("hull: %w", err)
		}
		return m, nil
	case recipe.SolidSource:
		flat, err := tessellate(s, k)
		if err != nil {
			return nil, err
		}
		lower, upper := flat.Bounds()
		store := mesh.NewVertexStore(mgl64.Vec3(lower), mgl64.Vec3(upper))
		return mesh.FromFlat(store, flat)
	case recipe.PointsSource:
		return nil, fmt.Errorf("point cloud has no triangles")
	default:
		return nil, fmt.Errorf("unsupported source type %T", src)
	}
}

// positions returns the points a hull is wrapped around.
func positions(src recipe.Source, k kernel.Kernel) ([]mgl64.Vec3, error) {
	switch s := src.(type) {
	case recipe.PointsSource:
		return SamplePoints(s.Cloud), nil
	case recipe.SolidSource:
		flat, err := tessellate(s, k)
		if err != nil {
			return nil, err
		}
		points := make([]mgl64.Vec3, flat.VertexCount())
		for i := range points {
			points[i] = mgl64.Vec3{
				float64(flat.Vertices[3*i]),
				float64(flat.Vertices[3*i+1]),
				float64(flat.Vertices[3*i+2]),
			}
		}
		return points, nil
	case recipe.HullSource:
		return positions(s.Of, k)
	default:
		return nil, fmt.Errorf("unsupported source type %T", src)
	}
}

// tessellate builds the solid and meshes it with the kernel.
func tessellate(s recipe.SolidSource, k kernel.Kernel) (*kernel.Mesh, error) {
	solid, err := buildShape(k, s.Shape)
	if err != nil {
		return nil, fmt.Errorf("solid: %w", err)
	}
	flat, err := k.ToMesh(solid, s.Cells)
	if err != nil {
		return nil, fmt.Errorf("solid: %w", err)
	}
	return flat, nil
}
