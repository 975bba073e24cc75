package recipe

import (
	"fmt"

	"github.com/samber/lo"
)

// MaxCells is the marching cubes resolution above which a solid source
// draws a warning.
const MaxCells = 256

// ValidationSeverity indicates whether a validation finding blocks generation
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks generation
	SeverityWarning                           // informational
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
	Recipe   string             // which recipe has the problem (empty if book-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.Recipe == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] recipe %q: %s", e.Severity, e.Recipe, e.Message)
}

// Validate runs all checks on the book and returns the findings. An empty
// slice means the book is valid. It never mutates the book.
func Validate(b *Book) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateNames(b)...)
	for _, r := range b.Recipes {
		errs = append(errs, validateSource(r)...)
		errs = append(errs, validateStages(r)...)
	}
	return errs
}

// HasErrors reports whether any finding has error severity.
func HasErrors(errs []ValidationError) bool {
	return lo.SomeBy(errs, func(e ValidationError) bool { return e.Severity == SeverityError })
}

// Split separates findings into errors and warnings, preserving order.
func Split(errs []ValidationError) (blocking, advisory []ValidationError) {
	for _, e := range errs {
		if e.Severity == SeverityWarning {
			advisory = append(advisory, e)
		} else {
			blocking = append(blocking, e)
		}
	}
	return blocking, advisory
}

// validateNames checks that every recipe is named, that names are unique and
// that the name index agrees with the recipe list.
func validateNames(b *Book) []ValidationError {
	var errs []ValidationError

	if len(b.Recipes) == 0 {
		errs = append(errs, ValidationError{
			Message:  "book has no recipes",
			Severity: SeverityWarning,
		})
	}

	for name, i := range b.NameIndex {
		if i < 0 || i >= len(b.Recipes) || b.Recipes[i].Name != name {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references recipe %d", name, i),
				Severity: SeverityError,
			})
		}
	}

	groups := lo.GroupBy(b.Recipes, func(r *Recipe) string { return r.Name })
	for _, name := range lo.Uniq(b.Names()) {
		if name == "" {
			errs = append(errs, ValidationError{
				Message:  "recipe has no name",
				Severity: SeverityError,
			})
			continue
		}
		if n := len(groups[name]); n > 1 {
			errs = append(errs, ValidationError{
				Recipe:   name,
				Message:  fmt.Sprintf("duplicate name %q assigned to %d recipes", name, n),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateSource checks the recipe's seed source. The top-level source must
// produce triangles, so a bare point cloud is an error.
func validateSource(r *Recipe) []ValidationError {
	if r.Source == nil {
		return []ValidationError{{
			Recipe:   r.Name,
			Message:  "recipe has no source",
			Severity: SeverityError,
		}}
	}
	var errs []ValidationError
	if r.Source.Kind() == SourcePoints {
		errs = append(errs, ValidationError{
			Recipe:   r.Name,
			Message:  "point cloud source has no triangles; wrap it in (hull ...)",
			Severity: SeverityError,
		})
	}
	return append(errs, checkSource(r.Name, r.Source, false)...)
}

func checkSource(name string, s Source, inHull bool) []ValidationError {
	var errs []ValidationError
	add := func(sev ValidationSeverity, format string, args ...any) {
		errs = append(errs, ValidationError{Recipe: name, Message: fmt.Sprintf(format, args...), Severity: sev})
	}

	switch src := s.(type) {
	case PointsSource:
		c := src.Cloud
		if c.Count < 4 {
			add(SeverityError, "point cloud needs at least 4 points, got %d", c.Count)
		}
		if c.Radii.X() <= 0 || c.Radii.Y() <= 0 || c.Radii.Z() <= 0 {
			add(SeverityError, "point cloud radii %v must be positive", c.Radii)
		}
		if c.Roughness < 0 || c.Roughness >= 1 {
			add(SeverityError, "point cloud roughness %g must be in [0, 1)", c.Roughness)
		}
	case SolidSource:
		if src.Cells < 0 {
			add(SeverityError, "solid cells %d is negative", src.Cells)
		} else if src.Cells > MaxCells {
			add(SeverityWarning, "solid cells %d exceeds %d and will be slow", src.Cells, MaxCells)
		}
		if src.Shape == nil {
			add(SeverityError, "solid source has no shape")
		} else {
			for _, msg := range checkShape(src.Shape) {
				add(SeverityError, "%s", msg)
			}
		}
	case HullSource:
		if inHull {
			add(SeverityWarning, "nested hull is redundant")
		}
		if src.Of == nil {
			add(SeverityError, "hull has no input source")
		} else {
			errs = append(errs, checkSource(name, src.Of, true)...)
		}
	default:
		add(SeverityError, "unsupported source type %T", s)
	}
	return errs
}

// checkShape returns a message for every malformed node under sh.
func checkShape(sh *Shape) []string {
	var msgs []string
	switch {
	case sh.Kind == ShapeSphere:
		if sh.Radius <= 0 {
			msgs = append(msgs, fmt.Sprintf("sphere radius %g must be positive", sh.Radius))
		}
	case sh.Kind == ShapeBox:
		if sh.Size.X() <= 0 || sh.Size.Y() <= 0 || sh.Size.Z() <= 0 {
			msgs = append(msgs, fmt.Sprintf("box size %v must be positive", sh.Size))
		}
	case sh.Kind == ShapeCylinder:
		if sh.Radius <= 0 || sh.Height <= 0 {
			msgs = append(msgs, fmt.Sprintf("cylinder height %g and radius %g must be positive", sh.Height, sh.Radius))
		}
	case sh.Kind.IsBoolean():
		if len(sh.Children) != 2 {
			msgs = append(msgs, fmt.Sprintf("%s needs 2 shapes, got %d", sh.Kind, len(sh.Children)))
		}
	case sh.Kind.IsTransform():
		if len(sh.Children) != 1 {
			msgs = append(msgs, fmt.Sprintf("%s needs 1 shape, got %d", sh.Kind, len(sh.Children)))
		}
	default:
		msgs = append(msgs, fmt.Sprintf("unknown shape kind %d", int(sh.Kind)))
	}
	for _, c := range sh.Children {
		if c == nil {
			msgs = append(msgs, fmt.Sprintf("%s has a missing shape", sh.Kind))
			continue
		}
		msgs = append(msgs, checkShape(c)...)
	}
	return msgs
}

// validateStages checks every stage's settings and warns about orderings
// that undo earlier work.
func validateStages(r *Recipe) []ValidationError {
	var errs []ValidationError
	add := func(sev ValidationSeverity, format string, args ...any) {
		errs = append(errs, ValidationError{Recipe: r.Name, Message: fmt.Sprintf(format, args...), Severity: sev})
	}

	if len(r.Stages) == 0 {
		add(SeverityWarning, "recipe has no stages; the seed mesh is emitted as is")
	}

	sphereAt := -1
	for i, st := range r.Stages {
		switch s := st.(type) {
		case SubdivideStage:
			if err := s.Config.Validate(); err != nil {
				add(SeverityError, "stage %d: %v", i, err)
			} else if s.Config.Depth == 0 {
				add(SeverityWarning, "stage %d: subdivide depth 0 does nothing", i)
			}
			if sphereAt >= 0 {
				add(SeverityWarning, "stage %d: subdivide after sphereize (stage %d) moves vertices off the sphere", i, sphereAt)
			}
			if s.Config.Sphere.Enabled {
				sphereAt = i
			}
		case SphereStage:
			if s.Options.Radius < 0 {
				add(SeverityError, "stage %d: sphere radius %g is negative", i, s.Options.Radius)
			}
			sphereAt = i
		case nil:
			add(SeverityError, "stage %d is empty", i)
		default:
			add(SeverityError, "stage %d has unsupported type %T", i, st)
		}
	}
	return errs
}
