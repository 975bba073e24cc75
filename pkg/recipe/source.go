package recipe

import "github.com/go-gl/mathgl/mgl64"

// SourceKind enumerates the seed geometry sources.
type SourceKind int

const (
	SourcePoints SourceKind = iota // sampled point cloud
	SourceSolid                    // tessellated SDF solid
	SourceHull                     // convex hull of another source
)

func (k SourceKind) String() string {
	switch k {
	case SourcePoints:
		return "points"
	case SourceSolid:
		return "solid"
	case SourceHull:
		return "hull"
	default:
		return "unknown"
	}
}

// Source is the interface for recipe seed sources.
type Source interface {
	Kind() SourceKind
	source() // marker method restricting implementations to this package
}

// PointCloud describes points sampled inside, or on the surface of, an
// axis-aligned ellipsoid centered on the origin.
type PointCloud struct {
	Count     int        `json:"count"`
	Radii     mgl64.Vec3 `json:"radii"`
	Seed      int64      `json:"seed"`
	Surface   bool       `json:"surface,omitempty"`   // sample the surface only
	Roughness float64    `json:"roughness,omitempty"` // Perlin radial displacement, fraction of radius
}

// PointsSource yields a bare point cloud. It has no triangles and is only
// meaningful wrapped in a HullSource.
type PointsSource struct {
	Cloud PointCloud `json:"cloud"`
}

func (PointsSource) Kind() SourceKind { return SourcePoints }
func (PointsSource) source()          {}

// SolidSource tessellates an SDF shape with marching cubes.
type SolidSource struct {
	Shape *Shape `json:"shape"`
	Cells int    `json:"cells,omitempty"` // 0 selects the kernel default
}

func (SolidSource) Kind() SourceKind { return SourceSolid }
func (SolidSource) source()          {}

// HullSource wraps the convex hull around the vertices of Of.
type HullSource struct {
	Of Source `json:"of"`
}

func (HullSource) Kind() SourceKind { return SourceHull }
func (HullSource) source()          {}

// ---------------------------------------------------------------------------
// SDF shapes
// ---------------------------------------------------------------------------

// ShapeKind distinguishes SDF shape nodes.
type ShapeKind int

const (
	ShapeSphere ShapeKind = iota
	ShapeBox
	ShapeCylinder
	ShapeUnion
	ShapeDifference
	ShapeIntersection
	ShapeTranslate
	ShapeRotate
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeSphere:
		return "sphere"
	case ShapeBox:
		return "box"
	case ShapeCylinder:
		return "cylinder"
	case ShapeUnion:
		return "union"
	case ShapeDifference:
		return "difference"
	case ShapeIntersection:
		return "intersection"
	case ShapeTranslate:
		return "translate"
	case ShapeRotate:
		return "rotate"
	default:
		return "unknown"
	}
}

// Shape is one node of an SDF expression tree. Which fields are used
// depends on Kind: Radius for spheres and cylinders, Height for cylinders,
// Size for boxes, Vector (offset or Euler degrees) for transforms, and
// Children for booleans (two) and transforms (one).
type Shape struct {
	Kind     ShapeKind  `json:"kind"`
	Radius   float64    `json:"radius,omitempty"`
	Height   float64    `json:"height,omitempty"`
	Size     mgl64.Vec3 `json:"size,omitempty"`
	Vector   mgl64.Vec3 `json:"vector,omitempty"`
	Children []*Shape   `json:"children,omitempty"`
}

// IsBoolean reports whether k combines two shapes.
func (k ShapeKind) IsBoolean() bool {
	return k == ShapeUnion || k == ShapeDifference || k == ShapeIntersection
}

// IsTransform reports whether k moves a single shape.
func (k ShapeKind) IsTransform() bool {
	return k == ShapeTranslate || k == ShapeRotate
}
