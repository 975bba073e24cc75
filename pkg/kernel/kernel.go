// Package kernel defines the solid-modelling backend that produces seed
// geometry for mesh generation, and the flat Mesh value every reader and
// writer exchanges. The sdfx subpackage is the implementation.
package kernel

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel builds solids and tessellates them. All primitives are centered on
// the origin.
type Kernel interface {
	// Primitives
	Sphere(radius float64) (Solid, error)
	Box(x, y, z float64) (Solid, error)
	Cylinder(height, radius float64) (Solid, error)

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// ToMesh tessellates s on a grid with cells cells along its longest
	// side. cells <= 0 selects the kernel default.
	ToMesh(s Solid, cells int) (*Mesh, error)
}
