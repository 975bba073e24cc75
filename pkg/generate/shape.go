package generate

import (
	"fmt"

	"github.com/chazu/talus/pkg/kernel"
	"github.com/chazu/talus/pkg/recipe"
)

// buildShape walks an SDF shape tree and builds the matching kernel solid.
// It never mutates the tree.
func buildShape(k kernel.Kernel, sh *recipe.Shape) (kernel.Solid, error) {
	if sh == nil {
		return nil, fmt.Errorf("missing shape")
	}
	switch {
	case sh.Kind == recipe.ShapeSphere:
		return k.Sphere(sh.Radius)
	case sh.Kind == recipe.ShapeBox:
		return k.Box(sh.Size.X(), sh.Size.Y(), sh.Size.Z())
	case sh.Kind == recipe.ShapeCylinder:
		return k.Cylinder(sh.Height, sh.Radius)
	case sh.Kind.IsBoolean():
		return handleBoolean(k, sh)
	case sh.Kind.IsTransform():
		return handleTransform(k, sh)
	default:
		return nil, fmt.Errorf("unknown shape kind: %v", sh.Kind)
	}
}

// handleBoolean builds both operands and combines them.
func handleBoolean(k kernel.Kernel, sh *recipe.Shape) (kernel.Solid, error) {
	if len(sh.Children) != 2 {
		return nil, fmt.Errorf("%s needs 2 shapes, got %d", sh.Kind, len(sh.Children))
	}
	a, err := buildShape(k, sh.Children[0])
	if err != nil {
		return nil, err
	}
	b, err := buildShape(k, sh.Children[1])
	if err != nil {
		return nil, err
	}
	switch sh.Kind {
	case recipe.ShapeUnion:
		return k.Union(a, b), nil
	case recipe.ShapeDifference:
		return k.Difference(a, b), nil
	default:
		return k.Intersection(a, b), nil
	}
}

// handleTransform builds the child and moves it.
func handleTransform(k kernel.Kernel, sh *recipe.Shape) (kernel.Solid, error) {
	if len(sh.Children) != 1 {
		return nil, fmt.Errorf("%s needs 1 shape, got %d", sh.Kind, len(sh.Children))
	}
	child, err := buildShape(k, sh.Children[0])
	if err != nil {
		return nil, err
	}
	v := sh.Vector
	if sh.Kind == recipe.ShapeRotate {
		return k.Rotate(child, v.X(), v.Y(), v.Z()), nil
	}
	return k.Translate(child, v.X(), v.Y(), v.Z()), nil
}
