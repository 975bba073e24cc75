package recipe

import "github.com/chazu/talus/pkg/subdivide"

// Stage is the interface for refinement steps applied to a seed mesh.
type Stage interface {
	stage() // marker method restricting implementations to this package
}

// SubdivideStage runs a subdivide.Subdivider with Config. A sphere-ize
// post-pass set in Config.Sphere runs as part of the stage.
type SubdivideStage struct {
	Config subdivide.Config `json:"config"`
}

func (SubdivideStage) stage() {}

// SphereStage projects every vertex onto a common sphere.
type SphereStage struct {
	Options subdivide.SphereOptions `json:"options"`
}

func (SphereStage) stage() {}
