// Package subdivide refines triangle meshes without opening cracks.
//
// A pass deposits one new vertex on every edge of every splittable triangle,
// replaces each triangle by the children its deposited midpoints call for and
// re-links the children so the result stays a consistent manifold. Where the
// midpoint goes is chosen by a Strategy.
package subdivide

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Strategy selects how an edge midpoint is placed.
type Strategy int

const (
	Linear   Strategy = iota // mean of the endpoints
	Jittered                 // mean plus a depth-scaled random offset
	Spline                   // cubic Hermite curve through the endpoint normals
)

func (s Strategy) String() string {
	switch s {
	case Linear:
		return "linear"
	case Jittered:
		return "jittered"
	case Spline:
		return "spline"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy maps a strategy name to its value.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "linear":
		return Linear, nil
	case "jittered":
		return Jittered, nil
	case "spline":
		return Spline, nil
	}
	return 0, fmt.Errorf("subdivide: unknown strategy %q (want linear, jittered or spline)", name)
}

// Variant selects the split topology.
type Variant int

const (
	// Quad splits each splittable triangle into four through its edge
	// midpoints. Neighbours that received midpoints split partially.
	Quad Variant = iota
	// Hex fans each splittable triangle around its centroid and flips every
	// edge shared by two split triangles.
	Hex
)

func (v Variant) String() string {
	switch v {
	case Quad:
		return "quad"
	case Hex:
		return "hex"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// ParseVariant maps a variant name to its value.
func ParseVariant(name string) (Variant, error) {
	switch name {
	case "quad":
		return Quad, nil
	case "hex":
		return Hex, nil
	}
	return 0, fmt.Errorf("subdivide: unknown variant %q (want quad or hex)", name)
}

// NoiseSource selects where jitter offsets come from.
type NoiseSource int

const (
	NoiseRandom NoiseSource = iota // seeded pseudo-random stream, consumed in edge order
	NoisePerlin                    // gradient noise sampled at the edge midpoint
)

func (n NoiseSource) String() string {
	switch n {
	case NoiseRandom:
		return "random"
	case NoisePerlin:
		return "perlin"
	default:
		return fmt.Sprintf("NoiseSource(%d)", int(n))
	}
}

// ParseNoiseSource maps a noise source name to its value.
func ParseNoiseSource(name string) (NoiseSource, error) {
	switch name {
	case "random":
		return NoiseRandom, nil
	case "perlin":
		return NoisePerlin, nil
	}
	return 0, fmt.Errorf("subdivide: unknown noise source %q (want random or perlin)", name)
}

// Jitter parameterises the Jittered strategy. Amplitudes are absolute
// distances; at depth d the in-plane amplitude is BaseShake*BaseExponent^d
// and the normal amplitude is NormalShake*NormalExponent^d.
type Jitter struct {
	BaseShake      float64
	BaseExponent   float64
	NormalShake    float64
	NormalExponent float64
	NormalBias     float64 // added to the unit noise sample along the normal
	Noise          NoiseSource
	Frequency      float64 // Perlin sampling frequency, per unit distance
}

// DistanceThreshold is the view-dependent split criterion: a triangle splits
// while sqrt(area)/|centroid - Viewpoint| exceeds Value.
type DistanceThreshold struct {
	Value     float64
	Viewpoint mgl64.Vec3
}

// SphereOptions configures the sphere-ize post-pass.
type SphereOptions struct {
	Enabled bool
	Radius  float64     // 0 uses the mean vertex distance
	Center  *mgl64.Vec3 // nil uses the vertex centroid
}

// Config configures a Subdivider.
type Config struct {
	Depth              int
	AreaThreshold      *float64
	Distance           *DistanceThreshold
	Strategy           Strategy
	Variant            Variant
	ClampBoundaryEdges bool
	Jitter             Jitter
	Sphere             SphereOptions
	Seed               int64
}

// DefaultConfig returns a single linear quad pass over every triangle.
func DefaultConfig() Config {
	return Config{
		Depth:    1,
		Strategy: Linear,
		Variant:  Quad,
		Jitter: Jitter{
			BaseShake:      0.1,
			BaseExponent:   0.5,
			NormalShake:    0.1,
			NormalExponent: 0.5,
			Noise:          NoiseRandom,
			Frequency:      1,
		},
	}
}

// Validate reports the first invalid setting in c.
func (c Config) Validate() error {
	if c.Depth < 0 {
		return fmt.Errorf("subdivide: depth %d is negative", c.Depth)
	}
	if c.AreaThreshold != nil && *c.AreaThreshold < 0 {
		return fmt.Errorf("subdivide: area threshold %g is negative", *c.AreaThreshold)
	}
	if c.Distance != nil && c.Distance.Value <= 0 {
		return fmt.Errorf("subdivide: distance threshold %g must be positive", c.Distance.Value)
	}
	if c.Strategy < Linear || c.Strategy > Spline {
		return fmt.Errorf("subdivide: invalid strategy %s", c.Strategy)
	}
	if c.Variant < Quad || c.Variant > Hex {
		return fmt.Errorf("subdivide: invalid variant %s", c.Variant)
	}
	if c.Strategy == Jittered {
		j := c.Jitter
		if j.BaseShake < 0 || j.NormalShake < 0 {
			return errors.New("subdivide: jitter shake must not be negative")
		}
		if j.BaseExponent < 0 || j.NormalExponent < 0 {
			return errors.New("subdivide: jitter exponents must not be negative")
		}
		if j.Noise != NoiseRandom && j.Noise != NoisePerlin {
			return fmt.Errorf("subdivide: invalid noise source %s", j.Noise)
		}
		if j.Noise == NoisePerlin && j.Frequency <= 0 {
			return fmt.Errorf("subdivide: perlin frequency %g must be positive", j.Frequency)
		}
	}
	if c.Sphere.Radius < 0 {
		return fmt.Errorf("subdivide: sphere radius %g is negative", c.Sphere.Radius)
	}
	return nil
}
