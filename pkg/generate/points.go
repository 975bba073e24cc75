package generate

import (
	"math"
	"math/rand/v2"

	"github.com/aquilax/go-perlin"
	"github.com/chazu/talus/pkg/recipe"
	"github.com/go-gl/mathgl/mgl64"
)

// roughnessFrequency is the Perlin sampling frequency on the unit sphere.
const roughnessFrequency = 1.5

// SamplePoints draws c.Count points from the ellipsoid with semi-axes
// c.Radii centered on the origin: uniformly through its volume, or on its
// surface when c.Surface is set. With Roughness > 0 each point's distance
// from the center is scaled by 1 + Roughness*n, where n in [-1, 1] is
// Perlin noise sampled at the point's direction, so nearby points move
// together. Equal clouds yield equal points.
func SamplePoints(c recipe.PointCloud) []mgl64.Vec3 {
	if c.Count <= 0 {
		return nil
	}
	rng := rand.New(rand.NewPCG(uint64(c.Seed), uint64(c.Seed)^0x9e3779b97f4a7c15))
	var noise *perlin.Perlin
	if c.Roughness > 0 {
		noise = perlin.NewPerlin(2, 2, 3, c.Seed)
	}

	points := make([]mgl64.Vec3, 0, c.Count)
	for len(points) < c.Count {
		dir := mgl64.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
		l := dir.Len()
		if l < 1e-9 {
			continue
		}
		dir = dir.Mul(1 / l)

		r := 1.0
		if !c.Surface {
			r = math.Cbrt(rng.Float64())
		}
		if noise != nil {
			q := dir.Mul(roughnessFrequency)
			n := max(-1, min(1, 2*noise.Noise3D(q.X(), q.Y(), q.Z())))
			r *= 1 + c.Roughness*n
		}

		p := dir.Mul(r)
		points = append(points, mgl64.Vec3{p.X() * c.Radii.X(), p.Y() * c.Radii.Y(), p.Z() * c.Radii.Z()})
	}
	return points
}
