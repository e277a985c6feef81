package starfield

import (
	"math"
	"math/rand"

	"github.com/litescript/ls-stellar/internal/astro"
)

// BackgroundRadius is the scene distance of the far-field shell.
const BackgroundRadius = 9000.0

// BackgroundStar is a dim decorative point with no catalogue record.
type BackgroundStar struct {
	Position  astro.Vec3
	Intensity float64 // 0..1
}

// BackgroundStars returns tier.BackgroundStars points spread uniformly over
// a far shell. The same seed always yields the same set.
func BackgroundStars(tier Tier, seed int64) []BackgroundStar {
	rng := rand.New(rand.NewSource(seed))
	out := make([]BackgroundStar, tier.BackgroundStars)
	for i := range out {
		// Uniform on the sphere: z uniform in [-1,1], azimuth uniform.
		z := 2*rng.Float64() - 1
		phi := 2 * math.Pi * rng.Float64()
		r := math.Sqrt(1 - z*z)
		out[i] = BackgroundStar{
			Position: astro.Vec3{
				X: BackgroundRadius * r * math.Cos(phi),
				Y: BackgroundRadius * z,
				Z: BackgroundRadius * r * math.Sin(phi),
			},
			Intensity: 0.1 + 0.3*rng.Float64()*rng.Float64(),
		}
	}
	return out
}
