package astro

import (
	"math"
)

const (
	// DefaultScale is the scene units per parsec used across the whole scene.
	DefaultScale = 1.2

	// MinDistancePC floors catalogue distances so a star at distance zero
	// (or with a bogus negative distance) neither collapses onto the origin
	// nor flips to the opposite side of the sky.
	MinDistancePC = 0.1
)

// Transform maps equatorial catalogue coordinates into scene space.
//
// Every component that places a star (render pipeline, pointer picking,
// search, tour) must use the same Transform value so that a star is flown
// to exactly where it is drawn.
type Transform struct {
	Scale float64 // Scene units per parsec
}

// DefaultTransform returns the transform with DefaultScale.
func DefaultTransform() Transform {
	return Transform{Scale: DefaultScale}
}

// ToCartesian converts right ascension, declination (degrees) and distance
// (parsecs) to scene coordinates. Declination maps to the vertical Y axis.
func (t Transform) ToCartesian(raDeg, decDeg, distPC float64) Vec3 {
	ra := degToRad(raDeg)
	dec := degToRad(decDeg)
	d := math.Max(MinDistancePC, distPC) * t.Scale

	cosDec := math.Cos(dec)
	return Vec3{
		X: d * cosDec * math.Cos(ra),
		Y: d * math.Sin(dec),
		Z: d * cosDec * math.Sin(ra),
	}
}

// EffectiveDistance returns the scene-space radius a star at distPC is placed at.
func (t Transform) EffectiveDistance(distPC float64) float64 {
	return math.Max(MinDistancePC, distPC) * t.Scale
}

// StarPosition returns the scene position of a star. ok is false when the
// star has no recorded distance and therefore no defined 3D position.
func (t Transform) StarPosition(s Star) (Vec3, bool) {
	dist, ok := s.Distance()
	if !ok {
		return Vec3{}, false
	}
	return t.ToCartesian(s.RAdeg, s.DecDeg, dist), true
}

// SkyDirection returns the RA/Dec (degrees) of a scene-space direction.
// It inverts ToCartesian up to distance.
func SkyDirection(v Vec3) (raDeg, decDeg float64) {
	r := v.Norm()
	if r == 0 {
		return 0, 0
	}
	decDeg = radToDeg(math.Asin(v.Y / r))
	raDeg = radToDeg(math.Atan2(v.Z, v.X))
	if raDeg < 0 {
		raDeg += 360
	}
	return raDeg, decDeg
}
