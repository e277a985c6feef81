package astro

import (
	"fmt"
	"math"
	"strings"
)

// Star is an immutable catalogue entry. Optional attributes are pointers so
// that a JSON null or a missing column stays distinguishable from zero.
//
// Field tags follow the NDJSON layout produced by the catalogue tooling.
type Star struct {
	HIP      *int     `json:"hip"`
	RAdeg    float64  `json:"ra"`
	DecDeg   float64  `json:"dec"`
	Vmag     *float64 `json:"vmag"`
	Parallax *float64 `json:"plx"`     // milliarcseconds
	BV       *float64 `json:"bv"`      // B−V color index
	SpType   string   `json:"sp_type"` // e.g. "G2V"; empty when unknown
	DistPC   *float64 `json:"dist_pc"`
	AbsMag   *float64 `json:"absmag"`
	TempK    *float64 `json:"temp_k"`
	Name     string   `json:"name,omitempty"`
}

// Ptr returns a pointer to v. Handy for building catalogue literals.
func Ptr[T any](v T) *T {
	return &v
}

// Mag returns the visual magnitude, if recorded.
func (s Star) Mag() (float64, bool) {
	return deref(s.Vmag)
}

// Distance returns the distance in parsecs, if recorded.
func (s Star) Distance() (float64, bool) {
	return deref(s.DistPC)
}

// Temperature returns the effective temperature in Kelvin, if recorded.
func (s Star) Temperature() (float64, bool) {
	return deref(s.TempK)
}

// ColorIndex returns the B−V color index, if recorded.
func (s Star) ColorIndex() (float64, bool) {
	return deref(s.BV)
}

// ID returns the Hipparcos number, if recorded.
func (s Star) ID() (int, bool) {
	if s.HIP == nil {
		return 0, false
	}
	return *s.HIP, true
}

// SpectralClass returns the upper-cased first letter of the spectral type,
// or 0 when no spectral type is recorded.
func (s Star) SpectralClass() byte {
	sp := strings.TrimSpace(s.SpType)
	if sp == "" {
		return 0
	}
	c := sp[0]
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	return c
}

// Named reports whether the star has a common name.
func (s Star) Named() bool {
	return strings.TrimSpace(s.Name) != ""
}

// Label returns the best human-readable identifier for the star.
func (s Star) Label() string {
	if s.Named() {
		return s.Name
	}
	if hip, ok := s.ID(); ok {
		return fmt.Sprintf("HIP %d", hip)
	}
	return fmt.Sprintf("RA %.2f° Dec %+.2f°", s.RAdeg, s.DecDeg)
}

func deref(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

// DistanceFromParallax converts a parallax in milliarcseconds to parsecs.
// ok is false for non-positive or non-finite parallaxes.
func DistanceFromParallax(plxMas float64) (float64, bool) {
	if !(plxMas > 0) || math.IsInf(plxMas, 0) {
		return 0, false
	}
	return 1000.0 / plxMas, true
}

// AbsoluteMagnitude returns M = m − 5(log10 d − 1) for an apparent
// magnitude m at d parsecs.
func AbsoluteMagnitude(mag, distPC float64) (float64, bool) {
	if !(distPC > 0) {
		return 0, false
	}
	return mag - 5*(math.Log10(distPC)-1), true
}

// TemperatureFromBV estimates effective temperature from the B−V index
// using the Ballesteros (2012) black-body approximation.
func TemperatureFromBV(bv float64) (float64, bool) {
	if !isFinite(bv) {
		return 0, false
	}
	a := 0.92*bv + 1.7
	b := 0.92*bv + 0.62
	if a == 0 || b == 0 {
		return 0, false
	}
	t := 4600 * (1/a + 1/b)
	if !isFinite(t) || t <= 0 {
		return 0, false
	}
	return t, true
}

// Derive fills attributes that can be computed from others: distance from
// parallax, absolute magnitude from magnitude and distance, temperature from
// B−V. Recorded values are never overwritten. The loader calls Derive once,
// before the record is handed to the rest of the system.
func (s Star) Derive() Star {
	if s.DistPC == nil && s.Parallax != nil {
		if d, ok := DistanceFromParallax(*s.Parallax); ok {
			s.DistPC = Ptr(d)
		}
	}
	if s.AbsMag == nil && s.Vmag != nil && s.DistPC != nil {
		if m, ok := AbsoluteMagnitude(*s.Vmag, *s.DistPC); ok {
			s.AbsMag = Ptr(m)
		}
	}
	if s.TempK == nil && s.BV != nil {
		if t, ok := TemperatureFromBV(*s.BV); ok {
			s.TempK = Ptr(t)
		}
	}
	s.SpType = strings.TrimSpace(s.SpType)
	s.Name = strings.TrimSpace(s.Name)
	return s
}

// Valid reports whether the star's sky position is usable.
func (s Star) Valid() bool {
	return isFinite(s.RAdeg) && isFinite(s.DecDeg) && s.DecDeg >= -90 && s.DecDeg <= 90
}
