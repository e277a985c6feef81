package starfield

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/litescript/ls-stellar/internal/astro"
)

// ColorSource identifies which attribute decided a star's base color.
type ColorSource int

const (
	SourceDefault ColorSource = iota
	SourceSpectral
	SourceTemperature
	SourceColorIndex
)

func (s ColorSource) String() string {
	switch s {
	case SourceSpectral:
		return "spectral"
	case SourceTemperature:
		return "temperature"
	case SourceColorIndex:
		return "b-v"
	default:
		return "default"
	}
}

// White is the fallback base color.
var White = colorful.Color{R: 1, G: 1, B: 1}

var spectralColors = map[byte]colorful.Color{
	'O': mustHex("#9bb0ff"),
	'B': mustHex("#aabfff"),
	'A': mustHex("#cad7ff"),
	'F': mustHex("#f8f7ff"),
	'G': mustHex("#fff4ea"),
	'K': mustHex("#ffd2a1"),
	'M': mustHex("#ffcc6f"),
}

// bucket maps values below Below to Color. The final bucket catches the rest.
type bucket struct {
	Below float64
	Color colorful.Color
}

var temperatureBuckets = []bucket{
	{2000, mustHex("#ff3800")},
	{3500, mustHex("#ff8912")},
	{5000, mustHex("#ffb46b")},
	{6000, mustHex("#ffdbba")},
	{7500, mustHex("#fff4ea")},
	{10000, mustHex("#f8f7ff")},
	{15000, mustHex("#cad7ff")},
	{20000, mustHex("#aabfff")},
	{30000, mustHex("#9db4ff")},
}

var temperatureHottest = mustHex("#9bb0ff")

var colorIndexBuckets = []bucket{
	{-0.3, mustHex("#9bb0ff")},
	{-0.1, mustHex("#aabfff")},
	{0.0, mustHex("#cad7ff")},
	{0.2, mustHex("#e4e8ff")},
	{0.4, mustHex("#f8f7ff")},
	{0.6, mustHex("#fff4ea")},
	{0.8, mustHex("#ffedd8")},
	{1.0, mustHex("#ffd2a1")},
	{1.3, mustHex("#ffc48a")},
	{1.6, mustHex("#ffb56c")},
}

var colorIndexReddest = mustHex("#ff9d4a")

// colorResolvers is tried in order; the first match decides the base color.
var colorResolvers = []struct {
	source  ColorSource
	resolve func(astro.Star) (colorful.Color, bool)
}{
	{SourceSpectral, SpectralColor},
	{SourceTemperature, TemperatureColor},
	{SourceColorIndex, ColorIndexColor},
}

// BaseColor returns the star's unscaled color and the attribute it came from.
// Spectral type wins over temperature, which wins over B−V; stars with none
// of them are white.
func BaseColor(s astro.Star) (colorful.Color, ColorSource) {
	for _, r := range colorResolvers {
		if c, ok := r.resolve(s); ok {
			return c, r.source
		}
	}
	return White, SourceDefault
}

// SpectralColor maps the first letter of the spectral type (OBAFGKM).
// Unrecognized classes (carbon stars, white dwarfs, ...) do not match.
func SpectralColor(s astro.Star) (colorful.Color, bool) {
	c, ok := spectralColors[s.SpectralClass()]
	return c, ok
}

// TemperatureColor maps effective temperature into ten buckets.
func TemperatureColor(s astro.Star) (colorful.Color, bool) {
	t, ok := s.Temperature()
	if !ok {
		return colorful.Color{}, false
	}
	return lookup(temperatureBuckets, temperatureHottest, t), true
}

// ColorIndexColor maps the B−V index into eleven buckets.
func ColorIndexColor(s astro.Star) (colorful.Color, bool) {
	bv, ok := s.ColorIndex()
	if !ok {
		return colorful.Color{}, false
	}
	return lookup(colorIndexBuckets, colorIndexReddest, bv), true
}

func lookup(buckets []bucket, last colorful.Color, v float64) colorful.Color {
	for _, b := range buckets {
		if v < b.Below {
			return b.Color
		}
	}
	return last
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}
