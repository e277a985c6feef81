// Package starfield turns a star catalogue into flat render buffers.
package starfield

import (
	"math"
	"sort"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/litescript/ls-stellar/internal/astro"
	"github.com/litescript/ls-stellar/internal/logging"
)

const (
	// assumedMagnitude stands in for a missing magnitude when deriving
	// brightness and size.
	assumedMagnitude = 8.0

	// sortMagnitude stands in for a missing magnitude when ordering stars.
	sortMagnitude = 10.0

	minBrightness = 0.3
)

// Config holds the scene parameters shared by the pipeline and everything
// that places stars in space.
type Config struct {
	Transform        astro.Transform
	MagnitudeCeiling float64 // Stars fainter than this are dropped
	BrightnessBoost  float64
	NamedBoost       float64 // Extra factor for stars with a common name
	VeryBrightBoost  float64 // Extra factor for magnitude < 0
	SizeMin          float64
	SizeMax          float64
}

// DefaultConfig returns the default scene configuration.
func DefaultConfig() Config {
	return Config{
		Transform:        astro.DefaultTransform(),
		MagnitudeCeiling: 12,
		BrightnessBoost:  1.6,
		NamedBoost:       1.3,
		VeryBrightBoost:  1.5,
		SizeMin:          0.6,
		SizeMax:          8.0,
	}
}

// Buffers are index-aligned render arrays. Entry i of Stars produced the
// three floats at Positions[3i:3i+3], Colors[3i:3i+3] and Sizes[i].
type Buffers struct {
	Positions []float32
	Colors    []float32
	Sizes     []float32
	Stars     []astro.Star
	Stats     Stats
}

// Stats describes what the pipeline dropped.
type Stats struct {
	Input      int
	NoDistance int
	TooFaint   int
	Invalid    int // Non-finite coordinates; should not occur after loading
	Truncated  int
}

// Len returns the number of projected stars.
func (b Buffers) Len() int {
	return len(b.Stars)
}

// Position returns the scene position of projected star i.
func (b Buffers) Position(i int) astro.Vec3 {
	return astro.Vec3{
		X: float64(b.Positions[3*i]),
		Y: float64(b.Positions[3*i+1]),
		Z: float64(b.Positions[3*i+2]),
	}
}

// Color returns the brightness-scaled color of projected star i.
// Channels may exceed 1.
func (b Buffers) Color(i int) colorful.Color {
	return colorful.Color{
		R: float64(b.Colors[3*i]),
		G: float64(b.Colors[3*i+1]),
		B: float64(b.Colors[3*i+2]),
	}
}

// Star returns the record at index i, or false when i is out of range.
func (b Buffers) Star(i int) (astro.Star, bool) {
	if i < 0 || i >= len(b.Stars) {
		return astro.Star{}, false
	}
	return b.Stars[i], true
}

// Project filters, sorts and truncates stars for the given tier and
// derives per-star position, color and size. It is a pure function of its
// inputs; an empty result is not an error.
func Project(stars []astro.Star, tier Tier, cfg Config) Buffers {
	stats := Stats{Input: len(stars)}

	eligible := make([]astro.Star, 0, len(stars))
	for _, s := range stars {
		dist, ok := s.Distance()
		if !ok {
			stats.NoDistance++
			continue
		}
		if mag, ok := s.Mag(); ok && mag > cfg.MagnitudeCeiling {
			stats.TooFaint++
			continue
		}
		if !finite(s.RAdeg) || !finite(s.DecDeg) || !finite(dist) {
			stats.Invalid++
			continue
		}
		eligible = append(eligible, s)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return sortKey(eligible[i]) < sortKey(eligible[j])
	})

	if tier.MaxStars >= 0 && len(eligible) > tier.MaxStars {
		stats.Truncated = len(eligible) - tier.MaxStars
		eligible = eligible[:tier.MaxStars]
	}

	n := len(eligible)
	b := Buffers{
		Positions: make([]float32, 0, 3*n),
		Colors:    make([]float32, 0, 3*n),
		Sizes:     make([]float32, 0, n),
		Stars:     eligible,
		Stats:     stats,
	}

	for _, s := range eligible {
		pos, _ := cfg.Transform.StarPosition(s)
		b.Positions = append(b.Positions, float32(pos.X), float32(pos.Y), float32(pos.Z))

		base, _ := BaseColor(s)
		f := cfg.Brightness(s)
		b.Colors = append(b.Colors, float32(base.R*f), float32(base.G*f), float32(base.B*f))

		b.Sizes = append(b.Sizes, float32(cfg.Size(s)))
	}

	return b
}

// Brightness returns the color multiplier for a star.
func (c Config) Brightness(s astro.Star) float64 {
	mag := magOr(s, assumedMagnitude)
	f := math.Max(minBrightness, 1-(mag+1)/15) * c.BrightnessBoost
	return f * c.boosts(s, mag)
}

// Size returns the point size for a star.
func (c Config) Size(s astro.Star) float64 {
	mag := magOr(s, assumedMagnitude)
	size := clamp((7-mag)*0.8+1, c.SizeMin, c.SizeMax)
	return size * c.boosts(s, mag)
}

func (c Config) boosts(s astro.Star, mag float64) float64 {
	f := 1.0
	if s.Named() {
		f *= c.NamedBoost
	}
	if mag < 0 {
		f *= c.VeryBrightBoost
	}
	return f
}

func sortKey(s astro.Star) float64 {
	return magOr(s, sortMagnitude)
}

func magOr(s astro.Star, def float64) float64 {
	if m, ok := s.Mag(); ok {
		return m
	}
	return def
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Observer receives pipeline run reports.
type Observer interface {
	ObserveProjection(tier string, stars int, elapsed time.Duration)
}

// Pipeline wraps Project with logging and observation.
type Pipeline struct {
	cfg      Config
	logger   *logging.Logger
	observer Observer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(l *logging.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// WithObserver reports every run to o.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) {
		p.observer = o
	}
}

// NewPipeline creates a pipeline with the given scene configuration.
func NewPipeline(cfg Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:    cfg,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns the pipeline's scene configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Run projects stars for tier.
func (p *Pipeline) Run(stars []astro.Star, tier Tier) Buffers {
	start := time.Now()
	b := Project(stars, tier, p.cfg)
	elapsed := time.Since(start)

	if b.Stats.Invalid > 0 {
		p.logger.Error("dropped %d stars with non-finite coordinates", b.Stats.Invalid)
	}
	p.logger.Debug("projected %d/%d stars (tier=%s, no distance=%d, faint=%d, truncated=%d) in %v",
		b.Len(), b.Stats.Input, tier.Name, b.Stats.NoDistance, b.Stats.TooFaint, b.Stats.Truncated, elapsed)

	if p.observer != nil {
		p.observer.ObserveProjection(tier.Name, b.Len(), elapsed)
	}
	return b
}
