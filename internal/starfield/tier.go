package starfield

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTier is returned by ParseTier for names outside low/medium/high.
var ErrUnknownTier = errors.New("unknown quality tier")

// Tier is a rendering quality level.
type Tier struct {
	Name             string
	MaxStars         int // Catalogue stars kept after magnitude sort
	SpriteResolution int // Point sprite texture size in pixels
	BackgroundStars  int // Far-field backdrop density
}

// Quality tiers, lowest first.
var (
	TierLow    = Tier{Name: "low", MaxStars: 5000, SpriteResolution: 32, BackgroundStars: 1000}
	TierMedium = Tier{Name: "medium", MaxStars: 15000, SpriteResolution: 64, BackgroundStars: 3000}
	TierHigh   = Tier{Name: "high", MaxStars: 50000, SpriteResolution: 128, BackgroundStars: 8000}
)

var tiers = []Tier{TierLow, TierMedium, TierHigh}

// Tiers returns all quality tiers, lowest first.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

// ParseTier resolves a tier by name (case-insensitive).
func ParseTier(name string) (Tier, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, t := range tiers {
		if t.Name == n {
			return t, nil
		}
	}
	return Tier{}, fmt.Errorf("%w: %q", ErrUnknownTier, name)
}

// Next returns the next tier, wrapping from high back to low.
func (t Tier) Next() Tier {
	for i, tt := range tiers {
		if tt.Name == t.Name {
			return tiers[(i+1)%len(tiers)]
		}
	}
	return TierMedium
}

func (t Tier) String() string {
	return t.Name
}
