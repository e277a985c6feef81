package camera

import (
	"math"
	"strings"
)

// Easing names an easing curve.
type Easing string

// Recognized easings.
const (
	Linear    Easing = "linear"
	EaseIn    Easing = "ease-in"
	EaseOut   Easing = "ease-out"
	EaseInOut Easing = "ease-in-out"
	Elastic   Easing = "elastic"
	Bounce    Easing = "bounce"
)

// EaseFunc maps linear progress in [0,1] to eased progress.
// Every curve returns 0 at 0 and 1 at 1.
type EaseFunc func(t float64) float64

var easings = map[Easing]EaseFunc{
	Linear:    linear,
	EaseIn:    easeInCubic,
	EaseOut:   easeOutCubic,
	EaseInOut: easeInOutQuad,
	Elastic:   elasticOut,
	Bounce:    bounceOut,
}

// Easings lists the recognized easings.
func Easings() []Easing {
	return []Easing{Linear, EaseIn, EaseOut, EaseInOut, Elastic, Bounce}
}

// ParseEasing resolves an easing name (case-insensitive).
func ParseEasing(s string) (Easing, bool) {
	e := Easing(strings.ToLower(strings.TrimSpace(s)))
	_, ok := easings[e]
	return e, ok
}

// Valid reports whether e is a recognized easing.
func (e Easing) Valid() bool {
	_, ok := easings[e]
	return ok
}

// Func returns the curve for e, or ease-in-out for unknown names.
func (e Easing) Func() EaseFunc {
	if f, ok := easings[e]; ok {
		return f
	}
	return easeInOutQuad
}

func linear(t float64) float64 {
	return t
}

func easeInCubic(t float64) float64 {
	return t * t * t
}

func easeOutCubic(t float64) float64 {
	u := t - 1
	return u*u*u + 1
}

func easeInOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}

func elasticOut(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	const c4 = 2 * math.Pi / 3
	return math.Pow(2, -10*t)*math.Sin((10*t-0.75)*c4) + 1
}

func bounceOut(t float64) float64 {
	const (
		n1 = 7.5625
		d1 = 2.75
	)
	switch {
	case t < 1/d1:
		return n1 * t * t
	case t < 2/d1:
		t -= 1.5 / d1
		return n1*t*t + 0.75
	case t < 2.5/d1:
		t -= 2.25 / d1
		return n1*t*t + 0.9375
	default:
		t -= 2.625 / d1
		return n1*t*t + 0.984375
	}
}
