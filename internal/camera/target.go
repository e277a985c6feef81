package camera

import (
	"errors"
	"fmt"
	"time"

	"github.com/litescript/ls-stellar/internal/astro"
)

// ErrNonFiniteTarget is returned when a fly target has a NaN or infinite
// coordinate.
var ErrNonFiniteTarget = errors.New("non-finite fly target")

// MaxDuration is the exclusive upper bound on a requested flight duration.
const MaxDuration = 30 * time.Second

// FlyTarget is a request to move the camera.
type FlyTarget struct {
	Position astro.Vec3
	LookAt   *astro.Vec3   // nil looks at Position
	Duration time.Duration // outside (0, MaxDuration) means the default
	Easing   Easing        // unknown means ease-in-out
	Label    string
}

// TargetOption configures a FlyTarget.
type TargetOption func(*FlyTarget)

// WithLookAt sets the point the camera faces on arrival.
func WithLookAt(p astro.Vec3) TargetOption {
	return func(t *FlyTarget) {
		t.LookAt = &p
	}
}

// WithDuration sets the flight duration.
func WithDuration(d time.Duration) TargetOption {
	return func(t *FlyTarget) {
		t.Duration = d
	}
}

// WithEasing sets the easing curve.
func WithEasing(e Easing) TargetOption {
	return func(t *FlyTarget) {
		t.Easing = e
	}
}

// WithLabel tags the flight, usually with the destination star's label.
func WithLabel(label string) TargetOption {
	return func(t *FlyTarget) {
		t.Label = label
	}
}

// NewFlyTarget builds a validated target. Only finiteness is checked here;
// distance clamping and defaulting happen when the animator accepts it.
func NewFlyTarget(pos astro.Vec3, opts ...TargetOption) (FlyTarget, error) {
	t := FlyTarget{Position: pos}
	for _, opt := range opts {
		opt(&t)
	}
	if !pos.IsFinite() {
		return FlyTarget{}, fmt.Errorf("%w: position %+v", ErrNonFiniteTarget, pos)
	}
	if t.LookAt != nil && !t.LookAt.IsFinite() {
		return FlyTarget{}, fmt.Errorf("%w: look-at %+v", ErrNonFiniteTarget, *t.LookAt)
	}
	return t, nil
}
