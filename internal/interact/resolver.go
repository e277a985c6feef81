// Package interact turns pointer events on the rendered star cloud into
// hover/click notifications and fly-to requests.
package interact

import (
	"math"
	"time"

	"golang.org/x/time/rate"

	"github.com/litescript/ls-stellar/internal/astro"
	"github.com/litescript/ls-stellar/internal/camera"
	"github.com/litescript/ls-stellar/internal/logging"
	"github.com/litescript/ls-stellar/internal/starfield"
)

const (
	// MinApproach is the smallest stand-off distance when flying to a star.
	MinApproach = 100.0

	// ApproachFactor scales a star's distance (pc) into its stand-off distance.
	ApproachFactor = 0.5

	// FlyDuration is the duration of a fly-to-star flight.
	FlyDuration = 2500 * time.Millisecond

	noStar = -1
)

// Listener receives pointer notifications. Index refers to the current
// render buffers.
type Listener interface {
	OnHover(star astro.Star, index int)
	OnHoverEnd()
	OnClick(star astro.Star, index int)
}

// Flyer accepts fly targets. *camera.Animator implements it.
type Flyer interface {
	FlyTo(t *camera.FlyTarget) bool
}

// Resolver maps pointer events carrying a buffer index to stars.
// It is used from the UI goroutine only.
type Resolver struct {
	buffers   starfield.Buffers
	transform astro.Transform
	cam       *camera.PerspectiveCamera
	flyer     Flyer
	listener  Listener
	limiter   *rate.Limiter
	logger    *logging.Logger

	hovered  int
	notified int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithListener sets the notification receiver.
func WithListener(l Listener) Option {
	return func(r *Resolver) {
		r.listener = l
	}
}

// WithHoverRate limits hover notifications to limit per second with the
// given burst. Hover state is tracked regardless.
func WithHoverRate(limit rate.Limit, burst int) Option {
	return func(r *Resolver) {
		r.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithLogger sets the resolver logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// NewResolver creates a resolver. transform must be the one the buffers
// were projected with, so a star is flown to where it is drawn.
func NewResolver(transform astro.Transform, cam *camera.PerspectiveCamera, flyer Flyer, opts ...Option) *Resolver {
	r := &Resolver{
		transform: transform,
		cam:       cam,
		flyer:     flyer,
		limiter:   rate.NewLimiter(rate.Limit(20), 1),
		logger:    logging.Discard(),
		hovered:   noStar,
		notified:  noStar,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetBuffers swaps in freshly projected buffers. Indices from the old
// buffers are meaningless afterwards, so hover state is cleared.
func (r *Resolver) SetBuffers(b starfield.Buffers) {
	r.buffers = b
	r.PointerOut()
}

// Buffers returns the buffers indices currently resolve against.
func (r *Resolver) Buffers() starfield.Buffers {
	return r.buffers
}

// Hovered returns the star under the pointer.
func (r *Resolver) Hovered() (astro.Star, int, bool) {
	s, ok := r.buffers.Star(r.hovered)
	if !ok {
		return astro.Star{}, noStar, false
	}
	return s, r.hovered, true
}

// PointerMove records the star under the pointer. An index that does not
// resolve is treated as PointerOut.
func (r *Resolver) PointerMove(index int) (astro.Star, bool) {
	s, ok := r.buffers.Star(index)
	if !ok {
		r.PointerOut()
		return astro.Star{}, false
	}
	r.hovered = index
	r.notify(s)
	return s, true
}

// Settle delivers a hover notification the limiter withheld for the star
// the pointer now rests on. Call it once per frame.
func (r *Resolver) Settle() {
	if s, ok := r.buffers.Star(r.hovered); ok {
		r.notify(s)
	}
}

func (r *Resolver) notify(s astro.Star) {
	if r.notified != r.hovered && r.listener != nil && r.limiter.Allow() {
		r.notified = r.hovered
		r.listener.OnHover(s, r.hovered)
	}
}

// PointerOut clears the hover.
func (r *Resolver) PointerOut() {
	r.hovered = noStar
	if r.notified != noStar {
		r.notified = noStar
		if r.listener != nil {
			r.listener.OnHoverEnd()
		}
	}
}

// PointerDown resolves a click. When the star has a distance, a fly target
// toward it is submitted and returned.
func (r *Resolver) PointerDown(index int) (camera.FlyTarget, bool) {
	s, ok := r.buffers.Star(index)
	if !ok {
		return camera.FlyTarget{}, false
	}
	if r.listener != nil {
		r.listener.OnClick(s, index)
	}

	var from astro.Vec3
	if r.cam != nil {
		from = r.cam.Position
	}
	t, ok := TargetForStar(s, from, r.transform)
	if !ok {
		r.logger.Debug("no fly target for %s", s.Label())
		return camera.FlyTarget{}, false
	}
	if r.flyer != nil && !r.flyer.FlyTo(&t) {
		r.logger.Warn("fly to %s rejected", s.Label())
		return camera.FlyTarget{}, false
	}
	r.logger.Info("flying to %s", s.Label())
	return t, true
}

// TargetForStar builds the fly target used for every fly-to-star request.
// The camera stops short of the star on the side it is coming from, by
// max(MinApproach, dist*ApproachFactor), and looks at the star.
func TargetForStar(s astro.Star, from astro.Vec3, transform astro.Transform) (camera.FlyTarget, bool) {
	pos, ok := transform.StarPosition(s)
	if !ok {
		return camera.FlyTarget{}, false
	}
	dist, _ := s.Distance()
	offset := math.Max(MinApproach, dist*ApproachFactor)

	dir := from.Sub(pos).Normalized()
	if dir.Norm() == 0 {
		dir = pos.Normalized()
	}
	if dir.Norm() == 0 {
		dir = astro.Vec3{Z: 1}
	}

	t, err := camera.NewFlyTarget(pos.Add(dir.Scale(offset)),
		camera.WithLookAt(pos),
		camera.WithDuration(FlyDuration),
		camera.WithEasing(camera.EaseInOut),
		camera.WithLabel(s.Label()),
	)
	if err != nil {
		return camera.FlyTarget{}, false
	}
	return t, true
}
