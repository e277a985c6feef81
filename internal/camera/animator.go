package camera

import (
	"fmt"
	"math"
	"time"

	"github.com/litescript/ls-stellar/internal/astro"
	"github.com/litescript/ls-stellar/internal/logging"
)

// forwardProbe is how far ahead of the camera the start look-at is taken
// when no orbit controller is attached.
const forwardProbe = 1000.0

// Config bounds camera flights.
type Config struct {
	MinDistance     float64 // Closest a flight may end to the origin
	MaxDistance     float64 // Farthest a flight may end from the origin
	DefaultDuration time.Duration
}

// DefaultConfig returns the default flight bounds.
func DefaultConfig() Config {
	return Config{
		MinDistance:     0.5,
		MaxDistance:     20000,
		DefaultDuration: 2 * time.Second,
	}
}

// Clamp rescales p so its distance from the origin lies within
// [MinDistance, MaxDistance], keeping its direction. The origin itself maps
// to MinDistance along +Z.
func (c Config) Clamp(p astro.Vec3) astro.Vec3 {
	r := p.Norm()
	switch {
	case r == 0:
		return astro.Vec3{Z: c.MinDistance}
	case r < c.MinDistance:
		return p.Scale(c.MinDistance / r)
	case r > c.MaxDistance:
		return p.Scale(c.MaxDistance / r)
	}
	return p
}

// Phase is the animator's state.
type Phase int

const (
	PhaseIdle     Phase = iota
	PhaseStarting       // Accepted, not yet ticked
	PhaseRunning
)

func (p Phase) String() string {
	switch p {
	case PhaseStarting:
		return "starting"
	case PhaseRunning:
		return "running"
	default:
		return "idle"
	}
}

// EventKind classifies animator events.
type EventKind int

const (
	EventStarted EventKind = iota
	EventCompleted
	EventPreempted // Replaced by a newer flight before completing
	EventCancelled
	EventFault // Tick failed; the animator reset to idle
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventCompleted:
		return "completed"
	case EventPreempted:
		return "preempted"
	case EventCancelled:
		return "cancelled"
	case EventFault:
		return "fault"
	default:
		return "unknown"
	}
}

// Event reports a flight lifecycle change. Events are returned from Tick in
// the order they happened.
type Event struct {
	Kind  EventKind
	Label string
	Err   error // Set for EventFault
}

// Observer receives flight lifecycle events.
type Observer interface {
	ObserveFlight(kind string)
}

// flight is the state of one accepted fly-to. It is replaced, never edited,
// except for the started flag.
type flight struct {
	startPos  astro.Vec3
	startLook astro.Vec3
	endPos    astro.Vec3
	endLook   astro.Vec3
	start     time.Time
	duration  time.Duration
	easing    Easing
	ease      EaseFunc
	started   bool
	label     string
}

// Animator drives the camera along fly-to paths. It is advanced by calling
// Tick once per frame and is not safe for concurrent use.
type Animator struct {
	cfg      Config
	camera   *PerspectiveCamera
	orbit    *Orbit
	clock    Clock
	logger   *logging.Logger
	observer Observer

	active  *flight
	pending []Event
	closed  bool
}

// AnimatorOption configures an Animator.
type AnimatorOption func(*Animator)

// WithOrbit routes look-at updates through an orbit controller.
func WithOrbit(o *Orbit) AnimatorOption {
	return func(a *Animator) {
		a.orbit = o
	}
}

// WithClock sets the time source.
func WithClock(c Clock) AnimatorOption {
	return func(a *Animator) {
		a.clock = c
	}
}

// WithLogger sets the animator logger.
func WithLogger(l *logging.Logger) AnimatorOption {
	return func(a *Animator) {
		a.logger = l
	}
}

// WithObserver reports lifecycle events to o.
func WithObserver(o Observer) AnimatorOption {
	return func(a *Animator) {
		a.observer = o
	}
}

// NewAnimator creates an idle animator for cam.
func NewAnimator(cam *PerspectiveCamera, cfg Config, opts ...AnimatorOption) *Animator {
	a := &Animator{
		cfg:    cfg,
		camera: cam,
		clock:  SystemClock{},
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Config returns the flight bounds.
func (a *Animator) Config() Config {
	return a.cfg
}

// FlyTo starts a flight toward t, replacing any flight in progress. A nil
// target cancels. It returns false, leaving the animator unchanged, when
// the destination is not finite.
func (a *Animator) FlyTo(t *FlyTarget) bool {
	if t == nil {
		a.Cancel()
		return false
	}
	if a.closed {
		return false
	}
	if !t.Position.IsFinite() {
		a.logger.Warn("rejecting fly target %q: non-finite destination %+v", t.Label, t.Position)
		return false
	}

	end := a.cfg.Clamp(t.Position)

	look := end
	if t.LookAt != nil {
		if t.LookAt.IsFinite() {
			look = *t.LookAt
		} else {
			a.logger.Warn("fly target %q: non-finite look-at, using destination", t.Label)
		}
	}

	dur := t.Duration
	if dur <= 0 || dur >= MaxDuration {
		dur = a.cfg.DefaultDuration
	}

	easing := t.Easing
	if !easing.Valid() {
		easing = EaseInOut
	}

	f := &flight{
		startPos:  a.camera.Position,
		startLook: a.currentLook(),
		endPos:    end,
		endLook:   look,
		start:     a.clock.Now(),
		duration:  dur,
		easing:    easing,
		ease:      easing.Func(),
		label:     t.Label,
	}

	if prev := a.active; prev != nil {
		a.emit(Event{Kind: EventPreempted, Label: prev.label})
		a.logger.Debug("flight %q preempted by %q", prev.label, f.label)
	}
	a.active = f
	a.logger.Debug("flight %q accepted: %v over %v (%s)", f.label, end, dur, easing)
	return true
}

// Cancel abandons the current flight, leaving the camera where it is.
func (a *Animator) Cancel() {
	if a.active == nil {
		return
	}
	a.emit(Event{Kind: EventCancelled, Label: a.active.label})
	a.active = nil
}

// Close stops the animator for good. Pending events are dropped.
func (a *Animator) Close() {
	a.active = nil
	a.pending = nil
	a.closed = true
}

// Phase returns the current state.
func (a *Animator) Phase() Phase {
	switch {
	case a.active == nil:
		return PhaseIdle
	case !a.active.started:
		return PhaseStarting
	default:
		return PhaseRunning
	}
}

// Active reports whether a flight is in progress.
func (a *Animator) Active() bool {
	return a.active != nil
}

// Target returns the resolved destination and look-at of the current flight.
func (a *Animator) Target() (pos, look astro.Vec3, ok bool) {
	if a.active == nil {
		return astro.Vec3{}, astro.Vec3{}, false
	}
	return a.active.endPos, a.active.endLook, true
}

// Progress returns linear progress of the current flight in [0,1].
func (a *Animator) Progress() float64 {
	if a.active == nil {
		return 0
	}
	return a.active.progress(a.clock.Now())
}

// Tick advances the current flight to the clock's time and returns the
// events that occurred since the previous tick. A panic during the update
// is recovered, logged, and reported as an EventFault.
func (a *Animator) Tick() (events []Event) {
	events = a.pending
	a.pending = nil

	f := a.active
	if f == nil {
		return events
	}

	defer func() {
		if r := recover(); r != nil {
			a.active = nil
			err := fmt.Errorf("flight %q: %v", f.label, r)
			a.logger.Error("animation tick failed: %v", err)
			a.observe(EventFault)
			events = append(events, Event{Kind: EventFault, Label: f.label, Err: err})
		}
	}()

	if !f.started {
		f.started = true
		a.observe(EventStarted)
		events = append(events, Event{Kind: EventStarted, Label: f.label})
	}

	p := f.progress(a.clock.Now())
	if p >= 1 {
		a.apply(f.endPos, f.endLook)
		a.active = nil
		a.observe(EventCompleted)
		a.logger.Debug("flight %q completed", f.label)
		return append(events, Event{Kind: EventCompleted, Label: f.label})
	}

	e := f.ease(p)
	a.apply(f.startPos.Lerp(f.endPos, e), f.startLook.Lerp(f.endLook, e))
	return events
}

func (f *flight) progress(now time.Time) float64 {
	if f.duration <= 0 {
		return 1
	}
	p := float64(now.Sub(f.start)) / float64(f.duration)
	return math.Max(0, math.Min(1, p))
}

func (a *Animator) apply(pos, look astro.Vec3) {
	if !pos.IsFinite() || !look.IsFinite() {
		panic(fmt.Sprintf("non-finite camera state pos=%+v look=%+v", pos, look))
	}
	a.camera.Position = pos
	if a.orbit != nil {
		a.orbit.Aim(look)
		return
	}
	a.camera.LookAt(look)
}

func (a *Animator) currentLook() astro.Vec3 {
	if a.orbit != nil {
		return a.orbit.Target()
	}
	return a.camera.Position.Add(a.camera.Forward.Normalized().Scale(forwardProbe))
}

func (a *Animator) emit(e Event) {
	a.observe(e.Kind)
	a.pending = append(a.pending, e)
}

func (a *Animator) observe(k EventKind) {
	if a.observer != nil {
		a.observer.ObserveFlight(k.String())
	}
}
