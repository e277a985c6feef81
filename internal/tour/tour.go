// Package tour sequences a scripted flight through a list of named stars.
package tour

import (
	"time"

	"github.com/litescript/ls-stellar/internal/astro"
	"github.com/litescript/ls-stellar/internal/camera"
	"github.com/litescript/ls-stellar/internal/interact"
)

// DefaultInterval is the time spent at each stop.
const DefaultInterval = 8 * time.Second

// DefaultPlaylist is the built-in tour.
var DefaultPlaylist = []string{
	"Sirius",
	"Rigil Kentaurus",
	"Vega",
	"Betelgeuse",
	"Rigel",
	"Polaris",
	"Deneb",
	"Antares",
	"Aldebaran",
	"Arcturus",
}

// Lookup resolves a star name in the current dataset.
type Lookup func(name string) (astro.Star, bool)

// Sequencer walks a playlist. It is not safe for concurrent use.
type Sequencer struct {
	playlist []string
	interval time.Duration
	loop     bool
	pos      int
	done     bool
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithPlaylist replaces the default playlist. An empty list keeps the
// default.
func WithPlaylist(names []string) Option {
	return func(s *Sequencer) {
		if len(names) > 0 {
			s.playlist = append([]string(nil), names...)
		}
	}
}

// WithInterval sets the time between stops. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(s *Sequencer) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithLoop restarts the playlist after the last stop.
func WithLoop(loop bool) Option {
	return func(s *Sequencer) {
		s.loop = loop
	}
}

// New creates a sequencer positioned before the first stop.
func New(opts ...Option) *Sequencer {
	s := &Sequencer{
		playlist: append([]string(nil), DefaultPlaylist...),
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Interval returns the time between stops.
func (s *Sequencer) Interval() time.Duration {
	return s.interval
}

// Playlist returns a copy of the playlist.
func (s *Sequencer) Playlist() []string {
	return append([]string(nil), s.playlist...)
}

// Done reports whether a non-looping tour has run out of stops.
func (s *Sequencer) Done() bool {
	return s.done
}

// Reset rewinds to the first stop.
func (s *Sequencer) Reset() {
	s.pos = 0
	s.done = false
}

// Next returns the next playlist star present in the dataset, skipping
// names lookup cannot resolve. ok is false once the tour is over, or when
// a full pass of a looping tour finds nothing.
func (s *Sequencer) Next(lookup Lookup) (astro.Star, bool) {
	if s.done || len(s.playlist) == 0 {
		s.done = true
		return astro.Star{}, false
	}

	for tries := 0; tries < len(s.playlist); tries++ {
		if s.pos >= len(s.playlist) {
			if !s.loop {
				s.done = true
				return astro.Star{}, false
			}
			s.pos = 0
		}
		name := s.playlist[s.pos]
		s.pos++
		if star, ok := lookup(name); ok {
			return star, true
		}
	}

	if !s.loop && s.pos >= len(s.playlist) {
		s.done = true
	}
	return astro.Star{}, false
}

// Step advances the tour and builds the fly target for the next stop as
// seen from the camera position.
func (s *Sequencer) Step(lookup Lookup, from astro.Vec3, transform astro.Transform) (camera.FlyTarget, astro.Star, bool) {
	for tries := 0; tries < len(s.playlist); tries++ {
		star, ok := s.Next(lookup)
		if !ok {
			break
		}
		// Present but without a distance: nowhere to fly, try the next.
		if t, ok := interact.TargetForStar(star, from, transform); ok {
			return t, star, true
		}
	}
	return camera.FlyTarget{}, astro.Star{}, false
}
