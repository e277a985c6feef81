// Package state provides thread-safe state management for the application.
package state

import (
	"io"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/litescript/ls-stellar/internal/astro"
	"github.com/litescript/ls-stellar/internal/search"
	"github.com/litescript/ls-stellar/internal/starfield"
)

// EventType represents the type of state change event.
type EventType string

const (
	EventCatalogLoaded  EventType = "CATALOG_LOADED"
	EventLoadFailed     EventType = "LOAD_FAILED"
	EventQualityChanged EventType = "QUALITY_CHANGED"
	EventSelected       EventType = "SELECTED"
	EventFlight         EventType = "FLIGHT"
)

// Event represents a state change worth showing in the event log.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Star      string    `json:"star,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// Manager handles all shared application state with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	pipeline *starfield.Pipeline
	now      func() time.Time

	// Current state
	stars        []astro.Star
	source       string
	lastLoad     time.Time
	lastError    error
	loadDuration time.Duration
	tier         starfield.Tier
	buffers      starfield.Buffers
	index        *search.Index
	selected     *astro.Star

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int
}

// Config holds configuration for the state manager.
type Config struct {
	MaxEvents int
	Tier      starfield.Tier
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxEvents: 50,
		Tier:      starfield.TierMedium,
	}
}

// NewManager creates a new state manager that projects through pipeline.
func NewManager(cfg Config, pipeline *starfield.Pipeline) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	tier := cfg.Tier
	if tier.MaxStars <= 0 {
		tier = starfield.TierMedium
	}
	if pipeline == nil {
		pipeline = starfield.NewPipeline(starfield.DefaultConfig())
	}
	return &Manager{
		pipeline:  pipeline,
		now:       time.Now,
		tier:      tier,
		maxEvents: maxEvents,
		events:    make([]Event, 0, maxEvents),
		index:     search.NewIndex(nil),
	}
}

// Transform returns the transform every consumer of this state must use.
func (m *Manager) Transform() astro.Transform {
	return m.pipeline.Config().Transform
}

// Update replaces the catalogue with a fresh load and rebuilds the render
// buffers. A failed load keeps the previous catalogue.
func (m *Manager) Update(stars []astro.Star, source string, loadDuration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastLoad = m.now()
	m.lastError = err
	m.loadDuration = loadDuration

	if err != nil {
		m.addEvent(Event{Type: EventLoadFailed, Timestamp: m.lastLoad, Detail: err.Error()})
		return
	}

	m.stars = stars
	m.source = source
	m.index = search.NewIndex(stars)
	m.selected = nil
	m.buffers = m.pipeline.Run(stars, m.tier)
	m.addEvent(Event{
		Type:      EventCatalogLoaded,
		Timestamp: m.lastLoad,
		Detail:    source,
	})
}

// SetQuality switches tier and rebuilds the buffers. Switching to the
// current tier is a no-op.
func (m *Manager) SetQuality(tier starfield.Tier) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tier.Name == m.tier.Name {
		return
	}
	m.tier = tier
	if m.stars != nil {
		m.buffers = m.pipeline.Run(m.stars, tier)
	}
	m.addEvent(Event{Type: EventQualityChanged, Timestamp: m.now(), Detail: tier.Name})
}

// Select records the star the user picked. A nil star clears the
// selection.
func (m *Manager) Select(s *astro.Star) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s == nil {
		m.selected = nil
		return
	}
	star := *s
	m.selected = &star
	m.addEvent(Event{Type: EventSelected, Timestamp: m.now(), Star: star.Label()})
}

// Record appends a free-form event, such as a flight lifecycle change.
func (m *Manager) Record(typ EventType, star, detail string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addEvent(Event{Type: typ, Timestamp: m.now(), Star: star, Detail: detail})
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Source       string
	StarCount    int
	LastLoad     time.Time
	LastError    error
	LoadDuration time.Duration
	Tier         starfield.Tier
	Buffers      starfield.Buffers
	Index        *search.Index
	Selected     *astro.Star
	Events       []Event
}

// Snapshot returns a consistent snapshot of current state. Buffers and
// the index are shared; both are never mutated after construction.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var sel *astro.Star
	if m.selected != nil {
		s := *m.selected
		sel = &s
	}

	return Snapshot{
		Source:       m.source,
		StarCount:    len(m.stars),
		LastLoad:     m.lastLoad,
		LastError:    m.lastError,
		LoadDuration: m.loadDuration,
		Tier:         m.tier,
		Buffers:      m.buffers,
		Index:        m.index,
		Selected:     sel,
		Events:       m.getEventsOrdered(),
	}
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	// If buffer isn't full yet, just copy
	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		idx := (m.eventWriteAt + i) % m.maxEvents
		result[i] = m.events[idx]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// Tier returns the active quality tier.
func (m *Manager) Tier() starfield.Tier {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tier
}

// HasData returns true if a catalogue has been loaded.
func (m *Manager) HasData() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stars != nil
}

// Summary is the JSON form of a snapshot, written by --summary.
type Summary struct {
	Source     string          `json:"source"`
	Stars      int             `json:"stars"`
	Tier       string          `json:"tier"`
	Rendered   int             `json:"rendered"`
	Stats      starfield.Stats `json:"stats"`
	LoadMillis int64           `json:"load_ms"`
	Error      string          `json:"error,omitempty"`
	Brightest  []string        `json:"brightest"`
	Events     []Event         `json:"events"`
}

// Summary condenses the snapshot, listing up to n of the brightest
// rendered stars.
func (s Snapshot) Summary(n int) Summary {
	sum := Summary{
		Source:     s.Source,
		Stars:      s.StarCount,
		Tier:       s.Tier.Name,
		Rendered:   s.Buffers.Len(),
		Stats:      s.Buffers.Stats,
		LoadMillis: s.LoadDuration.Milliseconds(),
		Brightest:  []string{},
		Events:     s.Events,
	}
	if s.LastError != nil {
		sum.Error = s.LastError.Error()
	}
	for i := 0; i < n && i < s.Buffers.Len(); i++ {
		sum.Brightest = append(sum.Brightest, s.Buffers.Stars[i].Label())
	}
	return sum
}

// WriteJSON writes the summary as indented JSON.
func (s Summary) WriteJSON(w io.Writer) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
