// Package state provides thread-safe state shared between the regeneration
// worker, the scene host and the renderer.
package state

import (
	"sync"
	"time"

	"github.com/s0oraj/roadmapgalaxy/internal/galaxy"
)

// EventType represents the type of state change event.
type EventType string

const (
	EventTierChanged         EventType = "TIER_CHANGED"
	EventRegenerated         EventType = "REGENERATED"
	EventRegenFailed         EventType = "REGEN_FAILED"
	EventTransitionStarted   EventType = "TRANSITION_STARTED"
	EventTransitionCompleted EventType = "TRANSITION_COMPLETED"
	EventTransitionRejected  EventType = "TRANSITION_REJECTED"
	EventSceneChanged        EventType = "SCENE_CHANGED"
)

// Event represents a notable change in the galaxy scene.
type Event struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	Generation    uint64    `json:"generation,omitempty"`
	ParticleCount int       `json:"particle_count,omitempty"`
	Distance      float64   `json:"distance,omitempty"`
	Detail        string    `json:"detail,omitempty"`
}

// TimeSeries is a single data point with timestamp.
type TimeSeries struct {
	Timestamp time.Time
	Value     float64
}

// Manager holds the last-good buffers and regeneration bookkeeping.
type Manager struct {
	mu sync.RWMutex

	// Current state
	buffers       *galaxy.Buffers
	generation    uint64
	lastRegen     time.Time
	lastError     error
	regenDuration time.Duration
	regenCount    int
	distance      float64

	// Regeneration durations in milliseconds
	regenHistory  []TimeSeries
	maxHistoryLen int

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int
}

// Config holds configuration for the state manager.
type Config struct {
	MaxHistoryLen int
	MaxEvents     int
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxHistoryLen: 60,
		MaxEvents:     50,
	}
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	maxHist := cfg.MaxHistoryLen
	if maxHist <= 0 {
		maxHist = 60
	}
	return &Manager{
		maxHistoryLen: maxHist,
		maxEvents:     maxEvents,
		events:        make([]Event, 0, maxEvents),
		regenHistory:  make([]TimeSeries, 0, maxHist),
	}
}

// Publish installs freshly generated buffers. Results from a generation
// older than the one already installed are dropped and Publish returns
// false, so stale buffers never overwrite fresher ones.
func (m *Manager) Publish(generation uint64, b *galaxy.Buffers, d time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if b == nil || (m.buffers != nil && generation <= m.generation) {
		return false
	}

	now := time.Now()
	prevTier := galaxy.LODTier{}
	if m.buffers != nil {
		prevTier = m.buffers.Tier
	}

	m.buffers = b
	m.generation = generation
	m.lastRegen = now
	m.lastError = nil
	m.regenDuration = d
	m.regenCount++

	m.regenHistory = append(m.regenHistory, TimeSeries{
		Timestamp: now,
		Value:     float64(d) / float64(time.Millisecond),
	})
	if len(m.regenHistory) > m.maxHistoryLen {
		m.regenHistory = m.regenHistory[1:]
	}

	if prevTier != b.Tier {
		m.addEvent(Event{
			Type:          EventTierChanged,
			Timestamp:     now,
			Generation:    generation,
			ParticleCount: b.Count,
			Distance:      b.Tier.Distance,
		})
	}
	m.addEvent(Event{
		Type:          EventRegenerated,
		Timestamp:     now,
		Generation:    generation,
		ParticleCount: b.Count,
		Detail:        d.Round(time.Millisecond).String(),
	})
	return true
}

// Fail records a failed regeneration. The last-good buffers are kept.
func (m *Manager) Fail(generation uint64, tier galaxy.LODTier, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastError = err
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	m.addEvent(Event{
		Type:          EventRegenFailed,
		Timestamp:     time.Now(),
		Generation:    generation,
		ParticleCount: tier.ParticleCount,
		Distance:      tier.Distance,
		Detail:        detail,
	})
}

// SetDistance records the latest camera distance.
func (m *Manager) SetDistance(d float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.distance = d
}

// AddEvent appends an event to the log.
func (m *Manager) AddEvent(e Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	m.addEvent(e)
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
	Buffers       *galaxy.Buffers
	Generation    uint64
	LastRegen     time.Time
	LastError     error
	RegenDuration time.Duration
	RegenCount    int
	Distance      float64
	Events        []Event
}

// Tier returns the tier of the installed buffers, or the zero tier.
func (s Snapshot) Tier() galaxy.LODTier {
	if s.Buffers == nil {
		return galaxy.LODTier{}
	}
	return s.Buffers.Tier
}

// Snapshot returns a consistent snapshot of current state. Buffers are
// shared, not copied; they are never modified after publication.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Snapshot{
		Buffers:       m.buffers,
		Generation:    m.generation,
		LastRegen:     m.lastRegen,
		LastError:     m.lastError,
		RegenDuration: m.regenDuration,
		RegenCount:    m.regenCount,
		Distance:      m.distance,
		Events:        m.getEventsOrdered(),
	}
}

// Buffers returns the last-good buffers, or nil before the first success.
func (m *Manager) Buffers() *galaxy.Buffers {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.buffers
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

// RegenHistory returns a copy of recent regeneration durations.
func (m *Manager) RegenHistory() []TimeSeries {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]TimeSeries, len(m.regenHistory))
	copy(out, m.regenHistory)
	return out
}

// HasBuffers returns true once at least one generation succeeded.
func (m *Manager) HasBuffers() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.buffers != nil
}
