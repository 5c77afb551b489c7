// Package lod turns the continuous camera distance into bounded-rate
// regeneration of the galaxy buffers.
package lod

import (
	"math"
	"time"

	"golang.org/x/time/rate"

	"github.com/s0oraj/roadmapgalaxy/internal/errors"
	"github.com/s0oraj/roadmapgalaxy/internal/galaxy"
)

// Config tunes the debouncer.
type Config struct {
	// QuietWindow is how long the distance must stay unchanged before a
	// tier change is emitted.
	QuietWindow time.Duration

	// MinInterval and Burst bound how often changes are emitted at all,
	// however the input behaves.
	MinInterval time.Duration
	Burst       int

	// Epsilon is the distance change below which a sample is not
	// considered movement.
	Epsilon float64
}

// DefaultConfig returns a 200ms quiet window and at most two tier changes
// per second.
func DefaultConfig() Config {
	return Config{
		QuietWindow: 200 * time.Millisecond,
		MinInterval: 500 * time.Millisecond,
		Burst:       1,
		Epsilon:     1e-3,
	}
}

// Validate checks the tuning values.
func (c Config) Validate() error {
	if c.QuietWindow < 0 {
		return errors.Configurationf("quiet window must be non-negative, got %v", c.QuietWindow)
	}
	if c.MinInterval < 0 {
		return errors.Configurationf("min regeneration interval must be non-negative, got %v", c.MinInterval)
	}
	if c.Burst < 1 {
		return errors.Configurationf("regeneration burst must be at least 1, got %d", c.Burst)
	}
	if c.Epsilon < 0 || math.IsNaN(c.Epsilon) {
		return errors.Configurationf("distance epsilon must be non-negative, got %v", c.Epsilon)
	}
	return nil
}

// Change is an emitted tier change.
type Change struct {
	Distance float64
	Tier     galaxy.LODTier
	Previous galaxy.LODTier
	At       time.Time
}

// Debouncer is the quiet-window state machine between distance samples and
// regeneration requests. Callers Sample every frame and Poll every frame;
// Poll emits at most one Change per settled movement. Not safe for
// concurrent use; it lives on the tick goroutine.
type Debouncer struct {
	selector *galaxy.Selector
	cfg      Config
	limiter  *rate.Limiter

	lastSampleTime time.Time
	lastDistance   float64
	hasSample      bool

	pending         bool
	pendingDistance float64
	pendingTier     galaxy.LODTier

	activeTier galaxy.LODTier
	hasActive  bool
}

// NewDebouncer creates a debouncer over selector.
func NewDebouncer(selector *galaxy.Selector, cfg Config) (*Debouncer, error) {
	if selector == nil {
		return nil, errors.Configurationf("LOD selector is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}

	return &Debouncer{
		selector: selector,
		cfg:      cfg,
		limiter:  rate.NewLimiter(limit, cfg.Burst),
	}, nil
}

// SetActive records the tier currently on screen, typically after the
// initial synchronous generation.
func (d *Debouncer) SetActive(tier galaxy.LODTier) {
	d.activeTier = tier
	d.hasActive = true
}

// Active returns the tier last emitted or set.
func (d *Debouncer) Active() (galaxy.LODTier, bool) {
	return d.activeTier, d.hasActive
}

// Sample feeds one distance reading. A non-finite distance resolves to the
// coarsest tier and the ExhaustedLOD error is returned for logging only.
func (d *Debouncer) Sample(distance float64, now time.Time) error {
	if d.hasSample && math.Abs(distance-d.lastDistance) < d.cfg.Epsilon {
		return nil
	}

	tier, err := d.selector.Resolve(distance)

	d.hasSample = true
	d.lastDistance = distance
	d.lastSampleTime = now

	d.pending = true
	d.pendingDistance = distance
	d.pendingTier = tier

	return err
}

// Poll reports a tier change once the input has been quiet for the window,
// the settled tier differs from the active one and the rate limit allows
// it. A change refused by the rate limit stays pending for a later Poll.
func (d *Debouncer) Poll(now time.Time) (Change, bool) {
	if !d.pending {
		return Change{}, false
	}
	if now.Sub(d.lastSampleTime) <= d.cfg.QuietWindow {
		return Change{}, false
	}
	if d.hasActive && d.pendingTier == d.activeTier {
		d.pending = false
		return Change{}, false
	}
	if !d.limiter.AllowN(now, 1) {
		return Change{}, false
	}

	c := Change{
		Distance: d.pendingDistance,
		Tier:     d.pendingTier,
		Previous: d.activeTier,
		At:       now,
	}
	d.activeTier = d.pendingTier
	d.hasActive = true
	d.pending = false
	return c, true
}

// Pending reports whether a settled-but-unemitted sample is waiting.
func (d *Debouncer) Pending() bool {
	return d.pending
}
