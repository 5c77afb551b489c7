package camera

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/s0oraj/roadmapgalaxy/internal/errors"
)

// Phase is the transition lifecycle state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseActive
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseActive:
		return "active"
	case PhaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// progressSnap absorbs accumulated float error so N steps of 1/N land on 1.
const progressSnap = 1e-9

// Config holds transition tuning.
type Config struct {
	Step      float64 // Progress added per tick
	ArcHeight float64 // Raise of the path midpoint

	// ProximityEpsilon, when > 0, additionally requires the camera to be
	// within this distance of the target before completion fires.
	ProximityEpsilon float64

	// AutoReset returns the controller to Idle right after completion
	// instead of waiting for Reset.
	AutoReset bool
}

// DefaultConfig returns a 250-frame flight with a 2-unit arc.
func DefaultConfig() Config {
	return Config{
		Step:             0.004,
		ArcHeight:        DefaultArcHeight,
		ProximityEpsilon: 1e-6,
	}
}

// Validate checks the tuning values.
func (c Config) Validate() error {
	if !(c.Step > 0) || c.Step > 1 {
		return errors.Configurationf("transition step must be in (0,1], got %v", c.Step)
	}
	if math.IsNaN(c.ArcHeight) || math.IsInf(c.ArcHeight, 0) {
		return errors.Configurationf("arc height must be finite, got %v", c.ArcHeight)
	}
	if c.ProximityEpsilon < 0 || math.IsNaN(c.ProximityEpsilon) {
		return errors.Configurationf("proximity epsilon must be non-negative, got %v", c.ProximityEpsilon)
	}
	return nil
}

// TickResult is the outcome of one controller tick.
type TickResult struct {
	Pose      Pose
	Progress  float64
	Completed bool // true on exactly one tick per flight
}

// Controller drives one camera flight at a time. It is ticked by the host
// once per frame; the mutex only protects readers on other goroutines
// (e.g. headless reporting) and is never held across callbacks.
type Controller struct {
	mu sync.Mutex

	cfg Config

	phase    Phase
	progress float64
	start    r3.Vec
	target   r3.Vec
	pose     Pose
	fired    bool
}

// NewController creates an idle controller.
func NewController(cfg Config) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Controller{cfg: cfg}, nil
}

// Trigger starts a flight from current to target. It is rejected with a
// TransitionMisuse error unless the controller is Idle, so two targets are
// never blended.
func (c *Controller) Trigger(current, target r3.Vec) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseIdle {
		return errors.TransitionMisuse("transition already " + c.phase.String())
	}

	c.phase = PhaseActive
	c.progress = 0
	c.start = current
	c.target = target
	c.fired = false
	c.pose = LookAt(current, target)
	return nil
}

// Tick advances an active flight by one step. Outside PhaseActive it returns
// the last pose unchanged.
//
// The pose is sampled at the progress value from before this tick's
// increment, except on the tick that saturates progress, which lands
// exactly on the target.
func (c *Controller) Tick() TickResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseActive {
		return TickResult{Pose: c.pose, Progress: c.progress}
	}

	sample := c.progress

	next := c.progress + c.cfg.Step
	if next >= 1-progressSnap {
		next = 1
	}
	c.progress = next

	if c.progress >= 1 {
		sample = 1
	}

	pos := PositionAt(c.start, c.target, sample, c.cfg.ArcHeight)
	pose := LookAt(pos, c.target)
	if !pose.Valid() {
		// At the target there is no direction left; keep facing the same way.
		pose.Forward, pose.Right, pose.Up = c.pose.Forward, c.pose.Right, c.pose.Up
	}
	c.pose = pose

	res := TickResult{Pose: c.pose, Progress: c.progress}

	if c.progress >= 1 && !c.fired && c.withinProximity(pos) {
		c.fired = true
		c.phase = PhaseCompleted
		res.Completed = true
		if c.cfg.AutoReset {
			c.phase = PhaseIdle
		}
	}

	return res
}

func (c *Controller) withinProximity(pos r3.Vec) bool {
	if c.cfg.ProximityEpsilon <= 0 {
		return true
	}
	return Distance(pos, c.target) <= c.cfg.ProximityEpsilon
}

// Reset returns the controller to Idle. Progress and the last pose are kept
// for display until the next Trigger.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = PhaseIdle
}

// IsActive reports whether a flight is in progress. Hosts use it to gate
// orbit and zoom input.
func (c *Controller) IsActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase == PhaseActive
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Progress returns the current progress in [0,1].
func (c *Controller) Progress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress
}

// Target returns the target of the current or last flight.
func (c *Controller) Target() r3.Vec {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// Pose returns the last computed pose.
func (c *Controller) Pose() Pose {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pose
}
