// Package scene is the per-frame host: it steps the camera, reports the
// distance, debounces LOD changes and hands regeneration to the worker.
package scene

import (
	"log/slog"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/s0oraj/roadmapgalaxy/internal/camera"
	"github.com/s0oraj/roadmapgalaxy/internal/errors"
	"github.com/s0oraj/roadmapgalaxy/internal/galaxy"
	"github.com/s0oraj/roadmapgalaxy/internal/lod"
	"github.com/s0oraj/roadmapgalaxy/internal/state"
)

// Requester schedules buffer regeneration. lod.Regenerator implements it.
type Requester interface {
	Request(tier galaxy.LODTier) uint64
}

// Config positions the camera and the target.
type Config struct {
	Start       r3.Vec
	Target      r3.Vec
	MinDistance float64
	MaxDistance float64
	Transition  camera.Config
}

// Deps are the collaborators a Scene drives.
type Deps struct {
	Selector    *galaxy.Selector
	Debouncer   *lod.Debouncer
	Regenerator Requester
	State       *state.Manager
	Logger      *slog.Logger
}

// Frame is what one Tick produced.
type Frame struct {
	Pose      camera.Pose
	Distance  float64
	Progress  float64
	Phase     camera.Phase
	Completed bool // the flight finished on this tick

	Change *lod.Change // non-nil when a tier change was emitted
}

// Scene owns the camera for one galaxy view. All methods are called from
// the host's tick goroutine.
type Scene struct {
	cfg Config

	controller *camera.Controller
	orbit      *camera.Orbit
	reporter   *DistanceReporter

	selector  *galaxy.Selector
	debouncer *lod.Debouncer
	regen     Requester
	state     *state.Manager
	logger    *slog.Logger

	pose camera.Pose

	onComplete []func()
	onDistance []func(float64)
}

// New creates a scene with the camera on its free orbit at cfg.Start.
func New(cfg Config, deps Deps) (*Scene, error) {
	if deps.Selector == nil || deps.Debouncer == nil || deps.Regenerator == nil || deps.State == nil {
		return nil, errors.Configurationf("scene requires selector, debouncer, regenerator and state")
	}
	if !(cfg.MinDistance > 0) || !(cfg.MinDistance < cfg.MaxDistance) {
		return nil, errors.Configurationf("invalid distance bounds [%v, %v]", cfg.MinDistance, cfg.MaxDistance)
	}

	ctrl, err := camera.NewController(cfg.Transition)
	if err != nil {
		return nil, err
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	orbit := camera.NewOrbit(cfg.Start)
	orbit.SetDistanceLimits(cfg.MinDistance, cfg.MaxDistance)
	orbit.SetFromPosition(cfg.Start)

	s := &Scene{
		cfg:        cfg,
		controller: ctrl,
		orbit:      orbit,
		reporter:   NewDistanceReporter(cfg.MinDistance, cfg.MaxDistance),
		selector:   deps.Selector,
		debouncer:  deps.Debouncer,
		regen:      deps.Regenerator,
		state:      deps.State,
		logger:     logger.With("component", "scene"),
	}
	s.pose = camera.LookAt(orbit.Position(), r3.Vec{})
	return s, nil
}

// Start requests the first buffers for the current camera distance and
// returns the tier chosen.
func (s *Scene) Start() galaxy.LODTier {
	_, d := s.reporter.Report(s.pose.Position)
	tier, err := s.selector.Resolve(d)
	if err != nil {
		s.logger.Debug("Initial distance not finite", "operation", "start", "error", err)
	}
	s.debouncer.SetActive(tier)
	s.state.SetDistance(d)
	s.regen.Request(tier)

	s.logger.Info("Scene started", "operation", "start", "distance", d, "particles", tier.ParticleCount)
	return tier
}

// OnTransitionComplete registers fn to run once per finished flight.
func (s *Scene) OnTransitionComplete(fn func()) {
	s.onComplete = append(s.onComplete, fn)
}

// OnCameraDistanceChanged registers fn to run when a debounced tier change
// is emitted.
func (s *Scene) OnCameraDistanceChanged(fn func(distance float64)) {
	s.onDistance = append(s.onDistance, fn)
}

// Tick runs one frame.
func (s *Scene) Tick(now time.Time) Frame {
	var (
		pos       r3.Vec
		look      r3.Vec
		completed bool
		pose      camera.Pose
	)

	switch s.controller.Phase() {
	case camera.PhaseActive:
		res := s.controller.Tick()
		pose = res.Pose
		completed = res.Completed
		if completed && s.controller.Phase() == camera.PhaseIdle {
			// Auto-reset: the free orbit picks up where the flight landed.
			s.orbit.SetFromPosition(pose.Position)
		}
	case camera.PhaseCompleted:
		pose = s.controller.Pose()
	default:
		pose = camera.LookAt(s.orbit.Position(), r3.Vec{})
	}
	pos, look = pose.Position, pose.Target

	// Bounds apply every tick, flying or not.
	clamped, dist := s.reporter.Report(pos)
	if clamped != pos {
		pose = camera.LookAt(clamped, look)
	}
	s.pose = pose
	s.state.SetDistance(dist)

	frame := Frame{
		Pose:      pose,
		Distance:  dist,
		Progress:  s.controller.Progress(),
		Phase:     s.controller.Phase(),
		Completed: completed,
	}

	if err := s.debouncer.Sample(dist, now); err != nil {
		s.logger.Debug("Distance not finite, using coarsest tier", "operation", "tick", "error", err)
	}
	if change, ok := s.debouncer.Poll(now); ok {
		frame.Change = &change
		s.logger.Info("LOD tier changed",
			"operation", "tick",
			"distance", change.Distance,
			"from", change.Previous.ParticleCount,
			"to", change.Tier.ParticleCount)
		for _, fn := range s.onDistance {
			fn(change.Distance)
		}
		s.regen.Request(change.Tier)
	}

	if completed {
		s.state.AddEvent(state.Event{
			Type:     state.EventTransitionCompleted,
			Distance: dist,
		})
		s.logger.Info("Transition complete", "operation", "tick")
		for _, fn := range s.onComplete {
			fn()
		}
	}

	return frame
}

// SelectTarget starts the flight into the target. A flight already running
// or finished is left untouched and a TransitionMisuse error is returned.
func (s *Scene) SelectTarget() error {
	if err := s.controller.Trigger(s.pose.Position, s.cfg.Target); err != nil {
		s.logger.Warn("Transition trigger rejected", "operation", "select_target", "error", err)
		s.state.AddEvent(state.Event{Type: state.EventTransitionRejected, Detail: err.Error()})
		return err
	}
	s.state.AddEvent(state.Event{Type: state.EventTransitionStarted, Distance: s.reporter.Last()})
	s.logger.Info("Transition started", "operation", "select_target",
		"from", s.pose.Position, "to", s.cfg.Target)
	return nil
}

// Rotate orbits the camera. Ignored while flying or parked at the target.
func (s *Scene) Rotate(dAzimuth, dPolar float64) bool {
	if s.controller.Phase() != camera.PhaseIdle {
		return false
	}
	s.orbit.Rotate(dAzimuth, dPolar)
	return true
}

// Zoom scales the orbit radius. Ignored while flying or parked at the target.
func (s *Scene) Zoom(factor float64) bool {
	if s.controller.Phase() != camera.PhaseIdle {
		return false
	}
	s.orbit.Zoom(factor)
	return true
}

// Reset returns the controller to Idle and the camera to its start orbit.
func (s *Scene) Reset() {
	s.controller.Reset()
	s.orbit.SetFromPosition(s.cfg.Start)
	s.pose = camera.LookAt(s.orbit.Position(), r3.Vec{})
}

// IsActive reports whether a flight is in progress.
func (s *Scene) IsActive() bool { return s.controller.IsActive() }

// Phase returns the transition phase.
func (s *Scene) Phase() camera.Phase { return s.controller.Phase() }

// Pose returns the pose from the last tick.
func (s *Scene) Pose() camera.Pose { return s.pose }

// Target returns the flight target.
func (s *Scene) Target() r3.Vec { return s.cfg.Target }

// Distance returns the last reported camera distance.
func (s *Scene) Distance() float64 { return s.reporter.Last() }
