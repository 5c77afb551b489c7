// Command roadmapgalaxy renders a procedural spiral galaxy in the terminal
// and flies the camera into the roadmap's first level.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/s0oraj/roadmapgalaxy/internal/camera"
	"github.com/s0oraj/roadmapgalaxy/internal/config"
	"github.com/s0oraj/roadmapgalaxy/internal/galaxy"
	"github.com/s0oraj/roadmapgalaxy/internal/lod"
	"github.com/s0oraj/roadmapgalaxy/internal/logging"
	"github.com/s0oraj/roadmapgalaxy/internal/navstore"
	"github.com/s0oraj/roadmapgalaxy/internal/scene"
	"github.com/s0oraj/roadmapgalaxy/internal/state"
	"github.com/s0oraj/roadmapgalaxy/internal/ui"
)

// CLI flags for headless mode
var (
	summaryMode  bool
	snapshotPath string
	withPoints   bool
	flyMode      bool
	flyEvery     int
	eventsMode   bool
	distance     float64
)

func main() {
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")
	seed := flag.Uint64("seed", 0, "Random seed for reproducible output; overrides GALAXY_SEED")
	envFile := flag.String("env", "", "Additional .env file to load")
	flag.BoolVar(&summaryMode, "summary", false, "Print generation summary instead of TUI")
	flag.StringVar(&snapshotPath, "snapshot-path", "", "Export JSON buffer snapshot to file (use - for stdout)")
	flag.BoolVar(&withPoints, "points", false, "Include particle arrays in the JSON snapshot")
	flag.BoolVar(&flyMode, "fly", false, "Run the camera flight headless and print progress samples")
	flag.IntVar(&flyEvery, "fly-every", 25, "Print every Nth frame of the headless flight")
	flag.BoolVar(&eventsMode, "events", false, "Show event log after a headless run")
	flag.Float64Var(&distance, "distance", -1, "Camera distance used to pick the LOD tier (default: start position)")
	flag.Parse()

	var envFiles []string
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *seed != 0 {
		cfg.Galaxy.Seed = *seed
	}

	headless := summaryMode || snapshotPath != "" || flyMode || eventsMode
	if !headless && !term.IsTerminal(int(os.Stdout.Fd())) {
		// Not a terminal: the alt screen has nowhere to go.
		summaryMode = true
		headless = true
	}

	logger, closeLog := setupLogger(cfg.Logging, headless)
	defer closeLog()

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	stateMgr := state.NewManager(state.DefaultConfig())
	store := connectStore(ctx, cfg.Store, logger)
	defer store.Close()

	if headless {
		if err := runHeadless(ctx, cfg, stateMgr, store, logger, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	sc, regen, err := newScene(cfg, stateMgr, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer regen.Close()

	sc.OnTransitionComplete(func() {
		logger.Info("Arrived at target", "component", "main", "level", cfg.UI.TargetLevel)
	})
	sc.Start()

	model := ui.New(ui.Deps{
		Scene:  sc,
		State:  stateMgr,
		Store:  store,
		UI:     cfg.UI,
		Logger: logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	// Run TUI (blocks until quit)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// setupLogger logs to stderr in headless mode. The TUI owns the terminal,
// so there logs go to LOG_FILE or nowhere.
func setupLogger(cfg config.LoggingConfig, headless bool) (*slog.Logger, func()) {
	level := logging.ParseLevel(cfg.Level)
	if headless {
		return logging.New(level, cfg.Format, os.Stderr), func() {}
	}
	if cfg.File == "" {
		return logging.Discard(), func() {}
	}

	f, err := logging.OpenFile(cfg.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v\n", cfg.File, err)
		return logging.Discard(), func() {}
	}
	return logging.New(level, cfg.Format, f), func() { _ = f.Close() }
}

// connectStore opens the configured navigation store, falling back to an
// in-memory one when Redis is unreachable.
func connectStore(ctx context.Context, cfg navstore.Config, logger *slog.Logger) navstore.Store {
	store, err := navstore.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Warn("Navigation store unavailable, using memory", "component", "main", "backend", cfg.Backend, "error", err)
		return navstore.NewMemoryStore()
	}
	return store
}

func randomFactory(seed uint64) lod.RandomFactory {
	if seed == 0 {
		return galaxy.NewSource
	}
	return func() galaxy.RandomSource { return galaxy.NewSeededSource(seed) }
}

// newScene wires the camera, debouncer and regenerator around stateMgr.
func newScene(cfg *config.Config, stateMgr *state.Manager, logger *slog.Logger) (*scene.Scene, *lod.Regenerator, error) {
	sel, err := galaxy.NewSelector(cfg.Galaxy.Tiers)
	if err != nil {
		return nil, nil, err
	}
	deb, err := lod.NewDebouncer(sel, cfg.LOD)
	if err != nil {
		return nil, nil, err
	}
	regen := lod.NewRegenerator(galaxy.NewGenerator(), cfg.Galaxy.Geometry, randomFactory(cfg.Galaxy.Seed), stateMgr, logger)

	sc, err := scene.New(scene.Config{
		Start:       cfg.Camera.Start,
		Target:      cfg.Camera.Target,
		MinDistance: cfg.Camera.MinDistance,
		MaxDistance: cfg.Camera.MaxDistance,
		Transition:  cfg.Camera.Transition,
	}, scene.Deps{
		Selector:    sel,
		Debouncer:   deb,
		Regenerator: regen,
		State:       stateMgr,
		Logger:      logger,
	})
	if err != nil {
		regen.Close()
		return nil, nil, err
	}
	return sc, regen, nil
}

// runHeadless handles all headless modes without starting the TUI.
func runHeadless(ctx context.Context, cfg *config.Config, stateMgr *state.Manager, store navstore.Store, logger *slog.Logger, w io.Writer) error {
	if summaryMode || snapshotPath != "" {
		if err := generateOnce(ctx, cfg, stateMgr, logger); err != nil {
			return err
		}
		snap := stateMgr.Snapshot()

		if snapshotPath != "" {
			if err := writeSnapshot(snap, w); err != nil {
				return err
			}
		}
		if summaryMode {
			galaxy.WriteSummaryTable(w, snap.Buffers, snap.Distance, snap.LastRegen)
		}
	}

	if flyMode {
		if err := runFlight(ctx, cfg, stateMgr, store, logger, w); err != nil {
			return err
		}
	}

	if eventsMode {
		fmt.Fprintln(w)
		writeEvents(w, stateMgr.RecentEvents(10))
	}
	return nil
}

// generateOnce builds the buffers for the tier at the requested distance.
func generateOnce(ctx context.Context, cfg *config.Config, stateMgr *state.Manager, logger *slog.Logger) error {
	sel, err := galaxy.NewSelector(cfg.Galaxy.Tiers)
	if err != nil {
		return err
	}

	d := distance
	if d < 0 {
		d = r3.Norm(camera.ClampDistance(cfg.Camera.Start, cfg.Camera.MinDistance, cfg.Camera.MaxDistance))
	}
	tier, err := sel.Resolve(d)
	if err != nil {
		logger.Debug("Distance outside tier table, using coarsest", "component", "main", "distance", d, "error", err)
	}
	stateMgr.SetDistance(d)

	rng := randomFactory(cfg.Galaxy.Seed)()
	start := time.Now()
	b, err := galaxy.NewGenerator().GenerateContext(ctx, cfg.Galaxy.Geometry, tier, rng)
	if err != nil {
		stateMgr.Fail(1, tier, err)
		return fmt.Errorf("generate galaxy: %w", err)
	}
	elapsed := time.Since(start)
	stateMgr.Publish(1, b, elapsed)

	logger.Info("Galaxy generated", "component", "main", "particles", b.Count, "duration", elapsed)
	return nil
}

func writeSnapshot(snap state.Snapshot, stdout io.Writer) error {
	export := galaxy.ExportBuffers(snap.Buffers, snap.LastRegen, withPoints)
	if snapshotPath == "-" {
		if err := export.WriteJSON(stdout); err != nil {
			return fmt.Errorf("write JSON to stdout: %w", err)
		}
		return nil
	}

	f, err := os.Create(snapshotPath)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	defer f.Close()
	if err := export.WriteJSON(f); err != nil {
		return fmt.Errorf("write JSON to file: %w", err)
	}
	return nil
}

// runFlight drives the scene on a simulated frame clock from the start
// orbit into the target, printing sampled frames.
func runFlight(ctx context.Context, cfg *config.Config, stateMgr *state.Manager, store navstore.Store, logger *slog.Logger, w io.Writer) error {
	sc, regen, err := newScene(cfg, stateMgr, logger)
	if err != nil {
		return err
	}
	defer regen.Close()

	landed := false
	sc.OnTransitionComplete(func() {
		landed = true
		st := navstore.State{CurrentScene: navstore.SceneRoadmap, SelectedLevel: cfg.UI.TargetLevel}
		if err := store.Save(ctx, st); err != nil {
			logger.Warn("Navigation state not saved", "component", "main", "error", err)
		}
	})
	sc.OnCameraDistanceChanged(func(d float64) {
		fmt.Fprintf(w, "  LOD change at distance %.2f\n", d)
	})

	sc.Start()
	if err := sc.SelectTarget(); err != nil {
		return err
	}

	every := flyEvery
	if every < 1 {
		every = 1
	}
	maxFrames := int(math.Ceil(1/cfg.Camera.Transition.Step)) + 2

	fmt.Fprintf(w, "Flight to %s (%.2f, %.2f, %.2f)\n", cfg.UI.TargetLabel,
		cfg.Camera.Target.X, cfg.Camera.Target.Y, cfg.Camera.Target.Z)
	fmt.Fprintf(w, "%6s %8s %8s %8s %8s %9s\n", "Frame", "Progress", "X", "Y", "Z", "Distance")

	now := time.Now()
	frames := 0
	for i := 0; i < maxFrames && !landed; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		f := sc.Tick(now)
		frames++
		if i%every == 0 || f.Completed {
			p := f.Pose.Position
			fmt.Fprintf(w, "%6d %8.3f %8.3f %8.3f %8.3f %9.3f\n", i, f.Progress, p.X, p.Y, p.Z, f.Distance)
		}
		now = now.Add(cfg.UI.FrameInterval)
	}

	regen.Wait()

	if !landed {
		return fmt.Errorf("flight did not complete within %d frames", maxFrames)
	}
	fmt.Fprintf(w, "Arrived at %s after %d frames (%s at %s per frame)\n",
		cfg.UI.TargetLabel, frames, time.Duration(frames)*cfg.UI.FrameInterval, cfg.UI.FrameInterval)
	return nil
}

func writeEvents(w io.Writer, events []state.Event) {
	fmt.Fprintln(w, "Recent events")
	if len(events) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for _, e := range events {
		line := fmt.Sprintf("  %s %-20s", e.Timestamp.Format("15:04:05.000"), e.Type)
		if e.Generation > 0 {
			line += fmt.Sprintf(" gen=%d", e.Generation)
		}
		if e.ParticleCount > 0 {
			line += fmt.Sprintf(" particles=%d", e.ParticleCount)
		}
		if e.Detail != "" {
			line += " " + e.Detail
		}
		fmt.Fprintln(w, line)
	}
}
