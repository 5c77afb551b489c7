package lod

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"time"

	"github.com/s0oraj/roadmapgalaxy/internal/galaxy"
)

// Sink receives regeneration results. state.Manager implements it.
type Sink interface {
	Publish(generation uint64, b *galaxy.Buffers, d time.Duration) bool
	Fail(generation uint64, tier galaxy.LODTier, err error)
}

// RandomFactory returns a fresh random source for one generation.
type RandomFactory func() galaxy.RandomSource

// Regenerator runs galaxy generation off the tick goroutine. At most one
// generation runs at a time; a newer request cancels the one in flight and
// jobs that lose the race never reach the sink.
type Regenerator struct {
	gen        *galaxy.Generator
	cfg        galaxy.GeometryConfig
	rngFactory RandomFactory
	sink       Sink
	logger     *slog.Logger

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	prevDone   chan struct{}
	closed     bool

	wg sync.WaitGroup
}

// NewRegenerator creates a regenerator publishing into sink.
func NewRegenerator(gen *galaxy.Generator, cfg galaxy.GeometryConfig, rngFactory RandomFactory, sink Sink, logger *slog.Logger) *Regenerator {
	if rngFactory == nil {
		rngFactory = galaxy.NewSource
	}
	return &Regenerator{
		gen:        gen,
		cfg:        cfg,
		rngFactory: rngFactory,
		sink:       sink,
		logger:     logger.With("component", "regenerator"),
	}
}

// Request schedules generation for tier and returns its generation number,
// or 0 after Close.
func (r *Regenerator) Request(tier galaxy.LODTier) uint64 {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return 0
	}

	if r.cancel != nil {
		r.cancel()
	}
	r.generation++
	gen := r.generation

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	prev := r.prevDone
	done := make(chan struct{})
	r.prevDone = done

	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		defer close(done)
		defer cancel()

		// Serialize behind the job we just cancelled.
		if prev != nil {
			<-prev
		}
		if ctx.Err() != nil {
			r.logger.Debug("regeneration superseded before start", "operation", "request", "generation", gen)
			return
		}
		r.run(ctx, gen, tier)
	}()

	return gen
}

func (r *Regenerator) run(ctx context.Context, gen uint64, tier galaxy.LODTier) {
	logger := r.logger.With("operation", "generate", "generation", gen, "particles", tier.ParticleCount)

	start := time.Now()
	b, err := r.gen.GenerateContext(ctx, r.cfg, tier, r.rngFactory())
	elapsed := time.Since(start)

	if err != nil {
		if stderrors.Is(err, context.Canceled) {
			logger.Debug("regeneration cancelled", "elapsed", elapsed)
			return
		}
		if !r.isLatest(gen) {
			logger.Debug("discarding stale failure", "error", err)
			return
		}
		logger.Error("regeneration failed, keeping last buffers", "error", err)
		r.sink.Fail(gen, tier, err)
		return
	}

	if !r.isLatest(gen) {
		logger.Debug("discarding stale buffers", "elapsed", elapsed)
		return
	}

	if r.sink.Publish(gen, b, elapsed) {
		logger.Info("buffers regenerated", "elapsed", elapsed, "tier_distance", tier.Distance)
	}
}

func (r *Regenerator) isLatest(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return gen == r.generation
}

// Generation returns the number of the most recent request.
func (r *Regenerator) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generation
}

// Wait blocks until every requested job has finished or been discarded.
func (r *Regenerator) Wait() {
	r.wg.Wait()
}

// Close cancels the job in flight, rejects further requests and waits.
func (r *Regenerator) Close() {
	r.mu.Lock()
	r.closed = true
	if r.cancel != nil {
		r.cancel()
	}
	r.mu.Unlock()

	r.wg.Wait()
}
