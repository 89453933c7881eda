package background

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

// ErrPanicked is logged when a job panics.
var ErrPanicked = errors.New("background job panicked")

// Job is a unit of background work. The context carries the values of the
// scheduling request but not its cancellation.
type Job func(ctx context.Context) error

// Config controls dispatcher capacity.
type Config struct {
	// MaxInFlight bounds concurrently running jobs. Jobs dispatched while the
	// bound is reached are dropped. Defaults to 64.
	MaxInFlight int

	// JobTimeout bounds a single job's run. Defaults to 5s.
	JobTimeout time.Duration
}

// DefaultConfig returns a Config with reasonable defaults
func DefaultConfig() Config {
	return Config{
		MaxInFlight: 64,
		JobTimeout:  5 * time.Second,
	}
}

// Dispatcher runs jobs on their own goroutines and tracks them for shutdown.
type Dispatcher struct {
	cfg   Config
	log   *slog.Logger
	slots chan struct{}

	// mu guards closed and serializes Dispatch against Shutdown so no job is
	// added to wg once draining has started.
	mu     sync.RWMutex
	closed bool
	wg     conc.WaitGroup
}

// New creates a Dispatcher. Invalid config values are replaced by defaults.
func New(cfg Config, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	defaults := DefaultConfig()
	if cfg.MaxInFlight <= 0 {
		log.Warn("invalid max in-flight jobs specified, using default",
			"specified", cfg.MaxInFlight,
			"default", defaults.MaxInFlight)
		cfg.MaxInFlight = defaults.MaxInFlight
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = defaults.JobTimeout
	}

	return &Dispatcher{
		cfg:   cfg,
		log:   log.With("component", "background_dispatcher"),
		slots: make(chan struct{}, cfg.MaxInFlight),
	}
}

// Dispatch schedules job under name. It never blocks: if the dispatcher is
// saturated or shutting down the job is dropped with a warning and Dispatch
// returns false.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, job Job) bool {
	log := logger.FromContextOrDefault(ctx, d.log).With(slog.String("job", name))

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		log.Warn("dispatcher is shutting down, dropping job")
		return false
	}

	select {
	case d.slots <- struct{}{}:
	default:
		log.Warn("dispatcher saturated, dropping job",
			slog.Int("max_in_flight", d.cfg.MaxInFlight))
		return false
	}

	detached := context.WithoutCancel(ctx)
	d.wg.Go(func() {
		defer func() { <-d.slots }()
		d.run(detached, log, job)
	})
	return true
}

func (d *Dispatcher) run(ctx context.Context, log *slog.Logger, job Job) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.JobTimeout)
	defer cancel()

	start := time.Now()
	var err error
	var pc panics.Catcher
	pc.Try(func() { err = job(ctx) })

	if r := pc.Recovered(); r != nil {
		log.Error("background job panicked",
			slog.String("error", ErrPanicked.Error()),
			slog.Any("panic", r.Value),
			slog.String("stack", string(r.Stack)))
		return
	}
	if err != nil {
		log.Warn("background job failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		return
	}
	log.Debug("background job completed", slog.Duration("duration", time.Since(start)))
}

// InFlight returns the number of jobs currently running.
func (d *Dispatcher) InFlight() int {
	return len(d.slots)
}

// Wait blocks until every job dispatched so far has finished.
// It does not stop new jobs from being dispatched.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Shutdown stops accepting jobs and waits for running ones to finish or for
// ctx to expire, whichever comes first.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.log.Info("background jobs drained")
		return nil
	case <-ctx.Done():
		d.log.Warn("timed out waiting for background jobs",
			slog.Int("in_flight", d.InFlight()))
		return ctx.Err()
	}
}
