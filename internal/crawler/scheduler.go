package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// DefaultDelay is the pause between two cycles.
const DefaultDelay = 5 * time.Second

// State is the lifecycle state of a Scheduler.
type State int32

const (
	// StateStopped means Run is not executing.
	StateStopped State = iota
	// StateRunning means Run is executing cycles.
	StateRunning
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Runner performs one crawl cycle.
type Runner interface {
	RunOnce(ctx context.Context) Stats
}

// Scheduler repeats a cycle with a fixed delay between cycles.
type Scheduler struct {
	runner    Runner
	delay     time.Duration
	maxCycles int
	logger    *slog.Logger
	archive   Archive
	state     atomic.Int32
	iteration atomic.Int64
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithDelay sets the pause between cycles.
func WithDelay(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.delay = d
	}
}

// WithMaxCycles stops the scheduler after n cycles. Zero means no bound.
func WithMaxCycles(n int) SchedulerOption {
	return func(s *Scheduler) {
		s.maxCycles = n
	}
}

// WithSchedulerLogger sets the logger.
func WithSchedulerLogger(l *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCycleArchive records the stats of every finished cycle in a.
func WithCycleArchive(a Archive) SchedulerOption {
	return func(s *Scheduler) {
		s.archive = a
	}
}

// NewScheduler creates a Scheduler for runner.
func NewScheduler(runner Runner, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		runner: runner,
		delay:  DefaultDelay,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Iterations returns the number of cycles started so far. It is safe to
// call while Run is executing.
func (s *Scheduler) Iterations() int {
	return int(s.iteration.Load())
}

// Run executes cycles until ctx is cancelled or the cycle bound is reached.
// Cancellation is observed between cycles only: a running cycle gets a
// context without cancellation, so its downloads finish, each bounded by
// the client timeout. Interruption is a clean stop, so Run returns nil.
func (s *Scheduler) Run(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(StateStopped), int32(StateRunning)) {
		return ErrAlreadyRunning
	}
	defer s.state.Store(int32(StateStopped))

	cycleCtx := context.WithoutCancel(ctx)
	for ctx.Err() == nil {
		iteration := int(s.iteration.Add(1))
		s.logger.Info(fmt.Sprintf("Iteration #%d", iteration))

		stats := s.runner.RunOnce(cycleCtx)
		stats.Iteration = iteration
		s.logger.Info("cycle finished",
			"iteration", stats.Iteration,
			"found", stats.Found,
			"new", stats.New,
			"skipped", stats.Skipped,
			"failed", stats.Failed,
			"duration", stats.Duration(),
		)
		if s.archive != nil {
			if err := s.archive.RecordCycle(cycleCtx, stats); err != nil {
				s.logger.Warn("failed to record cycle", "iteration", stats.Iteration, "error", err)
			}
		}

		if s.maxCycles > 0 && iteration >= s.maxCycles {
			return nil
		}
		if !sleep(ctx, s.delay) {
			break
		}
	}

	s.logger.Info("scheduler stopped", "iterations", s.Iterations())
	return nil
}

// sleep waits for d and reports whether it elapsed without cancellation.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
