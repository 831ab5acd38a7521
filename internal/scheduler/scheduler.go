// Package scheduler implements a single cooperative event loop: every
// packet handler, the ticker, and broadcast fan-out run on one logical
// goroutine, so game state never needs locking.
//
// A *Scheduler is constructed once in main and threaded through every
// constructor that needs to post work onto the loop, rather than
// reached via an ambient global.
package scheduler

import (
	"context"
	"log/slog"
)

// Scheduler serializes task execution onto a single goroutine.
type Scheduler struct {
	tasks chan func()
	log   *slog.Logger
}

// New returns a Scheduler with the given task queue depth.
func New(log *slog.Logger, queueDepth int) *Scheduler {
	return &Scheduler{
		tasks: make(chan func(), queueDepth),
		log:   log,
	}
}

// Post enqueues fn to run on the scheduler's goroutine. It never
// blocks the caller on game-state work; if the queue is full, the task
// is dropped and logged, rather than risking a deadlock against a
// reader goroutine that the loop itself might be waiting on.
func (s *Scheduler) Post(fn func()) {
	select {
	case s.tasks <- fn:
	default:
		if s.log != nil {
			s.log.Warn("scheduler queue full, dropping task")
		}
	}
}

// Run executes posted tasks, one at a time, until ctx is cancelled.
// No two tasks ever run concurrently, so handlers never need to
// coordinate with each other beyond ordering.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-s.tasks:
			fn()
		}
	}
}
