package workflows

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"samplegraph/internal/logging"
)

// DefaultPollInterval is the wait-loop delay between status checks.
const DefaultPollInterval = 30 * time.Second

// Coordinator decides whether a job class may proceed given the live
// status of its conflicting siblings. It is advisory: the checkpoint lock,
// not the coordinator, is the correctness backstop.
type Coordinator struct {
	matrix       *ConflictMatrix
	status       *StatusClient
	logger       *slog.Logger
	pollInterval time.Duration
	now          func() time.Time
	sleep        func(context.Context, time.Duration) error
}

// CoordinatorOption customizes a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithPollInterval overrides the wait-loop poll interval.
func WithPollInterval(interval time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if interval > 0 {
			c.pollInterval = interval
		}
	}
}

// WithCoordinatorClock replaces the time source, for deadline tests.
func WithCoordinatorClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCoordinator wires a conflict matrix to a status client.
func NewCoordinator(matrix *ConflictMatrix, status *StatusClient, logger *slog.Logger, opts ...CoordinatorOption) *Coordinator {
	coord := &Coordinator{
		matrix:       matrix,
		status:       status,
		logger:       logging.NewComponentLogger(logger, "conflicts"),
		pollInterval: DefaultPollInterval,
		now:          time.Now,
		sleep:        sleepUntil,
	}
	for _, opt := range opts {
		opt(coord)
	}
	return coord
}

// CheckAndWait reports whether the given class may proceed. Classes that
// conflict with it and have an in-progress run are waited on up to the
// timeout. The outcome is always a definite decision with a reason; the
// coordinator never blocks past the deadline and never returns an error
// for status-API trouble.
func (c *Coordinator) CheckAndWait(ctx context.Context, class Class, timeout time.Duration) (bool, string) {
	conflicting := c.matrix.ConflictsWith(class)
	if len(conflicting) == 0 {
		return true, "No conflicts"
	}

	active := make(map[Class]*Run)
	for _, other := range conflicting {
		state, run := c.status.Check(ctx, other)
		if state == StateRunning {
			active[other] = run
		}
	}
	if len(active) == 0 {
		return true, "No conflicts"
	}

	deadline := c.now().Add(timeout)
	for _, other := range conflicting {
		run, ok := active[other]
		if !ok {
			continue
		}
		c.logger.Info("waiting for conflicting workflow",
			logging.String(logging.FieldWorkflow, string(other)),
			logging.Int64(logging.FieldRunID, runID(run)))
		finished, last := c.waitFor(ctx, other, deadline)
		if !finished {
			if last == nil {
				last = run
			}
			return false, timeoutReason(other, last)
		}
	}
	return true, "No conflicts"
}

// waitFor polls one class until it stops running or the shared deadline
// passes. The bool reports completion; the Run is the last observed
// in-progress run, if any.
func (c *Coordinator) waitFor(ctx context.Context, class Class, deadline time.Time) (bool, *Run) {
	var last *Run
	for {
		state, run := c.status.Check(ctx, class)
		if state != StateRunning {
			return true, last
		}
		last = run

		remaining := deadline.Sub(c.now())
		if remaining <= 0 {
			return false, last
		}
		interval := c.pollInterval
		if interval > remaining {
			interval = remaining
		}
		if err := c.sleep(ctx, interval); err != nil {
			return false, last
		}
	}
}

func timeoutReason(class Class, run *Run) string {
	if run == nil {
		return fmt.Sprintf("Timeout waiting for %s", class)
	}
	return fmt.Sprintf("Timeout waiting for %s (run %d): %s", class, run.ID, run.HTMLURL)
}

func runID(run *Run) int64 {
	if run == nil {
		return 0
	}
	return run.ID
}

func sleepUntil(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
