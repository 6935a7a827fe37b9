package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kosiew/duecron/internal/cronexpr"
	"github.com/kosiew/duecron/internal/stamp"
)

// Runner evaluates job schedules against a stamp store.
//
// No cross-process locking is performed: two processes evaluating the
// same job concurrently can both observe it as due and both run it. The
// caller accepts that race; the daemon serialises per-job within one
// process.
type Runner struct {
	store  stamp.Store
	logger *slog.Logger

	// now is the wall clock; tests substitute a fixed one.
	now func() time.Time
}

// New returns a Runner over the given stamp store.
func New(store stamp.Store, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{store: store, logger: logger, now: time.Now}
}

// RunIfDue runs job if its latest scheduled instant at or before now has
// not yet been stamped. It reports whether the job ran to completion.
//
// Sequence: evaluate schedule (no instant in the lookback window means
// not due, and the stamp is not even read) → read stamp → run → stamp.
// A malformed schedule or a job error propagates to the caller; in the
// error case the stamp is left untouched, so the same instant is retried
// on the next invocation.
func (r *Runner) RunIfDue(ctx context.Context, job Job) (bool, error) {
	sched, err := cronexpr.Parse(job.Schedule())
	if err != nil {
		return false, fmt.Errorf("runner: job %q: %w", job.Name(), err)
	}

	now := r.now()
	due, ok := sched.Previous(now)
	if !ok {
		r.logger.Debug("runner: no scheduled instant in lookback window",
			"job", job.Name(), "schedule", job.Schedule())
		return false, nil
	}

	key := stamp.Key(job.Schedule(), job.Name())
	last := r.store.Read(key)
	dueEpoch := due.Unix()

	// The first guard is effectively always true (Previous returned an
	// instant <= now) but protects against clock edge cases.
	if now.Unix() < dueEpoch || last >= dueEpoch {
		r.logger.Debug("runner: not due",
			"job", job.Name(), "scheduled", due, "last_run", last)
		return false, nil
	}

	r.logger.Info("runner: job due",
		"job", job.Name(), "schedule", job.Schedule(), "scheduled", due)

	if err := job.Run(ctx); err != nil {
		return false, fmt.Errorf("runner: job %q: %w", job.Name(), err)
	}

	r.store.Write(key, dueEpoch)
	r.logger.Info("runner: job completed", "job", job.Name(), "stamp", dueEpoch)
	return true, nil
}

// RunAll evaluates every job in order, continuing past failures. The
// returned error joins the individual job errors, if any.
func (r *Runner) RunAll(ctx context.Context, jobs []Job) error {
	var errs []error
	for _, job := range jobs {
		if _, err := r.RunIfDue(ctx, job); err != nil {
			r.logger.Error("runner: job failed", "job", job.Name(), "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SetNow overrides the runner's clock. Intended for tests.
func (r *Runner) SetNow(now func() time.Time) { r.now = now }
