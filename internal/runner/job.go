// Package runner decides whether a scheduled job is due and, if so, runs
// it with all-or-nothing stamp semantics: the last-run stamp advances only
// when the job returns without error.
package runner

import "context"

// Job is a unit of work gated by a cron schedule.
type Job interface {
	// Name is a stable identifier for the job, used (sanitized) in the
	// stamp key. Two jobs sharing a schedule must have distinct names.
	Name() string

	// Schedule returns a 5-field cron expression. Weekday field is
	// Monday-first (0 = Monday); see the cronexpr package.
	Schedule() string

	// Run executes the job. A non-nil error means the run failed and
	// the stamp must not advance.
	Run(ctx context.Context) error
}

// FuncJob adapts a plain function to the Job interface.
type FuncJob struct {
	JobName string
	Expr    string
	Func    func(ctx context.Context) error
}

// Compile-time interface check.
var _ Job = (*FuncJob)(nil)

// Name implements Job.
func (j *FuncJob) Name() string { return j.JobName }

// Schedule implements Job.
func (j *FuncJob) Schedule() string { return j.Expr }

// Run implements Job.
func (j *FuncJob) Run(ctx context.Context) error { return j.Func(ctx) }
