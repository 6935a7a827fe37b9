package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kosiew/duecron/internal/config"
	"github.com/kosiew/duecron/internal/runner"
	"github.com/kosiew/duecron/internal/task"
)

// configJob adapts one configured job to the runner.Job interface.
type configJob struct {
	name     string
	schedule string
	task     task.Task
}

// Compile-time interface check.
var _ runner.Job = (*configJob)(nil)

func (j *configJob) Name() string                  { return j.name }
func (j *configJob) Schedule() string              { return j.schedule }
func (j *configJob) Run(ctx context.Context) error { return j.task.Run(ctx) }

// buildJobs materialises the configured jobs.
func buildJobs(cfg *config.Config, logger *slog.Logger) ([]runner.Job, error) {
	jobs := make([]runner.Job, 0, len(cfg.Jobs))
	for _, jc := range cfg.Jobs {
		t, err := task.New(jc.Task, logger.With("job", jc.Name))
		if err != nil {
			return nil, fmt.Errorf("job %q: %w", jc.Name, err)
		}
		jobs = append(jobs, &configJob{name: jc.Name, schedule: jc.Schedule, task: t})
	}
	return jobs, nil
}

// selectJobs filters jobs down to the named subset, erroring on unknown
// names so a typo cannot silently skip a job.
func selectJobs(jobs []runner.Job, names []string) ([]runner.Job, error) {
	byName := make(map[string]runner.Job, len(jobs))
	for _, j := range jobs {
		byName[j.Name()] = j
	}

	selected := make([]runner.Job, 0, len(names))
	for _, name := range names {
		j, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown job %q", name)
		}
		selected = append(selected, j)
	}
	return selected, nil
}
