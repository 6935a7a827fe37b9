package config

import (
	"errors"
	"fmt"
	"net"

	"github.com/kosiew/duecron/internal/cronexpr"
)

// Validate checks the structural validity of a Config: version, at least
// one job, unique non-empty job names, parseable schedules, and valid
// task specs. All problems are collected and joined rather than reported
// one at a time.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	switch cfg.Store {
	case "", "file", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("config: unknown store %q (supported: file, sqlite)", cfg.Store))
	}

	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("config: unknown log_level %q", cfg.LogLevel))
	}

	if len(cfg.Jobs) == 0 {
		errs = append(errs, errors.New("config: at least one job must be configured"))
	}

	seen := make(map[string]struct{}, len(cfg.Jobs))
	for i, job := range cfg.Jobs {
		if job.Name == "" {
			errs = append(errs, fmt.Errorf("config: jobs[%d]: name is required", i))
		} else if _, dup := seen[job.Name]; dup {
			errs = append(errs, fmt.Errorf("config: duplicate job name %q", job.Name))
		} else {
			seen[job.Name] = struct{}{}
		}

		if job.Schedule == "" {
			errs = append(errs, fmt.Errorf("config: jobs[%d]: schedule is required", i))
		} else if _, err := cronexpr.Parse(job.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("config: jobs[%d] %q: %w", i, job.Name, err))
		}

		if err := job.Task.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("config: jobs[%d] %q: %w", i, job.Name, err))
		}
	}

	if cfg.Daemon.Listen != "" {
		if _, _, err := net.SplitHostPort(cfg.Daemon.Listen); err != nil {
			errs = append(errs, fmt.Errorf("config: daemon.listen: %w", err))
		}
	}

	return errors.Join(errs...)
}
