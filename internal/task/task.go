// Package task provides the built-in units of work gated by the
// scheduler: running an external command and sweeping old files out of a
// directory.
package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Task is an opaque unit of work. It may fail; the runner propagates the
// error and withholds the stamp.
type Task interface {
	Run(ctx context.Context) error
}

// Sentinel errors for task specs.
var (
	ErrUnknownType = errors.New("task: unknown type")
	ErrBadSpec     = errors.New("task: invalid spec")
)

// Spec is the YAML shape of a job's task.
type Spec struct {
	// Type selects the task: "command" or "cleanup".
	Type string `yaml:"type"`

	// Command fields.
	Argv    []string          `yaml:"argv,omitempty"`
	Workdir string            `yaml:"workdir,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`

	// Cleanup fields. MaxAge is a Go duration string (e.g. "720h").
	Dir      string   `yaml:"dir,omitempty"`
	MaxAge   string   `yaml:"max_age,omitempty"`
	Patterns []string `yaml:"patterns,omitempty"`
	DryRun   bool     `yaml:"dry_run,omitempty"`
}

// Validate checks the spec without building the task.
func (s Spec) Validate() error {
	switch s.Type {
	case "command":
		if len(s.Argv) == 0 {
			return fmt.Errorf("%w: command task needs a non-empty argv", ErrBadSpec)
		}
	case "cleanup":
		if s.Dir == "" {
			return fmt.Errorf("%w: cleanup task needs a dir", ErrBadSpec)
		}
		if s.MaxAge == "" {
			return fmt.Errorf("%w: cleanup task needs a max_age", ErrBadSpec)
		}
		if _, err := time.ParseDuration(s.MaxAge); err != nil {
			return fmt.Errorf("%w: max_age: %v", ErrBadSpec, err)
		}
		for _, p := range s.Patterns {
			if _, err := filepath.Match(p, ""); err != nil {
				return fmt.Errorf("%w: pattern %q: %v", ErrBadSpec, p, err)
			}
		}
	case "":
		return fmt.Errorf("%w: type is required", ErrBadSpec)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, s.Type)
	}
	return nil
}

// New builds a Task from a validated spec.
func New(s Spec, logger *slog.Logger) (Task, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	switch s.Type {
	case "command":
		return &Command{
			Argv:    s.Argv,
			Workdir: expandHome(s.Workdir),
			Env:     s.Env,
			Logger:  logger,
		}, nil
	case "cleanup":
		maxAge, _ := time.ParseDuration(s.MaxAge) // validated above
		return &Cleanup{
			Dir:      expandHome(s.Dir),
			MaxAge:   maxAge,
			Patterns: s.Patterns,
			DryRun:   s.DryRun,
			Logger:   logger,
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, s.Type)
}

// expandHome replaces a leading "~" with the user's home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
