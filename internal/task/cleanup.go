package task

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Cleanup deletes files older than MaxAge directly under Dir. When
// Patterns is non-empty only matching file names are considered (matching
// is case-insensitive, so "*.png" also catches "*.PNG"). The scan is
// non-recursive.
type Cleanup struct {
	Dir      string
	MaxAge   time.Duration
	Patterns []string
	DryRun   bool
	Logger   *slog.Logger
}

// Compile-time interface check.
var _ Task = (*Cleanup)(nil)

// Run sweeps the directory. A missing directory is an error (a schedule
// pointed at nothing is worth failing loudly about); individual file
// deletions that fail are logged and skipped.
func (c *Cleanup) Run(ctx context.Context) error {
	dirents, err := os.ReadDir(c.Dir)
	if err != nil {
		return fmt.Errorf("task: cleanup %s: %w", c.Dir, err)
	}

	cutoff := time.Now().Add(-c.MaxAge)
	var removed, kept int

	for _, de := range dirents {
		if ctx.Err() != nil {
			return fmt.Errorf("task: cleanup interrupted: %w", ctx.Err())
		}
		if de.IsDir() || !c.matches(de.Name()) {
			continue
		}

		info, err := de.Info()
		if err != nil {
			c.Logger.Warn("task: cleanup stat failed", "file", de.Name(), "error", err)
			continue
		}
		if info.ModTime().After(cutoff) {
			kept++
			continue
		}

		path := filepath.Join(c.Dir, de.Name())
		if c.DryRun {
			c.Logger.Info("task: cleanup would remove", "file", path)
			removed++
			continue
		}
		if err := os.Remove(path); err != nil {
			c.Logger.Warn("task: cleanup remove failed", "file", path, "error", err)
			continue
		}
		removed++
	}

	c.Logger.Info("task: cleanup swept directory",
		"dir", c.Dir, "removed", removed, "kept", kept, "dry_run", c.DryRun)
	return nil
}

func (c *Cleanup) matches(name string) bool {
	if len(c.Patterns) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, p := range c.Patterns {
		if ok, _ := filepath.Match(strings.ToLower(p), lower); ok {
			return true
		}
	}
	return false
}
