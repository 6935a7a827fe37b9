// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for duecron.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kosiew/duecron/internal/task"
)

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	// CacheDir holds the stamp store. Empty means the default user-level
	// cache directory ($XDG_CACHE_HOME/duecron or ~/.cache/duecron).
	CacheDir string `yaml:"cache_dir,omitempty"`

	// Store selects the stamp backend: "file" (default) or "sqlite".
	Store string `yaml:"store,omitempty"`

	// LogLevel is one of debug, info, warn, error. Default info.
	LogLevel string `yaml:"log_level,omitempty"`

	// Jobs are the scheduled jobs.
	Jobs []JobConfig `yaml:"jobs"`

	// Daemon configures the optional long-lived mode.
	Daemon DaemonConfig `yaml:"daemon,omitempty"`
}

// JobConfig declares one scheduled job.
type JobConfig struct {
	// Name is the stable job identity used in the stamp key.
	Name string `yaml:"name"`

	// Schedule is a 5-field cron expression (Monday-first weekdays).
	Schedule string `yaml:"schedule"`

	// Task is what the job does when due.
	Task task.Spec `yaml:"task"`
}

// DaemonConfig configures `duecron daemon`.
type DaemonConfig struct {
	// Listen is the optional admin/metrics listen address
	// (e.g. "127.0.0.1:9321"). Empty disables the HTTP server.
	Listen string `yaml:"listen,omitempty"`
}

// ResolveCacheDir returns the configured cache directory, or the default
// user-level location when unset.
func (c *Config) ResolveCacheDir() string {
	if c.CacheDir != "" {
		return expandHome(c.CacheDir)
	}
	if xdg, ok := os.LookupEnv("XDG_CACHE_HOME"); ok {
		return filepath.Join(xdg, "duecron")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".duecron"
	}
	return filepath.Join(home, ".cache", "duecron")
}

// SlogLevel maps the configured log level to a slog.Level. Empty falls
// back to info; Validate rejects unknown values.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
