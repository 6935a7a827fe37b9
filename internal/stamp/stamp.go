// Package stamp persists the epoch of the last successfully completed
// scheduled run, keyed per (cron expression, task identity) pair.
//
// Reads and writes are deliberately best-effort: a missing or corrupted
// stamp reads as "never run" and a failed write is logged and swallowed,
// so the worst case is a redundant run rather than a crash or a masked
// task success.
package stamp

import (
	"regexp"
	"strings"
)

// Store reads and writes run stamps. Read returns 0 ("never run") on any
// failure and never errors; Write is best-effort.
type Store interface {
	Read(key string) int64
	Write(key string, epoch int64)
}

// Entry is one stored stamp, as reported by a Lister.
type Entry struct {
	Key   string
	Epoch int64
}

// Lister is implemented by stores that can enumerate and delete stamps.
// Used by the `stamps` CLI subcommand.
type Lister interface {
	List() ([]Entry, error)
	Delete(key string) error
}

const (
	// fallbackName replaces a task identity that sanitizes to nothing.
	fallbackName = "task"

	// maxNameLen caps the sanitized task identity for filesystem safety.
	maxNameLen = 64

	keyPrefix = ".cron_"
	keySuffix = "_last_run"
)

var (
	unsafeChars     = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
	repeatedHyphens = regexp.MustCompile(`-{2,}`)
)

// Key derives the stamp key for a (cron expression, task identity) pair:
// ".cron_<sanitized-expr>_<sanitized-task>_last_run". The derivation is
// deterministic, so the same pair maps to the same key across runs, and
// two tasks sharing an expression get distinct keys.
func Key(expr, task string) string {
	return keyPrefix + sanitizeExpr(expr) + "_" + sanitizeName(task) + keySuffix
}

// sanitizeExpr collapses whitespace runs in a cron expression to "_".
func sanitizeExpr(expr string) string {
	return strings.Join(strings.Fields(expr), "_")
}

// sanitizeName makes a task identity filesystem-safe: characters outside
// [A-Za-z0-9._-] become "-", repeated hyphens collapse, the result is
// capped at maxNameLen runes, and an empty result falls back to "task".
func sanitizeName(name string) string {
	s := unsafeChars.ReplaceAllString(name, "-")
	s = repeatedHyphens.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if r := []rune(s); len(r) > maxNameLen {
		s = string(r[:maxNameLen])
	}
	if s == "" {
		return fallbackName
	}
	return s
}
