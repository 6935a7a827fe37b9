package task

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// seedFile writes a file and backdates its modification time by age.
func seedFile(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("seed %s: %v", name, err)
	}
	mtime := time.Now().Add(-age)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("backdate %s: %v", name, err)
	}
	return path
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestCleanup_RemovesOldFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	old := seedFile(t, dir, "old.png", 48*time.Hour)
	fresh := seedFile(t, dir, "fresh.png", time.Hour)

	c := &Cleanup{Dir: dir, MaxAge: 24 * time.Hour, Logger: slog.Default()}
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if exists(old) {
		t.Error("old file should have been removed")
	}
	if !exists(fresh) {
		t.Error("fresh file should have been kept")
	}
}

func TestCleanup_PatternsFilter(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	png := seedFile(t, dir, "shot.png", 48*time.Hour)
	upper := seedFile(t, dir, "SHOT2.PNG", 48*time.Hour)
	txt := seedFile(t, dir, "notes.txt", 48*time.Hour)

	c := &Cleanup{
		Dir:      dir,
		MaxAge:   24 * time.Hour,
		Patterns: []string{"*.png"},
		Logger:   slog.Default(),
	}
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if exists(png) || exists(upper) {
		t.Error("png files (any case) should have been removed")
	}
	if !exists(txt) {
		t.Error("non-matching file should have been kept")
	}
}

func TestCleanup_DryRunKeepsFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	old := seedFile(t, dir, "old.png", 48*time.Hour)

	c := &Cleanup{Dir: dir, MaxAge: 24 * time.Hour, DryRun: true, Logger: slog.Default()}
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !exists(old) {
		t.Error("dry run must not delete anything")
	}
}

func TestCleanup_IgnoresSubdirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sub := filepath.Join(dir, "keep-me")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	nested := seedFile(t, sub, "old.png", 48*time.Hour)

	c := &Cleanup{Dir: dir, MaxAge: 24 * time.Hour, Logger: slog.Default()}
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !exists(sub) || !exists(nested) {
		t.Error("the sweep must stay non-recursive")
	}
}

func TestCleanup_MissingDir(t *testing.T) {
	t.Parallel()

	c := &Cleanup{
		Dir:    filepath.Join(t.TempDir(), "does-not-exist"),
		MaxAge: 24 * time.Hour,
		Logger: slog.Default(),
	}
	if err := c.Run(context.Background()); err == nil {
		t.Fatal("a missing directory should fail loudly")
	}
}
