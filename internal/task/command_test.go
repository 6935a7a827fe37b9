package task

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func requireSh(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestCommand_Run(t *testing.T) {
	t.Parallel()
	requireSh(t)

	c := &Command{Argv: []string{"sh", "-c", "exit 0"}, Logger: slog.Default()}
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
}

func TestCommand_NonZeroExit(t *testing.T) {
	t.Parallel()
	requireSh(t)

	c := &Command{Argv: []string{"sh", "-c", "echo broken pipe >&2; exit 3"}, Logger: slog.Default()}
	err := c.Run(context.Background())
	if err == nil {
		t.Fatal("non-zero exit should fail")
	}
	if !strings.Contains(err.Error(), "broken pipe") {
		t.Errorf("error should carry the output tail, got: %v", err)
	}
}

func TestCommand_Workdir(t *testing.T) {
	t.Parallel()
	requireSh(t)

	dir := t.TempDir()
	c := &Command{
		Argv:    []string{"sh", "-c", "touch $MARKER"},
		Workdir: dir,
		Env:     map[string]string{"MARKER": "ran-here"},
		Logger:  slog.Default(),
	}
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "ran-here")); err != nil {
		t.Errorf("command did not run in the configured workdir: %v", err)
	}
}

func TestCommand_ContextCancellation(t *testing.T) {
	t.Parallel()
	requireSh(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := &Command{Argv: []string{"sh", "-c", "sleep 10"}, Logger: slog.Default()}
	if err := c.Run(ctx); err == nil {
		t.Fatal("cancelled command should fail")
	}
}
