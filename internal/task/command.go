package task

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// outputTail caps how much captured output is attached to a failure.
const outputTail = 2048

// Command runs an external program and treats a non-zero exit as failure.
type Command struct {
	Argv    []string
	Workdir string
	Env     map[string]string
	Logger  *slog.Logger
}

// Compile-time interface check.
var _ Task = (*Command)(nil)

// Run executes the command with the job context. Stdout and stderr are
// captured; on failure the tail of the combined output is attached to the
// returned error.
func (c *Command) Run(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, c.Argv[0], c.Argv[1:]...)
	cmd.Dir = c.Workdir

	if len(c.Env) > 0 {
		env := os.Environ()
		for k, v := range c.Env {
			env = append(env, k+"="+v)
		}
		cmd.Env = env
	}

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	c.Logger.Debug("task: running command", "argv", c.Argv, "workdir", c.Workdir)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("task: %s: %w%s", strings.Join(c.Argv, " "), err, tail(out.Bytes()))
	}

	c.Logger.Debug("task: command completed", "argv", c.Argv)
	return nil
}

func tail(out []byte) string {
	s := strings.TrimSpace(string(out))
	if s == "" {
		return ""
	}
	if len(s) > outputTail {
		s = s[len(s)-outputTail:]
	}
	return "\noutput: " + s
}
