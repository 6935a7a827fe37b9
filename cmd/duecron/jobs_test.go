package main

import (
	"log/slog"
	"testing"

	"github.com/kosiew/duecron/internal/config"
	"github.com/kosiew/duecron/internal/task"
)

func testConfig() *config.Config {
	return &config.Config{
		Version: "1",
		Jobs: []config.JobConfig{
			{
				Name:     "cleanup",
				Schedule: "0 7 * * *",
				Task:     task.Spec{Type: "cleanup", Dir: "/tmp/x", MaxAge: "24h"},
			},
			{
				Name:     "gc",
				Schedule: "0 8 * * 0",
				Task:     task.Spec{Type: "command", Argv: []string{"git", "gc"}},
			},
		},
	}
}

func TestBuildJobs(t *testing.T) {
	t.Parallel()

	jobs, err := buildJobs(testConfig(), slog.Default())
	if err != nil {
		t.Fatalf("buildJobs failed: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("got %d jobs, want 2", len(jobs))
	}
	if jobs[0].Name() != "cleanup" || jobs[0].Schedule() != "0 7 * * *" {
		t.Errorf("jobs[0] = %s %s", jobs[0].Name(), jobs[0].Schedule())
	}
}

func TestBuildJobs_BadTask(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Jobs[0].Task = task.Spec{Type: "command"} // missing argv

	if _, err := buildJobs(cfg, slog.Default()); err == nil {
		t.Fatal("buildJobs should surface a bad task spec")
	}
}

func TestSelectJobs(t *testing.T) {
	t.Parallel()

	jobs, err := buildJobs(testConfig(), slog.Default())
	if err != nil {
		t.Fatalf("buildJobs failed: %v", err)
	}

	selected, err := selectJobs(jobs, []string{"gc"})
	if err != nil {
		t.Fatalf("selectJobs failed: %v", err)
	}
	if len(selected) != 1 || selected[0].Name() != "gc" {
		t.Errorf("selected = %v", selected)
	}

	if _, err := selectJobs(jobs, []string{"typo"}); err == nil {
		t.Fatal("unknown job name should fail")
	}
}
