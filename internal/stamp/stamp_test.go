package stamp

import (
	"strings"
	"testing"
)

func TestKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		expr string
		task string
		want string
	}{
		{
			name: "simple",
			expr: "0 7 * * 0",
			task: "repo-gc",
			want: ".cron_0_7_*_*_0_repo-gc_last_run",
		},
		{
			name: "whitespace runs collapse",
			expr: " 0   7 * *  0 ",
			task: "repo-gc",
			want: ".cron_0_7_*_*_0_repo-gc_last_run",
		},
		{
			name: "unsafe characters become hyphens",
			expr: "* * * * *",
			task: "clean /tmp && notify!",
			want: ".cron_*_*_*_*_*_clean-tmp-notify_last_run",
		},
		{
			name: "dots and underscores survive",
			expr: "* * * * *",
			task: "pkg.module_fn",
			want: ".cron_*_*_*_*_*_pkg.module_fn_last_run",
		},
		{
			name: "empty task falls back",
			expr: "* * * * *",
			task: "",
			want: ".cron_*_*_*_*_*_task_last_run",
		},
		{
			name: "symbol-only task falls back",
			expr: "* * * * *",
			task: "///",
			want: ".cron_*_*_*_*_*_task_last_run",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Key(tt.expr, tt.task); got != tt.want {
				t.Errorf("Key(%q, %q) = %q, want %q", tt.expr, tt.task, got, tt.want)
			}
		})
	}
}

func TestKey_LongTaskNameCapped(t *testing.T) {
	t.Parallel()

	key := Key("* * * * *", strings.Repeat("a", 200))
	name := strings.TrimSuffix(strings.TrimPrefix(key, ".cron_*_*_*_*_*_"), "_last_run")
	if len(name) != 64 {
		t.Errorf("sanitized name length = %d, want 64", len(name))
	}
}

func TestKey_DistinctTasksDistinctKeys(t *testing.T) {
	t.Parallel()

	expr := "0 7 * * 1"
	if Key(expr, "cleanup") == Key(expr, "notify") {
		t.Error("different tasks sharing an expression must not collide")
	}
}

func TestKey_Deterministic(t *testing.T) {
	t.Parallel()

	if Key("0 7 * * 1", "cleanup") != Key("0 7 * * 1", "cleanup") {
		t.Error("Key must be reproducible across calls")
	}
}
