package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kosiew/duecron/internal/config"
	"github.com/kosiew/duecron/internal/cronexpr"
	"github.com/kosiew/duecron/internal/task"
)

// initCmd interactively scaffolds a starter configuration with one job.
func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively create a configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			outPath, _ := cmd.Flags().GetString("output")
			if outPath == "" {
				outPath = defaultConfigPath()
			}
			if _, err := os.Stat(outPath); err == nil {
				return fmt.Errorf("%s already exists; edit it directly or pass --output", outPath)
			}

			var (
				jobName  = "tmp-cleanup"
				schedule = "0 7 * * *"
				taskType = "cleanup"
				command  string
				dir      = "~/tmp"
				maxAge   = "720h"
			)

			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Job name").
						Description("Stable identity used in the stamp key").
						Value(&jobName).
						Validate(func(s string) error {
							if strings.TrimSpace(s) == "" {
								return fmt.Errorf("name is required")
							}
							return nil
						}),
					huh.NewInput().
						Title("Schedule").
						Description("5-field cron, Monday-first weekdays (0 = Monday)").
						Value(&schedule).
						Validate(func(s string) error {
							_, err := cronexpr.Parse(s)
							return err
						}),
					huh.NewSelect[string]().
						Title("Task type").
						Options(
							huh.NewOption("Sweep old files from a directory", "cleanup"),
							huh.NewOption("Run a shell command", "command"),
						).
						Value(&taskType),
				),
				huh.NewGroup(
					huh.NewInput().
						Title("Command").
						Description("Whitespace-split into argv, e.g. \"git gc\"").
						Value(&command).
						Validate(func(s string) error {
							if len(strings.Fields(s)) == 0 {
								return fmt.Errorf("command is required")
							}
							return nil
						}),
				).WithHideFunc(func() bool { return taskType != "command" }),
				huh.NewGroup(
					huh.NewInput().
						Title("Directory to sweep").
						Value(&dir),
					huh.NewInput().
						Title("Delete files older than").
						Description("Go duration, e.g. 720h for 30 days").
						Value(&maxAge).
						Validate(func(s string) error {
							spec := task.Spec{Type: "cleanup", Dir: "x", MaxAge: s}
							return spec.Validate()
						}),
				).WithHideFunc(func() bool { return taskType != "cleanup" }),
			)
			if err := form.Run(); err != nil {
				return err
			}

			spec := task.Spec{Type: taskType}
			switch taskType {
			case "command":
				spec.Argv = strings.Fields(command)
			case "cleanup":
				spec.Dir = dir
				spec.MaxAge = maxAge
			}

			cfg := &config.Config{
				Version: "1",
				Jobs: []config.JobConfig{
					{Name: jobName, Schedule: schedule, Task: spec},
				},
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			raw, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}
			if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", filepath.Dir(outPath), err)
			}
			if err := os.WriteFile(outPath, raw, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}

			fmt.Printf("Wrote %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "Where to write the config (default: the standard location)")
	return cmd
}

func defaultConfigPath() string {
	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		return filepath.Join(xdg, "duecron", "duecron.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "duecron.yaml"
	}
	return filepath.Join(home, ".config", "duecron", "duecron.yaml")
}
