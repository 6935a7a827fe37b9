// Package main is the entry point for the duecron CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kosiew/duecron/internal/config"
	"github.com/kosiew/duecron/internal/cronexpr"
	"github.com/kosiew/duecron/internal/daemon"
	"github.com/kosiew/duecron/internal/runner"
	"github.com/kosiew/duecron/internal/stamp"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "duecron:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "duecron",
		Short: "Stamp-backed cron gate for personal automation jobs",
		Long: "duecron evaluates 5-field cron schedules against persisted last-run\n" +
			"stamps and runs each configured job at most once per scheduled instant.\n" +
			"Weekday fields are Monday-first: 0 = Monday, 6 = Sunday.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		runCmd(), daemonCmd(), evalCmd(), stampsCmd(),
		configCmd(), initCmd(), serviceCmd(), versionCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("duecron %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [job...]",
		Short: "Run every configured job that is due (or only the named ones)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.SlogLevel())

			store, closeStore, err := openStore(cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			jobs, err := buildJobs(cfg, logger)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				if jobs, err = selectJobs(jobs, args); err != nil {
					return err
				}
			}

			return runner.New(store, logger).RunAll(cmd.Context(), jobs)
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	return cmd
}

func daemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Stay resident and evaluate jobs as their schedules fire",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.SlogLevel())

			store, closeStore, err := openStore(cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			jobs, err := buildJobs(cfg, logger)
			if err != nil {
				return err
			}

			d := daemon.New(runner.New(store, logger), store, cfg.Daemon.Listen, logger)
			for _, job := range jobs {
				if err := d.RegisterJob(job); err != nil {
					return err
				}
			}
			if err := d.Start(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return d.Stop(shutdownCtx)
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	return cmd
}

func evalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval <expression>",
		Short: "Print the latest scheduled instant at or before now",
		Long: "Evaluates a 5-field cron expression (quote it, or pass the fields as\n" +
			"separate arguments) and prints the most recent instant it matches within\n" +
			"the 8-day lookback window.",
		Args: cobra.RangeArgs(1, 5),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr := strings.Join(args, " ")
			sched, err := cronexpr.Parse(expr)
			if err != nil {
				return err
			}

			now := time.Now()
			if at, _ := cmd.Flags().GetString("at"); at != "" {
				if now, err = time.Parse(time.RFC3339, at); err != nil {
					return fmt.Errorf("bad --at value: %w", err)
				}
			}

			prev, ok := sched.Previous(now)
			if !ok {
				fmt.Printf("no scheduled instant within the last %d days\n", cronexpr.LookbackDays)
				return nil
			}
			fmt.Printf("%s (epoch %d)\n", prev.Format(time.RFC3339), prev.Unix())
			return nil
		},
	}
	cmd.Flags().String("at", "", "Evaluate against this RFC3339 instant instead of now")
	return cmd
}

func stampsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stamps",
		Short: "Inspect and reset recorded last-run stamps",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded stamps",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.SlogLevel())

			store, closeStore, err := openStore(cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			lister, ok := store.(stamp.Lister)
			if !ok {
				return fmt.Errorf("store does not support listing")
			}
			entries, err := lister.List()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tEPOCH\tLAST RUN")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%d\t%s\n",
					e.Key, e.Epoch, time.Unix(e.Epoch, 0).Format(time.RFC3339))
			}
			return w.Flush()
		},
	}

	clear := &cobra.Command{
		Use:   "clear [job...]",
		Short: "Delete stamps so the next evaluation treats jobs as never run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.SlogLevel())

			store, closeStore, err := openStore(cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			lister, ok := store.(stamp.Lister)
			if !ok {
				return fmt.Errorf("store does not support deletion")
			}

			all, _ := cmd.Flags().GetBool("all")
			switch {
			case all:
				entries, err := lister.List()
				if err != nil {
					return err
				}
				for _, e := range entries {
					if err := lister.Delete(e.Key); err != nil {
						return err
					}
				}
				fmt.Printf("Cleared %d stamps\n", len(entries))
			case len(args) > 0:
				for _, name := range args {
					jc, ok := findJob(cfg, name)
					if !ok {
						return fmt.Errorf("unknown job %q", name)
					}
					if err := lister.Delete(stamp.Key(jc.Schedule, jc.Name)); err != nil {
						return err
					}
				}
				fmt.Printf("Cleared %d stamps\n", len(args))
			default:
				return fmt.Errorf("name the jobs to clear, or pass --all")
			}
			return nil
		},
	}
	clear.Flags().Bool("all", false, "Clear every recorded stamp")

	for _, sub := range []*cobra.Command{list, clear} {
		sub.Flags().StringP("config", "c", "", "Path to configuration file")
	}
	cmd.AddCommand(list, clear)
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check <path>",
		Short: "Validate configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			fmt.Printf("Configuration OK (%d jobs)\n", len(cfg.Jobs))
			for _, job := range cfg.Jobs {
				fmt.Printf("  %s\t%s\n", job.Name, job.Schedule)
			}
			return nil
		},
	})
	return cmd
}

// loadConfig resolves, loads, and validates the configuration for a
// command carrying a --config flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		resolved, err := config.ResolvePath()
		if err != nil {
			return nil, err
		}
		path = resolved
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// openStore opens the configured stamp backend. The returned func closes
// it (a no-op for the file store).
func openStore(cfg *config.Config, logger *slog.Logger) (stamp.Store, func(), error) {
	cacheDir := cfg.ResolveCacheDir()

	if cfg.Store == "sqlite" {
		s, err := stamp.OpenSQLiteStore(filepath.Join(cacheDir, "stamps.db"), logger)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	}

	s, err := stamp.NewFileStore(cacheDir, logger)
	if err != nil {
		return nil, nil, err
	}
	return s, func() {}, nil
}

func findJob(cfg *config.Config, name string) (config.JobConfig, bool) {
	for _, jc := range cfg.Jobs {
		if jc.Name == name {
			return jc, true
		}
	}
	return config.JobConfig{}, false
}
