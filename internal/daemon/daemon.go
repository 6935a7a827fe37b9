// Package daemon runs the stamp-gated scheduler as a long-lived process.
//
// Single-shot `duecron run` invocations stay the primary mode; the daemon
// exists for machines where nothing else triggers the CLI often enough.
// It keeps the same durability model: every trigger goes through
// runner.RunIfDue against the stamp store, so restarts never double-run a
// stamped instant and a catch-up pass on start picks up instants missed
// while the process was down.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/kosiew/duecron/internal/cronexpr"
	"github.com/kosiew/duecron/internal/runner"
	"github.com/kosiew/duecron/internal/stamp"
)

// Daemon triggers registered jobs from an internal cron clock. Each job
// is protected by a per-job mutex: if a trigger fires while the previous
// run is still going, the tick is skipped (the stamp logic catches the
// instant up later).
type Daemon struct {
	mu      sync.Mutex
	runner  *runner.Runner
	store   stamp.Store
	jobs    []runner.Job
	names   map[string]struct{}
	locks   map[string]*sync.Mutex
	cron    *cron.Cron
	logger  *slog.Logger
	metrics *Metrics
	listen  string
	srv     *http.Server
	ctx     context.Context
	cancel  context.CancelFunc
}

// New creates a daemon over the given runner and stamp store. listen is
// the optional admin/metrics address; empty disables the HTTP server.
func New(r *runner.Runner, store stamp.Store, listen string, logger *slog.Logger) *Daemon {
	if logger == nil {
		logger = slog.Default()
	}
	return &Daemon{
		runner:  r,
		store:   store,
		names:   make(map[string]struct{}),
		locks:   make(map[string]*sync.Mutex),
		logger:  logger,
		metrics: NewMetrics(),
		listen:  listen,
	}
}

// RegisterJob adds a job. Must be called before Start. Returns an error
// if a job with the same name is already registered.
func (d *Daemon) RegisterJob(j runner.Job) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	name := j.Name()
	if _, exists := d.names[name]; exists {
		return fmt.Errorf("daemon: duplicate job name %q", name)
	}

	d.names[name] = struct{}{}
	d.locks[name] = &sync.Mutex{}
	d.jobs = append(d.jobs, j)
	return nil
}

// Start runs a catch-up pass over all jobs, then begins cron-triggered
// evaluation. Returns an error if any job's schedule cannot be parsed or
// translated for the cron clock.
func (d *Daemon) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.ctx, d.cancel = context.WithCancel(context.Background())

	// Catch-up: instants that became due while the daemon was down.
	for _, job := range d.jobs {
		d.evaluate(job)
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	d.cron = cron.New(cron.WithParser(parser))

	for _, job := range d.jobs {
		spec, ok, err := clockSpec(job.Schedule())
		if err != nil {
			d.cancel()
			return fmt.Errorf("daemon: job %q: %w", job.Name(), err)
		}
		if !ok {
			d.logger.Warn("daemon: schedule can never fire, not registering",
				"job", job.Name(), "schedule", job.Schedule())
			continue
		}

		if _, err := d.cron.AddFunc(spec, func() { d.evaluate(job) }); err != nil {
			d.cancel()
			return fmt.Errorf("daemon: job %q: registering %q: %w", job.Name(), spec, err)
		}
	}

	d.cron.Start()
	d.logger.Info("daemon: started", "jobs", len(d.jobs), "listen", d.listen)

	if d.listen != "" {
		d.srv = &http.Server{
			Addr:              d.listen,
			Handler:           d.buildRouter(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := d.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				d.logger.Error("daemon: admin server failed", "error", err)
			}
		}()
	}

	return nil
}

// Stop shuts the daemon down, waiting for in-flight triggers.
func (d *Daemon) Stop(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		d.cancel()
	}
	if d.cron != nil {
		<-d.cron.Stop().Done()
	}
	if d.srv != nil {
		if err := d.srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("daemon: admin server shutdown: %w", err)
		}
	}
	d.logger.Info("daemon: stopped")
	return nil
}

// evaluate runs one due-check for job under its per-job lock.
func (d *Daemon) evaluate(job runner.Job) {
	lock := d.locks[job.Name()]
	if !lock.TryLock() {
		d.logger.Warn("daemon: job still running, skipping trigger", "job", job.Name())
		d.metrics.RecordSkip(job.Name())
		return
	}
	defer lock.Unlock()

	ran, err := d.runner.RunIfDue(d.ctx, job)
	switch {
	case err != nil:
		d.logger.Error("daemon: job failed", "job", job.Name(), "error", err)
		d.metrics.RecordFailure(job.Name())
	case ran:
		d.metrics.RecordSuccess(job.Name(), time.Now())
	}
}

// clockSpec converts a Monday-first 5-field expression into the
// Sunday-first dialect the cron clock understands. The middle return is
// false when some field has no in-range member, meaning the schedule can
// never fire.
//
// Non-wildcard fields are rewritten as explicit value lists: that drops
// out-of-range literals the lax parser tolerates, and keeps translated
// weekday ranges valid even when they would wrap (e.g. Sat-Sun becoming
// 6,0).
func clockSpec(expr string) (string, bool, error) {
	sched, err := cronexpr.Parse(expr)
	if err != nil {
		return "", false, err
	}

	fields := sched.Fields()
	for i, raw := range fields {
		if raw == "*" {
			continue
		}
		vals := sched.FieldValues(i)
		if len(vals) == 0 {
			return "", false, nil
		}
		if i == 4 {
			for j, d := range vals {
				vals[j] = (d + 1) % 7
			}
			sort.Ints(vals)
		}
		parts := make([]string, len(vals))
		for j, v := range vals {
			parts[j] = strconv.Itoa(v)
		}
		fields[i] = strings.Join(parts, ",")
	}

	return strings.Join(fields[:], " "), true, nil
}
