// Package runnertest provides test doubles for the runner package.
package runnertest

import (
	"context"
	"sync"
	"time"

	"github.com/kosiew/duecron/internal/runner"
)

// MockJob is a configurable test double for runner.Job.
type MockJob struct {
	NameVal     string
	ScheduleVal string
	RunFunc     func(ctx context.Context) error

	mu       sync.Mutex
	calls    int
	lastCall time.Time
}

// Compile-time interface check.
var _ runner.Job = (*MockJob)(nil)

// Name implements runner.Job.
func (m *MockJob) Name() string { return m.NameVal }

// Schedule implements runner.Job.
func (m *MockJob) Schedule() string { return m.ScheduleVal }

// Run implements runner.Job and increments the call counter.
func (m *MockJob) Run(ctx context.Context) error {
	m.mu.Lock()
	m.calls++
	m.lastCall = time.Now()
	m.mu.Unlock()

	if m.RunFunc != nil {
		return m.RunFunc(ctx)
	}
	return nil
}

// CallCount returns the number of times Run was called.
func (m *MockJob) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastCall returns the time of the last Run call.
func (m *MockJob) LastCall() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastCall
}
