// Package jobmgr runs named periodic jobs on a cron schedule and tracks their
// state in memory.
//
// Typical usage:
//
//	jm := jobmgr.NewManager(log)
//	_ = jm.Schedule("cooldown-sweep", "@every 1m", func(ctx context.Context) error {
//	    store.Sweep()
//	    return nil
//	})
//	jm.Start(ctx)
//	defer jm.Stop()
//
// A job whose previous run is still in progress is skipped rather than
// started twice.
package jobmgr

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron"
	"github.com/rs/zerolog"
)

// State is a snapshot of one job.
type State struct {
	Name    string    `json:"name"`
	Spec    string    `json:"spec"`
	Running bool      `json:"running"`
	Runs    int       `json:"runs"`
	Skipped int       `json:"skipped"`
	LastRun time.Time `json:"last_run"`
	LastErr string    `json:"last_error,omitempty"`
}

type job struct {
	m      *Manager
	name   string
	spec   string
	runner func(ctx context.Context) error

	// guarded by Manager.mu
	running bool
	runs    int
	skipped int
	lastRun time.Time
	lastErr error
}

// Run implements cron.Job.
func (j *job) Run() { j.m.run(j) }

// Manager is safe for concurrent use.
type Manager struct {
	mu   sync.Mutex
	jobs map[string]*job
	cron *cron.Cron
	ctx  context.Context
	log  zerolog.Logger
	now  func() time.Time
}

func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		jobs: make(map[string]*job),
		cron: cron.New(),
		ctx:  context.Background(),
		log:  log.With().Str("component", "jobs").Logger(),
		now:  time.Now,
	}
}

// Schedule registers runner under name. spec uses the cron syntax with a
// leading seconds field or a descriptor such as "@every 5m".
func (m *Manager) Schedule(name, spec string, runner func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.jobs[name]; exists {
		return fmt.Errorf("job '%s' is already scheduled", name)
	}
	j := &job{m: m, name: name, spec: spec, runner: runner}
	if err := m.cron.AddJob(spec, j); err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	m.jobs[name] = j
	return nil
}

// Start begins firing scheduled jobs. Runners receive ctx.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	m.ctx = ctx
	m.mu.Unlock()
	m.cron.Start()
	m.log.Info().Int("jobs", len(m.List())).Msg("job scheduler started")
}

// Stop halts the schedule. Runs already in progress finish on their own.
func (m *Manager) Stop() {
	m.cron.Stop()
}

// RunNow executes the named job synchronously, subject to the same overlap
// rule as scheduled runs.
func (m *Manager) RunNow(name string) error {
	m.mu.Lock()
	j, ok := m.jobs[name]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("job '%s' not scheduled", name)
	}
	return m.run(j)
}

func (m *Manager) run(j *job) error {
	m.mu.Lock()
	if j.running {
		j.skipped++
		m.mu.Unlock()
		m.log.Warn().Str("job", j.name).Msg("previous run still in progress, skipping")
		return nil
	}
	j.running = true
	ctx := m.ctx
	m.mu.Unlock()

	start := m.now()
	err := m.safeRun(ctx, j)

	m.mu.Lock()
	j.running = false
	j.runs++
	j.lastRun = start
	j.lastErr = err
	m.mu.Unlock()

	ev := m.log.Debug()
	if err != nil {
		ev = m.log.Error().Err(err)
	}
	ev.Str("job", j.name).Dur("took", m.now().Sub(start)).Msg("job finished")
	return err
}

func (m *Manager) safeRun(ctx context.Context, j *job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return j.runner(ctx)
}

// List returns the scheduled job names in sorted order.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.jobs))
	for k := range m.jobs {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// States returns a snapshot of every job, sorted by name.
func (m *Manager) States() []State {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]State, 0, len(m.jobs))
	for _, j := range m.jobs {
		s := State{
			Name:    j.name,
			Spec:    j.spec,
			Running: j.running,
			Runs:    j.runs,
			Skipped: j.skipped,
			LastRun: j.lastRun,
		}
		if j.lastErr != nil {
			s.LastErr = j.lastErr.Error()
		}
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b State) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Status returns a human-readable summary, e.g. "Jobs: cooldown-sweep (3 runs)".
func (m *Manager) Status() string {
	states := m.States()
	if len(states) == 0 {
		return "No jobs are scheduled."
	}
	parts := make([]string, 0, len(states))
	for _, s := range states {
		p := fmt.Sprintf("%s (%d runs)", s.Name, s.Runs)
		if s.LastErr != "" {
			p += " last error: " + s.LastErr
		}
		parts = append(parts, p)
	}
	return "Jobs: " + strings.Join(parts, ", ")
}
