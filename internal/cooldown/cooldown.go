// Package cooldown throttles repeated command use per caller. Entries live in
// memory only and are lost on restart.
package cooldown

import (
	"sync"
	"time"
)

const (
	DefaultThreshold = 500
	DefaultHorizon   = 60 * time.Second
)

// Result of a CheckAndArm call.
type Result struct {
	Allowed   bool
	Remaining time.Duration
}

type entry struct {
	armedAt time.Time
	window  time.Duration
}

// Store tracks the last armed time per (command, caller).
type Store struct {
	mu        sync.Mutex
	commands  map[string]map[string]entry
	threshold int
	horizon   time.Duration
	now       func() time.Time
}

type Option func(*Store)

// WithThreshold sets the per-command size that triggers a passive sweep.
func WithThreshold(n int) Option { return func(s *Store) { s.threshold = n } }

// WithHorizon sets the minimum age of entries removed by a sweep.
func WithHorizon(d time.Duration) Option { return func(s *Store) { s.horizon = d } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

func New(opts ...Option) *Store {
	s := &Store{
		commands:  make(map[string]map[string]entry),
		threshold: DefaultThreshold,
		horizon:   DefaultHorizon,
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CheckAndArm reports whether callerID may run command now. An allowed call
// arms the window immediately, whatever the command's outcome.
func (s *Store) CheckAndArm(callerID, command string, window time.Duration) Result {
	if window <= 0 {
		return Result{Allowed: true}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	users, ok := s.commands[command]
	if !ok {
		users = make(map[string]entry)
		s.commands[command] = users
	}

	if e, ok := users[callerID]; ok {
		if elapsed := now.Sub(e.armedAt); elapsed < window {
			return Result{Remaining: window - elapsed}
		}
	}

	users[callerID] = entry{armedAt: now, window: window}
	if s.threshold > 0 && len(users) > s.threshold {
		s.sweepLocked(users, now)
	}
	return Result{Allowed: true}
}

// Sweep removes stale entries from every command and returns how many were
// dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for name, users := range s.commands {
		removed += s.sweepLocked(users, now)
		if len(users) == 0 {
			delete(s.commands, name)
		}
	}
	return removed
}

// An entry is stale once it is older than both the horizon and its own
// window, so a sweep never lifts an active cooldown.
func (s *Store) sweepLocked(users map[string]entry, now time.Time) int {
	removed := 0
	for id, e := range users {
		age := now.Sub(e.armedAt)
		if age >= s.horizon && age >= e.window {
			delete(users, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, users := range s.commands {
		n += len(users)
	}
	return n
}

// Reset forgets every entry.
func (s *Store) Reset() {
	s.mu.Lock()
	s.commands = make(map[string]map[string]entry)
	s.mu.Unlock()
}
