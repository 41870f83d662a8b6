package cooldown

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(opts ...Option) (*Store, *clock) {
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return New(append([]Option{WithClock(c.now)}, opts...)...), c
}

func TestCheckAndArm(t *testing.T) {
	s, c := newTestStore()
	window := 5 * time.Second

	if r := s.CheckAndArm("u", "ban", window); !r.Allowed {
		t.Fatal("first call should be allowed")
	}

	c.advance(2 * time.Second)
	r := s.CheckAndArm("u", "ban", window)
	if r.Allowed || r.Remaining != 3*time.Second {
		t.Fatalf("second call = %+v, want denied with 3s remaining", r)
	}

	c.advance(r.Remaining)
	if r := s.CheckAndArm("u", "ban", window); !r.Allowed {
		t.Fatal("call after window should be allowed")
	}
}

func TestDeniedCallDoesNotRearm(t *testing.T) {
	s, c := newTestStore()
	s.CheckAndArm("u", "x", 5*time.Second)
	c.advance(4 * time.Second)
	s.CheckAndArm("u", "x", 5*time.Second)
	c.advance(time.Second)
	if !s.CheckAndArm("u", "x", 5*time.Second).Allowed {
		t.Fatal("denied call should not extend the window")
	}
}

func TestZeroWindowNotTracked(t *testing.T) {
	s, _ := newTestStore()
	for i := 0; i < 3; i++ {
		if !s.CheckAndArm("u", "ping", 0).Allowed {
			t.Fatal("zero window must always allow")
		}
	}
	if s.Len() != 0 {
		t.Fatalf("Len = %d, want 0", s.Len())
	}
}

func TestKeysAreIndependent(t *testing.T) {
	s, _ := newTestStore()
	s.CheckAndArm("u1", "ban", time.Minute)
	if !s.CheckAndArm("u2", "ban", time.Minute).Allowed {
		t.Fatal("other caller throttled")
	}
	if !s.CheckAndArm("u1", "kick", time.Minute).Allowed {
		t.Fatal("other command throttled")
	}
}

func TestPassiveSweep(t *testing.T) {
	s, c := newTestStore(WithThreshold(3), WithHorizon(time.Minute))
	for i := 0; i < 3; i++ {
		s.CheckAndArm(fmt.Sprint("old", i), "ask", time.Second)
	}
	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3 before threshold exceeded", s.Len())
	}
	c.advance(2 * time.Minute)
	s.CheckAndArm("new", "ask", time.Second)
	if s.Len() != 1 {
		t.Fatalf("Len = %d after sweep, want 1", s.Len())
	}
}

func TestSweepKeepsActiveLongWindows(t *testing.T) {
	s, c := newTestStore(WithHorizon(time.Minute))
	s.CheckAndArm("u", "prune", 10*time.Minute)
	c.advance(2 * time.Minute)
	if n := s.Sweep(); n != 0 {
		t.Fatalf("swept %d active entries", n)
	}
	if s.CheckAndArm("u", "prune", 10*time.Minute).Allowed {
		t.Fatal("sweep lifted an active cooldown")
	}
	c.advance(9 * time.Minute)
	if n := s.Sweep(); n != 1 {
		t.Fatalf("swept %d, want 1", n)
	}
}

func TestConcurrentSameCaller(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.CheckAndArm("u", "ban", time.Hour).Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if allowed != 1 {
		t.Fatalf("allowed %d concurrent calls, want 1", allowed)
	}
}
