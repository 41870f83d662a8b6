package jobmgr

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

func TestScheduleRejectsDuplicatesAndBadSpecs(t *testing.T) {
	m := NewManager(zerolog.Nop())
	noop := func(context.Context) error { return nil }

	if err := m.Schedule("sweep", "@every 1m", noop); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if err := m.Schedule("sweep", "@every 1m", noop); err == nil {
		t.Fatal("expected duplicate error")
	}
	if err := m.Schedule("bad", "not a spec", noop); err == nil {
		t.Fatal("expected spec error")
	}
	if got := m.List(); len(got) != 1 || got[0] != "sweep" {
		t.Fatalf("List = %v", got)
	}
}

func TestRunNowRecordsState(t *testing.T) {
	m := NewManager(zerolog.Nop())
	boom := errors.New("boom")
	calls := 0
	_ = m.Schedule("probe", "@every 1h", func(context.Context) error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	})

	if err := m.RunNow("probe"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := m.RunNow("probe"); !errors.Is(err, boom) {
		t.Fatalf("second run: %v", err)
	}

	s := m.States()[0]
	if s.Runs != 2 || s.LastErr != "boom" || s.Running {
		t.Fatalf("unexpected state %+v", s)
	}
	if !strings.Contains(m.Status(), "probe (2 runs) last error: boom") {
		t.Fatalf("Status = %q", m.Status())
	}
	if err := m.RunNow("missing"); err == nil {
		t.Fatal("expected error for unknown job")
	}
}

func TestOverlappingRunIsSkipped(t *testing.T) {
	m := NewManager(zerolog.Nop())
	entered := make(chan struct{})
	release := make(chan struct{})
	_ = m.Schedule("slow", "@every 1h", func(context.Context) error {
		close(entered)
		<-release
		return nil
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = m.RunNow("slow")
	}()
	<-entered

	if err := m.RunNow("slow"); err != nil {
		t.Fatalf("skipped run returned %v", err)
	}
	close(release)
	wg.Wait()

	s := m.States()[0]
	if s.Runs != 1 || s.Skipped != 1 {
		t.Fatalf("unexpected state %+v", s)
	}
}

func TestPanicIsContained(t *testing.T) {
	m := NewManager(zerolog.Nop())
	_ = m.Schedule("bad", "@every 1h", func(context.Context) error { panic("oops") })

	err := m.RunNow("bad")
	if err == nil || !strings.Contains(err.Error(), "oops") {
		t.Fatalf("got %v", err)
	}
	if m.States()[0].Running {
		t.Fatal("job left running after panic")
	}
}
