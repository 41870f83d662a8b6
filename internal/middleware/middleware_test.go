package middleware

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/keshon/sentinel/internal/command"
	"github.com/keshon/sentinel/internal/history"
	"github.com/keshon/sentinel/pkg/cmd"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) Send(_ context.Context, content string) (string, error) {
	r.add("send:" + content)
	return "reply", nil
}
func (r *recorder) React(_ context.Context, id, emoji string) error {
	r.add("react:" + id + ":" + emoji)
	return nil
}
func (r *recorder) Unreact(_ context.Context, id, emoji string) error {
	r.add("unreact:" + id + ":" + emoji)
	return nil
}
func (r *recorder) Typing(context.Context) error { r.add("typing"); return nil }
func (r *recorder) Delete(_ context.Context, id string) error {
	r.add("delete:" + id)
	return nil
}

func invocation(ch command.Channel, guildID string) *command.Invocation {
	msg := &command.Message{ID: "msg1", GuildID: guildID, ChannelID: "c", AuthorID: "u"}
	return &command.Invocation{
		ID:      "0123456789abcdef",
		Message: msg,
		Caller:  command.NewCaller(msg, nil),
		Spec:    &command.Spec{Name: "test"},
		Channel: ch,
	}
}

func run(t *testing.T, h command.HandlerFunc, inv *command.Invocation, mws ...command.Interceptor) error {
	t.Helper()
	return cmd.Chain(h, mws...)(context.Background(), inv)
}

func TestErrorContainmentSwallows(t *testing.T) {
	rec := &recorder{}
	inv := invocation(rec, "g")
	boom := errors.New("/etc/bot/secret.json: token=xyz")

	err := run(t, func(context.Context, *command.Invocation) error { return boom }, inv, WithErrorContainment())
	if err != nil {
		t.Fatalf("error escaped: %v", err)
	}
	if !errors.Is(inv.Err, boom) {
		t.Fatalf("inv.Err = %v", inv.Err)
	}
	events := rec.list()
	if len(events) != 1 || !strings.HasPrefix(events[0], "send:") {
		t.Fatalf("events %q", events)
	}
	if strings.Contains(events[0], "secret.json") || strings.Contains(events[0], "xyz") {
		t.Fatalf("leaked detail: %q", events[0])
	}
}

func TestErrorContainmentSkipsReplyAfterHandlerReplied(t *testing.T) {
	rec := &recorder{}
	inv := invocation(rec, "g")
	boom := errors.New("boom")

	err := run(t, func(ctx context.Context, inv *command.Invocation) error {
		_ = inv.Reply(ctx, "partial")
		return boom
	}, inv, WithErrorContainment())
	if err != nil || !errors.Is(inv.Err, boom) {
		t.Fatalf("err=%v inv.Err=%v", err, inv.Err)
	}
	if events := rec.list(); len(events) != 1 || events[0] != "send:partial" {
		t.Fatalf("events %q", events)
	}
}

func TestErrorContainmentRecoversPanic(t *testing.T) {
	rec := &recorder{}
	inv := invocation(rec, "g")

	err := run(t, func(context.Context, *command.Invocation) error { panic("nil pointer") }, inv, WithErrorContainment())
	var pe *cmd.PanicError
	if err != nil || !errors.As(inv.Err, &pe) {
		t.Fatalf("err=%v inv.Err=%v", err, inv.Err)
	}
}

func TestLoadingReactionWrapsHandler(t *testing.T) {
	rec := &recorder{}
	inv := invocation(rec, "g")

	_ = run(t, func(context.Context, *command.Invocation) error {
		rec.add("handler")
		return nil
	}, inv, WithLoadingReaction("⏳"), WithTyping())

	want := []string{"react:msg1:⏳", "typing", "handler", "unreact:msg1:⏳"}
	if got := rec.list(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("events %q, want %q", got, want)
	}
}

func TestCleanupOnlyOnSuccess(t *testing.T) {
	rec := &recorder{}
	_ = run(t, func(context.Context, *command.Invocation) error { return errors.New("x") }, invocation(rec, "g"), WithCleanup(0))
	if len(rec.list()) != 0 {
		t.Fatalf("deleted after failure: %q", rec.list())
	}

	_ = run(t, func(context.Context, *command.Invocation) error { return nil }, invocation(rec, "g"), WithCleanup(0))
	if got := rec.list(); len(got) != 1 || got[0] != "delete:msg1" {
		t.Fatalf("events %q", got)
	}
}

func TestGuildOnly(t *testing.T) {
	rec := &recorder{}
	called := false
	_ = run(t, func(context.Context, *command.Invocation) error {
		called = true
		return nil
	}, invocation(rec, ""), WithGuildOnly())
	if called {
		t.Fatal("handler ran in DM")
	}
	if len(rec.list()) != 1 {
		t.Fatalf("events %q", rec.list())
	}
}

func TestHistoryRecordsFailures(t *testing.T) {
	store := history.New(5)
	rec := &recorder{}

	_ = run(t, func(context.Context, *command.Invocation) error { return errors.New("x") },
		invocation(rec, "g"), WithHistory(store), WithErrorContainment())
	_ = run(t, func(context.Context, *command.Invocation) error { return nil },
		invocation(rec, "g"), WithHistory(store))

	got := store.Recent("g", 0)
	if len(got) != 2 || got[0].Failed || !got[1].Failed || got[0].Command != "test" {
		t.Fatalf("history %+v", got)
	}
}

func TestTimingAndLoggingPassThrough(t *testing.T) {
	boom := errors.New("boom")
	err := run(t, func(context.Context, *command.Invocation) error { return boom },
		invocation(&recorder{}, "g"), WithLogging(), WithTiming(time.Nanosecond))
	if !errors.Is(err, boom) {
		t.Fatalf("got %v", err)
	}
}
