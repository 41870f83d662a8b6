package status

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/keshon/sentinel/internal/command"
	"github.com/keshon/sentinel/internal/cooldown"
	"github.com/keshon/sentinel/internal/history"
	"github.com/rs/zerolog"
)

func init() { gin.SetMode(gin.TestMode) }

func testDeps(t *testing.T) Deps {
	t.Helper()
	reg := command.NewRegistry()
	noop := func(context.Context, *command.Invocation) error { return nil }
	reg.MustRegister(command.New("ping").Description("Check latency").Handle(noop))
	reg.MustRegister(command.New("ban").
		Description("Ban a member").
		Aliases("b").
		Arg("user", command.KindUser, command.Required()).
		Requires(command.CapBanMembers).
		Cooldown(5 * time.Second).
		Handle(noop))

	cd := cooldown.New()
	cd.CheckAndArm("u1", "ping", time.Minute)

	hist := history.New(20)
	hist.Add("g1", history.Record{Command: "ping"})

	started := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return Deps{
		Version:   "test",
		Started:   started,
		Registry:  reg,
		Cooldowns: cd,
		History:   hist,
		Now:       func() time.Time { return started.Add(90 * time.Second) },
	}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthz(t *testing.T) {
	h := Handler(testDeps(t), zerolog.Nop())
	w := get(t, h, "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
}

func TestCommandsCatalog(t *testing.T) {
	h := Handler(testDeps(t), zerolog.Nop())
	w := get(t, h, "/commands")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}

	var got []CommandInfo
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d commands", len(got))
	}
	ban := got[1]
	if ban.Name != "ban" || ban.Usage != "ban <user>" || ban.Cooldown != 5 {
		t.Fatalf("unexpected ban entry %+v", ban)
	}
	if len(ban.Aliases) != 1 || len(ban.Capabilities) != 1 {
		t.Fatalf("unexpected ban entry %+v", ban)
	}
}

func TestStats(t *testing.T) {
	h := Handler(testDeps(t), zerolog.Nop())
	w := get(t, h, "/stats")

	var got Stats
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := Stats{Version: "test", UptimeSeconds: 90, Commands: 2, CooldownEntries: 1, HistoryGuilds: 1}
	if got.Version != want.Version || got.UptimeSeconds != want.UptimeSeconds ||
		got.Commands != want.Commands || got.CooldownEntries != want.CooldownEntries ||
		got.HistoryGuilds != want.HistoryGuilds {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}
