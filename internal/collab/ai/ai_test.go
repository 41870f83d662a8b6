package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/keshon/sentinel/internal/collab"
)

type stubProvider struct {
	name  string
	reply string
	err   error
	calls int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Generate(context.Context, []Message) (string, error) {
	s.calls++
	return s.reply, s.err
}

func TestFallbackUsesNextProvider(t *testing.T) {
	bad := &stubProvider{name: "bad", err: errors.New("nope")}
	good := &stubProvider{name: "good", reply: "hello"}
	f := NewFallback(bad, good)

	got, err := f.Chat(context.Background(), "hi", collab.ChatContext{})
	if err != nil || got != "hello" {
		t.Fatalf("got %q, %v", got, err)
	}
	if bad.calls == 0 || good.calls != 1 {
		t.Fatalf("calls bad=%d good=%d", bad.calls, good.calls)
	}
}

func TestFallbackAllFail(t *testing.T) {
	f := NewFallback()
	_, err := f.Chat(context.Background(), "hi", collab.ChatContext{})
	var ue *collab.UnavailableError
	if !errors.As(err, &ue) || ue.Feature != "chat" {
		t.Fatalf("got %v", err)
	}
}

func TestPollinationsGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"content":"<think>hmm</think> \"Hello there\""}}]}`)
	}))
	defer srv.Close()

	p := NewPollinations(srv.Client(), "")
	p.URL = srv.URL
	got, err := p.Generate(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatal(err)
	}
	if got != "Hello there" {
		t.Fatalf("got %q", got)
	}
}

func TestGenerateStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewG4F(srv.Client(), "")
	p.URL = srv.URL
	_, err := p.Generate(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Fatalf("got %v", err)
	}
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider("g4f:groq/qwen/qwen3-32b", nil)
	if err != nil {
		t.Fatal(err)
	}
	g := p.(*G4F)
	if g.model != "qwen/qwen3-32b" || !strings.Contains(g.URL, "/groq/") {
		t.Fatalf("got %+v", g)
	}
	if _, err := NewProvider("nope", nil); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestCleanReply(t *testing.T) {
	long := strings.Repeat("a", maxReply+10)
	if got := cleanReply(long); !strings.HasSuffix(got, "[truncated]") {
		t.Fatal("long reply not truncated")
	}
	if got := cleanReply("“quoted”"); got != "quoted" {
		t.Fatalf("got %q", got)
	}
}
