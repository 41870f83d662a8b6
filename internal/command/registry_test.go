package command

import (
	"context"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(New("help").Aliases("h", "commands").Handle(noop))
	r.MustRegister(New("ban").Handle(noop))

	for _, tok := range []string{"help", "HELP", "h", "Commands"} {
		s, ok := r.Resolve(tok)
		if !ok || s.Name != "help" {
			t.Errorf("Resolve(%q) = %v, %v", tok, s, ok)
		}
	}
	if _, ok := r.Resolve("nope"); ok {
		t.Error("unknown token resolved")
	}
}

func TestResolveCanonicalBeatsAlias(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(New("kick").Handle(noop))
	r.MustRegister(New("boot").Aliases("kick").Handle(noop))

	s, _ := r.Resolve("kick")
	if s.Name != "kick" {
		t.Fatalf("canonical name lost to alias: %s", s.Name)
	}
}

func TestResolveAliasLastWins(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(New("timeout").Aliases("mute").Handle(noop))
	r.MustRegister(New("silence").Aliases("mute").Handle(noop))

	for i := 0; i < 10; i++ {
		s, _ := r.Resolve("mute")
		if s.Name != "silence" {
			t.Fatalf("alias resolved to %s", s.Name)
		}
	}
}

func TestRegisterKeepsOrder(t *testing.T) {
	r := NewRegistry()
	for _, n := range []string{"ping", "ban", "help"} {
		r.MustRegister(New(n).Handle(noop))
	}
	r.MustRegister(New("ban").Description("again").Handle(noop))

	var names []string
	for _, s := range r.All() {
		names = append(names, s.Name)
	}
	if strings.Join(names, ",") != "ping,ban,help" {
		t.Fatalf("order = %v", names)
	}
	if s, _ := r.Resolve("ban"); s.Description != "again" {
		t.Fatal("re-registration did not replace spec")
	}
}

func TestInterceptorOrder(t *testing.T) {
	var trace []string
	tag := func(name string) Interceptor {
		return func(next HandlerFunc) HandlerFunc {
			return func(ctx context.Context, inv *Invocation) error {
				trace = append(trace, name)
				return next(ctx, inv)
			}
		}
	}

	r := NewRegistry(tag("default"))
	s := r.MustRegister(New("x").Use(tag("a"), tag("b")).Handle(func(context.Context, *Invocation) error {
		trace = append(trace, "handler")
		return nil
	}))

	if err := s.Run(context.Background(), &Invocation{}); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(trace, ","); got != "default,a,b,handler" {
		t.Fatalf("trace = %s", got)
	}
}

func TestCategories(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(New("ban").Category("Moderation").Handle(noop))
	r.MustRegister(New("ping").Category("Information").Handle(noop))
	r.MustRegister(New("kick").Category("Moderation").Handle(noop))

	cats := r.Categories(map[string]int{"Information": 1, "Moderation": 2})
	if strings.Join(cats, ",") != "Information,Moderation" {
		t.Fatalf("categories = %v", cats)
	}
	if len(r.ByCategory("Moderation")) != 2 {
		t.Fatal("expected two moderation commands")
	}
}
