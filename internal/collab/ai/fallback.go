package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/keshon/sentinel/internal/collab"
	"github.com/keshon/sentinel/pkg/retrylimit"
	"github.com/rs/zerolog"
)

const systemPrompt = "You are Sentinel, a helpful assistant in a Discord server. Answer briefly and plainly."

// Fallback is a collab.ChatBackend that asks each provider in turn.
type Fallback struct {
	providers []Provider
	limiter   *retrylimit.AdaptiveLimiter
	retry     retrylimit.Config
}

func NewFallback(providers ...Provider) *Fallback {
	retry := retrylimit.DefaultConfig()
	retry.Attempts = 2
	return &Fallback{
		providers: providers,
		limiter:   retrylimit.NewAdaptiveLimiter(2, 0.5, 5, 0.5, 0.5),
		retry:     retry,
	}
}

// FromSpecs builds providers from specs, skipping invalid ones.
func FromSpecs(specs []string, log zerolog.Logger) *Fallback {
	var providers []Provider
	for _, s := range specs {
		p, err := NewProvider(s, nil)
		if err != nil {
			log.Warn().Err(err).Msg("skipping ai provider")
			continue
		}
		providers = append(providers, p)
	}
	return NewFallback(providers...)
}

// Providers returns the provider names in order.
func (f *Fallback) Providers() []string {
	names := make([]string, len(f.providers))
	for i, p := range f.providers {
		names[i] = p.Name()
	}
	return names
}

func (f *Fallback) Chat(ctx context.Context, prompt string, cc collab.ChatContext) (string, error) {
	if len(f.providers) == 0 {
		return "", &collab.UnavailableError{Feature: "chat", Err: errors.New("no providers configured")}
	}

	system := systemPrompt
	if cc.Username != "" {
		system += fmt.Sprintf(" You are talking to %s.", cc.Username)
	}
	messages := []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: strings.TrimSpace(prompt)},
	}

	log := zerolog.Ctx(ctx)
	var errs []error
	for _, p := range f.providers {
		var reply string
		err := retrylimit.Do(ctx, f.limiter, f.retry, func(ctx context.Context) error {
			var gerr error
			reply, gerr = p.Generate(ctx, messages)
			return gerr
		})
		if err == nil {
			return reply, nil
		}
		log.Warn().Err(err).Str("provider", p.Name()).Msg("ai provider failed")
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	return "", &collab.UnavailableError{Feature: "chat", Err: errors.Join(errs...)}
}
