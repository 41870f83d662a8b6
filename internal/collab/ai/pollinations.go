package ai

import (
	"context"
	"net/http"
)

const pollinationsURL = "https://text.pollinations.ai/openai"

type Pollinations struct {
	client *http.Client
	model  string
	URL    string
}

func NewPollinations(client *http.Client, model string) *Pollinations {
	if model == "" {
		model = "openai"
	}
	return &Pollinations{client: client, model: model, URL: pollinationsURL}
}

func (p *Pollinations) Name() string { return "pollinations" }

func (p *Pollinations) Generate(ctx context.Context, messages []Message) (string, error) {
	return postCompletion(ctx, p.client, p.URL, map[string]any{
		"model":       p.model,
		"messages":    messages,
		"temperature": 1,
		"private":     true,
	})
}
