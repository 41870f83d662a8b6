package ai

import (
	"context"
	"net/http"
	"strings"
)

type G4F struct {
	client *http.Client
	model  string
	URL    string
}

// NewG4F picks the endpoint from the model prefix:
//
//	gpt-oss-120b
//	groq/qwen/qwen3-32b
//	ollama/gpt-oss:20b
func NewG4F(client *http.Client, target string) *G4F {
	if target == "" {
		target = "gpt-oss-120b"
	}
	base, model := "https://g4f.dev/api/gpt-oss-120b", target
	switch {
	case strings.HasPrefix(target, "groq/"):
		base, model = "https://g4f.dev/api/groq", strings.TrimPrefix(target, "groq/")
	case strings.HasPrefix(target, "ollama/"):
		base, model = "https://g4f.dev/api/ollama", strings.TrimPrefix(target, "ollama/")
	}
	return &G4F{client: client, model: model, URL: base + "/chat/completions"}
}

func (p *G4F) Name() string { return "g4f:" + p.model }

func (p *G4F) Generate(ctx context.Context, messages []Message) (string, error) {
	return postCompletion(ctx, p.client, p.URL, map[string]any{
		"model":    p.model,
		"messages": messages,
	})
}
