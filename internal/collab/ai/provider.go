// Package ai implements the chat backend on top of public LLM endpoints,
// trying providers in order until one answers.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/keshon/sentinel/pkg/retrylimit"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Provider interface {
	Name() string
	Generate(ctx context.Context, messages []Message) (string, error)
}

// NewProvider builds a provider from a spec such as "pollinations" or
// "g4f:groq/qwen/qwen3-32b".
func NewProvider(spec string, client *http.Client) (Provider, error) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	kind, model, _ := strings.Cut(strings.TrimSpace(spec), ":")
	switch strings.ToLower(kind) {
	case "pollinations":
		return NewPollinations(client, model), nil
	case "g4f":
		return NewG4F(client, model), nil
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", spec)
	}
}

type chatCompletion struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// postCompletion sends an OpenAI-style chat completion request and returns
// the first choice.
func postCompletion(ctx context.Context, client *http.Client, url string, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", &retrylimit.Permanent{Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", &retrylimit.Permanent{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &retrylimit.StatusError{Code: resp.StatusCode, Body: truncate(body)}
	}
	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return "", fmt.Errorf("html response")
	}

	var parsed chatCompletion
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty choices")
	}

	reply := cleanReply(parsed.Choices[0].Message.Content)
	if isGarbage(reply) {
		return "", fmt.Errorf("unusable reply")
	}
	return reply, nil
}
