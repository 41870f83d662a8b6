package dispatch

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/keshon/sentinel/internal/collab"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		forbidden []string
	}{
		{"path and token", errors.New("/secret/path token=abc123"), []string{"/secret/path", "abc123"}},
		{"bearer", errors.New("request failed: Bearer sk-livekey1234567890"), []string{"sk-livekey1234567890"}},
		{"discord token", errors.New("auth with MTIzNDU2Nzg5MDEyMzQ1Njc4OTAxMjM0.GaBcDe.abcdefghijklmnopqrstuvwxyz0123 failed"), []string{"MTIzNDU2Nzg5MDEyMzQ1Njc4OTAxMjM0"}},
		{"windows path", errors.New(`open C:\Users\bot\config.json: denied`), []string{`C:\Users\bot`}},
		{"stack", fmt.Errorf("panic: boom\ngoroutine 1 [running]:\nmain.go:12"), []string{"goroutine", "main.go"}},
		{"url with key", errors.New("GET https://api.example.com/x?application_id=deadbeef: 500"), []string{"deadbeef", "api.example.com"}},
		{"api key", errors.New("api_key: hunter2 rejected"), []string{"hunter2"}},
		{"relative path", errors.New("open config/secret.json: no such file"), []string{"config/secret.json", "secret.json"}},
		{"single segment path", errors.New("open /secrets: permission denied"), []string{"/secrets"}},
		{"dot path", errors.New("read ./data.db failed"), []string{"./data.db", "data.db"}},
		{"quoted json key", errors.New(`{"token":"abc123"}`), []string{"abc123"}},
		{"quoted json number", errors.New(`HTTP 401, {"message": "401: Unauthorized", "password": 12345}`), []string{"12345"}},
		{"bare token word", errors.New("token abc123 rejected"), []string{"abc123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.err)
			for _, f := range tt.forbidden {
				if strings.Contains(got, f) {
					t.Errorf("Sanitize(%q) = %q still contains %q", tt.err, got, f)
				}
			}
		})
	}
}

func TestSanitizeBounded(t *testing.T) {
	got := Sanitize(errors.New(strings.Repeat("word ", 200)))
	if len(got) > maxFailureText+len("…") {
		t.Fatalf("length %d", len(got))
	}
}

func TestFailureMessage(t *testing.T) {
	msg := FailureMessage(&collab.UnavailableError{Feature: "chat", Err: errors.New("dial tcp 10.0.0.1:443")}, "ref1")
	if !strings.Contains(msg, "Chat is unavailable") || strings.Contains(msg, "10.0.0.1") {
		t.Fatalf("got %q", msg)
	}

	faults := []error{
		errors.New("/secret/path token=abc123"),
		fmt.Errorf("ban 42: %w", errors.New(`HTTP 403 Forbidden, {"message": "Missing Permissions", "code": 50013}`)),
		errors.New("open config/secret.json: no such file"),
	}
	for _, err := range faults {
		msg := FailureMessage(err, "ref2")
		if msg != "❌ Something went wrong. (ref `ref2`)" {
			t.Errorf("FailureMessage(%q) = %q", err, msg)
		}
	}
}
