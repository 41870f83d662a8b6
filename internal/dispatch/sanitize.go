package dispatch

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/keshon/sentinel/internal/collab"
)

const maxFailureText = 200

var scrubbers = []struct {
	re   *regexp.Regexp
	with string
}{
	{regexp.MustCompile(`(?i)\b(bearer|bot)\s+[A-Za-z0-9._\-]{8,}`), "$1 [redacted]"},
	{regexp.MustCompile(`[A-Za-z0-9_\-]{20,}\.[A-Za-z0-9_\-]{6,7}\.[A-Za-z0-9_\-]{27,}`), "[redacted]"},
	{regexp.MustCompile(`(?i)"(token|secret|password|passwd|pwd|api[_-]?key|key|auth|authorization|session|cookie|application_id)"\s*:\s*("[^"]*"|[^,}\s]+)`), `"$1":"[redacted]"`},
	{regexp.MustCompile(`(?i)\b(token|secret|password|passwd|pwd|api[_-]?key|key|auth|authorization|session|cookie|application_id)\s*[=:]\s*[^\s,}]+`), "$1=[redacted]"},
	{regexp.MustCompile(`(?i)\b(token|secret|password|passwd|api[_-]?key)\s+[^\s\[]\S*`), "$1 [redacted]"},
	{regexp.MustCompile(`(?i)https?://\S+`), "[url]"},
	{regexp.MustCompile(`goroutine \d+ \[[^\]]*\]:?`), ""},
	{regexp.MustCompile(`\S+\.go:\d+(\s+\+0x[0-9a-f]+)?`), ""},
	{regexp.MustCompile(`(?:[A-Za-z]:)?[\w.~\-]*(?:[\\/][\w.\-]+)+[\\/]?`), "[path]"},
	{regexp.MustCompile(`\s{2,}`), " "},
}

// Sanitize turns an error into text that is safe to show in chat: no file
// paths, credentials, stack frames or URLs, and at most a couple of lines.
func Sanitize(err error) string {
	if err == nil {
		return ""
	}
	return scrub(err.Error())
}

func scrub(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	for _, sc := range scrubbers {
		s = sc.re.ReplaceAllString(s, sc.with)
	}
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > maxFailureText {
		s = strings.TrimSpace(string(r[:maxFailureText])) + "…"
	}
	return s
}

// FailureMessage is the single reply for a failed invocation. Collaborator
// outages say which feature is degraded; any other fault carries only the
// incident reference, its detail goes to the log.
func FailureMessage(err error, incident string) string {
	var ue *collab.UnavailableError
	if errors.As(err, &ue) {
		return fmt.Sprintf("⚠️ %s is unavailable right now. Please try again later.", featureTitle(ue.Feature))
	}
	return fmt.Sprintf("❌ Something went wrong. (ref `%s`)", incident)
}

func featureTitle(f string) string {
	if f == "" {
		return "This feature"
	}
	return strings.ToUpper(f[:1]) + f[1:]
}
