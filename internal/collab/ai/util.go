package ai

import (
	"regexp"
	"strings"
)

const maxReply = 1800

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

func isGarbage(s string) bool {
	l := strings.ToLower(s)
	return strings.Contains(l, "<html") ||
		strings.Contains(l, "not allowed") ||
		len(strings.TrimSpace(s)) < 2
}

func truncate(b []byte) string {
	if len(b) > 200 {
		return string(b[:200]) + "..."
	}
	return string(b)
}

// cleanReply drops reasoning blocks and wrapping quotes and bounds the length
// to fit one chat message.
func cleanReply(reply string) string {
	reply = strings.TrimSpace(thinkBlock.ReplaceAllString(reply, ""))

	if len(reply) >= 2 {
		for _, q := range [][2]string{{`"`, `"`}, {`'`, `'`}, {"“", "”"}, {"‘", "’"}} {
			if strings.HasPrefix(reply, q[0]) && strings.HasSuffix(reply, q[1]) {
				reply = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(reply, q[0]), q[1]))
				break
			}
		}
	}

	if len(reply) > maxReply {
		reply = reply[:maxReply] + "\n\n[truncated]"
	}
	return reply
}
