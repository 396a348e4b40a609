// Package notify is the outbound messaging boundary. Everything that leaves
// the system goes through a Gateway; the Sender wraps one with chunking and
// metrics so callers never worry about transport message-size limits.
package notify

import (
	"context"
	"strings"
)

// Gateway delivers one rendered message to one address.
type Gateway interface {
	Send(ctx context.Context, address, text string) error
}

// maxChunk is the transport's practical per-message size.
const maxChunk = 1500

// Redact masks an address down to its last four characters for log output.
// Phone numbers are personal data; the tail is enough to correlate entries.
func Redact(address string) string {
	runes := []rune(address)
	if len(runes) <= 4 {
		return address
	}
	return "..." + string(runes[len(runes)-4:])
}

// SplitMessage breaks text into transport-sized chunks at line boundaries,
// preserving order. A single line longer than the limit becomes its own
// chunk; the transport truncates it, which beats dropping it.
func SplitMessage(text string) []string {
	if len(text) <= maxChunk {
		return []string{text}
	}

	var parts []string
	var current strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if current.Len()+len(line)+1 > maxChunk && current.Len() > 0 {
			parts = append(parts, strings.TrimSpace(current.String()))
			current.Reset()
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	if current.Len() > 0 {
		parts = append(parts, strings.TrimSpace(current.String()))
	}
	return parts
}
