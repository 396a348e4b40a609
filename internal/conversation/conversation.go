// Package conversation runs the inbound message pipeline: history, oracle
// call, directive dispatch, and the glue between a subject's reply and their
// open obligations.
package conversation

import "context"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// historyCap bounds the per-subject context window kept for the oracle.
const historyCap = 50

// History stores each subject's recent exchange, oldest first, capped at
// historyCap messages.
type History interface {
	Messages(ctx context.Context, subjectID string) ([]Message, error)
	Append(ctx context.Context, subjectID string, msg Message) error
}

// SystemContext is the temporal grounding handed to the oracle with every
// call.
type SystemContext struct {
	Today       string // "2006-01-02 Monday"
	CurrentTime string // "15:04"
}

// Oracle produces the assistant's raw reply, possibly containing directives.
type Oracle interface {
	Reply(ctx context.Context, history []Message, sys SystemContext) (string, error)
}
