// Package llm provides the language-model client used to phrase answers. The
// system works without one: callers fall back to returning retrieved passages
// when no client is configured or a call fails.
package llm

import "context"

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer produces a completion for a chat exchange.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
