package domain

import "context"

// ChatProvider is an external chat-completion backend.
type ChatProvider interface {
	Complete(ctx context.Context, systemPrompt, question string) (string, error)
}
