package domain

import "context"

// ChatModel completes a single user prompt and returns the raw assistant text.
type ChatModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
