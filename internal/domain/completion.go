package domain

import "context"

// Completion is the result of a text generation request.
type Completion struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// Completer generates text from a system instruction and a user prompt.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (Completion, error)
}
