package mapdex

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/mapdex/internal/domain"
)

// Completer generates text for a system and a user prompt. It backs
// MappingService.DescribeField.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// completerAdapter wraps a public Completer to satisfy domain.Completer.
type completerAdapter struct {
	inner Completer
}

func (a *completerAdapter) Complete(ctx context.Context, system, prompt string) (domain.Completion, error) {
	text, err := a.inner.Complete(ctx, system, prompt)
	if err != nil {
		return domain.Completion{}, fmt.Errorf("complete: %w: %w", domain.ErrAssistantProviderError, err)
	}
	return domain.Completion{Text: text}, nil
}
