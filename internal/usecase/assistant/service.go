package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mapdex/internal/domain"
	dommap "github.com/kailas-cloud/mapdex/internal/domain/mapping"
	"github.com/kailas-cloud/mapdex/internal/domain/mapping/field"
	"github.com/kailas-cloud/mapdex/internal/logger"
)

// Suggestion is a generated field description.
type Suggestion struct {
	MappingID   string
	FieldID     string
	Description string
	Applied     bool
}

// Service suggests field descriptions through a text generation provider.
type Service struct {
	mappings  MappingStore
	completer domain.Completer
	now       func() time.Time
}

// New creates an assistant service. completer can be nil, in which case
// every request fails with ErrAssistantUnavailable.
func New(mappings MappingStore, completer domain.Completer) *Service {
	return &Service{mappings: mappings, completer: completer, now: time.Now}
}

// DescribeField asks the provider for a description of one field.
func (s *Service) DescribeField(ctx context.Context, mappingID, fieldID string) (Suggestion, error) {
	if s.completer == nil {
		return Suggestion{}, domain.ErrAssistantUnavailable
	}

	m, f, err := s.lookup(ctx, mappingID, fieldID)
	if err != nil {
		return Suggestion{}, err
	}

	text, err := s.describe(ctx, m, f)
	if err != nil {
		return Suggestion{}, err
	}
	return Suggestion{MappingID: m.ID(), FieldID: f.ID(), Description: text}, nil
}

// DescribeAndApply generates a description and stores it on the field.
func (s *Service) DescribeAndApply(ctx context.Context, mappingID, fieldID string) (Suggestion, error) {
	if s.completer == nil {
		return Suggestion{}, domain.ErrAssistantUnavailable
	}

	m, f, err := s.lookup(ctx, mappingID, fieldID)
	if err != nil {
		return Suggestion{}, err
	}
	text, err := s.describe(ctx, m, f)
	if err != nil {
		return Suggestion{}, err
	}

	if err := s.mappings.Update(ctx, withDescription(m, f.ID(), text, s.now())); err != nil {
		return Suggestion{}, fmt.Errorf("update mapping: %w", err)
	}
	return Suggestion{MappingID: m.ID(), FieldID: f.ID(), Description: text, Applied: true}, nil
}

func (s *Service) lookup(ctx context.Context, mappingID, fieldID string) (dommap.Mapping, field.Field, error) {
	m, err := s.mappings.Get(ctx, mappingID)
	if err != nil {
		return dommap.Mapping{}, field.Field{}, fmt.Errorf("get mapping: %w", err)
	}
	f, ok := m.FieldByID(fieldID)
	if !ok {
		return dommap.Mapping{}, field.Field{}, fmt.Errorf("%w: %s", domain.ErrFieldNotFound, fieldID)
	}
	return m, f, nil
}

func (s *Service) describe(ctx context.Context, m dommap.Mapping, f field.Field) (string, error) {
	res, err := s.completer.Complete(ctx, systemPrompt, buildPrompt(m, f))
	if err != nil {
		logger.FromContext(ctx).Warn("Field description failed",
			zap.String("mapping_id", m.ID()),
			zap.String("field_id", f.ID()),
			zap.Error(err),
		)
		return "", fmt.Errorf("describe field: %w", err)
	}

	text := strings.Trim(strings.TrimSpace(res.Text), `"`)
	if text == "" {
		return "", fmt.Errorf("empty completion: %w", domain.ErrAssistantProviderError)
	}
	return text, nil
}

func withDescription(m dommap.Mapping, fieldID, text string, now time.Time) dommap.Mapping {
	fields := m.Fields()
	for i, f := range fields {
		if f.ID() == fieldID {
			fields[i] = f.WithDescription(text)
		}
	}
	p := m.Params()
	p.Fields = fields
	p.UpdatedAt = now.UnixMilli()
	if p.UpdatedAt <= m.UpdatedAt() {
		p.UpdatedAt = m.UpdatedAt() + 1
	}
	return dommap.Reconstruct(p)
}
