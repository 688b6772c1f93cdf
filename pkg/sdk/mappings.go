package mapdex

import (
	"context"
	"fmt"
	"time"
)

// MappingService manages mappings.
type MappingService struct {
	svc       mappingUseCase
	assistant assistantUseCase
	obs       *observer
}

// Create stores a new mapping.
func (s *MappingService) Create(ctx context.Context, in MappingInput) (_ Mapping, err error) {
	start := time.Now()
	defer func() { s.obs.observe("mapping.create", start, err) }()

	draft, err := toDraft(in)
	if err != nil {
		return Mapping{}, fmt.Errorf("create mapping: %w", err)
	}
	m, err := s.svc.Create(ctx, draft)
	if err != nil {
		return Mapping{}, fmt.Errorf("create mapping: %w", err)
	}
	return fromMapping(m), nil
}

// Import stores a mapping from raw source records. Keys may be snake_case
// or camelCase; the mapping and every field record need an id and a name.
func (s *MappingService) Import(
	ctx context.Context, meta map[string]any, fields []map[string]any,
) (_ Mapping, err error) {
	start := time.Now()
	defer func() { s.obs.observe("mapping.import", start, err) }()

	rec, recs := toRecords(meta, fields)
	m, err := s.svc.Import(ctx, rec, recs)
	if err != nil {
		return Mapping{}, fmt.Errorf("import mapping: %w", err)
	}
	return fromMapping(m), nil
}

// Get retrieves a mapping by id.
func (s *MappingService) Get(ctx context.Context, id string) (_ Mapping, err error) {
	start := time.Now()
	defer func() { s.obs.observe("mapping.get", start, err) }()

	m, err := s.svc.Get(ctx, id)
	if err != nil {
		return Mapping{}, fmt.Errorf("get mapping: %w", err)
	}
	return fromMapping(m), nil
}

// List returns all mappings ordered by creation time.
func (s *MappingService) List(ctx context.Context) (_ []Mapping, err error) {
	start := time.Now()
	defer func() { s.obs.observe("mapping.list", start, err) }()

	ms, err := s.svc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}
	out := make([]Mapping, len(ms))
	for i, m := range ms {
		out[i] = fromMapping(m)
	}
	return out, nil
}

// Update replaces the metadata and fields of a mapping.
func (s *MappingService) Update(ctx context.Context, id string, in MappingInput) (_ Mapping, err error) {
	start := time.Now()
	defer func() { s.obs.observe("mapping.update", start, err) }()

	draft, err := toDraft(in)
	if err != nil {
		return Mapping{}, fmt.Errorf("update mapping: %w", err)
	}
	m, err := s.svc.Update(ctx, id, draft)
	if err != nil {
		return Mapping{}, fmt.Errorf("update mapping: %w", err)
	}
	return fromMapping(m), nil
}

// Delete removes a mapping. Its datasets are kept but can no longer be
// validated or exported.
func (s *MappingService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("mapping.delete", start, err) }()

	if err = s.svc.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete mapping: %w", err)
	}
	return nil
}

// DescribeField asks the configured Completer for a field description.
// With apply set the description is also stored on the field.
// Without WithCompleter it fails with ErrAssistantUnavailable.
func (s *MappingService) DescribeField(
	ctx context.Context, mappingID, fieldID string, apply bool,
) (_ Suggestion, err error) {
	start := time.Now()
	defer func() { s.obs.observe("mapping.describe_field", start, err) }()

	describe := s.assistant.DescribeField
	if apply {
		describe = s.assistant.DescribeAndApply
	}
	sug, err := describe(ctx, mappingID, fieldID)
	if err != nil {
		return Suggestion{}, fmt.Errorf("describe field: %w", err)
	}
	return Suggestion{
		MappingID:   sug.MappingID,
		FieldID:     sug.FieldID,
		Description: sug.Description,
		Applied:     sug.Applied,
	}, nil
}
