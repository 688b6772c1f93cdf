package validation

import (
	"context"
	"fmt"

	dommap "github.com/kailas-cloud/mapdex/internal/domain/mapping"
	domval "github.com/kailas-cloud/mapdex/internal/domain/validation"
	"github.com/kailas-cloud/mapdex/internal/domain/value"
	"github.com/kailas-cloud/mapdex/internal/metrics"
)

// Service validates rows against stored mappings and records validation metrics.
type Service struct {
	mappings MappingGetter
}

// New creates a validation service.
func New(mappings MappingGetter) *Service {
	return &Service{mappings: mappings}
}

// ValidateRow validates a single row against the mapping with the given id.
// An empty result means the row is valid.
func (s *Service) ValidateRow(ctx context.Context, mappingID string, row value.Row) ([]domval.Error, error) {
	m, err := s.mappings.Get(ctx, mappingID)
	if err != nil {
		return nil, fmt.Errorf("get mapping: %w", err)
	}
	errs := domval.ValidateRow(m, row)
	observeRow(m, errs)
	return errs, nil
}

// ValidateRows validates a batch of rows against the mapping with the given id.
func (s *Service) ValidateRows(ctx context.Context, mappingID string, rows []value.Row) (domval.Report, error) {
	m, err := s.mappings.Get(ctx, mappingID)
	if err != nil {
		return domval.Report{}, fmt.Errorf("get mapping: %w", err)
	}
	return s.Check(m, rows), nil
}

// Check validates rows against an already loaded mapping.
func (s *Service) Check(m dommap.Mapping, rows []value.Row) domval.Report {
	rep := domval.ValidateRows(m, rows)
	for _, r := range rep.Rows {
		observeRow(m, r.Errors)
	}
	return rep
}

func observeRow(m dommap.Mapping, errs []domval.Error) {
	if len(errs) == 0 {
		metrics.ValidationRowsTotal.WithLabelValues("valid").Inc()
		return
	}
	metrics.ValidationRowsTotal.WithLabelValues("invalid").Inc()
	for _, e := range errs {
		metrics.ValidationFieldErrorsTotal.WithLabelValues(fieldTypeLabel(m, e.FieldID)).Inc()
	}
}

// fieldTypeLabel bounds label cardinality: custom types collapse into "other".
func fieldTypeLabel(m dommap.Mapping, fieldID string) string {
	f, ok := m.FieldByID(fieldID)
	if !ok || !f.FieldType().IsKnown() {
		return "other"
	}
	return string(f.FieldType())
}
