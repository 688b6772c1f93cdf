package mapdex

import (
	"context"
	"fmt"
	"time"
)

// ValidationService checks rows against a mapping without storing them.
type ValidationService struct {
	svc validationUseCase
	obs *observer
}

// Row validates a single row. An empty result means the row is valid.
func (s *ValidationService) Row(ctx context.Context, mappingID string, row Row) (_ []FieldError, err error) {
	start := time.Now()
	defer func() { s.obs.observe("validate.row", start, err) }()

	vr, err := toRow(row)
	if err != nil {
		return nil, fmt.Errorf("validate row: %w", err)
	}
	errs, err := s.svc.ValidateRow(ctx, mappingID, vr)
	if err != nil {
		return nil, fmt.Errorf("validate row: %w", err)
	}
	return fromFieldErrors(errs), nil
}

// Rows validates a batch of rows in order.
func (s *ValidationService) Rows(ctx context.Context, mappingID string, rows []Row) (_ Report, err error) {
	start := time.Now()
	defer func() { s.obs.observe("validate.rows", start, err) }()

	vrows, err := toRows(rows)
	if err != nil {
		return Report{}, fmt.Errorf("validate rows: %w", err)
	}
	rep, err := s.svc.ValidateRows(ctx, mappingID, vrows)
	if err != nil {
		return Report{}, fmt.Errorf("validate rows: %w", err)
	}
	return fromReport(rep), nil
}
