package mapdex

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/mapdex/internal/domain"
	domds "github.com/kailas-cloud/mapdex/internal/domain/dataset"
	"github.com/kailas-cloud/mapdex/internal/domain/export"
	"github.com/kailas-cloud/mapdex/internal/domain/value"
)

// DatasetService manages datasets.
type DatasetService struct {
	svc datasetUseCase
	obs *observer
}

// Create stores rows as a new dataset of an existing mapping.
func (s *DatasetService) Create(
	ctx context.Context, mappingID, name string, rows []Row,
) (_ Dataset, err error) {
	start := time.Now()
	defer func() { s.obs.observe("dataset.create", start, err) }()

	vrows, err := toRows(rows)
	if err != nil {
		return Dataset{}, fmt.Errorf("create dataset: %w", err)
	}
	d, err := s.svc.Create(ctx, mappingID, name, vrows)
	if err != nil {
		return Dataset{}, fmt.Errorf("create dataset: %w", err)
	}
	return fromDataset(d, true), nil
}

// Get retrieves a dataset with its rows.
func (s *DatasetService) Get(ctx context.Context, id string) (_ Dataset, err error) {
	start := time.Now()
	defer func() { s.obs.observe("dataset.get", start, err) }()

	d, err := s.svc.Get(ctx, id)
	if err != nil {
		return Dataset{}, fmt.Errorf("get dataset: %w", err)
	}
	return fromDataset(d, true), nil
}

// List returns the datasets of a mapping without their rows.
func (s *DatasetService) List(ctx context.Context, mappingID string) (_ []Dataset, err error) {
	start := time.Now()
	defer func() { s.obs.observe("dataset.list", start, err) }()

	ds, err := s.svc.List(ctx, mappingID)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	out := make([]Dataset, len(ds))
	for i, d := range ds {
		out[i] = fromDataset(d, false)
	}
	return out, nil
}

// Update renames a dataset and/or replaces its rows.
func (s *DatasetService) Update(ctx context.Context, id string, u DatasetUpdate) (_ Dataset, err error) {
	start := time.Now()
	defer func() { s.obs.observe("dataset.update", start, err) }()

	var rows *[]value.Row
	if u.Rows != nil {
		vrows, convErr := toRows(*u.Rows)
		if convErr != nil {
			return Dataset{}, fmt.Errorf("update dataset: %w", convErr)
		}
		rows = &vrows
	}
	du, err := domds.NewUpdate(u.Name, rows)
	if err != nil {
		return Dataset{}, fmt.Errorf("update dataset: %w: %w", domain.ErrInvalidSchema, err)
	}

	d, err := s.svc.Update(ctx, id, du)
	if err != nil {
		return Dataset{}, fmt.Errorf("update dataset: %w", err)
	}
	return fromDataset(d, true), nil
}

// Delete removes a dataset.
func (s *DatasetService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("dataset.delete", start, err) }()

	if err = s.svc.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete dataset: %w", err)
	}
	return nil
}

// Validate checks every row of a dataset against its mapping.
func (s *DatasetService) Validate(ctx context.Context, id string) (_ Report, err error) {
	start := time.Now()
	defer func() { s.obs.observe("dataset.validate", start, err) }()

	rep, err := s.svc.Validate(ctx, id)
	if err != nil {
		return Report{}, fmt.Errorf("validate dataset: %w", err)
	}
	return fromReport(rep), nil
}

// Export renders a dataset as CSV or JSON in its mapping's field order.
func (s *DatasetService) Export(ctx context.Context, id string, f ExportFormat) (_ Export, err error) {
	start := time.Now()
	defer func() { s.obs.observe("dataset.export", start, err) }()

	a, err := s.svc.Export(ctx, id, export.Format(f))
	if err != nil {
		return Export{}, fmt.Errorf("export dataset: %w", err)
	}
	return fromArtifact(a), nil
}
