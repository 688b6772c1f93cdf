package dataset

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mapdex/internal/domain"
	domds "github.com/kailas-cloud/mapdex/internal/domain/dataset"
	"github.com/kailas-cloud/mapdex/internal/domain/export"
	domval "github.com/kailas-cloud/mapdex/internal/domain/validation"
	"github.com/kailas-cloud/mapdex/internal/domain/value"
	"github.com/kailas-cloud/mapdex/internal/logger"
	"github.com/kailas-cloud/mapdex/internal/metrics"
)

// Service is the single writer for datasets. All mutations are serialized;
// every dataset handed out is a copy detached from stored state.
type Service struct {
	repo     Repository
	mappings MappingGetter
	checker  RowChecker
	maxRows  int

	mu    sync.RWMutex
	newID func() string
	now   func() time.Time
}

// New creates a dataset service. maxRows <= 0 disables the row limit.
func New(repo Repository, mappings MappingGetter, checker RowChecker, maxRows int) *Service {
	return &Service{
		repo:     repo,
		mappings: mappings,
		checker:  checker,
		maxRows:  maxRows,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// Create stores a new dataset under an existing mapping.
func (s *Service) Create(ctx context.Context, mappingID, name string, rows []value.Row) (domds.Dataset, error) {
	if err := s.checkRows(len(rows)); err != nil {
		return domds.Dataset{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.mappings.Get(ctx, mappingID); err != nil {
		return domds.Dataset{}, fmt.Errorf("get mapping: %w", err)
	}

	d, err := domds.New(s.newID(), mappingID, name, rows, s.now())
	if err != nil {
		return domds.Dataset{}, fmt.Errorf("validate dataset: %w: %w", domain.ErrInvalidSchema, err)
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return domds.Dataset{}, fmt.Errorf("create dataset: %w", err)
	}

	logger.FromContext(ctx).Debug("Dataset created",
		zap.String("dataset_id", d.ID()),
		zap.String("mapping_id", mappingID),
		zap.Int("rows", d.Len()),
	)
	return d, nil
}

// Get returns the dataset with the given id or ErrDatasetNotFound.
func (s *Service) Get(ctx context.Context, id string) (domds.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return domds.Dataset{}, fmt.Errorf("get dataset: %w", err)
	}
	return d, nil
}

// List returns the datasets of a mapping ordered by creation time.
// An empty mappingID lists every dataset.
func (s *Service) List(ctx context.Context, mappingID string) ([]domds.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if mappingID != "" {
		if _, err := s.mappings.Get(ctx, mappingID); err != nil {
			return nil, fmt.Errorf("get mapping: %w", err)
		}
	}
	ds, err := s.repo.List(ctx, mappingID)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	return ds, nil
}

// Update merges a partial update into an existing dataset and persists it.
// updatedAt of the result is strictly greater than the previous one.
func (s *Service) Update(ctx context.Context, id string, u domds.Update) (domds.Dataset, error) {
	if u.HasRows() {
		if err := s.checkRows(len(*u.Rows())); err != nil {
			return domds.Dataset{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := s.repo.Get(ctx, id)
	if err != nil {
		return domds.Dataset{}, fmt.Errorf("get dataset: %w", err)
	}

	next := prev.Apply(u, s.now())
	if err := s.repo.Save(ctx, next); err != nil {
		return domds.Dataset{}, fmt.Errorf("save dataset: %w", err)
	}

	logger.FromContext(ctx).Debug("Dataset updated",
		zap.String("dataset_id", id),
		zap.Bool("rows_replaced", u.HasRows()),
		zap.Int64("updated_at", next.UpdatedAt()),
	)
	return next, nil
}

// Delete removes a dataset.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete dataset: %w", err)
	}
	logger.FromContext(ctx).Debug("Dataset deleted", zap.String("dataset_id", id))
	return nil
}

// Validate checks every row of a dataset against its mapping.
func (s *Service) Validate(ctx context.Context, id string) (domval.Report, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return domval.Report{}, err
	}
	m, err := s.mappings.Get(ctx, d.MappingID())
	if err != nil {
		return domval.Report{}, fmt.Errorf("get mapping: %w", err)
	}
	return s.checker.Check(m, d.Rows()), nil
}

// Export renders a dataset in the given format using its mapping's field order.
func (s *Service) Export(ctx context.Context, id string, f export.Format) (export.Artifact, error) {
	f, err := export.ParseFormat(string(f))
	if err != nil {
		return export.Artifact{}, fmt.Errorf("export dataset: %w", err)
	}

	art, err := s.export(ctx, id, f)
	if err != nil {
		metrics.ExportsTotal.WithLabelValues(string(f), "error").Inc()
		return export.Artifact{}, err
	}
	metrics.ExportsTotal.WithLabelValues(string(f), "ok").Inc()
	metrics.ExportBytes.WithLabelValues(string(f)).Observe(float64(len(art.Data)))
	return art, nil
}

// ExportCSV renders a dataset as CSV.
func (s *Service) ExportCSV(ctx context.Context, id string) (export.Artifact, error) {
	return s.Export(ctx, id, export.CSVFormat)
}

// ExportJSON renders a dataset as a JSON array.
func (s *Service) ExportJSON(ctx context.Context, id string) (export.Artifact, error) {
	return s.Export(ctx, id, export.JSONFormat)
}

func (s *Service) export(ctx context.Context, id string, f export.Format) (export.Artifact, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return export.Artifact{}, err
	}
	m, err := s.mappings.Get(ctx, d.MappingID())
	if err != nil {
		return export.Artifact{}, fmt.Errorf("get mapping: %w", err)
	}

	data, err := export.Render(f, m, d.Rows())
	if err != nil {
		return export.Artifact{}, fmt.Errorf("render %s: %w", f, err)
	}

	logger.FromContext(ctx).Debug("Dataset exported",
		zap.String("dataset_id", id),
		zap.String("format", string(f)),
		zap.Int("bytes", len(data)),
	)
	return export.NewArtifact(d.Name(), f, data), nil
}

func (s *Service) checkRows(n int) error {
	if s.maxRows > 0 && n > s.maxRows {
		return fmt.Errorf("%w: %d rows (max %d)", domain.ErrTooManyRows, n, s.maxRows)
	}
	return nil
}
