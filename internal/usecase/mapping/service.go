package mapping

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mapdex/internal/domain"
	dommap "github.com/kailas-cloud/mapdex/internal/domain/mapping"
	"github.com/kailas-cloud/mapdex/internal/domain/mapping/field"
	"github.com/kailas-cloud/mapdex/internal/logger"
)

// Service handles mapping authoring, import and reads.
type Service struct {
	repo  Repository
	newID func() string
	now   func() time.Time
}

// New creates a mapping service.
func New(repo Repository) *Service {
	return &Service{repo: repo, newID: uuid.NewString, now: time.Now}
}

// Create validates and stores a new mapping built from an authored draft.
func (s *Service) Create(ctx context.Context, d Draft) (dommap.Mapping, error) {
	ts := s.now().UnixMilli()
	m, err := s.build(s.newID(), d, ts, ts)
	if err != nil {
		return dommap.Mapping{}, err
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return dommap.Mapping{}, fmt.Errorf("create mapping: %w", err)
	}

	logger.FromContext(ctx).Debug("Mapping created",
		zap.String("mapping_id", m.ID()),
		zap.Int("fields", len(m.Fields())),
	)
	return m, nil
}

// Import normalizes raw source records into a mapping and stores it.
// Records missing an id or name fail the whole import with ErrMalformedRecord.
func (s *Service) Import(ctx context.Context, meta dommap.Record, fields []dommap.Record) (dommap.Mapping, error) {
	m, err := dommap.Normalize(meta, fields, s.now())
	if err != nil {
		return dommap.Mapping{}, fmt.Errorf("normalize mapping: %w", err)
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return dommap.Mapping{}, fmt.Errorf("import mapping: %w", err)
	}

	logger.FromContext(ctx).Debug("Mapping imported",
		zap.String("mapping_id", m.ID()),
		zap.Int("fields", len(m.Fields())),
	)
	return m, nil
}

// Get retrieves a mapping by id.
func (s *Service) Get(ctx context.Context, id string) (dommap.Mapping, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return dommap.Mapping{}, fmt.Errorf("get mapping: %w", err)
	}
	return m, nil
}

// List returns all mappings ordered by creation time.
func (s *Service) List(ctx context.Context) ([]dommap.Mapping, error) {
	ms, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}
	return ms, nil
}

// Update replaces the metadata and fields of an existing mapping.
// createdAt is kept; updatedAt always moves forward.
func (s *Service) Update(ctx context.Context, id string, d Draft) (dommap.Mapping, error) {
	prev, err := s.repo.Get(ctx, id)
	if err != nil {
		return dommap.Mapping{}, fmt.Errorf("get mapping: %w", err)
	}

	ts := s.now().UnixMilli()
	if ts <= prev.UpdatedAt() {
		ts = prev.UpdatedAt() + 1
	}
	m, err := s.build(id, d, prev.CreatedAt(), ts)
	if err != nil {
		return dommap.Mapping{}, err
	}

	if err := s.repo.Update(ctx, m); err != nil {
		return dommap.Mapping{}, fmt.Errorf("update mapping: %w", err)
	}
	return m, nil
}

// Delete removes a mapping. Datasets referencing it are left in place.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete mapping: %w", err)
	}
	logger.FromContext(ctx).Debug("Mapping deleted", zap.String("mapping_id", id))
	return nil
}

func (s *Service) build(id string, d Draft, createdAt, updatedAt int64) (dommap.Mapping, error) {
	fields := make([]field.Field, 0, len(d.Fields))
	for i, fd := range d.Fields {
		fid := fd.ID
		if fid == "" {
			fid = s.newID()
		}
		order := i
		if fd.Order != nil {
			order = *fd.Order
		}
		f, err := field.New(field.Params{
			ID:          fid,
			Name:        fd.Name,
			Label:       fd.Label,
			Type:        fd.Type,
			Required:    fd.Required,
			Description: fd.Description,
			Rules:       fd.Rules,
			Options:     fd.Options,
			Order:       order,
		})
		if err != nil {
			return dommap.Mapping{}, fmt.Errorf("validate field #%d: %w: %w", i, domain.ErrInvalidSchema, err)
		}
		fields = append(fields, f)
	}

	m, err := dommap.New(dommap.Params{
		ID:                id,
		Name:              d.Name,
		Description:       d.Description,
		EntityType:        d.EntityType,
		ExternalReference: d.ExternalReference,
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
		Fields:            fields,
	})
	if err != nil {
		return dommap.Mapping{}, fmt.Errorf("validate mapping: %w: %w", domain.ErrInvalidSchema, err)
	}
	return m, nil
}
