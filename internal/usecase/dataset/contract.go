package dataset

import (
	"context"

	domds "github.com/kailas-cloud/mapdex/internal/domain/dataset"
	dommap "github.com/kailas-cloud/mapdex/internal/domain/mapping"
	domval "github.com/kailas-cloud/mapdex/internal/domain/validation"
	"github.com/kailas-cloud/mapdex/internal/domain/value"
)

// Repository defines the storage contract for datasets.
type Repository interface {
	Create(ctx context.Context, d domds.Dataset) error
	Save(ctx context.Context, d domds.Dataset) error
	Get(ctx context.Context, id string) (domds.Dataset, error)
	List(ctx context.Context, mappingID string) ([]domds.Dataset, error)
	Delete(ctx context.Context, id string) error
}

// MappingGetter resolves the mapping that owns a dataset.
type MappingGetter interface {
	Get(ctx context.Context, id string) (dommap.Mapping, error)
}

// RowChecker validates rows against a loaded mapping.
type RowChecker interface {
	Check(m dommap.Mapping, rows []value.Row) domval.Report
}
