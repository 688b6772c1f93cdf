package mapping

import (
	"context"

	dommap "github.com/kailas-cloud/mapdex/internal/domain/mapping"
)

// Repository defines the storage contract for mappings.
type Repository interface {
	Create(ctx context.Context, m dommap.Mapping) error
	Get(ctx context.Context, id string) (dommap.Mapping, error)
	List(ctx context.Context) ([]dommap.Mapping, error)
	Update(ctx context.Context, m dommap.Mapping) error
	Delete(ctx context.Context, id string) error
}
