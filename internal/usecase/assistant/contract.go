package assistant

import (
	"context"

	dommap "github.com/kailas-cloud/mapdex/internal/domain/mapping"
)

// MappingStore loads mappings and persists accepted suggestions.
type MappingStore interface {
	Get(ctx context.Context, id string) (dommap.Mapping, error)
	Update(ctx context.Context, m dommap.Mapping) error
}
