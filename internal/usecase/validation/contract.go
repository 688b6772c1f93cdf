package validation

import (
	"context"

	dommap "github.com/kailas-cloud/mapdex/internal/domain/mapping"
)

// MappingGetter loads the mapping rows are validated against.
type MappingGetter interface {
	Get(ctx context.Context, id string) (dommap.Mapping, error)
}
