package mapdex

import "github.com/kailas-cloud/mapdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound               = domain.ErrNotFound
	ErrMappingNotFound        = domain.ErrMappingNotFound
	ErrDatasetNotFound        = domain.ErrDatasetNotFound
	ErrFieldNotFound          = domain.ErrFieldNotFound
	ErrAlreadyExists          = domain.ErrAlreadyExists
	ErrInvalidSchema          = domain.ErrInvalidSchema
	ErrMalformedRecord        = domain.ErrMalformedRecord
	ErrInvalidFormat          = domain.ErrInvalidFormat
	ErrTooManyRows            = domain.ErrTooManyRows
	ErrAssistantUnavailable   = domain.ErrAssistantUnavailable
	ErrAssistantProviderError = domain.ErrAssistantProviderError
)
