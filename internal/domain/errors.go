package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrMappingNotFound signals a missing mapping.
	ErrMappingNotFound = fmt.Errorf("mapping %w", ErrNotFound)
	// ErrDatasetNotFound signals a missing dataset.
	ErrDatasetNotFound = fmt.Errorf("dataset %w", ErrNotFound)
	// ErrFieldNotFound signals a missing field within a mapping.
	ErrFieldNotFound = fmt.Errorf("field %w", ErrNotFound)
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidSchema signals an invalid mapping or dataset definition.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrMalformedRecord signals a source record missing mandatory identity data.
	ErrMalformedRecord = errors.New("malformed source record")
	// ErrInvalidFormat signals an unsupported export format.
	ErrInvalidFormat = errors.New("invalid export format")
	// ErrTooManyRows signals a dataset exceeding the configured row limit.
	ErrTooManyRows = errors.New("too many rows")

	// ErrAssistantUnavailable signals that no text generation provider is configured.
	ErrAssistantUnavailable = errors.New("assistant unavailable")
	// ErrAssistantProviderError signals a text generation provider failure.
	ErrAssistantProviderError = errors.New("assistant provider error")
)

// MalformedRecordError names the record and the attribute that made it unusable.
type MalformedRecordError struct {
	Kind      string // "mapping" or "field"
	Index     int    // position in the source sequence, -1 for a single record
	Attribute string
}

func (e *MalformedRecordError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: %s record #%d is missing %q",
			ErrMalformedRecord.Error(), e.Kind, e.Index, e.Attribute)
	}
	return fmt.Sprintf("%s: %s record is missing %q", ErrMalformedRecord.Error(), e.Kind, e.Attribute)
}

func (e *MalformedRecordError) Unwrap() error { return ErrMalformedRecord }

// NewMalformedRecord creates a malformed record error.
func NewMalformedRecord(kind string, index int, attribute string) error {
	return &MalformedRecordError{Kind: kind, Index: index, Attribute: attribute}
}
