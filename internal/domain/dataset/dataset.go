package dataset

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/mapdex/internal/domain/value"
)

// MaxNameLength bounds dataset names.
const MaxNameLength = 256

// Dataset is a named, ordered collection of rows conforming to one mapping
// (immutable value object). Rows are copied on the way in and on the way out.
type Dataset struct {
	id        string
	mappingID string
	name      string
	rows      []value.Row
	createdAt int64
	updatedAt int64
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("dataset name is required")
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("dataset name too long (max %d)", MaxNameLength)
	}
	return nil
}

// New validates and creates a Dataset stamped with now.
func New(id, mappingID, name string, rows []value.Row, now time.Time) (Dataset, error) {
	if id == "" {
		return Dataset{}, fmt.Errorf("dataset id is required")
	}
	if mappingID == "" {
		return Dataset{}, fmt.Errorf("mapping id is required")
	}
	if err := validateName(name); err != nil {
		return Dataset{}, err
	}
	ts := now.UnixMilli()
	return Dataset{
		id:        id,
		mappingID: mappingID,
		name:      name,
		rows:      value.CloneRows(rows),
		createdAt: ts,
		updatedAt: ts,
	}, nil
}

// Reconstruct creates a Dataset without validation (storage hydration).
func Reconstruct(id, mappingID, name string, rows []value.Row, createdAt, updatedAt int64) Dataset {
	return Dataset{
		id:        id,
		mappingID: mappingID,
		name:      name,
		rows:      value.CloneRows(rows),
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the dataset identifier.
func (d Dataset) ID() string { return d.id }

// MappingID returns the owning mapping identifier.
func (d Dataset) MappingID() string { return d.mappingID }

// Name returns the dataset name.
func (d Dataset) Name() string { return d.name }

// Rows returns a deep copy of the rows in stored order.
func (d Dataset) Rows() []value.Row { return value.CloneRows(d.rows) }

// Len returns the number of rows.
func (d Dataset) Len() int { return len(d.rows) }

// CreatedAt returns the creation timestamp (unix millis).
func (d Dataset) CreatedAt() int64 { return d.createdAt }

// UpdatedAt returns the last modification timestamp (unix millis).
func (d Dataset) UpdatedAt() int64 { return d.updatedAt }

// Apply merges u into a copy of the dataset and refreshes updatedAt.
// The new timestamp is strictly greater than the previous one even when the
// clock has not advanced a full millisecond.
func (d Dataset) Apply(u Update, now time.Time) Dataset {
	next := Dataset{
		id:        d.id,
		mappingID: d.mappingID,
		name:      d.name,
		rows:      d.rows,
		createdAt: d.createdAt,
	}
	if u.name != nil {
		next.name = *u.name
	}
	if u.rows != nil {
		next.rows = value.CloneRows(*u.rows)
	} else {
		next.rows = value.CloneRows(d.rows)
	}

	ts := now.UnixMilli()
	if ts <= d.updatedAt {
		ts = d.updatedAt + 1
	}
	next.updatedAt = ts
	return next
}
