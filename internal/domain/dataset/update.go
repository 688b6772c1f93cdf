package dataset

import (
	"fmt"

	"github.com/kailas-cloud/mapdex/internal/domain/value"
)

// Update is a partial dataset change. Nil fields are unchanged; a non-nil
// rows pointer replaces the whole row sequence.
type Update struct {
	name *string
	rows *[]value.Row
}

// NewUpdate validates and creates an Update. At least one field must be provided.
func NewUpdate(name *string, rows *[]value.Row) (Update, error) {
	if name == nil && rows == nil {
		return Update{}, fmt.Errorf("at least one field must be provided")
	}
	if name != nil {
		if err := validateName(*name); err != nil {
			return Update{}, err
		}
	}
	return Update{name: name, rows: rows}, nil
}

// Name returns the new name, or nil if unchanged.
func (u Update) Name() *string { return u.name }

// Rows returns the replacement rows, or nil if unchanged.
func (u Update) Rows() *[]value.Row { return u.rows }

// HasRows reports whether the update replaces the rows.
func (u Update) HasRows() bool { return u.rows != nil }
