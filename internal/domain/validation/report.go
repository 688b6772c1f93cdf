package validation

import (
	"github.com/kailas-cloud/mapdex/internal/domain/mapping"
	"github.com/kailas-cloud/mapdex/internal/domain/value"
)

// RowResult is the validation outcome of one row.
type RowResult struct {
	Index  int
	Errors []Error
}

// Valid reports whether the row passed every check.
func (r RowResult) Valid() bool { return len(r.Errors) == 0 }

// Report aggregates the validation of a row sequence.
type Report struct {
	Rows    []RowResult
	Total   int
	Valid   int
	Invalid int
}

// ValidateRows validates every row of rows against m, preserving row order.
func ValidateRows(m mapping.Mapping, rows []value.Row) Report {
	rep := Report{Rows: make([]RowResult, 0, len(rows)), Total: len(rows)}
	for i, row := range rows {
		res := RowResult{Index: i, Errors: ValidateRow(m, row)}
		if res.Valid() {
			rep.Valid++
		} else {
			rep.Invalid++
		}
		rep.Rows = append(rep.Rows, res)
	}
	return rep
}

// InvalidRows returns only the rows that failed at least one check.
func (r Report) InvalidRows() []RowResult {
	out := make([]RowResult, 0, r.Invalid)
	for _, res := range r.Rows {
		if !res.Valid() {
			out = append(out, res)
		}
	}
	return out
}
