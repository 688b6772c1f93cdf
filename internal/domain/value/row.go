package value

import "fmt"

// Row is one dataset record keyed by field name. A missing key is Absent.
type Row map[string]Value

// Get returns the value stored under name, or Absent.
func (r Row) Get(name string) Value {
	if r == nil {
		return Absent()
	}
	return r[name]
}

// Clone returns an independent copy. Values are immutable, so a shallow map
// copy is enough.
func (r Row) Clone() Row {
	if r == nil {
		return Row{}
	}
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// CloneRows deep-copies a row sequence, preserving order.
func CloneRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}

// RowFromMap converts a decoded JSON object into a Row.
func RowFromMap(m map[string]any) (Row, error) {
	row := make(Row, len(m))
	for k, raw := range m {
		v, err := FromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		row[k] = v
	}
	return row, nil
}

// ToMap converts a Row back into plain Go scalars.
func (r Row) ToMap() map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		out[k] = v.Any()
	}
	return out
}
