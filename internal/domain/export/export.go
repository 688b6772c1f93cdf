// Package export serializes dataset rows into CSV and JSON documents using
// the owning mapping's field order.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kailas-cloud/mapdex/internal/domain"
	"github.com/kailas-cloud/mapdex/internal/domain/mapping"
	"github.com/kailas-cloud/mapdex/internal/domain/value"
)

// Format is an export document format.
type Format string

// Supported formats.
const (
	CSVFormat  Format = "csv"
	JSONFormat Format = "json"
)

// ParseFormat resolves a format name (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case CSVFormat, JSONFormat:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidFormat, s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == JSONFormat {
		return "application/json"
	}
	return "text/csv; charset=utf-8"
}

// Extension returns the file extension without the dot.
func (f Format) Extension() string { return string(f) }

// CSV renders rows as CSV: a header of field labels, then one record per row
// with values looked up by field name. Absent and null values are empty cells.
func CSV(m mapping.Mapping, rows []value.Row) ([]byte, error) {
	fields := m.Fields()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, len(fields))
	for i, f := range fields {
		header[i] = f.Label()
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(fields))
	for n, row := range rows {
		for i, f := range fields {
			record[i] = row.Get(f.Name()).Text()
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", n, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// JSON renders rows as an array of objects indented by two spaces. Every
// object carries all field names in mapping order; absent and null values
// are both null. An empty dataset is [].
func JSON(m mapping.Mapping, rows []value.Row) ([]byte, error) {
	fields := m.Fields()
	keys := make([][]byte, len(fields))
	for i, f := range fields {
		k, err := marshal(f.Name())
		if err != nil {
			return nil, err
		}
		keys[i] = k
	}

	var compact bytes.Buffer
	compact.WriteByte('[')
	for n, row := range rows {
		if n > 0 {
			compact.WriteByte(',')
		}
		compact.WriteByte('{')
		for i, f := range fields {
			if i > 0 {
				compact.WriteByte(',')
			}
			v, err := marshal(row.Get(f.Name()))
			if err != nil {
				return nil, fmt.Errorf("row %d field %q: %w", n, f.Name(), err)
			}
			compact.Write(keys[i])
			compact.WriteByte(':')
			compact.Write(v)
		}
		compact.WriteByte('}')
	}
	compact.WriteByte(']')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, fmt.Errorf("indent json: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// marshal encodes v without HTML escaping so strings stay verbatim.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode json value: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Render serializes rows in the given format.
func Render(f Format, m mapping.Mapping, rows []value.Row) ([]byte, error) {
	switch f {
	case CSVFormat:
		return CSV(m, rows)
	case JSONFormat:
		return JSON(m, rows)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidFormat, f)
	}
}
