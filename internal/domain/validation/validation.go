// Package validation checks dataset rows against a mapping's field definitions.
// Everything here is a pure function of its inputs.
package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/kailas-cloud/mapdex/internal/domain/mapping"
	"github.com/kailas-cloud/mapdex/internal/domain/mapping/field"
	"github.com/kailas-cloud/mapdex/internal/domain/value"
)

var emailRegex = regexp.MustCompile(`^[^\s\p{Z}@]+@[^\s\p{Z}@]+\.[^\s\p{Z}@]+$`)

// Error lists the rule violations of one field for one row.
type Error struct {
	FieldID   string
	FieldName string
	Errors    []string
}

// ValidateRow checks row against every field of m in mapping order.
// Fields without violations are omitted; an empty result means the row is valid.
// The result is freshly allocated on every call.
func ValidateRow(m mapping.Mapping, row value.Row) []Error {
	out := make([]Error, 0)
	for _, f := range m.Fields() {
		if msgs := validateField(f, row.Get(f.Name())); len(msgs) > 0 {
			out = append(out, Error{FieldID: f.ID(), FieldName: f.Name(), Errors: msgs})
		}
	}
	return out
}

func validateField(f field.Field, v value.Value) []string {
	var msgs []string
	label := f.Label()

	if v.IsEmpty() {
		if f.Required() {
			msgs = append(msgs, fmt.Sprintf("%s is required", label))
		}
		return msgs
	}

	text := v.Text()
	if msg, ok := checkType(f.FieldType(), label, text); !ok {
		msgs = append(msgs, msg)
	}
	for _, r := range f.Rules() {
		if msg, failed := r.Check(label, text); failed {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

func checkType(t field.Type, label, text string) (string, bool) {
	switch t {
	case field.Email:
		if !emailRegex.MatchString(text) {
			return fmt.Sprintf("%s must be a valid email address", label), false
		}
	case field.Number:
		if !isNumber(text) {
			return fmt.Sprintf("%s must be a valid number", label), false
		}
	case field.URL:
		if !isAbsoluteURL(text) {
			return fmt.Sprintf("%s must be a valid URL", label), false
		}
	}
	return "", true
}

func isNumber(text string) bool {
	_, ok := value.ParseDecimal(text)
	return ok
}

func isAbsoluteURL(text string) bool {
	u, err := url.Parse(strings.TrimSpace(text))
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}
