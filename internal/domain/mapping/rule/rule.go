// Package rule defines the validation rule descriptors attached to a field.
package rule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	domvalue "github.com/kailas-cloud/mapdex/internal/domain/value"
)

// Kind identifies a rule.
type Kind string

// Known rule kinds. Any other kind is preserved but never evaluated.
const (
	MinLength Kind = "min_length"
	MaxLength Kind = "max_length"
	Pattern   Kind = "pattern"
	Min       Kind = "min"
	Max       Kind = "max"
)

// IsKnown reports whether the engine evaluates rules of this kind.
func (k Kind) IsKnown() bool {
	switch k {
	case MinLength, MaxLength, Pattern, Min, Max:
		return true
	default:
		return false
	}
}

// Rule is an immutable rule descriptor: a kind, its parameter and an optional
// custom violation message.
type Rule struct {
	kind    Kind
	value   string
	message string

	limit float64
	re    *regexp.Regexp
	inert bool
}

// New validates and creates a Rule.
// Length limits must be non-negative integers, min/max finite numbers,
// patterns valid RE2 syntax. Unknown kinds are accepted as-is.
func New(kind Kind, value, message string) (Rule, error) {
	if kind == "" {
		return Rule{}, fmt.Errorf("rule type is required")
	}
	r := Rule{kind: kind, value: value, message: message}

	switch kind {
	case MinLength, MaxLength:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return Rule{}, fmt.Errorf("rule %s: value must be a non-negative integer, got %q", kind, value)
		}
		r.limit = float64(n)
	case Min, Max:
		f, ok := domvalue.ParseDecimal(value)
		if !ok {
			return Rule{}, fmt.Errorf("rule %s: value must be a number, got %q", kind, value)
		}
		r.limit = f
	case Pattern:
		re, err := regexp.Compile(`^(?:` + value + `)$`)
		if err != nil {
			return Rule{}, fmt.Errorf("rule pattern: %w", err)
		}
		r.re = re
	}
	return r, nil
}

// Reconstruct creates a Rule from stored data. A descriptor that no longer
// parses degrades to an inert rule instead of failing the whole mapping.
func Reconstruct(kind Kind, value, message string) Rule {
	r, err := New(kind, value, message)
	if err != nil {
		return Rule{kind: kind, value: value, message: message, inert: true}
	}
	return r
}

// Kind returns the rule kind.
func (r Rule) Kind() Kind { return r.kind }

// Value returns the raw rule parameter.
func (r Rule) Value() string { return r.value }

// Message returns the custom violation message, if any.
func (r Rule) Message() string { return r.message }

// Check evaluates the rule against a non-empty text value.
// It returns the violation message and true when the value fails the rule.
func (r Rule) Check(label, text string) (string, bool) {
	if r.inert {
		return "", false
	}
	var (
		failed bool
		def    string
	)
	switch r.kind {
	case MinLength:
		failed = float64(utf8.RuneCountInString(text)) < r.limit
		def = fmt.Sprintf("%s must be at least %s characters", label, r.value)
	case MaxLength:
		failed = float64(utf8.RuneCountInString(text)) > r.limit
		def = fmt.Sprintf("%s must be at most %s characters", label, r.value)
	case Pattern:
		if r.re == nil {
			return "", false
		}
		failed = !r.re.MatchString(text)
		def = fmt.Sprintf("%s has an invalid format", label)
	case Min, Max:
		f, ok := domvalue.ParseDecimal(text)
		if !ok {
			// non-numeric input is reported by the type check
			return "", false
		}
		if r.kind == Min {
			failed = f < r.limit
			def = fmt.Sprintf("%s must be at least %s", label, r.value)
		} else {
			failed = f > r.limit
			def = fmt.Sprintf("%s must be at most %s", label, r.value)
		}
	default:
		return "", false
	}

	if !failed {
		return "", false
	}
	if r.message != "" {
		return r.message, true
	}
	return def, true
}
