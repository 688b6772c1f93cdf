// Package value defines the tagged scalar stored in dataset rows.
package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// decimalRegex is plain decimal notation with an optional exponent. It
// excludes Go-only forms such as "1_000", "0x10" and "Inf".
var decimalRegex = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ParseDecimal parses the whole trimmed text as a finite decimal number.
func ParseDecimal(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if !decimalRegex.MatchString(text) {
		return 0, false
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Kind tags the variant held by a Value.
type Kind uint8

// Value kinds. The zero Value is Absent.
const (
	KindAbsent Kind = iota
	KindNull
	KindString
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Value is a row cell: string, number, boolean, null or absent.
// Numbers keep their source literal so serialization is verbatim.
type Value struct {
	kind Kind
	str  string // string payload, or number literal
	num  float64
	b    bool
}

// Absent returns the value of a key missing from a row.
func Absent() Value { return Value{} }

// Null returns an explicit null.
func Null() Value { return Value{kind: KindNull} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a numeric value.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f, str: strconv.FormatFloat(f, 'f', -1, 64)}
}

// NumberLiteral returns a numeric value that serializes as lit.
// lit must be a valid JSON number.
func NumberLiteral(lit string) (Value, error) {
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil || !json.Valid([]byte(lit)) {
		return Value{}, fmt.Errorf("invalid number literal %q", lit)
	}
	return Value{kind: KindNumber, num: f, str: lit}, nil
}

// FromAny converts a decoded JSON scalar (or a Go scalar) into a Value.
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case string:
		return String(x), nil
	case bool:
		return Bool(x), nil
	case json.Number:
		return NumberLiteral(x.String())
	case float64:
		return Number(x), nil
	case float32:
		return Number(float64(x)), nil
	case int:
		return Number(float64(x)), nil
	case int32:
		return Number(float64(x)), nil
	case int64:
		return Number(float64(x)), nil
	case uint:
		return Number(float64(x)), nil
	case uint32:
		return Number(float64(x)), nil
	case uint64:
		return Number(float64(x)), nil
	default:
		return Value{}, fmt.Errorf("unsupported row value of type %T", v)
	}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether the key was missing.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// IsNull reports whether the value is absent or an explicit null.
func (v Value) IsNull() bool { return v.kind == KindAbsent || v.kind == KindNull }

// Float returns the numeric payload; ok is false for non-numbers.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Text coerces the value to its string form: absent and null become "",
// numbers their literal, booleans "true"/"false".
func (v Value) Text() string {
	switch v.kind {
	case KindString, KindNumber:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// IsEmpty reports whether the value is absent, null, or blank after trimming
// its text form. Numeric 0 and boolean false are not empty.
func (v Value) IsEmpty() bool {
	if v.IsNull() {
		return true
	}
	return strings.TrimSpace(v.Text()) == ""
}

// Any returns the value as a plain Go scalar (nil for absent and null).
func (v Value) Any() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return json.Number(v.str)
	case KindBool:
		return v.b
	default:
		return nil
	}
}

// Equal reports whether two values hold the same variant and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	default:
		return true
	}
}

// MarshalJSON encodes absent and null as null and numbers by their literal.
// Strings are written without HTML escaping.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v.str); err != nil {
			return nil, fmt.Errorf("encode string value: %w", err)
		}
		return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
	case KindNumber:
		if math.IsInf(v.num, 0) || math.IsNaN(v.num) {
			return nil, fmt.Errorf("non-finite number %v", v.num)
		}
		return []byte(v.str), nil
	case KindBool:
		return json.Marshal(v.b)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes a JSON scalar. Arrays and objects are rejected.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode row value: %w", err)
	}
	parsed, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
