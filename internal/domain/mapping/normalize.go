package mapping

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/mapdex/internal/domain"
	"github.com/kailas-cloud/mapdex/internal/domain/mapping/field"
	"github.com/kailas-cloud/mapdex/internal/domain/mapping/rule"
	"github.com/kailas-cloud/mapdex/internal/domain/value"
)

// Record is a raw mapping or field record as returned by a mapping source.
// Keys may follow either the snake_case or the camelCase convention.
type Record map[string]any

// Alternate key names accepted for each attribute, in lookup priority.
var (
	keysType       = []string{"field_type", "type"}
	keysOrder      = []string{"sequence", "order"}
	keysRules      = []string{"validation_rules", "validationRules"}
	keysOptions    = []string{"select_options", "selectOptions"}
	keysRequired   = []string{"is_required", "required"}
	keysCreatedAt  = []string{"created_at", "createdAt"}
	keysUpdatedAt  = []string{"updated_at", "updatedAt"}
	keysEntityType = []string{"entity_type", "entityType"}
	keysExternal   = []string{"external_reference", "externalReference"}
)

// Normalize turns a raw metadata record and a separately fetched field list
// into a canonical Mapping. Every optional attribute is defaulted; missing
// timestamps become now. A record without id or name yields ErrMalformedRecord.
func Normalize(meta Record, fields []Record, now time.Time) (Mapping, error) {
	id := pickString(meta, "id")
	if id == "" {
		return Mapping{}, domain.NewMalformedRecord("mapping", -1, "id")
	}
	name := pickString(meta, "name")
	if name == "" {
		return Mapping{}, domain.NewMalformedRecord("mapping", -1, "name")
	}

	fs, err := NormalizeFields(fields)
	if err != nil {
		return Mapping{}, err
	}

	nowMs := now.UnixMilli()
	createdAt := pickTimestamp(meta, keysCreatedAt, nowMs)
	m, err := New(Params{
		ID:                id,
		Name:              name,
		Description:       pickString(meta, "description"),
		EntityType:        pickString(meta, keysEntityType...),
		ExternalReference: pickString(meta, keysExternal...),
		CreatedAt:         createdAt,
		UpdatedAt:         pickTimestamp(meta, keysUpdatedAt, createdAt),
		Fields:            fs,
	})
	if err != nil {
		return Mapping{}, fmt.Errorf("%w: %w", domain.ErrInvalidSchema, err)
	}
	return m, nil
}

// NormalizeFields normalizes a field list. The position of each record is
// its fallback order.
func NormalizeFields(records []Record) ([]field.Field, error) {
	out := make([]field.Field, 0, len(records))
	for i, rec := range records {
		f, err := NormalizeField(rec, i)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return SortFields(out), nil
}

// NormalizeField normalizes a single field record found at position index.
func NormalizeField(rec Record, index int) (field.Field, error) {
	id := pickString(rec, "id")
	if id == "" {
		return field.Field{}, domain.NewMalformedRecord("field", index, "id")
	}
	name := pickString(rec, "name")
	if name == "" {
		return field.Field{}, domain.NewMalformedRecord("field", index, "name")
	}

	order, ok := pickOrder(rec)
	if !ok {
		order = index
	}

	f, err := field.New(field.Params{
		ID:          id,
		Name:        name,
		Label:       pickString(rec, "label"),
		Type:        field.Type(strings.ToLower(pickString(rec, keysType...))),
		Required:    pickBool(rec, keysRequired...),
		Description: pickString(rec, "description"),
		Rules:       pickRules(rec),
		Options:     pickOptions(rec),
		Order:       order,
	})
	if err != nil {
		return field.Field{}, fmt.Errorf("%w: field record #%d: %w", domain.ErrMalformedRecord, index, err)
	}
	return f, nil
}

func pick(rec Record, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := rec[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func pickString(rec Record, keys ...string) string {
	raw, ok := pick(rec, keys...)
	if !ok {
		return ""
	}
	v, err := value.FromAny(raw)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(v.Text())
}

func pickBool(rec Record, keys ...string) bool {
	raw, ok := pick(rec, keys...)
	if !ok {
		return false
	}
	switch x := raw.(type) {
	case bool:
		return x
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		return err == nil && b
	default:
		v, err := value.FromAny(raw)
		if err != nil {
			return false
		}
		f, isNum := v.Float()
		return isNum && f != 0
	}
}

// pickOrder returns the declared order if it is an integral number.
func pickOrder(rec Record) (int, bool) {
	raw, ok := pick(rec, keysOrder...)
	if !ok {
		return 0, false
	}
	var f float64
	switch x := raw.(type) {
	case string:
		parsed, ok := value.ParseDecimal(x)
		if !ok {
			return 0, false
		}
		f = parsed
	default:
		v, err := value.FromAny(raw)
		if err != nil {
			return 0, false
		}
		num, isNum := v.Float()
		if !isNum {
			return 0, false
		}
		f = num
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) ||
		f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

// pickTimestamp accepts unix millis or an RFC 3339 string.
func pickTimestamp(rec Record, keys []string, def int64) int64 {
	raw, ok := pick(rec, keys...)
	if !ok {
		return def
	}
	if s, isStr := raw.(string); isStr {
		s = strings.TrimSpace(s)
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t.UnixMilli()
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return ms
		}
		return def
	}
	v, err := value.FromAny(raw)
	if err != nil {
		return def
	}
	f, isNum := v.Float()
	if !isNum || f <= 0 || math.IsInf(f, 0) {
		return def
	}
	return int64(f)
}

func pickRules(rec Record) []rule.Rule {
	raw, ok := pick(rec, keysRules...)
	if !ok {
		return nil
	}
	items := decodeList(raw)
	rules := make([]rule.Rule, 0, len(items))
	for _, item := range items {
		switch x := item.(type) {
		case string:
			if x != "" {
				rules = append(rules, rule.Reconstruct(rule.Kind(x), "", ""))
			}
		case map[string]any:
			kind := pickString(x, "type", "kind", "rule")
			if kind == "" {
				continue
			}
			rules = append(rules, rule.Reconstruct(
				rule.Kind(kind), pickString(x, "value"), pickString(x, "message")))
		}
	}
	return rules
}

func pickOptions(rec Record) []field.Option {
	raw, ok := pick(rec, keysOptions...)
	if !ok {
		return nil
	}
	items := decodeList(raw)
	opts := make([]field.Option, 0, len(items))
	for _, item := range items {
		switch x := item.(type) {
		case map[string]any:
			val := pickString(x, "value")
			if val == "" {
				continue
			}
			label := pickString(x, "label")
			if label == "" {
				label = val
			}
			opts = append(opts, field.Option{Value: val, Label: label})
		default:
			v, err := value.FromAny(x)
			if err != nil || v.IsEmpty() {
				continue
			}
			opts = append(opts, field.Option{Value: v.Text(), Label: v.Text()})
		}
	}
	return opts
}

// decodeList accepts a list or a JSON-encoded list (some sources store
// rule and option lists as text columns).
func decodeList(raw any) []any {
	switch x := raw.(type) {
	case []any:
		return x
	case []map[string]any:
		out := make([]any, len(x))
		for i, m := range x {
			out[i] = m
		}
		return out
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	case string:
		var list []any
		if err := json.Unmarshal([]byte(x), &list); err == nil {
			return list
		}
	}
	return nil
}
