package mapping

import (
	"encoding/json"
	"fmt"
	"strconv"

	dommap "github.com/kailas-cloud/mapdex/internal/domain/mapping"
	"github.com/kailas-cloud/mapdex/internal/domain/mapping/field"
	"github.com/kailas-cloud/mapdex/internal/domain/mapping/rule"
)

// fieldRow is the JSON-serializable representation of a field definition.
type fieldRow struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Label       string      `json:"label"`
	Type        string      `json:"type"`
	Required    bool        `json:"required"`
	Description string      `json:"description,omitempty"`
	Rules       []ruleRow   `json:"validation_rules,omitempty"`
	Options     []optionRow `json:"select_options,omitempty"`
	Order       int         `json:"order"`
}

type ruleRow struct {
	Type    string `json:"type"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message,omitempty"`
}

type optionRow struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func marshalFields(fields []field.Field) ([]byte, error) {
	rows := make([]fieldRow, len(fields))
	for i, f := range fields {
		row := fieldRow{
			ID:          f.ID(),
			Name:        f.Name(),
			Label:       f.Label(),
			Type:        string(f.FieldType()),
			Required:    f.Required(),
			Description: f.Description(),
			Order:       f.Order(),
		}
		for _, r := range f.Rules() {
			row.Rules = append(row.Rules, ruleRow{Type: string(r.Kind()), Value: r.Value(), Message: r.Message()})
		}
		for _, o := range f.Options() {
			row.Options = append(row.Options, optionRow(o))
		}
		rows[i] = row
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("marshal fields: %w", err)
	}
	return data, nil
}

func unmarshalFields(data []byte) ([]field.Field, error) {
	var rows []fieldRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("unmarshal fields: %w", err)
	}
	fields := make([]field.Field, len(rows))
	for i, row := range rows {
		rules := make([]rule.Rule, len(row.Rules))
		for j, rr := range row.Rules {
			rules[j] = rule.Reconstruct(rule.Kind(rr.Type), rr.Value, rr.Message)
		}
		opts := make([]field.Option, len(row.Options))
		for j, o := range row.Options {
			opts[j] = field.Option(o)
		}
		fields[i] = field.Reconstruct(field.Params{
			ID:          row.ID,
			Name:        row.Name,
			Label:       row.Label,
			Type:        field.Type(row.Type),
			Required:    row.Required,
			Description: row.Description,
			Rules:       rules,
			Options:     opts,
			Order:       row.Order,
		})
	}
	return fields, nil
}

// mappingToHash converts a domain Mapping's metadata to a map for HSET.
func mappingToHash(m dommap.Mapping) map[string]string {
	return map[string]string{
		"id":                 m.ID(),
		"name":               m.Name(),
		"description":        m.Description(),
		"entity_type":        m.EntityType(),
		"external_reference": m.ExternalReference(),
		"created_at":         strconv.FormatInt(m.CreatedAt(), 10),
		"updated_at":         strconv.FormatInt(m.UpdatedAt(), 10),
	}
}

// mappingFromHash hydrates a domain Mapping from an HGETALL result and its fields.
func mappingFromHash(meta map[string]string, fields []field.Field) (dommap.Mapping, error) {
	createdAt, err := strconv.ParseInt(meta["created_at"], 10, 64)
	if err != nil {
		return dommap.Mapping{}, fmt.Errorf("invalid created_at: %w", err)
	}
	updatedAt := createdAt
	if s := meta["updated_at"]; s != "" {
		if parsed, err := strconv.ParseInt(s, 10, 64); err == nil {
			updatedAt = parsed
		}
	}
	return dommap.Reconstruct(dommap.Params{
		ID:                meta["id"],
		Name:              meta["name"],
		Description:       meta["description"],
		EntityType:        meta["entity_type"],
		ExternalReference: meta["external_reference"],
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
		Fields:            fields,
	}), nil
}
