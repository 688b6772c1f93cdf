package chi

import (
	"fmt"
	"time"

	domds "github.com/kailas-cloud/mapdex/internal/domain/dataset"
	dommap "github.com/kailas-cloud/mapdex/internal/domain/mapping"
	"github.com/kailas-cloud/mapdex/internal/domain/mapping/field"
	"github.com/kailas-cloud/mapdex/internal/domain/mapping/rule"
	domval "github.com/kailas-cloud/mapdex/internal/domain/validation"
	"github.com/kailas-cloud/mapdex/internal/domain/value"
	mappinguc "github.com/kailas-cloud/mapdex/internal/usecase/mapping"
)

// RuleDTO is a validation rule descriptor.
type RuleDTO struct {
	Type    string `json:"type"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message,omitempty"`
}

// OptionDTO is one allowed value of a select field.
type OptionDTO struct {
	Value string `json:"value"`
	Label string `json:"label,omitempty"`
}

// FieldRequest is an authored field definition.
type FieldRequest struct {
	ID              string      `json:"id,omitempty"`
	Name            string      `json:"name"`
	Label           string      `json:"label,omitempty"`
	Type            string      `json:"type,omitempty"`
	Required        bool        `json:"required,omitempty"`
	Description     string      `json:"description,omitempty"`
	ValidationRules []RuleDTO   `json:"validation_rules,omitempty"`
	SelectOptions   []OptionDTO `json:"select_options,omitempty"`
	Order           *int        `json:"order,omitempty"`
}

// MappingRequest is the body of POST /mappings and PUT /mappings/{mapping}.
type MappingRequest struct {
	Name              string         `json:"name"`
	Description       string         `json:"description,omitempty"`
	EntityType        string         `json:"entity_type,omitempty"`
	ExternalReference string         `json:"external_reference,omitempty"`
	Fields            []FieldRequest `json:"fields"`
}

// ImportRequest carries raw source records for POST /mappings/import.
type ImportRequest struct {
	Mapping map[string]any   `json:"mapping"`
	Fields  []map[string]any `json:"fields"`
}

// FieldResponse is a stored field definition.
type FieldResponse struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Label           string      `json:"label"`
	Type            string      `json:"type"`
	Required        bool        `json:"required"`
	Description     string      `json:"description"`
	ValidationRules []RuleDTO   `json:"validation_rules"`
	SelectOptions   []OptionDTO `json:"select_options"`
	Order           int         `json:"order"`
}

// MappingResponse is a stored mapping with its fields in order.
type MappingResponse struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	EntityType        string          `json:"entity_type"`
	ExternalReference string          `json:"external_reference,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Fields            []FieldResponse `json:"fields"`
}

// MappingListResponse is the body of GET /mappings.
type MappingListResponse struct {
	Items []MappingResponse `json:"items"`
	Total int               `json:"total"`
}

// ValidateRequest carries either a single row or a batch.
type ValidateRequest struct {
	Row  value.Row   `json:"row,omitempty"`
	Rows []value.Row `json:"rows,omitempty"`
}

// FieldErrorDTO lists the violations of one field.
type FieldErrorDTO struct {
	FieldID   string   `json:"field_id"`
	FieldName string   `json:"field_name"`
	Errors    []string `json:"errors"`
}

// RowValidationResponse is the result of validating a single row.
type RowValidationResponse struct {
	Valid  bool            `json:"valid"`
	Errors []FieldErrorDTO `json:"errors"`
}

// RowResultDTO is the result for one row of a batch.
type RowResultDTO struct {
	Index  int             `json:"index"`
	Errors []FieldErrorDTO `json:"errors"`
}

// ReportResponse summarizes a batch validation. Only invalid rows are listed.
type ReportResponse struct {
	Total       int            `json:"total"`
	Valid       int            `json:"valid"`
	Invalid     int            `json:"invalid"`
	InvalidRows []RowResultDTO `json:"invalid_rows"`
}

// DatasetRequest is the body of POST /mappings/{mapping}/datasets.
type DatasetRequest struct {
	Name string      `json:"name"`
	Rows []value.Row `json:"rows"`
}

// DatasetPatchRequest is the body of PATCH /datasets/{dataset}.
type DatasetPatchRequest struct {
	Name *string      `json:"name,omitempty"`
	Rows *[]value.Row `json:"rows,omitempty"`
}

// DatasetResponse is a stored dataset. Rows are omitted in listings.
type DatasetResponse struct {
	ID        string       `json:"id"`
	MappingID string       `json:"mapping_id"`
	Name      string       `json:"name"`
	RowCount  int          `json:"row_count"`
	Rows      *[]value.Row `json:"rows,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// DatasetListResponse is the body of GET /mappings/{mapping}/datasets.
type DatasetListResponse struct {
	Items []DatasetResponse `json:"items"`
	Total int               `json:"total"`
}

// SuggestionResponse is a generated field description.
type SuggestionResponse struct {
	MappingID   string `json:"mapping_id"`
	FieldID     string `json:"field_id"`
	Description string `json:"description"`
	Applied     bool   `json:"applied"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Version string            `json:"version"`
}

func draftFromRequest(req MappingRequest) (mappinguc.Draft, error) {
	fields := make([]mappinguc.FieldDraft, len(req.Fields))
	for i, f := range req.Fields {
		rules := make([]rule.Rule, 0, len(f.ValidationRules))
		for _, rd := range f.ValidationRules {
			r, err := rule.New(rule.Kind(rd.Type), rd.Value, rd.Message)
			if err != nil {
				return mappinguc.Draft{}, fmt.Errorf("field %q: %w", f.Name, err)
			}
			rules = append(rules, r)
		}
		opts := make([]field.Option, len(f.SelectOptions))
		for j, o := range f.SelectOptions {
			opts[j] = field.Option{Value: o.Value, Label: o.Label}
			if opts[j].Label == "" {
				opts[j].Label = o.Value
			}
		}
		fields[i] = mappinguc.FieldDraft{
			ID:          f.ID,
			Name:        f.Name,
			Label:       f.Label,
			Type:        field.Type(f.Type),
			Required:    f.Required,
			Description: f.Description,
			Rules:       rules,
			Options:     opts,
			Order:       f.Order,
		}
	}
	return mappinguc.Draft{
		Name:              req.Name,
		Description:       req.Description,
		EntityType:        req.EntityType,
		ExternalReference: req.ExternalReference,
		Fields:            fields,
	}, nil
}

func importRecords(req ImportRequest) (dommap.Record, []dommap.Record) {
	fields := make([]dommap.Record, len(req.Fields))
	for i, f := range req.Fields {
		fields[i] = f
	}
	return req.Mapping, fields
}

func mappingToResponse(m dommap.Mapping) MappingResponse {
	fs := m.Fields()
	fields := make([]FieldResponse, len(fs))
	for i, f := range fs {
		rules := make([]RuleDTO, 0, len(f.Rules()))
		for _, r := range f.Rules() {
			rules = append(rules, RuleDTO{Type: string(r.Kind()), Value: r.Value(), Message: r.Message()})
		}
		opts := make([]OptionDTO, 0, len(f.Options()))
		for _, o := range f.Options() {
			opts = append(opts, OptionDTO{Value: o.Value, Label: o.Label})
		}
		fields[i] = FieldResponse{
			ID:              f.ID(),
			Name:            f.Name(),
			Label:           f.Label(),
			Type:            string(f.FieldType()),
			Required:        f.Required(),
			Description:     f.Description(),
			ValidationRules: rules,
			SelectOptions:   opts,
			Order:           f.Order(),
		}
	}
	return MappingResponse{
		ID:                m.ID(),
		Name:              m.Name(),
		Description:       m.Description(),
		EntityType:        m.EntityType(),
		ExternalReference: m.ExternalReference(),
		CreatedAt:         time.UnixMilli(m.CreatedAt()).UTC(),
		UpdatedAt:         time.UnixMilli(m.UpdatedAt()).UTC(),
		Fields:            fields,
	}
}

func datasetToResponse(d domds.Dataset, withRows bool) DatasetResponse {
	resp := DatasetResponse{
		ID:        d.ID(),
		MappingID: d.MappingID(),
		Name:      d.Name(),
		RowCount:  d.Len(),
		CreatedAt: time.UnixMilli(d.CreatedAt()).UTC(),
		UpdatedAt: time.UnixMilli(d.UpdatedAt()).UTC(),
	}
	if withRows {
		rows := d.Rows()
		if rows == nil {
			rows = []value.Row{}
		}
		resp.Rows = &rows
	}
	return resp
}

func fieldErrorsToDTO(errs []domval.Error) []FieldErrorDTO {
	out := make([]FieldErrorDTO, len(errs))
	for i, e := range errs {
		out[i] = FieldErrorDTO{FieldID: e.FieldID, FieldName: e.FieldName, Errors: e.Errors}
	}
	return out
}

func reportToResponse(rep domval.Report) ReportResponse {
	inv := rep.InvalidRows()
	rows := make([]RowResultDTO, len(inv))
	for i, r := range inv {
		rows[i] = RowResultDTO{Index: r.Index, Errors: fieldErrorsToDTO(r.Errors)}
	}
	return ReportResponse{
		Total:       rep.Total,
		Valid:       rep.Valid,
		Invalid:     rep.Invalid,
		InvalidRows: rows,
	}
}
