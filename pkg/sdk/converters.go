package mapdex

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/mapdex/internal/domain"
	domds "github.com/kailas-cloud/mapdex/internal/domain/dataset"
	"github.com/kailas-cloud/mapdex/internal/domain/export"
	dommap "github.com/kailas-cloud/mapdex/internal/domain/mapping"
	"github.com/kailas-cloud/mapdex/internal/domain/mapping/field"
	"github.com/kailas-cloud/mapdex/internal/domain/mapping/rule"
	domval "github.com/kailas-cloud/mapdex/internal/domain/validation"
	"github.com/kailas-cloud/mapdex/internal/domain/value"
	mappinguc "github.com/kailas-cloud/mapdex/internal/usecase/mapping"
)

func toDraft(in MappingInput) (mappinguc.Draft, error) {
	fields := make([]mappinguc.FieldDraft, len(in.Fields))
	for i, f := range in.Fields {
		rules := make([]rule.Rule, 0, len(f.Rules))
		for _, r := range f.Rules {
			dr, err := rule.New(rule.Kind(r.Kind), r.Value, r.Message)
			if err != nil {
				return mappinguc.Draft{}, fmt.Errorf("%w: field %q: %w", domain.ErrInvalidSchema, f.Name, err)
			}
			rules = append(rules, dr)
		}
		opts := make([]field.Option, len(f.Options))
		for j, o := range f.Options {
			opts[j] = field.Option{Value: o.Value, Label: o.Label}
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
		Name:              in.Name,
		Description:       in.Description,
		EntityType:        in.EntityType,
		ExternalReference: in.ExternalReference,
		Fields:            fields,
	}, nil
}

func fromMapping(m dommap.Mapping) Mapping {
	fs := m.Fields()
	fields := make([]Field, len(fs))
	for i, f := range fs {
		rules := make([]Rule, len(f.Rules()))
		for j, r := range f.Rules() {
			rules[j] = Rule{Kind: RuleKind(r.Kind()), Value: r.Value(), Message: r.Message()}
		}
		opts := make([]SelectOption, len(f.Options()))
		for j, o := range f.Options() {
			opts[j] = SelectOption{Value: o.Value, Label: o.Label}
		}
		fields[i] = Field{
			ID:          f.ID(),
			Name:        f.Name(),
			Label:       f.Label(),
			Type:        FieldType(f.FieldType()),
			Required:    f.Required(),
			Description: f.Description(),
			Rules:       rules,
			Options:     opts,
			Order:       f.Order(),
		}
	}
	return Mapping{
		ID:                m.ID(),
		Name:              m.Name(),
		Description:       m.Description(),
		EntityType:        m.EntityType(),
		ExternalReference: m.ExternalReference(),
		Fields:            fields,
		CreatedAt:         time.UnixMilli(m.CreatedAt()).UTC(),
		UpdatedAt:         time.UnixMilli(m.UpdatedAt()).UTC(),
	}
}

func toRecords(meta map[string]any, fields []map[string]any) (dommap.Record, []dommap.Record) {
	recs := make([]dommap.Record, len(fields))
	for i, f := range fields {
		recs[i] = f
	}
	return meta, recs
}

// toRows converts public rows; nested values are rejected as invalid input.
func toRows(rows []Row) ([]value.Row, error) {
	out := make([]value.Row, len(rows))
	for i, r := range rows {
		vr, err := toRow(r)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = vr
	}
	return out, nil
}

func toRow(r Row) (value.Row, error) {
	vr, err := value.RowFromMap(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidSchema, err)
	}
	return vr, nil
}

func fromRows(rows []value.Row) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r.ToMap()
	}
	return out
}

func fromDataset(d domds.Dataset, withRows bool) Dataset {
	ds := Dataset{
		ID:        d.ID(),
		MappingID: d.MappingID(),
		Name:      d.Name(),
		CreatedAt: time.UnixMilli(d.CreatedAt()).UTC(),
		UpdatedAt: time.UnixMilli(d.UpdatedAt()).UTC(),
	}
	if withRows {
		ds.Rows = fromRows(d.Rows())
	}
	return ds
}

func fromFieldErrors(errs []domval.Error) []FieldError {
	out := make([]FieldError, len(errs))
	for i, e := range errs {
		out[i] = FieldError{FieldID: e.FieldID, FieldName: e.FieldName, Messages: e.Errors}
	}
	return out
}

func fromReport(rep domval.Report) Report {
	rows := make([]RowResult, len(rep.Rows))
	for i, r := range rep.Rows {
		rows[i] = RowResult{Index: r.Index, Errors: fromFieldErrors(r.Errors)}
	}
	return Report{Total: rep.Total, Valid: rep.Valid, Invalid: rep.Invalid, Rows: rows}
}

func fromArtifact(a export.Artifact) Export {
	return Export{Filename: a.Filename, ContentType: a.ContentType, Data: a.Data}
}
