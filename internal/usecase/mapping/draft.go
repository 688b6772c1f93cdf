package mapping

import (
	"github.com/kailas-cloud/mapdex/internal/domain/mapping/field"
	"github.com/kailas-cloud/mapdex/internal/domain/mapping/rule"
)

// FieldDraft is an authored field definition. ID and Order are optional:
// a missing ID is generated, a missing Order falls back to the draft position.
type FieldDraft struct {
	ID          string
	Name        string
	Label       string
	Type        field.Type
	Required    bool
	Description string
	Rules       []rule.Rule
	Options     []field.Option
	Order       *int
}

// Draft is an authored mapping.
type Draft struct {
	Name              string
	Description       string
	EntityType        string
	ExternalReference string
	Fields            []FieldDraft
}
