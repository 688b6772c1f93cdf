package mapdex

import "time"

// FieldType is the declared type of a field. Types outside the built-in set
// are accepted and only checked for presence.
type FieldType string

// Built-in field types.
const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldEmail    FieldType = "email"
	FieldURL      FieldType = "url"
	FieldSelect   FieldType = "select"
	FieldTextarea FieldType = "textarea"
	FieldDate     FieldType = "date"
	FieldBoolean  FieldType = "boolean"
	FieldPhone    FieldType = "phone"
)

// RuleKind identifies a validation rule.
type RuleKind string

// Evaluated rule kinds. Other kinds are stored but never checked.
const (
	RuleMinLength RuleKind = "min_length"
	RuleMaxLength RuleKind = "max_length"
	RulePattern   RuleKind = "pattern"
	RuleMin       RuleKind = "min"
	RuleMax       RuleKind = "max"
)

// Rule is a validation rule attached to a field. Message replaces the
// default violation text when set.
type Rule struct {
	Kind    RuleKind
	Value   string
	Message string
}

// SelectOption is one allowed value of a select field.
type SelectOption struct {
	Value string
	Label string
}

// FieldInput describes a field when creating or replacing a mapping.
// An empty ID is generated; a nil Order falls back to the field's position.
type FieldInput struct {
	ID          string
	Name        string
	Label       string
	Type        FieldType
	Required    bool
	Description string
	Rules       []Rule
	Options     []SelectOption
	Order       *int
}

// MappingInput describes a mapping when creating or replacing it.
type MappingInput struct {
	Name              string
	Description       string
	EntityType        string
	ExternalReference string
	Fields            []FieldInput
}

// Field is a stored field definition.
type Field struct {
	ID          string
	Name        string
	Label       string
	Type        FieldType
	Required    bool
	Description string
	Rules       []Rule
	Options     []SelectOption
	Order       int
}

// Mapping is a stored mapping. Fields are sorted by Order.
type Mapping struct {
	ID                string
	Name              string
	Description       string
	EntityType        string
	ExternalReference string
	Fields            []Field
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Row is one record keyed by field name. Values are nil, string, bool or a
// number; numbers read back from the client are json.Number.
type Row map[string]any

// Dataset is a stored, ordered set of rows belonging to one mapping.
type Dataset struct {
	ID        string
	MappingID string
	Name      string
	Rows      []Row
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DatasetUpdate is a partial dataset update. Nil members are unchanged.
type DatasetUpdate struct {
	Name *string
	Rows *[]Row
}

// FieldError lists the violations of one field.
type FieldError struct {
	FieldID   string
	FieldName string
	Messages  []string
}

// RowResult is the validation outcome of one row.
type RowResult struct {
	Index  int
	Errors []FieldError
}

// Valid reports whether the row passed every check.
func (r RowResult) Valid() bool { return len(r.Errors) == 0 }

// Report summarizes the validation of a row sequence. Rows holds one entry
// per input row, in input order.
type Report struct {
	Total   int
	Valid   int
	Invalid int
	Rows    []RowResult
}

// InvalidRows returns only the rows that failed at least one check.
func (r Report) InvalidRows() []RowResult {
	out := make([]RowResult, 0, r.Invalid)
	for _, row := range r.Rows {
		if !row.Valid() {
			out = append(out, row)
		}
	}
	return out
}

// ExportFormat selects the export document format.
type ExportFormat string

// Export formats.
const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

// Export is a rendered dataset ready to be written to a file.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Suggestion is a generated field description.
type Suggestion struct {
	MappingID   string
	FieldID     string
	Description string
	Applied     bool
}
