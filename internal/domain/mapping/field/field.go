package field

import (
	"fmt"

	"github.com/kailas-cloud/mapdex/internal/domain/mapping/rule"
)

// Type is the declared type of a field. The set is open: unknown types are
// accepted and only checked for presence.
type Type string

// Field type constants.
const (
	Text     Type = "text"
	Number   Type = "number"
	Email    Type = "email"
	URL      Type = "url"
	Select   Type = "select"
	Textarea Type = "textarea"
	Date     Type = "date"
	Boolean  Type = "boolean"
	Phone    Type = "phone"
)

// IsKnown reports whether t is one of the built-in types.
func (t Type) IsKnown() bool {
	switch t {
	case Text, Number, Email, URL, Select, Textarea, Date, Boolean, Phone:
		return true
	}
	return false
}

// MaxNameLength bounds field names and ids.
const MaxNameLength = 128

// Option is one allowed value of a select field.
type Option struct {
	Value string
	Label string
}

// Params carries the attributes of a field definition.
type Params struct {
	ID          string
	Name        string
	Label       string
	Type        Type
	Required    bool
	Description string
	Rules       []rule.Rule
	Options     []Option
	Order       int
}

// Field is an immutable field definition: one column of a mapping.
type Field struct {
	id          string
	name        string
	label       string
	fieldType   Type
	required    bool
	description string
	rules       []rule.Rule
	options     []Option
	order       int
}

// New validates and creates a Field.
// ID and Name are required (max 128 chars). Label defaults to Name, Type to text.
func New(p Params) (Field, error) {
	if p.ID == "" {
		return Field{}, fmt.Errorf("field id is required")
	}
	if len(p.ID) > MaxNameLength {
		return Field{}, fmt.Errorf("field id %q too long (max %d)", p.ID, MaxNameLength)
	}
	if p.Name == "" {
		return Field{}, fmt.Errorf("field name is required")
	}
	if len(p.Name) > MaxNameLength {
		return Field{}, fmt.Errorf("field name %q too long (max %d)", p.Name, MaxNameLength)
	}
	return Reconstruct(p), nil
}

// Reconstruct creates a Field without validation (storage hydration).
// Defaults are still applied.
func Reconstruct(p Params) Field {
	if p.Label == "" {
		p.Label = p.Name
	}
	if p.Type == "" {
		p.Type = Text
	}
	return Field{
		id:          p.ID,
		name:        p.Name,
		label:       p.Label,
		fieldType:   p.Type,
		required:    p.Required,
		description: p.Description,
		rules:       append([]rule.Rule{}, p.Rules...),
		options:     append([]Option{}, p.Options...),
		order:       p.Order,
	}
}

func (f Field) ID() string          { return f.id }
func (f Field) Name() string        { return f.name }
func (f Field) Label() string       { return f.label }
func (f Field) FieldType() Type     { return f.fieldType }
func (f Field) Required() bool      { return f.required }
func (f Field) Description() string { return f.description }
func (f Field) Order() int          { return f.order }

// Rules returns a copy of the rule descriptors in declared order.
func (f Field) Rules() []rule.Rule { return append([]rule.Rule{}, f.rules...) }

// Options returns a copy of the select options in declared order.
func (f Field) Options() []Option { return append([]Option{}, f.options...) }

// Params returns the field attributes, suitable for building a modified copy.
func (f Field) Params() Params {
	return Params{
		ID:          f.id,
		Name:        f.name,
		Label:       f.label,
		Type:        f.fieldType,
		Required:    f.required,
		Description: f.description,
		Rules:       f.Rules(),
		Options:     f.Options(),
		Order:       f.order,
	}
}

// WithDescription returns a copy of the field with a new description.
func (f Field) WithDescription(d string) Field {
	f.description = d
	f.rules = f.Rules()
	f.options = f.Options()
	return f
}
