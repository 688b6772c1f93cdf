package mapping

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/kailas-cloud/mapdex/internal/domain/mapping/field"
)

// DefaultEntityType classifies mappings that do not declare an entity type.
const DefaultEntityType = "custom"

// MaxFields bounds the number of fields per mapping.
const MaxFields = 256

// Params carries the attributes of a mapping.
type Params struct {
	ID                string
	Name              string
	Description       string
	EntityType        string
	ExternalReference string
	CreatedAt         int64
	UpdatedAt         int64
	Fields            []field.Field
}

// Mapping is the mapping aggregate (immutable value object): a named schema
// whose fields are always sorted by order.
type Mapping struct {
	id                string
	name              string
	description       string
	entityType        string
	externalReference string
	createdAt         int64
	updatedAt         int64
	fields            []field.Field
}

func validateFields(fields []field.Field) error {
	if len(fields) > MaxFields {
		return fmt.Errorf("too many fields (max %d)", MaxFields)
	}
	ids := make(map[string]bool, len(fields))
	names := make(map[string]bool, len(fields))
	for _, f := range fields {
		if ids[f.ID()] {
			return fmt.Errorf("duplicate field id: %s", f.ID())
		}
		if names[f.Name()] {
			return fmt.Errorf("duplicate field name: %s", f.Name())
		}
		ids[f.ID()] = true
		names[f.Name()] = true
	}
	return nil
}

// New validates and creates a Mapping.
// ID and Name are required; field ids and names must be unique. Fields are
// sorted by order with the input position as tie-break.
func New(p Params) (Mapping, error) {
	if p.ID == "" {
		return Mapping{}, fmt.Errorf("mapping id is required")
	}
	if p.Name == "" {
		return Mapping{}, fmt.Errorf("mapping name is required")
	}
	if err := validateFields(p.Fields); err != nil {
		return Mapping{}, err
	}
	return Reconstruct(p), nil
}

// Reconstruct creates a Mapping without validation (storage hydration).
// Fields are still sorted, so every Mapping hands out a resolved order.
func Reconstruct(p Params) Mapping {
	if p.EntityType == "" {
		p.EntityType = DefaultEntityType
	}
	if p.UpdatedAt < p.CreatedAt {
		p.UpdatedAt = p.CreatedAt
	}
	return Mapping{
		id:                p.ID,
		name:              p.Name,
		description:       p.Description,
		entityType:        p.EntityType,
		externalReference: p.ExternalReference,
		createdAt:         p.CreatedAt,
		updatedAt:         p.UpdatedAt,
		fields:            SortFields(p.Fields),
	}
}

// SortFields returns a new slice ordered by (order, input position).
// The input is not modified. Sorting a sorted slice is a no-op.
func SortFields(fields []field.Field) []field.Field {
	type ranked struct {
		f   field.Field
		pos int
	}
	rs := make([]ranked, len(fields))
	for i, f := range fields {
		rs[i] = ranked{f: f, pos: i}
	}
	slices.SortFunc(rs, func(a, b ranked) int {
		if c := cmp.Compare(a.f.Order(), b.f.Order()); c != 0 {
			return c
		}
		return cmp.Compare(a.pos, b.pos)
	})

	out := make([]field.Field, len(rs))
	for i, r := range rs {
		out[i] = r.f
	}
	return out
}

// ID returns the mapping identifier.
func (m Mapping) ID() string { return m.id }

// Name returns the mapping name.
func (m Mapping) Name() string { return m.name }

// Description returns the free-text description.
func (m Mapping) Description() string { return m.description }

// EntityType returns the classification tag.
func (m Mapping) EntityType() string { return m.entityType }

// ExternalReference returns the opaque link to an externally owned schema.
func (m Mapping) ExternalReference() string { return m.externalReference }

// CreatedAt returns the creation timestamp (unix millis).
func (m Mapping) CreatedAt() int64 { return m.createdAt }

// UpdatedAt returns the last modification timestamp (unix millis).
func (m Mapping) UpdatedAt() int64 { return m.updatedAt }

// Fields returns the sorted field definitions. The slice is a copy.
func (m Mapping) Fields() []field.Field { return append([]field.Field{}, m.fields...) }

// FieldByID looks up a field by id.
func (m Mapping) FieldByID(id string) (field.Field, bool) {
	for _, f := range m.fields {
		if f.ID() == id {
			return f, true
		}
	}
	return field.Field{}, false
}

// FieldByName looks up a field by name.
func (m Mapping) FieldByName(name string) (field.Field, bool) {
	for _, f := range m.fields {
		if f.Name() == name {
			return f, true
		}
	}
	return field.Field{}, false
}

// Params returns the mapping attributes, suitable for building a modified copy.
func (m Mapping) Params() Params {
	return Params{
		ID:                m.id,
		Name:              m.name,
		Description:       m.description,
		EntityType:        m.entityType,
		ExternalReference: m.externalReference,
		CreatedAt:         m.createdAt,
		UpdatedAt:         m.updatedAt,
		Fields:            m.Fields(),
	}
}
