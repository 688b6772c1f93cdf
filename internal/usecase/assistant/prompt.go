package assistant

import (
	"fmt"
	"strings"

	dommap "github.com/kailas-cloud/mapdex/internal/domain/mapping"
	"github.com/kailas-cloud/mapdex/internal/domain/mapping/field"
)

const systemPrompt = "You write short documentation for data import templates. " +
	"Answer with one or two plain sentences describing what the field holds and how to fill it in. " +
	"No markdown, no quotes, no preamble."

func buildPrompt(m dommap.Mapping, f field.Field) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Template: %s (entity type: %s)\n", m.Name(), m.EntityType())
	if m.Description() != "" {
		fmt.Fprintf(&b, "Template description: %s\n", m.Description())
	}

	others := make([]string, 0, len(m.Fields()))
	for _, o := range m.Fields() {
		if o.ID() != f.ID() {
			others = append(others, o.Label())
		}
	}
	if len(others) > 0 {
		fmt.Fprintf(&b, "Other columns: %s\n", strings.Join(others, ", "))
	}

	fmt.Fprintf(&b, "\nField name: %s\nLabel: %s\nType: %s\n", f.Name(), f.Label(), f.FieldType())
	if f.Required() {
		b.WriteString("Required: yes\n")
	}
	if opts := f.Options(); len(opts) > 0 {
		labels := make([]string, len(opts))
		for i, o := range opts {
			labels[i] = o.Label
			if labels[i] == "" {
				labels[i] = o.Value
			}
		}
		fmt.Fprintf(&b, "Allowed values: %s\n", strings.Join(labels, ", "))
	}
	for _, r := range f.Rules() {
		fmt.Fprintf(&b, "Rule: %s %s\n", r.Kind(), r.Value())
	}
	if f.Description() != "" {
		fmt.Fprintf(&b, "Current description: %s\n", f.Description())
	}
	b.WriteString("\nDescribe this field.")
	return b.String()
}
