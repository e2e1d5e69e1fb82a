package formdef

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/validate"
)

// Field types understood by definitions. Unknown types fall back to
// string handling.
const (
	FieldTypeString  = "string"
	FieldTypeInteger = "integer"
	FieldTypeNumber  = "number"
	FieldTypeBoolean = "boolean"
)

// Field describes one named slot in a form's value record: display
// metadata for whatever surface drives the session, a default value,
// and the declarative constraints compiled into the validator.
type Field struct {
	Name        string   `json:"name" yaml:"name"`
	Type        string   `json:"type,omitempty" yaml:"type,omitempty"`
	Label       string   `json:"label,omitempty" yaml:"label,omitempty"`
	Help        string   `json:"help,omitempty" yaml:"help,omitempty"`
	Placeholder string   `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Default     any      `json:"default,omitempty" yaml:"default,omitempty"`
	Required    bool     `json:"required,omitempty" yaml:"required,omitempty"`
	Secret      bool     `json:"secret,omitempty" yaml:"secret,omitempty"`
	Min         *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max         *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	MinLength   *int     `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength   *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern     string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Enum        []any    `json:"enum,omitempty" yaml:"enum,omitempty"`
}

// DisplayLabel returns the configured label, falling back to the field
// name.
func (f Field) DisplayLabel() string {
	if label := strings.TrimSpace(f.Label); label != "" {
		return label
	}
	return f.Name
}

// Definition is one loaded form: an identifier plus its ordered fields.
type Definition struct {
	ID     string  `json:"id" yaml:"id"`
	Title  string  `json:"title,omitempty" yaml:"title,omitempty"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// InitialValues seeds an engine's value record: every field gets an
// entry, defaults where declared and the type's zero value otherwise,
// so touch-all and reset cover the full field set.
func (d Definition) InitialValues() form.Values {
	values := make(form.Values, len(d.Fields))
	for _, field := range d.Fields {
		if field.Default != nil {
			values[field.Name] = field.Default
			continue
		}
		values[field.Name] = zeroValue(field.Type)
	}
	return values
}

// Schema compiles the definition's constraints into a validate.Schema.
// Pattern expressions are compiled here so a malformed definition fails
// loudly instead of silently skipping the rule.
func (d Definition) Schema() (validate.Schema, error) {
	schema := make(validate.Schema, len(d.Fields))
	for _, field := range d.Fields {
		rules := validate.Rules{
			Required:  field.Required,
			Min:       field.Min,
			Max:       field.Max,
			MinLength: field.MinLength,
			MaxLength: field.MaxLength,
			Enum:      append([]any(nil), field.Enum...),
		}
		if expr := strings.TrimSpace(field.Pattern); expr != "" {
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("formdef: form %s field %s: compile pattern: %w", d.ID, field.Name, err)
			}
			rules.Pattern = re
		}
		schema[field.Name] = rules
	}
	return schema, nil
}

// Field returns the named field declaration.
func (d Definition) Field(name string) (Field, bool) {
	for _, field := range d.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

func zeroValue(fieldType string) any {
	switch fieldType {
	case FieldTypeInteger:
		return 0
	case FieldTypeNumber:
		return 0.0
	case FieldTypeBoolean:
		return false
	default:
		return ""
	}
}
