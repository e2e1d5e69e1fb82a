// Package openapi derives form definitions from OpenAPI 3 documents,
// so create/edit forms for an API operation share the constraint set
// the backend already publishes.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formstate/pkg/formdef"
)

// Options configures document parsing.
type Options struct {
	// ResolveReferences validates the document and resolves external
	// refs before extraction.
	ResolveReferences bool
}

// Definition extracts the request-body form for the named operation.
// The operation's JSON (or first available) request media type supplies
// the field set; top-level properties become fields, nested structures
// stay opaque to the flat value record a form engine manages.
func Definition(ctx context.Context, document []byte, operationID string, opts Options) (formdef.Definition, error) {
	if err := ctx.Err(); err != nil {
		return formdef.Definition{}, err
	}
	if len(document) == 0 {
		return formdef.Definition{}, errors.New("openapi: document payload is empty")
	}
	opID := strings.TrimSpace(operationID)
	if opID == "" {
		return formdef.Definition{}, errors.New("openapi: operation id is required")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: opts.ResolveReferences,
	}
	spec, err := loader.LoadFromData(document)
	if err != nil {
		return formdef.Definition{}, fmt.Errorf("openapi: load document: %w", err)
	}
	if opts.ResolveReferences {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return formdef.Definition{}, fmt.Errorf("openapi: validate: %w", err)
		}
	}

	operation := findOperation(spec, opID)
	if operation == nil {
		return formdef.Definition{}, fmt.Errorf("openapi: operation %q not found", opID)
	}

	schema := requestSchema(operation.RequestBody)
	if schema == nil {
		return formdef.Definition{}, fmt.Errorf("openapi: operation %q has no request body schema", opID)
	}

	def := formdef.Definition{
		ID:     opID,
		Title:  strings.TrimSpace(operation.Summary),
		Fields: collectFields(schema),
	}
	if len(def.Fields) == 0 {
		return formdef.Definition{}, fmt.Errorf("openapi: operation %q has no object properties", opID)
	}
	return def, nil
}

func findOperation(spec *openapi3.T, opID string) *openapi3.Operation {
	if spec == nil || spec.Paths == nil {
		return nil
	}
	for _, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for _, operation := range item.Operations() {
			if operation != nil && operation.OperationID == opID {
				return operation
			}
		}
	}
	return nil
}

// requestSchema prefers JSON bodies, then form encodings, then
// whatever media type the operation declares first.
func requestSchema(requestBody *openapi3.RequestBodyRef) *openapi3.Schema {
	if requestBody == nil || requestBody.Value == nil {
		return nil
	}
	content := requestBody.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok {
			return schemaValue(mt.Schema)
		}
	}
	for _, mt := range content {
		return schemaValue(mt.Schema)
	}
	return nil
}

func schemaValue(ref *openapi3.SchemaRef) *openapi3.Schema {
	if ref == nil {
		return nil
	}
	return ref.Value
}

func collectFields(schema *openapi3.Schema) []formdef.Field {
	if len(schema.Properties) == 0 {
		return nil
	}

	required := make(map[string]struct{}, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = struct{}{}
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]formdef.Field, 0, len(names))
	for _, name := range names {
		property := schemaValue(schema.Properties[name])
		if property == nil {
			continue
		}
		field := convertProperty(name, property)
		if _, ok := required[name]; ok {
			field.Required = true
		}
		fields = append(fields, field)
	}
	return fields
}

func convertProperty(name string, src *openapi3.Schema) formdef.Field {
	field := formdef.Field{
		Name:    name,
		Type:    fieldType(src.Type),
		Help:    strings.TrimSpace(src.Description),
		Default: src.Default,
		Secret:  src.Format == "password",
	}

	if len(src.Enum) > 0 {
		field.Enum = append([]any(nil), src.Enum...)
	}
	if src.Min != nil {
		value := *src.Min
		field.Min = &value
	}
	if src.Max != nil {
		value := *src.Max
		field.Max = &value
	}
	if src.MinLength != 0 {
		value := int(src.MinLength)
		field.MinLength = &value
	}
	if src.MaxLength != nil {
		value := int(*src.MaxLength)
		field.MaxLength = &value
	}
	if src.Pattern != "" {
		field.Pattern = src.Pattern
	}
	return field
}

func fieldType(types *openapi3.Types) string {
	if types == nil {
		return formdef.FieldTypeString
	}
	for _, value := range types.Slice() {
		switch value {
		case "integer":
			return formdef.FieldTypeInteger
		case "number":
			return formdef.FieldTypeNumber
		case "boolean":
			return formdef.FieldTypeBoolean
		case "string":
			return formdef.FieldTypeString
		}
	}
	return formdef.FieldTypeString
}
