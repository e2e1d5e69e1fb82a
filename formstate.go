// Package formstate ties the module's pieces together: a form engine
// (pkg/form) seeded and validated from declarative definitions
// (pkg/formdef, pkg/openapi). Import the subpackages directly for
// finer-grained control.
package formstate

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/formdef"
	"github.com/goliatone/go-formstate/pkg/openapi"
)

// Re-exports so basic integrations only import this package.
type (
	Engine   = form.Engine
	Values   = form.Values
	Errors   = form.Errors
	Snapshot = form.Snapshot
	Binding  = form.Binding
	Option   = form.Option
)

// New constructs a bare engine; see form.New.
func New(initial Values, options ...Option) *Engine {
	return form.New(initial, options...)
}

// FromDefinition seeds an engine from a loaded form definition: the
// definition's defaults become the initial values and its constraint
// schema becomes the validator. Additional options apply afterwards, so
// callers can attach submit handlers or override the validator.
func FromDefinition(def formdef.Definition, options ...Option) (*Engine, error) {
	schema, err := def.Schema()
	if err != nil {
		return nil, fmt.Errorf("formstate: compile definition %s: %w", def.ID, err)
	}

	engineOptions := append(
		[]Option{form.WithValidator(schema.Validator())},
		options...,
	)
	return form.New(def.InitialValues(), engineOptions...), nil
}

// FromOpenAPI derives a definition from an OpenAPI operation's request
// body and seeds an engine from it. The definition is returned as well
// so callers can drive prompts or rendering from the field metadata.
func FromOpenAPI(ctx context.Context, document []byte, operationID string, parse openapi.Options, options ...Option) (*Engine, formdef.Definition, error) {
	def, err := openapi.Definition(ctx, document, operationID, parse)
	if err != nil {
		return nil, formdef.Definition{}, err
	}
	engine, err := FromDefinition(def, options...)
	if err != nil {
		return nil, formdef.Definition{}, err
	}
	return engine, def, nil
}
