package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	v10 "github.com/go-playground/validator/v10"

	"github.com/goliatone/go-formstate/pkg/form"
)

// Struct builds a form.Validator from go-playground struct tags. The
// prototype describes the record shape: on every validation pass the
// current values are decoded into a fresh instance and checked with
// `validate` tags, and failures are keyed by the json tag name so they
// line up with the engine's field names.
//
// The returned validator is total: value shapes that cannot decode into
// the prototype report no field errors (supplying decodable values is
// the caller's construction obligation, as with any validator).
func Struct(prototype any, options ...Option) (form.Validator, error) {
	if prototype == nil {
		return nil, errors.New("validate: struct prototype is required")
	}

	target := reflect.TypeOf(prototype)
	for target.Kind() == reflect.Pointer {
		target = target.Elem()
	}
	if target.Kind() != reflect.Struct {
		return nil, fmt.Errorf("validate: prototype must be a struct, got %s", target.Kind())
	}

	cfg := newConfig(options...)
	checker := newStructChecker()

	return func(values form.Values) form.Errors {
		errs := form.Errors{}

		instance := reflect.New(target).Interface()
		payload, err := json.Marshal(map[string]any(values))
		if err != nil {
			return errs
		}
		if err := json.Unmarshal(payload, instance); err != nil {
			return errs
		}

		err = checker.Struct(instance)
		if err == nil {
			return errs
		}

		var fieldErrs v10.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return errs
		}
		for _, fe := range fieldErrs {
			field := fe.Field()
			if field == "" {
				continue
			}
			if _, taken := errs[field]; taken {
				continue
			}
			errs[field] = tagMessage(fe, cfg)
		}
		return errs
	}, nil
}

// newStructChecker configures the shared validator instance: required
// semantics on nested structs and json tag names for error keys.
func newStructChecker() *v10.Validate {
	checker := v10.New(v10.WithRequiredStructEnabled())
	checker.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return checker
}

// tagMessage maps a struct-tag failure onto the schema message set so
// struct-built and rule-built validators speak the same message
// vocabulary.
func tagMessage(fe v10.FieldError, cfg *config) string {
	switch fe.Tag() {
	case "required":
		return cfg.message(RuleRequired, Rules{}, fe.Field(), fe.Value())
	case "min", "gte":
		return boundMessage(RuleMin, fe, cfg)
	case "max", "lte":
		return boundMessage(RuleMax, fe, cfg)
	case "oneof":
		enum := make([]any, 0)
		for _, option := range strings.Fields(fe.Param()) {
			enum = append(enum, option)
		}
		return cfg.message(RuleEnum, Rules{Enum: enum}, fe.Field(), fe.Value())
	case "email":
		return "Must be a valid email address"
	default:
		return fmt.Sprintf("Failed %s validation", fe.Tag())
	}
}

// boundMessage renders min/max failures. For string kinds the bound is
// a length constraint; for numbers it is a value constraint.
func boundMessage(kind string, fe v10.FieldError, cfg *config) string {
	var bound float64
	fmt.Sscanf(fe.Param(), "%g", &bound)

	rules := Rules{}
	if fe.Kind() == reflect.String {
		length := int(bound)
		if kind == RuleMin {
			kind = RuleMinLength
			rules.MinLength = &length
		} else {
			kind = RuleMaxLength
			rules.MaxLength = &length
		}
	} else {
		if kind == RuleMin {
			rules.Min = &bound
		} else {
			rules.Max = &bound
		}
	}
	return cfg.message(kind, rules, fe.Field(), fe.Value())
}
