package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/goliatone/go-formstate/pkg/form"
)

// Canonical rule kinds. They key per-rule message overrides and match
// the constraint vocabulary carried by OpenAPI-derived definitions.
const (
	RuleRequired  = "required"
	RuleMin       = "min"
	RuleMax       = "max"
	RuleMinLength = "minLength"
	RuleMaxLength = "maxLength"
	RulePattern   = "pattern"
	RuleEnum      = "enum"
)

// Rules captures the declarative constraints for one field. Numeric
// bounds apply to int/int64/float64 values, length bounds and pattern
// to strings, enum to any value by string comparison. Messages holds
// per-rule template overrides keyed by the Rule* constants.
type Rules struct {
	Required  bool
	Min       *float64
	Max       *float64
	MinLength *int
	MaxLength *int
	Pattern   *regexp.Regexp
	Enum      []any
	Messages  map[string]string
}

// Schema maps field names to their constraint rules.
type Schema map[string]Rules

// Validator compiles the schema into the engine's validator contract.
// The returned function is pure and total: it inspects the full value
// set on every call and reports the first failing rule per field.
func (s Schema) Validator(options ...Option) form.Validator {
	cfg := newConfig(options...)

	return func(values form.Values) form.Errors {
		errs := form.Errors{}
		for field, rules := range s {
			if msg := rules.check(field, values[field], cfg); msg != "" {
				errs[field] = msg
			}
		}
		return errs
	}
}

// Combine merges validators into one; the first validator to report an
// error for a field wins. Use it to layer cross-field checks on top of
// a schema-compiled validator.
func Combine(validators ...form.Validator) form.Validator {
	return func(values form.Values) form.Errors {
		merged := form.Errors{}
		for _, validate := range validators {
			if validate == nil {
				continue
			}
			for field, msg := range validate(values) {
				if msg == "" {
					continue
				}
				if _, taken := merged[field]; !taken {
					merged[field] = msg
				}
			}
		}
		return merged
	}
}

func (r Rules) check(field string, value any, cfg *config) string {
	if r.Required && isEmpty(value) {
		return cfg.message(RuleRequired, r, field, value)
	}
	if isEmpty(value) {
		return ""
	}

	switch typed := value.(type) {
	case string:
		if r.MinLength != nil && len(typed) < *r.MinLength {
			return cfg.message(RuleMinLength, r, field, value)
		}
		if r.MaxLength != nil && len(typed) > *r.MaxLength {
			return cfg.message(RuleMaxLength, r, field, value)
		}
		if r.Pattern != nil && !r.Pattern.MatchString(typed) {
			return cfg.message(RulePattern, r, field, value)
		}
	case int, int64, float64:
		v := toFloat(typed)
		if r.Min != nil && v < *r.Min {
			return cfg.message(RuleMin, r, field, value)
		}
		if r.Max != nil && v > *r.Max {
			return cfg.message(RuleMax, r, field, value)
		}
	}

	if len(r.Enum) > 0 && !enumContains(r.Enum, value) {
		return cfg.message(RuleEnum, r, field, value)
	}
	return ""
}

func isEmpty(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	case []any:
		return len(typed) == 0
	default:
		return false
	}
}

func toFloat(value any) float64 {
	switch n := value.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

func enumContains(enum []any, value any) bool {
	needle := fmt.Sprint(value)
	for _, candidate := range enum {
		if fmt.Sprint(candidate) == needle {
			return true
		}
	}
	return false
}
