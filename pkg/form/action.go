package form

import "strings"

// action is the closed sum of state transitions the engine understands.
// Each operation on Engine dispatches exactly one variant; reduce is
// the single transition function over the sum.
type action interface {
	isAction()
}

type setFieldValue struct {
	field string
	value any
}

type setFieldError struct {
	field   string
	message string // empty clears the entry
}

type setFieldTouched struct {
	field   string
	touched bool
}

type mergeValues struct {
	values Values
}

type replaceErrors struct {
	errors Errors
	touch  bool // force-touch the named fields so messages are visible
}

type resetForm struct {
	values Values // nil keeps the prior values
}

type touchAll struct{}

type validateAll struct{}

type setSubmitting struct {
	submitting bool
}

func (setFieldValue) isAction()   {}
func (setFieldError) isAction()   {}
func (setFieldTouched) isAction() {}
func (mergeValues) isAction()     {}
func (replaceErrors) isAction()   {}
func (resetForm) isAction()       {}
func (touchAll) isAction()        {}
func (validateAll) isAction()     {}
func (setSubmitting) isAction()   {}

// reduce applies one action to the current snapshot and returns the
// next one. It is a total, pure function: no variant may leave the
// state partially updated, and the input snapshot is never mutated.
//
// Validation policy: a single-field edit re-runs the validator against
// the new full value set but takes over only the edited field's entry,
// so per-keystroke validation stays cheap and never spuriously clears
// errors on unrelated fields. Bulk writes (mergeValues, validateAll)
// replace the whole error set because a validator may express
// cross-field constraints.
func reduce(state Snapshot, act action, validate Validator) Snapshot {
	switch a := act.(type) {
	case setFieldValue:
		next := state.clone()
		next.Values[a.field] = a.value
		next.IsDirty = true
		if validate != nil {
			fresh := validate(next.Values)
			if msg := strings.TrimSpace(fresh[a.field]); msg != "" {
				next.Errors[a.field] = msg
			} else {
				delete(next.Errors, a.field)
			}
		}
		next.IsValid = computeValid(next.Errors)
		return next

	case setFieldError:
		next := state.clone()
		if a.message == "" {
			delete(next.Errors, a.field)
		} else {
			next.Errors[a.field] = a.message
		}
		next.IsValid = computeValid(next.Errors)
		return next

	case setFieldTouched:
		next := state.clone()
		if a.touched {
			next.Touched[a.field] = true
		} else {
			delete(next.Touched, a.field)
		}
		return next

	case mergeValues:
		next := state.clone()
		for field, value := range a.values {
			next.Values[field] = deepCopy(value)
		}
		next.IsDirty = true
		if validate != nil {
			next.Errors = normalizeErrors(validate(next.Values))
		}
		next.IsValid = computeValid(next.Errors)
		return next

	case replaceErrors:
		next := state.clone()
		next.Errors = normalizeErrors(a.errors)
		if a.touch {
			for field := range next.Errors {
				next.Touched[field] = true
			}
		}
		next.IsValid = computeValid(next.Errors)
		return next

	case resetForm:
		values := state.Values
		if a.values != nil {
			values = a.values
		}
		return newSnapshot(values)

	case touchAll:
		next := state.clone()
		for field := range next.Values {
			next.Touched[field] = true
		}
		return next

	case validateAll:
		if validate == nil {
			return state
		}
		next := state.clone()
		next.Errors = normalizeErrors(validate(next.Values))
		next.IsValid = computeValid(next.Errors)
		return next

	case setSubmitting:
		next := state.clone()
		next.IsSubmitting = a.submitting
		return next
	}

	return state
}

// normalizeErrors copies an error map, trimming messages and dropping
// empty entries so IsValid derivation stays a plain emptiness check.
func normalizeErrors(src Errors) Errors {
	out := make(Errors, len(src))
	for field, msg := range src {
		trimmed := strings.TrimSpace(msg)
		if trimmed == "" {
			continue
		}
		out[field] = trimmed
	}
	return out
}
