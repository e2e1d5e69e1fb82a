package form

// Values holds the current field values keyed by field name. Value
// types are caller-defined and unchecked by the engine.
type Values map[string]any

// Errors maps field names to validation messages. A present, non-empty
// entry means the field currently fails validation; absence means
// currently valid or never validated.
type Errors map[string]string

// Touched maps field names to their blur state. A field is touched once
// it lost focus at least once or after a touch-all event.
type Touched map[string]bool

// Snapshot is an immutable view of the form state at one point in time.
// IsValid always equals "no entry in Errors holds a non-empty message";
// IsDirty is true once any value write happened since creation or the
// last reset.
type Snapshot struct {
	Values       Values
	Errors       Errors
	Touched      Touched
	IsSubmitting bool
	IsValid      bool
	IsDirty      bool
}

// FieldError returns the message recorded for the field, or "" when the
// field is currently valid.
func (s Snapshot) FieldError(field string) string {
	if len(s.Errors) == 0 {
		return ""
	}
	return s.Errors[field]
}

// IsTouched reports whether the field has been touched.
func (s Snapshot) IsTouched(field string) bool {
	if len(s.Touched) == 0 {
		return false
	}
	return s.Touched[field]
}

func newSnapshot(initial Values) Snapshot {
	return Snapshot{
		Values:  cloneValues(initial),
		Errors:  make(Errors),
		Touched: make(Touched),
		IsValid: true,
	}
}

// clone produces an independent copy so reducer output never aliases
// the previous snapshot's maps.
func (s Snapshot) clone() Snapshot {
	out := s
	out.Values = cloneValues(s.Values)
	out.Errors = cloneErrors(s.Errors)
	out.Touched = cloneTouched(s.Touched)
	return out
}

func cloneValues(src Values) Values {
	out := make(Values, len(src))
	for k, v := range src {
		out[k] = deepCopy(v)
	}
	return out
}

func cloneErrors(src Errors) Errors {
	out := make(Errors, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func cloneTouched(src Touched) Touched {
	out := make(Touched, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func deepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = deepCopy(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = deepCopy(v)
		}
		return clone
	default:
		return typed
	}
}

// computeValid derives the validity flag from an error map: the form is
// valid iff every recorded message is empty.
func computeValid(errs Errors) bool {
	for _, msg := range errs {
		if msg != "" {
			return false
		}
	}
	return true
}
