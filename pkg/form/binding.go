package form

// Binding is a read-only projection of one field plus the triggers a
// view layer needs to wire an input widget: the current value, a
// value-change trigger, a blur trigger, and the visibility-gated error
// message. ShowError is true only once the field is both touched and
// failing, so validation stays invisible on fields the user has not
// interacted with yet.
type Binding struct {
	Name      string
	Value     any
	Error     string
	ShowError bool

	// OnChange dispatches a value write for this field.
	OnChange func(value any)
	// OnBlur marks the field touched.
	OnBlur func()
}

// Binding returns the current projection for one field. It reads a
// snapshot and performs no mutation; the embedded triggers dispatch
// through the engine when invoked.
func (e *Engine) Binding(field string) Binding {
	state := e.State()
	message := state.FieldError(field)

	return Binding{
		Name:      field,
		Value:     state.Values[field],
		Error:     message,
		ShowError: message != "" && state.IsTouched(field),
		OnChange: func(value any) {
			e.SetFieldValue(field, value)
		},
		OnBlur: func() {
			e.SetFieldTouched(field, true)
		},
	}
}
