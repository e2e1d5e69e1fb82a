package form

// Option configures an Engine during construction.
type Option func(*Engine)

// WithValidator installs the validation collaborator. The function must
// be total over every shape the values can take; the engine does not
// catch panics it raises.
func WithValidator(validate Validator) Option {
	return func(e *Engine) {
		e.validate = validate
	}
}

// WithSubmitHandler installs the submit collaborator invoked by Submit
// once validation passes.
func WithSubmitHandler(submit SubmitFunc) Option {
	return func(e *Engine) {
		e.submit = submit
	}
}

// WithReporter installs the sink for submit failures that carry no
// per-field validation payload. Without one, such failures still reach
// the caller through Submit's return value.
func WithReporter(report Reporter) Option {
	return func(e *Engine) {
		e.report = report
	}
}

// WithMessageSanitizer replaces the sanitizer applied to server-provided
// error messages before they enter the error map. A nil sanitizer
// stores messages verbatim.
func WithMessageSanitizer(sanitize Sanitizer) Option {
	return func(e *Engine) {
		e.sanitize = sanitize
	}
}

// WithServerErrorTouch controls whether fields named by a submit
// failure's validation payload are forced to touched so the messages
// show without another blur. Defaults to true.
func WithServerErrorTouch(enabled bool) Option {
	return func(e *Engine) {
		e.serverErrorTouch = enabled
	}
}
