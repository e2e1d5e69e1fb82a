package form

import "errors"

var (
	// ErrNotValid signals that a submit attempt stopped at validation:
	// the validator reported at least one failing field and the submit
	// collaborator was never invoked.
	ErrNotValid = errors.New("form: validation failed")
	// ErrSubmitInFlight is returned when Submit is called while a prior
	// submit is still pending. The overlapping call leaves the state
	// untouched.
	ErrSubmitInFlight = errors.New("form: submit already in flight")
)

// FieldErrorer is the contract a submit failure may implement to carry
// a per-field validation payload. The engine merges the payload into
// the form's error map instead of surfacing the failure as opaque.
type FieldErrorer interface {
	FieldErrors() map[string]string
}

// SubmissionError is a ready-made submit failure carrying per-field
// validation messages, typically decoded from a server response.
type SubmissionError struct {
	// Message is the overall failure description.
	Message string
	// ValidationErrors maps field names to messages, mirroring the
	// engine's Errors shape.
	ValidationErrors map[string]string
}

// Error implements the error interface.
func (e *SubmissionError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return "form: submission rejected"
}

// FieldErrors implements FieldErrorer.
func (e *SubmissionError) FieldErrors() map[string]string {
	if e == nil {
		return nil
	}
	return e.ValidationErrors
}

// fieldErrorsFrom extracts a per-field payload from a submit failure,
// walking wrapped errors so collaborators can decorate the failure with
// context before returning it.
func fieldErrorsFrom(err error) map[string]string {
	var fe FieldErrorer
	if errors.As(err, &fe) {
		if payload := fe.FieldErrors(); len(payload) > 0 {
			return payload
		}
	}
	return nil
}
