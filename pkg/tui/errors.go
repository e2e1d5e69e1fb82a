package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrTooManyAttempts is returned when the session exhausted its
	// submit retries without the form becoming acceptable.
	ErrTooManyAttempts = errors.New("tui: too many failed attempts")
)
