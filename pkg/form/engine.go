package form

import (
	"context"
	"sync"
)

// Validator computes per-field error messages from the complete value
// set. It must be total and exception-free: return a non-empty message
// for each currently invalid field and omit (or empty) entries for
// valid fields. The engine never embeds domain validation of its own.
type Validator func(values Values) Errors

// SubmitFunc performs the actual persistence or transport action with
// the current values. A returned error may implement FieldErrorer to
// surface server-side validation through the form's error map.
type SubmitFunc func(ctx context.Context, values Values) error

// Reporter receives submit failures that carry no per-field payload, so
// they reach an observability surface instead of being dropped.
type Reporter func(err error)

// Engine is the form-state container. It owns one Snapshot, mutated
// exclusively through the action set, and fans each new snapshot out to
// subscribers. An Engine belongs to the editing session that created
// it; all methods are safe for use from the session's dispatch flow.
type Engine struct {
	mu       sync.Mutex
	state    Snapshot
	validate Validator
	submit   SubmitFunc
	report   Reporter
	sanitize Sanitizer

	// serverErrorTouch forces fields named by a submit failure's
	// validation payload to touched, so the messages become visible
	// without the user blurring them again.
	serverErrorTouch bool

	subscribers map[int]func(Snapshot)
	nextSub     int
}

// New constructs an engine seeded with the provided initial values.
// Collaborators and policy knobs are injected through options; an
// engine without a validator treats every value set as valid, and one
// without a submit handler stops Submit after validation.
func New(initial Values, options ...Option) *Engine {
	e := &Engine{
		state:            newSnapshot(initial),
		sanitize:         sanitizeMessage,
		serverErrorTouch: true,
		subscribers:      make(map[int]func(Snapshot)),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

// State returns an independent copy of the current snapshot.
func (e *Engine) State() Snapshot {
	if e == nil {
		return Snapshot{IsValid: true}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

// Subscribe registers a callback invoked with a snapshot copy after
// every state transition. The returned function cancels the
// subscription; it is safe to call more than once.
func (e *Engine) Subscribe(fn func(Snapshot)) func() {
	if e == nil || fn == nil {
		return func() {}
	}
	e.mu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subscribers[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.subscribers, id)
		e.mu.Unlock()
	}
}

// SetFieldValue writes one field value, marks the form dirty, and, when
// a validator is configured, refreshes that field's error entry against
// the new full value set. Errors on other fields are left alone.
func (e *Engine) SetFieldValue(field string, value any) {
	e.apply(setFieldValue{field: field, value: value})
}

// SetFieldError overwrites one field's error entry; an empty message
// clears it. Validity is recomputed from the full error map. Used to
// merge in external (for example server-side) errors field by field.
func (e *Engine) SetFieldError(field, message string) {
	e.apply(setFieldError{field: field, message: message})
}

// SetFieldTouched overwrites one field's touched flag. No validation
// side effect.
func (e *Engine) SetFieldTouched(field string, touched bool) {
	e.apply(setFieldTouched{field: field, touched: touched})
}

// SetFields merges a partial value map into the form, for bulk
// pre-population such as loading an existing record to edit. When a
// validator is configured the entire merged value set is re-validated,
// not just the changed fields, because validators may express
// cross-field constraints.
func (e *Engine) SetFields(values Values) {
	e.apply(mergeValues{values: values})
}

// SetErrors replaces the error map wholesale and recomputes validity.
// Used to apply server-side validation results verbatim; messages pass
// through the configured sanitizer.
func (e *Engine) SetErrors(errs Errors) {
	e.apply(replaceErrors{errors: sanitizeErrorMap(errs, e.sanitizer())})
}

// Reset returns the form to a fresh session: errors and touched flags
// are cleared, dirty and submitting drop to false, and validity is true
// regardless of prior results (re-validate afterwards if required).
// A nil values argument keeps the prior values; otherwise they are
// replaced.
func (e *Engine) Reset(values Values) {
	e.apply(resetForm{values: values})
}

// TouchAll marks every field present in the current values as touched,
// typically right before a full-form validation so errors become
// visible all at once.
func (e *Engine) TouchAll() {
	e.apply(touchAll{})
}

// ValidateAll runs the validator over the current values, replaces the
// error map, and reports the resulting validity. Without a configured
// validator it is a no-op that reports the current validity.
func (e *Engine) ValidateAll() bool {
	return e.apply(validateAll{}).IsValid
}

// Submit drives the full submission lifecycle: touch all fields,
// validate the complete value set, and, when the form is valid and a
// submit handler is configured, invoke it exactly once with a copy of
// the current values. IsSubmitting is true strictly while the handler
// runs and returns to false on both success and failure.
//
// A failing handler never crashes the caller: if the failure carries a
// FieldErrorer payload it is sanitized and merged into the error map
// (force-touching the named fields unless disabled), otherwise it is
// forwarded to the Reporter. The failure is also returned. Validation
// stops the attempt with ErrNotValid before the handler is reached, and
// an overlapping call returns ErrSubmitInFlight without touching state.
func (e *Engine) Submit(ctx context.Context) error {
	if e == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	e.mu.Lock()
	if e.state.IsSubmitting {
		e.mu.Unlock()
		return ErrSubmitInFlight
	}

	st := reduce(e.state, touchAll{}, e.validate)
	st = reduce(st, validateAll{}, e.validate)

	if !st.IsValid {
		e.commit(st)
		return ErrNotValid
	}
	if e.submit == nil {
		e.commit(st)
		return nil
	}

	st = reduce(st, setSubmitting{submitting: true}, e.validate)
	values := cloneValues(st.Values)
	submit := e.submit
	e.commit(st)

	err := submit(ctx, values)

	e.mu.Lock()
	st = reduce(e.state, setSubmitting{submitting: false}, e.validate)
	var report Reporter
	if err != nil {
		if payload := fieldErrorsFrom(err); len(payload) > 0 {
			st = reduce(st, replaceErrors{
				errors: sanitizeErrorMap(payload, e.sanitize),
				touch:  e.serverErrorTouch,
			}, e.validate)
		} else {
			report = e.report
		}
	}
	e.commit(st)

	if report != nil {
		report(err)
	}
	return err
}

// apply dispatches one action through the reducer and returns the
// resulting snapshot.
func (e *Engine) apply(act action) Snapshot {
	if e == nil {
		return Snapshot{IsValid: true}
	}
	e.mu.Lock()
	next := reduce(e.state, act, e.validate)
	e.commit(next)
	return next
}

// commit stores the snapshot and notifies subscribers. The mutex must
// be held on entry; callbacks run after it is released so a subscriber
// may dispatch follow-up actions.
func (e *Engine) commit(next Snapshot) {
	e.state = next
	if len(e.subscribers) == 0 {
		e.mu.Unlock()
		return
	}
	listeners := make([]func(Snapshot), 0, len(e.subscribers))
	for _, fn := range e.subscribers {
		listeners = append(listeners, fn)
	}
	e.mu.Unlock()

	for _, fn := range listeners {
		fn(next.clone())
	}
}

func (e *Engine) sanitizer() Sanitizer {
	if e == nil {
		return nil
	}
	return e.sanitize
}
