package form_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/form"
)

// requireName reports an error for "name" when it is empty or not a
// string, and requires qty > 0 when present.
func requireName(values form.Values) form.Errors {
	errs := form.Errors{}
	if s, _ := values["name"].(string); strings.TrimSpace(s) == "" {
		errs["name"] = "Required"
	}
	if qty, ok := values["qty"]; ok {
		switch n := qty.(type) {
		case int:
			if n <= 0 {
				errs["qty"] = "Must be positive"
			}
		case float64:
			if n <= 0 {
				errs["qty"] = "Must be positive"
			}
		}
	}
	return errs
}

func TestEngine_SetFieldValueDirtyAndLastWriteWins(t *testing.T) {
	engine := form.New(form.Values{"name": "", "qty": 0})

	if engine.State().IsDirty {
		t.Fatalf("fresh engine must not be dirty")
	}

	engine.SetFieldValue("name", "Widget")
	engine.SetFieldValue("name", "Gadget")
	engine.SetFieldValue("qty", 3)

	state := engine.State()
	if !state.IsDirty {
		t.Fatalf("expected dirty after first write")
	}
	want := form.Values{"name": "Gadget", "qty": 3}
	if diff := cmp.Diff(want, state.Values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_ValidityTracksErrorMap(t *testing.T) {
	engine := form.New(
		form.Values{"name": "", "qty": 1},
		form.WithValidator(requireName),
	)

	if !engine.State().IsValid {
		t.Fatalf("engine starts valid before any validation ran")
	}

	if engine.ValidateAll() {
		t.Fatalf("expected invalid: name is empty")
	}
	if got := engine.State().FieldError("name"); got != "Required" {
		t.Fatalf("name error = %q, want Required", got)
	}

	engine.SetFieldValue("name", "Widget")
	state := engine.State()
	if !state.IsValid {
		t.Fatalf("expected valid after fixing name: %#v", state.Errors)
	}
}

func TestEngine_SingleFieldEditLeavesOtherErrorsAlone(t *testing.T) {
	engine := form.New(
		form.Values{"name": "", "qty": 0},
		form.WithValidator(requireName),
	)
	engine.ValidateAll()

	// Fixing qty must not clear the still-failing name entry.
	engine.SetFieldValue("qty", 5)

	state := engine.State()
	if state.FieldError("qty") != "" {
		t.Fatalf("qty error should clear: %#v", state.Errors)
	}
	if state.FieldError("name") != "Required" {
		t.Fatalf("name error must survive an unrelated edit: %#v", state.Errors)
	}
	if state.IsValid {
		t.Fatalf("form still invalid while name fails")
	}
}

func TestEngine_SetFieldsRevalidatesWholeValueSet(t *testing.T) {
	engine := form.New(
		form.Values{"name": "Widget", "qty": 0},
		form.WithValidator(requireName),
	)
	// Seed a stale name error by hand; the bulk write must clear it
	// because the merged value set validates name as fine.
	engine.SetFieldError("name", "Required")

	engine.SetFields(form.Values{"qty": 5})

	state := engine.State()
	if state.FieldError("name") != "" {
		t.Fatalf("stale name error not cleared: %#v", state.Errors)
	}
	if !state.IsValid || !state.IsDirty {
		t.Fatalf("expected valid+dirty, got %#v", state)
	}
	if got := state.Values["qty"]; got != 5 {
		t.Fatalf("qty = %v, want 5", got)
	}
}

func TestEngine_ResetClearsEverything(t *testing.T) {
	engine := form.New(
		form.Values{"name": "", "qty": 0},
		form.WithValidator(requireName),
	)
	engine.SetFieldValue("qty", -2)
	engine.TouchAll()
	engine.ValidateAll()

	engine.Reset(nil)

	state := engine.State()
	if len(state.Errors) != 0 || len(state.Touched) != 0 {
		t.Fatalf("reset must clear errors and touched: %#v", state)
	}
	if state.IsDirty || state.IsSubmitting || !state.IsValid {
		t.Fatalf("reset flags wrong: %#v", state)
	}
	// nil keeps the prior values
	if got := state.Values["qty"]; got != -2 {
		t.Fatalf("reset without values must keep priors, qty = %v", got)
	}

	engine.Reset(form.Values{"name": "fresh"})
	if got := engine.State().Values["name"]; got != "fresh" {
		t.Fatalf("reset with values must replace, name = %v", got)
	}
}

func TestEngine_TouchAllMarksExactlyTheValueKeys(t *testing.T) {
	engine := form.New(form.Values{"name": "", "qty": 0})
	engine.TouchAll()

	want := form.Touched{"name": true, "qty": true}
	if diff := cmp.Diff(want, engine.State().Touched); diff != "" {
		t.Fatalf("touched mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_BindingShowErrorGatedOnTouch(t *testing.T) {
	engine := form.New(
		form.Values{"name": "", "qty": 0},
		form.WithValidator(requireName),
	)

	engine.SetFieldValue("name", "")

	binding := engine.Binding("name")
	if binding.ShowError {
		t.Fatalf("error must stay invisible before the field is touched")
	}
	if binding.Error != "Required" {
		t.Fatalf("error message computed even while hidden, got %q", binding.Error)
	}

	engine.SetFieldTouched("name", true)
	binding = engine.Binding("name")
	if !binding.ShowError || binding.Error != "Required" {
		t.Fatalf("expected visible Required error, got %#v", binding)
	}
}

func TestEngine_BindingTriggersDispatch(t *testing.T) {
	engine := form.New(form.Values{"name": ""})

	binding := engine.Binding("name")
	binding.OnChange("Widget")
	binding.OnBlur()

	state := engine.State()
	if state.Values["name"] != "Widget" || !state.IsTouched("name") {
		t.Fatalf("binding triggers did not dispatch: %#v", state)
	}
}

func TestEngine_SubmitBlockedByValidation(t *testing.T) {
	calls := 0
	engine := form.New(
		form.Values{"name": "", "qty": 1},
		form.WithValidator(requireName),
		form.WithSubmitHandler(func(ctx context.Context, values form.Values) error {
			calls++
			return nil
		}),
	)

	err := engine.Submit(context.Background())
	if !errors.Is(err, form.ErrNotValid) {
		t.Fatalf("submit on invalid form: err = %v, want ErrNotValid", err)
	}
	if calls != 0 {
		t.Fatalf("submit handler must not run on an invalid form")
	}

	state := engine.State()
	if state.IsSubmitting {
		t.Fatalf("isSubmitting must stay false when validation blocks")
	}
	// touch-all happened so every error is visible at once
	if !state.IsTouched("name") || !state.IsTouched("qty") {
		t.Fatalf("submit attempt must touch all fields: %#v", state.Touched)
	}
}

func TestEngine_SubmitLifecycle(t *testing.T) {
	calls := 0
	var seen form.Values
	var midFlight bool

	engine := form.New(
		form.Values{"name": "Widget", "qty": 2},
		form.WithValidator(requireName),
		form.WithSubmitHandler(func(ctx context.Context, values form.Values) error {
			calls++
			seen = values
			return nil
		}),
	)

	unsubscribe := engine.Subscribe(func(s form.Snapshot) {
		if s.IsSubmitting {
			midFlight = true
		}
	})
	defer unsubscribe()

	if err := engine.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if calls != 1 {
		t.Fatalf("submit handler calls = %d, want 1", calls)
	}
	if !midFlight {
		t.Fatalf("isSubmitting never observed true during the attempt")
	}
	if engine.State().IsSubmitting {
		t.Fatalf("isSubmitting must return to false after success")
	}
	want := form.Values{"name": "Widget", "qty": 2}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Fatalf("handler values mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_SubmitFailureWithFieldPayload(t *testing.T) {
	engine := form.New(
		form.Values{"name": "Widget"},
		form.WithSubmitHandler(func(ctx context.Context, values form.Values) error {
			return &form.SubmissionError{
				Message:          "rejected",
				ValidationErrors: map[string]string{"name": "Required"},
			}
		}),
	)

	err := engine.Submit(context.Background())
	if err == nil {
		t.Fatalf("expected the handler failure back")
	}

	state := engine.State()
	if state.IsSubmitting {
		t.Fatalf("isSubmitting must clear on failure")
	}
	if got := state.FieldError("name"); got != "Required" {
		t.Fatalf("server error not merged: %#v", state.Errors)
	}
	if state.IsValid {
		t.Fatalf("form must be invalid after a server validation payload")
	}
	// resolved policy: server-surfaced errors are visible immediately
	if !state.IsTouched("name") {
		t.Fatalf("server-surfaced field must be force-touched")
	}
}

func TestEngine_SubmitFailureWithoutPayloadReachesReporter(t *testing.T) {
	boom := errors.New("backend unavailable")
	var reported error

	engine := form.New(
		form.Values{"name": "Widget"},
		form.WithSubmitHandler(func(ctx context.Context, values form.Values) error {
			return boom
		}),
		form.WithReporter(func(err error) { reported = err }),
	)

	if err := engine.Submit(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("submit err = %v, want %v", err, boom)
	}
	if !errors.Is(reported, boom) {
		t.Fatalf("opaque failure must reach the reporter, got %v", reported)
	}
	state := engine.State()
	if state.IsSubmitting || len(state.Errors) != 0 {
		t.Fatalf("opaque failure must not invent field errors: %#v", state)
	}
}

func TestEngine_SubmitRejectsOverlappingAttempt(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	engine := form.New(
		form.Values{"name": "Widget"},
		form.WithSubmitHandler(func(ctx context.Context, values form.Values) error {
			close(started)
			<-release
			return nil
		}),
	)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := engine.Submit(context.Background()); err != nil {
			t.Errorf("first submit: %v", err)
		}
	}()

	<-started
	if err := engine.Submit(context.Background()); !errors.Is(err, form.ErrSubmitInFlight) {
		t.Fatalf("overlapping submit err = %v, want ErrSubmitInFlight", err)
	}
	close(release)
	wg.Wait()

	if engine.State().IsSubmitting {
		t.Fatalf("isSubmitting must clear once the in-flight attempt ends")
	}
}

func TestEngine_SetErrorsSanitizesServerMessages(t *testing.T) {
	engine := form.New(form.Values{"name": ""})

	engine.SetErrors(form.Errors{
		"name": `<script>alert(1)</script>Required`,
	})

	if got := engine.State().FieldError("name"); got != "Required" {
		t.Fatalf("markup must be stripped, got %q", got)
	}
}

func TestEngine_SubscribeAndCancel(t *testing.T) {
	engine := form.New(form.Values{"name": ""})

	var notified int
	cancel := engine.Subscribe(func(form.Snapshot) { notified++ })

	engine.SetFieldValue("name", "a")
	if notified != 1 {
		t.Fatalf("notifications = %d, want 1", notified)
	}

	cancel()
	engine.SetFieldValue("name", "b")
	if notified != 1 {
		t.Fatalf("cancelled subscriber still notified")
	}
}

func TestEngine_SetFieldValueOnUnknownKeyDoesNotPanic(t *testing.T) {
	engine := form.New(form.Values{"name": ""})
	engine.SetFieldValue("ghost", 42)

	if got := engine.State().Values["ghost"]; got != 42 {
		t.Fatalf("unknown key write lost: %v", got)
	}
}
