package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/formdef"
)

// Session walks a form definition against an engine: one prompt per
// field, answers dispatched as value writes, the prompt counting as the
// blur that marks the field touched. Field errors replay the prompt;
// the final submit runs through the engine with server errors surfaced
// and retried.
type Session struct {
	engine      *form.Engine
	fields      []formdef.Field
	driver      PromptDriver
	maxAttempts int
}

// Option configures a Session.
type Option func(*Session)

// WithDriver overrides the prompt driver (defaults to survey).
func WithDriver(driver PromptDriver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithMaxAttempts bounds how often a failing field or submit is
// replayed before the session gives up. Defaults to 3.
func WithMaxAttempts(attempts int) Option {
	return func(s *Session) {
		if attempts > 0 {
			s.maxAttempts = attempts
		}
	}
}

// NewSession constructs a session for the engine and field set.
func NewSession(engine *form.Engine, fields []formdef.Field, options ...Option) (*Session, error) {
	if engine == nil {
		return nil, errors.New("tui: engine is required")
	}
	if len(fields) == 0 {
		return nil, errors.New("tui: at least one field is required")
	}

	s := &Session{
		engine:      engine,
		fields:      fields,
		driver:      newSurveyDriver(),
		maxAttempts: 3,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s, nil
}

// Run prompts every field once, then submits. Submit-time validation
// failures and server-side field errors replay the failing fields, up
// to the attempt budget.
func (s *Session) Run(ctx context.Context) error {
	if ctx == nil {
		return errors.New("tui: context is required")
	}

	for _, field := range s.fields {
		if err := s.promptField(ctx, field); err != nil {
			return err
		}
	}

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		err := s.engine.Submit(ctx)
		if err == nil {
			return nil
		}

		state := s.engine.State()
		if !errors.Is(err, form.ErrNotValid) && len(state.Errors) == 0 {
			// opaque failure, nothing field-level to fix interactively
			return err
		}

		if err := s.replayFailingFields(ctx, state); err != nil {
			return err
		}
	}
	return ErrTooManyAttempts
}

// replayFailingFields shows each current error and prompts the failing
// fields again, in definition order.
func (s *Session) replayFailingFields(ctx context.Context, state form.Snapshot) error {
	for _, field := range s.fields {
		msg := state.FieldError(field.Name)
		if msg == "" {
			continue
		}
		if err := s.driver.Info(ctx, fmt.Sprintf("%s: %s", field.DisplayLabel(), msg)); err != nil {
			return err
		}
		if err := s.promptField(ctx, field); err != nil {
			return err
		}
	}
	return nil
}

// promptField asks for one field and dispatches the answer. A field
// whose error stays visible after the write is replayed within the
// attempt budget; cross-field failures are left for submit time.
func (s *Session) promptField(ctx context.Context, field formdef.Field) error {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		if err := s.promptOnce(ctx, field); err != nil {
			return err
		}

		binding := s.engine.Binding(field.Name)
		if !binding.ShowError {
			return nil
		}
		if err := s.driver.Info(ctx, fmt.Sprintf("Invalid %s: %s", field.DisplayLabel(), binding.Error)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) promptOnce(ctx context.Context, field formdef.Field) error {
	binding := s.engine.Binding(field.Name)

	value, err := s.ask(ctx, field, binding)
	if err != nil {
		return err
	}

	binding.OnChange(value)
	binding.OnBlur()
	return nil
}

func (s *Session) ask(ctx context.Context, field formdef.Field, binding form.Binding) (any, error) {
	label := field.DisplayLabel()

	if field.Type == formdef.FieldTypeBoolean {
		current, _ := binding.Value.(bool)
		return s.driver.Confirm(ctx, ConfirmConfig{
			Message: label,
			Default: current,
			Help:    field.Help,
		})
	}

	if len(field.Enum) > 0 {
		options := make([]string, 0, len(field.Enum))
		for _, option := range field.Enum {
			options = append(options, fmt.Sprint(option))
		}
		idx, err := s.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      options,
			DefaultIndex: indexOf(options, fmt.Sprint(binding.Value)),
			Help:         field.Help,
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(field.Enum) {
			return nil, fmt.Errorf("tui: selection out of range for %s", field.Name)
		}
		return field.Enum[idx], nil
	}

	cfg := InputConfig{
		Message: label,
		Default: defaultText(binding.Value),
		Help:    field.Help,
	}

	switch field.Type {
	case formdef.FieldTypeInteger, formdef.FieldTypeNumber:
		return s.askNumber(ctx, field, cfg)
	default:
		if field.Secret {
			return s.driver.Password(ctx, cfg)
		}
		return s.driver.Input(ctx, cfg)
	}
}

// askNumber re-prompts on unparseable input; an empty answer stands for
// "no value" so optional numeric fields can be skipped.
func (s *Session) askNumber(ctx context.Context, field formdef.Field, cfg InputConfig) (any, error) {
	for {
		raw, err := s.driver.Input(ctx, cfg)
		if err != nil {
			return nil, err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil, nil
		}

		if field.Type == formdef.FieldTypeInteger {
			if n, err := strconv.Atoi(raw); err == nil {
				return n, nil
			}
		} else if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n, nil
		}

		if err := s.driver.Info(ctx, fmt.Sprintf("Expected a number for %s", field.DisplayLabel())); err != nil {
			return nil, err
		}
	}
}

func defaultText(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	default:
		return fmt.Sprint(typed)
	}
}
