package validate

import (
	"fmt"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	gotemplate "github.com/goliatone/go-template"
)

// Default message templates per rule kind. Values between braces render
// through the template engine with the rule parameters in scope
// (field, value, min, max, minLength, maxLength, options).
var defaultMessages = map[string]string{
	RuleRequired:  "This field is required",
	RuleMin:       "Must be at least {{ min }}",
	RuleMax:       "Must be at most {{ max }}",
	RuleMinLength: "Must be at least {{ minLength }} characters",
	RuleMaxLength: "Must be at most {{ maxLength }} characters",
	RulePattern:   "Does not match the expected format",
	RuleEnum:      "Must be one of: {{ options }}",
}

// Option configures schema compilation.
type Option func(*config)

// WithMessages overrides message templates globally, keyed by the Rule*
// constants. Per-field Rules.Messages still win.
func WithMessages(messages map[string]string) Option {
	return func(cfg *config) {
		for kind, tpl := range messages {
			if strings.TrimSpace(tpl) == "" {
				continue
			}
			cfg.messages[kind] = tpl
		}
	}
}

// WithEngineOptions accepts go-template engine options for callers
// migrating message rendering from a go-template setup. The message set
// configures its pongo2 templates directly, so these are currently
// ignored.
func WithEngineOptions(_ ...gotemplate.Option) Option {
	return func(*config) {}
}

type config struct {
	messages map[string]string
	engine   *messageEngine
}

func newConfig(options ...Option) *config {
	cfg := &config{
		messages: make(map[string]string, len(defaultMessages)),
		engine:   newMessageEngine(),
	}
	for kind, tpl := range defaultMessages {
		cfg.messages[kind] = tpl
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}
	return cfg
}

// message resolves the template for a failed rule and renders it with
// the rule parameters. Rendering is best-effort: a template that fails
// to parse falls back to its raw text so a failing field never loses
// its message.
func (c *config) message(kind string, rules Rules, field string, value any) string {
	tpl := rules.Messages[kind]
	if strings.TrimSpace(tpl) == "" {
		tpl = c.messages[kind]
	}
	if strings.TrimSpace(tpl) == "" {
		return kind
	}
	return c.engine.render(tpl, messageContext(rules, field, value))
}

func messageContext(rules Rules, field string, value any) pongo2.Context {
	ctx := pongo2.Context{
		"field": field,
		"value": value,
	}
	if rules.Min != nil {
		ctx["min"] = formatBound(*rules.Min)
	}
	if rules.Max != nil {
		ctx["max"] = formatBound(*rules.Max)
	}
	if rules.MinLength != nil {
		ctx["minLength"] = *rules.MinLength
	}
	if rules.MaxLength != nil {
		ctx["maxLength"] = *rules.MaxLength
	}
	if len(rules.Enum) > 0 {
		options := make([]string, 0, len(rules.Enum))
		for _, option := range rules.Enum {
			options = append(options, fmt.Sprint(option))
		}
		ctx["options"] = strings.Join(options, ", ")
	}
	return ctx
}

func formatBound(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%v", v)
}

// messageEngine compiles message templates lazily and caches them by
// source text; rule messages are few and reused on every validation
// pass.
type messageEngine struct {
	mu        sync.RWMutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
}

func newMessageEngine() *messageEngine {
	return &messageEngine{
		set:       pongo2.NewSet("formstate-messages", pongo2.MustNewLocalFileSystemLoader("")),
		templates: make(map[string]*pongo2.Template),
	}
}

func (e *messageEngine) render(source string, ctx pongo2.Context) string {
	tmpl, err := e.template(source)
	if err != nil {
		return source
	}
	out, err := tmpl.Execute(ctx)
	if err != nil {
		return source
	}
	return strings.TrimSpace(out)
}

func (e *messageEngine) template(source string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.templates[source]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	compiled, err := e.set.FromString(source)
	if err != nil {
		return nil, fmt.Errorf("validate: parse message template: %w", err)
	}

	e.mu.Lock()
	e.templates[source] = compiled
	e.mu.Unlock()
	return compiled, nil
}
