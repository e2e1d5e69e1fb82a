// Package validate builds form.Validator collaborators from declarative
// sources: per-field constraint rules, templated messages, and
// go-playground struct tags. The engine itself never validates; these
// builders produce the pure functions it consumes.
package validate
