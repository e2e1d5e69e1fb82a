// Package form implements a reducer-driven state container for
// multi-field create/edit forms, decoupled from rendering and
// transport.
//
// An Engine owns the form's values, per-field validation errors,
// touched flags, and submission lifecycle. Callers inject two optional
// collaborators at construction: a synchronous Validator computing
// per-field error messages from the full value set, and a SubmitFunc
// performing the actual persistence action. Every state change flows
// through a closed set of actions applied by a pure reducer, so each
// transition commits atomically to a new consistent snapshot.
//
// The engine exposes state through Snapshot copies and a plain
// subscription contract (current snapshot plus callback on change) so
// it stays reusable outside any specific UI runtime. Per-field wiring
// for a view layer goes through Binding.
package form
