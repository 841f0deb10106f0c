// Package env implements the evaluation environment expressions resolve
// column references against: an ordered list of (schema, tuple) bindings
// built up as a plan node's inputs are pulled.
package env

import (
	"nanodb/db/schema"
	"nanodb/db/tuple"
	"nanodb/db/types"
)

// binding pairs a schema with the tuple currently flowing through it.
type binding struct {
	schema *schema.Schema
	tuple  tuple.Tuple
}

// Environment is the ordered set of schema/tuple bindings an expression is
// evaluated against. A join's environment holds one binding per input side;
// a filter or project holds exactly one.
type Environment struct {
	bindings []binding
}

// New returns an empty environment.
func New() *Environment {
	return &Environment{}
}

// AddTuple appends a new binding. Later bindings never shadow earlier ones:
// on an unqualified lookup the first matching binding wins, so AddTuple
// order matters for ambiguous unqualified references.
func (e *Environment) AddTuple(s *schema.Schema, t tuple.Tuple) {
	e.bindings = append(e.bindings, binding{schema: s, tuple: t})
}

// Clear removes all bindings, preparing the environment for reuse on the
// next row without reallocating.
func (e *Environment) Clear() {
	e.bindings = e.bindings[:0]
}

// Resolve finds the value for a possibly-qualified column reference.
// Unqualified references are resolved against each binding in order;
// first-match-wins — ambiguity within a single binding's schema is still
// reported as an error, but across bindings the first one to match is used
// (an environment's bindings represent disjoint input schemas, typically
// children of a single plan node pulling one tuple each).
func (e *Environment) Resolve(qualifier, name string) (types.Value, bool, error) {
	for _, b := range e.bindings {
		idx, err := b.schema.Resolve(qualifier, name)
		if err != nil {
			return types.Value{}, false, err
		}
		if idx >= 0 {
			return b.tuple.Value(idx), true, nil
		}
	}
	return types.Value{}, false, nil
}

// Schemas returns the schemas of every binding, in order — used to build
// the combined schema an expression's column_info check resolves against.
func (e *Environment) Schemas() []*schema.Schema {
	out := make([]*schema.Schema, len(e.bindings))
	for i, b := range e.bindings {
		out[i] = b.schema
	}
	return out
}
