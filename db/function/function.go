// Package function implements the scalar/aggregate function registry: a
// lookup from upper-cased name to an (evaluator, return-type inferencer)
// pair. Registration is the contract the expression engine depends on;
// the bodies registered here are a pragmatic, non-exhaustive starter set.
package function

import (
	"strings"
	"sync"

	"nanodb/db/errs"
	"nanodb/db/types"
)

// Evaluator computes a function's result from already-evaluated arguments.
type Evaluator func(args []types.Value) (types.Value, error)

// ReturnTypeInferencer computes a function's result type from its
// arguments' declared types, without evaluating them — used by
// column_info to type-check a call before any row is pulled.
type ReturnTypeInferencer func(argTypes []types.DataType) (types.DataType, error)

// IsAggregate reports whether a function consumes a column across all rows
// of a group (COUNT, SUM, AVG, MIN, MAX) rather than per-row arguments.
type Descriptor struct {
	Name        string
	Eval        Evaluator
	ReturnType  ReturnTypeInferencer
	IsAggregate bool
}

// Registry holds the set of known functions, keyed by upper-cased name.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Descriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Descriptor)}
}

// Register adds a function under its upper-cased name. Registering a name
// twice is an error — function identity is name-based, not overload-based.
func (r *Registry) Register(d Descriptor) error {
	key := strings.ToUpper(d.Name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.funcs[key]; exists {
		return errs.SchemaErrorf("function %q already registered", key)
	}
	d.Name = key
	r.funcs[key] = d
	return nil
}

// Get looks up a function by name, case-insensitively.
func (r *Registry) Get(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.funcs[strings.ToUpper(name)]
	return d, ok
}

// Default returns a registry pre-populated with the builtin functions.
func Default() *Registry {
	r := NewRegistry()
	for _, d := range builtins() {
		if err := r.Register(d); err != nil {
			// builtins() never contains a duplicate name; a panic here
			// would mean a programming error in this package, not a
			// runtime condition callers need to recover from.
			panic(err)
		}
	}
	return r
}
