// Package expr implements the expression engine: literals, column
// references, arithmetic, comparison, three-valued boolean logic, LIKE/
// BETWEEN/IN/EXISTS, scalar subqueries, and function calls, evaluated
// against a db/env Environment.
package expr

import (
	"nanodb/db/env"
	"nanodb/db/errs"
	"nanodb/db/function"
	"nanodb/db/schema"
	"nanodb/db/types"
)

// Tristate is the three-valued logical result of a boolean expression.
type Tristate int

const (
	False Tristate = iota
	True
	Unknown
)

// Expression is the common interface every expression node satisfies.
type Expression interface {
	// Evaluate computes the expression's value against env.
	Evaluate(e *env.Environment) (types.Value, error)
	// ColumnInfo type-checks the expression against the given schemas,
	// returning its result type. It is called once at prepare time so
	// unresolved columns surface as a SchemaError before any row is read.
	ColumnInfo(schemas []*schema.Schema) (types.DataType, error)
	// AllSymbols returns every "qualifier.name"/"name" column reference the
	// expression touches, used by the planner to test predicate coverage
	// against a candidate plan's schema.
	AllSymbols() map[string]bool
	// Duplicate returns a deep copy, so the same expression tree can be
	// attached to two different plan nodes without aliasing.
	Duplicate() Expression
}

// Predicate is an Expression known to be used in boolean position; it adds
// EvaluatePredicate, which returns the full three-valued result (the
// package-level EvaluatePredicate folds UNKNOWN to false).
type Predicate interface {
	Expression
	// EvaluatePredicate returns the expression's three-valued result.
	EvaluatePredicate(e *env.Environment) (Tristate, error)
}

// EvaluatePredicate evaluates an Expression known to appear in boolean
// position: NULL (SQL UNKNOWN) is folded to False, matching WHERE's
// "reject unless TRUE" semantics. ex must implement Predicate — every
// expression type usable directly in a WHERE/ON/HAVING clause does.
func EvaluatePredicate(ex Expression, e *env.Environment) (bool, error) {
	p, ok := ex.(Predicate)
	if !ok {
		return false, errs.TypeErrorf("expression %T is not usable as a predicate", ex)
	}
	t, err := p.EvaluatePredicate(e)
	if err != nil {
		return false, err
	}
	return t == True, nil
}

// Registry supplies the function lookup used by Call expressions.
type Registry interface {
	Get(name string) (function.Descriptor, bool)
}

// mergeSymbols merges the AllSymbols of a list of child expressions.
func mergeSymbols(children ...Expression) map[string]bool {
	out := make(map[string]bool)
	for _, c := range children {
		for s := range c.AllSymbols() {
			out[s] = true
		}
	}
	return out
}

func schemaError(format string, args ...interface{}) error {
	return errs.SchemaErrorf(format, args...)
}
