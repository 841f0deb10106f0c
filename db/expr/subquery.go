package expr

import (
	"errors"

	"nanodb/db/env"
	"nanodb/db/errs"
	"nanodb/db/schema"
	"nanodb/db/tuple"
	"nanodb/db/types"
)

// SubqueryPlan is the minimal surface EXISTS/scalar-subquery expressions
// need from a prepared plan node, expressed as an interface rather than a
// direct dependency on db/plan to avoid an import cycle (db/plan itself
// depends on db/expr for filter/join predicates). db/plan's Node
// satisfies this interface.
type SubqueryPlan interface {
	Schema() *schema.Schema
	Initialize() error
	Next() (tuple.Tuple, error)
	Cleanup() error
}

// Exists evaluates a subquery plan and reports whether it produces at
// least one row. Always two-valued — EXISTS is never Unknown.
type Exists struct {
	Plan   SubqueryPlan
	Negate bool
}

func NewExists(plan SubqueryPlan, negate bool) *Exists {
	return &Exists{Plan: plan, Negate: negate}
}

func (x *Exists) EvaluatePredicate(_ *env.Environment) (Tristate, error) {
	if err := x.Plan.Initialize(); err != nil {
		return False, err
	}
	defer x.Plan.Cleanup()

	t, err := x.Plan.Next()
	found := err == nil && t != nil
	if err != nil && !isEndOfStream(err) {
		return False, err
	}
	result := found
	if x.Negate {
		result = !result
	}
	if result {
		return True, nil
	}
	return False, nil
}

func (x *Exists) Evaluate(e *env.Environment) (types.Value, error) {
	t, err := x.EvaluatePredicate(e)
	if err != nil {
		return types.Value{}, err
	}
	return tristateToValue(t), nil
}

func (x *Exists) ColumnInfo(_ []*schema.Schema) (types.DataType, error) { return types.INTEGER, nil }

func (x *Exists) AllSymbols() map[string]bool { return map[string]bool{} }

func (x *Exists) Duplicate() Expression { return &Exists{Plan: x.Plan, Negate: x.Negate} }

// errEndOfStream mirrors plan.ErrEndOfStream's sentinel value without
// importing db/plan; Next() implementations return this exact value (or
// wrap it) to signal exhaustion rather than returning a nil tuple silently.
var errEndOfStream = errs.PlanErrorf("end of stream")

// isEndOfStream matches errEndOfStream by kind and message rather than by
// identity, since plan.ErrEndOfStream is a separate value with the same
// contents.
func isEndOfStream(err error) bool {
	var e *errs.Error
	return errors.As(err, &e) && e.Kind == errEndOfStream.Kind && e.Message == errEndOfStream.Message
}

// Subquery evaluates a single-column, single-row subquery plan as a scalar
// value. It is a SchemaError for the subquery to produce more than one row
// at evaluation time in the reference implementation's contract, but this
// package does not enforce cardinality — the planner's prepare step is
// responsible for marking scalar subqueries as such.
type Subquery struct {
	Plan SubqueryPlan
}

func NewSubquery(plan SubqueryPlan) *Subquery { return &Subquery{Plan: plan} }

func (s *Subquery) Evaluate(_ *env.Environment) (types.Value, error) {
	if err := s.Plan.Initialize(); err != nil {
		return types.Value{}, err
	}
	defer s.Plan.Cleanup()

	t, err := s.Plan.Next()
	if err != nil {
		if isEndOfStream(err) {
			return types.Null(types.INTEGER), nil
		}
		return types.Value{}, err
	}
	if t.ColumnCount() != 1 {
		return types.Value{}, errs.TypeErrorf("scalar subquery must produce exactly one column")
	}
	return t.Value(0), nil
}

func (s *Subquery) ColumnInfo(_ []*schema.Schema) (types.DataType, error) {
	cols := s.Plan.Schema().Columns()
	if len(cols) != 1 {
		return 0, errs.TypeErrorf("scalar subquery must produce exactly one column")
	}
	return cols[0].Type, nil
}

func (s *Subquery) AllSymbols() map[string]bool { return map[string]bool{} }

func (s *Subquery) Duplicate() Expression { return &Subquery{Plan: s.Plan} }
