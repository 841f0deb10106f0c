package expr

import (
	"nanodb/db/env"
	"nanodb/db/schema"
	"nanodb/db/types"
)

// CompareOp identifies a comparison operator.
type CompareOp int

const (
	Eq CompareOp = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

// Comparison is a binary comparison; three-valued (Unknown if either
// operand evaluates NULL).
type Comparison struct {
	Op          CompareOp
	Left, Right Expression
}

func NewComparison(op CompareOp, left, right Expression) *Comparison {
	return &Comparison{Op: op, Left: left, Right: right}
}

func (c *Comparison) EvaluatePredicate(e *env.Environment) (Tristate, error) {
	lv, err := c.Left.Evaluate(e)
	if err != nil {
		return False, err
	}
	rv, err := c.Right.Evaluate(e)
	if err != nil {
		return False, err
	}
	cmp, err := lv.Compare(rv)
	if err != nil {
		return False, err
	}
	if cmp == types.Unknown {
		return Unknown, nil
	}
	match := false
	switch c.Op {
	case Eq:
		match = cmp == types.Equal
	case Ne:
		match = cmp != types.Equal
	case Lt:
		match = cmp == types.Less
	case Le:
		match = cmp == types.Less || cmp == types.Equal
	case Gt:
		match = cmp == types.Greater
	case Ge:
		match = cmp == types.Greater || cmp == types.Equal
	}
	if match {
		return True, nil
	}
	return False, nil
}

// Evaluate presents the comparison's Tristate as a nullable INTEGER 0/1/
// NULL, for contexts (e.g. a scalar CASE arm) that want a Value rather than
// a Tristate — WHERE/ON/HAVING should call EvaluatePredicate directly.
func (c *Comparison) Evaluate(e *env.Environment) (types.Value, error) {
	t, err := c.EvaluatePredicate(e)
	if err != nil {
		return types.Value{}, err
	}
	switch t {
	case True:
		return types.NewInt(types.INTEGER, 1), nil
	case False:
		return types.NewInt(types.INTEGER, 0), nil
	default:
		return types.Null(types.INTEGER), nil
	}
}

func (c *Comparison) ColumnInfo(schemas []*schema.Schema) (types.DataType, error) {
	if _, err := c.Left.ColumnInfo(schemas); err != nil {
		return 0, err
	}
	if _, err := c.Right.ColumnInfo(schemas); err != nil {
		return 0, err
	}
	return types.INTEGER, nil
}

func (c *Comparison) AllSymbols() map[string]bool { return mergeSymbols(c.Left, c.Right) }

func (c *Comparison) Duplicate() Expression {
	return &Comparison{Op: c.Op, Left: c.Left.Duplicate(), Right: c.Right.Duplicate()}
}
