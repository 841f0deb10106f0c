package expr

import (
	"nanodb/db/env"
	"nanodb/db/schema"
	"nanodb/db/types"
)

// IsNull implements "target IS [NOT] NULL". Unlike Comparison, this is
// always two-valued — testing nullity itself can never be Unknown.
type IsNull struct {
	Target Expression
	Negate bool
}

func NewIsNull(target Expression, negate bool) *IsNull {
	return &IsNull{Target: target, Negate: negate}
}

func (n *IsNull) EvaluatePredicate(e *env.Environment) (Tristate, error) {
	v, err := n.Target.Evaluate(e)
	if err != nil {
		return False, err
	}
	result := v.IsNull()
	if n.Negate {
		result = !result
	}
	if result {
		return True, nil
	}
	return False, nil
}

func (n *IsNull) Evaluate(e *env.Environment) (types.Value, error) {
	t, err := n.EvaluatePredicate(e)
	if err != nil {
		return types.Value{}, err
	}
	return tristateToValue(t), nil
}

func (n *IsNull) ColumnInfo(schemas []*schema.Schema) (types.DataType, error) {
	if _, err := n.Target.ColumnInfo(schemas); err != nil {
		return 0, err
	}
	return types.INTEGER, nil
}

func (n *IsNull) AllSymbols() map[string]bool { return n.Target.AllSymbols() }

func (n *IsNull) Duplicate() Expression {
	return &IsNull{Target: n.Target.Duplicate(), Negate: n.Negate}
}
