package expr

import (
	"nanodb/db/env"
	"nanodb/db/schema"
	"nanodb/db/types"
)

// In implements "target IN (list...)" over a fixed literal/expression list;
// an IN subquery reaches here already drained into a literal list by
// db/engine. Three-valued: NULL target
// or a NULL member alongside a non-match both yield Unknown, matching SQL's
// rule that IN with any NULL can only ever prove True or Unknown.
type In struct {
	Target Expression
	List   []Expression
	Negate bool
}

func NewIn(target Expression, list []Expression, negate bool) *In {
	return &In{Target: target, List: list, Negate: negate}
}

func (n *In) EvaluatePredicate(e *env.Environment) (Tristate, error) {
	tv, err := n.Target.Evaluate(e)
	if err != nil {
		return False, err
	}
	if tv.IsNull() {
		return Unknown, nil
	}
	sawUnknown := false
	for _, item := range n.List {
		iv, err := item.Evaluate(e)
		if err != nil {
			return False, err
		}
		cmp, err := tv.Compare(iv)
		if err != nil {
			return False, err
		}
		if cmp == types.Unknown {
			sawUnknown = true
			continue
		}
		if cmp == types.Equal {
			return negateTristate(True, n.Negate), nil
		}
	}
	if sawUnknown {
		return Unknown, nil
	}
	return negateTristate(False, n.Negate), nil
}

func negateTristate(t Tristate, negate bool) Tristate {
	if !negate {
		return t
	}
	switch t {
	case True:
		return False
	case False:
		return True
	default:
		return Unknown
	}
}

func (n *In) Evaluate(e *env.Environment) (types.Value, error) {
	t, err := n.EvaluatePredicate(e)
	if err != nil {
		return types.Value{}, err
	}
	return tristateToValue(t), nil
}

func (n *In) ColumnInfo(schemas []*schema.Schema) (types.DataType, error) {
	if _, err := n.Target.ColumnInfo(schemas); err != nil {
		return 0, err
	}
	for _, item := range n.List {
		if _, err := item.ColumnInfo(schemas); err != nil {
			return 0, err
		}
	}
	return types.INTEGER, nil
}

func (n *In) AllSymbols() map[string]bool {
	return mergeSymbols(append([]Expression{n.Target}, n.List...)...)
}

func (n *In) Duplicate() Expression {
	list := make([]Expression, len(n.List))
	for i, item := range n.List {
		list[i] = item.Duplicate()
	}
	return &In{Target: n.Target.Duplicate(), List: list, Negate: n.Negate}
}
