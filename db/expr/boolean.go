package expr

import (
	"nanodb/db/env"
	"nanodb/db/schema"
	"nanodb/db/types"
)

// BoolOp identifies a boolean connective.
type BoolOp int

const (
	And BoolOp = iota
	Or
)

// BooleanExpr is an N-ary AND/OR over Terms. Constructing AND(a, b) where a
// is already a BooleanExpr of op And must produce one node holding a's Terms
// followed by b rather than nesting a new AND node — use NewAnd/NewOr, never a literal
// struct, to preserve this.
type BooleanExpr struct {
	Op    BoolOp
	Terms []Expression
}

// NewAnd builds an AND of left and right, flattening: if left is already an
// AND, right is appended to its term list instead of wrapping it in a new
// node. Same for right being an AND, to keep AND trees maximally flat
// regardless of build order.
func NewAnd(left, right Expression) *BooleanExpr {
	return newFlattened(And, left, right)
}

// NewOr builds an OR of left and right with the same flattening rule.
func NewOr(left, right Expression) *BooleanExpr {
	return newFlattened(Or, left, right)
}

func newFlattened(op BoolOp, left, right Expression) *BooleanExpr {
	var terms []Expression
	if b, ok := left.(*BooleanExpr); ok && b.Op == op {
		terms = append(terms, b.Terms...)
	} else {
		terms = append(terms, left)
	}
	if b, ok := right.(*BooleanExpr); ok && b.Op == op {
		terms = append(terms, b.Terms...)
	} else {
		terms = append(terms, right)
	}
	return &BooleanExpr{Op: op, Terms: terms}
}

// NewAndN builds a flattened N-ary AND from a slice of conjuncts, used by
// the planner when reassembling a WHERE clause from its extracted
// conjuncts.
func NewAndN(terms ...Expression) Expression {
	return flattenN(And, terms)
}

func NewOrN(terms ...Expression) Expression {
	return flattenN(Or, terms)
}

func flattenN(op BoolOp, terms []Expression) Expression {
	if len(terms) == 0 {
		return &Literal{Value: types.NewInt(types.INTEGER, boolToInt(op == And))}
	}
	if len(terms) == 1 {
		return terms[0]
	}
	out := &BooleanExpr{Op: op}
	for _, t := range terms {
		if b, ok := t.(*BooleanExpr); ok && b.Op == op {
			out.Terms = append(out.Terms, b.Terms...)
		} else {
			out.Terms = append(out.Terms, t)
		}
	}
	return out
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (b *BooleanExpr) EvaluatePredicate(e *env.Environment) (Tristate, error) {
	if b.Op == And {
		return evalAnd(b.Terms, e)
	}
	return evalOr(b.Terms, e)
}

// evalAnd implements three-valued AND: False dominates (short-circuits to
// False even if another term is Unknown); otherwise Unknown dominates True.
func evalAnd(terms []Expression, e *env.Environment) (Tristate, error) {
	sawUnknown := false
	for _, t := range terms {
		v, err := EvaluatePredicateTri(t, e)
		if err != nil {
			return False, err
		}
		switch v {
		case False:
			return False, nil
		case Unknown:
			sawUnknown = true
		}
	}
	if sawUnknown {
		return Unknown, nil
	}
	return True, nil
}

// evalOr implements three-valued OR: True dominates; otherwise Unknown
// dominates False.
func evalOr(terms []Expression, e *env.Environment) (Tristate, error) {
	sawUnknown := false
	for _, t := range terms {
		v, err := EvaluatePredicateTri(t, e)
		if err != nil {
			return False, err
		}
		switch v {
		case True:
			return True, nil
		case Unknown:
			sawUnknown = true
		}
	}
	if sawUnknown {
		return Unknown, nil
	}
	return False, nil
}

// EvaluatePredicateTri evaluates any Expression in boolean position,
// returning its full Tristate rather than folding Unknown to False — used
// internally by AND/OR/NOT to preserve three-valued propagation through
// nested boolean expressions.
func EvaluatePredicateTri(ex Expression, e *env.Environment) (Tristate, error) {
	if p, ok := ex.(Predicate); ok {
		return p.EvaluatePredicate(e)
	}
	v, err := ex.Evaluate(e)
	if err != nil {
		return False, err
	}
	if v.IsNull() {
		return Unknown, nil
	}
	if v.Int() != 0 {
		return True, nil
	}
	return False, nil
}

func (b *BooleanExpr) Evaluate(e *env.Environment) (types.Value, error) {
	t, err := b.EvaluatePredicate(e)
	if err != nil {
		return types.Value{}, err
	}
	return tristateToValue(t), nil
}

func tristateToValue(t Tristate) types.Value {
	switch t {
	case True:
		return types.NewInt(types.INTEGER, 1)
	case False:
		return types.NewInt(types.INTEGER, 0)
	default:
		return types.Null(types.INTEGER)
	}
}

func (b *BooleanExpr) ColumnInfo(schemas []*schema.Schema) (types.DataType, error) {
	for _, t := range b.Terms {
		if _, err := t.ColumnInfo(schemas); err != nil {
			return 0, err
		}
	}
	return types.INTEGER, nil
}

func (b *BooleanExpr) AllSymbols() map[string]bool { return mergeSymbols(b.Terms...) }

func (b *BooleanExpr) Duplicate() Expression {
	terms := make([]Expression, len(b.Terms))
	for i, t := range b.Terms {
		terms[i] = t.Duplicate()
	}
	return &BooleanExpr{Op: b.Op, Terms: terms}
}

// Not is logical negation; three-valued (Unknown stays Unknown).
type Not struct {
	Term Expression
}

func NewNot(term Expression) *Not { return &Not{Term: term} }

func (n *Not) EvaluatePredicate(e *env.Environment) (Tristate, error) {
	t, err := EvaluatePredicateTri(n.Term, e)
	if err != nil {
		return False, err
	}
	switch t {
	case True:
		return False, nil
	case False:
		return True, nil
	default:
		return Unknown, nil
	}
}

func (n *Not) Evaluate(e *env.Environment) (types.Value, error) {
	t, err := n.EvaluatePredicate(e)
	if err != nil {
		return types.Value{}, err
	}
	return tristateToValue(t), nil
}

func (n *Not) ColumnInfo(schemas []*schema.Schema) (types.DataType, error) {
	return n.Term.ColumnInfo(schemas)
}

func (n *Not) AllSymbols() map[string]bool { return n.Term.AllSymbols() }

func (n *Not) Duplicate() Expression { return &Not{Term: n.Term.Duplicate()} }
