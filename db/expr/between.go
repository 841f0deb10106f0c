package expr

// NewBetween desugars "target BETWEEN low AND high" into
// "target >= low AND target <= high", duplicating target so each side owns
// its own copy rather than aliasing the same node.
func NewBetween(target, low, high Expression, negate bool) Expression {
	ge := NewComparison(Ge, target, low)
	le := NewComparison(Le, target.Duplicate(), high)
	and := NewAnd(ge, le)
	if !negate {
		return and
	}
	return NewNot(and)
}
