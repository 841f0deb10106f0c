package plan

// JoinType identifies which join semantics NestedLoopsJoin implements.
type JoinType int

const (
	Inner JoinType = iota
	LeftOuter
	RightOuter
	FullOuter
	Cross
)

func (j JoinType) String() string {
	switch j {
	case Inner:
		return "INNER"
	case LeftOuter:
		return "LEFT OUTER"
	case RightOuter:
		return "RIGHT OUTER"
	case FullOuter:
		return "FULL OUTER"
	case Cross:
		return "CROSS"
	default:
		return "UNKNOWN"
	}
}

// preservesLeft reports whether every row of the (original, pre-swap)
// left input is guaranteed to appear in the join's output at least once —
// true for LEFT OUTER and FULL OUTER, false otherwise. Nothing calls it:
// db/planner plans every outer join as an opaque leaf and passes no
// outer conjuncts down into either of its sides.
func (j JoinType) preservesLeft() bool {
	return j == LeftOuter || j == FullOuter
}

func (j JoinType) preservesRight() bool {
	return j == RightOuter || j == FullOuter
}
