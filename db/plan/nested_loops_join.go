package plan

import (
	"nanodb/db/cost"
	"nanodb/db/env"
	"nanodb/db/errs"
	"nanodb/db/expr"
	"nanodb/db/schema"
	"nanodb/db/tuple"
	"nanodb/db/types"
)

// NestedLoopsJoin is the one join physical operator, implementing
// INNER, LEFT OUTER, RIGHT OUTER, FULL OUTER, and CROSS uniformly.
// RIGHT OUTER is executed internally as a schema-swapped LEFT OUTER (the
// original right child drives the outer loop, the original left child is
// re-driven as the inner loop); output tuples are swapped back to
// left-then-right column order before being returned, so callers never see
// the internal rotation. Predicate may be nil, meaning "always true" (a
// CROSS join, or a comma join with no ON/USING/NATURAL condition).
type NestedLoopsJoin struct {
	base
	Left, Right Node
	Type        JoinType
	Predicate   expr.Expression

	publicSchema *schema.Schema
	cst          cost.PlanCost

	outer, inner  Node
	effectiveType JoinType
	swapped       bool

	nullOuter *tuple.Literal
	nullInner *tuple.Literal

	e *env.Environment

	outerTuple   tuple.Tuple
	outerMatched bool
	innerPos     int
	matchedInner map[int]bool

	phase         joinPhase
	secondPassIdx int

	// mark/reset support: outerMatched as of the most recent Mark; the
	// outer child's own Mark holds the position (see Mark).
	markOuterMatched bool
}

type joinPhase int

const (
	phaseMain joinPhase = iota
	phaseSecondPass
	phaseDone
)

func NewNestedLoopsJoin(left, right Node, joinType JoinType, predicate expr.Expression) *NestedLoopsJoin {
	return &NestedLoopsJoin{Left: left, Right: right, Type: joinType, Predicate: predicate, e: env.New()}
}

func (j *NestedLoopsJoin) Prepare() error {
	if err := j.requirePrepare(); err != nil {
		return err
	}
	if err := j.Left.Prepare(); err != nil {
		return err
	}
	if err := j.Right.Prepare(); err != nil {
		return err
	}

	if j.Type == RightOuter {
		j.swapped = true
		j.outer, j.inner = j.Right, j.Left
		j.effectiveType = LeftOuter
	} else {
		j.swapped = false
		j.outer, j.inner = j.Left, j.Right
		j.effectiveType = j.Type
	}

	j.publicSchema = j.Left.Schema().Join(j.Right.Schema())

	if j.Predicate != nil {
		internalSchema := j.outer.Schema().Join(j.inner.Schema())
		if _, err := j.Predicate.ColumnInfo([]*schema.Schema{internalSchema}); err != nil {
			return err
		}
	}

	j.nullOuter = nullTuple(j.outer.Schema())
	j.nullInner = nullTuple(j.inner.Schema())

	outerCost := j.outer.Cost()
	innerCost := j.inner.Cost()
	j.cst = cost.PlanCost{
		NumTuples:    outerCost.NumTuples * innerCost.NumTuples,
		AvgTupleSize: outerCost.AvgTupleSize + innerCost.AvgTupleSize,
		CPUCost:      outerCost.CPUCost + outerCost.NumTuples*innerCost.CPUCost,
		NumBlockIOs:  outerCost.NumBlockIOs + outerCost.NumTuples*innerCost.NumBlockIOs,
	}
	j.afterPrepare()
	return nil
}

func nullTuple(s *schema.Schema) *tuple.Literal {
	vals := make([]types.Value, s.Len())
	for i, c := range s.Columns() {
		vals[i] = types.Null(c.Type)
	}
	return tuple.NewLiteral(vals...)
}

func (j *NestedLoopsJoin) Schema() *schema.Schema { return j.publicSchema }
func (j *NestedLoopsJoin) Cost() cost.PlanCost    { return j.cst }

func (j *NestedLoopsJoin) Initialize() error {
	if err := j.requireInitialize(); err != nil {
		return err
	}
	if err := j.outer.Initialize(); err != nil {
		return err
	}
	j.outerTuple = nil
	j.phase = phaseMain
	j.matchedInner = make(map[int]bool)
	j.afterInitialize()
	return nil
}

func (j *NestedLoopsJoin) preserveOuter() bool {
	return j.effectiveType == LeftOuter || j.effectiveType == FullOuter
}

func (j *NestedLoopsJoin) preserveInner() bool {
	return j.effectiveType == FullOuter
}

func (j *NestedLoopsJoin) Next() (tuple.Tuple, error) {
	if err := j.requireNext(); err != nil {
		return nil, err
	}
	for {
		switch j.phase {
		case phaseMain:
			t, err := j.nextFromMainLoop()
			if err == errAdvanceOuter {
				continue
			}
			if err == ErrEndOfStream {
				if err := j.startSecondPass(); err != nil {
					return nil, err
				}
				continue
			}
			if err != nil {
				return nil, err
			}
			return t, nil
		case phaseSecondPass:
			t, err := j.nextFromSecondPass()
			if err == ErrEndOfStream {
				j.markExhausted()
				return nil, ErrEndOfStream
			}
			return t, err
		default:
			j.markExhausted()
			return nil, ErrEndOfStream
		}
	}
}

// errAdvanceOuter is an internal control-flow sentinel meaning "try the
// main loop again", never returned from Next itself.
var errAdvanceOuter = errs.PlanErrorf("advance outer")

func (j *NestedLoopsJoin) nextFromMainLoop() (tuple.Tuple, error) {
	if j.outerTuple == nil {
		t, err := j.outer.Next()
		if err == ErrEndOfStream {
			return nil, ErrEndOfStream
		}
		if err != nil {
			return nil, err
		}
		j.outerTuple = t
		j.outerMatched = false
		if err := j.inner.Initialize(); err != nil {
			return nil, err
		}
		j.innerPos = 0
	}

	for {
		it, err := j.inner.Next()
		if err == ErrEndOfStream {
			if err := j.inner.Cleanup(); err != nil {
				return nil, err
			}
			padRow, hasPad := j.padIfUnmatched()
			j.outerTuple = nil
			if hasPad {
				return padRow, nil
			}
			return nil, errAdvanceOuter
		}
		if err != nil {
			return nil, err
		}
		matched, err := j.evaluate(j.outerTuple, it)
		if err != nil {
			return nil, err
		}
		pos := j.innerPos
		j.innerPos++
		if !matched {
			continue
		}
		j.outerMatched = true
		if j.preserveInner() {
			j.matchedInner[pos] = true
		}
		return j.combine(j.outerTuple, it), nil
	}
}

func (j *NestedLoopsJoin) padIfUnmatched() (tuple.Tuple, bool) {
	if j.outerMatched || !j.preserveOuter() {
		return nil, false
	}
	return j.combine(j.outerTuple, j.nullInner), true
}

func (j *NestedLoopsJoin) evaluate(outerT, innerT tuple.Tuple) (bool, error) {
	if j.Predicate == nil {
		return true, nil
	}
	j.e.Clear()
	j.e.AddTuple(j.outer.Schema(), outerT)
	j.e.AddTuple(j.inner.Schema(), innerT)
	return expr.EvaluatePredicate(j.Predicate, j.e)
}

// combine builds the output tuple in Left-then-Right column order
// regardless of whether the internal loop is swapped.
func (j *NestedLoopsJoin) combine(outerT, innerT tuple.Tuple) tuple.Tuple {
	if j.swapped {
		return tuple.Concat(innerT, outerT)
	}
	return tuple.Concat(outerT, innerT)
}

func (j *NestedLoopsJoin) startSecondPass() error {
	if !j.preserveInner() {
		j.phase = phaseDone
		return nil
	}
	if err := j.inner.Initialize(); err != nil {
		return err
	}
	j.secondPassIdx = 0
	j.phase = phaseSecondPass
	return nil
}

func (j *NestedLoopsJoin) nextFromSecondPass() (tuple.Tuple, error) {
	for {
		it, err := j.inner.Next()
		if err == ErrEndOfStream {
			j.phase = phaseDone
			return nil, ErrEndOfStream
		}
		if err != nil {
			return nil, err
		}
		idx := j.secondPassIdx
		j.secondPassIdx++
		if j.matchedInner[idx] {
			continue
		}
		return j.combine(j.nullOuter, it), nil
	}
}

// Mark/ResetToMark bookmark only the outer child's position. ResetToMark
// drops the current outer tuple and resumes with the outer row after the
// marked one, so a replay is exact only when Mark was called while no
// outer tuple was in progress (for example right after Initialize); this
// is not checked. Partial inner-loop progress is never buffered.
func (j *NestedLoopsJoin) Mark() error {
	if err := j.requireMark(); err != nil {
		return err
	}
	if j.phase != phaseMain {
		return errs.PlanErrorf("NestedLoopsJoin: Mark is only supported during the main join phase")
	}
	if err := j.outer.Mark(); err != nil {
		return err
	}
	j.markOuterMatched = j.outerMatched
	j.afterMark()
	return nil
}

func (j *NestedLoopsJoin) ResetToMark() error {
	if err := j.requireResetToMark(); err != nil {
		return err
	}
	if err := j.outer.ResetToMark(); err != nil {
		return err
	}
	j.outerTuple = nil
	j.outerMatched = j.markOuterMatched
	j.afterReset()
	return nil
}

func (j *NestedLoopsJoin) ResultsOrderedBy() []int { return nil }

func (j *NestedLoopsJoin) Cleanup() error {
	errOuter := j.outer.Cleanup()
	errInner := j.inner.Cleanup()
	j.cleanup()
	if errOuter != nil {
		return errOuter
	}
	return errInner
}
