package plan

import (
	"nanodb/db/cost"
	"nanodb/db/schema"
	"nanodb/db/tuple"
)

// Limit passes through at most N of its child's rows, then reports
// end-of-stream without pulling any further — it never buffers, so a LIMIT
// on top of an otherwise-streaming plan stays streaming.
type Limit struct {
	base
	Child Node
	N     int64

	sch     *schema.Schema
	cst     cost.PlanCost
	emitted int64
}

func NewLimit(child Node, n int64) *Limit {
	return &Limit{Child: child, N: n}
}

func (l *Limit) Prepare() error {
	if err := l.requirePrepare(); err != nil {
		return err
	}
	if err := l.Child.Prepare(); err != nil {
		return err
	}
	l.sch = l.Child.Schema()
	childCost := l.Child.Cost()
	n := childCost.NumTuples
	if float64(l.N) < n {
		n = float64(l.N)
	}
	l.cst = cost.PlanCost{
		NumTuples:    n,
		AvgTupleSize: childCost.AvgTupleSize,
		CPUCost:      childCost.CPUCost,
		NumBlockIOs:  childCost.NumBlockIOs,
	}
	l.afterPrepare()
	return nil
}

func (l *Limit) Schema() *schema.Schema { return l.sch }
func (l *Limit) Cost() cost.PlanCost    { return l.cst }

func (l *Limit) Initialize() error {
	if err := l.requireInitialize(); err != nil {
		return err
	}
	if err := l.Child.Initialize(); err != nil {
		return err
	}
	l.emitted = 0
	l.afterInitialize()
	return nil
}

func (l *Limit) Next() (tuple.Tuple, error) {
	if err := l.requireNext(); err != nil {
		return nil, err
	}
	if l.emitted >= l.N {
		l.markExhausted()
		return nil, ErrEndOfStream
	}
	t, err := l.Child.Next()
	if err == ErrEndOfStream {
		l.markExhausted()
		return nil, ErrEndOfStream
	}
	if err != nil {
		return nil, err
	}
	l.emitted++
	return t, nil
}

func (l *Limit) Mark() error {
	if err := l.requireMark(); err != nil {
		return err
	}
	if err := l.Child.Mark(); err != nil {
		return err
	}
	l.afterMark()
	return nil
}

func (l *Limit) ResetToMark() error {
	if err := l.requireResetToMark(); err != nil {
		return err
	}
	if err := l.Child.ResetToMark(); err != nil {
		return err
	}
	l.afterReset()
	return nil
}

func (l *Limit) ResultsOrderedBy() []int { return l.Child.ResultsOrderedBy() }

func (l *Limit) Cleanup() error {
	err := l.Child.Cleanup()
	l.cleanup()
	return err
}
