package plan

import (
	"nanodb/db/cost"
	"nanodb/db/env"
	"nanodb/db/expr"
	"nanodb/db/schema"
	"nanodb/db/tuple"
)

// SimpleFilter wraps a single child node, pulling its tuples and passing
// through only those for which Predicate evaluates TRUE (UNKNOWN and FALSE
// are both rejected).
type SimpleFilter struct {
	base
	Child       Node
	Predicate   expr.Expression
	Selectivity float64 // estimate in [0,1]; 1 means "no estimate, assume unfiltered"

	sch *schema.Schema
	cst cost.PlanCost
	e   *env.Environment
}

func NewSimpleFilter(child Node, predicate expr.Expression, selectivity float64) *SimpleFilter {
	return &SimpleFilter{Child: child, Predicate: predicate, Selectivity: selectivity, e: env.New()}
}

func (f *SimpleFilter) Prepare() error {
	if err := f.requirePrepare(); err != nil {
		return err
	}
	if err := f.Child.Prepare(); err != nil {
		return err
	}
	f.sch = f.Child.Schema()
	if _, err := f.Predicate.ColumnInfo([]*schema.Schema{f.sch}); err != nil {
		return err
	}
	childCost := f.Child.Cost()
	f.cst = cost.PlanCost{
		NumTuples:    childCost.NumTuples * f.Selectivity,
		AvgTupleSize: childCost.AvgTupleSize,
		CPUCost:      childCost.CPUCost + childCost.NumTuples,
		NumBlockIOs:  childCost.NumBlockIOs,
	}
	f.afterPrepare()
	return nil
}

func (f *SimpleFilter) Schema() *schema.Schema { return f.sch }
func (f *SimpleFilter) Cost() cost.PlanCost    { return f.cst }

func (f *SimpleFilter) Initialize() error {
	if err := f.requireInitialize(); err != nil {
		return err
	}
	if err := f.Child.Initialize(); err != nil {
		return err
	}
	f.afterInitialize()
	return nil
}

func (f *SimpleFilter) Next() (tuple.Tuple, error) {
	if err := f.requireNext(); err != nil {
		return nil, err
	}
	for {
		t, err := f.Child.Next()
		if err == ErrEndOfStream {
			f.markExhausted()
			return nil, ErrEndOfStream
		}
		if err != nil {
			return nil, err
		}
		f.e.Clear()
		f.e.AddTuple(f.sch, t)
		ok, err := expr.EvaluatePredicate(f.Predicate, f.e)
		if err != nil {
			return nil, err
		}
		if ok {
			return t, nil
		}
	}
}

func (f *SimpleFilter) Mark() error {
	if err := f.requireMark(); err != nil {
		return err
	}
	if err := f.Child.Mark(); err != nil {
		return err
	}
	f.afterMark()
	return nil
}

func (f *SimpleFilter) ResetToMark() error {
	if err := f.requireResetToMark(); err != nil {
		return err
	}
	if err := f.Child.ResetToMark(); err != nil {
		return err
	}
	f.afterReset()
	return nil
}

func (f *SimpleFilter) ResultsOrderedBy() []int { return f.Child.ResultsOrderedBy() }

func (f *SimpleFilter) Cleanup() error {
	err := f.Child.Cleanup()
	f.cleanup()
	return err
}
