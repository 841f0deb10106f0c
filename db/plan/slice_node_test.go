package plan

import (
	"nanodb/db/cost"
	"nanodb/db/schema"
	"nanodb/db/tuple"
)

// sliceNode is a minimal, fully in-memory Node over a fixed row set, used
// by this package's tests to drive joins/filters/sorts without a real
// storage engine underneath.
type sliceNode struct {
	base
	sch  *schema.Schema
	rows []tuple.Tuple
	pos  int
	mark int
}

func newSliceNode(sch *schema.Schema, rows ...tuple.Tuple) *sliceNode {
	return &sliceNode{sch: sch, rows: rows}
}

func (n *sliceNode) Prepare() error {
	if err := n.requirePrepare(); err != nil {
		return err
	}
	n.afterPrepare()
	return nil
}

func (n *sliceNode) Schema() *schema.Schema { return n.sch }
func (n *sliceNode) Cost() cost.PlanCost {
	return cost.PlanCost{NumTuples: float64(len(n.rows))}
}

func (n *sliceNode) Initialize() error {
	if err := n.requireInitialize(); err != nil {
		return err
	}
	n.pos = 0
	n.afterInitialize()
	return nil
}

func (n *sliceNode) Next() (tuple.Tuple, error) {
	if err := n.requireNext(); err != nil {
		return nil, err
	}
	if n.pos >= len(n.rows) {
		n.markExhausted()
		return nil, ErrEndOfStream
	}
	t := n.rows[n.pos]
	n.pos++
	return t, nil
}

func (n *sliceNode) Mark() error {
	if err := n.requireMark(); err != nil {
		return err
	}
	n.mark = n.pos
	n.afterMark()
	return nil
}

func (n *sliceNode) ResetToMark() error {
	if err := n.requireResetToMark(); err != nil {
		return err
	}
	n.pos = n.mark
	n.afterReset()
	return nil
}

func (n *sliceNode) ResultsOrderedBy() []int { return nil }

func (n *sliceNode) Cleanup() error {
	n.cleanup()
	return nil
}
