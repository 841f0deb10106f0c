package engine

import (
	"nanodb/db/cost"
	"nanodb/db/errs"
	"nanodb/db/plan"
	"nanodb/db/schema"
	"nanodb/db/tuple"
)

// oneRowNode is the synthetic input for a FROM-less SELECT such as
// "SELECT 1 + 1" — a single, zero-column row, existing only so Project has
// a child to pull one row from.
type oneRowNode struct {
	sch      *schema.Schema
	consumed bool
}

func newOneRowNode() *oneRowNode { return &oneRowNode{sch: schema.New()} }

func (n *oneRowNode) Prepare() error          { return nil }
func (n *oneRowNode) Schema() *schema.Schema  { return n.sch }
func (n *oneRowNode) Cost() cost.PlanCost     { return cost.PlanCost{NumTuples: 1, AvgTupleSize: 0, CPUCost: 1, NumBlockIOs: 0} }

func (n *oneRowNode) Initialize() error {
	n.consumed = false
	return nil
}

func (n *oneRowNode) Next() (tuple.Tuple, error) {
	if n.consumed {
		return nil, plan.ErrEndOfStream
	}
	n.consumed = true
	return tuple.NewLiteral(), nil
}

func (n *oneRowNode) Mark() error              { return errs.PlanErrorf("oneRowNode: Mark not supported") }
func (n *oneRowNode) ResetToMark() error       { return errs.PlanErrorf("oneRowNode: ResetToMark not supported") }
func (n *oneRowNode) ResultsOrderedBy() []int  { return nil }
func (n *oneRowNode) Cleanup() error           { return nil }

var _ plan.Node = (*oneRowNode)(nil)
