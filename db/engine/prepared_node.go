package engine

import (
	"nanodb/db/cost"
	"nanodb/db/plan"
	"nanodb/db/schema"
	"nanodb/db/tuple"
)

// preparedNode wraps a plan.Node that has already run through its own
// Prepare (a subquery or derived table planned independently, so its
// Schema is known before the surrounding statement's plan tree exists),
// presenting it as a fresh Node whose own Prepare is just a state flip
// rather than a second call into the wrapped node — Prepare may only run
// once, from a node's initial Fresh state, and the wrapped node already
// spent its one call. Every other operation forwards straight through.
type preparedNode struct {
	inner plan.Node
	sch   *schema.Schema
	cst   cost.PlanCost
}

func newPreparedNode(inner plan.Node) *preparedNode {
	return &preparedNode{inner: inner, sch: inner.Schema(), cst: inner.Cost()}
}

func (p *preparedNode) Prepare() error           { return nil }
func (p *preparedNode) Schema() *schema.Schema   { return p.sch }
func (p *preparedNode) Cost() cost.PlanCost      { return p.cst }
func (p *preparedNode) Initialize() error        { return p.inner.Initialize() }
func (p *preparedNode) Next() (tuple.Tuple, error) { return p.inner.Next() }
func (p *preparedNode) Mark() error              { return p.inner.Mark() }
func (p *preparedNode) ResetToMark() error       { return p.inner.ResetToMark() }
func (p *preparedNode) ResultsOrderedBy() []int  { return p.inner.ResultsOrderedBy() }
func (p *preparedNode) Cleanup() error           { return p.inner.Cleanup() }

var _ plan.Node = (*preparedNode)(nil)

// prepareStage runs n's own Prepare (exactly once, as required) and wraps
// the result so a later stage built on top of it can Prepare safely
// without re-entering n.
func prepareStage(n plan.Node) (plan.Node, error) {
	if err := n.Prepare(); err != nil {
		return nil, err
	}
	return newPreparedNode(n), nil
}
