// Package planner implements the FROM-clause analyser and the System-R
// style dynamic-programming join-order planner built on top of it.
package planner

import (
	"nanodb/db/expr"
	"nanodb/db/plan"
)

// FromItem is a node in the parsed FROM-clause tree, before planning.
type FromItem interface {
	fromItemNode()
}

// TableRef names a base table, optionally aliased.
type TableRef struct {
	Name  string
	Alias string
}

func (*TableRef) fromItemNode() {}

// DerivedTable wraps an already-planned subquery node (a parenthesized
// SELECT in the FROM clause), aliased as Alias.
type DerivedTable struct {
	Alias string
	Plan  plan.Node
}

func (*DerivedTable) fromItemNode() {}

// JoinItem is an explicit JOIN between two FromItems. Inner and Cross
// joins are "reorderable" — transparent to leaf extraction, their operands
// flow into the surrounding DP problem. Every other join type is opaque:
// it is planned once, eagerly, and the result is exposed to any
// surrounding DP problem as a single leaf.
type JoinItem struct {
	Type    plan.JoinType
	Left    FromItem
	Right   FromItem
	On      expr.Expression // nil for CROSS, NATURAL, or USING-derived joins
	Using   []string
	Natural bool
}

func (*JoinItem) fromItemNode() {}

// reorderable reports whether a join's operands may flow straight into the
// surrounding DP problem as independent leaves, with the join condition
// folded into the conjunct set. NATURAL and USING joins are never
// reorderable even when Inner: their condition isn't carried in On (it's
// synthesized from the immediate left/right schemas), and flattening would
// require re-deriving that condition against whatever schema the DP search
// eventually assembles rather than the join's own operands — so they are
// planned eagerly as a single opaque leaf instead, the same as any other
// non-reorderable join.
func (j *JoinItem) reorderable() bool {
	if j.Natural || len(j.Using) > 0 {
		return false
	}
	return j.Type == plan.Inner || j.Type == plan.Cross
}

// TableProvider resolves a base table name to a storage handle, used when
// a leaf turns out to be a plain TableRef.
type TableProvider interface {
	ResolveTable(name string) (plan.TableHandle, error)
}
