package planner

import (
	"nanodb/db/cost"
	"nanodb/db/errs"
	"nanodb/db/expr"
	"nanodb/db/plan"
	"nanodb/db/schema"
)

// Leaf carries a fully built but not yet Prepared plan node together with
// the schema and cost estimate it produces. Cost estimation during planning
// works entirely from these plain numbers, never by calling a node's own
// Prepare — that call is made exactly once, by whichever caller ultimately
// executes the chosen plan, and Prepare can only run from a node's initial
// Fresh state.
type Leaf struct {
	Plan   plan.Node
	Schema *schema.Schema
	Cost   cost.PlanCost
}

// FlattenConjuncts splits a (possibly already-ANDed) expression into its
// top-level AND terms. A nil input yields no conjuncts.
func FlattenConjuncts(e expr.Expression) []expr.Expression {
	if e == nil {
		return nil
	}
	if b, ok := e.(*expr.BooleanExpr); ok && b.Op == expr.And {
		out := make([]expr.Expression, len(b.Terms))
		copy(out, b.Terms)
		return out
	}
	return []expr.Expression{e}
}

// unknownCost is the estimate used whenever no statistics are available yet
// (a derived table or an opaque outer-join subtree, whose real cost isn't
// known until its own plan is prepared) — matches cost.DefaultEstimator's
// "no better information" stance.
var unknownCost = cost.PlanCost{NumTuples: 100, AvgTupleSize: 64, CPUCost: 100, NumBlockIOs: 10}

// estimateJoinCost mirrors plan.NestedLoopsJoin.Prepare's own cost formula,
// so the DP search can compare candidate join orders without constructing
// and Preparing a real node for every candidate it rejects.
func estimateJoinCost(outer, inner cost.PlanCost) cost.PlanCost {
	return cost.PlanCost{
		NumTuples:    outer.NumTuples * inner.NumTuples,
		AvgTupleSize: outer.AvgTupleSize + inner.AvgTupleSize,
		CPUCost:      outer.CPUCost + outer.NumTuples*inner.CPUCost,
		NumBlockIOs:  outer.NumBlockIOs + outer.NumTuples*inner.NumBlockIOs,
	}
}

// estimateFilterCost mirrors plan.SimpleFilter.Prepare's cost formula.
func estimateFilterCost(child cost.PlanCost, selectivity float64) cost.PlanCost {
	return cost.PlanCost{
		NumTuples:    child.NumTuples * selectivity,
		AvgTupleSize: child.AvgTupleSize,
		CPUCost:      child.CPUCost + child.NumTuples,
		NumBlockIOs:  child.NumBlockIOs,
	}
}

// PlanFromClause plans an entire FROM clause (with WHERE conjuncts layered
// in), returning the root as an unprepared Leaf. extraWhere holds conjuncts
// from the statement's own WHERE clause that aren't tied to any particular
// join's ON condition — they participate in the same DP/pushdown pass as
// the join-internal conjuncts for the topmost reorderable region.
func PlanFromClause(provider TableProvider, root FromItem, extraWhere expr.Expression) (Leaf, error) {
	leaves, conjuncts, err := extractLeaves(provider, root)
	if err != nil {
		return Leaf{}, err
	}
	conjuncts = append(conjuncts, FlattenConjuncts(extraWhere)...)

	if len(leaves) == 0 {
		return Leaf{}, errs.PlanErrorf("FROM clause produced no leaves")
	}
	if len(leaves) == 1 {
		return applyFilter(leaves[0], conjuncts), nil
	}
	return runDPPlanner(leaves, conjuncts)
}

// extractLeaves walks a FromItem tree, flattening through reorderable
// (INNER/CROSS) joins and collecting their ON conjuncts, while treating
// every other construct (a base table, a derived table, or an opaque
// outer join) as a single leaf, fully planned via planOpaque.
func extractLeaves(provider TableProvider, item FromItem) ([]Leaf, []expr.Expression, error) {
	if j, ok := item.(*JoinItem); ok && j.reorderable() {
		leftLeaves, leftConjuncts, err := extractLeaves(provider, j.Left)
		if err != nil {
			return nil, nil, err
		}
		rightLeaves, rightConjuncts, err := extractLeaves(provider, j.Right)
		if err != nil {
			return nil, nil, err
		}
		leaves := append(leftLeaves, rightLeaves...)
		conjuncts := append(leftConjuncts, rightConjuncts...)
		conjuncts = append(conjuncts, FlattenConjuncts(j.On)...)
		return leaves, conjuncts, nil
	}

	leaf, err := planOpaque(provider, item)
	if err != nil {
		return nil, nil, err
	}
	return []Leaf{leaf}, nil, nil
}

// planOpaque fully plans a FromItem that is not itself a reorderable join:
// a base table, a derived table, or an outer join (whose own operands may
// still be independently DP-planned, via a nested call to PlanFromClause).
// None of the returned nodes are Prepared.
func planOpaque(provider TableProvider, item FromItem) (Leaf, error) {
	switch it := item.(type) {
	case *TableRef:
		handle, err := provider.ResolveTable(it.Name)
		if err != nil {
			return Leaf{}, err
		}
		stats := handle.Stats()
		tableCost := cost.PlanCost{
			NumTuples:    stats.NumTuples,
			AvgTupleSize: stats.AvgTupleSize,
			CPUCost:      stats.NumTuples,
			NumBlockIOs:  stats.NumDataPages,
		}
		scan := plan.NewFileScan(handle)
		sch := handle.TableSchema().Schema
		if it.Alias == "" || it.Alias == it.Name {
			return Leaf{Plan: scan, Schema: sch, Cost: tableCost}, nil
		}
		return Leaf{Plan: plan.NewRename(scan, it.Alias), Schema: sch.WithQualifier(it.Alias), Cost: tableCost}, nil

	case *DerivedTable:
		return Leaf{Plan: it.Plan, Schema: it.Plan.Schema(), Cost: unknownCost}, nil

	case *JoinItem:
		left, err := PlanFromClause(provider, it.Left, nil)
		if err != nil {
			return Leaf{}, err
		}
		right, err := PlanFromClause(provider, it.Right, nil)
		if err != nil {
			return Leaf{}, err
		}

		if it.Natural || len(it.Using) > 0 {
			names := joinColumnNames(left.Schema, right.Schema, it.Using, it.Natural)
			on := synthesizeEquiJoinOn(left.Schema, right.Schema, names)
			joinNode := plan.NewNestedLoopsJoin(left.Plan, right.Plan, it.Type, on)
			coalesced, sch := coalesceJoinColumns(joinNode, left.Schema, right.Schema, names)
			return Leaf{Plan: coalesced, Schema: sch, Cost: unknownCost}, nil
		}

		joinNode := plan.NewNestedLoopsJoin(left.Plan, right.Plan, it.Type, it.On)
		return Leaf{Plan: joinNode, Schema: left.Schema.Join(right.Schema), Cost: unknownCost}, nil

	default:
		return Leaf{}, errs.PlanErrorf("unknown FROM-clause item %T", item)
	}
}

// joinColumnNames returns the column names a NATURAL JOIN or USING(...)
// join condition is built from: the explicit USING list, or every column
// name shared by both sides for NATURAL.
func joinColumnNames(left, right *schema.Schema, using []string, natural bool) []string {
	if natural {
		return sharedColumnNames(left, right)
	}
	return using
}

// synthesizeEquiJoinOn builds the AND of column-equality comparisons a
// NATURAL JOIN or USING(...) join implies: one equality per name in names.
// Each side of the generated comparison is qualified with that column's own
// qualifier from its source schema, so the comparison stays unambiguous
// once evaluated against the concatenated left+right schema, even though
// both sides share a bare name.
func synthesizeEquiJoinOn(left, right *schema.Schema, names []string) expr.Expression {
	var terms []expr.Expression
	for _, name := range names {
		leftIdx, err := left.ColumnIndex(name)
		if err != nil {
			continue
		}
		rightIdx, err := right.ColumnIndex(name)
		if err != nil {
			continue
		}
		terms = append(terms, expr.NewComparison(expr.Eq,
			expr.NewColumnRef(left.Column(leftIdx).Qualifier, name),
			expr.NewColumnRef(right.Column(rightIdx).Qualifier, name)))
	}
	if len(terms) == 0 {
		return nil
	}
	return expr.NewAndN(terms...)
}

func sharedColumnNames(left, right *schema.Schema) []string {
	rightNames := map[string]bool{}
	for _, c := range right.Columns() {
		rightNames[c.Name] = true
	}
	var out []string
	for _, c := range left.Columns() {
		if rightNames[c.Name] {
			out = append(out, c.Name)
		}
	}
	return out
}

// coalesceJoinColumns wraps a NATURAL/USING join's node in a Project that
// emits each joined-on column once (taken from the left side), followed by
// every remaining left column, then every remaining right column — the
// coalesced output SELECT * over such a join must produce, instead of the
// full left+right concatenation a plain INNER/CROSS/explicit-ON join keeps.
func coalesceJoinColumns(joinNode plan.Node, left, right *schema.Schema, names []string) (plan.Node, *schema.Schema) {
	shared := make(map[string]bool, len(names))
	for _, n := range names {
		shared[n] = true
	}

	var items []plan.ProjectItem
	var cols []schema.ColumnDef
	add := func(col schema.ColumnDef) {
		items = append(items, plan.ProjectItem{
			Expr:      expr.NewColumnRef(col.Qualifier, col.Name),
			Alias:     col.Name,
			Qualifier: col.Qualifier,
		})
		cols = append(cols, col)
	}

	for _, name := range names {
		idx, err := left.ColumnIndex(name)
		if err != nil || idx < 0 {
			continue
		}
		add(left.Column(idx))
	}
	for _, col := range left.Columns() {
		if !shared[col.Name] {
			add(col)
		}
	}
	for _, col := range right.Columns() {
		if !shared[col.Name] {
			add(col)
		}
	}

	return plan.NewProject(joinNode, items), schema.New(cols...)
}

// applyFilter wraps a leaf's plan in a SimpleFilter over the AND of
// conjuncts, if any, returning a new Leaf with the filter layered on top
// (still unprepared) and its estimated post-filter cost.
func applyFilter(leaf Leaf, conjuncts []expr.Expression) Leaf {
	if len(conjuncts) == 0 {
		return leaf
	}
	pred := expr.NewAndN(conjuncts...)
	selectivity := estimateSelectivity(conjuncts)
	return Leaf{
		Plan:   plan.NewSimpleFilter(leaf.Plan, pred, selectivity),
		Schema: leaf.Schema,
		Cost:   estimateFilterCost(leaf.Cost, selectivity),
	}
}
