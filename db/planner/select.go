package planner

import (
	"nanodb/db/cost"
	"nanodb/db/errs"
	"nanodb/db/expr"
	"nanodb/db/plan"
)

var errNoPlanFound = errs.PlanErrorf("DP join planner: no plan found for the full leaf set")

// estimateSelectivity folds a list of conjuncts pushed onto a single leaf
// into one selectivity estimate via cost.And, using cost.DefaultEstimator
// for each term; no histogram-derived statistics reach the planner
// (db/storage persists per-column histograms, but nothing reads them for
// selectivity).
func estimateSelectivity(conjuncts []expr.Expression) float64 {
	if len(conjuncts) == 0 {
		return 1.0
	}
	sels := make([]float64, len(conjuncts))
	for i, c := range conjuncts {
		sels[i] = cost.DefaultEstimator(c)
	}
	return cost.And(sels...)
}

// SelectClause describes a fully parsed SELECT statement's shape, ready to
// be planned: a FROM tree, an optional WHERE predicate, projection items,
// ORDER BY keys, and GROUP BY/HAVING left to the caller (grouping is
// layered on by db/engine once the planned scan/join/filter tree is in
// hand, since it doesn't participate in join ordering).
type SelectClause struct {
	From    FromItem
	Where   expr.Expression
	Project []plan.ProjectItem
	OrderBy []plan.SortKey
}

// Plan builds the full physical plan tree for a SELECT statement: the
// FROM-clause join order and predicate pushdown, then Sort and Project
// layered on top in that order (sorting ahead of projection so ORDER BY
// can reference columns the final projection drops).
func Plan(provider TableProvider, stmt SelectClause) (plan.Node, error) {
	leaf, err := PlanFromClause(provider, stmt.From, stmt.Where)
	if err != nil {
		return nil, err
	}
	var node plan.Node = leaf.Plan

	if len(stmt.OrderBy) > 0 {
		node = plan.NewSort(node, stmt.OrderBy)
	}

	if stmt.Project != nil {
		node = plan.NewProject(node, stmt.Project)
	}

	return node, nil
}
