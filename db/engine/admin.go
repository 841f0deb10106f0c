package engine

import (
	"context"
	"fmt"
	"strings"

	"nanodb/db/errs"
	"nanodb/db/parser"
	"nanodb/db/plan"
)

func (e *Engine) execAnalyze(stmt *parser.AnalyzeStmt) (*ResultSet, error) {
	table, err := e.Catalog.Table(stmt.TableName)
	if err != nil {
		return nil, err
	}
	if err := table.Analyze(); err != nil {
		return nil, err
	}
	return &ResultSet{Message: fmt.Sprintf("ANALYZE %s", stmt.TableName)}, nil
}

// execExplain builds the wrapped statement's physical plan (without
// executing it, for a SELECT) and renders its operator tree as the
// result's single Message. DML's plan is the same scan/filter tree its
// own execution drives.
func (e *Engine) execExplain(ctx context.Context, stmt *parser.ExplainStmt) (*ResultSet, error) {
	tr := &translator{provider: e.Catalog, registry: e.Registry}

	var node plan.Node
	var err error
	switch s := stmt.Stmt.(type) {
	case *parser.SelectStmt:
		node, err = tr.planSelect(s)
	case *parser.UpdateStmt:
		return e.explainScan(ctx, s.TableName, s.Where, tr)
	case *parser.DeleteStmt:
		return e.explainScan(ctx, s.TableName, s.Where, tr)
	default:
		return nil, errs.PlanErrorf("EXPLAIN does not support %T", stmt.Stmt)
	}
	if err != nil {
		return nil, err
	}
	if err := node.Prepare(); err != nil {
		return nil, err
	}
	defer node.Cleanup()

	var b strings.Builder
	fmt.Fprintf(&b, "-- query %s\n", queryIDFromContext(ctx))
	describePlan(&b, node, 0)
	return &ResultSet{Message: b.String()}, nil
}

func (e *Engine) explainScan(ctx context.Context, tableName string, where parser.Expression, tr *translator) (*ResultSet, error) {
	table, err := e.Catalog.Table(tableName)
	if err != nil {
		return nil, err
	}
	node, err := scanNode(table, where, tr)
	if err != nil {
		return nil, err
	}
	if err := node.Prepare(); err != nil {
		return nil, err
	}
	defer node.Cleanup()

	var b strings.Builder
	fmt.Fprintf(&b, "-- query %s\n", queryIDFromContext(ctx))
	describePlan(&b, node, 0)
	return &ResultSet{Message: b.String()}, nil
}

// describePlan recursively renders a prepared plan tree, one operator per
// line, indented by depth. preparedNode's wrapper is unwrapped
// transparently; any other unrecognized node prints its Go type and row
// estimate, without descending into children.
func describePlan(b *strings.Builder, node plan.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	cst := node.Cost()

	switch n := node.(type) {
	case *preparedNode:
		describePlan(b, n.inner, depth)
	case *plan.FileScan:
		fmt.Fprintf(b, "%sFileScan (rows=%.0f)\n", indent, cst.NumTuples)
	case *plan.SimpleFilter:
		fmt.Fprintf(b, "%sSimpleFilter (selectivity=%.3f, rows=%.0f)\n", indent, n.Selectivity, cst.NumTuples)
		describePlan(b, n.Child, depth+1)
	case *plan.Rename:
		fmt.Fprintf(b, "%sRename (as=%s)\n", indent, n.Qualifier)
		describePlan(b, n.Child, depth+1)
	case *plan.Project:
		fmt.Fprintf(b, "%sProject (items=%d)\n", indent, len(n.Items))
		describePlan(b, n.Child, depth+1)
	case *plan.Sort:
		fmt.Fprintf(b, "%sSort (keys=%d)\n", indent, len(n.Keys))
		describePlan(b, n.Child, depth+1)
	case *plan.GroupBy:
		fmt.Fprintf(b, "%sGroupBy (keys=%d, items=%d)\n", indent, len(n.Keys), len(n.Items))
		describePlan(b, n.Child, depth+1)
	case *plan.Limit:
		fmt.Fprintf(b, "%sLimit (n=%d)\n", indent, n.N)
		describePlan(b, n.Child, depth+1)
	case *plan.NestedLoopsJoin:
		fmt.Fprintf(b, "%sNestedLoopsJoin (type=%s, rows=%.0f)\n", indent, n.Type, cst.NumTuples)
		describePlan(b, n.Left, depth+1)
		describePlan(b, n.Right, depth+1)
	default:
		fmt.Fprintf(b, "%s%T (rows=%.0f)\n", indent, node, cst.NumTuples)
	}
}
