package engine

import (
	"nanodb/db/errs"
	"nanodb/db/expr"
	"nanodb/db/parser"
	"nanodb/db/plan"
	"nanodb/db/planner"
	"nanodb/db/schema"
	"nanodb/db/types"
)

var zeroInt = types.NewInt(types.INTEGER, 0)

// planSelect builds the physical plan for one SELECT statement, including
// any subqueries translateExpr/translateFrom reach along the way. The
// returned node has already been through its own Prepare (see
// prepareStage) so it can be embedded directly as a derived table or
// subquery operand, or re-Prepared harmlessly by a top-level caller.
func (t *translator) planSelect(sel *parser.SelectStmt) (plan.Node, error) {
	if sel.From == nil {
		return t.planFromLessSelect(sel)
	}

	fromItem, err := t.translateFrom(sel.From)
	if err != nil {
		return nil, err
	}
	whereExpr, err := t.translateOptionalExpr(sel.Where)
	if err != nil {
		return nil, err
	}

	leaf, err := planner.PlanFromClause(t.provider, fromItem, whereExpr)
	if err != nil {
		return nil, err
	}
	node, err := prepareStage(leaf.Plan)
	if err != nil {
		return nil, err
	}

	if t.isGrouped(sel) {
		node, err = t.planGrouped(node, sel)
	} else {
		node, err = t.planUngrouped(node, sel)
	}
	if err != nil {
		return nil, err
	}

	if sel.Limit != nil {
		node, err = prepareStage(plan.NewLimit(node, *sel.Limit))
		if err != nil {
			return nil, err
		}
	}
	return node, nil
}

func (t *translator) isGrouped(sel *parser.SelectStmt) bool {
	if len(sel.GroupBy) > 0 {
		return true
	}
	for _, c := range sel.Columns {
		if !c.Star && containsAggregate(c.Expr, t.registry) {
			return true
		}
	}
	return false
}

func (t *translator) planGrouped(node plan.Node, sel *parser.SelectStmt) (plan.Node, error) {
	keys := make([]expr.Expression, len(sel.GroupBy))
	for i, k := range sel.GroupBy {
		ex, err := t.translateExpr(k)
		if err != nil {
			return nil, err
		}
		keys[i] = ex
	}

	items := make([]plan.GroupByItem, len(sel.Columns))
	for i, c := range sel.Columns {
		if c.Star {
			return nil, errs.PlanErrorf("SELECT * cannot be combined with GROUP BY")
		}
		ex, err := t.translateExpr(c.Expr)
		if err != nil {
			return nil, err
		}
		items[i] = plan.GroupByItem{Expr: ex, Alias: selectAlias(c)}
	}

	having, err := t.translateOptionalExpr(sel.Having)
	if err != nil {
		return nil, err
	}

	grouped, err := prepareStage(plan.NewGroupBy(node, keys, items, having, t.registry))
	if err != nil {
		return nil, err
	}

	if len(sel.OrderBy) > 0 {
		sortKeys, err := resolveSortKeys(sel.OrderBy, grouped.Schema())
		if err != nil {
			return nil, err
		}
		return prepareStage(plan.NewSort(grouped, sortKeys))
	}
	return grouped, nil
}

func (t *translator) planUngrouped(node plan.Node, sel *parser.SelectStmt) (plan.Node, error) {
	if len(sel.OrderBy) > 0 {
		sortKeys, err := resolveSortKeys(sel.OrderBy, node.Schema())
		if err != nil {
			return nil, err
		}
		sorted, err := prepareStage(plan.NewSort(node, sortKeys))
		if err != nil {
			return nil, err
		}
		node = sorted
	}

	items, err := t.projectItems(sel.Columns, node.Schema())
	if err != nil {
		return nil, err
	}
	if items == nil {
		return node, nil
	}
	return prepareStage(plan.NewProject(node, items))
}

func (t *translator) planFromLessSelect(sel *parser.SelectStmt) (plan.Node, error) {
	if len(sel.GroupBy) > 0 || sel.Having != nil {
		return nil, errs.PlanErrorf("GROUP BY requires a FROM clause")
	}
	items, err := t.projectItems(sel.Columns, schema.New())
	if err != nil {
		return nil, err
	}
	if items == nil {
		return nil, errs.PlanErrorf("SELECT * requires a FROM clause")
	}
	node, err := prepareStage(plan.NewProject(newOneRowNode(), items))
	if err != nil {
		return nil, err
	}
	if sel.Limit != nil {
		return prepareStage(plan.NewLimit(node, *sel.Limit))
	}
	return node, nil
}

// projectItems builds the Project layer's items, expanding "*"/"t.*"
// wildcards against sch. Returns (nil, nil) for a bare "SELECT *" — the
// caller treats that as "no Project needed, pass the child through".
func (t *translator) projectItems(cols []parser.SelectItem, sch *schema.Schema) ([]plan.ProjectItem, error) {
	if len(cols) == 1 && cols[0].Star && cols[0].Qualifier == "" {
		return nil, nil
	}
	var items []plan.ProjectItem
	for _, c := range cols {
		if c.Star {
			for _, col := range sch.Columns() {
				if c.Qualifier != "" && col.Qualifier != c.Qualifier {
					continue
				}
				items = append(items, plan.ProjectItem{
					Expr:  expr.NewColumnRef(col.Qualifier, col.Name),
					Alias: col.Name,
				})
			}
			continue
		}
		ex, err := t.translateExpr(c.Expr)
		if err != nil {
			return nil, err
		}
		items = append(items, plan.ProjectItem{Expr: ex, Alias: selectAlias(c)})
	}
	return items, nil
}

func selectAlias(c parser.SelectItem) string {
	if c.Alias != "" {
		return c.Alias
	}
	switch e := c.Expr.(type) {
	case *parser.ColumnExpr:
		return e.Name
	case *parser.CallExpr:
		return e.Name
	default:
		return ""
	}
}

// containsAggregate walks a syntax-level expression tree looking for a
// call to a registered aggregate function, so the translator can decide
// whether a GROUP-BY-less SELECT is implicitly grouped ("SELECT COUNT(*)
// FROM t" folds its whole input into a single group).
func containsAggregate(e parser.Expression, registry expr.Registry) bool {
	switch n := e.(type) {
	case *parser.CallExpr:
		if d, ok := registry.Get(n.Name); ok && d.IsAggregate {
			return true
		}
		for _, a := range n.Args {
			if containsAggregate(a, registry) {
				return true
			}
		}
		return false
	case *parser.BinaryExpr:
		return containsAggregate(n.Left, registry) || containsAggregate(n.Right, registry)
	case *parser.UnaryExpr:
		return containsAggregate(n.Operand, registry)
	case *parser.LikeExpr:
		return containsAggregate(n.Target, registry) || containsAggregate(n.Pattern, registry)
	case *parser.BetweenExpr:
		return containsAggregate(n.Target, registry) ||
			containsAggregate(n.Low, registry) ||
			containsAggregate(n.High, registry)
	case *parser.IsNullExpr:
		return containsAggregate(n.Target, registry)
	default:
		return false
	}
}

// resolveSortKeys only supports ORDER BY terms that are a bare column
// reference or an output alias — plan.Sort.Keys is strictly position-
// based, with no room for an arbitrary computed expression.
func resolveSortKeys(orderBy []parser.OrderItem, sch *schema.Schema) ([]plan.SortKey, error) {
	keys := make([]plan.SortKey, len(orderBy))
	for i, o := range orderBy {
		col, ok := o.Expr.(*parser.ColumnExpr)
		if !ok {
			return nil, errs.PlanErrorf("ORDER BY only supports a column or output alias, not a computed expression")
		}
		idx, err := sch.Resolve(col.Qualifier, col.Name)
		if err != nil {
			return nil, err
		}
		if idx < 0 {
			return nil, errs.SchemaErrorf("ORDER BY: unresolved column reference %q", col.Name)
		}
		keys[i] = plan.SortKey{
			ColumnIndex:   idx,
			Descending:    o.Descending,
			NullsFirst:    o.NullsFirst,
			NullsFirstSet: o.NullsFirstSet,
		}
	}
	return keys, nil
}
