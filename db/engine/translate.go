package engine

import (
	"nanodb/db/errs"
	"nanodb/db/expr"
	"nanodb/db/parser"
	"nanodb/db/plan"
	"nanodb/db/planner"
)

// translator turns a parser syntax tree into the planner/expr trees the
// rest of the engine drives. It carries no per-statement state beyond the
// catalog and function registry, so one instance is reused across an
// entire query's translation.
type translator struct {
	provider planner.TableProvider
	registry expr.Registry
}

func (t *translator) translateFrom(f parser.FromItem) (planner.FromItem, error) {
	switch it := f.(type) {
	case *parser.TableRef:
		return &planner.TableRef{Name: it.Name, Alias: it.Alias}, nil

	case *parser.SubqueryRef:
		inner, err := t.planSelect(it.Select)
		if err != nil {
			return nil, err
		}
		aliased, err := prepareStage(plan.NewRename(inner, it.Alias))
		if err != nil {
			return nil, err
		}
		return &planner.DerivedTable{Alias: it.Alias, Plan: aliased}, nil

	case *parser.JoinItem:
		left, err := t.translateFrom(it.Left)
		if err != nil {
			return nil, err
		}
		right, err := t.translateFrom(it.Right)
		if err != nil {
			return nil, err
		}
		on, err := t.translateOptionalExpr(it.On)
		if err != nil {
			return nil, err
		}
		return &planner.JoinItem{
			Type:    joinType(it.Kind),
			Left:    left,
			Right:   right,
			On:      on,
			Using:   it.Using,
			Natural: it.Natural,
		}, nil

	default:
		return nil, errs.PlanErrorf("engine: unknown FROM-clause item %T", f)
	}
}

func joinType(k parser.JoinKind) plan.JoinType {
	switch k {
	case parser.LeftJoin:
		return plan.LeftOuter
	case parser.RightJoin:
		return plan.RightOuter
	case parser.FullJoin:
		return plan.FullOuter
	case parser.CrossJoin:
		return plan.Cross
	default:
		return plan.Inner
	}
}

func (t *translator) translateOptionalExpr(e parser.Expression) (expr.Expression, error) {
	if e == nil {
		return nil, nil
	}
	return t.translateExpr(e)
}

// translateExpr converts one syntax-level expression into its db/expr
// counterpart. IN/EXISTS subqueries are planned and (for IN) fully drained
// right here — both run uncorrelated, since the subquery is planned and
// Prepared with only its own FROM-clause schema in scope, so a reference
// to an outer column surfaces naturally as an unresolved-column
// SchemaError at this point rather than needing its own special case.
func (t *translator) translateExpr(e parser.Expression) (expr.Expression, error) {
	switch n := e.(type) {
	case *parser.ColumnExpr:
		return expr.NewColumnRef(n.Qualifier, n.Name), nil

	case *parser.LiteralExpr:
		return expr.NewLiteral(n.Value), nil

	case *parser.UnaryExpr:
		operand, err := t.translateExpr(n.Operand)
		if err != nil {
			return nil, err
		}
		if n.Op == parser.Not {
			return expr.NewNot(operand), nil
		}
		return expr.NewArithmetic(expr.Sub, expr.NewLiteral(zeroInt), operand), nil

	case *parser.BinaryExpr:
		left, err := t.translateExpr(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := t.translateExpr(n.Right)
		if err != nil {
			return nil, err
		}
		return translateBinOp(n.Op, left, right)

	case *parser.LikeExpr:
		target, err := t.translateExpr(n.Target)
		if err != nil {
			return nil, err
		}
		pattern, err := t.translateExpr(n.Pattern)
		if err != nil {
			return nil, err
		}
		return expr.NewLike(target, pattern, n.Negate), nil

	case *parser.BetweenExpr:
		target, err := t.translateExpr(n.Target)
		if err != nil {
			return nil, err
		}
		low, err := t.translateExpr(n.Low)
		if err != nil {
			return nil, err
		}
		high, err := t.translateExpr(n.High)
		if err != nil {
			return nil, err
		}
		return expr.NewBetween(target, low, high, n.Negate), nil

	case *parser.InExpr:
		target, err := t.translateExpr(n.Target)
		if err != nil {
			return nil, err
		}
		if n.Subquery != nil {
			list, err := t.materializeSubqueryList(n.Subquery)
			if err != nil {
				return nil, err
			}
			return expr.NewIn(target, list, n.Negate), nil
		}
		list := make([]expr.Expression, len(n.List))
		for i, item := range n.List {
			v, err := t.translateExpr(item)
			if err != nil {
				return nil, err
			}
			list[i] = v
		}
		return expr.NewIn(target, list, n.Negate), nil

	case *parser.ExistsExpr:
		node, err := t.planSelect(n.Subquery)
		if err != nil {
			return nil, err
		}
		return expr.NewExists(node, n.Negate), nil

	case *parser.IsNullExpr:
		target, err := t.translateExpr(n.Target)
		if err != nil {
			return nil, err
		}
		return expr.NewIsNull(target, n.Negate), nil

	case *parser.CallExpr:
		var args []expr.Expression
		if !n.Star {
			args = make([]expr.Expression, len(n.Args))
			for i, a := range n.Args {
				v, err := t.translateExpr(a)
				if err != nil {
					return nil, err
				}
				args[i] = v
			}
		}
		return expr.NewCall(n.Name, args, t.registry), nil

	default:
		return nil, errs.PlanErrorf("engine: unknown expression type %T", e)
	}
}

func translateBinOp(op parser.BinOp, left, right expr.Expression) (expr.Expression, error) {
	switch op {
	case parser.OpEq:
		return expr.NewComparison(expr.Eq, left, right), nil
	case parser.OpNe:
		return expr.NewComparison(expr.Ne, left, right), nil
	case parser.OpLt:
		return expr.NewComparison(expr.Lt, left, right), nil
	case parser.OpLe:
		return expr.NewComparison(expr.Le, left, right), nil
	case parser.OpGt:
		return expr.NewComparison(expr.Gt, left, right), nil
	case parser.OpGe:
		return expr.NewComparison(expr.Ge, left, right), nil
	case parser.OpAnd:
		return expr.NewAnd(left, right), nil
	case parser.OpOr:
		return expr.NewOr(left, right), nil
	case parser.OpAdd:
		return expr.NewArithmetic(expr.Add, left, right), nil
	case parser.OpSub:
		return expr.NewArithmetic(expr.Sub, left, right), nil
	case parser.OpMul:
		return expr.NewArithmetic(expr.Mul, left, right), nil
	case parser.OpDiv:
		return expr.NewArithmetic(expr.Div, left, right), nil
	case parser.OpMod:
		return expr.NewArithmetic(expr.Mod, left, right), nil
	default:
		return nil, errs.PlanErrorf("engine: unknown binary operator %v", op)
	}
}

// materializeSubqueryList plans and fully drains an IN-subquery once at
// translate time, turning its single output column into a literal list —
// sidesteps correlated evaluation entirely, since there's no per-outer-row
// rebinding mechanism for a subquery planned this way.
func (t *translator) materializeSubqueryList(sel *parser.SelectStmt) ([]expr.Expression, error) {
	node, err := t.planSelect(sel)
	if err != nil {
		return nil, err
	}
	if node.Schema().Len() != 1 {
		return nil, errs.SchemaErrorf("subquery in IN must produce exactly one column")
	}
	if err := node.Initialize(); err != nil {
		return nil, err
	}
	defer node.Cleanup()

	var list []expr.Expression
	for {
		row, err := node.Next()
		if err == plan.ErrEndOfStream {
			break
		}
		if err != nil {
			return nil, err
		}
		list = append(list, expr.NewLiteral(row.Value(0)))
	}
	return list, nil
}
