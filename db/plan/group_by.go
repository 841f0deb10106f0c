package plan

import (
	"fmt"
	"strings"

	"nanodb/db/cost"
	"nanodb/db/env"
	"nanodb/db/errs"
	"nanodb/db/expr"
	"nanodb/db/function"
	"nanodb/db/schema"
	"nanodb/db/tuple"
	"nanodb/db/types"
)

// GroupByItem is one output column of a GROUP BY query: an expression
// evaluated once per group, plus the name it's exposed under. Expr may be
// a grouping-key expression (must reference only columns present in Keys),
// a bare aggregate function call, or an arithmetic combination built from
// those — e.g. "dept", "COUNT(*)", "SUM(amount)".
type GroupByItem struct {
	Expr  expr.Expression
	Alias string
}

// GroupBy partitions its child's rows by Keys and emits one output row per
// distinct key, folding any aggregate calls found in Items/Having across
// each group's member rows. Like Sort, it is always a blocking,
// fully-materializing operator: every row must be seen before the first
// group can be finalized.
//
// Aggregate calls are located once at Prepare time by walking each Items/
// Having expression tree and replacing every aggregate *expr.Call node
// with a placeholder leaf; the original call and its registry Descriptor
// are recorded as an aggregateSlot. During Initialize, each group keeps one
// running accumulator per slot, updated via Descriptor.Eval(accumulator,
// newValue) as function.Registry's aggregate Evaluators already expect.
// Finalizing a group fills in each placeholder's value from its
// accumulator, then evaluates the (otherwise ordinary) rewritten
// expression trees against the group's representative row.
type GroupBy struct {
	base
	Child    Node
	Keys     []expr.Expression
	Items    []GroupByItem
	Having   expr.Expression // nil if there is no HAVING clause
	Registry expr.Registry

	sch *schema.Schema
	cst cost.PlanCost

	itemTemplates  []expr.Expression
	havingTemplate expr.Expression
	slots          []*aggregateSlot

	e    *env.Environment
	rows []tuple.Tuple
	pos  int
	mark int
}

func NewGroupBy(child Node, keys []expr.Expression, items []GroupByItem, having expr.Expression, registry expr.Registry) *GroupBy {
	return &GroupBy{Child: child, Keys: keys, Items: items, Having: having, Registry: registry, e: env.New()}
}

// aggregateSlot is one aggregate call site found while rewriting an
// Items/Having expression tree: the original call (for its Args and
// Registry), the Descriptor driving its fold, and the placeholder leaf
// standing in for it in the rewritten tree.
type aggregateSlot struct {
	call       *expr.Call
	descriptor function.Descriptor
	placeholder *aggregatePlaceholder
}

// aggregatePlaceholder stands in for a folded aggregate call inside a
// rewritten expression tree. Evaluate ignores its environment entirely and
// returns whatever value was last assigned to it — GroupBy sets that value
// once per group, right before evaluating the group's output row.
type aggregatePlaceholder struct {
	value    types.Value
	dataType types.DataType
}

func (a *aggregatePlaceholder) Evaluate(_ *env.Environment) (types.Value, error) {
	return a.value, nil
}

func (a *aggregatePlaceholder) ColumnInfo(_ []*schema.Schema) (types.DataType, error) {
	return a.dataType, nil
}

func (a *aggregatePlaceholder) AllSymbols() map[string]bool { return map[string]bool{} }

func (a *aggregatePlaceholder) Duplicate() expr.Expression {
	return &aggregatePlaceholder{value: a.value, dataType: a.dataType}
}

func (g *GroupBy) Prepare() error {
	if err := g.requirePrepare(); err != nil {
		return err
	}
	if err := g.Child.Prepare(); err != nil {
		return err
	}
	childSchema := g.Child.Schema()
	schemas := []*schema.Schema{childSchema}

	for _, k := range g.Keys {
		if _, err := k.ColumnInfo(schemas); err != nil {
			return err
		}
	}

	g.itemTemplates = make([]expr.Expression, len(g.Items))
	cols := make([]schema.ColumnDef, len(g.Items))
	for i, it := range g.Items {
		tmpl, err := g.extract(it.Expr, childSchema)
		if err != nil {
			return err
		}
		g.itemTemplates[i] = tmpl
		t, err := it.Expr.ColumnInfo(schemas)
		if err != nil {
			return err
		}
		cols[i] = schema.ColumnDef{Name: it.Alias, Type: t, Nullable: true}
	}
	g.sch = schema.New(cols...)

	if g.Having != nil {
		tmpl, err := g.extract(g.Having, childSchema)
		if err != nil {
			return err
		}
		g.havingTemplate = tmpl
		if _, err := g.Having.ColumnInfo(schemas); err != nil {
			return err
		}
	}

	childCost := g.Child.Cost()
	g.cst = cost.PlanCost{
		NumTuples:    childCost.NumTuples,
		AvgTupleSize: childCost.AvgTupleSize,
		CPUCost:      childCost.CPUCost + childCost.NumTuples*float64(len(g.Items)+len(g.Keys)+1),
		NumBlockIOs:  childCost.NumBlockIOs,
	}
	g.afterPrepare()
	return nil
}

// extract walks e, replacing every aggregate call with a fresh placeholder
// (recorded in g.slots) and otherwise rebuilding the tree unchanged. Leaves
// that cannot contain a nested call (ColumnRef, Literal, Exists, Subquery)
// are returned as-is.
func (g *GroupBy) extract(e expr.Expression, childSchema *schema.Schema) (expr.Expression, error) {
	if call, ok := e.(*expr.Call); ok {
		d, ok := g.Registry.Get(call.Name)
		if !ok {
			return nil, errs.SchemaErrorf("unknown function %q", call.Name)
		}
		if d.IsAggregate {
			t, err := call.ColumnInfo([]*schema.Schema{childSchema})
			if err != nil {
				return nil, err
			}
			ph := &aggregatePlaceholder{dataType: t}
			g.slots = append(g.slots, &aggregateSlot{call: call, descriptor: d, placeholder: ph})
			return ph, nil
		}
		args := make([]expr.Expression, len(call.Args))
		for i, a := range call.Args {
			r, err := g.extract(a, childSchema)
			if err != nil {
				return nil, err
			}
			args[i] = r
		}
		return expr.NewCall(call.Name, args, call.Registry), nil
	}

	switch n := e.(type) {
	case *expr.Comparison:
		l, err := g.extract(n.Left, childSchema)
		if err != nil {
			return nil, err
		}
		r, err := g.extract(n.Right, childSchema)
		if err != nil {
			return nil, err
		}
		return expr.NewComparison(n.Op, l, r), nil
	case *expr.BooleanExpr:
		terms := make([]expr.Expression, len(n.Terms))
		for i, t := range n.Terms {
			r, err := g.extract(t, childSchema)
			if err != nil {
				return nil, err
			}
			terms[i] = r
		}
		if n.Op == expr.And {
			return expr.NewAndN(terms...), nil
		}
		return expr.NewOrN(terms...), nil
	case *expr.Not:
		t, err := g.extract(n.Term, childSchema)
		if err != nil {
			return nil, err
		}
		return expr.NewNot(t), nil
	case *expr.Arithmetic:
		l, err := g.extract(n.Left, childSchema)
		if err != nil {
			return nil, err
		}
		r, err := g.extract(n.Right, childSchema)
		if err != nil {
			return nil, err
		}
		return expr.NewArithmetic(n.Op, l, r), nil
	case *expr.In:
		t, err := g.extract(n.Target, childSchema)
		if err != nil {
			return nil, err
		}
		list := make([]expr.Expression, len(n.List))
		for i, item := range n.List {
			r, err := g.extract(item, childSchema)
			if err != nil {
				return nil, err
			}
			list[i] = r
		}
		return expr.NewIn(t, list, n.Negate), nil
	case *expr.Like:
		t, err := g.extract(n.Target, childSchema)
		if err != nil {
			return nil, err
		}
		p, err := g.extract(n.Pattern, childSchema)
		if err != nil {
			return nil, err
		}
		return expr.NewLike(t, p, n.Negate), nil
	case *expr.IsNull:
		t, err := g.extract(n.Target, childSchema)
		if err != nil {
			return nil, err
		}
		return expr.NewIsNull(t, n.Negate), nil
	default:
		return e, nil
	}
}

func (g *GroupBy) Schema() *schema.Schema { return g.sch }
func (g *GroupBy) Cost() cost.PlanCost    { return g.cst }

// groupAccumulator folds one aggregate slot's rows. Every aggregate except
// AVG keeps a single running value, updated by the slot's own Descriptor
// (COUNT/SUM/MIN/MAX's Eval all expect (accumulator, newValue)). AVG keeps
// sum and count as two separate running values via the registry's SUM and
// COUNT, since its own Eval only knows how to divide an already-final
// (sum, count) pair.
type groupAccumulator struct {
	slot *aggregateSlot

	isAvg      bool
	acc        types.Value
	sum, count types.Value
	sumEval    function.Evaluator
	countEval  function.Evaluator
}

func newGroupAccumulator(slot *aggregateSlot, registry expr.Registry) (*groupAccumulator, error) {
	if strings.EqualFold(slot.descriptor.Name, "AVG") {
		sumD, ok := registry.Get("SUM")
		if !ok {
			return nil, errs.SchemaErrorf("AVG requires a registered SUM function")
		}
		countD, ok := registry.Get("COUNT")
		if !ok {
			return nil, errs.SchemaErrorf("AVG requires a registered COUNT function")
		}
		return &groupAccumulator{
			slot:      slot,
			isAvg:     true,
			sumEval:   sumD.Eval,
			countEval: countD.Eval,
			sum:       types.Null(types.DOUBLE),
			count:     types.NewInt(types.BIGINT, 0),
		}, nil
	}
	return &groupAccumulator{slot: slot, acc: types.Null(slot.placeholder.dataType)}, nil
}

func (ga *groupAccumulator) add(v types.Value) error {
	if ga.isAvg {
		sum, err := ga.sumEval([]types.Value{ga.sum, v})
		if err != nil {
			return err
		}
		count, err := ga.countEval([]types.Value{ga.count, v})
		if err != nil {
			return err
		}
		ga.sum, ga.count = sum, count
		return nil
	}
	acc, err := ga.slot.descriptor.Eval([]types.Value{ga.acc, v})
	if err != nil {
		return err
	}
	ga.acc = acc
	return nil
}

func (ga *groupAccumulator) finalize() (types.Value, error) {
	if ga.isAvg {
		return ga.slot.descriptor.Eval([]types.Value{ga.sum, ga.count})
	}
	return ga.acc, nil
}

// groupState is one in-progress group: a representative row (the group's
// first member, used to evaluate non-aggregate key expressions, which are
// invariant across the group by construction) and one accumulator per slot.
type groupState struct {
	row  tuple.Tuple
	accs []*groupAccumulator
}

func (g *GroupBy) Initialize() error {
	if err := g.requireInitialize(); err != nil {
		return err
	}
	if err := g.Child.Initialize(); err != nil {
		return err
	}
	childSchema := g.Child.Schema()

	index := make(map[string]int)
	var groups []*groupState

	for {
		t, err := g.Child.Next()
		if err == ErrEndOfStream {
			break
		}
		if err != nil {
			return err
		}

		g.e.Clear()
		g.e.AddTuple(childSchema, t)

		keyValues := make([]types.Value, len(g.Keys))
		for i, k := range g.Keys {
			v, err := k.Evaluate(g.e)
			if err != nil {
				return err
			}
			keyValues[i] = v
		}
		key := groupKeyString(keyValues)

		gi, ok := index[key]
		if !ok {
			accs := make([]*groupAccumulator, len(g.slots))
			for i, slot := range g.slots {
				acc, err := newGroupAccumulator(slot, g.Registry)
				if err != nil {
					return err
				}
				accs[i] = acc
			}
			groups = append(groups, &groupState{row: tuple.Materialize(t), accs: accs})
			gi = len(groups) - 1
			index[key] = gi
		}

		for i, slot := range g.slots {
			v, err := g.evalCallArg(slot.call, g.e)
			if err != nil {
				return err
			}
			if err := groups[gi].accs[i].add(v); err != nil {
				return err
			}
		}
	}
	if err := g.Child.Cleanup(); err != nil {
		return err
	}

	rows := make([]tuple.Tuple, 0, len(groups))
	for _, gr := range groups {
		out, keep, err := g.finalizeGroup(gr)
		if err != nil {
			return err
		}
		if keep {
			rows = append(rows, out)
		}
	}
	g.rows = rows
	g.pos = 0
	g.afterInitialize()
	return nil
}

// evalCallArg evaluates an aggregate call's single argument against e. A
// nullary call (COUNT(*)) has no argument to evaluate — its presence in
// the row is itself the signal, so it is given a constant non-NULL value.
func (g *GroupBy) evalCallArg(call *expr.Call, e *env.Environment) (types.Value, error) {
	if len(call.Args) == 0 {
		return types.NewInt(types.INTEGER, 0), nil
	}
	return call.Args[0].Evaluate(e)
}

func (g *GroupBy) finalizeGroup(gr *groupState) (tuple.Tuple, bool, error) {
	for i, slot := range g.slots {
		v, err := gr.accs[i].finalize()
		if err != nil {
			return nil, false, err
		}
		slot.placeholder.value = v
	}

	g.e.Clear()
	g.e.AddTuple(g.Child.Schema(), gr.row)

	if g.havingTemplate != nil {
		ok, err := expr.EvaluatePredicate(g.havingTemplate, g.e)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}
	}

	values := make([]types.Value, len(g.itemTemplates))
	for i, tmpl := range g.itemTemplates {
		v, err := tmpl.Evaluate(g.e)
		if err != nil {
			return nil, false, err
		}
		values[i] = v
	}
	return tuple.NewLiteral(values...), true, nil
}

// groupKeyString builds a composite grouping key from a row's evaluated
// Keys values. NULLs group together, matching GROUP BY's (not equality's)
// treatment of NULL.
func groupKeyString(values []types.Value) string {
	var b strings.Builder
	for _, v := range values {
		if v.IsNull() {
			b.WriteString("\x00N\x1f")
			continue
		}
		fmt.Fprintf(&b, "\x00%d:%s\x1f", v.Type(), v.String())
	}
	return b.String()
}

func (g *GroupBy) Next() (tuple.Tuple, error) {
	if err := g.requireNext(); err != nil {
		return nil, err
	}
	if g.pos >= len(g.rows) {
		g.markExhausted()
		return nil, ErrEndOfStream
	}
	t := g.rows[g.pos]
	g.pos++
	return t, nil
}

func (g *GroupBy) Mark() error {
	if err := g.requireMark(); err != nil {
		return err
	}
	g.mark = g.pos
	g.afterMark()
	return nil
}

func (g *GroupBy) ResetToMark() error {
	if err := g.requireResetToMark(); err != nil {
		return err
	}
	g.pos = g.mark
	g.afterReset()
	return nil
}

func (g *GroupBy) ResultsOrderedBy() []int { return nil }

func (g *GroupBy) Cleanup() error {
	g.rows = nil
	g.cleanup()
	return nil
}
