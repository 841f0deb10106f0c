package plan

import (
	"nanodb/db/cost"
	"nanodb/db/env"
	"nanodb/db/expr"
	"nanodb/db/schema"
	"nanodb/db/tuple"
	"nanodb/db/types"
)

// ProjectItem is one output column: an expression to evaluate, the name it
// should be exposed under, and optionally the table qualifier that name
// should carry (used when a projection re-exposes a specific source
// column rather than producing a fresh computed one, e.g. coalescing a
// NATURAL/USING join's shared columns). Left zero, the output column is
// unqualified, matching a normal SELECT-list projection.
type ProjectItem struct {
	Expr      expr.Expression
	Alias     string
	Qualifier string
}

// Project evaluates a fixed list of expressions per input row, producing
// Literal output tuples. If Items is exactly "every input column, in
// order, unaliased" (the common `SELECT *` / pass-through case), Prepare
// marks the projection trivial and Next passes the child's tuple straight
// through without rebuilding it.
type Project struct {
	base
	Child Node
	Items []ProjectItem

	sch     *schema.Schema
	cst     cost.PlanCost
	trivial bool
	e       *env.Environment
}

func NewProject(child Node, items []ProjectItem) *Project {
	return &Project{Child: child, Items: items, e: env.New()}
}

func (p *Project) Prepare() error {
	if err := p.requirePrepare(); err != nil {
		return err
	}
	if err := p.Child.Prepare(); err != nil {
		return err
	}
	childSchema := p.Child.Schema()

	if p.Items == nil {
		p.sch = childSchema
		p.trivial = true
		p.cst = p.Child.Cost()
		p.afterPrepare()
		return nil
	}

	cols := make([]schema.ColumnDef, len(p.Items))
	for i, it := range p.Items {
		t, err := it.Expr.ColumnInfo([]*schema.Schema{childSchema})
		if err != nil {
			return err
		}
		cols[i] = schema.ColumnDef{Qualifier: it.Qualifier, Name: it.Alias, Type: t, Nullable: true}
	}
	p.sch = schema.New(cols...)
	p.trivial = p.isTrivial(childSchema)

	childCost := p.Child.Cost()
	p.cst = cost.PlanCost{
		NumTuples:    childCost.NumTuples,
		AvgTupleSize: childCost.AvgTupleSize,
		CPUCost:      childCost.CPUCost + childCost.NumTuples*float64(len(p.Items)),
		NumBlockIOs:  childCost.NumBlockIOs,
	}
	p.afterPrepare()
	return nil
}

// isTrivial reports whether every item is "column i of the child, in
// order, with no renaming" — i.e. the projection doesn't need to
// materialize a new tuple at all.
func (p *Project) isTrivial(childSchema *schema.Schema) bool {
	if len(p.Items) != childSchema.Len() {
		return false
	}
	for i, it := range p.Items {
		ref, ok := it.Expr.(*expr.ColumnRef)
		if !ok {
			return false
		}
		col := childSchema.Column(i)
		if ref.Name != col.Name {
			return false
		}
		if ref.Qualifier != "" && ref.Qualifier != col.Qualifier {
			return false
		}
		if it.Alias != "" && it.Alias != col.Name {
			return false
		}
	}
	return true
}

func (p *Project) Schema() *schema.Schema { return p.sch }
func (p *Project) Cost() cost.PlanCost    { return p.cst }

func (p *Project) Initialize() error {
	if err := p.requireInitialize(); err != nil {
		return err
	}
	if err := p.Child.Initialize(); err != nil {
		return err
	}
	p.afterInitialize()
	return nil
}

func (p *Project) Next() (tuple.Tuple, error) {
	if err := p.requireNext(); err != nil {
		return nil, err
	}
	t, err := p.Child.Next()
	if err == ErrEndOfStream {
		p.markExhausted()
		return nil, ErrEndOfStream
	}
	if err != nil {
		return nil, err
	}
	if p.trivial {
		return t, nil
	}
	p.e.Clear()
	p.e.AddTuple(p.Child.Schema(), t)
	values := make([]types.Value, len(p.Items))
	for i, it := range p.Items {
		v, err := it.Expr.Evaluate(p.e)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return tuple.NewLiteral(values...), nil
}

func (p *Project) Mark() error {
	if err := p.requireMark(); err != nil {
		return err
	}
	if err := p.Child.Mark(); err != nil {
		return err
	}
	p.afterMark()
	return nil
}

func (p *Project) ResetToMark() error {
	if err := p.requireResetToMark(); err != nil {
		return err
	}
	if err := p.Child.ResetToMark(); err != nil {
		return err
	}
	p.afterReset()
	return nil
}

func (p *Project) ResultsOrderedBy() []int {
	if p.trivial {
		return p.Child.ResultsOrderedBy()
	}
	return nil
}

func (p *Project) Cleanup() error {
	err := p.Child.Cleanup()
	p.cleanup()
	return err
}
