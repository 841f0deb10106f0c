package plan

import (
	"nanodb/db/cost"
	"nanodb/db/schema"
	"nanodb/db/tuple"
)

// Rename exposes its child's output under a new table qualifier, without
// touching the tuples themselves — used to give a derived table or a
// self-joined base table a fresh alias.
type Rename struct {
	base
	Child     Node
	Qualifier string

	sch *schema.Schema
}

func NewRename(child Node, qualifier string) *Rename {
	return &Rename{Child: child, Qualifier: qualifier}
}

func (r *Rename) Prepare() error {
	if err := r.requirePrepare(); err != nil {
		return err
	}
	if err := r.Child.Prepare(); err != nil {
		return err
	}
	r.sch = r.Child.Schema().WithQualifier(r.Qualifier)
	r.afterPrepare()
	return nil
}

func (r *Rename) Schema() *schema.Schema { return r.sch }
func (r *Rename) Cost() cost.PlanCost    { return r.Child.Cost() }

func (r *Rename) Initialize() error {
	if err := r.requireInitialize(); err != nil {
		return err
	}
	if err := r.Child.Initialize(); err != nil {
		return err
	}
	r.afterInitialize()
	return nil
}

func (r *Rename) Next() (tuple.Tuple, error) {
	if err := r.requireNext(); err != nil {
		return nil, err
	}
	t, err := r.Child.Next()
	if err == ErrEndOfStream {
		r.markExhausted()
		return nil, ErrEndOfStream
	}
	return t, err
}

func (r *Rename) Mark() error {
	if err := r.requireMark(); err != nil {
		return err
	}
	if err := r.Child.Mark(); err != nil {
		return err
	}
	r.afterMark()
	return nil
}

func (r *Rename) ResetToMark() error {
	if err := r.requireResetToMark(); err != nil {
		return err
	}
	if err := r.Child.ResetToMark(); err != nil {
		return err
	}
	r.afterReset()
	return nil
}

func (r *Rename) ResultsOrderedBy() []int { return r.Child.ResultsOrderedBy() }

func (r *Rename) Cleanup() error {
	err := r.Child.Cleanup()
	r.cleanup()
	return err
}
