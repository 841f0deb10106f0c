// Package tuple implements the row abstraction plan nodes produce and
// consume: a fixed-width sequence of values, either held entirely in memory
// (a literal, or a join/project output) or backed by a storage page (a row
// read straight off disk by a scan).
package tuple

import "nanodb/db/types"

// Tuple is the interface every row-like value in the engine satisfies.
// Column count and order always match the producing plan node's schema.
type Tuple interface {
	// ColumnCount returns the number of values in the tuple.
	ColumnCount() int
	// Value returns the value at position i.
	Value(i int) types.Value
	// Cacheable reports whether this tuple may be held past the current
	// iteration step (e.g. copied into a sort buffer or a join's mark).
	// Page-backed tuples are not cacheable: the page they reference may be
	// unpinned or overwritten by the time the caller looks at it again.
	Cacheable() bool
	// Updatable reports whether SetValue may be called on this tuple —
	// true only for tuples still attached to a live storage row.
	Updatable() bool
	// SetValue overwrites the value at position i, returns an error if the
	// tuple is not Updatable().
	SetValue(i int, v types.Value) error
	// Values materializes the full tuple as a plain slice, always safe to
	// retain regardless of Cacheable().
	Values() []types.Value
}

// Literal is a fully in-memory tuple, produced by Project, Sort, GroupBy,
// NestedLoopsJoin, db/storage's row iterator, and literal VALUES rows
// (Rename passes its child's tuples through unchanged). Always cacheable, never
// updatable.
type Literal struct {
	values []types.Value
}

// NewLiteral builds a Literal tuple from the given values, in order.
func NewLiteral(values ...types.Value) *Literal {
	cp := make([]types.Value, len(values))
	copy(cp, values)
	return &Literal{values: cp}
}

func (t *Literal) ColumnCount() int          { return len(t.values) }
func (t *Literal) Value(i int) types.Value   { return t.values[i] }
func (t *Literal) Cacheable() bool           { return true }
func (t *Literal) Updatable() bool           { return false }
func (t *Literal) Values() []types.Value {
	cp := make([]types.Value, len(t.values))
	copy(cp, t.values)
	return cp
}

func (t *Literal) SetValue(i int, v types.Value) error {
	return notUpdatable("literal")
}

// Concat builds the tuple produced by joining left and right: left's
// columns followed by right's, always as a fresh Literal.
func Concat(left, right Tuple) *Literal {
	out := make([]types.Value, 0, left.ColumnCount()+right.ColumnCount())
	for i := 0; i < left.ColumnCount(); i++ {
		out = append(out, left.Value(i))
	}
	for i := 0; i < right.ColumnCount(); i++ {
		out = append(out, right.Value(i))
	}
	return NewLiteral(out...)
}

// Materialize copies any Tuple into a cacheable Literal snapshot — used
// whenever a plan node needs to hold on to a row past the point its source
// tuple (especially a page-backed one) stops being valid, e.g. Sort or
// GroupBy buffering rows.
func Materialize(t Tuple) *Literal {
	if lit, ok := t.(*Literal); ok {
		return lit
	}
	return NewLiteral(t.Values()...)
}

func notUpdatable(kind string) error {
	return errNotUpdatable{kind: kind}
}

type errNotUpdatable struct{ kind string }

func (e errNotUpdatable) Error() string { return "tuple: " + e.kind + " tuple is not updatable" }
