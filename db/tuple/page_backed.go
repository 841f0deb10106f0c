package tuple

import "nanodb/db/types"

// PageHandle is the minimal contract a storage engine must expose for a
// PageBacked tuple to read and, if the handle allows it, write values in
// place. No type in db/storage implements it: its row iterator produces
// Literal tuples.
type PageHandle interface {
	// Get returns the current value of column i.
	Get(i int) types.Value
	// Set overwrites column i; returns an error if the handle is read-only
	// (e.g. it is iterating a secondary index or a historical snapshot).
	Set(i int, v types.Value) error
	// ColumnCount returns the number of columns in the underlying row.
	ColumnCount() int
	// Writable reports whether Set is permitted on this handle.
	Writable() bool
}

// PageBacked is a tuple whose values live in a storage page rather than in
// memory. It is valid only as long as its PageHandle's page remains pinned
// — callers that need to retain a row past a next()/cleanup() boundary
// must call Materialize first.
type PageBacked struct {
	handle PageHandle
}

// NewPageBacked wraps a storage handle as a Tuple.
func NewPageBacked(h PageHandle) *PageBacked {
	return &PageBacked{handle: h}
}

func (t *PageBacked) ColumnCount() int        { return t.handle.ColumnCount() }
func (t *PageBacked) Value(i int) types.Value { return t.handle.Get(i) }
func (t *PageBacked) Cacheable() bool         { return false }
func (t *PageBacked) Updatable() bool         { return t.handle.Writable() }

func (t *PageBacked) SetValue(i int, v types.Value) error {
	if !t.handle.Writable() {
		return notUpdatable("page-backed")
	}
	return t.handle.Set(i, v)
}

func (t *PageBacked) Values() []types.Value {
	out := make([]types.Value, t.handle.ColumnCount())
	for i := range out {
		out[i] = t.handle.Get(i)
	}
	return out
}
