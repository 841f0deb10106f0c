package plan

import (
	"nanodb/db/cost"
	"nanodb/db/errs"
	"nanodb/db/schema"
	"nanodb/db/tuple"
)

// TableStats is the storage layer's per-table cardinality estimate,
// consumed by FileScan.Prepare to seed its cost estimate.
type TableStats struct {
	NumTuples    float64
	AvgTupleSize float64
	NumDataPages float64
}

// TableHandle is the storage contract a FileScan depends on: open a table,
// pull its rows one at a time, and report its statistics. Declared here
// (not in db/storage) so db/plan has no import-time dependency on the
// storage engine's implementation; db/storage's table type satisfies this
// interface structurally.
type TableHandle interface {
	// TableSchema returns the table's schema.
	TableSchema() *schema.TableSchema
	// Stats returns the table's last-computed statistics.
	Stats() TableStats
	// FirstTuple opens a fresh row iterator positioned before the first
	// row, returning a handle the FileScan drives with Next/Reset/Close.
	FirstTuple() (RowIterator, error)
}

// RowIterator is a single pass over a table's rows, with its own pinned
// snapshot/cursor — closing it releases whatever storage resource (a
// badger iterator, in the concrete implementation) it is holding.
type RowIterator interface {
	// Next advances to and returns the next row, or ErrEndOfStream.
	Next() (tuple.Tuple, error)
	// Reset rewinds to before the first row without releasing the
	// underlying snapshot — used by FileScan.ResetToMark, which then
	// replays rows up to the marked position.
	Reset() error
	// Close releases the iterator's storage resources. Idempotent.
	Close() error
}

// FileScan is the leaf physical operator reading a base table's rows in
// storage order. It never interprets a predicate itself; a SimpleFilter is
// layered above it for that.
type FileScan struct {
	base
	Table TableHandle

	tableSchema *schema.TableSchema
	sch         *schema.Schema
	planCost    cost.PlanCost

	iter     RowIterator
	position int // rows consumed so far this Initialize
	markPos  int // position at the most recent Mark
}

func NewFileScan(table TableHandle) *FileScan {
	return &FileScan{Table: table}
}

func (f *FileScan) Prepare() error {
	if err := f.requirePrepare(); err != nil {
		return err
	}
	f.tableSchema = f.Table.TableSchema()
	f.sch = f.tableSchema.Schema
	stats := f.Table.Stats()
	f.planCost = cost.PlanCost{
		NumTuples:    stats.NumTuples,
		AvgTupleSize: stats.AvgTupleSize,
		CPUCost:      stats.NumTuples,
		NumBlockIOs:  stats.NumDataPages,
	}
	f.afterPrepare()
	return nil
}

func (f *FileScan) Schema() *schema.Schema { return f.sch }
func (f *FileScan) Cost() cost.PlanCost    { return f.planCost }

func (f *FileScan) Initialize() error {
	if err := f.requireInitialize(); err != nil {
		return err
	}
	iter, err := f.Table.FirstTuple()
	if err != nil {
		return errs.Wrap(errs.IO, err, "FileScan: opening row iterator")
	}
	f.iter = iter
	f.position = 0
	f.afterInitialize()
	return nil
}

func (f *FileScan) Next() (tuple.Tuple, error) {
	if err := f.requireNext(); err != nil {
		return nil, err
	}
	t, err := f.iter.Next()
	if err == ErrEndOfStream {
		f.markExhausted()
		return nil, ErrEndOfStream
	}
	if err != nil {
		return nil, err
	}
	f.position++
	return t, nil
}

// Mark records the current row position. FileScan has no native bookmark
// concept beyond "start over", so ResetToMark replays from the beginning
// and re-consumes markPos rows rather than seeking directly.
func (f *FileScan) Mark() error {
	if err := f.requireMark(); err != nil {
		return err
	}
	f.markPos = f.position
	f.afterMark()
	return nil
}

func (f *FileScan) ResetToMark() error {
	if err := f.requireResetToMark(); err != nil {
		return err
	}
	if err := f.iter.Reset(); err != nil {
		return errs.Wrap(errs.IO, err, "FileScan: resetting to mark")
	}
	for i := 0; i < f.markPos; i++ {
		if _, err := f.iter.Next(); err != nil {
			return errs.Wrap(errs.IO, err, "FileScan: replaying to marked position")
		}
	}
	f.position = f.markPos
	f.afterReset()
	return nil
}

func (f *FileScan) ResultsOrderedBy() []int { return nil }

func (f *FileScan) Cleanup() error {
	if f.iter != nil {
		if err := f.iter.Close(); err != nil {
			return errs.Wrap(errs.IO, err, "FileScan: closing row iterator")
		}
		f.iter = nil
	}
	f.cleanup()
	return nil
}
