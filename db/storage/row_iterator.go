package storage

import (
	"github.com/dgraph-io/badger/v4"

	"nanodb/db/errs"
	"nanodb/db/plan"
	"nanodb/db/tuple"
	"nanodb/db/types"
)

// rowIterator is a single pass over one table's rows, pinned to the badger
// snapshot its read-only transaction was opened against. Closing it
// discards that transaction, releasing badger's MVCC version pin — the
// real resource FileScan's Cleanup/ResetToMark contract expects a storage
// iterator to hold.
type rowIterator struct {
	txn    *badger.Txn
	it     *badger.Iterator
	prefix []byte
}

// FirstTuple implements plan.TableHandle: opens a fresh read-only
// transaction (badger's snapshot) and positions an iterator at the first
// row of the table's keyspace.
func (t *Table) FirstTuple() (plan.RowIterator, error) {
	txn := t.engine.db.NewTransaction(false)
	prefix := rowPrefix(t.schema.TableName)
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	it.Seek(prefix)
	return &rowIterator{txn: txn, it: it, prefix: prefix}, nil
}

func (r *rowIterator) Next() (tuple.Tuple, error) {
	if !r.it.ValidForPrefix(r.prefix) {
		return nil, plan.ErrEndOfStream
	}
	var values []types.Value
	item := r.it.Item()
	if err := item.Value(func(v []byte) error { return decodeGob(v, &values) }); err != nil {
		return nil, errs.Wrap(errs.IO, err, "storage: decoding row")
	}
	r.it.Next()
	return tuple.NewLiteral(values...), nil
}

// Reset rewinds to the first row without releasing the pinned snapshot, so
// the rows seen after Reset are exactly those seen before it — matching
// FileScan's ResetToMark replay contract.
func (r *rowIterator) Reset() error {
	r.it.Close()
	r.it = r.txn.NewIterator(badger.DefaultIteratorOptions)
	r.it.Seek(r.prefix)
	return nil
}

func (r *rowIterator) Close() error {
	if r.it != nil {
		r.it.Close()
		r.it = nil
	}
	r.txn.Discard()
	return nil
}

var _ plan.RowIterator = (*rowIterator)(nil)
