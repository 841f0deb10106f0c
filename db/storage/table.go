package storage

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"nanodb/db/errs"
	"nanodb/db/index"
	"nanodb/db/plan"
	"nanodb/db/schema"
	"nanodb/db/types"
)

// Table is a handle to one badger-backed table: its schema, its row-id
// sequence, and a unique-value index per primary key and candidate key
// group. It implements plan.TableHandle, so a planned FileScan can drive it
// directly.
type Table struct {
	engine *Engine
	schema *schema.TableSchema

	seq *badger.Sequence

	pkColumns []int
	pkIndex   *index.HashIndex

	uniqueColumns [][]int
	uniqueIdx     []*index.HashIndex
}

func (e *Engine) newTable(ts *schema.TableSchema) (*Table, error) {
	t := &Table{engine: e, schema: ts}

	if len(ts.PrimaryKey) > 0 {
		cols, err := columnIndices(ts, ts.PrimaryKey)
		if err != nil {
			return nil, err
		}
		t.pkColumns = cols
		t.pkIndex = index.NewHashIndex(indexPrefix(ts.TableName, "__pk"))
	}
	for i, group := range ts.Candidates {
		cols, err := columnIndices(ts, group)
		if err != nil {
			return nil, err
		}
		t.uniqueColumns = append(t.uniqueColumns, cols)
		t.uniqueIdx = append(t.uniqueIdx, index.NewHashIndex(indexPrefix(ts.TableName, fmt.Sprintf("__uniq%d", i))))
	}

	seq, err := e.db.GetSequence(seqKey(ts.TableName), 100)
	if err != nil {
		return nil, errs.Wrap(errs.IO, err, "storage: opening row-id sequence for %q", ts.TableName)
	}
	t.seq = seq

	return t, nil
}

func columnIndices(ts *schema.TableSchema, names []string) ([]int, error) {
	out := make([]int, len(names))
	for i, name := range names {
		idx, err := ts.ColumnIndex(name)
		if err != nil {
			return nil, err
		}
		if idx < 0 {
			return nil, errs.SchemaErrorf("table %q has no column %q", ts.TableName, name)
		}
		out[i] = idx
	}
	return out, nil
}

func selectValues(values []types.Value, idxs []int) []types.Value {
	out := make([]types.Value, len(idxs))
	for i, idx := range idxs {
		out[i] = values[idx]
	}
	return out
}

// Close releases the table's row-id sequence lease. Safe to call once a
// table is no longer in use (e.g. the catalog is dropping or closing it).
func (t *Table) Close() error {
	if t.seq == nil {
		return nil
	}
	if err := t.seq.Release(); err != nil {
		return errs.Wrap(errs.IO, err, "storage: releasing row-id sequence for %q", t.schema.TableName)
	}
	return nil
}

// TableSchema implements plan.TableHandle.
func (t *Table) TableSchema() *schema.TableSchema { return t.schema }

func (t *Table) validate(values []types.Value) error {
	cols := t.schema.Columns()
	if len(values) != len(cols) {
		return errs.SchemaErrorf("table %q: expected %d columns, got %d", t.schema.TableName, len(cols), len(values))
	}
	for i, v := range values {
		if v.IsNull() {
			if !cols[i].Nullable {
				return errs.SchemaErrorf("table %q: column %q is not nullable", t.schema.TableName, cols[i].Name)
			}
			continue
		}
		if v.Type() != cols[i].Type {
			return errs.SchemaErrorf("table %q: column %q expects %s, got %s", t.schema.TableName, cols[i].Name, cols[i].Type, v.Type())
		}
	}
	return nil
}

// Insert appends a new row, enforcing the primary key and every candidate
// key group's uniqueness.
func (t *Table) Insert(values []types.Value) error {
	if err := t.validate(values); err != nil {
		return err
	}

	return t.engine.db.Update(func(txn *badger.Txn) error {
		id, err := t.seq.Next()
		if err != nil {
			return errs.Wrap(errs.IO, err, "storage: allocating row id for %q", t.schema.TableName)
		}
		idBytes := rowIDBytes(id)

		if t.pkIndex != nil {
			pkVal := compositeValue(selectValues(values, t.pkColumns))
			if err := t.pkIndex.Set(txn, pkVal, idBytes); err != nil {
				return errs.Wrap(errs.Schema, err, "storage: inserting into %q: duplicate primary key", t.schema.TableName)
			}
		}
		for i, cols := range t.uniqueColumns {
			val := compositeValue(selectValues(values, cols))
			if err := t.uniqueIdx[i].Set(txn, val, idBytes); err != nil {
				return errs.Wrap(errs.Schema, err, "storage: inserting into %q: duplicate unique value", t.schema.TableName)
			}
		}

		data, err := encodeGob(values)
		if err != nil {
			return err
		}
		if err := txn.Set(rowKey(t.schema.TableName, id), data); err != nil {
			return errs.Wrap(errs.IO, err, "storage: writing row into %q", t.schema.TableName)
		}
		return nil
	})
}

func (t *Table) getRow(txn *badger.Txn, id uint64) ([]types.Value, error) {
	item, err := txn.Get(rowKey(t.schema.TableName, id))
	if err != nil {
		return nil, errs.Wrap(errs.IO, err, "storage: reading row %d of %q", id, t.schema.TableName)
	}
	var values []types.Value
	if err := item.Value(func(v []byte) error { return decodeGob(v, &values) }); err != nil {
		return nil, err
	}
	return values, nil
}

// Delete removes the row identified by its primary key value(s).
func (t *Table) Delete(pkValues []types.Value) error {
	if t.pkIndex == nil {
		return errs.SchemaErrorf("table %q has no primary key to delete by", t.schema.TableName)
	}
	pkVal := compositeValue(pkValues)

	return t.engine.db.Update(func(txn *badger.Txn) error {
		idBytes, ok, err := t.pkIndex.Get(txn, pkVal)
		if err != nil {
			return err
		}
		if !ok {
			return errs.SchemaErrorf("table %q: no row for the given primary key", t.schema.TableName)
		}
		id := rowIDFromBytes(idBytes)

		old, err := t.getRow(txn, id)
		if err != nil {
			return err
		}

		if err := txn.Delete(rowKey(t.schema.TableName, id)); err != nil {
			return errs.Wrap(errs.IO, err, "storage: deleting row %d of %q", id, t.schema.TableName)
		}
		if err := t.pkIndex.Delete(txn, pkVal); err != nil {
			return err
		}
		for i, cols := range t.uniqueColumns {
			val := compositeValue(selectValues(old, cols))
			if err := t.uniqueIdx[i].Delete(txn, val); err != nil {
				return err
			}
		}
		return nil
	})
}

// Update overwrites the row identified by pkValues with newValues.
// Updating the primary key itself is not supported: the row's identity in
// every index is keyed off the value it was inserted with.
func (t *Table) Update(pkValues []types.Value, newValues []types.Value) error {
	if t.pkIndex == nil {
		return errs.SchemaErrorf("table %q has no primary key to update by", t.schema.TableName)
	}
	if err := t.validate(newValues); err != nil {
		return err
	}
	pkVal := compositeValue(pkValues)

	return t.engine.db.Update(func(txn *badger.Txn) error {
		idBytes, ok, err := t.pkIndex.Get(txn, pkVal)
		if err != nil {
			return err
		}
		if !ok {
			return errs.SchemaErrorf("table %q: no row for the given primary key", t.schema.TableName)
		}
		id := rowIDFromBytes(idBytes)

		old, err := t.getRow(txn, id)
		if err != nil {
			return err
		}

		if !compositeValue(selectValues(newValues, t.pkColumns)).Equal(pkVal) {
			return errs.SchemaErrorf("table %q: updating the primary key is not supported", t.schema.TableName)
		}

		for i, cols := range t.uniqueColumns {
			oldVal := compositeValue(selectValues(old, cols))
			newVal := compositeValue(selectValues(newValues, cols))
			if newVal.Equal(oldVal) {
				continue
			}
			if err := t.uniqueIdx[i].Set(txn, newVal, idBytes); err != nil {
				return errs.Wrap(errs.Schema, err, "storage: updating %q: duplicate unique value", t.schema.TableName)
			}
			if err := t.uniqueIdx[i].Delete(txn, oldVal); err != nil {
				return err
			}
		}

		data, err := encodeGob(newValues)
		if err != nil {
			return err
		}
		if err := txn.Set(rowKey(t.schema.TableName, id), data); err != nil {
			return errs.Wrap(errs.IO, err, "storage: writing updated row %d of %q", id, t.schema.TableName)
		}
		return nil
	})
}

// Scan calls yield once per row in storage order, stopping early if yield
// returns false.
func (t *Table) Scan(yield func(id uint64, values []types.Value) bool) error {
	prefix := rowPrefix(t.schema.TableName)
	return t.engine.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			id := rowIDFromKey(t.schema.TableName, item.KeyCopy(nil))
			var values []types.Value
			if err := item.Value(func(v []byte) error { return decodeGob(v, &values) }); err != nil {
				return err
			}
			if !yield(id, values) {
				break
			}
		}
		return nil
	})
}

// GetByPrimaryKey looks up a single row by its primary key value(s).
func (t *Table) GetByPrimaryKey(pkValues []types.Value) ([]types.Value, bool, error) {
	if t.pkIndex == nil {
		return nil, false, errs.SchemaErrorf("table %q has no primary key", t.schema.TableName)
	}
	var result []types.Value
	found := false
	err := t.engine.db.View(func(txn *badger.Txn) error {
		idBytes, ok, err := t.pkIndex.Get(txn, compositeValue(pkValues))
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		values, err := t.getRow(txn, rowIDFromBytes(idBytes))
		if err != nil {
			return err
		}
		result, found = values, true
		return nil
	})
	return result, found, err
}

var _ plan.TableHandle = (*Table)(nil)
