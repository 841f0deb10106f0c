// Package storage implements NanoDB's on-disk heap on top of
// github.com/dgraph-io/badger/v4: every table is a keyspace prefix, rows
// are gob-encoded values keyed by a monotonic row id, and table-level
// metadata (schema plus row/page counts and per-column histograms) is
// persisted alongside the data it describes.
package storage

import (
	"github.com/dgraph-io/badger/v4"

	"nanodb/db/errs"
	"nanodb/db/schema"
)

// Engine owns the single badger database a NanoDB instance stores every
// table in.
type Engine struct {
	db *badger.DB
}

// Open opens (creating if absent) the badger database rooted at dir.
func Open(dir string) (*Engine, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errs.Wrap(errs.IO, err, "storage: opening database at %q", dir)
	}
	return &Engine{db: db}, nil
}

// Close releases the underlying database. Each Table's row-id sequence is
// released by that Table's own Close, not here.
func (e *Engine) Close() error {
	if err := e.db.Close(); err != nil {
		return errs.Wrap(errs.IO, err, "storage: closing database")
	}
	return nil
}

// CreateTable persists a new table's schema and returns a handle to it.
// Fails if a table by that name already exists.
func (e *Engine) CreateTable(ts *schema.TableSchema) (*Table, error) {
	meta := metaFromSchema(ts)
	err := e.db.Update(func(txn *badger.Txn) error {
		key := metaKey(ts.TableName)
		if _, err := txn.Get(key); err == nil {
			return errs.SchemaErrorf("table %q already exists", ts.TableName)
		} else if err != badger.ErrKeyNotFound {
			return errs.Wrap(errs.IO, err, "storage: checking for existing table %q", ts.TableName)
		}
		data, err := encodeGob(meta)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return nil, err
	}
	return e.newTable(ts)
}

// OpenTable loads a previously created table's schema and returns a handle
// to it.
func (e *Engine) OpenTable(name string) (*Table, error) {
	var meta tableMeta
	err := e.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(metaKey(name))
		if err == badger.ErrKeyNotFound {
			return errs.SchemaErrorf("table %q does not exist", name)
		}
		if err != nil {
			return errs.Wrap(errs.IO, err, "storage: loading table %q", name)
		}
		return item.Value(func(v []byte) error { return decodeGob(v, &meta) })
	})
	if err != nil {
		return nil, err
	}
	return e.newTable(meta.schema())
}

// DropTable deletes a table's metadata, rows, and index entries.
func (e *Engine) DropTable(name string) error {
	return e.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(metaKey(name)); err == badger.ErrKeyNotFound {
			return errs.SchemaErrorf("table %q does not exist", name)
		}
		// rowPrefix and the index prefix below both end in a NUL byte after
		// the table name, so sweeping "user"'s entries can never also catch
		// "users"'s. metaKey and statsKey have no such trailing separator,
		// so they must only ever be deleted as the single exact keys they
		// are, never swept as a prefix.
		if err := deletePrefix(txn, rowPrefix(name)); err != nil {
			return err
		}
		idxPrefix := append(append([]byte{}, idxNS...), append([]byte(name), 0)...)
		if err := deletePrefix(txn, idxPrefix); err != nil {
			return err
		}
		if err := txn.Delete(statsKey(name)); err != nil {
			return errs.Wrap(errs.IO, err, "storage: deleting stats for %q", name)
		}
		return txn.Delete(metaKey(name))
	})
}

func deletePrefix(txn *badger.Txn, prefix []byte) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	for _, k := range keys {
		if err := txn.Delete(k); err != nil {
			return errs.Wrap(errs.IO, err, "storage: deleting key under prefix %q", prefix)
		}
	}
	return nil
}

// ListTables returns every table name with persisted metadata.
func (e *Engine) ListTables() ([]string, error) {
	var names []string
	err := e.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(metaPrefix); it.ValidForPrefix(metaPrefix); it.Next() {
			k := it.Item().KeyCopy(nil)
			names = append(names, string(k[len(metaPrefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(errs.IO, err, "storage: listing tables")
	}
	return names, nil
}
