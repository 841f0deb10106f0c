// Package index implements NanoDB's secondary-index layer: a unique-value
// hash index keyed on a table column's encoded value, adapted from the
// teacher's in-memory HashIndex to live in badger alongside the row data it
// indexes rather than in a bare Go map.
package index

import (
	"github.com/dgraph-io/badger/v4"

	"nanodb/db/errs"
	"nanodb/db/types"
)

// HashIndex is a unique-value index over one table column. Entries are
// ordinary badger keys under the index's own prefix, so Get/Set/Delete
// participate in whatever transaction the caller (db/storage's Table) is
// already using for the row write they accompany.
type HashIndex struct {
	prefix []byte
}

// NewHashIndex builds a HashIndex whose entries live under prefix. Callers
// are responsible for giving every index a prefix disjoint from row data
// and from every other index.
func NewHashIndex(prefix []byte) *HashIndex {
	return &HashIndex{prefix: append([]byte{}, prefix...)}
}

func (idx *HashIndex) key(val types.Value) ([]byte, error) {
	enc, err := val.GobEncode()
	if err != nil {
		return nil, errs.Wrap(errs.IO, err, "index: encoding key value")
	}
	k := make([]byte, 0, len(idx.prefix)+len(enc))
	k = append(k, idx.prefix...)
	k = append(k, enc...)
	return k, nil
}

// Get returns the primary-key bytes stored for val, as seen by txn.
func (idx *HashIndex) Get(txn *badger.Txn, val types.Value) ([]byte, bool, error) {
	k, err := idx.key(val)
	if err != nil {
		return nil, false, err
	}
	item, err := txn.Get(k)
	if err == badger.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errs.Wrap(errs.IO, err, "index: lookup")
	}
	var pk []byte
	if err := item.Value(func(v []byte) error {
		pk = append([]byte{}, v...)
		return nil
	}); err != nil {
		return nil, false, errs.Wrap(errs.IO, err, "index: reading entry")
	}
	return pk, true, nil
}

// Set records that val maps to pk, within txn. Returns errs.Schema if an
// entry already exists for val, so callers can surface a uniqueness
// violation without a separate Get round-trip.
func (idx *HashIndex) Set(txn *badger.Txn, val types.Value, pk []byte) error {
	if _, exists, err := idx.Get(txn, val); err != nil {
		return err
	} else if exists {
		return errs.SchemaErrorf("duplicate value for unique index")
	}
	k, err := idx.key(val)
	if err != nil {
		return err
	}
	if err := txn.Set(k, pk); err != nil {
		return errs.Wrap(errs.IO, err, "index: writing entry")
	}
	return nil
}

// Delete removes val's entry, within txn. Deleting an absent entry is a
// no-op, matching badger's own Delete semantics.
func (idx *HashIndex) Delete(txn *badger.Txn, val types.Value) error {
	k, err := idx.key(val)
	if err != nil {
		return err
	}
	if err := txn.Delete(k); err != nil {
		return errs.Wrap(errs.IO, err, "index: deleting entry")
	}
	return nil
}
