package index

import (
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"nanodb/db/types"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.Close()) })
	return db
}

func TestHashIndexSetGetDelete(t *testing.T) {
	db := openTestDB(t)
	idx := NewHashIndex([]byte("idx\x00t\x00pk\x00"))

	v := types.NewInt(types.INTEGER, 7)
	require.NoError(t, db.Update(func(txn *badger.Txn) error {
		return idx.Set(txn, v, []byte("row-7"))
	}))

	require.NoError(t, db.View(func(txn *badger.Txn) error {
		pk, ok, err := idx.Get(txn, v)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, []byte("row-7"), pk)
		return nil
	}))

	require.NoError(t, db.Update(func(txn *badger.Txn) error {
		return idx.Delete(txn, v)
	}))

	require.NoError(t, db.View(func(txn *badger.Txn) error {
		_, ok, err := idx.Get(txn, v)
		require.NoError(t, err)
		require.False(t, ok)
		return nil
	}))
}

func TestHashIndexSetRejectsDuplicate(t *testing.T) {
	db := openTestDB(t)
	idx := NewHashIndex([]byte("idx\x00t\x00pk\x00"))
	v := types.NewInt(types.INTEGER, 1)

	require.NoError(t, db.Update(func(txn *badger.Txn) error {
		return idx.Set(txn, v, []byte("row-1"))
	}))

	err := db.Update(func(txn *badger.Txn) error {
		return idx.Set(txn, v, []byte("row-1-again"))
	})
	require.Error(t, err)
}
