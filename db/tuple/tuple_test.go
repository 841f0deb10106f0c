package tuple

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nanodb/db/types"
)

func TestLiteralIsCacheableNotUpdatable(t *testing.T) {
	lit := NewLiteral(types.NewInt(types.INTEGER, 1))
	require.True(t, lit.Cacheable())
	require.False(t, lit.Updatable())
	require.Error(t, lit.SetValue(0, types.NewInt(types.INTEGER, 2)))
}

func TestConcatOrdersLeftThenRight(t *testing.T) {
	left := NewLiteral(types.NewInt(types.INTEGER, 1))
	right := NewLiteral(types.NewString(types.VARCHAR, "a"))

	out := Concat(left, right)
	require.Equal(t, 2, out.ColumnCount())
	require.Equal(t, int64(1), out.Value(0).Int())
	require.Equal(t, "a", out.Value(1).Str())
}

type fakeHandle struct {
	values   []types.Value
	writable bool
}

func (h *fakeHandle) Get(i int) types.Value        { return h.values[i] }
func (h *fakeHandle) Set(i int, v types.Value) error { h.values[i] = v; return nil }
func (h *fakeHandle) ColumnCount() int             { return len(h.values) }
func (h *fakeHandle) Writable() bool               { return h.writable }

func TestPageBackedNotCacheable(t *testing.T) {
	h := &fakeHandle{values: []types.Value{types.NewInt(types.INTEGER, 7)}, writable: false}
	pb := NewPageBacked(h)

	require.False(t, pb.Cacheable())
	require.False(t, pb.Updatable())
	require.Error(t, pb.SetValue(0, types.NewInt(types.INTEGER, 8)))
}

func TestMaterializeSnapshotsPageBacked(t *testing.T) {
	h := &fakeHandle{values: []types.Value{types.NewInt(types.INTEGER, 7)}, writable: true}
	pb := NewPageBacked(h)

	snap := Materialize(pb)
	require.True(t, snap.Cacheable())

	// Mutating the underlying handle must not affect the snapshot.
	require.NoError(t, h.Set(0, types.NewInt(types.INTEGER, 99)))
	require.Equal(t, int64(7), snap.Value(0).Int())
}
