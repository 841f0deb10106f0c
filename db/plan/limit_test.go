package plan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nanodb/db/schema"
	"nanodb/db/tuple"
	"nanodb/db/types"
)

func numberedRows(n int) []tuple.Tuple {
	rows := make([]tuple.Tuple, n)
	for i := 0; i < n; i++ {
		rows[i] = tuple.NewLiteral(types.NewInt(types.INTEGER, int64(i)))
	}
	return rows
}

func TestLimitTruncatesRows(t *testing.T) {
	sch := schema.New(schema.ColumnDef{Name: "n", Type: types.INTEGER})
	l := NewLimit(newSliceNode(sch, numberedRows(5)...), 3)
	rows := drain(t, l)
	require.Len(t, rows, 3)
	require.Equal(t, int64(0), rows[0].Value(0).Int())
	require.Equal(t, int64(2), rows[2].Value(0).Int())
}

func TestLimitLargerThanInputPassesAllRows(t *testing.T) {
	sch := schema.New(schema.ColumnDef{Name: "n", Type: types.INTEGER})
	l := NewLimit(newSliceNode(sch, numberedRows(2)...), 10)
	rows := drain(t, l)
	require.Len(t, rows, 2)
}

func TestLimitZeroProducesNoRows(t *testing.T) {
	sch := schema.New(schema.ColumnDef{Name: "n", Type: types.INTEGER})
	l := NewLimit(newSliceNode(sch, numberedRows(3)...), 0)
	rows := drain(t, l)
	require.Empty(t, rows)
}
