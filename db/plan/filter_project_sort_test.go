package plan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nanodb/db/expr"
	"nanodb/db/types"
)

func TestSimpleFilterRejectsUnknownAndFalse(t *testing.T) {
	pred := expr.NewComparison(expr.Gt, expr.NewColumnRef("t1", "id"), expr.NewLiteral(types.NewInt(types.INTEGER, 1)))
	f := NewSimpleFilter(t1Node(), pred, 0.5)
	rows := drain(t, f)
	require.Len(t, rows, 2)
	require.Equal(t, int64(2), rows[0].Value(0).Int())
}

func TestProjectTrivialPassesTupleThrough(t *testing.T) {
	items := []ProjectItem{
		{Expr: expr.NewColumnRef("t1", "id"), Alias: "id"},
		{Expr: expr.NewColumnRef("t1", "val"), Alias: "val"},
	}
	p := NewProject(t1Node(), items)
	require.NoError(t, p.Prepare())
	require.True(t, p.trivial)
}

func TestProjectNonTrivialReordersColumns(t *testing.T) {
	items := []ProjectItem{
		{Expr: expr.NewColumnRef("t1", "val"), Alias: "val"},
	}
	p := NewProject(t1Node(), items)
	rows := drain(t, p)
	require.Len(t, rows, 3)
	require.Equal(t, 1, rows[0].ColumnCount())
	require.Equal(t, "a", rows[0].Value(0).Str())
}

func TestSortOrdersDescending(t *testing.T) {
	n := newSliceNode(idValSchema("t1"), row(2, "b"), row(1, "a"), row(3, "c"))
	s := NewSort(n, []SortKey{{ColumnIndex: 0, Descending: true}})
	rows := drain(t, s)
	require.Len(t, rows, 3)
	require.Equal(t, int64(3), rows[0].Value(0).Int())
	require.Equal(t, int64(2), rows[1].Value(0).Int())
	require.Equal(t, int64(1), rows[2].Value(0).Int())
}

func TestRenameRewritesQualifier(t *testing.T) {
	r := NewRename(t1Node(), "x")
	require.NoError(t, r.Prepare())
	require.Equal(t, "x.id", r.Schema().Column(0).QualifiedName())
}
