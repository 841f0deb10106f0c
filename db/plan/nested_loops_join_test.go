package plan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nanodb/db/expr"
	"nanodb/db/schema"
	"nanodb/db/tuple"
	"nanodb/db/types"
)

func idValSchema(qualifier string) *schema.Schema {
	return schema.New(
		schema.ColumnDef{Qualifier: qualifier, Name: "id", Type: types.INTEGER},
		schema.ColumnDef{Qualifier: qualifier, Name: "val", Type: types.VARCHAR},
	)
}

func row(id int64, val string) *tuple.Literal {
	return tuple.NewLiteral(types.NewInt(types.INTEGER, id), types.NewString(types.VARCHAR, val))
}

func t1Node() *sliceNode {
	return newSliceNode(idValSchema("t1"), row(1, "a"), row(2, "b"), row(3, "c"))
}

func t2Node() *sliceNode {
	return newSliceNode(idValSchema("t2"), row(2, "x"), row(3, "y"), row(4, "z"))
}

func t3Node() *sliceNode {
	return newSliceNode(idValSchema("t3"))
}

func idEqualsPredicate(leftQualifier, rightQualifier string) expr.Expression {
	return expr.NewComparison(expr.Eq,
		expr.NewColumnRef(leftQualifier, "id"),
		expr.NewColumnRef(rightQualifier, "id"))
}

func drain(t *testing.T, n Node) []tuple.Tuple {
	t.Helper()
	require.NoError(t, n.Prepare())
	require.NoError(t, n.Initialize())
	var out []tuple.Tuple
	for {
		row, err := n.Next()
		if err == ErrEndOfStream {
			break
		}
		require.NoError(t, err)
		out = append(out, row)
	}
	require.NoError(t, n.Cleanup())
	return out
}

func TestInnerJoinMatchesOnly(t *testing.T) {
	j := NewNestedLoopsJoin(t1Node(), t2Node(), Inner, idEqualsPredicate("t1", "t2"))
	rows := drain(t, j)
	require.Len(t, rows, 2)
	require.Equal(t, int64(2), rows[0].Value(0).Int())
	require.Equal(t, int64(3), rows[1].Value(0).Int())
}

func TestLeftOuterJoinPadsUnmatchedLeft(t *testing.T) {
	j := NewNestedLoopsJoin(t1Node(), t2Node(), LeftOuter, idEqualsPredicate("t1", "t2"))
	rows := drain(t, j)
	require.Len(t, rows, 3)

	require.Equal(t, int64(1), rows[0].Value(0).Int())
	require.True(t, rows[0].Value(2).IsNull()) // t2.id padded NULL
	require.Equal(t, int64(2), rows[1].Value(0).Int())
	require.Equal(t, int64(3), rows[2].Value(0).Int())
}

func TestRightOuterJoinPadsUnmatchedRight(t *testing.T) {
	j := NewNestedLoopsJoin(t1Node(), t2Node(), RightOuter, idEqualsPredicate("t1", "t2"))
	rows := drain(t, j)
	require.Len(t, rows, 3)

	// Output column order is always left-then-right regardless of the
	// internal swap: columns 0,1 are t1.id/t1.val, 2,3 are t2.id/t2.val.
	require.Equal(t, int64(2), rows[0].Value(0).Int())
	require.Equal(t, int64(3), rows[1].Value(0).Int())
	require.True(t, rows[2].Value(0).IsNull()) // t1 side padded NULL
	require.Equal(t, int64(4), rows[2].Value(2).Int())
}

func TestFullOuterJoinPadsBothSides(t *testing.T) {
	j := NewNestedLoopsJoin(t1Node(), t2Node(), FullOuter, idEqualsPredicate("t1", "t2"))
	rows := drain(t, j)
	require.Len(t, rows, 4)

	ids := map[int64]bool{}
	for _, r := range rows {
		if !r.Value(0).IsNull() {
			ids[r.Value(0).Int()] = true
		}
	}
	require.True(t, ids[1])
	require.True(t, ids[2])
	require.True(t, ids[3])

	// exactly one row has a NULL left side (t1) and a populated right side.
	foundRightOnly := false
	for _, r := range rows {
		if r.Value(0).IsNull() && r.Value(2).Int() == 4 {
			foundRightOnly = true
		}
	}
	require.True(t, foundRightOnly)
}

func TestCrossJoinProducesCartesianProduct(t *testing.T) {
	j := NewNestedLoopsJoin(t1Node(), t2Node(), Cross, nil)
	rows := drain(t, j)
	require.Len(t, rows, 9)
}

func TestJoinAgainstEmptyTableInner(t *testing.T) {
	j := NewNestedLoopsJoin(t1Node(), t3Node(), Inner, idEqualsPredicate("t1", "t3"))
	rows := drain(t, j)
	require.Len(t, rows, 0)
}

func TestJoinAgainstEmptyTableLeftOuterPadsAll(t *testing.T) {
	j := NewNestedLoopsJoin(t1Node(), t3Node(), LeftOuter, idEqualsPredicate("t1", "t3"))
	rows := drain(t, j)
	require.Len(t, rows, 3)
	for _, r := range rows {
		require.True(t, r.Value(2).IsNull())
	}
}

func TestJoinAgainstEmptyTableCrossProducesNothing(t *testing.T) {
	j := NewNestedLoopsJoin(t3Node(), t1Node(), Cross, nil)
	rows := drain(t, j)
	require.Len(t, rows, 0)
}

func TestJoinSchemaIsLeftThenRight(t *testing.T) {
	j := NewNestedLoopsJoin(t1Node(), t2Node(), RightOuter, idEqualsPredicate("t1", "t2"))
	require.NoError(t, j.Prepare())
	s := j.Schema()
	require.Equal(t, "t1.id", s.Column(0).QualifiedName())
	require.Equal(t, "t2.id", s.Column(2).QualifiedName())
}
