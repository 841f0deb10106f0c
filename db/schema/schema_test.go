package schema

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nanodb/db/errs"
	"nanodb/db/types"
)

func intCol(qualifier, name string) ColumnDef {
	return ColumnDef{Qualifier: qualifier, Name: name, Type: types.INTEGER}
}

func TestColumnIndexUnique(t *testing.T) {
	s := New(intCol("t1", "a"), intCol("t1", "b"))

	idx, err := s.ColumnIndex("b")
	require.NoError(t, err)
	require.Equal(t, 1, idx)

	idx, err = s.ColumnIndex("missing")
	require.NoError(t, err)
	require.Equal(t, -1, idx)
}

func TestColumnIndexAmbiguous(t *testing.T) {
	s := New(intCol("t1", "id"), intCol("t2", "id"))

	_, err := s.ColumnIndex("id")
	require.Error(t, err)

	kind, ok := errs.KindOf(err)
	require.True(t, ok)
	require.Equal(t, errs.Schema, kind)
}

func TestQualifiedLookupBypassesAmbiguity(t *testing.T) {
	s := New(intCol("t1", "id"), intCol("t2", "id"))

	idx := s.QualifiedColumnIndex("t2", "id")
	require.Equal(t, 1, idx)
}

func TestJoinConcatenatesColumns(t *testing.T) {
	left := New(intCol("t1", "a"))
	right := New(intCol("t2", "b"))

	joined := left.Join(right)
	require.Equal(t, 2, joined.Len())
	require.Equal(t, "t1.a", joined.Column(0).QualifiedName())
	require.Equal(t, "t2.b", joined.Column(1).QualifiedName())
}

func TestWithQualifierRewritesAllColumns(t *testing.T) {
	s := New(intCol("t1", "a"), intCol("t1", "b"))
	renamed := s.WithQualifier("x")

	require.Equal(t, "x.a", renamed.Column(0).QualifiedName())
	require.Equal(t, "x.b", renamed.Column(1).QualifiedName())
}
