package env

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nanodb/db/schema"
	"nanodb/db/tuple"
	"nanodb/db/types"
)

func TestResolveUnqualified(t *testing.T) {
	s := schema.New(schema.ColumnDef{Qualifier: "t", Name: "a", Type: types.INTEGER})
	e := New()
	e.AddTuple(s, tuple.NewLiteral(types.NewInt(types.INTEGER, 42)))

	v, found, err := e.Resolve("", "a")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, int64(42), v.Int())
}

func TestResolveMissingReturnsNotFound(t *testing.T) {
	s := schema.New(schema.ColumnDef{Qualifier: "t", Name: "a", Type: types.INTEGER})
	e := New()
	e.AddTuple(s, tuple.NewLiteral(types.NewInt(types.INTEGER, 1)))

	_, found, err := e.Resolve("", "nope")
	require.NoError(t, err)
	require.False(t, found)
}

func TestResolveFirstBindingWins(t *testing.T) {
	left := schema.New(schema.ColumnDef{Qualifier: "l", Name: "id", Type: types.INTEGER})
	right := schema.New(schema.ColumnDef{Qualifier: "r", Name: "id", Type: types.INTEGER})

	e := New()
	e.AddTuple(left, tuple.NewLiteral(types.NewInt(types.INTEGER, 1)))
	e.AddTuple(right, tuple.NewLiteral(types.NewInt(types.INTEGER, 2)))

	v, found, err := e.Resolve("", "id")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, int64(1), v.Int())
}

func TestClearResetsBindings(t *testing.T) {
	s := schema.New(schema.ColumnDef{Qualifier: "t", Name: "a", Type: types.INTEGER})
	e := New()
	e.AddTuple(s, tuple.NewLiteral(types.NewInt(types.INTEGER, 1)))
	e.Clear()

	_, found, err := e.Resolve("", "a")
	require.NoError(t, err)
	require.False(t, found)
}
