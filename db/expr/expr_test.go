package expr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nanodb/db/env"
	"nanodb/db/function"
	"nanodb/db/types"
)

func TestComparisonUnknownWhenNull(t *testing.T) {
	cmp := NewComparison(Eq, NewLiteral(types.Null(types.INTEGER)), lit(1))
	tri, err := cmp.EvaluatePredicate(env.New())
	require.NoError(t, err)
	require.Equal(t, Unknown, tri)
}

func TestBetweenDesugarsToAnd(t *testing.T) {
	target := NewLiteral(types.NewInt(types.INTEGER, 5))
	b := NewBetween(target, lit(1), lit(10), false)

	ok, err := EvaluatePredicate(b, env.New())
	require.NoError(t, err)
	require.True(t, ok)

	b2 := NewBetween(NewLiteral(types.NewInt(types.INTEGER, 20)), lit(1), lit(10), false)
	ok, err = EvaluatePredicate(b2, env.New())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestInMatchesAndNegates(t *testing.T) {
	in := NewIn(lit(2), []Expression{lit(1), lit(2), lit(3)}, false)
	ok, err := EvaluatePredicate(in, env.New())
	require.NoError(t, err)
	require.True(t, ok)

	notIn := NewIn(lit(2), []Expression{lit(1), lit(3)}, true)
	ok, err = EvaluatePredicate(notIn, env.New())
	require.NoError(t, err)
	require.True(t, ok)
}

func TestLikeWildcards(t *testing.T) {
	target := NewLiteral(types.NewString(types.VARCHAR, "hello"))
	pattern := NewLiteral(types.NewString(types.VARCHAR, "h%o"))
	l := NewLike(target, pattern, false)

	ok, err := EvaluatePredicate(l, env.New())
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCallInvokesRegisteredFunction(t *testing.T) {
	reg := function.Default()
	call := NewCall("UPPER", []Expression{NewLiteral(types.NewString(types.VARCHAR, "hi"))}, reg)

	v, err := call.Evaluate(env.New())
	require.NoError(t, err)
	require.Equal(t, "HI", v.Str())
}

func TestCallUnknownFunctionErrors(t *testing.T) {
	reg := function.Default()
	call := NewCall("NOPE", nil, reg)

	_, err := call.Evaluate(env.New())
	require.Error(t, err)
}

func TestAllSymbolsCollectsColumnRefs(t *testing.T) {
	cmp := NewComparison(Eq, NewColumnRef("t", "a"), NewColumnRef("", "b"))
	syms := cmp.AllSymbols()
	require.True(t, syms["t.a"])
	require.True(t, syms["b"])
}

func TestDuplicateIsDeepCopy(t *testing.T) {
	and := NewAnd(lit(1), lit(2))
	dup := and.Duplicate().(*BooleanExpr)
	require.Len(t, dup.Terms, 2)
	require.NotSame(t, and.Terms[0], dup.Terms[0])
}
