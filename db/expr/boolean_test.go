package expr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nanodb/db/env"
	"nanodb/db/types"
)

func lit(i int64) *Literal { return NewLiteral(types.NewInt(types.INTEGER, i)) }

func TestAndFlattensExistingAndOnLeft(t *testing.T) {
	ab := NewAnd(lit(1), lit(2))
	abc := NewAnd(ab, lit(3))

	require.Len(t, abc.Terms, 3)
	require.NotPanics(t, func() {
		for _, term := range abc.Terms {
			_, ok := term.(*BooleanExpr)
			require.False(t, ok, "terms must not contain a nested AND")
		}
	})
}

func TestAndFlattensExistingAndOnRight(t *testing.T) {
	bc := NewAnd(lit(2), lit(3))
	abc := NewAnd(lit(1), bc)

	require.Len(t, abc.Terms, 3)
}

func TestAndDoesNotFlattenOr(t *testing.T) {
	or := NewOr(lit(1), lit(2))
	mixed := NewAnd(or, lit(3))

	require.Len(t, mixed.Terms, 2)
	_, ok := mixed.Terms[0].(*BooleanExpr)
	require.True(t, ok)
}

func TestThreeValuedAndFalseDominates(t *testing.T) {
	falseLit := NewLiteral(types.NewInt(types.INTEGER, 0))
	nullLit := NewLiteral(types.Null(types.INTEGER))

	and := NewAnd(falseLit, nullLit)
	ok, err := EvaluatePredicate(and, env.New())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestThreeValuedOrTrueDominates(t *testing.T) {
	trueLit := NewLiteral(types.NewInt(types.INTEGER, 1))
	nullLit := NewLiteral(types.Null(types.INTEGER))

	or := NewOr(trueLit, nullLit)
	ok, err := EvaluatePredicate(or, env.New())
	require.NoError(t, err)
	require.True(t, ok)
}

func TestUnknownTreatedAsFalseInWhere(t *testing.T) {
	nullLit := NewLiteral(types.Null(types.INTEGER))
	andWithNull := NewAnd(NewLiteral(types.NewInt(types.INTEGER, 1)), nullLit)

	ok, err := EvaluatePredicate(andWithNull, env.New())
	require.NoError(t, err)
	require.False(t, ok)
}
