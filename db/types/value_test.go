package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompareNullIsUnknown(t *testing.T) {
	a := NewInt(INTEGER, 1)
	n := Null(INTEGER)

	cmp, err := a.Compare(n)
	require.NoError(t, err)
	require.Equal(t, Unknown, cmp)

	cmp, err = n.Compare(n)
	require.NoError(t, err)
	require.Equal(t, Unknown, cmp)
}

func TestCompareNumericWidening(t *testing.T) {
	small := NewInt(SMALLINT, 2)
	big := NewFloat(DOUBLE, 2.0)

	cmp, err := small.Compare(big)
	require.NoError(t, err)
	require.Equal(t, Equal, cmp)
}

func TestCompareStringOrdering(t *testing.T) {
	a := NewString(VARCHAR, "alpha")
	b := NewString(VARCHAR, "beta")

	cmp, err := a.Compare(b)
	require.NoError(t, err)
	require.Equal(t, Less, cmp)
}

func TestCompareCrossFamilyIsError(t *testing.T) {
	a := NewInt(INTEGER, 1)
	b := NewString(VARCHAR, "1")

	_, err := a.Compare(b)
	require.Error(t, err)
}

func TestParseLiteralRoundTrip(t *testing.T) {
	v, err := ParseLiteral(INTEGER, "42")
	require.NoError(t, err)
	require.Equal(t, int64(42), v.Int())
	require.Equal(t, "42", v.String())

	d, err := ParseLiteral(DATE, "2024-01-15")
	require.NoError(t, err)
	require.False(t, d.IsNull())
}

func TestNullString(t *testing.T) {
	require.Equal(t, "NULL", Null(INTEGER).String())
}

func TestGobRoundTripPreservesValue(t *testing.T) {
	cases := []Value{
		NewInt(BIGINT, 42),
		NewFloat(DOUBLE, 3.5),
		NewString(VARCHAR, "hello"),
		Null(INTEGER),
	}
	for _, v := range cases {
		data, err := v.GobEncode()
		require.NoError(t, err)

		var out Value
		require.NoError(t, out.GobDecode(data))
		require.Equal(t, v.Type(), out.Type())
		require.Equal(t, v.IsNull(), out.IsNull())
		require.Equal(t, v.String(), out.String())
	}
}
