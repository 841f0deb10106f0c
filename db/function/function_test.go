package function

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nanodb/db/types"
)

func TestDuplicateRegistrationErrors(t *testing.T) {
	r := NewRegistry()
	d := Descriptor{Name: "upper", Eval: unaryString(func(s string) string { return s })}
	require.NoError(t, r.Register(d))
	require.Error(t, r.Register(d))
}

func TestGetIsCaseInsensitive(t *testing.T) {
	r := Default()
	_, ok := r.Get("upper")
	require.True(t, ok)
	_, ok = r.Get("UPPER")
	require.True(t, ok)
}

func TestConcatSkipsNulls(t *testing.T) {
	r := Default()
	d, ok := r.Get("CONCAT")
	require.True(t, ok)

	v, err := d.Eval([]types.Value{
		types.NewString(types.VARCHAR, "a"),
		types.Null(types.VARCHAR),
		types.NewString(types.VARCHAR, "b"),
	})
	require.NoError(t, err)
	require.Equal(t, "ab", v.Str())
}

func TestCoalesceReturnsFirstNonNull(t *testing.T) {
	r := Default()
	d, ok := r.Get("COALESCE")
	require.True(t, ok)

	v, err := d.Eval([]types.Value{
		types.Null(types.INTEGER),
		types.NewInt(types.INTEGER, 5),
	})
	require.NoError(t, err)
	require.Equal(t, int64(5), v.Int())
}
