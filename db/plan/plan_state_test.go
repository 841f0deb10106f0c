package plan

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitializeBeforePrepareIsPlanError(t *testing.T) {
	n := t1Node()
	err := n.Initialize()
	require.Error(t, err)
}

func TestNextBeforeInitializeIsPlanError(t *testing.T) {
	n := t1Node()
	require.NoError(t, n.Prepare())
	_, err := n.Next()
	require.Error(t, err)
}

func TestMarkThenResetToMarkRewinds(t *testing.T) {
	n := t1Node()
	require.NoError(t, n.Prepare())
	require.NoError(t, n.Initialize())

	first, err := n.Next()
	require.NoError(t, err)
	require.NoError(t, n.Mark())

	second, err := n.Next()
	require.NoError(t, err)
	require.NotEqual(t, first.Value(0).Int(), second.Value(0).Int())

	require.NoError(t, n.ResetToMark())
	replay, err := n.Next()
	require.NoError(t, err)
	require.Equal(t, second.Value(0).Int(), replay.Value(0).Int())
}

func TestIterationIsIdempotentUntilExhausted(t *testing.T) {
	rows := drain(t, t1Node())
	require.Len(t, rows, 3)

	n2 := t1Node()
	require.NoError(t, n2.Prepare())
	require.NoError(t, n2.Initialize())
	for range rows {
		_, err := n2.Next()
		require.NoError(t, err)
	}
	_, err := n2.Next()
	require.Equal(t, ErrEndOfStream, err)
	// Calling Next again past exhaustion returns a PlanError (the node is
	// in state Exhausted), not a panic.
	_, err = n2.Next()
	require.Error(t, err)
}
