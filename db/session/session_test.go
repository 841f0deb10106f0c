package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func TestRunSplitsMultipleStatements(t *testing.T) {
	s := openTestSession(t)
	results, outcome, err := s.Run(context.Background(), `
		CREATE TABLE widgets (id INT PRIMARY KEY, label VARCHAR);
		INSERT INTO widgets (id, label) VALUES (1, 'a;b'), (2, 'c');
		SELECT label FROM widgets ORDER BY id;
	`)
	require.NoError(t, err)
	require.Equal(t, Continue, outcome)
	require.Len(t, results, 3)
	require.Equal(t, "a;b", results[2].Rows[0][0].Str())
	require.Equal(t, "c", results[2].Rows[1][0].Str())
}

func TestRunTracksTransactionBanner(t *testing.T) {
	s := openTestSession(t)
	require.False(t, s.InTransaction())

	_, _, err := s.Run(context.Background(), "BEGIN")
	require.NoError(t, err)
	require.True(t, s.InTransaction())

	_, _, err = s.Run(context.Background(), "COMMIT")
	require.NoError(t, err)
	require.False(t, s.InTransaction())
}

func TestRunStopsOnExit(t *testing.T) {
	s := openTestSession(t)
	results, outcome, err := s.Run(context.Background(), "SELECT 1; EXIT; SELECT 2;")
	require.NoError(t, err)
	require.Equal(t, Exit, outcome)
	require.Len(t, results, 1)
}

func TestRunStopsOnCrash(t *testing.T) {
	s := openTestSession(t)
	_, outcome, err := s.Run(context.Background(), "CRASH")
	require.NoError(t, err)
	require.Equal(t, Crash, outcome)
}

func TestNewStampsEachSessionWithAUniqueID(t *testing.T) {
	a := openTestSession(t)
	b := openTestSession(t)
	require.NotEmpty(t, a.ID)
	require.NotEmpty(t, b.ID)
	require.NotEqual(t, a.ID, b.ID)
}

func TestRunReturnsErrorFromFailingStatement(t *testing.T) {
	s := openTestSession(t)
	_, outcome, err := s.Run(context.Background(), "SELECT * FROM missing_table")
	require.Error(t, err)
	require.Equal(t, Continue, outcome)
}
