package storage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nanodb/db/plan"
	"nanodb/db/schema"
	"nanodb/db/types"
)

func openTestEngine(t *testing.T) *Engine {
	t.Helper()
	dir := t.TempDir()
	e, err := Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, e.Close()) })
	return e
}

func usersSchema() *schema.TableSchema {
	ts := schema.NewTableSchema("users",
		schema.ColumnDef{Name: "id", Type: types.INTEGER},
		schema.ColumnDef{Name: "email", Type: types.VARCHAR},
		schema.ColumnDef{Name: "age", Type: types.INTEGER, Nullable: true},
	)
	ts.PrimaryKey = []string{"id"}
	ts.Candidates = [][]string{{"email"}}
	return ts
}

func row(id int64, email string, age int64) []types.Value {
	return []types.Value{
		types.NewInt(types.INTEGER, id),
		types.NewString(types.VARCHAR, email),
		types.NewInt(types.INTEGER, age),
	}
}

func TestCreateTableThenOpenTableRoundTripsSchema(t *testing.T) {
	e := openTestEngine(t)
	_, err := e.CreateTable(usersSchema())
	require.NoError(t, err)

	opened, err := e.OpenTable("users")
	require.NoError(t, err)
	require.Equal(t, []string{"id"}, opened.TableSchema().PrimaryKey)
	require.Equal(t, 3, opened.TableSchema().Len())

	_, err = e.CreateTable(usersSchema())
	require.Error(t, err)
}

func TestInsertRejectsDuplicatePrimaryKeyAndUniqueColumn(t *testing.T) {
	e := openTestEngine(t)
	table, err := e.CreateTable(usersSchema())
	require.NoError(t, err)

	require.NoError(t, table.Insert(row(1, "a@example.com", 30)))
	require.Error(t, table.Insert(row(1, "b@example.com", 31)))
	require.Error(t, table.Insert(row(2, "a@example.com", 32)))
	require.NoError(t, table.Insert(row(2, "b@example.com", 32)))
}

func TestUpdateRejectsPrimaryKeyChangeAndUniqueConflict(t *testing.T) {
	e := openTestEngine(t)
	table, err := e.CreateTable(usersSchema())
	require.NoError(t, err)
	require.NoError(t, table.Insert(row(1, "a@example.com", 30)))
	require.NoError(t, table.Insert(row(2, "b@example.com", 31)))

	pk := []types.Value{types.NewInt(types.INTEGER, 1)}

	require.Error(t, table.Update(pk, row(2, "a@example.com", 30)))
	require.Error(t, table.Update(pk, row(1, "b@example.com", 30)))
	require.NoError(t, table.Update(pk, row(1, "a2@example.com", 99)))

	values, ok, err := table.GetByPrimaryKey(pk)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a2@example.com", values[1].Str())
	require.Equal(t, int64(99), values[2].Int())
}

func TestDeleteRemovesRowAndIndexEntries(t *testing.T) {
	e := openTestEngine(t)
	table, err := e.CreateTable(usersSchema())
	require.NoError(t, err)
	require.NoError(t, table.Insert(row(1, "a@example.com", 30)))

	pk := []types.Value{types.NewInt(types.INTEGER, 1)}
	require.NoError(t, table.Delete(pk))

	_, ok, err := table.GetByPrimaryKey(pk)
	require.NoError(t, err)
	require.False(t, ok)

	// The email is free again once the row is gone.
	require.NoError(t, table.Insert(row(2, "a@example.com", 40)))
}

func TestScanVisitsEveryRow(t *testing.T) {
	e := openTestEngine(t)
	table, err := e.CreateTable(usersSchema())
	require.NoError(t, err)
	require.NoError(t, table.Insert(row(1, "a@example.com", 30)))
	require.NoError(t, table.Insert(row(2, "b@example.com", 31)))

	seen := map[int64]bool{}
	require.NoError(t, table.Scan(func(_ uint64, values []types.Value) bool {
		seen[values[0].Int()] = true
		return true
	}))
	require.True(t, seen[1])
	require.True(t, seen[2])
}

func TestFirstTupleDrainsAllRowsAndSupportsReset(t *testing.T) {
	e := openTestEngine(t)
	table, err := e.CreateTable(usersSchema())
	require.NoError(t, err)
	require.NoError(t, table.Insert(row(1, "a@example.com", 30)))
	require.NoError(t, table.Insert(row(2, "b@example.com", 31)))

	it, err := table.FirstTuple()
	require.NoError(t, err)
	defer it.Close()

	var count int
	for {
		_, err := it.Next()
		if err == plan.ErrEndOfStream {
			break
		}
		require.NoError(t, err)
		count++
	}
	require.Equal(t, 2, count)

	require.NoError(t, it.Reset())
	_, err = it.Next()
	require.NoError(t, err)
}

func TestAnalyzeThenStatsReportsRealCounts(t *testing.T) {
	e := openTestEngine(t)
	table, err := e.CreateTable(usersSchema())
	require.NoError(t, err)
	require.NoError(t, table.Insert(row(1, "a@example.com", 30)))
	require.NoError(t, table.Insert(row(2, "b@example.com", 31)))
	require.NoError(t, table.Insert(row(3, "c@example.com", 32)))

	require.NoError(t, table.Analyze())
	stats := table.Stats()
	require.Equal(t, float64(3), stats.NumTuples)
	require.Greater(t, stats.AvgTupleSize, 0.0)

	hist, ok := table.Histograms()
	require.True(t, ok)
	require.Len(t, hist, 3)
	require.Equal(t, "id", hist[0].ColumnName)
	require.True(t, hist[0].HasValue)
	require.Equal(t, int64(1), hist[0].Min.Int())
	require.Equal(t, int64(3), hist[0].Max.Int())
}

func TestStatsFallsBackToQuickCountWithoutAnalyze(t *testing.T) {
	e := openTestEngine(t)
	table, err := e.CreateTable(usersSchema())
	require.NoError(t, err)
	require.NoError(t, table.Insert(row(1, "a@example.com", 30)))

	stats := table.Stats()
	require.Equal(t, float64(1), stats.NumTuples)
}

func TestDropTableRemovesRowsAndMetadata(t *testing.T) {
	e := openTestEngine(t)
	table, err := e.CreateTable(usersSchema())
	require.NoError(t, err)
	require.NoError(t, table.Insert(row(1, "a@example.com", 30)))

	names, err := e.ListTables()
	require.NoError(t, err)
	require.Contains(t, names, "users")

	require.NoError(t, e.DropTable("users"))

	names, err = e.ListTables()
	require.NoError(t, err)
	require.NotContains(t, names, "users")

	_, err = e.OpenTable("users")
	require.Error(t, err)
}
