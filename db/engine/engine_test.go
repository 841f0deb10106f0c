package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, e.Close()) })
	return e
}

func mustExec(t *testing.T, e *Engine, sql string) *ResultSet {
	t.Helper()
	res, err := e.Execute(context.Background(), sql)
	require.NoError(t, err)
	return res
}

func seedUsersAndOrders(t *testing.T, e *Engine) {
	t.Helper()
	mustExec(t, e, `CREATE TABLE users (id INT PRIMARY KEY, name VARCHAR, age INT)`)
	mustExec(t, e, `CREATE TABLE orders (id INT PRIMARY KEY, user_id INT, amount INT)`)
	mustExec(t, e, `INSERT INTO users (id, name, age) VALUES (1, 'Alice', 30), (2, 'Bob', 25), (3, 'Carol', 40)`)
	mustExec(t, e, `INSERT INTO orders (id, user_id, amount) VALUES (100, 1, 50), (101, 1, 75), (102, 2, 20)`)
}

func TestCreateTableThenInsertAndSelect(t *testing.T) {
	e := openTestEngine(t)
	seedUsersAndOrders(t, e)

	res := mustExec(t, e, `SELECT id, name FROM users WHERE age >= 30 ORDER BY id`)
	require.Equal(t, []string{"id", "name"}, res.Columns)
	require.Len(t, res.Rows, 2)
	require.Equal(t, int64(1), res.Rows[0][0].Int())
	require.Equal(t, int64(3), res.Rows[1][0].Int())
}

func TestCreateTableIfNotExistsSkipsSecondCreate(t *testing.T) {
	e := openTestEngine(t)
	mustExec(t, e, `CREATE TABLE users (id INT PRIMARY KEY)`)
	res := mustExec(t, e, `CREATE TABLE IF NOT EXISTS users (id INT PRIMARY KEY)`)
	require.Contains(t, res.Message, "already exists")
}

func TestDropTableIfExistsSkipsMissingTable(t *testing.T) {
	e := openTestEngine(t)
	res := mustExec(t, e, `DROP TABLE IF EXISTS ghost`)
	require.Contains(t, res.Message, "does not exist")
}

func TestUpdateRejectsMissingPrimaryKey(t *testing.T) {
	e := openTestEngine(t)
	mustExec(t, e, `CREATE TABLE widgets (id INT, label VARCHAR)`)
	_, err := e.Execute(context.Background(), `UPDATE widgets SET label = 'x' WHERE id = 1`)
	require.Error(t, err)
}

func TestUpdateAndDelete(t *testing.T) {
	e := openTestEngine(t)
	seedUsersAndOrders(t, e)

	res := mustExec(t, e, `UPDATE users SET age = 31 WHERE id = 1`)
	require.Equal(t, "UPDATE 1", res.Message)

	res = mustExec(t, e, `SELECT age FROM users WHERE id = 1`)
	require.Equal(t, int64(31), res.Rows[0][0].Int())

	res = mustExec(t, e, `DELETE FROM orders WHERE user_id = 1`)
	require.Equal(t, "DELETE 2", res.Message)

	res = mustExec(t, e, `SELECT * FROM orders`)
	require.Len(t, res.Rows, 1)
}

func TestJoinAcrossTables(t *testing.T) {
	e := openTestEngine(t)
	seedUsersAndOrders(t, e)

	res := mustExec(t, e, `SELECT u.name, o.amount FROM users u JOIN orders o ON u.id = o.user_id ORDER BY o.id`)
	require.Len(t, res.Rows, 3)
	require.Equal(t, "Alice", res.Rows[0][0].Str())
}

func seedNaturalJoinTables(t *testing.T, e *Engine) {
	t.Helper()
	mustExec(t, e, `CREATE TABLE t1 (id INT PRIMARY KEY, t1_label VARCHAR)`)
	mustExec(t, e, `CREATE TABLE t2 (id INT PRIMARY KEY, t2_label VARCHAR)`)
	mustExec(t, e, `INSERT INTO t1 (id, t1_label) VALUES
		(1, 'alpha'), (2, 'beta'), (3, 'gamma'), (4, 'delta'), (5, 'epsilon'), (6, 'zeta')`)
	mustExec(t, e, `INSERT INTO t2 (id, t2_label) VALUES
		(1, 'A'), (2, 'B'), (3, 'C'), (4, 'D')`)
}

func TestNaturalJoinCoalescesSharedColumn(t *testing.T) {
	e := openTestEngine(t)
	seedNaturalJoinTables(t, e)

	res := mustExec(t, e, `SELECT * FROM t1 NATURAL JOIN t2 ORDER BY id`)
	require.Equal(t, []string{"id", "t1_label", "t2_label"}, res.Columns)
	require.Len(t, res.Rows, 4)
	require.Equal(t, int64(1), res.Rows[0][0].Int())
	require.Equal(t, "alpha", res.Rows[0][1].Str())
	require.Equal(t, "A", res.Rows[0][2].Str())
	require.Equal(t, int64(4), res.Rows[3][0].Int())
	require.Equal(t, "delta", res.Rows[3][1].Str())
	require.Equal(t, "D", res.Rows[3][2].Str())
}

func TestUsingJoinCoalescesSharedColumn(t *testing.T) {
	e := openTestEngine(t)
	seedNaturalJoinTables(t, e)

	res := mustExec(t, e, `SELECT * FROM t1 JOIN t2 USING (id) ORDER BY id`)
	require.Equal(t, []string{"id", "t1_label", "t2_label"}, res.Columns)
	require.Len(t, res.Rows, 4)
	require.Equal(t, int64(1), res.Rows[0][0].Int())
	require.Equal(t, "alpha", res.Rows[0][1].Str())
	require.Equal(t, "A", res.Rows[0][2].Str())
}

func TestGroupByWithAggregateAndHaving(t *testing.T) {
	e := openTestEngine(t)
	seedUsersAndOrders(t, e)

	res := mustExec(t, e, `SELECT user_id, COUNT(*) FROM orders GROUP BY user_id HAVING COUNT(*) > 1`)
	require.Len(t, res.Rows, 1)
	require.Equal(t, int64(1), res.Rows[0][0].Int())
}

func TestDerivedTableSubquery(t *testing.T) {
	e := openTestEngine(t)
	seedUsersAndOrders(t, e)

	res := mustExec(t, e, `SELECT t.id FROM (SELECT id FROM users WHERE age > 26) AS t ORDER BY t.id`)
	require.Len(t, res.Rows, 2)
}

func TestInSubquery(t *testing.T) {
	e := openTestEngine(t)
	seedUsersAndOrders(t, e)

	res := mustExec(t, e, `SELECT name FROM users WHERE id IN (SELECT user_id FROM orders) ORDER BY name`)
	require.Len(t, res.Rows, 2)
	require.Equal(t, "Alice", res.Rows[0][0].Str())
}

func TestExistsSubquery(t *testing.T) {
	e := openTestEngine(t)
	seedUsersAndOrders(t, e)

	res := mustExec(t, e, `SELECT name FROM users u WHERE EXISTS (SELECT id FROM orders o WHERE o.user_id = u.id)`)
	require.Len(t, res.Rows, 2)
}

func TestCorrelatedSubqueryNotSupported(t *testing.T) {
	e := openTestEngine(t)
	seedUsersAndOrders(t, e)

	_, err := e.Execute(context.Background(), `SELECT name FROM users WHERE id IN (SELECT user_id FROM orders WHERE orders.amount > users.age)`)
	require.Error(t, err)
}

func TestLimit(t *testing.T) {
	e := openTestEngine(t)
	seedUsersAndOrders(t, e)

	res := mustExec(t, e, `SELECT id FROM users ORDER BY id LIMIT 2`)
	require.Len(t, res.Rows, 2)
}

func TestFromLessSelect(t *testing.T) {
	e := openTestEngine(t)
	res := mustExec(t, e, `SELECT 1 + 1 AS two`)
	require.Equal(t, []string{"two"}, res.Columns)
	require.Equal(t, int64(2), res.Rows[0][0].Int())
}

func TestAnalyzeAndExplain(t *testing.T) {
	e := openTestEngine(t)
	seedUsersAndOrders(t, e)

	res := mustExec(t, e, `ANALYZE users`)
	require.Contains(t, res.Message, "ANALYZE users")

	res = mustExec(t, e, `EXPLAIN SELECT * FROM users WHERE age > 20`)
	require.Contains(t, res.Message, "SimpleFilter")
	require.Contains(t, res.Message, "FileScan")

	res = mustExec(t, e, `EXPLAIN UPDATE users SET age = 1 WHERE id = 1`)
	require.Contains(t, res.Message, "FileScan")
}

func TestTransactionStatementsAreSyntacticStubs(t *testing.T) {
	e := openTestEngine(t)
	res := mustExec(t, e, `BEGIN`)
	require.Equal(t, "BEGIN", res.Message)
	res = mustExec(t, e, `COMMIT`)
	require.Equal(t, "COMMIT", res.Message)
}

func TestExitAndCrashSentinels(t *testing.T) {
	e := openTestEngine(t)
	_, err := e.Execute(context.Background(), `EXIT`)
	require.True(t, IsExit(err))

	_, err = e.Execute(context.Background(), `CRASH`)
	require.True(t, IsCrash(err))
}

func TestExplainStampsADistinctQueryIDPerCall(t *testing.T) {
	e := openTestEngine(t)
	seedUsersAndOrders(t, e)

	first := mustExec(t, e, `EXPLAIN SELECT * FROM users`)
	second := mustExec(t, e, `EXPLAIN SELECT * FROM users`)

	firstID := strings.TrimSuffix(strings.TrimPrefix(strings.SplitN(first.Message, "\n", 2)[0], "-- query "), "\r")
	secondID := strings.TrimSuffix(strings.TrimPrefix(strings.SplitN(second.Message, "\n", 2)[0], "-- query "), "\r")
	require.NotEmpty(t, firstID)
	require.NotEmpty(t, secondID)
	require.NotEqual(t, firstID, secondID)
}
