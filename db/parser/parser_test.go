package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nanodb/db/types"
)

func TestParseCreateTableWithPrimaryKeyAndUnique(t *testing.T) {
	stmt, err := Parse(`CREATE TABLE users (id INT PRIMARY KEY, email VARCHAR UNIQUE, age INT)`)
	require.NoError(t, err)

	ct, ok := stmt.(*CreateTableStmt)
	require.True(t, ok)
	require.Equal(t, "users", ct.TableName)
	require.Len(t, ct.Columns, 3)
	require.Equal(t, []string{"id"}, ct.PrimaryKey)
	require.Equal(t, [][]string{{"email"}}, ct.Unique)
	require.Equal(t, types.INTEGER, ct.Columns[0].Type)
	require.False(t, ct.Columns[0].Nullable)
	require.True(t, ct.Columns[2].Nullable)
}

func TestParseCreateTableWithTableLevelPrimaryKey(t *testing.T) {
	stmt, err := Parse(`CREATE TABLE IF NOT EXISTS order_items (
		order_id INT, sku VARCHAR, PRIMARY KEY (order_id, sku))`)
	require.NoError(t, err)

	ct := stmt.(*CreateTableStmt)
	require.True(t, ct.IfNotExists)
	require.Equal(t, []string{"order_id", "sku"}, ct.PrimaryKey)
}

func TestParseInsertMultiRow(t *testing.T) {
	stmt, err := Parse(`INSERT INTO users (id, email) VALUES (1, 'a@example.com'), (2, 'b@example.com')`)
	require.NoError(t, err)

	ins := stmt.(*InsertStmt)
	require.Equal(t, "users", ins.TableName)
	require.Equal(t, []string{"id", "email"}, ins.Columns)
	require.Len(t, ins.Rows, 2)
	require.Equal(t, int64(1), ins.Rows[0][0].Int())
	require.Equal(t, "b@example.com", ins.Rows[1][1].Str())
}

func TestParseSelectStarWithWhereAndOrderAndLimit(t *testing.T) {
	stmt, err := Parse(`SELECT * FROM users WHERE age >= 18 AND name LIKE 'A%' ORDER BY age DESC LIMIT 10`)
	require.NoError(t, err)

	sel := stmt.(*SelectStmt)
	require.Len(t, sel.Columns, 1)
	require.True(t, sel.Columns[0].Star)
	require.NotNil(t, sel.Where)
	require.Len(t, sel.OrderBy, 1)
	require.True(t, sel.OrderBy[0].Descending)
	require.NotNil(t, sel.Limit)
	require.Equal(t, int64(10), *sel.Limit)

	where, ok := sel.Where.(*BinaryExpr)
	require.True(t, ok)
	require.Equal(t, OpAnd, where.Op)
	_, ok = where.Right.(*LikeExpr)
	require.True(t, ok)
}

func TestParseSelectWithJoinOnAndAlias(t *testing.T) {
	stmt, err := Parse(`SELECT u.id, o.sku FROM users u LEFT JOIN orders o ON u.id = o.user_id`)
	require.NoError(t, err)

	sel := stmt.(*SelectStmt)
	require.Len(t, sel.Columns, 2)

	join, ok := sel.From.(*JoinItem)
	require.True(t, ok)
	require.Equal(t, LeftJoin, join.Kind)
	require.NotNil(t, join.On)

	left, ok := join.Left.(*TableRef)
	require.True(t, ok)
	require.Equal(t, "u", left.Alias)
}

func TestParseSelectWithNaturalJoinAndUsing(t *testing.T) {
	stmt, err := Parse(`SELECT * FROM a NATURAL JOIN b`)
	require.NoError(t, err)
	join := stmt.(*SelectStmt).From.(*JoinItem)
	require.True(t, join.Natural)

	stmt, err = Parse(`SELECT * FROM a JOIN b USING (id)`)
	require.NoError(t, err)
	join = stmt.(*SelectStmt).From.(*JoinItem)
	require.Equal(t, []string{"id"}, join.Using)
}

func TestParseSelectWithDerivedTable(t *testing.T) {
	stmt, err := Parse(`SELECT t.id FROM (SELECT id FROM users WHERE age > 21) AS t`)
	require.NoError(t, err)

	sub, ok := stmt.(*SelectStmt).From.(*SubqueryRef)
	require.True(t, ok)
	require.Equal(t, "t", sub.Alias)
	require.NotNil(t, sub.Select.Where)
}

func TestParseSelectWithGroupByHaving(t *testing.T) {
	stmt, err := Parse(`SELECT dept, COUNT(*) FROM employees GROUP BY dept HAVING COUNT(*) > 1`)
	require.NoError(t, err)

	sel := stmt.(*SelectStmt)
	require.Len(t, sel.GroupBy, 1)
	require.NotNil(t, sel.Having)

	call, ok := sel.Columns[1].Expr.(*CallExpr)
	require.True(t, ok)
	require.True(t, call.Star)
	require.Equal(t, "COUNT", call.Name)
}

func TestParseSelectWithBetweenInExists(t *testing.T) {
	stmt, err := Parse(`SELECT * FROM users WHERE age BETWEEN 18 AND 65 AND id IN (1, 2, 3) AND EXISTS (SELECT id FROM orders WHERE orders.user_id = users.id)`)
	require.NoError(t, err)

	sel := stmt.(*SelectStmt)
	require.NotNil(t, sel.Where)
}

func TestParseSelectWithNotBetweenAndNotIn(t *testing.T) {
	stmt, err := Parse(`SELECT * FROM users WHERE age NOT BETWEEN 0 AND 17 AND id NOT IN (4, 5)`)
	require.NoError(t, err)
	require.NotNil(t, stmt.(*SelectStmt).Where)
}

func TestParseUpdateAndDelete(t *testing.T) {
	stmt, err := Parse(`UPDATE users SET age = 30, email = 'x@example.com' WHERE id = 1`)
	require.NoError(t, err)
	upd := stmt.(*UpdateStmt)
	require.Len(t, upd.Set, 2)
	require.NotNil(t, upd.Where)

	stmt, err = Parse(`DELETE FROM users WHERE id = 1`)
	require.NoError(t, err)
	del := stmt.(*DeleteStmt)
	require.Equal(t, "users", del.TableName)
}

func TestParseTransactionAndAdminStatements(t *testing.T) {
	for _, sql := range []string{"BEGIN", "START TRANSACTION", "COMMIT", "ROLLBACK", "EXIT", "QUIT", "CRASH"} {
		_, err := Parse(sql)
		require.NoError(t, err, sql)
	}

	stmt, err := Parse("ANALYZE users")
	require.NoError(t, err)
	require.Equal(t, "users", stmt.(*AnalyzeStmt).TableName)

	stmt, err = Parse("EXPLAIN SELECT * FROM users")
	require.NoError(t, err)
	ex, ok := stmt.(*ExplainStmt)
	require.True(t, ok)
	_, ok = ex.Stmt.(*SelectStmt)
	require.True(t, ok)
}

func TestParseRejectsTrailingGarbage(t *testing.T) {
	_, err := Parse("SELECT * FROM users u EXTRA")
	require.Error(t, err)
}

func TestParseIsNullAndArithmetic(t *testing.T) {
	stmt, err := Parse(`SELECT price * quantity AS total FROM orders WHERE discount IS NOT NULL`)
	require.NoError(t, err)

	sel := stmt.(*SelectStmt)
	require.Equal(t, "total", sel.Columns[0].Alias)
	bin, ok := sel.Columns[0].Expr.(*BinaryExpr)
	require.True(t, ok)
	require.Equal(t, OpMul, bin.Op)

	isNull, ok := sel.Where.(*IsNullExpr)
	require.True(t, ok)
	require.True(t, isNull.Negate)
}
