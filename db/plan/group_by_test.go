package plan

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"nanodb/db/expr"
	"nanodb/db/function"
	"nanodb/db/schema"
	"nanodb/db/tuple"
	"nanodb/db/types"
)

func salesSchema() *schema.Schema {
	return schema.New(
		schema.ColumnDef{Qualifier: "s", Name: "dept", Type: types.VARCHAR},
		schema.ColumnDef{Qualifier: "s", Name: "amount", Type: types.INTEGER},
	)
}

func salesRow(dept string, amount int64) *tuple.Literal {
	return tuple.NewLiteral(types.NewString(types.VARCHAR, dept), types.NewInt(types.INTEGER, amount))
}

func salesNode() *sliceNode {
	return newSliceNode(salesSchema(),
		salesRow("eng", 10),
		salesRow("eng", 30),
		salesRow("sales", 5),
		salesRow("eng", 20),
		salesRow("sales", 15),
	)
}

func deptKey() []expr.Expression {
	return []expr.Expression{expr.NewColumnRef("s", "dept")}
}

func byDept(rows []tuple.Tuple, deptCol int) map[string]tuple.Tuple {
	out := make(map[string]tuple.Tuple, len(rows))
	for _, r := range rows {
		out[r.Value(deptCol).Str()] = r
	}
	return out
}

func TestGroupByCountSumAvgMinMax(t *testing.T) {
	registry := function.Default()
	items := []GroupByItem{
		{Expr: expr.NewColumnRef("s", "dept"), Alias: "dept"},
		{Expr: expr.NewCall("COUNT", nil, registry), Alias: "n"},
		{Expr: expr.NewCall("SUM", []expr.Expression{expr.NewColumnRef("s", "amount")}, registry), Alias: "total"},
		{Expr: expr.NewCall("AVG", []expr.Expression{expr.NewColumnRef("s", "amount")}, registry), Alias: "avg"},
		{Expr: expr.NewCall("MIN", []expr.Expression{expr.NewColumnRef("s", "amount")}, registry), Alias: "lo"},
		{Expr: expr.NewCall("MAX", []expr.Expression{expr.NewColumnRef("s", "amount")}, registry), Alias: "hi"},
	}
	g := NewGroupBy(salesNode(), deptKey(), items, nil, registry)
	rows := drain(t, g)
	require.Len(t, rows, 2)

	byName := byDept(rows, 0)
	eng := byName["eng"]
	require.Equal(t, int64(3), eng.Value(1).Int())
	require.Equal(t, 60.0, eng.Value(2).AsFloat64())
	require.Equal(t, 20.0, eng.Value(3).AsFloat64())
	require.Equal(t, int64(10), eng.Value(4).Int())
	require.Equal(t, int64(30), eng.Value(5).Int())

	sales := byName["sales"]
	require.Equal(t, int64(2), sales.Value(1).Int())
	require.Equal(t, 20.0, sales.Value(2).AsFloat64())
	require.Equal(t, int64(5), sales.Value(4).Int())
	require.Equal(t, int64(15), sales.Value(5).Int())
}

func TestGroupByHavingFiltersGroups(t *testing.T) {
	registry := function.Default()
	countCall := expr.NewCall("COUNT", nil, registry)
	items := []GroupByItem{
		{Expr: expr.NewColumnRef("s", "dept"), Alias: "dept"},
		{Expr: countCall, Alias: "n"},
	}
	having := expr.NewComparison(expr.Gt,
		expr.NewCall("COUNT", nil, registry),
		expr.NewLiteral(types.NewInt(types.INTEGER, 2)))

	g := NewGroupBy(salesNode(), deptKey(), items, having, registry)
	rows := drain(t, g)
	require.Len(t, rows, 1)
	require.Equal(t, "eng", rows[0].Value(0).Str())
	require.Equal(t, int64(3), rows[0].Value(1).Int())
}

func TestGroupByWithNoRowsProducesNoGroups(t *testing.T) {
	registry := function.Default()
	items := []GroupByItem{{Expr: expr.NewColumnRef("t3", "val"), Alias: "val"}}
	g := NewGroupBy(t3Node(),[]expr.Expression{expr.NewColumnRef("t3", "val")}, items, nil, registry)
	rows := drain(t, g)
	require.Empty(t, rows)
}

func TestGroupBySingleGroupWhenNoKeys(t *testing.T) {
	registry := function.Default()
	items := []GroupByItem{
		{Expr: expr.NewCall("SUM", []expr.Expression{expr.NewColumnRef("s", "amount")}, registry), Alias: "total"},
	}
	g := NewGroupBy(salesNode(), nil, items, nil, registry)
	rows := drain(t, g)
	require.Len(t, rows, 1)
	require.Equal(t, 80.0, rows[0].Value(0).AsFloat64())
}

func TestGroupByResultOrderUnspecified(t *testing.T) {
	registry := function.Default()
	items := []GroupByItem{{Expr: expr.NewColumnRef("s", "dept"), Alias: "dept"}}
	g := NewGroupBy(salesNode(), deptKey(), items, nil, registry)
	rows := drain(t, g)
	var depts []string
	for _, r := range rows {
		depts = append(depts, r.Value(0).Str())
	}
	sort.Strings(depts)
	require.Equal(t, []string{"eng", "sales"}, depts)
}
