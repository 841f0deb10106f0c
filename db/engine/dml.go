package engine

import (
	"context"
	"fmt"

	"nanodb/db/env"
	"nanodb/db/errs"
	"nanodb/db/expr"
	"nanodb/db/parser"
	"nanodb/db/plan"
	"nanodb/db/schema"
	"nanodb/db/storage"
	"nanodb/db/types"
)

func (e *Engine) execInsert(stmt *parser.InsertStmt) (*ResultSet, error) {
	table, err := e.Catalog.Table(stmt.TableName)
	if err != nil {
		return nil, err
	}
	ts := table.TableSchema()

	for _, row := range stmt.Rows {
		values, err := reorderInsertRow(ts, stmt.Columns, row)
		if err != nil {
			return nil, err
		}
		if err := table.Insert(values); err != nil {
			return nil, err
		}
	}
	return &ResultSet{Message: fmt.Sprintf("INSERT %d", len(stmt.Rows))}, nil
}

// reorderInsertRow maps an INSERT row's values onto the table's column
// order. An empty column list means the row already supplies every column
// in schema order; otherwise a column left unnamed is filled with NULL.
func reorderInsertRow(ts *schema.TableSchema, columns []string, row []types.Value) ([]types.Value, error) {
	cols := ts.Columns()
	if len(columns) == 0 {
		if len(row) != len(cols) {
			return nil, errs.SchemaErrorf("table %q: expected %d values, got %d", ts.TableName, len(cols), len(row))
		}
		return row, nil
	}
	if len(columns) != len(row) {
		return nil, errs.SchemaErrorf("table %q: column list has %d names but %d values given", ts.TableName, len(columns), len(row))
	}
	values := make([]types.Value, len(cols))
	set := make([]bool, len(cols))
	for i, name := range columns {
		idx, err := ts.ColumnIndex(name)
		if err != nil {
			return nil, err
		}
		if idx < 0 {
			return nil, errs.SchemaErrorf("table %q has no column %q", ts.TableName, name)
		}
		values[idx] = row[i]
		set[idx] = true
	}
	for i, wasSet := range set {
		if !wasSet {
			values[i] = types.Null(cols[i].Type)
		}
	}
	return values, nil
}

// scanNode builds a FileScan, optionally wrapped in a SimpleFilter over
// where, driving the same db/expr evaluation path a SELECT's WHERE clause
// uses — so UPDATE/DELETE's WHERE behaves identically to a query's.
func scanNode(table *storage.Table, where parser.Expression, tr *translator) (plan.Node, error) {
	var node plan.Node = plan.NewFileScan(table)
	if where == nil {
		return node, nil
	}
	pred, err := tr.translateExpr(where)
	if err != nil {
		return nil, err
	}
	return plan.NewSimpleFilter(node, pred, 1.0), nil
}

func columnIndicesFor(ts *schema.TableSchema, names []string) ([]int, error) {
	out := make([]int, len(names))
	for i, name := range names {
		idx, err := ts.ColumnIndex(name)
		if err != nil {
			return nil, err
		}
		if idx < 0 {
			return nil, errs.SchemaErrorf("table %q has no column %q", ts.TableName, name)
		}
		out[i] = idx
	}
	return out, nil
}

func (e *Engine) execUpdate(ctx context.Context, stmt *parser.UpdateStmt) (*ResultSet, error) {
	table, err := e.Catalog.Table(stmt.TableName)
	if err != nil {
		return nil, err
	}
	ts := table.TableSchema()
	if len(ts.PrimaryKey) == 0 {
		return nil, errs.SchemaErrorf("table %q has no primary key: UPDATE requires one", stmt.TableName)
	}
	pkIdx, err := columnIndicesFor(ts, ts.PrimaryKey)
	if err != nil {
		return nil, err
	}

	tr := &translator{provider: e.Catalog, registry: e.Registry}
	type assignment struct {
		idx  int
		expr expr.Expression
	}
	assignments := make([]assignment, len(stmt.Set))
	for i, a := range stmt.Set {
		idx, err := ts.ColumnIndex(a.Column)
		if err != nil {
			return nil, err
		}
		if idx < 0 {
			return nil, errs.SchemaErrorf("table %q has no column %q", stmt.TableName, a.Column)
		}
		ex, err := tr.translateExpr(a.Value)
		if err != nil {
			return nil, err
		}
		assignments[i] = assignment{idx: idx, expr: ex}
	}

	node, err := scanNode(table, stmt.Where, tr)
	if err != nil {
		return nil, err
	}
	if err := node.Prepare(); err != nil {
		return nil, err
	}
	if err := node.Initialize(); err != nil {
		return nil, err
	}
	defer node.Cleanup()

	e2 := env.New()
	count := 0
	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errs.CancelledErrorf("engine: update cancelled: %v", ctxErr)
		}
		row, err := node.Next()
		if err == plan.ErrEndOfStream {
			break
		}
		if err != nil {
			return nil, err
		}

		oldValues := row.Values()
		newValues := make([]types.Value, len(oldValues))
		copy(newValues, oldValues)

		e2.Clear()
		e2.AddTuple(ts.Schema, row)
		for _, a := range assignments {
			v, err := a.expr.Evaluate(e2)
			if err != nil {
				return nil, err
			}
			newValues[a.idx] = v
		}

		pkValues := make([]types.Value, len(pkIdx))
		for i, idx := range pkIdx {
			pkValues[i] = oldValues[idx]
		}
		if err := table.Update(pkValues, newValues); err != nil {
			return nil, err
		}
		count++
	}
	return &ResultSet{Message: fmt.Sprintf("UPDATE %d", count)}, nil
}

func (e *Engine) execDelete(ctx context.Context, stmt *parser.DeleteStmt) (*ResultSet, error) {
	table, err := e.Catalog.Table(stmt.TableName)
	if err != nil {
		return nil, err
	}
	ts := table.TableSchema()
	if len(ts.PrimaryKey) == 0 {
		return nil, errs.SchemaErrorf("table %q has no primary key: DELETE requires one", stmt.TableName)
	}
	pkIdx, err := columnIndicesFor(ts, ts.PrimaryKey)
	if err != nil {
		return nil, err
	}

	tr := &translator{provider: e.Catalog, registry: e.Registry}
	node, err := scanNode(table, stmt.Where, tr)
	if err != nil {
		return nil, err
	}
	if err := node.Prepare(); err != nil {
		return nil, err
	}
	if err := node.Initialize(); err != nil {
		return nil, err
	}
	defer node.Cleanup()

	// Collect every matching primary key before deleting any of them, so
	// mutating the table never interferes with the scan still reading it.
	var toDelete [][]types.Value
	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errs.CancelledErrorf("engine: delete cancelled: %v", ctxErr)
		}
		row, err := node.Next()
		if err == plan.ErrEndOfStream {
			break
		}
		if err != nil {
			return nil, err
		}
		values := row.Values()
		pkValues := make([]types.Value, len(pkIdx))
		for i, idx := range pkIdx {
			pkValues[i] = values[idx]
		}
		toDelete = append(toDelete, pkValues)
	}

	for _, pk := range toDelete {
		if err := table.Delete(pk); err != nil {
			return nil, err
		}
	}
	return &ResultSet{Message: fmt.Sprintf("DELETE %d", len(toDelete))}, nil
}
