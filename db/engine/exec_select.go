package engine

import (
	"context"

	"nanodb/db/errs"
	"nanodb/db/parser"
	"nanodb/db/plan"
	"nanodb/db/types"
)

func (e *Engine) execSelect(ctx context.Context, stmt *parser.SelectStmt) (*ResultSet, error) {
	tr := &translator{provider: e.Catalog, registry: e.Registry}
	node, err := tr.planSelect(stmt)
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

	var rows [][]types.Value
	for {
		if err := ctx.Err(); err != nil {
			return nil, errs.CancelledErrorf("engine: select cancelled: %v", err)
		}
		row, err := node.Next()
		if err == plan.ErrEndOfStream {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row.Values())
	}

	return &ResultSet{Columns: node.Schema().Names(), Rows: rows}, nil
}
