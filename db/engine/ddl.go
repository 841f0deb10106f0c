package engine

import (
	"fmt"

	"nanodb/db/errs"
	"nanodb/db/parser"
	"nanodb/db/schema"
)

func (e *Engine) execCreateTable(stmt *parser.CreateTableStmt) (*ResultSet, error) {
	if stmt.IfNotExists {
		if _, err := e.Catalog.Table(stmt.TableName); err == nil {
			return &ResultSet{Message: fmt.Sprintf("table %q already exists, skipped", stmt.TableName)}, nil
		}
	}
	ts := schema.NewTableSchema(stmt.TableName, stmt.Columns...)
	ts.PrimaryKey = stmt.PrimaryKey
	ts.Candidates = stmt.Unique
	if _, err := e.Catalog.CreateTable(ts); err != nil {
		return nil, err
	}
	return &ResultSet{Message: fmt.Sprintf("CREATE TABLE %s", stmt.TableName)}, nil
}

func (e *Engine) execDropTable(stmt *parser.DropTableStmt) (*ResultSet, error) {
	if err := e.Catalog.DropTable(stmt.TableName); err != nil {
		if stmt.IfExists {
			if kind, ok := errs.KindOf(err); ok && kind == errs.Schema {
				return &ResultSet{Message: fmt.Sprintf("table %q does not exist, skipped", stmt.TableName)}, nil
			}
		}
		return nil, err
	}
	return &ResultSet{Message: fmt.Sprintf("DROP TABLE %s", stmt.TableName)}, nil
}
