// Package engine ties the parser, planner, and storage layers together: it
// translates a parsed statement into a physical plan (or drives
// db/storage directly for DML/DDL), executes it, and reports the result.
package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"nanodb/db/catalog"
	"nanodb/db/function"
	"nanodb/db/log"
	"nanodb/db/parser"
	"nanodb/db/types"
)

var execLog = log.Named("engine")

// ResultSet holds the outcome of one executed statement: either a row set
// (Columns/Rows, from a SELECT) or a plain status Message (DDL/DML/admin
// commands).
type ResultSet struct {
	Columns []string
	Rows    [][]types.Value
	Message string
}

// Engine is one open NanoDB database: a catalog of tables plus the
// function registry expressions are evaluated against.
type Engine struct {
	Catalog  *catalog.Catalog
	Registry *function.Registry
}

// Open opens (creating if absent) the database rooted at dir.
func Open(dir string) (*Engine, error) {
	cat, err := catalog.Open(dir)
	if err != nil {
		return nil, errors.Wrap(err, "engine: opening catalog")
	}
	return &Engine{Catalog: cat, Registry: function.Default()}, nil
}

func (e *Engine) Close() error {
	return e.Catalog.Close()
}

// errExit is returned by Execute for EXIT/QUIT, a sentinel a driving CLI
// checks for to end its read loop cleanly rather than printing an error.
var errExit = errors.New("engine: exit requested")

// IsExit reports whether err is the sentinel returned for EXIT/QUIT.
func IsExit(err error) bool { return errors.Is(err, errExit) }

// errCrash is returned by Execute for CRASH. The engine itself never
// aborts the process — that decision belongs to whatever is driving it
// (cmd/nanodb, cmd/nanodbd), which can choose to os.Exit on this sentinel.
var errCrash = errors.New("engine: crash requested")

// IsCrash reports whether err is the sentinel returned for CRASH.
func IsCrash(err error) bool { return errors.Is(err, errCrash) }

// Execute parses and runs a single SQL statement. Every call is stamped
// with a fresh query id, carried in the statement's log fields and, for
// EXPLAIN, echoed into the rendered plan so a log line and its plan tree
// can be matched up after the fact.
func (e *Engine) Execute(ctx context.Context, sql string) (*ResultSet, error) {
	queryID := uuid.NewString()
	ctx = withQueryID(ctx, queryID)

	stmt, err := parser.Parse(sql)
	if err != nil {
		execLog.Errorw("parse failed", "query_id", queryID, "error", err)
		return nil, errors.Wrap(err, "engine: parsing statement")
	}
	execLog.Debugw("executing statement", "query_id", queryID, "sql", sql)
	res, err := e.execute(ctx, stmt)
	if err != nil && !IsExit(err) && !IsCrash(err) {
		execLog.Errorw("statement failed", "query_id", queryID, "sql", sql, "error", err)
	}
	return res, err
}

type queryIDKey struct{}

func withQueryID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, queryIDKey{}, id)
}

// queryIDFromContext returns the id Execute stamped onto ctx, or "" if the
// context wasn't produced by Execute (e.g. a directly-constructed one in a
// test).
func queryIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(queryIDKey{}).(string)
	return id
}

func (e *Engine) execute(ctx context.Context, stmt parser.Statement) (*ResultSet, error) {
	switch s := stmt.(type) {
	case *parser.SelectStmt:
		return e.execSelect(ctx, s)
	case *parser.InsertStmt:
		return e.execInsert(s)
	case *parser.UpdateStmt:
		return e.execUpdate(ctx, s)
	case *parser.DeleteStmt:
		return e.execDelete(ctx, s)
	case *parser.CreateTableStmt:
		return e.execCreateTable(s)
	case *parser.DropTableStmt:
		return e.execDropTable(s)
	case *parser.AnalyzeStmt:
		return e.execAnalyze(s)
	case *parser.ExplainStmt:
		return e.execExplain(ctx, s)
	case *parser.BeginStmt:
		return &ResultSet{Message: "BEGIN"}, nil
	case *parser.CommitStmt:
		return &ResultSet{Message: "COMMIT"}, nil
	case *parser.RollbackStmt:
		return &ResultSet{Message: "ROLLBACK"}, nil
	case *parser.ExitStmt:
		return nil, errExit
	case *parser.CrashStmt:
		return nil, errCrash
	default:
		return nil, errors.Errorf("engine: unhandled statement type %T", stmt)
	}
}
