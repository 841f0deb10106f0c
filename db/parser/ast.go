// Package parser implements NanoDB's hand-rolled SQL front end: a
// recursive-descent lexer/parser pair that turns a statement string into a
// syntax tree. It makes no attempt at SQL grammar completeness — it covers
// exactly the statement and expression forms db/engine needs to build a
// planner.SelectClause or drive a storage.Table directly, nothing more.
// Semantic resolution (column lookup, subquery planning, type checking)
// happens downstream in db/engine; this package only describes syntax.
package parser

import (
	"nanodb/db/schema"
	"nanodb/db/types"
)

// Statement is any top-level parsed statement.
type Statement interface {
	statementNode()
}

// CreateTableStmt is "CREATE TABLE [IF NOT EXISTS] name (col type [PRIMARY
// KEY | UNIQUE], ...)".
type CreateTableStmt struct {
	TableName   string
	IfNotExists bool
	Columns     []schema.ColumnDef
	PrimaryKey  []string   // column names forming the primary key, in order
	Unique      [][]string // one entry per UNIQUE column or UNIQUE(...) group
}

func (*CreateTableStmt) statementNode() {}

// DropTableStmt is "DROP TABLE [IF EXISTS] name".
type DropTableStmt struct {
	TableName string
	IfExists  bool
}

func (*DropTableStmt) statementNode() {}

// InsertStmt is "INSERT INTO name [(col, ...)] VALUES (v, ...), ...".
// Values are literals only — no nested SELECT, no expressions — matching
// the scope db/storage.Table.Insert actually accepts.
type InsertStmt struct {
	TableName string
	Columns   []string // empty means "every column, in schema order"
	Rows      [][]types.Value
}

func (*InsertStmt) statementNode() {}

// Assignment is one "col = expr" term of an UPDATE's SET list.
type Assignment struct {
	Column string
	Value  Expression
}

// UpdateStmt is "UPDATE name SET col = expr, ... [WHERE expr]".
type UpdateStmt struct {
	TableName string
	Set       []Assignment
	Where     Expression // nil means no WHERE clause
}

func (*UpdateStmt) statementNode() {}

// DeleteStmt is "DELETE FROM name [WHERE expr]".
type DeleteStmt struct {
	TableName string
	Where     Expression
}

func (*DeleteStmt) statementNode() {}

// SelectItem is one projected item: either a bare "*"/"t.*" wildcard (Expr
// is nil) or an expression with an optional alias.
type SelectItem struct {
	Star      bool
	Qualifier string // set only when Star is true and the source was "t.*"
	Expr      Expression
	Alias     string
}

// OrderItem is one ORDER BY term.
type OrderItem struct {
	Expr          Expression
	Descending    bool
	NullsFirst    bool
	NullsFirstSet bool
}

// JoinKind identifies which JOIN keyword introduced a FromItem.
type JoinKind int

const (
	InnerJoin JoinKind = iota
	LeftJoin
	RightJoin
	FullJoin
	CrossJoin
)

// FromItem is a node in the parsed FROM-clause tree.
type FromItem interface {
	fromItemNode()
}

// TableRef names a base table, optionally aliased.
type TableRef struct {
	Name  string
	Alias string
}

func (*TableRef) fromItemNode() {}

// SubqueryRef is a parenthesized SELECT used as a FROM-clause item; it must
// be aliased, as SQL requires for a derived table.
type SubqueryRef struct {
	Select *SelectStmt
	Alias  string
}

func (*SubqueryRef) fromItemNode() {}

// JoinItem is an explicit or comma-implied join between two FromItems.
// Exactly one of On/Using/Natural describes the join condition; a CROSS
// join or a comma-join leaves all three empty/false.
type JoinItem struct {
	Kind    JoinKind
	Left    FromItem
	Right   FromItem
	On      Expression
	Using   []string
	Natural bool
}

func (*JoinItem) fromItemNode() {}

// SelectStmt is a full SELECT statement, including its own nested FROM,
// WHERE, GROUP BY/HAVING, ORDER BY, and LIMIT clauses.
type SelectStmt struct {
	Columns []SelectItem
	From    FromItem // nil for a FROM-less SELECT (e.g. "SELECT 1")
	Where   Expression
	GroupBy []Expression
	Having  Expression
	OrderBy []OrderItem
	Limit   *int64
}

func (*SelectStmt) statementNode() {}

// BeginStmt is "BEGIN" or "START TRANSACTION". NanoDB accepts it
// syntactically only — every statement still autocommits individually, no
// MVCC transaction actually spans it.
type BeginStmt struct{}

func (*BeginStmt) statementNode() {}

// CommitStmt is "COMMIT".
type CommitStmt struct{}

func (*CommitStmt) statementNode() {}

// RollbackStmt is "ROLLBACK".
type RollbackStmt struct{}

func (*RollbackStmt) statementNode() {}

// AnalyzeStmt is "ANALYZE name".
type AnalyzeStmt struct {
	TableName string
}

func (*AnalyzeStmt) statementNode() {}

// ExplainStmt is "EXPLAIN stmt", wrapping any other statement.
type ExplainStmt struct {
	Stmt Statement
}

func (*ExplainStmt) statementNode() {}

// ExitStmt is "EXIT" or "QUIT".
type ExitStmt struct{}

func (*ExitStmt) statementNode() {}

// CrashStmt is "CRASH", a debug command that aborts the process immediately
// to let an operator exercise crash recovery by hand.
type CrashStmt struct{}

func (*CrashStmt) statementNode() {}

// Expression is a syntax-level expression node. db/engine translates these
// into db/expr.Expression trees once it has a schema to resolve column
// references against.
type Expression interface {
	expressionNode()
}

// ColumnExpr refers to a column by (qualifier, name); Qualifier is empty
// for an unqualified reference.
type ColumnExpr struct {
	Qualifier string
	Name      string
}

func (*ColumnExpr) expressionNode() {}

// LiteralExpr is a constant value.
type LiteralExpr struct {
	Value types.Value
}

func (*LiteralExpr) expressionNode() {}

// UnaryOp identifies a prefix operator.
type UnaryOp int

const (
	Not UnaryOp = iota
	Neg
)

type UnaryExpr struct {
	Op      UnaryOp
	Operand Expression
}

func (*UnaryExpr) expressionNode() {}

// BinOp identifies an infix operator: comparisons, AND/OR, and arithmetic
// all share one node shape at the syntax level; db/engine routes each Op to
// the matching db/expr constructor.
type BinOp int

const (
	OpEq BinOp = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
)

type BinaryExpr struct {
	Op          BinOp
	Left, Right Expression
}

func (*BinaryExpr) expressionNode() {}

// LikeExpr is "target [NOT] LIKE pattern".
type LikeExpr struct {
	Target  Expression
	Pattern Expression
	Negate  bool
}

func (*LikeExpr) expressionNode() {}

// BetweenExpr is "target [NOT] BETWEEN low AND high".
type BetweenExpr struct {
	Target     Expression
	Low, High  Expression
	Negate     bool
}

func (*BetweenExpr) expressionNode() {}

// InExpr is "target [NOT] IN (list...)" — List is nil when Subquery is set.
type InExpr struct {
	Target   Expression
	List     []Expression
	Subquery *SelectStmt
	Negate   bool
}

func (*InExpr) expressionNode() {}

// ExistsExpr is "[NOT] EXISTS (subquery)".
type ExistsExpr struct {
	Subquery *SelectStmt
	Negate   bool
}

func (*ExistsExpr) expressionNode() {}

// IsNullExpr is "target IS [NOT] NULL".
type IsNullExpr struct {
	Target Expression
	Negate bool
}

func (*IsNullExpr) expressionNode() {}

// CallExpr is a scalar/aggregate function call, e.g. "COUNT(*)" (Star
// true, Args empty) or "UPPER(name)".
type CallExpr struct {
	Name string
	Star bool
	Args []Expression
}

func (*CallExpr) expressionNode() {}
