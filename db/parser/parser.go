package parser

import (
	"fmt"
	"strconv"

	"nanodb/db/schema"
	"nanodb/db/types"
)

// precedence levels for parseExpression's Pratt climb, lowest first.
const (
	lowest int = iota
	orPrec
	andPrec
	notPrec
	comparePrec
	sumPrec
	productPrec
	prefixPrec
)

var precedences = map[TokenType]int{
	TokenOr:      orPrec,
	TokenAnd:     andPrec,
	TokenNot:     comparePrec,
	TokenEqual:   comparePrec,
	TokenNotEqual: comparePrec,
	TokenLt:      comparePrec,
	TokenLe:      comparePrec,
	TokenGt:      comparePrec,
	TokenGe:      comparePrec,
	TokenLike:    comparePrec,
	TokenBetween: comparePrec,
	TokenIn:      comparePrec,
	TokenIs:      comparePrec,
	TokenPlus:    sumPrec,
	TokenMinus:   sumPrec,
	TokenAsterisk: productPrec,
	TokenSlash:   productPrec,
	TokenPercent: productPrec,
}

// Parser turns a token stream into a Statement tree via recursive descent
// with Pratt-style expression parsing.
type Parser struct {
	l         *Tokenizer
	curToken  Token
	peekToken Token
}

func NewParser(l *Tokenizer) *Parser {
	p := &Parser{l: l}
	p.nextToken()
	p.nextToken()
	return p
}

// Parse is the package's main entry point: lex and parse one statement out
// of sql, requiring the whole input to be consumed (besides a trailing
// semicolon).
func Parse(sql string) (Statement, error) {
	p := NewParser(NewTokenizer(sql))
	stmt, err := p.ParseStatement()
	if err != nil {
		return nil, err
	}
	if p.curTokenIs(TokenSemicolon) {
		p.nextToken()
	}
	if !p.curTokenIs(TokenEOF) {
		return nil, fmt.Errorf("parser: unexpected trailing input at %q", p.curToken.Literal)
	}
	return stmt, nil
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t TokenType) error {
	if p.peekTokenIs(t) {
		p.nextToken()
		return nil
	}
	return fmt.Errorf("parser: expected token %d, got %d (%q)", t, p.peekToken.Type, p.peekToken.Literal)
}

func (p *Parser) ParseStatement() (Statement, error) {
	switch p.curToken.Type {
	case TokenCreate:
		return p.parseCreateTable()
	case TokenDrop:
		return p.parseDropTable()
	case TokenInsert:
		return p.parseInsert()
	case TokenSelect:
		return p.parseSelect()
	case TokenUpdate:
		return p.parseUpdate()
	case TokenDelete:
		return p.parseDelete()
	case TokenBegin:
		p.nextToken()
		return &BeginStmt{}, nil
	case TokenStart:
		if err := p.expectPeek(TokenTransaction); err != nil {
			return nil, err
		}
		p.nextToken()
		return &BeginStmt{}, nil
	case TokenCommit:
		p.nextToken()
		return &CommitStmt{}, nil
	case TokenRollback:
		p.nextToken()
		return &RollbackStmt{}, nil
	case TokenAnalyze:
		if err := p.expectPeek(TokenIdent); err != nil {
			return nil, err
		}
		stmt := &AnalyzeStmt{TableName: p.curToken.Literal}
		p.nextToken()
		return stmt, nil
	case TokenExplain:
		p.nextToken()
		inner, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		return &ExplainStmt{Stmt: inner}, nil
	case TokenExit, TokenQuit:
		p.nextToken()
		return &ExitStmt{}, nil
	case TokenCrash:
		p.nextToken()
		return &CrashStmt{}, nil
	default:
		return nil, fmt.Errorf("parser: unexpected token %q", p.curToken.Literal)
	}
}

// --- CREATE TABLE / DROP TABLE ---

func (p *Parser) parseCreateTable() (*CreateTableStmt, error) {
	if err := p.expectPeek(TokenTable); err != nil {
		return nil, err
	}

	stmt := &CreateTableStmt{}
	if p.peekTokenIs(TokenIf) {
		p.nextToken()
		if err := p.expectPeek(TokenNot); err != nil {
			return nil, err
		}
		if err := p.expectPeek(TokenExists); err != nil {
			return nil, err
		}
		stmt.IfNotExists = true
	}

	if err := p.expectPeek(TokenIdent); err != nil {
		return nil, err
	}
	stmt.TableName = p.curToken.Literal

	if err := p.expectPeek(TokenLParen); err != nil {
		return nil, err
	}
	p.nextToken()

	for !p.curTokenIs(TokenRParen) {
		if p.curTokenIs(TokenPrimary) {
			if err := p.expectPeek(TokenKey); err != nil {
				return nil, err
			}
			if err := p.expectPeek(TokenLParen); err != nil {
				return nil, err
			}
			cols, err := p.parseIdentList()
			if err != nil {
				return nil, err
			}
			stmt.PrimaryKey = cols
		} else if p.curTokenIs(TokenUnique) {
			if err := p.expectPeek(TokenLParen); err != nil {
				return nil, err
			}
			cols, err := p.parseIdentList()
			if err != nil {
				return nil, err
			}
			stmt.Unique = append(stmt.Unique, cols)
		} else {
			col, err := p.parseColumnDef()
			if err != nil {
				return nil, err
			}
			stmt.Columns = append(stmt.Columns, col.def)
			if col.primary {
				stmt.PrimaryKey = append(stmt.PrimaryKey, col.def.Name)
			}
			if col.unique {
				stmt.Unique = append(stmt.Unique, []string{col.def.Name})
			}
		}

		if p.peekTokenIs(TokenComma) {
			p.nextToken()
			p.nextToken()
			continue
		}
		if err := p.expectPeek(TokenRParen); err != nil {
			return nil, err
		}
	}
	p.nextToken()
	return stmt, nil
}

// parseIdentList parses a parenthesized "a, b, c)" list, with curToken
// already positioned on the opening paren; it consumes through the closing
// paren.
func (p *Parser) parseIdentList() ([]string, error) {
	var names []string
	p.nextToken()
	for !p.curTokenIs(TokenRParen) {
		if p.curToken.Type != TokenIdent {
			return nil, fmt.Errorf("parser: expected column name, got %q", p.curToken.Literal)
		}
		names = append(names, p.curToken.Literal)
		p.nextToken()
		if p.curTokenIs(TokenComma) {
			p.nextToken()
		}
	}
	return names, nil
}

type columnSpec struct {
	def     schema.ColumnDef
	primary bool
	unique  bool
}

func (p *Parser) parseColumnDef() (columnSpec, error) {
	if p.curToken.Type != TokenIdent {
		return columnSpec{}, fmt.Errorf("parser: expected column name, got %q", p.curToken.Literal)
	}
	name := p.curToken.Literal

	p.nextToken()
	dt, err := p.parseDataType()
	if err != nil {
		return columnSpec{}, err
	}

	spec := columnSpec{def: schema.ColumnDef{Name: name, Type: dt, Nullable: true}}
	for {
		switch {
		case p.peekTokenIs(TokenPrimary):
			p.nextToken()
			if err := p.expectPeek(TokenKey); err != nil {
				return columnSpec{}, err
			}
			spec.primary = true
			spec.def.Nullable = false
		case p.peekTokenIs(TokenUnique):
			p.nextToken()
			spec.unique = true
		case p.peekTokenIs(TokenNot):
			p.nextToken()
			if err := p.expectPeek(TokenNull); err != nil {
				return columnSpec{}, err
			}
			spec.def.Nullable = false
		default:
			return spec, nil
		}
	}
}

func (p *Parser) parseDataType() (types.DataType, error) {
	switch p.curToken.Type {
	case TokenTinyint:
		return types.TINYINT, nil
	case TokenSmallint:
		return types.SMALLINT, nil
	case TokenIntType:
		return types.INTEGER, nil
	case TokenBigint:
		return types.BIGINT, nil
	case TokenFloatType:
		return types.FLOAT, nil
	case TokenDoubleType:
		return types.DOUBLE, nil
	case TokenNumericType:
		return types.NUMERIC, nil
	case TokenChar:
		return types.CHAR, nil
	case TokenVarchar:
		return types.VARCHAR, nil
	case TokenTextType:
		return types.TEXT, nil
	case TokenDate:
		return types.DATE, nil
	case TokenTime:
		return types.TIME, nil
	case TokenDatetime:
		return types.DATETIME, nil
	case TokenTimestamp:
		return types.TIMESTAMP, nil
	default:
		return 0, fmt.Errorf("parser: expected a column type, got %q", p.curToken.Literal)
	}
}

func (p *Parser) parseDropTable() (*DropTableStmt, error) {
	if err := p.expectPeek(TokenTable); err != nil {
		return nil, err
	}
	stmt := &DropTableStmt{}
	if p.peekTokenIs(TokenIf) {
		p.nextToken()
		if err := p.expectPeek(TokenExists); err != nil {
			return nil, err
		}
		stmt.IfExists = true
	}
	if err := p.expectPeek(TokenIdent); err != nil {
		return nil, err
	}
	stmt.TableName = p.curToken.Literal
	p.nextToken()
	return stmt, nil
}

// --- INSERT ---

func (p *Parser) parseInsert() (*InsertStmt, error) {
	if err := p.expectPeek(TokenInto); err != nil {
		return nil, err
	}
	if err := p.expectPeek(TokenIdent); err != nil {
		return nil, err
	}
	stmt := &InsertStmt{TableName: p.curToken.Literal}

	if p.peekTokenIs(TokenLParen) {
		p.nextToken()
		cols, err := p.parseIdentList()
		if err != nil {
			return nil, err
		}
		stmt.Columns = cols
	}

	if err := p.expectPeek(TokenValues); err != nil {
		return nil, err
	}

	for {
		if err := p.expectPeek(TokenLParen); err != nil {
			return nil, err
		}
		row, err := p.parseValueList()
		if err != nil {
			return nil, err
		}
		stmt.Rows = append(stmt.Rows, row)

		if p.peekTokenIs(TokenComma) {
			p.nextToken()
			continue
		}
		break
	}
	p.nextToken()
	return stmt, nil
}

// parseValueList parses "(v1, v2, ...)" with curToken on '(', leaving
// curToken on the closing ')'.
func (p *Parser) parseValueList() ([]types.Value, error) {
	var values []types.Value
	p.nextToken()
	for !p.curTokenIs(TokenRParen) {
		v, err := p.parseLiteralValue()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
		p.nextToken()
		if p.curTokenIs(TokenComma) {
			p.nextToken()
		}
	}
	return values, nil
}

func (p *Parser) parseLiteralValue() (types.Value, error) {
	switch p.curToken.Type {
	case TokenNumber:
		n, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
		if err != nil {
			return types.Value{}, err
		}
		return types.NewInt(types.INTEGER, n), nil
	case TokenFloat:
		f, err := strconv.ParseFloat(p.curToken.Literal, 64)
		if err != nil {
			return types.Value{}, err
		}
		return types.NewFloat(types.DOUBLE, f), nil
	case TokenString:
		return types.NewString(types.VARCHAR, p.curToken.Literal), nil
	case TokenNull:
		return types.Null(types.VARCHAR), nil
	case TokenMinus:
		p.nextToken()
		v, err := p.parseLiteralValue()
		if err != nil {
			return types.Value{}, err
		}
		if v.Type().IsInteger() {
			return types.NewInt(v.Type(), -v.Int()), nil
		}
		return types.NewFloat(v.Type(), -v.Float()), nil
	default:
		return types.Value{}, fmt.Errorf("parser: expected a literal value, got %q", p.curToken.Literal)
	}
}

// --- UPDATE / DELETE ---

func (p *Parser) parseUpdate() (*UpdateStmt, error) {
	if err := p.expectPeek(TokenIdent); err != nil {
		return nil, err
	}
	stmt := &UpdateStmt{TableName: p.curToken.Literal}

	if err := p.expectPeek(TokenSet); err != nil {
		return nil, err
	}

	for {
		if err := p.expectPeek(TokenIdent); err != nil {
			return nil, err
		}
		col := p.curToken.Literal
		if err := p.expectPeek(TokenEqual); err != nil {
			return nil, err
		}
		p.nextToken()
		val, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		stmt.Set = append(stmt.Set, Assignment{Column: col, Value: val})

		if p.peekTokenIs(TokenComma) {
			p.nextToken()
			continue
		}
		break
	}

	if p.peekTokenIs(TokenWhere) {
		p.nextToken()
		p.nextToken()
		where, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}
	p.nextToken()
	return stmt, nil
}

func (p *Parser) parseDelete() (*DeleteStmt, error) {
	if err := p.expectPeek(TokenFrom); err != nil {
		return nil, err
	}
	if err := p.expectPeek(TokenIdent); err != nil {
		return nil, err
	}
	stmt := &DeleteStmt{TableName: p.curToken.Literal}

	if p.peekTokenIs(TokenWhere) {
		p.nextToken()
		p.nextToken()
		where, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}
	p.nextToken()
	return stmt, nil
}

// --- SELECT ---

func (p *Parser) parseSelect() (*SelectStmt, error) {
	stmt := &SelectStmt{}
	p.nextToken() // skip SELECT

	items, err := p.parseSelectList()
	if err != nil {
		return nil, err
	}
	stmt.Columns = items

	if p.peekTokenIs(TokenFrom) {
		p.nextToken()
		p.nextToken()
		from, err := p.parseFromClause()
		if err != nil {
			return nil, err
		}
		stmt.From = from
	}

	if p.peekTokenIs(TokenWhere) {
		p.nextToken()
		p.nextToken()
		where, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}

	if p.peekTokenIs(TokenGroup) {
		p.nextToken()
		if err := p.expectPeek(TokenBy); err != nil {
			return nil, err
		}
		p.nextToken()
		for {
			e, err := p.parseExpression(lowest)
			if err != nil {
				return nil, err
			}
			stmt.GroupBy = append(stmt.GroupBy, e)
			if p.peekTokenIs(TokenComma) {
				p.nextToken()
				p.nextToken()
				continue
			}
			break
		}
	}

	if p.peekTokenIs(TokenHaving) {
		p.nextToken()
		p.nextToken()
		having, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		stmt.Having = having
	}

	if p.peekTokenIs(TokenOrder) {
		p.nextToken()
		if err := p.expectPeek(TokenBy); err != nil {
			return nil, err
		}
		p.nextToken()
		items, err := p.parseOrderByList()
		if err != nil {
			return nil, err
		}
		stmt.OrderBy = items
	}

	if p.peekTokenIs(TokenLimit) {
		p.nextToken()
		if err := p.expectPeek(TokenNumber); err != nil {
			return nil, err
		}
		n, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
		if err != nil {
			return nil, err
		}
		stmt.Limit = &n
	}

	p.nextToken()
	return stmt, nil
}

func (p *Parser) parseSelectList() ([]SelectItem, error) {
	var items []SelectItem
	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.peekTokenIs(TokenComma) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	return items, nil
}

func (p *Parser) parseSelectItem() (SelectItem, error) {
	if p.curTokenIs(TokenAsterisk) {
		return SelectItem{Star: true}, nil
	}
	if p.curToken.Type == TokenIdent && len(p.curToken.Literal) > 0 && p.curToken.Literal[len(p.curToken.Literal)-1] == '.' && p.peekTokenIs(TokenAsterisk) {
		qualifier := p.curToken.Literal[:len(p.curToken.Literal)-1]
		p.nextToken()
		return SelectItem{Star: true, Qualifier: qualifier}, nil
	}

	e, err := p.parseExpression(lowest)
	if err != nil {
		return SelectItem{}, err
	}
	item := SelectItem{Expr: e}

	if p.peekTokenIs(TokenAs) {
		p.nextToken()
		if err := p.expectPeek(TokenIdent); err != nil {
			return SelectItem{}, err
		}
		item.Alias = p.curToken.Literal
	} else if p.peekTokenIs(TokenIdent) {
		p.nextToken()
		item.Alias = p.curToken.Literal
	}
	return item, nil
}

func (p *Parser) parseOrderByList() ([]OrderItem, error) {
	var items []OrderItem
	for {
		e, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		item := OrderItem{Expr: e}
		if p.peekTokenIs(TokenAsc) {
			p.nextToken()
		} else if p.peekTokenIs(TokenDesc) {
			p.nextToken()
			item.Descending = true
		}
		if p.peekTokenIs(TokenNulls) {
			p.nextToken()
			if p.peekTokenIs(TokenFirst) {
				p.nextToken()
				item.NullsFirst = true
				item.NullsFirstSet = true
			} else if err := p.expectPeek(TokenLast); err != nil {
				return nil, err
			} else {
				item.NullsFirstSet = true
			}
		}
		items = append(items, item)
		if p.peekTokenIs(TokenComma) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	return items, nil
}

// --- FROM clause ---

func (p *Parser) parseFromClause() (FromItem, error) {
	left, err := p.parseFromPrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.peekTokenIs(TokenComma):
			p.nextToken()
			p.nextToken()
			right, err := p.parseFromPrimary()
			if err != nil {
				return nil, err
			}
			left = &JoinItem{Kind: CrossJoin, Left: left, Right: right}
		case p.peekTokenIs(TokenJoin), p.peekTokenIs(TokenInner), p.peekTokenIs(TokenLeft),
			p.peekTokenIs(TokenRight), p.peekTokenIs(TokenFull), p.peekTokenIs(TokenCross),
			p.peekTokenIs(TokenNatural):
			p.nextToken()
			join, err := p.parseJoinRest(left)
			if err != nil {
				return nil, err
			}
			left = join
		default:
			return left, nil
		}
	}
}

func (p *Parser) parseJoinRest(left FromItem) (FromItem, error) {
	natural := false
	kind := InnerJoin

	if p.curTokenIs(TokenNatural) {
		natural = true
		p.nextToken()
	}

	switch p.curToken.Type {
	case TokenInner:
		kind = InnerJoin
		p.nextToken()
	case TokenLeft:
		kind = LeftJoin
		p.nextToken()
		if p.curTokenIs(TokenOuter) {
			p.nextToken()
		}
	case TokenRight:
		kind = RightJoin
		p.nextToken()
		if p.curTokenIs(TokenOuter) {
			p.nextToken()
		}
	case TokenFull:
		kind = FullJoin
		p.nextToken()
		if p.curTokenIs(TokenOuter) {
			p.nextToken()
		}
	case TokenCross:
		kind = CrossJoin
		p.nextToken()
	}

	if !p.curTokenIs(TokenJoin) {
		return nil, fmt.Errorf("parser: expected JOIN, got %q", p.curToken.Literal)
	}
	p.nextToken()

	right, err := p.parseFromPrimary()
	if err != nil {
		return nil, err
	}

	join := &JoinItem{Kind: kind, Left: left, Right: right, Natural: natural}
	if natural || kind == CrossJoin {
		return join, nil
	}

	if p.peekTokenIs(TokenOn) {
		p.nextToken()
		p.nextToken()
		on, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		join.On = on
	} else if p.peekTokenIs(TokenUsing) {
		p.nextToken()
		if err := p.expectPeek(TokenLParen); err != nil {
			return nil, err
		}
		cols, err := p.parseIdentList()
		if err != nil {
			return nil, err
		}
		join.Using = cols
	}
	return join, nil
}

func (p *Parser) parseFromPrimary() (FromItem, error) {
	if p.curTokenIs(TokenLParen) {
		p.nextToken()
		inner, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		if !p.curTokenIs(TokenRParen) {
			return nil, fmt.Errorf("parser: expected ')' to close derived table, got %q", p.curToken.Literal)
		}
		alias := ""
		if p.peekTokenIs(TokenAs) {
			p.nextToken()
			if err := p.expectPeek(TokenIdent); err != nil {
				return nil, err
			}
			alias = p.curToken.Literal
		} else if p.peekTokenIs(TokenIdent) {
			p.nextToken()
			alias = p.curToken.Literal
		}
		if alias == "" {
			return nil, fmt.Errorf("parser: derived table requires an alias")
		}
		return &SubqueryRef{Select: inner, Alias: alias}, nil
	}

	if p.curToken.Type != TokenIdent {
		return nil, fmt.Errorf("parser: expected a table name, got %q", p.curToken.Literal)
	}
	ref := &TableRef{Name: p.curToken.Literal}
	if p.peekTokenIs(TokenAs) {
		p.nextToken()
		if err := p.expectPeek(TokenIdent); err != nil {
			return nil, err
		}
		ref.Alias = p.curToken.Literal
	} else if p.peekTokenIs(TokenIdent) {
		p.nextToken()
		ref.Alias = p.curToken.Literal
	}
	return ref, nil
}

// --- Expressions (Pratt parser) ---

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return lowest
}

func (p *Parser) parseExpression(precedence int) (Expression, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for precedence < p.peekPrecedence() {
		switch p.peekToken.Type {
		case TokenNot:
			// "NOT BETWEEN"/"NOT LIKE"/"NOT IN" — handled by peeking past NOT.
			p.nextToken()
			left, err = p.parseNegatedInfix(left)
		case TokenIs:
			p.nextToken()
			left, err = p.parseIsNull(left)
		case TokenBetween:
			p.nextToken()
			left, err = p.parseBetween(left, false)
		case TokenLike:
			p.nextToken()
			left, err = p.parseLike(left, false)
		case TokenIn:
			p.nextToken()
			left, err = p.parseIn(left, false)
		case TokenAnd, TokenOr, TokenEqual, TokenNotEqual, TokenLt, TokenLe, TokenGt, TokenGe,
			TokenPlus, TokenMinus, TokenAsterisk, TokenSlash, TokenPercent:
			p.nextToken()
			left, err = p.parseBinary(left)
		default:
			return left, nil
		}
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

// parseNegatedInfix handles "expr NOT BETWEEN/LIKE/IN ..." with curToken on
// NOT.
func (p *Parser) parseNegatedInfix(left Expression) (Expression, error) {
	switch p.peekToken.Type {
	case TokenBetween:
		p.nextToken()
		return p.parseBetween(left, true)
	case TokenLike:
		p.nextToken()
		return p.parseLike(left, true)
	case TokenIn:
		p.nextToken()
		return p.parseIn(left, true)
	default:
		return nil, fmt.Errorf("parser: unexpected NOT in expression, next token %q", p.peekToken.Literal)
	}
}

func (p *Parser) parseBinary(left Expression) (Expression, error) {
	op, ok := binOpFor(p.curToken.Type)
	if !ok {
		return nil, fmt.Errorf("parser: unexpected operator %q", p.curToken.Literal)
	}
	prec := precedences[p.curToken.Type]
	p.nextToken()
	right, err := p.parseExpression(prec)
	if err != nil {
		return nil, err
	}
	return &BinaryExpr{Op: op, Left: left, Right: right}, nil
}

func binOpFor(t TokenType) (BinOp, bool) {
	switch t {
	case TokenEqual:
		return OpEq, true
	case TokenNotEqual:
		return OpNe, true
	case TokenLt:
		return OpLt, true
	case TokenLe:
		return OpLe, true
	case TokenGt:
		return OpGt, true
	case TokenGe:
		return OpGe, true
	case TokenAnd:
		return OpAnd, true
	case TokenOr:
		return OpOr, true
	case TokenPlus:
		return OpAdd, true
	case TokenMinus:
		return OpSub, true
	case TokenAsterisk:
		return OpMul, true
	case TokenSlash:
		return OpDiv, true
	case TokenPercent:
		return OpMod, true
	default:
		return 0, false
	}
}

func (p *Parser) parseIsNull(left Expression) (Expression, error) {
	negate := false
	if p.peekTokenIs(TokenNot) {
		p.nextToken()
		negate = true
	}
	if err := p.expectPeek(TokenNull); err != nil {
		return nil, err
	}
	return &IsNullExpr{Target: left, Negate: negate}, nil
}

func (p *Parser) parseBetween(left Expression, negate bool) (Expression, error) {
	p.nextToken()
	low, err := p.parseExpression(sumPrec)
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(TokenAnd); err != nil {
		return nil, err
	}
	p.nextToken()
	high, err := p.parseExpression(sumPrec)
	if err != nil {
		return nil, err
	}
	return &BetweenExpr{Target: left, Low: low, High: high, Negate: negate}, nil
}

func (p *Parser) parseLike(left Expression, negate bool) (Expression, error) {
	p.nextToken()
	pattern, err := p.parseExpression(comparePrec)
	if err != nil {
		return nil, err
	}
	return &LikeExpr{Target: left, Pattern: pattern, Negate: negate}, nil
}

func (p *Parser) parseIn(left Expression, negate bool) (Expression, error) {
	if err := p.expectPeek(TokenLParen); err != nil {
		return nil, err
	}
	if p.peekTokenIs(TokenSelect) {
		p.nextToken()
		sub, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		if !p.curTokenIs(TokenRParen) {
			return nil, fmt.Errorf("parser: expected ')' to close IN subquery")
		}
		return &InExpr{Target: left, Subquery: sub, Negate: negate}, nil
	}

	var list []Expression
	p.nextToken()
	for !p.curTokenIs(TokenRParen) {
		e, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
		p.nextToken()
		if p.curTokenIs(TokenComma) {
			p.nextToken()
		}
	}
	return &InExpr{Target: left, List: list, Negate: negate}, nil
}

func (p *Parser) parsePrefix() (Expression, error) {
	switch p.curToken.Type {
	case TokenNot:
		p.nextToken()
		operand, err := p.parseExpression(notPrec)
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: Not, Operand: operand}, nil
	case TokenMinus:
		p.nextToken()
		operand, err := p.parseExpression(prefixPrec)
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: Neg, Operand: operand}, nil
	case TokenExists:
		if err := p.expectPeek(TokenLParen); err != nil {
			return nil, err
		}
		if err := p.expectPeek(TokenSelect); err != nil {
			return nil, err
		}
		sub, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		if !p.curTokenIs(TokenRParen) {
			return nil, fmt.Errorf("parser: expected ')' to close EXISTS subquery")
		}
		return &ExistsExpr{Subquery: sub}, nil
	case TokenLParen:
		p.nextToken()
		inner, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		if !p.peekTokenIs(TokenRParen) {
			return nil, fmt.Errorf("parser: expected ')' to close parenthesized expression")
		}
		p.nextToken()
		return inner, nil
	case TokenNumber:
		n, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
		if err != nil {
			return nil, err
		}
		return &LiteralExpr{Value: types.NewInt(types.INTEGER, n)}, nil
	case TokenFloat:
		f, err := strconv.ParseFloat(p.curToken.Literal, 64)
		if err != nil {
			return nil, err
		}
		return &LiteralExpr{Value: types.NewFloat(types.DOUBLE, f)}, nil
	case TokenString:
		return &LiteralExpr{Value: types.NewString(types.VARCHAR, p.curToken.Literal)}, nil
	case TokenNull:
		return &LiteralExpr{Value: types.Null(types.VARCHAR)}, nil
	case TokenIdent:
		return p.parseIdentOrCall()
	default:
		return nil, fmt.Errorf("parser: unexpected token %q in expression", p.curToken.Literal)
	}
}

func (p *Parser) parseIdentOrCall() (Expression, error) {
	name := p.curToken.Literal
	if p.peekTokenIs(TokenLParen) {
		p.nextToken() // consume '('
		call := &CallExpr{Name: name}
		if p.peekTokenIs(TokenAsterisk) {
			p.nextToken()
			call.Star = true
			if err := p.expectPeek(TokenRParen); err != nil {
				return nil, err
			}
			return call, nil
		}
		if p.peekTokenIs(TokenRParen) {
			p.nextToken()
			return call, nil
		}
		p.nextToken()
		for {
			arg, err := p.parseExpression(lowest)
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
			if p.peekTokenIs(TokenComma) {
				p.nextToken()
				p.nextToken()
				continue
			}
			break
		}
		if err := p.expectPeek(TokenRParen); err != nil {
			return nil, err
		}
		return call, nil
	}

	qualifier, col := splitQualified(name)
	return &ColumnExpr{Qualifier: qualifier, Name: col}, nil
}

// splitQualified splits "t.col" into ("t", "col"); unqualified names yield
// ("", name).
func splitQualified(name string) (string, string) {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[:i], name[i+1:]
		}
	}
	return "", name
}
