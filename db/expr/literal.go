package expr

import (
	"nanodb/db/env"
	"nanodb/db/schema"
	"nanodb/db/types"
)

// Literal is a constant value embedded directly in an expression tree.
type Literal struct {
	Value types.Value
}

func NewLiteral(v types.Value) *Literal { return &Literal{Value: v} }

func (l *Literal) Evaluate(_ *env.Environment) (types.Value, error) { return l.Value, nil }

func (l *Literal) ColumnInfo(_ []*schema.Schema) (types.DataType, error) {
	return l.Value.Type(), nil
}

func (l *Literal) AllSymbols() map[string]bool { return map[string]bool{} }

func (l *Literal) Duplicate() Expression { return &Literal{Value: l.Value} }

// ColumnRef refers to a column by (qualifier, name); qualifier is empty
// for an unqualified reference.
type ColumnRef struct {
	Qualifier string
	Name      string
}

func NewColumnRef(qualifier, name string) *ColumnRef {
	return &ColumnRef{Qualifier: qualifier, Name: name}
}

func (c *ColumnRef) Evaluate(e *env.Environment) (types.Value, error) {
	v, found, err := e.Resolve(c.Qualifier, c.Name)
	if err != nil {
		return types.Value{}, err
	}
	if !found {
		return types.Value{}, schemaError("unresolved column reference %q", c.qualifiedName())
	}
	return v, nil
}

func (c *ColumnRef) ColumnInfo(schemas []*schema.Schema) (types.DataType, error) {
	var found *schema.ColumnDef
	for _, s := range schemas {
		idx, err := s.Resolve(c.Qualifier, c.Name)
		if err != nil {
			return 0, err
		}
		if idx >= 0 {
			if found != nil {
				return 0, schemaError("ambiguous column reference %q", c.qualifiedName())
			}
			col := s.Column(idx)
			found = &col
		}
	}
	if found == nil {
		return 0, schemaError("unresolved column reference %q", c.qualifiedName())
	}
	return found.Type, nil
}

func (c *ColumnRef) AllSymbols() map[string]bool {
	return map[string]bool{c.qualifiedName(): true}
}

func (c *ColumnRef) Duplicate() Expression {
	return &ColumnRef{Qualifier: c.Qualifier, Name: c.Name}
}

func (c *ColumnRef) qualifiedName() string {
	if c.Qualifier == "" {
		return c.Name
	}
	return c.Qualifier + "." + c.Name
}
