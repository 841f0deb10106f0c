package schema

import "nanodb/db/types"

// ColumnDef describes a single column: an optional table qualifier, its
// name, its type, and whether it may hold NULL. Within a schema,
// (qualifier, name) is unique; name alone may be ambiguous.
type ColumnDef struct {
	Qualifier string // table alias/name this column came from, or "" if none
	Name      string
	Type      types.DataType
	Nullable  bool
}

// QualifiedName returns "qualifier.name", or just "name" if unqualified.
func (c ColumnDef) QualifiedName() string {
	if c.Qualifier == "" {
		return c.Name
	}
	return c.Qualifier + "." + c.Name
}
