package schema

import "nanodb/db/errs"

// ForeignKeyDef describes a foreign key constraint: Column in this table
// references RefTable(RefColumn). Foreign keys are descriptive metadata
// only — they do not affect core execution beyond supplying column order
// to the catalog.
type ForeignKeyDef struct {
	Column    string
	RefTable  string
	RefColumn string
}

// IndexDef describes a named index over one or more columns.
type IndexDef struct {
	Name     string
	Columns  []string
	Unique   bool
	Primary  bool
}

// TableSchema extends Schema with the catalog-level metadata a stored base
// table carries: primary key, candidate (unique) keys, foreign keys, and
// named indexes. None of this is visible to the plan-node layer beyond the
// columns inherited from Schema; FileScan only ever sees the embedded
// Schema.
type TableSchema struct {
	*Schema
	TableName   string
	PrimaryKey  []string // column names, empty if the table has none
	Candidates  [][]string // other unique column groups
	ForeignKeys []ForeignKeyDef
	Indexes     []IndexDef
}

// NewTableSchema builds a TableSchema, qualifying every column with
// tableName.
func NewTableSchema(tableName string, columns ...ColumnDef) *TableSchema {
	qualified := make([]ColumnDef, len(columns))
	for i, c := range columns {
		c.Qualifier = tableName
		qualified[i] = c
	}
	return &TableSchema{
		Schema:    New(qualified...),
		TableName: tableName,
	}
}

// GetColumn finds a column definition by unqualified name.
func (t *TableSchema) GetColumn(name string) (ColumnDef, bool) {
	idx, err := t.ColumnIndex(name)
	if err != nil || idx < 0 {
		return ColumnDef{}, false
	}
	return t.Column(idx), true
}

// IsPrimaryKeyColumn reports whether name is part of the primary key.
func (t *TableSchema) IsPrimaryKeyColumn(name string) bool {
	for _, c := range t.PrimaryKey {
		if c == name {
			return true
		}
	}
	return false
}

// GetForeignKey returns the FK constraint declared on column, if any.
func (t *TableSchema) GetForeignKey(column string) (ForeignKeyDef, bool) {
	for _, fk := range t.ForeignKeys {
		if fk.Column == column {
			return fk, true
		}
	}
	return ForeignKeyDef{}, false
}

// GetIndex returns the named index descriptor, if any.
func (t *TableSchema) GetIndex(name string) (IndexDef, bool) {
	for _, idx := range t.Indexes {
		if idx.Name == name {
			return idx, true
		}
	}
	return IndexDef{}, false
}

// AddIndex validates and appends an index descriptor. Every column named
// must exist in the table; the index name must not already be in use.
func (t *TableSchema) AddIndex(idx IndexDef) error {
	if _, exists := t.GetIndex(idx.Name); exists {
		return errs.SchemaErrorf("index %q already exists on table %q", idx.Name, t.TableName)
	}
	for _, col := range idx.Columns {
		if _, ok := t.GetColumn(col); !ok {
			return errs.SchemaErrorf("index %q references unknown column %q", idx.Name, col)
		}
	}
	t.Indexes = append(t.Indexes, idx)
	return nil
}
