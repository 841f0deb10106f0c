package storage

import "nanodb/db/schema"

// tableMeta is the exported-fields-only shape a *schema.TableSchema is
// flattened into for gob persistence — Schema's own column slice is
// unexported, so it can't be gob-encoded directly.
type tableMeta struct {
	TableName   string
	Columns     []schema.ColumnDef
	PrimaryKey  []string
	Candidates  [][]string
	ForeignKeys []schema.ForeignKeyDef
	Indexes     []schema.IndexDef
}

func metaFromSchema(ts *schema.TableSchema) tableMeta {
	return tableMeta{
		TableName:   ts.TableName,
		Columns:     ts.Columns(),
		PrimaryKey:  ts.PrimaryKey,
		Candidates:  ts.Candidates,
		ForeignKeys: ts.ForeignKeys,
		Indexes:     ts.Indexes,
	}
}

func (m tableMeta) schema() *schema.TableSchema {
	ts := schema.NewTableSchema(m.TableName, m.Columns...)
	ts.PrimaryKey = m.PrimaryKey
	ts.Candidates = m.Candidates
	ts.ForeignKeys = m.ForeignKeys
	ts.Indexes = m.Indexes
	return ts
}
