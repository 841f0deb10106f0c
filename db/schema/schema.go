// Package schema implements column resolution: an ordered sequence of
// column descriptors supporting lookup by index, by unqualified name, and
// by qualified name, plus schema-join for building composite (e.g. join)
// schemas.
package schema

import (
	"strings"

	"nanodb/db/errs"
)

// Schema is an immutable ordered sequence of column descriptors, fixed once
// produced by a plan node's prepare step.
type Schema struct {
	columns []ColumnDef
}

// New builds a Schema from the given columns, in order.
func New(columns ...ColumnDef) *Schema {
	cp := make([]ColumnDef, len(columns))
	copy(cp, columns)
	return &Schema{columns: cp}
}

// Columns returns the schema's column descriptors in order. The returned
// slice must not be mutated by the caller.
func (s *Schema) Columns() []ColumnDef { return s.columns }

// Len returns the number of columns.
func (s *Schema) Len() int { return len(s.columns) }

// Column returns the i'th column descriptor.
func (s *Schema) Column(i int) ColumnDef { return s.columns[i] }

// ColumnIndex resolves an unqualified name to its column position. Returns
// -1 if absent, the unique position if resolvable, and an AmbiguousName
// error if two or more columns share that name.
func (s *Schema) ColumnIndex(name string) (int, error) {
	found := -1
	for i, c := range s.columns {
		if c.Name == name {
			if found != -1 {
				return -1, errs.AmbiguousName(name)
			}
			found = i
		}
	}
	return found, nil
}

// QualifiedColumnIndex resolves "qualifier.name" to an exact position,
// returning -1 if no column matches both parts.
func (s *Schema) QualifiedColumnIndex(qualifier, name string) int {
	for i, c := range s.columns {
		if c.Qualifier == qualifier && c.Name == name {
			return i
		}
	}
	return -1
}

// Resolve resolves a possibly-qualified "qualifier.name" or bare "name"
// reference, applying AmbiguousName semantics only in the unqualified case.
func (s *Schema) Resolve(qualifier, name string) (int, error) {
	if qualifier != "" {
		idx := s.QualifiedColumnIndex(qualifier, name)
		return idx, nil
	}
	return s.ColumnIndex(name)
}

// Join produces a new schema with the concatenation of this schema's
// columns followed by other's — the schema of a join's output.
func (s *Schema) Join(other *Schema) *Schema {
	combined := make([]ColumnDef, 0, len(s.columns)+len(other.columns))
	combined = append(combined, s.columns...)
	combined = append(combined, other.columns...)
	return New(combined...)
}

// WithQualifier returns a copy of the schema with every column's qualifier
// rewritten to the given table name, used by the Rename operator.
func (s *Schema) WithQualifier(qualifier string) *Schema {
	cols := make([]ColumnDef, len(s.columns))
	for i, c := range s.columns {
		c.Qualifier = qualifier
		cols[i] = c
	}
	return New(cols...)
}

// Names returns the "qualifier.name" (or bare "name") strings for every
// column, in order — convenient for building result-set headers.
func (s *Schema) Names() []string {
	out := make([]string, len(s.columns))
	for i, c := range s.columns {
		out[i] = c.QualifiedName()
	}
	return out
}

// AllSymbols returns the set of symbols the schema provides — every
// column's bare name and its "qualifier.name" form — used by the planner when checking whether an expression's
// referenced symbols are fully covered by a candidate plan's schema.
func (s *Schema) AllSymbols() map[string]bool {
	out := make(map[string]bool, len(s.columns))
	for _, c := range s.columns {
		out[c.Name] = true
		out[c.QualifiedName()] = true
	}
	return out
}

// Covers reports whether every symbol in syms is resolvable against this
// schema — either as "qualifier.name" or as a bare name the schema
// provides.
func (s *Schema) Covers(syms map[string]bool) bool {
	provided := s.AllSymbols()
	for sym := range syms {
		if provided[sym] {
			continue
		}
		// Allow a bare reference to resolve against a qualified column too.
		if i := strings.IndexByte(sym, '.'); i >= 0 {
			if provided[sym] {
				continue
			}
			return false
		}
		return false
	}
	return true
}
