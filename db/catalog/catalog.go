// Package catalog ties a table's schema to its open storage.Table handle
// and caches that handle across lookups, so resolving the same table for
// every FROM-clause reference in a query (or across many queries) doesn't
// reopen its badger row-id sequence each time. Catalog is the concrete
// planner.TableProvider the engine hands to db/planner.
package catalog

import (
	"sync"

	"nanodb/db/errs"
	"nanodb/db/plan"
	"nanodb/db/planner"
	"nanodb/db/schema"
	"nanodb/db/storage"
)

// Catalog is the table registry for one NanoDB data directory.
type Catalog struct {
	engine *storage.Engine

	mu     sync.RWMutex
	tables map[string]*storage.Table
}

// Open opens the badger-backed storage engine at dir and returns an empty
// catalog over it; tables already defined there are loaded lazily on first
// reference, not eagerly here.
func Open(dir string) (*Catalog, error) {
	engine, err := storage.Open(dir)
	if err != nil {
		return nil, err
	}
	return &Catalog{engine: engine, tables: make(map[string]*storage.Table)}, nil
}

// Close releases every cached table handle (and the row-id sequence lease
// each one holds) and then the underlying storage engine.
func (c *Catalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, table := range c.tables {
		if err := table.Close(); err != nil {
			return errs.Wrap(errs.IO, err, "catalog: closing table %q", name)
		}
	}
	c.tables = nil
	return c.engine.Close()
}

// CreateTable defines a new table and caches a handle to it.
func (c *Catalog) CreateTable(ts *schema.TableSchema) (*storage.Table, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, cached := c.tables[ts.TableName]; cached {
		return nil, errs.SchemaErrorf("table %q already exists", ts.TableName)
	}
	table, err := c.engine.CreateTable(ts)
	if err != nil {
		return nil, err
	}
	c.tables[ts.TableName] = table
	return table, nil
}

// DropTable removes a table's definition and data, releasing its cached
// handle first if one is open.
func (c *Catalog) DropTable(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if table, cached := c.tables[name]; cached {
		if err := table.Close(); err != nil {
			return err
		}
		delete(c.tables, name)
	}
	return c.engine.DropTable(name)
}

// Table returns an open handle to name, loading it from storage on first
// use and caching it for subsequent calls.
func (c *Catalog) Table(name string) (*storage.Table, error) {
	c.mu.RLock()
	table, ok := c.tables[name]
	c.mu.RUnlock()
	if ok {
		return table, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if table, ok := c.tables[name]; ok {
		return table, nil
	}
	table, err := c.engine.OpenTable(name)
	if err != nil {
		return nil, err
	}
	c.tables[name] = table
	return table, nil
}

// ResolveTable implements planner.TableProvider.
func (c *Catalog) ResolveTable(name string) (plan.TableHandle, error) {
	return c.Table(name)
}

// ListTables returns every defined table's name.
func (c *Catalog) ListTables() ([]string, error) {
	return c.engine.ListTables()
}

var _ planner.TableProvider = (*Catalog)(nil)
