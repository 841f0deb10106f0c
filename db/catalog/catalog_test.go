package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nanodb/db/schema"
	"nanodb/db/types"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, c.Close()) })
	return c
}

func ordersSchema() *schema.TableSchema {
	ts := schema.NewTableSchema("orders",
		schema.ColumnDef{Name: "id", Type: types.INTEGER},
		schema.ColumnDef{Name: "sku", Type: types.VARCHAR},
	)
	ts.PrimaryKey = []string{"id"}
	return ts
}

func TestCreateTableThenTableReturnsCachedHandle(t *testing.T) {
	c := openTestCatalog(t)
	created, err := c.CreateTable(ordersSchema())
	require.NoError(t, err)

	got, err := c.Table("orders")
	require.NoError(t, err)
	require.Same(t, created, got)
}

func TestCreateTableTwiceFails(t *testing.T) {
	c := openTestCatalog(t)
	_, err := c.CreateTable(ordersSchema())
	require.NoError(t, err)
	_, err = c.CreateTable(ordersSchema())
	require.Error(t, err)
}

func TestTableLoadsUncachedTableFromStorage(t *testing.T) {
	c := openTestCatalog(t)
	_, err := c.CreateTable(ordersSchema())
	require.NoError(t, err)

	// Force a fresh lookup by evicting the cache entry directly, simulating
	// a catalog that just started and hasn't touched this table yet.
	c.mu.Lock()
	delete(c.tables, "orders")
	c.mu.Unlock()

	table, err := c.Table("orders")
	require.NoError(t, err)
	require.Equal(t, "orders", table.TableSchema().TableName)
}

func TestResolveTableImplementsTableProvider(t *testing.T) {
	c := openTestCatalog(t)
	_, err := c.CreateTable(ordersSchema())
	require.NoError(t, err)

	handle, err := c.ResolveTable("orders")
	require.NoError(t, err)
	require.NotNil(t, handle)

	_, err = c.ResolveTable("missing")
	require.Error(t, err)
}

func TestDropTableEvictsCacheAndRemovesData(t *testing.T) {
	c := openTestCatalog(t)
	_, err := c.CreateTable(ordersSchema())
	require.NoError(t, err)

	require.NoError(t, c.DropTable("orders"))

	names, err := c.ListTables()
	require.NoError(t, err)
	require.NotContains(t, names, "orders")

	_, err = c.Table("orders")
	require.Error(t, err)
}

func TestListTablesReflectsCreatedTables(t *testing.T) {
	c := openTestCatalog(t)
	_, err := c.CreateTable(ordersSchema())
	require.NoError(t, err)

	names, err := c.ListTables()
	require.NoError(t, err)
	require.Contains(t, names, "orders")
}
