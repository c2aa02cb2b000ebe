package sql

import (
	"fmt"
	"regexp"
	"strings"
)

const DefaultTable = "order_items"

// tableName accepts plain and dot-qualified identifiers such as catalog.schema.table.
var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// ValidateTable rejects names that cannot be interpolated into a statement as an identifier.
func ValidateTable(table string) error {
	if !tableName.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	return nil
}

// orderItemsSchema creates the denormalised line-item table read by the analytic queries.
// The statement is valid for both DuckDB and SQLite. Prices are kept to the cent.
const orderItemsSchema = `
	CREATE TABLE IF NOT EXISTS %s (
		store_id BIGINT NOT NULL,
		order_id VARCHAR NOT NULL,
		line_item_id VARCHAR NOT NULL,
		processed_at TIMESTAMP NULL,
		product_title VARCHAR NOT NULL,
		product_type VARCHAR,
		vendor VARCHAR,
		quantity BIGINT NOT NULL,
		price DECIMAL(18, 2) NOT NULL,
		PRIMARY KEY (store_id, line_item_id)
	);
`

const orderItemsIndex = `
	CREATE INDEX IF NOT EXISTS idx_%s_store_processed
	ON %s (store_id, processed_at);
`

// BootQueries are executed by the embedded stores when a connection is opened.
// An empty table selects DefaultTable; the name must pass ValidateTable.
func BootQueries(table string) []string {
	if table == "" {
		table = DefaultTable
	}
	return []string{
		fmt.Sprintf(orderItemsSchema, table),
		fmt.Sprintf(orderItemsIndex, strings.ReplaceAll(table, ".", "_"), table),
	}
}
