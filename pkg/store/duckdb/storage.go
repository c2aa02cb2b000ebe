package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	storesql "github.com/de-tools/sales-atlas/pkg/store/sql"
	"github.com/marcboeker/go-duckdb/v2"
)

type Settings struct {
	DbPath  string
	Threads int
	// Table defaults to the shared order item table name.
	Table string
}

// NewDB opens a DuckDB database and makes sure the order item schema exists on every connection.
func NewDB(settings Settings) (*sql.DB, error) {
	if settings.Threads <= 0 {
		settings.Threads = 4
	}
	if settings.Table == "" {
		settings.Table = storesql.DefaultTable
	}
	if err := storesql.ValidateTable(settings.Table); err != nil {
		return nil, err
	}
	bootQueries := storesql.BootQueries(settings.Table)

	dsn := fmt.Sprintf("%s?threads=%d", settings.DbPath, settings.Threads)
	c, err := duckdb.NewConnector(dsn, func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
