package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	storesql "github.com/de-tools/sales-atlas/pkg/store/sql"
	_ "modernc.org/sqlite"
)

type Settings struct {
	DbPath string
	// Table defaults to the shared order item table name.
	Table string
}

// timeFormat makes the driver store timestamps in a layout strftime understands.
const timeFormat = "_time_format=sqlite"

// NewDB opens a SQLite database and creates the order item schema.
// SQLite serialises writers, so the pool is limited to a single connection;
// this also keeps ":memory:" databases shared across queries.
func NewDB(ctx context.Context, settings Settings) (*sql.DB, error) {
	if settings.Table == "" {
		settings.Table = storesql.DefaultTable
	}
	if err := storesql.ValidateTable(settings.Table); err != nil {
		return nil, err
	}

	dsn := settings.DbPath
	if !strings.Contains(dsn, "_time_format=") {
		if strings.Contains(dsn, "?") {
			dsn += "&" + timeFormat
		} else {
			dsn += "?" + timeFormat
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, query := range storesql.BootQueries(settings.Table) {
		if _, err := db.ExecContext(ctx, query); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("bootstrap sqlite schema: %w", err)
		}
	}

	return db, nil
}
