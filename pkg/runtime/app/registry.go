package app

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	"github.com/de-tools/sales-atlas/pkg/services/config"
	"github.com/de-tools/sales-atlas/pkg/store/duckdb"
	"github.com/de-tools/sales-atlas/pkg/store/sqlite"
	"github.com/de-tools/sales-atlas/pkg/store/warehouse"
)

// Opener opens a connection pool for a database backend.
type Opener func(ctx context.Context, settings config.DatabaseConfig) (*sql.DB, error)

// Registry manages database backend openers by driver name
type Registry interface {
	// Register adds a new backend opener
	Register(driver string, opener Opener) error
	// Open connects to the backend registered under driver
	Open(ctx context.Context, driver string, settings config.DatabaseConfig) (*sql.DB, error)
	// ListDrivers returns the registered driver names in sorted order
	ListDrivers() []string
}

type registry struct {
	mu      sync.RWMutex
	openers map[string]Opener
}

// NewRegistry creates an empty backend registry
func NewRegistry() Registry {
	return &registry{
		openers: make(map[string]Opener),
	}
}

// DefaultRegistry knows the embedded and warehouse backends.
func DefaultRegistry() Registry {
	r := NewRegistry()
	_ = r.Register("duckdb", openDuckDB)
	_ = r.Register("sqlite", openSQLite)
	_ = r.Register("databricks", openDatabricks)
	_ = r.Register("snowflake", openSnowflake)
	return r
}

func (r *registry) Register(driver string, opener Opener) error {
	if driver == "" {
		return fmt.Errorf("driver name cannot be empty")
	}
	if opener == nil {
		return fmt.Errorf("opener cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.openers[driver]; exists {
		return fmt.Errorf("driver %q is already registered", driver)
	}

	r.openers[driver] = opener
	return nil
}

func (r *registry) Open(ctx context.Context, driver string, settings config.DatabaseConfig) (*sql.DB, error) {
	r.mu.RLock()
	opener, exists := r.openers[driver]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("driver %q is not registered", driver)
	}

	return opener(ctx, settings)
}

func (r *registry) ListDrivers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	drivers := make([]string, 0, len(r.openers))
	for driver := range r.openers {
		drivers = append(drivers, driver)
	}
	sort.Strings(drivers)
	return drivers
}

func openDuckDB(_ context.Context, settings config.DatabaseConfig) (*sql.DB, error) {
	return duckdb.NewDB(duckdb.Settings{DbPath: settings.Path, Table: settings.Table})
}

func openSQLite(ctx context.Context, settings config.DatabaseConfig) (*sql.DB, error) {
	return sqlite.NewDB(ctx, sqlite.Settings{DbPath: settings.Path, Table: settings.Table})
}

func openDatabricks(ctx context.Context, settings config.DatabaseConfig) (*sql.DB, error) {
	return warehouse.OpenDatabricks(ctx, warehouse.DatabricksSettings{
		ConfigPath: settings.DatabricksConfig,
		Profile:    settings.DatabricksProfile,
		HTTPPath:   settings.HTTPPath,
	})
}

func openSnowflake(_ context.Context, settings config.DatabaseConfig) (*sql.DB, error) {
	return warehouse.OpenSnowflake(warehouse.SnowflakeSettings{
		DSN:        settings.DSN,
		ConfigPath: settings.SnowflakeConfig,
	})
}
