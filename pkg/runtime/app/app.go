package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/services/analysis"
	"github.com/de-tools/sales-atlas/pkg/services/cache"
	"github.com/de-tools/sales-atlas/pkg/services/config"
	storesql "github.com/de-tools/sales-atlas/pkg/store/sql"
	"github.com/rs/zerolog"
)

// App holds the wired dependencies shared by the web server and the CLI.
type App struct {
	Config   *config.Config
	DB       *sql.DB
	Orders   storesql.OrderItemStore
	Analysis analysis.Service
}

// New opens the configured backend and builds the analysis service on top of it.
func New(ctx context.Context, registry Registry, cfg *config.Config, log zerolog.Logger) (*App, error) {
	dialect, err := storesql.DialectFor(cfg.Database.Driver)
	if err != nil {
		return nil, err
	}

	db, err := registry.Open(ctx, cfg.Database.Driver, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Database.Driver, err)
	}

	orders, err := storesql.NewOrderItemStore(db, storesql.Settings{
		Table:   cfg.Database.Table,
		Dialect: dialect,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create order item store: %w", err)
	}

	analyses := cache.NewTTL[analysis.AnalysisKey, []domain.EntityComparison](
		"analysis", cfg.Cache.MaxEntries, cfg.Cache.AnalysisTTL, log)
	options := cache.NewTTL[analysis.FilterOptionsKey, domain.FilterOptions](
		"filter_options", cfg.Cache.MaxEntries, cfg.Cache.FilterOptionsTTL, log)

	service := analysis.NewService(orders, analyses, options, analysis.Settings{
		ServiceKeywords: cfg.Analysis.ServiceItemKeywords,
		DataSource:      cfg.Analysis.DataSource,
		Version:         cfg.Analysis.Version,
		SingleFlight:    cfg.Cache.SingleFlight,
	}, log)

	log.Info().
		Str("driver", cfg.Database.Driver).
		Str("table", cfg.Database.Table).
		Msg("analysis service ready")

	return &App{
		Config:   cfg,
		DB:       db,
		Orders:   orders,
		Analysis: service,
	}, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}
