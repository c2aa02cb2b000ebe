package sql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/models/store"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// OrderItemStore is the analytic read model over order line items.
// Reads are grouped per (entity, year, month); Add is used for ingestion.
type OrderItemStore interface {
	FetchAnalysisRows(
		ctx context.Context,
		storeID int64,
		currentYear, previousYear int,
		filter store.RowFilter,
	) ([]store.AnalysisRow, error)
	ListEntityTypes(ctx context.Context, storeID int64) ([]string, error)
	ListVendors(ctx context.Context, storeID int64) ([]string, error)
	DateRange(ctx context.Context, storeID int64) (earliest, latest int, err error)
	Add(ctx context.Context, storeID int64, items []store.OrderItem) error
}

type Settings struct {
	Table   string
	Dialect Dialect
	// Now is used when a store has no dated orders. Defaults to time.Now.
	Now func() time.Time
}

type orderItemStore struct {
	db      *sql.DB
	table   string
	dialect Dialect
	now     func() time.Time
}

func NewOrderItemStore(db *sql.DB, settings Settings) (OrderItemStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if settings.Dialect.Year == nil || settings.Dialect.Month == nil || settings.Dialect.Contains == nil {
		return nil, fmt.Errorf("dialect is not configured")
	}
	if settings.Table == "" {
		settings.Table = DefaultTable
	}
	if err := ValidateTable(settings.Table); err != nil {
		return nil, err
	}
	if settings.Now == nil {
		settings.Now = time.Now
	}
	return &orderItemStore{
		db:      db,
		table:   settings.Table,
		dialect: settings.Dialect,
		now:     settings.Now,
	}, nil
}

type predicate struct {
	clause string
	args   []any
}

func where(predicates []predicate) (string, []any) {
	clauses := make([]string, 0, len(predicates))
	var args []any
	for _, p := range predicates {
		clauses = append(clauses, p.clause)
		args = append(args, p.args...)
	}
	return strings.Join(clauses, " AND "), args
}

func isSet(value string) bool {
	return value != "" && value != domain.AllFilter
}

func (s *orderItemStore) analysisPredicates(
	storeID int64,
	currentYear, previousYear int,
	filter store.RowFilter,
) []predicate {
	yearExpr := s.dialect.Year("processed_at")
	monthExpr := s.dialect.Month("processed_at")

	predicates := []predicate{
		{clause: "store_id = ?", args: []any{storeID}},
		{clause: "processed_at IS NOT NULL"},
		{clause: yearExpr + " IN (?, ?)", args: []any{currentYear, previousYear}},
	}
	if isSet(filter.EntityType) {
		predicates = append(predicates, predicate{clause: "product_type = ?", args: []any{filter.EntityType}})
	}
	if isSet(filter.Vendor) {
		predicates = append(predicates, predicate{clause: "vendor = ?", args: []any{filter.Vendor}})
	}
	if filter.StartMonth > 0 {
		predicates = append(predicates, predicate{clause: monthExpr + " >= ?", args: []any{filter.StartMonth}})
	}
	if filter.EndMonth > 0 {
		predicates = append(predicates, predicate{clause: monthExpr + " <= ?", args: []any{filter.EndMonth}})
	}
	if filter.ExcludeServiceItems {
		for _, keyword := range filter.ServiceKeywords {
			if keyword == "" {
				continue
			}
			predicates = append(predicates, predicate{
				clause: fmt.Sprintf("NOT (%s)", s.dialect.Contains("product_title")),
				args:   []any{keyword},
			})
		}
	}
	return predicates
}

func (s *orderItemStore) FetchAnalysisRows(
	ctx context.Context,
	storeID int64,
	currentYear, previousYear int,
	filter store.RowFilter,
) ([]store.AnalysisRow, error) {
	logger := zerolog.Ctx(ctx)

	yearExpr := s.dialect.Year("processed_at")
	monthExpr := s.dialect.Month("processed_at")
	clause, args := where(s.analysisPredicates(storeID, currentYear, previousYear, filter))

	query := fmt.Sprintf(`
		SELECT
			COALESCE(product_title, '') AS entity_name,
			COALESCE(product_type, '') AS entity_type,
			COALESCE(vendor, '') AS vendor,
			%[2]s AS order_year,
			%[3]s AS order_month,
			CAST(SUM(CAST(ROUND(price * 100) AS BIGINT) * quantity) AS BIGINT) AS total_revenue_cents,
			CAST(SUM(quantity) AS BIGINT) AS total_quantity,
			COUNT(DISTINCT order_id) AS total_orders
		FROM %[1]s
		WHERE %[4]s
		GROUP BY COALESCE(product_title, ''), COALESCE(product_type, ''), COALESCE(vendor, ''), %[2]s, %[3]s
		ORDER BY entity_name, order_year, order_month
	`, s.table, yearExpr, monthExpr, clause)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query analysis rows: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close analysis rows")
		}
	}(rows)

	result := make([]store.AnalysisRow, 0)
	for rows.Next() {
		var (
			row          store.AnalysisRow
			revenueCents int64
		)
		if err := rows.Scan(
			&row.EntityName,
			&row.EntityType,
			&row.Vendor,
			&row.Year,
			&row.Month,
			&revenueCents,
			&row.TotalQuantity,
			&row.TotalOrders,
		); err != nil {
			return nil, fmt.Errorf("scan analysis row: %w", err)
		}
		row.TotalRevenue = decimal.New(revenueCents, -2)
		row.AverageOrderValue = row.TotalRevenue.
			Div(decimal.NewFromInt(max(row.TotalOrders, 1))).
			Round(2)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analysis rows: %w", err)
	}

	logger.Debug().
		Int64("store_id", storeID).
		Int("rows", len(result)).
		Msg("fetched analysis rows")

	return result, nil
}

func (s *orderItemStore) ListEntityTypes(ctx context.Context, storeID int64) ([]string, error) {
	values, err := s.distinct(ctx, "product_type", storeID)
	if err != nil {
		return nil, fmt.Errorf("list entity types: %w", err)
	}
	return values, nil
}

func (s *orderItemStore) ListVendors(ctx context.Context, storeID int64) ([]string, error) {
	values, err := s.distinct(ctx, "vendor", storeID)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	return values, nil
}

func (s *orderItemStore) distinct(ctx context.Context, column string, storeID int64) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT %[2]s
		FROM %[1]s
		WHERE store_id = ? AND %[2]s IS NOT NULL AND %[2]s <> ''
		ORDER BY %[2]s
	`, s.table, column)

	rows, err := s.db.QueryContext(ctx, query, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make([]string, 0)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (s *orderItemStore) DateRange(ctx context.Context, storeID int64) (int, int, error) {
	yearExpr := s.dialect.Year("processed_at")
	query := fmt.Sprintf(`
		SELECT MIN(%[2]s), MAX(%[2]s)
		FROM %[1]s
		WHERE store_id = ? AND processed_at IS NOT NULL
	`, s.table, yearExpr)

	var earliest, latest sql.NullInt64
	if err := s.db.QueryRowContext(ctx, query, storeID).Scan(&earliest, &latest); err != nil {
		return 0, 0, fmt.Errorf("get date range: %w", err)
	}

	if !earliest.Valid || !latest.Valid {
		year := s.now().Year()
		return year, year, nil
	}
	return int(earliest.Int64), int(latest.Int64), nil
}

func (s *orderItemStore) Add(ctx context.Context, storeID int64, items []store.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	tx := GetTransaction(ctx)
	query := fmt.Sprintf(`
		INSERT INTO %s (
			store_id, order_id, line_item_id, processed_at,
			product_title, product_type, vendor, quantity, price
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?, ?
		)`, s.table)

	var stmt *sql.Stmt
	var err error
	if tx == nil {
		stmt, err = s.db.PrepareContext(ctx, query)
	} else {
		stmt, err = tx.PrepareContext(ctx, query)
	}
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		var processedAt any
		if item.ProcessedAt != nil {
			processedAt = item.ProcessedAt.UTC()
		}

		_, err = stmt.ExecContext(ctx,
			storeID,
			item.OrderID,
			item.LineItemID,
			processedAt,
			item.ProductTitle,
			item.ProductType,
			item.Vendor,
			item.Quantity,
			// the DECIMAL(18, 2) column restores the cent value on engines with exact numerics
			item.Price.Round(2).InexactFloat64(),
		)
		if err != nil {
			return fmt.Errorf("insert order item %s: %w", item.LineItemID, err)
		}
	}

	return nil
}
