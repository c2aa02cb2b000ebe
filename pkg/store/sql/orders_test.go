package sql

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/de-tools/sales-atlas/pkg/models/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var analysisColumns = []string{
	"entity_name", "entity_type", "vendor", "order_year", "order_month",
	"total_revenue_cents", "total_quantity", "total_orders",
}

func newMockStore(t *testing.T, dialect Dialect) (OrderItemStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := NewOrderItemStore(db, Settings{
		Dialect: dialect,
		Now:     func() time.Time { return time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return s, mock
}

func TestNewOrderItemStore_Validation(t *testing.T) {
	_, err := NewOrderItemStore(nil, Settings{Dialect: DuckDB})
	assert.Error(t, err)

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewOrderItemStore(db, Settings{})
	assert.Error(t, err)
}

func TestFetchAnalysisRows_BaseQuery(t *testing.T) {
	s, mock := newMockStore(t, DuckDB)

	rows := sqlmock.NewRows(analysisColumns).
		AddRow("Widget", "goods", "VendorA", 2025, 3, int64(120010), 12, 4).
		AddRow("Widget", "goods", "VendorA", 2024, 3, int64(100000), 10, 0)

	mock.ExpectQuery(regexp.QuoteMeta(
		"WHERE store_id = ? AND processed_at IS NOT NULL AND CAST(year(processed_at) AS INTEGER) IN (?, ?) GROUP BY",
	)).
		WithArgs(int64(7), 2025, 2024).
		WillReturnRows(rows)

	result, err := s.FetchAnalysisRows(context.Background(), 7, 2025, 2024, store.RowFilter{})
	require.NoError(t, err)
	require.Len(t, result, 2)

	assert.Equal(t, "Widget", result[0].EntityName)
	assert.Equal(t, 2025, result[0].Year)
	assert.Equal(t, 3, result[0].Month)
	assert.Equal(t, int64(12), result[0].TotalQuantity)
	assert.Equal(t, "1200.1", result[0].TotalRevenue.String())
	// 1200.10 / 4 rounded to the cent
	assert.Equal(t, "300.03", result[0].AverageOrderValue.String())
	// zero distinct orders divides by one
	assert.Equal(t, "1000", result[1].AverageOrderValue.String())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchAnalysisRows_SumsRevenueInCents(t *testing.T) {
	s, mock := newMockStore(t, SQLite)

	mock.ExpectQuery(regexp.QuoteMeta(
		"CAST(SUM(CAST(ROUND(price * 100) AS BIGINT) * quantity) AS BIGINT) AS total_revenue_cents",
	)).
		WillReturnRows(sqlmock.NewRows(analysisColumns).AddRow("Widget", "goods", "VendorA", 2025, 1, int64(30), 3, 3))

	result, err := s.FetchAnalysisRows(context.Background(), 1, 2025, 2024, store.RowFilter{})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "0.3", result[0].TotalRevenue.String())
	assert.Equal(t, "0.1", result[0].AverageOrderValue.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderItemStore_CustomTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s, err := NewOrderItemStore(db, Settings{Table: "shop_items", Dialect: DuckDB})
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("FROM shop_items WHERE store_id = ?")).
		WillReturnRows(sqlmock.NewRows(analysisColumns))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT vendor FROM shop_items")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"vendor"}))

	_, err = s.FetchAnalysisRows(context.Background(), 1, 2025, 2024, store.RowFilter{})
	require.NoError(t, err)
	_, err = s.ListVendors(context.Background(), 1)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	_, err = NewOrderItemStore(db, Settings{Table: "items; DROP TABLE x", Dialect: DuckDB})
	assert.ErrorContains(t, err, "invalid table name")
}

func TestBootQueries(t *testing.T) {
	queries := BootQueries("")
	require.Len(t, queries, 2)
	assert.Contains(t, queries[0], "CREATE TABLE IF NOT EXISTS order_items (")
	assert.Contains(t, queries[0], "price DECIMAL(18, 2)")

	queries = BootQueries("sales.shop_items")
	assert.Contains(t, queries[0], "CREATE TABLE IF NOT EXISTS sales.shop_items (")
	assert.Contains(t, queries[1], "idx_sales_shop_items_store_processed")
	assert.Contains(t, queries[1], "ON sales.shop_items (store_id, processed_at)")
}

func TestValidateTable(t *testing.T) {
	for _, name := range []string{"order_items", "shop_items2", "main.order_items", "cat.sch.tbl"} {
		assert.NoError(t, ValidateTable(name), name)
	}
	for _, name := range []string{"", "1items", "items;", "order items", "a..b", "items.", `"items"`} {
		assert.Error(t, ValidateTable(name), name)
	}
}

func TestAdd_JoinsContextTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := NewOrderItemStore(db, Settings{Dialect: SQLite})
	require.NoError(t, err)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO order_items"))
	prep.ExpectExec().
		WithArgs(int64(7), "o1", "l1", nil, "Widget", "goods", "VendorA", int64(2), 12.5).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	assert.Same(t, tx, GetTransaction(WithTransaction(context.Background(), tx)))
	assert.Nil(t, GetTransaction(context.Background()))

	err = s.Add(WithTransaction(context.Background(), tx), 7, []store.OrderItem{{
		OrderID: "o1", LineItemID: "l1", ProductTitle: "Widget", ProductType: "goods",
		Vendor: "VendorA", Quantity: 2, Price: decimal.RequireFromString("12.50"),
	}})
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchAnalysisRows_AllPredicates(t *testing.T) {
	s, mock := newMockStore(t, DuckDB)

	mock.ExpectQuery(regexp.QuoteMeta(
		"CAST(year(processed_at) AS INTEGER) IN (?, ?) AND product_type = ? AND vendor = ? " +
			"AND CAST(month(processed_at) AS INTEGER) >= ? AND CAST(month(processed_at) AS INTEGER) <= ? " +
			"AND NOT (contains(product_title, ?)) AND NOT (contains(product_title, ?)) GROUP BY",
	)).
		WithArgs(int64(1), 2025, 2024, "goods", "VendorA", 3, 6, "Shipping", "Fee").
		WillReturnRows(sqlmock.NewRows(analysisColumns))

	result, err := s.FetchAnalysisRows(context.Background(), 1, 2025, 2024, store.RowFilter{
		EntityType:          "goods",
		Vendor:              "VendorA",
		StartMonth:          3,
		EndMonth:            6,
		ExcludeServiceItems: true,
		ServiceKeywords:     []string{"Shipping", "", "Fee"},
	})
	require.NoError(t, err)
	assert.Empty(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchAnalysisRows_AllFilterValuesAreIgnored(t *testing.T) {
	s, mock := newMockStore(t, SQLite)

	mock.ExpectQuery(regexp.QuoteMeta(
		"CAST(strftime('%Y', processed_at) AS INTEGER) IN (?, ?) GROUP BY",
	)).
		WithArgs(int64(1), 2025, 2024).
		WillReturnRows(sqlmock.NewRows(analysisColumns))

	_, err := s.FetchAnalysisRows(context.Background(), 1, 2025, 2024, store.RowFilter{
		EntityType: "all",
		Vendor:     "all",
		// keywords are only applied when exclusion is requested
		ServiceKeywords: []string{"Shipping"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchAnalysisRows_QueryError(t *testing.T) {
	s, mock := newMockStore(t, DuckDB)

	errExpected := errors.New("connection reset")
	mock.ExpectQuery("SELECT").WillReturnError(errExpected)

	_, err := s.FetchAnalysisRows(context.Background(), 1, 2025, 2024, store.RowFilter{})
	assert.ErrorIs(t, err, errExpected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListEntityTypesAndVendors(t *testing.T) {
	s, mock := newMockStore(t, DuckDB)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT product_type FROM order_items WHERE store_id = ?")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"product_type"}).AddRow("apparel").AddRow("goods"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT vendor FROM order_items WHERE store_id = ?")).
		WithArgs(int64(3)).
		WillReturnError(errors.New("boom"))

	types, err := s.ListEntityTypes(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"apparel", "goods"}, types)

	_, err = s.ListVendors(context.Background(), 3)
	assert.ErrorContains(t, err, "list vendors")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDateRange(t *testing.T) {
	t.Run("store with orders", func(t *testing.T) {
		s, mock := newMockStore(t, DuckDB)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT MIN(CAST(year(processed_at) AS INTEGER))")).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"min", "max"}).AddRow(2021, 2025))

		earliest, latest, err := s.DateRange(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, 2021, earliest)
		assert.Equal(t, 2025, latest)
	})

	t.Run("store without dated orders", func(t *testing.T) {
		s, mock := newMockStore(t, DuckDB)
		mock.ExpectQuery("SELECT MIN").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"min", "max"}).AddRow(nil, nil))

		earliest, latest, err := s.DateRange(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, 2026, earliest)
		assert.Equal(t, 2026, latest)
	})
}

func TestDialectFor(t *testing.T) {
	for _, name := range []string{"duckdb", "sqlite", "databricks", "snowflake"} {
		d, err := DialectFor(name)
		require.NoError(t, err)
		assert.Equal(t, name, d.Name)
	}

	_, err := DialectFor("oracle")
	assert.Error(t, err)
}
