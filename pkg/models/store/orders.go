package store

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is one line item of a processed (or pending) order.
type OrderItem struct {
	OrderID      string
	LineItemID   string
	ProcessedAt  *time.Time
	ProductTitle string
	ProductType  string
	Vendor       string
	Quantity     int64
	Price        decimal.Decimal
}

// AnalysisRow is the result of the grouped analytic query, one per
// (entity name, entity type, vendor, year, month).
type AnalysisRow struct {
	EntityName        string
	EntityType        string
	Vendor            string
	Year              int
	Month             int
	TotalRevenue      decimal.Decimal
	TotalQuantity     int64
	TotalOrders       int64
	AverageOrderValue decimal.Decimal
}

// RowFilter narrows the analytic query. Empty strings and zero months disable a predicate.
type RowFilter struct {
	EntityType          string
	Vendor              string
	StartMonth          int
	EndMonth            int
	ExcludeServiceItems bool
	ServiceKeywords     []string
}
