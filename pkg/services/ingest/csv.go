package ingest

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/de-tools/sales-atlas/pkg/models/store"
	storesql "github.com/de-tools/sales-atlas/pkg/store/sql"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Columns of the order item export. processed_at may be empty for pending orders.
var Columns = []string{
	"order_id",
	"line_item_id",
	"processed_at",
	"product_title",
	"product_type",
	"vendor",
	"quantity",
	"price",
}

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

// ReadOrderItems parses a CSV export with a header row. Column order is free.
func ReadOrderItems(r io.Reader) ([]store.OrderItem, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("missing header row")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, column := range Columns {
		if _, ok := index[column]; !ok {
			return nil, fmt.Errorf("missing column %q", column)
		}
	}

	var items []store.OrderItem
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		item, err := parseRecord(record, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		items = append(items, item)
	}

	return items, nil
}

func parseRecord(record []string, index map[string]int) (store.OrderItem, error) {
	field := func(name string) string {
		return strings.TrimSpace(record[index[name]])
	}

	item := store.OrderItem{
		OrderID:      field("order_id"),
		LineItemID:   field("line_item_id"),
		ProductTitle: field("product_title"),
		ProductType:  field("product_type"),
		Vendor:       field("vendor"),
	}
	if item.OrderID == "" || item.LineItemID == "" {
		return item, fmt.Errorf("order_id and line_item_id are required")
	}
	if item.ProductTitle == "" {
		return item, fmt.Errorf("product_title is required")
	}

	quantity, err := strconv.ParseInt(field("quantity"), 10, 64)
	if err != nil {
		return item, fmt.Errorf("invalid quantity %q", field("quantity"))
	}
	item.Quantity = quantity

	price, err := decimal.NewFromString(field("price"))
	if err != nil {
		return item, fmt.Errorf("invalid price %q", field("price"))
	}
	item.Price = price

	if raw := field("processed_at"); raw != "" {
		processedAt, err := parseTime(raw)
		if err != nil {
			return item, err
		}
		item.ProcessedAt = &processedAt
	}

	return item, nil
}

func parseTime(raw string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid processed_at %q", raw)
}

// Import writes items for a store in a single transaction.
func Import(ctx context.Context, db *sql.DB, orders storesql.OrderItemStore, storeID int64, items []store.OrderItem) error {
	logger := zerolog.Ctx(ctx)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := orders.Add(storesql.WithTransaction(ctx, tx), storeID, items); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to import order items: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}

	logger.Info().
		Int64("store_id", storeID).
		Int("items", len(items)).
		Msg("order items imported")
	return nil
}
