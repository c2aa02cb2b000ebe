package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/runtime/app"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// AppFactory builds the wired application for a single command run.
type AppFactory func(ctx context.Context) (*app.App, error)

// requestFlags are the analysis parameters shared by analyze and export.
type requestFlags struct {
	storeID             int64
	currentYear         int
	previousYear        int
	metric              string
	entityType          string
	vendor              string
	startMonth          int
	endMonth            int
	excludeServiceItems bool
	growthCategory      string
	minGrowthRate       string
	maxGrowthRate       string
	minCurrentValue     string
	search              string
	sortBy              string
	ascending           bool
	limit               int
	offset              int
	monthlyTrend        bool
}

func (f *requestFlags) bind(cmd *cobra.Command) {
	year := time.Now().Year()

	cmd.Flags().Int64Var(&f.storeID, "store", 0, "Store to analyze")
	cmd.Flags().IntVar(&f.currentYear, "current-year", year, "Year being analyzed")
	cmd.Flags().IntVar(&f.previousYear, "previous-year", year-1, "Baseline year")
	cmd.Flags().StringVar(&f.metric, "metric", string(domain.MetricRevenue), "Metric to compare (revenue, quantity, orders)")
	cmd.Flags().StringVar(&f.entityType, "type", "", "Only include this product type")
	cmd.Flags().StringVar(&f.vendor, "vendor", "", "Only include this vendor")
	cmd.Flags().IntVar(&f.startMonth, "start-month", 0, "First month of the comparison window (1-12)")
	cmd.Flags().IntVar(&f.endMonth, "end-month", 0, "Last month of the comparison window (1-12)")
	cmd.Flags().BoolVar(&f.excludeServiceItems, "exclude-service-items", false, "Drop shipping, fees and other service line items")
	cmd.Flags().StringVar(&f.growthCategory, "category", "", "Only include this growth category")
	cmd.Flags().StringVar(&f.minGrowthRate, "min-growth", "", "Minimum growth rate in percent")
	cmd.Flags().StringVar(&f.maxGrowthRate, "max-growth", "", "Maximum growth rate in percent")
	cmd.Flags().StringVar(&f.minCurrentValue, "min-value", "", "Minimum current year value")
	cmd.Flags().StringVar(&f.search, "search", "", "Case-insensitive search over name, type and vendor")
	cmd.Flags().StringVar(&f.sortBy, "sort-by", "", "Sort key (entityName, currentValue, previousValue, growthRate, entityType, vendor)")
	cmd.Flags().BoolVar(&f.ascending, "asc", false, "Sort ascending")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "Maximum number of rows, 0 for all")
	cmd.Flags().IntVar(&f.offset, "offset", 0, "Rows to skip")
	cmd.Flags().BoolVar(&f.monthlyTrend, "trend", false, "Include the monthly trend")

	_ = cmd.MarkFlagRequired("store")
}

func parseDecimal(flag, raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s value %q", flag, raw)
	}
	return &v, nil
}

func (f *requestFlags) request() (domain.AnalysisRequest, error) {
	req := domain.AnalysisRequest{
		StoreID:             f.storeID,
		CurrentYear:         f.currentYear,
		PreviousYear:        f.previousYear,
		Metric:              domain.Metric(f.metric),
		EntityType:          f.entityType,
		Vendor:              f.vendor,
		StartMonth:          f.startMonth,
		EndMonth:            f.endMonth,
		ExcludeServiceItems: f.excludeServiceItems,
		GrowthCategory:      f.growthCategory,
		SearchTerm:          f.search,
		SortBy:              f.sortBy,
		SortDescending:      !f.ascending,
		Limit:               f.limit,
		Offset:              f.offset,
		IncludeMonthlyTrend: f.monthlyTrend,
	}

	var err error
	if req.MinGrowthRate, err = parseDecimal("min-growth", f.minGrowthRate); err != nil {
		return req, err
	}
	if req.MaxGrowthRate, err = parseDecimal("max-growth", f.maxGrowthRate); err != nil {
		return req, err
	}
	if req.MinCurrentValue, err = parseDecimal("min-value", f.minCurrentValue); err != nil {
		return req, err
	}
	return req, nil
}
