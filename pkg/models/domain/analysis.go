package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AllFilter is the sentinel value that disables an entity type, vendor or growth category filter.
const AllFilter = "all"

type Metric string

const (
	MetricRevenue  Metric = "revenue"
	MetricQuantity Metric = "quantity"
	MetricOrders   Metric = "orders"
)

// ParseMetric maps a request value to a Metric. An empty value selects revenue.
func ParseMetric(value string) (Metric, error) {
	switch Metric(value) {
	case "":
		return MetricRevenue, nil
	case MetricRevenue, MetricQuantity, MetricOrders:
		return Metric(value), nil
	default:
		return "", fmt.Errorf("unknown metric %q", value)
	}
}

type GrowthCategory string

const (
	GrowthRapid        GrowthCategory = "rapid growth"
	GrowthModerate     GrowthCategory = "growth"
	GrowthStable       GrowthCategory = "stable"
	GrowthDecline      GrowthCategory = "decline"
	GrowthSharpDecline GrowthCategory = "sharp decline"
)

// GrowthCategories lists the bands from strongest to weakest.
var GrowthCategories = []GrowthCategory{
	GrowthRapid,
	GrowthModerate,
	GrowthStable,
	GrowthDecline,
	GrowthSharpDecline,
}

// EntityKey identifies the subject of a comparison, e.g. a product.
type EntityKey struct {
	Name   string
	Type   string
	Vendor string
}

// AnalysisRow is one (entity, year, month) bucket produced by the order-item repository.
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

func (r AnalysisRow) Key() EntityKey {
	return EntityKey{Name: r.EntityName, Type: r.EntityType, Vendor: r.Vendor}
}

type MonthlyBucket struct {
	Month            int
	CurrentRevenue   decimal.Decimal
	PreviousRevenue  decimal.Decimal
	CurrentQuantity  int64
	PreviousQuantity int64
	CurrentOrders    int64
	PreviousOrders   int64
}

// Values returns the current and previous year figures selected by metric.
func (b MonthlyBucket) Values(metric Metric) (current, previous decimal.Decimal) {
	switch metric {
	case MetricQuantity:
		return decimal.NewFromInt(b.CurrentQuantity), decimal.NewFromInt(b.PreviousQuantity)
	case MetricOrders:
		return decimal.NewFromInt(b.CurrentOrders), decimal.NewFromInt(b.PreviousOrders)
	default:
		return b.CurrentRevenue, b.PreviousRevenue
	}
}

type EntityAggregate struct {
	Entity            EntityKey
	CurrentYearValue  decimal.Decimal
	PreviousYearValue decimal.Decimal
	Buckets           []MonthlyBucket
}

// MonthComparison is the per-month record attached to an EntityComparison.
type MonthComparison struct {
	Month          int
	CurrentValue   decimal.Decimal
	PreviousValue  decimal.Decimal
	GrowthRate     decimal.Decimal
	GrowthCategory GrowthCategory
}

type EntityComparison struct {
	EntityName     string
	EntityType     string
	Vendor         string
	CurrentValue   decimal.Decimal
	PreviousValue  decimal.Decimal
	GrowthRate     decimal.Decimal
	GrowthCategory GrowthCategory
	Months         []MonthComparison
}

// MonthlyComparison aggregates one calendar month across every entity of a result set.
type MonthlyComparison struct {
	Month          int
	Label          string
	CurrentValue   decimal.Decimal
	PreviousValue  decimal.Decimal
	GrowthRate     decimal.Decimal
	GrowthCategory GrowthCategory
}

type CategoryBreakdown struct {
	Category           GrowthCategory
	Count              int
	TotalCurrentValue  decimal.Decimal
	TotalPreviousValue decimal.Decimal
	AverageGrowthRate  decimal.Decimal
	Percentage         decimal.Decimal
}

type Summary struct {
	CurrentYear        int
	PreviousYear       int
	Metric             Metric
	TotalEntities      int
	TotalCurrentValue  decimal.Decimal
	TotalPreviousValue decimal.Decimal
	OverallGrowthRate  decimal.Decimal
	AverageGrowthRate  decimal.Decimal
	MedianGrowthRate   decimal.Decimal
	GrowthRateStdDev   decimal.Decimal
	TopPerformers      []EntityComparison
	BottomPerformers   []EntityComparison
	Categories         []CategoryBreakdown
}

type FilterOptions struct {
	EntityTypes      []string
	Vendors          []string
	GrowthCategories []GrowthCategory
	EarliestYear     int
	LatestYear       int
}

// AnalysisRequest carries every parameter of a year-over-year analysis.
// Zero values mean "not set" for the optional integer fields.
type AnalysisRequest struct {
	StoreID             int64
	CurrentYear         int
	PreviousYear        int
	Metric              Metric
	EntityType          string
	Vendor              string
	StartMonth          int
	EndMonth            int
	ExcludeServiceItems bool

	GrowthCategory  string
	MinGrowthRate   *decimal.Decimal
	MaxGrowthRate   *decimal.Decimal
	MinCurrentValue *decimal.Decimal
	SearchTerm      string
	SortBy          string
	SortDescending  bool
	Limit           int
	Offset          int

	IncludeMonthlyTrend bool
}

type ResponseMetadata struct {
	ResponseID  string
	GeneratedAt time.Time
	CacheHit    bool
	DataSource  string
	Version     string
	TotalCount  int
}

type AnalysisResponse struct {
	Comparisons  []EntityComparison
	Summary      Summary
	MonthlyTrend []MonthlyComparison
	Metadata     ResponseMetadata
}
