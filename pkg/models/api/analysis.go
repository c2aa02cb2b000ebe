package api

import "time"

type MonthComparison struct {
	Month          int     `json:"month"`
	CurrentValue   float64 `json:"current_value"`
	PreviousValue  float64 `json:"previous_value"`
	GrowthRate     float64 `json:"growth_rate"`
	GrowthCategory string  `json:"growth_category"`
}

type EntityComparison struct {
	EntityName     string            `json:"entity_name"`
	EntityType     string            `json:"entity_type"`
	Vendor         string            `json:"vendor"`
	CurrentValue   float64           `json:"current_value"`
	PreviousValue  float64           `json:"previous_value"`
	GrowthRate     float64           `json:"growth_rate"`
	GrowthCategory string            `json:"growth_category"`
	Months         []MonthComparison `json:"months"`
}

type MonthlyComparison struct {
	Month          int     `json:"month"`
	Label          string  `json:"label"`
	CurrentValue   float64 `json:"current_value"`
	PreviousValue  float64 `json:"previous_value"`
	GrowthRate     float64 `json:"growth_rate"`
	GrowthCategory string  `json:"growth_category"`
}

type CategoryBreakdown struct {
	Category           string  `json:"category"`
	Count              int     `json:"count"`
	TotalCurrentValue  float64 `json:"total_current_value"`
	TotalPreviousValue float64 `json:"total_previous_value"`
	AverageGrowthRate  float64 `json:"average_growth_rate"`
	Percentage         float64 `json:"percentage"`
}

type Summary struct {
	CurrentYear        int                 `json:"current_year"`
	PreviousYear       int                 `json:"previous_year"`
	Metric             string              `json:"metric"`
	TotalProducts      int                 `json:"total_products"`
	TotalCurrentValue  float64             `json:"total_current_value"`
	TotalPreviousValue float64             `json:"total_previous_value"`
	OverallGrowthRate  float64             `json:"overall_growth_rate"`
	AverageGrowthRate  float64             `json:"average_growth_rate"`
	MedianGrowthRate   float64             `json:"median_growth_rate"`
	GrowthRateStdDev   float64             `json:"growth_rate_std_dev"`
	TopPerformers      []EntityComparison  `json:"top_performers"`
	BottomPerformers   []EntityComparison  `json:"bottom_performers"`
	Categories         []CategoryBreakdown `json:"categories"`
}

type Metadata struct {
	ResponseID  string    `json:"response_id"`
	GeneratedAt time.Time `json:"generated_at"`
	CacheHit    bool      `json:"cache_hit"`
	DataSource  string    `json:"data_source"`
	Version     string    `json:"version"`
	TotalCount  int       `json:"total_count"`
}

type AnalysisResponse struct {
	Data         []EntityComparison  `json:"data"`
	Summary      Summary             `json:"summary"`
	MonthlyTrend []MonthlyComparison `json:"monthly_trend"`
	Metadata     Metadata            `json:"metadata"`
}

type FilterOptions struct {
	EntityTypes      []string `json:"entity_types"`
	Vendors          []string `json:"vendors"`
	GrowthCategories []string `json:"growth_categories"`
	EarliestYear     int      `json:"earliest_year"`
	LatestYear       int      `json:"latest_year"`
}

type ClearCacheResponse struct {
	Success bool `json:"success"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
	Field string `json:"field,omitempty"`
}
