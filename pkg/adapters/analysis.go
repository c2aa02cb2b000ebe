package adapters

import (
	"github.com/de-tools/sales-atlas/pkg/models/api"
	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/models/store"
)

func MapStoreAnalysisRowToDomain(row store.AnalysisRow) domain.AnalysisRow {
	return domain.AnalysisRow{
		EntityName:        row.EntityName,
		EntityType:        row.EntityType,
		Vendor:            row.Vendor,
		Year:              row.Year,
		Month:             row.Month,
		TotalRevenue:      row.TotalRevenue,
		TotalQuantity:     row.TotalQuantity,
		TotalOrders:       row.TotalOrders,
		AverageOrderValue: row.AverageOrderValue,
	}
}

func MapStoreAnalysisRowsToDomain(rows []store.AnalysisRow) []domain.AnalysisRow {
	out := make([]domain.AnalysisRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, MapStoreAnalysisRowToDomain(row))
	}
	return out
}

func MapEntityComparisonDomainToApi(c domain.EntityComparison) api.EntityComparison {
	months := make([]api.MonthComparison, 0, len(c.Months))
	for _, m := range c.Months {
		months = append(months, api.MonthComparison{
			Month:          m.Month,
			CurrentValue:   m.CurrentValue.InexactFloat64(),
			PreviousValue:  m.PreviousValue.InexactFloat64(),
			GrowthRate:     m.GrowthRate.InexactFloat64(),
			GrowthCategory: string(m.GrowthCategory),
		})
	}

	return api.EntityComparison{
		EntityName:     c.EntityName,
		EntityType:     c.EntityType,
		Vendor:         c.Vendor,
		CurrentValue:   c.CurrentValue.InexactFloat64(),
		PreviousValue:  c.PreviousValue.InexactFloat64(),
		GrowthRate:     c.GrowthRate.InexactFloat64(),
		GrowthCategory: string(c.GrowthCategory),
		Months:         months,
	}
}

func mapEntityComparisons(comparisons []domain.EntityComparison) []api.EntityComparison {
	out := make([]api.EntityComparison, 0, len(comparisons))
	for _, c := range comparisons {
		out = append(out, MapEntityComparisonDomainToApi(c))
	}
	return out
}

func MapSummaryDomainToApi(s domain.Summary) api.Summary {
	categories := make([]api.CategoryBreakdown, 0, len(s.Categories))
	for _, c := range s.Categories {
		categories = append(categories, api.CategoryBreakdown{
			Category:           string(c.Category),
			Count:              c.Count,
			TotalCurrentValue:  c.TotalCurrentValue.InexactFloat64(),
			TotalPreviousValue: c.TotalPreviousValue.InexactFloat64(),
			AverageGrowthRate:  c.AverageGrowthRate.InexactFloat64(),
			Percentage:         c.Percentage.InexactFloat64(),
		})
	}

	return api.Summary{
		CurrentYear:        s.CurrentYear,
		PreviousYear:       s.PreviousYear,
		Metric:             string(s.Metric),
		TotalProducts:      s.TotalEntities,
		TotalCurrentValue:  s.TotalCurrentValue.InexactFloat64(),
		TotalPreviousValue: s.TotalPreviousValue.InexactFloat64(),
		OverallGrowthRate:  s.OverallGrowthRate.InexactFloat64(),
		AverageGrowthRate:  s.AverageGrowthRate.InexactFloat64(),
		MedianGrowthRate:   s.MedianGrowthRate.InexactFloat64(),
		GrowthRateStdDev:   s.GrowthRateStdDev.InexactFloat64(),
		TopPerformers:      mapEntityComparisons(s.TopPerformers),
		BottomPerformers:   mapEntityComparisons(s.BottomPerformers),
		Categories:         categories,
	}
}

func MapAnalysisResponseDomainToApi(resp *domain.AnalysisResponse) api.AnalysisResponse {
	trend := make([]api.MonthlyComparison, 0, len(resp.MonthlyTrend))
	for _, m := range resp.MonthlyTrend {
		trend = append(trend, api.MonthlyComparison{
			Month:          m.Month,
			Label:          m.Label,
			CurrentValue:   m.CurrentValue.InexactFloat64(),
			PreviousValue:  m.PreviousValue.InexactFloat64(),
			GrowthRate:     m.GrowthRate.InexactFloat64(),
			GrowthCategory: string(m.GrowthCategory),
		})
	}

	return api.AnalysisResponse{
		Data:         mapEntityComparisons(resp.Comparisons),
		Summary:      MapSummaryDomainToApi(resp.Summary),
		MonthlyTrend: trend,
		Metadata: api.Metadata{
			ResponseID:  resp.Metadata.ResponseID,
			GeneratedAt: resp.Metadata.GeneratedAt,
			CacheHit:    resp.Metadata.CacheHit,
			DataSource:  resp.Metadata.DataSource,
			Version:     resp.Metadata.Version,
			TotalCount:  resp.Metadata.TotalCount,
		},
	}
}

func MapFilterOptionsDomainToApi(opts *domain.FilterOptions) api.FilterOptions {
	categories := make([]string, 0, len(opts.GrowthCategories))
	for _, c := range opts.GrowthCategories {
		categories = append(categories, string(c))
	}

	return api.FilterOptions{
		EntityTypes:      append([]string{}, opts.EntityTypes...),
		Vendors:          append([]string{}, opts.Vendors...),
		GrowthCategories: categories,
		EarliestYear:     opts.EarliestYear,
		LatestYear:       opts.LatestYear,
	}
}
