package analysis

import (
	"slices"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

const performersLimit = 5

// Summarize computes totals, growth statistics, top and bottom performers and the
// category breakdown of comparisons. Empty input yields a zeroed summary.
func Summarize(
	comparisons []domain.EntityComparison,
	currentYear, previousYear int,
	metric domain.Metric,
) domain.Summary {
	summary := domain.Summary{
		CurrentYear:        currentYear,
		PreviousYear:       previousYear,
		Metric:             metric,
		TotalCurrentValue:  decimal.Zero,
		TotalPreviousValue: decimal.Zero,
		OverallGrowthRate:  decimal.Zero,
		AverageGrowthRate:  decimal.Zero,
		MedianGrowthRate:   decimal.Zero,
		GrowthRateStdDev:   decimal.Zero,
		TopPerformers:      []domain.EntityComparison{},
		BottomPerformers:   []domain.EntityComparison{},
		Categories:         []domain.CategoryBreakdown{},
	}
	if len(comparisons) == 0 {
		return summary
	}

	rates := make([]decimal.Decimal, 0, len(comparisons))
	for _, c := range comparisons {
		summary.TotalCurrentValue = summary.TotalCurrentValue.Add(c.CurrentValue)
		summary.TotalPreviousValue = summary.TotalPreviousValue.Add(c.PreviousValue)
		rates = append(rates, c.GrowthRate)
	}

	summary.TotalEntities = len(comparisons)
	summary.OverallGrowthRate = GrowthRate(summary.TotalCurrentValue, summary.TotalPreviousValue)
	summary.AverageGrowthRate = mean(rates)
	summary.MedianGrowthRate = median(rates)
	summary.GrowthRateStdDev = stdDev(rates)
	summary.TopPerformers = performers(comparisons, true)
	summary.BottomPerformers = performers(comparisons, false)
	summary.Categories = breakdown(comparisons)

	return summary
}

func mean(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	return decimal.Avg(values[0], values[1:]...).Round(2)
}

func median(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	sorted := slices.Clone(values)
	slices.SortFunc(sorted, func(a, b decimal.Decimal) int { return a.Cmp(b) })

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid].Round(2)
	}
	return sorted[mid-1].Add(sorted[mid]).Div(decimal.NewFromInt(2)).Round(2)
}

// stdDev is the sample standard deviation; it is zero for fewer than two values.
func stdDev(values []decimal.Decimal) decimal.Decimal {
	if len(values) < 2 {
		return decimal.Zero
	}
	data := make([]float64, len(values))
	for i, v := range values {
		data[i] = v.InexactFloat64()
	}
	return decimal.NewFromFloat(stat.StdDev(data, nil)).Round(2)
}

func performers(comparisons []domain.EntityComparison, top bool) []domain.EntityComparison {
	sorted := slices.Clone(comparisons)
	slices.SortStableFunc(sorted, func(a, b domain.EntityComparison) int {
		if top {
			return b.GrowthRate.Cmp(a.GrowthRate)
		}
		return a.GrowthRate.Cmp(b.GrowthRate)
	})
	return sorted[:min(performersLimit, len(sorted))]
}

// breakdown reports every category present in comparisons, in band order.
func breakdown(comparisons []domain.EntityComparison) []domain.CategoryBreakdown {
	type bucket struct {
		count    int
		current  decimal.Decimal
		previous decimal.Decimal
		rates    []decimal.Decimal
	}

	buckets := make(map[domain.GrowthCategory]*bucket)
	for _, c := range comparisons {
		b, ok := buckets[c.GrowthCategory]
		if !ok {
			b = &bucket{current: decimal.Zero, previous: decimal.Zero}
			buckets[c.GrowthCategory] = b
		}
		b.count++
		b.current = b.current.Add(c.CurrentValue)
		b.previous = b.previous.Add(c.PreviousValue)
		b.rates = append(b.rates, c.GrowthRate)
	}

	total := decimal.NewFromInt(int64(len(comparisons)))
	result := make([]domain.CategoryBreakdown, 0, len(buckets))
	for _, category := range domain.GrowthCategories {
		b, ok := buckets[category]
		if !ok {
			continue
		}
		percentage := decimal.Zero
		if !total.IsZero() {
			percentage = decimal.NewFromInt(int64(b.count)).Div(total).Mul(hundred).Round(1)
		}
		result = append(result, domain.CategoryBreakdown{
			Category:           category,
			Count:              b.count,
			TotalCurrentValue:  b.current,
			TotalPreviousValue: b.previous,
			AverageGrowthRate:  mean(b.rates),
			Percentage:         percentage,
		})
	}
	return result
}
