package analysis

import (
	"fmt"
	"time"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/shopspring/decimal"
)

const monthsInYear = 12

var (
	hundred     = decimal.NewFromInt(100)
	twenty      = decimal.NewFromInt(20)
	five        = decimal.NewFromInt(5)
	minusFive   = decimal.NewFromInt(-5)
	minusTwenty = decimal.NewFromInt(-20)
)

// GrowthRate returns the percentage change from previous to current rounded to two decimals.
// A zero previous value yields 100 when current is positive and 0 otherwise.
func GrowthRate(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		if current.IsPositive() {
			return hundred
		}
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(hundred).Round(2)
}

// CategorizeGrowth maps a growth rate onto its band. The first matching threshold wins:
// >= 20 rapid growth, >= 5 growth, > -5 stable, > -20 decline, otherwise sharp decline.
func CategorizeGrowth(rate decimal.Decimal) domain.GrowthCategory {
	switch {
	case rate.GreaterThanOrEqual(twenty):
		return domain.GrowthRapid
	case rate.GreaterThanOrEqual(five):
		return domain.GrowthModerate
	case rate.GreaterThan(minusFive):
		return domain.GrowthStable
	case rate.GreaterThan(minusTwenty):
		return domain.GrowthDecline
	default:
		return domain.GrowthSharpDecline
	}
}

func emptyBuckets() []domain.MonthlyBucket {
	buckets := make([]domain.MonthlyBucket, monthsInYear)
	for i := range buckets {
		buckets[i] = domain.MonthlyBucket{
			Month:           i + 1,
			CurrentRevenue:  decimal.Zero,
			PreviousRevenue: decimal.Zero,
		}
	}
	return buckets
}

// BuildAggregates groups rows per entity into twelve monthly buckets and totals them by metric.
// Entities keep the order in which they first appear in rows.
func BuildAggregates(
	rows []domain.AnalysisRow,
	metric domain.Metric,
	currentYear, previousYear int,
) ([]domain.EntityAggregate, error) {
	index := make(map[domain.EntityKey]int)
	var keys []domain.EntityKey
	var buckets [][]domain.MonthlyBucket

	for i, row := range rows {
		if row.EntityName == "" {
			return nil, &AggregationError{
				Stage:  StageAggregate,
				Reason: fmt.Sprintf("row %d has no entity name", i),
			}
		}
		if row.Month < 1 || row.Month > monthsInYear {
			return nil, &AggregationError{
				Stage:  StageAggregate,
				Entity: row.EntityName,
				Reason: fmt.Sprintf("month %d is outside 1..12", row.Month),
			}
		}
		if row.Year != currentYear && row.Year != previousYear {
			continue
		}

		key := row.Key()
		idx, ok := index[key]
		if !ok {
			idx = len(keys)
			index[key] = idx
			keys = append(keys, key)
			buckets = append(buckets, emptyBuckets())
		}

		b := &buckets[idx][row.Month-1]
		if row.Year == currentYear {
			b.CurrentRevenue = b.CurrentRevenue.Add(row.TotalRevenue)
			b.CurrentQuantity += row.TotalQuantity
			b.CurrentOrders += row.TotalOrders
		} else {
			b.PreviousRevenue = b.PreviousRevenue.Add(row.TotalRevenue)
			b.PreviousQuantity += row.TotalQuantity
			b.PreviousOrders += row.TotalOrders
		}
	}

	aggregates := make([]domain.EntityAggregate, 0, len(keys))
	for i, key := range keys {
		current, previous := decimal.Zero, decimal.Zero
		for _, b := range buckets[i] {
			c, p := b.Values(metric)
			current = current.Add(c)
			previous = previous.Add(p)
		}
		aggregates = append(aggregates, domain.EntityAggregate{
			Entity:            key,
			CurrentYearValue:  current,
			PreviousYearValue: previous,
			Buckets:           buckets[i],
		})
	}
	return aggregates, nil
}

// Compare turns an aggregate into the externally visible comparison.
// Month records always compare revenue, whatever metric the totals use.
func Compare(agg domain.EntityAggregate) domain.EntityComparison {
	rate := GrowthRate(agg.CurrentYearValue, agg.PreviousYearValue)

	months := make([]domain.MonthComparison, 0, len(agg.Buckets))
	for _, b := range agg.Buckets {
		monthRate := GrowthRate(b.CurrentRevenue, b.PreviousRevenue)
		months = append(months, domain.MonthComparison{
			Month:          b.Month,
			CurrentValue:   b.CurrentRevenue,
			PreviousValue:  b.PreviousRevenue,
			GrowthRate:     monthRate,
			GrowthCategory: CategorizeGrowth(monthRate),
		})
	}

	return domain.EntityComparison{
		EntityName:     agg.Entity.Name,
		EntityType:     agg.Entity.Type,
		Vendor:         agg.Entity.Vendor,
		CurrentValue:   agg.CurrentYearValue,
		PreviousValue:  agg.PreviousYearValue,
		GrowthRate:     rate,
		GrowthCategory: CategorizeGrowth(rate),
		Months:         months,
	}
}

func BuildComparisons(
	rows []domain.AnalysisRow,
	metric domain.Metric,
	currentYear, previousYear int,
) ([]domain.EntityComparison, error) {
	aggregates, err := BuildAggregates(rows, metric, currentYear, previousYear)
	if err != nil {
		return nil, err
	}

	comparisons := make([]domain.EntityComparison, 0, len(aggregates))
	for _, agg := range aggregates {
		comparisons = append(comparisons, Compare(agg))
	}
	return comparisons, nil
}

// BuildMonthlyTrend sums the per-month revenue records of every comparison for each month
// in [startMonth, endMonth]. Zero bounds default to January and December.
func BuildMonthlyTrend(comparisons []domain.EntityComparison, startMonth, endMonth int) []domain.MonthlyComparison {
	if startMonth < 1 {
		startMonth = 1
	}
	if endMonth < 1 || endMonth > monthsInYear {
		endMonth = monthsInYear
	}

	trend := make([]domain.MonthlyComparison, 0, endMonth-startMonth+1)
	for month := startMonth; month <= endMonth; month++ {
		current, previous := decimal.Zero, decimal.Zero
		for _, c := range comparisons {
			if month > len(c.Months) {
				continue
			}
			m := c.Months[month-1]
			current = current.Add(m.CurrentValue)
			previous = previous.Add(m.PreviousValue)
		}

		rate := GrowthRate(current, previous)
		trend = append(trend, domain.MonthlyComparison{
			Month:          month,
			Label:          time.Month(month).String(),
			CurrentValue:   current,
			PreviousValue:  previous,
			GrowthRate:     rate,
			GrowthCategory: CategorizeGrowth(rate),
		})
	}
	return trend
}
