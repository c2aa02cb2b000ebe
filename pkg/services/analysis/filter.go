package analysis

import (
	"cmp"
	"slices"
	"strings"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
)

// Sort keys accepted by FilterAndSort.
const (
	SortByEntityName    = "entityName"
	SortByCurrentValue  = "currentValue"
	SortByPreviousValue = "previousValue"
	SortByGrowthRate    = "growthRate"
	SortByEntityType    = "entityType"
	SortByVendor        = "vendor"
)

type comparisonFilter func(domain.EntityComparison) bool

func filtersFor(req domain.AnalysisRequest) []comparisonFilter {
	var filters []comparisonFilter

	if req.GrowthCategory != "" && req.GrowthCategory != domain.AllFilter {
		category := domain.GrowthCategory(req.GrowthCategory)
		filters = append(filters, func(c domain.EntityComparison) bool {
			return c.GrowthCategory == category
		})
	}
	if req.MinGrowthRate != nil {
		min := *req.MinGrowthRate
		filters = append(filters, func(c domain.EntityComparison) bool {
			return c.GrowthRate.GreaterThanOrEqual(min)
		})
	}
	if req.MaxGrowthRate != nil {
		max := *req.MaxGrowthRate
		filters = append(filters, func(c domain.EntityComparison) bool {
			return c.GrowthRate.LessThanOrEqual(max)
		})
	}
	if req.MinCurrentValue != nil {
		min := *req.MinCurrentValue
		filters = append(filters, func(c domain.EntityComparison) bool {
			return c.CurrentValue.GreaterThanOrEqual(min)
		})
	}
	if term := strings.TrimSpace(req.SearchTerm); term != "" {
		term = strings.ToLower(term)
		filters = append(filters, func(c domain.EntityComparison) bool {
			return strings.Contains(strings.ToLower(c.EntityName), term) ||
				strings.Contains(strings.ToLower(c.EntityType), term) ||
				strings.Contains(strings.ToLower(c.Vendor), term)
		})
	}
	return filters
}

func comparatorFor(sortBy string) (func(a, b domain.EntityComparison) int, bool) {
	switch sortBy {
	case SortByEntityName:
		return func(a, b domain.EntityComparison) int { return cmp.Compare(a.EntityName, b.EntityName) }, true
	case SortByCurrentValue:
		return func(a, b domain.EntityComparison) int { return a.CurrentValue.Cmp(b.CurrentValue) }, true
	case SortByPreviousValue:
		return func(a, b domain.EntityComparison) int { return a.PreviousValue.Cmp(b.PreviousValue) }, true
	case SortByGrowthRate, "":
		return byGrowthRate, true
	case SortByEntityType:
		return func(a, b domain.EntityComparison) int { return cmp.Compare(a.EntityType, b.EntityType) }, true
	case SortByVendor:
		return func(a, b domain.EntityComparison) int { return cmp.Compare(a.Vendor, b.Vendor) }, true
	default:
		return byGrowthRate, false
	}
}

func byGrowthRate(a, b domain.EntityComparison) int {
	return a.GrowthRate.Cmp(b.GrowthRate)
}

// FilterAndSort returns the comparisons matching every filter of req, ordered by req.SortBy.
// An unknown sort key orders by growth rate descending. The input slice is not modified.
func FilterAndSort(comparisons []domain.EntityComparison, req domain.AnalysisRequest) []domain.EntityComparison {
	filters := filtersFor(req)

	result := make([]domain.EntityComparison, 0, len(comparisons))
	for _, c := range comparisons {
		keep := true
		for _, f := range filters {
			if !f(c) {
				keep = false
				break
			}
		}
		if keep {
			result = append(result, c)
		}
	}

	compare, known := comparatorFor(req.SortBy)
	descending := req.SortDescending || !known
	slices.SortStableFunc(result, func(a, b domain.EntityComparison) int {
		if descending {
			return compare(b, a)
		}
		return compare(a, b)
	})

	return result
}

// Paginate skips offset entries and takes limit. A non-positive limit returns everything.
func Paginate(comparisons []domain.EntityComparison, limit, offset int) []domain.EntityComparison {
	if limit <= 0 {
		return comparisons
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(comparisons) {
		return []domain.EntityComparison{}
	}
	end := min(offset+limit, len(comparisons))
	return comparisons[offset:end]
}

func ApplyFiltersAndSort(comparisons []domain.EntityComparison, req domain.AnalysisRequest) []domain.EntityComparison {
	return Paginate(FilterAndSort(comparisons, req), req.Limit, req.Offset)
}
