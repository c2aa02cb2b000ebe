package analysis

import (
	"fmt"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
)

// ValidateRequest checks req before any data access and fills in the default metric.
func ValidateRequest(req *domain.AnalysisRequest) error {
	if req.StoreID <= 0 {
		return &ValidationError{Field: "storeId", Reason: "must be positive"}
	}
	if req.CurrentYear <= 0 {
		return &ValidationError{Field: "currentYear", Reason: "must be positive"}
	}
	if req.PreviousYear <= 0 {
		return &ValidationError{Field: "previousYear", Reason: "must be positive"}
	}
	if req.PreviousYear > req.CurrentYear {
		return &ValidationError{
			Field:  "previousYear",
			Reason: fmt.Sprintf("%d is after current year %d", req.PreviousYear, req.CurrentYear),
		}
	}

	metric, err := domain.ParseMetric(string(req.Metric))
	if err != nil {
		return &ValidationError{Field: "metric", Reason: err.Error()}
	}
	req.Metric = metric

	if req.StartMonth != 0 && (req.StartMonth < 1 || req.StartMonth > 12) {
		return &ValidationError{Field: "startMonth", Reason: "must be between 1 and 12"}
	}
	if req.EndMonth != 0 && (req.EndMonth < 1 || req.EndMonth > 12) {
		return &ValidationError{Field: "endMonth", Reason: "must be between 1 and 12"}
	}
	if req.StartMonth != 0 && req.EndMonth != 0 && req.StartMonth > req.EndMonth {
		return &ValidationError{Field: "startMonth", Reason: "must not be after endMonth"}
	}

	if req.GrowthCategory != "" && req.GrowthCategory != domain.AllFilter {
		known := false
		for _, c := range domain.GrowthCategories {
			known = known || string(c) == req.GrowthCategory
		}
		if !known {
			return &ValidationError{Field: "growthCategory", Reason: fmt.Sprintf("unknown category %q", req.GrowthCategory)}
		}
	}
	if req.MinGrowthRate != nil && req.MaxGrowthRate != nil && req.MinGrowthRate.GreaterThan(*req.MaxGrowthRate) {
		return &ValidationError{Field: "minGrowthRate", Reason: "must not exceed maxGrowthRate"}
	}
	if req.Offset < 0 {
		return &ValidationError{Field: "offset", Reason: "must not be negative"}
	}

	return nil
}
