package analysis

import (
	"errors"
	"testing"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() domain.AnalysisRequest {
	return domain.AnalysisRequest{StoreID: 1, CurrentYear: 2025, PreviousYear: 2024}
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name   string
		modify func(r *domain.AnalysisRequest)
		field  string
	}{
		{"valid", func(r *domain.AnalysisRequest) {}, ""},
		{"same years", func(r *domain.AnalysisRequest) { r.PreviousYear = 2025 }, ""},
		{"full month range", func(r *domain.AnalysisRequest) { r.StartMonth, r.EndMonth = 1, 12 }, ""},
		{"all category", func(r *domain.AnalysisRequest) { r.GrowthCategory = "all" }, ""},
		{"missing store", func(r *domain.AnalysisRequest) { r.StoreID = 0 }, "storeId"},
		{"missing current year", func(r *domain.AnalysisRequest) { r.CurrentYear = 0 }, "currentYear"},
		{"missing previous year", func(r *domain.AnalysisRequest) { r.PreviousYear = 0 }, "previousYear"},
		{"previous after current", func(r *domain.AnalysisRequest) { r.PreviousYear = 2026 }, "previousYear"},
		{"unknown metric", func(r *domain.AnalysisRequest) { r.Metric = "margin" }, "metric"},
		{"start month too large", func(r *domain.AnalysisRequest) { r.StartMonth = 13 }, "startMonth"},
		{"negative end month", func(r *domain.AnalysisRequest) { r.EndMonth = -1 }, "endMonth"},
		{"inverted month range", func(r *domain.AnalysisRequest) { r.StartMonth, r.EndMonth = 6, 3 }, "startMonth"},
		{"unknown category", func(r *domain.AnalysisRequest) { r.GrowthCategory = "boom" }, "growthCategory"},
		{"inverted growth range", func(r *domain.AnalysisRequest) {
			r.MinGrowthRate, r.MaxGrowthRate = ptr("10"), ptr("5")
		}, "minGrowthRate"},
		{"negative offset", func(r *domain.AnalysisRequest) { r.Offset = -1 }, "offset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.modify(&req)

			err := ValidateRequest(&req)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr), "expected validation error, got %v", err)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestValidateRequest_DefaultsMetric(t *testing.T) {
	req := validRequest()
	require.NoError(t, ValidateRequest(&req))
	assert.Equal(t, domain.MetricRevenue, req.Metric)
}
