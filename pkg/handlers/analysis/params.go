package analysis

import (
	"net/url"
	"strconv"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	services "github.com/de-tools/sales-atlas/pkg/services/analysis"
	"github.com/shopspring/decimal"
)

// Query parameters of the analysis endpoint.
const (
	paramCurrentYear         = "current_year"
	paramPreviousYear        = "previous_year"
	paramMetric              = "metric"
	paramEntityType          = "entity_type"
	paramVendor              = "vendor"
	paramStartMonth          = "start_month"
	paramEndMonth            = "end_month"
	paramExcludeServiceItems = "exclude_service_items"
	paramGrowthCategory      = "growth_category"
	paramMinGrowthRate       = "min_growth_rate"
	paramMaxGrowthRate       = "max_growth_rate"
	paramMinCurrentValue     = "min_current_value"
	paramSearch              = "search"
	paramSortBy              = "sort_by"
	paramSortDesc            = "sort_desc"
	paramLimit               = "limit"
	paramOffset              = "offset"
	paramMonthlyTrend        = "monthly_trend"
)

type queryParser struct {
	values url.Values
	err    error
}

func (p *queryParser) fail(field, reason string) {
	if p.err == nil {
		p.err = &services.ValidationError{Field: field, Reason: reason}
	}
}

func (p *queryParser) intParam(name string, fallback int) int {
	raw := p.values.Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(name, "must be an integer")
		return fallback
	}
	return v
}

func (p *queryParser) boolParam(name string, fallback bool) bool {
	raw := p.values.Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(name, "must be a boolean")
		return fallback
	}
	return v
}

func (p *queryParser) decimalParam(name string) *decimal.Decimal {
	raw := p.values.Get(name)
	if raw == "" {
		return nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		p.fail(name, "must be a number")
		return nil
	}
	return &v
}

// parseAnalysisRequest maps query parameters onto a request. Missing years default to
// the current and previous calendar year; sort_desc defaults to true.
func parseAnalysisRequest(storeID int64, values url.Values, currentYear int) (domain.AnalysisRequest, error) {
	p := &queryParser{values: values}

	cy := p.intParam(paramCurrentYear, currentYear)
	req := domain.AnalysisRequest{
		StoreID:             storeID,
		CurrentYear:         cy,
		PreviousYear:        p.intParam(paramPreviousYear, cy-1),
		Metric:              domain.Metric(values.Get(paramMetric)),
		EntityType:          values.Get(paramEntityType),
		Vendor:              values.Get(paramVendor),
		StartMonth:          p.intParam(paramStartMonth, 0),
		EndMonth:            p.intParam(paramEndMonth, 0),
		ExcludeServiceItems: p.boolParam(paramExcludeServiceItems, false),
		GrowthCategory:      values.Get(paramGrowthCategory),
		MinGrowthRate:       p.decimalParam(paramMinGrowthRate),
		MaxGrowthRate:       p.decimalParam(paramMaxGrowthRate),
		MinCurrentValue:     p.decimalParam(paramMinCurrentValue),
		SearchTerm:          values.Get(paramSearch),
		SortBy:              values.Get(paramSortBy),
		SortDescending:      p.boolParam(paramSortDesc, true),
		Limit:               p.intParam(paramLimit, 0),
		Offset:              p.intParam(paramOffset, 0),
		IncludeMonthlyTrend: p.boolParam(paramMonthlyTrend, false),
	}
	return req, p.err
}
