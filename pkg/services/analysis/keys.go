package analysis

import (
	"fmt"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
)

// AnalysisKey addresses one aggregated comparison set in the cache.
type AnalysisKey struct {
	StoreID             int64
	CurrentYear         int
	PreviousYear        int
	Metric              domain.Metric
	EntityType          string
	Vendor              string
	ExcludeServiceItems bool
	StartMonth          int
	EndMonth            int
}

func NewAnalysisKey(req domain.AnalysisRequest) AnalysisKey {
	return AnalysisKey{
		StoreID:             req.StoreID,
		CurrentYear:         req.CurrentYear,
		PreviousYear:        req.PreviousYear,
		Metric:              req.Metric,
		EntityType:          orAll(req.EntityType),
		Vendor:              orAll(req.Vendor),
		ExcludeServiceItems: req.ExcludeServiceItems,
		StartMonth:          req.StartMonth,
		EndMonth:            req.EndMonth,
	}
}

func (k AnalysisKey) String() string {
	return fmt.Sprintf("yoy:%d:%d:%d:%s:%s:%s:%t:%d-%d",
		k.StoreID, k.CurrentYear, k.PreviousYear, k.Metric,
		k.EntityType, k.Vendor, k.ExcludeServiceItems, k.StartMonth, k.EndMonth)
}

type FilterOptionsKey struct {
	StoreID int64
}

func (k FilterOptionsKey) String() string {
	return fmt.Sprintf("filter-options:%d", k.StoreID)
}

func orAll(value string) string {
	if value == "" {
		return domain.AllFilter
	}
	return value
}
