package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/de-tools/sales-atlas/pkg/services/analysis"
)

// FilterOptionsRefresh drops and rebuilds the cached filter options of each store.
type FilterOptionsRefresh struct {
	service analysis.Service
	stores  []int64
}

func NewFilterOptionsRefresh(service analysis.Service, stores []int64) *FilterOptionsRefresh {
	return &FilterOptionsRefresh{service: service, stores: stores}
}

func (j *FilterOptionsRefresh) Name() string {
	return "filter_options_refresh"
}

// Run refreshes every store even when one fails and reports all failures together.
func (j *FilterOptionsRefresh) Run(ctx context.Context) error {
	var errs []error
	for _, storeID := range j.stores {
		if err := ctx.Err(); err != nil {
			return err
		}
		j.service.ClearCache(ctx, storeID)
		if _, err := j.service.FilterOptions(ctx, storeID); err != nil {
			errs = append(errs, fmt.Errorf("store %d: %w", storeID, err))
		}
	}
	return errors.Join(errs...)
}
