package analysis

import "fmt"

// Pipeline stages reported by DataAccessError and AggregationError.
const (
	StageFetch       = "fetch"
	StageAggregate   = "aggregate"
	StageEntityTypes = "entity_types"
	StageVendors     = "vendors"
	StageDateRange   = "date_range"
)

// DataAccessError wraps a failure of the order-item repository.
type DataAccessError struct {
	StoreID int64
	Stage   string
	Err     error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("data access failed for store %d at stage %s: %v", e.StoreID, e.Stage, e.Err)
}

func (e *DataAccessError) Unwrap() error {
	return e.Err
}

// AggregationError reports analysis rows that cannot be grouped.
type AggregationError struct {
	StoreID int64
	Stage   string
	Entity  string
	Reason  string
}

func (e *AggregationError) Error() string {
	if e.Entity == "" {
		return fmt.Sprintf("aggregation failed for store %d: %s", e.StoreID, e.Reason)
	}
	return fmt.Sprintf("aggregation failed for store %d, entity %q: %s", e.StoreID, e.Entity, e.Reason)
}

// ValidationError is returned before any data access when a request parameter is out of range.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// CacheError is never returned to callers; it is logged and the computation continues.
type CacheError struct {
	Op  string
	Key string
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}
