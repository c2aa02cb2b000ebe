package analysis

import (
	"context"
	"errors"
	"time"

	"github.com/de-tools/sales-atlas/pkg/adapters"
	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/models/store"
	"github.com/de-tools/sales-atlas/pkg/services/cache"
	storesql "github.com/de-tools/sales-atlas/pkg/store/sql"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultDataSource = "order_items"
	DefaultVersion    = "v1"

	DefaultAnalysisTTL      = 30 * time.Minute
	DefaultFilterOptionsTTL = time.Hour
)

type Service interface {
	Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResponse, error)
	FilterOptions(ctx context.Context, storeID int64) (*domain.FilterOptions, error)
	// ClearCache drops the cached filter options of a store. Analysis entries are left to expire.
	ClearCache(ctx context.Context, storeID int64) bool
}

type (
	AnalysisCache      = cache.Cache[AnalysisKey, []domain.EntityComparison]
	FilterOptionsCache = cache.Cache[FilterOptionsKey, domain.FilterOptions]
)

type Settings struct {
	ServiceKeywords []string
	DataSource      string
	Version         string
	// SingleFlight collapses concurrent cache misses for the same analysis key into one fetch.
	SingleFlight bool
	Now          func() time.Time
	NewID        func() string
}

type service struct {
	store    storesql.OrderItemStore
	analyses AnalysisCache
	options  FilterOptionsCache
	settings Settings
	inflight singleflight.Group
	log      zerolog.Logger
}

func NewService(
	orders storesql.OrderItemStore,
	analyses AnalysisCache,
	options FilterOptionsCache,
	settings Settings,
	log zerolog.Logger,
) Service {
	if settings.DataSource == "" {
		settings.DataSource = DefaultDataSource
	}
	if settings.Version == "" {
		settings.Version = DefaultVersion
	}
	if settings.Now == nil {
		settings.Now = time.Now
	}
	if settings.NewID == nil {
		settings.NewID = uuid.NewString
	}
	return &service{
		store:    orders,
		analyses: analyses,
		options:  options,
		settings: settings,
		log:      log.With().Str("component", "analysis").Logger(),
	}
}

func (s *service) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResponse, error) {
	if err := ValidateRequest(&req); err != nil {
		return nil, err
	}

	key := NewAnalysisKey(req)
	comparisons, hit := s.lookup(key)
	if !hit {
		var err error
		comparisons, err = s.loadShared(ctx, key, req)
		if err != nil {
			return nil, err
		}
	}

	filtered := FilterAndSort(comparisons, req)
	page := Paginate(filtered, req.Limit, req.Offset)

	trend := []domain.MonthlyComparison{}
	if req.IncludeMonthlyTrend {
		trend = BuildMonthlyTrend(filtered, req.StartMonth, req.EndMonth)
	}

	zerolog.Ctx(ctx).Debug().
		Str("key", key.String()).
		Bool("cache_hit", hit).
		Int("entities", len(comparisons)).
		Int("matches", len(filtered)).
		Msg("analysis assembled")

	return &domain.AnalysisResponse{
		Comparisons:  page,
		Summary:      Summarize(filtered, req.CurrentYear, req.PreviousYear, req.Metric),
		MonthlyTrend: trend,
		Metadata: domain.ResponseMetadata{
			ResponseID:  s.settings.NewID(),
			GeneratedAt: s.settings.Now().UTC(),
			CacheHit:    hit,
			DataSource:  s.settings.DataSource,
			Version:     s.settings.Version,
			TotalCount:  len(filtered),
		},
	}, nil
}

func (s *service) lookup(key AnalysisKey) ([]domain.EntityComparison, bool) {
	comparisons, ok, err := s.analyses.Get(key)
	if err != nil {
		s.warn(&CacheError{Op: "get", Key: key.String(), Err: err})
		return nil, false
	}
	return comparisons, ok
}

func (s *service) loadShared(ctx context.Context, key AnalysisKey, req domain.AnalysisRequest) ([]domain.EntityComparison, error) {
	if !s.settings.SingleFlight {
		return s.load(ctx, key, req)
	}
	// Callers return on their own ctx; the shared load ignores cancellation.
	ch := s.inflight.DoChan(key.String(), func() (any, error) {
		return s.load(context.WithoutCancel(ctx), key, req)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]domain.EntityComparison), nil
	}
}

func (s *service) load(ctx context.Context, key AnalysisKey, req domain.AnalysisRequest) ([]domain.EntityComparison, error) {
	rows, err := s.store.FetchAnalysisRows(ctx, req.StoreID, req.CurrentYear, req.PreviousYear, store.RowFilter{
		EntityType:          req.EntityType,
		Vendor:              req.Vendor,
		StartMonth:          req.StartMonth,
		EndMonth:            req.EndMonth,
		ExcludeServiceItems: req.ExcludeServiceItems,
		ServiceKeywords:     s.settings.ServiceKeywords,
	})
	if err != nil {
		return nil, &DataAccessError{StoreID: req.StoreID, Stage: StageFetch, Err: err}
	}

	comparisons, err := BuildComparisons(
		adapters.MapStoreAnalysisRowsToDomain(rows),
		req.Metric,
		req.CurrentYear,
		req.PreviousYear,
	)
	if err != nil {
		var aggErr *AggregationError
		if errors.As(err, &aggErr) {
			aggErr.StoreID = req.StoreID
		}
		return nil, err
	}

	if err := s.analyses.Set(key, comparisons); err != nil {
		s.warn(&CacheError{Op: "set", Key: key.String(), Err: err})
	}
	return comparisons, nil
}

func (s *service) FilterOptions(ctx context.Context, storeID int64) (*domain.FilterOptions, error) {
	if storeID <= 0 {
		return nil, &ValidationError{Field: "storeId", Reason: "must be positive"}
	}

	key := FilterOptionsKey{StoreID: storeID}
	cached, ok, err := s.options.Get(key)
	if err != nil {
		s.warn(&CacheError{Op: "get", Key: key.String(), Err: err})
	}
	if ok {
		return &cached, nil
	}

	var (
		types, vendors   []string
		earliest, latest int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if types, err = s.store.ListEntityTypes(gctx, storeID); err != nil {
			return &DataAccessError{StoreID: storeID, Stage: StageEntityTypes, Err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if vendors, err = s.store.ListVendors(gctx, storeID); err != nil {
			return &DataAccessError{StoreID: storeID, Stage: StageVendors, Err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if earliest, latest, err = s.store.DateRange(gctx, storeID); err != nil {
			return &DataAccessError{StoreID: storeID, Stage: StageDateRange, Err: err}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	opts := domain.FilterOptions{
		EntityTypes:      types,
		Vendors:          vendors,
		GrowthCategories: append([]domain.GrowthCategory(nil), domain.GrowthCategories...),
		EarliestYear:     earliest,
		LatestYear:       latest,
	}
	if err := s.options.Set(key, opts); err != nil {
		s.warn(&CacheError{Op: "set", Key: key.String(), Err: err})
	}
	return &opts, nil
}

func (s *service) ClearCache(_ context.Context, storeID int64) bool {
	key := FilterOptionsKey{StoreID: storeID}
	if err := s.options.Remove(key); err != nil {
		s.warn(&CacheError{Op: "remove", Key: key.String(), Err: err})
		return false
	}
	s.log.Info().Int64("store_id", storeID).Msg("filter options cache cleared")
	return true
}

func (s *service) warn(err *CacheError) {
	s.log.Warn().Err(err).Str("op", err.Op).Msg("cache operation failed")
}
