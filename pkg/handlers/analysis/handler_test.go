package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/de-tools/sales-atlas/pkg/models/api"
	"github.com/de-tools/sales-atlas/pkg/models/domain"
	services "github.com/de-tools/sales-atlas/pkg/services/analysis"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisResponse), args.Error(1)
}

func (m *mockService) FilterOptions(ctx context.Context, storeID int64) (*domain.FilterOptions, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FilterOptions), args.Error(1)
}

func (m *mockService) ClearCache(ctx context.Context, storeID int64) bool {
	return m.Called(ctx, storeID).Bool(0)
}

func setupRouter(svc *mockService) http.Handler {
	h := NewHandler(svc)
	h.now = func() time.Time { return time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC) }

	r := chi.NewRouter()
	r.Get("/stores/{store}/analysis", h.GetAnalysis)
	r.Get("/stores/{store}/filter-options", h.GetFilterOptions)
	r.Post("/stores/{store}/cache/clear", h.ClearCache)
	return r
}

func serve(router http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func widgetResponse() *domain.AnalysisResponse {
	return &domain.AnalysisResponse{
		Comparisons: []domain.EntityComparison{{
			EntityName:     "Widget",
			EntityType:     "goods",
			Vendor:         "VendorA",
			CurrentValue:   decimal.NewFromInt(1200),
			PreviousValue:  decimal.NewFromInt(1000),
			GrowthRate:     decimal.NewFromInt(20),
			GrowthCategory: domain.GrowthRapid,
		}},
		Summary: domain.Summary{
			CurrentYear:   2025,
			PreviousYear:  2024,
			Metric:        domain.MetricRevenue,
			TotalEntities: 1,
		},
		Metadata: domain.ResponseMetadata{CacheHit: true, DataSource: "order_items", Version: "v1", TotalCount: 1},
	}
}

func TestGetAnalysis(t *testing.T) {
	t.Run("maps query parameters", func(t *testing.T) {
		svc := new(mockService)
		minGrowth := decimal.RequireFromString("-5.5")
		svc.On("Analyze", mock.Anything, mock.MatchedBy(func(req domain.AnalysisRequest) bool {
			return req.StoreID == 42 &&
				req.CurrentYear == 2025 &&
				req.PreviousYear == 2023 &&
				req.Metric == domain.MetricQuantity &&
				req.EntityType == "goods" &&
				req.Vendor == "VendorA" &&
				req.StartMonth == 3 && req.EndMonth == 9 &&
				req.ExcludeServiceItems &&
				req.GrowthCategory == "growth" &&
				req.MinGrowthRate != nil && req.MinGrowthRate.Equal(minGrowth) &&
				req.MaxGrowthRate == nil &&
				req.SearchTerm == "wid" &&
				req.SortBy == "entityName" &&
				!req.SortDescending &&
				req.Limit == 10 && req.Offset == 20 &&
				req.IncludeMonthlyTrend
		})).Return(widgetResponse(), nil)

		rec := serve(setupRouter(svc), http.MethodGet, "/stores/42/analysis?"+
			"current_year=2025&previous_year=2023&metric=quantity&entity_type=goods&vendor=VendorA"+
			"&start_month=3&end_month=9&exclude_service_items=true&growth_category=growth"+
			"&min_growth_rate=-5.5&search=wid&sort_by=entityName&sort_desc=false&limit=10&offset=20&monthly_trend=1")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body api.AnalysisResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.Len(t, body.Data, 1)
		assert.Equal(t, "Widget", body.Data[0].EntityName)
		assert.Equal(t, 20.0, body.Data[0].GrowthRate)
		assert.Equal(t, "rapid growth", body.Data[0].GrowthCategory)
		assert.Equal(t, 1, body.Summary.TotalProducts)
		assert.True(t, body.Metadata.CacheHit)
		assert.NotNil(t, body.MonthlyTrend)
		svc.AssertExpectations(t)
	})

	t.Run("defaults", func(t *testing.T) {
		svc := new(mockService)
		svc.On("Analyze", mock.Anything, domain.AnalysisRequest{
			StoreID:        7,
			CurrentYear:    2026,
			PreviousYear:   2025,
			SortDescending: true,
		}).Return(widgetResponse(), nil)

		rec := serve(setupRouter(svc), http.MethodGet, "/stores/7/analysis")
		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})
}

func TestGetAnalysis_Errors(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		serviceErr     error
		expectedStatus int
		expectedBody   api.ErrorResponse
	}{
		{
			name:           "invalid store",
			target:         "/stores/abc/analysis",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   api.ErrorResponse{Error: "invalid store: must be a positive integer", Field: "store"},
		},
		{
			name:           "malformed integer",
			target:         "/stores/1/analysis?limit=ten",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   api.ErrorResponse{Error: "invalid limit: must be an integer", Field: "limit"},
		},
		{
			name:           "malformed decimal",
			target:         "/stores/1/analysis?min_current_value=lots",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   api.ErrorResponse{Error: "invalid min_current_value: must be a number", Field: "min_current_value"},
		},
		{
			name:           "validation error from service",
			target:         "/stores/1/analysis",
			serviceErr:     &services.ValidationError{Field: "previousYear", Reason: "2026 is after current year 2025"},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   api.ErrorResponse{Error: "invalid previousYear: 2026 is after current year 2025", Field: "previousYear"},
		},
		{
			name:           "data access error",
			target:         "/stores/1/analysis",
			serviceErr:     &services.DataAccessError{StoreID: 1, Stage: services.StageFetch, Err: errors.New("timeout")},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   api.ErrorResponse{Error: "failed to read order data", Stage: services.StageFetch},
		},
		{
			name:           "aggregation error",
			target:         "/stores/1/analysis",
			serviceErr:     &services.AggregationError{StoreID: 1, Stage: services.StageAggregate, Reason: "row 0 has no entity name"},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   api.ErrorResponse{Error: "aggregation failed for store 1: row 0 has no entity name", Stage: services.StageAggregate},
		},
		{
			name:           "unexpected error",
			target:         "/stores/1/analysis",
			serviceErr:     errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   api.ErrorResponse{Error: "internal error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockService)
			if tt.serviceErr != nil {
				svc.On("Analyze", mock.Anything, mock.Anything).Return(nil, tt.serviceErr)
			}

			rec := serve(setupRouter(svc), http.MethodGet, tt.target)
			assert.Equal(t, tt.expectedStatus, rec.Code)

			var body api.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.expectedBody, body)
			if tt.serviceErr == nil {
				svc.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestGetFilterOptions(t *testing.T) {
	svc := new(mockService)
	svc.On("FilterOptions", mock.Anything, int64(3)).Return(&domain.FilterOptions{
		EntityTypes:      []string{"goods"},
		GrowthCategories: domain.GrowthCategories,
		EarliestYear:     2022,
		LatestYear:       2025,
	}, nil)
	svc.On("FilterOptions", mock.Anything, int64(4)).Return(nil, &services.DataAccessError{
		StoreID: 4, Stage: services.StageVendors, Err: errors.New("boom"),
	})
	router := setupRouter(svc)

	rec := serve(router, http.MethodGet, "/stores/3/filter-options")
	require.Equal(t, http.StatusOK, rec.Code)

	var body api.FilterOptions
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, []string{"goods"}, body.EntityTypes)
	assert.Equal(t, []string{}, body.Vendors)
	assert.Len(t, body.GrowthCategories, 5)
	assert.Equal(t, 2022, body.EarliestYear)

	rec = serve(router, http.MethodGet, "/stores/4/filter-options")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestClearCache(t *testing.T) {
	svc := new(mockService)
	svc.On("ClearCache", mock.Anything, int64(1)).Return(true)
	svc.On("ClearCache", mock.Anything, int64(2)).Return(false)
	router := setupRouter(svc)

	for storeID, expected := range map[string]bool{"1": true, "2": false} {
		rec := serve(router, http.MethodPost, "/stores/"+storeID+"/cache/clear")
		assert.Equal(t, http.StatusOK, rec.Code)

		var body api.ClearCacheResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, expected, body.Success)
	}
}
