package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
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

type countingJob struct {
	runs atomic.Int32
	err  error
}

func (j *countingJob) Run(context.Context) error {
	j.runs.Add(1)
	return j.err
}

func (j *countingJob) Name() string { return "counting" }

func TestFilterOptionsRefresh_Run(t *testing.T) {
	svc := new(mockService)
	svc.On("ClearCache", mock.Anything, int64(1)).Return(true)
	svc.On("ClearCache", mock.Anything, int64(2)).Return(true)
	svc.On("FilterOptions", mock.Anything, int64(1)).Return(nil, errors.New("boom"))
	svc.On("FilterOptions", mock.Anything, int64(2)).Return(&domain.FilterOptions{}, nil)

	job := NewFilterOptionsRefresh(svc, []int64{1, 2})
	err := job.Run(context.Background())

	assert.ErrorContains(t, err, "store 1")
	assert.NotContains(t, err.Error(), "store 2")
	svc.AssertExpectations(t)
}

func TestFilterOptionsRefresh_StopsOnCancel(t *testing.T) {
	svc := new(mockService)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewFilterOptionsRefresh(svc, []int64{1}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	svc.AssertNotCalled(t, "ClearCache", mock.Anything, mock.Anything)
}

func TestScheduler_AddJob(t *testing.T) {
	s := New(context.Background(), zerolog.Nop())

	assert.Error(t, s.AddJob("not a schedule", &countingJob{}))

	job := &countingJob{}
	require.NoError(t, s.AddJob("@every 1s", job))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return job.runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(context.Background(), zerolog.Nop())

	job := &countingJob{err: errors.New("failed")}
	assert.Error(t, s.RunNow(job))
	assert.Equal(t, int32(1), job.runs.Load())
}
