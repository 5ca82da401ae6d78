package jobs_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/richat-partners/staffing-api/internal/domain"
	"github.com/richat-partners/staffing-api/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeTenders struct {
	open  []domain.TenderDTO
	err   error
	today time.Time
}

func (f *fakeTenders) ListOpen(_ context.Context, today time.Time) ([]domain.TenderDTO, error) {
	f.today = today
	return f.open, f.err
}

type fakeMatching struct {
	mu      sync.Mutex
	calls   []uint
	failing map[uint]error
	cancel  context.CancelFunc
}

func (f *fakeMatching) GenerateForTender(_ context.Context, tenderID uint) (*domain.BatchResultDTO, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, tenderID)
	if f.cancel != nil {
		f.cancel()
	}
	if err := f.failing[tenderID]; err != nil {
		return nil, err
	}
	return &domain.BatchResultDTO{TenderID: tenderID, Success: true, Count: 2}, nil
}

// ============================================================================
// Scheduler
// ============================================================================

func TestScheduler_AddRemoveAndRunNow(t *testing.T) {
	s := jobs.NewScheduler(zap.NewNop())

	runs := 0
	require.NoError(t, s.AddJob("b_job", "0 0 3 * * *", func() { runs++ }))
	require.NoError(t, s.AddJob("a_job", "@hourly", func() {}))
	require.NoError(t, s.AddJob("five_fields", "15 * * * *", func() {}))

	err := s.AddJob("b_job", "@daily", func() {})
	assert.ErrorContains(t, err, "already exists")

	err = s.AddJob("broken", "not a cron", func() {})
	assert.ErrorContains(t, err, "failed to add job broken")

	assert.Equal(t, []string{"a_job", "b_job", "five_fields"}, s.JobNames())

	require.NoError(t, s.RunNow("b_job"))
	assert.Equal(t, 1, runs)

	require.NoError(t, s.RemoveJob("b_job"))
	assert.Error(t, s.RemoveJob("b_job"))
	assert.Error(t, s.RunNow("b_job"))
	assert.Equal(t, []string{"a_job", "five_fields"}, s.JobNames())
}

func TestScheduler_StartStop(t *testing.T) {
	s := jobs.NewScheduler(zap.NewNop())
	require.NoError(t, s.AddJob("tick", "@every 1h", func() {}))

	s.Start()
	ctx := s.Stop()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

// ============================================================================
// Match refresh
// ============================================================================

func TestMatchRefreshJob_RefreshesEveryOpenTender(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	tenders := &fakeTenders{open: []domain.TenderDTO{{ID: 1}, {ID: 2}, {ID: 3}}}
	matching := &fakeMatching{failing: map[uint]error{2: errors.New("database unavailable")}}
	now := time.Date(2025, 3, 10, 3, 0, 0, 0, time.UTC)

	job := jobs.NewMatchRefreshJob(tenders, matching, zap.New(core), time.Minute)
	job.SetClock(func() time.Time { return now })

	summary, err := job.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, jobs.RefreshSummary{Tenders: 3, Refreshed: 2, Failed: 1, Matches: 4}, summary)
	assert.Equal(t, []uint{1, 2, 3}, matching.calls)
	assert.True(t, tenders.today.Equal(now))

	failures := logs.FilterMessage("match refresh failed for tender").All()
	require.Len(t, failures, 1)
	assert.Equal(t, uint64(2), failures[0].ContextMap()["tender_id"])
	assert.Equal(t, 1, logs.FilterMessage("match refresh completed").Len())
}

func TestMatchRefreshJob_ListFailure(t *testing.T) {
	tenders := &fakeTenders{err: errors.New("boom")}
	matching := &fakeMatching{}

	_, err := jobs.NewMatchRefreshJob(tenders, matching, zap.NewNop(), 0).Refresh(context.Background())
	assert.Error(t, err)
	assert.Empty(t, matching.calls)
}

func TestMatchRefreshJob_StopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tenders := &fakeTenders{open: []domain.TenderDTO{{ID: 7}, {ID: 8}}}
	matching := &fakeMatching{cancel: cancel}

	summary, err := jobs.NewMatchRefreshJob(tenders, matching, zap.NewNop(), 0).Refresh(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []uint{7}, matching.calls)
	assert.Equal(t, 1, summary.Refreshed)
}

func TestRegisterMatchRefreshJob(t *testing.T) {
	s := jobs.NewScheduler(zap.NewNop())
	tenders := &fakeTenders{open: []domain.TenderDTO{{ID: 4}}}
	matching := &fakeMatching{}
	job := jobs.NewMatchRefreshJob(tenders, matching, zap.NewNop(), time.Minute)

	require.NoError(t, jobs.RegisterMatchRefreshJob(s, job, "0 0 3 * * *"))
	assert.Equal(t, []string{jobs.MatchRefreshJobName}, s.JobNames())

	require.NoError(t, s.RunNow(jobs.MatchRefreshJobName))
	assert.Equal(t, []uint{4}, matching.calls)
}
