package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/richat-partners/staffing-api/internal/domain"
	"github.com/richat-partners/staffing-api/internal/logger"
	"go.uber.org/zap"
)

// MatchRefreshJobName is the scheduler name of the match refresh job
const MatchRefreshJobName = "match_refresh"

// OpenTenderLister lists tenders that are still accepting submissions.
type OpenTenderLister interface {
	ListOpen(ctx context.Context, today time.Time) ([]domain.TenderDTO, error)
}

// MatchGenerator regenerates the matches of one tender.
type MatchGenerator interface {
	GenerateForTender(ctx context.Context, tenderID uint) (*domain.BatchResultDTO, error)
}

// RefreshSummary reports the outcome of one refresh run
type RefreshSummary struct {
	Tenders   int
	Refreshed int
	Failed    int
	Matches   int
}

// MatchRefreshJob regenerates matches for every open tender so that scores follow
// consultant availability and competence changes.
type MatchRefreshJob struct {
	tenders  OpenTenderLister
	matching MatchGenerator
	logger   *zap.Logger
	timeout  time.Duration
	now      func() time.Time
}

func NewMatchRefreshJob(tenders OpenTenderLister, matching MatchGenerator, logger *zap.Logger, timeout time.Duration) *MatchRefreshJob {
	return &MatchRefreshJob{
		tenders:  tenders,
		matching: matching,
		logger:   logger,
		timeout:  timeout,
		now:      time.Now,
	}
}

// SetClock overrides the clock used to decide which tenders are open
func (j *MatchRefreshJob) SetClock(now func() time.Time) {
	j.now = now
}

// Run is the cron entry point.
func (j *MatchRefreshJob) Run() {
	ctx := context.Background()
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}
	_, _ = j.Refresh(ctx)
}

// Refresh regenerates matches tender by tender. A failing tender is logged and
// counted; the run stops early only when ctx is done.
func (j *MatchRefreshJob) Refresh(ctx context.Context) (RefreshSummary, error) {
	start := time.Now()
	var summary RefreshSummary

	open, err := j.tenders.ListOpen(ctx, j.now())
	if err != nil {
		j.logger.Error("match refresh could not list open tenders", zap.Error(err))
		return summary, err
	}
	summary.Tenders = len(open)

	for _, tender := range open {
		if err := ctx.Err(); err != nil {
			j.logger.Warn("match refresh interrupted",
				zap.Error(err),
				zap.Int("remaining", len(open)-summary.Refreshed-summary.Failed))
			return summary, err
		}

		batch, err := j.matching.GenerateForTender(ctx, tender.ID)
		if err != nil {
			summary.Failed++
			level := zap.ErrorLevel
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				level = zap.WarnLevel
			}
			logger.WithTender(j.logger, tender.ID).Log(level, "match refresh failed for tender", zap.Error(err))
			continue
		}
		summary.Refreshed++
		summary.Matches += batch.Count
	}

	j.logger.Info("match refresh completed",
		zap.Int("tenders", summary.Tenders),
		zap.Int("refreshed", summary.Refreshed),
		zap.Int("failed", summary.Failed),
		zap.Int("matches", summary.Matches),
		zap.Duration("duration", time.Since(start)))

	return summary, nil
}

// RegisterMatchRefreshJob adds the match refresh job to the scheduler.
func RegisterMatchRefreshJob(scheduler *Scheduler, job *MatchRefreshJob, cronExpr string) error {
	return scheduler.AddJob(MatchRefreshJobName, cronExpr, job.Run)
}
