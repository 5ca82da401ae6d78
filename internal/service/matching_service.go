package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/richat-partners/staffing-api/internal/domain"
	"github.com/richat-partners/staffing-api/internal/logger"
	"github.com/richat-partners/staffing-api/internal/mapper"
	"github.com/richat-partners/staffing-api/internal/matching"
	"github.com/richat-partners/staffing-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MatchingService ranks eligible consultants against tenders and persists the results
type MatchingService struct {
	consultantRepo *repository.ConsultantRepository
	tenderRepo     *repository.TenderRepository
	matchRepo      *repository.MatchRepository
	cache          matching.ScoreCache
	logger         *zap.Logger

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

// NewMatchingService creates a new MatchingService instance. A nil cache uses a
// process-local one.
func NewMatchingService(
	consultantRepo *repository.ConsultantRepository,
	tenderRepo *repository.TenderRepository,
	matchRepo *repository.MatchRepository,
	cache matching.ScoreCache,
	logger *zap.Logger,
) *MatchingService {
	if cache == nil {
		cache = matching.NewMemoryScoreCache()
	}
	return &MatchingService{
		consultantRepo: consultantRepo,
		tenderRepo:     tenderRepo,
		matchRepo:      matchRepo,
		cache:          cache,
		logger:         logger,
		locks:          make(map[uint]*sync.Mutex),
	}
}

// tenderLock returns the mutex serializing batches of one tender
func (s *MatchingService) tenderLock(tenderID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[tenderID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[tenderID] = l
	}
	return l
}

// GenerateForTender replaces the matches of a tender with freshly computed ones for every
// eligible consultant. Consultants that fail to score or persist are logged and counted as
// skipped; the batch itself still succeeds.
func (s *MatchingService) GenerateForTender(ctx context.Context, tenderID uint) (*domain.BatchResultDTO, error) {
	lock := s.tenderLock(tenderID)
	lock.Lock()
	defer lock.Unlock()

	log := logger.WithTender(s.logger, tenderID)

	tender, err := s.getTender(ctx, tenderID)
	if err != nil {
		return nil, err
	}

	consultants, err := s.consultantRepo.ListEligible(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible consultants: %w", err)
	}

	deleted, err := s.matchRepo.DeleteByTender(ctx, tenderID)
	if err != nil {
		return nil, fmt.Errorf("failed to clear previous matches: %w", err)
	}
	if err := s.cache.InvalidateTender(ctx, tenderID); err != nil {
		log.Warn("failed to clear score cache", zap.Error(err))
	}

	result := &domain.BatchResultDTO{
		TenderID: tenderID,
		Success:  true,
		Matches:  make([]domain.MatchResultDTO, 0, len(consultants)),
	}
	total := 0.0

	for i := range consultants {
		consultant := &consultants[i]

		breakdown, err := s.score(ctx, consultant, tender)
		if err != nil {
			log.Warn("failed to score consultant", zap.Uint("consultant_id", consultant.ID), zap.Error(err))
			result.Skipped++
			continue
		}

		match := &domain.MatchResult{
			ConsultantID: consultant.ID,
			TenderID:     tenderID,
			Score:        breakdown.Score,
			DateScore:    breakdown.DateScore,
			SkillsScore:  breakdown.SkillsScore,
		}
		if err := s.matchRepo.Create(ctx, match); err != nil {
			log.Warn("failed to persist match", zap.Uint("consultant_id", consultant.ID), zap.Error(err))
			result.Skipped++
			continue
		}

		if result.Count == 0 || match.Score < result.MinScore {
			result.MinScore = match.Score
		}
		if match.Score > result.MaxScore {
			result.MaxScore = match.Score
		}
		total += match.Score
		result.Count++
		result.Matches = append(result.Matches, mapper.ToMatchResultDTO(match))
	}

	if result.Count > 0 {
		result.AvgScore = math.Round(total/float64(result.Count)*100) / 100
	}

	log.Info("matches generated",
		zap.Int("eligible", len(consultants)),
		zap.Int64("replaced", deleted),
		zap.Int("count", result.Count),
		zap.Int("skipped", result.Skipped),
		zap.Float64("min_score", result.MinScore),
		zap.Float64("max_score", result.MaxScore),
		zap.Float64("avg_score", result.AvgScore),
	)
	return result, nil
}

// ScorePair computes the score of one consultant against one tender without persisting it
func (s *MatchingService) ScorePair(ctx context.Context, consultantID, tenderID uint) (*matching.Breakdown, error) {
	consultant, err := s.consultantRepo.GetByID(ctx, consultantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConsultantNotFound
		}
		return nil, fmt.Errorf("failed to get consultant: %w", err)
	}
	tender, err := s.getTender(ctx, tenderID)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.score(ctx, consultant, tender)
	if err != nil {
		return nil, err
	}
	return &breakdown, nil
}

// ListForTender returns the matches of a tender, best score first
func (s *MatchingService) ListForTender(ctx context.Context, tenderID uint) ([]domain.MatchResultDTO, error) {
	if _, err := s.getTender(ctx, tenderID); err != nil {
		return nil, err
	}
	matches, err := s.matchRepo.ListByTender(ctx, tenderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return mapper.ToMatchResultDTOs(matches), nil
}

// ListForConsultant returns the matches of a consultant, best score first
func (s *MatchingService) ListForConsultant(ctx context.Context, consultantID uint) ([]domain.MatchResultDTO, error) {
	matches, err := s.matchRepo.ListByConsultant(ctx, consultantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return mapper.ToMatchResultDTOs(matches), nil
}

// score reads through the cache. A panic inside scoring is turned into an error.
func (s *MatchingService) score(ctx context.Context, consultant *domain.Consultant, tender *domain.Tender) (b matching.Breakdown, err error) {
	key := matching.CacheKey{TenderID: tender.ID, TenderVersion: tender.Version, ConsultantID: consultant.ID}

	cached, ok, cacheErr := s.cache.Get(ctx, key)
	if cacheErr != nil {
		s.logger.Debug("score cache read failed", zap.String("key", key.String()), zap.Error(cacheErr))
	}
	if ok {
		return cached, nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scoring panicked: %v", r)
		}
	}()
	b = matching.Score(consultant, tender)

	if err := s.cache.Set(ctx, key, b); err != nil {
		s.logger.Debug("score cache write failed", zap.String("key", key.String()), zap.Error(err))
	}
	return b, nil
}

func (s *MatchingService) getTender(ctx context.Context, id uint) (*domain.Tender, error) {
	tender, err := s.tenderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTenderNotFound
		}
		return nil, fmt.Errorf("failed to get tender: %w", err)
	}
	return tender, nil
}
