package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/richat-partners/staffing-api/internal/domain"
	"github.com/richat-partners/staffing-api/internal/mapper"
	"github.com/richat-partners/staffing-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// defaultMissionDays is the mission length used when the tender has no deadline
const defaultMissionDays = 30

// MatchLifecycleService drives the validated flag of matches and its side effects:
// missions and consultant notifications
type MatchLifecycleService struct {
	db            *gorm.DB
	notifications *NotificationService
	logger        *zap.Logger
	now           func() time.Time
}

// NewMatchLifecycleService creates a new MatchLifecycleService instance
func NewMatchLifecycleService(db *gorm.DB, notifications *NotificationService, logger *zap.Logger) *MatchLifecycleService {
	return &MatchLifecycleService{
		db:            db,
		notifications: notifications,
		logger:        logger,
		now:           time.Now,
	}
}

// SetClock overrides the time source used for mission start dates
func (s *MatchLifecycleService) SetClock(now func() time.Time) {
	s.now = now
}

// Validate marks a match as validated. The first validation of a (consultant, tender) pair
// creates its mission; later validations reuse it. Validating an already validated match
// changes nothing.
func (s *MatchLifecycleService) Validate(ctx context.Context, matchID uint) (*domain.ValidationOutcomeDTO, error) {
	var (
		match      *domain.MatchResult
		mission    *domain.Mission
		created    []domain.Notification
		changed    bool
		newMission bool
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		matchRepo := repository.NewMatchRepository(tx)
		missionRepo := repository.NewMissionRepository(tx)

		var err error
		match, err = matchRepo.GetByID(ctx, matchID)
		if err != nil {
			return err
		}

		changed, err = matchRepo.SetValidated(ctx, matchID, true)
		if err != nil {
			return err
		}
		match.Validated = true

		mission, err = missionRepo.GetByPair(ctx, match.ConsultantID, match.TenderID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if !changed {
			return nil
		}

		tender, err := repository.NewTenderRepository(tx).GetByID(ctx, match.TenderID)
		if err != nil {
			return fmt.Errorf("failed to load tender of match: %w", err)
		}

		if mission == nil {
			mission, err = s.buildMission(match, tender)
			if err != nil {
				return err
			}
			if err := missionRepo.Create(ctx, mission); err != nil {
				return err
			}
			newMission = true
		}

		notificationRepo := repository.NewNotificationRepository(tx)
		valid := domain.Notification{
			ConsultantID:  match.ConsultantID,
			Kind:          domain.NotificationMatchValid,
			Title:         "Candidature retenue : " + tender.Title,
			Body:          fmt.Sprintf("Votre profil a été retenu pour l'appel d'offres « %s » avec un score de %.2f.", tender.Title, match.Score),
			Priority:      domain.PriorityHigh,
			TenderID:      &match.TenderID,
			MatchResultID: &match.ID,
			MissionID:     &mission.ID,
		}
		if err := notificationRepo.Create(ctx, &valid); err != nil {
			return err
		}
		created = append(created, valid)

		if newMission {
			begin := domain.Notification{
				ConsultantID:  match.ConsultantID,
				Kind:          domain.NotificationMissionStart,
				Title:         "Nouvelle mission : " + mission.Title,
				Body:          fmt.Sprintf("Votre mission démarre le %s et se termine le %s.", mission.StartDate.Format("02/01/2006"), mission.EndDate.Format("02/01/2006")),
				Priority:      domain.PriorityNormal,
				TenderID:      &match.TenderID,
				MatchResultID: &match.ID,
				MissionID:     &mission.ID,
			}
			if err := notificationRepo.Create(ctx, &begin); err != nil {
				return err
			}
			created = append(created, begin)
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrMatchNotFound
		case errors.Is(err, ErrInvalidMissionDates):
			return nil, err
		}
		return nil, fmt.Errorf("failed to validate match: %w", err)
	}

	s.notifications.Publish(ctx, created...)

	if changed {
		s.logger.Info("match validated",
			zap.Uint("match_id", matchID),
			zap.Uint("consultant_id", match.ConsultantID),
			zap.Uint("tender_id", match.TenderID),
			zap.Bool("mission_created", newMission),
		)
	}
	return s.outcome(match, changed, mission, created), nil
}

// Invalidate clears the validated flag of a match. Missions are kept. Invalidating an
// unvalidated match changes nothing.
func (s *MatchLifecycleService) Invalidate(ctx context.Context, matchID uint) (*domain.ValidationOutcomeDTO, error) {
	var (
		match   *domain.MatchResult
		mission *domain.Mission
		created []domain.Notification
		changed bool
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		matchRepo := repository.NewMatchRepository(tx)

		var err error
		match, err = matchRepo.GetByID(ctx, matchID)
		if err != nil {
			return err
		}

		changed, err = matchRepo.SetValidated(ctx, matchID, false)
		if err != nil {
			return err
		}
		match.Validated = false

		mission, err = repository.NewMissionRepository(tx).GetByPair(ctx, match.ConsultantID, match.TenderID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if !changed {
			return nil
		}

		tender, err := repository.NewTenderRepository(tx).GetByID(ctx, match.TenderID)
		if err != nil {
			return fmt.Errorf("failed to load tender of match: %w", err)
		}

		update := domain.Notification{
			ConsultantID:  match.ConsultantID,
			Kind:          domain.NotificationMissionUpdate,
			Title:         "Mise à jour : " + tender.Title,
			Body:          fmt.Sprintf("Votre sélection pour l'appel d'offres « %s » a été annulée.", tender.Title),
			Priority:      domain.PriorityNormal,
			TenderID:      &match.TenderID,
			MatchResultID: &match.ID,
		}
		if mission != nil {
			update.MissionID = &mission.ID
		}
		if err := repository.NewNotificationRepository(tx).Create(ctx, &update); err != nil {
			return err
		}
		created = append(created, update)
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to invalidate match: %w", err)
	}

	s.notifications.Publish(ctx, created...)

	if changed {
		s.logger.Info("match invalidated", zap.Uint("match_id", matchID), zap.Uint("consultant_id", match.ConsultantID))
	}
	return s.outcome(match, changed, mission, created), nil
}

// buildMission derives a mission from a match: it starts at the tender publication (or
// today) and ends at the deadline (or 30 days after the start).
func (s *MatchLifecycleService) buildMission(match *domain.MatchResult, tender *domain.Tender) (*domain.Mission, error) {
	start := domain.DateOnly(s.now())
	if tender.PublicationDate != nil {
		start = domain.DateOnly(*tender.PublicationDate)
	}
	end := start.AddDate(0, 0, defaultMissionDays)
	if tender.DeadlineDate != nil {
		end = domain.DateOnly(*tender.DeadlineDate)
	}
	if start.After(end) {
		return nil, fmt.Errorf("%w (tender %d: %s > %s)", ErrInvalidMissionDates, tender.ID,
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	return &domain.Mission{
		TenderID:     match.TenderID,
		ConsultantID: match.ConsultantID,
		Title:        "Mission : " + tender.Title,
		StartDate:    start,
		EndDate:      end,
		Status:       domain.MissionStatusValidated,
		Score:        match.Score,
	}, nil
}

func (s *MatchLifecycleService) outcome(match *domain.MatchResult, changed bool, mission *domain.Mission, created []domain.Notification) *domain.ValidationOutcomeDTO {
	out := &domain.ValidationOutcomeDTO{
		Match:   mapper.ToMatchResultDTO(match),
		Changed: changed,
	}
	if mission != nil {
		dto := mapper.ToMissionDTO(mission)
		out.Mission = &dto
	}
	for i := range created {
		out.Notifications = append(out.Notifications, mapper.ToNotificationDTO(&created[i]))
	}
	return out
}
