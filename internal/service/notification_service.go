package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/richat-partners/staffing-api/internal/domain"
	"github.com/richat-partners/staffing-api/internal/events"
	"github.com/richat-partners/staffing-api/internal/mapper"
	"github.com/richat-partners/staffing-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NotificationService handles business logic for notifications
type NotificationService struct {
	notificationRepo *repository.NotificationRepository
	consultantRepo   *repository.ConsultantRepository
	publisher        events.Publisher
	logger           *zap.Logger
	now              func() time.Time
}

// NewNotificationService creates a new NotificationService instance.
// A nil publisher disables event publication.
func NewNotificationService(
	notificationRepo *repository.NotificationRepository,
	consultantRepo *repository.ConsultantRepository,
	publisher events.Publisher,
	logger *zap.Logger,
) *NotificationService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &NotificationService{
		notificationRepo: notificationRepo,
		consultantRepo:   consultantRepo,
		publisher:        publisher,
		logger:           logger,
		now:              time.Now,
	}
}

// SetClock overrides the time source
func (s *NotificationService) SetClock(now func() time.Time) {
	s.now = now
}

// Create persists a notification then publishes it
func (s *NotificationService) Create(ctx context.Context, notification *domain.Notification) (*domain.NotificationDTO, error) {
	notification.Read = false
	notification.ReadAt = nil
	if notification.Priority == "" {
		notification.Priority = domain.PriorityNormal
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ErrConsultantNotFound
		}
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	s.logger.Info("notification created",
		zap.Uint("notification_id", notification.ID),
		zap.Uint("consultant_id", notification.ConsultantID),
		zap.String("kind", string(notification.Kind)),
	)

	s.Publish(ctx, *notification)

	dto := mapper.ToNotificationDTO(notification)
	return &dto, nil
}

// Publish sends already persisted notifications to the event broker.
// Failures are logged and never returned.
func (s *NotificationService) Publish(ctx context.Context, notifications ...domain.Notification) {
	for i := range notifications {
		event := events.EventFromNotification(&notifications[i])
		if err := s.publisher.PublishNotification(ctx, event); err != nil {
			s.logger.Warn("failed to publish notification event",
				zap.Uint("notification_id", notifications[i].ID),
				zap.Error(err),
			)
		}
	}
}

// ListForConsultant returns a page of notifications, most important first
func (s *NotificationService) ListForConsultant(
	ctx context.Context,
	consultantID uint,
	page, pageSize int,
	unreadOnly bool,
	kind domain.NotificationKind,
) (*domain.PaginatedResponse, error) {
	if err := s.ensureConsultant(ctx, consultantID); err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	notifications, total, err := s.notificationRepo.ListByConsultant(ctx, consultantID, page, pageSize, unreadOnly, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	dtos := make([]domain.NotificationDTO, len(notifications))
	for i := range notifications {
		dtos[i] = mapper.ToNotificationDTO(&notifications[i])
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// MarkAsRead sets the read flag. Marking an already read notification is a no-op.
func (s *NotificationService) MarkAsRead(ctx context.Context, consultantID, id uint) error {
	changed, err := s.notificationRepo.MarkAsRead(ctx, consultantID, id, s.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	if changed {
		return nil
	}

	notification, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to get notification: %w", err)
	}
	if notification.ConsultantID != consultantID {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllAsRead marks every unread notification of a consultant as read
func (s *NotificationService) MarkAllAsRead(ctx context.Context, consultantID uint) (int64, error) {
	if err := s.ensureConsultant(ctx, consultantID); err != nil {
		return 0, err
	}
	count, err := s.notificationRepo.MarkAllAsRead(ctx, consultantID, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return count, nil
}

// CountUnread returns the number of unread notifications of a consultant
func (s *NotificationService) CountUnread(ctx context.Context, consultantID uint) (int, error) {
	if err := s.ensureConsultant(ctx, consultantID); err != nil {
		return 0, err
	}
	count, err := s.notificationRepo.CountUnread(ctx, consultantID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (s *NotificationService) ensureConsultant(ctx context.Context, consultantID uint) error {
	if _, err := s.consultantRepo.GetByID(ctx, consultantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrConsultantNotFound
		}
		return fmt.Errorf("failed to get consultant: %w", err)
	}
	return nil
}
