package repository

import (
	"context"
	"time"

	"github.com/richat-partners/staffing-api/internal/domain"
	"gorm.io/gorm"
)

// notificationOrder lists HIGH before NORMAL before LOW, newest first within a priority
const notificationOrder = "CASE priority WHEN 'HIGH' THEN 3 WHEN 'NORMAL' THEN 2 ELSE 1 END DESC, created_at DESC, id DESC"

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *NotificationRepository) GetByID(ctx context.Context, id uint) (*domain.Notification, error) {
	var notification domain.Notification
	err := r.db.WithContext(ctx).First(&notification, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *NotificationRepository) ListByConsultant(ctx context.Context, consultantID uint, page, pageSize int, unreadOnly bool, kind domain.NotificationKind) ([]domain.Notification, int64, error) {
	var notifications []domain.Notification
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Notification{}).Where("consultant_id = ?", consultantID)

	if unreadOnly {
		query = query.Where("read = ?", false)
	}

	if kind != "" {
		query = query.Where("kind = ?", kind)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order(notificationOrder).Find(&notifications).Error

	return notifications, total, err
}

// MarkAsRead sets the read flag of an unread notification owned by consultantID
func (r *NotificationRepository) MarkAsRead(ctx context.Context, consultantID, id uint, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ? AND consultant_id = ? AND read = ?", id, consultantID, false).
		Updates(map[string]interface{}{
			"read":    true,
			"read_at": at,
		})
	return result.RowsAffected > 0, result.Error
}

func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, consultantID uint, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("consultant_id = ? AND read = ?", consultantID, false).
		Updates(map[string]interface{}{
			"read":    true,
			"read_at": at,
		})
	return result.RowsAffected, result.Error
}

func (r *NotificationRepository) CountUnread(ctx context.Context, consultantID uint) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("consultant_id = ? AND read = ?", consultantID, false).
		Count(&count).Error
	return int(count), err
}

func (r *NotificationRepository) DeleteByConsultant(ctx context.Context, consultantID uint) error {
	return r.db.WithContext(ctx).Where("consultant_id = ?", consultantID).Delete(&domain.Notification{}).Error
}
