package repository

import (
	"context"

	"github.com/richat-partners/staffing-api/internal/domain"
	"gorm.io/gorm"
)

type MissionRepository struct {
	db *gorm.DB
}

func NewMissionRepository(db *gorm.DB) *MissionRepository {
	return &MissionRepository{db: db}
}

func (r *MissionRepository) Create(ctx context.Context, mission *domain.Mission) error {
	return r.db.WithContext(ctx).Create(mission).Error
}

func (r *MissionRepository) GetByPair(ctx context.Context, consultantID, tenderID uint) (*domain.Mission, error) {
	var mission domain.Mission
	err := r.db.WithContext(ctx).
		Where("consultant_id = ? AND tender_id = ?", consultantID, tenderID).
		First(&mission).Error
	if err != nil {
		return nil, err
	}
	return &mission, nil
}

func (r *MissionRepository) ListByConsultant(ctx context.Context, consultantID uint) ([]domain.Mission, error) {
	var missions []domain.Mission
	err := r.db.WithContext(ctx).
		Where("consultant_id = ?", consultantID).
		Order("start_date DESC, id DESC").
		Find(&missions).Error
	return missions, err
}

func (r *MissionRepository) DeleteByConsultant(ctx context.Context, consultantID uint) error {
	return r.db.WithContext(ctx).Where("consultant_id = ?", consultantID).Delete(&domain.Mission{}).Error
}
