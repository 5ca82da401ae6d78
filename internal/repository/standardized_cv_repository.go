package repository

import (
	"context"

	"github.com/richat-partners/staffing-api/internal/domain"
	"gorm.io/gorm"
)

type StandardizedCVRepository struct {
	db *gorm.DB
}

func NewStandardizedCVRepository(db *gorm.DB) *StandardizedCVRepository {
	return &StandardizedCVRepository{db: db}
}

func (r *StandardizedCVRepository) Create(ctx context.Context, cv *domain.StandardizedCV) error {
	return r.db.WithContext(ctx).Create(cv).Error
}

func (r *StandardizedCVRepository) GetByID(ctx context.Context, id uint) (*domain.StandardizedCV, error) {
	var cv domain.StandardizedCV
	err := r.db.WithContext(ctx).First(&cv, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &cv, nil
}

// GetByFilename returns the artifact stored under filename
func (r *StandardizedCVRepository) GetByFilename(ctx context.Context, filename string) (*domain.StandardizedCV, error) {
	var cv domain.StandardizedCV
	err := r.db.WithContext(ctx).First(&cv, "filename = ?", filename).Error
	if err != nil {
		return nil, err
	}
	return &cv, nil
}

// Current returns the most recently generated artifact of a consultant
func (r *StandardizedCVRepository) Current(ctx context.Context, consultantID uint) (*domain.StandardizedCV, error) {
	var cv domain.StandardizedCV
	err := r.db.WithContext(ctx).
		Where("consultant_id = ?", consultantID).
		Order("generated_at DESC, id DESC").
		First(&cv).Error
	if err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *StandardizedCVRepository) ListByConsultant(ctx context.Context, consultantID uint) ([]domain.StandardizedCV, error) {
	var cvs []domain.StandardizedCV
	err := r.db.WithContext(ctx).
		Where("consultant_id = ?", consultantID).
		Order("generated_at DESC, id DESC").
		Find(&cvs).Error
	return cvs, err
}

func (r *StandardizedCVRepository) IncrementDownloads(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&domain.StandardizedCV{}).
		Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *StandardizedCVRepository) DeleteByConsultant(ctx context.Context, consultantID uint) error {
	return r.db.WithContext(ctx).Where("consultant_id = ?", consultantID).Delete(&domain.StandardizedCV{}).Error
}
