package repository

import (
	"context"

	"github.com/richat-partners/staffing-api/internal/domain"
	"gorm.io/gorm"
)

type CriterionRepository struct {
	db *gorm.DB
}

func NewCriterionRepository(db *gorm.DB) *CriterionRepository {
	return &CriterionRepository{db: db}
}

// Create inserts criterion, filling NameKey from Name
func (r *CriterionRepository) Create(ctx context.Context, criterion *domain.StructuredCriterion) error {
	criterion.NameKey = domain.NameKey(criterion.Name)
	return r.db.WithContext(ctx).Create(criterion).Error
}

func (r *CriterionRepository) ListByTender(ctx context.Context, tenderID uint) ([]domain.StructuredCriterion, error) {
	var criteria []domain.StructuredCriterion
	err := r.db.WithContext(ctx).
		Where("tender_id = ?", tenderID).
		Order("id").
		Find(&criteria).Error
	return criteria, err
}

func (r *CriterionRepository) Delete(ctx context.Context, tenderID, id uint) error {
	result := r.db.WithContext(ctx).Where("tender_id = ?", tenderID).Delete(&domain.StructuredCriterion{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
