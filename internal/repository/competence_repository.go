package repository

import (
	"context"

	"github.com/richat-partners/staffing-api/internal/domain"
	"gorm.io/gorm"
)

type CompetenceRepository struct {
	db *gorm.DB
}

func NewCompetenceRepository(db *gorm.DB) *CompetenceRepository {
	return &CompetenceRepository{db: db}
}

// Create inserts competence, filling NameKey from Name
func (r *CompetenceRepository) Create(ctx context.Context, competence *domain.Competence) error {
	competence.NameKey = domain.NameKey(competence.Name)
	return r.db.WithContext(ctx).Create(competence).Error
}

func (r *CompetenceRepository) ListByConsultant(ctx context.Context, consultantID uint) ([]domain.Competence, error) {
	var competences []domain.Competence
	err := r.db.WithContext(ctx).
		Where("consultant_id = ?", consultantID).
		Order("name_key").
		Find(&competences).Error
	return competences, err
}

// GetByName looks a competence up by its case-insensitive name
func (r *CompetenceRepository) GetByName(ctx context.Context, consultantID uint, name string) (*domain.Competence, error) {
	var competence domain.Competence
	err := r.db.WithContext(ctx).
		Where("consultant_id = ? AND name_key = ?", consultantID, domain.NameKey(name)).
		First(&competence).Error
	if err != nil {
		return nil, err
	}
	return &competence, nil
}

func (r *CompetenceRepository) UpdateLevel(ctx context.Context, id uint, level int) error {
	result := r.db.WithContext(ctx).Model(&domain.Competence{}).Where("id = ?", id).Update("level", level)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CompetenceRepository) Delete(ctx context.Context, consultantID, id uint) error {
	result := r.db.WithContext(ctx).Where("consultant_id = ?", consultantID).Delete(&domain.Competence{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CompetenceRepository) DeleteByConsultant(ctx context.Context, consultantID uint) error {
	return r.db.WithContext(ctx).Where("consultant_id = ?", consultantID).Delete(&domain.Competence{}).Error
}
