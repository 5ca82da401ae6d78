package repository

import (
	"context"

	"github.com/richat-partners/staffing-api/internal/domain"
	"gorm.io/gorm"
)

type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) Create(ctx context.Context, match *domain.MatchResult) error {
	return r.db.WithContext(ctx).Create(match).Error
}

func (r *MatchRepository) GetByID(ctx context.Context, id uint) (*domain.MatchResult, error) {
	var match domain.MatchResult
	err := r.db.WithContext(ctx).First(&match, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func (r *MatchRepository) GetByPair(ctx context.Context, consultantID, tenderID uint) (*domain.MatchResult, error) {
	var match domain.MatchResult
	err := r.db.WithContext(ctx).
		Where("consultant_id = ? AND tender_id = ?", consultantID, tenderID).
		First(&match).Error
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// ListByTender returns the matches of a tender, best score first and insertion order on ties
func (r *MatchRepository) ListByTender(ctx context.Context, tenderID uint) ([]domain.MatchResult, error) {
	var matches []domain.MatchResult
	err := r.db.WithContext(ctx).
		Where("tender_id = ?", tenderID).
		Order("score DESC, id ASC").
		Find(&matches).Error
	return matches, err
}

func (r *MatchRepository) ListByConsultant(ctx context.Context, consultantID uint) ([]domain.MatchResult, error) {
	var matches []domain.MatchResult
	err := r.db.WithContext(ctx).
		Where("consultant_id = ?", consultantID).
		Order("score DESC, id ASC").
		Find(&matches).Error
	return matches, err
}

// SetValidated flips the validated flag when it differs from validated.
// It reports whether a row changed, which makes repeated transitions no-ops.
func (r *MatchRepository) SetValidated(ctx context.Context, id uint, validated bool) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.MatchResult{}).
		Where("id = ? AND validated = ?", id, !validated).
		Update("validated", validated)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *MatchRepository) DeleteByTender(ctx context.Context, tenderID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("tender_id = ?", tenderID).Delete(&domain.MatchResult{})
	return result.RowsAffected, result.Error
}

func (r *MatchRepository) DeleteByConsultant(ctx context.Context, consultantID uint) error {
	return r.db.WithContext(ctx).Where("consultant_id = ?", consultantID).Delete(&domain.MatchResult{}).Error
}
