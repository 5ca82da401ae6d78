package repository

import (
	"context"
	"time"

	"github.com/richat-partners/staffing-api/internal/domain"
	"gorm.io/gorm"
)

type TenderRepository struct {
	db *gorm.DB
}

func NewTenderRepository(db *gorm.DB) *TenderRepository {
	return &TenderRepository{db: db}
}

func (r *TenderRepository) Create(ctx context.Context, tender *domain.Tender) error {
	return r.db.WithContext(ctx).Omit("Criteria").Create(tender).Error
}

// GetByID loads a tender with its structured criteria
func (r *TenderRepository) GetByID(ctx context.Context, id uint) (*domain.Tender, error) {
	var tender domain.Tender
	err := r.db.WithContext(ctx).
		Preload("Criteria", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		}).
		First(&tender, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &tender, nil
}

// FindBySource returns the tender identified by (title, source_url)
func (r *TenderRepository) FindBySource(ctx context.Context, title, sourceURL string) (*domain.Tender, error) {
	var tender domain.Tender
	err := r.db.WithContext(ctx).
		Where("title = ? AND source_url = ?", title, sourceURL).
		First(&tender).Error
	if err != nil {
		return nil, err
	}
	return &tender, nil
}

// UpdateEnrichment applies fields and increments the version in one statement
func (r *TenderRepository) UpdateEnrichment(ctx context.Context, id uint, fields map[string]interface{}) error {
	updates := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates["version"] = gorm.Expr("version + 1")

	result := r.db.WithContext(ctx).Model(&domain.Tender{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// BumpVersion increments the version of a tender
func (r *TenderRepository) BumpVersion(ctx context.Context, id uint) error {
	return r.UpdateEnrichment(ctx, id, nil)
}

// ListOpen returns tenders whose deadline is today or later, or absent, soonest deadline first
func (r *TenderRepository) ListOpen(ctx context.Context, today time.Time) ([]domain.Tender, error) {
	var tenders []domain.Tender
	err := r.db.WithContext(ctx).
		Where("deadline_date IS NULL OR deadline_date >= ?", domain.DateOnly(today)).
		Order("CASE WHEN deadline_date IS NULL THEN 1 ELSE 0 END, deadline_date, id").
		Find(&tenders).Error
	return tenders, err
}

func (r *TenderRepository) List(ctx context.Context, page, pageSize int) ([]domain.Tender, int64, error) {
	var tenders []domain.Tender
	var total int64

	if err := r.db.WithContext(ctx).Model(&domain.Tender{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&tenders).Error

	return tenders, total, err
}
