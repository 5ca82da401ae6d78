package repository

import (
	"context"

	"github.com/richat-partners/staffing-api/internal/domain"
	"gorm.io/gorm"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, document *domain.Document) error {
	return r.db.WithContext(ctx).Create(document).Error
}

func (r *DocumentRepository) ListByConsultant(ctx context.Context, consultantID uint) ([]domain.Document, error) {
	var documents []domain.Document
	err := r.db.WithContext(ctx).Where("consultant_id = ?", consultantID).Order("id").Find(&documents).Error
	return documents, err
}

// ListUnowned returns documents whose owner was deleted
func (r *DocumentRepository) ListUnowned(ctx context.Context) ([]domain.Document, error) {
	var documents []domain.Document
	err := r.db.WithContext(ctx).Where("consultant_id IS NULL").Order("id").Find(&documents).Error
	return documents, err
}

// Detach leaves every document of a consultant without owner
func (r *DocumentRepository) Detach(ctx context.Context, consultantID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Document{}).
		Where("consultant_id = ?", consultantID).
		Update("consultant_id", nil)
	return result.RowsAffected, result.Error
}
