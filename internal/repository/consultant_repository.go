package repository

import (
	"context"

	"github.com/richat-partners/staffing-api/internal/domain"
	"gorm.io/gorm"
)

type ConsultantRepository struct {
	db *gorm.DB
}

func NewConsultantRepository(db *gorm.DB) *ConsultantRepository {
	return &ConsultantRepository{db: db}
}

func (r *ConsultantRepository) Create(ctx context.Context, consultant *domain.Consultant) error {
	return r.db.WithContext(ctx).Create(consultant).Error
}

func (r *ConsultantRepository) GetByID(ctx context.Context, id uint) (*domain.Consultant, error) {
	var consultant domain.Consultant
	err := r.db.WithContext(ctx).
		Preload("Competences", func(db *gorm.DB) *gorm.DB {
			return db.Order("name_key")
		}).
		First(&consultant, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &consultant, nil
}

func (r *ConsultantRepository) GetByEmail(ctx context.Context, email string) (*domain.Consultant, error) {
	var consultant domain.Consultant
	err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&consultant).Error
	if err != nil {
		return nil, err
	}
	return &consultant, nil
}

// Update saves every column of consultant except its associations
func (r *ConsultantRepository) Update(ctx context.Context, consultant *domain.Consultant) error {
	return r.db.WithContext(ctx).Omit("Competences").Save(consultant).Error
}

// UpdateFields updates the given columns only
func (r *ConsultantRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&domain.Consultant{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns consultants ordered by name with optional status and domain filters
func (r *ConsultantRepository) List(ctx context.Context, page, pageSize int, status domain.ConsultantStatus, primaryDomain domain.Domain) ([]domain.Consultant, int64, error) {
	var consultants []domain.Consultant
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Consultant{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if primaryDomain != "" {
		query = query.Where("primary_domain = ?", primaryDomain)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("last_name, first_name, id").
		Offset(offset).
		Limit(pageSize).
		Find(&consultants).Error

	return consultants, total, err
}

// ListEligible returns validated, active consultants with a complete availability window,
// with their competences loaded
func (r *ConsultantRepository) ListEligible(ctx context.Context) ([]domain.Consultant, error) {
	var consultants []domain.Consultant
	err := r.db.WithContext(ctx).
		Preload("Competences").
		Where("validated = ? AND status = ?", true, domain.ConsultantStatusActive).
		Where("avail_start IS NOT NULL AND avail_end IS NOT NULL").
		Order("id").
		Find(&consultants).Error
	return consultants, err
}

func (r *ConsultantRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Consultant{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
