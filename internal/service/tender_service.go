package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/richat-partners/staffing-api/internal/domain"
	"github.com/richat-partners/staffing-api/internal/logger"
	"github.com/richat-partners/staffing-api/internal/mapper"
	"github.com/richat-partners/staffing-api/internal/matching"
	"github.com/richat-partners/staffing-api/internal/repository"
	"github.com/richat-partners/staffing-api/internal/textnorm"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TenderService ingests scraped tenders and manages their enrichment and criteria
type TenderService struct {
	tenderRepo    *repository.TenderRepository
	criterionRepo *repository.CriterionRepository
	cache         matching.ScoreCache
	db            *gorm.DB
	logger        *zap.Logger
	now           func() time.Time
}

// NewTenderService creates a new TenderService instance
func NewTenderService(
	tenderRepo *repository.TenderRepository,
	criterionRepo *repository.CriterionRepository,
	cache matching.ScoreCache,
	db *gorm.DB,
	logger *zap.Logger,
) *TenderService {
	return &TenderService{
		tenderRepo:    tenderRepo,
		criterionRepo: criterionRepo,
		cache:         cache,
		db:            db,
		logger:        logger,
		now:           time.Now,
	}
}

// SetClock overrides the time source used to evaluate deadlines
func (s *TenderService) SetClock(now func() time.Time) {
	s.now = now
}

// Ingest stores a scraped tender. Records are identified by (title, source_url): ingesting the
// same record again returns the stored tender unchanged and created is false.
func (s *TenderService) Ingest(ctx context.Context, req *domain.IngestTenderRequest) (dto *domain.TenderDTO, created bool, err error) {
	title := textnorm.CollapseSpaces(textnorm.NormalizeText(req.Title))
	if title == "" {
		return nil, false, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	sourceURL := strings.TrimSpace(req.SourceURL)

	existing, err := s.tenderRepo.FindBySource(ctx, title, sourceURL)
	if err == nil {
		return s.toDTO(existing), false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("failed to look up tender: %w", err)
	}

	tender := &domain.Tender{
		Title:                  title,
		Client:                 textnorm.CollapseSpaces(textnorm.NormalizeText(req.Client)),
		PublicationDate:        textnorm.ParseDate(req.PublicationDate),
		DeadlineDate:           textnorm.ParseDate(req.DeadlineDate),
		TenderType:             strings.TrimSpace(req.TenderType),
		Description:            textnorm.NormalizeText(req.Description),
		EvaluationCriteriaText: textnorm.NormalizeText(req.EvaluationCriteriaText),
		SourceURL:              sourceURL,
		Version:                1,
	}
	if len(req.Documents) > 0 {
		raw, err := json.Marshal(req.Documents)
		if err != nil {
			return nil, false, fmt.Errorf("%w: documents: %v", ErrInvalidInput, err)
		}
		tender.Documents = datatypes.JSON(raw)
	}

	if err := s.tenderRepo.Create(ctx, tender); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race against a concurrent ingestion of the same record
			existing, findErr := s.tenderRepo.FindBySource(ctx, title, sourceURL)
			if findErr == nil {
				return s.toDTO(existing), false, nil
			}
		}
		return nil, false, fmt.Errorf("failed to create tender: %w", err)
	}

	s.logger.Info("tender ingested",
		zap.Uint("tender_id", tender.ID),
		zap.String("title", tender.Title),
		zap.Bool("has_deadline", tender.DeadlineDate != nil),
	)
	return s.toDTO(tender), true, nil
}

// Get returns a tender with its criteria
func (s *TenderService) Get(ctx context.Context, id uint) (*domain.TenderDTO, error) {
	tender, err := s.getTender(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toDTO(tender), nil
}

// Enrich updates the enrichable fields of a tender. Any change bumps the tender version and
// invalidates its cached scores.
func (s *TenderService) Enrich(ctx context.Context, id uint, req *domain.EnrichTenderRequest) (*domain.TenderDTO, error) {
	fields := make(map[string]interface{})
	if req.Description != nil {
		fields["description"] = textnorm.NormalizeText(*req.Description)
	}
	if req.EvaluationCriteriaText != nil {
		fields["evaluation_criteria_text"] = textnorm.NormalizeText(*req.EvaluationCriteriaText)
	}
	if req.TenderType != nil {
		fields["tender_type"] = strings.TrimSpace(*req.TenderType)
	}
	if req.DeadlineDate != nil {
		if strings.TrimSpace(*req.DeadlineDate) == "" {
			fields["deadline_date"] = nil
		} else {
			deadline := textnorm.ParseDate(*req.DeadlineDate)
			if deadline == nil {
				return nil, fmt.Errorf("%w: unrecognized deadline date %q", ErrInvalidInput, *req.DeadlineDate)
			}
			fields["deadline_date"] = *deadline
		}
	}

	if len(fields) == 0 {
		return s.Get(ctx, id)
	}

	if err := s.tenderRepo.UpdateEnrichment(ctx, id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTenderNotFound
		}
		return nil, fmt.Errorf("failed to enrich tender: %w", err)
	}
	s.invalidate(ctx, id)

	logger.WithTender(s.logger, id).Info("tender enriched", zap.Int("fields", len(fields)))
	return s.Get(ctx, id)
}

// AddCriterion attaches a weighted criterion to a tender
func (s *TenderService) AddCriterion(ctx context.Context, tenderID uint, req *domain.AddCriterionRequest) (*domain.CriterionDTO, error) {
	name := textnorm.CollapseSpaces(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: criterion name is required", ErrInvalidInput)
	}
	if req.Weight <= 0 {
		return nil, ErrInvalidWeight
	}

	criterion := &domain.StructuredCriterion{
		TenderID:    tenderID,
		Name:        name,
		Weight:      req.Weight,
		Description: strings.TrimSpace(req.Description),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		tenderRepo := repository.NewTenderRepository(tx)
		if _, err := tenderRepo.GetByID(ctx, tenderID); err != nil {
			return err
		}
		if err := repository.NewCriterionRepository(tx).Create(ctx, criterion); err != nil {
			return err
		}
		return tenderRepo.BumpVersion(ctx, tenderID)
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrTenderNotFound
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, ErrDuplicateCriterion
		}
		return nil, fmt.Errorf("failed to add criterion: %w", err)
	}
	s.invalidate(ctx, tenderID)

	dto := mapper.ToCriterionDTO(criterion)
	return &dto, nil
}

// RemoveCriterion deletes a criterion of a tender
func (s *TenderService) RemoveCriterion(ctx context.Context, tenderID, criterionID uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := repository.NewCriterionRepository(tx).Delete(ctx, tenderID, criterionID); err != nil {
			return err
		}
		return repository.NewTenderRepository(tx).BumpVersion(ctx, tenderID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCriterionNotFound
		}
		return fmt.Errorf("failed to remove criterion: %w", err)
	}
	s.invalidate(ctx, tenderID)
	return nil
}

// ListCriteria returns the criteria of a tender in creation order
func (s *TenderService) ListCriteria(ctx context.Context, tenderID uint) ([]domain.CriterionDTO, error) {
	if _, err := s.getTender(ctx, tenderID); err != nil {
		return nil, err
	}
	criteria, err := s.criterionRepo.ListByTender(ctx, tenderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list criteria: %w", err)
	}
	dtos := make([]domain.CriterionDTO, len(criteria))
	for i := range criteria {
		dtos[i] = mapper.ToCriterionDTO(&criteria[i])
	}
	return dtos, nil
}

// ListOpen returns tenders that are not expired on today
func (s *TenderService) ListOpen(ctx context.Context, today time.Time) ([]domain.TenderDTO, error) {
	tenders, err := s.tenderRepo.ListOpen(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to list open tenders: %w", err)
	}
	dtos := make([]domain.TenderDTO, len(tenders))
	for i := range tenders {
		dtos[i] = mapper.ToTenderDTO(&tenders[i], today)
	}
	return dtos, nil
}

// List returns a page of tenders
func (s *TenderService) List(ctx context.Context, page, pageSize int) (*domain.PaginatedResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}

	tenders, total, err := s.tenderRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenders: %w", err)
	}

	today := s.now()
	dtos := make([]domain.TenderDTO, len(tenders))
	for i := range tenders {
		dtos[i] = mapper.ToTenderDTO(&tenders[i], today)
	}

	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}

func (s *TenderService) getTender(ctx context.Context, id uint) (*domain.Tender, error) {
	tender, err := s.tenderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTenderNotFound
		}
		return nil, fmt.Errorf("failed to get tender: %w", err)
	}
	return tender, nil
}

// invalidate drops cached scores of a tender. The version bump already makes them
// unreachable, so a cache failure is only logged.
func (s *TenderService) invalidate(ctx context.Context, tenderID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateTender(ctx, tenderID); err != nil {
		logger.WithTender(s.logger, tenderID).Warn("failed to invalidate score cache", zap.Error(err))
	}
}

func (s *TenderService) toDTO(tender *domain.Tender) *domain.TenderDTO {
	dto := mapper.ToTenderDTO(tender, s.now())
	return &dto
}
