package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/richat-partners/staffing-api/internal/cvparser"
	"github.com/richat-partners/staffing-api/internal/domain"
	"github.com/richat-partners/staffing-api/internal/expertise"
	"github.com/richat-partners/staffing-api/internal/logger"
	"github.com/richat-partners/staffing-api/internal/mapper"
	"github.com/richat-partners/staffing-api/internal/matching"
	"github.com/richat-partners/staffing-api/internal/repository"
	"github.com/richat-partners/staffing-api/internal/skillminer"
	"github.com/richat-partners/staffing-api/internal/storage"
	"github.com/richat-partners/staffing-api/internal/textnorm"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultCompetenceLevel is assigned to skills discovered in a CV
const DefaultCompetenceLevel = 3

const cvUploadPrefix = "cv_uploads"

var cvContentTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// CVIngestionResult reports what a CV upload changed on the consultant
type CVIngestionResult struct {
	Consultant  domain.ConsultantDTO    `json:"consultant"`
	SkillsAdded []string                `json:"skillsAdded"`
	Extraction  cvparser.ExtractionInfo `json:"extraction"`
	Expertise   expertise.Breakdown     `json:"expertise"`
}

// ConsultantService handles consultant onboarding, CV ingestion and expertise scoring
type ConsultantService struct {
	consultantRepo *repository.ConsultantRepository
	competenceRepo *repository.CompetenceRepository
	documentRepo   *repository.DocumentRepository
	extractor      *cvparser.Extractor
	storage        storage.Storage
	cache          matching.ScoreCache
	db             *gorm.DB
	logger         *zap.Logger
	now            func() time.Time
}

// NewConsultantService creates a new ConsultantService instance
func NewConsultantService(
	consultantRepo *repository.ConsultantRepository,
	competenceRepo *repository.CompetenceRepository,
	documentRepo *repository.DocumentRepository,
	extractor *cvparser.Extractor,
	store storage.Storage,
	db *gorm.DB,
	logger *zap.Logger,
) *ConsultantService {
	return &ConsultantService{
		consultantRepo: consultantRepo,
		competenceRepo: competenceRepo,
		documentRepo:   documentRepo,
		extractor:      extractor,
		storage:        store,
		db:             db,
		logger:         logger,
		now:            time.Now,
	}
}

// SetClock overrides the time source
func (s *ConsultantService) SetClock(now func() time.Time) {
	s.now = now
}

// SetScoreCache sets the score cache emptied whenever a consultant changes
func (s *ConsultantService) SetScoreCache(cache matching.ScoreCache) {
	s.cache = cache
}

// Create onboards a consultant. New consultants are pending until approved.
func (s *ConsultantService) Create(ctx context.Context, req *domain.CreateConsultantRequest) (*domain.ConsultantDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if _, err := s.consultantRepo.GetByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	phone := ""
	if strings.TrimSpace(req.Phone) != "" {
		cleaned, ok := textnorm.CleanPhone(req.Phone)
		if !ok {
			return nil, ErrInvalidPhone
		}
		phone = cleaned
	}

	from, until, err := parseAvailability(req.AvailableFrom, req.AvailableUntil)
	if err != nil {
		return nil, err
	}

	primary := req.PrimaryDomain
	if primary == "" {
		primary = domain.DomainDigital
	}
	if !primary.IsValid() {
		return nil, fmt.Errorf("%w: unknown domain %q", ErrInvalidInput, primary)
	}

	consultant := &domain.Consultant{
		FirstName:      personName(req.FirstName),
		LastName:       personName(req.LastName),
		Email:          email,
		Phone:          phone,
		Country:        strings.TrimSpace(req.Country),
		City:           strings.TrimSpace(req.City),
		AvailableFrom:  from,
		AvailableUntil: until,
		PrimaryDomain:  primary,
		ExpertiseLevel: domain.ExpertiseBeginner,
		EducationLevel: domain.EducationBac,
		Status:         domain.ConsultantStatusPending,
	}
	breakdown := expertise.Score(expertise.InputFor(consultant, nil))
	consultant.ExpertiseScore = breakdown.RoundedTotal()
	consultant.ExpertiseLevel = breakdown.Level

	if err := s.consultantRepo.Create(ctx, consultant); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create consultant: %w", err)
	}

	s.logger.Info("consultant created", zap.Uint("consultant_id", consultant.ID), zap.String("email", consultant.Email))

	dto := mapper.ToConsultantDTO(consultant)
	return &dto, nil
}

// Get returns a consultant with its competences
func (s *ConsultantService) Get(ctx context.Context, id uint) (*domain.ConsultantDTO, error) {
	consultant, err := s.getConsultant(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToConsultantDTO(consultant)
	return &dto, nil
}

// List returns a page of consultants with optional status and domain filters
func (s *ConsultantService) List(ctx context.Context, page, pageSize int, status domain.ConsultantStatus, primaryDomain domain.Domain) (*domain.PaginatedResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}

	consultants, total, err := s.consultantRepo.List(ctx, page, pageSize, status, primaryDomain)
	if err != nil {
		return nil, fmt.Errorf("failed to list consultants: %w", err)
	}

	dtos := make([]domain.ConsultantDTO, len(consultants))
	for i := range consultants {
		dtos[i] = mapper.ToConsultantDTO(&consultants[i])
	}

	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}

// UpdateAvailability sets both availability endpoints
func (s *ConsultantService) UpdateAvailability(ctx context.Context, id uint, req *domain.UpdateAvailabilityRequest) (*domain.ConsultantDTO, error) {
	from, until, err := parseAvailability(req.AvailableFrom, req.AvailableUntil)
	if err != nil {
		return nil, err
	}
	if from == nil {
		return nil, fmt.Errorf("%w: both availability dates are required", ErrInvalidInput)
	}

	if err := s.update(ctx, id, map[string]interface{}{"avail_start": *from, "avail_end": *until}); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Approve validates a consultant and activates it
func (s *ConsultantService) Approve(ctx context.Context, id uint) (*domain.ConsultantDTO, error) {
	fields := map[string]interface{}{
		"validated": true,
		"status":    domain.ConsultantStatusActive,
	}
	if err := s.update(ctx, id, fields); err != nil {
		return nil, err
	}
	s.logger.Info("consultant approved", zap.Uint("consultant_id", id))
	return s.Get(ctx, id)
}

// SetStatus changes the lifecycle status of a consultant
func (s *ConsultantService) SetStatus(ctx context.Context, id uint, status domain.ConsultantStatus) (*domain.ConsultantDTO, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	if err := s.update(ctx, id, map[string]interface{}{"status": status}); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// AddCompetence adds a named competence and refreshes the expertise score
func (s *ConsultantService) AddCompetence(ctx context.Context, consultantID uint, req *domain.AddCompetenceRequest) (*domain.CompetenceDTO, error) {
	name := textnorm.CollapseSpaces(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: competence name is required", ErrInvalidInput)
	}
	if req.Level < 1 || req.Level > 5 {
		return nil, ErrInvalidLevel
	}
	if _, err := s.getConsultant(ctx, consultantID); err != nil {
		return nil, err
	}

	competence := &domain.Competence{ConsultantID: consultantID, Name: name, Level: req.Level}
	if err := s.competenceRepo.Create(ctx, competence); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateCompetence
		}
		return nil, fmt.Errorf("failed to add competence: %w", err)
	}

	if _, err := s.RecomputeExpertise(ctx, consultantID); err != nil {
		logger.WithConsultant(s.logger, consultantID).Warn("failed to recompute expertise", zap.Error(err))
		s.invalidateScores(ctx, consultantID)
	}

	dto := mapper.ToCompetenceDTO(competence)
	return &dto, nil
}

// RemoveCompetence deletes a competence of a consultant
func (s *ConsultantService) RemoveCompetence(ctx context.Context, consultantID, competenceID uint) error {
	if err := s.competenceRepo.Delete(ctx, consultantID, competenceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCompetenceNotFound
		}
		return fmt.Errorf("failed to remove competence: %w", err)
	}
	if _, err := s.RecomputeExpertise(ctx, consultantID); err != nil {
		logger.WithConsultant(s.logger, consultantID).Warn("failed to recompute expertise", zap.Error(err))
		s.invalidateScores(ctx, consultantID)
	}
	return nil
}

// ListCompetences returns the competences of a consultant ordered by name
func (s *ConsultantService) ListCompetences(ctx context.Context, consultantID uint) ([]domain.CompetenceDTO, error) {
	if _, err := s.getConsultant(ctx, consultantID); err != nil {
		return nil, err
	}
	competences, err := s.competenceRepo.ListByConsultant(ctx, consultantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list competences: %w", err)
	}
	return mapper.ToCompetenceDTOs(competences), nil
}

// RecomputeExpertise scores the consultant from its stored facts and persists score and level
func (s *ConsultantService) RecomputeExpertise(ctx context.Context, id uint) (*expertise.Breakdown, error) {
	consultant, err := s.getConsultant(ctx, id)
	if err != nil {
		return nil, err
	}

	breakdown := expertise.Score(expertise.InputFor(consultant, consultant.Competences))
	fields := map[string]interface{}{
		"expertise_score": breakdown.RoundedTotal(),
		"expertise_level": breakdown.Level,
	}
	if err := s.update(ctx, id, fields); err != nil {
		return nil, err
	}

	s.logger.Debug("expertise recomputed",
		zap.Uint("consultant_id", id),
		zap.Float64("score", breakdown.Total),
		zap.String("level", string(breakdown.Level)),
	)
	return &breakdown, nil
}

// IngestCV extracts a CV file, keeps the original, records discovered skills and refreshes
// the profile signals and expertise of the consultant. An unreadable or unsupported file
// leaves the consultant untouched and returns an error wrapping both ErrInvalidInput and
// the *cvparser.ExtractionError.
func (s *ConsultantService) IngestCV(ctx context.Context, consultantID uint, filename string, data []byte) (*CVIngestionResult, error) {
	consultant, err := s.getConsultant(ctx, consultantID)
	if err != nil {
		return nil, err
	}
	log := logger.WithConsultant(s.logger, consultantID).With(zap.String("filename", filename))

	parsed, extractErr := s.extractor.Extract(ctx, filename, data)
	if extractErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, extractErr)
	}

	var storageKey string
	if s.storage != nil {
		storageKey = storage.UniqueKey(cvUploadPrefix, filename)
		if _, err := s.storage.Put(ctx, storageKey, contentTypeFor(filename), bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to store CV file: %w", err)
		}
	}

	snapshot, err := json.Marshal(parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to encode parsed CV: %w", err)
	}

	now := s.now()
	signals := cvparser.DeriveSignals(parsed, now)
	mined := skillminer.Mine(parsed.Text, &consultant.PrimaryDomain)

	var added []string
	err = s.db.Transaction(func(tx *gorm.DB) error {
		competenceRepo := repository.NewCompetenceRepository(tx)
		for _, skill := range parsed.Skills {
			_, err := competenceRepo.GetByName(ctx, consultantID, skill)
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err := competenceRepo.Create(ctx, &domain.Competence{
				ConsultantID: consultantID,
				Name:         skill,
				Level:        DefaultCompetenceLevel,
			}); err != nil {
				return err
			}
			added = append(added, skill)
		}

		competences, err := competenceRepo.ListByConsultant(ctx, consultantID)
		if err != nil {
			return err
		}

		consultant.YearsExperience = signals.YearsExperience
		consultant.EducationLevel = signals.EducationLevel
		consultant.CertificationsCount = signals.CertificationsCount
		consultant.ProjectsCount = signals.ProjectsCount
		consultant.HasLeadership = signals.HasLeadership
		consultant.HasInternational = signals.HasInternational
		consultant.PrimaryDomain = mined.PrimaryDomain
		breakdown := expertise.Score(expertise.InputFor(consultant, competences))

		fields := map[string]interface{}{
			"years_experience":     signals.YearsExperience,
			"education_level":      signals.EducationLevel,
			"certifications_count": signals.CertificationsCount,
			"projects_count":       signals.ProjectsCount,
			"has_leadership":       signals.HasLeadership,
			"has_international":    signals.HasInternational,
			"primary_domain":       mined.PrimaryDomain,
			"expertise_score":      breakdown.RoundedTotal(),
			"expertise_level":      breakdown.Level,
			"cv_filename":          filepath.Base(filename),
			"parsed_cv":            datatypes.JSON(snapshot),
		}
		if signals.ProfessionalTitle != "" {
			fields["professional_title"] = signals.ProfessionalTitle
		}
		if signals.ProfileSummary != "" {
			fields["profile_summary"] = signals.ProfileSummary
		}
		if consultant.Phone == "" && parsed.Identity.Phone != "" {
			fields["phone"] = parsed.Identity.Phone
		}
		if err := repository.NewConsultantRepository(tx).UpdateFields(ctx, consultantID, fields); err != nil {
			return err
		}

		if storageKey != "" {
			return repository.NewDocumentRepository(tx).Create(ctx, &domain.Document{
				ConsultantID: &consultantID,
				Title:        filepath.Base(filename),
				StorageKey:   storageKey,
				ContentType:  contentTypeFor(filename),
			})
		}
		return nil
	})
	if err != nil {
		if storageKey != "" {
			if delErr := s.storage.Delete(ctx, storageKey); delErr != nil {
				log.Warn("failed to remove stored CV after rollback", zap.Error(delErr))
			}
		}
		return nil, fmt.Errorf("failed to ingest CV: %w", err)
	}
	s.invalidateScores(ctx, consultantID)

	updated, err := s.getConsultant(ctx, consultantID)
	if err != nil {
		return nil, err
	}
	breakdown := expertise.Score(expertise.InputFor(updated, updated.Competences))

	log.Info("CV ingested",
		zap.Int("skills_found", len(parsed.Skills)),
		zap.Int("skills_added", len(added)),
		zap.String("primary_domain", string(mined.PrimaryDomain)),
		zap.Int("expertise_score", updated.ExpertiseScore),
	)

	if added == nil {
		added = []string{}
	}
	return &CVIngestionResult{
		Consultant:  mapper.ToConsultantDTO(updated),
		SkillsAdded: added,
		Extraction:  parsed.Extraction,
		Expertise:   breakdown,
	}, nil
}

// Delete removes a consultant with its competences, matches, missions, notifications and
// standardized CVs. Documents it owned are kept without owner. Stored CV artifacts are
// removed once the rows are gone.
func (s *ConsultantService) Delete(ctx context.Context, id uint) error {
	var keys []string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := repository.NewConsultantRepository(tx).GetByID(ctx, id); err != nil {
			return err
		}

		cvRepo := repository.NewStandardizedCVRepository(tx)
		cvs, err := cvRepo.ListByConsultant(ctx, id)
		if err != nil {
			return err
		}
		for _, cv := range cvs {
			keys = append(keys, cv.StorageKey, sidecarKey(cv.StorageKey))
		}

		if err := repository.NewCompetenceRepository(tx).DeleteByConsultant(ctx, id); err != nil {
			return err
		}
		if err := repository.NewNotificationRepository(tx).DeleteByConsultant(ctx, id); err != nil {
			return err
		}
		if err := repository.NewMatchRepository(tx).DeleteByConsultant(ctx, id); err != nil {
			return err
		}
		if err := repository.NewMissionRepository(tx).DeleteByConsultant(ctx, id); err != nil {
			return err
		}
		if err := cvRepo.DeleteByConsultant(ctx, id); err != nil {
			return err
		}
		if _, err := repository.NewDocumentRepository(tx).Detach(ctx, id); err != nil {
			return err
		}
		return repository.NewConsultantRepository(tx).Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrConsultantNotFound
		}
		return fmt.Errorf("failed to delete consultant: %w", err)
	}
	s.invalidateScores(ctx, id)

	if s.storage != nil {
		for _, key := range keys {
			if err := s.storage.Delete(ctx, key); err != nil {
				s.logger.Warn("failed to remove standardized CV file", zap.String("key", key), zap.Error(err))
			}
		}
	}

	s.logger.Info("consultant deleted", zap.Uint("consultant_id", id), zap.Int("files", len(keys)))
	return nil
}

func (s *ConsultantService) getConsultant(ctx context.Context, id uint) (*domain.Consultant, error) {
	consultant, err := s.consultantRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConsultantNotFound
		}
		return nil, fmt.Errorf("failed to get consultant: %w", err)
	}
	return consultant, nil
}

func (s *ConsultantService) update(ctx context.Context, id uint, fields map[string]interface{}) error {
	if err := s.consultantRepo.UpdateFields(ctx, id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrConsultantNotFound
		}
		return fmt.Errorf("failed to update consultant: %w", err)
	}
	s.invalidateScores(ctx, id)
	return nil
}

// invalidateScores drops cached match scores of a consultant. A cache failure is logged;
// the entries then expire with the cache TTL.
func (s *ConsultantService) invalidateScores(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateConsultant(ctx, id); err != nil {
		logger.WithConsultant(s.logger, id).Warn("failed to invalidate score cache", zap.Error(err))
	}
}

// parseAvailability parses an optional availability window. Both dates must be set together
// and the start must be strictly before the end.
func parseAvailability(fromStr, untilStr string) (*time.Time, *time.Time, error) {
	fromStr, untilStr = strings.TrimSpace(fromStr), strings.TrimSpace(untilStr)
	if fromStr == "" && untilStr == "" {
		return nil, nil, nil
	}
	if fromStr == "" || untilStr == "" {
		return nil, nil, fmt.Errorf("%w: availability dates must be set together", ErrInvalidInput)
	}

	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: invalid availability start %q", ErrInvalidInput, fromStr)
	}
	until, err := time.Parse("2006-01-02", untilStr)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: invalid availability end %q", ErrInvalidInput, untilStr)
	}
	if !from.Before(until) {
		return nil, nil, ErrInvalidAvailability
	}
	return &from, &until, nil
}

func personName(s string) string {
	s = textnorm.CollapseSpaces(textnorm.NormalizeText(s))
	if textnorm.IsUpper(s) {
		return textnorm.TitleCase(s)
	}
	return s
}

func contentTypeFor(filename string) string {
	if ct, ok := cvContentTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}

func sidecarKey(pdfKey string) string {
	return strings.TrimSuffix(pdfKey, filepath.Ext(pdfKey)) + ".json"
}
