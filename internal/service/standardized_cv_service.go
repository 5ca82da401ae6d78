package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/richat-partners/staffing-api/internal/cvparser"
	"github.com/richat-partners/staffing-api/internal/cvrender"
	"github.com/richat-partners/staffing-api/internal/domain"
	"github.com/richat-partners/staffing-api/internal/logger"
	"github.com/richat-partners/staffing-api/internal/mapper"
	"github.com/richat-partners/staffing-api/internal/repository"
	"github.com/richat-partners/staffing-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StandardizedCVPrefix is the storage folder of generated CVs
const StandardizedCVPrefix = "standardized_cvs"

// CVSidecar is the metadata file written next to a standardized CV
type CVSidecar struct {
	ConsultantID          uint                    `json:"consultant_id"`
	Filename              string                  `json:"filename"`
	GeneratedAt           string                  `json:"generated_at"`
	QualityScore          float64                 `json:"quality_score"`
	FormatComplianceScore float64                 `json:"format_compliance_score"`
	Sections              []string                `json:"sections"`
	Extraction            cvparser.ExtractionInfo `json:"extraction"`
	SHA256                string                  `json:"sha256"`
}

// StandardizedCVService renders consultants' parsed CVs into the firm template and keeps
// the generated artifacts
type StandardizedCVService struct {
	consultantRepo *repository.ConsultantRepository
	cvRepo         *repository.StandardizedCVRepository
	renderer       cvrender.Renderer
	storage        storage.Storage
	notifications  *NotificationService
	mediaURL       string
	writeSidecar   bool
	logger         *zap.Logger
	now            func() time.Time
}

// NewStandardizedCVService creates a new StandardizedCVService instance.
// notifications may be nil.
func NewStandardizedCVService(
	consultantRepo *repository.ConsultantRepository,
	cvRepo *repository.StandardizedCVRepository,
	renderer cvrender.Renderer,
	store storage.Storage,
	notifications *NotificationService,
	mediaURL string,
	writeSidecar bool,
	logger *zap.Logger,
) *StandardizedCVService {
	return &StandardizedCVService{
		consultantRepo: consultantRepo,
		cvRepo:         cvRepo,
		renderer:       renderer,
		storage:        store,
		notifications:  notifications,
		mediaURL:       strings.TrimRight(mediaURL, "/"),
		writeSidecar:   writeSidecar,
		logger:         logger,
		now:            time.Now,
	}
}

// SetClock overrides the time source
func (s *StandardizedCVService) SetClock(now func() time.Time) {
	s.now = now
}

// Generate renders the current parsed CV of a consultant and stores the PDF. Nothing is
// recorded when rendering or storing fails.
func (s *StandardizedCVService) Generate(ctx context.Context, consultantID uint) (*domain.StandardizedCVDTO, error) {
	consultant, err := s.consultantRepo.GetByID(ctx, consultantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConsultantNotFound
		}
		return nil, fmt.Errorf("failed to get consultant: %w", err)
	}
	if len(consultant.ParsedCV) == 0 {
		return nil, ErrConsultantIncomplete
	}

	parsed := cvparser.Empty()
	if err := json.Unmarshal(consultant.ParsedCV, parsed); err != nil {
		return nil, fmt.Errorf("failed to decode parsed CV: %w", err)
	}

	layout := cvrender.BuildLayout(parsed, cvrender.ProfileFromConsultant(consultant))
	generatedAt := s.now().UTC().Truncate(time.Second)
	filename := cvrender.Filename(layout.FirstName, layout.LastName, generatedAt)
	key := StandardizedCVPrefix + "/" + filename
	log := logger.WithConsultant(s.logger, consultantID).With(zap.String("filename", filename))

	// The filename has one-second resolution; an existing artifact keeps its file.
	if _, err := s.cvRepo.GetByFilename(ctx, filename); err == nil {
		return nil, fmt.Errorf("standardized CV %s already exists: %w", filename, ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check standardized CV: %w", err)
	}

	pdf, err := s.renderer.Render(layout, generatedAt)
	if err != nil {
		return nil, err
	}

	size, err := s.storage.Put(ctx, key, "application/pdf", bytes.NewReader(pdf))
	if err != nil {
		return nil, fmt.Errorf("failed to store standardized CV: %w", err)
	}
	sum := sha256.Sum256(pdf)
	digest := hex.EncodeToString(sum[:])

	if s.writeSidecar {
		sidecar := CVSidecar{
			ConsultantID:          consultantID,
			Filename:              filename,
			GeneratedAt:           generatedAt.Format(time.RFC3339),
			QualityScore:          cvrender.QualityScore(parsed),
			FormatComplianceScore: cvrender.ComplianceScore(layout),
			Sections:              layout.SectionTitles(),
			Extraction:            parsed.Extraction,
			SHA256:                digest,
		}
		if err := s.putSidecar(ctx, sidecarKey(key), sidecar); err != nil {
			log.Warn("failed to write CV sidecar", zap.Error(err))
		}
	}

	cv := &domain.StandardizedCV{
		ConsultantID: consultantID,
		Filename:     filename,
		StorageKey:   key,
		GeneratedAt:  generatedAt,
		SizeBytes:    size,
		SHA256:       digest,
	}
	if err := s.cvRepo.Create(ctx, cv); err != nil {
		// A concurrent request recorded the same filename first and owns the file now.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("standardized CV %s already exists: %w", filename, ErrConflict)
		}
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			log.Warn("failed to remove orphan standardized CV", zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to record standardized CV: %w", err)
	}

	log.Info("standardized CV generated", zap.Int64("size_bytes", size), zap.Int("sections", len(layout.Sections)))

	if s.notifications != nil {
		_, err := s.notifications.Create(ctx, &domain.Notification{
			ConsultantID: consultantID,
			Kind:         domain.NotificationCVStandardized,
			Title:        "CV standardisé disponible",
			Body:         fmt.Sprintf("Votre CV au format Richat Partners est disponible : %s", filename),
			Priority:     domain.PriorityLow,
		})
		if err != nil {
			log.Warn("failed to notify CV standardization", zap.Error(err))
		}
	}

	dto := mapper.ToStandardizedCVDTO(cv, s.URL(cv))
	return &dto, nil
}

// Current returns the most recently generated CV of a consultant
func (s *StandardizedCVService) Current(ctx context.Context, consultantID uint) (*domain.StandardizedCVDTO, error) {
	cv, err := s.cvRepo.Current(ctx, consultantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStandardizedCVNotFound
		}
		return nil, fmt.Errorf("failed to get standardized CV: %w", err)
	}
	dto := mapper.ToStandardizedCVDTO(cv, s.URL(cv))
	return &dto, nil
}

// List returns every generated CV of a consultant, newest first
func (s *StandardizedCVService) List(ctx context.Context, consultantID uint) ([]domain.StandardizedCVDTO, error) {
	cvs, err := s.cvRepo.ListByConsultant(ctx, consultantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list standardized CVs: %w", err)
	}
	dtos := make([]domain.StandardizedCVDTO, len(cvs))
	for i := range cvs {
		dtos[i] = mapper.ToStandardizedCVDTO(&cvs[i], s.URL(&cvs[i]))
	}
	return dtos, nil
}

// Open returns the PDF content of a generated CV and counts the download.
// The caller must close the reader.
func (s *StandardizedCVService) Open(ctx context.Context, id uint) (io.ReadCloser, *domain.StandardizedCVDTO, error) {
	cv, err := s.cvRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrStandardizedCVNotFound
		}
		return nil, nil, fmt.Errorf("failed to get standardized CV: %w", err)
	}

	reader, err := s.storage.Download(ctx, cv.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrStandardizedCVNotFound
		}
		return nil, nil, fmt.Errorf("failed to open standardized CV: %w", err)
	}

	if err := s.cvRepo.IncrementDownloads(ctx, cv.ID); err != nil {
		s.logger.Warn("failed to count download", zap.Uint("standardized_cv_id", cv.ID), zap.Error(err))
	} else {
		cv.DownloadCount++
	}

	dto := mapper.ToStandardizedCVDTO(cv, s.URL(cv))
	return reader, &dto, nil
}

// URL returns the public address of a generated CV
func (s *StandardizedCVService) URL(cv *domain.StandardizedCV) string {
	return s.mediaURL + "/" + cv.StorageKey
}

func (s *StandardizedCVService) putSidecar(ctx context.Context, key string, sidecar CVSidecar) error {
	raw, err := json.MarshalIndent(sidecar, "", "  ")
	if err != nil {
		return err
	}
	_, err = s.storage.Put(ctx, key, "application/json", bytes.NewReader(raw))
	return err
}
