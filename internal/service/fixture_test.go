package service_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/richat-partners/staffing-api/internal/cvparser"
	"github.com/richat-partners/staffing-api/internal/cvrender"
	"github.com/richat-partners/staffing-api/internal/domain"
	"github.com/richat-partners/staffing-api/internal/events"
	"github.com/richat-partners/staffing-api/internal/matching"
	"github.com/richat-partners/staffing-api/internal/repository"
	"github.com/richat-partners/staffing-api/internal/service"
	"github.com/richat-partners/staffing-api/internal/storage"
	"github.com/richat-partners/staffing-api/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2025, 1, 1, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

const sampleCV = `CURRICULUM VITAE
MOHAMED SALEM OULD AHMED
Ingénieur Logiciel Senior
Email : M.Salem@Example.com
Tél : 00222 31 34 61 21

PROFIL
Ingénieur passionné par les plateformes de données.

FORMATION
2008 - 2013
Diplôme d'ingénieur en informatique
École Supérieure Polytechnique, Nouakchott

EXPÉRIENCE PROFESSIONNELLE
2016 - présent
Chef de projet Digital chez Richat Partners
Pilotage de projets financés par la Banque mondiale
2013 - 2016 Développeur Python - Mauritel

COMPÉTENCES
Python, Django, PostgreSQL, Docker
Gestion de projet

LANGUES
Français : courant
Anglais (avancé)

CERTIFICATIONS
- PMP
- AWS Certified Solutions Architect
`

// ============================================================================
// Fakes
// ============================================================================

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.NotificationEvent
	err    error
}

func (p *recordingPublisher) PublishNotification(_ context.Context, event events.NotificationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) kinds() []domain.NotificationKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	kinds := make([]domain.NotificationKind, 0, len(p.events))
	for _, e := range p.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

// textConverter serves a fixed text for legacy Word documents
type textConverter struct {
	text string
}

func (c *textConverter) ConvertToText(context.Context, string, string, []byte) (string, error) {
	return c.text, nil
}

// failingStorage rejects every write
type failingStorage struct{}

func (failingStorage) Put(context.Context, string, string, io.Reader) (int64, error) {
	return 0, io.ErrShortWrite
}

func (failingStorage) Download(context.Context, string) (io.ReadCloser, error) {
	return nil, storage.ErrNotFound
}

func (failingStorage) Delete(context.Context, string) error { return nil }

// ============================================================================
// Fixture
// ============================================================================

type fixture struct {
	db            *gorm.DB
	store         *storage.LocalStorage
	cache         *matching.MemoryScoreCache
	publisher     *recordingPublisher
	consultants   *service.ConsultantService
	tenders       *service.TenderService
	matching      *service.MatchingService
	lifecycle     *service.MatchLifecycleService
	notifications *service.NotificationService
	cvs           *service.StandardizedCVService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithStorage(t, nil)
}

func newFixtureWithStorage(t *testing.T, override storage.Storage) *fixture {
	t.Helper()

	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	var store storage.Storage = local
	if override != nil {
		store = override
	}

	f := &fixture{
		db:        db,
		store:     local,
		cache:     matching.NewMemoryScoreCache(),
		publisher: &recordingPublisher{},
	}

	consultantRepo := repository.NewConsultantRepository(db)
	tenderRepo := repository.NewTenderRepository(db)

	f.notifications = service.NewNotificationService(repository.NewNotificationRepository(db), consultantRepo, f.publisher, logger)
	f.notifications.SetClock(clock)

	extractor := cvparser.NewExtractor(cvparser.WithDocConverter(&textConverter{text: sampleCV}))
	f.consultants = service.NewConsultantService(
		consultantRepo,
		repository.NewCompetenceRepository(db),
		repository.NewDocumentRepository(db),
		extractor,
		store,
		db,
		logger,
	)
	f.consultants.SetClock(clock)
	f.consultants.SetScoreCache(f.cache)

	f.tenders = service.NewTenderService(tenderRepo, repository.NewCriterionRepository(db), f.cache, db, logger)
	f.tenders.SetClock(clock)

	f.matching = service.NewMatchingService(consultantRepo, tenderRepo, repository.NewMatchRepository(db), f.cache, logger)

	f.lifecycle = service.NewMatchLifecycleService(db, f.notifications, logger)
	f.lifecycle.SetClock(clock)

	f.cvs = service.NewStandardizedCVService(
		consultantRepo,
		repository.NewStandardizedCVRepository(db),
		cvrender.NewPDFRenderer(cvrender.WithCompression(false)),
		store,
		f.notifications,
		"/media/",
		true,
		logger,
	)
	f.cvs.SetClock(clock)

	return f
}

func (f *fixture) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}
