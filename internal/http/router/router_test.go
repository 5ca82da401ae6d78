package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/richat-partners/staffing-api/internal/auth"
	"github.com/richat-partners/staffing-api/internal/config"
	"github.com/richat-partners/staffing-api/internal/cvparser"
	"github.com/richat-partners/staffing-api/internal/cvrender"
	"github.com/richat-partners/staffing-api/internal/domain"
	"github.com/richat-partners/staffing-api/internal/http/handler"
	"github.com/richat-partners/staffing-api/internal/http/middleware"
	"github.com/richat-partners/staffing-api/internal/http/router"
	"github.com/richat-partners/staffing-api/internal/matching"
	"github.com/richat-partners/staffing-api/internal/repository"
	"github.com/richat-partners/staffing-api/internal/service"
	"github.com/richat-partners/staffing-api/internal/storage"
	"github.com/richat-partners/staffing-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAPIKey = "test-admin-key"

const uploadedCV = `AMINATA BA
Consultante Data
Email : aminata.ba@example.mr
Tél : +222 22 33 44 55

FORMATION
2010 - 2015
Master en informatique
Université de Nouakchott

EXPÉRIENCE PROFESSIONNELLE
2015 - 2024 Data engineer chez Mauritel

COMPÉTENCES
Python, Django, PostgreSQL

LANGUES
Français : courant
`

type staticConverter struct{ text string }

func (c staticConverter) ConvertToText(context.Context, string, string, []byte) (string, error) {
	return c.text, nil
}

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	mediaRoot := t.TempDir()

	cfg := &config.Config{
		App:       config.AppConfig{Name: "test", Environment: "test"},
		ApiKey:    config.ApiKeyConfig{Value: testAPIKey},
		Media:     config.MediaConfig{Root: mediaRoot, URL: "/media"},
		Storage:   config.StorageConfig{Mode: "local", MaxUploadSizeMB: 1},
		RateLimit: config.RateLimitConfig{Enabled: false},
		Security:  config.SecurityConfig{ContentTypeNosniff: true},
	}

	store, err := storage.NewLocalStorage(mediaRoot)
	require.NoError(t, err)
	cache := matching.NewMemoryScoreCache()

	consultantRepo := repository.NewConsultantRepository(db)
	tenderRepo := repository.NewTenderRepository(db)

	notifications := service.NewNotificationService(repository.NewNotificationRepository(db), consultantRepo, nil, logger)
	extractor := cvparser.NewExtractor(cvparser.WithDocConverter(staticConverter{text: uploadedCV}))
	consultants := service.NewConsultantService(consultantRepo, repository.NewCompetenceRepository(db),
		repository.NewDocumentRepository(db), extractor, store, db, logger)
	consultants.SetScoreCache(cache)
	tenders := service.NewTenderService(tenderRepo, repository.NewCriterionRepository(db), cache, db, logger)
	matcher := service.NewMatchingService(consultantRepo, tenderRepo, repository.NewMatchRepository(db), cache, logger)
	lifecycle := service.NewMatchLifecycleService(db, notifications, logger)
	cvs := service.NewStandardizedCVService(consultantRepo, repository.NewStandardizedCVRepository(db),
		cvrender.NewPDFRenderer(), store, notifications, cfg.Media.URL, false, logger)

	rt := router.NewRouter(cfg, logger, db,
		auth.NewMiddleware(&cfg.ApiKey, logger),
		middleware.NewRateLimiter(&cfg.RateLimit, logger),
		router.Handlers{
			Tender:         handler.NewTenderHandler(tenders, logger),
			Consultant:     handler.NewConsultantHandler(consultants, cfg.Storage.MaxUploadSizeMB, logger),
			Match:          handler.NewMatchHandler(matcher, lifecycle, logger),
			StandardizedCV: handler.NewStandardizedCVHandler(cvs, logger),
			Notification:   handler.NewNotificationHandler(notifications, logger),
		},
	)
	return &testServer{t: t, handler: rt.Setup()}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	s.t.Helper()
	if strings.HasPrefix(req.URL.Path, "/api/") && req.Header.Get(auth.APIKeyHeader) == "" {
		req.Header.Set(auth.APIKeyHeader, testAPIKey)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func (s *testServer) json(method, path string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return s.do(req)
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func uploadRequest(t *testing.T, path, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// ============================================================================
// Health and authentication
// ============================================================================

func TestRouter_HealthIsPublic(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))

	rr = s.do(httptest.NewRequest(http.MethodGet, "/health/db", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "healthy", decode[map[string]interface{}](t, rr)["status"])
}

func TestRouter_APIRequiresKey(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tenders", nil)
	req.Header.Set(auth.APIKeyHeader, "wrong")
	assert.Equal(t, http.StatusUnauthorized, s.do(req).Code)

	assert.Equal(t, http.StatusOK, s.json(http.MethodGet, "/api/v1/tenders", nil).Code)
}

// ============================================================================
// Error mapping
// ============================================================================

func TestRouter_ErrorResponses(t *testing.T) {
	s := newTestServer(t)

	rr := s.json(http.MethodGet, "/api/v1/tenders/999", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, domain.ErrorTypeNotFound, decode[domain.APIError](t, rr).Type)

	rr = s.json(http.MethodGet, "/api/v1/tenders/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.json(http.MethodPost, "/api/v1/consultants", map[string]string{"firstName": "Sidi", "email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	apiErr := decode[domain.APIError](t, rr)
	assert.Equal(t, domain.ErrorTypeValidation, apiErr.Type)
	assert.Contains(t, apiErr.Errors, "lastName")
	assert.Contains(t, apiErr.Errors, "email")

	body := map[string]string{"firstName": "Sidi", "lastName": "Cheikh", "email": "sidi@example.mr"}
	require.Equal(t, http.StatusCreated, s.json(http.MethodPost, "/api/v1/consultants", body).Code)
	rr = s.json(http.MethodPost, "/api/v1/consultants", body)
	assert.Equal(t, http.StatusConflict, rr.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/consultants", strings.NewReader("{"))
	assert.Equal(t, http.StatusBadRequest, s.do(req).Code)

	rr = s.json(http.MethodGet, "/api/v1/consultants/1/notifications?kind=UNKNOWN", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// ============================================================================
// Full staffing flow
// ============================================================================

func TestRouter_StaffingFlow(t *testing.T) {
	s := newTestServer(t)

	// tender ingestion is idempotent
	ingest := map[string]interface{}{
		"title":         "Plateforme de données",
		"client":        "Ministère du Numérique",
		"deadline_date": "31/12/2099",
		"description":   "Développement Python Django et PostgreSQL",
		"source_url":    "https://tenders.example.mr/data",
	}
	rr := s.json(http.MethodPost, "/api/v1/tenders", ingest)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	tender := decode[domain.TenderDTO](t, rr)
	assert.Equal(t, http.StatusOK, s.json(http.MethodPost, "/api/v1/tenders", ingest).Code)

	rr = s.json(http.MethodPost, fmt.Sprintf("/api/v1/tenders/%d/criteria", tender.ID), map[string]interface{}{"name": "Python", "weight": 2})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = s.json(http.MethodPost, fmt.Sprintf("/api/v1/tenders/%d/criteria", tender.ID), map[string]interface{}{"name": "Django", "weight": 0})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// consultant onboarding
	rr = s.json(http.MethodPost, "/api/v1/consultants", map[string]string{
		"firstName":      "Aminata",
		"lastName":       "Ba",
		"email":          "aminata.ba@example.mr",
		"availableFrom":  "2025-01-01",
		"availableUntil": "2099-12-31",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	consultant := decode[domain.ConsultantDTO](t, rr)
	consultantPath := fmt.Sprintf("/api/v1/consultants/%d", consultant.ID)

	rr = s.do(uploadRequest(t, consultantPath+"/cv", "cv_aminata.doc", []byte("word document")))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	ingested := decode[service.CVIngestionResult](t, rr)
	assert.Subset(t, ingested.SkillsAdded, []string{"Python", "Django", "PostgreSQL"})

	rr = s.do(uploadRequest(t, consultantPath+"/cv", "notes.txt", []byte("plain text")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	require.Equal(t, http.StatusOK, s.json(http.MethodPost, consultantPath+"/approve", nil).Code)

	// matching and validation
	rr = s.json(http.MethodPost, fmt.Sprintf("/api/v1/tenders/%d/matches", tender.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	batch := decode[domain.BatchResultDTO](t, rr)
	require.Equal(t, 1, batch.Count)
	match := batch.Matches[0]

	rr = s.json(http.MethodGet, fmt.Sprintf("/api/v1/tenders/%d/score/%d", tender.ID, consultant.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, match.Score, decode[matching.Breakdown](t, rr).Score)

	rr = s.json(http.MethodPost, fmt.Sprintf("/api/v1/matches/%d/validate", match.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	outcome := decode[domain.ValidationOutcomeDTO](t, rr)
	assert.True(t, outcome.Changed)
	require.NotNil(t, outcome.Mission)
	assert.Equal(t, "2099-12-31", outcome.Mission.EndDate)

	rr = s.json(http.MethodGet, consultantPath+"/notifications/count", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 2, decode[domain.UnreadCountDTO](t, rr).Count)

	rr = s.json(http.MethodPut, consultantPath+"/notifications/read-all", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	// standardized CV
	rr = s.json(http.MethodPost, consultantPath+"/standardized-cvs", nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	cv := decode[domain.StandardizedCVDTO](t, rr)
	assert.True(t, strings.HasPrefix(cv.URL, "/media/standardized_cvs/CV_Richat_Aminata_Ba_"))
	assert.Equal(t, cv.URL, rr.Header().Get("Location"))

	rr = s.do(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/standardized-cvs/%d/download", cv.ID), nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF-")))

	rr = s.do(httptest.NewRequest(http.MethodGet, cv.URL, nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	// deletion cascades
	assert.Equal(t, http.StatusNoContent, s.json(http.MethodDelete, consultantPath, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.json(http.MethodGet, consultantPath, nil).Code)

	rr = s.json(http.MethodGet, fmt.Sprintf("/api/v1/tenders/%d/matches", tender.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[[]domain.MatchResultDTO](t, rr))
}
