package service_test

import (
	"context"
	"testing"

	"github.com/richat-partners/staffing-api/internal/domain"
	"github.com/richat-partners/staffing-api/internal/matching"
	"github.com/richat-partners/staffing-api/internal/service"
	"github.com/richat-partners/staffing-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTenderService_IngestIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := &domain.IngestTenderRequest{
		Title:           "  Audit   du système d'information ",
		Client:          "Banque Centrale de Mauritanie",
		PublicationDate: "1er décembre 2024",
		DeadlineDate:    "15 janvier 2025",
		Description:     "Audit SI et cybersécurité",
		Documents:       map[string]interface{}{"tdr": "https://example.mr/tdr.pdf"},
		SourceURL:       "https://tenders.example.mr/audit-si",
	}

	first, created, err := f.tenders.Ingest(ctx, req)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Audit du système d'information", first.Title)
	require.NotNil(t, first.PublicationDate)
	assert.Equal(t, "2024-12-01", *first.PublicationDate)
	require.NotNil(t, first.DeadlineDate)
	assert.Equal(t, "2025-01-15", *first.DeadlineDate)
	assert.Equal(t, 1, first.Version)
	assert.False(t, first.IsExpired)
	require.NotNil(t, first.DaysRemaining)
	assert.Equal(t, 14, *first.DaysRemaining)

	second, created, err := f.tenders.Ingest(ctx, req)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(1), f.count(t, &domain.Tender{}, "1 = 1"))

	other := *req
	other.SourceURL = "https://other.example.mr/audit-si"
	third, created, err := f.tenders.Ingest(ctx, &other)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, third.ID)
}

func TestTenderService_IngestUnparseableDatesAreDropped(t *testing.T) {
	f := newFixture(t)

	dto, _, err := f.tenders.Ingest(context.Background(), &domain.IngestTenderRequest{
		Title:        "Étude de marché",
		DeadlineDate: "bientôt",
	})
	require.NoError(t, err)
	assert.Nil(t, dto.DeadlineDate)
	assert.Nil(t, dto.DaysRemaining)
	assert.False(t, dto.IsExpired)

	_, _, err = f.tenders.Ingest(context.Background(), &domain.IngestTenderRequest{Title: "   "})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestTenderService_EnrichBumpsVersionAndInvalidatesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tender := testutil.CreateTestTender(t, f.db, "ERP Finances", nil)
	require.NoError(t, f.cache.Set(ctx, matching.CacheKey{TenderID: tender.ID, TenderVersion: 1, ConsultantID: 1}, matching.Breakdown{Score: 50}))

	description := "Mise en place d'un ERP SAP pour la comptabilité publique"
	deadline := "30/06/2025"
	dto, err := f.tenders.Enrich(ctx, tender.ID, &domain.EnrichTenderRequest{Description: &description, DeadlineDate: &deadline})
	require.NoError(t, err)

	assert.Equal(t, 2, dto.Version)
	assert.Equal(t, description, dto.Description)
	assert.Equal(t, "2025-06-30", *dto.DeadlineDate)
	assert.Zero(t, f.cache.Len())

	unchanged, err := f.tenders.Enrich(ctx, tender.ID, &domain.EnrichTenderRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, unchanged.Version)

	bad := "someday"
	_, err = f.tenders.Enrich(ctx, tender.ID, &domain.EnrichTenderRequest{DeadlineDate: &bad})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = f.tenders.Enrich(ctx, 9999, &domain.EnrichTenderRequest{Description: &description})
	assert.ErrorIs(t, err, service.ErrTenderNotFound)
}

func TestTenderService_Criteria(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tender := testutil.CreateTestTender(t, f.db, "Portail citoyen", nil)

	python, err := f.tenders.AddCriterion(ctx, tender.ID, &domain.AddCriterionRequest{Name: "Python", Weight: 2})
	require.NoError(t, err)
	_, err = f.tenders.AddCriterion(ctx, tender.ID, &domain.AddCriterionRequest{Name: "Django", Weight: 1})
	require.NoError(t, err)

	_, err = f.tenders.AddCriterion(ctx, tender.ID, &domain.AddCriterionRequest{Name: " python ", Weight: 3})
	assert.ErrorIs(t, err, service.ErrDuplicateCriterion)

	_, err = f.tenders.AddCriterion(ctx, tender.ID, &domain.AddCriterionRequest{Name: "Docker", Weight: 0})
	assert.ErrorIs(t, err, service.ErrInvalidWeight)

	_, err = f.tenders.AddCriterion(ctx, 9999, &domain.AddCriterionRequest{Name: "Docker", Weight: 1})
	assert.ErrorIs(t, err, service.ErrTenderNotFound)

	criteria, err := f.tenders.ListCriteria(ctx, tender.ID)
	require.NoError(t, err)
	require.Len(t, criteria, 2)
	assert.Equal(t, "Python", criteria[0].Name)

	require.NoError(t, f.tenders.RemoveCriterion(ctx, tender.ID, python.ID))
	assert.ErrorIs(t, f.tenders.RemoveCriterion(ctx, tender.ID, python.ID), service.ErrCriterionNotFound)

	got, err := f.tenders.Get(ctx, tender.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Version, "two additions and one removal")
	require.Len(t, got.Criteria, 1)
	assert.Equal(t, "Django", got.Criteria[0].Name)
}

func TestTenderService_ListOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.CreateTestTender(t, f.db, "Expiré", testutil.DatePtr(2024, 12, 1))
	open := testutil.CreateTestTender(t, f.db, "Ouvert", testutil.DatePtr(2025, 3, 1))

	tenders, err := f.tenders.ListOpen(ctx, fixedNow)
	require.NoError(t, err)
	require.Len(t, tenders, 1)
	assert.Equal(t, open.ID, tenders[0].ID)
	assert.Equal(t, 59, *tenders[0].DaysRemaining)

	page, err := f.tenders.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
}
