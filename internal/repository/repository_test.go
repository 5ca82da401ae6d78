package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/richat-partners/staffing-api/internal/domain"
	"github.com/richat-partners/staffing-api/internal/repository"
	"github.com/richat-partners/staffing-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ============================================================================
// Competence
// ============================================================================

func TestCompetenceRepository_CaseInsensitiveUniqueness(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	consultant := testutil.CreateTestConsultant(t, db, "a@example.com")
	repo := repository.NewCompetenceRepository(db)

	require.NoError(t, repo.Create(ctx, &domain.Competence{ConsultantID: consultant.ID, Name: "Python", Level: 4}))
	err := repo.Create(ctx, &domain.Competence{ConsultantID: consultant.ID, Name: "  PYTHON ", Level: 2})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	found, err := repo.GetByName(ctx, consultant.ID, "python")
	require.NoError(t, err)
	assert.Equal(t, 4, found.Level)
}

// ============================================================================
// Tender
// ============================================================================

func TestTenderRepository_UpdateEnrichmentBumpsVersion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	tender := testutil.CreateTestTender(t, db, "Plateforme e-gov", nil)
	repo := repository.NewTenderRepository(db)

	require.NoError(t, repo.UpdateEnrichment(ctx, tender.ID, map[string]interface{}{"description": "Nouveau texte"}))
	require.NoError(t, repo.BumpVersion(ctx, tender.ID))

	got, err := repo.GetByID(ctx, tender.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Version)
	assert.Equal(t, "Nouveau texte", got.Description)

	assert.ErrorIs(t, repo.BumpVersion(ctx, 9999), gorm.ErrRecordNotFound)
}

func TestTenderRepository_ListOpen(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	expired := testutil.CreateTestTender(t, db, "Expiré", testutil.DatePtr(2025, 1, 10))
	today := testutil.CreateTestTender(t, db, "Aujourd'hui", testutil.DatePtr(2025, 2, 1))
	later := testutil.CreateTestTender(t, db, "Plus tard", testutil.DatePtr(2025, 3, 1))
	noDeadline := testutil.CreateTestTender(t, db, "Sans date", nil)

	open, err := repository.NewTenderRepository(db).ListOpen(ctx, time.Date(2025, 2, 1, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	ids := make([]uint, 0, len(open))
	for _, tender := range open {
		ids = append(ids, tender.ID)
	}
	assert.Equal(t, []uint{today.ID, later.ID, noDeadline.ID}, ids)
	assert.NotContains(t, ids, expired.ID)
}

func TestTenderRepository_FindBySource(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tender := testutil.CreateTestTender(t, db, "Audit SI", nil)
	repo := repository.NewTenderRepository(db)

	found, err := repo.FindBySource(context.Background(), "Audit SI", tender.SourceURL)
	require.NoError(t, err)
	assert.Equal(t, tender.ID, found.ID)

	_, err = repo.FindBySource(context.Background(), "Audit SI", "https://other")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

// ============================================================================
// Match
// ============================================================================

func TestMatchRepository_ListByTenderOrdering(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	tender := testutil.CreateTestTender(t, db, "Data platform", nil)
	repo := repository.NewMatchRepository(db)

	scores := []float64{61.5, 88.25, 61.5}
	var created []*domain.MatchResult
	for i, s := range scores {
		c := testutil.CreateTestConsultant(t, db, string(rune('a'+i))+"@example.com")
		m := &domain.MatchResult{ConsultantID: c.ID, TenderID: tender.ID, Score: s}
		require.NoError(t, repo.Create(ctx, m))
		created = append(created, m)
	}

	matches, err := repo.ListByTender(ctx, tender.ID)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, created[1].ID, matches[0].ID)
	assert.Equal(t, created[0].ID, matches[1].ID, "ties keep insertion order")
	assert.Equal(t, created[2].ID, matches[2].ID)

	err = repo.Create(ctx, &domain.MatchResult{ConsultantID: created[0].ConsultantID, TenderID: tender.ID})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestMatchRepository_SetValidatedIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	tender := testutil.CreateTestTender(t, db, "ERP", nil)
	consultant := testutil.CreateTestConsultant(t, db, "erp@example.com")
	repo := repository.NewMatchRepository(db)
	m := &domain.MatchResult{ConsultantID: consultant.ID, TenderID: tender.ID, Score: 70}
	require.NoError(t, repo.Create(ctx, m))

	changed, err := repo.SetValidated(ctx, m.ID, true)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.SetValidated(ctx, m.ID, true)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = repo.SetValidated(ctx, m.ID, false)
	require.NoError(t, err)
	assert.True(t, changed)
}

// ============================================================================
// Notification
// ============================================================================

func TestNotificationRepository_PriorityOrdering(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	consultant := testutil.CreateTestConsultant(t, db, "n@example.com")
	repo := repository.NewNotificationRepository(db)

	create := func(p domain.Priority, title string) *domain.Notification {
		n := &domain.Notification{ConsultantID: consultant.ID, Kind: domain.NotificationMissionUpdate, Title: title, Priority: p}
		require.NoError(t, repo.Create(ctx, n))
		return n
	}
	low := create(domain.PriorityLow, "low")
	high1 := create(domain.PriorityHigh, "high-1")
	normal := create(domain.PriorityNormal, "normal")
	high2 := create(domain.PriorityHigh, "high-2")

	list, total, err := repo.ListByConsultant(ctx, consultant.ID, 1, 20, false, "")
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	titles := make([]string, 0, len(list))
	for _, n := range list {
		titles = append(titles, n.Title)
	}
	assert.Equal(t, []string{high2.Title, high1.Title, normal.Title, low.Title}, titles)

	changed, err := repo.MarkAsRead(ctx, consultant.ID, high1.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = repo.MarkAsRead(ctx, consultant.ID, high1.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, changed)

	unread, err := repo.CountUnread(ctx, consultant.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, unread)

	unreadList, total, err := repo.ListByConsultant(ctx, consultant.ID, 1, 20, true, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, unreadList, 3)
}

// ============================================================================
// Standardized CV and documents
// ============================================================================

func TestStandardizedCVRepository_Current(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	consultant := testutil.CreateTestConsultant(t, db, "cv@example.com")
	repo := repository.NewStandardizedCVRepository(db)

	older := &domain.StandardizedCV{ConsultantID: consultant.ID, Filename: "a.pdf", StorageKey: "standardized_cvs/a.pdf", GeneratedAt: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
	newer := &domain.StandardizedCV{ConsultantID: consultant.ID, Filename: "b.pdf", StorageKey: "standardized_cvs/b.pdf", GeneratedAt: time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)}
	require.NoError(t, repo.Create(ctx, newer))
	require.NoError(t, repo.Create(ctx, older))

	current, err := repo.Current(ctx, consultant.ID)
	require.NoError(t, err)
	assert.Equal(t, "b.pdf", current.Filename)

	require.NoError(t, repo.IncrementDownloads(ctx, current.ID))
	require.NoError(t, repo.IncrementDownloads(ctx, current.ID))
	got, err := repo.GetByID(ctx, current.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.DownloadCount)

	byName, err := repo.GetByFilename(ctx, "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, older.ID, byName.ID)
	_, err = repo.GetByFilename(ctx, "missing.pdf")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDocumentRepository_Detach(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	consultant := testutil.CreateTestConsultant(t, db, "doc@example.com")
	repo := repository.NewDocumentRepository(db)
	require.NoError(t, repo.Create(ctx, &domain.Document{ConsultantID: &consultant.ID, Title: "Contrat"}))

	n, err := repo.Detach(ctx, consultant.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	unowned, err := repo.ListUnowned(ctx)
	require.NoError(t, err)
	require.Len(t, unowned, 1)
	assert.Nil(t, unowned[0].ConsultantID)
}
