// Package testutil provides database fixtures shared by package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/richat-partners/staffing-api/internal/database"
	"github.com/richat-partners/staffing-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory SQLite database with every model migrated.
// The database lives until the test ends.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err, "Failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps the shared in-memory database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// Date returns midnight UTC of the given day
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DatePtr returns a pointer to Date(year, month, day)
func DatePtr(year int, month time.Month, day int) *time.Time {
	d := Date(year, month, day)
	return &d
}

// CreateTestConsultant inserts an eligible Digital consultant available during 2025
func CreateTestConsultant(t *testing.T, db *gorm.DB, email string, competences ...domain.Competence) *domain.Consultant {
	t.Helper()
	consultant := &domain.Consultant{
		FirstName:      "Test",
		LastName:       "Consultant",
		Email:          email,
		AvailableFrom:  DatePtr(2025, 1, 1),
		AvailableUntil: DatePtr(2025, 12, 31),
		PrimaryDomain:  domain.DomainDigital,
		ExpertiseLevel: domain.ExpertiseExpert,
		EducationLevel: domain.EducationBacPlus5,
		Validated:      true,
		Status:         domain.ConsultantStatusActive,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(consultant).Error)

	for i := range competences {
		competences[i].ConsultantID = consultant.ID
		competences[i].NameKey = domain.NameKey(competences[i].Name)
		require.NoError(t, db.Create(&competences[i]).Error)
	}
	consultant.Competences = competences
	return consultant
}

// CreateTestTender inserts a tender with the given deadline and optional criteria
func CreateTestTender(t *testing.T, db *gorm.DB, title string, deadline *time.Time, criteria ...domain.StructuredCriterion) *domain.Tender {
	t.Helper()
	tender := &domain.Tender{
		Title:        title,
		Client:       "Ministère du Numérique",
		DeadlineDate: deadline,
		Description:  "Développement d'une plateforme web en Python et Django avec PostgreSQL et Docker.",
		SourceURL:    "https://tenders.example.mr/" + uuid.New().String(),
		Version:      1,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(tender).Error)

	for i := range criteria {
		criteria[i].TenderID = tender.ID
		criteria[i].NameKey = domain.NameKey(criteria[i].Name)
		require.NoError(t, db.Create(&criteria[i]).Error)
	}
	tender.Criteria = criteria
	return tender
}
