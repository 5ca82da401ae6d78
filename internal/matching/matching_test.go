package matching_test

import (
	"testing"
	"time"

	"github.com/richat-partners/staffing-api/internal/domain"
	"github.com/richat-partners/staffing-api/internal/matching"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func consultant(from, until *time.Time) *domain.Consultant {
	return &domain.Consultant{
		PrimaryDomain:  domain.DomainDigital,
		ExpertiseLevel: domain.ExpertiseExpert,
		AvailableFrom:  from,
		AvailableUntil: until,
	}
}

func TestProjectWindow(t *testing.T) {
	start, end := matching.ProjectWindow(*date(2025, 6, 30))
	assert.Equal(t, *date(2025, 5, 31), start)
	assert.Equal(t, *date(2025, 8, 29), end)
	assert.Equal(t, 90, domain.DaysBetween(start, end))
}

func TestDateScore(t *testing.T) {
	deadline := date(2025, 6, 30)

	tests := []struct {
		name     string
		from     *time.Time
		until    *time.Time
		deadline *time.Time
		want     float64
	}{
		{"no deadline is neutral", date(2025, 1, 1), date(2025, 2, 1), nil, 50},
		{"full coverage", date(2025, 5, 1), date(2025, 9, 30), deadline, 100},
		{"exact window", date(2025, 5, 31), date(2025, 8, 29), deadline, 100},
		{"near miss before window", date(2025, 1, 1), date(2025, 5, 20), deadline, 25 * (1 - 11.0/15)},
		{"near miss after window", date(2025, 9, 3), date(2025, 12, 31), deadline, 25 * (1 - 5.0/15)},
		{"far before window", date(2024, 1, 1), date(2025, 3, 1), deadline, 0},
		{"gap of fifteen days", date(2025, 1, 1), date(2025, 5, 16), deadline, 0},
		{"high coverage", date(2025, 6, 10), date(2025, 12, 31), deadline, 85 + (81.0/91-0.8)/2*100},
		{"low coverage", date(2025, 1, 1), date(2025, 6, 14), deadline, 15.0 / 91 * 85},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := consultant(tt.from, tt.until)
			tender := &domain.Tender{DeadlineDate: tt.deadline}
			assert.InDelta(t, tt.want, matching.DateScore(c, tender), 1e-9)
		})
	}
}

func TestDateScore_NearMissScenario(t *testing.T) {
	c := consultant(date(2025, 1, 1), date(2025, 5, 20))
	tender := &domain.Tender{DeadlineDate: date(2025, 6, 30)}

	assert.InDelta(t, 6.67, matching.DateScore(c, tender), 0.005)
}

func TestDateScore_WithoutAvailability(t *testing.T) {
	c := consultant(nil, nil)
	tender := &domain.Tender{DeadlineDate: date(2025, 6, 30)}
	assert.Zero(t, matching.DateScore(c, tender))
}

func TestDateScore_InvariantUnderTranslation(t *testing.T) {
	base := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	windows := [][2]int{{-60, -35}, {-40, 10}, {-20, 80}, {-31, 61}, {70, 120}, {-10, 40}}

	for _, shift := range []int{-400, -17, 0, 3, 29, 365} {
		for _, w := range windows {
			from := base.AddDate(0, 0, w[0])
			until := base.AddDate(0, 0, w[1])
			ref := matching.DateScore(consultant(&from, &until), &domain.Tender{DeadlineDate: &base})

			sFrom := from.AddDate(0, 0, shift)
			sUntil := until.AddDate(0, 0, shift)
			sDeadline := base.AddDate(0, 0, shift)
			got := matching.DateScore(consultant(&sFrom, &sUntil), &domain.Tender{DeadlineDate: &sDeadline})

			assert.InDelta(t, ref, got, 1e-9, "shift %d window %v", shift, w)
		}
	}
}

func TestSkillsScore_CriteriaScenario(t *testing.T) {
	c := consultant(nil, nil)
	c.Competences = []domain.Competence{
		{Name: "Python", Level: 4},
		{Name: "Django", Level: 3},
	}
	tender := &domain.Tender{
		Criteria: []domain.StructuredCriterion{
			{Name: "Python", Weight: 2},
			{Name: "Django", Weight: 1},
		},
	}

	b := matching.SkillsScore(c, tender)

	assert.Equal(t, "criteria", b.CompetenceBasis)
	assert.InDelta(t, 2.0/3*70*0.94+1.0/3*70*0.88, b.CompetencePoints, 1e-9)
	assert.Equal(t, 15.0, b.DomainPoints)
	assert.Equal(t, 15.0, b.ExpertisePoints)
	assert.Equal(t, 100.0, b.SkillsScore)
}

func TestSkillsScore_MinedSkills(t *testing.T) {
	c := consultant(nil, nil)
	c.ExpertiseLevel = domain.ExpertiseIntermediate
	c.Competences = []domain.Competence{{Name: "Python", Level: 3}, {Name: "Docker", Level: 3}}
	tender := &domain.Tender{Description: "Plateforme Python, Docker et Kubernetes pour un ministère"}

	b := matching.SkillsScore(c, tender)

	assert.Equal(t, "mined", b.CompetenceBasis)
	assert.Equal(t, domain.DomainDigital, b.DetectedDomain)
	assert.InDelta(t, 70*2.0/3, b.CompetencePoints, 1e-9)
	assert.InDelta(t, (15+10+70*2.0/3)*1.1, b.SkillsScore, 0.005)
}

func TestSkillsScore_InsufficientData(t *testing.T) {
	c := consultant(nil, nil)
	c.PrimaryDomain = domain.DomainFinance
	c.ExpertiseLevel = domain.ExpertiseBeginner

	b := matching.SkillsScore(c, &domain.Tender{Description: "Appel d'offres"})

	assert.Equal(t, "default", b.CompetenceBasis)
	assert.Equal(t, 8.0, b.DomainPoints)
	assert.Equal(t, 5.0, b.ExpertisePoints)
	assert.Equal(t, 38.0, b.SkillsScore)
}

func TestSkillsScore_DomainConfidence(t *testing.T) {
	c := consultant(nil, nil)
	c.PrimaryDomain = domain.DomainEnergy

	b := matching.SkillsScore(c, &domain.Tender{Description: "Kubernetes"})

	assert.Equal(t, domain.DomainDigital, b.DetectedDomain)
	assert.InDelta(t, 1.5, b.DomainPoints, 1e-9)
}

func TestSkillsScore_Floor(t *testing.T) {
	c := consultant(nil, nil)
	c.PrimaryDomain = domain.DomainEnergy
	c.ExpertiseLevel = ""
	tender := &domain.Tender{Criteria: []domain.StructuredCriterion{{Name: "Revit", Weight: 1}}}

	b := matching.SkillsScore(c, tender)

	assert.Zero(t, b.CompetencePoints)
	assert.Equal(t, 15.0, b.SkillsScore)
}

func TestScore_CombinesWithFixedWeights(t *testing.T) {
	c := consultant(date(2025, 5, 1), date(2025, 9, 30))
	c.Competences = []domain.Competence{{Name: "Python", Level: 5}}
	tender := &domain.Tender{
		DeadlineDate: date(2025, 6, 30),
		Criteria:     []domain.StructuredCriterion{{Name: "Python", Weight: 1}},
	}

	b := matching.Score(c, tender)

	require.Equal(t, 100.0, b.DateScore)
	assert.Equal(t, 100.0, b.SkillsScore)
	assert.Equal(t, 100.0, b.Score)
}

func TestScore_AlwaysInRangeWithTwoDecimals(t *testing.T) {
	levels := []domain.ExpertiseLevel{domain.ExpertiseBeginner, domain.ExpertiseIntermediate, domain.ExpertiseExpert, domain.ExpertiseSenior}
	for i, lvl := range levels {
		for offset := -120; offset <= 120; offset += 13 {
			from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
			until := from.AddDate(0, 0, 20+i*30)
			c := consultant(&from, &until)
			c.ExpertiseLevel = lvl
			c.Competences = []domain.Competence{{Name: "Comptabilité", Level: i + 1}, {Name: "Python 3", Level: 2}}
			tender := &domain.Tender{
				DeadlineDate: date(2025, 6, 30),
				Description:  "Audit financier, comptabilité, fiscalité et trésorerie",
			}

			b := matching.Score(c, tender)
			assert.GreaterOrEqual(t, b.Score, 0.0)
			assert.LessOrEqual(t, b.Score, 100.0)
			assert.InDelta(t, b.Score, float64(int64(b.Score*100+0.5))/100, 1e-9)
		}
	}
}
