// Package matching scores consultants against tenders.
// Scoring is pure: callers load the consultant with its competences and the tender with its criteria.
package matching

import (
	"math"
	"time"

	"github.com/richat-partners/staffing-api/internal/domain"
	"github.com/richat-partners/staffing-api/internal/skillminer"
)

// Combination weights
const (
	DateWeight   = 0.3
	SkillsWeight = 0.7
)

const (
	neutralDateScore   = 50.0
	windowBeforeDays   = 30
	windowAfterDays    = 60
	nearMissDays       = 15
	nearMissMaxScore   = 25.0
	coverageThreshold  = 0.80
	coverageBaseScore  = 85.0
	domainMaxPoints    = 15.0
	domainCappedPoints = 12.0
	domainDefault      = 8.0
	competenceMax      = 70.0
	insufficientData   = 25.0
	minMinedSkills     = 3
	boostThreshold     = 70.0
	boostFactor        = 1.1
	skillsFloor        = 15.0
)

var expertisePoints = map[domain.ExpertiseLevel]float64{
	domain.ExpertiseSenior:       15,
	domain.ExpertiseExpert:       15,
	domain.ExpertiseIntermediate: 10,
	domain.ExpertiseBeginner:     5,
}

// Breakdown is the full result of scoring one (consultant, tender) pair
type Breakdown struct {
	Score            float64       `json:"score"`
	DateScore        float64       `json:"date_score"`
	SkillsScore      float64       `json:"skills_score"`
	DomainPoints     float64       `json:"domain_points"`
	ExpertisePoints  float64       `json:"expertise_points"`
	CompetencePoints float64       `json:"competence_points"`
	DetectedDomain   domain.Domain `json:"detected_domain"`
	// CompetenceBasis is "criteria", "mined" or "default"
	CompetenceBasis string `json:"competence_basis"`
}

// Score computes the combined score of c against t
func Score(c *domain.Consultant, t *domain.Tender) Breakdown {
	b := SkillsScore(c, t)
	b.DateScore = round2(DateScore(c, t))
	b.Score = round2(clamp(DateWeight*b.DateScore + SkillsWeight*b.SkillsScore))
	return b
}

// ProjectWindow returns the estimated project window derived from the tender deadline
func ProjectWindow(deadline time.Time) (start, end time.Time) {
	d := domain.DateOnly(deadline)
	return d.AddDate(0, 0, -windowBeforeDays), d.AddDate(0, 0, windowAfterDays)
}

// DateScore rates how well the consultant's availability covers the project window (0-100).
// Tenders without deadline score a neutral 50.
func DateScore(c *domain.Consultant, t *domain.Tender) float64 {
	if t.DeadlineDate == nil {
		return neutralDateScore
	}
	if !c.HasAvailability() {
		return 0
	}
	ps, pe := ProjectWindow(*t.DeadlineDate)
	as, ae := domain.DateOnly(*c.AvailableFrom), domain.DateOnly(*c.AvailableUntil)

	if ae.Before(ps) || as.After(pe) {
		gap := domain.DaysBetween(ae, ps)
		if g := domain.DaysBetween(pe, as); g > gap {
			gap = g
		}
		if gap > nearMissDays {
			return 0
		}
		return clamp(nearMissMaxScore * (1 - float64(gap)/nearMissDays))
	}

	if !as.After(ps) && !ae.Before(pe) {
		return 100
	}

	overlapStart, overlapEnd := ps, pe
	if as.After(overlapStart) {
		overlapStart = as
	}
	if ae.Before(overlapEnd) {
		overlapEnd = ae
	}
	overlap := domain.DaysBetween(overlapStart, overlapEnd) + 1
	total := domain.DaysBetween(ps, pe) + 1
	coverage := float64(overlap) / float64(total)
	if coverage >= coverageThreshold {
		return clamp(coverageBaseScore + (coverage-coverageThreshold)/2*100)
	}
	return clamp(coverage * coverageBaseScore)
}

// SkillsScore rates the fit between the consultant's profile and the tender (0-100).
// The returned breakdown has SkillsScore and its components set.
func SkillsScore(c *domain.Consultant, t *domain.Tender) Breakdown {
	var b Breakdown

	mined := skillminer.Mine(tenderText(t), nil)
	b.DetectedDomain = mined.PrimaryDomain
	switch {
	case mined.PrimaryDomain == c.PrimaryDomain:
		b.DomainPoints = domainMaxPoints
	case mined.Confidence > 0:
		b.DomainPoints = math.Min(domainCappedPoints, domainMaxPoints*mined.Confidence/10)
	default:
		b.DomainPoints = domainDefault
	}

	b.ExpertisePoints = expertisePoints[c.ExpertiseLevel]

	switch {
	case len(t.Criteria) > 0:
		b.CompetenceBasis = "criteria"
		b.CompetencePoints = criteriaPoints(t.Criteria, c.Competences)
	case len(mined.Skills) >= minMinedSkills:
		b.CompetenceBasis = "mined"
		b.CompetencePoints = minedPoints(mined.Skills, c.Competences)
	default:
		b.CompetenceBasis = "default"
		b.CompetencePoints = insufficientData
	}

	total := b.DomainPoints + b.ExpertisePoints + b.CompetencePoints
	if total > boostThreshold {
		total *= boostFactor
	}
	b.SkillsScore = round2(math.Max(skillsFloor, clamp(total)))
	return b
}

// criteriaPoints weighs every criterion by its share of the total weight and by the best
// level-attenuated similarity among the consultant's competences
func criteriaPoints(criteria []domain.StructuredCriterion, competences []domain.Competence) float64 {
	totalWeight := 0.0
	for _, cr := range criteria {
		if cr.Weight > 0 {
			totalWeight += cr.Weight
		}
	}
	if totalWeight == 0 {
		return 0
	}
	points := 0.0
	for _, cr := range criteria {
		if cr.Weight <= 0 {
			continue
		}
		best := 0.0
		for _, comp := range competences {
			if s := Similarity(cr.Name, comp.Name) * levelFactor(comp.Level); s > best {
				best = s
			}
		}
		points += cr.Weight / totalWeight * competenceMax * best
	}
	return math.Min(competenceMax, points)
}

// minedPoints is 70 times the mean best similarity of the tender's mined skills
func minedPoints(skills []string, competences []domain.Competence) float64 {
	sum := 0.0
	for _, skill := range skills {
		best := 0.0
		for _, comp := range competences {
			if s := Similarity(skill, comp.Name); s > best {
				best = s
			}
		}
		sum += best
	}
	return math.Min(competenceMax, competenceMax*sum/float64(len(skills)))
}

func levelFactor(level int) float64 {
	if level < 1 {
		level = 1
	}
	if level > 5 {
		level = 5
	}
	return 0.7 + 0.3*float64(level)/5
}

// tenderText is the free text mined for domain and skills
func tenderText(t *domain.Tender) string {
	if t.EvaluationCriteriaText == "" {
		return t.Description
	}
	return t.Description + "\n" + t.EvaluationCriteriaText
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
