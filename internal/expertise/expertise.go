// Package expertise computes the multi-factor expertise score of a consultant.
package expertise

import (
	"math"

	"github.com/richat-partners/staffing-api/internal/domain"
)

const (
	experienceWeight  = 0.40
	educationWeight   = 0.25
	skillsWeight      = 0.20
	qualitativeWeight = 0.15
)

var educationPoints = map[domain.EducationLevel]float64{
	domain.EducationBac:      20,
	domain.EducationBacPlus2: 35,
	domain.EducationBacPlus3: 50,
	domain.EducationBacPlus4: 65,
	domain.EducationBacPlus5: 80,
	domain.EducationBacPlus8: 100,
}

// Input carries the consultant facts the score depends on
type Input struct {
	YearsExperience     int
	EducationLevel      domain.EducationLevel
	CompetenceLevels    []int
	CertificationsCount int
	ProjectsCount       int
	HasLeadership       bool
	HasInternational    bool
}

// InputFor collects the scoring input from a consultant and its competences
func InputFor(c *domain.Consultant, competences []domain.Competence) Input {
	levels := make([]int, 0, len(competences))
	for _, comp := range competences {
		levels = append(levels, comp.Level)
	}
	return Input{
		YearsExperience:     c.YearsExperience,
		EducationLevel:      c.EducationLevel,
		CompetenceLevels:    levels,
		CertificationsCount: c.CertificationsCount,
		ProjectsCount:       c.ProjectsCount,
		HasLeadership:       c.HasLeadership,
		HasInternational:    c.HasInternational,
	}
}

// Breakdown holds the four component scores (each 0-100), the weighted total and the level
type Breakdown struct {
	Experience  float64               `json:"experience"`
	Education   float64               `json:"education"`
	Skills      float64               `json:"skills"`
	Qualitative float64               `json:"qualitative"`
	Total       float64               `json:"total"`
	Level       domain.ExpertiseLevel `json:"level"`
}

// RoundedTotal returns the total as the integer stored on the consultant
func (b Breakdown) RoundedTotal() int {
	return int(math.Round(b.Total))
}

// Score computes the expertise breakdown for in
func Score(in Input) Breakdown {
	b := Breakdown{
		Experience:  experienceScore(in.YearsExperience),
		Education:   educationScore(in.EducationLevel),
		Skills:      skillsScore(in.CompetenceLevels, in.CertificationsCount),
		Qualitative: qualitativeScore(in.ProjectsCount, in.HasLeadership, in.HasInternational),
	}
	total := b.Experience*experienceWeight +
		b.Education*educationWeight +
		b.Skills*skillsWeight +
		b.Qualitative*qualitativeWeight
	b.Total = clamp(math.Round(total*10)/10)
	b.Level = LevelFor(b.Total)
	return b
}

// LevelFor maps a score to its expertise level
func LevelFor(score float64) domain.ExpertiseLevel {
	switch {
	case score >= 85:
		return domain.ExpertiseSenior
	case score >= 70:
		return domain.ExpertiseExpert
	case score >= 45:
		return domain.ExpertiseIntermediate
	default:
		return domain.ExpertiseBeginner
	}
}

func experienceScore(years int) float64 {
	switch {
	case years >= 15:
		return 100
	case years >= 8:
		return 85
	case years >= 3:
		return 60
	case years >= 1:
		return 35
	default:
		return 10
	}
}

func educationScore(level domain.EducationLevel) float64 {
	if p, ok := educationPoints[level]; ok {
		return p
	}
	return educationPoints[domain.EducationBac]
}

func skillsScore(levels []int, certifications int) float64 {
	score := 0.0
	if len(levels) > 0 {
		sum := 0
		for _, l := range levels {
			sum += l
		}
		mean := float64(sum) / float64(len(levels))
		score = mean / 5 * 80
	}
	score += math.Min(20, 5*float64(certifications))
	return clamp(score)
}

func qualitativeScore(projects int, leadership, international bool) float64 {
	score := 0.0
	switch {
	case projects >= 10:
		score = 40
	case projects >= 5:
		score = 25
	case projects >= 2:
		score = 15
	}
	if leadership {
		score += 30
	}
	if international {
		score += 30
	}
	return clamp(score)
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
