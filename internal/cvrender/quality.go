package cvrender

import (
	"math"

	"github.com/richat-partners/staffing-api/internal/cvparser"
)

// QualityScore rates from 0 to 100 how much of a CV could be extracted
func QualityScore(parsed *cvparser.ParsedCV) float64 {
	if parsed == nil {
		return 0
	}
	id := parsed.Identity
	checks := []bool{
		id.FirstName != "" || id.LastName != "",
		id.Email != "",
		id.Phone != "",
		parsed.Summary != "" || id.Title != "",
		len(parsed.Education) > 0,
		len(parsed.Experience) > 0,
		len(parsed.Skills) > 0,
		len(parsed.Languages) > 0,
	}
	return ratio(checks)
}

// ComplianceScore rates from 0 to 100 how complete a layout is against the firm template
func ComplianceScore(l Layout) float64 {
	present := make(map[string]bool, len(l.Sections))
	for _, s := range l.Sections {
		present[s.Title] = len(s.Rows) > 0
	}
	checks := []bool{
		l.BrandTitle == BrandTitle,
		l.FirstName != "" && l.LastName != "",
		len(l.Info) >= 3,
		l.ProfessionalTitle != "",
		l.Summary != "",
		present[SectionEducation],
		present[SectionExperience],
		present[SectionSkills],
		present[SectionLanguages],
	}
	return ratio(checks)
}

func ratio(checks []bool) float64 {
	ok := 0
	for _, c := range checks {
		if c {
			ok++
		}
	}
	return math.Round(float64(ok)/float64(len(checks))*1000) / 10
}
