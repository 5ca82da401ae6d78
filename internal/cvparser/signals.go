package cvparser

import (
	"strings"
	"time"

	"github.com/richat-partners/staffing-api/internal/domain"
	"github.com/richat-partners/staffing-api/internal/textnorm"
)

// Signals are the consultant attributes inferred from a parsed CV
type Signals struct {
	YearsExperience     int
	EducationLevel      domain.EducationLevel
	CertificationsCount int
	ProjectsCount       int
	HasLeadership       bool
	HasInternational    bool
	ProfessionalTitle   string
	ProfileSummary      string
}

// educationKeywords are checked from the highest level down
var educationKeywords = []struct {
	level    domain.EducationLevel
	keywords []string
}{
	{domain.EducationBacPlus8, []string{"doctorat", "phd", "ph.d", "doctorate", "bac+8", "bac + 8"}},
	{domain.EducationBacPlus5, []string{
		"master", "mastere", "msc", "mba", "diplome d'ingenieur", "ingenieur d'etat", "dess", "dea",
		"bac+5", "bac + 5", "m2",
	}},
	{domain.EducationBacPlus4, []string{"maitrise", "bac+4", "bac + 4", "m1"}},
	{domain.EducationBacPlus3, []string{"licence", "bachelor", "bac+3", "bac + 3", "bsc"}},
	{domain.EducationBacPlus2, []string{"bts", "dut", "deug", "deust", "bac+2", "bac + 2", "technicien superieur"}},
}

var leadershipKeywords = []string{
	"chef de projet", "chef d'equipe", "chef de service", "directeur", "directrice", "director", "manager",
	"responsable", "team lead", "tech lead", "lead", "head of", "coordinateur", "coordinatrice",
	"encadrement", "supervision", "superviseur",
}

var internationalKeywords = []string{
	"international", "internationale", "banque mondiale", "world bank", "union europeenne", "european union",
	"nations unies", "united nations", "pnud", "undp", "unicef", "afd", "usaid", "bad", "banque africaine",
	"giz", "fmi", "imf", "expatrie", "abroad", "a l'etranger",
}

// DeriveSignals infers consultant attributes from parsed. now bounds ongoing periods.
func DeriveSignals(parsed *ParsedCV, now time.Time) Signals {
	s := Signals{
		YearsExperience:     yearsOfExperience(parsed.Experience, now),
		EducationLevel:      educationLevel(parsed),
		CertificationsCount: len(parsed.Certifications),
		ProjectsCount:       len(parsed.Projects),
		ProfessionalTitle:   parsed.Identity.Title,
		ProfileSummary:      parsed.Summary,
	}
	if s.ProfessionalTitle == "" && len(parsed.Experience) > 0 {
		s.ProfessionalTitle = parsed.Experience[0].Role
	}

	var roles strings.Builder
	for _, e := range parsed.Experience {
		roles.WriteString(e.Role)
		roles.WriteString("\n")
		roles.WriteString(e.Description)
		roles.WriteString("\n")
	}
	roles.WriteString(parsed.Identity.Title)
	s.HasLeadership = containsAny(textnorm.Fold(roles.String()), leadershipKeywords)
	s.HasInternational = containsAny(textnorm.Fold(parsed.Text), internationalKeywords)
	return s
}

// yearsOfExperience spans from the earliest start to the latest end of all positions
func yearsOfExperience(entries []ExperienceEntry, now time.Time) int {
	first, last := 0, 0
	for _, e := range entries {
		if e.Period.Start == 0 {
			continue
		}
		if first == 0 || e.Period.Start < first {
			first = e.Period.Start
		}
		if end := e.Period.LastYear(now); end > last {
			last = end
		}
	}
	if first == 0 || last < first {
		return 0
	}
	return last - first
}

func educationLevel(parsed *ParsedCV) domain.EducationLevel {
	var b strings.Builder
	for _, e := range parsed.Education {
		b.WriteString(e.Diploma)
		b.WriteString("\n")
		b.WriteString(e.Institution)
		b.WriteString("\n")
	}
	text := textnorm.Fold(b.String())
	if strings.TrimSpace(text) == "" {
		text = textnorm.Fold(parsed.Text)
	}
	for _, ek := range educationKeywords {
		if containsAny(text, ek.keywords) {
			return ek.level
		}
	}
	return domain.EducationBac
}
