// Package cvrender turns a parsed CV into the firm-branded "Richat CV" PDF.
package cvrender

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/richat-partners/staffing-api/internal/cvparser"
	"github.com/richat-partners/staffing-api/internal/domain"
	"github.com/richat-partners/staffing-api/internal/taxonomy"
	"github.com/richat-partners/staffing-api/internal/textnorm"
)

// BrandTitle heads every standardized CV
const BrandTitle = "RICHAT PARTNERS - CURRICULUM VITAE"

// Section titles, in rendering order
const (
	SectionEducation      = "FORMATION"
	SectionExperience     = "EXPÉRIENCE PROFESSIONNELLE"
	SectionSkills         = "COMPÉTENCES"
	SectionLanguages      = "LANGUES"
	SectionCertifications = "CERTIFICATIONS"
)

// Profile holds the consultant record values that take precedence over what was parsed
type Profile struct {
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	Country         string
	City            string
	Title           string
	Summary         string
	DateOfBirth     *time.Time
	PrimaryDomain   domain.Domain
	ExpertiseLevel  domain.ExpertiseLevel
	YearsExperience int
}

// ProfileFromConsultant builds the profile overrides of c
func ProfileFromConsultant(c *domain.Consultant) Profile {
	return Profile{
		FirstName:       c.FirstName,
		LastName:        c.LastName,
		Email:           c.Email,
		Phone:           c.Phone,
		Country:         c.Country,
		City:            c.City,
		Title:           c.ProfessionalTitle,
		Summary:         c.ProfileSummary,
		PrimaryDomain:   c.PrimaryDomain,
		ExpertiseLevel:  c.ExpertiseLevel,
		YearsExperience: c.YearsExperience,
	}
}

// InfoRow is one label/value line of the personal-info table
type InfoRow struct {
	Label string
	Value string
}

// Table is a bordered section table. Widths are fractions of the printable width.
type Table struct {
	Title   string
	Headers []string
	Widths  []float64
	Rows    [][]string
}

// Layout is the complete, renderer-independent content of a standardized CV
type Layout struct {
	BrandTitle        string
	FirstName         string
	LastName          string
	Info              []InfoRow
	ProfessionalTitle string
	Summary           string
	Sections          []Table
}

// SectionTitles lists the titles of the sections present in the layout
func (l Layout) SectionTitles() []string {
	titles := make([]string, 0, len(l.Sections))
	for _, s := range l.Sections {
		titles = append(titles, s.Title)
	}
	return titles
}

// BuildLayout merges parsed with the profile overrides. Sections without rows are left out.
func BuildLayout(parsed *cvparser.ParsedCV, profile Profile) Layout {
	if parsed == nil {
		parsed = cvparser.Empty()
	}
	id := parsed.Identity

	l := Layout{
		BrandTitle:        BrandTitle,
		FirstName:         firstNonEmpty(profile.FirstName, id.FirstName),
		LastName:          firstNonEmpty(profile.LastName, id.LastName),
		ProfessionalTitle: firstNonEmpty(profile.Title, id.Title),
		Summary:           firstNonEmpty(profile.Summary, parsed.Summary),
	}

	birth := profile.DateOfBirth
	if birth == nil {
		birth = id.DateOfBirth
	}
	location := strings.Trim(strings.TrimSpace(profile.City)+", "+strings.TrimSpace(profile.Country), ", ")

	rows := []InfoRow{
		{"Nom", strings.TrimSpace(l.FirstName + " " + l.LastName)},
		{"Email", firstNonEmpty(profile.Email, id.Email)},
		{"Téléphone", firstNonEmpty(profile.Phone, id.Phone)},
		{"Localisation", location},
	}
	if birth != nil {
		rows = append(rows, InfoRow{"Date de naissance", birth.Format("02/01/2006")})
	}
	primary := profile.PrimaryDomain
	if primary == "" {
		primary = parsed.PrimaryDomain
	}
	rows = append(rows,
		InfoRow{"Domaine", string(primary)},
		InfoRow{"Niveau d'expertise", string(profile.ExpertiseLevel)},
	)
	if profile.YearsExperience > 0 {
		rows = append(rows, InfoRow{"Expérience", fmt.Sprintf("%d ans", profile.YearsExperience)})
	}
	for _, r := range rows {
		if r.Value != "" {
			l.Info = append(l.Info, r)
		}
	}

	l.Sections = sections(parsed)
	return l
}

func sections(parsed *cvparser.ParsedCV) []Table {
	var out []Table

	if len(parsed.Education) > 0 {
		t := Table{Title: SectionEducation, Headers: []string{"Période", "Diplôme", "Établissement"}, Widths: []float64{0.2, 0.45, 0.35}}
		for _, e := range parsed.Education {
			t.Rows = append(t.Rows, []string{periodLabel(e.Period), e.Diploma, e.Institution})
		}
		out = append(out, t)
	}

	if len(parsed.Experience) > 0 {
		t := Table{Title: SectionExperience, Headers: []string{"Période", "Poste", "Employeur", "Description"}, Widths: []float64{0.16, 0.26, 0.22, 0.36}}
		for _, e := range parsed.Experience {
			t.Rows = append(t.Rows, []string{periodLabel(e.Period), e.Role, e.Employer, e.Description})
		}
		out = append(out, t)
	}

	if len(parsed.Skills) > 0 {
		t := Table{Title: SectionSkills, Headers: []string{"Domaine", "Compétences"}, Widths: []float64{0.25, 0.75}}
		for _, g := range groupSkills(parsed.Skills) {
			t.Rows = append(t.Rows, []string{g.label, strings.Join(g.skills, ", ")})
		}
		out = append(out, t)
	}

	if len(parsed.Languages) > 0 {
		t := Table{Title: SectionLanguages, Headers: []string{"Langue", "Niveau"}, Widths: []float64{0.5, 0.5}}
		for _, lang := range parsed.Languages {
			t.Rows = append(t.Rows, []string{lang.Name, lang.Level})
		}
		out = append(out, t)
	}

	if len(parsed.Certifications) > 0 {
		t := Table{Title: SectionCertifications, Headers: []string{"Certification"}, Widths: []float64{1}}
		for _, c := range parsed.Certifications {
			t.Rows = append(t.Rows, []string{c})
		}
		out = append(out, t)
	}

	return out
}

type skillGroup struct {
	label  string
	skills []string
}

// groupSkills buckets skills by taxonomy domain in domain order; unknown skills come last
func groupSkills(skills []string) []skillGroup {
	byDomain := make(map[domain.Domain][]string)
	var other []string
	for _, s := range skills {
		if d, ok := taxonomy.DomainOf(s); ok {
			byDomain[d] = append(byDomain[d], s)
			continue
		}
		other = append(other, s)
	}
	var groups []skillGroup
	for _, d := range domain.Domains() {
		if len(byDomain[d]) > 0 {
			groups = append(groups, skillGroup{label: string(d), skills: byDomain[d]})
		}
	}
	if len(other) > 0 {
		groups = append(groups, skillGroup{label: "Transverses", skills: other})
	}
	return groups
}

func periodLabel(p cvparser.Period) string {
	switch {
	case p.Start == 0:
		return p.Raw
	case p.Current:
		return strconv.Itoa(p.Start) + " - présent"
	case p.End == 0 || p.End == p.Start:
		return strconv.Itoa(p.Start)
	}
	return strconv.Itoa(p.Start) + " - " + strconv.Itoa(p.End)
}

// Filename builds CV_Richat_<First>_<Last>_<YYYYMMDD_HHMMSS>.pdf
func Filename(firstName, lastName string, t time.Time) string {
	return fmt.Sprintf("CV_Richat_%s_%s_%s.pdf", filenamePart(firstName), filenamePart(lastName), t.Format("20060102_150405"))
}

// filenamePart keeps ASCII letters, digits and hyphens; spaces become underscores
func filenamePart(s string) string {
	s = textnorm.Unaccent(textnorm.CollapseSpaces(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '-':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "Consultant"
	}
	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
