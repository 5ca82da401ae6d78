package cvrender_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/richat-partners/staffing-api/internal/cvparser"
	"github.com/richat-partners/staffing-api/internal/cvrender"
	"github.com/richat-partners/staffing-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleParsed() *cvparser.ParsedCV {
	parsed := cvparser.Empty()
	parsed.Identity = cvparser.Identity{
		FirstName: "Mohamed",
		LastName:  "Salem",
		Email:     "m.salem@example.com",
		Phone:     "31 34 61 21",
		Title:     "Ingénieur Logiciel",
	}
	parsed.Summary = "Ingénieur orienté données."
	parsed.Education = []cvparser.EducationEntry{
		{Period: cvparser.Period{Start: 2008, End: 2013}, Diploma: "Diplôme d'ingénieur", Institution: "ESP Nouakchott"},
	}
	parsed.Experience = []cvparser.ExperienceEntry{
		{Period: cvparser.Period{Start: 2016, Current: true}, Role: "Chef de projet", Employer: "Richat Partners"},
	}
	parsed.Skills = []string{"Comptabilité", "Gestion de projet", "Python"}
	parsed.Languages = []cvparser.LanguageEntry{{Name: "Français", Level: "Courant"}}
	parsed.PrimaryDomain = domain.DomainDigital
	return parsed
}

func TestBuildLayout_SectionOrder(t *testing.T) {
	l := cvrender.BuildLayout(sampleParsed(), cvrender.Profile{})

	assert.Equal(t, cvrender.BrandTitle, l.BrandTitle)
	assert.Equal(t, []string{
		cvrender.SectionEducation,
		cvrender.SectionExperience,
		cvrender.SectionSkills,
		cvrender.SectionLanguages,
	}, l.SectionTitles(), "sections without rows are omitted")
	assert.Equal(t, "Ingénieur Logiciel", l.ProfessionalTitle)
	assert.Equal(t, "Ingénieur orienté données.", l.Summary)

	experience := l.Sections[1]
	assert.Equal(t, []string{"2016 - présent", "Chef de projet", "Richat Partners", ""}, experience.Rows[0])
	assert.Equal(t, "2008 - 2013", l.Sections[0].Rows[0][0])
}

func TestBuildLayout_SkillsGroupedByDomain(t *testing.T) {
	l := cvrender.BuildLayout(sampleParsed(), cvrender.Profile{})

	skills := l.Sections[2]
	require.Len(t, skills.Rows, 3)
	assert.Equal(t, []string{"Digital", "Python"}, skills.Rows[0])
	assert.Equal(t, []string{"Finance", "Comptabilité"}, skills.Rows[1])
	assert.Equal(t, []string{"Transverses", "Gestion de projet"}, skills.Rows[2])
}

func TestBuildLayout_ProfileOverridesParsed(t *testing.T) {
	profile := cvrender.Profile{
		FirstName:      "Mohamed Salem",
		LastName:       "Ould Ahmed",
		Email:          "msalem@richat.mr",
		City:           "Nouakchott",
		Country:        "Mauritanie",
		Title:          "Architecte Data",
		ExpertiseLevel: domain.ExpertiseExpert,
	}
	l := cvrender.BuildLayout(sampleParsed(), profile)

	info := make(map[string]string)
	for _, r := range l.Info {
		info[r.Label] = r.Value
	}
	assert.Equal(t, "Mohamed Salem Ould Ahmed", info["Nom"])
	assert.Equal(t, "msalem@richat.mr", info["Email"])
	assert.Equal(t, "31 34 61 21", info["Téléphone"])
	assert.Equal(t, "Nouakchott, Mauritanie", info["Localisation"])
	assert.Equal(t, "Expert", info["Niveau d'expertise"])
	assert.Equal(t, "Architecte Data", l.ProfessionalTitle)
	assert.Equal(t, "Mohamed Salem", l.FirstName)
}

func TestBuildLayout_EmptyParsed(t *testing.T) {
	l := cvrender.BuildLayout(nil, cvrender.Profile{FirstName: "Aminetou", LastName: "Sidi"})

	assert.Empty(t, l.Sections)
	assert.Equal(t, []cvrender.InfoRow{{Label: "Nom", Value: "Aminetou Sidi"}}, l.Info)
}

func TestBuildLayout_Deterministic(t *testing.T) {
	assert.Equal(t, cvrender.BuildLayout(sampleParsed(), cvrender.Profile{}), cvrender.BuildLayout(sampleParsed(), cvrender.Profile{}))
}

func TestFilename(t *testing.T) {
	at := time.Date(2025, 3, 7, 14, 5, 9, 0, time.UTC)

	assert.Equal(t, "CV_Richat_Mohamed_Salem_20250307_140509.pdf", cvrender.Filename("Mohamed", "Salem", at))
	assert.Equal(t, "CV_Richat_Emilie_Ould_Cheikh_20250307_140509.pdf", cvrender.Filename("Émilie", " Ould  Cheïkh ", at))
	assert.Equal(t, "CV_Richat_Consultant_Consultant_20250307_140509.pdf", cvrender.Filename("", "../", at))
}

func TestPDFRenderer_Render(t *testing.T) {
	r := cvrender.NewPDFRenderer(cvrender.WithCompression(false))
	layout := cvrender.BuildLayout(sampleParsed(), cvrender.Profile{})

	out, err := r.Render(layout, time.Date(2025, 3, 7, 14, 5, 9, 0, time.UTC))

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(string(out)), "%%EOF"))
	assert.Contains(t, string(out), "FORMATION")
	assert.Contains(t, string(out), "LANGUES")
	assert.NotContains(t, string(out), "CERTIFICATIONS")
}

func TestPDFRenderer_LongContentSpansPages(t *testing.T) {
	parsed := sampleParsed()
	for i := 0; i < 80; i++ {
		parsed.Certifications = append(parsed.Certifications, strings.Repeat("Certification professionnelle ", 3))
	}
	r := cvrender.NewPDFRenderer(cvrender.WithCompression(false))

	out, err := r.Render(cvrender.BuildLayout(parsed, cvrender.Profile{}), time.Now())

	require.NoError(t, err)
	assert.Greater(t, bytes.Count(out, []byte("/Type /Page\n")), 1)
}

func TestRenderError(t *testing.T) {
	cause := errors.New("disk full")
	err := error(&cvrender.RenderError{Err: cause})

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")
}

func TestQualityAndComplianceScores(t *testing.T) {
	parsed := sampleParsed()
	assert.Equal(t, 100.0, cvrender.QualityScore(parsed))
	assert.Equal(t, 100.0, cvrender.ComplianceScore(cvrender.BuildLayout(parsed, cvrender.Profile{})))

	assert.Equal(t, 0.0, cvrender.QualityScore(cvparser.Empty()))
	assert.Equal(t, 0.0, cvrender.QualityScore(nil))

	sparse := cvrender.BuildLayout(nil, cvrender.Profile{FirstName: "Aminetou", LastName: "Sidi"})
	assert.Equal(t, 22.2, cvrender.ComplianceScore(sparse))
}
