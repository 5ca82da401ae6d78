package cvparser_test

import (
	"testing"
	"time"

	"github.com/richat-partners/staffing-api/internal/cvparser"
	"github.com/richat-partners/staffing-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCV = `CURRICULUM VITAE
MOHAMED SALEM OULD AHMED
Ingénieur Logiciel Senior
Email : M.Salem@Example.com
Tél : 00222 31 34 61 21
Né le 12/03/1988 à Nouakchott

PROFIL
Ingénieur passionné par les plateformes de données.

FORMATION
2008 - 2013
Diplôme d'ingénieur en informatique
École Supérieure Polytechnique, Nouakchott

EXPÉRIENCE PROFESSIONNELLE
2016 - présent
Chef de projet Digital chez Richat Partners
Pilotage de projets financés par la Banque mondiale
2013 - 2016 Développeur Python - Mauritel

COMPÉTENCES
Python, Django, PostgreSQL, Docker
Gestion de projet

LANGUES
Français : courant
Anglais (avancé)
Arabe langue maternelle

CERTIFICATIONS
- PMP
- AWS Certified Solutions Architect
`

func TestParseText_Identity(t *testing.T) {
	parsed := cvparser.ParseText(sampleCV)
	id := parsed.Identity

	assert.Equal(t, "Mohamed", id.FirstName)
	assert.Equal(t, "Salem Ould Ahmed", id.LastName)
	assert.Equal(t, "Mohamed Salem Ould Ahmed", id.FullName())
	assert.Equal(t, "m.salem@example.com", id.Email)
	assert.Equal(t, "31 34 61 21", id.Phone)
	require.NotNil(t, id.DateOfBirth)
	assert.Equal(t, time.Date(1988, 3, 12, 0, 0, 0, 0, time.UTC), *id.DateOfBirth)
	assert.Equal(t, "Ingénieur Logiciel Senior", id.Title)
}

func TestParseText_Sections(t *testing.T) {
	parsed := cvparser.ParseText(sampleCV)

	assert.Equal(t, "Ingénieur passionné par les plateformes de données.", parsed.Summary)

	require.Len(t, parsed.Education, 1)
	edu := parsed.Education[0]
	assert.Equal(t, 2008, edu.Period.Start)
	assert.Equal(t, 2013, edu.Period.End)
	assert.Equal(t, "Diplôme d'ingénieur en informatique", edu.Diploma)
	assert.Equal(t, "École Supérieure Polytechnique, Nouakchott", edu.Institution)

	require.Len(t, parsed.Experience, 2)
	current := parsed.Experience[0]
	assert.Equal(t, 2016, current.Period.Start)
	assert.True(t, current.Period.Current)
	assert.Equal(t, "Chef de projet Digital", current.Role)
	assert.Equal(t, "Richat Partners", current.Employer)
	assert.Equal(t, "Pilotage de projets financés par la Banque mondiale", current.Description)

	previous := parsed.Experience[1]
	assert.Equal(t, 2013, previous.Period.Start)
	assert.Equal(t, 2016, previous.Period.End)
	assert.Equal(t, "Développeur Python", previous.Role)
	assert.Equal(t, "Mauritel", previous.Employer)

	assert.Equal(t, []string{"Django", "Docker", "Gestion de projet", "PostgreSQL", "Python"}, parsed.Skills)
	assert.Equal(t, domain.DomainDigital, parsed.PrimaryDomain)

	assert.Equal(t, []cvparser.LanguageEntry{
		{Name: "Français", Level: "Courant"},
		{Name: "Anglais", Level: "Avancé"},
		{Name: "Arabe", Level: "Langue maternelle"},
	}, parsed.Languages)

	assert.Equal(t, []string{"PMP", "AWS Certified Solutions Architect"}, parsed.Certifications)
	assert.Empty(t, parsed.Projects)
}

func TestParseText_Idempotent(t *testing.T) {
	assert.Equal(t, cvparser.ParseText(sampleCV), cvparser.ParseText(sampleCV))
}

func TestParseText_SkillsFallBackToFullText(t *testing.T) {
	parsed := cvparser.ParseText("Aminetou Mint Sidi\nExpérience en comptabilité et trésorerie, audit IFRS pour projets")

	assert.Contains(t, parsed.Skills, "Comptabilité")
	assert.Contains(t, parsed.Skills, "Trésorerie")
	assert.Equal(t, domain.DomainFinance, parsed.PrimaryDomain)
}

func TestParseText_PrecedingEntryLines(t *testing.T) {
	text := "FORMATION\nMaster Finance\nUniversité de Nouakchott\n2015 - 2017\nLicence Économie\nInstitut Supérieur de Comptabilité\n2012 - 2015"
	parsed := cvparser.ParseText(text)

	require.Len(t, parsed.Education, 2)
	assert.Equal(t, "Master Finance", parsed.Education[0].Diploma)
	assert.Equal(t, "Université de Nouakchott", parsed.Education[0].Institution)
	assert.Equal(t, 2015, parsed.Education[0].Period.Start)
	assert.Equal(t, "Licence Économie", parsed.Education[1].Diploma)
	assert.Equal(t, 2012, parsed.Education[1].Period.Start)
}

func TestParseText_AllCapsLineClosesSection(t *testing.T) {
	text := "CERTIFICATIONS\nPRINCE2 Foundation\nCENTRES D'INTÉRÊT\nLecture"
	parsed := cvparser.ParseText(text)

	assert.Equal(t, []string{"PRINCE2 Foundation"}, parsed.Certifications)
}

func TestParseText_Empty(t *testing.T) {
	parsed := cvparser.ParseText("  \n\n ")
	assert.True(t, parsed.IsEmpty())
	assert.NotNil(t, parsed.Skills)
}

func TestDeriveSignals(t *testing.T) {
	parsed := cvparser.ParseText(sampleCV)
	s := cvparser.DeriveSignals(parsed, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, 12, s.YearsExperience)
	assert.Equal(t, domain.EducationBacPlus5, s.EducationLevel)
	assert.Equal(t, 2, s.CertificationsCount)
	assert.Zero(t, s.ProjectsCount)
	assert.True(t, s.HasLeadership)
	assert.True(t, s.HasInternational)
	assert.Equal(t, "Ingénieur Logiciel Senior", s.ProfessionalTitle)
	assert.Equal(t, parsed.Summary, s.ProfileSummary)
}

func TestDeriveSignals_EmptyCV(t *testing.T) {
	s := cvparser.DeriveSignals(cvparser.Empty(), time.Now())

	assert.Zero(t, s.YearsExperience)
	assert.Equal(t, domain.EducationBac, s.EducationLevel)
	assert.False(t, s.HasLeadership)
	assert.False(t, s.HasInternational)
}
