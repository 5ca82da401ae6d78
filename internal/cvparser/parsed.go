// Package cvparser turns CV files into structured ParsedCV records.
package cvparser

import (
	"time"

	"github.com/richat-partners/staffing-api/internal/domain"
)

// ParsedCV is the structured extract of one CV file
type ParsedCV struct {
	Identity       Identity          `json:"identity"`
	Summary        string            `json:"summary,omitempty"`
	Education      []EducationEntry  `json:"education"`
	Experience     []ExperienceEntry `json:"experience"`
	Skills         []string          `json:"skills"`
	Languages      []LanguageEntry   `json:"languages"`
	Certifications []string          `json:"certifications"`
	Projects       []string          `json:"projects"`
	PrimaryDomain  domain.Domain     `json:"primary_domain,omitempty"`
	Extraction     ExtractionInfo    `json:"extraction"`

	// Text is the normalized full text the record was built from
	Text string `json:"-"`
}

// Identity holds the personal details found at the top of a CV
type Identity struct {
	FirstName   string     `json:"first_name,omitempty"`
	LastName    string     `json:"last_name,omitempty"`
	Email       string     `json:"email,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Title       string     `json:"title,omitempty"`
}

// FullName joins first and last name
func (i Identity) FullName() string {
	switch {
	case i.FirstName == "":
		return i.LastName
	case i.LastName == "":
		return i.FirstName
	}
	return i.FirstName + " " + i.LastName
}

// Period is a year range. End is zero for a single year; Current marks an ongoing period.
type Period struct {
	Start   int    `json:"start"`
	End     int    `json:"end,omitempty"`
	Current bool   `json:"current,omitempty"`
	Raw     string `json:"raw"`
}

// LastYear returns the year the period ends, using now for ongoing periods
func (p Period) LastYear(now time.Time) int {
	switch {
	case p.Current:
		return now.Year()
	case p.End != 0:
		return p.End
	}
	return p.Start
}

// EducationEntry is one diploma line
type EducationEntry struct {
	Period      Period `json:"period"`
	Diploma     string `json:"diploma,omitempty"`
	Institution string `json:"institution,omitempty"`
}

// ExperienceEntry is one position
type ExperienceEntry struct {
	Period      Period `json:"period"`
	Role        string `json:"role,omitempty"`
	Employer    string `json:"employer,omitempty"`
	Description string `json:"description,omitempty"`
}

// LanguageEntry is a spoken language with an optional proficiency
type LanguageEntry struct {
	Name  string `json:"name"`
	Level string `json:"level,omitempty"`
}

// Extraction methods
const (
	MethodNative = "native"
	MethodOCR    = "ocr"
	MethodMixed  = "mixed"
	MethodDOCX   = "docx"
	MethodTika   = "tika"
)

// ExtractionInfo summarizes how the text was obtained
type ExtractionInfo struct {
	Method     string `json:"method,omitempty"`
	Pages      int    `json:"pages"`
	OCRPages   int    `json:"ocr_pages"`
	Characters int    `json:"characters"`
}

// Empty returns a ParsedCV with no data
func Empty() *ParsedCV {
	return &ParsedCV{
		Education:      []EducationEntry{},
		Experience:     []ExperienceEntry{},
		Skills:         []string{},
		Languages:      []LanguageEntry{},
		Certifications: []string{},
		Projects:       []string{},
	}
}

// IsEmpty reports whether nothing was extracted
func (p *ParsedCV) IsEmpty() bool {
	return p.Identity == (Identity{}) && len(p.Education) == 0 && len(p.Experience) == 0 &&
		len(p.Skills) == 0 && len(p.Languages) == 0 && len(p.Certifications) == 0 && len(p.Projects) == 0
}
