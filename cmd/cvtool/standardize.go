package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/richat-partners/staffing-api/internal/cvparser"
	"github.com/richat-partners/staffing-api/internal/cvrender"
	"github.com/richat-partners/staffing-api/internal/domain"
	"github.com/richat-partners/staffing-api/internal/expertise"
	"github.com/richat-partners/staffing-api/internal/skillminer"
	"github.com/richat-partners/staffing-api/internal/textnorm"
	"github.com/spf13/cobra"
)

var standardizeCmd = &cobra.Command{
	Use:   "standardize FILE",
	Short: "Render the standardized Richat CV for a CV file",
	Long: "Extract a CV, derive the consultant profile from it and render the firm-branded PDF " +
		"into the output directory. Prints the quality and format compliance scores.",
	Args: cobra.ExactArgs(1),
	RunE: runStandardize,
}

var (
	standardizeOutputDir string
	standardizeFirstName string
	standardizeLastName  string
	standardizeTitle     string
)

func init() {
	standardizeCmd.Flags().StringVarP(&standardizeOutputDir, "out-dir", "d", ".", "Directory receiving the PDF")
	standardizeCmd.Flags().StringVar(&standardizeFirstName, "first-name", "", "Override the first name found in the CV")
	standardizeCmd.Flags().StringVar(&standardizeLastName, "last-name", "", "Override the last name found in the CV")
	standardizeCmd.Flags().StringVar(&standardizeTitle, "title", "", "Override the professional title")

	rootCmd.AddCommand(standardizeCmd)
}

func runStandardize(_ *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	parsed, err := extractFile(ctx, args[0], logger)
	if err != nil {
		return err
	}

	now := time.Now()
	consultant := consultantFromCV(parsed, now)

	layout := cvrender.BuildLayout(parsed, cvrender.ProfileFromConsultant(consultant))
	pdf, err := cvrender.NewPDFRenderer().Render(layout, now)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(standardizeOutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(standardizeOutputDir, cvrender.Filename(consultant.FirstName, consultant.LastName, now))
	if err := os.WriteFile(path, pdf, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Printf("Standardized CV written: %s\n", path)
	fmt.Printf("  size:              %d bytes\n", len(pdf))
	fmt.Printf("  sections:          %v\n", layout.SectionTitles())
	fmt.Printf("  quality score:     %.1f\n", cvrender.QualityScore(parsed))
	fmt.Printf("  format compliance: %.1f\n", cvrender.ComplianceScore(layout))
	fmt.Printf("  expertise:         %s\n", consultant.ExpertiseLevel)
	return nil
}

// consultantFromCV builds the unsaved consultant record the API would derive from parsed
func consultantFromCV(parsed *cvparser.ParsedCV, now time.Time) *domain.Consultant {
	signals := cvparser.DeriveSignals(parsed, now)
	mined := skillminer.Mine(parsed.Text, nil)
	phone, _ := textnorm.CleanPhone(parsed.Identity.Phone)

	c := &domain.Consultant{
		FirstName:           firstNonEmpty(standardizeFirstName, parsed.Identity.FirstName, "Consultant"),
		LastName:            firstNonEmpty(standardizeLastName, parsed.Identity.LastName),
		Email:               parsed.Identity.Email,
		Phone:               phone,
		PrimaryDomain:       mined.PrimaryDomain,
		YearsExperience:     signals.YearsExperience,
		EducationLevel:      signals.EducationLevel,
		CertificationsCount: signals.CertificationsCount,
		ProjectsCount:       signals.ProjectsCount,
		HasLeadership:       signals.HasLeadership,
		HasInternational:    signals.HasInternational,
		ProfessionalTitle:   firstNonEmpty(standardizeTitle, signals.ProfessionalTitle),
		ProfileSummary:      signals.ProfileSummary,
	}

	competences := make([]domain.Competence, 0, len(mined.Skills))
	for _, skill := range mined.Skills {
		competences = append(competences, domain.Competence{Name: skill, Level: 3})
	}
	score := expertise.Score(expertise.InputFor(c, competences))
	c.ExpertiseScore = score.RoundedTotal()
	c.ExpertiseLevel = score.Level
	return c
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
