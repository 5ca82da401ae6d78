package mapper

import (
	"time"

	"github.com/richat-partners/staffing-api/internal/domain"
)

const (
	timestampLayout = "2006-01-02T15:04:05Z"
	dateLayout      = "2006-01-02"
)

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

// ToConsultantDTO converts Consultant to ConsultantDTO
func ToConsultantDTO(consultant *domain.Consultant) domain.ConsultantDTO {
	dto := domain.ConsultantDTO{
		ID:                  consultant.ID,
		FirstName:           consultant.FirstName,
		LastName:            consultant.LastName,
		Email:               consultant.Email,
		Phone:               consultant.Phone,
		Country:             consultant.Country,
		City:                consultant.City,
		AvailableFrom:       formatDate(consultant.AvailableFrom),
		AvailableUntil:      formatDate(consultant.AvailableUntil),
		PrimaryDomain:       consultant.PrimaryDomain,
		ExpertiseLevel:      consultant.ExpertiseLevel,
		ExpertiseScore:      consultant.ExpertiseScore,
		YearsExperience:     consultant.YearsExperience,
		CertificationsCount: consultant.CertificationsCount,
		ProjectsCount:       consultant.ProjectsCount,
		HasLeadership:       consultant.HasLeadership,
		HasInternational:    consultant.HasInternational,
		EducationLevel:      consultant.EducationLevel,
		Validated:           consultant.Validated,
		Status:              consultant.Status,
		ProfessionalTitle:   consultant.ProfessionalTitle,
		CreatedAt:           consultant.CreatedAt.UTC().Format(timestampLayout),
	}
	if len(consultant.Competences) > 0 {
		dto.Competences = ToCompetenceDTOs(consultant.Competences)
	}
	return dto
}

// ToCompetenceDTO converts Competence to CompetenceDTO
func ToCompetenceDTO(competence *domain.Competence) domain.CompetenceDTO {
	return domain.CompetenceDTO{
		ID:    competence.ID,
		Name:  competence.Name,
		Level: competence.Level,
	}
}

// ToCompetenceDTOs converts a slice of competences
func ToCompetenceDTOs(competences []domain.Competence) []domain.CompetenceDTO {
	dtos := make([]domain.CompetenceDTO, len(competences))
	for i := range competences {
		dtos[i] = ToCompetenceDTO(&competences[i])
	}
	return dtos
}

// ToTenderDTO converts Tender to TenderDTO. Expiry is evaluated against today.
func ToTenderDTO(tender *domain.Tender, today time.Time) domain.TenderDTO {
	dto := domain.TenderDTO{
		ID:                     tender.ID,
		Title:                  tender.Title,
		Client:                 tender.Client,
		PublicationDate:        formatDate(tender.PublicationDate),
		DeadlineDate:           formatDate(tender.DeadlineDate),
		TenderType:             tender.TenderType,
		Description:            tender.Description,
		EvaluationCriteriaText: tender.EvaluationCriteriaText,
		SourceURL:              tender.SourceURL,
		Version:                tender.Version,
		IsExpired:              tender.IsExpired(today),
	}
	if days, ok := tender.DaysRemaining(today); ok {
		dto.DaysRemaining = &days
	}
	if len(tender.Criteria) > 0 {
		dto.Criteria = make([]domain.CriterionDTO, len(tender.Criteria))
		for i := range tender.Criteria {
			dto.Criteria[i] = ToCriterionDTO(&tender.Criteria[i])
		}
	}
	return dto
}

// ToCriterionDTO converts StructuredCriterion to CriterionDTO
func ToCriterionDTO(criterion *domain.StructuredCriterion) domain.CriterionDTO {
	return domain.CriterionDTO{
		ID:          criterion.ID,
		Name:        criterion.Name,
		Weight:      criterion.Weight,
		Description: criterion.Description,
	}
}

// ToMatchResultDTO converts MatchResult to MatchResultDTO
func ToMatchResultDTO(match *domain.MatchResult) domain.MatchResultDTO {
	return domain.MatchResultDTO{
		ID:           match.ID,
		ConsultantID: match.ConsultantID,
		TenderID:     match.TenderID,
		Score:        match.Score,
		DateScore:    match.DateScore,
		SkillsScore:  match.SkillsScore,
		Validated:    match.Validated,
		CreatedAt:    match.CreatedAt.UTC().Format(timestampLayout),
	}
}

// ToMatchResultDTOs converts a slice of matches
func ToMatchResultDTOs(matches []domain.MatchResult) []domain.MatchResultDTO {
	dtos := make([]domain.MatchResultDTO, len(matches))
	for i := range matches {
		dtos[i] = ToMatchResultDTO(&matches[i])
	}
	return dtos
}

// ToMissionDTO converts Mission to MissionDTO
func ToMissionDTO(mission *domain.Mission) domain.MissionDTO {
	return domain.MissionDTO{
		ID:           mission.ID,
		TenderID:     mission.TenderID,
		ConsultantID: mission.ConsultantID,
		Title:        mission.Title,
		StartDate:    mission.StartDate.Format(dateLayout),
		EndDate:      mission.EndDate.Format(dateLayout),
		Status:       mission.Status,
		Score:        mission.Score,
	}
}

// ToNotificationDTO converts Notification to NotificationDTO
func ToNotificationDTO(notification *domain.Notification) domain.NotificationDTO {
	return domain.NotificationDTO{
		ID:            notification.ID,
		Kind:          notification.Kind,
		Title:         notification.Title,
		Body:          notification.Body,
		Priority:      notification.Priority,
		Read:          notification.Read,
		CreatedAt:     notification.CreatedAt.UTC().Format(timestampLayout),
		TenderID:      notification.TenderID,
		MatchResultID: notification.MatchResultID,
		MissionID:     notification.MissionID,
	}
}

// ToStandardizedCVDTO converts StandardizedCV to StandardizedCVDTO with its public URL
func ToStandardizedCVDTO(cv *domain.StandardizedCV, url string) domain.StandardizedCVDTO {
	return domain.StandardizedCVDTO{
		ID:            cv.ID,
		ConsultantID:  cv.ConsultantID,
		Filename:      cv.Filename,
		URL:           url,
		GeneratedAt:   cv.GeneratedAt.UTC().Format(timestampLayout),
		SizeBytes:     cv.SizeBytes,
		DownloadCount: cv.DownloadCount,
	}
}
