package domain

// ConsultantDTO is the API representation of a consultant
type ConsultantDTO struct {
	ID                  uint             `json:"id"`
	FirstName           string           `json:"firstName"`
	LastName            string           `json:"lastName"`
	Email               string           `json:"email"`
	Phone               string           `json:"phone,omitempty"`
	Country             string           `json:"country,omitempty"`
	City                string           `json:"city,omitempty"`
	AvailableFrom       *string          `json:"availableFrom,omitempty"`
	AvailableUntil      *string          `json:"availableUntil,omitempty"`
	PrimaryDomain       Domain           `json:"primaryDomain"`
	ExpertiseLevel      ExpertiseLevel   `json:"expertiseLevel"`
	ExpertiseScore      int              `json:"expertiseScore"`
	YearsExperience     int              `json:"yearsExperience"`
	CertificationsCount int              `json:"certificationsCount"`
	ProjectsCount       int              `json:"projectsCount"`
	HasLeadership       bool             `json:"hasLeadership"`
	HasInternational    bool             `json:"hasInternational"`
	EducationLevel      EducationLevel   `json:"educationLevel"`
	Validated           bool             `json:"validated"`
	Status              ConsultantStatus `json:"status"`
	ProfessionalTitle   string           `json:"professionalTitle,omitempty"`
	Competences         []CompetenceDTO  `json:"competences,omitempty"`
	CreatedAt           string           `json:"createdAt"`
}

// CompetenceDTO is the API representation of a competence
type CompetenceDTO struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// TenderDTO is the API representation of a tender
type TenderDTO struct {
	ID                     uint           `json:"id"`
	Title                  string         `json:"title"`
	Client                 string         `json:"client"`
	PublicationDate        *string        `json:"publicationDate,omitempty"`
	DeadlineDate           *string        `json:"deadlineDate,omitempty"`
	TenderType             string         `json:"tenderType,omitempty"`
	Description            string         `json:"description,omitempty"`
	EvaluationCriteriaText string         `json:"evaluationCriteriaText,omitempty"`
	SourceURL              string         `json:"sourceUrl,omitempty"`
	Version                int            `json:"version"`
	IsExpired              bool           `json:"isExpired"`
	DaysRemaining          *int           `json:"daysRemaining,omitempty"`
	Criteria               []CriterionDTO `json:"criteria,omitempty"`
}

// CriterionDTO is the API representation of a structured criterion
type CriterionDTO struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description,omitempty"`
}

// MatchResultDTO is the API representation of a match
type MatchResultDTO struct {
	ID           uint    `json:"id"`
	ConsultantID uint    `json:"consultantId"`
	TenderID     uint    `json:"tenderId"`
	Score        float64 `json:"score"`
	DateScore    float64 `json:"dateScore"`
	SkillsScore  float64 `json:"skillsScore"`
	Validated    bool    `json:"validated"`
	CreatedAt    string  `json:"createdAt"`
}

// MissionDTO is the API representation of a mission
type MissionDTO struct {
	ID           uint          `json:"id"`
	TenderID     uint          `json:"tenderId"`
	ConsultantID uint          `json:"consultantId"`
	Title        string        `json:"title"`
	StartDate    string        `json:"startDate"`
	EndDate      string        `json:"endDate"`
	Status       MissionStatus `json:"status"`
	Score        float64       `json:"score"`
}

// NotificationDTO is the API representation of a notification
type NotificationDTO struct {
	ID            uint             `json:"id"`
	Kind          NotificationKind `json:"kind"`
	Title         string           `json:"title"`
	Body          string           `json:"body"`
	Priority      Priority         `json:"priority"`
	Read          bool             `json:"read"`
	CreatedAt     string           `json:"createdAt"` // ISO 8601
	TenderID      *uint            `json:"tenderId,omitempty"`
	MatchResultID *uint            `json:"matchResultId,omitempty"`
	MissionID     *uint            `json:"missionId,omitempty"`
}

// StandardizedCVDTO is the API representation of a generated CV artifact
type StandardizedCVDTO struct {
	ID            uint   `json:"id"`
	ConsultantID  uint   `json:"consultantId"`
	Filename      string `json:"filename"`
	URL           string `json:"url"`
	GeneratedAt   string `json:"generatedAt"`
	SizeBytes     int64  `json:"sizeBytes"`
	DownloadCount int    `json:"downloadCount"`
}

// BatchResultDTO summarizes a match generation batch
type BatchResultDTO struct {
	TenderID uint             `json:"tenderId"`
	Success  bool             `json:"success"`
	Count    int              `json:"count"`
	Skipped  int              `json:"skipped"`
	MinScore float64          `json:"minScore"`
	MaxScore float64          `json:"maxScore"`
	AvgScore float64          `json:"avgScore"`
	Matches  []MatchResultDTO `json:"matches"`
}

// ValidationOutcomeDTO reports the effects of a match validation transition
type ValidationOutcomeDTO struct {
	Match         MatchResultDTO    `json:"match"`
	Changed       bool              `json:"changed"`
	Mission       *MissionDTO       `json:"mission,omitempty"`
	Notifications []NotificationDTO `json:"notifications,omitempty"`
}

// CreateConsultantRequest contains the data needed to onboard a consultant
type CreateConsultantRequest struct {
	FirstName      string `json:"firstName" validate:"required,max=100"`
	LastName       string `json:"lastName" validate:"required,max=100"`
	Email          string `json:"email" validate:"required,email,max=255"`
	Phone          string `json:"phone,omitempty" validate:"max=50"`
	Country        string `json:"country,omitempty" validate:"max=100"`
	City           string `json:"city,omitempty" validate:"max=100"`
	AvailableFrom  string `json:"availableFrom,omitempty" validate:"omitempty,datetime=2006-01-02"`
	AvailableUntil string `json:"availableUntil,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PrimaryDomain  Domain `json:"primaryDomain,omitempty" validate:"omitempty,oneof=Digital Finance Energy Industry"`
}

// UpdateAvailabilityRequest sets a consultant availability window
type UpdateAvailabilityRequest struct {
	AvailableFrom  string `json:"availableFrom" validate:"required,datetime=2006-01-02"`
	AvailableUntil string `json:"availableUntil" validate:"required,datetime=2006-01-02"`
}

// UpdateConsultantStatusRequest changes the lifecycle status of a consultant
type UpdateConsultantStatusRequest struct {
	Status ConsultantStatus `json:"status" validate:"required,oneof=Active Inactive Pending Suspended"`
}

// AddCompetenceRequest adds a competence to a consultant
type AddCompetenceRequest struct {
	Name  string `json:"name" validate:"required,max=150"`
	Level int    `json:"level" validate:"required,gte=1,lte=5"`
}

// IngestTenderRequest is a tender record produced by the scrapers.
// Dates may use any supported locale format.
type IngestTenderRequest struct {
	Title                  string                 `json:"title" validate:"required,max=500"`
	Client                 string                 `json:"client" validate:"max=300"`
	PublicationDate        string                 `json:"publication_date,omitempty"`
	DeadlineDate           string                 `json:"deadline_date,omitempty"`
	TenderType             string                 `json:"tender_type,omitempty" validate:"max=100"`
	Description            string                 `json:"description,omitempty"`
	EvaluationCriteriaText string                 `json:"evaluation_criteria_text,omitempty"`
	Documents              map[string]interface{} `json:"documents,omitempty"`
	SourceURL              string                 `json:"source_url,omitempty" validate:"omitempty,url,max=1000"`
}

// EnrichTenderRequest updates the enrichable fields of a tender.
// Nil fields are left untouched.
type EnrichTenderRequest struct {
	Description            *string `json:"description,omitempty"`
	EvaluationCriteriaText *string `json:"evaluationCriteriaText,omitempty"`
	TenderType             *string `json:"tenderType,omitempty" validate:"omitempty,max=100"`
	DeadlineDate           *string `json:"deadlineDate,omitempty"`
}

// AddCriterionRequest adds a structured criterion to a tender
type AddCriterionRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Weight      float64 `json:"weight" validate:"required,gt=0"`
	Description string  `json:"description,omitempty"`
}

// APIResponse wraps simple success responses
type APIResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
}

// PaginatedResponse wraps a page of results
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// UnreadCountDTO reports the number of unread notifications of a consultant
type UnreadCountDTO struct {
	Count int `json:"count"`
}
