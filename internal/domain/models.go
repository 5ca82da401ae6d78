package domain

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// BaseModel contains common fields for all models
type BaseModel struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// Domain is one of the four business domains the firm staffs for
type Domain string

const (
	DomainDigital  Domain = "Digital"
	DomainFinance  Domain = "Finance"
	DomainEnergy   Domain = "Energy"
	DomainIndustry Domain = "Industry"
)

// Domains returns the business domains in their canonical order.
// The order is also the tie-break order when inferring a primary domain.
func Domains() []Domain {
	return []Domain{DomainDigital, DomainFinance, DomainEnergy, DomainIndustry}
}

// IsValid checks if the domain is one of the known domains
func (d Domain) IsValid() bool {
	switch d {
	case DomainDigital, DomainFinance, DomainEnergy, DomainIndustry:
		return true
	}
	return false
}

// ExpertiseLevel is the discrete competence band derived from the expertise score
type ExpertiseLevel string

const (
	ExpertiseBeginner     ExpertiseLevel = "Débutant"
	ExpertiseIntermediate ExpertiseLevel = "Intermédiaire"
	ExpertiseExpert       ExpertiseLevel = "Expert"
	ExpertiseSenior       ExpertiseLevel = "Senior"
)

// EducationLevel is the highest diploma held, expressed in years after the baccalauréat
type EducationLevel string

const (
	EducationBac      EducationLevel = "BAC"
	EducationBacPlus2 EducationLevel = "BAC+2"
	EducationBacPlus3 EducationLevel = "BAC+3"
	EducationBacPlus4 EducationLevel = "BAC+4"
	EducationBacPlus5 EducationLevel = "BAC+5"
	EducationBacPlus8 EducationLevel = "BAC+8"
)

// IsValid checks if the education level is known
func (e EducationLevel) IsValid() bool {
	switch e {
	case EducationBac, EducationBacPlus2, EducationBacPlus3, EducationBacPlus4, EducationBacPlus5, EducationBacPlus8:
		return true
	}
	return false
}

// ConsultantStatus represents the lifecycle status of a consultant
type ConsultantStatus string

const (
	ConsultantStatusActive    ConsultantStatus = "Active"
	ConsultantStatusInactive  ConsultantStatus = "Inactive"
	ConsultantStatusPending   ConsultantStatus = "Pending"
	ConsultantStatusSuspended ConsultantStatus = "Suspended"
)

// IsValid checks if the consultant status is known
func (s ConsultantStatus) IsValid() bool {
	switch s {
	case ConsultantStatusActive, ConsultantStatusInactive, ConsultantStatusPending, ConsultantStatusSuspended:
		return true
	}
	return false
}

// Consultant is a staffable person with a CV, an availability window and derived expertise
type Consultant struct {
	BaseModel
	FirstName           string           `gorm:"type:varchar(100);not null;column:first_name"`
	LastName            string           `gorm:"type:varchar(100);not null;column:last_name"`
	Email               string           `gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone               string           `gorm:"type:varchar(50)"`
	Country             string           `gorm:"type:varchar(100)"`
	City                string           `gorm:"type:varchar(100)"`
	AvailableFrom       *time.Time       `gorm:"type:date;column:avail_start"`
	AvailableUntil      *time.Time       `gorm:"type:date;column:avail_end"`
	PrimaryDomain       Domain           `gorm:"type:varchar(20);not null;default:'Digital';column:primary_domain;index"`
	ExpertiseLevel      ExpertiseLevel   `gorm:"type:varchar(20);not null;default:'Débutant';column:expertise_level"`
	ExpertiseScore      int              `gorm:"not null;default:0;column:expertise_score"`
	YearsExperience     int              `gorm:"not null;default:0;column:years_experience"`
	CertificationsCount int              `gorm:"not null;default:0;column:certifications_count"`
	ProjectsCount       int              `gorm:"not null;default:0;column:projects_count"`
	HasLeadership       bool             `gorm:"not null;default:false;column:has_leadership"`
	HasInternational    bool             `gorm:"not null;default:false;column:has_international"`
	EducationLevel      EducationLevel   `gorm:"type:varchar(10);not null;default:'BAC';column:education_level"`
	Validated           bool             `gorm:"not null;default:false;index"`
	Status              ConsultantStatus `gorm:"type:varchar(20);not null;default:'Pending';index"`
	ProfessionalTitle   string           `gorm:"type:varchar(200);column:professional_title"`
	ProfileSummary      string           `gorm:"type:text;column:profile_summary"`
	CVFilename          string           `gorm:"type:varchar(255);column:cv_filename"`
	ParsedCV            datatypes.JSON   `gorm:"column:parsed_cv"`
	Competences         []Competence     `gorm:"foreignKey:ConsultantID"`
}

// FullName returns the consultant's display name
func (c *Consultant) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// HasAvailability reports whether both availability endpoints are set
func (c *Consultant) HasAvailability() bool {
	return c.AvailableFrom != nil && c.AvailableUntil != nil
}

// IsEligibleForMatching reports whether the consultant may be ranked against tenders
func (c *Consultant) IsEligibleForMatching() bool {
	return c.Validated && c.Status == ConsultantStatusActive && c.HasAvailability()
}

// Competence is a named skill held by a consultant, rated 1 to 5
type Competence struct {
	BaseModel
	ConsultantID uint   `gorm:"not null;uniqueIndex:idx_competence_consultant_name;column:consultant_id"`
	Name         string `gorm:"type:varchar(150);not null"`
	NameKey      string `gorm:"type:varchar(150);not null;uniqueIndex:idx_competence_consultant_name;column:name_key"`
	Level        int    `gorm:"not null;default:3"`
}

// NameKey returns the case-insensitive uniqueness key for competence and criterion names
func NameKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// Tender is a scraped call-for-bids record
type Tender struct {
	BaseModel
	Title                  string                `gorm:"type:varchar(500);not null;uniqueIndex:idx_tender_title_source"`
	Client                 string                `gorm:"type:varchar(300)"`
	PublicationDate        *time.Time            `gorm:"type:date;column:publication_date"`
	DeadlineDate           *time.Time            `gorm:"type:date;column:deadline_date;index"`
	TenderType             string                `gorm:"type:varchar(100);column:tender_type"`
	Description            string                `gorm:"type:text"`
	EvaluationCriteriaText string                `gorm:"type:text;column:evaluation_criteria_text"`
	Documents              datatypes.JSON        `gorm:"column:documents"`
	SourceURL              string                `gorm:"type:varchar(1000);not null;default:'';uniqueIndex:idx_tender_title_source;column:source_url"`
	Version                int                   `gorm:"not null;default:1"`
	Criteria               []StructuredCriterion `gorm:"foreignKey:TenderID"`
}

// IsExpired reports whether the deadline is strictly before today.
// A tender without deadline never expires.
func (t *Tender) IsExpired(today time.Time) bool {
	if t.DeadlineDate == nil {
		return false
	}
	return DateOnly(today).After(DateOnly(*t.DeadlineDate))
}

// DaysRemaining returns the number of days until the deadline, negative once expired.
// The second return value is false when the tender has no deadline.
func (t *Tender) DaysRemaining(today time.Time) (int, bool) {
	if t.DeadlineDate == nil {
		return 0, false
	}
	return DaysBetween(DateOnly(today), DateOnly(*t.DeadlineDate)), true
}

// StructuredCriterion is a weighted evaluation criterion attached to a tender
type StructuredCriterion struct {
	BaseModel
	TenderID    uint    `gorm:"not null;uniqueIndex:idx_criterion_tender_name;column:tender_id"`
	Name        string  `gorm:"type:varchar(200);not null"`
	NameKey     string  `gorm:"type:varchar(200);not null;uniqueIndex:idx_criterion_tender_name;column:name_key"`
	Weight      float64 `gorm:"not null;default:1"`
	Description string  `gorm:"type:text"`
}

func (StructuredCriterion) TableName() string {
	return "structured_criteria"
}

// MatchResult is a scored (consultant, tender) pair
type MatchResult struct {
	BaseModel
	ConsultantID uint    `gorm:"not null;uniqueIndex:idx_match_consultant_tender;column:consultant_id"`
	TenderID     uint    `gorm:"not null;uniqueIndex:idx_match_consultant_tender;column:tender_id;index"`
	Score        float64 `gorm:"type:numeric(5,2);not null;default:0"`
	DateScore    float64 `gorm:"type:numeric(5,2);not null;default:0;column:date_score"`
	SkillsScore  float64 `gorm:"type:numeric(5,2);not null;default:0;column:skills_score"`
	Validated    bool    `gorm:"not null;default:false"`
}

// MissionStatus represents the status of a mission
type MissionStatus string

const (
	MissionStatusValidated  MissionStatus = "Validated"
	MissionStatusInProgress MissionStatus = "InProgress"
	MissionStatusCompleted  MissionStatus = "Completed"
	MissionStatusCancelled  MissionStatus = "Cancelled"
)

// Mission is an engagement created from a validated match
type Mission struct {
	BaseModel
	TenderID     uint          `gorm:"not null;uniqueIndex:idx_mission_consultant_tender;column:tender_id"`
	ConsultantID uint          `gorm:"not null;uniqueIndex:idx_mission_consultant_tender;column:consultant_id"`
	Title        string        `gorm:"type:varchar(500);not null"`
	StartDate    time.Time     `gorm:"type:date;not null;column:start_date"`
	EndDate      time.Time     `gorm:"type:date;not null;column:end_date"`
	Status       MissionStatus `gorm:"type:varchar(20);not null;default:'Validated'"`
	Score        float64       `gorm:"type:numeric(5,2);not null;default:0"`
}

// NotificationKind identifies what a notification is about
type NotificationKind string

const (
	NotificationMatchValid     NotificationKind = "MATCH_VALID"
	NotificationMissionStart   NotificationKind = "MISSION_START"
	NotificationMissionUpdate  NotificationKind = "MISSION_UPDATE"
	NotificationCVStandardized NotificationKind = "CV_STANDARDIZED"
)

// Priority of a notification
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
)

// Notification is an append-only message addressed to a consultant.
// Only the read flag may change after creation.
type Notification struct {
	BaseModel
	ConsultantID  uint             `gorm:"not null;index;column:consultant_id"`
	Kind          NotificationKind `gorm:"type:varchar(30);not null;index"`
	Title         string           `gorm:"type:varchar(300);not null"`
	Body          string           `gorm:"type:text"`
	Priority      Priority         `gorm:"type:varchar(10);not null;default:'NORMAL'"`
	Read          bool             `gorm:"not null;default:false"`
	ReadAt        *time.Time       `gorm:"column:read_at"`
	TenderID      *uint            `gorm:"column:tender_id;index"`
	MatchResultID *uint            `gorm:"column:match_result_id"`
	MissionID     *uint            `gorm:"column:mission_id"`
	Metadata      datatypes.JSON   `gorm:"column:metadata"`
}

// StandardizedCV is a generated firm-branded CV artifact.
// The current artifact of a consultant is the most recently generated one.
type StandardizedCV struct {
	BaseModel
	ConsultantID  uint      `gorm:"not null;index;column:consultant_id"`
	Filename      string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	StorageKey    string    `gorm:"type:varchar(500);not null;column:storage_key"`
	GeneratedAt   time.Time `gorm:"not null;column:generated_at;index"`
	SizeBytes     int64     `gorm:"not null;default:0;column:size_bytes"`
	DownloadCount int       `gorm:"not null;default:0;column:download_count"`
	SHA256        string    `gorm:"type:varchar(64);column:sha256"`
}

func (StandardizedCV) TableName() string {
	return "standardized_cvs"
}

// Document is a document-management entry optionally owned by a consultant.
// Deleting the owner leaves the document unowned.
type Document struct {
	BaseModel
	ConsultantID *uint  `gorm:"column:consultant_id;index"`
	Title        string `gorm:"type:varchar(300);not null"`
	StorageKey   string `gorm:"type:varchar(500);column:storage_key"`
	ContentType  string `gorm:"type:varchar(100);column:content_type"`
}

// DateOnly truncates t to midnight UTC of its calendar date
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days from a to b (negative when b is before a)
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}
