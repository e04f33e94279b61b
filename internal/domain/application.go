package domain

import "time"

// ApplicationStatus is the coarse lifecycle bucket of an application.
// Values include StatusActive, StatusOffer, StatusRejected, and StatusClosed.
type ApplicationStatus string

const (
	StatusActive   ApplicationStatus = "active"
	StatusOffer    ApplicationStatus = "offer"
	StatusRejected ApplicationStatus = "rejected"
	StatusClosed   ApplicationStatus = "closed"
)

// IsFinal reports whether the status locks out further events.
// Only a reopen event is accepted from a final status.
func (s ApplicationStatus) IsFinal() bool {
	switch s {
	case StatusOffer, StatusRejected, StatusClosed:
		return true
	}
	return false
}

// Stage is the fine-grained progress marker within the lifecycle.
type Stage string

const (
	StageApplied    Stage = "applied"
	StageInterview1 Stage = "interview_1"
	StageInterview2 Stage = "interview_2"
	StageOffer      Stage = "offer"
	StageRejection  Stage = "rejection"
	StageClosed     Stage = "closed"
)

// StageOrder defines the total order used for progression checks.
// Interview stages must not regress; extend vocabulary and order together.
var StageOrder = map[Stage]int{
	StageApplied:    10,
	StageInterview1: 20,
	StageInterview2: 30,
	StageOffer:      40,
	StageRejection:  90,
	StageClosed:     100,
}

// StageRank returns the order value for a stage, 0 for unknown or empty.
func StageRank(s Stage) int {
	return StageOrder[s]
}

// Application represents one tracked job application.
type Application struct {
	ID           string            `gorm:"type:text;primaryKey" json:"id"`
	CompanyName  string            `gorm:"type:text;not null;index:idx_applications_company" json:"company_name"`
	RoleTitle    string            `gorm:"type:text;not null;index:idx_applications_role" json:"role_title"`
	Channel      *string           `gorm:"type:text" json:"channel,omitempty"`
	Location     *string           `gorm:"type:text" json:"location,omitempty"`
	Status       ApplicationStatus `gorm:"type:text;index:idx_applications_status;default:active" json:"status"`
	CurrentStage Stage             `gorm:"type:text;default:applied" json:"current_stage"`
	JDText       *string           `gorm:"column:jd_text;type:text" json:"jd_text,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`

	Events []Event `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the database table name for Application.
func (Application) TableName() string {
	return "applications"
}
