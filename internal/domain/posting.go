package domain

import "time"

// PostingSource identifies how a job posting entered the inbox.
type PostingSource string

const (
	PostingSourceManual     PostingSource = "manual"
	PostingSourceGreenhouse PostingSource = "greenhouse"
)

// JobPosting is an externally- or manually-sourced posting waiting in the
// inbox. Postings are deduplicated by Fingerprint and may be promoted into a
// tracked Application, after which they are removed.
type JobPosting struct {
	ID          string        `gorm:"type:text;primaryKey" json:"id"`
	Source      PostingSource `gorm:"type:text;not null;default:manual" json:"source"`
	CompanyName string        `gorm:"type:text;not null" json:"company_name"`
	RoleTitle   string        `gorm:"type:text;not null" json:"role_title"`
	Location    *string       `gorm:"type:text" json:"location,omitempty"`
	URL         *string       `gorm:"type:text" json:"url,omitempty"`
	PostedAt    *time.Time    `json:"posted_at,omitempty"`
	JDText      *string       `gorm:"column:jd_text;type:text" json:"jd_text,omitempty"`
	// Fingerprint is a sha256 over the pipe-joined normalized company, role,
	// location and URL. One row per fingerprint.
	Fingerprint string    `gorm:"type:text;not null;uniqueIndex:uq_job_postings_fingerprint" json:"fingerprint"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the database table name for JobPosting.
func (JobPosting) TableName() string {
	return "job_postings"
}
