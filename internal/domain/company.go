package domain

import "time"

// CompanySource records where a company index entry was learned from.
// Crawler provenance is considered more authoritative and never downgrades.
type CompanySource string

const (
	CompanySourceUserInput CompanySource = "user_input"
	CompanySourceManual    CompanySource = "manual"
	CompanySourceCrawler   CompanySource = "crawler"
	CompanySourceSeed      CompanySource = "seed"
)

// CompanyIndexEntry is a deduplicated company record keyed by the normalized
// form of the name. It is a learn-as-you-go free-text index, not an
// authoritative company directory.
type CompanyIndexEntry struct {
	ID string `gorm:"type:text;primaryKey" json:"id"`
	// Name is the display name shown to users, original casing preserved.
	Name string `gorm:"type:text;not null" json:"name"`
	// NormalizedName is the trimmed, lower-cased, whitespace-collapsed form
	// used for deduplication and prefix search.
	NormalizedName string        `gorm:"type:text;not null;uniqueIndex:uq_company_index_normalized" json:"normalized_name"`
	Source         CompanySource `gorm:"type:text;not null;default:user_input" json:"source"`
	Popularity     int           `gorm:"not null;default:1" json:"popularity"`
	LastSeenAt     time.Time     `gorm:"not null" json:"last_seen_at"`
	CreatedAt      time.Time     `json:"created_at"`
}

// TableName returns the database table name for CompanyIndexEntry.
func (CompanyIndexEntry) TableName() string {
	return "company_index"
}
