package domain

import "time"

// EventType identifies what happened to an application. The vocabulary is
// closed: event types outside this set are rejected at ingestion.
type EventType string

const (
	EventApplied    EventType = "applied"
	EventInterview1 EventType = "interview_1"
	EventInterview2 EventType = "interview_2"
	EventFollowUp   EventType = "follow_up"
	EventOffer      EventType = "offer"
	EventRejection  EventType = "rejection"
	EventClosed     EventType = "closed"
	EventReopen     EventType = "reopen"
)

var knownEventTypes = map[EventType]struct{}{
	EventApplied:    {},
	EventInterview1: {},
	EventInterview2: {},
	EventFollowUp:   {},
	EventOffer:      {},
	EventRejection:  {},
	EventClosed:     {},
	EventReopen:     {},
}

// KnownEventType reports whether t belongs to the closed event vocabulary.
func KnownEventType(t EventType) bool {
	_, ok := knownEventTypes[t]
	return ok
}

// Event is an immutable fact recorded against an application. Events are
// append-only: once persisted they are never mutated.
type Event struct {
	ID            string    `gorm:"type:text;primaryKey" json:"id"`
	ApplicationID string    `gorm:"type:text;not null;index:idx_events_application" json:"application_id"`
	EventType     EventType `gorm:"type:text;not null;index:idx_events_type" json:"event_type"`
	// EventTime is caller-supplied or defaults to ingestion time.
	EventTime time.Time `gorm:"not null" json:"event_time"`
	Notes     *string   `gorm:"type:text" json:"notes,omitempty"`
	// CreatedAt is the persistence time; the duplicate-suppression window is
	// measured against it, not against the caller-supplied EventTime.
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Event.
func (Event) TableName() string {
	return "events"
}
