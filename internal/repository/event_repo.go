package repository

import (
	"context"
	"errors"

	"github.com/jshao/jobtrackiq/internal/domain"
	"gorm.io/gorm"
)

// EventRepository handles event log operations. The log is append-only:
// events are inserted and read, never updated.
type EventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create appends an event to the log.
func (r *EventRepository) Create(ctx context.Context, event *domain.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// GetByID retrieves an event by its ID.
// Returns domain.ErrNotFound when no record matches.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	var event domain.Event
	if err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

// ListByApplication retrieves an application's events, newest event time
// first, with pagination.
func (r *EventRepository) ListByApplication(ctx context.Context, applicationID string, limit, offset int) ([]domain.Event, error) {
	var events []domain.Event
	if err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("event_time DESC").
		Limit(limit).
		Offset(offset).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// LatestByType returns the most recently persisted event of the given type
// for an application, or nil when none exists. The duplicate-suppression
// guard measures its window against the returned event's CreatedAt.
func (r *EventRepository) LatestByType(ctx context.Context, applicationID string, eventType domain.EventType) (*domain.Event, error) {
	var event domain.Event
	err := r.db.WithContext(ctx).
		Where("application_id = ? AND event_type = ?", applicationID, eventType).
		Order("created_at DESC").
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

// Delete removes an event by ID. Administrative escape hatch, not part of
// normal ingestion.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&domain.Event{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
