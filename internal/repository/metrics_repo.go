package repository

import (
	"context"
	"time"

	"github.com/jshao/jobtrackiq/internal/domain"
	"gorm.io/gorm"
)

// MetricsRepository serves the read-only aggregate queries behind the
// metrics endpoints. It never mutates.
type MetricsRepository struct {
	db *gorm.DB
}

// NewMetricsRepository creates a new MetricsRepository.
func NewMetricsRepository(db *gorm.DB) *MetricsRepository {
	return &MetricsRepository{db: db}
}

// CountApplications returns the total number of applications.
func (r *MetricsRepository) CountApplications(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Application{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// CountByStatus returns application counts grouped by status.
func (r *MetricsRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&domain.Application{}).
		Select("status, COUNT(id) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, rw := range rows {
		key := rw.Status
		if key == "" {
			key = "unknown"
		}
		out[key] = rw.Count
	}
	return out, nil
}

// CountByStage returns application counts grouped by current stage.
func (r *MetricsRepository) CountByStage(ctx context.Context) (map[string]int64, error) {
	type row struct {
		CurrentStage string
		Count        int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&domain.Application{}).
		Select("current_stage, COUNT(id) AS count").
		Group("current_stage").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, rw := range rows {
		key := rw.CurrentStage
		if key == "" {
			key = "unknown"
		}
		out[key] = rw.Count
	}
	return out, nil
}

// MilestoneDelta pairs an application's creation time with its earliest
// milestone event time.
type MilestoneDelta struct {
	ApplicationID string
	CreatedAt     time.Time
	MilestoneAt   time.Time
}

// EarliestEventDeltas returns, per application that has at least one event of
// the given types, the application creation time and the earliest matching
// event time. Applications without a matching event are absent, not zeroed.
// The per-application minimum is reduced in Go; aggregating timestamps in SQL
// would need per-dialect expressions.
func (r *MetricsRepository) EarliestEventDeltas(ctx context.Context, eventTypes []domain.EventType) ([]MilestoneDelta, error) {
	type row struct {
		ApplicationID string
		CreatedAt     time.Time
		EventTime     time.Time
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&domain.Event{}).
		Select("events.application_id AS application_id, applications.created_at AS created_at, events.event_time AS event_time").
		Joins("JOIN applications ON applications.id = events.application_id").
		Where("events.event_type IN ?", eventTypes).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	earliest := make(map[string]MilestoneDelta, len(rows))
	for _, rw := range rows {
		d, ok := earliest[rw.ApplicationID]
		if !ok || rw.EventTime.Before(d.MilestoneAt) {
			earliest[rw.ApplicationID] = MilestoneDelta{
				ApplicationID: rw.ApplicationID,
				CreatedAt:     rw.CreatedAt,
				MilestoneAt:   rw.EventTime,
			}
		}
	}

	out := make([]MilestoneDelta, 0, len(earliest))
	for _, d := range earliest {
		out = append(out, d)
	}
	return out, nil
}

// ChannelRow is one channel's aggregate in the conversion report.
type ChannelRow struct {
	Channel *string
	Total   int64
	Offers  int64
}

// CountByChannel returns per-channel totals and offer counts for channels
// with at least minSamples applications, largest channels first.
func (r *MetricsRepository) CountByChannel(ctx context.Context, minSamples int) ([]ChannelRow, error) {
	var rows []ChannelRow
	if err := r.db.WithContext(ctx).
		Model(&domain.Application{}).
		Select("channel, COUNT(id) AS total, SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS offers", domain.StatusOffer).
		Group("channel").
		Having("COUNT(id) >= ?", minSamples).
		Order("total DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
