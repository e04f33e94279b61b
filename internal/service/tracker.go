package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jshao/jobtrackiq/internal/domain"
	"github.com/jshao/jobtrackiq/internal/logger"
	"github.com/jshao/jobtrackiq/internal/repository"
	"gorm.io/gorm"
)

// TrackerService is the application status engine. It owns event ingestion:
// the duplicate-suppression guard, the transition rules and the atomic write
// of the accepted event together with the mutated application.
type TrackerService struct {
	db         *gorm.DB
	apps       *repository.ApplicationRepository
	events     *repository.EventRepository
	companies  *CompanyService
	log        *logger.Logger
	dupeWindow time.Duration
}

// TrackerConfig holds configuration for the tracker service.
type TrackerConfig struct {
	// DuplicateWindow suppresses same-type events on the same application
	// persisted less than this long apart.
	DuplicateWindow time.Duration
}

// NewTrackerService creates a new tracker service.
// Parameters:
//   - db: database handle; transactions are opened per ingestion.
//   - companies: company index service fed opportunistically on creation.
//   - log: base logger.
//   - cfg: tracker configuration.
//
// Returns:
//   - *TrackerService: initialized service.
func NewTrackerService(db *gorm.DB, companies *CompanyService, log *logger.Logger, cfg *TrackerConfig) *TrackerService {
	return &TrackerService{
		db:         db,
		apps:       repository.NewApplicationRepository(db),
		events:     repository.NewEventRepository(db),
		companies:  companies,
		log:        log,
		dupeWindow: cfg.DuplicateWindow,
	}
}

// CreateApplicationInput carries the fields of a new application.
type CreateApplicationInput struct {
	CompanyName string  `json:"company_name" binding:"required"`
	RoleTitle   string  `json:"role_title" binding:"required"`
	Channel     *string `json:"channel"`
	Location    *string `json:"location"`
	JDText      *string `json:"jd_text"`
}

// CreateApplication creates a new tracked application at active/applied and
// feeds the company index as a side effect.
func (s *TrackerService) CreateApplication(ctx context.Context, input CreateApplicationInput) (*domain.Application, error) {
	company := strings.TrimSpace(input.CompanyName)
	role := strings.TrimSpace(input.RoleTitle)
	if company == "" {
		return nil, domain.NewValidationError("company_name is required")
	}
	if role == "" {
		return nil, domain.NewValidationError("role_title is required")
	}

	now := time.Now().UTC()
	app := &domain.Application{
		ID:           uuid.New().String(),
		CompanyName:  company,
		RoleTitle:    role,
		Channel:      input.Channel,
		Location:     input.Location,
		JDText:       input.JDText,
		Status:       domain.StatusActive,
		CurrentStage: domain.StageApplied,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.apps.Create(ctx, app); err != nil {
		return nil, err
	}

	// The company index is a learn-as-you-go side effect; a failure there
	// must not fail the application write.
	if _, err := s.companies.Upsert(ctx, company, domain.CompanySourceUserInput); err != nil {
		s.log.WithError(err).WithField("company", company).Warn("Failed to update company index")
	}

	return app, nil
}

// GetApplication retrieves a single application by ID.
func (s *TrackerService) GetApplication(ctx context.Context, id string) (*domain.Application, error) {
	return s.apps.GetByID(ctx, id)
}

// ListApplications lists applications with filtering and pagination.
func (s *TrackerService) ListApplications(ctx context.Context, params repository.ApplicationListParams) (int64, []domain.Application, error) {
	return s.apps.List(ctx, params)
}

// DeleteApplication removes an application and its events. Administrative
// action, not part of the status engine.
func (s *TrackerService) DeleteApplication(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Explicit event cleanup keeps SQLite databases without enforced FK
		// cascades consistent.
		if err := tx.Where("application_id = ?", id).Delete(&domain.Event{}).Error; err != nil {
			return err
		}
		return repository.NewApplicationRepository(tx).Delete(ctx, id)
	})
}

// EventInput carries a proposed event against an application.
type EventInput struct {
	EventType domain.EventType `json:"event_type" binding:"required"`
	EventTime *time.Time       `json:"event_time"`
	Notes     *string          `json:"notes"`
}

// AddEvent validates and applies a proposed event against an application.
// The read-validate-write sequence runs in one transaction with the
// application row locked: the duplicate guard fires first, then the
// transition rules; on acceptance the event and the mutated application are
// persisted together. On rejection nothing is written and the validation
// error carries the reason.
func (s *TrackerService) AddEvent(ctx context.Context, applicationID string, input EventInput) (*domain.Event, error) {
	var created *domain.Event

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		apps := repository.NewApplicationRepository(tx)
		events := repository.NewEventRepository(tx)

		app, err := apps.GetByIDForUpdate(ctx, applicationID)
		if err != nil {
			return err
		}

		// Guard before the transition rules: a rapid duplicate is rejected
		// even when the transition itself would be legal.
		last, err := events.LatestByType(ctx, app.ID, input.EventType)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		if last != nil && now.Sub(last.CreatedAt) < s.dupeWindow {
			return domain.NewValidationError("duplicate event too quickly; try again later")
		}

		newStatus, newStage, err := ApplyTransition(app.Status, app.CurrentStage, input.EventType)
		if err != nil {
			return err
		}

		eventTime := now
		if input.EventTime != nil {
			eventTime = input.EventTime.UTC()
		}
		event := &domain.Event{
			ID:            uuid.New().String(),
			ApplicationID: app.ID,
			EventType:     input.EventType,
			EventTime:     eventTime,
			Notes:         input.Notes,
			CreatedAt:     now,
		}
		if err := events.Create(ctx, event); err != nil {
			return err
		}

		app.Status = newStatus
		app.CurrentStage = newStage
		app.UpdatedAt = now
		if err := apps.Update(ctx, app); err != nil {
			return err
		}

		created = event
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logger.Fields{
		logger.FieldApplicationID: applicationID,
		"event_type":              created.EventType,
	}).Info("Event recorded")

	return created, nil
}

// ListEvents lists an application's events, newest first.
func (s *TrackerService) ListEvents(ctx context.Context, applicationID string, limit, offset int) ([]domain.Event, error) {
	if _, err := s.apps.GetByID(ctx, applicationID); err != nil {
		return nil, err
	}
	return s.events.ListByApplication(ctx, applicationID, limit, offset)
}

// DeleteEvent removes a single event by ID.
func (s *TrackerService) DeleteEvent(ctx context.Context, id string) error {
	return s.events.Delete(ctx, id)
}
