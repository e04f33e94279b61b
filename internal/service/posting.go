package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jshao/jobtrackiq/internal/domain"
	"github.com/jshao/jobtrackiq/internal/logger"
	"github.com/jshao/jobtrackiq/internal/repository"
	"gorm.io/gorm"
)

// BuildFingerprint computes the posting deduplication key: a sha256 over the
// pipe-joined normalized parts, nil parts skipped.
func BuildFingerprint(parts ...*string) string {
	normalized := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == nil {
			continue
		}
		normalized = append(normalized, strings.Join(strings.Fields(strings.ToLower(*p)), " "))
	}
	sum := sha256.Sum256([]byte(strings.Join(normalized, "|")))
	return hex.EncodeToString(sum[:])
}

// PostingService manages the job posting inbox: fingerprint deduplication,
// listing, and promotion into tracked applications.
type PostingService struct {
	db        *gorm.DB
	postings  *repository.PostingRepository
	companies *CompanyService
	log       *logger.Logger
}

// NewPostingService creates a new posting service.
func NewPostingService(db *gorm.DB, companies *CompanyService, log *logger.Logger) *PostingService {
	return &PostingService{
		db:        db,
		postings:  repository.NewPostingRepository(db),
		companies: companies,
		log:       log,
	}
}

// PostingInput carries the fields of an incoming posting.
type PostingInput struct {
	CompanyName string     `json:"company_name" binding:"required"`
	RoleTitle   string     `json:"role_title" binding:"required"`
	Location    *string    `json:"location"`
	URL         *string    `json:"url"`
	PostedAt    *time.Time `json:"posted_at"`
	JDText      *string    `json:"jd_text"`
}

// Upsert inserts a posting or returns the existing row with the same
// fingerprint. Re-ingestion of an identical posting is a no-op.
func (s *PostingService) Upsert(ctx context.Context, source domain.PostingSource, input PostingInput) (*domain.JobPosting, error) {
	company := strings.TrimSpace(input.CompanyName)
	role := strings.TrimSpace(input.RoleTitle)
	if company == "" {
		return nil, domain.NewValidationError("company_name is required")
	}
	if role == "" {
		return nil, domain.NewValidationError("role_title is required")
	}

	fp := BuildFingerprint(&input.CompanyName, &input.RoleTitle, input.Location, input.URL)

	existing, err := s.postings.GetByFingerprint(ctx, fp)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	posting := &domain.JobPosting{
		ID:          uuid.New().String(),
		Source:      source,
		CompanyName: company,
		RoleTitle:   role,
		Location:    trimmed(input.Location),
		URL:         trimmed(input.URL),
		PostedAt:    input.PostedAt,
		JDText:      trimmed(input.JDText),
		Fingerprint: fp,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.postings.Create(ctx, posting); err != nil {
		return nil, err
	}
	return posting, nil
}

// Create adds a manually entered posting and feeds the company index.
func (s *PostingService) Create(ctx context.Context, input PostingInput) (*domain.JobPosting, error) {
	posting, err := s.Upsert(ctx, domain.PostingSourceManual, input)
	if err != nil {
		return nil, err
	}
	if _, err := s.companies.Upsert(ctx, posting.CompanyName, domain.CompanySourceManual); err != nil {
		s.log.WithError(err).WithField("company", posting.CompanyName).Warn("Failed to update company index")
	}
	return posting, nil
}

// Get retrieves a posting by ID.
func (s *PostingService) Get(ctx context.Context, id string) (*domain.JobPosting, error) {
	return s.postings.GetByID(ctx, id)
}

// List lists postings with substring search and pagination.
func (s *PostingService) List(ctx context.Context, search string, limit, offset int) (int64, []domain.JobPosting, error) {
	return s.postings.List(ctx, search, limit, offset)
}

// Delete removes a posting from the inbox.
func (s *PostingService) Delete(ctx context.Context, id string) error {
	return s.postings.Delete(ctx, id)
}

// Promote consumes a posting into a new tracked application. In one
// transaction the application is created at active/applied, the initial
// applied event is recorded, and the posting leaves the inbox.
func (s *PostingService) Promote(ctx context.Context, id string, channel *string) (*domain.Application, error) {
	var app *domain.Application

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		postings := repository.NewPostingRepository(tx)
		apps := repository.NewApplicationRepository(tx)
		events := repository.NewEventRepository(tx)

		posting, err := postings.GetByID(ctx, id)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		app = &domain.Application{
			ID:           uuid.New().String(),
			CompanyName:  posting.CompanyName,
			RoleTitle:    posting.RoleTitle,
			Channel:      channel,
			Location:     posting.Location,
			JDText:       posting.JDText,
			Status:       domain.StatusActive,
			CurrentStage: domain.StageApplied,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := apps.Create(ctx, app); err != nil {
			return err
		}

		event := &domain.Event{
			ID:            uuid.New().String(),
			ApplicationID: app.ID,
			EventType:     domain.EventApplied,
			EventTime:     now,
			CreatedAt:     now,
		}
		if err := events.Create(ctx, event); err != nil {
			return err
		}

		return postings.Delete(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.companies.Upsert(ctx, app.CompanyName, domain.CompanySourceUserInput); err != nil {
		s.log.WithError(err).WithField("company", app.CompanyName).Warn("Failed to update company index")
	}

	s.log.WithFields(logger.Fields{
		"posting_id":              id,
		logger.FieldApplicationID: app.ID,
	}).Info("Posting promoted to application")

	return app, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
