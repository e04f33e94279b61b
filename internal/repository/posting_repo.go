package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jshao/jobtrackiq/internal/domain"
	"gorm.io/gorm"
)

// PostingRepository handles job posting inbox operations.
type PostingRepository struct {
	db *gorm.DB
}

// NewPostingRepository creates a new PostingRepository.
func NewPostingRepository(db *gorm.DB) *PostingRepository {
	return &PostingRepository{db: db}
}

// Create inserts a new job posting.
func (r *PostingRepository) Create(ctx context.Context, posting *domain.JobPosting) error {
	return r.db.WithContext(ctx).Create(posting).Error
}

// GetByID retrieves a posting by its ID.
// Returns domain.ErrNotFound when no record matches.
func (r *PostingRepository) GetByID(ctx context.Context, id string) (*domain.JobPosting, error) {
	var posting domain.JobPosting
	if err := r.db.WithContext(ctx).First(&posting, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &posting, nil
}

// GetByFingerprint retrieves the posting with the given fingerprint, or nil
// when none exists.
func (r *PostingRepository) GetByFingerprint(ctx context.Context, fingerprint string) (*domain.JobPosting, error) {
	var posting domain.JobPosting
	err := r.db.WithContext(ctx).First(&posting, "fingerprint = ?", fingerprint).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &posting, nil
}

// List retrieves postings with substring search over company, role and
// location, newest first, with pagination.
func (r *PostingRepository) List(ctx context.Context, search string, limit, offset int) (int64, []domain.JobPosting, error) {
	query := r.db.WithContext(ctx).Model(&domain.JobPosting{})

	if s := strings.TrimSpace(search); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		query = query.Where(
			"LOWER(company_name) LIKE ? OR LOWER(role_title) LIKE ? OR LOWER(location) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, nil, fmt.Errorf("failed to count job postings: %w", err)
	}

	if limit <= 0 {
		limit = 50
	}

	var postings []domain.JobPosting
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&postings).Error; err != nil {
		return 0, nil, fmt.Errorf("failed to list job postings: %w", err)
	}
	return total, postings, nil
}

// Delete removes a posting by ID.
func (r *PostingRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&domain.JobPosting{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
