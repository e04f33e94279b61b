package repository

import (
	"context"
	"errors"

	"github.com/jshao/jobtrackiq/internal/domain"
	"gorm.io/gorm"
)

// CompanyRepository handles company index operations.
type CompanyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository creates a new CompanyRepository.
func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// Create inserts a new company index entry.
func (r *CompanyRepository) Create(ctx context.Context, entry *domain.CompanyIndexEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// Update persists changed fields of an existing entry.
func (r *CompanyRepository) Update(ctx context.Context, entry *domain.CompanyIndexEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

// GetByNormalizedName retrieves the entry for a normalized name, or nil when
// none exists.
func (r *CompanyRepository) GetByNormalizedName(ctx context.Context, normalized string) (*domain.CompanyIndexEntry, error) {
	var entry domain.CompanyIndexEntry
	err := r.db.WithContext(ctx).First(&entry, "normalized_name = ?", normalized).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// SuggestByPrefix retrieves entries whose normalized name starts with the
// given prefix, most popular and most recently seen first.
func (r *CompanyRepository) SuggestByPrefix(ctx context.Context, prefix string, limit int) ([]domain.CompanyIndexEntry, error) {
	var entries []domain.CompanyIndexEntry
	if err := r.db.WithContext(ctx).
		Where("normalized_name LIKE ?", prefix+"%").
		Order("popularity DESC").
		Order("last_seen_at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
