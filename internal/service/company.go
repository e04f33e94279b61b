package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jshao/jobtrackiq/internal/domain"
	"github.com/jshao/jobtrackiq/internal/repository"
)

// NormalizeCompanyName trims, lower-cases and collapses internal whitespace.
// The result is the deduplication key of the company index.
func NormalizeCompanyName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// CompanyService maintains the deduplicated company index. It is independent
// of the status engine and is fed opportunistically whenever an application
// or job posting references a company.
type CompanyService struct {
	companies *repository.CompanyRepository
}

// NewCompanyService creates a new company index service.
func NewCompanyService(companies *repository.CompanyRepository) *CompanyService {
	return &CompanyService{companies: companies}
}

// Upsert records a sighting of a company name. An existing normalized entry
// gains popularity and a refreshed last-seen timestamp; the display name is
// replaced only by a strictly longer one, and provenance upgrades to crawler
// but never downgrades. A new name inserts with popularity 1.
func (s *CompanyService) Upsert(ctx context.Context, name string, source domain.CompanySource) (*domain.CompanyIndexEntry, error) {
	norm := NormalizeCompanyName(name)
	if norm == "" {
		return nil, domain.NewValidationError("company name cannot be empty")
	}
	display := strings.TrimSpace(name)

	entry, err := s.companies.GetByNormalizedName(ctx, norm)
	if err != nil {
		return nil, err
	}

	if entry != nil {
		entry.Popularity++
		entry.LastSeenAt = time.Now().UTC()

		// Longer raw name wins as the display name; a cheap proxy for "more
		// complete".
		if len(display) > len(entry.Name) {
			entry.Name = display
		}
		if entry.Source != domain.CompanySourceCrawler && source == domain.CompanySourceCrawler {
			entry.Source = domain.CompanySourceCrawler
		}

		if err := s.companies.Update(ctx, entry); err != nil {
			return nil, err
		}
		return entry, nil
	}

	entry = &domain.CompanyIndexEntry{
		ID:             uuid.New().String(),
		Name:           display,
		NormalizedName: norm,
		Source:         source,
		Popularity:     1,
		LastSeenAt:     time.Now().UTC(),
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.companies.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Suggest returns index entries matching a normalized prefix of q, most
// popular first. An empty query yields no results.
func (s *CompanyService) Suggest(ctx context.Context, q string, limit int) ([]domain.CompanyIndexEntry, error) {
	qn := NormalizeCompanyName(q)
	if qn == "" {
		return []domain.CompanyIndexEntry{}, nil
	}
	return s.companies.SuggestByPrefix(ctx, qn, limit)
}
