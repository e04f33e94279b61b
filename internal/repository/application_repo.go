package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jshao/jobtrackiq/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApplicationListParams narrows and orders an application listing.
type ApplicationListParams struct {
	Status  domain.ApplicationStatus
	Search  string
	Limit   int
	Offset  int
	OrderBy string
	Order   string
}

// allowed ordering columns; anything else falls back to created_at
var applicationOrderColumns = map[string]string{
	"created_at":   "created_at",
	"updated_at":   "updated_at",
	"company_name": "company_name",
	"role_title":   "role_title",
}

// ApplicationRepository handles application data operations.
type ApplicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new ApplicationRepository.
// Parameters:
//   - db: GORM database handle used for queries.
//
// Returns:
//   - *ApplicationRepository: repository instance bound to db.
func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create inserts a new application record.
func (r *ApplicationRepository) Create(ctx context.Context, app *domain.Application) error {
	return r.db.WithContext(ctx).Create(app).Error
}

// GetByID retrieves an application by its ID.
// Returns domain.ErrNotFound when no record matches.
func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	var app domain.Application
	if err := r.db.WithContext(ctx).First(&app, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &app, nil
}

// GetByIDForUpdate retrieves an application and locks its row for the
// duration of the surrounding transaction. Serializing writers per
// application is what makes the duplicate guard and transition rules hold
// under concurrent requests; SQLite serializes writers on its own, PostgreSQL
// needs the explicit row lock.
func (r *ApplicationRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Application, error) {
	var app domain.Application
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&app, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &app, nil
}

// Update persists changed fields of an existing application.
func (r *ApplicationRepository) Update(ctx context.Context, app *domain.Application) error {
	return r.db.WithContext(ctx).Save(app).Error
}

// Delete removes an application and, via FK cascade, its events.
func (r *ApplicationRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&domain.Application{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List retrieves applications with filtering, substring search, ordering and
// pagination.
// Returns the total match count alongside the requested page.
func (r *ApplicationRepository) List(ctx context.Context, params ApplicationListParams) (int64, []domain.Application, error) {
	query := r.db.WithContext(ctx).Model(&domain.Application{})

	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if s := strings.TrimSpace(params.Search); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(company_name) LIKE ? OR LOWER(role_title) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, nil, fmt.Errorf("failed to count applications: %w", err)
	}

	if params.Limit <= 0 {
		params.Limit = 50
	}

	column, ok := applicationOrderColumns[params.OrderBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(params.Order, "asc") {
		direction = "ASC"
	}

	var apps []domain.Application
	if err := query.
		Order(column + " " + direction).
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&apps).Error; err != nil {
		return 0, nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return total, apps, nil
}
