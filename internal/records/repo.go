package records

import (
	"context"

	"github.com/google/uuid"
	"github.com/yanchenliu/moodlog-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes record and analysis persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a records repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new record row.
func (r *Repository) Create(ctx context.Context, record *models.Record) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// FindByID loads a single record without its analyses.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Record, error) {
	var record models.Record
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// ListByUser returns the user's records newest first, each with its analyses
// preloaded. A non-positive limit returns the full history.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Record, error) {
	query := r.db.WithContext(ctx).
		Preload("Analyses", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at ASC")
		}).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []models.Record
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// CreateAnalysis inserts an analysis row for an existing record.
func (r *Repository) CreateAnalysis(ctx context.Context, analysis *models.AIAnalysis) error {
	return r.db.WithContext(ctx).Create(analysis).Error
}
