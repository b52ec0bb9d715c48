package profiles

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yanchenliu/moodlog-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes profile persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a profiles repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByUserID retrieves the profile owned by the given user. Callers are
// expected to translate gorm.ErrRecordNotFound themselves.
func (r *Repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// Create inserts a new profile row.
func (r *Repository) Create(ctx context.Context, profile *models.UserProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

// Update overwrites the editable fields of an existing profile and refreshes
// its updated_at timestamp.
func (r *Repository) Update(ctx context.Context, profile *models.UserProfile) error {
	now := time.Now().UTC()
	profile.UpdatedAt = now
	return r.db.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("id = ?", profile.ID).
		Updates(map[string]any{
			"mbti":            profile.MBTI,
			"occupation":      profile.Occupation,
			"personality":     profile.Personality,
			"current_work":    profile.CurrentWork,
			"additional_info": profile.AdditionalInfo,
			"updated_at":      now,
		}).Error
}
