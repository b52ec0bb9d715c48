package profiles

import (
	"time"

	"github.com/google/uuid"
	"github.com/yanchenliu/moodlog-backend/pkg/db/models"
	dbtypes "github.com/yanchenliu/moodlog-backend/pkg/db/types"
	"github.com/yanchenliu/moodlog-backend/pkg/enums"
)

// UpsertProfileRequest carries the editable profile fields. Every field is
// optional so a client can save a partially filled form.
type UpsertProfileRequest struct {
	MBTI           string          `json:"mbti" validate:"omitempty,len=4"`
	Occupation     string          `json:"occupation" validate:"omitempty,max=120"`
	Personality    string          `json:"personality" validate:"omitempty,max=2000"`
	CurrentWork    string          `json:"current_work" validate:"omitempty,max=2000"`
	AdditionalInfo dbtypes.JSONMap `json:"additional_info,omitempty"`
}

// ProfileDTO is the public shape of a user profile.
type ProfileDTO struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	MBTI           enums.MBTIType  `json:"mbti"`
	Occupation     string          `json:"occupation"`
	Personality    string          `json:"personality"`
	CurrentWork    string          `json:"current_work"`
	AdditionalInfo dbtypes.JSONMap `json:"additional_info,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// FromModel maps the persistence model onto the public DTO.
func FromModel(profile *models.UserProfile) ProfileDTO {
	if profile == nil {
		return ProfileDTO{}
	}
	return ProfileDTO{
		ID:             profile.ID,
		UserID:         profile.UserID,
		MBTI:           profile.MBTI,
		Occupation:     profile.Occupation,
		Personality:    profile.Personality,
		CurrentWork:    profile.CurrentWork,
		AdditionalInfo: profile.AdditionalInfo,
		UpdatedAt:      profile.UpdatedAt,
	}
}
