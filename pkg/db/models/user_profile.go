package models

import (
	"time"

	"github.com/google/uuid"
	dbtypes "github.com/yanchenliu/moodlog-backend/pkg/db/types"
	"github.com/yanchenliu/moodlog-backend/pkg/enums"
)

// UserProfile holds the personalization attributes used to template analyses.
// One row per user, created lazily on the first profile save.
type UserProfile struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	MBTI           enums.MBTIType  `gorm:"column:mbti;type:text" json:"mbti,omitempty"`
	Occupation     string          `gorm:"column:occupation;type:text" json:"occupation,omitempty"`
	Personality    string          `gorm:"column:personality;type:text" json:"personality,omitempty"`
	CurrentWork    string          `gorm:"column:current_work;type:text" json:"current_work,omitempty"`
	AdditionalInfo dbtypes.JSONMap `gorm:"column:additional_info;type:jsonb" json:"additional_info,omitempty"`
	UpdatedAt      time.Time       `gorm:"column:updated_at" json:"updated_at"`
}
