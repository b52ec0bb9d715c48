package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/yanchenliu/moodlog-backend/pkg/enums"
)

// Record is one captured journal entry. Rows are immutable once written.
type Record struct {
	ID        uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID        `gorm:"type:uuid;not null;index:idx_records_user_created,priority:1" json:"user_id"`
	Type      enums.RecordType `gorm:"type:text;not null" json:"type"`
	Content   string           `gorm:"type:text" json:"content,omitempty"`
	FileURL   string           `gorm:"column:file_url;type:text" json:"file_url,omitempty"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime;index:idx_records_user_created,priority:2,sort:desc" json:"created_at"`

	Analyses []AIAnalysis `gorm:"foreignKey:RecordID" json:"ai_analyses,omitempty"`
}
