package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/yanchenliu/moodlog-backend/pkg/enums"
)

// AIAnalysis is the templated commentary attached to a record. A record may
// carry zero analyses when the analysis insert failed after the record insert.
type AIAnalysis struct {
	ID             uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RecordID       uuid.UUID        `gorm:"type:uuid;not null;index" json:"record_id"`
	AnalysisResult string           `gorm:"column:analysis_result;type:text;not null" json:"analysis_result"`
	Sentiment      *enums.Sentiment `gorm:"type:text" json:"sentiment,omitempty"`
	Keywords       pq.StringArray   `gorm:"type:text[]" json:"keywords,omitempty"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
