package records

import (
	"time"

	"github.com/google/uuid"
	"github.com/yanchenliu/moodlog-backend/pkg/db/models"
	"github.com/yanchenliu/moodlog-backend/pkg/enums"
)

// CreateRecordRequest carries a captured entry. Type accepts the four capture
// kinds; screenshots are stored as images.
type CreateRecordRequest struct {
	Type    string `json:"type" validate:"required"`
	Content string `json:"content,omitempty" validate:"omitempty,max=10000"`
	FileURL string `json:"file_url,omitempty" validate:"omitempty,max=2048"`
}

// AttachAnalysisRequest carries the commentary generated for a record.
type AttachAnalysisRequest struct {
	AnalysisResult string   `json:"analysis_result" validate:"required"`
	Sentiment      string   `json:"sentiment,omitempty" validate:"omitempty,oneof=positive negative neutral"`
	Keywords       []string `json:"keywords,omitempty" validate:"omitempty,max=16,dive,max=64"`
}

// ListQuery narrows a history listing.
type ListQuery struct {
	Limit int
}

// AnalysisDTO is the public shape of an attached analysis.
type AnalysisDTO struct {
	ID             uuid.UUID        `json:"id"`
	RecordID       uuid.UUID        `json:"record_id"`
	AnalysisResult string           `json:"analysis_result"`
	Sentiment      *enums.Sentiment `json:"sentiment,omitempty"`
	Keywords       []string         `json:"keywords,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// RecordDTO is the public shape of a journal entry with its analyses.
type RecordDTO struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Type      enums.RecordType `json:"type"`
	Content   string           `json:"content,omitempty"`
	FileURL   string           `json:"file_url,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	Analyses  []AnalysisDTO    `json:"ai_analyses"`
}

// FromModel maps the persistence model onto the public DTO.
func FromModel(record *models.Record) RecordDTO {
	if record == nil {
		return RecordDTO{}
	}
	analyses := make([]AnalysisDTO, 0, len(record.Analyses))
	for i := range record.Analyses {
		analyses = append(analyses, analysisFromModel(&record.Analyses[i]))
	}
	return RecordDTO{
		ID:        record.ID,
		UserID:    record.UserID,
		Type:      record.Type,
		Content:   record.Content,
		FileURL:   record.FileURL,
		CreatedAt: record.CreatedAt,
		Analyses:  analyses,
	}
}

func analysisFromModel(analysis *models.AIAnalysis) AnalysisDTO {
	return AnalysisDTO{
		ID:             analysis.ID,
		RecordID:       analysis.RecordID,
		AnalysisResult: analysis.AnalysisResult,
		Sentiment:      analysis.Sentiment,
		Keywords:       analysis.Keywords,
		CreatedAt:      analysis.CreatedAt,
	}
}
