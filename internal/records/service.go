package records

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/yanchenliu/moodlog-backend/pkg/db/models"
	"github.com/yanchenliu/moodlog-backend/pkg/enums"
	pkgerrors "github.com/yanchenliu/moodlog-backend/pkg/errors"
	"gorm.io/gorm"
)

// Service defines the behavior needed by the records controller.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, req CreateRecordRequest) (*RecordDTO, error)
	List(ctx context.Context, userID uuid.UUID, query ListQuery) ([]RecordDTO, error)
	AttachAnalysis(ctx context.Context, userID, recordID uuid.UUID, req AttachAnalysisRequest) (*AnalysisDTO, error)
}

type recordRepository interface {
	Create(ctx context.Context, record *models.Record) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Record, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Record, error)
	CreateAnalysis(ctx context.Context, analysis *models.AIAnalysis) error
}

type service struct {
	repo recordRepository
}

// ServiceParams bundles the dependencies required to build a records service.
type ServiceParams struct {
	Repo recordRepository
}

// NewService constructs a records service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("records repository is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, req CreateRecordRequest) (*RecordDTO, error) {
	captureType, err := enums.ParseCaptureType(strings.ToLower(strings.TrimSpace(req.Type)))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid record type")
	}
	storageType, err := captureType.StorageType()
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid record type")
	}

	content := strings.TrimSpace(req.Content)
	fileURL := strings.TrimSpace(req.FileURL)
	if content == "" && fileURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "record needs content or a file url")
	}

	record := &models.Record{
		UserID:  userID,
		Type:    storageType,
		Content: content,
		FileURL: fileURL,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create record")
	}
	dto := FromModel(record)
	return &dto, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, query ListQuery) ([]RecordDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID, query.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list records")
	}
	dtos := make([]RecordDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, FromModel(&rows[i]))
	}
	return dtos, nil
}

func (s *service) AttachAnalysis(ctx context.Context, userID, recordID uuid.UUID, req AttachAnalysisRequest) (*AnalysisDTO, error) {
	record, err := s.repo.FindByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load record")
	}
	// Ownership checks surface as not-found so record IDs cannot be probed.
	if record.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
	}

	result := strings.TrimSpace(req.AnalysisResult)
	if result == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "analysis result is required")
	}

	var sentiment *enums.Sentiment
	if trimmed := strings.TrimSpace(req.Sentiment); trimmed != "" {
		parsed, err := enums.ParseSentiment(strings.ToLower(trimmed))
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid sentiment")
		}
		sentiment = &parsed
	}

	analysis := &models.AIAnalysis{
		RecordID:       record.ID,
		AnalysisResult: result,
		Sentiment:      sentiment,
		Keywords:       pq.StringArray(req.Keywords),
	}
	if err := s.repo.CreateAnalysis(ctx, analysis); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create analysis")
	}
	dto := analysisFromModel(analysis)
	return &dto, nil
}
