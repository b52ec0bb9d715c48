package seeder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/yanchenliu/moodlog-backend/pkg/analysis"
	"github.com/yanchenliu/moodlog-backend/pkg/db/models"
	"github.com/yanchenliu/moodlog-backend/pkg/enums"
	pkgerrors "github.com/yanchenliu/moodlog-backend/pkg/errors"
	"github.com/yanchenliu/moodlog-backend/pkg/logger"
)

// sample entries shown to a brand-new user so the history views are not
// empty. Content mirrors the capture flows: one text note, one transcribed
// voice note, one photo.
var sampleEntries = []struct {
	recordType enums.RecordType
	content    string
	ageHours   int
}{
	{enums.RecordTypeText, "今天开始使用心情日记，希望能坚持记录自己的想法和感受。", 48},
	{enums.RecordTypeAudio, "语音记录内容（模拟转换）", 26},
	{enums.RecordTypeImage, "图片记录", 3},
}

// Service provisions sample records for first-time users.
type Service interface {
	// Seed creates the sample entries for the user. The boolean reports
	// whether this call performed the seeding; repeat calls are no-ops.
	Seed(ctx context.Context, userID uuid.UUID) (bool, error)
}

type recordWriter interface {
	Create(ctx context.Context, record *models.Record) error
	CreateAnalysis(ctx context.Context, analysis *models.AIAnalysis) error
}

type seedGuard interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	SeedGuardKey(userID string) string
}

type service struct {
	records  recordWriter
	guard    seedGuard
	guardTTL time.Duration
	logg     *logger.Logger
}

// ServiceParams bundles the dependencies required to build a seeder.
type ServiceParams struct {
	Records  recordWriter
	Guard    seedGuard
	GuardTTL time.Duration
	Logger   *logger.Logger
}

// NewService constructs a seeder with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Records == nil {
		return nil, fmt.Errorf("record writer is required")
	}
	if params.Guard == nil {
		return nil, fmt.Errorf("seed guard is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	ttl := params.GuardTTL
	if ttl <= 0 {
		ttl = 720 * time.Hour
	}
	return &service{
		records:  params.Records,
		guard:    params.Guard,
		guardTTL: ttl,
		logg:     params.Logger,
	}, nil
}

func (s *service) Seed(ctx context.Context, userID uuid.UUID) (bool, error) {
	acquired, err := s.guard.SetNX(ctx, s.guard.SeedGuardKey(userID.String()), time.Now().UTC().Format(time.RFC3339), s.guardTTL)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire seed guard")
	}
	if !acquired {
		return false, nil
	}

	now := time.Now().UTC()
	for _, entry := range sampleEntries {
		record := &models.Record{
			UserID:    userID,
			Type:      entry.recordType,
			Content:   entry.content,
			CreatedAt: now.Add(-time.Duration(entry.ageHours) * time.Hour),
		}
		if err := s.records.Create(ctx, record); err != nil {
			return true, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create sample record")
		}

		sentiment := analysis.DefaultSentiment
		sample := &models.AIAnalysis{
			RecordID: record.ID,
			AnalysisResult: analysis.Compose(analysis.Input{
				Content: entry.content,
				Type:    entry.recordType,
			}),
			Sentiment: &sentiment,
			Keywords:  pq.StringArray(analysis.DefaultKeywords),
		}
		if err := s.records.CreateAnalysis(ctx, sample); err != nil {
			return true, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create sample analysis")
		}
	}

	ctx = s.logg.WithUserID(ctx, userID.String())
	s.logg.Info(ctx, "seeded sample records for new profile")
	return true, nil
}
