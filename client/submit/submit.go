// Package submit saves a captured entry: resolve its content, persist the
// record, run the simulated analysis, and attach the result.
package submit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/yanchenliu/moodlog-backend/client"
	"github.com/yanchenliu/moodlog-backend/client/capture"
	"github.com/yanchenliu/moodlog-backend/pkg/analysis"
	"github.com/yanchenliu/moodlog-backend/pkg/enums"
	"github.com/yanchenliu/moodlog-backend/pkg/logger"
)

const (
	MsgEmptyRecord = "请添加记录内容"
	MsgSaveFailed  = "保存失败，请稍后重试"

	// AudioPlaceholder stands in for transcription, which is simulated.
	AudioPlaceholder = "语音记录内容（模拟转换）"
	// ImagePlaceholder is the default content for an attached image.
	ImagePlaceholder = "图片记录"
)

// Submitter runs the save pipeline. Analyzing reports whether the simulated
// analysis is in flight so the UI can show its indicator.
type Submitter struct {
	backend  client.Backend
	analyzer *analysis.Analyzer
	logg     *logger.Logger

	mu        sync.Mutex
	analyzing bool
}

type Params struct {
	Backend  client.Backend
	Analyzer *analysis.Analyzer
	Logger   *logger.Logger
}

func NewSubmitter(params Params) (*Submitter, error) {
	if params.Backend == nil {
		return nil, fmt.Errorf("backend is required")
	}
	if params.Analyzer == nil {
		return nil, fmt.Errorf("analyzer is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Submitter{
		backend:  params.Backend,
		analyzer: params.Analyzer,
		logg:     params.Logger,
	}, nil
}

func (s *Submitter) Analyzing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analyzing
}

func (s *Submitter) setAnalyzing(v bool) {
	s.mu.Lock()
	s.analyzing = v
	s.mu.Unlock()
}

// resolveContent picks the record text for the capture mode. Edited text
// always wins; otherwise audio and image modes fall back to placeholders
// when they actually captured something.
func resolveContent(mode enums.CaptureType, text string, blob *capture.Blob, fileURL string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed != "" {
		return trimmed
	}
	switch mode {
	case enums.CaptureTypeAudio:
		if blob != nil {
			return AudioPlaceholder
		}
	case enums.CaptureTypeImage, enums.CaptureTypeScreenshot:
		if fileURL != "" || blob != nil {
			return ImagePlaceholder
		}
	}
	return ""
}

// Submit saves the captured entry and resets the workflow. The record
// survives an analysis failure; the analysis is commentary, not data.
func (s *Submitter) Submit(ctx context.Context, w *capture.Workflow, profile *client.Profile, fileURL string) (*client.Record, error) {
	mode := w.Mode()
	content := resolveContent(mode, w.Text(), w.Blob(), fileURL)
	if content == "" {
		return nil, errors.New(MsgEmptyRecord)
	}

	record, err := s.backend.InsertRecord(ctx, client.NewRecord{
		Type:    mode,
		Content: content,
		FileURL: fileURL,
	})
	if err != nil {
		if apiErr := client.AsAPIError(err); apiErr != nil {
			return nil, errors.New(apiErr.Message)
		}
		s.logg.Error(ctx, "failed to save record", err)
		return nil, errors.New(MsgSaveFailed)
	}

	s.attachAnalysis(ctx, record, profile, content, mode)

	w.Reset()
	return record, nil
}

func (s *Submitter) attachAnalysis(ctx context.Context, record *client.Record, profile *client.Profile, content string, mode enums.CaptureType) {
	s.setAnalyzing(true)
	defer s.setAnalyzing(false)

	storageType, err := mode.StorageType()
	if err != nil {
		s.logg.Error(ctx, "unknown capture type", err)
		return
	}

	in := analysis.Input{
		Content: content,
		Type:    storageType,
	}
	if profile != nil {
		in.MBTI = profile.MBTI
		in.Occupation = profile.Occupation
	}

	text, err := s.analyzer.Analyze(ctx, in)
	if err != nil {
		s.logg.Error(ctx, "analysis interrupted", err)
		return
	}

	attached, err := s.backend.InsertAnalysis(ctx, client.NewAnalysis{
		RecordID:       record.ID,
		AnalysisResult: text,
		Sentiment:      string(analysis.DefaultSentiment),
		Keywords:       analysis.DefaultKeywords,
	})
	if err != nil {
		s.logg.Error(ctx, "failed to attach analysis", err)
		return
	}
	record.Analyses = append(record.Analyses, *attached)
}
