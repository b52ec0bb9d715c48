// Package history powers the record browsing views: the recent list on the
// home screen, the full list with filters, and the calendar.
package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yanchenliu/moodlog-backend/client"
	"github.com/yanchenliu/moodlog-backend/pkg/enums"
	"github.com/yanchenliu/moodlog-backend/pkg/logger"
)

// RecentLimit caps the home-screen list.
const RecentLimit = 5

// ViewMode selects how the history page presents records. The date filter
// only applies in calendar mode; switching to list mode shows everything
// again without clearing the selection.
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewCalendar
)

// Filter narrows the record list. Zero values match everything.
type Filter struct {
	Type   enums.RecordType
	Search string
	Date   *time.Time
	View   ViewMode
}

// Service loads records for the browsing views.
type Service struct {
	backend client.Backend
	logg    *logger.Logger
}

type Params struct {
	Backend client.Backend
	Logger  *logger.Logger
}

func NewService(params Params) (*Service, error) {
	if params.Backend == nil {
		return nil, fmt.Errorf("backend is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Service{backend: params.Backend, logg: params.Logger}, nil
}

// Load fetches the newest records, all of them when limit is zero.
func (s *Service) Load(ctx context.Context, limit int) ([]client.Record, error) {
	records, err := s.backend.ListRecords(ctx, limit)
	if err != nil {
		s.logg.Error(ctx, "failed to load records", err)
		return nil, err
	}
	return records, nil
}

// Recent fetches the home-screen slice.
func (s *Service) Recent(ctx context.Context) ([]client.Record, error) {
	return s.Load(ctx, RecentLimit)
}

// Apply narrows records with every active filter. Order is preserved.
func Apply(records []client.Record, f Filter) []client.Record {
	out := make([]client.Record, 0, len(records))
	for _, r := range records {
		if matches(r, f) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r client.Record, f Filter) bool {
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	if !matchesSearch(r, f.Search) {
		return false
	}
	if f.View == ViewCalendar && f.Date != nil && !sameDay(r.CreatedAt, *f.Date) {
		return false
	}
	return true
}

// matchesSearch checks the record content and every attached analysis,
// case-insensitively.
func matchesSearch(r client.Record, search string) bool {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(r.Content), needle) {
		return true
	}
	for _, a := range r.Analyses {
		if strings.Contains(strings.ToLower(a.AnalysisResult), needle) {
			return true
		}
	}
	return false
}

// sameDay reports whether t falls on ref's calendar day in ref's location.
// Record timestamps arrive in UTC while the user picks local days, so the
// timestamp converts before its date is read.
func sameDay(t, ref time.Time) bool {
	ty, tm, td := t.In(ref.Location()).Date()
	ry, rm, rd := ref.Date()
	return ty == ry && tm == rm && td == rd
}
