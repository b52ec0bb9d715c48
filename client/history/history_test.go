package history

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yanchenliu/moodlog-backend/client"
	"github.com/yanchenliu/moodlog-backend/pkg/enums"
	"github.com/yanchenliu/moodlog-backend/pkg/logger"
)

func day(yearDay int) time.Time {
	return time.Date(2026, time.August, yearDay, 12, 0, 0, 0, time.UTC)
}

func record(t enums.RecordType, content string, createdAt time.Time, analyses ...string) client.Record {
	r := client.Record{
		ID:        uuid.New(),
		Type:      t,
		Content:   content,
		CreatedAt: createdAt,
	}
	for _, a := range analyses {
		r.Analyses = append(r.Analyses, client.Analysis{AnalysisResult: a})
	}
	return r
}

func testRecords() []client.Record {
	return []client.Record{
		record(enums.RecordTypeText, "今天工作很顺利", day(20)),
		record(enums.RecordTypeAudio, "语音记录内容（模拟转换）", day(19), "基于你的INTJ性格类型的分析"),
		record(enums.RecordTypeImage, "图片记录", day(19)),
		record(enums.RecordTypeText, "Learning Go today", day(18)),
	}
}

func TestApplyTypeFilter(t *testing.T) {
	out := Apply(testRecords(), Filter{Type: enums.RecordTypeText})
	if len(out) != 2 {
		t.Fatalf("expected 2 text records, got %d", len(out))
	}
	for _, r := range out {
		if r.Type != enums.RecordTypeText {
			t.Fatalf("unexpected type %v", r.Type)
		}
	}
}

func TestApplySearchMatchesContentAndAnalyses(t *testing.T) {
	records := testRecords()

	out := Apply(records, Filter{Search: "工作"})
	if len(out) != 1 || out[0].Content != "今天工作很顺利" {
		t.Fatalf("unexpected content match %+v", out)
	}

	out = Apply(records, Filter{Search: "intj"})
	if len(out) != 1 || out[0].Type != enums.RecordTypeAudio {
		t.Fatalf("search must reach analysis text, got %+v", out)
	}

	out = Apply(records, Filter{Search: "LEARNING go"})
	if len(out) != 1 {
		t.Fatalf("search must be case-insensitive, got %d", len(out))
	}
}

func TestDateFilterOnlyAppliesInCalendarView(t *testing.T) {
	records := testRecords()
	selected := day(19)

	list := Apply(records, Filter{Date: &selected, View: ViewList})
	if len(list) != len(records) {
		t.Fatalf("list view must ignore the date, got %d", len(list))
	}

	calendar := Apply(records, Filter{Date: &selected, View: ViewCalendar})
	if len(calendar) != 2 {
		t.Fatalf("expected 2 records on the selected day, got %d", len(calendar))
	}
}

func TestFilterOrderDoesNotMatter(t *testing.T) {
	records := testRecords()
	selected := day(19)
	f := Filter{Type: enums.RecordTypeAudio, Search: "语音", Date: &selected, View: ViewCalendar}

	combined := Apply(records, f)
	stepwise := Apply(Apply(Apply(records, Filter{Search: "语音"}), Filter{Date: &selected, View: ViewCalendar}), Filter{Type: enums.RecordTypeAudio})
	if len(combined) != 1 || len(stepwise) != 1 || combined[0].ID != stepwise[0].ID {
		t.Fatalf("filters must compose: combined=%d stepwise=%d", len(combined), len(stepwise))
	}
}

func TestMonthGridShape(t *testing.T) {
	// August 2026 starts on a Saturday.
	ref := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	cells := MonthGrid(ref, nil, day(20), nil)

	if len(cells) != 42 {
		t.Fatalf("expected 42 cells, got %d", len(cells))
	}
	if cells[0].Date.Weekday() != time.Sunday {
		t.Fatalf("grid must start on Sunday, got %v", cells[0].Date.Weekday())
	}
	if got := cells[0].Date; got.Month() != time.July || got.Day() != 26 {
		t.Fatalf("unexpected first cell %v", got)
	}
	if cells[0].InMonth {
		t.Fatal("leading July cell must be out of month")
	}
	if !cells[6].InMonth || cells[6].Date.Day() != 1 {
		t.Fatalf("August 1st should land on the first Saturday, got %v", cells[6].Date)
	}
}

func TestMonthGridFlags(t *testing.T) {
	ref := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	selected := day(19)
	now := day(20)
	records := []client.Record{record(enums.RecordTypeText, "x", day(19))}

	cells := MonthGrid(ref, &selected, now, records)

	var selectedCell, todayCell *DayCell
	for i := range cells {
		if cells[i].Selected {
			selectedCell = &cells[i]
		}
		if cells[i].Today {
			todayCell = &cells[i]
		}
	}
	if selectedCell == nil || selectedCell.Date.Day() != 19 {
		t.Fatalf("selected flag missing: %+v", selectedCell)
	}
	if !selectedCell.HasRecord {
		t.Fatal("selected day has a record and must be marked")
	}
	if todayCell == nil || todayCell.Date.Day() != 20 {
		t.Fatalf("today flag missing: %+v", todayCell)
	}
	if todayCell.HasRecord {
		t.Fatal("today has no record and must not be marked")
	}
}

type fakeBackend struct {
	client.Backend

	records   []client.Record
	lastLimit int
}

func (f *fakeBackend) ListRecords(_ context.Context, limit int) ([]client.Record, error) {
	f.lastLimit = limit
	return f.records, nil
}

func TestRecentUsesHomeLimit(t *testing.T) {
	backend := &fakeBackend{records: testRecords()}
	svc, err := NewService(Params{
		Backend: backend,
		Logger:  logger.New(logger.Options{Level: zerolog.ErrorLevel}),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	records, err := svc.Recent(context.Background())
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if backend.lastLimit != RecentLimit {
		t.Fatalf("expected limit %d, got %d", RecentLimit, backend.lastLimit)
	}
	if len(records) != len(testRecords()) {
		t.Fatalf("unexpected records %d", len(records))
	}
}

func TestDateFilterMatchesLocalDayForUTCTimestamps(t *testing.T) {
	loc := time.FixedZone("UTC-4", -4*60*60)
	// 23:30 local on Aug 28 is 03:30 UTC on Aug 29.
	records := []client.Record{
		record(enums.RecordTypeText, "深夜的想法", time.Date(2026, time.August, 29, 3, 30, 0, 0, time.UTC)),
	}
	selected := time.Date(2026, time.August, 28, 0, 0, 0, 0, loc)

	out := Apply(records, Filter{Date: &selected, View: ViewCalendar})
	if len(out) != 1 {
		t.Fatalf("record written before local midnight must match its local day, got %d", len(out))
	}

	next := time.Date(2026, time.August, 29, 0, 0, 0, 0, loc)
	out = Apply(records, Filter{Date: &next, View: ViewCalendar})
	if len(out) != 0 {
		t.Fatalf("record must not also match the UTC day, got %d", len(out))
	}
}

func TestMonthGridMarksLocalDayForUTCTimestamps(t *testing.T) {
	loc := time.FixedZone("UTC-4", -4*60*60)
	ref := time.Date(2026, time.August, 1, 0, 0, 0, 0, loc)
	records := []client.Record{
		record(enums.RecordTypeText, "深夜的想法", time.Date(2026, time.August, 29, 3, 30, 0, 0, time.UTC)),
	}
	now := time.Date(2026, time.August, 30, 9, 0, 0, 0, loc)

	cells := MonthGrid(ref, nil, now, records)

	marked := map[int]bool{}
	for _, c := range cells {
		if c.InMonth && c.HasRecord {
			marked[c.Date.Day()] = true
		}
	}
	if !marked[28] {
		t.Fatal("record written 23:30 local Aug 28 must mark Aug 28")
	}
	if marked[29] {
		t.Fatal("record must not also mark its UTC day Aug 29")
	}
}
