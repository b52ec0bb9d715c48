package history

import (
	"time"

	"github.com/yanchenliu/moodlog-backend/client"
)

// gridCells is six full weeks, enough for any month layout.
const gridCells = 42

// DayCell is one calendar square.
type DayCell struct {
	Date      time.Time
	InMonth   bool
	Today     bool
	Selected  bool
	HasRecord bool
}

// MonthGrid lays out the calendar for the month containing ref: 42 cells
// starting on the Sunday on or before the 1st.
func MonthGrid(ref time.Time, selected *time.Time, now time.Time, records []client.Record) []DayCell {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	start := first.AddDate(0, 0, -int(first.Weekday()))

	// Record timestamps are UTC; day membership is decided in the grid's
	// location.
	loc := ref.Location()
	recordDays := make(map[string]struct{}, len(records))
	for _, r := range records {
		recordDays[dayKey(r.CreatedAt.In(loc))] = struct{}{}
	}

	cells := make([]DayCell, 0, gridCells)
	for i := 0; i < gridCells; i++ {
		date := start.AddDate(0, 0, i)
		_, hasRecord := recordDays[dayKey(date)]
		cells = append(cells, DayCell{
			Date:      date,
			InMonth:   date.Month() == ref.Month() && date.Year() == ref.Year(),
			Today:     sameDay(now, date),
			Selected:  selected != nil && sameDay(*selected, date),
			HasRecord: hasRecord,
		})
	}
	return cells
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
