package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/tracklane/tracklane/internal/tracker/domain"
	"github.com/tracklane/tracklane/internal/tracker/store"
)

var ErrInvalidRange = errors.New("invalid_range")

// ReportService aggregates closed time entries into daily, range,
// per-task and summary views. Running entries contribute zero seconds;
// their duration is unknown until the timer stops.
type ReportService struct {
	Store store.Store
}

// DailyReport is one user's work on a single calendar day (UTC).
type DailyReport struct {
	Date         string // YYYY-MM-DD
	TotalSeconds int64
	Entries      []domain.TimeEntry
}

// DayBucket is one day inside a range report.
type DayBucket struct {
	Date         string
	TotalSeconds int64
	EntryCount   int64
}

// RangeReport covers every day between start and end inclusive, with
// zero-work days present as empty buckets.
type RangeReport struct {
	Start        string
	End          string
	TotalSeconds int64
	Days         []DayBucket
}

// TaskReport is the time recorded against a single task.
type TaskReport struct {
	TaskID       string
	Title        string
	TotalSeconds int64
	EntryCount   int64
}

// SummaryReport condenses a range into headline numbers. The per-day
// average keeps its fractional part; totals not divisible by the day
// count would otherwise under-report.
type SummaryReport struct {
	Start            string
	End              string
	TotalSeconds     int64
	TaskCount        int64
	EntryCount       int64
	AvgSecondsPerDay float64
}

// Daily reports a user's entries whose StartedAt falls on date (UTC).
func (s *ReportService) Daily(ctx context.Context, userID string, date time.Time) (DailyReport, error) {
	day := startOfDay(date)
	entries, err := s.Store.TimeEntries().ListByUserBetween(ctx, userID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return DailyReport{}, err
	}

	report := DailyReport{
		Date:    day.Format("2006-01-02"),
		Entries: entries,
	}
	for _, e := range entries {
		report.TotalSeconds += entrySeconds(e)
	}
	return report, nil
}

// Range reports a user's work across [start, end] as one bucket per
// calendar day. Days without entries appear with zero totals.
func (s *ReportService) Range(ctx context.Context, userID string, start, end time.Time) (RangeReport, error) {
	first, last := startOfDay(start), startOfDay(end)
	if first.After(last) {
		return RangeReport{}, ErrInvalidRange
	}

	entries, err := s.Store.TimeEntries().ListByUserBetween(ctx, userID, first, last.AddDate(0, 0, 1))
	if err != nil {
		return RangeReport{}, err
	}

	buckets := make(map[string]*DayBucket)
	var days []DayBucket
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, DayBucket{Date: d.Format("2006-01-02")})
	}
	for i := range days {
		buckets[days[i].Date] = &days[i]
	}

	report := RangeReport{
		Start: first.Format("2006-01-02"),
		End:   last.Format("2006-01-02"),
	}
	for _, e := range entries {
		secs := entrySeconds(e)
		report.TotalSeconds += secs
		if b, ok := buckets[e.StartedAt.UTC().Format("2006-01-02")]; ok {
			b.TotalSeconds += secs
			b.EntryCount++
		}
	}
	report.Days = days
	return report, nil
}

// ByTask groups a user's work in [start, end] by task, largest first.
func (s *ReportService) ByTask(ctx context.Context, userID string, start, end time.Time) ([]TaskReport, error) {
	first, last := startOfDay(start), startOfDay(end)
	if first.After(last) {
		return nil, ErrInvalidRange
	}

	entries, err := s.Store.TimeEntries().ListByUserBetween(ctx, userID, first, last.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	byTask := make(map[string]*TaskReport)
	for _, e := range entries {
		r, ok := byTask[e.TaskID]
		if !ok {
			r = &TaskReport{TaskID: e.TaskID}
			// Task may have been deleted since; the entries cascade
			// with it, so a hit here always resolves.
			task, err := s.Store.Tasks().GetTaskByID(ctx, e.TaskID)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return nil, err
			}
			r.Title = task.Title
			byTask[e.TaskID] = r
		}
		r.TotalSeconds += entrySeconds(e)
		r.EntryCount++
	}

	reports := make([]TaskReport, 0, len(byTask))
	for _, r := range byTask {
		reports = append(reports, *r)
	}
	sort.Slice(reports, func(i, j int) bool {
		if reports[i].TotalSeconds != reports[j].TotalSeconds {
			return reports[i].TotalSeconds > reports[j].TotalSeconds
		}
		return reports[i].TaskID < reports[j].TaskID
	})
	return reports, nil
}

// Summary condenses [start, end] into totals and a per-day average over
// the inclusive day count.
func (s *ReportService) Summary(ctx context.Context, userID string, start, end time.Time) (SummaryReport, error) {
	first, last := startOfDay(start), startOfDay(end)
	if first.After(last) {
		return SummaryReport{}, ErrInvalidRange
	}

	entries, err := s.Store.TimeEntries().ListByUserBetween(ctx, userID, first, last.AddDate(0, 0, 1))
	if err != nil {
		return SummaryReport{}, err
	}

	report := SummaryReport{
		Start: first.Format("2006-01-02"),
		End:   last.Format("2006-01-02"),
	}
	tasks := make(map[string]struct{})
	for _, e := range entries {
		report.TotalSeconds += entrySeconds(e)
		report.EntryCount++
		tasks[e.TaskID] = struct{}{}
	}
	report.TaskCount = int64(len(tasks))

	days := int64(last.Sub(first).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	report.AvgSecondsPerDay = float64(report.TotalSeconds) / float64(days)

	return report, nil
}

func entrySeconds(e domain.TimeEntry) int64 {
	if e.DurationSeconds == nil {
		return 0
	}
	return *e.DurationSeconds
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
