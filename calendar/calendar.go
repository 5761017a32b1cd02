// Package calendar maps wall-clock dates onto reading-plan days.
//
// Nothing is persisted: the day index is recomputed on every run from the
// plan's start date, so a missed run never shifts the schedule.
package calendar

import (
	"errors"
	"fmt"
	"time"

	"github.com/coreybb/lectio/models"
)

var (
	// ErrScheduleExhausted means every chapter of the plan has been read.
	// It is a terminal state, not a failure.
	ErrScheduleExhausted = errors.New("reading plan complete")

	// ErrNotStarted means today is before the plan's start date.
	ErrNotStarted = errors.New("reading plan has not started yet")
)

// DayIndex returns the number of whole calendar days between the plan's
// start date and the date of now, both observed in loc. It is negative
// before the start date.
func DayIndex(now, start time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	today := civilDate(now.In(loc))
	first := civilDate(start.In(loc))
	return int(today.Sub(first) / (24 * time.Hour))
}

// civilDate drops the clock and zone so DST transitions cannot produce
// 23- or 25-hour days.
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Select returns the chapter due on dayIndex.
func Select(chapters []models.Chapter, dayIndex int) (models.Chapter, error) {
	if dayIndex < 0 {
		return models.Chapter{}, fmt.Errorf("%w: starts in %d day(s)", ErrNotStarted, -dayIndex)
	}
	if dayIndex >= len(chapters) {
		return models.Chapter{}, ErrScheduleExhausted
	}
	return chapters[dayIndex], nil
}

// Progress summarises where a plan stands on a given day.
type Progress struct {
	Day      int     `json:"day"` // 1-based; day 1 is the start date
	Total    int     `json:"total"`
	Percent  float64 `json:"percent"`
	Complete bool    `json:"complete"`
	Final    bool    `json:"final"` // today's chapter is the last one
}

// NewProgress computes progress for a zero-based day index over total
// chapters.
func NewProgress(dayIndex, total int) Progress {
	p := Progress{
		Day:      dayIndex + 1,
		Total:    total,
		Complete: dayIndex >= total,
		Final:    total > 0 && dayIndex == total-1,
	}
	if total > 0 {
		p.Percent = min(100, max(0, float64(dayIndex)/float64(total)*100))
	}
	return p
}

// Entry is one dated line of a reading schedule.
type Entry struct {
	Day     int            `json:"day"`
	Date    string         `json:"date"`
	Chapter models.Chapter `json:"chapter"`
}

// Upcoming lists up to n schedule entries starting at fromIndex (clamped to
// zero).
func Upcoming(chapters []models.Chapter, start time.Time, fromIndex, n int) []Entry {
	fromIndex = max(0, fromIndex)
	if n <= 0 || fromIndex >= len(chapters) {
		return nil
	}

	end := min(len(chapters), fromIndex+n)
	entries := make([]Entry, 0, end-fromIndex)
	for i := fromIndex; i < end; i++ {
		entries = append(entries, Entry{
			Day:     i + 1,
			Date:    start.AddDate(0, 0, i).Format(time.DateOnly),
			Chapter: chapters[i],
		})
	}
	return entries
}
