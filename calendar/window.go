package calendar

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/coreybb/lectio/models"
)

// DefaultWindow is how far from daily_time a run may be and still send.
const DefaultWindow = time.Hour

// CronSpec converts a daily time ("HH:MM" or "HH:MM:SS") to a standard
// five-field cron expression.
func CronSpec(dailyTime string) (string, error) {
	hour, minute, err := parseDailyTime(dailyTime)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}

// WithinWindow reports whether the plan's daily time, in the plan's zone,
// falls within window of now on either side.
func WithinWindow(p models.ReadingPlan, now time.Time, window time.Duration) (bool, error) {
	spec, err := CronSpec(p.DailyTime)
	if err != nil {
		return false, err
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return false, fmt.Errorf("failed to parse schedule %q: %w", spec, err)
	}

	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)

	// Next is strictly after its argument and rounds up to a whole second,
	// so backing off a nanosecond includes a tick exactly window ago and
	// nothing older.
	next := schedule.Next(local.Add(-window - time.Nanosecond))
	return !next.After(local.Add(window)), nil
}

func parseDailyTime(dailyTime string) (hour, minute int, err error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, dailyTime); err == nil {
			return t.Hour(), t.Minute(), nil
		}
	}
	return 0, 0, fmt.Errorf("failed to parse daily time %q", dailyTime)
}
