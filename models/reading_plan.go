package models

import "time"

// ReadingPlan is a validated reading-plan record. It is built once per run
// from static configuration and never mutated.
type ReadingPlan struct {
	References string         `json:"references"`
	StartDate  time.Time      `json:"start_date"` // midnight of the start date in Location
	DailyTime  string         `json:"daily_time"` // "HH:MM"
	Timezone   string         `json:"timezone"`   // label as configured, e.g. "SGT"
	Location   *time.Location `json:"-"`
}

// StartDateString returns the start date in ISO form.
func (p ReadingPlan) StartDateString() string {
	return p.StartDate.Format(time.DateOnly)
}
