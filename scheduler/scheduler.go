package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/coreybb/lectio/calendar"
	"github.com/coreybb/lectio/delivery"
	"github.com/coreybb/lectio/models"
	"github.com/coreybb/lectio/plan"
	"github.com/coreybb/lectio/reference"
	"github.com/coreybb/lectio/storage"
)

// Status is the terminal state of one run.
type Status string

const (
	StatusDelivered     Status = "delivered"
	StatusComplete      Status = "complete"
	StatusSkipped       Status = "skipped"
	StatusOutsideWindow Status = "outside_window"
	StatusDryRun        Status = "dry_run"
)

// Result describes what a run did.
type Result struct {
	Status   Status            `json:"status"`
	Progress calendar.Progress `json:"progress"`
	Chapter  string            `json:"chapter,omitempty"`
	Message  string            `json:"message,omitempty"` // set for dry runs only
}

// PassageFetcher retrieves chapter text.
type PassageFetcher interface {
	Fetch(ctx context.Context, chapter models.Chapter) (*models.Passage, error)
}

// Deliverer sends a rendered message.
type Deliverer interface {
	ExecuteDelivery(ctx context.Context, d *models.Delivery) error
}

// DeliveryHistory answers whether a plan day was already delivered.
type DeliveryHistory interface {
	HasDelivered(ctx context.Context, planFingerprint string, day int) (bool, error)
}

// Options control a Scheduler's runs.
type Options struct {
	PlanFile      string
	ChatID        string
	RespectWindow bool          // only send near the plan's daily_time
	Window        time.Duration // defaults to calendar.DefaultWindow
	Force         bool          // send even if history says the day is done
	DryRun        bool          // render but do not send
}

// Scheduler runs the daily pipeline: load the plan, pick today's chapter,
// fetch its text and deliver it.
type Scheduler struct {
	opts      Options
	fetcher   PassageFetcher
	deliverer Deliverer
	history   DeliveryHistory
	archive   storage.MessageStorer
	now       func() time.Time
	mu        sync.Mutex
}

// New creates a Scheduler. history and archive may be nil.
func New(
	opts Options,
	fetcher PassageFetcher,
	deliverer Deliverer,
	history DeliveryHistory,
	archive storage.MessageStorer,
) *Scheduler {
	if opts.Window <= 0 {
		opts.Window = calendar.DefaultWindow
	}
	return &Scheduler{
		opts:      opts,
		fetcher:   fetcher,
		deliverer: deliverer,
		history:   history,
		archive:   archive,
		now:       time.Now,
	}
}

// Tick performs a single run. Plan completion, an already-delivered day and
// a run outside the send window are successful results; every other
// problem is returned as a typed error and nothing is sent.
func (s *Scheduler) Tick(ctx context.Context) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 1. Load and parse the plan
	p, chapters, err := s.loadPlan()
	if err != nil {
		return Result{}, err
	}

	// 2. Work out today's chapter
	now := s.now()
	dayIndex := calendar.DayIndex(now, p.StartDate, p.Location)
	progress := calendar.NewProgress(dayIndex, len(chapters))
	log.Printf("INFO (Scheduler): Reading plan started %s, current day %d", p.StartDateString(), progress.Day)

	chapter, err := calendar.Select(chapters, dayIndex)
	switch {
	case errors.Is(err, calendar.ErrScheduleExhausted):
		log.Printf("INFO (Scheduler): Reading plan completed, all %d chapters have been read", progress.Total)
		return Result{Status: StatusComplete, Progress: progress}, nil
	case errors.Is(err, calendar.ErrNotStarted):
		return Result{}, &plan.ConfigError{Path: s.opts.PlanFile, Field: "start_date", Err: err}
	case err != nil:
		return Result{}, err
	}

	result := Result{Progress: progress, Chapter: chapter.String()}

	// 3. Respect the send window when asked to
	if s.opts.RespectWindow {
		ok, err := calendar.WithinWindow(p, now, s.opts.Window)
		if err != nil {
			return Result{}, &plan.ConfigError{Path: s.opts.PlanFile, Field: "daily_time", Err: err}
		}
		if !ok {
			log.Printf("INFO (Scheduler): Outside the %s window around %s %s, not sending", s.opts.Window, p.DailyTime, p.Timezone)
			result.Status = StatusOutsideWindow
			return result, nil
		}
	}

	// 4. Skip days already delivered for this plan
	fingerprint := plan.Fingerprint(p)
	if s.history != nil && !s.opts.Force && !s.opts.DryRun {
		done, err := s.history.HasDelivered(ctx, fingerprint, progress.Day)
		if err != nil {
			log.Printf("WARN (Scheduler): Could not check delivery history, sending anyway: %v", err)
		} else if done {
			log.Printf("INFO (Scheduler): Day %d (%s) was already delivered, skipping", progress.Day, chapter)
			result.Status = StatusSkipped
			return result, nil
		}
	}

	log.Printf("INFO (Scheduler): Today's reading: %s (Day %d/%d)", chapter, progress.Day, progress.Total)

	// 5. Fetch the passage
	passage, err := s.fetcher.Fetch(ctx, chapter)
	if err != nil {
		return Result{}, err
	}

	message := delivery.FormatMessage(progress.Day, chapter, passage)

	if s.opts.DryRun {
		result.Status = StatusDryRun
		result.Message = message
		return result, nil
	}

	// 6. Deliver
	d := &models.Delivery{
		PlanFingerprint: fingerprint,
		Day:             progress.Day,
		Reference:       chapter.String(),
		Destination: models.DeliveryDestination{
			Type:    models.DestinationTypeTelegram,
			Address: s.opts.ChatID,
		},
		Body: message,
	}
	if err := s.deliverer.ExecuteDelivery(ctx, d); err != nil {
		return Result{}, err
	}

	// 7. Archive
	if s.archive != nil {
		if _, err := s.archive.Store(fingerprint, progress.Day, []byte(message)); err != nil {
			log.Printf("WARN (Scheduler): Failed to archive day %d: %v", progress.Day, err)
		}
	}

	log.Printf("INFO (Scheduler): Successfully sent day %d", progress.Day)
	log.Printf("INFO (Scheduler): Progress: %d/%d chapters (%.1f%%)", progress.Day, progress.Total, progress.Percent)
	if progress.Final {
		log.Println("INFO (Scheduler): This was the final chapter of the reading plan!")
	}

	result.Status = StatusDelivered
	return result, nil
}

func (s *Scheduler) loadPlan() (models.ReadingPlan, []models.Chapter, error) {
	p, err := plan.Load(s.opts.PlanFile)
	if err != nil {
		return models.ReadingPlan{}, nil, err
	}

	ranges, err := reference.Parse(p.References)
	if err != nil {
		return models.ReadingPlan{}, nil, err
	}

	return p, reference.Flatten(ranges), nil
}

// Overview is a read-only view of a plan's state.
type Overview struct {
	References  string            `json:"references"`
	StartDate   string            `json:"start_date"`
	DailyTime   string            `json:"daily_time"`
	Timezone    string            `json:"timezone"`
	Fingerprint string            `json:"fingerprint"`
	Progress    calendar.Progress `json:"progress"`
	Today       *models.Chapter   `json:"today,omitempty"`
	Upcoming    []calendar.Entry  `json:"upcoming"`
}

// Overview reports progress and the next n scheduled chapters without
// contacting any provider.
func (s *Scheduler) Overview(n int) (*Overview, error) {
	p, chapters, err := s.loadPlan()
	if err != nil {
		return nil, err
	}

	dayIndex := calendar.DayIndex(s.now(), p.StartDate, p.Location)
	ov := &Overview{
		References:  p.References,
		StartDate:   p.StartDateString(),
		DailyTime:   p.DailyTime,
		Timezone:    p.Timezone,
		Fingerprint: plan.Fingerprint(p),
		Progress:    calendar.NewProgress(dayIndex, len(chapters)),
		Upcoming:    calendar.Upcoming(chapters, p.StartDate, dayIndex, n),
	}
	if ov.Upcoming == nil {
		ov.Upcoming = []calendar.Entry{}
	}
	if chapter, err := calendar.Select(chapters, dayIndex); err == nil {
		ov.Today = &chapter
	}
	return ov, nil
}

// PlanSchedule returns the cron expression and location for the plan's
// daily time.
func (s *Scheduler) PlanSchedule() (string, *time.Location, error) {
	p, err := plan.Load(s.opts.PlanFile)
	if err != nil {
		return "", nil, err
	}
	spec, err := calendar.CronSpec(p.DailyTime)
	if err != nil {
		return "", nil, fmt.Errorf("invalid daily time: %w", err)
	}
	return spec, p.Location, nil
}
