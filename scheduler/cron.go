package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// StartCron runs Tick every day at the plan's daily time, in the plan's
// zone, until ctx is cancelled. The schedule is read once; restart to pick
// up a changed daily_time.
func (s *Scheduler) StartCron(ctx context.Context) error {
	spec, loc, err := s.PlanSchedule()
	if err != nil {
		return err
	}

	c := newCron(loc)
	if _, err := c.AddFunc(spec, func() { s.runScheduled(ctx) }); err != nil {
		return err
	}
	c.Start()
	log.Printf("INFO (Scheduler): Daily run scheduled (%s, %s)", spec, loc)

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		log.Println("INFO (Scheduler): Cron stopped")
	}()
	return nil
}

// newCron builds a cron runner in loc whose jobs recover from panics, so a
// bad run is logged and the next day's run still happens.
func newCron(loc *time.Location) *cron.Cron {
	return cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cron.DefaultLogger)),
	)
}

func (s *Scheduler) runScheduled(ctx context.Context) {
	result, err := s.Tick(ctx)
	if err != nil {
		log.Printf("ERROR (Scheduler): Scheduled run failed: %v", err)
		return
	}
	log.Printf("INFO (Scheduler): Scheduled run finished: %s", result.Status)
}
