package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestStartCron_StopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := New(Options{PlanFile: writePlan(t, psalmsPlan)}, &stubFetcher{}, &stubDeliverer{}, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, s.StartCron(ctx))
	cancel()
}

func TestStartCron_InvalidPlan(t *testing.T) {
	path := writePlan(t, `{"references":"Psalms 1","start_date":"2024-01-01","daily_time":"25:00","timezone":"UTC"}`)
	s := New(Options{PlanFile: path}, &stubFetcher{}, &stubDeliverer{}, nil, nil)

	err := s.StartCron(context.Background())

	assert.Error(t, err)
}

func TestNewCron_RecoversFromPanickingJob(t *testing.T) {
	c := newCron(time.UTC)
	id, err := c.AddFunc("0 8 * * *", func() { panic("boom") })
	require.NoError(t, err)

	job := c.Entry(id).WrappedJob
	require.NotNil(t, job)
	assert.NotPanics(t, job.Run)
}
