package delivery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreybb/lectio/models"
)

type stubProvider struct {
	err   error
	calls []string
}

func (s *stubProvider) Type() string { return models.DestinationTypeTelegram }

func (s *stubProvider) Deliver(_ context.Context, addr, body string) error {
	s.calls = append(s.calls, addr+"|"+body)
	return s.err
}

type memoryRecorder struct {
	attempts []models.DeliveryAttempt
	err      error
}

func (m *memoryRecorder) CreateAttempt(_ context.Context, a *models.DeliveryAttempt) error {
	m.attempts = append(m.attempts, *a)
	return m.err
}

func testDelivery() *models.Delivery {
	return &models.Delivery{
		PlanFingerprint: "fp",
		Day:             3,
		Reference:       "Psalms 3",
		Destination:     models.DeliveryDestination{Type: models.DestinationTypeTelegram, Address: "42"},
		Body:            "body",
	}
}

func TestExecuteDelivery_RecordsSuccess(t *testing.T) {
	provider := &stubProvider{}
	recorder := &memoryRecorder{}
	svc := NewDeliveryService(recorder, provider)

	require.NoError(t, svc.ExecuteDelivery(context.Background(), testDelivery()))

	assert.Equal(t, []string{"42|body"}, provider.calls)
	require.Len(t, recorder.attempts, 1)
	a := recorder.attempts[0]
	assert.Equal(t, "delivered", a.Status)
	assert.Equal(t, "fp", a.PlanFingerprint)
	assert.Equal(t, 3, a.Day)
	assert.Len(t, a.ID, 36)
	assert.Empty(t, a.ErrorMessage)
}

func TestExecuteDelivery_RecordsFailure(t *testing.T) {
	provider := &stubProvider{err: &DeliveryError{Destination: "telegram", StatusCode: 403, Err: errors.New("forbidden")}}
	recorder := &memoryRecorder{}
	svc := NewDeliveryService(recorder, provider)

	err := svc.ExecuteDelivery(context.Background(), testDelivery())

	var delErr *DeliveryError
	require.True(t, errors.As(err, &delErr))
	require.Len(t, recorder.attempts, 1)
	assert.Equal(t, "failed", recorder.attempts[0].Status)
	assert.Contains(t, recorder.attempts[0].ErrorMessage, "forbidden")
}

func TestExecuteDelivery_RecorderFailureIsNotFatal(t *testing.T) {
	svc := NewDeliveryService(&memoryRecorder{err: errors.New("disk full")}, &stubProvider{})

	assert.NoError(t, svc.ExecuteDelivery(context.Background(), testDelivery()))
}

func TestExecuteDelivery_NoRecorder(t *testing.T) {
	svc := NewDeliveryService(nil, &stubProvider{})

	assert.NoError(t, svc.ExecuteDelivery(context.Background(), testDelivery()))
}

func TestExecuteDelivery_UnknownDestination(t *testing.T) {
	svc := NewDeliveryService(nil)

	err := svc.ExecuteDelivery(context.Background(), testDelivery())

	var delErr *DeliveryError
	assert.True(t, errors.As(err, &delErr))
}
