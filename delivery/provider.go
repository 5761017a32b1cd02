package delivery

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/coreybb/lectio/models"
)

// DeliveryProvider is the adapter interface for delivery mechanisms.
type DeliveryProvider interface {
	// Type returns the destination type this provider handles (e.g. "telegram").
	Type() string
	// Deliver sends body to recipientAddress.
	Deliver(ctx context.Context, recipientAddress string, body string) error
}

// AttemptRecorder persists delivery attempts. The history store implements it.
type AttemptRecorder interface {
	CreateAttempt(ctx context.Context, attempt *models.DeliveryAttempt) error
}

// DeliveryError reports a delivery the messaging provider did not accept.
type DeliveryError struct {
	Destination string
	StatusCode  int // zero when no response was received
	Err         error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("deliver to %s: status %d: %v", e.Destination, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("deliver to %s: %v", e.Destination, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// DeliveryService selects the provider for a destination, sends the
// message, and records the attempt when a recorder is configured.
type DeliveryService struct {
	providers map[string]DeliveryProvider
	attempts  AttemptRecorder
}

// NewDeliveryService registers providers by type. attempts may be nil.
func NewDeliveryService(attempts AttemptRecorder, providers ...DeliveryProvider) *DeliveryService {
	providerMap := make(map[string]DeliveryProvider, len(providers))
	for _, p := range providers {
		providerMap[p.Type()] = p
	}
	return &DeliveryService{
		providers: providerMap,
		attempts:  attempts,
	}
}

// ExecuteDelivery sends d and returns the provider's error, if any. A
// failure to record the attempt is logged but does not fail the delivery.
func (s *DeliveryService) ExecuteDelivery(ctx context.Context, d *models.Delivery) error {
	provider, ok := s.providers[d.Destination.Type]
	if !ok {
		return &DeliveryError{
			Destination: d.Destination.Type,
			Err:         fmt.Errorf("no delivery provider registered for type %q", d.Destination.Type),
		}
	}

	deliverErr := provider.Deliver(ctx, d.Destination.Address, d.Body)

	attempt := models.DeliveryAttempt{
		ID:              uuid.NewString(),
		PlanFingerprint: d.PlanFingerprint,
		Day:             d.Day,
		Reference:       d.Reference,
		DestinationType: d.Destination.Type,
		CreatedAt:       time.Now().UTC(),
	}

	if deliverErr != nil {
		attempt.Status = string(models.DeliveryStatusFailed)
		attempt.ErrorMessage = deliverErr.Error()
		log.Printf("ERROR (DeliveryService): Delivery of day %d (%s) failed: %v", d.Day, d.Reference, deliverErr)
	} else {
		attempt.Status = string(models.DeliveryStatusDelivered)
		log.Printf("INFO (DeliveryService): Delivered day %d (%s) via %s", d.Day, d.Reference, d.Destination.Type)
	}

	if s.attempts != nil {
		if err := s.attempts.CreateAttempt(ctx, &attempt); err != nil {
			log.Printf("WARN (DeliveryService): Failed to record attempt for day %d: %v", d.Day, err)
		}
	}

	return deliverErr
}
