package models

// DeliveryStatus defines the set of allowed statuses for a DeliveryAttempt.
type DeliveryStatus string

const (
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusFailed    DeliveryStatus = "failed"
)

// Delivery is one rendered message bound for a destination.
type Delivery struct {
	PlanFingerprint string              `json:"plan_fingerprint"`
	Day             int                 `json:"day"`
	Reference       string              `json:"reference"`
	Destination     DeliveryDestination `json:"destination"`
	Body            string              `json:"-"`
}
