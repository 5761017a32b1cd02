package models

import "time"

// DeliveryAttempt records one attempt to deliver a day's reading,
// logging its status and any potential errors.
type DeliveryAttempt struct {
	ID              string    `json:"id"`
	PlanFingerprint string    `json:"plan_fingerprint"`
	Day             int       `json:"day"`
	Reference       string    `json:"reference"`
	DestinationType string    `json:"destination_type"`
	CreatedAt       time.Time `json:"created_at"`
	Status          string    `json:"status"` // 'delivered' or 'failed'
	ErrorMessage    string    `json:"error_message,omitempty"`
}
