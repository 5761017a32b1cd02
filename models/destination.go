package models

// DestinationTypeTelegram is the only destination type lectio delivers to.
const DestinationTypeTelegram = "telegram"

// DeliveryDestination names where a message is sent.
type DeliveryDestination struct {
	Type    string `json:"type"`
	Address string `json:"address"` // Telegram chat ID
}
