package models

import "time"

type EventType string

const (
	EventPurchaseCreated   EventType = "purchase.created"
	EventPurchaseClaimed   EventType = "purchase.claimed"
	EventPurchaseConfirmed EventType = "purchase.confirmed"
	EventPurchaseCancelled EventType = "purchase.cancelled"
)

type PurchaseEvent struct {
	EventID   string    `json:"event_id"`
	Type      EventType `json:"type"`
	Barcode   string    `json:"barcode"`
	UserID    int32     `json:"user_id"`
	VendorID  int32     `json:"vendor_id,omitempty"`
	Amount    float64   `json:"amount,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
