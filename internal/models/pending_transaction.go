package models

import "time"

type PendingStatus int16

const (
	StatusCreated PendingStatus = 0
	StatusScanned PendingStatus = 1
	StatusClaimed PendingStatus = 2
)

func (s PendingStatus) Valid() bool {
	return s >= StatusCreated && s <= StatusClaimed
}

// PendingTransaction is a purchase waiting for a vendor claim and a user confirmation.
// Company and Amount stay nil until a vendor agent claims the barcode.
type PendingTransaction struct {
	ID        int32         `json:"id"`
	Barcode   string        `json:"barcode"`
	UserID    int32         `json:"user_id"`
	Status    PendingStatus `json:"status"`
	Company   *int32        `json:"company"`
	Amount    *float64      `json:"amount"`
	CreatedAt time.Time     `json:"timestamp"`
}
