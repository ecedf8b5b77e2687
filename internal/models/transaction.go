package models

import "time"

type Transaction struct {
	ID        int32     `json:"id"`
	UserID    int32     `json:"user_id"`
	Company   int32     `json:"company"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"timestamp"`
}

// TransactionView is a Transaction joined with its vendor name for the dashboard.
type TransactionView struct {
	Company   string    `json:"company"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"time"`
}
