package repository

import (
	"context"

	"github.com/honeynil/LavenderPOS/internal/models"
)

type PendingTransactionRepository interface {
	Create(ctx context.Context, pt *models.PendingTransaction) error
	// FindByBarcode returns the most recent pending transaction for the barcode.
	FindByBarcode(ctx context.Context, barcode string) (*models.PendingTransaction, error)
	// ExistsUnresolved reports whether a not yet confirmed row holds the barcode.
	ExistsUnresolved(ctx context.Context, barcode string) (bool, error)
	Claim(ctx context.Context, id, vendorID int32, amount float64) error
	// Confirm marks the row claimed and inserts the final transaction atomically.
	Confirm(ctx context.Context, pt *models.PendingTransaction) (*models.Transaction, error)
}
