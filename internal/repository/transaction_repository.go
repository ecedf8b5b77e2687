package repository

import (
	"context"

	"github.com/honeynil/LavenderPOS/internal/models"
)

type TransactionRepository interface {
	ListByUser(ctx context.Context, userID int32) ([]models.TransactionView, error)
}
