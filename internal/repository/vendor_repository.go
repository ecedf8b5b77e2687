package repository

import (
	"context"

	"github.com/honeynil/LavenderPOS/internal/models"
)

type VendorRepository interface {
	GetByID(ctx context.Context, id int32) (*models.Vendor, error)
	FindBySecret(ctx context.Context, secret string) (*models.Vendor, error)
	Upsert(ctx context.Context, vendor *models.Vendor) error
}
