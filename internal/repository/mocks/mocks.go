package mocks

import (
	"context"

	"github.com/honeynil/LavenderPOS/internal/models"
	"github.com/stretchr/testify/mock"
)

type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) GetByID(ctx context.Context, id int32) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

type VendorRepository struct {
	mock.Mock
}

func (m *VendorRepository) GetByID(ctx context.Context, id int32) (*models.Vendor, error) {
	args := m.Called(ctx, id)
	vendor, _ := args.Get(0).(*models.Vendor)
	return vendor, args.Error(1)
}

func (m *VendorRepository) FindBySecret(ctx context.Context, secret string) (*models.Vendor, error) {
	args := m.Called(ctx, secret)
	vendor, _ := args.Get(0).(*models.Vendor)
	return vendor, args.Error(1)
}

func (m *VendorRepository) Upsert(ctx context.Context, vendor *models.Vendor) error {
	args := m.Called(ctx, vendor)
	return args.Error(0)
}

type PendingTransactionRepository struct {
	mock.Mock
}

func (m *PendingTransactionRepository) Create(ctx context.Context, pt *models.PendingTransaction) error {
	args := m.Called(ctx, pt)
	return args.Error(0)
}

func (m *PendingTransactionRepository) FindByBarcode(ctx context.Context, barcode string) (*models.PendingTransaction, error) {
	args := m.Called(ctx, barcode)
	pt, _ := args.Get(0).(*models.PendingTransaction)
	return pt, args.Error(1)
}

func (m *PendingTransactionRepository) ExistsUnresolved(ctx context.Context, barcode string) (bool, error) {
	args := m.Called(ctx, barcode)
	return args.Bool(0), args.Error(1)
}

func (m *PendingTransactionRepository) Claim(ctx context.Context, id, vendorID int32, amount float64) error {
	args := m.Called(ctx, id, vendorID, amount)
	return args.Error(0)
}

func (m *PendingTransactionRepository) Confirm(ctx context.Context, pt *models.PendingTransaction) (*models.Transaction, error) {
	args := m.Called(ctx, pt)
	tx, _ := args.Get(0).(*models.Transaction)
	return tx, args.Error(1)
}

type TransactionRepository struct {
	mock.Mock
}

func (m *TransactionRepository) ListByUser(ctx context.Context, userID int32) ([]models.TransactionView, error) {
	args := m.Called(ctx, userID)
	views, _ := args.Get(0).([]models.TransactionView)
	return views, args.Error(1)
}
