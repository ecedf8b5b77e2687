package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	stderrors "errors"

	"github.com/honeynil/LavenderPOS/internal/infrastructure/agent"
	"github.com/honeynil/LavenderPOS/internal/infrastructure/kafka"
	"github.com/honeynil/LavenderPOS/internal/infrastructure/redis"
	"github.com/honeynil/LavenderPOS/internal/models"
	"github.com/honeynil/LavenderPOS/internal/repository"
	pkgerrors "github.com/honeynil/LavenderPOS/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxBarcodeAttempts = 5
	dashboardCacheTTL  = 5 * time.Minute
)

type POSService interface {
	SignUp(ctx context.Context, in SignUpInput) (*models.User, error)
	SignIn(ctx context.Context, email, password string) (*models.User, error)
	GetUser(ctx context.Context, userID int32) (*models.User, error)
	Dashboard(ctx context.Context, userID int32) ([]models.TransactionView, error)
	StartPurchase(ctx context.Context, userID int32) (*PurchaseTicket, error)
	PendingForUser(ctx context.Context, userID int32, barcode string) (*models.PendingTransaction, error)
	ClaimBarcode(ctx context.Context, barcode, secret string, amount float64) error
	ConfirmPurchase(ctx context.Context, userID int32, barcode string) (*models.Transaction, error)
	CheckScan(ctx context.Context, userID int32, barcode string) (*ScanStatus, error)
	CancelPurchase(ctx context.Context, userID int32, barcode string) error
	SeedVendors(ctx context.Context, vendors []models.Vendor) error
}

type SignUpInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

type PurchaseTicket struct {
	Pending  *models.PendingTransaction
	ImageURL string
}

// ScanStatus is what a polling client sees. Company stays nil until a vendor claims the barcode.
type ScanStatus struct {
	Status  models.PendingStatus `json:"status"`
	Amount  *float64             `json:"amount"`
	Company *string              `json:"company"`
}

type Deps struct {
	Users        repository.UserRepository
	Vendors      repository.VendorRepository
	Pending      repository.PendingTransactionRepository
	Transactions repository.TransactionRepository
	Cache        redis.RedisClient
	Events       kafka.EventPublisher
	Agents       agent.Notifier
	Barcodes     BarcodeGenerator
	ImageBaseURL string
}

type posService struct {
	users        repository.UserRepository
	vendors      repository.VendorRepository
	pending      repository.PendingTransactionRepository
	transactions repository.TransactionRepository
	cache        redis.RedisClient
	events       kafka.EventPublisher
	agents       agent.Notifier
	barcodes     BarcodeGenerator
	imageBaseURL string
}

func NewPOSService(d Deps) *posService {
	if d.Barcodes == nil {
		d.Barcodes = RandomBarcode
	}
	return &posService{
		users:        d.Users,
		vendors:      d.Vendors,
		pending:      d.Pending,
		transactions: d.Transactions,
		cache:        d.Cache,
		events:       d.Events,
		agents:       d.Agents,
		barcodes:     d.Barcodes,
		imageBaseURL: d.ImageBaseURL,
	}
}

func (s *posService) SignUp(ctx context.Context, in SignUpInput) (*models.User, error) {
	ctx, span := otel.Tracer("pos-service").Start(ctx, "SignUp")
	defer span.End()

	if in.Email == "" || in.Password == "" {
		span.SetStatus(codes.Error, "empty email or password")
		return nil, pkgerrors.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "password hashing failed")
		slog.Error("failed to hash password", "error", err)
		return nil, fmt.Errorf("%w: failed to hash password", pkgerrors.ErrInternal)
	}

	user := &models.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "user creation failed")
		if stderrors.Is(err, pkgerrors.ErrUserAlreadyExists) {
			return nil, err
		}
		slog.Error("failed to create user", "error", err)
		return nil, fmt.Errorf("%w: failed to create user", pkgerrors.ErrInternal)
	}

	slog.Info("user signed up", "user_id", user.ID)
	return user, nil
}

func (s *posService) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	ctx, span := otel.Tracer("pos-service").Start(ctx, "SignIn")
	defer span.End()

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		span.SetStatus(codes.Error, "sign in failed")
		if !stderrors.Is(err, pkgerrors.ErrUserNotFound) {
			slog.Error("failed to look up user", "error", err)
		}
		return nil, pkgerrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		span.SetStatus(codes.Error, "invalid password")
		slog.Warn("invalid password", "user_id", user.ID)
		return nil, pkgerrors.ErrInvalidCredentials
	}

	slog.Info("user signed in", "user_id", user.ID)
	return user, nil
}

func (s *posService) GetUser(ctx context.Context, userID int32) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *posService) Dashboard(ctx context.Context, userID int32) ([]models.TransactionView, error) {
	ctx, span := otel.Tracer("pos-service").Start(ctx, "Dashboard")
	defer span.End()

	key := redis.TransactionsKey(userID)
	if cached, err := s.cache.Get(ctx, key); err == nil {
		var views []models.TransactionView
		if err := json.Unmarshal([]byte(cached), &views); err == nil {
			return views, nil
		}
		slog.Error("failed to unmarshal cached transactions", "user_id", userID)
	} else if !stderrors.Is(err, redis.ErrKeyNotFound) {
		slog.Error("failed to read dashboard cache", "user_id", userID, "error", err)
	}

	views, err := s.transactions.ListByUser(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list transactions failed")
		return nil, err
	}

	if raw, err := json.Marshal(views); err == nil {
		if err := s.cache.Set(ctx, key, string(raw), dashboardCacheTTL); err != nil {
			slog.Error("failed to cache transactions", "user_id", userID, "error", err)
		}
	}
	return views, nil
}

func (s *posService) StartPurchase(ctx context.Context, userID int32) (*PurchaseTicket, error) {
	ctx, span := otel.Tracer("pos-service").Start(ctx, "StartPurchase")
	defer span.End()
	span.SetAttributes(attribute.Int("user_id", int(userID)))

	barcode, err := s.allocateBarcode(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "barcode allocation failed")
		return nil, err
	}

	pt := &models.PendingTransaction{
		Barcode: barcode,
		UserID:  userID,
		Status:  models.StatusCreated,
	}
	if err := s.pending.Create(ctx, pt); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "pending transaction creation failed")
		return nil, err
	}

	s.publish(ctx, models.PurchaseEvent{
		Type:    models.EventPurchaseCreated,
		Barcode: barcode,
		UserID:  userID,
	})

	return &PurchaseTicket{
		Pending:  pt,
		ImageURL: s.imageBaseURL + barcode + ".jpg",
	}, nil
}

// allocateBarcode skips barcodes still held by an unconfirmed purchase.
func (s *posService) allocateBarcode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxBarcodeAttempts; attempt++ {
		barcode, err := s.barcodes()
		if err != nil {
			return "", fmt.Errorf("failed to generate barcode: %w", err)
		}
		taken, err := s.pending.ExistsUnresolved(ctx, barcode)
		if err != nil {
			return "", err
		}
		if !taken {
			return barcode, nil
		}
		slog.Warn("barcode collision", "barcode", barcode, "attempt", attempt+1)
	}
	return "", pkgerrors.ErrBarcodeExhausted
}

func (s *posService) PendingForUser(ctx context.Context, userID int32, barcode string) (*models.PendingTransaction, error) {
	pt, err := s.pending.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	if pt.UserID != userID {
		return nil, pkgerrors.ErrUnknownBarcode
	}
	return pt, nil
}

func (s *posService) ClaimBarcode(ctx context.Context, barcode, secret string, amount float64) error {
	ctx, span := otel.Tracer("pos-service").Start(ctx, "ClaimBarcode")
	defer span.End()
	span.SetAttributes(attribute.String("barcode", barcode))

	pt, err := s.pending.FindByBarcode(ctx, barcode)
	if err != nil {
		span.SetStatus(codes.Error, "unknown barcode")
		return err
	}

	vendor, err := s.vendors.FindBySecret(ctx, secret)
	if err != nil {
		span.SetStatus(codes.Error, "unknown vendor")
		if stderrors.Is(err, pkgerrors.ErrVendorNotFound) {
			slog.Warn("claim with unknown vendor secret", "barcode", barcode)
			return pkgerrors.ErrUnknownVendor
		}
		return err
	}

	if pt.Status == models.StatusClaimed {
		span.SetStatus(codes.Error, "barcode already confirmed")
		return pkgerrors.ErrBarcodeAlreadyConfirmed
	}

	if err := s.pending.Claim(ctx, pt.ID, vendor.ID, amount); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "claim failed")
		return err
	}

	s.publish(ctx, models.PurchaseEvent{
		Type:     models.EventPurchaseClaimed,
		Barcode:  barcode,
		UserID:   pt.UserID,
		VendorID: vendor.ID,
		Amount:   amount,
	})

	slog.Info("barcode claimed", "barcode", barcode, "vendor_id", vendor.ID, "amount", amount)
	return nil
}

func (s *posService) ConfirmPurchase(ctx context.Context, userID int32, barcode string) (*models.Transaction, error) {
	ctx, span := otel.Tracer("pos-service").Start(ctx, "ConfirmPurchase")
	defer span.End()
	span.SetAttributes(attribute.String("barcode", barcode), attribute.Int("user_id", int(userID)))

	pt, err := s.PendingForUser(ctx, userID, barcode)
	if err != nil {
		span.SetStatus(codes.Error, "unknown barcode")
		return nil, err
	}
	if pt.Status != models.StatusScanned || pt.Company == nil {
		span.SetStatus(codes.Error, "barcode not claimed")
		if pt.Status == models.StatusClaimed {
			return nil, pkgerrors.ErrBarcodeAlreadyConfirmed
		}
		return nil, pkgerrors.ErrBarcodeNotClaimed
	}

	vendor, err := s.vendors.GetByID(ctx, *pt.Company)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "vendor lookup failed")
		return nil, err
	}

	tx, err := s.pending.Confirm(ctx, pt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "confirm failed")
		return nil, err
	}

	if err := s.cache.Del(ctx, redis.TransactionsKey(userID)); err != nil {
		slog.Error("failed to invalidate dashboard cache", "user_id", userID, "error", err)
	}

	// The purchase is committed; a failed notification is only logged.
	if err := s.agents.Dispense(ctx, vendor.AgentURL, agent.DispenseRequest{
		Barcode: barcode,
		Status:  "success",
		Secret:  vendor.Secret,
	}); err != nil {
		slog.Error("failed to notify vendor agent", "barcode", barcode, "vendor_id", vendor.ID, "error", err)
	}

	s.publish(ctx, models.PurchaseEvent{
		Type:     models.EventPurchaseConfirmed,
		Barcode:  barcode,
		UserID:   userID,
		VendorID: vendor.ID,
		Amount:   tx.Amount,
	})

	return tx, nil
}

func (s *posService) CheckScan(ctx context.Context, userID int32, barcode string) (*ScanStatus, error) {
	ctx, span := otel.Tracer("pos-service").Start(ctx, "CheckScan")
	defer span.End()

	pt, err := s.PendingForUser(ctx, userID, barcode)
	if err != nil {
		return nil, err
	}

	status := &ScanStatus{Status: pt.Status, Amount: pt.Amount}
	if pt.Status != models.StatusCreated && pt.Company != nil {
		vendor, err := s.vendors.GetByID(ctx, *pt.Company)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		status.Company = &vendor.Name
	}
	return status, nil
}

func (s *posService) CancelPurchase(ctx context.Context, userID int32, barcode string) error {
	ctx, span := otel.Tracer("pos-service").Start(ctx, "CancelPurchase")
	defer span.End()

	pt, err := s.PendingForUser(ctx, userID, barcode)
	if err != nil {
		return err
	}
	if pt.Status == models.StatusClaimed {
		return pkgerrors.ErrBarcodeAlreadyConfirmed
	}
	if pt.Company == nil {
		return pkgerrors.ErrBarcodeNotClaimed
	}

	vendor, err := s.vendors.GetByID(ctx, *pt.Company)
	if err != nil {
		span.RecordError(err)
		return err
	}

	if err := s.agents.Cancel(ctx, vendor.AgentURL, agent.CancelRequest{
		Secret:  vendor.Secret,
		Barcode: barcode,
	}); err != nil {
		slog.Error("failed to notify vendor agent about cancel", "barcode", barcode, "vendor_id", vendor.ID, "error", err)
	}

	s.publish(ctx, models.PurchaseEvent{
		Type:     models.EventPurchaseCancelled,
		Barcode:  barcode,
		UserID:   userID,
		VendorID: vendor.ID,
	})
	return nil
}

func (s *posService) publish(ctx context.Context, event models.PurchaseEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		slog.Error("failed to publish purchase event", "type", event.Type, "barcode", event.Barcode, "error", err)
	}
}

// SeedVendors upserts configured vendors keyed by their agent secret.
func (s *posService) SeedVendors(ctx context.Context, vendors []models.Vendor) error {
	for i := range vendors {
		if err := s.vendors.Upsert(ctx, &vendors[i]); err != nil {
			return fmt.Errorf("failed to seed vendor %q: %w", vendors[i].Name, err)
		}
	}
	if len(vendors) > 0 {
		slog.Info("vendors seeded", "count", len(vendors))
	}
	return nil
}
