package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/honeynil/LavenderPOS/internal/models"
	pkgerrors "github.com/honeynil/LavenderPOS/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

type PostgresPendingTransactionRepository struct {
	db *sql.DB
}

func NewPostgresPendingTransactionRepository(db *sql.DB) *PostgresPendingTransactionRepository {
	return &PostgresPendingTransactionRepository{db: db}
}

func (r *PostgresPendingTransactionRepository) Create(ctx context.Context, pt *models.PendingTransaction) (err error) {
	ctx, span, finish := startCall(ctx, "pending-transaction-repository", "CreatePendingTransaction")
	defer finish(&err)

	if pt == nil {
		err = pkgerrors.ErrNilPendingTransaction
		slog.Error("failed to create pending transaction", "method", "Create", "error", err)
		return err
	}
	if !pt.Status.Valid() {
		err = pkgerrors.ErrInvalidStatus
		slog.Error("invalid pending transaction status", "method", "Create", "status", pt.Status, "error", err)
		return err
	}
	span.SetAttributes(
		attribute.String("barcode", pt.Barcode),
		attribute.Int("user_id", int(pt.UserID)),
	)

	query := `INSERT INTO pending_transactions (barcode, user_id, status) VALUES ($1, $2, $3) RETURNING id, timestamp`
	err = r.db.QueryRowContext(ctx, query, pt.Barcode, pt.UserID, pt.Status).Scan(&pt.ID, &pt.CreatedAt)
	if err != nil {
		slog.Error("failed to create pending transaction", "method", "Create", "user_id", pt.UserID, "barcode", pt.Barcode, "error", err)
		err = fmt.Errorf("failed to create pending transaction: %w", err)
		return err
	}

	slog.Info("pending transaction created", "method", "Create", "id", pt.ID, "user_id", pt.UserID, "barcode", pt.Barcode)
	return nil
}

func (r *PostgresPendingTransactionRepository) FindByBarcode(ctx context.Context, barcode string) (_ *models.PendingTransaction, err error) {
	ctx, span, finish := startCall(ctx, "pending-transaction-repository", "FindPendingTransactionByBarcode")
	defer finish(&err)
	span.SetAttributes(attribute.String("barcode", barcode))

	var (
		pt      models.PendingTransaction
		company sql.NullInt32
		amount  sql.NullFloat64
	)
	query := `
		SELECT id, barcode, user_id, status, company, amount, timestamp
		FROM pending_transactions
		WHERE barcode = $1
		ORDER BY id DESC
		LIMIT 1`
	err = r.db.QueryRowContext(ctx, query, barcode).
		Scan(&pt.ID, &pt.Barcode, &pt.UserID, &pt.Status, &company, &amount, &pt.CreatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrUnknownBarcode
		return nil, err
	}
	if err != nil {
		slog.Error("failed to find pending transaction", "method", "FindByBarcode", "barcode", barcode, "error", err)
		err = fmt.Errorf("failed to find pending transaction: %w", err)
		return nil, err
	}

	if company.Valid {
		pt.Company = &company.Int32
	}
	if amount.Valid {
		pt.Amount = &amount.Float64
	}
	return &pt, nil
}

func (r *PostgresPendingTransactionRepository) ExistsUnresolved(ctx context.Context, barcode string) (_ bool, err error) {
	ctx, _, finish := startCall(ctx, "pending-transaction-repository", "ExistsUnresolvedBarcode")
	defer finish(&err)

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM pending_transactions WHERE barcode = $1 AND status < $2)`
	err = r.db.QueryRowContext(ctx, query, barcode, models.StatusClaimed).Scan(&exists)
	if err != nil {
		slog.Error("failed to check barcode", "method", "ExistsUnresolved", "barcode", barcode, "error", err)
		err = fmt.Errorf("failed to check barcode: %w", err)
		return false, err
	}
	return exists, nil
}

func (r *PostgresPendingTransactionRepository) Claim(ctx context.Context, id, vendorID int32, amount float64) (err error) {
	ctx, span, finish := startCall(ctx, "pending-transaction-repository", "ClaimPendingTransaction")
	defer finish(&err)
	span.SetAttributes(
		attribute.Int("pending_transaction_id", int(id)),
		attribute.Int("vendor_id", int(vendorID)),
		attribute.Float64("amount", amount),
	)

	query := `UPDATE pending_transactions SET status = $1, company = $2, amount = $3 WHERE id = $4 AND status < $5`
	res, err := r.db.ExecContext(ctx, query, models.StatusScanned, vendorID, amount, id, models.StatusClaimed)
	if err != nil {
		slog.Error("failed to claim pending transaction", "method", "Claim", "id", id, "vendor_id", vendorID, "error", err)
		err = fmt.Errorf("failed to claim pending transaction: %w", err)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		err = fmt.Errorf("failed to claim pending transaction: %w", err)
		return err
	}
	if n == 0 {
		err = pkgerrors.ErrBarcodeAlreadyConfirmed
		return err
	}

	slog.Info("pending transaction claimed", "method", "Claim", "id", id, "vendor_id", vendorID, "amount", amount)
	return nil
}

func (r *PostgresPendingTransactionRepository) Confirm(ctx context.Context, pt *models.PendingTransaction) (_ *models.Transaction, err error) {
	ctx, span, finish := startCall(ctx, "pending-transaction-repository", "ConfirmPendingTransaction")
	defer finish(&err)

	if pt == nil {
		err = pkgerrors.ErrNilPendingTransaction
		return nil, err
	}
	if pt.Company == nil || pt.Amount == nil {
		err = pkgerrors.ErrBarcodeNotClaimed
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("pending_transaction_id", int(pt.ID)),
		attribute.Int("user_id", int(pt.UserID)),
	)

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("failed to begin transaction", "method", "Confirm", "error", err)
		err = fmt.Errorf("failed to begin transaction: %w", err)
		return nil, err
	}

	rollback := func(cause error) error {
		if rbErr := dbTx.Rollback(); rbErr != nil {
			slog.Error("rollback failed", "method", "Confirm", "error", rbErr)
			return fmt.Errorf("rollback failed: %v; original error: %w", rbErr, cause)
		}
		return cause
	}

	res, err := dbTx.ExecContext(ctx,
		`UPDATE pending_transactions SET status = $1 WHERE id = $2 AND status = $3`,
		models.StatusClaimed, pt.ID, models.StatusScanned)
	if err != nil {
		slog.Error("failed to confirm pending transaction", "method", "Confirm", "id", pt.ID, "error", err)
		err = rollback(fmt.Errorf("failed to confirm pending transaction: %w", err))
		return nil, err
	}
	if n, raErr := res.RowsAffected(); raErr != nil || n == 0 {
		err = rollback(pkgerrors.ErrBarcodeNotClaimed)
		return nil, err
	}

	tx := &models.Transaction{
		UserID:  pt.UserID,
		Company: *pt.Company,
		Amount:  *pt.Amount,
	}
	query := `INSERT INTO transactions (user_id, company, amount) VALUES ($1, $2, $3) RETURNING id, timestamp`
	err = dbTx.QueryRowContext(ctx, query, tx.UserID, tx.Company, tx.Amount).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		slog.Error("failed to create transaction", "method", "Confirm", "user_id", tx.UserID, "company", tx.Company, "error", err)
		err = rollback(fmt.Errorf("failed to create transaction: %w", err))
		return nil, err
	}

	if err = dbTx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "method", "Confirm", "error", err)
		err = fmt.Errorf("failed to commit transaction: %w", err)
		return nil, err
	}

	pt.Status = models.StatusClaimed
	slog.Info("purchase confirmed", "method", "Confirm", "pending_id", pt.ID, "transaction_id", tx.ID, "user_id", tx.UserID, "company", tx.Company)
	return tx, nil
}
