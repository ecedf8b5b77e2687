package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/honeynil/LavenderPOS/internal/models"
	repository "github.com/honeynil/LavenderPOS/internal/repository/postgres"
	pkgerrors "github.com/honeynil/LavenderPOS/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pendingColumns = []string{"id", "barcode", "user_id", "status", "company", "amount", "timestamp"}

const findPending = `SELECT id, barcode, user_id, status, company, amount, timestamp\s+FROM pending_transactions\s+WHERE barcode = \$1\s+ORDER BY id DESC\s+LIMIT 1`

func TestPostgresPendingTransactionRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresPendingTransactionRepository(db)
	ctx := context.Background()

	t.Run("NilPendingTransaction", func(t *testing.T) {
		assert.ErrorIs(t, repo.Create(ctx, nil), pkgerrors.ErrNilPendingTransaction)
	})

	t.Run("InvalidStatus", func(t *testing.T) {
		err := repo.Create(ctx, &models.PendingTransaction{Barcode: "0123456789", UserID: 1, Status: 5})
		assert.ErrorIs(t, err, pkgerrors.ErrInvalidStatus)
	})

	t.Run("Success", func(t *testing.T) {
		pt := &models.PendingTransaction{Barcode: "0123456789", UserID: 1, Status: models.StatusCreated}
		now := time.Now().UTC()
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO pending_transactions (barcode, user_id, status) VALUES ($1, $2, $3) RETURNING id, timestamp`)).
			WithArgs("0123456789", int32(1), models.StatusCreated).
			WillReturnRows(sqlmock.NewRows([]string{"id", "timestamp"}).AddRow(3, now))

		require.NoError(t, repo.Create(ctx, pt))
		assert.Equal(t, int32(3), pt.ID)
		assert.Equal(t, now, pt.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresPendingTransactionRepository_FindByBarcode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresPendingTransactionRepository(db)
	ctx := context.Background()

	t.Run("Created", func(t *testing.T) {
		mock.ExpectQuery(findPending).WithArgs("0123456789").
			WillReturnRows(sqlmock.NewRows(pendingColumns).AddRow(3, "0123456789", 1, 0, nil, nil, time.Now()))

		pt, err := repo.FindByBarcode(ctx, "0123456789")
		require.NoError(t, err)
		assert.Equal(t, models.StatusCreated, pt.Status)
		assert.Nil(t, pt.Company)
		assert.Nil(t, pt.Amount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Claimed", func(t *testing.T) {
		mock.ExpectQuery(findPending).WithArgs("0123456789").
			WillReturnRows(sqlmock.NewRows(pendingColumns).AddRow(3, "0123456789", 1, 1, 7, 5.0, time.Now()))

		pt, err := repo.FindByBarcode(ctx, "0123456789")
		require.NoError(t, err)
		assert.Equal(t, models.StatusScanned, pt.Status)
		require.NotNil(t, pt.Company)
		assert.Equal(t, int32(7), *pt.Company)
		assert.Equal(t, 5.0, *pt.Amount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown", func(t *testing.T) {
		mock.ExpectQuery(findPending).WithArgs("0000000000").WillReturnError(sql.ErrNoRows)

		_, err := repo.FindByBarcode(ctx, "0000000000")
		assert.ErrorIs(t, err, pkgerrors.ErrUnknownBarcode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresPendingTransactionRepository_ExistsUnresolved(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresPendingTransactionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM pending_transactions WHERE barcode = $1 AND status < $2)`)).
		WithArgs("0123456789", models.StatusClaimed).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsUnresolved(context.Background(), "0123456789")
	assert.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPendingTransactionRepository_Claim(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresPendingTransactionRepository(db)
	ctx := context.Background()
	update := regexp.QuoteMeta(`UPDATE pending_transactions SET status = $1, company = $2, amount = $3 WHERE id = $4 AND status < $5`)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(update).
			WithArgs(models.StatusScanned, int32(7), 5.0, int32(3), models.StatusClaimed).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Claim(ctx, 3, 7, 5.0))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("AlreadyConfirmed", func(t *testing.T) {
		mock.ExpectExec(update).
			WithArgs(models.StatusScanned, int32(7), 5.0, int32(3), models.StatusClaimed).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Claim(ctx, 3, 7, 5.0), pkgerrors.ErrBarcodeAlreadyConfirmed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresPendingTransactionRepository_Confirm(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresPendingTransactionRepository(db)
	ctx := context.Background()
	update := regexp.QuoteMeta(`UPDATE pending_transactions SET status = $1 WHERE id = $2 AND status = $3`)
	insert := regexp.QuoteMeta(`INSERT INTO transactions (user_id, company, amount) VALUES ($1, $2, $3) RETURNING id, timestamp`)
	claimed := func() *models.PendingTransaction {
		company, amount := int32(7), 5.0
		return &models.PendingTransaction{
			ID: 3, Barcode: "0123456789", UserID: 1, Status: models.StatusScanned,
			Company: &company, Amount: &amount,
		}
	}

	t.Run("NotClaimed", func(t *testing.T) {
		_, err := repo.Confirm(ctx, &models.PendingTransaction{ID: 3, UserID: 1})
		assert.ErrorIs(t, err, pkgerrors.ErrBarcodeNotClaimed)
	})

	t.Run("Success", func(t *testing.T) {
		pt := claimed()
		now := time.Now().UTC()
		mock.ExpectBegin()
		mock.ExpectExec(update).
			WithArgs(models.StatusClaimed, int32(3), models.StatusScanned).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(insert).
			WithArgs(int32(1), int32(7), 5.0).
			WillReturnRows(sqlmock.NewRows([]string{"id", "timestamp"}).AddRow(11, now))
		mock.ExpectCommit()

		tx, err := repo.Confirm(ctx, pt)
		require.NoError(t, err)
		assert.Equal(t, int32(11), tx.ID)
		assert.Equal(t, int32(1), tx.UserID)
		assert.Equal(t, int32(7), tx.Company)
		assert.Equal(t, 5.0, tx.Amount)
		assert.Equal(t, models.StatusClaimed, pt.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ConcurrentConfirmRollsBack", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(update).
			WithArgs(models.StatusClaimed, int32(3), models.StatusScanned).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := repo.Confirm(ctx, claimed())
		assert.ErrorIs(t, err, pkgerrors.ErrBarcodeNotClaimed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("InsertFailureRollsBack", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(update).
			WithArgs(models.StatusClaimed, int32(3), models.StatusScanned).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(insert).WillReturnError(errors.New("insert failed"))
		mock.ExpectRollback()

		_, err := repo.Confirm(ctx, claimed())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
