package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	repository "github.com/honeynil/LavenderPOS/internal/repository/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listTransactions = `SELECT v.name, t.amount, t.timestamp\s+FROM transactions t\s+JOIN vendors v ON v.id = t.company\s+WHERE t.user_id = \$1`

func TestPostgresTransactionRepository_ListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresTransactionRepository(db)
	ctx := context.Background()

	t.Run("Rows", func(t *testing.T) {
		later := time.Date(2024, time.January, 2, 15, 4, 0, 0, time.UTC)
		earlier := later.Add(-time.Hour)
		mock.ExpectQuery(listTransactions).WithArgs(int32(1)).
			WillReturnRows(sqlmock.NewRows([]string{"name", "amount", "timestamp"}).
				AddRow("Coffee Corner", 5.0, later).
				AddRow("Snack Bar", 2.5, earlier))

		views, err := repo.ListByUser(ctx, 1)
		require.NoError(t, err)
		require.Len(t, views, 2)
		assert.Equal(t, "Coffee Corner", views[0].Company)
		assert.Equal(t, later, views[0].CreatedAt)
		assert.Equal(t, 2.5, views[1].Amount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty", func(t *testing.T) {
		mock.ExpectQuery(listTransactions).WithArgs(int32(2)).
			WillReturnRows(sqlmock.NewRows([]string{"name", "amount", "timestamp"}))

		views, err := repo.ListByUser(ctx, 2)
		require.NoError(t, err)
		assert.NotNil(t, views)
		assert.Empty(t, views)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("QueryError", func(t *testing.T) {
		mock.ExpectQuery(listTransactions).WithArgs(int32(3)).WillReturnError(errors.New("db down"))

		_, err := repo.ListByUser(ctx, 3)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users`).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repository.EnsureSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
