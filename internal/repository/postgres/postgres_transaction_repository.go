package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/honeynil/LavenderPOS/internal/models"
	"go.opentelemetry.io/otel/attribute"
)

type PostgresTransactionRepository struct {
	db *sql.DB
}

func NewPostgresTransactionRepository(db *sql.DB) *PostgresTransactionRepository {
	return &PostgresTransactionRepository{db: db}
}

func (r *PostgresTransactionRepository) ListByUser(ctx context.Context, userID int32) (_ []models.TransactionView, err error) {
	ctx, span, finish := startCall(ctx, "transaction-repository", "ListTransactionsByUser")
	defer finish(&err)
	span.SetAttributes(attribute.Int("user_id", int(userID)))

	query := `
		SELECT v.name, t.amount, t.timestamp
		FROM transactions t
		JOIN vendors v ON v.id = t.company
		WHERE t.user_id = $1
		ORDER BY t.timestamp DESC, t.id DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Error("failed to list transactions", "method", "ListByUser", "user_id", userID, "error", err)
		err = fmt.Errorf("failed to list transactions: %w", err)
		return nil, err
	}
	defer rows.Close()

	views := make([]models.TransactionView, 0)
	for rows.Next() {
		var v models.TransactionView
		if err = rows.Scan(&v.Company, &v.Amount, &v.CreatedAt); err != nil {
			slog.Error("failed to scan transaction", "method", "ListByUser", "user_id", userID, "error", err)
			err = fmt.Errorf("failed to scan transaction: %w", err)
			return nil, err
		}
		views = append(views, v)
	}
	if err = rows.Err(); err != nil {
		err = fmt.Errorf("failed to iterate transactions: %w", err)
		return nil, err
	}

	slog.Info("transactions listed", "method", "ListByUser", "user_id", userID, "count", len(views))
	return views, nil
}
