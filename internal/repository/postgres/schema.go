package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema creates the POS tables if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		slog.Error("failed to apply schema", "error", err)
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	slog.Info("schema applied")
	return nil
}
