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

type PostgresVendorRepository struct {
	db *sql.DB
}

func NewPostgresVendorRepository(db *sql.DB) *PostgresVendorRepository {
	return &PostgresVendorRepository{db: db}
}

func (r *PostgresVendorRepository) GetByID(ctx context.Context, id int32) (_ *models.Vendor, err error) {
	ctx, span, finish := startCall(ctx, "vendor-repository", "GetVendorByID")
	defer finish(&err)
	span.SetAttributes(attribute.Int("vendor_id", int(id)))

	var v models.Vendor
	query := `SELECT id, name, agent_url, secret FROM vendors WHERE id = $1`
	err = r.db.QueryRowContext(ctx, query, id).Scan(&v.ID, &v.Name, &v.AgentURL, &v.Secret)
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrVendorNotFound
		return nil, err
	}
	if err != nil {
		slog.Error("failed to get vendor by id", "method", "GetByID", "vendor_id", id, "error", err)
		err = fmt.Errorf("failed to get vendor by id: %w", err)
		return nil, err
	}
	return &v, nil
}

// FindBySecret matches the agent secret exactly.
func (r *PostgresVendorRepository) FindBySecret(ctx context.Context, secret string) (_ *models.Vendor, err error) {
	ctx, _, finish := startCall(ctx, "vendor-repository", "FindVendorBySecret")
	defer finish(&err)

	if secret == "" {
		err = pkgerrors.ErrVendorNotFound
		return nil, err
	}

	var v models.Vendor
	query := `SELECT id, name, agent_url, secret FROM vendors WHERE secret = $1`
	err = r.db.QueryRowContext(ctx, query, secret).Scan(&v.ID, &v.Name, &v.AgentURL, &v.Secret)
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrVendorNotFound
		return nil, err
	}
	if err != nil {
		slog.Error("failed to find vendor by secret", "method", "FindBySecret", "error", err)
		err = fmt.Errorf("failed to find vendor by secret: %w", err)
		return nil, err
	}
	return &v, nil
}

// Upsert inserts the vendor or refreshes name and agent URL of the vendor holding the same secret.
func (r *PostgresVendorRepository) Upsert(ctx context.Context, vendor *models.Vendor) (err error) {
	ctx, _, finish := startCall(ctx, "vendor-repository", "UpsertVendor")
	defer finish(&err)

	if vendor == nil {
		err = pkgerrors.ErrNilVendor
		return err
	}
	if vendor.Name == "" || vendor.AgentURL == "" || vendor.Secret == "" {
		err = fmt.Errorf("%w: vendor name, agent url and secret are required", pkgerrors.ErrInvalidInput)
		return err
	}

	query := `
		INSERT INTO vendors (name, agent_url, secret) VALUES ($1, $2, $3)
		ON CONFLICT (secret) DO UPDATE SET name = EXCLUDED.name, agent_url = EXCLUDED.agent_url
		RETURNING id`
	err = r.db.QueryRowContext(ctx, query, vendor.Name, vendor.AgentURL, vendor.Secret).Scan(&vendor.ID)
	if err != nil {
		slog.Error("failed to upsert vendor", "method", "Upsert", "name", vendor.Name, "error", err)
		err = fmt.Errorf("failed to upsert vendor: %w", err)
		return err
	}

	slog.Info("vendor upserted", "method", "Upsert", "vendor_id", vendor.ID, "name", vendor.Name)
	return nil
}
