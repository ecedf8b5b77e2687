package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/honeynil/LavenderPOS/internal/models"
	pkgerrors "github.com/honeynil/LavenderPOS/pkg/errors"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
)

const uniqueViolation = "23505"

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) (err error) {
	ctx, _, finish := startCall(ctx, "user-repository", "CreateUser")
	defer finish(&err)

	if user == nil {
		err = pkgerrors.ErrNilUser
		slog.Error("failed to create user", "method", "Create", "error", err)
		return err
	}
	if user.Email == "" || user.PasswordHash == "" {
		err = fmt.Errorf("%w: email and password are required", pkgerrors.ErrInvalidInput)
		return err
	}
	user.Email = strings.TrimSpace(user.Email)

	query := `INSERT INTO users (first_name, last_name, email, password_hash) VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	err = r.db.QueryRowContext(ctx, query, user.FirstName, user.LastName, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			slog.Warn("email already registered", "method", "Create", "email", user.Email)
			err = pkgerrors.ErrUserAlreadyExists
			return err
		}
		slog.Error("failed to create user", "method", "Create", "email", user.Email, "error", err)
		err = fmt.Errorf("failed to create user: %w", err)
		return err
	}

	slog.Info("user created", "method", "Create", "user_id", user.ID)
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id int32) (_ *models.User, err error) {
	ctx, span, finish := startCall(ctx, "user-repository", "GetUserByID")
	defer finish(&err)
	span.SetAttributes(attribute.Int("user_id", int(id)))

	var user models.User
	query := `SELECT id, first_name, last_name, email, password_hash, created_at FROM users WHERE id = $1`
	err = r.db.QueryRowContext(ctx, query, id).
		Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrUserNotFound
		return nil, err
	}
	if err != nil {
		slog.Error("failed to get user by id", "method", "GetByID", "user_id", id, "error", err)
		err = fmt.Errorf("failed to get user by id: %w", err)
		return nil, err
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (_ *models.User, err error) {
	ctx, _, finish := startCall(ctx, "user-repository", "GetUserByEmail")
	defer finish(&err)

	if email == "" {
		err = fmt.Errorf("%w: email cannot be empty", pkgerrors.ErrInvalidInput)
		return nil, err
	}

	var user models.User
	query := `SELECT id, first_name, last_name, email, password_hash, created_at FROM users WHERE email = $1`
	err = r.db.QueryRowContext(ctx, query, strings.TrimSpace(email)).
		Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.PasswordHash, &user.CreatedAt)
	switch {
	case stderrors.Is(err, sql.ErrNoRows):
		err = pkgerrors.ErrUserNotFound
		return nil, err
	case err != nil:
		slog.Error("failed to get user by email", "method", "GetByEmail", "error", err)
		err = fmt.Errorf("failed to get user by email: %w", err)
		return nil, err
	}
	return &user, nil
}
