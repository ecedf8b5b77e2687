package repository_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/honeynil/LavenderPOS/internal/models"
	repository "github.com/honeynil/LavenderPOS/internal/repository/postgres"
	pkgerrors "github.com/honeynil/LavenderPOS/pkg/errors"
	"github.com/stretchr/testify/assert"
)

var vendorColumns = []string{"id", "name", "agent_url", "secret"}

func TestPostgresVendorRepository_FindBySecret(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresVendorRepository(db)
	ctx := context.Background()
	query := regexp.QuoteMeta(`SELECT id, name, agent_url, secret FROM vendors WHERE secret = $1`)

	t.Run("Found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("vendor-secret").
			WillReturnRows(sqlmock.NewRows(vendorColumns).AddRow(7, "Coffee Corner", "http://agent.test", "vendor-secret"))

		v, err := repo.FindBySecret(ctx, "vendor-secret")
		assert.NoError(t, err)
		assert.Equal(t, int32(7), v.ID)
		assert.Equal(t, "http://agent.test", v.AgentURL)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("nope").WillReturnError(sql.ErrNoRows)

		_, err := repo.FindBySecret(ctx, "nope")
		assert.ErrorIs(t, err, pkgerrors.ErrVendorNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("EmptySecret", func(t *testing.T) {
		_, err := repo.FindBySecret(ctx, "")
		assert.ErrorIs(t, err, pkgerrors.ErrVendorNotFound)
	})
}

func TestPostgresVendorRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresVendorRepository(db)
	query := regexp.QuoteMeta(`SELECT id, name, agent_url, secret FROM vendors WHERE id = $1`)

	mock.ExpectQuery(query).WithArgs(int32(7)).
		WillReturnRows(sqlmock.NewRows(vendorColumns).AddRow(7, "Coffee Corner", "http://agent.test", "vendor-secret"))

	v, err := repo.GetByID(context.Background(), 7)
	assert.NoError(t, err)
	assert.Equal(t, "Coffee Corner", v.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresVendorRepository_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresVendorRepository(db)
	ctx := context.Background()

	t.Run("NilVendor", func(t *testing.T) {
		assert.ErrorIs(t, repo.Upsert(ctx, nil), pkgerrors.ErrNilVendor)
	})

	t.Run("MissingSecret", func(t *testing.T) {
		err := repo.Upsert(ctx, &models.Vendor{Name: "Coffee Corner", AgentURL: "http://agent.test"})
		assert.ErrorIs(t, err, pkgerrors.ErrInvalidInput)
	})

	t.Run("Success", func(t *testing.T) {
		v := &models.Vendor{Name: "Coffee Corner", AgentURL: "http://agent.test", Secret: "vendor-secret"}
		mock.ExpectQuery(`INSERT INTO vendors \(name, agent_url, secret\) VALUES \(\$1, \$2, \$3\)\s+ON CONFLICT \(secret\) DO UPDATE`).
			WithArgs("Coffee Corner", "http://agent.test", "vendor-secret").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

		assert.NoError(t, repo.Upsert(ctx, v))
		assert.Equal(t, int32(7), v.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
