package repo

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-stefano-api/internal/user/entity"
)

func newMockRepo(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewUserRepo(sqlx.NewDb(db, "postgres")), mock
}

func TestUserRepo_Create(t *testing.T) {
	r, mock := newMockRepo(t)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (email, name, password_hash, is_admin, is_loyalty_member)`)).
		WithArgs("a@b.it", "Anna", "hash", false, true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(5), now, now))

	u := &entity.User{Email: "a@b.it", Name: "Anna", PasswordHash: "hash", IsLoyaltyMember: true}
	require.NoError(t, r.Create(context.Background(), u))

	assert.Equal(t, int64(5), u.ID)
	assert.Equal(t, now, u.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByEmailNotFound(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email=$1`)).
		WithArgs("nobody@b.it").
		WillReturnError(sql.ErrNoRows)

	_, err := r.GetByEmail(context.Background(), "nobody@b.it")

	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByID(t *testing.T) {
	r, mock := newMockRepo(t)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id=$1`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "name", "password_hash", "is_admin", "is_loyalty_member", "created_at", "updated_at",
		}).AddRow(int64(5), "a@b.it", "Anna", "hash", true, false, now, now))

	u, err := r.GetByID(context.Background(), 5)

	require.NoError(t, err)
	assert.True(t, u.IsAdmin)
	assert.Equal(t, "Anna", u.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}
