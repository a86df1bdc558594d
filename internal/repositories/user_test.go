package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userCols = []string{"id", "username", "name", "email", "password_hash", "created_at", "updated_at"}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func userRow(id int64, username string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(userCols).
		AddRow(id, username, "Alice", "a@x.com", "$2a$hash", now, now)
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (username, name, email, password_hash, created_at, updated_at)")).
		WithArgs("alice", "Alice", "a@x.com", "$2a$hash").
		WillReturnRows(userRow(1, "alice"))

	user, err := repo.Create(context.Background(), "alice", "Alice", "a@x.com", "$2a$hash")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "$2a$hash", user.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	user, err := repo.Create(context.Background(), "alice", "Alice", "a@x.com", "hash")
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Nil(t, user)
}

func TestUserRepository_Create_DBError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), "alice", "Alice", "a@x.com", "hash")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicate)
	assert.Contains(t, err.Error(), "db down")
}

func TestUserRepository_GetByUsername(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(m sqlmock.Sqlmock)
		wantUser bool
		wantErr  bool
	}{
		{
			name: "Found",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = $1")).
					WithArgs("alice").
					WillReturnRows(userRow(1, "alice"))
			},
			wantUser: true,
		},
		{
			name: "NotFound",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = $1")).
					WithArgs("alice").
					WillReturnRows(sqlmock.NewRows(userCols))
			},
		},
		{
			name: "DBError",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = $1")).
					WithArgs("alice").
					WillReturnError(errors.New("db err"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewUserRepository(db, nil)
			tt.setup(mock)

			user, err := repo.GetByUsername(context.Background(), "alice")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantUser, user != nil)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(int64(7)).
		WillReturnRows(userRow(7, "bob"))

	user, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)
}

func TestUserRepository_GetByIDForUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(7)).
		WillReturnRows(userRow(7, "bob"))

	user, err := repo.GetByIDForUpdate(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, nil)

	now := time.Now()
	mock.ExpectQuery(`UPDATE users\s+SET name = \$2, email = \$3, updated_at = NOW\(\)\s+WHERE id = \$1`).
		WithArgs(int64(1), "Alicia", "alicia@x.com").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "alice", "Alicia", "alicia@x.com", "hash", now, now))

	user, err := repo.Update(context.Background(), 1, "Alicia", "alicia@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Alicia", user.Name)
	assert.Equal(t, "alicia@x.com", user.Email)
	assert.Equal(t, "alice", user.Username)
}

func TestUserRepository_Update_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, nil)

	mock.ExpectQuery(`UPDATE users`).
		WithArgs(int64(42), "n", "e@x.com").
		WillReturnRows(sqlmock.NewRows(userCols))

	user, err := repo.Update(context.Background(), 42, "n", "e@x.com")
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM users WHERE id = $1 RETURNING")).
		WithArgs(int64(1)).
		WillReturnRows(userRow(1, "alice"))
	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM users WHERE id = $1 RETURNING")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(userCols))

	user, err := repo.Delete(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)

	user, err = repo.Delete(context.Background(), 1)
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, nil)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users ORDER BY id")).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(1, "alice", "Alice", "a@x.com", "h1", now, now).
			AddRow(2, "bob", "Bob", "b@x.com", "h2", now, now))

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
}

func TestUserRepository_List_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users ORDER BY id")).
		WillReturnRows(sqlmock.NewRows(userCols))

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestUserRepository_UsesContextTx(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	tx, err := db.Beginx()
	require.NoError(t, err)

	txGetterCalled := false
	repo := NewUserRepository(db, func(ctx context.Context) *sqlx.Tx {
		txGetterCalled = true
		return tx
	})

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(userRow(1, "alice"))
	mock.ExpectCommit()

	_, err = repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	assert.True(t, txGetterCalled)
	assert.NoError(t, mock.ExpectationsWereMet())
}
