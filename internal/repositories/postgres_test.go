package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-user-accounts/internal/migrations"
	"github.com/sbilibin2017/gw-user-accounts/internal/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgresContainer(t *testing.T) *sqlx.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	tc.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_PASSWORD": "password", "POSTGRES_DB": "testdb", "POSTGRES_USER": "postgres"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}

	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("docker is not available: %v", err)
	}
	t.Cleanup(func() { container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://postgres:password@%s:%s/testdb?sslmode=disable", host, port.Port())

	var db *sqlx.DB
	for i := 0; i < 10; i++ {
		db, err = sqlx.Connect("pgx", dsn)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migrations.Up(ctx, db.DB))
	return db
}

func TestPostgres_UserAndTokenLifecycle(t *testing.T) {
	db := setupPostgresContainer(t)
	ctx := context.Background()

	users := NewUserRepository(db, transaction.FromContext)
	tokens := NewTokenRepository(db, transaction.FromContext)

	alice, err := users.Create(ctx, "alice", "Alice", "a@x.com", "hash")
	require.NoError(t, err)
	assert.Equal(t, int64(1), alice.ID)

	_, err = users.Create(ctx, "alice", "Other", "o@x.com", "hash")
	assert.ErrorIs(t, err, ErrDuplicate)

	live, err := tokens.Save(ctx, "live", alice.ID, time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = tokens.Save(ctx, "stale", alice.ID, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	got, err := tokens.GetByToken(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, live.ID, got.ID)

	n, err := tokens.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	stale, err := tokens.GetByToken(ctx, "stale")
	require.NoError(t, err)
	assert.Nil(t, stale)

	updated, err := users.Update(ctx, alice.ID, "Alicia", "alicia@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.Name)
	assert.Equal(t, "alice", updated.Username)

	require.NoError(t, tokens.DeleteByUserID(ctx, alice.ID))
	require.NoError(t, tokens.DeleteByUserID(ctx, alice.ID))

	deleted, err := users.Delete(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, deleted.ID)

	missing, err := users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := users.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPostgres_TransactionRollback(t *testing.T) {
	db := setupPostgresContainer(t)
	ctx := context.Background()

	users := NewUserRepository(db, transaction.FromContext)
	txm := transaction.NewManager(db)

	err := txm.Do(ctx, func(ctx context.Context) error {
		if _, err := users.Create(ctx, "bob", "Bob", "b@x.com", "hash"); err != nil {
			return err
		}
		return fmt.Errorf("abort")
	})
	assert.Error(t, err)

	bob, err := users.GetByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Nil(t, bob)
}
