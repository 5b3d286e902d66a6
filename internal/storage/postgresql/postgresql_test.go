package postgresql

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = pgContainer.Terminate(ctx)
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())
}

func TestMigrate(t *testing.T) {
	dsn := startPostgres(t)
	ctx := context.Background()

	version, err := Migrate(dsn)
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)

	t.Run("second run is a no-op", func(t *testing.T) {
		version, err := Migrate(dsn)
		require.NoError(t, err)
		assert.Equal(t, uint(2), version)
	})

	t.Run("tables exist", func(t *testing.T) {
		storage, err := New(ctx, dsn)
		require.NoError(t, err)
		defer storage.Stop()

		require.NoError(t, storage.HealthCheck(ctx))

		for _, table := range []string{
			"galleries", "gallery_images", "about_texts", "partners",
			"piedavajumi", "piedavajumi_headers", "team_members", "testimonials",
		} {
			var exists bool
			err := storage.Pool().QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, table).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists, table)
		}
	})

	t.Run("singleton slot is enforced", func(t *testing.T) {
		storage, err := New(ctx, dsn)
		require.NoError(t, err)
		defer storage.Stop()

		_, err = storage.Pool().Exec(ctx, `INSERT INTO about_texts (slot, text) VALUES (2, 'x')`)
		assert.Error(t, err)
	})
}
