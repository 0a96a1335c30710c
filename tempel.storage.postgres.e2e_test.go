//go:build integration

package tempel

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgresContainer creates an ephemeral PostgreSQL container for testing.
func setupPostgresContainer(t *testing.T) (*PostgresStorage, string, func()) {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15",
		postgres.WithDatabase("tempel_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	storage, err := NewPostgresStorage(PostgresConfig{
		ConnectionString: connStr,
		AutoMigrate:      true,
		QueryTimeout:     30 * time.Second,
	})
	require.NoError(t, err, "failed to create postgres storage")

	cleanup := func() {
		if container != nil {
			_ = container.Terminate(ctx)
		}
	}

	return storage, connStr, cleanup
}

func TestPostgres_E2E_Conformance(t *testing.T) {
	storage, _, cleanup := setupPostgresContainer(t)
	defer cleanup()

	testTemplateStorage(t, storage)

	err := storage.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgPostgresAlreadyClosed)
}

func TestPostgres_E2E_Migrations(t *testing.T) {
	storage, connStr, cleanup := setupPostgresContainer(t)
	defer cleanup()
	defer func() { _ = storage.Close() }()
	ctx := context.Background()

	version, err := storage.CurrentSchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, version)

	// Running again is a no-op.
	require.NoError(t, storage.RunMigrations(ctx))

	// A second storage opened through the registry sees the same schema.
	other, err := OpenStorage(StorageDriverNamePostgres, connStr)
	require.NoError(t, err)
	defer func() { _ = other.Close() }()

	require.NoError(t, storage.Save(ctx, &StoredTemplate{Name: "shared", Source: "{{x}}"}))
	exists, err := other.Exists(ctx, "shared")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestPostgres_E2E_ConcurrentSaves(t *testing.T) {
	storage, _, cleanup := setupPostgresContainer(t)
	defer cleanup()
	defer func() { _ = storage.Close() }()
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tmpl := &StoredTemplate{Name: "concurrent", Source: fmt.Sprintf("v%d {{x}}", i)}
			// Serialization conflicts are retried by the caller.
			var err error
			for attempt := 0; attempt < 10; attempt++ {
				if err = storage.Save(ctx, tmpl); err == nil {
					break
				}
				time.Sleep(20 * time.Millisecond)
			}
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	versions, err := storage.ListVersions(ctx, "concurrent")
	require.NoError(t, err)
	assert.Len(t, versions, workers)
	assert.Equal(t, workers, versions[0])
}

func TestPostgres_E2E_StorageEngine(t *testing.T) {
	storage, _, cleanup := setupPostgresContainer(t)
	defer cleanup()
	ctx := context.Background()

	se := MustNewStorageEngine(StorageEngineConfig{Storage: storage})
	defer func() { _ = se.Close() }()

	require.NoError(t, se.Save(ctx, &StoredTemplate{
		Name:   "roster",
		Source: "{% for p in people %}[{{p}}]{% endfor %}",
	}))

	out, err := se.Render(ctx, "roster", NewBindings(Var("people", []string{"a", "b"})))
	require.NoError(t, err)
	assert.Equal(t, "[a][b]", out)
}
