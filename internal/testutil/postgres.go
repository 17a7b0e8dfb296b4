package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/2beens/gymsessions/internal/db"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/require"
)

const (
	testDBName     = "gymsessions_test"
	testDBPassword = "postgres"
)

var (
	containerOnce sync.Once
	containerPort string
	containerErr  error
)

// GetDBPool returns a migrated pgx pool for integration tests.
// POSTGRES_HOST (and optionally POSTGRES_PORT) point it to an already running postgres,
// otherwise a throwaway container is started with dockertest (once per test binary).
func GetDBPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	host := os.Getenv("POSTGRES_HOST")
	port := os.Getenv("POSTGRES_PORT")
	password := os.Getenv("POSTGRES_PASSWORD")
	dbName := os.Getenv("POSTGRES_DB")
	if dbName == "" {
		dbName = testDBName
	}

	if host == "" {
		containerOnce.Do(func() {
			containerPort, containerErr = startPostgresContainer()
		})
		require.NoError(t, containerErr)
		host, port, password, dbName = "localhost", containerPort, testDBPassword, testDBName
	}
	if port == "" {
		port = "5432"
	}
	t.Logf("using postgres at %s:%s/%s", host, port, dbName)

	pool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:     host,
		DBPort:     port,
		DBName:     dbName,
		DBPassword: password,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx, pool))

	t.Cleanup(pool.Close)
	return pool
}

// startPostgresContainer runs postgres in docker and waits until it accepts connections.
// The container is removed by docker when it stops (AutoRemove), and expires on its own.
func startPostgresContainer() (string, error) {
	dockerPool, err := dockertest.NewPool("")
	if err != nil {
		return "", fmt.Errorf("new dockertest pool: %w", err)
	}
	if err := dockerPool.Client.Ping(); err != nil {
		return "", fmt.Errorf("ping docker: %w", err)
	}

	resource, err := dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_PASSWORD=" + testDBPassword,
			"POSTGRES_DB=" + testDBName,
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return "", fmt.Errorf("run postgres container: %w", err)
	}
	if err := resource.Expire(300); err != nil {
		return "", fmt.Errorf("set container expiry: %w", err)
	}

	port := resource.GetPort("5432/tcp")
	dsn := fmt.Sprintf("postgres://postgres:%s@localhost:%s/%s?sslmode=disable", testDBPassword, port, testDBName)

	dockerPool.MaxWait = time.Minute
	if err := dockerPool.Retry(func() error {
		sqlDB, err := sql.Open("postgres", dsn)
		if err != nil {
			return err
		}
		defer sqlDB.Close()
		return sqlDB.Ping()
	}); err != nil {
		return "", fmt.Errorf("wait for postgres: %w", err)
	}

	return port, nil
}
