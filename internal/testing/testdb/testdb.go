// Package testdb provides test database utilities for integration testing.
//
// Each TestDB runs real queries against a real SurrealDB instance inside a
// namespace of its own, with the schema migrations applied.
//
// The instance comes from TEST_DB_URL (or TEST_DB_HOST/TEST_DB_PORT) when
// set; otherwise a SurrealDB container is started once per test binary
// with testcontainers-go. Tests are skipped when neither is available.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t)
//	    defer tdb.Close()
//
//	    result, err := tdb.DB.Query(tdb.Ctx(t), "SELECT * FROM build", nil)
//	}
package testdb

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tarnished-tactics/api/internal/database"
	"github.com/tarnished-tactics/api/migrations"
)

const surrealImage = "surrealdb/surrealdb:v2.2.1"

// TestDB provides an isolated database environment for testing.
// Each TestDB instance gets a unique namespace to ensure test isolation.
type TestDB struct {
	DB        database.Database
	Namespace string
	Database  string
	t         *testing.T
}

var (
	// containerOnce starts at most one container per test binary
	containerOnce sync.Once
	containerURL  string
	containerErr  error

	// counterMu protects the namespace counter
	counterMu sync.Mutex
	counter   int64
)

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getTestConfig returns database config from the environment, falling back
// to a container.
func getTestConfig() (database.Config, error) {
	cfg := database.Config{
		User:     getEnv("TEST_DB_USER", "root"),
		Password: getEnv("TEST_DB_PASSWORD", "root"),
	}

	if url := os.Getenv("TEST_DB_URL"); url != "" {
		cfg.URL = url
		return cfg, nil
	}
	if host := os.Getenv("TEST_DB_HOST"); host != "" {
		cfg.Host = host
		cfg.Port = getEnv("TEST_DB_PORT", "8000")
		return cfg, nil
	}

	url, err := startContainer(cfg.User, cfg.Password)
	if err != nil {
		return cfg, err
	}
	cfg.URL = url
	return cfg, nil
}

// startContainer runs an in-memory SurrealDB. The testcontainers reaper
// removes it when the test binary exits.
func startContainer(user, password string) (string, error) {
	containerOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        surrealImage,
				Cmd:          []string{"start", "--user", user, "--pass", password, "memory"},
				ExposedPorts: []string{"8000/tcp"},
				WaitingFor:   wait.ForListeningPort("8000/tcp").WithStartupTimeout(60 * time.Second),
			},
			Started: true,
		})
		if err != nil {
			containerErr = fmt.Errorf("starting surrealdb container: %w", err)
			return
		}

		host, err := container.Host(ctx)
		if err != nil {
			containerErr = fmt.Errorf("container host: %w", err)
			return
		}
		port, err := container.MappedPort(ctx, "8000")
		if err != nil {
			containerErr = fmt.Errorf("container port: %w", err)
			return
		}
		containerURL = fmt.Sprintf("ws://%s:%s/rpc", host, port.Port())
	})
	return containerURL, containerErr
}

// uniqueNamespace generates a unique namespace for test isolation
func uniqueNamespace() string {
	counterMu.Lock()
	defer counterMu.Unlock()
	counter++
	return fmt.Sprintf("test_%d_%d", time.Now().UnixNano(), counter)
}

// New creates a new isolated test database with migrations applied.
// Call Close() when done to clean up the namespace.
func New(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("testdb: skipping database test in short mode")
	}

	cfg, err := getTestConfig()
	if err != nil {
		t.Skipf("testdb: no database available: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg.Namespace = uniqueNamespace()
	cfg.Database = "test"
	cfg.QueryTimeout = 10 * time.Second

	db := database.NewSurrealDB(cfg)
	if err := db.Connect(ctx); err != nil {
		t.Fatalf("testdb: failed to connect: %v", err)
	}

	if _, err := database.Migrate(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		t.Fatalf("testdb: %v", err)
	}

	return &TestDB{
		DB:        db,
		Namespace: cfg.Namespace,
		Database:  cfg.Database,
		t:         t,
	}
}

// Close cleans up the test database by removing the namespace.
func (tdb *TestDB) Close() {
	if tdb.DB == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = tdb.DB.Execute(ctx, fmt.Sprintf("REMOVE NAMESPACE %s", tdb.Namespace), nil)
	_ = tdb.DB.Close()
}

// Reset deletes every build and guide while keeping the schema
func (tdb *TestDB) Reset(t *testing.T) {
	t.Helper()
	if err := tdb.DB.Execute(tdb.Ctx(t), "DELETE build; DELETE guide;", nil); err != nil {
		t.Fatalf("testdb: reset failed: %v", err)
	}
}

// Ctx returns a context bounded to ten seconds and cancelled when t ends
func (tdb *TestDB) Ctx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// MustExec executes a query and fails the test on error.
func (tdb *TestDB) MustExec(query string, vars map[string]interface{}) {
	tdb.t.Helper()
	if err := tdb.DB.Execute(tdb.Ctx(tdb.t), query, vars); err != nil {
		tdb.t.Fatalf("testdb: exec failed: %v\nQuery: %s", err, query)
	}
}

// MustQuery executes a query and returns results, failing the test on error.
func (tdb *TestDB) MustQuery(query string, vars map[string]interface{}) []interface{} {
	tdb.t.Helper()
	results, err := tdb.DB.Query(tdb.Ctx(tdb.t), query, vars)
	if err != nil {
		tdb.t.Fatalf("testdb: query failed: %v\nQuery: %s", err, query)
	}
	return results
}
