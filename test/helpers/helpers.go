// test/helpers/test_helpers.go
package helpers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cardvault/cardvault-be/internal/adapters/db"
	"github.com/cardvault/cardvault-be/internal/pkg/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/cardvault/cardvault-be/internal/core/domain"
)

// TestDB represents a test database instance
type TestDB struct {
	PgxPool  *pgxpool.Pool
	Database *db.Database
	Resource *dockertest.Resource
	Pool     *dockertest.Pool
	Config   *db.Config
}

// TestRedis represents a test Redis instance
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// TestLogger returns a test logger
func TestLogger() *slog.Logger {
	if testing.Verbose() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// MigrationConfigFor builds the migration config for a test database.
// The source path is resolved relative to this file, so integration suites
// at any package depth share it.
func MigrationConfigFor(dbConfig *db.Config) *db.MigrationConfig {
	_, file, _, _ := runtime.Caller(0)
	return &db.MigrationConfig{
		DatabaseURL: fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
			dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port,
			dbConfig.Database, dbConfig.SSLMode),
		SourcePath: filepath.Join(filepath.Dir(file), "..", "..", "migrations"),
		TableName:  "schema_migrations",
		SchemaName: "public",
	}
}

// SetupTestDB creates a PostgreSQL container for integration tests
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "Could not connect to Docker")

	// Pull PostgreSQL image
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=test_cards",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start PostgreSQL container")

	// Clean up on test completion
	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge resource: %s", err)
		}
	})

	// Get connection details
	dbConfig := &db.Config{
		Host:               "localhost",
		Port:               resource.GetPort("5432/tcp"),
		User:               "test",
		Password:           "test",
		Database:           "test_cards",
		SSLMode:            "disable",
		MaxConnections:     5,
		MinConnections:     1,
		MaxConnLifetime:    time.Hour,
		MaxConnIdleTime:    time.Minute * 30,
		HealthCheckPeriod:  time.Minute,
		ConnectTimeout:     time.Second * 10,
		StatementCacheMode: "describe",
		EnableQueryLogging: testing.Verbose(),
	}

	// Wait for database to be ready
	var database *db.Database
	err = pool.Retry(func() error {
		ctx := context.Background()
		var err error
		database, err = db.NewDatabase(ctx, dbConfig, TestLogger())
		if err != nil {
			return err
		}
		return database.Ping(ctx)
	})
	require.NoError(t, err, "Could not connect to PostgreSQL")

	// Run migrations
	ctx := context.Background()
	err = db.RunMigrationsWithRetry(ctx, MigrationConfigFor(dbConfig), TestLogger(), 3)
	require.NoError(t, err, "Could not run migrations")

	return &TestDB{
		PgxPool:  database.Pool(),
		Database: database,
		Resource: resource,
		Pool:     pool,
		Config:   dbConfig,
	}
}

// SetupTestRedis creates a mock Redis instance for testing
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return &TestRedis{
		Client: client,
		Server: mr,
	}
}

// LoadTestConfig returns a test configuration
func LoadTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "test-api",
			Environment: "test",
			Version:     "test",
			LogLevel:    "debug",
			LogFormat:   "text",
			Debug:       true,
		},
		Database: config.DatabaseConfig{
			Host:               "localhost",
			Port:               "5432",
			User:               "test",
			Password:           "test",
			Name:               "test_cards",
			SSLMode:            "disable",
			MaxConnections:     10,
			MinConnections:     2,
			EnableQueryLogging: true,
		},
		Redis: config.RedisConfig{
			Host:     "localhost",
			Port:     "6379",
			DB:       0,
			TTL:      time.Hour,
			PoolSize: 10,
		},
		Catalog: config.CatalogConfig{
			BaseURL:        "https://catalog.test",
			RequestTimeout: 5 * time.Second,
			SnapshotTTL:    24 * time.Hour,
		},
		Security: config.SecurityConfig{
			TokenSecret:       "test-secret",
			RateLimitRequests: 100,
			RateLimitDuration: time.Minute,
			AllowedOrigins:    []string{"*"},
			SecureHeaders:     false,
		},
		Server: config.ServerConfig{
			Host:         "localhost",
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
	}
}

// CreateTestSnapshot creates a catalog snapshot for testing
func CreateTestSnapshot(overrides ...func(*domain.CatalogSnapshot)) *domain.CatalogSnapshot {
	snapshot := &domain.CatalogSnapshot{
		Name:            "Lightning Bolt",
		SetName:         "Test Set",
		Rarity:          "common",
		ImageURI:        "https://catalog.test/cards/tst/101.jpg",
		AllowedFinishes: []string{"nonfoil", "foil"},
		Prices: map[string]decimal.Decimal{
			"nonfoil": decimal.NewFromFloat(1.25),
			"foil":    decimal.NewFromFloat(4.80),
		},
		FetchedAt: time.Now(),
	}

	for _, override := range overrides {
		override(snapshot)
	}

	return snapshot
}

// CreateTestCardRecord creates a test card record with a fresh snapshot
func CreateTestCardRecord(overrides ...func(*domain.CardRecord)) *domain.CardRecord {
	record := &domain.CardRecord{
		SetCode:    "tst",
		CardNumber: "101",
		Finishes: []domain.FinishEntry{
			{Finish: "nonfoil", Quantity: 2},
		},
		Catalog:       CreateTestSnapshot(),
		CatalogExpiry: time.Now().Add(24 * time.Hour),
		CreatedAt:     time.Now().Add(-time.Hour),
		UpdatedAt:     time.Now(),
	}

	for _, override := range overrides {
		override(record)
	}

	return record
}

// CreateTestCardRecords creates multiple test card records
func CreateTestCardRecords(count int) []*domain.CardRecord {
	records := make([]*domain.CardRecord, count)

	for i := 0; i < count; i++ {
		n := i
		records[i] = CreateTestCardRecord(func(r *domain.CardRecord) {
			r.CardNumber = fmt.Sprintf("%d", 100+n)
			r.Catalog.Name = fmt.Sprintf("Test Card %d", n+1)
			r.Finishes = []domain.FinishEntry{
				{Finish: "nonfoil", Quantity: n + 1},
			}
		})
	}

	return records
}

// CompareCardRecords compares two card records for testing
func CompareCardRecords(t *testing.T, expected, actual *domain.CardRecord) {
	t.Helper()

	require.Equal(t, expected.Key(), actual.Key())
	require.Equal(t, len(expected.Finishes), len(actual.Finishes))
	for i := range expected.Finishes {
		require.Equal(t, expected.Finishes[i].Finish, actual.Finishes[i].Finish)
		require.Equal(t, expected.Finishes[i].Quantity, actual.Finishes[i].Quantity)
		require.Equal(t, expected.Finishes[i].Notes, actual.Finishes[i].Notes)
	}
	if expected.Catalog != nil {
		require.NotNil(t, actual.Catalog)
		require.Equal(t, expected.Catalog.Name, actual.Catalog.Name)
		require.Equal(t, expected.Catalog.AllowedFinishes, actual.Catalog.AllowedFinishes)
	}
}

// AssertEventuallyWithTimeout asserts that a condition is met within a timeout
func AssertEventuallyWithTimeout(t *testing.T, condition func() bool, timeout time.Duration, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Errorf("Condition not met within %v: %s", timeout, msg)
}

// TruncateAllTables truncates all tables in the test database
func TruncateAllTables(t *testing.T, db *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()
	tables := []string{
		"cards",
	}

	for _, table := range tables {
		_, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "Failed to truncate table: %s", table)
	}
}

// SeedTestData seeds the database with test card records
func SeedTestData(t *testing.T, db *pgxpool.Pool, records []*domain.CardRecord) {
	t.Helper()

	ctx := context.Background()

	for _, record := range records {
		finishes, err := json.Marshal(record.Finishes)
		require.NoError(t, err, "Failed to marshal finishes")

		var catalog []byte
		if record.Catalog != nil {
			catalog, err = json.Marshal(record.Catalog)
			require.NoError(t, err, "Failed to marshal catalog snapshot")
		}

		query := `
			INSERT INTO cards (
				card_key, set_code, card_number, finishes,
				catalog_snapshot, catalog_expiry, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`

		_, err = db.Exec(ctx, query,
			record.Key(), record.SetCode, record.CardNumber, finishes,
			catalog, record.CatalogExpiry, record.CreatedAt, record.UpdatedAt,
		)
		require.NoError(t, err, "Failed to seed test data")
	}
}
