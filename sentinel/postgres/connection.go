// File: connection.go
package postgres

import (
	"fmt"
	"os"

	"github.com/sentinelops/go-api/sentinel/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const defaultPostgresDSN = "host=sentinel-postgres user=postgres password=password dbname=sentinel port=5432 sslmode=disable"

// Config selects the database backend. Driver is "postgres" (default) or
// "sqlite"; DSN is driver-specific.
type Config struct {
	Driver string
	DSN    string
}

// ConfigFromEnv builds a Config from SENTINEL_DB_DRIVER and SENTINEL_DB_DSN,
// falling back to the platform PostgreSQL instance.
func ConfigFromEnv() Config {
	return Config{
		Driver: os.Getenv("SENTINEL_DB_DRIVER"),
		DSN:    os.Getenv("SENTINEL_DB_DSN"),
	}
}

// Connect opens the configured database and migrates the ledger schema.
// Repositories receive the returned handle explicitly; there is no
// package-level connection.
func Connect(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", "postgres":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = defaultPostgresDSN
		}
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the ledger tables.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.PostureSnapshot{},
		&models.Alert{},
		&models.Incident{},
		&models.Playbook{},
		&models.PlaybookRun{},
		&models.ThreatSweep{},
	)
	if err != nil {
		return fmt.Errorf("migrate ledger schema: %w", err)
	}
	return nil
}

// SupportsNativeJSON reports whether the connected dialect stores metadata
// documents in a native jsonb column. Resolved once at startup, never
// re-derived per query.
func SupportsNativeJSON(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}
