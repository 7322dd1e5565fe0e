package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/username/finapp/finsync/src/logger"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB is the process-wide snapshot store, set by InitDB.
var DB *sql.DB

// Open opens the SQLite file at databasePath (":memory:" for tests) with WAL, busy_timeout
// and foreign keys enabled.
func Open(databasePath string) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)", databasePath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", databasePath, err)
	}

	// Limit open connections to 1 for SQLite to avoid locking issues
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// InitDB opens the database, applies migrations and stores the handle in DB.
func InitDB(databasePath string) error {
	db, err := Open(databasePath)
	if err != nil {
		return err
	}
	if err := RunMigrations(db); err != nil {
		db.Close()
		return err
	}
	DB = db
	logger.L.Info("Snapshot database ready", "path", databasePath)
	return nil
}

// RunMigrations applies the embedded migrations to db.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("database connection is not initialized before running migrations")
	}

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create sqlite migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not read embedded migrations: %w", err)
	}

	// The migrate instance is not closed: that would close db through the driver.
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("migration instance creation failed: %w", err)
	}

	logger.L.Info("Applying database migrations...")
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.L.Info("No new database migrations to apply.")
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	logger.L.Info("Database migrations applied successfully.")
	return nil
}

// Close closes DB if it was opened.
func Close() error {
	if DB == nil {
		return nil
	}
	err := DB.Close()
	DB = nil
	return err
}
