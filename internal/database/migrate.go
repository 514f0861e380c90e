// Package database holds the schema migrations of every storage driver.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

// Supported storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var gooseDialects = map[string]string{
	DriverPostgres: "postgres",
	DriverSQLite:   "sqlite3",
}

// goose keeps its dialect and filesystem in package state.
var gooseMu sync.Mutex

// Migrate applies all pending migrations of driver to db.
func Migrate(ctx context.Context, driver string, db *sql.DB) error {
	dialect, ok := gooseDialects[driver]
	if !ok {
		return fmt.Errorf("unsupported storage driver %q", driver)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations/"+driver); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
