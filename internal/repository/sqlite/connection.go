// Package sqlite implements the task, user and event stores on an embedded
// SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dtroode/taskboard/internal/database"
	"github.com/dtroode/taskboard/internal/model"
)

var _ model.Storage = (*Connection)(nil)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Connection struct {
	db *sql.DB

	tasks  *TaskRepository
	users  *UserRepository
	events *EventRepository
}

// Open opens the database at path, ":memory:" included, and applies migrations.
func Open(ctx context.Context, path string) (*Connection, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection serializes writers and keeps in-memory databases alive.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	if err := database.Migrate(ctx, database.DriverSQLite, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return NewWithDB(db), nil
}

// NewWithDB wraps an already migrated database.
func NewWithDB(db *sql.DB) *Connection {
	c := &Connection{db: db}
	c.tasks = &TaskRepository{db: c}
	c.users = &UserRepository{db: c}
	c.events = &EventRepository{db: c}
	return c
}

func (c *Connection) Close() error {
	return c.db.Close()
}

func (c *Connection) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Connection) Tasks() model.TaskStore {
	return c.tasks
}

func (c *Connection) Users() model.UserStore {
	return c.users
}

func (c *Connection) Events() model.EventStore {
	return c.events
}

// Timestamps are stored as Unix microseconds, the precision Postgres keeps.
func toUnix(t time.Time) int64 {
	return t.UnixMicro()
}

func fromUnix(n int64) time.Time {
	return time.UnixMicro(n).UTC()
}
