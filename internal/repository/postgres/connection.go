package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/dtroode/taskboard/internal/database"
	"github.com/dtroode/taskboard/internal/model"
)

var _ model.Storage = (*Connection)(nil)

// querier is implemented by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Connection struct {
	*pgxpool.Pool

	tasks  *TaskRepository
	users  *UserRepository
	events *EventRepository
}

func NewConection(ctx context.Context, dsn string) (*Connection, error) {
	conf, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection pool: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	if err := database.Migrate(ctx, database.DriverPostgres, sqlDB); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	c := &Connection{Pool: pool}
	c.tasks = NewTaskRepository(c)
	c.users = NewUserRepository(c)
	c.events = NewEventRepository(c)

	return c, nil
}

func (s *Connection) Close() error {
	if s.Pool != nil {
		s.Pool.Close()
	}
	return nil
}

func (s *Connection) Ping(ctx context.Context) error {
	if s.Pool == nil {
		return fmt.Errorf("connection pool is nil")
	}
	return s.Pool.Ping(ctx)
}

func (s *Connection) Tasks() model.TaskStore {
	return s.tasks
}

func (s *Connection) Users() model.UserStore {
	return s.users
}

func (s *Connection) Events() model.EventStore {
	return s.events
}
