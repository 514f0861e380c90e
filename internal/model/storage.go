package model

import "context"

// Transactor runs fn as a single unit of work. Store calls made with the
// context passed to fn join the transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Storage bundles the current-state tables and the event log of one backend.
type Storage interface {
	Transactor
	Tasks() TaskStore
	Users() UserStore
	Events() EventStore
	Ping(ctx context.Context) error
	Close() error
}
