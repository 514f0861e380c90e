package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines current-state persistence operations for users.
type UserStore interface {
	GetAll(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByName(ctx context.Context, name string) (User, error)
	Save(ctx context.Context, user User) (User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

// UserPersistence is the capability callers use to read and mutate users.
type UserPersistence interface {
	Clear(ctx context.Context) error
	GetAll(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	Upsert(ctx context.Context, user User) (User, error)
}

// User represents a board user. Names are unique.
type User struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// Snapshot returns the field set of the user as stored in event payloads.
func (u User) Snapshot() map[string]any {
	return map[string]any{
		"id":        u.ID.String(),
		"name":      u.Name,
		"createdAt": u.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}
