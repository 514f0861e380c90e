package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/taskboard/internal/logger"
	"github.com/dtroode/taskboard/internal/model"
)

var _ model.UserPersistence = (*User)(nil)

// User persists users and keeps their names unique.
type User struct {
	tx      model.Transactor
	users   model.UserStore
	journal Journal
	logger  *logger.Logger
	now     func() time.Time
}

func NewUser(
	tx model.Transactor,
	users model.UserStore,
	journal Journal,
	logger *logger.Logger,
) *User {
	return &User{
		tx:      tx,
		users:   users,
		journal: journal,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Clear removes every user, recording a DELETE event before each removal.
func (s *User) Clear(ctx context.Context) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		users, err := s.users.GetAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to get users: %w", err)
		}

		for _, user := range users {
			if err := record(ctx, s.journal, model.NewDeleteEvent, user, nil); err != nil {
				return err
			}
			if err := s.users.Delete(ctx, user.ID); err != nil {
				return fmt.Errorf("failed to delete user %s: %w", user.ID, err)
			}
		}

		remaining, err := s.users.Count(ctx)
		if err != nil {
			return fmt.Errorf("failed to count users: %w", err)
		}
		if remaining != 0 {
			s.logger.Error("users not deleted", "remaining", remaining)
			return &model.ConsistencyError{
				Op:     "clear",
				Entity: model.EntityTypeUser,
				Detail: fmt.Sprintf("%d users remain after deleting all", remaining),
			}
		}

		s.logger.Debug("users cleared", "count", len(users))
		return nil
	})
}

func (s *User) GetAll(ctx context.Context) ([]model.User, error) {
	users, err := s.users.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return users, nil
}

// GetByID returns model.ErrUserNotFound when no user has the id.
func (s *User) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, fmt.Errorf("user with id %s: %w", id, model.ErrUserNotFound)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

// Upsert creates the user when it has no id and renames the stored user otherwise.
func (s *User) Upsert(ctx context.Context, user model.User) (model.User, error) {
	var saved model.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if user.ID == uuid.Nil {
			saved, err = s.create(ctx, user)
		} else {
			saved, err = s.update(ctx, user)
		}
		return err
	})
	if err != nil {
		return model.User{}, err
	}

	return saved, nil
}

func (s *User) create(ctx context.Context, user model.User) (model.User, error) {
	created := model.User{
		ID:        uuid.New(),
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = s.now()
	}

	if err := s.ensureNameAvailable(ctx, created); err != nil {
		return model.User{}, err
	}

	saved, err := s.users.Save(ctx, created)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to save user: %w", err)
	}

	if err := record(ctx, s.journal, model.NewInsertEvent, saved, &saved.ID); err != nil {
		return model.User{}, err
	}

	s.logger.Debug("user created", "id", saved.ID)
	return saved, nil
}

func (s *User) update(ctx context.Context, user model.User) (model.User, error) {
	existing, err := s.GetByID(ctx, user.ID)
	if err != nil {
		return model.User{}, err
	}

	updated := model.User{
		ID:        existing.ID,
		Name:      user.Name,
		CreatedAt: existing.CreatedAt,
	}

	if err := s.ensureNameAvailable(ctx, updated); err != nil {
		return model.User{}, err
	}

	saved, err := s.users.Save(ctx, updated)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to save user: %w", err)
	}

	if err := record(ctx, s.journal, model.NewUpdateEvent, saved, &saved.ID); err != nil {
		return model.User{}, err
	}

	s.logger.Debug("user updated", "id", saved.ID)
	return saved, nil
}

// ensureNameAvailable fails when another user already has the name of user.
func (s *User) ensureNameAvailable(ctx context.Context, user model.User) error {
	holder, err := s.users.GetByName(ctx, user.Name)
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get user by name: %w", err)
	}
	if holder.ID != user.ID {
		return fmt.Errorf("user name %q: %w", user.Name, model.ErrDuplicateName)
	}
	return nil
}
