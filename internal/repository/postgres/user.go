package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/taskboard/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

const usersNameKey = "users_name_key"

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) GetAll(ctx context.Context) ([]model.User, error) {
	query := `SELECT id, name, created_at FROM users ORDER BY created_at, id`

	rows, err := r.db.querier(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var user model.User
		if err := rows.Scan(&user.ID, &user.Name, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	var user model.User
	query := `SELECT id, name, created_at FROM users WHERE id = $1`

	err := r.db.querier(ctx).QueryRow(ctx, query, id).Scan(&user.ID, &user.Name, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByName(ctx context.Context, name string) (model.User, error) {
	var user model.User
	query := `SELECT id, name, created_at FROM users WHERE name = $1`

	err := r.db.querier(ctx).QueryRow(ctx, query, name).Scan(&user.ID, &user.Name, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by name: %w", err)
	}

	return user, nil
}

// Save inserts the user or renames the stored row with the same id.
func (r *UserRepository) Save(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (id, name, created_at)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
			  RETURNING id, name, created_at`

	var savedUser model.User
	err := r.db.querier(ctx).QueryRow(ctx, query, user.ID, user.Name, user.CreatedAt).Scan(
		&savedUser.ID, &savedUser.Name, &savedUser.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, usersNameKey) {
			return model.User{}, model.ErrDuplicateName
		}
		return model.User{}, fmt.Errorf("failed to save user: %w", err)
	}

	return savedUser, nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM users WHERE id = $1`

	cmd, err := r.db.querier(ctx).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.querier(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}
