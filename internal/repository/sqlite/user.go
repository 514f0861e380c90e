package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/taskboard/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	db *Connection
}

func (r *UserRepository) GetAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.querier(ctx).QueryContext(ctx, `SELECT id, name, created_at FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
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
	return r.get(ctx, `SELECT id, name, created_at FROM users WHERE id = ?`, id)
}

func (r *UserRepository) GetByName(ctx context.Context, name string) (model.User, error) {
	return r.get(ctx, `SELECT id, name, created_at FROM users WHERE name = ?`, name)
}

func (r *UserRepository) Save(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (id, name, created_at) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name
		RETURNING id, name, created_at`

	saved, err := scanUser(r.db.querier(ctx).QueryRowContext(ctx, query, user.ID, user.Name, toUnix(user.CreatedAt)))
	if err != nil {
		if isUniqueViolation(err, "users.name") {
			return model.User{}, model.ErrDuplicateName
		}
		return model.User{}, fmt.Errorf("failed to save user: %w", err)
	}

	return saved, nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.querier(ctx).ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.querier(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func (r *UserRepository) get(ctx context.Context, query string, arg any) (model.User, error) {
	user, err := scanUser(r.db.querier(ctx).QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func scanUser(row scanner) (model.User, error) {
	var (
		user      model.User
		createdAt int64
	)
	if err := row.Scan(&user.ID, &user.Name, &createdAt); err != nil {
		return model.User{}, err
	}
	user.CreatedAt = fromUnix(createdAt)
	return user, nil
}
