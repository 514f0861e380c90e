package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/taskboard/internal/model"
)

var _ model.TaskStore = (*TaskRepository)(nil)

const taskColumns = `id, title, description, status, assignee_id, created_at, updated_at`

type TaskRepository struct {
	db *Connection
}

func (r *TaskRepository) GetAll(ctx context.Context) ([]model.Task, error) {
	return r.list(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at, id`)
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Task, error) {
	row := r.db.querier(ctx).QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)

	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, model.ErrNotFound
		}
		return model.Task{}, fmt.Errorf("failed to get task by id: %w", err)
	}

	return task, nil
}

func (r *TaskRepository) GetByStatus(ctx context.Context, status model.TaskStatus) ([]model.Task, error) {
	return r.list(ctx, `SELECT `+taskColumns+` FROM tasks WHERE status = ? ORDER BY created_at, id`, string(status))
}

func (r *TaskRepository) GetByAssignee(ctx context.Context, userID uuid.UUID) ([]model.Task, error) {
	return r.list(ctx, `SELECT `+taskColumns+` FROM tasks WHERE assignee_id = ? ORDER BY created_at, id`, userID)
}

func (r *TaskRepository) Save(ctx context.Context, task model.Task) (model.Task, error) {
	query := `INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			status = excluded.status,
			assignee_id = excluded.assignee_id,
			updated_at = excluded.updated_at
		RETURNING ` + taskColumns

	saved, err := scanTask(r.db.querier(ctx).QueryRowContext(ctx, query,
		task.ID, task.Title, task.Description, string(task.Status), toNullUUID(task.AssigneeID),
		toUnix(task.CreatedAt), toUnix(task.UpdatedAt),
	))
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to save task: %w", err)
	}

	return saved, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.querier(ctx).ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.querier(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return n, nil
}

func (r *TaskRepository) list(ctx context.Context, query string, args ...any) ([]model.Task, error) {
	rows, err := r.db.querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (model.Task, error) {
	var (
		task                 model.Task
		status               string
		assignee             uuid.NullUUID
		createdAt, updatedAt int64
	)
	if err := row.Scan(&task.ID, &task.Title, &task.Description, &status, &assignee, &createdAt, &updatedAt); err != nil {
		return model.Task{}, err
	}
	task.Status = model.TaskStatus(status)
	task.AssigneeID = fromNullUUID(assignee)
	task.CreatedAt = fromUnix(createdAt)
	task.UpdatedAt = fromUnix(updatedAt)
	return task, nil
}

func toNullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func fromNullUUID(id uuid.NullUUID) *uuid.UUID {
	if !id.Valid {
		return nil
	}
	v := id.UUID
	return &v
}
