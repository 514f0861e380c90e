package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/taskboard/internal/model"
)

var _ model.TaskStore = (*TaskRepository)(nil)

const taskColumns = `id, title, description, status, assignee_id, created_at, updated_at`

type TaskRepository struct {
	db *Connection
}

func NewTaskRepository(db *Connection) *TaskRepository {
	return &TaskRepository{
		db: db,
	}
}

func (r *TaskRepository) GetAll(ctx context.Context) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at, id`

	return r.list(ctx, query)
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(r.db.querier(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Task{}, model.ErrNotFound
		}
		return model.Task{}, fmt.Errorf("failed to get task by id: %w", err)
	}

	return task, nil
}

func (r *TaskRepository) GetByStatus(ctx context.Context, status model.TaskStatus) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE status = $1 ORDER BY created_at, id`

	return r.list(ctx, query, string(status))
}

func (r *TaskRepository) GetByAssignee(ctx context.Context, userID uuid.UUID) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE assignee_id = $1 ORDER BY created_at, id`

	return r.list(ctx, query, userID)
}

// Save inserts the task or overwrites the stored row with the same id.
func (r *TaskRepository) Save(ctx context.Context, task model.Task) (model.Task, error) {
	query := `INSERT INTO tasks (` + taskColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  ON CONFLICT (id) DO UPDATE SET
			      title = EXCLUDED.title,
			      description = EXCLUDED.description,
			      status = EXCLUDED.status,
			      assignee_id = EXCLUDED.assignee_id,
			      updated_at = EXCLUDED.updated_at
			  RETURNING ` + taskColumns

	saved, err := scanTask(r.db.querier(ctx).QueryRow(ctx, query,
		task.ID, task.Title, task.Description, string(task.Status), toNullUUID(task.AssigneeID),
		task.CreatedAt, task.UpdatedAt,
	))
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to save task: %w", err)
	}

	return saved, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM tasks WHERE id = $1`

	cmd, err := r.db.querier(ctx).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.querier(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return n, nil
}

func (r *TaskRepository) list(ctx context.Context, query string, args ...any) ([]model.Task, error) {
	rows, err := r.db.querier(ctx).Query(ctx, query, args...)
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

func scanTask(row pgx.Row) (model.Task, error) {
	var (
		task     model.Task
		status   string
		assignee uuid.NullUUID
	)
	err := row.Scan(
		&task.ID, &task.Title, &task.Description, &status, &assignee,
		&task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return model.Task{}, err
	}
	task.Status = model.TaskStatus(status)
	task.AssigneeID = fromNullUUID(assignee)
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
