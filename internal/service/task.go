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

var _ model.TaskPersistence = (*Task)(nil)

// Task persists tasks. Every mutation and its journal entry share one transaction.
type Task struct {
	tx      model.Transactor
	tasks   model.TaskStore
	journal Journal
	logger  *logger.Logger
	now     func() time.Time
}

func NewTask(
	tx model.Transactor,
	tasks model.TaskStore,
	journal Journal,
	logger *logger.Logger,
) *Task {
	return &Task{
		tx:      tx,
		tasks:   tasks,
		journal: journal,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Clear removes every task, recording a DELETE event before each removal.
func (s *Task) Clear(ctx context.Context) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		tasks, err := s.tasks.GetAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to get tasks: %w", err)
		}

		for _, task := range tasks {
			if err := record(ctx, s.journal, model.NewDeleteEvent, task.Unassigned(), nil); err != nil {
				return err
			}
			if err := s.tasks.Delete(ctx, task.ID); err != nil {
				return fmt.Errorf("failed to delete task %s: %w", task.ID, err)
			}
		}

		remaining, err := s.tasks.Count(ctx)
		if err != nil {
			return fmt.Errorf("failed to count tasks: %w", err)
		}
		if remaining != 0 {
			s.logger.Error("tasks not deleted", "remaining", remaining)
			return &model.ConsistencyError{
				Op:     "clear",
				Entity: model.EntityTypeTask,
				Detail: fmt.Sprintf("%d tasks remain after deleting all", remaining),
			}
		}

		s.logger.Debug("tasks cleared", "count", len(tasks))
		return nil
	})
}

func (s *Task) GetAll(ctx context.Context) ([]model.Task, error) {
	tasks, err := s.tasks.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks: %w", err)
	}
	return tasks, nil
}

// GetByID returns model.ErrTaskNotFound when no task has the id.
func (s *Task) GetByID(ctx context.Context, id uuid.UUID) (model.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.Task{}, fmt.Errorf("task with id %s: %w", id, model.ErrTaskNotFound)
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to get task by id: %w", err)
	}
	return task, nil
}

func (s *Task) GetByStatus(ctx context.Context, status model.TaskStatus) ([]model.Task, error) {
	tasks, err := s.tasks.GetByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks by status: %w", err)
	}
	return tasks, nil
}

func (s *Task) GetByAssignee(ctx context.Context, userID uuid.UUID) ([]model.Task, error) {
	tasks, err := s.tasks.GetByAssignee(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks by assignee: %w", err)
	}
	return tasks, nil
}

// Upsert creates the task when it has no id and updates the stored task otherwise.
func (s *Task) Upsert(ctx context.Context, task model.Task) (model.Task, error) {
	if task.Status != "" {
		if _, err := model.ParseTaskStatus(string(task.Status)); err != nil {
			return model.Task{}, fmt.Errorf("%w: %s", model.ErrInvalidTaskStatus, task.Status)
		}
	}

	var saved model.Task
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if task.ID == uuid.Nil {
			saved, err = s.create(ctx, task)
		} else {
			saved, err = s.update(ctx, task)
		}
		return err
	})
	if err != nil {
		return model.Task{}, err
	}

	return saved, nil
}

func (s *Task) create(ctx context.Context, task model.Task) (model.Task, error) {
	now := s.now()

	created := model.Task{
		ID:          uuid.New(),
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		AssigneeID:  cloneID(task.AssigneeID),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	if created.Status == "" {
		created.Status = model.DefaultTaskStatus
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	if created.UpdatedAt.IsZero() {
		created.UpdatedAt = created.CreatedAt
	}

	saved, err := s.tasks.Save(ctx, created)
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to save task: %w", err)
	}

	if err := record(ctx, s.journal, model.NewInsertEvent, saved, saved.AssigneeID); err != nil {
		return model.Task{}, err
	}

	s.logger.Debug("task created", "id", saved.ID)
	return saved, nil
}

func (s *Task) update(ctx context.Context, task model.Task) (model.Task, error) {
	existing, err := s.GetByID(ctx, task.ID)
	if err != nil {
		return model.Task{}, err
	}

	updated := model.Task{
		ID:          existing.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		AssigneeID:  cloneID(task.AssigneeID),
		CreatedAt:   existing.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	if updated.Status == "" {
		updated.Status = existing.Status
	}
	if updated.UpdatedAt.IsZero() {
		updated.UpdatedAt = s.now()
	}

	saved, err := s.tasks.Save(ctx, updated)
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to save task: %w", err)
	}

	if err := record(ctx, s.journal, model.NewUpdateEvent, saved, saved.AssigneeID); err != nil {
		return model.Task{}, err
	}

	s.logger.Debug("task updated", "id", saved.ID)
	return saved, nil
}

// Delete removes the task and verifies it is gone afterwards.
func (s *Task) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if err := s.tasks.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete task %s: %w", id, err)
		}

		if err := record(ctx, s.journal, model.NewDeleteEvent, existing, existing.AssigneeID); err != nil {
			return err
		}

		_, err = s.tasks.GetByID(ctx, id)
		switch {
		case err == nil:
			s.logger.Error("task not deleted", "id", id)
			return &model.ConsistencyError{
				Op:     "delete",
				Entity: model.EntityTypeTask,
				Detail: fmt.Sprintf("task %s still present after delete", id),
			}
		case !errors.Is(err, model.ErrNotFound):
			return fmt.Errorf("failed to verify task deletion: %w", err)
		}

		s.logger.Debug("task deleted", "id", id)
		return nil
	})
}
