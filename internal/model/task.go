package model

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TaskStatus enumerates task workflow states.
type TaskStatus string

const (
	// TaskStatusTodo is a task nobody started yet.
	TaskStatusTodo TaskStatus = "TODO"
	// TaskStatusDoing is a task in progress.
	TaskStatusDoing TaskStatus = "DOING"
	// TaskStatusDone is a finished task.
	TaskStatusDone TaskStatus = "DONE"
)

// DefaultTaskStatus is assigned to created tasks without a status.
const DefaultTaskStatus = TaskStatusTodo

// ParseTaskStatus converts s into a TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch status := TaskStatus(s); status {
	case TaskStatusTodo, TaskStatusDoing, TaskStatusDone:
		return status, nil
	default:
		return "", fmt.Errorf("unknown task status %q", s)
	}
}

// TaskStore defines current-state persistence operations for tasks.
type TaskStore interface {
	GetAll(ctx context.Context) ([]Task, error)
	GetByID(ctx context.Context, id uuid.UUID) (Task, error)
	GetByStatus(ctx context.Context, status TaskStatus) ([]Task, error)
	GetByAssignee(ctx context.Context, userID uuid.UUID) ([]Task, error)
	Save(ctx context.Context, task Task) (Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

// TaskPersistence is the capability callers use to read and mutate tasks.
type TaskPersistence interface {
	Clear(ctx context.Context) error
	GetAll(ctx context.Context) ([]Task, error)
	GetByID(ctx context.Context, id uuid.UUID) (Task, error)
	GetByStatus(ctx context.Context, status TaskStatus) ([]Task, error)
	GetByAssignee(ctx context.Context, userID uuid.UUID) ([]Task, error)
	Upsert(ctx context.Context, task Task) (Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Task represents a board task.
type Task struct {
	ID          uuid.UUID
	Title       string
	Description string
	Status      TaskStatus
	AssigneeID  *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Snapshot returns the field set of the task as stored in event payloads.
func (t Task) Snapshot() map[string]any {
	var assignee any
	if t.AssigneeID != nil {
		assignee = t.AssigneeID.String()
	}
	return map[string]any{
		"id":          t.ID.String(),
		"title":       t.Title,
		"description": t.Description,
		"status":      string(t.Status),
		"assigneeId":  assignee,
		"createdAt":   t.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updatedAt":   t.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// Unassigned returns a copy of the task without assignee.
func (t Task) Unassigned() Task {
	t.AssigneeID = nil
	return t
}
