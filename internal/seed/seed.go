// Package seed loads development data into an empty board.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dtroode/taskboard/internal/logger"
	"github.com/dtroode/taskboard/internal/model"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

// Fixtures is the data set written by Loader.
type Fixtures struct {
	Users []UserFixture `yaml:"users"`
	Tasks []TaskFixture `yaml:"tasks"`
}

type UserFixture struct {
	Name string `yaml:"name"`
}

type TaskFixture struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Status      string `yaml:"status"`
}

// Result lists the entities created by Load.
type Result struct {
	Users []model.User
	Tasks []model.Task
}

// DefaultFixtures returns the embedded development data set.
func DefaultFixtures() (Fixtures, error) {
	return ParseFixtures(bytes.NewReader(defaultFixtures))
}

// LoadFixtures reads fixtures from the YAML file at path.
func LoadFixtures(path string) (Fixtures, error) {
	f, err := os.Open(path)
	if err != nil {
		return Fixtures{}, fmt.Errorf("failed to open fixtures: %w", err)
	}
	defer f.Close()

	return ParseFixtures(f)
}

// ParseFixtures decodes a YAML fixture document. Unknown fields are rejected.
func ParseFixtures(r io.Reader) (Fixtures, error) {
	var fixtures Fixtures

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fixtures); err != nil {
		return Fixtures{}, fmt.Errorf("failed to decode fixtures: %w", err)
	}

	for i, task := range fixtures.Tasks {
		if task.Status == "" {
			continue
		}
		if _, err := model.ParseTaskStatus(task.Status); err != nil {
			return Fixtures{}, fmt.Errorf("task fixture %d: %w", i, err)
		}
	}

	return fixtures, nil
}

// Loader replaces the board contents with fixtures.
type Loader struct {
	tasks  model.TaskPersistence
	users  model.UserPersistence
	logger *logger.Logger
}

func NewLoader(tasks model.TaskPersistence, users model.UserPersistence, logger *logger.Logger) *Loader {
	return &Loader{
		tasks:  tasks,
		users:  users,
		logger: logger,
	}
}

// Load clears users and tasks, creates the fixtures, then assigns the first
// task to the first user and the last task to the last user.
func (l *Loader) Load(ctx context.Context, fixtures Fixtures) (Result, error) {
	l.logger.Info("deleting existing data")
	if err := l.users.Clear(ctx); err != nil {
		return Result{}, fmt.Errorf("failed to clear users: %w", err)
	}
	if err := l.tasks.Clear(ctx); err != nil {
		return Result{}, fmt.Errorf("failed to clear tasks: %w", err)
	}

	l.logger.Info("loading initial data", "users", len(fixtures.Users), "tasks", len(fixtures.Tasks))

	result := Result{
		Users: make([]model.User, 0, len(fixtures.Users)),
		Tasks: make([]model.Task, 0, len(fixtures.Tasks)),
	}
	for _, f := range fixtures.Users {
		user, err := l.users.Upsert(ctx, model.User{Name: f.Name})
		if err != nil {
			return Result{}, fmt.Errorf("failed to create user %q: %w", f.Name, err)
		}
		result.Users = append(result.Users, user)
	}
	for _, f := range fixtures.Tasks {
		task, err := l.tasks.Upsert(ctx, model.Task{
			Title:       f.Title,
			Description: f.Description,
			Status:      model.TaskStatus(f.Status),
		})
		if err != nil {
			return Result{}, fmt.Errorf("failed to create task %q: %w", f.Title, err)
		}
		result.Tasks = append(result.Tasks, task)
	}

	if len(result.Users) == 0 || len(result.Tasks) == 0 {
		return result, nil
	}

	first, err := l.assign(ctx, result.Tasks[0], result.Users[0])
	if err != nil {
		return Result{}, err
	}
	result.Tasks[0] = first

	lastIdx := len(result.Tasks) - 1
	last, err := l.assign(ctx, result.Tasks[lastIdx], result.Users[len(result.Users)-1])
	if err != nil {
		return Result{}, err
	}
	result.Tasks[lastIdx] = last

	return result, nil
}

func (l *Loader) assign(ctx context.Context, task model.Task, user model.User) (model.Task, error) {
	assigneeID := user.ID
	task.AssigneeID = &assigneeID
	task.UpdatedAt = time.Time{}

	assigned, err := l.tasks.Upsert(ctx, task)
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to assign task %s: %w", task.ID, err)
	}
	return assigned, nil
}
