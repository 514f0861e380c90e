package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/taskboard/internal/model"
)

// MockTaskStore mocks the TaskStore interface
type MockTaskStore struct {
	mock.Mock
}

func (m *MockTaskStore) GetAll(ctx context.Context) ([]model.Task, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (model.Task, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskStore) GetByStatus(ctx context.Context, status model.TaskStatus) ([]model.Task, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskStore) GetByAssignee(ctx context.Context, userID uuid.UUID) ([]model.Task, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.Task), args.Error(1)
}

// Save returns its input when the expectation returns nil as the task.
func (m *MockTaskStore) Save(ctx context.Context, task model.Task) (model.Task, error) {
	args := m.Called(ctx, task)
	if args.Get(0) == nil {
		return task, args.Error(1)
	}
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskStore) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserStore mocks the UserStore interface
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetAll(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) GetByName(ctx context.Context, name string) (model.User, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(model.User), args.Error(1)
}

// Save returns its input when the expectation returns nil as the user.
func (m *MockUserStore) Save(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return user, args.Error(1)
	}
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserStore) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockJournal mocks the Journal interface
type MockJournal struct {
	mock.Mock
}

func (m *MockJournal) Record(ctx context.Context, event model.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// inlineTx runs units of work without a transaction.
type inlineTx struct{}

func (inlineTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func eventOf(eventType model.EventType, entity model.EntityType, entityID uuid.UUID) interface{} {
	return mock.MatchedBy(func(e model.Event) bool {
		return e.Type == eventType && e.Entity == entity && e.EntityID == entityID
	})
}
