package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/taskboard/internal/model"
	"github.com/dtroode/taskboard/internal/testutil"
)

// MockEventStore mocks the EventStore interface
type MockEventStore struct {
	mock.Mock
}

func (m *MockEventStore) Append(ctx context.Context, event model.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventStore) GetAll(ctx context.Context) ([]model.Event, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Event), args.Error(1)
}

func (m *MockEventStore) GetByEntity(ctx context.Context, entity model.EntityType, entityID uuid.UUID) ([]model.Event, error) {
	args := m.Called(ctx, entity, entityID)
	return args.Get(0).([]model.Event), args.Error(1)
}

func (m *MockEventStore) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// memObjects is an in-memory ObjectStore.
type memObjects struct {
	objects     map[string][]byte
	contentType string
	existsErr   error
	putErr      error
	// staleExists makes Exists miss objects, like a concurrent export
	// landing between the check and the upload.
	staleExists bool
}

func newMemObjects() *memObjects {
	return &memObjects{objects: map[string][]byte{}}
}

func (m *memObjects) Put(_ context.Context, key string, r io.Reader, size int64, contentType string) error {
	if m.putErr != nil {
		return m.putErr
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if int64(len(body)) != size {
		return errors.New("size mismatch")
	}
	if _, ok := m.objects[key]; ok {
		return fmt.Errorf("%s: %w", key, model.ErrArchiveExists)
	}
	m.objects[key] = body
	m.contentType = contentType
	return nil
}

func (m *memObjects) Exists(_ context.Context, key string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.objects[key]
	return ok && !m.staleExists, nil
}

func (m *memObjects) List(_ context.Context, _ string) ([]model.ObjectInfo, error) {
	infos := []model.ObjectInfo{}
	for key, body := range m.objects {
		infos = append(infos, model.ObjectInfo{Key: key, Size: int64(len(body))})
	}
	return infos, nil
}

func newTestArchive(events *MockEventStore, objects *memObjects) *Archive {
	a := NewArchive(events, objects, testutil.MakeNoopLogger())
	a.now = func() time.Time { return fixedNow }
	return a
}

func TestArchive_Export(t *testing.T) {
	task := model.Task{ID: uuid.New(), Title: "t", Status: model.TaskStatusTodo}
	insert, err := model.NewInsertEvent(task, nil)
	require.NoError(t, err)
	remove, err := model.NewDeleteEvent(task, nil)
	require.NoError(t, err)

	events := &MockEventStore{}
	events.On("GetAll", mock.Anything).Return([]model.Event{insert, remove}, nil)
	objects := newMemObjects()

	result, err := newTestArchive(events, objects).Export(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "events/2024-03-01T12:00:00Z.jsonl", result.Key)
	assert.Equal(t, 2, result.Events)
	assert.Equal(t, "application/x-ndjson", objects.contentType)

	scanner := bufio.NewScanner(bytes.NewReader(objects.objects[result.Key]))
	var decoded []model.Event
	for scanner.Scan() {
		var e model.Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		decoded = append(decoded, e)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, decoded, 2)
	assert.Equal(t, insert.ID, decoded[0].ID)
	assert.Equal(t, model.EventTypeDelete, decoded[1].Type)
	assert.JSONEq(t, string(remove.Payload), string(decoded[1].Payload))
}

func TestArchive_ExportRefusesOverwrite(t *testing.T) {
	events := &MockEventStore{}
	objects := newMemObjects()
	objects.objects["events/2024-03-01T12:00:00Z.jsonl"] = []byte("old")

	_, err := newTestArchive(events, objects).Export(context.Background())
	require.ErrorIs(t, err, model.ErrArchiveExists)
	assert.Equal(t, []byte("old"), objects.objects["events/2024-03-01T12:00:00Z.jsonl"])
	events.AssertNotCalled(t, "GetAll", mock.Anything)
}

func TestArchive_ExportConcurrentExport(t *testing.T) {
	events := &MockEventStore{}
	events.On("GetAll", mock.Anything).Return([]model.Event{}, nil)
	objects := newMemObjects()
	objects.objects["events/2024-03-01T12:00:00Z.jsonl"] = []byte("first")
	objects.staleExists = true

	_, err := newTestArchive(events, objects).Export(context.Background())
	require.ErrorIs(t, err, model.ErrArchiveExists)
	assert.NotContains(t, err.Error(), "failed to store archive")
	assert.Equal(t, []byte("first"), objects.objects["events/2024-03-01T12:00:00Z.jsonl"])
}

func TestArchive_ExportErrors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*MockEventStore, *memObjects)
		wantMsg string
	}{
		{
			name: "stat fails",
			setup: func(_ *MockEventStore, objects *memObjects) {
				objects.existsErr = errors.New("unreachable")
			},
			wantMsg: "failed to check archive",
		},
		{
			name: "event log fails",
			setup: func(events *MockEventStore, _ *memObjects) {
				events.On("GetAll", mock.Anything).Return([]model.Event(nil), errors.New("db down"))
			},
			wantMsg: "failed to get events",
		},
		{
			name: "upload fails",
			setup: func(events *MockEventStore, objects *memObjects) {
				events.On("GetAll", mock.Anything).Return([]model.Event{}, nil)
				objects.putErr = errors.New("quota")
			},
			wantMsg: "failed to store archive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := &MockEventStore{}
			objects := newMemObjects()
			tt.setup(events, objects)

			_, err := newTestArchive(events, objects).Export(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestArchive_List(t *testing.T) {
	objects := newMemObjects()
	objects.objects["events/a.jsonl"] = []byte("{}\n")

	infos, err := newTestArchive(&MockEventStore{}, objects).List(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "events/a.jsonl", infos[0].Key)
	assert.Equal(t, int64(3), infos[0].Size)
}

func TestEventLog_Record(t *testing.T) {
	events := &MockEventStore{}
	event := model.Event{ID: uuid.New(), Type: model.EventTypeInsert}
	events.On("Append", mock.Anything, event).Return(nil)

	require.NoError(t, NewEventLog(events).Record(context.Background(), event))
	events.AssertExpectations(t)
	assert.NoError(t, discardJournal{}.Record(context.Background(), event))
}
