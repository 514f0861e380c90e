package seed_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/taskboard/internal/model"
	"github.com/dtroode/taskboard/internal/repository/sqlite"
	"github.com/dtroode/taskboard/internal/seed"
	"github.com/dtroode/taskboard/internal/service"
	"github.com/dtroode/taskboard/internal/testutil"
)

func newLoader(t *testing.T) (*seed.Loader, *service.Persistence, model.Storage) {
	t.Helper()

	conn, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	p, err := service.NewPersistence(service.ModeEventSourcing, conn, testutil.MakeNoopLogger())
	require.NoError(t, err)

	return seed.NewLoader(p.Tasks, p.Users, testutil.MakeNoopLogger()), p, conn
}

func TestDefaultFixtures(t *testing.T) {
	fixtures, err := seed.DefaultFixtures()
	require.NoError(t, err)

	assert.Len(t, fixtures.Users, 3)
	assert.Len(t, fixtures.Tasks, 3)
	assert.Equal(t, "Alice", fixtures.Users[0].Name)
	assert.Empty(t, fixtures.Tasks[0].Status)
}

func TestParseFixtures(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{
			name: "valid",
			doc:  "users:\n  - name: dora\ntasks:\n  - title: t\n    status: DONE\n",
		},
		{
			name:    "unknown field",
			doc:     "users:\n  - name: dora\n    email: dora@example.com\n",
			wantErr: true,
		},
		{
			name:    "unknown status",
			doc:     "tasks:\n  - title: t\n    status: BLOCKED\n",
			wantErr: true,
		},
		{
			name:    "malformed",
			doc:     "users: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := seed.ParseFixtures(strings.NewReader(tt.doc))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoadFixtures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte("users:\n  - name: erin\n"), 0o600))

	fixtures, err := seed.LoadFixtures(path)
	require.NoError(t, err)
	require.Len(t, fixtures.Users, 1)
	assert.Equal(t, "erin", fixtures.Users[0].Name)

	_, err = seed.LoadFixtures(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoader_Load(t *testing.T) {
	ctx := context.Background()
	loader, p, storage := newLoader(t)

	_, err := p.Users.Upsert(ctx, model.User{Name: "stale"})
	require.NoError(t, err)
	_, err = p.Tasks.Upsert(ctx, model.Task{Title: "stale"})
	require.NoError(t, err)

	fixtures, err := seed.DefaultFixtures()
	require.NoError(t, err)

	result, err := loader.Load(ctx, fixtures)
	require.NoError(t, err)
	require.Len(t, result.Users, 3)
	require.Len(t, result.Tasks, 3)

	users, err := p.Users.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)
	for _, u := range users {
		assert.NotEqual(t, "stale", u.Name)
	}

	tasks, err := p.Tasks.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 3)

	first, err := p.Tasks.GetByID(ctx, result.Tasks[0].ID)
	require.NoError(t, err)
	require.NotNil(t, first.AssigneeID)
	assert.Equal(t, result.Users[0].ID, *first.AssigneeID)
	assert.Equal(t, model.TaskStatusTodo, first.Status)

	last, err := p.Tasks.GetByID(ctx, result.Tasks[2].ID)
	require.NoError(t, err)
	require.NotNil(t, last.AssigneeID)
	assert.Equal(t, result.Users[2].ID, *last.AssigneeID)
	assert.Equal(t, model.TaskStatusDone, last.Status)

	middle, err := p.Tasks.GetByID(ctx, result.Tasks[1].ID)
	require.NoError(t, err)
	assert.Nil(t, middle.AssigneeID)

	events, err := storage.Events().GetByEntity(ctx, model.EntityTypeTask, first.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, model.EventTypeUpdate, events[1].Type)
}

func TestLoader_LoadEmptyFixtures(t *testing.T) {
	loader, _, _ := newLoader(t)

	result, err := loader.Load(context.Background(), seed.Fixtures{})
	require.NoError(t, err)
	assert.Empty(t, result.Users)
	assert.Empty(t, result.Tasks)
}
