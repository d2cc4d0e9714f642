package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskmanager/taskmanager-go/internal/model"
)

func TestTaskService_Create(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	_, s := env.signup(t, "Lucas", "lucas@example.com")

	task, err := env.tasks.Create(ctx, s.User.ID, model.CreateTaskRequest{Description: "  From my test "})
	require.NoError(t, err)
	assert.Equal(t, "From my test", task.Description)
	assert.False(t, task.Completed)
	assert.Equal(t, s.User.ID, task.Owner)
	assert.NotEmpty(t, task.ID)

	done, err := env.tasks.Create(ctx, s.User.ID, model.CreateTaskRequest{Description: "done", Completed: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, done.Completed)
}

func TestTaskService_CreateRejectsEmptyDescription(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	_, s := env.signup(t, "Lucas", "lucas@example.com")

	_, err := env.tasks.Create(ctx, s.User.ID, model.CreateTaskRequest{Description: "   "})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	tasks, err := env.tasks.List(ctx, s.User.ID, model.TaskQuery{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestTaskService_OwnerIsolation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	_, a := env.signup(t, "A", "a@example.com")
	_, b := env.signup(t, "B", "b@example.com")

	x, err := env.tasks.Create(ctx, a.User.ID, model.CreateTaskRequest{Description: "X"})
	require.NoError(t, err)

	_, err = env.tasks.Get(ctx, b.User.ID, x.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, err = env.tasks.Update(ctx, b.User.ID, x.ID, model.UpdateTaskRequest{Completed: boolPtr(true)})
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, err = env.tasks.Delete(ctx, b.User.ID, x.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	got, err := env.tasks.Get(ctx, a.User.ID, x.ID)
	require.NoError(t, err)
	assert.False(t, got.Completed)
}

func TestTaskService_Update(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	_, s := env.signup(t, "Lucas", "lucas@example.com")

	task, err := env.tasks.Create(ctx, s.User.ID, model.CreateTaskRequest{Description: "old"})
	require.NoError(t, err)

	updated, err := env.tasks.Update(ctx, s.User.ID, task.ID, model.UpdateTaskRequest{Completed: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, "old", updated.Description)
	assert.True(t, updated.Completed)

	updated, err = env.tasks.Update(ctx, s.User.ID, task.ID, model.UpdateTaskRequest{Description: strPtr("new")})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Description)
	assert.True(t, updated.Completed)
}

func TestTaskService_UpdateValidatesBeforeLookup(t *testing.T) {
	env := newTestEnv()

	_, err := env.tasks.Update(context.Background(), "anyone", "missing", model.UpdateTaskRequest{Description: strPtr("")})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestTaskService_Delete(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	_, s := env.signup(t, "Lucas", "lucas@example.com")

	task, err := env.tasks.Create(ctx, s.User.ID, model.CreateTaskRequest{Description: "bye"})
	require.NoError(t, err)

	deleted, err := env.tasks.Delete(ctx, s.User.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, deleted.ID)

	_, err = env.tasks.Get(ctx, s.User.ID, task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskService_List(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	_, s := env.signup(t, "Lucas", "lucas@example.com")

	for _, d := range []string{"c", "a", "b"} {
		_, err := env.tasks.Create(ctx, s.User.ID, model.CreateTaskRequest{Description: d, Completed: boolPtr(d != "a")})
		require.NoError(t, err)
	}

	tasks, err := env.tasks.List(ctx, s.User.ID, model.TaskQuery{SortField: model.SortByDescription, Limit: 2})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "a", tasks[0].Description)
	assert.Equal(t, "b", tasks[1].Description)

	tasks, err = env.tasks.List(ctx, s.User.ID, model.TaskQuery{Completed: boolPtr(true)})
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	tasks, err = env.tasks.List(ctx, s.User.ID, model.TaskQuery{Skip: 10})
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}
