package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/planr/internal/domain"
)

func TestShowTask_Execute(t *testing.T) {
	env := newTestEnv(t)
	env.addTask(1, "A", 10)
	env.addTask(2, "B", 20)
	env.addTask(3, "C", 30)
	env.addTask(4, "D", 5)
	env.store.AddEdge(2, 1)
	env.store.AddEdge(3, 2)
	env.store.AddEdge(4, 2)

	out, err := NewShowTask(env.store, env.engine).Execute(context.Background(), ShowTaskInput{TaskID: 2})
	require.NoError(t, err)

	assert.Equal(t, "B", out.Task.Title)
	assert.Equal(t, []int{1}, taskIDs(out.Dependencies))
	assert.Equal(t, []int{3, 4}, taskIDs(out.Dependents))
	require.NotNil(t, out.Timing)
	assert.Equal(t, 10, out.Timing.EarlyStart)
	assert.Equal(t, 0, out.Timing.Slack)
	assert.True(t, out.Timing.Critical)

	out, err = NewShowTask(env.store, env.engine).Execute(context.Background(), ShowTaskInput{TaskID: 4})
	require.NoError(t, err)
	assert.Equal(t, 25, out.Timing.Slack)
	assert.False(t, out.Timing.Critical)
	assert.Empty(t, out.Dependents)
}

func TestShowTask_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := NewShowTask(env.store, env.engine).Execute(context.Background(), ShowTaskInput{TaskID: 9})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}
