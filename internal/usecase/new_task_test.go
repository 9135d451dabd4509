package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/planr/internal/domain"
)

func TestNewTask_Execute(t *testing.T) {
	env := newTestEnv(t)
	uc := NewNewTask(env.store, env.engine, env.logger)
	due := testNow.Add(72 * time.Hour)

	out, err := uc.Execute(context.Background(), NewTaskInput{
		Title:       "Design schema",
		Description: "Tables and indexes",
		Duration:    domain.IntPtr(90),
		DueDate:     &due,
	})
	require.NoError(t, err)

	task := out.Task
	assert.Equal(t, 1, task.ID)
	assert.Equal(t, "Design schema", task.Title)
	assert.Equal(t, 90, task.Duration())
	assert.Equal(t, testNow, task.Created)
	require.NotNil(t, task.EarliestStart)
	assert.Equal(t, testNow, *task.EarliestStart)
	require.NotNil(t, env.store.Tasks[1].DueDate)
	assert.True(t, due.Equal(*env.store.Tasks[1].DueDate))

	infos := env.logger.Levels("INFO")
	require.NotEmpty(t, infos)
	assert.Equal(t, `created: "Design schema"`, infos[len(infos)-1].Msg)
}

func TestNewTask_WithRequires(t *testing.T) {
	env := newTestEnv(t)
	env.addTask(1, "A", 30)
	env.addTask(2, "B", 45)
	uc := NewNewTask(env.store, env.engine, env.logger)

	out, err := uc.Execute(context.Background(), NewTaskInput{Title: "C", Requires: []int{2, 1, 2}})
	require.NoError(t, err)

	assert.Equal(t, 3, out.Task.ID)
	assert.True(t, env.store.HasEdge(3, 1))
	assert.True(t, env.store.HasEdge(3, 2))
	assert.Len(t, env.store.Edges, 2)
	require.NotNil(t, out.Task.EarliestStart)
	assert.Equal(t, testNow.Add(45*time.Minute), *out.Task.EarliestStart)
}

func TestNewTask_Errors(t *testing.T) {
	tests := []struct {
		want  error
		setup func(env *testEnv)
		name  string
		in    NewTaskInput
	}{
		{name: "empty title", in: NewTaskInput{Title: " "}, want: domain.ErrEmptyTitle},
		{name: "negative duration", in: NewTaskInput{Title: "A", Duration: domain.IntPtr(-1)}, want: domain.ErrNegativeDuration},
		{name: "unknown prerequisite", in: NewTaskInput{Title: "A", Requires: []int{7}}, want: domain.ErrTaskNotFound},
		{
			name:  "save fails",
			in:    NewTaskInput{Title: "A"},
			setup: func(env *testEnv) { env.store.SaveErr = errors.New("disk full") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if tt.setup != nil {
				tt.setup(env)
			}
			_, err := NewNewTask(env.store, env.engine, env.logger).Execute(context.Background(), tt.in)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
			assert.Empty(t, env.store.Tasks)
		})
	}
}
