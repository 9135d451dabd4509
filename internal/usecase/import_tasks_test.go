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

const importFile = `
tasks:
  - title: Design schema
    duration: 90
  - title: Write migrations
    duration: 60
    requires: [1]
  - title: Ship
    duration: 15
    requires: [2, "#1"]
`

func TestImportTasks_Execute(t *testing.T) {
	env := newTestEnv(t)
	env.addTask(1, "Existing", 30)

	out, err := NewImportTasks(env.engine, env.logger).Execute(context.Background(), ImportTasksInput{Content: importFile})
	require.NoError(t, err)

	assert.False(t, out.DryRun)
	assert.Equal(t, []int{2, 3, 4}, taskIDs(out.Tasks))
	assert.Equal(t, []domain.Edge{
		{DependentID: 3, RequiredID: 2},
		{DependentID: 4, RequiredID: 3},
		{DependentID: 4, RequiredID: 1},
	}, out.Edges)
	assert.True(t, env.store.HasEdge(4, 1))

	ship := out.Tasks[2]
	require.NotNil(t, ship.EarliestStart)
	assert.Equal(t, testNow.Add(150*time.Minute), *ship.EarliestStart)

	infos := env.logger.Levels("INFO")
	assert.Equal(t, "imported 3 tasks with 3 dependencies", infos[len(infos)-1].Msg)
}

func TestImportTasks_DryRun(t *testing.T) {
	env := newTestEnv(t)
	env.addTask(1, "Existing", 30)

	out, err := NewImportTasks(env.engine, env.logger).Execute(context.Background(), ImportTasksInput{Content: importFile, DryRun: true})
	require.NoError(t, err)

	assert.True(t, out.DryRun)
	require.Len(t, out.Tasks, 3)
	assert.Equal(t, "Write migrations", out.Tasks[1].Title)
	assert.Zero(t, out.Tasks[1].ID)
	assert.Equal(t, []domain.Edge{
		{DependentID: -2, RequiredID: -1},
		{DependentID: -3, RequiredID: -2},
		{DependentID: -3, RequiredID: 1},
	}, out.Edges)
	assert.Len(t, env.store.Tasks, 1)
	assert.Empty(t, env.store.Edges)
}

func TestImportTasks_Rejected(t *testing.T) {
	tests := []struct {
		want    error
		name    string
		content string
	}{
		{name: "empty", content: "", want: domain.ErrEmptyFile},
		{name: "unknown existing", content: "tasks:\n  - title: A\n    requires: ['#9']\n", want: domain.ErrTaskNotFound},
		{name: "out of range", content: "tasks:\n  - title: A\n    requires: [2]\n", want: domain.ErrInvalidTaskReference},
		{name: "bad ref", content: "tasks:\n  - title: A\n    requires: [first]\n", want: domain.ErrInvalidTaskReference},
		{name: "self", content: "tasks:\n  - title: A\n    requires: [1]\n", want: domain.ErrSelfDependency},
		{
			name:    "cycle",
			content: "tasks:\n  - title: A\n    requires: [2]\n  - title: B\n    requires: [1]\n",
			want:    domain.ErrCyclicDependency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.addTask(1, "Existing", 30)

			_, err := NewImportTasks(env.engine, env.logger).Execute(context.Background(), ImportTasksInput{Content: tt.content})
			assert.ErrorIs(t, err, tt.want)
			assert.Len(t, env.store.Tasks, 1, "nothing is written on rejection")
		})
	}
}

func TestImportTasks_StoreFailureLeavesNothing(t *testing.T) {
	env := newTestEnv(t)
	env.addTask(1, "Existing", 30)
	env.store.CreateEdgeErr = errors.New("disk full")

	_, err := NewImportTasks(env.engine, env.logger).Execute(context.Background(), ImportTasksInput{Content: importFile})

	assert.ErrorContains(t, err, "disk full")
	assert.Len(t, env.store.Tasks, 1)
	assert.Empty(t, env.store.Edges)
}
