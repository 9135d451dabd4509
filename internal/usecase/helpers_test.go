package usecase

import (
	"testing"
	"time"

	"github.com/runoshun/planr/internal/domain"
	"github.com/runoshun/planr/internal/engine"
	"github.com/runoshun/planr/internal/testutil"
)

var testNow = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

// testEnv bundles a mock store with a real engine running over it.
type testEnv struct {
	store  *testutil.MockStore
	logger *testutil.MockLogger
	clock  *testutil.MockClock
	engine *engine.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		store:  testutil.NewMockStore(),
		logger: &testutil.MockLogger{},
		clock:  &testutil.MockClock{NowTime: testNow},
	}
	env.engine = engine.New(env.store, env.clock, env.logger)
	return env
}

// addTask stores a task with the given duration (negative = unset).
func (env *testEnv) addTask(id int, title string, duration int) {
	task := &domain.Task{ID: id, Title: title, Created: testNow.Add(time.Duration(id) * time.Minute)}
	if duration >= 0 {
		task.EstimatedDuration = domain.IntPtr(duration)
	}
	env.store.AddTask(task)
}
