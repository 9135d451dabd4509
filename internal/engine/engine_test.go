package engine

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/planr/internal/domain"
	"github.com/runoshun/planr/internal/graph"
	"github.com/runoshun/planr/internal/infra/jsonstore"
	"github.com/runoshun/planr/internal/testutil"
)

var testNow = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, durations ...int) (*Engine, *testutil.MockStore, *testutil.MockLogger) {
	t.Helper()
	store := testutil.NewMockStore()
	for i, d := range durations {
		task := &domain.Task{ID: i + 1, Title: domain.TaskRefName(i + 1)}
		if d >= 0 {
			task.EstimatedDuration = domain.IntPtr(d)
		}
		store.AddTask(task)
	}
	logger := &testutil.MockLogger{}
	return New(store, &testutil.MockClock{NowTime: testNow}, logger), store, logger
}

func startOf(t *testing.T, store *testutil.MockStore, id int) time.Time {
	t.Helper()
	task, err := store.Get(id)
	require.NoError(t, err)
	require.NotNil(t, task)
	require.NotNil(t, task.EarliestStart, "task %d has no earliest start", id)
	return *task.EarliestStart
}

func TestEngine_AddDependency(t *testing.T) {
	e, store, _ := newTestEngine(t, 30, 60)

	required, err := e.AddDependency(context.Background(), 2, 1)
	require.NoError(t, err)

	require.NotNil(t, required)
	assert.Equal(t, 1, required.ID)
	assert.True(t, store.HasEdge(2, 1))
	assert.Equal(t, testNow, startOf(t, store, 1))
	assert.Equal(t, testNow.Add(30*time.Minute), startOf(t, store, 2))

	path, err := e.CriticalPath(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, path.IDs())
	assert.Equal(t, 90, path.TotalDuration)
}

func TestEngine_AddDependency_Rejections(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(*testutil.MockStore)
		dependentID int
		requiredID  int
		reason      Reason
		sentinel    error
	}{
		{"self", nil, 1, 1, ReasonSelfDependency, domain.ErrSelfDependency},
		{"unknown dependent", nil, 9, 1, ReasonNotFound, domain.ErrTaskNotFound},
		{"unknown required", nil, 1, 9, ReasonNotFound, domain.ErrTaskNotFound},
		{
			name:        "duplicate",
			setup:       func(s *testutil.MockStore) { s.AddEdge(2, 1) },
			dependentID: 2, requiredID: 1,
			reason: ReasonDuplicate, sentinel: domain.ErrDuplicateDependency,
		},
		{
			name:        "direct cycle",
			setup:       func(s *testutil.MockStore) { s.AddEdge(1, 2) },
			dependentID: 2, requiredID: 1,
			reason: ReasonCycle, sentinel: domain.ErrCyclicDependency,
		},
		{
			name:        "transitive cycle",
			setup:       func(s *testutil.MockStore) { s.AddEdge(2, 1); s.AddEdge(3, 2) },
			dependentID: 1, requiredID: 3,
			reason: ReasonCycle, sentinel: domain.ErrCyclicDependency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, store, _ := newTestEngine(t, 10, 20, 30)
			if tt.setup != nil {
				tt.setup(store)
			}
			before, err := store.ListEdges()
			require.NoError(t, err)

			task, err := e.AddDependency(context.Background(), tt.dependentID, tt.requiredID)

			assert.Nil(t, task)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.reason, ReasonOf(err))

			var rej *RejectionError
			require.True(t, errors.As(err, &rej))
			assert.Equal(t, tt.dependentID, rej.DependentID)

			after, err := store.ListEdges()
			require.NoError(t, err)
			assert.Equal(t, before, after)
			assert.Zero(t, store.StartWrites)
		})
	}
}

func TestEngine_AddDependency_CycleIsLogged(t *testing.T) {
	e, store, logger := newTestEngine(t, 1, 1)
	store.AddEdge(1, 2)

	_, err := e.AddDependency(context.Background(), 2, 1)
	require.Error(t, err)

	warns := logger.Levels("WARN")
	require.Len(t, warns, 1)
	assert.Equal(t, 2, warns[0].TaskID)
	assert.Contains(t, warns[0].Msg, "cycle")
}

func TestEngine_AddDependency_StoreFailure(t *testing.T) {
	e, store, _ := newTestEngine(t, 1, 1)
	store.CreateEdgeErr = errors.New("disk full")

	_, err := e.AddDependency(context.Background(), 2, 1)

	assert.ErrorContains(t, err, "disk full")
	assert.Empty(t, ReasonOf(err))
	assert.False(t, store.HasEdge(2, 1))
}

func TestEngine_RemoveDependency(t *testing.T) {
	e, store, _ := newTestEngine(t, 30, 60)
	_, err := e.AddDependency(context.Background(), 2, 1)
	require.NoError(t, err)

	removed, err := e.RemoveDependency(context.Background(), 2, 1)
	require.NoError(t, err)

	assert.True(t, removed)
	assert.False(t, store.HasEdge(2, 1))
	assert.Equal(t, testNow, startOf(t, store, 2))
}

func TestEngine_RemoveDependency_MissingEdgeIsNoop(t *testing.T) {
	e, store, _ := newTestEngine(t, 30, 60)

	removed, err := e.RemoveDependency(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Zero(t, store.StartWrites)

	_, err = e.RemoveDependency(context.Background(), 2, 99)
	assert.Equal(t, ReasonNotFound, ReasonOf(err))
	assert.ErrorContains(t, err, "#99")
}

func TestEngine_RemoveTask_UnblocksDependents(t *testing.T) {
	e, store, _ := newTestEngine(t, 30, 60)
	_, err := e.AddDependency(context.Background(), 2, 1)
	require.NoError(t, err)
	require.Equal(t, testNow.Add(30*time.Minute), startOf(t, store, 2))

	require.NoError(t, e.RemoveTask(context.Background(), 1))

	edges, err := store.ListEdges()
	require.NoError(t, err)
	assert.Empty(t, edges)
	assert.Equal(t, testNow, startOf(t, store, 2))

	deps, err := e.Dependencies(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, deps)

	assert.Equal(t, ReasonNotFound, ReasonOf(e.RemoveTask(context.Background(), 1)))
}

func TestEngine_SetDuration(t *testing.T) {
	e, store, _ := newTestEngine(t, 30, 60)
	_, err := e.AddDependency(context.Background(), 2, 1)
	require.NoError(t, err)

	task, err := e.SetDuration(context.Background(), 1, domain.IntPtr(120))
	require.NoError(t, err)
	assert.Equal(t, 120, task.Duration())
	assert.Equal(t, testNow.Add(2*time.Hour), startOf(t, store, 2))

	_, err = e.SetDuration(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, testNow, startOf(t, store, 2))

	_, err = e.SetDuration(context.Background(), 1, domain.IntPtr(-5))
	assert.ErrorIs(t, err, domain.ErrNegativeDuration)

	_, err = e.SetDuration(context.Background(), 42, domain.IntPtr(5))
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestEngine_AddTask(t *testing.T) {
	e, store, _ := newTestEngine(t, 10)

	task, err := e.AddTask(context.Background(), &domain.Task{Title: "New", EstimatedDuration: domain.IntPtr(5)})
	require.NoError(t, err)

	assert.Equal(t, 2, task.ID)
	assert.Equal(t, testNow, task.Created)
	require.NotNil(t, task.EarliestStart)
	assert.Equal(t, testNow, *task.EarliestStart)
	assert.Equal(t, testNow, startOf(t, store, 2))

	_, err = e.AddTask(context.Background(), &domain.Task{Title: "  "})
	assert.ErrorIs(t, err, domain.ErrEmptyTitle)
}

func TestEngine_Recompute(t *testing.T) {
	e, store, _ := newTestEngine(t, 10, 20, 30)
	store.AddEdge(2, 1)
	store.AddEdge(3, 1)

	s, err := e.Recompute(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, s.RunID)
	assert.Equal(t, testNow, s.At)
	assert.Equal(t, []int{1, 3, 2}, s.Order)
	assert.Equal(t, []int{1, 3}, s.CriticalPath.IDs())
	assert.Equal(t, 40, s.CriticalPath.TotalDuration)
	assert.Equal(t, testNow.Add(10*time.Minute), s.Starts[3])
	assert.Equal(t, 3, store.StartWrites)

	again, err := e.Recompute(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, s.RunID, again.RunID)
}

func TestEngine_Recompute_UsesBatchWrites(t *testing.T) {
	store := &testutil.MockBatchStore{MockStore: testutil.NewMockStore()}
	store.AddTask(&domain.Task{ID: 1, Title: "a", EstimatedDuration: domain.IntPtr(15)})
	store.AddTask(&domain.Task{ID: 2, Title: "b"})
	store.AddEdge(2, 1)
	e := New(store, &testutil.MockClock{NowTime: testNow}, nil)

	_, err := e.Recompute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, store.Batches)
	assert.Zero(t, store.StartWrites)
	task, _ := store.Get(2)
	assert.Equal(t, testNow.Add(15*time.Minute), *task.EarliestStart)
}

func TestEngine_Recompute_CorruptGraph(t *testing.T) {
	e, store, logger := newTestEngine(t, 1, 1)
	store.AddEdge(1, 2)
	store.AddEdge(2, 1)

	_, err := e.Recompute(context.Background())

	assert.ErrorIs(t, err, domain.ErrInternalConsistency)
	assert.ErrorIs(t, err, domain.ErrCycleDetected)
	var cycleErr *graph.CycleError
	assert.True(t, errors.As(err, &cycleErr))
	assert.Len(t, logger.Levels("ERROR"), 1)
	assert.Zero(t, store.StartWrites)
}

func TestEngine_Recompute_WriteFailure(t *testing.T) {
	e, store, _ := newTestEngine(t, 1)
	store.UpdateStartErr = errors.New("read-only")

	_, err := e.Recompute(context.Background())
	assert.ErrorContains(t, err, "read-only")
}

func TestEngine_DependenciesAndDependents(t *testing.T) {
	e, store, _ := newTestEngine(t, 1, 1, 1, 1)
	store.AddEdge(4, 3)
	store.AddEdge(4, 1)
	store.AddEdge(2, 1)

	deps, err := e.Dependencies(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, deps, 2)
	assert.Equal(t, 1, deps[0].ID)
	assert.Equal(t, 3, deps[1].ID)

	dependents, err := e.Dependents(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, dependents, 2)
	assert.Equal(t, 2, dependents[0].ID)
	assert.Equal(t, 4, dependents[1].ID)

	_, err = e.Dependencies(context.Background(), 7)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestEngine_Snapshot(t *testing.T) {
	e, store, _ := newTestEngine(t, 1, 1)
	store.AddEdge(2, 1)
	store.AddEdge(2, 9) // dangling, skipped

	snap, err := e.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Tasks, 2)
	assert.Equal(t, []domain.Edge{{DependentID: 2, RequiredID: 1}}, snap.Edges)
}

func TestEngine_Analyze(t *testing.T) {
	e, store, _ := newTestEngine(t, 10, 20, 30)
	store.AddEdge(2, 1)
	store.AddEdge(3, 1)

	a, err := e.Analyze(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, a.Timing(2).Slack)
	assert.True(t, a.Timing(3).Critical)
}

func TestEngine_CanceledContext(t *testing.T) {
	e, store, _ := newTestEngine(t, 1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.AddDependency(ctx, 2, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, store.HasEdge(2, 1))

	_, err = e.CriticalPath(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_ConcurrentOppositeEdges(t *testing.T) {
	// Two writers racing to add opposite edges: exactly one may win.
	for range 50 {
		e, store, _ := newTestEngine(t, 1, 1)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, pair := range [][2]int{{1, 2}, {2, 1}} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = e.AddDependency(context.Background(), pair[0], pair[1])
			}()
		}
		wg.Wait()

		edges, err := store.ListEdges()
		require.NoError(t, err)
		assert.Len(t, edges, 1)

		failed := 0
		for _, err := range errs {
			if err != nil {
				assert.Equal(t, ReasonCycle, ReasonOf(err))
				failed++
			}
		}
		assert.Equal(t, 1, failed)

		_, err = e.Recompute(context.Background())
		require.NoError(t, err)
	}
}

func TestEngine_UpdateTask(t *testing.T) {
	e, store, _ := newTestEngine(t, 30, 60)
	_, err := e.AddDependency(context.Background(), 2, 1)
	require.NoError(t, err)
	writes := store.StartWrites

	task, err := e.UpdateTask(context.Background(), 2, func(t *domain.Task) error {
		t.Title = "Renamed"
		t.ID = 99
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, task.ID)
	assert.Equal(t, "Renamed", store.Tasks[2].Title)
	assert.Equal(t, writes, store.StartWrites, "title edits do not recompute")
	require.NotNil(t, store.Tasks[2].EarliestStart)
	assert.Equal(t, testNow.Add(30*time.Minute), *store.Tasks[2].EarliestStart)

	_, err = e.UpdateTask(context.Background(), 2, func(t *domain.Task) error {
		t.Title = ""
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrEmptyTitle)
	assert.Equal(t, "Renamed", store.Tasks[2].Title)

	editErr := errors.New("boom")
	_, err = e.UpdateTask(context.Background(), 2, func(*domain.Task) error { return editErr })
	assert.ErrorIs(t, err, editErr)
}

func TestEngine_AddDependency_ReturnsCopy(t *testing.T) {
	e, _, _ := newTestEngine(t, 30, 60)

	required, err := e.AddDependency(context.Background(), 2, 1)
	require.NoError(t, err)
	require.NotNil(t, required.EarliestStart)
	required.Title = "changed"
	*required.EarliestStart = testNow.Add(time.Hour)

	deps, err := e.Dependencies(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, domain.TaskRefName(1), deps[0].Title)
	assert.Equal(t, testNow, *deps[0].EarliestStart)
}

func TestEngine_AddDependency_RollsBackOnWriteFailure(t *testing.T) {
	e, store, logger := newTestEngine(t, 30, 60)
	store.UpdateStartErr = errors.New("disk full")

	_, err := e.AddDependency(context.Background(), 2, 1)

	assert.ErrorContains(t, err, "disk full")
	assert.False(t, store.HasEdge(2, 1))
	assert.Empty(t, logger.Levels("ERROR"))

	store.UpdateStartErr = nil
	_, err = e.AddDependency(context.Background(), 2, 1)
	require.NoError(t, err)
}

func TestEngine_Import(t *testing.T) {
	e, store, _ := newTestEngine(t, 10)

	tasks := []*domain.Task{
		{Title: "design", EstimatedDuration: domain.IntPtr(20)},
		{Title: "build", EstimatedDuration: domain.IntPtr(40)},
	}
	edges := []domain.Edge{
		{DependentID: -1, RequiredID: 1},
		{DependentID: -2, RequiredID: -1},
	}
	added, applied, err := e.Import(context.Background(), tasks, edges)
	require.NoError(t, err)

	require.Len(t, added, 2)
	assert.Equal(t, 2, added[0].ID)
	assert.Equal(t, 3, added[1].ID)
	assert.Equal(t, testNow, added[0].Created)
	assert.Equal(t, []domain.Edge{{DependentID: 2, RequiredID: 1}, {DependentID: 3, RequiredID: 2}}, applied)
	assert.Equal(t, testNow.Add(30*time.Minute), startOf(t, store, 3))
	assert.Zero(t, tasks[0].ID, "input tasks are not modified")

	_, applied, err = e.Import(context.Background(), nil, []domain.Edge{{DependentID: 3, RequiredID: 2}})
	require.NoError(t, err)
	assert.Empty(t, applied, "stored edges are skipped")
}

func TestEngine_Import_RejectsWholeBatch(t *testing.T) {
	tests := []struct {
		name   string
		edges  []domain.Edge
		reason Reason
		err    error
	}{
		{
			name:   "cycle",
			edges:  []domain.Edge{{DependentID: -1, RequiredID: 1}, {DependentID: 1, RequiredID: -1}},
			reason: ReasonCycle,
		},
		{
			name:   "unknown task",
			edges:  []domain.Edge{{DependentID: -1, RequiredID: 42}},
			reason: ReasonNotFound,
		},
		{
			name:   "self",
			edges:  []domain.Edge{{DependentID: -1, RequiredID: -1}},
			reason: ReasonSelfDependency,
		},
		{
			name:  "placeholder out of range",
			edges: []domain.Edge{{DependentID: -2, RequiredID: 1}},
			err:   domain.ErrInvalidTaskReference,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, store, _ := newTestEngine(t, 10)

			_, _, err := e.Import(context.Background(), []*domain.Task{{Title: "new"}}, tt.edges)
			require.Error(t, err)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				assert.Equal(t, tt.reason, ReasonOf(err))
			}

			tasks, err := store.List()
			require.NoError(t, err)
			assert.Len(t, tasks, 1)
			edges, err := store.ListEdges()
			require.NoError(t, err)
			assert.Empty(t, edges)
		})
	}
}

func TestEngine_Import_InvalidTask(t *testing.T) {
	e, store, _ := newTestEngine(t, 10)

	_, _, err := e.Import(context.Background(), []*domain.Task{{Title: "ok"}, {Title: " "}}, nil)

	assert.ErrorIs(t, err, domain.ErrEmptyTitle)
	assert.ErrorContains(t, err, "task 2")
	assert.Len(t, store.Tasks, 1)
}

// hookedStore runs beforeCreate inside the write transaction, just before
// the first edge is stored.
type hookedStore struct {
	*jsonstore.Store
	beforeCreate func()
}

func (h *hookedStore) Update(fn func(domain.GraphStore) error) error {
	return h.Store.Update(func(tx domain.GraphStore) error {
		return fn(&hookedTx{GraphStore: tx, hook: h})
	})
}

type hookedTx struct {
	domain.GraphStore
	hook *hookedStore
}

func (t *hookedTx) CreateEdge(dependentID, requiredID int) error {
	if f := t.hook.beforeCreate; f != nil {
		t.hook.beforeCreate = nil
		f()
	}
	return t.GraphStore.CreateEdge(dependentID, requiredID)
}

func TestEngine_SharedFileStore_OppositeEdges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	base := jsonstore.New(path)
	require.NoError(t, base.Initialize())

	clock := &testutil.MockClock{NowTime: testNow}
	first := &hookedStore{Store: base}
	e1 := New(first, clock, nil)
	e2 := New(jsonstore.New(path), clock, nil)

	for _, title := range []string{"a", "b"} {
		_, err := e1.AddTask(context.Background(), &domain.Task{Title: title, EstimatedDuration: domain.IntPtr(5)})
		require.NoError(t, err)
	}

	secondDone := make(chan error, 1)
	first.beforeCreate = func() {
		go func() {
			_, err := e2.AddDependency(context.Background(), 2, 1)
			secondDone <- err
		}()
		select {
		case err := <-secondDone:
			t.Errorf("second engine finished while the first held the store: %v", err)
		case <-time.After(50 * time.Millisecond):
		}
	}

	_, err := e1.AddDependency(context.Background(), 1, 2)
	require.NoError(t, err)

	select {
	case err := <-secondDone:
		assert.Equal(t, ReasonCycle, ReasonOf(err))
	case <-time.After(5 * time.Second):
		t.Fatal("second engine never finished")
	}

	snap, err := e2.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Edge{{DependentID: 1, RequiredID: 2}}, snap.Edges)

	path2, err := e2.CriticalPath(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, path2.IDs())
}
