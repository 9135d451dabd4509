// Package engine serializes every change to the dependency graph and keeps
// the derived schedule (earliest starts and critical path) in step with it.
package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/runoshun/planr/internal/domain"
	"github.com/runoshun/planr/internal/graph"
)

// Log categories.
const (
	logCategory = "deps"
)

// Store is the storage collaborator the engine reads snapshots from and
// commits changes to. Stores that also implement domain.Transactor are used
// through it, so each engine call is one locked, all-or-nothing step even
// against other processes.
type Store = domain.GraphStore

// Schedule is the result of one recompute pass.
type Schedule struct {
	At           time.Time          `json:"at"`
	Starts       map[int]time.Time  `json:"starts"`
	RunID        string             `json:"runId"`
	Order        []int              `json:"order"`
	CriticalPath graph.CriticalPath `json:"criticalPath"`
}

// Engine is the single writer over the task graph.
// The graph is loaded from the store on every call; nothing is cached
// between calls. Mutations hold the write lock (and the store's exclusive
// lock) through validation, commit and recompute; reads hold the read lock.
type Engine struct {
	store  Store
	clock  domain.Clock
	logger domain.Logger
	mu     sync.RWMutex
}

// New creates an Engine.
func New(store Store, clock domain.Clock, logger domain.Logger) *Engine {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &Engine{store: store, clock: clock, logger: logger}
}

// update runs fn as one mutation. With a domain.Transactor store, fn's
// writes are committed only if it returns nil.
func (e *Engine) update(ctx context.Context, fn func(s Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if tx, ok := e.store.(domain.Transactor); ok {
		return tx.Update(fn)
	}
	return fn(e.store)
}

// view runs fn against a consistent read of the store.
func (e *Engine) view(ctx context.Context, fn func(s Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if tx, ok := e.store.(domain.Transactor); ok {
		return tx.View(fn)
	}
	return fn(e.store)
}

// AddTask stores a new task, assigning its ID and creation time, and
// recomputes the schedule so the task gets an earliest start.
func (e *Engine) AddTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if err := task.Validate(); err != nil {
		return nil, err
	}

	var added *domain.Task
	err := e.update(ctx, func(s Store) error {
		g, err := e.load(s)
		if err != nil {
			return err
		}
		id, err := e.insert(s, g, task)
		if err != nil {
			return err
		}
		if _, err := e.recompute(s, g); err != nil {
			return err
		}
		added = g.Task(id).Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// insert assigns task the next ID, stores a copy and adds it to g.
func (e *Engine) insert(s Store, g *graph.Graph, task *domain.Task) (int, error) {
	id, err := s.NextID()
	if err != nil {
		return 0, fmt.Errorf("allocate task id: %w", err)
	}
	t := task.Clone()
	t.ID = id
	if t.Created.IsZero() {
		t.Created = e.clock.Now()
	}
	t.EarliestStart = nil
	if err := s.Save(t); err != nil {
		return 0, fmt.Errorf("save task: %w", err)
	}
	if err := g.AddTask(t); err != nil {
		return 0, err
	}
	return id, nil
}

// AddDependency records that dependentID requires requiredID and returns the
// required task. The request is checked, in order, for self-dependency,
// unknown tasks, an existing edge and cycle formation; any failure is a
// *RejectionError and leaves the graph untouched. If the schedule cannot be
// written back afterwards the edge is removed again and the error returned.
func (e *Engine) AddDependency(ctx context.Context, dependentID, requiredID int) (*domain.Task, error) {
	if dependentID == requiredID {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, reject(ReasonSelfDependency, domain.ErrSelfDependency, dependentID, requiredID)
	}

	var required *domain.Task
	err := e.update(ctx, func(s Store) error {
		g, err := e.load(s)
		if err != nil {
			return err
		}
		if err := e.checkEdge(g, dependentID, requiredID); err != nil {
			return err
		}

		if err := s.CreateEdge(dependentID, requiredID); err != nil {
			return fmt.Errorf("create dependency: %w", err)
		}
		if err := g.AddEdge(dependentID, requiredID); err != nil {
			return err
		}

		if _, err := e.recompute(s, g); err != nil {
			if derr := s.DeleteEdge(dependentID, requiredID); derr != nil {
				e.logger.Error(dependentID, logCategory,
					fmt.Sprintf("roll back dependency on %s: %v", domain.TaskRefName(requiredID), derr))
			}
			return err
		}
		e.logger.Info(dependentID, logCategory, fmt.Sprintf("added dependency on %s", domain.TaskRefName(requiredID)))
		required = g.Task(requiredID).Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return required, nil
}

// checkEdge validates a new edge against g.
func (e *Engine) checkEdge(g *graph.Graph, dependentID, requiredID int) error {
	if dependentID == requiredID {
		return reject(ReasonSelfDependency, domain.ErrSelfDependency, dependentID, requiredID)
	}
	if err := requireTasks(g, dependentID, requiredID); err != nil {
		return err
	}
	if g.HasEdge(dependentID, requiredID) {
		return reject(ReasonDuplicate, domain.ErrDuplicateDependency, dependentID, requiredID)
	}
	if graph.WouldCreateCycle(g, dependentID, requiredID) {
		e.logger.Warn(dependentID, logCategory,
			fmt.Sprintf("rejected %s: would create a cycle", domain.Edge{DependentID: dependentID, RequiredID: requiredID}))
		return reject(ReasonCycle, domain.ErrCyclicDependency, dependentID, requiredID)
	}
	return nil
}

// Import stores tasks and the edges among them as one change and returns
// the stored tasks, in input order, and the edges added. Edge endpoints
// below zero name a task of the batch: -1 is tasks[0]. Edges already stored
// are skipped. Any rejection leaves the store as it was.
func (e *Engine) Import(ctx context.Context, tasks []*domain.Task, edges []domain.Edge) ([]*domain.Task, []domain.Edge, error) {
	for i, t := range tasks {
		if err := t.Validate(); err != nil {
			return nil, nil, fmt.Errorf("task %d: %w", i+1, err)
		}
	}

	var (
		added   []*domain.Task
		applied []domain.Edge
	)
	err := e.update(ctx, func(s Store) error {
		added, applied = nil, nil
		g, err := e.load(s)
		if err != nil {
			return err
		}

		var created []int
		undo := func() {
			for _, id := range created {
				if err := s.Delete(id); err != nil {
					e.logger.Error(id, logCategory, fmt.Sprintf("roll back import: %v", err))
				}
			}
		}

		ids := make([]int, len(tasks))
		for i, t := range tasks {
			id, err := e.insert(s, g, t)
			if err != nil {
				undo()
				return fmt.Errorf("create task %d: %w", i+1, err)
			}
			created = append(created, id)
			ids[i] = id
		}
		resolve := func(id int) (int, error) {
			if id >= 0 {
				return id, nil
			}
			if -id > len(ids) {
				return 0, fmt.Errorf("%w: task %d of %d", domain.ErrInvalidTaskReference, -id, len(ids))
			}
			return ids[-id-1], nil
		}

		for _, edge := range edges {
			dependentID, err := resolve(edge.DependentID)
			if err != nil {
				undo()
				return err
			}
			requiredID, err := resolve(edge.RequiredID)
			if err != nil {
				undo()
				return err
			}
			if g.HasEdge(dependentID, requiredID) {
				continue
			}
			if err := e.checkEdge(g, dependentID, requiredID); err != nil {
				undo()
				return err
			}
			if err := s.CreateEdge(dependentID, requiredID); err != nil {
				undo()
				return fmt.Errorf("create dependency: %w", err)
			}
			if err := g.AddEdge(dependentID, requiredID); err != nil {
				undo()
				return err
			}
			applied = append(applied, domain.Edge{DependentID: dependentID, RequiredID: requiredID})
		}

		if _, err := e.recompute(s, g); err != nil {
			undo()
			return err
		}
		for _, id := range ids {
			added = append(added, g.Task(id).Clone())
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return added, applied, nil
}

// RemoveDependency deletes the edge and reports whether it existed. A
// missing edge is acknowledged without change; unknown tasks are rejected.
func (e *Engine) RemoveDependency(ctx context.Context, dependentID, requiredID int) (bool, error) {
	removed := false
	err := e.update(ctx, func(s Store) error {
		g, err := e.load(s)
		if err != nil {
			return err
		}
		if err := requireTasks(g, dependentID, requiredID); err != nil {
			return err
		}
		if !g.HasEdge(dependentID, requiredID) {
			e.logger.Debug(dependentID, logCategory, fmt.Sprintf("no dependency on %s to remove", domain.TaskRefName(requiredID)))
			return nil
		}

		if err := s.DeleteEdge(dependentID, requiredID); err != nil {
			return fmt.Errorf("delete dependency: %w", err)
		}
		if err := g.RemoveEdge(dependentID, requiredID); err != nil {
			return err
		}
		if _, err := e.recompute(s, g); err != nil {
			return err
		}
		e.logger.Info(dependentID, logCategory, fmt.Sprintf("removed dependency on %s", domain.TaskRefName(requiredID)))
		removed = true
		return nil
	})
	return removed, err
}

// RemoveTask deletes the task together with every edge that references it.
func (e *Engine) RemoveTask(ctx context.Context, id int) error {
	return e.update(ctx, func(s Store) error {
		g, err := e.load(s)
		if err != nil {
			return err
		}
		if err := requireTasks(g, id); err != nil {
			return err
		}

		if err := s.Delete(id); err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		if err := g.RemoveTask(id); err != nil {
			return err
		}
		if _, err := e.recompute(s, g); err != nil {
			return err
		}
		e.logger.Info(id, logCategory, "task deleted")
		return nil
	})
}

// SetDuration changes a task's estimate (nil clears it) and recomputes.
func (e *Engine) SetDuration(ctx context.Context, id int, minutes *int) (*domain.Task, error) {
	return e.UpdateTask(ctx, id, func(t *domain.Task) error {
		if minutes == nil {
			t.EstimatedDuration = nil
			return nil
		}
		t.EstimatedDuration = domain.IntPtr(*minutes)
		return nil
	})
}

// UpdateTask applies edit to a copy of the task and stores the result.
// The schedule is recomputed only when the estimate changed. ID and
// earliest start are owned by the engine and cannot be edited.
func (e *Engine) UpdateTask(ctx context.Context, id int, edit func(*domain.Task) error) (*domain.Task, error) {
	var updated *domain.Task
	err := e.update(ctx, func(s Store) error {
		g, err := e.load(s)
		if err != nil {
			return err
		}
		if err := requireTasks(g, id); err != nil {
			return err
		}

		current := g.Task(id)
		next := current.Clone()
		if err := edit(next); err != nil {
			return err
		}
		next.ID = id
		next.EarliestStart = current.Clone().EarliestStart
		if err := next.Validate(); err != nil {
			return err
		}
		if err := s.Save(next); err != nil {
			return fmt.Errorf("save task: %w", err)
		}

		durationChanged := current.HasDuration() != next.HasDuration() || current.Duration() != next.Duration()
		*current = *next
		if durationChanged {
			if _, err := e.recompute(s, g); err != nil {
				return err
			}
			e.logger.Info(id, logCategory, fmt.Sprintf("estimate set to %dm", next.Duration()))
		}
		updated = g.Task(id).Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Recompute re-derives earliest starts and the critical path from the
// current stored graph.
func (e *Engine) Recompute(ctx context.Context) (*Schedule, error) {
	var sched *Schedule
	err := e.update(ctx, func(s Store) error {
		g, err := e.load(s)
		if err != nil {
			return err
		}
		sched, err = e.recompute(s, g)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sched, nil
}

// Dependencies returns the tasks that id directly requires, ordered by ID.
func (e *Engine) Dependencies(ctx context.Context, id int) ([]*domain.Task, error) {
	return e.adjacent(ctx, id, (*graph.Graph).DependenciesOf)
}

// Dependents returns the tasks that directly require id, ordered by ID.
func (e *Engine) Dependents(ctx context.Context, id int) ([]*domain.Task, error) {
	return e.adjacent(ctx, id, (*graph.Graph).NeighborsOf)
}

func (e *Engine) adjacent(ctx context.Context, id int, next func(*graph.Graph, int) []int) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := e.view(ctx, func(s Store) error {
		g, err := e.load(s)
		if err != nil {
			return err
		}
		if err := requireTasks(g, id); err != nil {
			return err
		}

		ids := next(g, id)
		tasks = make([]*domain.Task, len(ids))
		for i, n := range ids {
			tasks[i] = g.Task(n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// CriticalPath returns the current critical path.
func (e *Engine) CriticalPath(ctx context.Context) (graph.CriticalPath, error) {
	var path graph.CriticalPath
	err := e.view(ctx, func(s Store) error {
		g, err := e.load(s)
		if err != nil {
			return err
		}
		path, err = graph.FindCriticalPath(g)
		if err != nil {
			return e.inconsistent(err)
		}
		return nil
	})
	if err != nil {
		return graph.CriticalPath{}, err
	}
	return path, nil
}

// Analyze returns CPM timings (including slack) for the current graph.
func (e *Engine) Analyze(ctx context.Context) (*graph.Analysis, error) {
	var a *graph.Analysis
	err := e.view(ctx, func(s Store) error {
		g, err := e.load(s)
		if err != nil {
			return err
		}
		a, err = graph.Analyze(g)
		if err != nil {
			return e.inconsistent(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Snapshot returns every task and edge as one consistent copy.
func (e *Engine) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	err := e.view(ctx, func(s Store) error {
		g, err := e.load(s)
		if err != nil {
			return err
		}
		snap = &domain.Snapshot{Tasks: g.Tasks(), Edges: g.Edges()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// load materializes the graph from s.
func (e *Engine) load(s Store) (*graph.Graph, error) {
	tasks, err := s.List()
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	edges, err := s.ListEdges()
	if err != nil {
		return nil, fmt.Errorf("list dependencies: %w", err)
	}
	return graph.FromSnapshot(tasks, edges), nil
}

// recompute runs order, propagation and critical path over g and writes the
// earliest starts back to s. The caller holds the write lock.
func (e *Engine) recompute(s Store, g *graph.Graph) (*Schedule, error) {
	order, err := graph.Order(g)
	if err != nil {
		return nil, e.inconsistent(err)
	}

	now := e.clock.Now()
	starts := graph.Propagate(g, order, now)
	if err := writeStarts(s, order, starts); err != nil {
		return nil, err
	}
	for id, at := range starts {
		g.Task(id).EarliestStart = &at
	}

	path, err := graph.FindCriticalPath(g)
	if err != nil {
		return nil, e.inconsistent(err)
	}

	sched := &Schedule{
		RunID:        uuid.NewString(),
		At:           now,
		Order:        order,
		Starts:       starts,
		CriticalPath: path,
	}
	e.logger.Debug(0, logCategory, fmt.Sprintf("recompute %s: tasks=%d edges=%d critical=[%s] total=%dm",
		sched.RunID, g.Len(), g.EdgeCount(), joinRefs(path.IDs()), path.TotalDuration))
	return sched, nil
}

func writeStarts(s Store, order []int, starts map[int]time.Time) error {
	if b, ok := s.(domain.EarliestStartBatcher); ok {
		if err := b.UpdateEarliestStarts(starts); err != nil {
			return fmt.Errorf("update earliest starts: %w", err)
		}
		return nil
	}
	for _, id := range order {
		if err := s.UpdateEarliestStart(id, starts[id]); err != nil {
			return fmt.Errorf("update earliest start of %s: %w", domain.TaskRefName(id), err)
		}
	}
	return nil
}

// inconsistent reports a cycle found in a graph that passed validation.
func (e *Engine) inconsistent(err error) error {
	e.logger.Error(0, logCategory, err.Error())
	return fmt.Errorf("%w: %w", domain.ErrInternalConsistency, err)
}

func requireTasks(g *graph.Graph, ids ...int) error {
	for _, id := range ids {
		if !g.Has(id) {
			err := fmt.Errorf("%w: %s", domain.ErrTaskNotFound, domain.TaskRefName(id))
			if len(ids) == 2 {
				return reject(ReasonNotFound, err, ids[0], ids[1])
			}
			return reject(ReasonNotFound, err, id, 0)
		}
	}
	return nil
}

func joinRefs(ids []int) string {
	refs := make([]string, len(ids))
	for i, id := range ids {
		refs[i] = domain.TaskRefName(id)
	}
	return strings.Join(refs, " ")
}
