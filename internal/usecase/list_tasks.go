package usecase

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/runoshun/planr/internal/domain"
	"github.com/runoshun/planr/internal/engine"
	"github.com/runoshun/planr/internal/graph"
)

// Sort orders accepted by ListTasks.
const (
	SortCreated = "created" // Newest first (default)
	SortID      = "id"
	SortStart   = "start" // Earliest start, then ID
	SortDue     = "due"   // Due date, undated last
)

// ListTasksInput contains the parameters for listing tasks.
type ListTasksInput struct {
	Sort         string // One of the Sort* constants (empty = SortCreated)
	CriticalOnly bool   // Only tasks on the critical path
}

// ListTasksOutput contains the result of listing tasks.
type ListTasksOutput struct {
	Analysis *graph.Analysis // CPM timings for every task
	Tasks    []*domain.Task
}

// ListTasks is the use case for listing tasks.
type ListTasks struct {
	engine *engine.Engine
}

// NewListTasks creates a new ListTasks use case.
func NewListTasks(eng *engine.Engine) *ListTasks {
	return &ListTasks{engine: eng}
}

// Execute returns every task in the requested order along with its timings.
func (uc *ListTasks) Execute(ctx context.Context, in ListTasksInput) (*ListTasksOutput, error) {
	compare, err := taskOrder(in.Sort)
	if err != nil {
		return nil, err
	}

	snap, err := uc.engine.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	analysis, err := uc.engine.Analyze(ctx)
	if err != nil {
		return nil, err
	}

	tasks := snap.Tasks
	if in.CriticalOnly {
		tasks = slices.DeleteFunc(tasks, func(t *domain.Task) bool {
			timing := analysis.Timing(t.ID)
			return timing == nil || !timing.Critical
		})
	}
	slices.SortStableFunc(tasks, compare)

	return &ListTasksOutput{Tasks: tasks, Analysis: analysis}, nil
}

func taskOrder(sort string) (func(a, b *domain.Task) int, error) {
	byID := func(a, b *domain.Task) int { return cmp.Compare(a.ID, b.ID) }
	switch sort {
	case "", SortCreated:
		return func(a, b *domain.Task) int {
			if c := b.Created.Compare(a.Created); c != 0 {
				return c
			}
			return -byID(a, b)
		}, nil
	case SortID:
		return byID, nil
	case SortStart:
		return func(a, b *domain.Task) int {
			if c := compareTimes(a.EarliestStart, b.EarliestStart); c != 0 {
				return c
			}
			return byID(a, b)
		}, nil
	case SortDue:
		return func(a, b *domain.Task) int {
			if c := compareTimes(a.DueDate, b.DueDate); c != 0 {
				return c
			}
			return byID(a, b)
		}, nil
	default:
		return nil, fmt.Errorf("unknown sort order %q (use %s, %s, %s or %s)", sort, SortCreated, SortID, SortStart, SortDue)
	}
}

// compareTimes orders set instants before unset ones.
func compareTimes(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Compare(*b)
	}
}
