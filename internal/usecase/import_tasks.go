package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/planr/internal/domain"
	"github.com/runoshun/planr/internal/engine"
	"github.com/runoshun/planr/internal/graph"
)

// ImportTasksInput contains the parameters for importing tasks from a file.
type ImportTasksInput struct {
	Content string // YAML document (see domain.ParseTaskDrafts)
	DryRun  bool   // Validate and report without writing
}

// ImportTasksOutput contains the result of an import.
type ImportTasksOutput struct {
	Tasks  []*domain.Task // Created tasks, or the planned ones (ID 0) on a dry run
	Edges  []domain.Edge  // Dependencies added; on a dry run new tasks appear as -N for the Nth task in the file
	DryRun bool
}

// ImportTasks is the use case for creating many tasks and their
// dependencies from a YAML file.
type ImportTasks struct {
	engine *engine.Engine
	logger domain.Logger
}

// NewImportTasks creates a new ImportTasks use case.
func NewImportTasks(eng *engine.Engine, logger domain.Logger) *ImportTasks {
	return &ImportTasks{engine: eng, logger: logger}
}

// Execute parses the file and checks every reference against the current
// graph plus the new tasks before anything is written. The engine repeats
// the checks while it holds the store, so a bad reference or a cycle aborts
// the whole import and leaves nothing behind.
func (uc *ImportTasks) Execute(ctx context.Context, in ImportTasksInput) (*ImportTasksOutput, error) {
	drafts, err := domain.ParseTaskDrafts(in.Content)
	if err != nil {
		return nil, err
	}

	snap, err := uc.engine.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	g := graph.FromSnapshot(snap.Tasks, snap.Edges)

	// Drafts take negative placeholder IDs until they are stored.
	placeholder := func(i int) int { return -(i + 1) }
	for i, d := range drafts {
		if err := g.AddTask(&domain.Task{ID: placeholder(i), Title: d.Title, EstimatedDuration: d.Duration}); err != nil {
			return nil, err
		}
	}

	links, err := planLinks(g, drafts, placeholder)
	if err != nil {
		return nil, err
	}

	if in.DryRun {
		out := &ImportTasksOutput{DryRun: true}
		for _, d := range drafts {
			out.Tasks = append(out.Tasks, draftTask(d))
		}
		out.Edges = links
		return out, nil
	}

	tasks := make([]*domain.Task, len(drafts))
	for i, d := range drafts {
		tasks[i] = draftTask(d)
	}
	added, edges, err := uc.engine.Import(ctx, tasks, links)
	if err != nil {
		return nil, err
	}

	uc.logger.Info(0, "task", fmt.Sprintf("imported %d tasks with %d dependencies", len(added), len(edges)))
	return &ImportTasksOutput{Tasks: added, Edges: edges}, nil
}

// planLinks resolves every requires reference and adds it to g, rejecting
// unknown targets, self references and cycles.
func planLinks(g *graph.Graph, drafts []domain.TaskDraft, placeholder func(int) int) ([]domain.Edge, error) {
	var links []domain.Edge
	for i, d := range drafts {
		dependent := placeholder(i)
		for _, raw := range d.Requires {
			ref, err := domain.ParseTaskRef(raw)
			if err != nil {
				return nil, fmt.Errorf("task %d: %w", i+1, err)
			}

			required := ref.ID
			if ref.Relative {
				if ref.Index > len(drafts) {
					return nil, fmt.Errorf("task %d: %w: %q is past the last task", i+1, domain.ErrInvalidTaskReference, raw)
				}
				required = placeholder(ref.Index - 1)
			} else if !g.Has(required) {
				return nil, fmt.Errorf("task %d: %w: %s", i+1, domain.ErrTaskNotFound, domain.TaskRefName(required))
			}

			switch {
			case required == dependent:
				return nil, fmt.Errorf("task %d: %w", i+1, domain.ErrSelfDependency)
			case g.HasEdge(dependent, required):
				continue
			case graph.WouldCreateCycle(g, dependent, required):
				return nil, fmt.Errorf("task %d requires %q: %w", i+1, raw, domain.ErrCyclicDependency)
			}
			if err := g.AddEdge(dependent, required); err != nil {
				return nil, err
			}
			links = append(links, domain.Edge{DependentID: dependent, RequiredID: required})
		}
	}
	return links, nil
}

func draftTask(d domain.TaskDraft) *domain.Task {
	return &domain.Task{
		Title:             d.Title,
		Description:       d.Description,
		DueDate:           d.DueDate,
		EstimatedDuration: d.Duration,
	}
}
