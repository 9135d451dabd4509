package usecase

import (
	"context"

	"github.com/runoshun/planr/internal/domain"
	"github.com/runoshun/planr/internal/engine"
	"github.com/runoshun/planr/internal/graph"
	"github.com/runoshun/planr/internal/usecase/shared"
)

// ShowTaskInput contains the parameters for showing a task.
type ShowTaskInput struct {
	TaskID int
}

// ShowTaskOutput contains the task and its neighbourhood in the graph.
// Fields are ordered to minimize memory padding.
type ShowTaskOutput struct {
	Task         *domain.Task
	Timing       *graph.Timing  // CPM figures (slack, latest start)
	Dependencies []*domain.Task // Tasks this one requires
	Dependents   []*domain.Task // Tasks that require this one
}

// ShowTask is the use case for showing task details.
type ShowTask struct {
	tasks  domain.TaskRepository
	engine *engine.Engine
}

// NewShowTask creates a new ShowTask use case.
func NewShowTask(tasks domain.TaskRepository, eng *engine.Engine) *ShowTask {
	return &ShowTask{tasks: tasks, engine: eng}
}

// Execute retrieves the task with its prerequisites, dependents and timing.
func (uc *ShowTask) Execute(ctx context.Context, in ShowTaskInput) (*ShowTaskOutput, error) {
	task, err := shared.GetTask(uc.tasks, in.TaskID)
	if err != nil {
		return nil, err
	}

	deps, err := uc.engine.Dependencies(ctx, in.TaskID)
	if err != nil {
		return nil, err
	}
	dependents, err := uc.engine.Dependents(ctx, in.TaskID)
	if err != nil {
		return nil, err
	}
	analysis, err := uc.engine.Analyze(ctx)
	if err != nil {
		return nil, err
	}

	return &ShowTaskOutput{
		Task:         task,
		Dependencies: deps,
		Dependents:   dependents,
		Timing:       analysis.Timing(in.TaskID),
	}, nil
}
