package usecase

import (
	"context"

	"github.com/runoshun/planr/internal/domain"
	"github.com/runoshun/planr/internal/engine"
	"github.com/runoshun/planr/internal/usecase/shared"
)

// AddDependencyInput contains the parameters for adding a dependency.
type AddDependencyInput struct {
	TaskID     int // The dependent task
	RequiredID int // The task it will wait on
}

// AddDependencyOutput contains the result of adding a dependency.
type AddDependencyOutput struct {
	Required *domain.Task // The prerequisite that was added
	Task     *domain.Task // The dependent task with its new earliest start
}

// AddDependency is the use case for making one task wait on another.
type AddDependency struct {
	tasks  domain.TaskRepository
	engine *engine.Engine
}

// NewAddDependency creates a new AddDependency use case.
func NewAddDependency(tasks domain.TaskRepository, eng *engine.Engine) *AddDependency {
	return &AddDependency{tasks: tasks, engine: eng}
}

// Execute adds the edge. Rejections are returned as *engine.RejectionError.
func (uc *AddDependency) Execute(ctx context.Context, in AddDependencyInput) (*AddDependencyOutput, error) {
	required, err := uc.engine.AddDependency(ctx, in.TaskID, in.RequiredID)
	if err != nil {
		return nil, err
	}
	task, err := shared.GetTask(uc.tasks, in.TaskID)
	if err != nil {
		return nil, err
	}
	return &AddDependencyOutput{Required: required, Task: task}, nil
}
