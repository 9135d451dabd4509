package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/planr/internal/domain"
	"github.com/runoshun/planr/internal/engine"
	"github.com/runoshun/planr/internal/usecase/shared"
)

// RemoveDependencyInput contains the parameters for removing a dependency.
type RemoveDependencyInput struct {
	TaskID     int // The dependent task
	RequiredID int // The prerequisite to drop
}

// RemoveDependencyOutput contains the result of removing a dependency.
type RemoveDependencyOutput struct {
	Task    *domain.Task // The dependent task after recompute
	Removed bool         // False if the dependency did not exist
}

// RemoveDependency is the use case for dropping a prerequisite.
type RemoveDependency struct {
	tasks  domain.TaskRepository
	engine *engine.Engine
}

// NewRemoveDependency creates a new RemoveDependency use case.
func NewRemoveDependency(tasks domain.TaskRepository, eng *engine.Engine) *RemoveDependency {
	return &RemoveDependency{tasks: tasks, engine: eng}
}

// Execute removes the edge. A missing edge is acknowledged with Removed=false.
func (uc *RemoveDependency) Execute(ctx context.Context, in RemoveDependencyInput) (*RemoveDependencyOutput, error) {
	removed, err := uc.engine.RemoveDependency(ctx, in.TaskID, in.RequiredID)
	if err != nil {
		return nil, err
	}

	task, err := shared.GetTask(uc.tasks, in.TaskID)
	if err != nil {
		return nil, fmt.Errorf("reload task: %w", err)
	}
	return &RemoveDependencyOutput{Task: task, Removed: removed}, nil
}
