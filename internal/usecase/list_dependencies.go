package usecase

import (
	"context"

	"github.com/runoshun/planr/internal/domain"
	"github.com/runoshun/planr/internal/engine"
)

// ListDependenciesInput contains the parameters for listing dependencies.
type ListDependenciesInput struct {
	TaskID     int
	Dependents bool // List tasks that require TaskID instead
}

// ListDependenciesOutput contains the result of listing dependencies.
type ListDependenciesOutput struct {
	Tasks []*domain.Task // Ordered by ID
}

// ListDependencies is the use case for listing a task's direct prerequisites.
type ListDependencies struct {
	engine *engine.Engine
}

// NewListDependencies creates a new ListDependencies use case.
func NewListDependencies(eng *engine.Engine) *ListDependencies {
	return &ListDependencies{engine: eng}
}

// Execute returns the direct prerequisites (or dependents) of the task.
func (uc *ListDependencies) Execute(ctx context.Context, in ListDependenciesInput) (*ListDependenciesOutput, error) {
	list := uc.engine.Dependencies
	if in.Dependents {
		list = uc.engine.Dependents
	}
	tasks, err := list(ctx, in.TaskID)
	if err != nil {
		return nil, err
	}
	return &ListDependenciesOutput{Tasks: tasks}, nil
}
