package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/planr/internal/domain"
	"github.com/runoshun/planr/internal/engine"
	"github.com/runoshun/planr/internal/usecase/shared"
)

// DeleteTaskInput contains the parameters for deleting a task.
type DeleteTaskInput struct {
	TaskID int
}

// DeleteTaskOutput contains the result of deleting a task.
type DeleteTaskOutput struct {
	Task     *domain.Task // The deleted task
	Released []int        // Tasks that no longer wait on it
}

// DeleteTask is the use case for deleting a task.
type DeleteTask struct {
	tasks  domain.TaskRepository
	engine *engine.Engine
	logger domain.Logger
}

// NewDeleteTask creates a new DeleteTask use case.
func NewDeleteTask(tasks domain.TaskRepository, eng *engine.Engine, logger domain.Logger) *DeleteTask {
	return &DeleteTask{tasks: tasks, engine: eng, logger: logger}
}

// Execute removes the task and every dependency that references it, then
// recomputes the schedule.
func (uc *DeleteTask) Execute(ctx context.Context, in DeleteTaskInput) (*DeleteTaskOutput, error) {
	task, err := shared.GetTask(uc.tasks, in.TaskID)
	if err != nil {
		return nil, err
	}
	dependents, err := uc.engine.Dependents(ctx, in.TaskID)
	if err != nil {
		return nil, err
	}

	if err := uc.engine.RemoveTask(ctx, in.TaskID); err != nil {
		return nil, err
	}
	uc.logger.Info(in.TaskID, "task", fmt.Sprintf("deleted: %q", task.Title))

	released := make([]int, len(dependents))
	for i, d := range dependents {
		released[i] = d.ID
	}
	return &DeleteTaskOutput{Task: task, Released: released}, nil
}
