package usecase

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/runoshun/planr/internal/domain"
	"github.com/runoshun/planr/internal/engine"
	"github.com/runoshun/planr/internal/usecase/shared"
)

// NewTaskInput contains the parameters for creating a new task.
// Fields are ordered to minimize memory padding.
type NewTaskInput struct {
	DueDate     *time.Time // Due instant (optional)
	Duration    *int       // Estimated minutes (optional)
	Title       string     // Task title (required)
	Description string     // Task description (optional)
	ImageURL    string     // Image reference (optional)
	Requires    []int      // Existing prerequisite task IDs (optional)
}

// NewTaskOutput contains the result of creating a new task.
type NewTaskOutput struct {
	Task *domain.Task // The created task, with its earliest start
}

// NewTask is the use case for creating a new task.
type NewTask struct {
	tasks  domain.TaskRepository
	engine *engine.Engine
	logger domain.Logger
}

// NewNewTask creates a new NewTask use case.
func NewNewTask(tasks domain.TaskRepository, eng *engine.Engine, logger domain.Logger) *NewTask {
	return &NewTask{
		tasks:  tasks,
		engine: eng,
		logger: logger,
	}
}

// Execute creates a new task and links it to its prerequisites.
// Prerequisites are checked before the task is stored, so an unknown ID
// leaves nothing behind.
func (uc *NewTask) Execute(ctx context.Context, in NewTaskInput) (*NewTaskOutput, error) {
	requires := slices.Compact(slices.Sorted(slices.Values(in.Requires)))
	if err := shared.RequireTasks(uc.tasks, requires...); err != nil {
		return nil, err
	}

	task, err := uc.engine.AddTask(ctx, &domain.Task{
		Title:             in.Title,
		Description:       in.Description,
		DueDate:           in.DueDate,
		EstimatedDuration: in.Duration,
		ImageURL:          in.ImageURL,
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info(task.ID, "task", fmt.Sprintf("created: %q", task.Title))

	if len(requires) == 0 {
		return &NewTaskOutput{Task: task}, nil
	}

	for _, req := range requires {
		if _, err := uc.engine.AddDependency(ctx, task.ID, req); err != nil {
			return nil, fmt.Errorf("task %s created, but adding dependency failed: %w", domain.TaskRefName(task.ID), err)
		}
	}

	task, err = shared.GetTask(uc.tasks, task.ID)
	if err != nil {
		return nil, err
	}
	return &NewTaskOutput{Task: task}, nil
}
