package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/runoshun/planr/internal/domain"
	"github.com/runoshun/planr/internal/engine"
)

// EditTaskInput contains the parameters for editing a task.
// Nil fields are left unchanged.
// Fields are ordered to minimize memory padding.
type EditTaskInput struct {
	Title         *string
	Description   *string
	ImageURL      *string
	DueDate       *time.Time
	Duration      *int
	TaskID        int
	ClearDue      bool // Remove the due date
	ClearDuration bool // Remove the estimate
}

// EditTaskOutput contains the result of editing a task.
type EditTaskOutput struct {
	Task *domain.Task
}

// EditTask is the use case for editing a task.
type EditTask struct {
	engine *engine.Engine
	logger domain.Logger
}

// NewEditTask creates a new EditTask use case.
func NewEditTask(eng *engine.Engine, logger domain.Logger) *EditTask {
	return &EditTask{engine: eng, logger: logger}
}

// Execute applies the requested changes. Changing the estimate recomputes
// the schedule.
func (uc *EditTask) Execute(ctx context.Context, in EditTaskInput) (*EditTaskOutput, error) {
	if !in.hasChanges() {
		return nil, domain.ErrNoFieldsToUpdate
	}
	if in.DueDate != nil && in.ClearDue {
		return nil, fmt.Errorf("cannot set and clear the due date at once")
	}
	if in.Duration != nil && in.ClearDuration {
		return nil, fmt.Errorf("cannot set and clear the duration at once")
	}

	var changed []string
	task, err := uc.engine.UpdateTask(ctx, in.TaskID, func(t *domain.Task) error {
		if in.Title != nil {
			t.Title = strings.TrimSpace(*in.Title)
			changed = append(changed, "title")
		}
		if in.Description != nil {
			t.Description = *in.Description
			changed = append(changed, "description")
		}
		if in.ImageURL != nil {
			t.ImageURL = *in.ImageURL
			changed = append(changed, "image")
		}
		switch {
		case in.DueDate != nil:
			due := *in.DueDate
			t.DueDate = &due
			changed = append(changed, "due")
		case in.ClearDue:
			t.DueDate = nil
			changed = append(changed, "due")
		}
		switch {
		case in.Duration != nil:
			t.EstimatedDuration = domain.IntPtr(*in.Duration)
			changed = append(changed, "duration")
		case in.ClearDuration:
			t.EstimatedDuration = nil
			changed = append(changed, "duration")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info(task.ID, "task", fmt.Sprintf("edited: %s", strings.Join(changed, ", ")))
	return &EditTaskOutput{Task: task}, nil
}

func (in EditTaskInput) hasChanges() bool {
	return in.Title != nil || in.Description != nil || in.ImageURL != nil ||
		in.DueDate != nil || in.ClearDue || in.Duration != nil || in.ClearDuration
}
