// Package shared holds helpers used by several use cases.
package shared

import (
	"fmt"

	"github.com/runoshun/planr/internal/domain"
)

// GetTask retrieves a task by ID and returns domain.ErrTaskNotFound if not found.
// This centralizes the common pattern of:
//
//	task, err := repo.Get(taskID)
//	if err != nil { return nil, fmt.Errorf("get task: %w", err) }
//	if task == nil { return nil, domain.ErrTaskNotFound }
func GetTask(repo domain.TaskRepository, taskID int) (*domain.Task, error) {
	task, err := repo.Get(taskID)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if task == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, domain.TaskRefName(taskID))
	}
	return task, nil
}

// RequireTasks checks that every ID refers to a stored task.
func RequireTasks(repo domain.TaskRepository, ids ...int) error {
	for _, id := range ids {
		if _, err := GetTask(repo, id); err != nil {
			return err
		}
	}
	return nil
}
