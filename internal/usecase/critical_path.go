package usecase

import (
	"context"

	"github.com/runoshun/planr/internal/engine"
	"github.com/runoshun/planr/internal/graph"
)

// CriticalPathInput contains the parameters for CriticalPath.
type CriticalPathInput struct{}

// CriticalPathOutput contains the current critical path.
type CriticalPathOutput struct {
	Path graph.CriticalPath
}

// CriticalPath is the use case for reporting the longest chain of work.
type CriticalPath struct {
	engine *engine.Engine
}

// NewCriticalPath creates a new CriticalPath use case.
func NewCriticalPath(eng *engine.Engine) *CriticalPath {
	return &CriticalPath{engine: eng}
}

// Execute returns the ordered tasks of the critical path and their total duration.
func (uc *CriticalPath) Execute(ctx context.Context, _ CriticalPathInput) (*CriticalPathOutput, error) {
	path, err := uc.engine.CriticalPath(ctx)
	if err != nil {
		return nil, err
	}
	return &CriticalPathOutput{Path: path}, nil
}
