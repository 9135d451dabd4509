package usecase

import (
	"context"

	"github.com/runoshun/planr/internal/engine"
)

// RecomputeInput contains the parameters for Recompute.
type RecomputeInput struct{}

// RecomputeOutput contains the refreshed schedule.
type RecomputeOutput struct {
	Schedule *engine.Schedule
}

// Recompute is the use case for re-deriving earliest starts from the stored
// graph, for example after the store was edited by hand or time has passed.
type Recompute struct {
	engine *engine.Engine
}

// NewRecompute creates a new Recompute use case.
func NewRecompute(eng *engine.Engine) *Recompute {
	return &Recompute{engine: eng}
}

// Execute runs a full recompute.
func (uc *Recompute) Execute(ctx context.Context, _ RecomputeInput) (*RecomputeOutput, error) {
	s, err := uc.engine.Recompute(ctx)
	if err != nil {
		return nil, err
	}
	return &RecomputeOutput{Schedule: s}, nil
}
