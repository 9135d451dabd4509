package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/planr/internal/domain"
	"github.com/runoshun/planr/internal/engine"
)

// RenderGraphInput contains the parameters for rendering the graph.
type RenderGraphInput struct {
	Format string // domain.FormatDOT or domain.FormatSVG
}

// RenderGraphOutput contains the rendered document.
type RenderGraphOutput struct {
	Data []byte
}

// RenderGraph is the use case for exporting the dependency graph.
type RenderGraph struct {
	engine   *engine.Engine
	renderer domain.GraphRenderer
}

// NewRenderGraph creates a new RenderGraph use case.
func NewRenderGraph(eng *engine.Engine, renderer domain.GraphRenderer) *RenderGraph {
	return &RenderGraph{engine: eng, renderer: renderer}
}

// Execute renders every task and edge, highlighting the critical path.
func (uc *RenderGraph) Execute(ctx context.Context, in RenderGraphInput) (*RenderGraphOutput, error) {
	format := in.Format
	if format == "" {
		format = domain.FormatDOT
	}
	if format != domain.FormatDOT && format != domain.FormatSVG {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownFormat, format)
	}

	snap, err := uc.engine.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	path, err := uc.engine.CriticalPath(ctx)
	if err != nil {
		return nil, err
	}

	data, err := uc.renderer.Render(ctx, snap, path.IDs(), format)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return &RenderGraphOutput{Data: data}, nil
}
