// Package render draws the dependency graph as Graphviz DOT or SVG.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/runoshun/planr/internal/domain"
)

// Options configures graph rendering.
type Options struct {
	// TimeFormat is the layout used for earliest starts in detailed labels.
	TimeFormat string
	// Detailed adds duration and earliest start to node labels.
	// When false, only the reference and title are shown.
	Detailed bool
}

// Renderer implements domain.GraphRenderer.
type Renderer struct {
	opts Options
}

// New creates a Renderer.
func New(opts Options) *Renderer {
	if opts.TimeFormat == "" {
		opts.TimeFormat = domain.DefaultTimeFormat
	}
	return &Renderer{opts: opts}
}

// Ensure Renderer implements domain.GraphRenderer.
var _ domain.GraphRenderer = (*Renderer)(nil)

// Render produces the graph in the requested format.
func (r *Renderer) Render(ctx context.Context, snap *domain.Snapshot, critical []int, format string) ([]byte, error) {
	dot := ToDOT(snap, critical, r.opts)
	switch format {
	case domain.FormatDOT:
		return []byte(dot), nil
	case domain.FormatSVG:
		return RenderSVG(ctx, dot)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownFormat, format)
	}
}

// ToDOT converts a snapshot to Graphviz DOT. Edges point from the required
// task to the dependent one, so the drawing reads in the order work happens.
// Tasks and edges on the critical path are drawn in red.
func ToDOT(snap *domain.Snapshot, critical []int, opts Options) string {
	onPath := make(map[int]bool, len(critical))
	for _, id := range critical {
		onPath[id] = true
	}
	pathEdge := make(map[domain.Edge]bool, len(critical))
	for i := 1; i < len(critical); i++ {
		pathEdge[domain.Edge{DependentID: critical[i], RequiredID: critical[i-1]}] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph planr {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, t := range snap.Tasks {
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(t, opts))}
		if onPath[t.ID] {
			attrs = append(attrs, "color=red", "penwidth=2", "fillcolor=\"#ffe5e5\"")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(t.ID), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range snap.Edges {
		attrs := ""
		if pathEdge[e] {
			attrs = " [color=red, penwidth=2]"
		}
		fmt.Fprintf(&buf, "  %q -> %q%s;\n", nodeID(e.RequiredID), nodeID(e.DependentID), attrs)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(id int) string {
	return fmt.Sprintf("t%d", id)
}

func fmtLabel(t *domain.Task, opts Options) string {
	label := domain.TaskRefName(t.ID) + " " + t.Title
	if !opts.Detailed {
		return label
	}

	parts := []string{label}
	if t.HasDuration() {
		parts = append(parts, fmt.Sprintf("%dm", t.Duration()))
	} else {
		parts = append(parts, "no estimate")
	}
	if t.EarliestStart != nil {
		parts = append(parts, "start "+t.EarliestStart.Format(opts.TimeFormat))
	}
	return strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
