package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/runoshun/planr/internal/app"
	"github.com/runoshun/planr/internal/tui"
)

// runBoard starts the interactive board. Replaced in tests.
var runBoard = func(ctx context.Context, c *app.Container) error {
	return tui.Run(ctx, c)
}

// newBoardCommand creates the board command that opens the interactive task board.
func newBoardCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Open the interactive task board",
		Long: `Open a terminal board listing every task with its earliest start,
estimate and slack. Tasks on the critical path are marked with '*'.

Keys:
  enter  show task detail        R  recompute the schedule
  c      toggle critical only    o  cycle sort order
  d      delete task             q  quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBoard(cmd.Context(), c)
		},
	}
}
