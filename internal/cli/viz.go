package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/runoshun/planr/internal/app"
	"github.com/runoshun/planr/internal/domain"
	"github.com/runoshun/planr/internal/usecase"
)

// newVizCommand creates the viz command.
func newVizCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Format string
		Output string
	}

	cmd := &cobra.Command{
		Use:   "viz",
		Short: "Export the dependency graph",
		Long: `Export the dependency graph as Graphviz DOT or SVG.

Arrows point from a prerequisite to the task that waits on it. The
critical path is drawn in red.

Examples:
  planr viz > plan.dot
  planr viz --format svg -o plan.svg`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.RenderGraphUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.RenderGraphInput{Format: opts.Format})
			if err != nil {
				return err
			}

			if opts.Output == "" {
				_, err = cmd.OutOrStdout().Write(out.Data)
				return err
			}
			if err := os.WriteFile(opts.Output, out.Data, 0o600); err != nil {
				return fmt.Errorf("write %s: %w", opts.Output, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", opts.Output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", domain.FormatDOT, "Output format: dot or svg")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Write to file instead of stdout")

	return cmd
}
