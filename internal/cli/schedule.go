package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runoshun/planr/internal/app"
	"github.com/runoshun/planr/internal/domain"
	"github.com/runoshun/planr/internal/usecase"
)

// newCriticalPathCommand creates the critical-path command.
func newCriticalPathCommand(c *app.Container) *cobra.Command {
	var opts struct {
		JSON bool
	}

	cmd := &cobra.Command{
		Use:     "critical-path",
		Aliases: []string{"cp"},
		Short:   "Show the critical path",
		Long: `Show the chain of dependent tasks with the largest total estimate.

Tasks without an estimate count as zero minutes. Ties go to the chain
with more tasks, then to the lower task ID.

Examples:
  planr critical-path
  planr critical-path --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.CriticalPathUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.CriticalPathInput{})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if opts.JSON {
				return writeJSON(w, out.Path)
			}
			if len(out.Path.Tasks) == 0 {
				_, _ = fmt.Fprintln(w, "No tasks")
				return nil
			}
			for i, t := range out.Path.Tasks {
				_, _ = fmt.Fprintf(w, "%d. #%d %s (%s)\n", i+1, t.ID, t.Title, formatEstimate(t))
			}
			_, _ = fmt.Fprintf(w, "Total: %s\n", domain.FormatMinutes(out.Path.TotalDuration))
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output as JSON")

	return cmd
}

// newRecomputeCommand creates the recompute command.
func newRecomputeCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "recompute",
		Short: "Recompute earliest starts from now",
		Long: `Re-derive every task's earliest start from the current time and the
stored dependencies. Useful after time has passed or after the store
was edited by hand.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.RecomputeUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.RecomputeInput{})
			if err != nil {
				return err
			}

			s := out.Schedule
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "Recomputed %d task(s)\n", len(s.Order))
			if len(s.CriticalPath.Tasks) > 0 {
				_, _ = fmt.Fprintf(w, "Critical path: %s (%s)\n",
					joinRefs(s.CriticalPath.IDs()), domain.FormatMinutes(s.CriticalPath.TotalDuration))
			}
			return nil
		},
	}
}
