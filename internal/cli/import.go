package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/runoshun/planr/internal/app"
	"github.com/runoshun/planr/internal/domain"
	"github.com/runoshun/planr/internal/usecase"
)

// newImportCommand creates the import command.
func newImportCommand(c *app.Container) *cobra.Command {
	var opts struct {
		DryRun bool
	}

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Create tasks and dependencies from a YAML file",
		Long: `Create several tasks and their dependencies at once.

Every reference is checked before anything is written, so an unknown
task, a self reference or a cycle aborts the whole import. Use "-" to
read from stdin.

File format:
  tasks:
    - title: Design schema
      duration: 90          # minutes
      due: 2026-05-01
    - title: Write migrations
      duration: 60
      requires: [1]         # Relative: the 1st task in this file
    - title: Ship
      requires: [2, "#12"]  # Absolute: existing task #12`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			uc := c.ImportTasksUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ImportTasksInput{
				Content: string(content),
				DryRun:  opts.DryRun,
			})
			if err != nil {
				return describeRejection(err)
			}

			printImport(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Validate and preview without creating")

	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return content, nil
}

func printImport(w io.Writer, out *usecase.ImportTasksOutput) {
	ref := func(id int) string {
		if id < 0 {
			return fmt.Sprintf("task %d (in this file)", -id)
		}
		return domain.TaskRefName(id)
	}

	if out.DryRun {
		_, _ = fmt.Fprintln(w, "Dry run - tasks that would be created:")
		for i, t := range out.Tasks {
			_, _ = fmt.Fprintf(w, "  %d. %s (%s)\n", i+1, t.Title, formatEstimate(t))
		}
	} else {
		for _, t := range out.Tasks {
			_, _ = fmt.Fprintf(w, "Created task #%d: %s\n", t.ID, t.Title)
		}
	}

	for _, e := range out.Edges {
		_, _ = fmt.Fprintf(w, "  %s requires %s\n", ref(e.DependentID), ref(e.RequiredID))
	}

	if !out.DryRun {
		_, _ = fmt.Fprintf(w, "\nCreated %d task(s), %d dependencies\n", len(out.Tasks), len(out.Edges))
	}
}
