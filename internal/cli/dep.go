package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runoshun/planr/internal/app"
	"github.com/runoshun/planr/internal/domain"
	"github.com/runoshun/planr/internal/engine"
	"github.com/runoshun/planr/internal/usecase"
)

// newDepCommand creates the dep command group.
func newDepCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dep",
		Short: "Manage task dependencies",
		Long: `Manage the prerequisites of a task.

A dependency "<id> requires <required-id>" means <id> cannot start
before <required-id> is finished. Dependencies that would form a cycle
are rejected.`,
		// No RunE: shows subcommand list when called without arguments
	}

	cmd.AddCommand(newDepAddCommand(c))
	cmd.AddCommand(newDepRmCommand(c))
	cmd.AddCommand(newDepListCommand(c))

	return cmd
}

// parseTaskPair parses "<id> <required-id>".
func parseTaskPair(args []string) (int, int, error) {
	taskID, err := domain.ParseTaskID(args[0])
	if err != nil {
		return 0, 0, err
	}
	requiredID, err := domain.ParseTaskID(args[1])
	if err != nil {
		return 0, 0, err
	}
	return taskID, requiredID, nil
}

// newDepAddCommand creates the dep add subcommand.
func newDepAddCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "add <id> <required-id>",
		Short: "Make a task wait on another",
		Long: `Make <id> require <required-id>.

The request is rejected, leaving everything unchanged, when:
- both IDs are the same (self_dependency)
- either task does not exist (not_found)
- the dependency already exists (duplicate)
- it would create a cycle (cycle)

Examples:
  planr dep add 3 1`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, requiredID, err := parseTaskPair(args)
			if err != nil {
				return err
			}

			uc := c.AddDependencyUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.AddDependencyInput{TaskID: taskID, RequiredID: requiredID})
			if err != nil {
				return describeRejection(err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "#%d now requires #%d %s (earliest start %s)\n",
				out.Task.ID, out.Required.ID, out.Required.Title, formatTime(out.Task.EarliestStart, timeFormat(c)))
			return nil
		},
	}
}

// describeRejection prefixes rejected requests with their reason code.
func describeRejection(err error) error {
	var rej *engine.RejectionError
	if errors.As(err, &rej) {
		return fmt.Errorf("rejected (%s): %w", rej.Reason, err)
	}
	return err
}

// newDepRmCommand creates the dep rm subcommand.
func newDepRmCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id> <required-id>",
		Aliases: []string{"remove"},
		Short:   "Remove a dependency",
		Long: `Remove the dependency of <id> on <required-id>.

Removing a dependency that does not exist is not an error.

Examples:
  planr dep rm 3 1`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, requiredID, err := parseTaskPair(args)
			if err != nil {
				return err
			}

			uc := c.RemoveDependencyUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.RemoveDependencyInput{TaskID: taskID, RequiredID: requiredID})
			if err != nil {
				return describeRejection(err)
			}

			w := cmd.OutOrStdout()
			if !out.Removed {
				_, _ = fmt.Fprintf(w, "#%d did not require #%d\n", taskID, requiredID)
				return nil
			}
			_, _ = fmt.Fprintf(w, "#%d no longer requires #%d\n", taskID, requiredID)
			return nil
		},
	}
}

// newDepListCommand creates the dep list subcommand.
func newDepListCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Dependents bool
		JSON       bool
	}

	cmd := &cobra.Command{
		Use:     "list <id>",
		Aliases: []string{"ls"},
		Short:   "List the prerequisites of a task",
		Long: `List the tasks <id> directly requires.

Examples:
  planr dep list 3
  planr dep list 1 --dependents`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := domain.ParseTaskID(args[0])
			if err != nil {
				return err
			}

			uc := c.ListDependenciesUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ListDependenciesInput{TaskID: taskID, Dependents: opts.Dependents})
			if err != nil {
				return err
			}

			if opts.JSON {
				return writeJSON(cmd.OutOrStdout(), out.Tasks)
			}
			printTaskList(cmd.OutOrStdout(), out.Tasks, nil, timeFormat(c))
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Dependents, "dependents", false, "List tasks that require <id> instead")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output as JSON")

	return cmd
}
