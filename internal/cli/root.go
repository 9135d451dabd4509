// Package cli provides the command-line interface for planr.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runoshun/planr/internal/app"
)

// Command group IDs.
const (
	groupSetup    = "setup"
	groupTask     = "task"
	groupSchedule = "schedule"
)

// NewRootCommand creates the root command for planr.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "planr",
		Short: "Task tracker with dependency-aware scheduling",
		Long: `planr tracks tasks and the dependencies between them.

Every change to a task's prerequisites or estimate re-derives the
earliest start of each task and the critical path: the chain of
dependent work with the largest total duration.

Run 'planr init' in a project directory to get started.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip if container is nil (e.g. in tests)
			if c == nil {
				return nil
			}

			c.EnableConsole(cmd.ErrOrStderr(), verbose)

			if c.AppConfig != nil {
				for _, w := range c.AppConfig.Warnings {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
				}
			}
			return nil
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "V", false, "Print debug logs to stderr")

	// Define command groups
	root.AddGroup(
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
		&cobra.Group{ID: groupTask, Title: "Task Management:"},
		&cobra.Group{ID: groupSchedule, Title: "Dependencies & Schedule:"},
	)

	// Setup commands
	initCmd := newInitCommand(c)
	initCmd.GroupID = groupSetup

	configCmd := newConfigCommand(c)
	configCmd.GroupID = groupSetup

	// Task management commands
	newCmd := newNewCommand(c)
	newCmd.GroupID = groupTask

	listCmd := newListCommand(c)
	listCmd.GroupID = groupTask

	showCmd := newShowCommand(c)
	showCmd.GroupID = groupTask

	editCmd := newEditCommand(c)
	editCmd.GroupID = groupTask

	rmCmd := newRmCommand(c)
	rmCmd.GroupID = groupTask

	importCmd := newImportCommand(c)
	importCmd.GroupID = groupTask

	// Dependency and schedule commands
	depCmd := newDepCommand(c)
	depCmd.GroupID = groupSchedule

	criticalCmd := newCriticalPathCommand(c)
	criticalCmd.GroupID = groupSchedule

	recomputeCmd := newRecomputeCommand(c)
	recomputeCmd.GroupID = groupSchedule

	vizCmd := newVizCommand(c)
	vizCmd.GroupID = groupSchedule

	boardCmd := newBoardCommand(c)
	boardCmd.GroupID = groupSchedule

	root.AddCommand(
		initCmd,
		configCmd,
		newCmd,
		listCmd,
		showCmd,
		editCmd,
		rmCmd,
		importCmd,
		depCmd,
		criticalCmd,
		recomputeCmd,
		vizCmd,
		boardCmd,
	)

	return root
}
