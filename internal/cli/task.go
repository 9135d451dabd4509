package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/runoshun/planr/internal/app"
	"github.com/runoshun/planr/internal/domain"
	"github.com/runoshun/planr/internal/graph"
	"github.com/runoshun/planr/internal/usecase"
)

// newNewCommand creates the new command for creating tasks.
func newNewCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Title       string
		Description string
		Due         string
		Image       string
		Requires    []string
		Duration    int
	}

	cmd := &cobra.Command{
		Use:   "new [title]",
		Short: "Create a new task",
		Long: `Create a new task.

The title can be given as an argument or with --title. The estimate
(--duration) is in minutes; tasks without one count as zero-length when
scheduling. Prerequisites given with --requires must already exist.

Examples:
  # Create a task with a 90 minute estimate
  planr new "Design schema" --duration 90

  # Create a task that waits on #1 and #2, due on May 1st
  planr new --title "Write migrations" --requires 1 --requires "#2" --due 2026-05-01`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if opts.Title != "" {
					return fmt.Errorf("title given both as argument and --title")
				}
				opts.Title = args[0]
			}

			input := usecase.NewTaskInput{
				Title:       opts.Title,
				Description: opts.Description,
				ImageURL:    opts.Image,
			}
			if cmd.Flags().Changed("duration") {
				input.Duration = &opts.Duration
			}
			if opts.Due != "" {
				due, err := domain.ParseDueDate(opts.Due, time.Local)
				if err != nil {
					return err
				}
				input.DueDate = &due
			}
			for _, r := range opts.Requires {
				id, err := domain.ParseTaskID(r)
				if err != nil {
					return err
				}
				input.Requires = append(input.Requires, id)
			}

			uc := c.NewTaskUseCase()
			out, err := uc.Execute(cmd.Context(), input)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created task #%d (earliest start %s)\n",
				out.Task.ID, formatTime(out.Task.EarliestStart, timeFormat(c)))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "Task title")
	cmd.Flags().StringVar(&opts.Description, "body", "", "Task description")
	cmd.Flags().IntVarP(&opts.Duration, "duration", "d", 0, "Estimated duration in minutes")
	cmd.Flags().StringVar(&opts.Due, "due", "", "Due date (YYYY-MM-DD, YYYY-MM-DD HH:MM or RFC 3339)")
	cmd.Flags().StringVar(&opts.Image, "image", "", "Image URL")
	cmd.Flags().StringArrayVarP(&opts.Requires, "requires", "r", nil, "Prerequisite task ID (can specify multiple)")

	return cmd
}

// newListCommand creates the list command for listing tasks.
func newListCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Sort     string
		Critical bool
		JSON     bool
	}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Long: `Display a list of tasks, newest first.

Columns: ID, START (earliest start), DUE, EST (estimate), SLACK, TITLE.
Tasks on the critical path are marked with '*'.

Examples:
  # List tasks in the order they can start
  planr list --sort start

  # List only critical tasks
  planr list --critical`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.ListTasksUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ListTasksInput{
				Sort:         opts.Sort,
				CriticalOnly: opts.Critical,
			})
			if err != nil {
				return err
			}

			if opts.JSON {
				return writeJSON(cmd.OutOrStdout(), out.Tasks)
			}
			printTaskList(cmd.OutOrStdout(), out.Tasks, out.Analysis, timeFormat(c))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Sort, "sort", usecase.SortCreated, "Sort order: created, id, start or due")
	cmd.Flags().BoolVar(&opts.Critical, "critical", false, "Show only tasks on the critical path")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output as JSON")

	return cmd
}

// printTaskList prints tasks as an aligned table.
func printTaskList(w io.Writer, tasks []*domain.Task, analysis *graph.Analysis, layout string) {
	if len(tasks) == 0 {
		_, _ = fmt.Fprintln(w, "No tasks")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	defer func() { _ = tw.Flush() }()

	_, _ = fmt.Fprintln(tw, "ID\tSTART\tDUE\tEST\tSLACK\tTITLE")
	for _, task := range tasks {
		mark := " "
		slack := "-"
		if tm := analysis.Timing(task.ID); tm != nil {
			slack = domain.FormatMinutes(tm.Slack)
			if tm.Critical {
				mark = "*"
			}
		}
		_, _ = fmt.Fprintf(tw, "%s%d\t%s\t%s\t%s\t%s\t%s\n",
			mark,
			task.ID,
			formatTime(task.EarliestStart, layout),
			formatTime(task.DueDate, layout),
			formatEstimate(task),
			slack,
			task.Title,
		)
	}
}

// newShowCommand creates the show command for displaying task details.
func newShowCommand(c *app.Container) *cobra.Command {
	var opts struct {
		JSON bool
	}

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show task details",
		Long: `Show a task with its prerequisites, dependents and schedule figures.

Examples:
  planr show 3
  planr show "#3" --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := domain.ParseTaskID(args[0])
			if err != nil {
				return err
			}

			uc := c.ShowTaskUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ShowTaskInput{TaskID: taskID})
			if err != nil {
				return err
			}

			if opts.JSON {
				return writeJSON(cmd.OutOrStdout(), struct {
					Task         *domain.Task   `json:"task"`
					Timing       *graph.Timing  `json:"timing,omitempty"`
					Dependencies []*domain.Task `json:"dependencies"`
					Dependents   []*domain.Task `json:"dependents"`
				}{out.Task, out.Timing, out.Dependencies, out.Dependents})
			}
			printTaskDetails(cmd.OutOrStdout(), out, timeFormat(c))
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output as JSON")

	return cmd
}

func printTaskDetails(w io.Writer, out *usecase.ShowTaskOutput, layout string) {
	task := out.Task

	_, _ = fmt.Fprintf(w, "# Task %d: %s\n\n", task.ID, task.Title)

	if task.Description != "" {
		_, _ = fmt.Fprintf(w, "%s\n\n", strings.TrimRight(task.Description, "\n"))
	}

	_, _ = fmt.Fprintf(w, "Estimate: %s\n", formatEstimate(task))
	_, _ = fmt.Fprintf(w, "Earliest start: %s\n", formatTime(task.EarliestStart, layout))
	_, _ = fmt.Fprintf(w, "Due: %s\n", formatTime(task.DueDate, layout))
	if tm := out.Timing; tm != nil {
		critical := ""
		if tm.Critical {
			critical = " (critical)"
		}
		_, _ = fmt.Fprintf(w, "Slack: %s%s\n", domain.FormatMinutes(tm.Slack), critical)
	}
	if task.ImageURL != "" {
		_, _ = fmt.Fprintf(w, "Image: %s\n", task.ImageURL)
	}
	_, _ = fmt.Fprintf(w, "Created: %s\n", task.Created.Format(time.RFC3339))

	printRelated(w, "Requires", out.Dependencies)
	printRelated(w, "Required by", out.Dependents)
}

func printRelated(w io.Writer, heading string, tasks []*domain.Task) {
	if len(tasks) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "\n%s:\n", heading)
	for _, t := range tasks {
		_, _ = fmt.Fprintf(w, "  #%d %s (%s)\n", t.ID, t.Title, formatEstimate(t))
	}
}

// newEditCommand creates the edit command for updating tasks.
func newEditCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Title       string
		Description string
		Due         string
		Image       string
		Duration    int
		NoDue       bool
		NoDuration  bool
	}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task",
		Long: `Edit a task's fields. Only the flags given are changed.

Changing the estimate recomputes the schedule of every task that
depends on this one.

Examples:
  planr edit 3 --title "Write migrations (v2)"
  planr edit 3 --duration 120
  planr edit 3 --no-due`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := domain.ParseTaskID(args[0])
			if err != nil {
				return err
			}

			input := usecase.EditTaskInput{
				TaskID:        taskID,
				ClearDue:      opts.NoDue,
				ClearDuration: opts.NoDuration,
			}
			flags := cmd.Flags()
			if flags.Changed("title") {
				input.Title = &opts.Title
			}
			if flags.Changed("body") {
				input.Description = &opts.Description
			}
			if flags.Changed("image") {
				input.ImageURL = &opts.Image
			}
			if flags.Changed("duration") {
				input.Duration = &opts.Duration
			}
			if flags.Changed("due") {
				due, err := domain.ParseDueDate(opts.Due, time.Local)
				if err != nil {
					return err
				}
				input.DueDate = &due
			}

			uc := c.EditTaskUseCase()
			out, err := uc.Execute(cmd.Context(), input)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated task #%d\n", out.Task.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "New title")
	cmd.Flags().StringVar(&opts.Description, "body", "", "New description")
	cmd.Flags().StringVar(&opts.Image, "image", "", "New image URL")
	cmd.Flags().IntVarP(&opts.Duration, "duration", "d", 0, "New estimate in minutes")
	cmd.Flags().BoolVar(&opts.NoDuration, "no-duration", false, "Remove the estimate")
	cmd.Flags().StringVar(&opts.Due, "due", "", "New due date")
	cmd.Flags().BoolVar(&opts.NoDue, "no-due", false, "Remove the due date")

	return cmd
}

// newRmCommand creates the rm command for deleting tasks.
func newRmCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Long: `Delete a task together with every dependency that references it.

Tasks that required the deleted task no longer wait on it; their
earliest starts are recomputed.

Examples:
  planr rm 1
  planr rm "#1"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := domain.ParseTaskID(args[0])
			if err != nil {
				return err
			}

			uc := c.DeleteTaskUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.DeleteTaskInput{TaskID: taskID})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "Deleted task #%d\n", out.Task.ID)
			if len(out.Released) > 0 {
				_, _ = fmt.Fprintf(w, "No longer blocked: %s\n", joinRefs(out.Released))
			}
			return nil
		},
	}
}

// timeFormat returns the configured layout for instants.
func timeFormat(c *app.Container) string {
	if c.AppConfig != nil && c.AppConfig.Board.TimeFormat != "" {
		return c.AppConfig.Board.TimeFormat
	}
	return domain.DefaultTimeFormat
}

func formatTime(t *time.Time, layout string) string {
	if t == nil {
		return "-"
	}
	return t.Format(layout)
}

func formatEstimate(t *domain.Task) string {
	if !t.HasDuration() {
		return "-"
	}
	return domain.FormatMinutes(t.Duration())
}

// formatMinutes renders minutes as "45m", "2h" or "1h30m".
func joinRefs(ids []int) string {
	refs := make([]string, len(ids))
	for i, id := range ids {
		refs[i] = domain.TaskRefName(id)
	}
	return strings.Join(refs, ", ")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
