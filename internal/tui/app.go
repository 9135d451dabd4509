package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/runoshun/planr/internal/app"
	"github.com/runoshun/planr/internal/domain"
	"github.com/runoshun/planr/internal/graph"
	"github.com/runoshun/planr/internal/usecase"
)

// Model is the main bubbletea model for the board.
type Model struct {
	// Dependencies (pointers first for alignment)
	container *app.Container
	config    *domain.Config
	err       error
	analysis  *graph.Analysis
	detail    *usecase.ShowTaskOutput

	// State
	tasks  []*domain.Task
	notice string

	// Components
	keys     KeyMap
	styles   Styles
	help     help.Model
	taskList list.Model

	// Numeric state (smaller types last)
	mode          Mode
	sortMode      SortMode
	width         int
	height        int
	confirmTaskID int
	criticalOnly  bool
}

// New creates a new board Model with the given container.
func New(c *app.Container) *Model {
	cfg := c.AppConfig
	if cfg == nil {
		cfg = domain.NewDefaultConfig()
	}
	timeFormat := cfg.Board.TimeFormat
	if timeFormat == "" {
		timeFormat = domain.DefaultTimeFormat
	}

	styles := DefaultStyles()
	delegate := newTaskDelegate(styles, timeFormat, cfg.Board.ShowSlack)
	taskList := list.New([]list.Item{}, delegate, 0, 0)
	taskList.SetShowTitle(false)
	taskList.SetShowStatusBar(false)
	taskList.SetShowHelp(false)
	taskList.SetShowPagination(false)
	taskList.SetFilteringEnabled(false)
	taskList.DisableQuitKeybindings()

	return &Model{
		container: c,
		config:    cfg,
		mode:      ModeNormal,
		keys:      DefaultKeyMap(),
		styles:    styles,
		help:      help.New(),
		taskList:  taskList,
	}
}

// Run starts the board and blocks until the user quits.
func Run(ctx context.Context, c *app.Container) error {
	p := tea.NewProgram(New(c), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init initializes the model and returns the initial command.
func (m *Model) Init() tea.Cmd {
	return m.loadTasks()
}

// listSort maps the board sort mode onto the list use case.
func (m *Model) listSort() string {
	switch m.sortMode {
	case SortByID:
		return usecase.SortID
	case SortByDue:
		return usecase.SortDue
	case SortByCreated:
		return usecase.SortCreated
	case SortByStart:
		return usecase.SortStart
	}
	return usecase.SortStart
}

// loadTasks returns a command that loads tasks and their timings.
func (m *Model) loadTasks() tea.Cmd {
	in := usecase.ListTasksInput{Sort: m.listSort(), CriticalOnly: m.criticalOnly}
	return func() tea.Msg {
		out, err := m.container.ListTasksUseCase().Execute(context.Background(), in)
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgTasksLoaded{Tasks: out.Tasks, Analysis: out.Analysis}
	}
}

// loadDetail returns a command that loads one task with its neighbours.
func (m *Model) loadDetail(taskID int) tea.Cmd {
	return func() tea.Msg {
		out, err := m.container.ShowTaskUseCase().Execute(context.Background(), usecase.ShowTaskInput{TaskID: taskID})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgDetailLoaded{Detail: out}
	}
}

// recompute returns a command that re-runs the schedule.
func (m *Model) recompute() tea.Cmd {
	return func() tea.Msg {
		out, err := m.container.RecomputeUseCase().Execute(context.Background(), usecase.RecomputeInput{})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgRecomputed{Count: len(out.Schedule.Starts), Path: out.Schedule.CriticalPath}
	}
}

// deleteTask returns a command that deletes a task.
func (m *Model) deleteTask(taskID int) tea.Cmd {
	return func() tea.Msg {
		out, err := m.container.DeleteTaskUseCase().Execute(context.Background(), usecase.DeleteTaskInput{TaskID: taskID})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgTaskDeleted{TaskID: taskID, Released: out.Released}
	}
}

// SelectedTask returns the currently selected task, or nil if none.
func (m *Model) SelectedTask() *domain.Task {
	if m.taskList.SelectedItem() == nil {
		return nil
	}
	if item, ok := m.taskList.SelectedItem().(taskItem); ok {
		return item.task
	}
	return nil
}

// updateTaskList rebuilds the list items from the loaded tasks.
func (m *Model) updateTaskList() {
	items := make([]list.Item, len(m.tasks))
	for i, task := range m.tasks {
		items[i] = taskItem{task: task, timing: m.analysis.Timing(task.ID)}
	}
	m.taskList.SetItems(items)
}
