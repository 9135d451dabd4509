package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/runoshun/planr/internal/domain"
)

// headerHeight and footerHeight reserve the rows around the task list.
const (
	headerHeight = 3
	footerHeight = 3
)

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		listHeight := msg.Height - headerHeight - footerHeight - 2
		if listHeight < 3 {
			listHeight = 3
		}
		m.taskList.SetSize(msg.Width-4, listHeight)
		return m, nil

	case MsgTasksLoaded:
		m.tasks = msg.Tasks
		m.analysis = msg.Analysis
		m.err = nil
		m.updateTaskList()
		return m, nil

	case MsgDetailLoaded:
		m.detail = msg.Detail
		m.mode = ModeDetail
		return m, nil

	case MsgRecomputed:
		m.notice = fmt.Sprintf("Recomputed %d task(s)", msg.Count)
		if len(msg.Path.Tasks) > 0 {
			m.notice += fmt.Sprintf(", critical path %s", domain.FormatMinutes(msg.Path.TotalDuration))
		}
		return m, m.loadTasks()

	case MsgTaskDeleted:
		m.notice = fmt.Sprintf("Deleted %s", domain.TaskRefName(msg.TaskID))
		if len(msg.Released) > 0 {
			refs := make([]string, len(msg.Released))
			for i, id := range msg.Released {
				refs[i] = domain.TaskRefName(id)
			}
			m.notice += ", no longer blocked: " + strings.Join(refs, ", ")
		}
		return m, m.loadTasks()

	case MsgError:
		m.err = msg.Err
		return m, nil
	}

	return m, nil
}

// handleKeyMsg dispatches a key press according to the current mode.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch m.mode {
	case ModeConfirm:
		return m.handleConfirmMode(msg)
	case ModeHelp:
		return m.handleHelpMode(msg)
	case ModeDetail:
		return m.handleDetailMode(msg)
	case ModeNormal:
		return m.handleNormalMode(msg)
	}
	return m, nil
}

func (m *Model) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.mode = ModeHelp
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.notice = ""
		return m, m.loadTasks()

	case key.Matches(msg, m.keys.Recompute):
		return m, m.recompute()

	case key.Matches(msg, m.keys.Sort):
		m.sortMode = m.sortMode.Next()
		return m, m.loadTasks()

	case key.Matches(msg, m.keys.Critical):
		m.criticalOnly = !m.criticalOnly
		return m, m.loadTasks()

	case key.Matches(msg, m.keys.Detail):
		task := m.SelectedTask()
		if task == nil {
			return m, nil
		}
		return m, m.loadDetail(task.ID)

	case key.Matches(msg, m.keys.Delete):
		task := m.SelectedTask()
		if task == nil {
			return m, nil
		}
		m.confirmTaskID = task.ID
		m.mode = ModeConfirm
		return m, nil

	case key.Matches(msg, m.keys.PrevPage):
		m.taskList.Paginator.PrevPage()
		return m, nil

	case key.Matches(msg, m.keys.NextPage):
		m.taskList.Paginator.NextPage()
		return m, nil
	}

	var cmd tea.Cmd
	m.taskList, cmd = m.taskList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	taskID := m.confirmTaskID
	m.confirmTaskID = 0
	m.mode = ModeNormal
	if key.Matches(msg, m.keys.Confirm) {
		return m, m.deleteTask(taskID)
	}
	return m, nil
}

// handleHelpMode closes the help overlay on any key.
func (m *Model) handleHelpMode(_ tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = ModeNormal
	return m, nil
}

func (m *Model) handleDetailMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Detail), key.Matches(msg, m.keys.Quit):
		m.mode = ModeNormal
		m.detail = nil
	}
	return m, nil
}
