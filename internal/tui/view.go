package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/runoshun/planr/internal/domain"
)

// View renders the board.
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string
	switch m.mode {
	case ModeHelp:
		content = m.viewHelp()
	case ModeDetail:
		content = m.viewDetail()
	case ModeNormal, ModeConfirm:
		content = m.viewMain()
	}

	return m.styles.App.Render(content)
}

// viewMain renders the task list with header and footer.
func (m *Model) viewMain() string {
	var b strings.Builder

	b.WriteString(m.viewHeader())
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(m.styles.ErrorMsg.Render("Error: "+m.err.Error()) + "\n\n")
	}

	if len(m.taskList.Items()) == 0 {
		b.WriteString(m.viewEmptyState())
	} else {
		b.WriteString(m.taskList.View())
	}

	if m.mode == ModeConfirm {
		b.WriteString("\n")
		b.WriteString(m.viewConfirmDialog())
	}

	b.WriteString("\n")
	b.WriteString(m.viewFooter())
	return b.String()
}

func (m *Model) viewHeader() string {
	title := m.styles.Header.Render("planr board")

	info := []string{
		fmt.Sprintf("%d tasks", len(m.tasks)),
		"sort: " + m.sortMode.String(),
	}
	if m.analysis != nil && len(m.tasks) > 0 {
		info = append(info, "critical path: "+domain.FormatMinutes(m.analysis.TotalDuration))
	}
	if m.criticalOnly {
		info = append(info, "critical only")
	}
	if pages := m.taskList.Paginator.TotalPages; pages > 1 {
		info = append(info, fmt.Sprintf("page %d/%d", m.taskList.Paginator.Page+1, pages))
	}

	return title + "  " + m.styles.HeaderInfo.Render(strings.Join(info, " · "))
}

func (m *Model) viewEmptyState() string {
	if m.criticalOnly {
		return m.styles.Footer.Render("No critical tasks.") + "\n"
	}
	return m.styles.Footer.Render("No tasks. Create one with `planr new`.") + "\n"
}

func (m *Model) viewConfirmDialog() string {
	prompt := fmt.Sprintf("Delete %s?", domain.TaskRefName(m.confirmTaskID))
	body := m.styles.DialogTitle.Render(prompt) + "\n" +
		m.styles.Footer.Render("y: confirm · any other key: cancel")
	return m.styles.Dialog.Render(body)
}

func (m *Model) viewFooter() string {
	if m.notice != "" {
		return m.styles.Footer.Render(m.notice) + "\n" + m.help.ShortHelpView(m.keys.ShortHelp())
	}
	return m.help.ShortHelpView(m.keys.ShortHelp())
}

func (m *Model) viewHelp() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("Keybindings"))
	b.WriteString("\n\n")
	b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Footer.Render("Press any key to close"))
	return b.String()
}

// detailRow renders one label/value pair of the detail view.
func (m *Model) detailRow(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.DetailLabel.Render(label),
		m.styles.DetailValue.Render(value),
	) + "\n"
}

// refList renders tasks as "#1 Title" entries, one per line.
func refList(tasks []*domain.Task) string {
	if len(tasks) == 0 {
		return "-"
	}
	lines := make([]string, len(tasks))
	for i, t := range tasks {
		lines[i] = domain.TaskRefName(t.ID) + " " + escapeNewlines(t.Title)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewDetail() string {
	if m.detail == nil || m.detail.Task == nil {
		return m.styles.Footer.Render("No task selected")
	}
	task := m.detail.Task
	layout := m.config.Board.TimeFormat
	if layout == "" {
		layout = domain.DefaultTimeFormat
	}

	var b strings.Builder
	b.WriteString(m.styles.DetailTitle.Render(domain.TaskRefName(task.ID) + " " + task.Title))
	b.WriteString("\n\n")

	estimate := "not estimated"
	if task.HasDuration() {
		estimate = domain.FormatMinutes(task.Duration())
	}
	b.WriteString(m.detailRow("Estimate", estimate))
	earliest := "-"
	if task.EarliestStart != nil {
		earliest = task.EarliestStart.Format(layout)
	}
	b.WriteString(m.detailRow("Earliest", earliest))
	if task.DueDate != nil {
		due := task.DueDate.Format(layout)
		if task.IsLate() {
			due += " " + m.styles.Overdue.Render("(late)")
		}
		b.WriteString(m.detailRow("Due", due))
	}
	if tm := m.detail.Timing; tm != nil {
		slack := domain.FormatMinutes(tm.Slack)
		if tm.Critical {
			slack += " " + m.styles.CriticalMark.Render("(critical)")
		}
		b.WriteString(m.detailRow("Slack", slack))
	}
	b.WriteString(m.detailRow("Requires", refList(m.detail.Dependencies)))
	b.WriteString(m.detailRow("Required by", refList(m.detail.Dependents)))

	if task.Description != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.DetailDesc.Render(task.Description))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Footer.Render("esc: back"))
	return b.String()
}
