package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/runoshun/planr/internal/domain"
	"github.com/runoshun/planr/internal/graph"
)

type taskItem struct {
	task   *domain.Task
	timing *graph.Timing
}

func (t taskItem) FilterValue() string {
	return t.task.Title
}

// escapeNewlines replaces newline characters with spaces for single-line display.
func escapeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}

// padRight fills line with spaces up to width display cells.
func padRight(line string, width int) string {
	if w := runewidth.StringWidth(line); w < width {
		line += strings.Repeat(" ", width-w)
	}
	return line
}

// Fields are ordered to minimize memory padding.
type taskDelegate struct {
	timeFormat string
	styles     Styles
	showSlack  bool
}

func newTaskDelegate(styles Styles, timeFormat string, showSlack bool) taskDelegate {
	return taskDelegate{styles: styles, timeFormat: timeFormat, showSlack: showSlack}
}

func (d taskDelegate) Height() int {
	return 2
}

func (d taskDelegate) Spacing() int {
	return 1
}

func (d taskDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// columns returns the plain-text schedule columns of a task.
func (d taskDelegate) columns(ti taskItem) (start, estimate, slack string) {
	start = "-"
	if ti.task.EarliestStart != nil {
		start = ti.task.EarliestStart.Format(d.timeFormat)
	}
	estimate = "?"
	if ti.task.HasDuration() {
		estimate = domain.FormatMinutes(ti.task.Duration())
	}
	if d.showSlack && ti.timing != nil && !ti.timing.Critical {
		slack = "+" + domain.FormatMinutes(ti.timing.Slack)
	}
	return start, estimate, slack
}

func (d taskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(taskItem)
	if !ok {
		return
	}
	task := ti.task
	selected := index == m.Index()
	listWidth := m.Width()

	indicator := " "
	if selected {
		indicator = ">"
	}
	mark := " "
	if ti.timing != nil && ti.timing.Critical {
		mark = "*"
	}

	start, estimate, slack := d.columns(ti)
	prefix := fmt.Sprintf("  %s %s %-5s %-*s %-6s %-7s ",
		indicator, mark, domain.TaskRefName(task.ID), len(d.timeFormat), start, estimate, slack)
	prefixWidth := runewidth.StringWidth(prefix)

	maxTitleLen := listWidth - prefixWidth - 2
	if maxTitleLen < 10 {
		maxTitleLen = 10
	}
	title := escapeNewlines(task.Title)
	if runewidth.StringWidth(title) > maxTitleLen {
		title = runewidth.Truncate(title, maxTitleLen-3, "...")
	}

	titleStyle := d.styles.TaskTitle
	if selected {
		titleStyle = titleStyle.Bold(true).Foreground(Colors.TitleSelected)
	}
	if task.IsLate() {
		titleStyle = d.styles.Overdue
	}

	line := "  " + d.styles.SelectionIndicator.Render(indicator) + " " +
		d.styles.CriticalMark.Render(mark) + " " +
		d.styles.TaskID.Render(fmt.Sprintf("%-5s", domain.TaskRefName(task.ID))) + " " +
		d.styles.TaskStart.Render(fmt.Sprintf("%-*s", len(d.timeFormat), start)) + " " +
		fmt.Sprintf("%-6s", estimate) + " " +
		d.styles.Slack.Render(fmt.Sprintf("%-7s", slack)) + " " +
		titleStyle.Render(title)
	_, _ = fmt.Fprintln(w, padRight(line, listWidth))

	descLine := strings.Repeat(" ", prefixWidth)
	if task.Description != "" {
		desc := escapeNewlines(task.Description)
		if runewidth.StringWidth(desc) > maxTitleLen {
			desc = runewidth.Truncate(desc, maxTitleLen-3, "...")
		}
		descLine += desc
	}
	_, _ = fmt.Fprint(w, d.styles.TaskDesc.Render(padRight(descLine, listWidth)))
}
