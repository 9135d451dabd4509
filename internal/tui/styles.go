package tui

import "github.com/charmbracelet/lipgloss"

// Colors defines the color palette for the board.
var Colors = struct {
	// Base colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Muted     lipgloss.Color
	Error     lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color

	// Title/text colors
	TitleNormal   lipgloss.Color
	TitleSelected lipgloss.Color
	DescNormal    lipgloss.Color

	// Schedule colors
	Critical lipgloss.Color
	Slack    lipgloss.Color
	Overdue  lipgloss.Color
}{
	Primary:   lipgloss.Color("#6C5CE7"), // Purple
	Secondary: lipgloss.Color("#A29BFE"), // Lavender
	Muted:     lipgloss.Color("#636E72"), // Gray
	Error:     lipgloss.Color("#D63031"), // Red
	Success:   lipgloss.Color("#00B894"), // Green
	Warning:   lipgloss.Color("#FDCB6E"), // Yellow

	TitleNormal:   lipgloss.Color("#DFE6E9"), // Light gray
	TitleSelected: lipgloss.Color("#FFEAA7"), // Yellow (selected)
	DescNormal:    lipgloss.Color("#636E72"), // Gray

	Critical: lipgloss.Color("#FF7675"), // Salmon
	Slack:    lipgloss.Color("#00B894"), // Green
	Overdue:  lipgloss.Color("#D63031"), // Red
}

// Styles contains all the lipgloss styles for the board.
type Styles struct {
	// App
	App lipgloss.Style

	// Header
	Header     lipgloss.Style
	HeaderText lipgloss.Style
	HeaderInfo lipgloss.Style

	// Task list
	TaskID             lipgloss.Style
	TaskTitle          lipgloss.Style
	TaskDesc           lipgloss.Style
	TaskStart          lipgloss.Style
	SelectionIndicator lipgloss.Style
	CriticalMark       lipgloss.Style
	Slack              lipgloss.Style
	Overdue            lipgloss.Style

	// Footer
	Footer lipgloss.Style

	// Dialog
	Dialog      lipgloss.Style
	DialogTitle lipgloss.Style

	// Error
	ErrorMsg lipgloss.Style

	// Detail view
	DetailTitle lipgloss.Style
	DetailLabel lipgloss.Style
	DetailValue lipgloss.Style
	DetailDesc  lipgloss.Style
}

// DefaultStyles returns the default styles for the board.
func DefaultStyles() Styles {
	return Styles{
		App: lipgloss.NewStyle().
			Padding(1, 2),

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.Primary),

		HeaderText: lipgloss.NewStyle().
			Bold(true),

		HeaderInfo: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		TaskID: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		TaskTitle: lipgloss.NewStyle().
			Foreground(Colors.TitleNormal),

		TaskDesc: lipgloss.NewStyle().
			Foreground(Colors.DescNormal),

		TaskStart: lipgloss.NewStyle().
			Foreground(Colors.Secondary),

		SelectionIndicator: lipgloss.NewStyle().
			Foreground(Colors.TitleSelected),

		CriticalMark: lipgloss.NewStyle().
			Foreground(Colors.Critical).
			Bold(true),

		Slack: lipgloss.NewStyle().
			Foreground(Colors.Slack),

		Overdue: lipgloss.NewStyle().
			Foreground(Colors.Overdue).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Colors.Warning).
			Padding(0, 1),

		DialogTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.Warning),

		ErrorMsg: lipgloss.NewStyle().
			Foreground(Colors.Error).
			Bold(true),

		DetailTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.TitleSelected),

		DetailLabel: lipgloss.NewStyle().
			Foreground(Colors.Muted).
			Width(14),

		DetailValue: lipgloss.NewStyle().
			Foreground(Colors.TitleNormal),

		DetailDesc: lipgloss.NewStyle().
			Foreground(Colors.DescNormal),
	}
}
