// Package tui provides the terminal board for planr.
package tui

// Mode represents the current UI mode.
type Mode int

const (
	ModeNormal  Mode = iota // Default navigation mode
	ModeConfirm             // Delete confirmation
	ModeHelp                // Help overlay
	ModeDetail              // Task detail view
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeConfirm:
		return "confirm"
	case ModeHelp:
		return "help"
	case ModeDetail:
		return "detail"
	default:
		return "unknown"
	}
}

// SortMode selects the order of the task list.
type SortMode int

const (
	SortByStart SortMode = iota // Earliest start, then ID
	SortByID
	SortByDue
	SortByCreated
)

// Next cycles to the following sort mode.
func (s SortMode) Next() SortMode {
	return (s + 1) % 4
}

// String returns the label shown in the header.
func (s SortMode) String() string {
	switch s {
	case SortByStart:
		return "start"
	case SortByID:
		return "id"
	case SortByDue:
		return "due"
	case SortByCreated:
		return "created"
	}
	return "unknown"
}
