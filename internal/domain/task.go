// Package domain contains core business entities and interfaces.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Task represents a unit of work tracked by planr.
// Fields are ordered to minimize memory padding.
type Task struct {
	Created           time.Time  `json:"created" yaml:"created"`                                         // Creation time
	DueDate           *time.Time `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`                     // Due instant (optional)
	EarliestStart     *time.Time `json:"earliestStartDate,omitempty" yaml:"earliestStartDate,omitempty"` // Derived by the dependency engine
	EstimatedDuration *int       `json:"estimatedDuration,omitempty" yaml:"estimatedDuration,omitempty"` // Minutes (nil = unknown)
	Title             string     `json:"title" yaml:"title"`                                             // Title (required)
	Description       string     `json:"description,omitempty" yaml:"description,omitempty"`             // Description (optional)
	ImageURL          string     `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`                   // Image reference (opaque)
	ID                int        `json:"-" yaml:"-"`                                                     // Task ID (stored as key, not in value)
}

// Duration returns the estimated duration in minutes, treating an unset duration as zero.
func (t *Task) Duration() int {
	if t == nil || t.EstimatedDuration == nil {
		return 0
	}
	return *t.EstimatedDuration
}

// HasDuration reports whether an estimate has been recorded.
func (t *Task) HasDuration() bool {
	return t.EstimatedDuration != nil
}

// FinishFrom returns the instant the task would complete if it started at start.
func (t *Task) FinishFrom(start time.Time) time.Time {
	return start.Add(time.Duration(t.Duration()) * time.Minute)
}

// IsLate reports whether the task, started at its earliest start, finishes after its due date.
// Tasks without a due date or an earliest start are never late.
func (t *Task) IsLate() bool {
	if t.DueDate == nil || t.EarliestStart == nil {
		return false
	}
	return t.FinishFrom(*t.EarliestStart).After(*t.DueDate)
}

// Validate checks the user-settable fields of the task.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if t.EstimatedDuration != nil && *t.EstimatedDuration < 0 {
		return ErrNegativeDuration
	}
	return nil
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	if t.DueDate != nil {
		due := *t.DueDate
		c.DueDate = &due
	}
	if t.EarliestStart != nil {
		es := *t.EarliestStart
		c.EarliestStart = &es
	}
	if t.EstimatedDuration != nil {
		d := *t.EstimatedDuration
		c.EstimatedDuration = &d
	}
	return &c
}

// TotalDuration sums the estimated durations of tasks, treating unset durations as zero.
func TotalDuration(tasks []*Task) int {
	total := 0
	for _, t := range tasks {
		total += t.Duration()
	}
	return total
}

// FormatMinutes renders a minute count as "45m", "2h" or "1h30m".
func FormatMinutes(m int) string {
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	if m%60 == 0 {
		return fmt.Sprintf("%dh", m/60)
	}
	return fmt.Sprintf("%dh%dm", m/60, m%60)
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
