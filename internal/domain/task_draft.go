package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// TaskDraft represents a task to be created from file input.
// Fields are ordered to minimize memory padding.
type TaskDraft struct {
	DueDate     *time.Time
	Duration    *int
	Title       string
	Description string
	Requires    []string // References to prerequisite tasks
}

// draftFile is the YAML layout accepted by ParseTaskDrafts.
type draftFile struct {
	Tasks []draftEntry `yaml:"tasks"`
}

type draftEntry struct {
	Due         *time.Time `yaml:"due"`
	Duration    *int       `yaml:"duration"`
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	Requires    []refValue `yaml:"requires"`
}

// refValue accepts a reference written either as a number or as a string.
type refValue string

func (r *refValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: %w: expected a scalar", node.Line, ErrInvalidTaskReference)
	}
	*r = refValue(node.Value)
	return nil
}

// ParseTaskDrafts parses a YAML document listing tasks to create.
//
// Format:
//
//	tasks:
//	  - title: Design schema
//	    duration: 90
//	    due: 2026-05-01T17:00:00Z
//	  - title: Write migrations
//	    duration: 60
//	    requires: [1, "#12"]
//
// Requires references:
//   - Relative: "1" refers to the 1st task in this file
//   - Absolute: "#12" refers to existing task ID 12 (use # prefix)
func ParseTaskDrafts(content string) ([]TaskDraft, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyFile
	}

	var file draftFile
	if err := yaml.Unmarshal([]byte(content), &file); err != nil {
		return nil, fmt.Errorf("parse task file: %w", err)
	}
	if len(file.Tasks) == 0 {
		return nil, ErrNoTasksInFile
	}

	drafts := make([]TaskDraft, 0, len(file.Tasks))
	for i, e := range file.Tasks {
		draft := TaskDraft{
			Title:       strings.TrimSpace(e.Title),
			Description: e.Description,
			DueDate:     e.Due,
			Duration:    e.Duration,
		}
		for _, r := range e.Requires {
			draft.Requires = append(draft.Requires, strings.TrimSpace(string(r)))
		}

		candidate := Task{Title: draft.Title, EstimatedDuration: draft.Duration}
		if err := candidate.Validate(); err != nil {
			return nil, fmt.Errorf("task %d: %w", i+1, err)
		}
		drafts = append(drafts, draft)
	}

	return drafts, nil
}

// TaskRef is a resolved reference to a task.
type TaskRef struct {
	Index    int  // 1-based index within the file (relative refs)
	ID       int  // Existing task ID (absolute refs)
	Relative bool // True for index references
}

// ParseTaskRef parses "3" (relative) or "#12" (absolute).
func ParseTaskRef(ref string) (TaskRef, error) {
	ref = strings.TrimSpace(ref)
	if rest, ok := strings.CutPrefix(ref, "#"); ok {
		id, err := strconv.Atoi(rest)
		if err != nil || id <= 0 {
			return TaskRef{}, fmt.Errorf("%w: %q", ErrInvalidTaskReference, ref)
		}
		return TaskRef{ID: id}, nil
	}
	idx, err := strconv.Atoi(ref)
	if err != nil || idx <= 0 {
		return TaskRef{}, fmt.Errorf("%w: %q", ErrInvalidTaskReference, ref)
	}
	return TaskRef{Index: idx, Relative: true}, nil
}

// ParseTaskID parses a task ID given on the command line, with or without "#".
func ParseTaskID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTaskReference, s)
	}
	return id, nil
}

// Accepted layouts for ParseDueDate, tried in order.
var dueLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDueDate parses a user-supplied due date in loc.
// Dates without a time of day are due at the end of that day.
func ParseDueDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dueLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			continue
		}
		if layout == "2006-01-02" {
			t = t.Add(24*time.Hour - time.Minute)
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDueDate, s)
}
