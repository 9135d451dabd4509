package tui

import (
	"github.com/runoshun/planr/internal/domain"
	"github.com/runoshun/planr/internal/graph"
	"github.com/runoshun/planr/internal/usecase"
)

// Msg is the sealed interface for all board messages.
//
// go-sumtype:decl Msg
type Msg interface {
	sealed()
}

// MsgTasksLoaded is sent when tasks and their timings are loaded.
type MsgTasksLoaded struct {
	Analysis *graph.Analysis
	Tasks    []*domain.Task
}

func (MsgTasksLoaded) sealed() {}

// MsgDetailLoaded is sent when the detail of one task is loaded.
type MsgDetailLoaded struct {
	Detail *usecase.ShowTaskOutput
}

func (MsgDetailLoaded) sealed() {}

// MsgRecomputed is sent after the schedule was recomputed.
type MsgRecomputed struct {
	Path  graph.CriticalPath
	Count int
}

func (MsgRecomputed) sealed() {}

// MsgTaskDeleted is sent when a task is deleted.
type MsgTaskDeleted struct {
	Released []int
	TaskID   int
}

func (MsgTaskDeleted) sealed() {}

// MsgError is sent when a command fails.
type MsgError struct {
	Err error
}

func (MsgError) sealed() {}

// Ensure every message implements Msg.
var (
	_ Msg = MsgTasksLoaded{}
	_ Msg = MsgDetailLoaded{}
	_ Msg = MsgRecomputed{}
	_ Msg = MsgTaskDeleted{}
	_ Msg = MsgError{}
)
