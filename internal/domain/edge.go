package domain

import (
	"cmp"
	"fmt"
)

// Edge is a dependency: DependentID cannot start before RequiredID completes.
type Edge struct {
	DependentID int `json:"dependentId" yaml:"dependentId"`
	RequiredID  int `json:"requiredId" yaml:"requiredId"`
}

// String renders the edge as "#dependent requires #required".
func (e Edge) String() string {
	return fmt.Sprintf("#%d requires #%d", e.DependentID, e.RequiredID)
}

// Touches reports whether the task is either endpoint of the edge.
func (e Edge) Touches(taskID int) bool {
	return e.DependentID == taskID || e.RequiredID == taskID
}

// CompareEdges orders edges by dependent ID, then required ID.
func CompareEdges(a, b Edge) int {
	if c := cmp.Compare(a.DependentID, b.DependentID); c != 0 {
		return c
	}
	return cmp.Compare(a.RequiredID, b.RequiredID)
}

// Snapshot is a point-in-time copy of every task and dependency edge.
type Snapshot struct {
	Tasks []*Task
	Edges []Edge
}
