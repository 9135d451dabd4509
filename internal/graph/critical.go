package graph

import "github.com/runoshun/planr/internal/domain"

// CriticalPath is the chain of dependent tasks with the largest total
// estimated duration.
type CriticalPath struct {
	Tasks         []*domain.Task `json:"tasks"`
	TotalDuration int            `json:"totalDuration"` // Minutes
}

// IDs returns the task IDs along the path.
func (p CriticalPath) IDs() []int {
	ids := make([]int, len(p.Tasks))
	for i, t := range p.Tasks {
		ids[i] = t.ID
	}
	return ids
}

// Contains reports whether the task is on the path.
func (p CriticalPath) Contains(id int) bool {
	for _, t := range p.Tasks {
		if t.ID == id {
			return true
		}
	}
	return false
}

// chain is the best path starting at a node.
type chain struct {
	duration int
	length   int
	next     int
	hasNext  bool
}

// better orders chains by total duration, then by number of tasks.
// Equal chains are not better, so callers scanning ascending IDs keep the
// lower ID on a tie.
func (c chain) better(o chain) bool {
	if c.duration != o.duration {
		return c.duration > o.duration
	}
	return c.length > o.length
}

// FindCriticalPath returns the longest chain of dependent tasks, measured by
// summed estimated duration (unset counts as zero).
//
// The best chain from each node is computed once, in reverse topological
// order, by extending the node with the best chain among its dependents.
// Ties go to the chain with more tasks, then to the lower task ID.
// Sources (tasks with no prerequisites) are compared the same way.
// An empty graph yields an empty path.
func FindCriticalPath(g *Graph) (CriticalPath, error) {
	order, err := Order(g)
	if err != nil {
		return CriticalPath{}, err
	}
	return criticalPathInOrder(g, order), nil
}

func criticalPathInOrder(g *Graph, order []int) CriticalPath {
	best := make(map[int]chain, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		c := chain{duration: g.Task(id).Duration(), length: 1}
		var tail chain
		for _, dep := range g.NeighborsOf(id) {
			if cand := best[dep]; !c.hasNext || cand.better(tail) {
				tail = cand
				c.next, c.hasNext = dep, true
			}
		}
		if c.hasNext {
			c.duration += tail.duration
			c.length += tail.length
		}
		best[id] = c
	}

	var (
		start int
		top   chain
		found bool
	)
	for _, id := range g.IDs() {
		if len(g.DependenciesOf(id)) > 0 {
			continue
		}
		if c := best[id]; !found || c.better(top) {
			start, top, found = id, c, true
		}
	}
	if !found {
		return CriticalPath{}
	}

	path := CriticalPath{TotalDuration: top.duration}
	for id, more := start, true; more; id, more = best[id].next, best[id].hasNext {
		path.Tasks = append(path.Tasks, g.Task(id))
	}
	return path
}
