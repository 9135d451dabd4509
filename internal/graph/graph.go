// Package graph holds the dependency graph and the pure algorithms run over it:
// cycle detection, topological ordering, earliest-start propagation and
// critical path analysis.
package graph

import (
	"fmt"
	"maps"
	"slices"

	"github.com/runoshun/planr/internal/domain"
)

// Graph is a directed graph of tasks where an edge means
// "dependent requires required".
// Adjacency is kept in both directions so edge edits are O(1).
type Graph struct {
	tasks      map[int]*domain.Task
	dependents map[int]map[int]struct{} // required -> dependents
	requires   map[int]map[int]struct{} // dependent -> required
	edges      int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		tasks:      make(map[int]*domain.Task),
		dependents: make(map[int]map[int]struct{}),
		requires:   make(map[int]map[int]struct{}),
	}
}

// FromSnapshot builds a graph from a task list and edge set.
// Edges whose endpoints are not both present are skipped.
func FromSnapshot(tasks []*domain.Task, edges []domain.Edge) *Graph {
	g := New()
	for _, t := range tasks {
		if t == nil {
			continue
		}
		_ = g.AddTask(t)
	}
	for _, e := range edges {
		_ = g.AddEdge(e.DependentID, e.RequiredID)
	}
	return g
}

// AddTask registers a node.
func (g *Graph) AddTask(t *domain.Task) error {
	if _, ok := g.tasks[t.ID]; ok {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateTask, domain.TaskRefName(t.ID))
	}
	g.tasks[t.ID] = t
	g.dependents[t.ID] = make(map[int]struct{})
	g.requires[t.ID] = make(map[int]struct{})
	return nil
}

// RemoveTask removes a node and every edge touching it.
func (g *Graph) RemoveTask(id int) error {
	if _, ok := g.tasks[id]; !ok {
		return notFound(id)
	}
	for dep := range g.dependents[id] {
		delete(g.requires[dep], id)
		g.edges--
	}
	for req := range g.requires[id] {
		delete(g.dependents[req], id)
		g.edges--
	}
	delete(g.dependents, id)
	delete(g.requires, id)
	delete(g.tasks, id)
	return nil
}

// AddEdge records that dependentID requires requiredID.
// Adding an existing edge is a no-op. AddEdge does not check for cycles;
// callers run WouldCreateCycle first.
func (g *Graph) AddEdge(dependentID, requiredID int) error {
	if dependentID == requiredID {
		return fmt.Errorf("%w: %s", domain.ErrSelfDependency, domain.TaskRefName(dependentID))
	}
	if err := g.mustHave(dependentID, requiredID); err != nil {
		return err
	}
	if _, ok := g.requires[dependentID][requiredID]; ok {
		return nil
	}
	g.requires[dependentID][requiredID] = struct{}{}
	g.dependents[requiredID][dependentID] = struct{}{}
	g.edges++
	return nil
}

// RemoveEdge deletes the edge if present. Removing a missing edge is a no-op.
func (g *Graph) RemoveEdge(dependentID, requiredID int) error {
	if err := g.mustHave(dependentID, requiredID); err != nil {
		return err
	}
	if _, ok := g.requires[dependentID][requiredID]; !ok {
		return nil
	}
	delete(g.requires[dependentID], requiredID)
	delete(g.dependents[requiredID], dependentID)
	g.edges--
	return nil
}

// HasEdge reports whether dependentID directly requires requiredID.
func (g *Graph) HasEdge(dependentID, requiredID int) bool {
	_, ok := g.requires[dependentID][requiredID]
	return ok
}

// NeighborsOf returns the IDs of tasks that directly require id, ascending.
func (g *Graph) NeighborsOf(id int) []int {
	return sortedIDs(g.dependents[id])
}

// DependenciesOf returns the IDs of tasks that id directly requires, ascending.
func (g *Graph) DependenciesOf(id int) []int {
	return sortedIDs(g.requires[id])
}

// Task returns the task with the given ID, or nil.
func (g *Graph) Task(id int) *domain.Task {
	return g.tasks[id]
}

// Has reports whether the task is in the graph.
func (g *Graph) Has(id int) bool {
	_, ok := g.tasks[id]
	return ok
}

// IDs returns every task ID in ascending order.
func (g *Graph) IDs() []int {
	return slices.Sorted(maps.Keys(g.tasks))
}

// Tasks returns every task in ascending ID order.
func (g *Graph) Tasks() []*domain.Task {
	ids := g.IDs()
	out := make([]*domain.Task, len(ids))
	for i, id := range ids {
		out[i] = g.tasks[id]
	}
	return out
}

// Edges returns every edge ordered by dependent then required ID.
func (g *Graph) Edges() []domain.Edge {
	out := make([]domain.Edge, 0, g.edges)
	for _, dep := range g.IDs() {
		for _, req := range g.DependenciesOf(dep) {
			out = append(out, domain.Edge{DependentID: dep, RequiredID: req})
		}
	}
	return out
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// Len returns the number of tasks.
func (g *Graph) Len() int {
	return len(g.tasks)
}

// Clone returns a deep copy of the graph, tasks included.
func (g *Graph) Clone() *Graph {
	c := New()
	for id, t := range g.tasks {
		c.tasks[id] = t.Clone()
		c.dependents[id] = maps.Clone(g.dependents[id])
		c.requires[id] = maps.Clone(g.requires[id])
	}
	c.edges = g.edges
	return c
}

func (g *Graph) mustHave(ids ...int) error {
	for _, id := range ids {
		if _, ok := g.tasks[id]; !ok {
			return notFound(id)
		}
	}
	return nil
}

func notFound(id int) error {
	return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, domain.TaskRefName(id))
}

func sortedIDs(set map[int]struct{}) []int {
	if len(set) == 0 {
		return nil
	}
	return slices.Sorted(maps.Keys(set))
}
