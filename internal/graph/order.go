package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/runoshun/planr/internal/domain"
)

// CycleError is returned by Order when the graph is not acyclic.
// Cycle lists the task IDs along the cycle, first and last equal.
type CycleError struct {
	Cycle []int
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Cycle))
	for i, id := range e.Cycle {
		parts[i] = domain.TaskRefName(id)
	}
	return fmt.Sprintf("%s: %s", domain.ErrCycleDetected, strings.Join(parts, " -> "))
}

func (e *CycleError) Unwrap() error {
	return domain.ErrCycleDetected
}

// Order returns every task ID such that each required task appears before
// the tasks that depend on it.
//
// Roots are visited in ascending ID and the walk follows NeighborsOf, so the
// result is deterministic for a given graph. Finished nodes are collected in
// post-order and the sequence is reversed at the end.
func Order(g *Graph) ([]int, error) {
	const (
		unvisited = iota
		active
		done
	)

	type frame struct {
		id   int
		next []int
	}

	state := make(map[int]int, g.Len())
	post := make([]int, 0, g.Len())

	for _, root := range g.IDs() {
		if state[root] != unvisited {
			continue
		}
		state[root] = active
		stack := []frame{{id: root, next: g.NeighborsOf(root)}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if len(top.next) == 0 {
				state[top.id] = done
				post = append(post, top.id)
				stack = stack[:len(stack)-1]
				continue
			}
			n := top.next[0]
			top.next = top.next[1:]

			switch state[n] {
			case active:
				// The walk runs required -> dependent; read the active path
				// backwards so the witness is a chain of "requires".
				cycle := []int{n}
				for i := len(stack) - 1; i >= 0; i-- {
					cycle = append(cycle, stack[i].id)
					if stack[i].id == n {
						break
					}
				}
				return nil, &CycleError{Cycle: cycle}
			case unvisited:
				state[n] = active
				stack = append(stack, frame{id: n, next: g.NeighborsOf(n)})
			}
		}
	}

	slices.Reverse(post)
	return post, nil
}
