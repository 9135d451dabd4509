package graph

import "time"

// Propagate computes the earliest feasible start of every task in order.
//
// A task with no prerequisites starts at now. Any other task starts at the
// latest finish among its prerequisites (start + estimated duration in
// minutes), never earlier than now. order must list prerequisites before
// their dependents, as returned by Order.
func Propagate(g *Graph, order []int, now time.Time) map[int]time.Time {
	starts := make(map[int]time.Time, len(order))
	for _, id := range order {
		start := now
		for _, req := range g.DependenciesOf(id) {
			reqStart, ok := starts[req]
			if !ok {
				reqStart = now
			}
			if finish := g.Task(req).FinishFrom(reqStart); finish.After(start) {
				start = finish
			}
		}
		starts[id] = start
	}
	return starts
}
