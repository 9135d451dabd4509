package graph

// WouldCreateCycle reports whether adding "dependentID requires requiredID"
// would close a cycle, i.e. whether requiredID already (transitively)
// requires dependentID. Equal IDs always report true.
//
// The walk uses an explicit stack. Nodes already on the current path are not
// re-entered, so a graph that already holds a cycle still terminates.
func WouldCreateCycle(g *Graph, dependentID, requiredID int) bool {
	if dependentID == requiredID {
		return true
	}
	if !g.Has(requiredID) {
		return false
	}

	type frame struct {
		id   int
		next []int
	}

	visited := map[int]bool{requiredID: true}
	onStack := map[int]bool{requiredID: true}
	stack := []frame{{id: requiredID, next: g.DependenciesOf(requiredID)}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if len(top.next) == 0 {
			onStack[top.id] = false
			stack = stack[:len(stack)-1]
			continue
		}
		n := top.next[0]
		top.next = top.next[1:]

		if n == dependentID {
			return true
		}
		if visited[n] || onStack[n] {
			continue
		}
		visited[n] = true
		onStack[n] = true
		stack = append(stack, frame{id: n, next: g.DependenciesOf(n)})
	}
	return false
}
