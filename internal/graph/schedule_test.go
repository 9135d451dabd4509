package graph

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

func propagate(t *testing.T, g *Graph) map[int]time.Time {
	t.Helper()
	order, err := Order(g)
	require.NoError(t, err)
	return Propagate(g, order, testNow)
}

func TestPropagate_Chain(t *testing.T) {
	// 2 requires 1, 3 requires 2
	g := buildGraph(t, []int{30, 60, 15}, [2]int{2, 1}, [2]int{3, 2})

	starts := propagate(t, g)

	assert.Equal(t, testNow, starts[1])
	assert.Equal(t, testNow.Add(30*time.Minute), starts[2])
	assert.Equal(t, testNow.Add(90*time.Minute), starts[3])
}

func TestPropagate_TakesLatestPrerequisite(t *testing.T) {
	// 3 requires 1 and 2
	g := buildGraph(t, []int{10, 45, 5}, [2]int{3, 1}, [2]int{3, 2})

	starts := propagate(t, g)

	assert.Equal(t, testNow.Add(45*time.Minute), starts[3])
}

func TestPropagate_UnsetDurationCountsAsZero(t *testing.T) {
	g := buildGraph(t, []int{-1, 20}, [2]int{2, 1})

	starts := propagate(t, g)

	assert.Equal(t, testNow, starts[1])
	assert.Equal(t, testNow, starts[2])
}

func TestPropagate_Independent(t *testing.T) {
	g := buildGraph(t, []int{10, 20, 30})

	starts := propagate(t, g)

	require.Len(t, starts, 3)
	for id, at := range starts {
		assert.Equal(t, testNow, at, "task %d", id)
	}
}

func TestPropagate_Empty(t *testing.T) {
	assert.Empty(t, Propagate(New(), nil, testNow))
}
