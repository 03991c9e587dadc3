package prereq

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddEdgeAccumulatesDuplicates(t *testing.T) {
	g := NewGraph()

	g.AddEdge("A", "B")
	g.AddEdge("A", "B")
	g.AddEdge("A", "C")

	require.Equal(t, []string{"B", "B", "C"}, g.Prerequisites("A"))
	require.True(t, g.HasPrerequisites("A"))
}

func TestPrerequisitesReadIsNonMutating(t *testing.T) {
	g := NewGraph()

	require.Nil(t, g.Prerequisites("absent"))
	require.False(t, g.HasPrerequisites("absent"))
	// The read must not have materialized a row.
	require.Equal(t, []string{}, g.TopologicalOrder())

	g.AddEdge("A", "B")
	row := g.Prerequisites("A")
	row[0] = "mutated"
	require.Equal(t, []string{"B"}, g.Prerequisites("A"))
}

func TestRemoveEdgeTakesOneOccurrence(t *testing.T) {
	g := NewGraph()
	g.AddEdge("A", "B")
	g.AddEdge("A", "B")

	require.True(t, g.RemoveEdge("A", "B"))
	require.Equal(t, []string{"B"}, g.Prerequisites("A"))

	require.True(t, g.RemoveEdge("A", "B"))
	require.Nil(t, g.Prerequisites("A"))

	require.False(t, g.RemoveEdge("A", "B"))
	require.False(t, g.RemoveEdge("X", "Y"))
}

func TestTopologicalOrderRespectsEdges(t *testing.T) {
	g := NewGraph()
	g.AddEdge("A", "B")
	g.AddEdge("B", "C")

	require.Equal(t, []string{"A", "B", "C"}, g.TopologicalOrder())
}

func TestTopologicalOrderIsDeterministic(t *testing.T) {
	g := NewGraph()
	g.AddEdge("A", "B")
	g.AddEdge("A", "C")
	g.AddEdge("B", "D")
	g.AddEdge("C", "D")

	// Roots are visited in first-appearance order, neighbors in row order.
	require.Equal(t, []string{"A", "C", "B", "D"}, g.TopologicalOrder())
}

func TestTopologicalOrderIncludesDependentOnlyNodes(t *testing.T) {
	g := NewGraph()
	g.AddEdge("A", "B")

	// B never appears as a row key but is reachable as a dependent.
	require.Equal(t, []string{"A", "B"}, g.TopologicalOrder())
}

func TestEmptiedRowStaysInTraversal(t *testing.T) {
	g := NewGraph()
	g.AddEdge("A", "B")
	require.True(t, g.RemoveEdge("A", "B"))

	require.Equal(t, []string{"A"}, g.TopologicalOrder())
	require.False(t, g.HasPrerequisites("A"))
	require.False(t, g.HasCycle())
}

func TestHasCycle(t *testing.T) {
	g := NewGraph()
	g.AddEdge("A", "B")
	g.AddEdge("B", "C")
	require.False(t, g.HasCycle())

	g.AddEdge("C", "A")
	require.True(t, g.HasCycle())
}

func TestHasCycleSelfLoop(t *testing.T) {
	g := NewGraph()
	g.AddEdge("A", "A")

	require.True(t, g.HasCycle())
}
