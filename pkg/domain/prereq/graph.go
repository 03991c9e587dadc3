// Package prereq records completion-order constraints between activities as
// a directed adjacency list.
package prereq

// Graph holds "must be completed before" edges. AddEdge(p, d) appends d to
// the row keyed by p, so the row under an activity lists what that activity
// unlocks. Rows keep arrival order, keep duplicates, and are never pruned
// when an activity record disappears; a stale edge is reported when a
// registration walks into it.
//
// Graph is not safe for concurrent use; callers serialize access.
type Graph struct {
	adj  map[string][]string
	keys []string // row keys in first-appearance order, used as traversal roots
}

func NewGraph() *Graph {
	return &Graph{adj: make(map[string][]string)}
}

// AddEdge records that prerequisite must be completed before dependent.
// Duplicate edges accumulate; RemoveEdge takes them back one at a time.
func (g *Graph) AddEdge(prerequisite, dependent string) {
	if _, ok := g.adj[prerequisite]; !ok {
		g.keys = append(g.keys, prerequisite)
	}
	g.adj[prerequisite] = append(g.adj[prerequisite], dependent)
}

// RemoveEdge deletes one occurrence of the edge and reports whether one
// existed. An emptied row keeps its key.
func (g *Graph) RemoveEdge(prerequisite, dependent string) bool {
	row := g.adj[prerequisite]
	for i, d := range row {
		if d == dependent {
			g.adj[prerequisite] = append(row[:i], row[i+1:]...)
			return true
		}
	}
	return false
}

// Prerequisites returns a copy of the row recorded under title. Reading an
// absent key returns nil and never materializes a row.
func (g *Graph) Prerequisites(title string) []string {
	row := g.adj[title]
	if len(row) == 0 {
		return nil
	}
	out := make([]string, len(row))
	copy(out, row)
	return out
}

// HasPrerequisites reports whether anything is recorded under title.
func (g *Graph) HasPrerequisites(title string) bool {
	return len(g.adj[title]) > 0
}

// TopologicalOrder returns every node reachable from the recorded rows in an
// order where each row key precedes its row entries. Roots are visited in
// first-appearance order, so the result is deterministic. On a cyclic graph
// the traversal still terminates but the order is meaningless for the nodes
// on the cycle; check HasCycle first when that matters.
func (g *Graph) TopologicalOrder() []string {
	visited := make(map[string]bool)
	var stack []string

	var visit func(node string)
	visit = func(node string) {
		visited[node] = true
		for _, next := range g.adj[node] {
			if !visited[next] {
				visit(next)
			}
		}
		stack = append(stack, node)
	}

	for _, key := range g.keys {
		if !visited[key] {
			visit(key)
		}
	}

	// The stack holds nodes in finish order; the topological order is the
	// reverse.
	out := make([]string, len(stack))
	for i, node := range stack {
		out[len(stack)-1-i] = node
	}
	return out
}

// HasCycle reports whether the recorded edges contain a directed cycle.
func (g *Graph) HasCycle() bool {
	const (
		unvisited  = 0
		inProgress = 1
		done       = 2
	)
	state := make(map[string]int)

	var visit func(node string) bool
	visit = func(node string) bool {
		state[node] = inProgress
		for _, next := range g.adj[node] {
			switch state[next] {
			case inProgress:
				return true
			case unvisited:
				if visit(next) {
					return true
				}
			}
		}
		state[node] = done
		return false
	}

	for _, key := range g.keys {
		if state[key] == unvisited && visit(key) {
			return true
		}
	}
	return false
}
