package graph

import (
	"sort"

	"github.com/flowquant-lab/flowquant/internal/types"
)

// orderer resolves the execution order for a strategy graph. Two
// interchangeable implementations exist: topological-by-edges for graphs
// with explicit connections, and positional fallback for legacy graphs
// without them.
type orderer interface {
	// Order returns the nodes that can be scheduled, in execution order,
	// plus the nodes that cannot be scheduled because they sit on or
	// behind a connection cycle.
	Order(nodes []types.Node, connections []types.Connection) (ordered []types.Node, unorderable []types.Node)
}

// selectOrderer picks the ordering strategy: topological when the
// connection list is non-empty, positional otherwise.
func selectOrderer(connections []types.Connection) orderer {
	if len(connections) > 0 {
		return &edgeOrderer{}
	}

	return &positionalOrderer{}
}

// edgeOrderer computes a topological order over the dependency edges using
// Kahn's algorithm. Ready nodes are scheduled by ascending vertical
// position, then node ID, so repeated runs produce identical orders.
type edgeOrderer struct{}

func (o *edgeOrderer) Order(nodes []types.Node, connections []types.Connection) ([]types.Node, []types.Node) {
	byID := make(map[string]types.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	inDegree := make(map[string]int, len(nodes))
	consumers := make(map[string][]string, len(nodes))
	seen := make(map[[2]string]bool, len(connections))

	for _, n := range nodes {
		inDegree[n.ID] = 0
	}

	for _, c := range connections {
		// Parallel port connections between the same pair count once.
		edge := [2]string{c.FromNodeID, c.ToNodeID}
		if seen[edge] {
			continue
		}

		seen[edge] = true
		consumers[c.FromNodeID] = append(consumers[c.FromNodeID], c.ToNodeID)
		inDegree[c.ToNodeID]++
	}

	ready := make([]types.Node, 0, len(nodes))
	for _, n := range nodes {
		if inDegree[n.ID] == 0 {
			ready = append(ready, n)
		}
	}

	sortNodes(ready)

	ordered := make([]types.Node, 0, len(nodes))

	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		ordered = append(ordered, next)

		released := make([]types.Node, 0)

		for _, id := range consumers[next.ID] {
			inDegree[id]--
			if inDegree[id] == 0 {
				released = append(released, byID[id])
			}
		}

		sortNodes(released)
		ready = merge(ready, released)
	}

	// Anything left has positive in-degree: it is on a cycle or depends
	// on one.
	unorderable := make([]types.Node, 0)

	orderedIDs := make(map[string]bool, len(ordered))
	for _, n := range ordered {
		orderedIDs[n.ID] = true
	}

	for _, n := range nodes {
		if !orderedIDs[n.ID] {
			unorderable = append(unorderable, n)
		}
	}

	return ordered, unorderable
}

// positionalOrderer evaluates nodes in ascending order of their declared
// vertical position, used for legacy strategies that carry no explicit
// connections. Outputs are threaded to later nodes by port name.
type positionalOrderer struct{}

func (o *positionalOrderer) Order(nodes []types.Node, _ []types.Connection) ([]types.Node, []types.Node) {
	ordered := make([]types.Node, len(nodes))
	copy(ordered, nodes)
	sortNodes(ordered)

	return ordered, nil
}

// sortNodes orders by vertical position, breaking ties on node ID so the
// result is deterministic.
func sortNodes(nodes []types.Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Position.Y != nodes[j].Position.Y {
			return nodes[i].Position.Y < nodes[j].Position.Y
		}

		return nodes[i].ID < nodes[j].ID
	})
}

// merge interleaves two already-sorted ready lists preserving the
// deterministic scheduling order.
func merge(a, b []types.Node) []types.Node {
	out := make([]types.Node, 0, len(a)+len(b))
	i, j := 0, 0

	for i < len(a) && j < len(b) {
		if less(a[i], b[j]) {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}

	out = append(out, a[i:]...)
	out = append(out, b[j:]...)

	return out
}

func less(a, b types.Node) bool {
	if a.Position.Y != b.Position.Y {
		return a.Position.Y < b.Position.Y
	}

	return a.ID < b.ID
}
