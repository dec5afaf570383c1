package buildgraph

import (
	"container/heap"

	"github.com/gruntwork-io/assetflow/internal/asset"
	"github.com/gruntwork-io/assetflow/internal/compiler"
	"github.com/gruntwork-io/assetflow/internal/hashing"
)

type edge struct {
	target *node
	dep    asset.Dependency
}

type node struct {
	item       *asset.Item
	compiler   compiler.Compiler
	err        error
	ownErr     error
	inputErr   error
	step       *Step
	inputs     []keyPart
	deps       []edge
	dependents []*node
	own        hashing.ObjectID
	index      int
	lowlink    int
	indegree   int
	visited    bool
	onStack    bool
	included   bool
	hashed     bool
}

func (n *node) location() string {
	return n.item.Location
}

func (n *node) fail(err error) {
	if n.err == nil {
		n.err = err
	}
}

// orderingTargets returns the nodes that must be built before n.
func (n *node) orderingTargets() []*node {
	var targets []*node

	for _, e := range n.deps {
		if e.target != nil && e.dep.Kind.Orders() {
			targets = append(targets, e.target)
		}
	}

	return targets
}

// Graph is the dependency graph of a session, nodes in ordinal order.
type Graph struct {
	nodes []*node
	byID  map[asset.ID]*node
}

// stronglyConnected returns the components of the ordering edges using Tarjan's algorithm.
// Components come out dependencies first; nodes are visited in ordinal order so the result is stable.
func (graph *Graph) stronglyConnected() [][]*node {
	var (
		components [][]*node
		stack      []*node
		counter    int
		visit      func(n *node)
	)

	visit = func(n *node) {
		n.visited = true
		n.index = counter
		n.lowlink = counter
		counter++

		stack = append(stack, n)
		n.onStack = true

		for _, target := range n.orderingTargets() {
			switch {
			case !target.visited:
				visit(target)
				n.lowlink = min(n.lowlink, target.lowlink)
			case target.onStack:
				n.lowlink = min(n.lowlink, target.index)
			}
		}

		if n.lowlink != n.index {
			return
		}

		var component []*node

		for {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			top.onStack = false

			component = append(component, top)

			if top == n {
				break
			}
		}

		components = append(components, component)
	}

	for _, n := range graph.nodes {
		if !n.visited {
			visit(n)
		}
	}

	return components
}

// isCycle reports whether a component is a cycle: more than one node or a node ordering after itself.
func isCycle(component []*node) bool {
	if len(component) > 1 {
		return true
	}

	for _, target := range component[0].orderingTargets() {
		if target == component[0] {
			return true
		}
	}

	return false
}

// cyclePath returns a cycle through the first member of the component, in ordinal order, as locations.
func cyclePath(component []*node) []string {
	members := make(map[*node]bool, len(component))
	start := component[0]

	for _, n := range component {
		members[n] = true

		if n.item.Ordinal < start.item.Ordinal {
			start = n
		}
	}

	seen := map[*node]bool{}

	var walk func(n *node, path []*node) []*node

	walk = func(n *node, path []*node) []*node {
		path = append(path, n)
		seen[n] = true

		for _, target := range n.orderingTargets() {
			if target == start {
				return append(path, start)
			}

			if members[target] && !seen[target] {
				if found := walk(target, path); found != nil {
					return found
				}
			}
		}

		return nil
	}

	path := walk(start, nil)
	locations := make([]string, 0, len(path))

	for _, n := range path {
		locations = append(locations, n.location())
	}

	return locations
}

// include marks the roots and everything reachable from them through including edges.
func (graph *Graph) include(roots []*node) {
	queue := append([]*node(nil), roots...)

	for _, root := range roots {
		root.included = true
	}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		for _, e := range n.deps {
			if e.target == nil || !e.dep.Kind.Includes() || e.target.included {
				continue
			}

			e.target.included = true
			queue = append(queue, e.target)
		}
	}
}

// nodeHeap orders ready nodes by ordinal, which makes the topological order reproducible.
type nodeHeap []*node

func (h nodeHeap) Len() int           { return len(h) }
func (h nodeHeap) Less(i, j int) bool { return h[i].item.Ordinal < h[j].item.Ordinal }
func (h nodeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(x any) {
	*h = append(*h, x.(*node))
}

func (h *nodeHeap) Pop() any {
	old := *h
	n := old[len(old)-1]
	*h = old[:len(old)-1]

	return n
}

// topologicalOrder runs Kahn's algorithm over the included nodes outside of cycles.
// Edges to nodes in cycles do not hold nodes back; those nodes fail through their dependency.
func (graph *Graph) topologicalOrder(cyclic map[*node]bool) []*node {
	ready := &nodeHeap{}

	for _, n := range graph.nodes {
		if !n.included || cyclic[n] {
			continue
		}

		for _, target := range n.orderingTargets() {
			if !cyclic[target] {
				n.indegree++
				target.dependents = append(target.dependents, n)
			}
		}
	}

	for _, n := range graph.nodes {
		if n.included && !cyclic[n] && n.indegree == 0 {
			heap.Push(ready, n)
		}
	}

	var order []*node

	for ready.Len() > 0 {
		n := heap.Pop(ready).(*node)
		order = append(order, n)

		for _, dependent := range n.dependents {
			dependent.indegree--
			if dependent.indegree == 0 {
				heap.Push(ready, dependent)
			}
		}
	}

	return order
}
