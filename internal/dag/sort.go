package dag

import "fmt"

// Strategy selects the forward topological sort algorithm.
type Strategy string

const (
	// StrategyWideFirst orders the graph breadth-first, so nodes close to
	// the source are scheduled, consumed, and evicted promptly. Preferred
	// when early nodes hold the largest intermediate state, as in networks
	// whose layers shrink toward the output.
	StrategyWideFirst Strategy = "wide_first"

	// StrategyDeepFirst descends depth-first from the source. Preferred
	// when later nodes are larger and should be computed close to when
	// their smaller inputs were produced.
	StrategyDeepFirst Strategy = "deep_first"
)

// ParseStrategy maps a configuration string onto a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyWideFirst, StrategyDeepFirst:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}

func sortForward(nodes []Node, strategy Strategy) ([]Node, error) {
	switch strategy {
	case StrategyWideFirst:
		return SortWideFirst(nodes)
	case StrategyDeepFirst:
		return SortDeepFirst(nodes)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
}

// SortWideFirst produces a forward topological order breadth-first: seed a
// FIFO queue with zero-in-degree nodes, then repeatedly dequeue and release
// successors whose remaining dependencies drop to zero. In-degrees count
// distinct predecessors, so a duplicate edge such as the two x inputs of x*x
// is one dependency, not two.
func SortWideFirst(nodes []Node) ([]Node, error) {
	if _, _, err := checkBoundary(nodes); err != nil {
		return nil, err
	}

	inDegree := make(map[Node]int, len(nodes))
	for _, n := range nodes {
		distinct := make(map[Node]struct{}, len(n.Predecessors()))
		for _, p := range n.Predecessors() {
			distinct[p] = struct{}{}
		}
		inDegree[n] = len(distinct)
	}

	var queue []Node
	for _, n := range nodes {
		if inDegree[n] == 0 {
			queue = append(queue, n)
		}
	}

	sorted := make([]Node, 0, len(nodes))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		sorted = append(sorted, n)
		for _, next := range n.Successors() {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(sorted) != len(nodes) {
		return nil, fmt.Errorf("%w: ordered %d of %d nodes", ErrCycleDetected, len(sorted), len(nodes))
	}
	return sorted, nil
}

// SortDeepFirst produces a forward topological order depth-first: a
// post-order traversal from the source, reversed. A node encountered while
// still on the traversal stack signals a cycle.
func SortDeepFirst(nodes []Node) ([]Node, error) {
	if _, _, err := checkBoundary(nodes); err != nil {
		return nil, err
	}

	visited := make(map[Node]bool, len(nodes))
	onStack := make(map[Node]bool)
	postOrder := make([]Node, 0, len(nodes))

	var visit func(n Node) error
	visit = func(n Node) error {
		if onStack[n] {
			return fmt.Errorf("%w: involving node %q", ErrCycleDetected, n.Name())
		}
		if visited[n] {
			return nil
		}
		onStack[n] = true
		for _, next := range n.Successors() {
			if err := visit(next); err != nil {
				return err
			}
		}
		delete(onStack, n)
		visited[n] = true
		postOrder = append(postOrder, n)
		return nil
	}

	for _, n := range nodes {
		if len(n.Predecessors()) == 0 {
			if err := visit(n); err != nil {
				return nil, err
			}
		}
	}

	if len(postOrder) != len(nodes) {
		return nil, fmt.Errorf("%w: ordered %d of %d nodes", ErrCycleDetected, len(postOrder), len(nodes))
	}

	sorted := make([]Node, len(postOrder))
	for i, n := range postOrder {
		sorted[len(postOrder)-1-i] = n
	}
	return sorted, nil
}

// AncestorClosure returns the topological order of every node reachable from
// n by predecessor edges, n included: n itself comes first, the graph source
// last. This is the scope a back-substitution pass seeded at n walks.
func AncestorClosure(n Node) []Node {
	visited := make(map[Node]bool)
	var postOrder []Node

	var visit func(Node)
	visit = func(m Node) {
		if visited[m] {
			return
		}
		visited[m] = true
		for _, p := range m.Predecessors() {
			visit(p)
		}
		postOrder = append(postOrder, m)
	}
	visit(n)

	closure := make([]Node, len(postOrder))
	for i, m := range postOrder {
		closure[len(postOrder)-1-i] = m
	}
	return closure
}

// AncestorClosures computes AncestorClosure for every node up front. Worst
// case O(V*(V+E)); the accepted cost of giving every back-substitution a
// node-local scope.
func AncestorClosures(nodes []Node) map[Node][]Node {
	closures := make(map[Node][]Node, len(nodes))
	for _, n := range nodes {
		closures[n] = AncestorClosure(n)
	}
	return closures
}
