package dag

import "fmt"

// refCounts tracks how many remaining consumers still need each node's
// cached state. Counts use raw edge multiplicity: a duplicate edge is one
// more use of the producer's cached value.
type refCounts map[Node]int

// forwardCounts seeds one unit per successor edge. The sink starts at zero;
// its single external consumer is the caller, settled by the trailing
// decrement after the pass.
func forwardCounts(nodes []Node) refCounts {
	counts := make(refCounts, len(nodes))
	for _, n := range nodes {
		counts[n] = len(n.Successors())
	}
	return counts
}

// closureCounts seeds one unit per predecessor edge, scoped to one ancestor
// closure. Closures are predecessor-closed, so every counted edge has its
// producer inside the table; the closure's own source starts at zero and is
// settled by a trailing decrement.
func closureCounts(closure []Node) refCounts {
	counts := make(refCounts, len(closure))
	for _, n := range closure {
		counts[n] = len(n.Predecessors())
	}
	return counts
}

// release decrements each consumed node once per appearance in the batch and
// fires evict when a count reaches zero or below, removing the node from the
// table. A node absent from the table is skipped: it was already released,
// or it was never part of this traversal's scope.
func (rc refCounts) release(consumed []Node, evict func(Node) error) error {
	for _, n := range consumed {
		count, ok := rc[n]
		if !ok {
			continue
		}
		count--
		if count > 0 {
			rc[n] = count
			continue
		}
		delete(rc, n)
		if err := evict(n); err != nil {
			return err
		}
	}
	return nil
}

func evictForward(n Node) error {
	if err := n.EvictForwardCache(); err != nil {
		return fmt.Errorf("evict forward cache of %q: %w", n.Name(), err)
	}
	return nil
}

func evictBackward(n Node) error {
	if err := n.EvictBackwardCache(); err != nil {
		return fmt.Errorf("evict backward cache of %q: %w", n.Name(), err)
	}
	return nil
}
