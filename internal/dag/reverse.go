package dag

// Reverse validates the caller's graph and then swaps every node's
// predecessor and successor lists in place, so a plain forward traversal of
// the result walks the original graph sink-to-source. It returns the
// original source and sink; after the swap the original sink is the new
// source and the original source the new sink. A graph failing validation is
// returned unmodified.
//
// Reverse is an involution: applying it twice restores the original edge
// direction. The original direction is not otherwise recoverable, so callers
// needing both orientations must copy the graph first.
func Reverse(nodes []Node) (source, sink Node, err error) {
	source, sink, err = checkBoundary(nodes)
	if err != nil {
		return nil, nil, err
	}

	for _, n := range nodes {
		pre, next := n.Predecessors(), n.Successors()
		n.SetPredecessors(next)
		n.SetSuccessors(pre)
	}
	return source, sink, nil
}
