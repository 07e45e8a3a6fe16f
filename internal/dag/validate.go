package dag

import (
	"fmt"
	"strings"
)

// checkBoundary verifies the graph has exactly one node with no predecessors
// and exactly one with no successors, and returns them. Duplicate edges do
// not affect the check: a node whose only predecessor is listed twice still
// has a predecessor. Cycle detection is left to the sorters, which find any
// cycle as a byproduct of ordering.
func checkBoundary(nodes []Node) (source, sink Node, err error) {
	var sources, sinks []Node
	for _, n := range nodes {
		if len(n.Predecessors()) == 0 {
			sources = append(sources, n)
		}
		if len(n.Successors()) == 0 {
			sinks = append(sinks, n)
		}
	}

	switch {
	case len(sources) == 0:
		return nil, nil, fmt.Errorf("%w: no node has zero predecessors", ErrNoInput)
	case len(sources) > 1:
		return nil, nil, fmt.Errorf("%w: found %d: %s", ErrMultipleInputs, len(sources), nodeNames(sources))
	}

	switch {
	case len(sinks) == 0:
		return nil, nil, fmt.Errorf("%w: no node has zero successors", ErrNoOutput)
	case len(sinks) > 1:
		return nil, nil, fmt.Errorf("%w: found %d: %s", ErrMultipleOutputs, len(sinks), nodeNames(sinks))
	}

	return sources[0], sinks[0], nil
}

func nodeNames(nodes []Node) string {
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Name()
	}
	return strings.Join(names, ", ")
}
