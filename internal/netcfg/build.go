package netcfg

import (
	"fmt"

	"github.com/vk/propdag/internal/bound"
	"github.com/vk/propdag/internal/dag"
)

// Graph is a fully wired, runnable instantiation of one Definition.
type Graph struct {
	Nodes []dag.Node
	Cache *bound.Cache
	Args  *bound.Arguments
	Opts  dag.Options
}

// Build instantiates the bound nodes a definition describes, wires their
// edges in declaration order, and maps the definition's run settings onto
// engine options. Backward mode implies the back-substitution pass.
func Build(def *Definition) (*Graph, error) {
	mode := bound.ModeForward
	if def.Mode != "" {
		parsed, err := bound.ParseMode(def.Mode)
		if err != nil {
			return nil, err
		}
		mode = parsed
	}

	opts := dag.Options{
		Backsub:        mode == bound.ModeBackward,
		EvictDuringRun: def.Evict,
	}
	if def.Strategy != "" {
		strategy, err := dag.ParseStrategy(def.Strategy)
		if err != nil {
			return nil, err
		}
		opts.Strategy = strategy
	}

	cache := bound.NewCache()
	args := &bound.Arguments{Mode: mode}

	byName := make(map[string]dag.Node, len(def.Nodes))
	nodes := make([]dag.Node, 0, len(def.Nodes))

	for _, nd := range def.Nodes {
		if _, exists := byName[nd.Name]; exists {
			return nil, fmt.Errorf("duplicate node name %q", nd.Name)
		}

		var node dag.Node
		switch nd.Op {
		case "input":
			if len(nd.Inputs) > 0 {
				return nil, fmt.Errorf("input %q: must not declare inputs", nd.Name)
			}
			node = bound.NewInput(nd.Name, cache, args, nd.Lower, nd.Upper)
		case "affine":
			node = bound.NewAffine(nd.Name, cache, args, nd.Weights, nd.Bias)
		case "relu":
			node = bound.NewReLU(nd.Name, cache, args)
		default:
			return nil, fmt.Errorf("node %q: unknown op %q", nd.Name, nd.Op)
		}

		byName[nd.Name] = node
		nodes = append(nodes, node)
	}

	// Wire after all nodes exist so declaration order doesn't constrain
	// reference order. Repeated input names become duplicate edges.
	for _, nd := range def.Nodes {
		consumer := byName[nd.Name]
		for _, input := range nd.Inputs {
			producer, ok := byName[input]
			if !ok {
				return nil, fmt.Errorf("node %q: unknown input %q", nd.Name, input)
			}
			dag.Connect(producer, consumer)
		}
	}

	return &Graph{Nodes: nodes, Cache: cache, Args: args, Opts: opts}, nil
}
