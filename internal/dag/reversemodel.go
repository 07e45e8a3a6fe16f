package dag

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vk/propdag/internal/ctxlog"
)

// ReverseModel runs what is semantically a back-substitution pass over the
// caller's graph as an ordinary forward traversal of the edge-reversed
// graph. Compared to Model's dual-mode design there is one traversal
// algorithm and one operation per node; the price is that construction
// mutates the caller's graph in place via Reverse.
type ReverseModel struct {
	nodes      []Node // topological order of the reversed graph
	strategy   Strategy
	opts       Options
	cache      Cache
	args       Arguments
	origSource Node
	origSink   Node
}

// NewReverse validates and reverses the caller's graph, then sorts the
// reversed graph with the chosen strategy. The resulting order starts at the
// original sink and ends at the original source. Options.Backsub is ignored:
// the reversal is what replaces the nested back-substitution passes.
func NewReverse(nodes []Node, opts Options) (*ReverseModel, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: graph is empty", ErrNoInput)
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategyWideFirst
	}

	source, sink, err := Reverse(nodes)
	if err != nil {
		return nil, err
	}

	sorted, err := sortForward(nodes, opts.Strategy)
	if err != nil {
		return nil, err
	}
	if sorted[0] != sink || sorted[len(sorted)-1] != source {
		return nil, fmt.Errorf("reversed order must run %q to %q, got %q to %q",
			sink.Name(), source.Name(), sorted[0].Name(), sorted[len(sorted)-1].Name())
	}

	cache, args, err := sharedHandles(nodes)
	if err != nil {
		return nil, err
	}

	return &ReverseModel{
		nodes:      sorted,
		strategy:   opts.Strategy,
		opts:       opts,
		cache:      cache,
		args:       args,
		origSource: source,
		origSink:   sink,
	}, nil
}

// Run performs one forward traversal of the reversed graph. Each step
// consumes substitution state from its (reversed) predecessors, so eviction
// releases backward caches, not forward ones.
func (m *ReverseModel) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("run_id", uuid.New().String())
	logger.Debug("Reversed run started.", "strategy", string(m.strategy), "nodes", len(m.nodes))

	counts := forwardCounts(m.nodes)

	for _, n := range m.nodes {
		logger.Debug("Propagate.", "node", n.Name())
		if err := n.Forward(); err != nil {
			return fmt.Errorf("forward %q: %w", n.Name(), err)
		}
		if m.opts.EvictDuringRun {
			if err := counts.release(n.Predecessors(), evictBackward); err != nil {
				return err
			}
		}
	}

	if m.opts.EvictDuringRun {
		last := m.nodes[len(m.nodes)-1]
		if err := counts.release([]Node{last}, evictBackward); err != nil {
			return err
		}
	}

	logger.Debug("Reversed run complete.")
	return nil
}

// OriginalSource returns the graph's source as the caller built it, before
// reversal. After construction it has zero successors.
func (m *ReverseModel) OriginalSource() Node { return m.origSource }

// OriginalSink returns the graph's sink as the caller built it, before
// reversal. After construction it has zero predecessors and leads the
// traversal order.
func (m *ReverseModel) OriginalSink() Node { return m.origSink }

// Nodes returns a copy of the reversed graph's topological order.
func (m *ReverseModel) Nodes() []Node {
	out := make([]Node, len(m.nodes))
	copy(out, m.nodes)
	return out
}

// Cache returns the shared cache handle every node holds.
func (m *ReverseModel) Cache() Cache { return m.cache }

// Arguments returns the shared arguments handle every node holds.
func (m *ReverseModel) Arguments() Arguments { return m.args }

// Strategy returns the sort strategy the model was built with.
func (m *ReverseModel) Strategy() Strategy { return m.strategy }
