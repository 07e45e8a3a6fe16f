package dag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/vk/propdag/internal/ctxlog"
)

// Options configures a Model.
type Options struct {
	// Strategy selects the forward topological sort. Empty defaults to
	// wide-first.
	Strategy Strategy

	// Backsub runs a back-substitution sub-pass over each node's ancestor
	// closure after that node's forward step.
	Backsub bool

	// EvictDuringRun reclaims per-node cache entries between steps by
	// reference counting. What an eviction actually drops is the node's
	// decision; the demo operations keep boundary results and drop scratch.
	EvictDuringRun bool
}

// Model schedules one run over a validated, sorted graph. It is
// single-threaded and synchronous: every node operation runs to completion
// before the next is invoked.
type Model struct {
	nodes    []Node // forward topological order; source first, sink last
	strategy Strategy
	opts     Options
	cache    Cache
	args     Arguments
	closures map[Node][]Node // per-node back-substitution scopes, nil unless Backsub
}

// New validates the graph, sorts it with the chosen strategy, and, when
// back-substitution is enabled, precomputes every node's ancestor closure.
// Construction fails fast: a structural or configuration error leaves no
// partial state and no node has executed.
func New(nodes []Node, opts Options) (*Model, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: graph is empty", ErrNoInput)
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategyWideFirst
	}

	sorted, err := sortForward(nodes, opts.Strategy)
	if err != nil {
		return nil, err
	}

	cache, args, err := sharedHandles(nodes)
	if err != nil {
		return nil, err
	}

	m := &Model{
		nodes:    sorted,
		strategy: opts.Strategy,
		opts:     opts,
		cache:    cache,
		args:     args,
	}
	if opts.Backsub {
		m.closures = AncestorClosures(sorted)
	}
	return m, nil
}

// sharedHandles confirms every node holds the identical Cache and Arguments
// handles. One run, one cache: the per-node operations communicate only
// through it.
func sharedHandles(nodes []Node) (Cache, Arguments, error) {
	cache := nodes[0].Cache()
	args := nodes[0].Arguments()
	for _, n := range nodes[1:] {
		if n.Cache() != cache {
			return nil, nil, fmt.Errorf("node %q does not share the model cache", n.Name())
		}
		if n.Arguments() != args {
			return nil, nil, fmt.Errorf("node %q does not share the model arguments", n.Name())
		}
	}
	return cache, args, nil
}

// Run executes the forward pass in topological order, interleaving
// back-substitution sub-passes and cache eviction as configured. The first
// operation error aborts the run immediately; no retries are attempted and
// the cache is left exactly as the failing node left it, so the caller must
// discard the run.
func (m *Model) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("run_id", uuid.New().String())
	logger.Debug("Run started.", "strategy", string(m.strategy), "nodes", len(m.nodes), "backsub", m.opts.Backsub)

	counts := forwardCounts(m.nodes)

	for i, n := range m.nodes {
		logger.Debug("Forward pass.", "node", n.Name())
		if err := n.Forward(); err != nil {
			return fmt.Errorf("forward %q: %w", n.Name(), err)
		}

		// The source has nothing to substitute back into.
		if m.opts.Backsub && i > 0 {
			if err := m.backsub(logger, n); err != nil {
				return err
			}
		}

		if m.opts.EvictDuringRun {
			if err := counts.release(n.Predecessors(), evictForward); err != nil {
				return err
			}
		}
	}

	if m.opts.EvictDuringRun {
		// The sink's one remaining consumer is the caller; settle it now.
		sink := m.nodes[len(m.nodes)-1]
		if err := counts.release([]Node{sink}, evictForward); err != nil {
			return err
		}
	}

	logger.Debug("Run complete.")
	return nil
}

// backsub walks seed's ancestor closure in topological order, seed first and
// the graph source last, invoking Backward on each member and releasing
// backward cache entries as their consumers finish.
func (m *Model) backsub(logger *slog.Logger, seed Node) error {
	closure := m.closures[seed]
	if len(closure) == 1 {
		// Seed is the source itself.
		return nil
	}

	counts := closureCounts(closure)

	for _, n := range closure {
		logger.Debug("Back-substitute.", "node", n.Name(), "seed", seed.Name())
		if err := n.Backward(); err != nil {
			return fmt.Errorf("backward %q (closure of %q): %w", n.Name(), seed.Name(), err)
		}
		if m.opts.EvictDuringRun {
			// Successors outside this closure are absent from the table
			// and skipped.
			if err := counts.release(n.Successors(), evictBackward); err != nil {
				return err
			}
		}
	}

	if m.opts.EvictDuringRun {
		source := closure[len(closure)-1]
		if err := counts.release([]Node{source}, evictBackward); err != nil {
			return err
		}
	}
	return nil
}

// Nodes returns a copy of the forward topological order.
func (m *Model) Nodes() []Node {
	out := make([]Node, len(m.nodes))
	copy(out, m.nodes)
	return out
}

// Cache returns the shared cache handle every node holds.
func (m *Model) Cache() Cache { return m.cache }

// Arguments returns the shared arguments handle every node holds.
func (m *Model) Arguments() Arguments { return m.args }

// Strategy returns the sort strategy the model was built with.
func (m *Model) Strategy() Strategy { return m.strategy }
