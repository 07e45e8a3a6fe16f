package bound

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/propdag/internal/dag"
)

// chainGraph builds A -> Affine(2x+1) -> ReLU with A in [-1, 2].
func chainGraph(mode Mode) ([]dag.Node, *Cache) {
	cache := NewCache()
	args := &Arguments{Mode: mode}
	a := NewInput("A", cache, args, -1, 2)
	b := NewAffine("B", cache, args, []float64{2}, 1)
	c := NewReLU("C", cache, args)
	dag.Connect(a, b)
	dag.Connect(b, c)
	return []dag.Node{a, b, c}, cache
}

// diamondGraph builds D = B + C with B = 2A and C = -A + 1, so D = A + 1
// exactly, while interval arithmetic on B and C loses the correlation.
func diamondGraph(mode Mode) ([]dag.Node, *Cache) {
	cache := NewCache()
	args := &Arguments{Mode: mode}
	a := NewInput("A", cache, args, -1, 2)
	b := NewAffine("B", cache, args, []float64{2}, 0)
	c := NewAffine("C", cache, args, []float64{-1}, 1)
	d := NewAffine("D", cache, args, []float64{1, 1}, 0)
	dag.Connect(a, b)
	dag.Connect(a, c)
	dag.Connect(b, d)
	dag.Connect(c, d)
	return []dag.Node{a, b, c, d}, cache
}

func run(t *testing.T, nodes []dag.Node, opts dag.Options) {
	t.Helper()
	m, err := dag.New(nodes, opts)
	require.NoError(t, err)
	require.NoError(t, m.Run(context.Background()))
}

func TestForwardChain(t *testing.T) {
	nodes, cache := chainGraph(ModeForward)
	run(t, nodes, dag.Options{})

	assert.Equal(t, Interval{Lo: -1, Hi: 5}, cache.Bounds["B"])
	assert.Equal(t, Interval{Lo: 0, Hi: 5}, cache.Bounds["C"])
}

func TestForwardEvictionKeepsBoundaryBounds(t *testing.T) {
	nodes, cache := chainGraph(ModeForward)
	run(t, nodes, dag.Options{EvictDuringRun: true})

	assert.Contains(t, cache.Bounds, "A")
	assert.Contains(t, cache.Bounds, "C")
	assert.NotContains(t, cache.Bounds, "B", "interior bounds are reclaimed")
}

func TestBackwardChain(t *testing.T) {
	nodes, cache := chainGraph(ModeBackward)
	run(t, nodes, dag.Options{Backsub: true, EvictDuringRun: true})

	c := cache.Bounds["C"]
	assert.InDelta(t, 0, c.Lo, 1e-12)
	assert.InDelta(t, 5, c.Hi, 1e-12)

	assert.Contains(t, cache.Bounds, "A")
	assert.NotContains(t, cache.Bounds, "B")
	assert.Empty(t, cache.Coeffs, "substitution scratch is fully reclaimed")
}

func TestBackwardTightensDiamond(t *testing.T) {
	fwd, fwdCache := diamondGraph(ModeForward)
	run(t, fwd, dag.Options{})
	assert.Equal(t, Interval{Lo: -3, Hi: 6}, fwdCache.Bounds["D"],
		"interval arithmetic loses the shared dependency on A")

	bwd, bwdCache := diamondGraph(ModeBackward)
	run(t, bwd, dag.Options{Backsub: true, EvictDuringRun: true})
	d := bwdCache.Bounds["D"]
	assert.InDelta(t, 0, d.Lo, 1e-12)
	assert.InDelta(t, 3, d.Hi, 1e-12)
}

func TestBackwardWithoutEviction(t *testing.T) {
	nodes, cache := chainGraph(ModeBackward)
	run(t, nodes, dag.Options{Backsub: true})

	// Each closure starts from a fresh scratch map, so leftover coefficients
	// from the previous substitution never leak into the next one.
	c := cache.Bounds["C"]
	assert.InDelta(t, 0, c.Lo, 1e-12)
	assert.InDelta(t, 5, c.Hi, 1e-12)
	assert.Contains(t, cache.Bounds, "B", "nothing is reclaimed without eviction")
}

func TestBackwardUnsupportedInForwardMode(t *testing.T) {
	nodes, _ := chainGraph(ModeForward)

	m, err := dag.New(nodes, dag.Options{Backsub: true})
	require.NoError(t, err)

	err = m.Run(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "unsupported in forward mode")
}

func TestAffineRejectsWeightMismatch(t *testing.T) {
	cache := NewCache()
	args := &Arguments{Mode: ModeForward}
	a := NewInput("A", cache, args, 0, 1)
	b := NewAffine("B", cache, args, []float64{1, 1}, 0)
	dag.Connect(a, b)

	m, err := dag.New([]dag.Node{a, b}, dag.Options{})
	require.NoError(t, err)

	err = m.Run(context.Background())
	assert.ErrorContains(t, err, "1 inputs but 2 weights")
}

func TestDuplicateEdgeDoublesContribution(t *testing.T) {
	cache := NewCache()
	args := &Arguments{Mode: ModeForward}
	a := NewInput("A", cache, args, 1, 2)
	b := NewAffine("B", cache, args, []float64{1, 1}, 0)
	dag.Connect(a, b)
	dag.Connect(a, b)

	run(t, []dag.Node{a, b}, dag.Options{})
	assert.Equal(t, Interval{Lo: 2, Hi: 4}, cache.Bounds["B"])
}
