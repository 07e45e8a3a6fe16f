package dag

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefCountsRelease(t *testing.T) {
	rec := &recorder{}
	args := &stubArgs{}

	t.Run("evicts at zero and removes from table", func(t *testing.T) {
		a := newStub("A", rec, args)
		counts := refCounts{a: 2}

		var evicted []string
		evict := func(n Node) error {
			evicted = append(evicted, n.Name())
			return nil
		}

		require.NoError(t, counts.release([]Node{a}, evict))
		assert.Empty(t, evicted)
		assert.Equal(t, 1, counts[a])

		require.NoError(t, counts.release([]Node{a}, evict))
		assert.Equal(t, []string{"A"}, evicted)
		assert.NotContains(t, counts, a)
	})

	t.Run("duplicate entries in one batch decrement separately", func(t *testing.T) {
		a := newStub("A", rec, args)
		counts := refCounts{a: 2}

		var evicted int
		evict := func(Node) error {
			evicted++
			return nil
		}

		require.NoError(t, counts.release([]Node{a, a}, evict))
		assert.Equal(t, 1, evicted)
		assert.NotContains(t, counts, a)
	})

	t.Run("absent nodes are skipped", func(t *testing.T) {
		a := newStub("A", rec, args)
		outside := newStub("X", rec, args)
		counts := refCounts{a: 1}

		var evicted []string
		evict := func(n Node) error {
			evicted = append(evicted, n.Name())
			return nil
		}

		require.NoError(t, counts.release([]Node{outside, a, outside}, evict))
		assert.Equal(t, []string{"A"}, evicted)
	})

	t.Run("zero seeded boundary evicts on trailing decrement", func(t *testing.T) {
		sink := newStub("T", rec, args)
		counts := refCounts{sink: 0}

		var evicted []string
		evict := func(n Node) error {
			evicted = append(evicted, n.Name())
			return nil
		}

		require.NoError(t, counts.release([]Node{sink}, evict))
		assert.Equal(t, []string{"T"}, evicted)
		assert.Empty(t, counts)
	})

	t.Run("eviction failure propagates", func(t *testing.T) {
		a := newStub("A", rec, args)
		counts := refCounts{a: 1}
		boom := errors.New("boom")

		err := counts.release([]Node{a}, func(Node) error { return boom })
		assert.ErrorIs(t, err, boom)
	})
}

func TestForwardCountsSeeding(t *testing.T) {
	rec := &recorder{}
	args := &stubArgs{}
	a := newStub("A", rec, args)
	b := newStub("B", rec, args)
	Connect(a, b)
	Connect(a, b)

	counts := forwardCounts([]Node{a, b})
	assert.Equal(t, 2, counts[a], "duplicate edges are separate uses")
	assert.Equal(t, 0, counts[b])
}

func TestClosureCountsSeeding(t *testing.T) {
	rec := &recorder{}
	args := &stubArgs{}
	nodes := diamond(rec, args)
	closure := AncestorClosure(nodes[3])

	counts := closureCounts(closure)
	assert.Equal(t, 2, counts[nodes[3]]) // D consumed by B and C
	assert.Equal(t, 0, counts[nodes[0]]) // source settled by trailing decrement
}
