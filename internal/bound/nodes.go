package bound

import (
	"fmt"

	"github.com/vk/propdag/internal/dag"
)

// node carries the typed cache and arguments handles shared by every
// operation in this package, plus the eviction behavior common to all of
// them.
type node struct {
	dag.Base
	cache *Cache
	args  *Arguments
}

func newNode(name string, cache *Cache, args *Arguments) node {
	return node{Base: dag.NewBase(name, cache, args), cache: cache, args: args}
}

func (n *node) backward() bool {
	return n.args.Mode == ModeBackward
}

// seedInit resets the substitution scratch when this node is the seed of the
// closure being walked. The seed's expression starts as 1 times itself. A
// fresh map also discards residue from a run without eviction.
func (n *node) seedInit() {
	if n.Name() == n.cache.Seed {
		n.cache.Coeffs = map[string]float64{n.Name(): 1}
		n.cache.BiasAcc = 0
	}
}

// EvictForwardCache drops this node's interval once no consumer needs it.
// Boundary nodes keep theirs: the input interval is the problem statement and
// the output interval is the answer.
func (n *node) EvictForwardCache() error {
	if len(n.Predecessors()) > 0 && len(n.Successors()) > 0 {
		delete(n.cache.Bounds, n.Name())
	}
	return nil
}

// EvictBackwardCache drops this node's substitution coefficient.
func (n *node) EvictBackwardCache() error {
	if !n.backward() {
		return fmt.Errorf("node %q: backward cache unused in forward mode", n.Name())
	}
	delete(n.cache.Coeffs, n.Name())
	return nil
}

// Input is the graph source. Its interval is fixed at construction and never
// computed.
type Input struct {
	node
}

// NewInput seeds the cache with the interval [lo, hi] under name.
func NewInput(name string, cache *Cache, args *Arguments, lo, hi float64) *Input {
	cache.Bounds[name] = Interval{Lo: lo, Hi: hi}
	return &Input{node: newNode(name, cache, args)}
}

func (in *Input) Forward() error {
	if _, ok := in.cache.Bounds[in.Name()]; !ok {
		return fmt.Errorf("input %q: bounds not seeded", in.Name())
	}
	return nil
}

// Backward finalizes a substitution: by the time it reaches the input, the
// seed's expression is Coeffs[input]*input + BiasAcc, and the input's
// interval is known.
func (in *Input) Backward() error {
	if !in.backward() {
		return fmt.Errorf("input %q: backward pass unsupported in forward mode", in.Name())
	}
	coeff := in.cache.Coeffs[in.Name()]
	iv := in.cache.Bounds[in.Name()]
	in.cache.Bounds[in.cache.Seed] = iv.Scale(coeff).Shift(in.cache.BiasAcc)
	return nil
}

// Affine computes weights . inputs + bias. Weights are parallel to the
// node's predecessor list, so wiring the same producer twice squares its
// contribution the way the edge list says.
type Affine struct {
	node
	weights []float64
	bias    float64
}

func NewAffine(name string, cache *Cache, args *Arguments, weights []float64, bias float64) *Affine {
	return &Affine{node: newNode(name, cache, args), weights: weights, bias: bias}
}

func (af *Affine) Forward() error {
	preds := af.Predecessors()
	if len(preds) != len(af.weights) {
		return fmt.Errorf("affine %q: %d inputs but %d weights", af.Name(), len(preds), len(af.weights))
	}

	if af.backward() {
		af.cache.Seed = af.Name()
		return nil
	}

	acc := Interval{Lo: af.bias, Hi: af.bias}
	for i, p := range preds {
		iv, ok := af.cache.Bounds[p.Name()]
		if !ok {
			return fmt.Errorf("affine %q: missing bounds for %q", af.Name(), p.Name())
		}
		acc = acc.Add(iv.Scale(af.weights[i]))
	}
	af.cache.Bounds[af.Name()] = acc
	return nil
}

// Backward substitutes this node's definition into the seed's expression:
// the coefficient accumulated on this node distributes over its inputs.
func (af *Affine) Backward() error {
	if !af.backward() {
		return fmt.Errorf("affine %q: backward pass unsupported in forward mode", af.Name())
	}
	af.seedInit()

	coeff := af.cache.Coeffs[af.Name()]
	for i, p := range af.Predecessors() {
		af.cache.Coeffs[p.Name()] += coeff * af.weights[i]
	}
	af.cache.BiasAcc += coeff * af.bias
	return nil
}

// ReLU clamps its single input at zero. In backward mode it substitutes its
// linear relaxation instead of the exact clamp.
type ReLU struct {
	node
}

func NewReLU(name string, cache *Cache, args *Arguments) *ReLU {
	return &ReLU{node: newNode(name, cache, args)}
}

func (r *ReLU) Forward() error {
	preds := r.Predecessors()
	if len(preds) != 1 {
		return fmt.Errorf("relu %q: needs exactly one input, got %d", r.Name(), len(preds))
	}
	in, ok := r.cache.Bounds[preds[0].Name()]
	if !ok {
		return fmt.Errorf("relu %q: missing bounds for %q", r.Name(), preds[0].Name())
	}
	r.cache.Relax[r.Name()] = relaxFor(in)

	if r.backward() {
		r.cache.Seed = r.Name()
		return nil
	}
	r.cache.Bounds[r.Name()] = in.Relu()
	return nil
}

func (r *ReLU) Backward() error {
	if !r.backward() {
		return fmt.Errorf("relu %q: backward pass unsupported in forward mode", r.Name())
	}
	r.seedInit()

	coeff := r.cache.Coeffs[r.Name()]
	rlx := r.cache.Relax[r.Name()]
	r.cache.Coeffs[r.Predecessors()[0].Name()] += coeff * rlx.S
	r.cache.BiasAcc += coeff * rlx.T
	return nil
}
