package dag

// Cache is the shared, mutable store node operations read and write. The
// scheduler never looks inside it; it only decides when it is safe to ask a
// node to evict its own entries. All nodes in one model must hold the same
// handle, compared by identity.
type Cache any

// Arguments is the shared, immutable run configuration read by node
// operations, for example a propagation-mode selector. All nodes in one
// model must hold the same handle, compared by identity; handles should
// point at non-zero-size values, since Go may give zero-size allocations
// one address and defeat the comparison.
type Arguments any

// Node is a vertex in the computation graph. Implementations embed Base for
// identity and wiring and supply the four operations. The scheduler keys its
// bookkeeping tables on interface identity, so implementations must be
// pointer types.
type Node interface {
	Name() string
	Predecessors() []Node
	Successors() []Node
	SetPredecessors([]Node)
	SetSuccessors([]Node)
	Cache() Cache
	Arguments() Arguments

	// Forward computes this node's result from its predecessors' cached state.
	Forward() error
	// Backward performs one back-substitution step for this node.
	Backward() error
	// EvictForwardCache drops forward-pass entries this node owns.
	EvictForwardCache() error
	// EvictBackwardCache drops back-substitution entries this node owns.
	EvictBackwardCache() error
}

// Base carries a node's identity, edge lists, and shared handles. Concrete
// node types embed it and implement the four operations.
type Base struct {
	name  string
	cache Cache
	args  Arguments
	pre   []Node
	next  []Node
}

// NewBase returns a Base ready for embedding. Edges are wired afterwards
// with Connect.
func NewBase(name string, cache Cache, args Arguments) Base {
	return Base{name: name, cache: cache, args: args}
}

func (b *Base) Name() string { return b.name }

func (b *Base) Predecessors() []Node { return b.pre }

func (b *Base) Successors() []Node { return b.next }

func (b *Base) SetPredecessors(nodes []Node) { b.pre = nodes }

func (b *Base) SetSuccessors(nodes []Node) { b.next = nodes }

func (b *Base) Cache() Cache { return b.cache }

func (b *Base) Arguments() Arguments { return b.args }

// Connect wires a directed edge into both endpoints' lists. Calling it twice
// with the same pair records a duplicate edge: structure checks treat
// duplicates as one logical edge, while cache reference counting treats each
// as a separate use of the producer's cached value.
func Connect(from, to Node) {
	from.SetSuccessors(append(from.Successors(), to))
	to.SetPredecessors(append(to.Predecessors(), from))
}
