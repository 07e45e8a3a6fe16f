package dag

// recorder doubles as the shared cache handle for stub nodes and as the
// event log the tests assert against.
type recorder struct {
	events []string
}

func (r *recorder) add(event string) {
	r.events = append(r.events, event)
}

// stubArgs carries a payload so that distinct allocations have distinct
// identity; pointers to zero-size values can compare equal.
type stubArgs struct {
	label string
}

// stubNode records every operation the scheduler invokes on it and can be
// armed to fail any of them.
type stubNode struct {
	Base
	rec *recorder

	failForward      error
	failBackward     error
	failEvictForward error
}

func newStub(name string, rec *recorder, args *stubArgs) *stubNode {
	return &stubNode{Base: NewBase(name, rec, args), rec: rec}
}

func (s *stubNode) Forward() error {
	if s.failForward != nil {
		return s.failForward
	}
	s.rec.add("fwd " + s.Name())
	return nil
}

func (s *stubNode) Backward() error {
	if s.failBackward != nil {
		return s.failBackward
	}
	s.rec.add("bwd " + s.Name())
	return nil
}

func (s *stubNode) EvictForwardCache() error {
	if s.failEvictForward != nil {
		return s.failEvictForward
	}
	s.rec.add("efc " + s.Name())
	return nil
}

func (s *stubNode) EvictBackwardCache() error {
	s.rec.add("ebc " + s.Name())
	return nil
}

// chain builds name[0] -> name[1] -> ... and returns the nodes in input order.
func chain(rec *recorder, args *stubArgs, names ...string) []Node {
	nodes := make([]Node, len(names))
	for i, name := range names {
		nodes[i] = newStub(name, rec, args)
		if i > 0 {
			Connect(nodes[i-1], nodes[i])
		}
	}
	return nodes
}

// diamond builds A -> {B, C} -> D and returns [A, B, C, D].
func diamond(rec *recorder, args *stubArgs) []Node {
	a := newStub("A", rec, args)
	b := newStub("B", rec, args)
	c := newStub("C", rec, args)
	d := newStub("D", rec, args)
	Connect(a, b)
	Connect(a, c)
	Connect(b, d)
	Connect(c, d)
	return []Node{a, b, c, d}
}
