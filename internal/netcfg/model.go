package netcfg

// Definition is the format-agnostic representation of one `graph` block.
type Definition struct {
	Name     string
	Strategy string
	Mode     string
	Evict    bool
	Nodes    []*NodeDef
}

// NodeDef is the format-agnostic representation of one `node` block. Which
// fields are meaningful depends on Op: inputs carry lower/upper, affine
// nodes carry weights/bias, relu nodes carry neither.
type NodeDef struct {
	Name    string
	Op      string
	Inputs  []string
	Lower   float64
	Upper   float64
	Weights []float64
	Bias    float64
}
