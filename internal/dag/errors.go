package dag

import "errors"

// Structural errors indicate a malformed caller-supplied graph. They are
// returned during construction, never during a run, and are not retryable.
var (
	ErrNoInput         = errors.New("graph has no input node")
	ErrMultipleInputs  = errors.New("graph has multiple input nodes")
	ErrNoOutput        = errors.New("graph has no output node")
	ErrMultipleOutputs = errors.New("graph has multiple output nodes")
	ErrCycleDetected   = errors.New("graph has a cycle")
)

// ErrUnknownStrategy reports a sort strategy this package does not implement.
var ErrUnknownStrategy = errors.New("unknown sort strategy")
