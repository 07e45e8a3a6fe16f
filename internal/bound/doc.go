// Package bound implements scalar interval bound propagation over a graph of
// affine and ReLU operations.
//
// Two propagation modes share the same node types. Forward mode pushes
// concrete intervals from the input toward the output, one node per step.
// Backward mode instead back-substitutes each node's value through its
// ancestors down to the input, which yields tighter bounds whenever a value
// fans out and recombines.
package bound
