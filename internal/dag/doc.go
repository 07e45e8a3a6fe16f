// Package dag is the scheduling core. It orders a single-input,
// single-output computation graph with one of two topological sort
// strategies, drives per-node forward and back-substitution passes, and
// reclaims per-node cache entries by reference counting as soon as no
// remaining consumer needs them. The numeric meaning of a node's operations
// is pluggable and opaque to this package.
package dag
