package bound

import (
	"errors"
	"fmt"
)

// ErrUnknownMode reports a propagation mode name outside the known set.
var ErrUnknownMode = errors.New("unknown propagation mode")

// Mode selects how bounds flow through the graph.
type Mode string

const (
	// ModeForward pushes concrete intervals from input to output.
	ModeForward Mode = "forward"

	// ModeBackward back-substitutes every node through its ancestors.
	ModeBackward Mode = "backward"
)

// ParseMode maps a configuration string onto a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeForward:
		return ModeForward, nil
	case ModeBackward:
		return ModeBackward, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Arguments holds the run-wide parameters every node shares.
type Arguments struct {
	Mode Mode
}

// Cache is the single shared store all nodes of one run read and write.
//
// Bounds and Relax persist across steps (subject to eviction); Coeffs,
// BiasAcc and Seed are scratch for the back-substitution of one node and are
// reset when the next substitution begins.
type Cache struct {
	// Bounds maps node names to their concrete intervals.
	Bounds map[string]Interval

	// Relax maps non-linear node names to their linear relaxations.
	Relax map[string]Relaxation

	// Coeffs accumulates, per ancestor, the coefficient of that ancestor's
	// value in the seed's back-substituted expression.
	Coeffs map[string]float64

	// BiasAcc accumulates the constant term of the same expression.
	BiasAcc float64

	// Seed names the node whose expression is currently being substituted.
	Seed string
}

// NewCache returns an empty cache ready for one run.
func NewCache() *Cache {
	return &Cache{
		Bounds: make(map[string]Interval),
		Relax:  make(map[string]Relaxation),
		Coeffs: make(map[string]float64),
	}
}
