package bound

import (
	"fmt"
	"math"
)

// Interval is a closed scalar interval [Lo, Hi].
type Interval struct {
	Lo float64
	Hi float64
}

// Add returns the sum interval.
func (iv Interval) Add(other Interval) Interval {
	return Interval{Lo: iv.Lo + other.Lo, Hi: iv.Hi + other.Hi}
}

// Scale multiplies both ends by k, swapping them when k is negative.
func (iv Interval) Scale(k float64) Interval {
	if k < 0 {
		return Interval{Lo: k * iv.Hi, Hi: k * iv.Lo}
	}
	return Interval{Lo: k * iv.Lo, Hi: k * iv.Hi}
}

// Shift translates the interval by b.
func (iv Interval) Shift(b float64) Interval {
	return Interval{Lo: iv.Lo + b, Hi: iv.Hi + b}
}

// Relu clamps the interval at zero from below.
func (iv Interval) Relu() Interval {
	return Interval{Lo: math.Max(0, iv.Lo), Hi: math.Max(0, iv.Hi)}
}

// Width returns Hi - Lo.
func (iv Interval) Width() float64 {
	return iv.Hi - iv.Lo
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%g, %g]", iv.Lo, iv.Hi)
}

// Relaxation is the linear over-approximation y ~= S*x + T of a non-linear
// operation, valid over the input interval it was built from.
type Relaxation struct {
	S float64
	T float64
}

// relaxFor builds the ReLU relaxation for an input known to lie in iv. Stable
// activations are exact; unstable ones use the chord through (Lo, 0) and
// (Hi, Hi).
func relaxFor(iv Interval) Relaxation {
	switch {
	case iv.Lo >= 0:
		return Relaxation{S: 1, T: 0}
	case iv.Hi <= 0:
		return Relaxation{S: 0, T: 0}
	default:
		s := iv.Hi / (iv.Hi - iv.Lo)
		return Relaxation{S: s, T: -s * iv.Lo}
	}
}
