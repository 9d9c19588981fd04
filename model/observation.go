package model

import (
	"fmt"
	"math"
)

// ObservationError describes why a set of observations was rejected. Index is
// the offending point, or -1 when the problem is not tied to one point.
type ObservationError struct {
	Index  int
	Reason string
}

func (e *ObservationError) Error() string {
	if e.Index < 0 {
		return "invalid observations: " + e.Reason
	}
	return fmt.Sprintf("invalid observations: point %d: %s", e.Index, e.Reason)
}

// ObservationSet holds n observed points (x, y) with a per-point standard
// uncertainty dy. It is immutable once created: the constructor copies its
// inputs and accessors hand back copies.
type ObservationSet struct {
	x  []float64
	y  []float64
	dy []float64
}

// NewObservationSet copies and validates the three sequences
func NewObservationSet(x, y, dy []float64) (*ObservationSet, error) {
	o := &ObservationSet{
		x:  append([]float64(nil), x...),
		y:  append([]float64(nil), y...),
		dy: append([]float64(nil), dy...),
	}

	if err := o.Check(); err != nil {
		return nil, err
	}

	return o, nil
}

// Check returns an *ObservationError if there is a problem with the set
func (o *ObservationSet) Check() error {
	if o == nil {
		return &ObservationError{Index: -1, Reason: "no observations supplied"}
	}

	n := len(o.x)
	if n < 1 {
		return &ObservationError{Index: -1, Reason: "at least one point is required"}
	}
	if len(o.y) != n || len(o.dy) != n {
		return &ObservationError{
			Index:  -1,
			Reason: fmt.Sprintf("length mismatch: x=%d y=%d dy=%d", n, len(o.y), len(o.dy)),
		}
	}

	for i := 0; i < n; i++ {
		if !finite(o.x[i]) || !finite(o.y[i]) {
			return &ObservationError{Index: i, Reason: fmt.Sprintf("non-finite value x=%v y=%v", o.x[i], o.y[i])}
		}
		if !finite(o.dy[i]) || o.dy[i] <= 0 {
			return &ObservationError{Index: i, Reason: fmt.Sprintf("dy must be finite and > 0, found %v", o.dy[i])}
		}
	}

	return nil
}

// Len is the number of points
func (o *ObservationSet) Len() int {
	return len(o.x)
}

// X returns a copy of the x values
func (o *ObservationSet) X() []float64 {
	return append([]float64(nil), o.x...)
}

// Y returns a copy of the observed values
func (o *ObservationSet) Y() []float64 {
	return append([]float64(nil), o.y...)
}

// DY returns a copy of the uncertainties
func (o *ObservationSet) DY() []float64 {
	return append([]float64(nil), o.dy...)
}

// Point returns the i-th observation
func (o *ObservationSet) Point(i int) (x, y, dy float64) {
	return o.x[i], o.y[i], o.dy[i]
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
