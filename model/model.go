package model

import (
	"fmt"
	"math"
)

// Model is a closed-form function of x with two free parameters. Eval must
// return one value per x, must be deterministic, and must not keep x after
// it returns. Returning an error (or values that are not finite) marks (a, b) as
// impossible for the given inputs.
type Model interface {
	Eval(x []float64, a, b float64) ([]float64, error)
}

// ModelFunc adapts an ordinary function to the Model interface
type ModelFunc func(x []float64, a, b float64) ([]float64, error)

// Eval implements Model
func (f ModelFunc) Eval(x []float64, a, b float64) ([]float64, error) {
	return f(x, a, b)
}

// Params is a position in the two-parameter space
type Params struct {
	A float64 `yaml:"a"`
	B float64 `yaml:"b"`
}

// Sub returns p - q component-wise
func (p Params) Sub(q Params) Params {
	return Params{A: p.A - q.A, B: p.B - q.B}
}

// Add returns p + q component-wise
func (p Params) Add(q Params) Params {
	return Params{A: p.A + q.A, B: p.B + q.B}
}

// Scale returns k*p
func (p Params) Scale(k float64) Params {
	return Params{A: k * p.A, B: k * p.B}
}

// IsFinite is false if either component is NaN or infinite
func (p Params) IsFinite() bool {
	return !(math.IsNaN(p.A) || math.IsInf(p.A, 0) || math.IsNaN(p.B) || math.IsInf(p.B, 0))
}

func (p Params) String() string {
	return fmt.Sprintf("(a=%g, b=%g)", p.A, p.B)
}
