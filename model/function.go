package model

import (
	"math"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Linear is F(x) = a*x + b
type Linear struct{}

// Eval implements Model
func (Linear) Eval(x []float64, a, b float64) ([]float64, error) {
	out := make([]float64, len(x))
	for i, xi := range x {
		out[i] = a*xi + b
	}
	return out, nil
}

// Logarithmic is F(x) = a*ln(b*x). For b*x <= 0 the result is NaN or -Inf,
// which the likelihood treats as an impossible parameter pair.
type Logarithmic struct{}

// Eval implements Model
func (Logarithmic) Eval(x []float64, a, b float64) ([]float64, error) {
	out := make([]float64, len(x))
	for i, xi := range x {
		out[i] = a * math.Log(b*xi)
	}
	return out, nil
}

// Quadratic is F(x) = a*x + b*x^2
type Quadratic struct{}

// Eval implements Model
func (Quadratic) Eval(x []float64, a, b float64) ([]float64, error) {
	out := make([]float64, len(x))
	for i, xi := range x {
		out[i] = a*xi + b*xi*xi
	}
	return out, nil
}

// Inverse is F(x) = a/x + b
type Inverse struct{}

// Eval implements Model
func (Inverse) Eval(x []float64, a, b float64) ([]float64, error) {
	out := make([]float64, len(x))
	for i, xi := range x {
		out[i] = a/xi + b
	}
	return out, nil
}

var builtins = map[string]Model{
	"linear":      Linear{},
	"log":         Logarithmic{},
	"logarithmic": Logarithmic{},
	"quadratic":   Quadratic{},
	"inverse":     Inverse{},
}

// ModelByName returns one of the built-in models (case insensitive)
func ModelByName(name string) (Model, error) {
	m, ok := builtins[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, errors.Errorf("Unknown model %q (choose from %s)", name, strings.Join(ModelNames(), ", "))
	}
	return m, nil
}

// ModelNames returns the sorted names accepted by ModelByName
func ModelNames() []string {
	names := make([]string, 0, len(builtins))
	for k := range builtins {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
