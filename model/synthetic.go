package model

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/CraigKelly/paraminsight/rand"
)

// DyFloor is the smallest uncertainty the synthetic builder will emit
const DyFloor = 1e-9

// SyntheticSpec describes the heteroscedastic noise of a simulated
// instrument: each point gets dy = |InstrumentError + TrendCoeff*x + N(0, NoiseScale)|
type SyntheticSpec struct {
	InstrumentError float64 `yaml:"instrument_error"`
	TrendCoeff      float64 `yaml:"trend_coeff"`
	NoiseScale      float64 `yaml:"noise_scale"`
}

// Check returns an error if the spec can not produce sensible noise
func (s SyntheticSpec) Check() error {
	if !finite(s.InstrumentError) || !finite(s.TrendCoeff) || !finite(s.NoiseScale) {
		return errors.Errorf("Synthetic spec has non-finite values: %+v", s)
	}
	if s.NoiseScale < 0 {
		return errors.Errorf("Synthetic noise scale must be >= 0, found %v", s.NoiseScale)
	}
	return nil
}

// NewSyntheticObservations simulates observing m at the true parameters over
// the grid x. All uncertainties are drawn first, then all observation
// offsets, so a given generator state always yields the same data.
func NewSyntheticObservations(gen *rand.Generator, m Model, truth Params, x []float64, spec SyntheticSpec) (*ObservationSet, error) {
	if err := gen.Check(); err != nil {
		return nil, err
	}
	if err := spec.Check(); err != nil {
		return nil, err
	}
	if len(x) < 1 {
		return nil, errors.New("At least one x value is required for synthetic data")
	}

	exact, err := m.Eval(x, truth.A, truth.B)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not evaluate model at true parameters %v", truth)
	}
	if len(exact) != len(x) {
		return nil, errors.Errorf("Model returned %d values for %d x values", len(exact), len(x))
	}

	dy := make([]float64, len(x))
	for i, xi := range x {
		d := math.Abs(spec.InstrumentError + spec.TrendCoeff*xi + gen.Gaussian(0, spec.NoiseScale))
		if d <= DyFloor || math.IsNaN(d) {
			d = DyFloor
		}
		dy[i] = d
	}

	y := make([]float64, len(x))
	for i, f := range exact {
		if !finite(f) {
			return nil, errors.Errorf("Model is not finite at x=%v for true parameters %v", x[i], truth)
		}
		y[i] = f + gen.Gaussian(0, dy[i])
	}

	obs, err := NewObservationSet(x, y, dy)
	if err != nil {
		return nil, errors.Wrap(err, "Synthetic observations are not valid")
	}
	return obs, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive
func Linspace(lo, hi float64, n int) ([]float64, error) {
	switch {
	case n < 1:
		return nil, errors.Errorf("Linspace needs n >= 1, found %d", n)
	case n == 1:
		return []float64{lo}, nil
	}
	return floats.Span(make([]float64, n), lo, hi), nil
}
