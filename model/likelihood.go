package model

import (
	"math"
)

// LogLikelihood is the result of evaluating a parameter pair. When Valid is
// false the pair has zero probability (the model could not be evaluated, or
// produced non-finite values) and Value must be ignored.
type LogLikelihood struct {
	Value float64
	Valid bool
}

// Invalid is the zero-probability result
func Invalid() LogLikelihood {
	return LogLikelihood{Value: math.Inf(-1), Valid: false}
}

// Float returns the log-likelihood as a number, with -Inf for invalid results
func (l LogLikelihood) Float() float64 {
	if !l.Valid {
		return math.Inf(-1)
	}
	return l.Value
}

// Evaluate computes the Gaussian log-likelihood
//
//	logL = -0.5 * sum_i (y_i - F(x_i; a, b))^2 / dy_i^2
//
// Model failures (errors, panics, wrong length, NaN or Inf values) never
// escape: they produce an Invalid result instead. The model gets its own
// copy of x, so a model that writes to it can not change obs.
func Evaluate(obs *ObservationSet, m Model, p Params) (ll LogLikelihood) {
	defer func() {
		if r := recover(); r != nil {
			ll = Invalid()
		}
	}()

	if !p.IsFinite() {
		return Invalid()
	}

	pred, err := m.Eval(obs.X(), p.A, p.B)
	if err != nil || len(pred) != len(obs.x) {
		return Invalid()
	}

	chi2 := 0.0
	for i, f := range pred {
		if !finite(f) {
			return Invalid()
		}
		r := (obs.y[i] - f) / obs.dy[i]
		chi2 += r * r
	}

	if !finite(chi2) {
		return Invalid()
	}

	return LogLikelihood{Value: -0.5 * chi2, Valid: true}
}
