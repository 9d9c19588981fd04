package model

import (
	"math"

	"github.com/pkg/errors"
)

// ErrorSuite represents the errors we use to judge an estimate against known
// true parameters (as in a synthetic experiment). Percentage errors are
// relative to the magnitude of the true value; a true value of zero gives a
// percentage error of 0 for an exact estimate and +Inf otherwise.
type ErrorSuite struct {
	AbsErrorA float64
	AbsErrorB float64
	PctErrorA float64
	PctErrorB float64

	MeanAbsError float64
	MaxAbsError  float64
}

// NewErrorSuite returns an ErrorSuite comparing est to truth
func NewErrorSuite(est Params, truth Params) (*ErrorSuite, error) {
	if !truth.IsFinite() {
		return nil, errors.Errorf("True parameters must be finite, found %v", truth)
	}
	if !est.IsFinite() {
		return nil, errors.Errorf("Estimated parameters must be finite, found %v", est)
	}

	es := ErrorSuite{
		AbsErrorA: math.Abs(est.A - truth.A),
		AbsErrorB: math.Abs(est.B - truth.B),
	}
	es.PctErrorA = pctError(es.AbsErrorA, truth.A)
	es.PctErrorB = pctError(es.AbsErrorB, truth.B)
	es.MeanAbsError = (es.AbsErrorA + es.AbsErrorB) * 0.5
	es.MaxAbsError = math.Max(es.AbsErrorA, es.AbsErrorB)

	return &es, nil
}

func pctError(absErr float64, truth float64) float64 {
	if truth == 0 {
		if absErr == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return absErr / math.Abs(truth) * 100.0
}
