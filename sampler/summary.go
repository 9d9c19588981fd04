package sampler

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/CraigKelly/paraminsight/model"
)

// Summary is the posterior mean and (sample) standard deviation of each
// parameter over a set of records.
type Summary struct {
	Count    int
	MeanA    float64
	StdA     float64
	MeanB    float64
	StdB     float64
	MeanLogL float64
}

// NewSummary summarizes records. A single record has a standard deviation
// of zero.
func NewSummary(records []Record) (*Summary, error) {
	if len(records) < 1 {
		return nil, errors.Errorf("Can not summarize 0 records")
	}

	a, b, logL := Columns(records)
	s := &Summary{Count: len(records)}

	if len(records) == 1 {
		s.MeanA, s.MeanB, s.MeanLogL = a[0], b[0], logL[0]
		return s, nil
	}

	s.MeanA, s.StdA = stat.MeanStdDev(a, nil)
	s.MeanB, s.StdB = stat.MeanStdDev(b, nil)
	s.MeanLogL = stat.Mean(logL, nil)

	return s, nil
}

// Summary summarizes the post burn-in part of the chain
func (c *Chain) Summary() (*Summary, error) {
	return NewSummary(c.PostBurnIn())
}

// Estimate is the posterior mean as a parameter pair
func (s *Summary) Estimate() model.Params {
	return model.Params{A: s.MeanA, B: s.MeanB}
}

// WriteReport writes a plain text report of a finished run. truth may be nil
// when the true parameters are unknown.
func WriteReport(w io.Writer, c *Chain, truth *model.Params) error {
	sum, err := c.Summary()
	if err != nil {
		return errors.Wrap(err, "Could not summarize chain for report")
	}

	cfg := c.Config
	p := func(format string, args ...interface{}) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	p("Momentum MCMC results\n")
	p("--------------------\n\n")

	p("MCMC configuration:\n")
	p("Steps     = %d\n", cfg.Steps)
	p("Burn-in   = %d\n", c.BurnIn)
	p("Sigma a   = %g\n", cfg.SigmaA)
	p("Sigma b   = %g\n", cfg.SigmaB)
	p("Momentum  = %g\n", cfg.momentum())
	p("History   = %s\n", cfg.history())
	p("Seed      = %d\n", cfg.Seed)
	p("Initial   = %v\n\n", model.Params{A: cfg.InitialA, B: cfg.InitialB})

	st := c.Stats
	p("Proposals: %d accepted, %d rejected (%d invalid), acceptance %.4f\n\n",
		st.Accepted, st.Rejected, st.Invalid, st.AcceptanceRate())

	p("Estimated parameters (posterior mean ± std):\n")
	if truth != nil {
		p("a = %.6f ± %.6f (true: %g)\n", sum.MeanA, sum.StdA, truth.A)
		p("b = %.6f ± %.6f (true: %g)\n\n", sum.MeanB, sum.StdB, truth.B)
	} else {
		p("a = %.6f ± %.6f\n", sum.MeanA, sum.StdA)
		p("b = %.6f ± %.6f\n\n", sum.MeanB, sum.StdB)
	}

	if truth != nil {
		suite, serr := model.NewErrorSuite(sum.Estimate(), *truth)
		if serr != nil {
			return errors.Wrap(serr, "Could not score estimate")
		}
		p("Errors:\n")
		p("|a - true| = %.6f (%.2f %%)\n", suite.AbsErrorA, suite.PctErrorA)
		p("|b - true| = %.6f (%.2f %%)\n", suite.AbsErrorB, suite.PctErrorB)
	}

	return errors.Wrap(err, "Could not write report")
}
