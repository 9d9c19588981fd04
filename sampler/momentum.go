package sampler

import (
	"math"

	"github.com/pkg/errors"

	"github.com/CraigKelly/paraminsight/buffer"
	"github.com/CraigKelly/paraminsight/model"
	"github.com/CraigKelly/paraminsight/rand"
)

// Stats counts what happened to the proposals of a run. Invalid counts the
// rejections caused by a proposal the model could not evaluate.
type Stats struct {
	Proposed int64
	Accepted int64
	Rejected int64
	Invalid  int64
}

// AcceptanceRate is Accepted/Proposed (0 before any proposal)
func (s Stats) AcceptanceRate() float64 {
	if s.Proposed < 1 {
		return 0
	}
	return float64(s.Accepted) / float64(s.Proposed)
}

// MomentumSampler is a Metropolis-Hastings sampler over (a, b) whose
// proposals extrapolate the last move:
//
//	p' = p[n-1] + Momentum*(p[n-1] - p[n-2]) + N(0, diag(SigmaA^2, SigmaB^2))
//
// The momentum term is zero until two positions are known.
type MomentumSampler struct {
	Observer Observer // optional, called after every step

	gen    *rand.Generator
	obs    *model.ObservationSet
	target model.Model
	cfg    Config
}

var _ Sampler = (*MomentumSampler)(nil)

// NewMomentumSampler validates everything up front: no model evaluation or
// random draw happens until Run. The generator's seed replaces cfg.Seed, so
// the chain always reports the seed that actually drove it.
func NewMomentumSampler(gen *rand.Generator, obs *model.ObservationSet, m model.Model, cfg Config) (*MomentumSampler, error) {
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	if err := gen.Check(); err != nil {
		return nil, errors.Wrap(err, "Sampler needs a seeded generator")
	}
	cfg.Seed = gen.SeedValue()
	if err := obs.Check(); err != nil {
		return nil, &ConfigurationError{Field: "observations", Reason: err.Error(), Err: err}
	}
	if m == nil {
		return nil, configErr("model", "no model supplied")
	}

	s := &MomentumSampler{
		gen:    gen,
		obs:    obs,
		target: m,
		cfg:    cfg,
	}
	return s, nil
}

// Config returns the configuration the sampler was built with
func (s *MomentumSampler) Config() Config {
	return s.cfg
}

// Run performs Steps proposal rounds and returns a chain of Steps+1 records.
// A proposal the model can not evaluate is always rejected; it never stops
// the run.
func (s *MomentumSampler) Run() (*Chain, error) {
	if err := s.gen.Check(); err != nil {
		return nil, err
	}

	cfg := s.cfg
	mode := cfg.history()
	coef := cfg.momentum()
	ch := newChain(cfg)

	cur := model.Params{A: cfg.InitialA, B: cfg.InitialB}
	curLL := model.Evaluate(s.obs, s.target, cur)

	hist := buffer.NewCircular[model.Params](2)
	hist.Add(cur)

	rec := Record{A: cur.A, B: cur.B, LogL: curLL.Float(), Accepted: true}
	ch.append(rec)
	s.observe(0, rec, ch.Stats)

	for step := 1; step <= cfg.Steps; step++ {
		mom := MomentumTerm(hist, coef)

		// Draw order is fixed (a, b, then u) so runs are reproducible
		da := s.gen.Gaussian(0, cfg.SigmaA)
		db := s.gen.Gaussian(0, cfg.SigmaB)
		prop := cur.Add(mom).Add(model.Params{A: da, B: db})
		propLL := model.Evaluate(s.obs, s.target, prop)

		alpha := AcceptProbability(curLL, propLL)
		u := s.gen.Uniform()

		ch.Stats.Proposed++
		accepted := u < alpha
		if accepted {
			cur, curLL = prop, propLL
			ch.Stats.Accepted++
		} else {
			ch.Stats.Rejected++
			if !propLL.Valid {
				ch.Stats.Invalid++
			}
		}

		rec = Record{A: cur.A, B: cur.B, LogL: curLL.Float(), Accepted: accepted}
		ch.append(rec)

		if mode == Proposed {
			hist.Add(prop)
		} else {
			hist.Add(cur)
		}

		s.observe(step, rec, ch.Stats)
	}

	return ch, nil
}

func (s *MomentumSampler) observe(step int, rec Record, stats Stats) {
	if s.Observer != nil {
		s.Observer.Observe(step, rec, stats)
	}
}

// MomentumTerm returns coef*(last - previous) from a position history, or
// zero when fewer than two positions have been recorded.
func MomentumTerm(hist *buffer.Circular[model.Params], coef float64) model.Params {
	last, ok := hist.Recent(0)
	if !ok {
		return model.Params{}
	}
	prev, ok := hist.Recent(1)
	if !ok {
		return model.Params{}
	}
	return last.Sub(prev).Scale(coef)
}

// AcceptProbability is the Metropolis acceptance probability
// min(1, exp(proposed - current)). It is 0 for an invalid proposal and 1 when
// the proposal is valid but the current position is not. exp is only
// evaluated for a negative difference, so the result is always in [0, 1].
func AcceptProbability(current, proposed model.LogLikelihood) float64 {
	if !proposed.Valid {
		return 0
	}
	if !current.Valid {
		return 1
	}

	delta := proposed.Value - current.Value
	if delta >= 0 {
		return 1
	}
	if math.IsNaN(delta) {
		return 0
	}
	return math.Exp(delta)
}
