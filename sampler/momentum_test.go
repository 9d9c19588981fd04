package sampler

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CraigKelly/paraminsight/buffer"
	"github.com/CraigKelly/paraminsight/model"
	"github.com/CraigKelly/paraminsight/rand"
)

// exactLine is y = 2x + 1 on x = 1..20 with dy = 0.2 everywhere
func exactLine(t testing.TB) *model.ObservationSet {
	x := make([]float64, 20)
	y := make([]float64, 20)
	dy := make([]float64, 20)
	for i := range x {
		x[i] = float64(i + 1)
		y[i] = 2.0*x[i] + 1.0
		dy[i] = 0.2
	}
	obs, err := model.NewObservationSet(x, y, dy)
	require.NoError(t, err)
	return obs
}

func lineConfig() Config {
	cfg := DefaultConfig()
	cfg.Steps = 5000
	cfg.SigmaA = 0.05
	cfg.SigmaB = 0.05
	cfg.Seed = 42
	cfg.InitialA = 0.0
	cfg.InitialB = 0.0
	cfg.BurnIn = 500
	return cfg
}

func runChain(t testing.TB, obs *model.ObservationSet, m model.Model, cfg Config) *Chain {
	gen, err := rand.NewGenerator(cfg.Seed)
	require.NoError(t, err)
	samp, err := NewMomentumSampler(gen, obs, m, cfg)
	require.NoError(t, err)
	ch, err := samp.Run()
	require.NoError(t, err)
	return ch
}

func TestAcceptProbability(t *testing.T) {
	assert := assert.New(t)

	ll := func(v float64) model.LogLikelihood { return model.LogLikelihood{Value: v, Valid: true} }

	// Uphill and level moves are always accepted
	assert.Equal(1.0, AcceptProbability(ll(-5), ll(-3)))
	assert.Equal(1.0, AcceptProbability(ll(-5), ll(-5)))
	assert.Equal(1.0, AcceptProbability(ll(0), ll(1e308)))

	// Downhill is exp(delta)
	assert.InDelta(math.Exp(-2), AcceptProbability(ll(-3), ll(-5)), 1e-15)
	assert.Equal(0.0, AcceptProbability(ll(0), ll(-1e6)))

	// Invalid proposals are never accepted; leaving an invalid state always is
	assert.Equal(0.0, AcceptProbability(ll(-5), model.Invalid()))
	assert.Equal(0.0, AcceptProbability(model.Invalid(), model.Invalid()))
	assert.Equal(1.0, AcceptProbability(model.Invalid(), ll(-1e9)))

	for _, cur := range []float64{-100, -3, 0} {
		for _, prop := range []float64{-1e6, -100, -3.5, -3, 0, 5} {
			alpha := AcceptProbability(ll(cur), ll(prop))
			assert.True(alpha >= 0 && alpha <= 1)
			assert.Equal(prop-cur >= 0, alpha == 1, "cur=%v prop=%v", cur, prop)
		}
	}
}

func TestMomentumTerm(t *testing.T) {
	assert := assert.New(t)

	hist := buffer.NewCircular[model.Params](2)
	assert.Equal(model.Params{}, MomentumTerm(hist, 0.5))

	hist.Add(model.Params{A: 1, B: 1})
	assert.Equal(model.Params{}, MomentumTerm(hist, 0.5))

	hist.Add(model.Params{A: 2, B: 0})
	assert.Equal(model.Params{A: 0.5, B: -0.5}, MomentumTerm(hist, 0.5))

	hist.Add(model.Params{A: 2, B: 0})
	assert.Equal(model.Params{}, MomentumTerm(hist, 0.5))
}

func TestConfigErrorsBeforeEvaluation(t *testing.T) {
	assert := assert.New(t)

	calls := 0
	counting := model.ModelFunc(func(x []float64, a, b float64) ([]float64, error) {
		calls++
		return model.Linear{}.Eval(x, a, b)
	})

	obs := exactLine(t)
	gen, err := rand.NewGenerator(42)
	require.NoError(t, err)

	noSteps := lineConfig()
	noSteps.Steps = 0
	noSigma := lineConfig()
	noSigma.SigmaA = 0

	for _, cfg := range []Config{noSteps, noSigma} {
		s, err := NewMomentumSampler(gen, obs, counting, cfg)
		assert.Nil(s)
		var ce *ConfigurationError
		assert.True(errors.As(err, &ce))
	}

	// An empty observation set is a configuration problem too
	s, err := NewMomentumSampler(gen, &model.ObservationSet{}, counting, lineConfig())
	assert.Nil(s)
	var ce *ConfigurationError
	if assert.True(errors.As(err, &ce)) {
		assert.Equal("observations", ce.Field)
		var oe *model.ObservationError
		assert.True(errors.As(err, &oe))
	}

	// dy = 0 never makes it into an observation set
	_, err = model.NewObservationSet([]float64{1, 2}, []float64{1, 2}, []float64{0.1, 0})
	assert.Error(err)

	s, err = NewMomentumSampler(gen, obs, nil, lineConfig())
	assert.Nil(s)
	assert.True(errors.As(err, &ce))

	// Unseeded generator
	s, err = NewMomentumSampler(&rand.Generator{}, obs, counting, lineConfig())
	assert.Nil(s)
	var rse *rand.RNGStateError
	assert.True(errors.As(err, &rse))

	assert.Equal(0, calls)
}

func TestChainShape(t *testing.T) {
	assert := assert.New(t)

	obs := exactLine(t)
	cfg := lineConfig()
	cfg.Steps = 250
	cfg.BurnIn = 50
	cfg.InitialA = 1.5
	cfg.InitialB = -0.5

	steps := 0
	gen, err := rand.NewGenerator(cfg.Seed)
	require.NoError(t, err)
	samp, err := NewMomentumSampler(gen, obs, model.Linear{}, cfg)
	require.NoError(t, err)
	samp.Observer = ObserverFunc(func(step int, rec Record, stats Stats) {
		assert.Equal(steps, step)
		assert.Equal(int64(step), stats.Proposed)
		steps++
	})
	assert.Equal(cfg, samp.Config())

	ch, err := samp.Run()
	require.NoError(t, err)

	assert.Equal(cfg.Steps+1, ch.Len())
	assert.Equal(cfg.Steps+1, steps)
	assert.Equal(cfg.Steps+1-cfg.BurnIn, len(ch.PostBurnIn()))

	first := ch.At(0)
	assert.Equal(1.5, first.A)
	assert.Equal(-0.5, first.B)
	assert.True(first.Accepted)
	assert.Equal(model.Evaluate(obs, model.Linear{}, first.Params()).Value, first.LogL)

	assert.Equal(int64(cfg.Steps), ch.Stats.Proposed)
	assert.Equal(ch.Stats.Proposed, ch.Stats.Accepted+ch.Stats.Rejected)
	assert.Equal(int64(0), ch.Stats.Invalid)

	// A rejected step repeats the previous record exactly
	for i := 1; i < ch.Len(); i++ {
		r := ch.At(i)
		if !r.Accepted {
			prev := ch.At(i - 1)
			assert.Equal(prev.A, r.A)
			assert.Equal(prev.B, r.B)
			assert.Equal(prev.LogL, r.LogL)
		}
	}
}

func TestRunDeterministic(t *testing.T) {
	assert := assert.New(t)

	obs := exactLine(t)
	cfg := lineConfig()
	cfg.Steps = 500

	c1 := runChain(t, obs, model.Linear{}, cfg)
	c2 := runChain(t, obs, model.Linear{}, cfg)
	assert.Equal(c1.Records, c2.Records)
	assert.Equal(c1.Stats, c2.Stats)

	cfg.Seed = 43
	c3 := runChain(t, obs, model.Linear{}, cfg)
	assert.NotEqual(c1.Records, c3.Records)
}

func TestNoMomentumOnFirstSteps(t *testing.T) {
	assert := assert.New(t)

	obs := exactLine(t)
	cfg := lineConfig()
	cfg.Steps = 200

	with := runChain(t, obs, model.Linear{}, cfg)
	cfg.NoMomentum = true
	without := runChain(t, obs, model.Linear{}, cfg)

	// Positions 0 and 1 can not depend on the momentum coefficient
	assert.Equal(with.At(0), without.At(0))
	assert.Equal(with.At(1), without.At(1))

	// but the chains do split once there is history to extrapolate from
	assert.NotEqual(with.Records, without.Records)
}

func TestZeroMomentumMeansDefault(t *testing.T) {
	assert := assert.New(t)

	obs := exactLine(t)

	// Only the basic options: no momentum or history given
	bare := Config{Steps: 300, SigmaA: 0.05, SigmaB: 0.05, Seed: 42, BurnIn: 50}
	require.NoError(t, bare.Check())
	assert.Equal(DefaultMomentum, bare.momentum())

	explicit := bare
	explicit.Momentum = DefaultMomentum
	explicit.HistoryMode = Realized

	off := bare
	off.NoMomentum = true
	assert.Equal(0.0, off.momentum())

	chBare := runChain(t, obs, model.Linear{}, bare)
	assert.Equal(runChain(t, obs, model.Linear{}, explicit).Records, chBare.Records)
	assert.NotEqual(runChain(t, obs, model.Linear{}, off).Records, chBare.Records)

	// NoMomentum wins over a coefficient
	off.Momentum = 0.9
	assert.Equal(0.0, off.momentum())
}

func TestChainRecordsGeneratorSeed(t *testing.T) {
	assert := assert.New(t)

	obs := exactLine(t)
	cfg := lineConfig()
	cfg.Steps = 50
	cfg.BurnIn = 0

	gen, err := rand.NewGenerator(7)
	require.NoError(t, err)
	samp, err := NewMomentumSampler(gen, obs, model.Linear{}, cfg)
	require.NoError(t, err)
	assert.Equal(int64(7), samp.Config().Seed)

	ch, err := samp.Run()
	require.NoError(t, err)
	assert.Equal(int64(7), ch.Config.Seed)

	cfg.Seed = 7
	assert.Equal(runChain(t, obs, model.Linear{}, cfg).Records, ch.Records)
}

func TestProposedHistory(t *testing.T) {
	assert := assert.New(t)

	obs := exactLine(t)
	cfg := lineConfig()
	cfg.Steps = 300

	realized := runChain(t, obs, model.Linear{}, cfg)
	cfg.HistoryMode = Proposed
	proposed := runChain(t, obs, model.Linear{}, cfg)

	assert.Equal(cfg.Steps+1, proposed.Len())
	assert.Equal(realized.At(1), proposed.At(1))
	assert.NotEqual(realized.Records, proposed.Records)
}

func TestInvalidRegionRejected(t *testing.T) {
	assert := assert.New(t)

	// Data from 1.5*ln(0.5x); start right next to the b = 0 wall with a wide
	// b proposal so a large share of proposals land at b <= 0
	x := make([]float64, 20)
	y := make([]float64, 20)
	dy := make([]float64, 20)
	for i := range x {
		x[i] = 1.0 + float64(i)*9.0/19.0
		y[i] = 1.5 * math.Log(0.5*x[i])
		dy[i] = 0.3
	}
	obs, err := model.NewObservationSet(x, y, dy)
	require.NoError(t, err)

	cfg := lineConfig()
	cfg.Steps = 2000
	cfg.BurnIn = 0
	cfg.InitialA = 1.5
	cfg.InitialB = 0.05
	cfg.SigmaA = 0.1
	cfg.SigmaB = 0.5

	ch := runChain(t, obs, model.Logarithmic{}, cfg)
	assert.True(ch.Stats.Invalid > 0)
	assert.True(ch.Stats.Invalid <= ch.Stats.Rejected)
	for i := 0; i < ch.Len(); i++ {
		r := ch.At(i)
		assert.True(r.B > 0, "step %d reached b=%v", i, r.B)
		assert.False(math.IsInf(r.LogL, 0) || math.IsNaN(r.LogL))
	}

	// The specific proposal b = -0.1 scores -Inf and can never be accepted
	cur := model.Evaluate(obs, model.Logarithmic{}, model.Params{A: 1.5, B: 0.5})
	prop := model.Evaluate(obs, model.Logarithmic{}, model.Params{A: 1.5, B: -0.1})
	assert.True(cur.Valid)
	assert.False(prop.Valid)
	assert.True(math.IsInf(prop.Float(), -1))
	assert.Equal(0.0, AcceptProbability(cur, prop))
}

func TestInvalidStart(t *testing.T) {
	assert := assert.New(t)

	// Logarithmic model starting at b = 0: the initial state is impossible
	x := []float64{1, 2, 3, 4}
	y := []float64{0, 1, 1.6, 2}
	obs, err := model.NewObservationSet(x, y, []float64{0.3, 0.3, 0.3, 0.3})
	require.NoError(t, err)

	cfg := lineConfig()
	cfg.Steps = 500
	cfg.BurnIn = 0
	cfg.InitialA = 1
	cfg.InitialB = 0

	ch := runChain(t, obs, model.Logarithmic{}, cfg)
	assert.True(math.IsInf(ch.At(0).LogL, -1))
	assert.True(ch.At(0).Accepted)

	last := ch.At(ch.Len() - 1)
	assert.True(last.B > 0)
	assert.False(math.IsInf(last.LogL, 0))
}

func TestLinearPosteriorRecovery(t *testing.T) {
	assert := assert.New(t)

	ch := runChain(t, exactLine(t), model.Linear{}, lineConfig())
	assert.Equal(5001, ch.Len())

	sum, err := ch.Summary()
	require.NoError(t, err)
	assert.Equal(5001-500, sum.Count)
	assert.InDelta(2.0, sum.MeanA, 0.15)
	assert.InDelta(1.0, sum.MeanB, 0.15)
	assert.True(ch.Stats.Accepted > 0)
}

func TestRunUnseeded(t *testing.T) {
	assert := assert.New(t)

	s := &MomentumSampler{gen: &rand.Generator{}, obs: exactLine(t), target: model.Linear{}, cfg: lineConfig()}
	ch, err := s.Run()
	assert.Nil(ch)
	assert.Error(err)
}

var benchChain *Chain

func BenchmarkMomentumSampler(b *testing.B) {
	obs := exactLine(b)
	cfg := lineConfig()
	cfg.Steps = 1000

	gen, err := rand.NewGenerator(42)
	if err != nil {
		b.Fatalf("Could not init PRNG %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		samp, err := NewMomentumSampler(gen, obs, model.Linear{}, cfg)
		if err != nil {
			b.Fatalf("Could not create sampler %v", err)
		}
		benchChain, err = samp.Run()
		if err != nil {
			b.Fatalf("Run failed %v", err)
		}
	}
}
