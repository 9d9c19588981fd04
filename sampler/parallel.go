package sampler

import (
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/CraigKelly/paraminsight/model"
	"github.com/CraigKelly/paraminsight/rand"
)

// RunChains runs n independent chains at once. Chain i gets its own
// generator seeded with cfg.Seed+i, so the set of chains is as reproducible
// as a single run. The model is shared and must be safe for concurrent use
// (all built-in models are). follow, if not nil, observes chain 0 only so
// its step numbers stay in order.
func RunChains(obs *model.ObservationSet, m model.Model, cfg Config, n int, follow Observer) ([]*Chain, error) {
	if n < 1 {
		return nil, configErr("chains", "must be >= 1, found %d", n)
	}

	// Build every sampler before starting any so config problems surface
	// without partial work
	samplers := make([]*MomentumSampler, n)
	for i := range samplers {
		c := cfg
		c.Seed = cfg.Seed + int64(i)

		gen, err := rand.NewGenerator(c.Seed)
		if err != nil {
			return nil, err
		}

		samplers[i], err = NewMomentumSampler(gen, obs, m, c)
		if err != nil {
			return nil, err
		}
	}
	samplers[0].Observer = follow

	chains := make([]*Chain, n)

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, s := range samplers {
		i, s := i, s
		g.Go(func() error {
			ch, err := s.Run()
			if err != nil {
				return errors.Wrapf(err, "Chain %d failed", i)
			}
			chains[i] = ch
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return chains, nil
}
