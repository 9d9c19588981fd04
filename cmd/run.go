package cmd

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"github.com/CraigKelly/paraminsight/model"
	"github.com/CraigKelly/paraminsight/rand"
	"github.com/CraigKelly/paraminsight/sampler"
)

// driftWindow is the trailing window used for the convergence check
const driftWindow = 1000

// RunSampler fits the configured model to the configured observations and
// reports the posterior.
func RunSampler(sp *startupParams) error {
	m, err := model.ModelByName(sp.cfg.Model)
	if err != nil {
		return err
	}

	var obs *model.ObservationSet
	var truth *model.Params

	if len(sp.cfg.Data) > 0 {
		sp.out.Printf("Reading observations from %s\n", sp.cfg.Data)
		obs, err = model.NewObservationSetFromFile(model.TextReader{}, sp.cfg.Data)
		if err != nil {
			return err
		}
	} else {
		obs, err = synthesize(sp, m, sp.cfg.Truth)
		if err != nil {
			return err
		}
		t := sp.cfg.Truth
		truth = &t
		sp.out.Printf("Simulated observations at true %v (data seed %d)\n", t, sp.cfg.DataSeed)
	}
	sp.out.Printf("Model %s with %d observations\n", sp.cfg.Model, obs.Len())

	return fitAndReport(sp, sp.cfg.Model, obs, m, truth)
}

// synthesize builds observations on the configured grid
func synthesize(sp *startupParams, m model.Model, truth model.Params) (*model.ObservationSet, error) {
	x, err := model.Linspace(sp.cfg.Grid.Min, sp.cfg.Grid.Max, sp.cfg.Grid.Points)
	if err != nil {
		return nil, err
	}

	gen, err := rand.NewGenerator(sp.cfg.DataSeed)
	if err != nil {
		return nil, err
	}

	return model.NewSyntheticObservations(gen, m, truth, x, sp.cfg.Synthetic)
}

// sampleChains runs the configured number of chains. Progress (the monitor
// and --verbose lines) follows chain 0 when there are several.
func sampleChains(sp *startupParams, obs *model.ObservationSet, m model.Model) ([]*sampler.Chain, error) {
	cfg := sp.cfg.Sampler

	var observers sampler.Observers
	if sp.mon != nil {
		observers = append(observers, sp.mon)
	}
	if sp.verbose {
		observers = append(observers, progressObserver(sp, cfg.Steps))
	}
	var follow sampler.Observer
	if len(observers) > 0 {
		follow = observers
	}

	if sp.cfg.Chains > 1 {
		sp.out.Printf("Running %d chains (seeds %d..%d)\n", sp.cfg.Chains, cfg.Seed, cfg.Seed+int64(sp.cfg.Chains-1))
		if follow != nil {
			sp.out.Printf("Progress follows chain 0\n")
		}
		return sampler.RunChains(obs, m, cfg, sp.cfg.Chains, follow)
	}

	gen, err := rand.NewGenerator(cfg.Seed)
	if err != nil {
		return nil, err
	}

	samp, err := sampler.NewMomentumSampler(gen, obs, m, cfg)
	if err != nil {
		return nil, err
	}
	samp.Observer = follow

	ch, err := samp.Run()
	if err != nil {
		return nil, err
	}
	return []*sampler.Chain{ch}, nil
}

func progressObserver(sp *startupParams, steps int) sampler.Observer {
	every := steps / 10
	if every < 1 {
		every = 1
	}
	return sampler.ObserverFunc(func(step int, rec sampler.Record, stats sampler.Stats) {
		if step%every == 0 || step == steps {
			sp.out.Printf(
				"Step %7d | a:%10.5f b:%10.5f logL:%12.4f | accept:%6.3f invalid:%d\n",
				step, rec.A, rec.B, rec.LogL, stats.AcceptanceRate(), stats.Invalid,
			)
		}
	})
}

// fitAndReport samples, prints the posterior and writes any requested files
func fitAndReport(sp *startupParams, name string, obs *model.ObservationSet, m model.Model, truth *model.Params) error {
	if sp.mon != nil {
		sp.mon.SetRun(name, sp.cfg.Sampler.Steps, sp.cfg.Chains)
	}

	chains, err := sampleChains(sp, obs, m)
	if err != nil {
		return err
	}

	merged, err := sampler.MergeChains(chains)
	if err != nil {
		return err
	}
	sum, err := sampler.NewSummary(merged)
	if err != nil {
		return errors.Wrap(err, "Nothing left after burn-in")
	}

	for i, ch := range chains {
		st := ch.Stats
		sp.out.Printf("Chain %d: acceptance %.4f (%d accepted, %d rejected, %d invalid)\n",
			i, st.AcceptanceRate(), st.Accepted, st.Rejected, st.Invalid)

		if drift, err := sampler.WindowDrift(ch.PostBurnIn(), driftWindow); err == nil {
			sp.out.Printf("Chain %d: drift over last %d steps a:%6.3f b:%6.3f\n", i, driftWindow, drift.A, drift.B)
		} else if sp.verbose {
			sp.out.Printf("Chain %d: no drift check (%v)\n", i, err)
		}

		if sp.trace != nil {
			traceChain(sp, name, i, ch)
		}
	}

	sp.out.Printf("Estimated parameters (%d samples):\n", sum.Count)
	if truth != nil {
		sp.out.Printf("a = %.4f ± %.4f (true: %g)\n", sum.MeanA, sum.StdA, truth.A)
		sp.out.Printf("b = %.4f ± %.4f (true: %g)\n", sum.MeanB, sum.StdB, truth.B)

		suite, err := model.NewErrorSuite(sum.Estimate(), *truth)
		if err != nil {
			return err
		}
		sp.out.Printf("Absolute errors: a = %.4e, b = %.4e\n", suite.AbsErrorA, suite.AbsErrorB)
		sp.out.Printf("Percentage errors: a = %.2f %%, b = %.2f %%\n", suite.PctErrorA, suite.PctErrorB)
	} else {
		sp.out.Printf("a = %.4f ± %.4f\n", sum.MeanA, sum.StdA)
		sp.out.Printf("b = %.4f ± %.4f\n", sum.MeanB, sum.StdB)
	}

	if len(sp.cfg.OutDir) > 0 {
		dir := filepath.Join(sp.cfg.OutDir, name)
		if err := writeOutputs(dir, obs, chains, truth); err != nil {
			return err
		}
		sp.out.Printf("Results saved in '%s/'\n", dir)
	}

	return nil
}

func traceChain(sp *startupParams, name string, idx int, ch *sampler.Chain) {
	if idx == 0 {
		sp.trace.Printf("# %s\n", name)
		sp.trace.Printf("chain\tstep\ta\tb\tlogL\taccepted\n")
	}
	for step, r := range ch.Records {
		sp.trace.Printf("%d\t%d\t%g\t%g\t%g\t%v\n", idx, step, r.A, r.B, r.LogL, r.Accepted)
	}
}

// writeOutputs writes observations.txt plus one chain and one results file
// per chain into dir
func writeOutputs(dir string, obs *model.ObservationSet, chains []*sampler.Chain, truth *model.Params) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "Could not create output directory %s", dir)
	}

	if err := writeFile(filepath.Join(dir, "observations.txt"), func(f *os.File) error {
		return model.WriteObservations(f, obs)
	}); err != nil {
		return err
	}

	for i, ch := range chains {
		suffix := ""
		if len(chains) > 1 {
			suffix = "_" + strconv.Itoa(i)
		}

		ch := ch
		if err := writeFile(filepath.Join(dir, "chain"+suffix+".tsv"), func(f *os.File) error {
			return sampler.WriteChain(f, ch)
		}); err != nil {
			return err
		}

		if err := writeFile(filepath.Join(dir, "final_results"+suffix+".txt"), func(f *os.File) error {
			return sampler.WriteReport(f, ch, truth)
		}); err != nil {
			return err
		}
	}

	return nil
}

func writeFile(filename string, body func(f *os.File) error) error {
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "Could not create %s", filename)
	}

	if err := body(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "Could not write %s", filename)
	}

	return errors.Wrapf(f.Close(), "Could not close %s", filename)
}
