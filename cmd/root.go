package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/CraigKelly/paraminsight/model"
)

var cfgFile string
var verbose bool
var rc = defaultRunConfig()

// startupParams is what every command receives once flags and config are
// settled
type startupParams struct {
	cfg     runConfig
	verbose bool
	out     *log.Logger
	trace   *log.Logger
	mon     *monitor
	closers []func() error
}

func (sp *startupParams) Close() {
	for _, c := range sp.closers {
		if err := c(); err != nil {
			sp.out.Printf("Close failed: %v\n", err)
		}
	}
	sp.closers = nil
}

// newStartupParams resolves --config, validates what can be validated
// without data, and opens the trace file if one was requested
func newStartupParams(cmd *cobra.Command) (*startupParams, error) {
	if len(cfgFile) > 0 {
		if err := loadRunConfig(cfgFile, &rc, cmd.Flags()); err != nil {
			return nil, err
		}
	}

	sp := &startupParams{
		cfg:     rc,
		verbose: verbose,
		out:     log.New(os.Stdout, "", 0),
	}

	if _, err := model.ModelByName(sp.cfg.Model); err != nil {
		return nil, err
	}
	if sp.cfg.Chains < 1 {
		return nil, errors.Errorf("Chain count must be >= 1, found %d", sp.cfg.Chains)
	}

	if len(sp.cfg.TraceFile) > 0 {
		f, err := os.Create(sp.cfg.TraceFile)
		if err != nil {
			return nil, errors.Wrapf(err, "Could not create trace file %s", sp.cfg.TraceFile)
		}
		sp.trace = log.New(f, "", 0)
		sp.closers = append(sp.closers, f.Close)
	}

	if len(sp.cfg.Monitor) > 0 {
		sp.mon = &monitor{}
		if err := sp.mon.Start(sp.cfg.Monitor); err != nil {
			sp.Close()
			return nil, err
		}
		sp.closers = append(sp.closers, func() error {
			sp.mon.Stop()
			return nil
		})
	}

	return sp, nil
}

// runWith wraps a command body with startup and cleanup
func runWith(body func(sp *startupParams) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		sp, err := newStartupParams(cmd)
		if err != nil {
			return err
		}
		defer sp.Close()
		return body(sp)
	}
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "paraminsight",
	Short: "Two parameter Bayesian model fitting with momentum MCMC",
	Long: `paraminsight fits the parameters (a, b) of a model F(x; a, b) to noisy
observations with a Metropolis-Hastings sampler that carries momentum from
its last move.
Among other features:

  - Built-in models: ` + strings.Join(model.ModelNames(), ", ") + `
  - Observations from a file (x y dy columns) or simulated with
    heteroscedastic noise
  - Reproducible runs: every chain owns a seeded Mersenne twister
  - Several independent chains in parallel (--chains)
`,
	SilenceUsage: true,
	RunE:         runWith(RunSampler),
}

var synthCmd = &cobra.Command{
	Use:   "synth",
	Short: "Write synthetic observations for a model to the trace file (or stdout)",
	RunE:  runWith(SynthOutput),
}

var examplesCmd = &cobra.Command{
	Use:   "examples",
	Short: "Run the linear, logarithmic, quadratic and inverse examples",
	RunE:  runWith(RunExamples),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "YAML run config file (flags override it)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Verbose logging (default is much more parsimonious)")

	pf.StringVarP(&rc.Model, "model", "m", rc.Model, "Model to fit: "+strings.Join(model.ModelNames(), ", "))
	pf.StringVarP(&rc.Data, "data", "d", rc.Data, "Observation file (x y dy); synthetic data is used if empty")
	pf.IntVar(&rc.Chains, "chains", rc.Chains, "Number of independent chains to run in parallel")
	pf.StringVarP(&rc.OutDir, "out-dir", "o", rc.OutDir, "Directory for observations, chain and results files")
	pf.StringVarP(&rc.TraceFile, "trace", "t", rc.TraceFile, "Trace file for per-step chain output")
	pf.StringVar(&rc.Monitor, "monitor", rc.Monitor, "Serve expvar progress on this address (e.g. :8000)")

	pf.Int64Var(&rc.DataSeed, "data-seed", rc.DataSeed, "Random seed for synthetic observations")

	s := &rc.Sampler
	pf.Int64VarP(&s.Seed, "seed", "r", s.Seed, "Random seed to use")
	pf.IntVarP(&s.Steps, "steps", "n", s.Steps, "Number of MCMC steps")
	pf.IntVarP(&s.BurnIn, "burn-in", "b", s.BurnIn, "Leading steps excluded from summaries")
	pf.Float64Var(&s.SigmaA, "sigma-a", s.SigmaA, "Proposal step size for a")
	pf.Float64Var(&s.SigmaB, "sigma-b", s.SigmaB, "Proposal step size for b")
	pf.Float64Var(&s.InitialA, "init-a", s.InitialA, "Initial value of a")
	pf.Float64Var(&s.InitialB, "init-b", s.InitialB, "Initial value of b")
	pf.Float64Var(&s.Momentum, "momentum", s.Momentum, "Momentum coefficient in [0, 1), 0 for the default")
	pf.BoolVar(&s.NoMomentum, "no-momentum", s.NoMomentum, "Disable momentum (plain random-walk proposals)")
	pf.StringVar((*string)(&s.HistoryMode), "history", string(s.HistoryMode), "Momentum history: realized or proposed")

	pf.Float64Var(&rc.Truth.A, "true-a", rc.Truth.A, "True a for synthetic data and error reports")
	pf.Float64Var(&rc.Truth.B, "true-b", rc.Truth.B, "True b for synthetic data and error reports")
	pf.Float64Var(&rc.Grid.Min, "x-min", rc.Grid.Min, "Smallest synthetic x")
	pf.Float64Var(&rc.Grid.Max, "x-max", rc.Grid.Max, "Largest synthetic x")
	pf.IntVar(&rc.Grid.Points, "points", rc.Grid.Points, "Number of synthetic points")
	pf.Float64Var(&rc.Synthetic.InstrumentError, "instrument-error", rc.Synthetic.InstrumentError, "Baseline synthetic uncertainty")
	pf.Float64Var(&rc.Synthetic.TrendCoeff, "trend", rc.Synthetic.TrendCoeff, "Growth of synthetic uncertainty with x")
	pf.Float64Var(&rc.Synthetic.NoiseScale, "noise", rc.Synthetic.NoiseScale, "Std dev of the noise on synthetic uncertainty")

	rootCmd.AddCommand(synthCmd, examplesCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
