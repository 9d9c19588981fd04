package cmd

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/CraigKelly/paraminsight/model"
	"github.com/CraigKelly/paraminsight/sampler"
)

// gridConfig is the x grid used for synthetic observations
type gridConfig struct {
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
	Points int     `yaml:"points"`
}

// runConfig is everything a run needs. It can come from a YAML file (see
// --config), from flags, or both: flags given on the command line win.
type runConfig struct {
	Model     string              `yaml:"model"`
	Data      string              `yaml:"data"`
	Chains    int                 `yaml:"chains"`
	OutDir    string              `yaml:"out_dir"`
	TraceFile string              `yaml:"trace"`
	Monitor   string              `yaml:"monitor"`
	DataSeed  int64               `yaml:"data_seed"`
	Sampler   sampler.Config      `yaml:"sampler"`
	Truth     model.Params        `yaml:"truth"`
	Grid      gridConfig          `yaml:"grid"`
	Synthetic model.SyntheticSpec `yaml:"synthetic"`
}

func defaultRunConfig() runConfig {
	samp := sampler.DefaultConfig()
	samp.BurnIn = 500

	return runConfig{
		Model:    "linear",
		Chains:   1,
		DataSeed: 1,
		Sampler:  samp,
		Truth:    model.Params{A: 2.0, B: 1.0},
		Grid:     gridConfig{Min: 0, Max: 10, Points: 20},
		Synthetic: model.SyntheticSpec{
			InstrumentError: 0.2,
			TrendCoeff:      0.05,
			NoiseScale:      0.05,
		},
	}
}

// loadRunConfig reads filename into rc while keeping every flag the user set
// explicitly. flags must already be parsed and bound to rc's fields.
func loadRunConfig(filename string, rc *runConfig, flags *pflag.FlagSet) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return errors.Wrapf(err, "Could not READ config from %s", filename)
	}

	changed := make(map[string]string)
	flags.Visit(func(f *pflag.Flag) {
		changed[f.Name] = f.Value.String()
	})

	if err := yaml.Unmarshal(data, rc); err != nil {
		return errors.Wrapf(err, "Could not PARSE config from %s", filename)
	}

	for name, val := range changed {
		if err := flags.Set(name, val); err != nil {
			return errors.Wrapf(err, "Could not re-apply flag --%s", name)
		}
	}

	return nil
}
