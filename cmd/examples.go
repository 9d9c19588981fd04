package cmd

import (
	"github.com/pkg/errors"

	"github.com/CraigKelly/paraminsight/model"
	"github.com/CraigKelly/paraminsight/rand"
)

// example is one synthetic experiment from the catalog
type example struct {
	Name   string
	Model  model.Model
	Truth  model.Params
	Grid   gridConfig
	Noise  model.SyntheticSpec
	Header string
}

var exampleCatalog = []example{
	{
		Name:   "linear",
		Header: "Linear",
		Model:  model.Linear{},
		Truth:  model.Params{A: 2.0, B: 1.0},
		Grid:   gridConfig{Min: 0, Max: 10, Points: 20},
		Noise:  model.SyntheticSpec{InstrumentError: 0.2, TrendCoeff: 0.05, NoiseScale: 0.05},
	},
	{
		Name:   "logarithmic",
		Header: "Logarithmic",
		Model:  model.Logarithmic{},
		Truth:  model.Params{A: 1.5, B: 0.5},
		Grid:   gridConfig{Min: 1, Max: 10, Points: 20},
		Noise:  model.SyntheticSpec{InstrumentError: 0.3, TrendCoeff: 0.02, NoiseScale: 0.05},
	},
	{
		Name:   "quadratic",
		Header: "Quadratic",
		Model:  model.Quadratic{},
		Truth:  model.Params{A: 1.0, B: 0.2},
		Grid:   gridConfig{Min: 0, Max: 5, Points: 20},
		Noise:  model.SyntheticSpec{InstrumentError: 0.2, TrendCoeff: 0.05, NoiseScale: 0.03},
	},
	{
		Name:   "inverse",
		Header: "Inverse",
		Model:  model.Inverse{},
		Truth:  model.Params{A: 5.0, B: 1.0},
		Grid:   gridConfig{Min: 1, Max: 10, Points: 20},
		Noise:  model.SyntheticSpec{InstrumentError: 0.3, TrendCoeff: 0.01, NoiseScale: 0.02},
	},
}

// RunExamples simulates and fits every catalog example in turn. All the
// data comes from one generator (seeded with the data seed) so the set of
// examples is reproducible as a whole; each fit uses the sampler seed.
func RunExamples(sp *startupParams) error {
	gen, err := rand.NewGenerator(sp.cfg.DataSeed)
	if err != nil {
		return err
	}

	for _, ex := range exampleCatalog {
		sp.out.Printf("\n==== Running %s example ====\n", ex.Header)

		x, err := model.Linspace(ex.Grid.Min, ex.Grid.Max, ex.Grid.Points)
		if err != nil {
			return err
		}

		obs, err := model.NewSyntheticObservations(gen, ex.Model, ex.Truth, x, ex.Noise)
		if err != nil {
			return errors.Wrapf(err, "Could not simulate %s example", ex.Name)
		}

		truth := ex.Truth
		if err := fitAndReport(sp, ex.Name, obs, ex.Model, &truth); err != nil {
			return errors.Wrapf(err, "Example %s failed", ex.Name)
		}

		sp.out.Printf("==== %s example completed ====\n", ex.Header)
	}

	return nil
}
